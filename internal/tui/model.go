// Package tui is an interactive pager over an assembled report.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
	"github.com/rgehrsitz/opioid-eda/internal/output"
)

// RunFunc produces the report to browse
type RunFunc func(ctx context.Context) (*domain.Report, error)

// Model represents the entire application state
type Model struct {
	// Navigation
	current  int
	previous int
	showHelp bool

	// Terminal dimensions
	width  int
	height int

	ctx       context.Context
	run       RunFunc
	report    *domain.Report
	pages     []output.Section
	topStates int

	viewport viewport.Model
	keys     keyMap

	// Error state
	err error

	// Loading state
	loading        bool
	loadingMessage string
}

// NewModel creates a model that runs the pipeline on start
func NewModel(run RunFunc) Model {
	return Model{
		ctx:            context.Background(),
		run:            run,
		viewport:       viewport.New(80, 20),
		keys:           defaultKeyMap(),
		topStates:      8,
		width:          80,
		height:         24,
		loading:        true,
		loadingMessage: "Loading sources and assembling report...",
	}
}

// NewModelWithReport creates a model over an existing report
func NewModelWithReport(rep *domain.Report) Model {
	m := NewModel(nil)
	m.loading = false
	m.report = rep
	m.rebuild()
	return m
}

// WithTopStates sets how many states the trend page draws
func (m Model) WithTopStates(n int) Model {
	if n > 0 {
		m.topStates = n
		m.rebuild()
	}
	return m
}

// WithContext sets the context the pipeline runs under, so cancelling it
// abandons a load in progress
func (m Model) WithContext(ctx context.Context) Model {
	if ctx != nil {
		m.ctx = ctx
	}
	return m
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	if m.report != nil || m.run == nil {
		return nil
	}
	return loadReportCmd(m.ctx, m.run)
}

// loadReportCmd returns a command that runs the pipeline
func loadReportCmd(ctx context.Context, run RunFunc) tea.Cmd {
	return func() tea.Msg {
		rep, err := run(ctx)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ReportLoadedMsg{Report: rep}
	}
}

// rebuild re-renders every page at the current width
func (m *Model) rebuild() {
	if m.report == nil {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-4, 3)
	m.pages = output.ConsoleFormatter{TopStates: m.topStates, Width: max(m.width-2, 40)}.Sections(m.report)
	m.current = min(m.current, len(m.pages)-1)
	m.refresh()
}

// refresh shows the current page from the top
func (m *Model) refresh() {
	if len(m.pages) == 0 {
		return
	}
	m.viewport.SetContent(m.pages[m.current].Body)
	m.viewport.GotoTop()
}

// Page returns the name of the page on screen
func (m Model) Page() string {
	if m.current < len(m.pages) {
		return m.pages[m.current].Name
	}
	return ""
}
