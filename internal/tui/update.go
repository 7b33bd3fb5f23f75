package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuild()
		return m, nil

	case NavigateMsg:
		m.navigate(msg.Index)
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case ReportLoadedMsg:
		m.loading = false
		m.report = msg.Report
		m.rebuild()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.loading || m.err != nil || len(m.pages) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.showHelp {
			m.showHelp = false
		} else {
			m.navigate(m.previous)
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.navigate((m.current + 1) % len(m.pages))
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.navigate((m.current - 1 + len(m.pages)) % len(m.pages))
		return m, nil

	case key.Matches(msg, m.keys.Jump):
		m.navigate(int(msg.Runes[0] - '1'))
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// navigate moves to page i; out-of-range indexes are ignored
func (m *Model) navigate(i int) {
	if i < 0 || i >= len(m.pages) || i == m.current {
		return
	}
	m.previous = m.current
	m.current = i
	m.showHelp = false
	m.refresh()
}
