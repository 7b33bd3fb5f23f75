package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
)

func testReport() *domain.Report {
	jan := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Report{
		Title:        "Browse test",
		CauseOfDeath: "Opioids",
		PlanType:     "All",
		EarlierDate:  jan.AddDate(-4, 0, 0),
		LaterDate:    jan,
		Providers: []domain.ProviderDensityRow{
			{StateCode: "CA", StateName: "California", Population: 1000000, Providers: 2, ValuePer100k: decimal.RequireFromString("0.2")},
		},
		Snapshot: []domain.DerivedRate{
			{StateCode: "CA", Date: jan, Count: decimal.NewFromInt(150), Population: 1000000, ValuePer100k: decimal.NewFromInt(15)},
		},
		OverdoseSeries: []domain.DerivedRate{
			{StateCode: "CA", Date: jan, Count: decimal.NewFromInt(150), Population: 1000000, ValuePer100k: decimal.NewFromInt(15)},
		},
	}
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModel_Navigation(t *testing.T) {
	m := NewModelWithReport(testReport())
	require.Equal(t, "Overview", m.Page())
	assert.Nil(t, m.Init())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "Providers", m.Page())

	m = press(t, m, runes("8"))
	assert.Equal(t, "Summary", m.Page())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "Providers", m.Page())

	// wraps around backwards from the first page
	m = press(t, m, runes("1"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "Diagnostics", m.Page())

	next, _ := m.Update(NavigateMsg{Index: 42})
	assert.Equal(t, "Diagnostics", next.(Model).Page())
}

func TestModel_View(t *testing.T) {
	m := NewModelWithReport(testReport())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "Browse test")
	assert.Contains(t, view, "1 Overview")
	assert.Contains(t, view, "9 Diagnostics")

	m = press(t, m, runes("?"))
	assert.Contains(t, m.View(), "Keyboard shortcuts")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotContains(t, m.View(), "Keyboard shortcuts")
}

func TestModel_LoadLifecycle(t *testing.T) {
	m := NewModel(nil)
	assert.Contains(t, m.View(), "Loading sources")

	next, _ := m.Update(ReportLoadedMsg{Report: testReport()})
	m = next.(Model)
	assert.Equal(t, "Overview", m.Page())

	next, _ = m.Update(ErrorMsg{Err: errors.New("cannot read source x.csv")})
	assert.Contains(t, next.(Model).View(), "cannot read source x.csv")
}

func TestModel_Quit(t *testing.T) {
	m := NewModelWithReport(testReport())
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_WithTopStates(t *testing.T) {
	m := NewModelWithReport(testReport()).WithTopStates(3)
	assert.Equal(t, 3, m.topStates)
	assert.Equal(t, "Overview", m.Page())

	m = m.WithTopStates(0)
	assert.Equal(t, 3, m.topStates, "Non-positive counts are ignored")
}

func TestModel_LoadUsesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := func(ctx context.Context) (*domain.Report, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return testReport(), nil
	}

	cmd := NewModel(run).WithContext(ctx).Init()
	require.NotNil(t, cmd)
	msg, ok := cmd().(ErrorMsg)
	require.True(t, ok, "a cancelled context should abandon the load")
	assert.ErrorIs(t, msg.Err, context.Canceled)

	cmd = NewModel(run).Init()
	require.NotNil(t, cmd)
	_, ok = cmd().(ReportLoadedMsg)
	assert.True(t, ok)
}
