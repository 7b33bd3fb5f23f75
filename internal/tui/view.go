package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	switch {
	case m.loading:
		return m.renderApp(InfoStyle.Render("⠋ " + m.loadingMessage))
	case m.err != nil:
		return m.renderApp(ErrorStyle.Render(fmt.Sprintf("Error: %s\n\nPress q to quit.", m.err)))
	case m.showHelp:
		return m.renderApp(m.renderHelp())
	}
	return m.renderApp(m.viewport.View())
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		content,
		m.renderStatusBar(),
	)
}

// renderTitleBar renders the report title and page tabs
func (m Model) renderTitleBar() string {
	title := "Opioid EDA"
	if m.report != nil && m.report.Title != "" {
		title = m.report.Title
	}

	tabs := make([]string, len(m.pages))
	for i, p := range m.pages {
		label := fmt.Sprintf("%d %s", i+1, p.Name)
		if i == m.current {
			tabs[i] = SelectedItemStyle.Render(label)
		} else {
			tabs[i] = UnselectedItemStyle.Render(label)
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Render(title),
		strings.Join(tabs, "  "),
	)
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	var shortcuts []string
	for _, b := range m.keys.shortHelp() {
		shortcuts = append(shortcuts, StatusKeyStyle.Render(b.Help().Key)+" "+b.Help().Desc)
	}
	statusText := strings.Join(shortcuts, " • ")

	if len(m.pages) > 0 {
		scroll := fmt.Sprintf("%3.0f%%", m.viewport.ScrollPercent()*100)
		spacer := strings.Repeat(" ", max(0, m.width-lipgloss.Width(statusText)-lipgloss.Width(scroll)-2))
		statusText += spacer + scroll
	}

	return StatusBarStyle.Width(m.width).Render(statusText)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	rows := [][2]string{
		{"←/→, tab", "previous / next page"},
		{"1-9", "jump to page"},
		{"↑/↓, pgup/pgdn", "scroll the page"},
		{"esc", "back to the previous page"},
		{"?", "toggle this help"},
		{"q, ctrl+c", "quit"},
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(HelpKeyStyle.Width(16).Render(r[0]))
		b.WriteString(HelpDescStyle.Render(r[1]))
		b.WriteString("\n")
	}
	return b.String()
}
