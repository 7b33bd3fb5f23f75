// Package tuistyles holds the palette and base styles shared by the
// terminal report and the interactive browser.
package tuistyles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
)

// Colors
var (
	ColorPrimary   = lipgloss.Color("#7D56F4")
	ColorSecondary = lipgloss.Color("#5A9BD5")
	ColorAccent    = lipgloss.Color("#F2A541")
	ColorSuccess   = lipgloss.Color("#4CAF50")
	ColorDanger    = lipgloss.Color("#E5534B")
	ColorInfo      = lipgloss.Color("#39A7C9")

	ColorForeground = lipgloss.Color("#E6E6E6")
	ColorMuted      = lipgloss.Color("#8B8B8B")
	ColorBorder     = lipgloss.Color("#444444")

	ColorChartLine1 = lipgloss.Color("#7D56F4")
	ColorChartLine2 = lipgloss.Color("#F2A541")
	ColorChartLine3 = lipgloss.Color("#4CAF50")
	ColorChartLine4 = lipgloss.Color("#E5534B")
)

// ChartColors cycles through the line colors
var ChartColors = []lipgloss.Color{ColorChartLine1, ColorChartLine2, ColorChartLine3, ColorChartLine4}

// HeatRamp runs from the lowest to the highest tile shade
var HeatRamp = []lipgloss.Color{
	lipgloss.Color("#FFF5EB"),
	lipgloss.Color("#FDD0A2"),
	lipgloss.Color("#FD8D3C"),
	lipgloss.Color("#D94801"),
	lipgloss.Color("#7F2704"),
}

// Base styles
var (
	AppStyle = lipgloss.NewStyle().Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary).
			MarginTop(1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorForeground).
			Background(lipgloss.Color("#303030")).
			Padding(0, 1)

	StatusKeyStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true)

	UnselectedItemStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	MetricLabelStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	MetricValueStyle = lipgloss.NewStyle().
				Foreground(ColorForeground).
				Bold(true)

	HelpKeyStyle  = lipgloss.NewStyle().Foreground(ColorAccent)
	HelpDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ColorDanger).Bold(true)
	InfoStyle     = lipgloss.NewStyle().Foreground(ColorInfo)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Bold(true).
				Padding(0, 1)

	TableCellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// BandColor is the series color of a prescribing-change band. Bands that
// cut prescribing hardest are the coolest.
func BandColor(b domain.PrescribingChangeBand) lipgloss.Color {
	switch b {
	case domain.GreatlyDecreased:
		return ColorInfo
	case domain.ModeratelyDecreased:
		return ColorSuccess
	case domain.SlightlyDecreased:
		return ColorAccent
	case domain.Increased:
		return ColorDanger
	}
	return ColorMuted
}

// TrendIndicator returns an arrow for a change direction
func TrendIndicator(up bool) string {
	if up {
		return "▲"
	}
	return "▼"
}

// MetricTrendStyle colors a change. Rising overdose rates are bad news.
func MetricTrendStyle(up bool) lipgloss.Style {
	if up {
		return lipgloss.NewStyle().Foreground(ColorDanger)
	}
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}
