package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/opioid-eda/internal/tui/tuistyles"
)

// Bar is one labelled value of a bar chart
type Bar struct {
	Label string
	Value float64
	Color lipgloss.Color
}

// BarChart draws horizontal bars scaled to the largest value
type BarChart struct {
	Title string
	Bars  []Bar
	// Width is the length of the longest bar
	Width int
	// Format renders the value printed after each bar
	Format func(float64) string
	// Marker draws a reference line at this value when non-zero
	Marker float64
}

// NewBarChart creates a bar chart
func NewBarChart(title string) *BarChart {
	return &BarChart{
		Title:  title,
		Width:  40,
		Format: func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}
}

// Add appends a bar
func (b *BarChart) Add(label string, value float64, color lipgloss.Color) *BarChart {
	b.Bars = append(b.Bars, Bar{Label: label, Value: value, Color: color})
	return b
}

// WithMarker sets the reference line
func (b *BarChart) WithMarker(v float64) *BarChart {
	b.Marker = v
	return b
}

// Render returns the styled chart
func (b *BarChart) Render() string {
	var out strings.Builder
	if b.Title != "" {
		out.WriteString(tuistyles.TitleStyle.Render(b.Title))
		out.WriteString("\n\n")
	}
	if len(b.Bars) == 0 {
		out.WriteString(tuistyles.InfoStyle.Render("No data to display"))
		return out.String()
	}

	labelWidth := 0
	maxVal := b.Marker
	for _, bar := range b.Bars {
		labelWidth = max(labelWidth, lipgloss.Width(bar.Label))
		maxVal = math.Max(maxVal, bar.Value)
	}

	scale := func(v float64) int {
		if maxVal <= 0 || v <= 0 {
			return 0
		}
		return int(math.Round(v / maxVal * float64(b.Width)))
	}
	marker := -1
	if b.Marker > 0 {
		marker = scale(b.Marker)
	}

	labelStyle := lipgloss.NewStyle().Width(labelWidth).Align(lipgloss.Right).Foreground(tuistyles.ColorForeground)
	for _, bar := range b.Bars {
		n := scale(bar.Value)
		track := []rune(strings.Repeat("█", n) + strings.Repeat(" ", b.Width-n+1))
		if marker >= 0 && marker < len(track) && track[marker] == ' ' {
			track[marker] = '┊'
		}
		color := bar.Color
		if color == "" {
			color = tuistyles.ColorPrimary
		}
		fmt.Fprintf(&out, "%s │%s %s\n",
			labelStyle.Render(bar.Label),
			lipgloss.NewStyle().Foreground(color).Render(string(track)),
			tuistyles.MetricValueStyle.Render(b.Format(bar.Value)))
	}
	return out.String()
}
