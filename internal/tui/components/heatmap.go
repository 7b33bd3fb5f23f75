package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/opioid-eda/internal/tui/tuistyles"
)

var shades = []rune{'░', '▒', '▓', '█', '█'}

// Heatmap draws a grid of tiles shaded by value. NaN cells are blank.
type Heatmap struct {
	Title     string
	RowLabels []string
	ColLabels []string
	Values    [][]float64
	// TileWidth is the number of cells per tile
	TileWidth int
}

// NewHeatmap creates a heatmap over rows x columns of values
func NewHeatmap(title string, rows, cols []string, values [][]float64) *Heatmap {
	return &Heatmap{
		Title:     title,
		RowLabels: rows,
		ColLabels: cols,
		Values:    values,
		TileWidth: 2,
	}
}

// Render returns the styled heatmap
func (h *Heatmap) Render() string {
	var out strings.Builder
	if h.Title != "" {
		out.WriteString(tuistyles.TitleStyle.Render(h.Title))
		out.WriteString("\n\n")
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range h.Values {
		for _, v := range row {
			if !math.IsNaN(v) {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
		}
	}
	if math.IsInf(lo, 1) {
		out.WriteString(tuistyles.InfoStyle.Render("No data to display"))
		return out.String()
	}

	labelWidth := 0
	for _, l := range h.RowLabels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}
	labelStyle := lipgloss.NewStyle().Width(labelWidth).Align(lipgloss.Right).Foreground(tuistyles.ColorForeground)

	for i, row := range h.Values {
		label := ""
		if i < len(h.RowLabels) {
			label = h.RowLabels[i]
		}
		out.WriteString(labelStyle.Render(label))
		out.WriteString(" ")
		for _, v := range row {
			out.WriteString(h.tile(v, lo, hi))
		}
		out.WriteString("\n")
	}

	if len(h.ColLabels) > 0 {
		first, last := h.ColLabels[0], h.ColLabels[len(h.ColLabels)-1]
		span := len(h.ColLabels) * h.TileWidth
		gap := max(span-lipgloss.Width(first)-lipgloss.Width(last), 1)
		out.WriteString(strings.Repeat(" ", labelWidth+1))
		out.WriteString(tuistyles.MetricLabelStyle.Render(first + strings.Repeat(" ", gap) + last))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(tuistyles.MetricLabelStyle.Render(fmt.Sprintf("%.2f ", lo)))
	for i := range tuistyles.HeatRamp {
		out.WriteString(lipgloss.NewStyle().Foreground(tuistyles.HeatRamp[i]).Render(strings.Repeat(string(shades[i]), h.TileWidth)))
	}
	out.WriteString(tuistyles.MetricLabelStyle.Render(fmt.Sprintf(" %.2f", hi)))
	out.WriteString("\n")
	return out.String()
}

func (h *Heatmap) tile(v, lo, hi float64) string {
	if math.IsNaN(v) {
		return strings.Repeat(" ", h.TileWidth)
	}
	idx := RampIndex(v, lo, hi, len(tuistyles.HeatRamp))
	return lipgloss.NewStyle().
		Foreground(tuistyles.HeatRamp[idx]).
		Render(strings.Repeat(string(shades[idx]), h.TileWidth))
}

// RampIndex buckets v within [lo, hi] into one of n equal-width steps
func RampIndex(v, lo, hi float64, n int) int {
	if hi <= lo {
		return n - 1
	}
	idx := int((v - lo) / (hi - lo) * float64(n))
	return min(max(idx, 0), n-1)
}
