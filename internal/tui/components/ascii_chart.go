package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/opioid-eda/internal/tui/tuistyles"
)

// DataSeries represents a single line in a chart. NaN points are gaps.
type DataSeries struct {
	Name   string
	Points []float64
	Color  lipgloss.Color
}

// ASCIIChart displays a simple line chart
type ASCIIChart struct {
	Title      string
	Series     []*DataSeries
	Labels     []string // X-axis labels
	Width      int
	Height     int
	ShowLegend bool
	YAxisLabel string
	XAxisLabel string
}

// NewASCIIChart creates a new ASCII chart
func NewASCIIChart(title string) *ASCIIChart {
	return &ASCIIChart{
		Title:      title,
		Series:     []*DataSeries{},
		Labels:     []string{},
		Width:      72,
		Height:     15,
		ShowLegend: true,
	}
}

// AddSeries adds a data series to the chart
func (c *ASCIIChart) AddSeries(name string, points []float64, color lipgloss.Color) *ASCIIChart {
	c.Series = append(c.Series, &DataSeries{
		Name:   name,
		Points: points,
		Color:  color,
	})
	return c
}

// WithLabels sets the X-axis labels
func (c *ASCIIChart) WithLabels(labels []string) *ASCIIChart {
	c.Labels = labels
	return c
}

// WithSize sets the chart dimensions
func (c *ASCIIChart) WithSize(width, height int) *ASCIIChart {
	c.Width = width
	c.Height = height
	return c
}

// WithAxisLabels sets axis labels
func (c *ASCIIChart) WithAxisLabels(xLabel, yLabel string) *ASCIIChart {
	c.XAxisLabel = xLabel
	c.YAxisLabel = yLabel
	return c
}

// Render returns the styled chart
func (c *ASCIIChart) Render() string {
	globalMin, globalMax, ok := c.getGlobalMinMax()
	if !ok {
		return tuistyles.InfoStyle.Render("No data to display")
	}

	var content strings.Builder

	if c.Title != "" {
		content.WriteString(tuistyles.TitleStyle.Render(c.Title))
		content.WriteString("\n")
	}
	if c.YAxisLabel != "" {
		content.WriteString(tuistyles.SubtitleStyle.Render(c.YAxisLabel))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	content.WriteString(c.renderGrid(globalMin, globalMax))

	if c.XAxisLabel != "" {
		content.WriteString("\n")
		content.WriteString(tuistyles.SubtitleStyle.Render(c.XAxisLabel))
	}

	if c.ShowLegend && len(c.Series) > 1 {
		content.WriteString("\n\n")
		content.WriteString(c.renderLegend())
	}

	return content.String()
}

// getGlobalMinMax finds the padded min and max across all series. ok is
// false when there is nothing to plot.
func (c *ASCIIChart) getGlobalMinMax() (float64, float64, bool) {
	globalMin := math.Inf(1)
	globalMax := math.Inf(-1)

	for _, series := range c.Series {
		for _, point := range series.Points {
			if math.IsNaN(point) {
				continue
			}
			globalMin = math.Min(globalMin, point)
			globalMax = math.Max(globalMax, point)
		}
	}
	if math.IsInf(globalMin, 1) {
		return 0, 0, false
	}

	// Add 10% padding; a flat series still needs a range
	padding := (globalMax - globalMin) * 0.1
	if padding == 0 {
		padding = math.Max(math.Abs(globalMax)*0.1, 1)
	}
	return globalMin - padding, globalMax + padding, true
}

// renderGrid renders the chart grid with data points
func (c *ASCIIChart) renderGrid(minVal, maxVal float64) string {
	yAxisWidth := 10
	chartWidth := c.Width - yAxisWidth - 3
	if chartWidth < 2 {
		chartWidth = 2
	}
	height := c.Height
	if height < 2 {
		height = 2
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", chartWidth))
	}

	xOf := func(i, n int) int {
		if n <= 1 {
			return 0
		}
		return int(float64(i) / float64(n-1) * float64(chartWidth-1))
	}
	yOf := func(v float64) int {
		return height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
	}

	for seriesIdx, series := range c.Series {
		pointChar := c.getSeriesChar(seriesIdx)
		n := len(series.Points)
		prev := -1

		for i, point := range series.Points {
			if math.IsNaN(point) {
				prev = -1
				continue
			}
			x, y := xOf(i, n), yOf(point)
			if prev >= 0 {
				c.drawLine(grid, xOf(prev, n), yOf(series.Points[prev]), x, y, pointChar)
			}
			if x >= 0 && x < chartWidth && y >= 0 && y < height {
				grid[y][x] = pointChar
			}
			prev = i
		}
	}

	var output strings.Builder
	valueRange := maxVal - minVal
	yAxisStyle := lipgloss.NewStyle().
		Foreground(tuistyles.ColorMuted).
		Width(yAxisWidth).
		Align(lipgloss.Right)

	for i, row := range grid {
		yValue := maxVal - (float64(i)/float64(height-1))*valueRange
		output.WriteString(yAxisStyle.Render(formatChartValue(yValue)))
		output.WriteString(" │ ")
		output.WriteString(string(row))
		output.WriteString("\n")
	}

	output.WriteString(strings.Repeat(" ", yAxisWidth))
	output.WriteString(" └")
	output.WriteString(strings.Repeat("─", chartWidth+1))
	output.WriteString("\n")

	if len(c.Labels) > 0 {
		output.WriteString(c.renderXAxisLabels(yAxisWidth, chartWidth))
	}

	return output.String()
}

// getSeriesChar returns the character to use for a series
func (c *ASCIIChart) getSeriesChar(index int) rune {
	chars := []rune{'●', '■', '▲', '♦', '○', '□', '△', '◇'}
	return chars[index%len(chars)]
}

// drawLine draws a simple line between two points using Bresenham's algorithm
func (c *ASCIIChart) drawLine(grid [][]rune, x0, y0, x1, y1 int, char rune) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)

	sx := -1
	if x0 < x1 {
		sx = 1
	}

	sy := -1
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy

	x, y := x0, y0

	for {
		if x >= 0 && x < len(grid[0]) && y >= 0 && y < len(grid) {
			if grid[y][x] == ' ' {
				grid[y][x] = '·'
			}
		}

		if x == x1 && y == y1 {
			break
		}

		e2 := 2 * err

		if e2 > -dy {
			err -= dy
			x += sx
		}

		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// renderXAxisLabels places the first, last and up to three interior labels
// under the axis
func (c *ASCIIChart) renderXAxisLabels(yAxisWidth, chartWidth int) string {
	line := []rune(strings.Repeat(" ", chartWidth+12))

	maxLabels := 5
	step := (len(c.Labels) - 1) / (maxLabels - 1)
	if step == 0 {
		step = 1
	}

	next := 0
	for i := 0; i < len(c.Labels); i += step {
		x := 0
		if len(c.Labels) > 1 {
			x = int(float64(i) / float64(len(c.Labels)-1) * float64(chartWidth-1))
		}
		if x < next {
			continue
		}
		label := []rune(c.Labels[i])
		for j, r := range label {
			if x+j < len(line) {
				line[x+j] = r
			}
		}
		next = x + len(label) + 1
	}

	labelStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)
	return strings.Repeat(" ", yAxisWidth+3) + labelStyle.Render(strings.TrimRight(string(line), " ")) + "\n"
}

// renderLegend renders the chart legend
func (c *ASCIIChart) renderLegend() string {
	var items []string

	for i, series := range c.Series {
		symbol := lipgloss.NewStyle().Foreground(series.Color).Render(string(c.getSeriesChar(i)))
		name := lipgloss.NewStyle().Foreground(tuistyles.ColorForeground).Render(series.Name)
		items = append(items, fmt.Sprintf("%s %s", symbol, name))
	}

	return tuistyles.MetricLabelStyle.Render("Legend: ") + strings.Join(items, "  ")
}

// formatChartValue formats a value for display on the Y axis
func formatChartValue(value float64) string {
	switch {
	case math.Abs(value) >= 1000:
		return fmt.Sprintf("%.0f", value)
	case math.Abs(value) >= 10:
		return fmt.Sprintf("%.1f", value)
	}
	return fmt.Sprintf("%.2f", value)
}

// abs returns absolute value of an integer
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
