package components

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRampIndex(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		want      int
	}{
		{v: 0, lo: 0, hi: 10, want: 0},
		{v: 10, lo: 0, hi: 10, want: 4},
		{v: 5, lo: 0, hi: 10, want: 2},
		{v: -3, lo: 0, hi: 10, want: 0},
		{v: 7, lo: 7, hi: 7, want: 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RampIndex(tt.v, tt.lo, tt.hi, 5), "v=%v", tt.v)
	}
}

func TestBarChart_Render(t *testing.T) {
	chart := NewBarChart("Providers per 100k")
	chart.Width = 10
	chart.Add("CA", 2, "").Add("WY", 0, "").Add("TX", 1, "")

	out := chart.Render()
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Contains(t, out, "Providers per 100k")
	assert.Contains(t, out, strings.Repeat("█", 10))
	assert.Contains(t, out, strings.Repeat("█", 5)+" ")
	assert.Contains(t, lines[len(lines)-2], "0.00")
}

func TestBarChart_Empty(t *testing.T) {
	assert.Contains(t, NewBarChart("x").Render(), "No data to display")
}

func TestASCIIChart_Render(t *testing.T) {
	chart := NewASCIIChart("Overdose deaths per 100k").
		WithLabels([]string{"Jan 2019", "Jan 2020", "Jan 2021"}).
		AddSeries("CA", []float64{10, math.NaN(), 15}, "").
		AddSeries("TX", []float64{8, 9, 12}, "")

	out := chart.Render()
	assert.Contains(t, out, "Overdose deaths per 100k")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "■")
	assert.Contains(t, out, "Jan 2019")
	assert.Contains(t, out, "Legend:")
}

func TestASCIIChart_NoData(t *testing.T) {
	chart := NewASCIIChart("empty").AddSeries("CA", []float64{math.NaN()}, "")
	assert.Contains(t, chart.Render(), "No data to display")
}

func TestASCIIChart_SinglePoint(t *testing.T) {
	chart := NewASCIIChart("").AddSeries("CA", []float64{3}, "")
	assert.Contains(t, chart.Render(), "●")
}

func TestHeatmap_Render(t *testing.T) {
	hm := NewHeatmap("Mean rate by band",
		[]string{"Greatly", "Increased"},
		[]string{"2019-01", "2023-01"},
		[][]float64{{10, 15}, {math.NaN(), 20}})

	out := hm.Render()
	assert.Contains(t, out, "Greatly")
	assert.Contains(t, out, "2019-01")
	assert.Contains(t, out, "2023-01")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "20.00")
	assert.Contains(t, out, "░░")
}

func TestMetricGrid(t *testing.T) {
	out := MetricGrid([]*MetricCard{
		NewMetricCard("States", "51"),
		NewMetricCard("Readings", "1200").WithNote("4 suppressed"),
	}, 2)
	assert.Contains(t, out, "States")
	assert.Contains(t, out, "4 suppressed")
	assert.Empty(t, MetricGrid(nil, 2))
}
