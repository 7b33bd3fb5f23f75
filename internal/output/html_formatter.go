package output

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"math"
	"sort"
	"strings"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
	"github.com/rgehrsitz/opioid-eda/internal/tui/components"
	"github.com/rgehrsitz/opioid-eda/internal/tui/tuistyles"
)

// HTMLFormatter produces a standalone HTML page with inline charts
type HTMLFormatter struct {
	TopStates int
}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"rate":  FormatRate,
	"pct":   FormatPercentage,
	"month": FormatMonth,
	"count": FormatCount,
}).Parse(htmlTemplateSource))

type htmlBar struct {
	Label string
	Value string
	Width float64
	Color string
}

type htmlTile struct {
	Value string
	Color string
}

type htmlHeatRow struct {
	Label string
	Tiles []htmlTile
}

type htmlLegend struct {
	Label string
	Color string
}

func (h HTMLFormatter) Format(rep *domain.Report) ([]byte, error) {
	top := h.TopStates
	if top <= 0 {
		top = 8
	}

	bands, dates, grid := BandGrid(rep)
	heat := make([]htmlHeatRow, len(bands))
	lo, hi := gridRange(grid)
	for i, b := range bands {
		heat[i].Label = b.Label()
		for _, v := range grid[i] {
			if math.IsNaN(v) {
				heat[i].Tiles = append(heat[i].Tiles, htmlTile{})
				continue
			}
			idx := components.RampIndex(v, lo, hi, len(tuistyles.HeatRamp))
			heat[i].Tiles = append(heat[i].Tiles, htmlTile{
				Value: fmt.Sprintf("%.2f", v),
				Color: string(tuistyles.HeatRamp[idx]),
			})
		}
	}
	heatCols := make([]string, len(dates))
	for i, d := range dates {
		heatCols[i] = FormatMonth(d)
	}

	var legend []htmlLegend
	for _, b := range domain.Bands {
		legend = append(legend, htmlLegend{Label: b.Label(), Color: string(tuistyles.BandColor(b))})
	}

	data := struct {
		*domain.Report
		ProviderBars []htmlBar
		ChangeBars   []htmlBar
		TrendSVG     template.HTML
		HeatCols     []string
		HeatRows     []htmlHeatRow
		BandLegend   []htmlLegend
	}{
		Report:       rep,
		ProviderBars: providerBars(rep),
		ChangeBars:   changeBars(rep),
		TrendSVG:     trendSVG(rep, top),
		HeatCols:     heatCols,
		HeatRows:     heat,
		BandLegend:   legend,
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gridRange(grid [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range grid {
		for _, v := range row {
			if !math.IsNaN(v) {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
		}
	}
	return lo, hi
}

func scaleBars(bars []htmlBar, values []float64) []htmlBar {
	maxVal := 0.0
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	for i, v := range values {
		if maxVal > 0 && v > 0 {
			bars[i].Width = math.Round(v/maxVal*1000) / 10
		}
	}
	return bars
}

func providerBars(rep *domain.Report) []htmlBar {
	rows := append([]domain.ProviderDensityRow(nil), rep.Providers...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ValuePer100k.GreaterThan(rows[j].ValuePer100k) })

	bars := make([]htmlBar, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		bars[i] = htmlBar{Label: r.StateName, Value: FormatRate(r.ValuePer100k), Color: string(tuistyles.ColorSecondary)}
		values[i] = r.ValuePer100k.InexactFloat64()
	}
	return scaleBars(bars, values)
}

func changeBars(rep *domain.Report) []htmlBar {
	rows := append([]domain.ChangeByBandRow(nil), rep.ChangeByBand...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Band != rows[j].Band {
			return rows[i].Band < rows[j].Band
		}
		return rows[i].PercentChange.GreaterThan(rows[j].PercentChange)
	})

	bars := make([]htmlBar, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		bars[i] = htmlBar{Label: r.StateName, Value: FormatPercentage(r.PercentChange), Color: string(tuistyles.BandColor(r.Band))}
		values[i] = r.PercentChange.InexactFloat64()
	}
	return scaleBars(bars, values)
}

// trendSVG draws the top states' overdose series as polylines
func trendSVG(rep *domain.Report, top int) template.HTML {
	const width, height, pad = 720.0, 280.0, 40.0

	codes := TopStates(rep, top)
	dates, series := StateSeries(rep, codes)
	if len(dates) == 0 {
		return template.HTML(`<p class="muted">No overdose readings.</p>`)
	}
	_, hi := gridRange(mapValues(series, codes))
	if hi <= 0 {
		hi = 1
	}

	x := func(i int) float64 {
		if len(dates) == 1 {
			return pad
		}
		return pad + float64(i)/float64(len(dates)-1)*(width-2*pad)
	}
	y := func(v float64) float64 { return height - pad - v/hi*(height-2*pad) }

	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %.0f %.0f" class="chart" role="img">`, width, height)
	fmt.Fprintf(&b, `<line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" class="axis"/>`, pad, height-pad, width-pad, height-pad)
	fmt.Fprintf(&b, `<line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" class="axis"/>`, pad, pad, pad, height-pad)
	fmt.Fprintf(&b, `<text x="4" y="%.0f" class="tick">%.1f</text>`, pad, hi)
	fmt.Fprintf(&b, `<text x="%.0f" y="%.0f" class="tick">%s</text>`, pad, height-pad/3, template.HTMLEscapeString(FormatMonth(dates[0])))
	fmt.Fprintf(&b, `<text x="%.0f" y="%.0f" class="tick" text-anchor="end">%s</text>`, width-pad, height-pad/3, template.HTMLEscapeString(FormatMonth(dates[len(dates)-1])))

	for n, code := range codes {
		color := tuistyles.ChartColors[n%len(tuistyles.ChartColors)]
		var pts []string
		for i, v := range series[code] {
			if !math.IsNaN(v) {
				pts = append(pts, fmt.Sprintf("%.1f,%.1f", x(i), y(v)))
			}
		}
		fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="2" points="%s"><title>%s</title></polyline>`,
			color, strings.Join(pts, " "), template.HTMLEscapeString(code))
		fmt.Fprintf(&b, `<text x="%.0f" y="%.0f" class="legend" fill="%s">%s</text>`,
			width-pad+4, pad+float64(n)*14, color, template.HTMLEscapeString(code))
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

func mapValues(series map[string][]float64, codes []string) [][]float64 {
	out := make([][]float64, 0, len(codes))
	for _, c := range codes {
		out = append(out, series[c])
	}
	return out
}
