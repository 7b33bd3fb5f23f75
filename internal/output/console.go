package output

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
	"github.com/rgehrsitz/opioid-eda/internal/tui/components"
	"github.com/rgehrsitz/opioid-eda/internal/tui/tuistyles"
)

// ConsoleFormatter renders the report with terminal charts and tables
type ConsoleFormatter struct {
	// TopStates caps the number of lines in the overdose trend chart
	TopStates int
	Width     int
}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(rep *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	for i, s := range c.Sections(rep) {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(s.Body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Section is one titled block of the console report. The browser shows
// one section per page.
type Section struct {
	Name string
	Body string
}

// Sections renders the report as an ordered list of blocks
func (c ConsoleFormatter) Sections(rep *domain.Report) []Section {
	if c.TopStates <= 0 {
		c.TopStates = 8
	}
	if c.Width <= 0 {
		c.Width = 72
	}
	overview := tuistyles.TitleStyle.Render(rep.Title) + "\n" +
		tuistyles.SubtitleStyle.Render(fmt.Sprintf("Cause: %s · Plan type: %s · Change window: %s to %s",
			rep.CauseOfDeath, rep.PlanType, FormatMonth(rep.EarlierDate), FormatMonth(rep.LaterDate))) +
		"\n\n" + components.MetricGrid(headlineCards(rep), 4)

	return []Section{
		{Name: "Overview", Body: overview},
		{Name: "Providers", Body: c.providerChart(rep)},
		{Name: "Trend", Body: c.trendChart(rep)},
		{Name: "Snapshot", Body: c.snapshotChart(rep)},
		{Name: "Bands", Body: c.bandHeatmap(rep)},
		{Name: "Change", Body: c.changeChart(rep)},
		{Name: "Change vs providers", Body: changeVsProvidersTable(rep)},
		{Name: "Summary", Body: summaryTable(rep)},
		{Name: "Diagnostics", Body: DiagnosticsTable(rep.Diagnostics)},
	}
}

func headlineCards(rep *domain.Report) []*components.MetricCard {
	missing := 0
	for _, s := range rep.Diagnostics.Sources {
		missing += s.MissingMeasurements
	}
	return []*components.MetricCard{
		components.NewMetricCard("States with population", strconv.Itoa(len(rep.Providers))),
		components.NewMetricCard("Overdose readings", strconv.Itoa(len(rep.OverdoseSeries))).
			WithNote(fmt.Sprintf("%d suppressed", missing)),
		components.NewMetricCard("Banded states", strconv.Itoa(len(rep.Bands))),
		components.NewMetricCard("States compared", strconv.Itoa(len(rep.ChangeByBand))),
	}
}

func (c ConsoleFormatter) barWidth() int {
	return max(c.Width-30, 10)
}

func (c ConsoleFormatter) providerChart(rep *domain.Report) string {
	rows := append([]domain.ProviderDensityRow(nil), rep.Providers...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ValuePer100k.GreaterThan(rows[j].ValuePer100k) })

	chart := components.NewBarChart("Treatment providers per 100k residents")
	chart.Width = c.barWidth()
	for _, r := range rows {
		chart.Add(r.StateCode, r.ValuePer100k.InexactFloat64(), tuistyles.ColorSecondary)
	}
	return chart.Render()
}

func (c ConsoleFormatter) trendChart(rep *domain.Report) string {
	codes := TopStates(rep, c.TopStates)
	dates, series := StateSeries(rep, codes)

	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = FormatMonth(d)
	}
	chart := components.NewASCIIChart(fmt.Sprintf("%s deaths per 100k, trailing 12 months (top %d states at %s)",
		rep.CauseOfDeath, len(codes), FormatMonth(rep.LaterDate))).
		WithSize(c.Width, 15).
		WithLabels(labels)
	for i, code := range codes {
		chart.AddSeries(code, series[code], tuistyles.ChartColors[i%len(tuistyles.ChartColors)])
	}
	return chart.Render()
}

func (c ConsoleFormatter) snapshotChart(rep *domain.Report) string {
	chart := components.NewBarChart(fmt.Sprintf("%s deaths per 100k by state, %s", rep.CauseOfDeath, FormatMonth(rep.LaterDate)))
	chart.Width = c.barWidth()
	for _, code := range TopStates(rep, len(rep.Snapshot)) {
		for _, r := range rep.Snapshot {
			if r.StateCode == code {
				chart.Add(code, r.ValuePer100k.InexactFloat64(), tuistyles.ColorAccent)
			}
		}
	}
	return chart.Render()
}

func (c ConsoleFormatter) bandHeatmap(rep *domain.Report) string {
	bands, dates, grid := BandGrid(rep)
	rows := make([]string, len(bands))
	for i, b := range bands {
		rows[i] = b.Label()
	}
	cols := make([]string, len(dates))
	for i, d := range dates {
		cols[i] = FormatMonth(d)
	}
	hm := components.NewHeatmap("Mean overdose deaths per 100k by prescribing change", rows, cols, grid)
	if len(dates) > 0 && len(dates)*2 < c.barWidth() {
		hm.TileWidth = 3
	}
	return hm.Render()
}

func (c ConsoleFormatter) changeChart(rep *domain.Report) string {
	rows := append([]domain.ChangeByBandRow(nil), rep.ChangeByBand...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Band != rows[j].Band {
			return rows[i].Band < rows[j].Band
		}
		return rows[i].PercentChange.GreaterThan(rows[j].PercentChange)
	})

	chart := components.NewBarChart(fmt.Sprintf("%s rate at %s as %% of %s, by prescribing change",
		rep.CauseOfDeath, FormatMonth(rep.LaterDate), FormatMonth(rep.EarlierDate)))
	chart.Width = c.barWidth()
	chart.Format = func(v float64) string { return fmt.Sprintf("%.1f%%", v) }
	chart.WithMarker(100)
	for _, r := range rows {
		chart.Add(r.StateCode, r.PercentChange.InexactFloat64(), tuistyles.BandColor(r.Band))
	}

	var legend []string
	for _, b := range domain.Bands {
		legend = append(legend, lipgloss.NewStyle().Foreground(tuistyles.BandColor(b)).Render("█ "+b.Label()))
	}
	return chart.Render() + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, joinSpaced(legend)...)
}

func joinSpaced(items []string) []string {
	out := make([]string, 0, 2*len(items))
	for i, it := range items {
		if i > 0 {
			out = append(out, "   ")
		}
		out = append(out, it)
	}
	return out
}

func styledTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tuistyles.ColorBorder)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tuistyles.TableHeaderStyle
			}
			return tuistyles.TableCellStyle
		})
}

func changeVsProvidersTable(rep *domain.Report) string {
	t := styledTable("State", "Earlier", "Later", "Later as % of earlier", "Providers per 100k")
	for _, r := range rep.ChangeVsProviders {
		t.Row(r.StateName, FormatRate(r.Earlier), FormatRate(r.Later), FormatPercentage(r.PercentChange), FormatRate(r.ProvidersPer100k))
	}
	return tuistyles.TitleStyle.Render("Overdose rate change against provider density") + "\n" + t.String()
}

func summaryTable(rep *domain.Report) string {
	t := styledTable("State", "Year", "Deaths", "Population", "Per 100k")
	for _, r := range rep.Summary {
		t.Row(r.StateName, strconv.Itoa(r.ObservedYear), r.Deaths.StringFixed(0), FormatCount(r.Population), FormatRate(r.ValuePer100k))
	}
	return tuistyles.TitleStyle.Render("Annual "+rep.CauseOfDeath+" deaths by state") + "\n" + t.String()
}

// DiagnosticsTable renders per-source row accounting
func DiagnosticsTable(d domain.Diagnostics) string {
	t := styledTable("Source", "Rows", "Loaded", "Dropped", "Unresolved", "Suppressed")
	for _, s := range d.Sources {
		t.Row(s.Source, strconv.Itoa(s.Rows), strconv.Itoa(s.Loaded), strconv.Itoa(s.Dropped),
			strconv.Itoa(s.UnresolvedKeys), strconv.Itoa(s.MissingMeasurements))
	}
	out := tuistyles.TitleStyle.Render("Diagnostics") + "\n" + t.String()
	if len(d.UnresolvedCodes) > 0 {
		out += "\n" + tuistyles.InfoStyle.Render(fmt.Sprintf("States without population: %v", d.UnresolvedCodes))
	}
	return out
}
