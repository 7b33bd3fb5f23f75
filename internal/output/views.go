package output

import (
	"math"
	"sort"
	"time"

	"github.com/rgehrsitz/opioid-eda/internal/calculation"
	"github.com/rgehrsitz/opioid-eda/internal/domain"
)

// TopStates returns up to n state codes ordered by their snapshot rate,
// highest first. Ties break on code.
func TopStates(rep *domain.Report, n int) []string {
	snap := append([]domain.DerivedRate(nil), rep.Snapshot...)
	sort.Slice(snap, func(i, j int) bool {
		if c := snap[i].ValuePer100k.Cmp(snap[j].ValuePer100k); c != 0 {
			return c > 0
		}
		return snap[i].StateCode < snap[j].StateCode
	})

	var out []string
	for _, r := range snap {
		if len(out) == n {
			break
		}
		out = append(out, r.StateCode)
	}
	return out
}

// StateSeries aligns the overdose readings of the given states on the
// report's dates. Missing readings are NaN.
func StateSeries(rep *domain.Report, codes []string) ([]time.Time, map[string][]float64) {
	dates := calculation.Dates(rep.OverdoseSeries)
	col := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		col[d] = i
	}

	out := make(map[string][]float64, len(codes))
	for _, code := range codes {
		out[code] = nanRow(len(dates))
	}
	for _, r := range rep.OverdoseSeries {
		if row, ok := out[r.StateCode]; ok {
			row[col[r.Date]] = r.ValuePer100k.InexactFloat64()
		}
	}
	return dates, out
}

// BandGrid lays the per-band mean rates out as band rows by date columns
func BandGrid(rep *domain.Report) ([]domain.PrescribingChangeBand, []time.Time, [][]float64) {
	seenDate := make(map[time.Time]bool)
	seenBand := make(map[domain.PrescribingChangeBand]bool)
	var dates []time.Time
	for _, p := range rep.BandTrend {
		if !seenDate[p.Date] {
			seenDate[p.Date] = true
			dates = append(dates, p.Date)
		}
		seenBand[p.Band] = true
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var bands []domain.PrescribingChangeBand
	for _, b := range domain.Bands {
		if seenBand[b] {
			bands = append(bands, b)
		}
	}

	rowOf := make(map[domain.PrescribingChangeBand]int, len(bands))
	grid := make([][]float64, len(bands))
	for i, b := range bands {
		rowOf[b] = i
		grid[i] = nanRow(len(dates))
	}
	colOf := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		colOf[d] = i
	}
	for _, p := range rep.BandTrend {
		grid[rowOf[p.Band]][colOf[p.Date]] = p.MeanPer100k.InexactFloat64()
	}
	return bands, dates, grid
}

func nanRow(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = math.NaN()
	}
	return row
}
