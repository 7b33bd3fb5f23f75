package calculation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
)

var monthsByName = func() map[string]time.Month {
	m := make(map[string]time.Month, 24)
	for mo := time.January; mo <= time.December; mo++ {
		name := strings.ToLower(mo.String())
		m[name] = mo
		m[name[:3]] = mo
	}
	m["sept"] = time.September
	return m
}()

// ParseMonth accepts a month name ("January"), abbreviation ("Jan",
// "Jan.") or number ("1", "01").
func ParseMonth(s string) (time.Month, error) {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if mo, ok := monthsByName[key]; ok {
		return mo, nil
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 12 {
		return time.Month(n), nil
	}
	return 0, fmt.Errorf("unrecognised month %q", s)
}

// MonthStart is the first day of the month in UTC
func MonthStart(month time.Month, year int) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// ParseMonthYear normalises a (month, year) pair to the first of the month
func ParseMonthYear(month string, year int) (time.Time, error) {
	mo, err := ParseMonth(month)
	if err != nil {
		return time.Time{}, err
	}
	return MonthStart(mo, year), nil
}

// ParseDate reads a month-resolution date written as "2022-01",
// "2022-01-01", "January 2022" or "Jan 2022".
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthStart(t.Month(), t.Year()), nil
		}
	}
	fields := strings.Fields(s)
	if len(fields) == 2 {
		if year, err := strconv.Atoi(fields[1]); err == nil {
			return ParseMonthYear(fields[0], year)
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q (want YYYY-MM or \"Month YYYY\")", s)
}

// ObservedYear is the calendar year the deaths of a trailing 12-month
// reading occurred in. A January reading covers the whole prior year.
func ObservedYear(date time.Time) int {
	if date.Month() == time.January {
		return date.Year() - 1
	}
	return date.Year()
}

// Dates returns the distinct dates present in rates, ascending
func Dates(rates []domain.DerivedRate) []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, r := range rates {
		if !seen[r.Date] {
			seen[r.Date] = true
			out = append(out, r.Date)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// FullSeries returns every reading ordered by state then date, one row per
// (state, date). The input is not modified.
func FullSeries(rates []domain.DerivedRate) []domain.DerivedRate {
	out := make([]domain.DerivedRate, len(rates))
	copy(out, rates)
	SortRates(out)
	return out
}

// Snapshot keeps the readings taken at date
func Snapshot(rates []domain.DerivedRate, date time.Time) []domain.DerivedRate {
	var out []domain.DerivedRate
	for _, r := range rates {
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out
}

// PercentOf returns 100 * later / earlier. It is undefined (false) for a
// zero earlier value.
func PercentOf(earlier, later decimal.Decimal) (decimal.Decimal, bool) {
	if earlier.IsZero() {
		return decimal.Zero, false
	}
	return later.Mul(hundred).Div(earlier), true
}

// PercentChange compares each state's rate at two fixed dates. States
// missing either reading are left out; nothing is extrapolated.
func PercentChange(rates []domain.DerivedRate, earlier, later time.Time) []domain.ChangeRow {
	before := make(map[string]decimal.Decimal)
	for _, r := range Snapshot(rates, earlier) {
		before[r.StateCode] = r.ValuePer100k
	}

	var out []domain.ChangeRow
	for _, r := range Snapshot(rates, later) {
		prev, ok := before[r.StateCode]
		if !ok {
			continue
		}
		pct, ok := PercentOf(prev, r.ValuePer100k)
		if !ok {
			continue
		}
		out = append(out, domain.ChangeRow{
			StateCode:     r.StateCode,
			Earlier:       prev,
			Later:         r.ValuePer100k,
			PercentChange: pct,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StateCode < out[j].StateCode })
	return out
}

// AnnualSummary attributes every January reading to its observed year.
// Rows are ordered by state, then year.
func AnnualSummary(rates []domain.DerivedRate) []domain.AnnualSummaryRow {
	var out []domain.AnnualSummaryRow
	for _, r := range rates {
		if r.Date.Month() != time.January {
			continue
		}
		out = append(out, domain.AnnualSummaryRow{
			StateCode:    r.StateCode,
			ObservedYear: ObservedYear(r.Date),
			Deaths:       r.Count,
			Population:   r.Population,
			ValuePer100k: r.ValuePer100k,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StateCode != out[j].StateCode {
			return out[i].StateCode < out[j].StateCode
		}
		return out[i].ObservedYear < out[j].ObservedYear
	})
	return out
}
