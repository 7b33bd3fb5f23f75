package calculation

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
)

var (
	per100k = decimal.NewFromInt(100000)
	hundred = decimal.NewFromInt(100)
)

// Exclusions counts rows a computation left out of its output
type Exclusions struct {
	MissingMeasurements int
	// Unjoined lists distinct state codes with no usable population
	Unjoined []string
}

func (e *Exclusions) unjoined(code string) {
	for _, c := range e.Unjoined {
		if c == code {
			return
		}
	}
	e.Unjoined = append(e.Unjoined, code)
}

// RatePer100k scales count by population. Population must be positive.
func RatePer100k(count decimal.Decimal, population int64) (decimal.Decimal, bool) {
	if population <= 0 {
		return decimal.Zero, false
	}
	return count.Mul(per100k).Div(decimal.NewFromInt(population)), true
}

// populationIndex keeps usable (positive) populations by code
func populationIndex(population []domain.PopulationRecord) map[string]int64 {
	idx := make(map[string]int64, len(population))
	for _, p := range population {
		if p.Population > 0 {
			idx[p.StateCode] = p.Population
		}
	}
	return idx
}

// ProviderDensity counts enrollments per state and right-joins them onto
// the population table: every populated state appears, and a state with no
// enrollments gets an explicit zero rate.
func (ce *CalculationEngine) ProviderDensity(providers []domain.ProviderRecord, population []domain.PopulationRecord) ([]domain.ProviderDensityRow, Exclusions) {
	var ex Exclusions
	pops := populationIndex(population)

	counts := make(map[string]int64)
	for _, p := range providers {
		counts[p.StateCode]++
	}
	for code := range counts {
		if _, ok := pops[code]; !ok {
			ex.unjoined(code)
		}
	}
	sort.Strings(ex.Unjoined)

	out := make([]domain.ProviderDensityRow, 0, len(pops))
	for code, pop := range pops {
		n := counts[code]
		rate, _ := RatePer100k(decimal.NewFromInt(n), pop)
		out = append(out, domain.ProviderDensityRow{
			StateCode:    code,
			Population:   pop,
			Providers:    n,
			ValuePer100k: rate,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StateCode < out[j].StateCode })

	if len(ex.Unjoined) > 0 {
		ce.logger().Infof("provider density: %d state codes without population: %v", len(ex.Unjoined), ex.Unjoined)
	}
	return out, ex
}

// MatchesCause reports whether an indicator label belongs to the cause
// category. "Opioids" matches both "Opioids" and the coded form
// "Opioids (T40.0-T40.4,T40.6)". An empty cause matches everything.
func MatchesCause(label, cause string) bool {
	cause = strings.ToLower(strings.TrimSpace(cause))
	if cause == "" {
		return true
	}
	label = strings.ToLower(strings.TrimSpace(label))
	return label == cause || strings.HasPrefix(label, cause+" (")
}

type stateDate struct {
	code string
	date time.Time
}

// OverdoseDensity sums death counts for the cause by state and month and
// inner-joins the totals against population. Suppressed counts are
// excluded, never read as zero, so a state whose counts are all suppressed
// produces no rows at all.
func (ce *CalculationEngine) OverdoseDensity(overdoses []domain.OverdoseRecord, population []domain.PopulationRecord, cause string) ([]domain.DerivedRate, Exclusions) {
	var ex Exclusions
	pops := populationIndex(population)

	sums := make(map[stateDate]decimal.Decimal)
	for _, r := range overdoses {
		if !MatchesCause(r.CauseOfDeath, cause) {
			continue
		}
		if !r.DeathCount.Valid {
			ex.MissingMeasurements++
			ce.debugf("overdose density: %s %s count suppressed", r.StateCode, r.Date().Format("2006-01"))
			continue
		}
		key := stateDate{code: r.StateCode, date: r.Date()}
		sums[key] = sums[key].Add(r.DeathCount.Decimal)
	}

	out := make([]domain.DerivedRate, 0, len(sums))
	for key, total := range sums {
		pop, ok := pops[key.code]
		if !ok {
			ex.unjoined(key.code)
			continue
		}
		rate, _ := RatePer100k(total, pop)
		out = append(out, domain.DerivedRate{
			StateCode:    key.code,
			Date:         key.date,
			Count:        total,
			Population:   pop,
			ValuePer100k: rate,
		})
	}
	sort.Strings(ex.Unjoined)
	SortRates(out)

	ce.logger().Infof("overdose density: %d readings, %d suppressed counts excluded, %d states without population",
		len(out), ex.MissingMeasurements, len(ex.Unjoined))
	return out, ex
}

// SortRates orders rates by state, then date
func SortRates(rates []domain.DerivedRate) {
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].StateCode != rates[j].StateCode {
			return rates[i].StateCode < rates[j].StateCode
		}
		return rates[i].Date.Before(rates[j].Date)
	})
}
