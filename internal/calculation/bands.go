package calculation

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
)

// Band thresholds are fixed by the analysis and deliberately not configurable.
var (
	greatlyDecreasedBelow    = decimal.RequireFromString("-3.2")
	moderatelyDecreasedBelow = decimal.RequireFromString("-2.4")
)

// ClassifyChange buckets a five-year prescribing-rate change. Rules are
// evaluated in order and the first match wins:
//
//	change < -3.2         GreatlyDecreased
//	-3.2 <= change < -2.4 ModeratelyDecreased
//	-2.4 <= change < 0    SlightlyDecreased
//	change >= 0           Increased
func ClassifyChange(change decimal.Decimal) domain.PrescribingChangeBand {
	switch {
	case change.LessThan(greatlyDecreasedBelow):
		return domain.GreatlyDecreased
	case change.LessThan(moderatelyDecreasedBelow):
		return domain.ModeratelyDecreased
	case change.IsNegative():
		return domain.SlightlyDecreased
	default:
		return domain.Increased
	}
}

// NameResolver maps a state name to its code
type NameResolver interface {
	ResolveByName(name string) (string, error)
}

// LatestYear is the most recent year among records of the plan type, or
// zero when there are none
func LatestYear(records []domain.PrescribingRecord, planType string) int {
	latest := 0
	for _, r := range records {
		if strings.EqualFold(r.PlanType, planType) && r.Year > latest {
			latest = r.Year
		}
	}
	return latest
}

// PrescribingBands classifies each state's change for the plan type in the
// most recent year. Records whose state name does not resolve are skipped;
// a state listed twice keeps its first record.
func (ce *CalculationEngine) PrescribingBands(records []domain.PrescribingRecord, planType string, resolver NameResolver) []domain.BandAssignment {
	year := LatestYear(records, planType)
	seen := make(map[string]bool)

	var out []domain.BandAssignment
	for _, r := range records {
		if r.Year != year || !strings.EqualFold(r.PlanType, planType) {
			continue
		}
		code, err := resolver.ResolveByName(r.StateName)
		if err != nil {
			ce.debugf("prescribing bands: %v", err)
			continue
		}
		if seen[code] {
			ce.debugf("prescribing bands: duplicate %s record for %s in %d", planType, code, year)
			continue
		}
		seen[code] = true
		out = append(out, domain.BandAssignment{
			StateCode:     code,
			StateName:     r.StateName,
			Year:          r.Year,
			Rate5YrChange: r.Rate5YrChange,
			Band:          ClassifyChange(r.Rate5YrChange),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StateCode < out[j].StateCode })
	return out
}

type bandDate struct {
	band domain.PrescribingChangeBand
	date time.Time
}

// MeanByBand averages the tagged readings of each band at each date,
// ordered by band then date
func MeanByBand(rows []domain.TrendByBandRow) []domain.BandTrendPoint {
	sums := make(map[bandDate]decimal.Decimal)
	counts := make(map[bandDate]int)
	for _, r := range rows {
		key := bandDate{band: r.Band, date: r.Date}
		sums[key] = sums[key].Add(r.ValuePer100k)
		counts[key]++
	}

	out := make([]domain.BandTrendPoint, 0, len(sums))
	for key, sum := range sums {
		n := counts[key]
		out = append(out, domain.BandTrendPoint{
			Band:        key.band,
			Date:        key.date,
			States:      n,
			MeanPer100k: sum.Div(decimal.NewFromInt(int64(n))),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Band != out[j].Band {
			return out[i].Band < out[j].Band
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
