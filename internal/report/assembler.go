// Package report joins the derived tables into the views of an
// exploratory report and runs the end-to-end pipeline.
package report

import (
	"sort"
	"time"

	"github.com/rgehrsitz/opioid-eda/internal/calculation"
	"github.com/rgehrsitz/opioid-eda/internal/domain"
	"github.com/rgehrsitz/opioid-eda/internal/logging"
	"github.com/rgehrsitz/opioid-eda/internal/states"
)

// Inputs are the decoded records of the four sources along with the
// decoder statistics for each
type Inputs struct {
	Prescribing []domain.PrescribingRecord
	Overdose    []domain.OverdoseRecord
	Providers   []domain.ProviderRecord
	Population  []domain.PopulationRecord
	Stats       []domain.SourceStats
}

// Options parameterise assembly
type Options struct {
	Title        string
	CauseOfDeath string
	PlanType     string
	EarlierDate  time.Time
	LaterDate    time.Time
}

// Assembler builds a Report from decoded inputs
type Assembler struct {
	Calc     *calculation.CalculationEngine
	Resolver *states.Resolver
	Logger   logging.Logger
	// Now stamps GeneratedAt; tests pin it
	Now func() time.Time
}

// NewAssembler creates an assembler over the state reference
func NewAssembler(resolver *states.Resolver, logger logging.Logger) *Assembler {
	calc := calculation.NewCalculationEngine()
	calc.SetLogger(logger)
	return &Assembler{
		Calc:     calc,
		Resolver: resolver,
		Logger:   logging.OrNop(logger),
		Now:      time.Now,
	}
}

// Assemble runs the computations in dependency order and joins their
// outputs. Every join is an inner join on state code, except the provider
// view which keeps every populated state.
func (a *Assembler) Assemble(in Inputs, opts Options) *domain.Report {
	rep := &domain.Report{
		Title:        opts.Title,
		GeneratedAt:  a.Now().UTC(),
		CauseOfDeath: opts.CauseOfDeath,
		PlanType:     opts.PlanType,
		EarlierDate:  opts.EarlierDate,
		LaterDate:    opts.LaterDate,
	}

	providers, provEx := a.Calc.ProviderDensity(in.Providers, in.Population)
	for i := range providers {
		providers[i].StateName = a.name(providers[i].StateCode)
	}
	rep.Providers = providers

	series, odEx := a.Calc.OverdoseDensity(in.Overdose, in.Population, opts.CauseOfDeath)
	rep.OverdoseSeries = calculation.FullSeries(series)
	rep.Snapshot = calculation.Snapshot(series, opts.LaterDate)

	rep.Bands = a.Calc.PrescribingBands(in.Prescribing, opts.PlanType, a.Resolver)
	bandOf := make(map[string]domain.PrescribingChangeBand, len(rep.Bands))
	for _, b := range rep.Bands {
		bandOf[b.StateCode] = b.Band
	}

	rep.TrendByBand = TrendByBand(series, bandOf)
	rep.BandTrend = calculation.MeanByBand(rep.TrendByBand)

	changes := calculation.PercentChange(series, opts.EarlierDate, opts.LaterDate)
	for i := range changes {
		changes[i].StateName = a.name(changes[i].StateCode)
	}
	rep.ChangeByBand = ChangeByBand(changes, bandOf)
	rep.ChangeVsProviders = ChangeVsProviders(changes, providers)

	rep.Summary = calculation.AnnualSummary(series)
	for i := range rep.Summary {
		rep.Summary[i].StateName = a.name(rep.Summary[i].StateCode)
	}

	rep.Diagnostics = diagnostics(in.Stats, provEx, odEx)

	a.Logger.Infof("assembled report: %d provider rows, %d overdose readings, %d banded states, %d percent changes",
		len(rep.Providers), len(rep.OverdoseSeries), len(rep.Bands), len(changes))
	if len(changes) == 0 {
		a.Logger.Warnf("no state has overdose readings at both %s and %s",
			opts.EarlierDate.Format("2006-01"), opts.LaterDate.Format("2006-01"))
	}
	return rep
}

func (a *Assembler) name(code string) string {
	name, err := a.Resolver.ResolveByCode(code)
	if err != nil {
		return code
	}
	return name
}

// TrendByBand tags every overdose reading with its state's band. States
// without a band are left out.
func TrendByBand(series []domain.DerivedRate, bandOf map[string]domain.PrescribingChangeBand) []domain.TrendByBandRow {
	var out []domain.TrendByBandRow
	for _, r := range series {
		band, ok := bandOf[r.StateCode]
		if !ok {
			continue
		}
		out = append(out, domain.TrendByBandRow{
			StateCode:    r.StateCode,
			Date:         r.Date,
			ValuePer100k: r.ValuePer100k,
			Band:         band,
		})
	}
	return out
}

// ChangeByBand joins percent changes with prescribing bands
func ChangeByBand(changes []domain.ChangeRow, bandOf map[string]domain.PrescribingChangeBand) []domain.ChangeByBandRow {
	var out []domain.ChangeByBandRow
	for _, c := range changes {
		band, ok := bandOf[c.StateCode]
		if !ok {
			continue
		}
		out = append(out, domain.ChangeByBandRow{ChangeRow: c, Band: band})
	}
	return out
}

// ChangeVsProviders joins percent changes with provider density
func ChangeVsProviders(changes []domain.ChangeRow, providers []domain.ProviderDensityRow) []domain.ChangeVsProvidersRow {
	density := make(map[string]domain.ProviderDensityRow, len(providers))
	for _, p := range providers {
		density[p.StateCode] = p
	}

	var out []domain.ChangeVsProvidersRow
	for _, c := range changes {
		p, ok := density[c.StateCode]
		if !ok {
			continue
		}
		out = append(out, domain.ChangeVsProvidersRow{ChangeRow: c, ProvidersPer100k: p.ValuePer100k})
	}
	return out
}

// diagnostics pairs the decoder statistics with the state codes the
// population joins left out
func diagnostics(stats []domain.SourceStats, provEx, odEx calculation.Exclusions) domain.Diagnostics {
	out := domain.Diagnostics{Sources: append([]domain.SourceStats(nil), stats...)}

	seen := make(map[string]bool)
	for _, code := range append(append([]string(nil), provEx.Unjoined...), odEx.Unjoined...) {
		if !seen[code] {
			seen[code] = true
			out.UnresolvedCodes = append(out.UnresolvedCodes, code)
		}
	}
	sort.Strings(out.UnresolvedCodes)
	return out
}
