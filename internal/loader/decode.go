package loader

import (
	"github.com/rgehrsitz/opioid-eda/internal/calculation"
	"github.com/rgehrsitz/opioid-eda/internal/domain"
	"github.com/rgehrsitz/opioid-eda/internal/errors"
	"github.com/rgehrsitz/opioid-eda/internal/logging"
)

// StateResolver is the subset of the state reference the decoders need
type StateResolver interface {
	ResolveByName(name string) (string, error)
	ResolveByCode(code string) (string, error)
	Canonical(code string) (string, bool)
}

// PrescribingColumns names the prescribing-rate source columns
type PrescribingColumns struct {
	State    string `yaml:"state" validate:"required"`
	PlanType string `yaml:"plan_type" validate:"required"`
	Year     string `yaml:"year" validate:"required"`
	Change   string `yaml:"rate_5yr_change" validate:"required"`
}

// OverdoseColumns names the provisional overdose source columns
type OverdoseColumns struct {
	State string `yaml:"state" validate:"required"`
	Year  string `yaml:"year" validate:"required"`
	Month string `yaml:"month" validate:"required"`
	Cause string `yaml:"cause" validate:"required"`
	Count string `yaml:"count" validate:"required"`
}

// ProviderColumns names the provider-registry source columns
type ProviderColumns struct {
	State string `yaml:"state" validate:"required"`
}

// PopulationColumns names the census population columns. State may hold
// names or postal codes.
type PopulationColumns struct {
	State      string `yaml:"state" validate:"required"`
	Population string `yaml:"population" validate:"required"`
}

// DefaultPrescribingColumns matches the Medicare Part D opioid prescribing export
func DefaultPrescribingColumns() PrescribingColumns {
	return PrescribingColumns{
		State:    "Geo_Desc",
		PlanType: "Plan_Type",
		Year:     "Year",
		Change:   "Opioid_Prscrbng_Rate_5Y_Chg",
	}
}

// DefaultOverdoseColumns matches the CDC VSRR provisional drug overdose export
func DefaultOverdoseColumns() OverdoseColumns {
	return OverdoseColumns{
		State: "State",
		Year:  "Year",
		Month: "Month",
		Cause: "Indicator",
		Count: "Data Value",
	}
}

// DefaultProviderColumns matches the opioid treatment program registry
func DefaultProviderColumns() ProviderColumns {
	return ProviderColumns{State: "STATE"}
}

// DefaultPopulationColumns matches the census 2020 state estimates
func DefaultPopulationColumns() PopulationColumns {
	return PopulationColumns{State: "NAME", Population: "POPESTIMATE2020"}
}

// Decoder turns Tables into domain records, canonicalising state
// identifiers. Rows whose state cannot be resolved are dropped.
type Decoder struct {
	Resolver StateResolver
	Logger   logging.Logger
}

// NewDecoder creates a decoder over a state reference
func NewDecoder(resolver StateResolver, logger logging.Logger) *Decoder {
	return &Decoder{Resolver: resolver, Logger: logging.OrNop(logger)}
}

func (d *Decoder) stats(source string, t *Table) domain.SourceStats {
	return domain.SourceStats{Source: source, Path: t.Source, Rows: t.Len()}
}

// resolveCode accepts a postal code or a full name
func (d *Decoder) resolveCode(raw string) (string, bool) {
	if code, ok := d.Resolver.Canonical(raw); ok {
		return code, true
	}
	code, err := d.Resolver.ResolveByName(raw)
	if err != nil {
		return "", false
	}
	return code, true
}

func (d *Decoder) drop(st *domain.SourceStats, row Row, err error) {
	st.Dropped++
	d.Logger.Debugf("%s: dropping line %d: %v", st.Source, row.Line, err)
}

func (d *Decoder) unresolved(st *domain.SourceStats, row Row, key string) {
	st.UnresolvedKeys++
	d.Logger.Debugf("%s: line %d: no state matches %q", st.Source, row.Line, key)
}

// Prescribing decodes the prescribing-rate table. StateName holds the
// canonical reference name.
func (d *Decoder) Prescribing(t *Table, cols PrescribingColumns) ([]domain.PrescribingRecord, domain.SourceStats, error) {
	st := d.stats("prescribing", t)
	if err := t.Require(cols.State, cols.PlanType, cols.Year, cols.Change); err != nil {
		return nil, st, err
	}

	out := make([]domain.PrescribingRecord, 0, t.Len())
	for _, row := range t.Rows {
		raw := row.String(cols.State)
		code, ok := d.resolveCode(raw)
		if !ok {
			d.unresolved(&st, row, raw)
			continue
		}
		name, _ := d.Resolver.ResolveByCode(code)

		year, err := row.Int(cols.Year)
		if err != nil {
			d.drop(&st, row, err)
			continue
		}
		change, err := row.Decimal(cols.Change)
		if err != nil {
			d.drop(&st, row, err)
			continue
		}
		out = append(out, domain.PrescribingRecord{
			StateName:     name,
			PlanType:      row.String(cols.PlanType),
			Year:          int(year),
			Rate5YrChange: change,
		})
	}
	st.Loaded = len(out)
	return out, st, nil
}

// Overdose decodes the provisional overdose table. Suppressed counts are
// kept as invalid NullDecimals and counted in the stats; aggregation
// excludes them.
func (d *Decoder) Overdose(t *Table, cols OverdoseColumns) ([]domain.OverdoseRecord, domain.SourceStats, error) {
	st := d.stats("overdose", t)
	if err := t.Require(cols.State, cols.Year, cols.Month, cols.Cause, cols.Count); err != nil {
		return nil, st, err
	}

	out := make([]domain.OverdoseRecord, 0, t.Len())
	for _, row := range t.Rows {
		raw := row.String(cols.State)
		code, ok := d.resolveCode(raw)
		if !ok {
			d.unresolved(&st, row, raw)
			continue
		}

		year, err := row.Int(cols.Year)
		if err != nil {
			d.drop(&st, row, err)
			continue
		}
		month, err := calculation.ParseMonth(row.String(cols.Month))
		if err != nil {
			d.drop(&st, row, err)
			continue
		}
		count, err := row.NullDecimal(cols.Count)
		if err != nil {
			d.drop(&st, row, err)
			continue
		}
		if !count.Valid {
			st.MissingMeasurements++
			d.Logger.Debugf("%s: line %d: %v", st.Source, row.Line, errors.MissingMeasurement(cols.Count))
		}
		out = append(out, domain.OverdoseRecord{
			StateCode:    code,
			CauseOfDeath: row.String(cols.Cause),
			Month:        month,
			Year:         int(year),
			DeathCount:   count,
		})
	}
	st.Loaded = len(out)
	return out, st, nil
}

// Providers decodes the provider registry, one record per enrollment
func (d *Decoder) Providers(t *Table, cols ProviderColumns) ([]domain.ProviderRecord, domain.SourceStats, error) {
	st := d.stats("providers", t)
	if err := t.Require(cols.State); err != nil {
		return nil, st, err
	}

	out := make([]domain.ProviderRecord, 0, t.Len())
	for _, row := range t.Rows {
		raw := row.String(cols.State)
		code, ok := d.resolveCode(raw)
		if !ok {
			d.unresolved(&st, row, raw)
			continue
		}
		out = append(out, domain.ProviderRecord{StateCode: code})
	}
	st.Loaded = len(out)
	return out, st, nil
}

// Population decodes the census table. A state listed twice keeps its
// first row; negative populations are coercion failures.
func (d *Decoder) Population(t *Table, cols PopulationColumns) ([]domain.PopulationRecord, domain.SourceStats, error) {
	st := d.stats("population", t)
	if err := t.Require(cols.State, cols.Population); err != nil {
		return nil, st, err
	}

	seen := make(map[string]bool)
	out := make([]domain.PopulationRecord, 0, t.Len())
	for _, row := range t.Rows {
		raw := row.String(cols.State)
		code, ok := d.resolveCode(raw)
		if !ok {
			d.unresolved(&st, row, raw)
			continue
		}

		pop, err := row.Int(cols.Population)
		if err == nil && pop < 0 {
			err = errNegative(row, cols.Population, pop)
		}
		if err != nil {
			d.drop(&st, row, err)
			continue
		}
		if seen[code] {
			d.drop(&st, row, errDuplicate(row, code))
			continue
		}
		seen[code] = true
		out = append(out, domain.PopulationRecord{StateCode: code, Population: pop})
	}
	st.Loaded = len(out)
	return out, st, nil
}
