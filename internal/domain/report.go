package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProviderDensityRow is view (a): every populated state with its provider
// count and density. States without enrollments carry a zero count.
type ProviderDensityRow struct {
	StateCode    string          `json:"stateCode"`
	StateName    string          `json:"stateName"`
	Population   int64           `json:"population"`
	Providers    int64           `json:"providers"`
	ValuePer100k decimal.Decimal `json:"valuePer100k"`
}

// BandAssignment is a state's classified five-year prescribing change
type BandAssignment struct {
	StateCode     string                `json:"stateCode"`
	StateName     string                `json:"stateName"`
	Year          int                   `json:"year"`
	Rate5YrChange decimal.Decimal       `json:"rate5yrChange"`
	Band          PrescribingChangeBand `json:"band"`
}

// TrendByBandRow is view (c): an overdose rate reading tagged with the
// state's prescribing band
type TrendByBandRow struct {
	StateCode    string                `json:"stateCode"`
	Date         time.Time             `json:"date"`
	ValuePer100k decimal.Decimal       `json:"valuePer100k"`
	Band         PrescribingChangeBand `json:"band"`
}

// BandTrendPoint is the mean overdose rate across a band's states at a date
type BandTrendPoint struct {
	Band        PrescribingChangeBand `json:"band"`
	Date        time.Time             `json:"date"`
	States      int                   `json:"states"`
	MeanPer100k decimal.Decimal       `json:"meanPer100k"`
}

// ChangeRow is the percent change of a state's overdose rate between two
// fixed dates, expressed as 100 * later / earlier
type ChangeRow struct {
	StateCode     string          `json:"stateCode"`
	StateName     string          `json:"stateName"`
	Earlier       decimal.Decimal `json:"earlier"`
	Later         decimal.Decimal `json:"later"`
	PercentChange decimal.Decimal `json:"percentChange"`
}

// ChangeByBandRow is view (d)
type ChangeByBandRow struct {
	ChangeRow
	Band PrescribingChangeBand `json:"band"`
}

// ChangeVsProvidersRow is view (e)
type ChangeVsProvidersRow struct {
	ChangeRow
	ProvidersPer100k decimal.Decimal `json:"providersPer100k"`
}

// AnnualSummaryRow attributes a January trailing-12-month reading to the
// year the deaths occurred in
type AnnualSummaryRow struct {
	StateCode    string          `json:"stateCode"`
	StateName    string          `json:"stateName"`
	ObservedYear int             `json:"observedYear"`
	Deaths       decimal.Decimal `json:"deaths"`
	Population   int64           `json:"population"`
	ValuePer100k decimal.Decimal `json:"valuePer100k"`
}

// SourceStats summarises how one input was consumed
type SourceStats struct {
	Source              string `json:"source"`
	Path                string `json:"path"`
	Rows                int    `json:"rows"`
	Loaded              int    `json:"loaded"`
	Dropped             int    `json:"dropped"`
	UnresolvedKeys      int    `json:"unresolvedKeys"`
	MissingMeasurements int    `json:"missingMeasurements"`
}

// Diagnostics collects the non-fatal exclusions of a run
type Diagnostics struct {
	Sources []SourceStats `json:"sources"`
	// UnresolvedCodes lists distinct state identifiers that failed to join
	UnresolvedCodes []string `json:"unresolvedCodes,omitempty"`
}

// Report is the fully joined output of a run, handed to the formatters
type Report struct {
	Title        string    `json:"title"`
	GeneratedAt  time.Time `json:"generatedAt"`
	CauseOfDeath string    `json:"causeOfDeath"`
	PlanType     string    `json:"planType"`
	EarlierDate  time.Time `json:"earlierDate"`
	LaterDate    time.Time `json:"laterDate"`

	Providers         []ProviderDensityRow   `json:"providers"`
	OverdoseSeries    []DerivedRate          `json:"overdoseSeries"`
	Bands             []BandAssignment       `json:"bands"`
	TrendByBand       []TrendByBandRow       `json:"trendByBand"`
	BandTrend         []BandTrendPoint       `json:"bandTrend"`
	Snapshot          []DerivedRate          `json:"snapshot"`
	ChangeByBand      []ChangeByBandRow      `json:"changeByBand"`
	ChangeVsProviders []ChangeVsProvidersRow `json:"changeVsProviders"`
	Summary           []AnnualSummaryRow     `json:"summary"`

	Diagnostics Diagnostics `json:"diagnostics"`
}
