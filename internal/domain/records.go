package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StateRef pairs a two-letter state code with its full name
type StateRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PopulationRecord is one state's population from the fixed census snapshot
type PopulationRecord struct {
	StateCode  string `json:"stateCode"`
	Population int64  `json:"population"`
}

// ProviderRecord is a single treatment-provider enrollment. Only the state
// matters: the number of records per state is the quantity of interest.
type ProviderRecord struct {
	StateCode string `json:"stateCode"`
}

// OverdoseRecord is a provisional trailing 12-month death count ending at
// Month/Year. DeathCount is invalid when the source suppressed or omitted it.
type OverdoseRecord struct {
	StateCode    string              `json:"stateCode"`
	CauseOfDeath string              `json:"causeOfDeath"`
	Month        time.Month          `json:"month"`
	Year         int                 `json:"year"`
	DeathCount   decimal.NullDecimal `json:"deathCount"`
}

// Date returns the first day of the record's reporting month
func (r OverdoseRecord) Date() time.Time {
	return time.Date(r.Year, r.Month, 1, 0, 0, 0, 0, time.UTC)
}

// PrescribingRecord is one row of the prescribing-rate dataset
type PrescribingRecord struct {
	StateName     string          `json:"stateName"`
	PlanType      string          `json:"planType"`
	Year          int             `json:"year"`
	Rate5YrChange decimal.Decimal `json:"rate5yrChange"`
}

// DerivedRate is a per-100k rate for a state at a calendar month.
// Count carries the numerator the rate was computed from.
type DerivedRate struct {
	StateCode    string          `json:"stateCode"`
	Date         time.Time       `json:"date"`
	Count        decimal.Decimal `json:"count"`
	Population   int64           `json:"population"`
	ValuePer100k decimal.Decimal `json:"valuePer100k"`
}
