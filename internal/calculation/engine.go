// Package calculation holds the numeric core of the report: per-100k rate
// normalisation, the monthly time series and its fixed-date comparisons, and
// the prescribing-change bands.
//
// Every function consumes its inputs read-only and returns new slices, so
// running a computation twice yields the same output.
package calculation

import (
	"github.com/rgehrsitz/opioid-eda/internal/logging"
)

// CalculationEngine carries the shared settings of the computations
type CalculationEngine struct {
	Logger logging.Logger
	Debug  bool // Enable debug output for row-level exclusions
}

// NewCalculationEngine creates a new calculation engine with a silent logger
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{Logger: logging.Nop()}
}

// SetLogger sets the logger used for exclusion summaries
func (ce *CalculationEngine) SetLogger(l logging.Logger) {
	ce.Logger = logging.OrNop(l)
}

// debugf logs row-level exclusions, only when Debug is set
func (ce *CalculationEngine) debugf(format string, args ...any) {
	if ce == nil || !ce.Debug {
		return
	}
	ce.logger().Debugf(format, args...)
}

func (ce *CalculationEngine) logger() logging.Logger {
	if ce == nil {
		return logging.Nop()
	}
	return logging.OrNop(ce.Logger)
}
