package output

import (
	"encoding/json"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
)

// JSONFormatter emits the full report. Decimals are quoted strings so no
// precision is lost.
type JSONFormatter struct {
	Indent bool
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(rep *domain.Report) ([]byte, error) {
	if j.Indent {
		return json.MarshalIndent(rep, "", "  ")
	}
	return json.Marshal(rep)
}
