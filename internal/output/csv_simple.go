package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
)

// CSVSummarizer writes the annual summary table, one row per state and
// observed year
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(rep *domain.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"StateCode", "State", "ObservedYear", "Deaths", "Population", "DeathsPer100k"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rep.Summary {
		row := []string{
			r.StateCode,
			r.StateName,
			strconv.Itoa(r.ObservedYear),
			r.Deaths.String(),
			strconv.FormatInt(r.Population, 10),
			r.ValuePer100k.StringFixed(4),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
