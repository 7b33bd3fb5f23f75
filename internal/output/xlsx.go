package output

import (
	"github.com/xuri/excelize/v2"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
)

// XLSXFormatter writes a workbook with the summary first and one sheet per
// report view
type XLSXFormatter struct{}

func (x XLSXFormatter) Name() string { return "xlsx" }

type sheet struct {
	name   string
	header []string
	rows   [][]interface{}
}

func (x XLSXFormatter) Format(rep *domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []sheet{
		summarySheet(rep),
		providerSheet(rep),
		overdoseSheet(rep),
		bandSheet(rep),
		trendByBandSheet(rep),
		changeByBandSheet(rep),
		changeVsProvidersSheet(rep),
		diagnosticsSheet(rep),
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]interface{}, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return err
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(s.name, "A", lastCol, 16); err != nil {
		return err
	}

	for i := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &s.rows[i]); err != nil {
			return err
		}
	}
	return f.SetPanes(s.name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func summarySheet(rep *domain.Report) sheet {
	s := sheet{name: "Summary", header: []string{"State Code", "State", "Observed Year", "Deaths", "Population", "Deaths per 100k"}}
	for _, r := range rep.Summary {
		s.rows = append(s.rows, []interface{}{r.StateCode, r.StateName, r.ObservedYear, r.Deaths.InexactFloat64(), r.Population, r.ValuePer100k.InexactFloat64()})
	}
	return s
}

func providerSheet(rep *domain.Report) sheet {
	s := sheet{name: "Providers", header: []string{"State Code", "State", "Population", "Providers", "Providers per 100k"}}
	for _, r := range rep.Providers {
		s.rows = append(s.rows, []interface{}{r.StateCode, r.StateName, r.Population, r.Providers, r.ValuePer100k.InexactFloat64()})
	}
	return s
}

func overdoseSheet(rep *domain.Report) sheet {
	s := sheet{name: "Overdose Series", header: []string{"State Code", "Month", "Deaths", "Population", "Deaths per 100k"}}
	for _, r := range rep.OverdoseSeries {
		s.rows = append(s.rows, []interface{}{r.StateCode, r.Date.Format("2006-01"), r.Count.InexactFloat64(), r.Population, r.ValuePer100k.InexactFloat64()})
	}
	return s
}

func bandSheet(rep *domain.Report) sheet {
	s := sheet{name: "Prescribing Bands", header: []string{"State Code", "State", "Year", "5yr Rate Change", "Band"}}
	for _, r := range rep.Bands {
		s.rows = append(s.rows, []interface{}{r.StateCode, r.StateName, r.Year, r.Rate5YrChange.InexactFloat64(), r.Band.Label()})
	}
	return s
}

func trendByBandSheet(rep *domain.Report) sheet {
	s := sheet{name: "Trend by Band", header: []string{"State Code", "Month", "Deaths per 100k", "Band"}}
	for _, r := range rep.TrendByBand {
		s.rows = append(s.rows, []interface{}{r.StateCode, r.Date.Format("2006-01"), r.ValuePer100k.InexactFloat64(), r.Band.Label()})
	}
	return s
}

func changeByBandSheet(rep *domain.Report) sheet {
	s := sheet{name: "Change by Band", header: []string{"State Code", "State", "Earlier", "Later", "Later as % of Earlier", "Band"}}
	for _, r := range rep.ChangeByBand {
		s.rows = append(s.rows, []interface{}{r.StateCode, r.StateName, r.Earlier.InexactFloat64(), r.Later.InexactFloat64(), r.PercentChange.InexactFloat64(), r.Band.Label()})
	}
	return s
}

func changeVsProvidersSheet(rep *domain.Report) sheet {
	s := sheet{name: "Change vs Providers", header: []string{"State Code", "State", "Earlier", "Later", "Later as % of Earlier", "Providers per 100k"}}
	for _, r := range rep.ChangeVsProviders {
		s.rows = append(s.rows, []interface{}{r.StateCode, r.StateName, r.Earlier.InexactFloat64(), r.Later.InexactFloat64(), r.PercentChange.InexactFloat64(), r.ProvidersPer100k.InexactFloat64()})
	}
	return s
}

func diagnosticsSheet(rep *domain.Report) sheet {
	s := sheet{name: "Diagnostics", header: []string{"Source", "Path", "Rows", "Loaded", "Dropped", "Unresolved", "Suppressed"}}
	for _, d := range rep.Diagnostics.Sources {
		s.rows = append(s.rows, []interface{}{d.Source, d.Path, d.Rows, d.Loaded, d.Dropped, d.UnresolvedKeys, d.MissingMeasurements})
	}
	for _, code := range rep.Diagnostics.UnresolvedCodes {
		s.rows = append(s.rows, []interface{}{"population join", code})
	}
	return s
}
