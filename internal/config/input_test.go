package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/opioid-eda/internal/errors"
)

const sampleConfig = `
title: Test Report
sources:
  prescribing:
    path: data/prescribing.csv
  overdose:
    path: data/overdose.xlsx
    sheet: VSRR
    header_row: 2
    columns:
      count: Predicted Value
  providers:
    path: data/providers.csv
  population:
    path: data/population.csv
analysis:
  cause_of_death: Heroin
  earlier_date: 2018-01
  later_date: January 2022
output:
  dir: out
  formats: [console, json]
`

func TestParse_LayersOverDefaults(t *testing.T) {
	parser := &InputParser{validate: NewInputParser().validate}

	cfg, err := parser.Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "Test Report", cfg.Title)
	assert.Equal(t, "data/overdose.xlsx", cfg.Sources.Overdose.Path)
	assert.Equal(t, "VSRR", cfg.Sources.Overdose.Options().Sheet)
	assert.Equal(t, 2, cfg.Sources.Overdose.Options().HeaderRow)
	assert.Equal(t, "Predicted Value", cfg.Sources.Overdose.Columns.Count)
	// untouched column names keep their defaults
	assert.Equal(t, "Indicator", cfg.Sources.Overdose.Columns.Cause)
	assert.Equal(t, "Geo_Desc", cfg.Sources.Prescribing.Columns.State)

	assert.Equal(t, "Heroin", cfg.Analysis.CauseOfDeath)
	assert.Equal(t, "All", cfg.Analysis.PlanType)
	assert.Equal(t, 8, cfg.Analysis.TopStates)
	assert.Equal(t, []string{"console", "json"}, cfg.Output.Formats)
	assert.Equal(t, "opioid_report", cfg.Output.Prefix)
	assert.Equal(t, "warn", cfg.Logging.Level)

	earlier, later, err := cfg.Analysis.Window()
	require.NoError(t, err)
	assert.Equal(t, "2018-01-01", earlier.Format("2006-01-02"))
	assert.Equal(t, "2022-01-01", later.Format("2006-01-02"))
}

func TestValidateConfiguration(t *testing.T) {
	withPaths := func(mutate func(*Configuration)) *Configuration {
		cfg := Default()
		cfg.Sources.Prescribing.Path = "p.csv"
		cfg.Sources.Overdose.Path = "o.csv"
		cfg.Sources.Providers.Path = "t.csv"
		cfg.Sources.Population.Path = "c.csv"
		if mutate != nil {
			mutate(cfg)
		}
		return cfg
	}

	tests := []struct {
		name    string
		cfg     *Configuration
		wantErr string
	}{
		{name: "valid", cfg: withPaths(nil)},
		{
			name:    "missing source path",
			cfg:     withPaths(func(c *Configuration) { c.Sources.Population.Path = "" }),
			wantErr: "Sources.Population.Source.Path failed required",
		},
		{
			name:    "unknown format",
			cfg:     withPaths(func(c *Configuration) { c.Output.Formats = []string{"pdf"} }),
			wantErr: "failed oneof",
		},
		{
			name:    "no formats",
			cfg:     withPaths(func(c *Configuration) { c.Output.Formats = nil }),
			wantErr: "Output.Formats failed min=1",
		},
		{
			name:    "blank column name",
			cfg:     withPaths(func(c *Configuration) { c.Sources.Providers.Columns.State = "" }),
			wantErr: "Sources.Providers.Columns.State failed required",
		},
		{
			name:    "bad log level",
			cfg:     withPaths(func(c *Configuration) { c.Logging.Level = "verbose" }),
			wantErr: "Logging.Level failed oneof",
		},
		{
			name:    "unparseable date",
			cfg:     withPaths(func(c *Configuration) { c.Analysis.LaterDate = "someday" }),
			wantErr: "later_date",
		},
		{
			name: "window reversed",
			cfg: withPaths(func(c *Configuration) {
				c.Analysis.EarlierDate = "2023-01"
				c.Analysis.LaterDate = "2019-01"
			}),
			wantErr: "earlier_date 2023-01 must precede later_date 2019-01",
		},
		{
			name: "window empty",
			cfg: withPaths(func(c *Configuration) {
				c.Analysis.EarlierDate = "2021-06"
				c.Analysis.LaterDate = "June 2021"
			}),
			wantErr: "must precede",
		},
	}

	parser := NewInputParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parser.ValidateConfiguration(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
