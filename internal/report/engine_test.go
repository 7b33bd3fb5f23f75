package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/opioid-eda/internal/config"
	"github.com/rgehrsitz/opioid-eda/internal/errors"
)

const (
	prescribingCSV = `Geo_Desc,Plan_Type,Year,Opioid_Prscrbng_Rate_5Y_Chg
California,All,2022,-3.5
Texas,All,2022,0.5
Wyoming,All,2022,-1
National,All,2022,-2
California,All,2021,4
`
	overdoseCSV = `State,Year,Month,Indicator,Data Value
CA,2019,January,Opioids,100
CA,2023,January,Opioids,150
TX,2019,January,"Opioids (T40.0-T40.4,T40.6)",200
TX,2023,January,Opioids,"300"
WY,2019,January,Opioids,
WY,2023,January,Opioids,
US,2019,January,Opioids,70000
CA,2019,Janvier,Opioids,5
`
	providersCSV = `NPI,STATE
1,CA
2,CA
3,TX
4,PR
`
	populationCSV = `NAME,POPESTIMATE2020
California,"1,000,000"
Texas,2000000
Wyoming,1000
Puerto Rico,3000000
`
)

func writeSources(t *testing.T) *config.Configuration {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	cfg := config.Default()
	cfg.Sources.Prescribing.Path = write("prescribing.csv", prescribingCSV)
	cfg.Sources.Overdose.Path = write("overdose.csv", overdoseCSV)
	cfg.Sources.Providers.Path = write("providers.csv", providersCSV)
	cfg.Sources.Population.Path = write("population.csv", populationCSV)
	return cfg
}

func TestEngine_Run(t *testing.T) {
	cfg := writeSources(t)

	rep, err := NewEngine(nil).Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, rep.Providers, 3)
	assert.Equal(t, "CA", rep.Providers[0].StateCode)
	assert.True(t, rep.Providers[0].ValuePer100k.Equal(dec("0.2")))
	assert.Equal(t, "WY", rep.Providers[2].StateCode)
	assert.True(t, rep.Providers[2].ValuePer100k.IsZero())

	assert.Len(t, rep.OverdoseSeries, 4)
	require.Len(t, rep.ChangeByBand, 2)
	assert.True(t, rep.ChangeByBand[1].PercentChange.Equal(dec("150")))
	assert.Len(t, rep.Summary, 4)

	stats := rep.Diagnostics.Sources
	require.Len(t, stats, 4)

	assert.Equal(t, "prescribing", stats[0].Source)
	assert.Equal(t, 5, stats[0].Rows)
	assert.Equal(t, 1, stats[0].UnresolvedKeys)

	assert.Equal(t, "overdose", stats[1].Source)
	assert.Equal(t, 8, stats[1].Rows)
	assert.Equal(t, 6, stats[1].Loaded)
	assert.Equal(t, 1, stats[1].Dropped)
	assert.Equal(t, 1, stats[1].UnresolvedKeys)
	assert.Equal(t, 2, stats[1].MissingMeasurements)

	assert.Equal(t, 1, stats[2].UnresolvedKeys)
	assert.Equal(t, 3, stats[3].Loaded)
	assert.Empty(t, rep.Diagnostics.UnresolvedCodes)
}

func TestEngine_Run_MissingSource(t *testing.T) {
	cfg := writeSources(t)
	cfg.Sources.Providers.Path = filepath.Join(t.TempDir(), "absent.csv")

	_, err := NewEngine(nil).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeSourceUnavailable))
	assert.Contains(t, err.Error(), "absent.csv")
}

func TestEngine_Run_SchemaMismatch(t *testing.T) {
	cfg := writeSources(t)
	cfg.Sources.Overdose.Columns.Count = "Predicted Value"

	_, err := NewEngine(nil).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeSchemaMismatch))
	assert.Contains(t, err.Error(), "Predicted Value")
}

func TestEngine_Run_Cancelled(t *testing.T) {
	cfg := writeSources(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(nil).Run(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Load_CountsSuppressedCells(t *testing.T) {
	cfg := writeSources(t)

	in, err := NewEngine(nil).Load(context.Background(), cfg.Sources)
	require.NoError(t, err)

	require.Len(t, in.Stats, 4)
	assert.Equal(t, "overdose", in.Stats[1].Source)
	assert.Equal(t, 2, in.Stats[1].MissingMeasurements, "Load alone reports the suppressed Wyoming counts")
}
