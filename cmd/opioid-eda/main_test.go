package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/opioid-eda/internal/config"
	"github.com/rgehrsitz/opioid-eda/internal/errors"
	"github.com/rgehrsitz/opioid-eda/internal/output"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	err := cmd.Execute()
	return buf.String(), err
}

// sourceFlags writes a minimal copy of each source and returns the flags
// pointing at them
func sourceFlags(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}
	return []string{
		"--prescribing", write("prescribing.csv", "Geo_Desc,Plan_Type,Year,Opioid_Prscrbng_Rate_5Y_Chg\nCalifornia,All,2022,-3.5\nTexas,All,2022,0.5\n"),
		"--overdose", write("overdose.csv", "State,Year,Month,Indicator,Data Value\nCA,2019,January,Opioids,100\nCA,2023,January,Opioids,150\nTX,2019,January,Opioids,200\nTX,2023,January,Opioids,300\n"),
		"--providers", write("providers.csv", "STATE\nCA\nCA\nTX\n"),
		"--population", write("population.csv", "NAME,POPESTIMATE2020\nCalifornia,1000000\nTexas,2000000\n"),
		"--log-level", "error",
	}
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()

	assert.Equal(t, "opioid-eda", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestRootCommand_Execute(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestCommandSubcommands(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"report", "validate", "browse", "states", "classify", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, err := execute(t, "nonexistent")
	assert.Error(t, err)
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "present.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: x\n"), 0o644))

	assert.True(t, fileExists(path))
	assert.False(t, fileExists(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "opioid-eda dev (commit none, built unknown)"))
}

func TestStatesCommand(t *testing.T) {
	out, err := execute(t, "states")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 51)
	assert.Contains(t, out, "DC  District of Columbia")
	assert.NotContains(t, out, "Puerto Rico")
}

func TestClassifyCommand(t *testing.T) {
	out, err := execute(t, "classify", "--", "-3.5", "-3.2", "-2.4", "0")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "-3.5\tGreatlyDecreased"))
	assert.True(t, strings.HasPrefix(lines[1], "-3.2\tModeratelyDecreased"))
	assert.True(t, strings.HasPrefix(lines[2], "-2.4\tSlightlyDecreased"))
	assert.True(t, strings.HasPrefix(lines[3], "0\tIncreased"))
}

func TestClassifyCommand_NegativeWithoutSeparator(t *testing.T) {
	out, err := execute(t, "classify", "-3.5", "-3.2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "-3.5\tGreatlyDecreased"))
	assert.True(t, strings.HasPrefix(lines[1], "-3.2\tModeratelyDecreased"))
}

func TestClassifyCommand_Help(t *testing.T) {
	out, err := execute(t, "classify", "-h")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.NotContains(t, out, "GreatlyDecreased")
}

func TestClassifyCommand_NoValues(t *testing.T) {
	_, err := execute(t, "classify")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestClassifyCommand_InvalidValue(t *testing.T) {
	_, err := execute(t, "classify", "lots")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
	assert.Contains(t, err.Error(), `invalid change "lots"`)
}

func TestFormatterFor_UsesTopStates(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.TopStates = 3

	f, err := formatterFor("html", cfg)
	require.NoError(t, err)
	assert.Equal(t, output.HTMLFormatter{TopStates: 3}, f)

	f, err = formatterFor("console", cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, f.(output.ConsoleFormatter).TopStates)

	f, err = formatterFor("json", cfg)
	require.NoError(t, err)
	assert.Equal(t, "json", f.Name())

	_, err = formatterFor("pdf", cfg)
	assert.Error(t, err)
}

func TestDebugFlag_EnablesRowLogging(t *testing.T) {
	cmd := reportCmd()
	require.NoError(t, cmd.Flags().Set("debug", "true"))

	cfg := config.Default()
	applyFlags(cmd, cfg)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, newEngine(cfg, "test").Assembler.Calc.Debug)

	assert.False(t, newEngine(config.Default(), "test").Assembler.Calc.Debug)
}

func TestReportCommand_MissingSources(t *testing.T) {
	_, err := execute(t, "report", "--log-level", "error")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestReportCommand_UnknownFormat(t *testing.T) {
	args := append([]string{"report", "--format", "pdf"}, sourceFlags(t)...)
	_, err := execute(t, args...)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestReportCommand_Console(t *testing.T) {
	args := append([]string{"report"}, sourceFlags(t)...)
	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Opioid Prescribing, Treatment Access and Overdose Deaths by State")
}

func TestReportCommand_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	args := append([]string{"report", "-f", "json", "-f", "csv", "--out", dir, "--prefix", "test"}, sourceFlags(t)...)
	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote json report to")
	assert.Contains(t, out, "Wrote csv report to")

	matches, err := filepath.Glob(filepath.Join(dir, "test_*"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestReportCommand_ConfigFileAndFlags(t *testing.T) {
	flags := sourceFlags(t)
	cfgPath := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("analysis:\n  earlier_date: \"2023-01\"\n  later_date: \"2019-01\"\n"), 0o644))

	args := append([]string{"report", "--config", cfgPath}, flags...)
	_, err := execute(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must precede")

	args = append([]string{"report", "--config", cfgPath, "--earlier", "2019-01", "--later", "2023-01"}, flags...)
	_, err = execute(t, args...)
	assert.NoError(t, err)
}

func TestValidateCommand(t *testing.T) {
	args := append([]string{"validate"}, sourceFlags(t)...)
	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration and sources are valid")
}

func TestValidateCommand_SchemaMismatch(t *testing.T) {
	flags := sourceFlags(t)
	bad := filepath.Join(t.TempDir(), "providers.csv")
	require.NoError(t, os.WriteFile(bad, []byte("NPI\n1\n"), 0o644))

	args := append([]string{"validate"}, flags...)
	args = append(args, "--providers", bad)
	_, err := execute(t, args...)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeSchemaMismatch))
}

func TestConfigMissingFile(t *testing.T) {
	_, err := execute(t, "validate", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
	assert.Contains(t, err.Error(), "failed to read file")
}
