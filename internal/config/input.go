package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/opioid-eda/internal/calculation"
	"github.com/rgehrsitz/opioid-eda/internal/errors"
	"github.com/rgehrsitz/opioid-eda/internal/loader"
	"github.com/rgehrsitz/opioid-eda/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g.
// OPIOID_SOURCES_OVERDOSE_PATH or OPIOID_LOGGING_LEVEL.
const EnvPrefix = "OPIOID"

// Configuration describes one report run
type Configuration struct {
	Title    string         `yaml:"title"`
	Sources  Sources        `yaml:"sources"`
	Analysis Analysis       `yaml:"analysis"`
	Output   Output         `yaml:"output"`
	Logging  logging.Config `yaml:"logging" envconfig:"LOGGING"`
}

// Source locates one input file
type Source struct {
	Path      string `yaml:"path" validate:"required"`
	Sheet     string `yaml:"sheet,omitempty"`
	HeaderRow int    `yaml:"header_row,omitempty" split_words:"true" validate:"gte=0"`
}

// Options converts the source to loader options
func (s Source) Options() loader.Options {
	return loader.Options{Sheet: s.Sheet, HeaderRow: s.HeaderRow}
}

// PrescribingSource is the prescribing-rate input
type PrescribingSource struct {
	Source  `yaml:",inline"`
	Columns loader.PrescribingColumns `yaml:"columns"`
}

// OverdoseSource is the provisional overdose input
type OverdoseSource struct {
	Source  `yaml:",inline"`
	Columns loader.OverdoseColumns `yaml:"columns"`
}

// ProviderSource is the treatment-provider registry input
type ProviderSource struct {
	Source  `yaml:",inline"`
	Columns loader.ProviderColumns `yaml:"columns"`
}

// PopulationSource is the census population input
type PopulationSource struct {
	Source  `yaml:",inline"`
	Columns loader.PopulationColumns `yaml:"columns"`
}

// Sources groups the four inputs
type Sources struct {
	Prescribing PrescribingSource `yaml:"prescribing"`
	Overdose    OverdoseSource    `yaml:"overdose"`
	Providers   ProviderSource    `yaml:"providers"`
	Population  PopulationSource  `yaml:"population"`
}

// Analysis holds the parameters of the computations
type Analysis struct {
	// CauseOfDeath selects the overdose indicator category
	CauseOfDeath string `yaml:"cause_of_death" split_words:"true" validate:"required"`
	// PlanType selects the prescribing plan type that is banded
	PlanType string `yaml:"plan_type" split_words:"true" validate:"required"`
	// EarlierDate and LaterDate bound the percent-change comparison and
	// are written "YYYY-MM" or "Month YYYY". LaterDate is also the
	// snapshot date of the state map.
	EarlierDate string `yaml:"earlier_date" split_words:"true" validate:"required"`
	LaterDate   string `yaml:"later_date" split_words:"true" validate:"required"`
	// TopStates limits how many states the console line chart draws
	TopStates int `yaml:"top_states" split_words:"true" validate:"gte=1,lte=51"`
}

// Output controls where and how the report is written
type Output struct {
	Dir     string   `yaml:"dir"`
	Prefix  string   `yaml:"prefix" validate:"required"`
	Formats []string `yaml:"formats" validate:"min=1,dive,oneof=console csv json html xlsx"`
}

// Default returns the configuration of the published analysis with no
// source paths set
func Default() *Configuration {
	return &Configuration{
		Title: "Opioid Prescribing, Treatment Access and Overdose Deaths by State",
		Sources: Sources{
			Prescribing: PrescribingSource{Columns: loader.DefaultPrescribingColumns()},
			Overdose:    OverdoseSource{Columns: loader.DefaultOverdoseColumns()},
			Providers:   ProviderSource{Columns: loader.DefaultProviderColumns()},
			Population:  PopulationSource{Columns: loader.DefaultPopulationColumns()},
		},
		Analysis: Analysis{
			CauseOfDeath: "Opioids",
			PlanType:     "All",
			EarlierDate:  "2019-01",
			LaterDate:    "2023-01",
			TopStates:    8,
		},
		Output: Output{
			Prefix:  "opioid_report",
			Formats: []string{"console"},
		},
		Logging: logging.DefaultConfig(),
	}
}

// InputParser handles parsing of configuration files
type InputParser struct {
	validate *validator.Validate
	// LookupEnv enables environment overrides when true
	LookupEnv bool
}

// NewInputParser creates a new input parser with environment overrides on
func NewInputParser() *InputParser {
	return &InputParser{validate: validator.New(), LookupEnv: true}
}

// LoadFromFile loads configuration from a YAML file layered over Default.
// Relative source paths in the file are taken relative to the file.
func (ip *InputParser) LoadFromFile(filename string) (*Configuration, error) {
	config, err := ip.DecodeFile(filename)
	if err != nil {
		return nil, err
	}
	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, err
	}
	return config, nil
}

// DecodeFile is Decode for a file, resolving relative source paths against
// the file's directory before environment overrides apply
func (ip *InputParser) DecodeFile(filename string) (*Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Config(fmt.Sprintf("failed to read file %s", filename), err)
	}
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Config("failed to parse YAML", err)
	}
	config.Sources.resolveRelative(filepath.Dir(filename))
	if err := ip.ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (s *Sources) resolveRelative(dir string) {
	for _, p := range []*string{
		&s.Prescribing.Path, &s.Overdose.Path, &s.Providers.Path, &s.Population.Path,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Parse decodes YAML over Default, applies environment overrides and
// validates the result. Empty input yields the defaults.
func (ip *InputParser) Parse(data []byte) (*Configuration, error) {
	config, err := ip.Decode(data)
	if err != nil {
		return nil, err
	}
	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Decode layers YAML and environment overrides over Default without
// validating, so callers can apply further overrides first
func (ip *InputParser) Decode(data []byte) (*Configuration, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Config("failed to parse YAML", err)
	}
	if err := ip.ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides configuration fields from OPIOID_* variables. Unset
// variables leave fields untouched.
func (ip *InputParser) ApplyEnv(config *Configuration) error {
	if !ip.LookupEnv {
		return nil
	}
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return errors.Config("failed to load config from env", err)
	}
	return nil
}

// ValidateConfiguration checks field constraints and the comparison window
func (ip *InputParser) ValidateConfiguration(config *Configuration) error {
	if err := ip.validate.Struct(config); err != nil {
		return errors.Config("configuration validation failed", describeValidation(err))
	}
	earlier, later, err := config.Analysis.Window()
	if err != nil {
		return errors.Config("configuration validation failed", err)
	}
	if !earlier.Before(later) {
		return errors.Config("configuration validation failed",
			fmt.Errorf("earlier_date %s must precede later_date %s",
				earlier.Format("2006-01"), later.Format("2006-01")))
	}
	return nil
}

// Window parses the percent-change comparison dates
func (a Analysis) Window() (earlier, later time.Time, err error) {
	earlier, err = calculation.ParseDate(a.EarlierDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("earlier_date: %w", err)
	}
	later, err = calculation.ParseDate(a.LaterDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("later_date: %w", err)
	}
	return earlier, later, nil
}

// describeValidation flattens validator errors into one readable error
func describeValidation(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Configuration.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
