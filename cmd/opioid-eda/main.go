package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/opioid-eda/internal/calculation"
	"github.com/rgehrsitz/opioid-eda/internal/config"
	"github.com/rgehrsitz/opioid-eda/internal/domain"
	"github.com/rgehrsitz/opioid-eda/internal/errors"
	"github.com/rgehrsitz/opioid-eda/internal/logging"
	"github.com/rgehrsitz/opioid-eda/internal/output"
	"github.com/rgehrsitz/opioid-eda/internal/report"
	"github.com/rgehrsitz/opioid-eda/internal/states"
	"github.com/rgehrsitz/opioid-eda/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "opioid-eda %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// defaultConfigFile is read when --config is not given and the file exists
const defaultConfigFile = "opioid-eda.yaml"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "opioid-eda",
		Short: "Opioid prescribing, treatment access and overdose report by state",
		Long: `opioid-eda joins four public datasets (opioid prescribing-rate changes,
provisional overdose death counts, treatment-provider enrollments and census
population) on state, normalises them to rates per 100,000 residents and
writes a report of provider density, overdose trends, prescribing-change bands
and five-year percent change.

Source paths, column names and analysis dates come from a YAML file, OPIOID_*
environment variables and command-line flags, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(reportCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(browseCmd())
	root.AddCommand(statesCmd())
	root.AddCommand(classifyCmd())
	root.AddCommand(versionCmd())
	return root
}

// addConfigFlags registers the flags that override configuration fields
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Path to YAML configuration (default: "+defaultConfigFile+" if it exists)")
	cmd.Flags().String("prescribing", "", "Prescribing-rate source file (.csv or .xlsx)")
	cmd.Flags().String("overdose", "", "Provisional overdose source file (.csv or .xlsx)")
	cmd.Flags().String("providers", "", "Treatment-provider registry source file (.csv or .xlsx)")
	cmd.Flags().String("population", "", "Census population source file (.csv or .xlsx)")
	cmd.Flags().String("cause", "", "Overdose cause-of-death category")
	cmd.Flags().String("plan-type", "", "Prescribing plan type to band")
	cmd.Flags().String("earlier", "", "Earlier percent-change date (YYYY-MM)")
	cmd.Flags().String("later", "", "Later percent-change and snapshot date (YYYY-MM)")
	cmd.Flags().Int("top", 0, "Number of states drawn in the console trend chart")
	cmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().Bool("debug", false, "Enable debug output for row-level exclusions")
}

// loadConfig layers the config file, environment and flags, validates the
// result and initializes logging from it
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" && fileExists(defaultConfigFile) {
		path = defaultConfigFile
	}

	parser := config.NewInputParser()
	var (
		cfg *config.Configuration
		err error
	)
	if path != "" {
		cfg, err = parser.DecodeFile(path)
	} else {
		cfg, err = parser.Decode(nil)
	}
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if err := parser.ValidateConfiguration(cfg); err != nil {
		return nil, err
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Configuration) {
	flags := cmd.Flags()
	set := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	set("prescribing", &cfg.Sources.Prescribing.Path)
	set("overdose", &cfg.Sources.Overdose.Path)
	set("providers", &cfg.Sources.Providers.Path)
	set("population", &cfg.Sources.Population.Path)
	set("cause", &cfg.Analysis.CauseOfDeath)
	set("plan-type", &cfg.Analysis.PlanType)
	set("earlier", &cfg.Analysis.EarlierDate)
	set("later", &cfg.Analysis.LaterDate)
	set("log-level", &cfg.Logging.Level)
	if on, _ := flags.GetBool("debug"); on {
		cfg.Logging.Level = "debug"
	}
	if flags.Changed("top") {
		cfg.Analysis.TopStates, _ = flags.GetInt("top")
	}
	set("out", &cfg.Output.Dir)
	set("prefix", &cfg.Output.Prefix)
	if flags.Changed("format") {
		cfg.Output.Formats, _ = flags.GetStringSlice("format")
	}
}

// newEngine builds the pipeline, logging row-level exclusions when the
// configured level is debug
func newEngine(cfg *config.Configuration, component string) *report.Engine {
	engine := report.NewEngine(logging.Named(component))
	engine.Assembler.Calc.Debug = cfg.Logging.Level == "debug"
	return engine
}

// formatterFor returns the formatter for name, sizing the chart views from cfg
func formatterFor(name string, cfg *config.Configuration) (output.Formatter, error) {
	switch name {
	case "console":
		return output.ConsoleFormatter{TopStates: cfg.Analysis.TopStates, Width: 72}, nil
	case "html":
		return output.HTMLFormatter{TopStates: cfg.Analysis.TopStates}, nil
	}
	f := output.GetFormatterByName(name)
	if f == nil {
		return nil, fmt.Errorf("unsupported format %q (available: %v)", name, output.AvailableFormatterNames())
	}
	return f, nil
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Load the sources and write the report",
		Long: `Load the four sources, compute the joined views and write them in each
requested format. Console output goes to stdout; every other format is written
to <out>/<prefix>_<timestamp>.<ext>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logging.Sync()

			formatters := make([]output.Formatter, 0, len(cfg.Output.Formats))
			for _, name := range cfg.Output.Formats {
				f, err := formatterFor(name, cfg)
				if err != nil {
					return err
				}
				formatters = append(formatters, f)
			}

			engine := newEngine(cfg, "pipeline")
			rep, err := engine.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), rep, formatters, cfg.Output)
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().StringSliceP("format", "f", nil, "Output formats (console, csv, json, html, xlsx); repeatable")
	cmd.Flags().StringP("out", "o", "", "Directory for file outputs")
	cmd.Flags().String("prefix", "", "File name prefix for file outputs")
	return cmd
}

func writeReport(w io.Writer, rep *domain.Report, formatters []output.Formatter, out config.Output) error {
	for _, f := range formatters {
		if f.Name() == "console" {
			data, err := f.Format(rep)
			if err != nil {
				return err
			}
			fmt.Fprint(w, string(data))
			continue
		}
		path, err := output.WriteFormatted(f, rep, out.Dir, out.Prefix)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s report to %s\n", f.Name(), path)
	}
	return nil
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and the source file schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logging.Sync()

			engine := newEngine(cfg, "validate")
			in, err := engine.Load(cmd.Context(), cfg.Sources)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), output.DiagnosticsTable(domain.Diagnostics{Sources: in.Stats}))
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration and sources are valid")
			return nil
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the report interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logging.Sync()

			engine := newEngine(cfg, "pipeline")
			run := func(ctx context.Context) (*domain.Report, error) {
				return engine.Run(ctx, cfg)
			}

			p := tea.NewProgram(
				tui.NewModel(run).WithTopStates(cfg.Analysis.TopStates).WithContext(cmd.Context()),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func statesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List the state reference used to join the sources",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, ref := range states.NewResolver().All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", ref.Code, ref.Name)
			}
		},
	}
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [change...]",
		Short: "Classify five-year prescribing-rate changes into bands",
		// Changes are usually negative; pflag would read "-3.5" as a shorthand
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var values []string
			for _, arg := range args {
				switch arg {
				case "-h", "--help":
					return cmd.Help()
				case "--":
					continue
				}
				values = append(values, arg)
			}
			if len(values) == 0 {
				return errors.Input("classify requires at least 1 change value")
			}
			for _, arg := range values {
				change, err := decimal.NewFromString(arg)
				if err != nil {
					return errors.Input(fmt.Sprintf("invalid change %q: %v", arg, err))
				}
				band := calculation.ClassifyChange(change)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", change.String(), band, band.Label())
			}
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
