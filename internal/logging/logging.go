// Package logging provides structured logging for the CLI.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Base is the global zap logger
	Base *zap.Logger

	// Sugar is the sugared logger handed to the computation layers
	Sugar *zap.SugaredLogger
)

// Config contains logging configuration
type Config struct {
	// Level is the minimum log level
	Level string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn error"`

	// Format is the output format (json, console)
	Format string `yaml:"format" envconfig:"FORMAT" validate:"omitempty,oneof=json console"`

	// Output is the output destination (stdout, stderr, file path)
	Output string `yaml:"output" envconfig:"OUTPUT"`

	// Development enables development mode
	Development bool `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DefaultConfig returns the CLI defaults. Logs go to stderr so report
// output on stdout stays clean.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "console",
		Output: "stderr",
	}
}

// Initialize sets up the global logger
func Initialize(cfg Config) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var writeSyncer zapcore.WriteSyncer
	switch cfg.Output {
	case "stdout":
		writeSyncer = zapcore.AddSync(os.Stdout)
	case "stderr", "":
		writeSyncer = zapcore.AddSync(os.Stderr)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		writeSyncer = zapcore.AddSync(file)
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)
	if cfg.Development {
		Base = zap.New(core, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		Base = zap.New(core)
	}
	Sugar = Base.Sugar()
	return nil
}

// Sync flushes the logger
func Sync() {
	if Base != nil {
		_ = Base.Sync()
	}
}

// Named returns a sugared child logger for a component.
func Named(component string) *zap.SugaredLogger {
	return Sugar.Named(component)
}

func init() {
	Base = zap.NewNop()
	Sugar = Base.Sugar()
}
