// Package output renders an assembled report in the supported formats.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
	"github.com/rgehrsitz/opioid-eda/internal/errors"
)

// Formatter renders a report to bytes
type Formatter interface {
	Name() string
	Format(rep *domain.Report) ([]byte, error)
}

// Extensions maps formatter names to output file extensions
var Extensions = map[string]string{
	"console": "txt",
	"csv":     "csv",
	"json":    "json",
	"html":    "html",
	"xlsx":    "xlsx",
}

// GetFormatterByName returns the formatter registered under name, or nil
func GetFormatterByName(name string) Formatter {
	switch name {
	case "console":
		return ConsoleFormatter{TopStates: 8, Width: 72}
	case "csv":
		return CSVSummarizer{}
	case "json":
		return JSONFormatter{Indent: true}
	case "html":
		return HTMLFormatter{}
	case "xlsx":
		return XLSXFormatter{}
	}
	return nil
}

// AvailableFormatterNames lists the registered formats in sorted order
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(Extensions))
	for name := range Extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteFormatted renders rep with f and writes it to dir as
// <prefix>_<timestamp>.<ext>, returning the file path
func WriteFormatted(f Formatter, rep *domain.Report, dir, prefix string) (string, error) {
	data, err := f.Format(rep)
	if err != nil {
		return "", fmt.Errorf("format %s: %w", f.Name(), err)
	}

	ext, ok := Extensions[f.Name()]
	if !ok {
		ext = f.Name()
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Output("cannot create output directory", err)
		}
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", prefix, rep.GeneratedAt.Format("20060102_150405"), ext))
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", errors.Output("cannot write report", err)
	}
	return filename, nil
}
