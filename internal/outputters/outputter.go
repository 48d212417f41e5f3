// Package outputters selects and drives the report formatter for a lint run.
package outputters

import (
	"fmt"
	"io"
	"time"

	"github.com/dotcommander/glsllint/internal/config"
	"github.com/dotcommander/glsllint/internal/lint"
	"github.com/dotcommander/glsllint/internal/output"
)

// Formatter renders a lint summary.
type Formatter interface {
	Format(summary *lint.LintSummary) error
}

// FormatterFactory creates the Formatter for a format name.
type FormatterFactory interface {
	CreateFormatter(format string) (Formatter, error)
}

// DefaultFormatterFactory builds the formatters of the output package from
// the configuration.
type DefaultFormatterFactory struct {
	cfg *config.Config
	w   io.Writer
}

// NewDefaultFormatterFactory creates a factory writing to w.
func NewDefaultFormatterFactory(cfg *config.Config, w io.Writer) *DefaultFormatterFactory {
	return &DefaultFormatterFactory{cfg: cfg, w: w}
}

// CreateFormatter returns the formatter for format.
func (f *DefaultFormatterFactory) CreateFormatter(format string) (Formatter, error) {
	switch format {
	case "console":
		return output.NewConsoleFormatter(f.w, f.cfg.Quiet, f.cfg.Verbose), nil
	case "compact":
		return output.NewCompactFormatter(f.w, f.cfg.Quiet), nil
	case "json":
		return output.NewJSONFormatter(f.w, true, f.cfg.Output), nil
	case "markdown":
		return output.NewMarkdownFormatter(f.w, f.cfg.Verbose, f.cfg.Output), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Outputter handles output formatting
type Outputter struct {
	config  *config.Config
	factory FormatterFactory
}

// NewOutputter creates an Outputter writing to w.
func NewOutputter(cfg *config.Config, w io.Writer) *Outputter {
	return NewOutputterWithFactory(cfg, NewDefaultFormatterFactory(cfg, w))
}

// NewOutputterWithFactory creates an Outputter with a custom factory.
func NewOutputterWithFactory(cfg *config.Config, factory FormatterFactory) *Outputter {
	return &Outputter{
		config:  cfg,
		factory: factory,
	}
}

// Format formats the lint summary using the given format
func (o *Outputter) Format(summary *lint.LintSummary, format string) error {
	if summary.StartTime.IsZero() {
		summary.StartTime = time.Now()
	}

	// Batch runs already carry their root; single-file runs take the config's.
	if summary.ProjectRoot == "" {
		summary.ProjectRoot = o.config.Root
	}

	formatter, err := o.factory.CreateFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(summary)
}
