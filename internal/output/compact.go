package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/glsllint/internal/lint"
	"github.com/dotcommander/glsllint/internal/types"
)

// CompactFormatter prints one file:line:col: severity: message line per
// diagnostic, the shape compilers use, so editors and CI can jump to them.
type CompactFormatter struct {
	w        io.Writer
	quiet    bool
	colorize bool
}

// NewCompactFormatter creates a CompactFormatter writing to w.
func NewCompactFormatter(w io.Writer, quiet bool) *CompactFormatter {
	return &CompactFormatter{
		w:        w,
		quiet:    quiet,
		colorize: IsTerminal(w),
	}
}

// WithColor forces colour on or off.
func (f *CompactFormatter) WithColor(on bool) *CompactFormatter {
	f.colorize = on
	return f
}

// Format prints every diagnostic and a one-line tally.
func (f *CompactFormatter) Format(summary *lint.LintSummary) error {
	for _, result := range summary.Results {
		name := DisplayPath(summary.ProjectRoot, result.File)
		switch {
		case result.Err != nil:
			fmt.Fprintf(f.w, "%s: %s: %v\n", name, types.SeverityError, result.Err)
		case result.Skipped:
			fmt.Fprintf(f.w, "%s: %s: not validated\n", name, types.SeverityWarning)
		}

		for _, d := range result.Diagnostics {
			d.File = DisplayPath(summary.ProjectRoot, d.File)
			fmt.Fprintln(f.w, d.String())
		}
	}

	if f.quiet {
		return nil
	}

	tally := fmt.Sprintf("%d shaders, %d errors, %d warnings",
		summary.TotalFiles, summary.TotalErrors, summary.TotalWarnings)
	if f.colorize {
		tally = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(tally)
	}
	fmt.Fprintln(f.w, tally)
	return nil
}
