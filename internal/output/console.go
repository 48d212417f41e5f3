package output

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/glsllint/internal/lint"
	"github.com/dotcommander/glsllint/internal/types"
)

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	w        io.Writer
	quiet    bool
	verbose  bool
	colorize bool
}

// NewConsoleFormatter creates a ConsoleFormatter writing to w. Colour is on
// when w is a terminal.
func NewConsoleFormatter(w io.Writer, quiet, verbose bool) *ConsoleFormatter {
	return &ConsoleFormatter{
		w:        w,
		quiet:    quiet,
		verbose:  verbose,
		colorize: IsTerminal(w),
	}
}

// WithColor forces colour on or off.
func (f *ConsoleFormatter) WithColor(on bool) *ConsoleFormatter {
	f.colorize = on
	return f
}

// Format formats the lint summary for console output
func (f *ConsoleFormatter) Format(summary *lint.LintSummary) error {
	if f.quiet {
		// Only the exit code speaks in quiet mode
		return nil
	}

	f.printFileResults(summary)
	f.printSummary(summary)
	f.printConclusion(summary)

	return nil
}

func (f *ConsoleFormatter) style(color string) lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// printFileResults prints results for each file
func (f *ConsoleFormatter) printFileResults(summary *lint.LintSummary) {
	for _, result := range summary.Results {
		hasIssues := len(result.Diagnostics) > 0 || result.Err != nil || result.Skipped
		if !hasIssues && !f.verbose {
			continue
		}

		errs, warnings, _ := result.Counts()
		status, color := "✓", "10" // green
		switch {
		case result.Err != nil || errs > 0:
			status, color = "✗", "9" // red
		case result.Skipped || warnings > 0:
			status, color = "⚠", "3" // yellow
		}

		name := result.RelPath
		if name == "" {
			name = result.File
		}
		fmt.Fprintf(f.w, "%s %s\n", f.style(color).Render(status), name)

		switch {
		case result.Err != nil:
			fmt.Fprintf(f.w, "    ✘ %s\n", f.style("9").Render(result.Err.Error()))
		case result.Skipped:
			fmt.Fprintf(f.w, "    ⚠ %s\n", f.style("3").Render("not validated: validator or glslify failed, see log"))
		}

		for _, d := range result.Diagnostics {
			f.printDiagnostic(summary.ProjectRoot, d)
		}
	}
}

// printDiagnostic prints one diagnostic with one-based coordinates.
func (f *ConsoleFormatter) printDiagnostic(root string, d types.Diagnostic) {
	var prefix, color string
	switch d.Severity {
	case types.SeverityError:
		prefix, color = "    ✘ ", "9" // red
	case types.SeverityWarning:
		prefix, color = "    ⚠ ", "3" // yellow
	default:
		prefix, color = "    ℹ ", "7" // gray
	}

	loc := fmt.Sprintf("%s:%d:%d", DisplayPath(root, d.File), d.Range.Start.Line+1, d.Range.Start.Column+1)
	fmt.Fprintf(f.w, "%s%s: %s\n", prefix, f.style(color).Render(loc), d.Message)
}

// printSummary prints the summary statistics
func (f *ConsoleFormatter) printSummary(summary *lint.LintSummary) {
	if summary.FailedFiles == 0 && summary.SkippedFiles == 0 && summary.TotalWarnings == 0 {
		return
	}

	fmt.Fprintf(f.w, "\n%d/%d passed, %d errors, %d warnings",
		summary.SuccessfulFiles, summary.TotalFiles,
		summary.TotalErrors, summary.TotalWarnings)
	if summary.SkippedFiles > 0 {
		fmt.Fprintf(f.w, ", %d not validated", summary.SkippedFiles)
	}
	fmt.Fprintf(f.w, " (%v)\n", summary.Duration.Round(time.Millisecond))
}

// printConclusion prints the conclusion message
func (f *ConsoleFormatter) printConclusion(summary *lint.LintSummary) {
	if summary.FailedFiles != 0 || summary.SkippedFiles != 0 || summary.TotalWarnings != 0 {
		return
	}

	if len(summary.Results) > 0 && f.verbose {
		fmt.Fprintln(f.w)
	}

	msg := fmt.Sprintf("✓ All %d shaders passed", summary.TotalFiles)
	if f.colorize {
		printCelebration(f.w, msg)
		return
	}
	fmt.Fprintln(f.w, msg)
}
