package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dotcommander/glsllint/internal/lint"
	"github.com/dotcommander/glsllint/internal/types"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	w          io.Writer
	verbose    bool
	outputFile string
}

// NewMarkdownFormatter creates a MarkdownFormatter. Output goes to
// outputFile when set and to w otherwise.
func NewMarkdownFormatter(w io.Writer, verbose bool, outputFile string) *MarkdownFormatter {
	return &MarkdownFormatter{
		w:          w,
		verbose:    verbose,
		outputFile: outputFile,
	}
}

// Format formats the lint summary as Markdown
func (f *MarkdownFormatter) Format(summary *lint.LintSummary) error {
	var b strings.Builder

	b.WriteString("# GLSL Lint Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	if summary.ProjectRoot != "" {
		fmt.Fprintf(&b, "**Project:** %s\n\n", summary.ProjectRoot)
	}
	fmt.Fprintf(&b, "**Duration:** %v\n\n", summary.Duration.Round(time.Millisecond))
	b.WriteString(strings.Repeat("-", 50) + "\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Shaders Scanned | %d |\n", summary.TotalFiles)
	fmt.Fprintf(&b, "| Passed | %d |\n", summary.SuccessfulFiles)
	fmt.Fprintf(&b, "| Failed | %d |\n", summary.FailedFiles)
	fmt.Fprintf(&b, "| Not Validated | %d |\n", summary.SkippedFiles)
	fmt.Fprintf(&b, "| Errors | %d |\n", summary.TotalErrors)
	fmt.Fprintf(&b, "| Warnings | %d |\n", summary.TotalWarnings)
	b.WriteString("\n")

	b.WriteString("## Detailed Results\n\n")

	if summary.TotalFiles == 0 {
		b.WriteString("*No shaders found to validate.*\n\n")
	} else {
		f.writeResults(&b, summary)
	}

	b.WriteString("## Conclusion\n\n")
	switch {
	case summary.FailedFiles > 0:
		fmt.Fprintf(&b, "✗ %d shaders failed validation\n", summary.FailedFiles)
	case summary.SkippedFiles > 0:
		fmt.Fprintf(&b, "⚠ %d shaders could not be validated\n", summary.SkippedFiles)
	default:
		b.WriteString("✓ All shaders passed validation!\n")
	}

	content := b.String()
	if f.outputFile != "" {
		if err := os.WriteFile(f.outputFile, []byte(content), 0644); err != nil {
			return fmt.Errorf("error writing to file %s: %w", f.outputFile, err)
		}
		return nil
	}

	_, err := fmt.Fprint(f.w, content)
	return err
}

func (f *MarkdownFormatter) writeResults(b *strings.Builder, summary *lint.LintSummary) {
	for _, result := range summary.Results {
		if !f.verbose && result.Success && len(result.Diagnostics) == 0 {
			continue
		}

		name := result.RelPath
		if name == "" {
			name = result.File
		}
		fmt.Fprintf(b, "### %s\n\n", name)
		fmt.Fprintf(b, "Status: %s\n\n", statusEmoji(result))
		if result.Stage != "" {
			fmt.Fprintf(b, "Stage: `%s`\n\n", result.Stage)
		}
		if result.Err != nil {
			fmt.Fprintf(b, "> %s\n\n", result.Err)
		}

		writeSection(b, "Errors", summary.ProjectRoot, result.Diagnostics, types.SeverityError)
		writeSection(b, "Warnings", summary.ProjectRoot, result.Diagnostics, types.SeverityWarning)
		writeSection(b, "Info", summary.ProjectRoot, result.Diagnostics, types.SeverityInfo)

		b.WriteString("---\n\n")
	}
}

func writeSection(b *strings.Builder, title, root string, diags []types.Diagnostic, sev types.Severity) {
	var lines []string
	for _, d := range diags {
		if d.Severity != sev {
			continue
		}
		line := fmt.Sprintf("- **%s** (line %d, col %d) - %s",
			DisplayPath(root, d.File), d.Range.Start.Line+1, d.Range.Start.Column+1, d.Message)
		if d.Source != "" {
			line += fmt.Sprintf(" `[%s]`", formatSourceTag(d.Source))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "#### %s\n\n%s\n\n", title, strings.Join(lines, "\n"))
}

// statusEmoji returns an emoji for the result status
func statusEmoji(result lint.LintResult) string {
	switch {
	case result.Skipped:
		return "⚠️"
	case result.Success:
		return "✅"
	default:
		return "❌"
	}
}

// formatSourceTag formats the source tag for display
func formatSourceTag(source string) string {
	switch source {
	case types.SourceCompile:
		return "compile"
	case types.SourceLink:
		return "link"
	default:
		return source
	}
}
