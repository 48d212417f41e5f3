package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dotcommander/glsllint/internal/lint"
	"github.com/dotcommander/glsllint/internal/types"
)

// Version is reported in machine-readable output headers.
var Version = "dev"

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	w          io.Writer
	indent     bool
	outputFile string
}

// NewJSONFormatter creates a JSONFormatter. Output goes to outputFile when
// set and to w otherwise.
func NewJSONFormatter(w io.Writer, indent bool, outputFile string) *JSONFormatter {
	return &JSONFormatter{
		w:          w,
		indent:     indent,
		outputFile: outputFile,
	}
}

// Format formats the lint summary as JSON
func (f *JSONFormatter) Format(summary *lint.LintSummary) error {
	report := BuildJSONReport(summary)

	var (
		jsonBytes []byte
		err       error
	)
	if f.indent {
		jsonBytes, err = json.MarshalIndent(report, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	if f.outputFile != "" {
		if err := os.WriteFile(f.outputFile, append(jsonBytes, '\n'), 0644); err != nil {
			return fmt.Errorf("error writing to file %s: %w", f.outputFile, err)
		}
		return nil
	}

	_, err = fmt.Fprintln(f.w, string(jsonBytes))
	return err
}

// BuildJSONReport converts a summary into the JSON report structure.
func BuildJSONReport(summary *lint.LintSummary) JSONReport {
	report := JSONReport{
		Header: JSONHeader{
			Tool:      "glsllint",
			Version:   Version,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Summary: JSONSummary{
			TotalFiles:      summary.TotalFiles,
			SuccessfulFiles: summary.SuccessfulFiles,
			FailedFiles:     summary.FailedFiles,
			SkippedFiles:    summary.SkippedFiles,
			TotalErrors:     summary.TotalErrors,
			TotalWarnings:   summary.TotalWarnings,
			TotalInfos:      summary.TotalInfos,
			Duration:        summary.Duration.Round(time.Millisecond).String(),
		},
		Results: make([]JSONResult, len(summary.Results)),
	}

	for i, result := range summary.Results {
		jr := JSONResult{
			File:     result.File,
			Stage:    result.Stage,
			Success:  result.Success,
			Skipped:  result.Skipped,
			Linked:   result.Linked,
			Duration: result.Duration.Milliseconds(),
			Messages: make([]JSONMessage, 0, len(result.Diagnostics)),
		}
		if result.Err != nil {
			jr.Error = result.Err.Error()
		}
		for _, d := range result.Diagnostics {
			jr.Messages = append(jr.Messages, NewJSONMessage(d))
		}
		report.Results[i] = jr
	}

	return report
}

// NewJSONMessage converts a diagnostic to the editor message shape.
func NewJSONMessage(d types.Diagnostic) JSONMessage {
	return JSONMessage{
		Severity: string(d.Severity),
		Excerpt:  d.Message,
		Location: JSONLocation{
			File:     d.File,
			Position: d.Range.Array(),
		},
		Source: d.Source,
	}
}

// JSONReport represents the complete JSON report structure
type JSONReport struct {
	Header  JSONHeader   `json:"header"`
	Summary JSONSummary  `json:"summary"`
	Results []JSONResult `json:"results"`
}

// JSONHeader contains report metadata
type JSONHeader struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// JSONSummary contains summary statistics
type JSONSummary struct {
	TotalFiles      int    `json:"total_files"`
	SuccessfulFiles int    `json:"successful_files"`
	FailedFiles     int    `json:"failed_files"`
	SkippedFiles    int    `json:"skipped_files"`
	TotalErrors     int    `json:"total_errors"`
	TotalWarnings   int    `json:"total_warnings"`
	TotalInfos      int    `json:"total_infos"`
	Duration        string `json:"duration"`
}

// JSONResult represents a single file's linting result
type JSONResult struct {
	File     string        `json:"file"`
	Stage    string        `json:"stage,omitempty"`
	Success  bool          `json:"success"`
	Skipped  bool          `json:"skipped,omitempty"`
	Linked   bool          `json:"linked,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration int64         `json:"duration_ms,omitempty"`
	Messages []JSONMessage `json:"messages"`
}

// JSONMessage is one diagnostic: severity, excerpt and a zero-based
// [[startLine, startCol], [endLine, endCol]] position.
type JSONMessage struct {
	Severity string       `json:"severity"`
	Excerpt  string       `json:"excerpt"`
	Location JSONLocation `json:"location"`
	Source   string       `json:"source,omitempty"`
}

// JSONLocation places a message in a file.
type JSONLocation struct {
	File     string    `json:"file"`
	Position [2][2]int `json:"position"`
}
