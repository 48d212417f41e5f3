package lint

import (
	"testing"

	"github.com/dotcommander/glsllint/internal/baseline"
	"github.com/dotcommander/glsllint/internal/types"
)

func compileDiag(sev types.Severity, file, msg string) types.Diagnostic {
	return types.Diagnostic{Severity: sev, Message: msg, File: file, Source: types.SourceCompile}
}

func TestFilterResults(t *testing.T) {
	known := compileDiag(types.SeverityError, "a.frag", "known error")
	knownWarn := compileDiag(types.SeverityWarning, "a.frag", "known warning")
	fresh := compileDiag(types.SeverityError, "a.frag", "new error")

	tests := []struct {
		name              string
		results           []LintResult
		baseline          *baseline.Baseline
		wantTotalIgnored  int
		wantErrorsIgnored int
		wantErrors        int
		wantFailed        int
	}{
		{
			name:       "no baseline",
			results:    []LintResult{{Diagnostics: []types.Diagnostic{known}}},
			baseline:   nil,
			wantErrors: 0,
		},
		{
			name:       "empty baseline",
			results:    []LintResult{{Diagnostics: []types.Diagnostic{known}}},
			baseline:   baseline.CreateBaseline("", nil),
			wantErrors: 1,
			wantFailed: 1,
		},
		{
			name:              "with baseline matches",
			results:           []LintResult{{Diagnostics: []types.Diagnostic{known, knownWarn, fresh}}},
			baseline:          baseline.CreateBaseline("", []types.Diagnostic{known, knownWarn}),
			wantTotalIgnored:  2,
			wantErrorsIgnored: 1,
			wantErrors:        1,
			wantFailed:        1,
		},
		{
			name:              "all errors known",
			results:           []LintResult{{Diagnostics: []types.Diagnostic{known}}},
			baseline:          baseline.CreateBaseline("", []types.Diagnostic{known}),
			wantTotalIgnored:  1,
			wantErrorsIgnored: 1,
		},
		{
			name:     "skipped results untouched",
			results:  []LintResult{{Skipped: true, Diagnostics: []types.Diagnostic{}}},
			baseline: baseline.CreateBaseline("", []types.Diagnostic{known}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := &LintSummary{Results: tt.results}
			total, errs := FilterResults(summary, tt.baseline)

			if total != tt.wantTotalIgnored {
				t.Errorf("totalIgnored = %d, want %d", total, tt.wantTotalIgnored)
			}
			if errs != tt.wantErrorsIgnored {
				t.Errorf("errorsIgnored = %d, want %d", errs, tt.wantErrorsIgnored)
			}
			if tt.baseline == nil {
				return
			}
			if summary.TotalErrors != tt.wantErrors {
				t.Errorf("TotalErrors = %d, want %d", summary.TotalErrors, tt.wantErrors)
			}
			if summary.FailedFiles != tt.wantFailed {
				t.Errorf("FailedFiles = %d, want %d", summary.FailedFiles, tt.wantFailed)
			}
		})
	}
}

func TestRecalculateTotals(t *testing.T) {
	summary := &LintSummary{
		Results: []LintResult{
			{Success: true, Diagnostics: []types.Diagnostic{compileDiag(types.SeverityWarning, "a", "w")}},
			{Success: false, Diagnostics: []types.Diagnostic{
				compileDiag(types.SeverityError, "b", "e"),
				compileDiag(types.SeverityInfo, "b", "i"),
			}},
			{Skipped: true},
		},
	}

	recalculateTotals(summary)

	if summary.SuccessfulFiles != 1 || summary.FailedFiles != 1 || summary.SkippedFiles != 1 {
		t.Errorf("file counts = %d/%d/%d, want 1/1/1",
			summary.SuccessfulFiles, summary.FailedFiles, summary.SkippedFiles)
	}
	if summary.TotalErrors != 1 || summary.TotalWarnings != 1 || summary.TotalInfos != 1 {
		t.Errorf("diagnostic counts = %d/%d/%d, want 1/1/1",
			summary.TotalErrors, summary.TotalWarnings, summary.TotalInfos)
	}
}

func TestCollectAllDiagnostics(t *testing.T) {
	summary := &LintSummary{
		Results: []LintResult{
			{Diagnostics: []types.Diagnostic{compileDiag(types.SeverityError, "a", "1")}},
			{},
			{Diagnostics: []types.Diagnostic{
				compileDiag(types.SeverityWarning, "b", "2"),
				compileDiag(types.SeverityInfo, "b", "3"),
			}},
		},
	}

	if got := CollectAllDiagnostics(summary); len(got) != 3 {
		t.Errorf("CollectAllDiagnostics returned %d diagnostics, want 3", len(got))
	}
}
