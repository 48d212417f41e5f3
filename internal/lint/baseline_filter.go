package lint

import (
	"github.com/dotcommander/glsllint/internal/baseline"
	"github.com/dotcommander/glsllint/internal/types"
)

// FilterResults drops diagnostics known to the baseline and returns how
// many were ignored in total and how many of those were errors.
func FilterResults(summary *LintSummary, b *baseline.Baseline) (totalIgnored, errorsIgnored int) {
	if b == nil {
		return 0, 0
	}

	for i := range summary.Results {
		result := &summary.Results[i]
		if result.Err != nil || result.Skipped {
			continue
		}

		kept := make([]types.Diagnostic, 0, len(result.Diagnostics))
		for _, d := range result.Diagnostics {
			if !b.IsKnown(d) {
				kept = append(kept, d)
				continue
			}
			totalIgnored++
			if d.Severity == types.SeverityError {
				errorsIgnored++
			}
		}
		result.Diagnostics = kept

		errs, _, _ := result.Counts()
		result.Success = errs == 0
	}

	recalculateTotals(summary)

	return totalIgnored, errorsIgnored
}

// recalculateTotals recalculates the summary totals based on the current results.
func recalculateTotals(summary *LintSummary) {
	var errs, warnings, infos, ok, failed, skipped int
	for i := range summary.Results {
		result := &summary.Results[i]
		e, w, n := result.Counts()
		errs += e
		warnings += w
		infos += n
		switch {
		case result.Skipped:
			skipped++
		case result.Success:
			ok++
		default:
			failed++
		}
	}
	summary.TotalErrors = errs
	summary.TotalWarnings = warnings
	summary.TotalInfos = infos
	summary.SuccessfulFiles = ok
	summary.FailedFiles = failed
	summary.SkippedFiles = skipped
}

// CollectAllDiagnostics collects every diagnostic in a summary (for baseline creation)
func CollectAllDiagnostics(summary *LintSummary) []types.Diagnostic {
	var diags []types.Diagnostic
	for _, result := range summary.Results {
		diags = append(diags, result.Diagnostics...)
	}
	return diags
}
