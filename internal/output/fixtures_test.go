package output

import (
	"errors"
	"time"

	"github.com/dotcommander/glsllint/internal/lint"
	"github.com/dotcommander/glsllint/internal/types"
)

// mixedSummary has one clean, one failing, one skipped and one unreadable shader.
func mixedSummary() *lint.LintSummary {
	results := []lint.LintResult{
		{File: "/proj/a.vert", RelPath: "a.vert", Stage: "vertex", Success: true},
		{
			File: "/proj/b.frag", RelPath: "b.frag", Stage: "fragment",
			Diagnostics: []types.Diagnostic{
				{
					Severity: types.SeverityError,
					Message:  "'foo' : undeclared identifier",
					File:     "/proj/b.frag",
					Range:    types.Point(4, 11),
					Source:   types.SourceCompile,
				},
				{
					Severity: types.SeverityWarning,
					Message:  "unused variable",
					File:     "/proj/b.frag",
					Range:    types.Point(0, 0),
					Source:   types.SourceCompile,
				},
			},
		},
		{File: "/proj/c.geom", RelPath: "c.geom", Stage: "geometry", Skipped: true},
		{File: "/proj/d.comp", RelPath: "d.comp", Err: errors.New("reading d.comp: permission denied")},
	}
	return &lint.LintSummary{
		ProjectRoot:     "/proj",
		StartTime:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Duration:        1500 * time.Millisecond,
		TotalFiles:      4,
		SuccessfulFiles: 1,
		FailedFiles:     2,
		SkippedFiles:    1,
		TotalErrors:     1,
		TotalWarnings:   1,
		Results:         results,
	}
}

func cleanSummary() *lint.LintSummary {
	return &lint.LintSummary{
		ProjectRoot:     "/proj",
		TotalFiles:      2,
		SuccessfulFiles: 2,
		Results: []lint.LintResult{
			{File: "/proj/a.vert", RelPath: "a.vert", Success: true},
			{File: "/proj/a.frag", RelPath: "a.frag", Success: true},
		},
	}
}
