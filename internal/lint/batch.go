package lint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dotcommander/glsllint/internal/discovery"
	"github.com/dotcommander/glsllint/internal/shader"
	"github.com/dotcommander/glsllint/internal/types"
)

// DefaultConcurrency is the number of files linted at once in batch mode.
const DefaultConcurrency = 4

// LintResult represents a single file's linting result
type LintResult struct {
	File    string
	RelPath string
	Stage   string
	// Success is false when the file has error diagnostics or could not be
	// linted at all (Err set).
	Success bool
	// Skipped means the validator or expander failed and no diagnostics
	// are known for the file.
	Skipped     bool
	Linked      bool
	Diagnostics []types.Diagnostic
	Err         error
	Duration    time.Duration

	// program identifies the linked stage set, empty when not linked.
	program string
}

// Counts returns the number of error, warning and info diagnostics.
func (r *LintResult) Counts() (errs, warnings, infos int) {
	return countBySeverity(r.Diagnostics)
}

// LintSummary summarizes all linting results
type LintSummary struct {
	ProjectRoot     string
	StartTime       time.Time
	Duration        time.Duration
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	SkippedFiles    int
	TotalErrors     int
	TotalWarnings   int
	TotalInfos      int
	Results         []LintResult
}

// BatchOptions controls LintPaths.
type BatchOptions struct {
	Root           string
	Concurrency    int
	FollowSymlinks bool
	Exclude        []string
}

// LintPaths expands directories in paths to shader files and lints them.
func LintPaths(ctx context.Context, session *Session, paths []string, opts BatchOptions) (*LintSummary, error) {
	files, err := discovery.ExpandPaths(paths, opts.FollowSymlinks, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("expanding paths: %w", err)
	}
	return LintFiles(ctx, session, opts.Root, files, opts.Concurrency)
}

// LintFiles lints files from disk with at most concurrency lints in flight.
// Results keep the order of files. A per-file failure is recorded in its
// result; the returned error is only set when ctx is cancelled.
func LintFiles(ctx context.Context, session *Session, root string, files []string, concurrency int) (*LintSummary, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	summary := &LintSummary{
		ProjectRoot: root,
		StartTime:   time.Now(),
		TotalFiles:  len(files),
		Results:     make([]LintResult, len(files)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summary.Results[i] = lintFile(gctx, session, root, file)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dedupeLinkDiagnostics(summary.Results)
	recalculateTotals(summary)
	summary.Duration = time.Since(summary.StartTime)

	slog.Debug("Batch lint finished",
		slog.Int("files", summary.TotalFiles),
		slog.Int("errors", summary.TotalErrors),
		slog.Int("warnings", summary.TotalWarnings),
		slog.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// lintFile lints a single file in batch mode.
func lintFile(ctx context.Context, session *Session, root, path string) (result LintResult) {
	result = LintResult{
		File:    path,
		RelPath: relPath(root, path),
	}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if tokens, err := shader.Classify(path); err == nil {
		result.Stage = tokens.Stage.Name
	}

	content, err := os.ReadFile(path)
	if err != nil {
		result.Err = fmt.Errorf("reading %s: %w", result.RelPath, err)
		return result
	}

	report, err := session.Lint(ctx, path, string(content))
	if err != nil {
		result.Err = err
		return result
	}
	if report == nil {
		result.Skipped = true
		result.Diagnostics = []types.Diagnostic{}
		return result
	}

	result.Linked = report.Linked
	result.Diagnostics, result.program = ownDiagnostics(report)
	errs, _, _ := result.Counts()
	result.Success = errs == 0
	return result
}

// ownDiagnostics keeps the diagnostics that belong to the linted file.
// Compile diagnostics of linked siblings are dropped because each sibling is
// linted as a file of its own in a batch. Link diagnostics describe the whole
// program and are attributed to the linted file; program returns the key
// that identifies that program across its stages.
func ownDiagnostics(report *Report) (diags []types.Diagnostic, program string) {
	if len(report.Units) < 2 {
		return report.Diagnostics, ""
	}
	siblings := make(map[string]bool, len(report.Units)-1)
	for _, p := range report.Units[1:] {
		siblings[p] = true
	}

	diags = make([]types.Diagnostic, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		switch {
		case d.Source == types.SourceLink:
			d.File = report.Path
		case siblings[d.File]:
			continue
		}
		diags = append(diags, d)
	}

	units := slices.Clone(report.Units)
	slices.Sort(units)
	return diags, strings.Join(units, "\x00")
}

// dedupeLinkDiagnostics keeps each link diagnostic of a program only in the
// first result that reported it.
func dedupeLinkDiagnostics(results []LintResult) {
	seen := make(map[string]bool)
	for i := range results {
		r := &results[i]
		if r.program == "" {
			continue
		}
		kept := r.Diagnostics[:0]
		for _, d := range r.Diagnostics {
			if d.Source == types.SourceLink {
				key := r.program + "\x00" + d.Message
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			kept = append(kept, d)
		}
		r.Diagnostics = kept
		errs, _, _ := r.Counts()
		r.Success = errs == 0
	}
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil {
		return path
	}
	return rel
}
