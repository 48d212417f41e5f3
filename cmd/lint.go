package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dotcommander/glsllint/internal/baseline"
	"github.com/dotcommander/glsllint/internal/config"
	"github.com/dotcommander/glsllint/internal/cue"
	"github.com/dotcommander/glsllint/internal/git"
	"github.com/dotcommander/glsllint/internal/lint"
	"github.com/dotcommander/glsllint/internal/outputters"
	"github.com/dotcommander/glsllint/internal/project"
	"github.com/dotcommander/glsllint/internal/types"
)

// Exit codes of a lint run.
const (
	ExitClean       = 0
	ExitDiagnostics = 1
	ExitNotLinted   = 2
)

var (
	useBaseline    bool
	createBaseline bool
	baselinePath   string
	stagedOnly     bool
	diffOnly       bool
)

func init() {
	flags := rootCmd.Flags()
	flags.BoolVar(&useBaseline, "baseline", false, "Ignore diagnostics recorded in the baseline file")
	flags.BoolVar(&createBaseline, "create-baseline", false, "Record current diagnostics in the baseline file and exit 0")
	flags.StringVar(&baselinePath, "baseline-file", baseline.DefaultFile, "Baseline file, relative to the project root")
	flags.BoolVar(&stagedOnly, "staged", false, "Lint only shader files staged in git")
	flags.BoolVar(&diffOnly, "diff", false, "Lint only shader files changed since HEAD")
}

// resolveRoot returns --root or the detected project root.
func resolveRoot() (string, error) {
	if rootPath != "" {
		return rootPath, nil
	}
	return project.FindProjectRoot(".")
}

// loadRunConfig loads the configuration for a command and reports schema
// problems in the config file.
func loadRunConfig() (*config.Config, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, fmt.Errorf("error detecting project root: %w", err)
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	if cfg.ConfigFile != "" {
		checkConfigSchema(cfg.ConfigFile)
	}

	if info, err := project.Detect(cfg.Root); err == nil && info.UsesGlslify && !cfg.Glslify.Enabled {
		slog.Warn("package.json depends on glslify but expansion is disabled",
			slog.String("root", cfg.Root))
	}

	return cfg, nil
}

// checkConfigSchema logs schema violations in the config file as warnings.
func checkConfigSchema(path string) {
	v := cue.NewValidator()
	if err := v.LoadSchemas(); err != nil {
		slog.Debug("Config schema unavailable", slog.String("error", err.Error()))
		return
	}
	issues, err := v.ValidateFile(path)
	if err != nil {
		slog.Debug("Config schema check failed", slog.String("error", err.Error()))
		return
	}
	for _, issue := range issues {
		slog.Warn("Config file issue",
			slog.String("file", issue.File),
			slog.String("field", issue.Field),
			slog.String("message", issue.Message),
		)
	}
}

// runLint lints the requested shaders and writes the report to w. It
// returns the process exit code.
func runLint(ctx context.Context, w io.Writer, args []string) (int, error) {
	cfg, err := loadRunConfig()
	if err != nil {
		return ExitDiagnostics, err
	}

	if stagedOnly && diffOnly {
		return ExitDiagnostics, errors.New("--staged and --diff are mutually exclusive")
	}

	baselineFile := baselinePath
	if !filepath.IsAbs(baselineFile) {
		baselineFile = filepath.Join(cfg.Root, baselineFile)
	}

	var b *baseline.Baseline
	if useBaseline && !createBaseline {
		if _, err := os.Stat(baselineFile); err == nil {
			b, err = baseline.LoadBaseline(baselineFile, cfg.Root)
			if err != nil {
				slog.Warn("Failed to load baseline",
					slog.String("file", baselineFile),
					slog.String("error", err.Error()),
				)
				b = nil
			}
		}
	}

	session := lint.NewSession(lint.WithNotifier(newConsoleNotifier(os.Stderr)))
	defer session.Close()
	session.Activate(cfg.Settings())

	summary, err := lintTargets(ctx, session, cfg, args)
	if err != nil {
		return ExitDiagnostics, err
	}

	if createBaseline {
		b = baseline.CreateBaseline(cfg.Root, lint.CollectAllDiagnostics(summary))
		if err := b.SaveBaseline(baselineFile); err != nil {
			return ExitDiagnostics, fmt.Errorf("failed to save baseline: %w", err)
		}
		if !cfg.Quiet {
			fmt.Fprintf(w, "Baseline created: %s (%d diagnostics)\n", baselineFile, b.Len())
		}
		// Creating a baseline accepts the current state.
		return ExitClean, nil
	}

	var totalIgnored, errorsIgnored int
	if b != nil {
		totalIgnored, errorsIgnored = lint.FilterResults(summary, b)
	}

	outputter := outputters.NewOutputter(cfg, w)
	if err := outputter.Format(summary, cfg.Format); err != nil {
		return ExitDiagnostics, fmt.Errorf("error formatting output: %w", err)
	}

	if totalIgnored > 0 && !cfg.Quiet && cfg.Format == "console" {
		fmt.Fprintf(w, "\n%d baseline diagnostics ignored (%d errors)\n", totalIgnored, errorsIgnored)
	}

	return exitCode(summary, types.ParseSeverity(cfg.FailOn)), nil
}

// lintTargets picks the files to lint from git or from args.
func lintTargets(ctx context.Context, session *lint.Session, cfg *config.Config, args []string) (*lint.LintSummary, error) {
	if stagedOnly || diffOnly {
		if !git.IsGitRepo(cfg.Root) {
			return nil, fmt.Errorf("%s is not inside a git repository", cfg.Root)
		}
		list := git.GetChangedFiles
		if stagedOnly {
			list = git.GetStagedFiles
		}
		files, err := list(cfg.Root)
		if err != nil {
			return nil, err
		}
		return lint.LintFiles(ctx, session, cfg.Root, files, cfg.Concurrency)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.Root}
	}
	return lint.LintPaths(ctx, session, paths, lint.BatchOptions{
		Root:           cfg.Root,
		Concurrency:    cfg.Concurrency,
		FollowSymlinks: cfg.FollowSymlinks,
		Exclude:        cfg.Exclude,
	})
}

// exitCode maps a summary to the process exit code. Diagnostics at or above
// failOn, or files that could not be read, give ExitDiagnostics; otherwise
// shaders the validator could not check give ExitNotLinted.
func exitCode(summary *lint.LintSummary, failOn types.Severity) int {
	for _, r := range summary.Results {
		if r.Err != nil {
			return ExitDiagnostics
		}
		for _, d := range r.Diagnostics {
			if d.Severity.Rank() >= failOn.Rank() {
				return ExitDiagnostics
			}
		}
	}
	if summary.SkippedFiles > 0 {
		return ExitNotLinted
	}
	return ExitClean
}
