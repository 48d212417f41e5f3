package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dotcommander/glsllint/internal/config"
	"github.com/dotcommander/glsllint/internal/lint"
	"github.com/dotcommander/glsllint/internal/output"
	"github.com/dotcommander/glsllint/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Lint shaders whenever they change",
	Long: `Watch the project root and lint every shader file as soon as it is written.

Each write starts its own lint request; results are printed as they arrive.
Edits to the config file are applied without restarting.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr(), slog.LevelInfo)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_, err := withTelemetry(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context) (int, error) {
			return 0, runWatch(ctx, cmd.OutOrStdout())
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatch lints changed shaders until ctx is cancelled.
func runWatch(ctx context.Context, w io.Writer) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	session := lint.NewSession(lint.WithNotifier(newConsoleNotifier(os.Stderr)))
	defer session.Close()
	session.Activate(cfg.Settings())
	session.Subscribe(config.Watch(cfg.Root, func(c *config.Config) {
		session.ApplySettings(c.Settings())
	}))

	printer := newEventPrinter(w, cfg.Root)
	watcher, err := watch.New(cfg.Root, session, printer.print, cfg.Exclude...)
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		watcher.Stop()
		return fmt.Errorf("error watching %s: %w", cfg.Root, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(w, "Watching %s for shader changes (Ctrl+C to stop)\n", watcher.Root())
	}

	<-ctx.Done()
	watcher.Stop()
	return nil
}

// eventPrinter writes watch events one block at a time.
type eventPrinter struct {
	w    io.Writer
	root string
	mu   sync.Mutex
}

func newEventPrinter(w io.Writer, root string) *eventPrinter {
	return &eventPrinter{w: w, root: root}
}

func (p *eventPrinter) print(e watch.Event) {
	result := lint.LintResult{File: e.Path, Err: e.Err}
	switch {
	case e.Err != nil:
	case e.Report == nil:
		// Previous diagnostics stand; say so instead of clearing them.
		result.Skipped = true
	default:
		result.Diagnostics = e.Report.Diagnostics
	}

	summary := &lint.LintSummary{
		ProjectRoot: p.root,
		TotalFiles:  1,
		Results:     []lint.LintResult{result},
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if result.Err == nil && !result.Skipped && len(result.Diagnostics) == 0 {
		fmt.Fprintf(p.w, "%s: ok\n", output.DisplayPath(p.root, e.Path))
		return
	}
	_ = output.NewCompactFormatter(p.w, true).Format(summary)
}
