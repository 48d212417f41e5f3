package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dotcommander/glsllint/internal/output"
	"github.com/dotcommander/glsllint/internal/telemetry"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

var (
	rootPath      string
	quiet         bool
	verbose       bool
	outputFormat  string
	outputFile    string
	failOn        string
	concurrency   int
	validatorPath string
	linkSiblings  bool
	telemetryMode string
)

// exitFunc is replaced in tests.
var exitFunc = os.Exit

var rootCmd = &cobra.Command{
	Use:   "glsllint [paths...]",
	Short: "GLSL shader linter backed by glslangValidator",
	Long: `glsllint validates GLSL shader files with the Khronos reference validator
(glslangValidator) and reports its diagnostics with file positions.

Shader stages are inferred from file names (foo.vert, foo.vs, foo.vsh,
foo.v.glsl, foo.vs.glsl). Sibling stages of the same program can be linked
together, and glslify modules are expanded before validation.

With no arguments the whole project is scanned. Directories are searched for
shader files; files are linted as given.`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr(), slog.LevelWarn)
	},
	Run: func(cmd *cobra.Command, args []string) {
		code, err := withTelemetry(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context) (int, error) {
			return runLint(ctx, cmd.OutOrStdout(), args)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
			return
		}
		if code != 0 {
			exitFunc(code)
		}
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.Version = Version
	output.Version = Version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootPath, "root", "r", "", "Project root directory (auto-detected if not specified)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVarP(&outputFormat, "format", "f", "console", "Output format for reports (console|compact|json|markdown)")
	flags.StringVarP(&outputFile, "output", "o", "", "Output file for json and markdown reports")
	flags.StringVar(&failOn, "fail-on", "error", "Exit non-zero on diagnostics at or above this level (error|warning|info)")
	flags.IntVarP(&concurrency, "concurrency", "j", 0, "Number of shaders validated in parallel")
	flags.StringVar(&validatorPath, "validator", "", "Path to glslangValidator")
	flags.BoolVar(&linkSiblings, "link", false, "Link sibling stages of each shader program")
	flags.StringVar(&telemetryMode, "telemetry", telemetry.ExporterNone, "Export traces and metrics (none|stdout)")

	bindFlags()
}

// bindFlags lets flags override config file keys.
func bindFlags() {
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("root", flags.Lookup("root"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("failOn", flags.Lookup("fail-on"))
	_ = viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("validatorPath", flags.Lookup("validator"))
	_ = viper.BindPFlag("linkSimilarShaders", flags.Lookup("link"))
}

// setupLogging installs the default slog handler. --verbose lowers the
// level to debug and --quiet raises it to error.
func setupLogging(w io.Writer, level slog.Level) {
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// withTelemetry installs exporters for the duration of fn.
func withTelemetry(ctx context.Context, w io.Writer, fn func(context.Context) (int, error)) (int, error) {
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceVersion: Version,
		TraceExporter:  telemetryMode,
		MetricExporter: telemetryMode,
		Writer:         w,
	})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	return fn(ctx)
}
