// Package expand runs the glslify module inliner over shader source before
// validation. Expanded text may end with an inline source map that relates
// it back to the original file and the modules it pulled in.
package expand

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/dotcommander/glsllint/internal/sourcemap"
)

// DefaultCommand is the glslify executable looked up on PATH.
const DefaultCommand = "glslify"

// DefaultTimeout bounds a single expansion.
const DefaultTimeout = 10 * time.Second

// ErrExpansion indicates glslify failed to expand the source.
var ErrExpansion = errors.New("glslify expansion failed")

// pragmaPattern matches the directive that marks a file as using glslify.
var pragmaPattern = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*pragma[ \t]+glslify\b`)

// NeedsExpansion reports whether content uses glslify directives.
func NeedsExpansion(content string) bool {
	return pragmaPattern.MatchString(content)
}

// Result is expanded shader text and, when glslify emitted one, the map back
// to the original sources. Text never includes the source map comment.
type Result struct {
	Text string
	Map  *sourcemap.Map
}

// Expander expands shader source whose includes resolve relative to baseDir.
type Expander interface {
	Expand(ctx context.Context, content, baseDir string) (Result, error)
}

// Glslify is an Expander backed by the glslify CLI. Source is passed on
// stdin and the command runs in baseDir so relative requires resolve.
type Glslify struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NewGlslify creates a Glslify expander. An empty command means DefaultCommand.
func NewGlslify(command string, args []string, timeout time.Duration) *Glslify {
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Glslify{Command: command, Args: args, Timeout: timeout}
}

// Expand runs glslify and splits its output into code and source map.
func (g *Glslify) Expand(ctx context.Context, content, baseDir string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.Command, g.Args...)
	cmd.Dir = baseDir
	cmd.Stdin = strings.NewReader(content)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("%w: %s: %v", ErrExpansion, g.Command, ctx.Err())
		}
		if msg != "" {
			return Result{}, fmt.Errorf("%w: %s: %v: %s", ErrExpansion, g.Command, err, msg)
		}
		return Result{}, fmt.Errorf("%w: %s: %v", ErrExpansion, g.Command, err)
	}

	text, m, err := sourcemap.Extract(stdout.String())
	if err != nil {
		// The expansion itself is usable; positions just cannot be remapped.
		slog.Warn("Discarding unreadable source map",
			slog.String("command", g.Command),
			slog.String("error", err.Error()),
		)
		m = nil
	}

	slog.Debug("Expanded shader",
		slog.String("command", g.Command),
		slog.String("dir", baseDir),
		slog.Bool("source_map", m != nil),
		slog.Duration("duration", time.Since(start)),
	)

	return Result{Text: text, Map: m}, nil
}
