// Package validator runs the external GLSL reference validator
// (glslangValidator) over one or more shader units and captures its output.
//
// A non-zero exit status from the validator is the normal way it reports
// that a shader has errors, so it is not treated as a failure. Only a
// validator that cannot be started at all produces a LaunchError.
package validator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dotcommander/glsllint/internal/shader"
)

// DefaultCommand is the validator looked up on PATH when none is configured.
const DefaultCommand = "glslangValidator"

// DefaultTimeout bounds a single validator run.
const DefaultTimeout = 10 * time.Second

// LinkFlag asks the validator to link all given stages and report
// cross-stage errors.
const LinkFlag = "-l"

// Invoker runs the validator.
//
// Thread Safety: Safe for concurrent use; every Run gets its own temp dir.
type Invoker struct {
	command string
	timeout time.Duration
	tempDir string
}

// Option configures the Invoker.
type Option func(*Invoker)

// WithTimeout sets the per-run timeout. Zero keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(inv *Invoker) {
		if d > 0 {
			inv.timeout = d
		}
	}
}

// WithTempDir sets the parent directory for per-run temp directories.
func WithTempDir(dir string) Option {
	return func(inv *Invoker) {
		inv.tempDir = dir
	}
}

// NewInvoker creates an Invoker for the given validator command.
// An empty command means DefaultCommand.
func NewInvoker(command string, opts ...Option) *Invoker {
	if command == "" {
		command = DefaultCommand
	}

	inv := &Invoker{
		command: command,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Command returns the validator executable this Invoker runs.
func (inv *Invoker) Command() string {
	return inv.command
}

// BuildArgs returns the validator arguments for files. The link flag is
// only added when link is set and more than one file is validated.
func BuildArgs(files []string, link bool) []string {
	args := make([]string, 0, len(files)+1)
	if link && len(files) > 1 {
		args = append(args, LinkFlag)
	}
	return append(args, files...)
}

// Run writes each unit to a temp file named after its canonical name,
// runs the validator over them and returns its standard output.
func (inv *Invoker) Run(ctx context.Context, units []shader.Unit, link bool) (string, error) {
	if len(units) == 0 {
		return "", ErrNoUnits
	}

	dir, err := os.MkdirTemp(inv.tempDir, "glsllint-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	files, err := materialize(dir, units)
	if err != nil {
		return "", err
	}

	return inv.execute(ctx, dir, BuildArgs(files, link))
}

// materialize writes every unit into dir and returns the file paths in order.
func materialize(dir string, units []shader.Unit) ([]string, error) {
	files := make([]string, 0, len(units))
	for _, u := range units {
		path := filepath.Join(dir, u.Name)
		if err := os.WriteFile(path, []byte(u.Content), 0600); err != nil {
			return nil, fmt.Errorf("writing temp file %s: %w", u.Name, err)
		}
		files = append(files, path)
	}
	return files, nil
}

// execute runs the validator subprocess.
func (inv *Invoker) execute(ctx context.Context, dir string, args []string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, inv.command, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", NewLaunchError(inv.command, ErrValidatorTimeout).WithOutput(stderr.String())
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", NewLaunchError(inv.command, fmt.Errorf("%w: %w", ErrValidatorLaunch, err)).
				WithOutput(stderr.String())
		}
		// Exit status 1/2 means diagnostics were reported.
		slog.Debug("Validator reported problems",
			slog.String("command", inv.command),
			slog.Int("exit_code", exitErr.ExitCode()),
		)
	}

	slog.Debug("Validator finished",
		slog.String("command", inv.command),
		slog.Int("files", len(args)),
		slog.Duration("duration", time.Since(start)),
	)

	return stdout.String(), nil
}
