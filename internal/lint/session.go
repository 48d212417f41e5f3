// Package lint provides the shader lint facade and batch orchestration.
//
// A Session owns the process-wide settings (validator path, sibling linking,
// glslify expansion) and runs the classify, expand, validate, parse and
// remap pipeline for each request. Requests may run concurrently; they share
// only an immutable settings snapshot that configuration changes replace in
// a single atomic store.
package lint

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dotcommander/glsllint/internal/expand"
	"github.com/dotcommander/glsllint/internal/shader"
	"github.com/dotcommander/glsllint/internal/validator"
)

// ErrEmptyPath is returned by Lint when the host has no file path.
var ErrEmptyPath = errors.New("shader path is empty")

// GlslifySettings controls glslify expansion.
type GlslifySettings struct {
	Enabled bool
	Command string
	Args    []string
}

// Settings is the configuration a Session lints with.
type Settings struct {
	// ValidatorPath is the configured validator; empty means the default.
	ValidatorPath string

	// LinkSimilarShaders validates sibling stage files together with the
	// linted file.
	LinkSimilarShaders bool

	// Timeout bounds each validator and expansion run.
	Timeout time.Duration

	Glslify GlslifySettings
}

// DefaultSettings returns the settings used before any configuration arrives.
func DefaultSettings() Settings {
	return Settings{
		ValidatorPath: validator.DefaultCommand,
		Timeout:       validator.DefaultTimeout,
		Glslify: GlslifySettings{
			Enabled: true,
			Command: expand.DefaultCommand,
		},
	}
}

// Notifier is the side channel for persistent configuration problems.
type Notifier interface {
	// Show displays msg, replacing any message already shown.
	Show(msg string)
	// Hide removes the message, if any.
	Hide()
}

type nopNotifier struct{}

func (nopNotifier) Show(string) {}
func (nopNotifier) Hide()       {}

// snapshot is the immutable state one lint request works with.
type snapshot struct {
	settings Settings
	command  string
	invoker  *validator.Invoker
	expander expand.Expander
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier sets the side channel for configuration warnings.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithExpanderFactory replaces how expanders are built from settings.
func WithExpanderFactory(fn func(GlslifySettings, time.Duration) expand.Expander) Option {
	return func(s *Session) {
		s.newExpander = fn
	}
}

// Session is the linter facade held by the host.
//
// Thread Safety: Lint is safe for concurrent use. ApplySettings calls are
// serialized internally.
type Session struct {
	state       atomic.Pointer[snapshot]
	notifier    Notifier
	newExpander func(GlslifySettings, time.Duration) expand.Expander

	mu            sync.Mutex
	subscriptions []func()
	closed        bool
}

// NewSession creates a Session using DefaultSettings until Activate runs.
func NewSession(opts ...Option) *Session {
	s := &Session{
		notifier: nopNotifier{},
		newExpander: func(g GlslifySettings, timeout time.Duration) expand.Expander {
			return expand.NewGlslify(g.Command, g.Args, timeout)
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	defaults := DefaultSettings()
	s.state.Store(s.build(defaults, validator.DefaultCommand))
	return s
}

// Activate applies the initial settings.
func (s *Session) Activate(settings Settings) {
	s.ApplySettings(settings)
}

// Subscribe registers a release func, such as a config watch cancel, that
// Close calls.
func (s *Session) Subscribe(release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		release()
		return
	}
	s.subscriptions = append(s.subscriptions, release)
}

// Close releases every subscription. Lint keeps working with the last
// settings.
func (s *Session) Close() {
	s.mu.Lock()
	subs := s.subscriptions
	s.subscriptions = nil
	s.closed = true
	s.mu.Unlock()

	for _, release := range subs {
		release()
	}
}

// ApplySettings revalidates the validator path and swaps in a new snapshot.
//
// An unusable validator path is reported through the Notifier and does not
// block linting: the previously resolved command stays in use.
func (s *Session) ApplySettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settings.Timeout <= 0 {
		settings.Timeout = validator.DefaultTimeout
	}

	configured := settings.ValidatorPath
	if configured == "" {
		configured = validator.DefaultCommand
	}

	command := s.state.Load().command
	resolved, err := validator.ResolvePath(configured)
	if err != nil {
		slog.Warn("Validator not usable, keeping previous command",
			slog.String("configured", configured),
			slog.String("previous", command),
			slog.String("error", err.Error()),
		)
		s.notifier.Show(fmt.Sprintf("Unable to locate glslangValidator at '%s'", configured))
	} else {
		command = resolved
		s.notifier.Hide()
	}

	s.state.Store(s.build(settings, command))

	slog.Debug("Applied settings",
		slog.String("validator", command),
		slog.Bool("link_similar_shaders", settings.LinkSimilarShaders),
		slog.Bool("glslify", settings.Glslify.Enabled),
	)
}

// Settings returns the settings currently in effect.
func (s *Session) Settings() Settings {
	return s.state.Load().settings
}

// ValidatorCommand returns the validator command currently in effect.
func (s *Session) ValidatorCommand() string {
	return s.state.Load().command
}

func (s *Session) build(settings Settings, command string) *snapshot {
	snap := &snapshot{
		settings: settings,
		command:  command,
		invoker:  validator.NewInvoker(command, validator.WithTimeout(settings.Timeout)),
	}
	if settings.Glslify.Enabled {
		snap.expander = s.newExpander(settings.Glslify, settings.Timeout)
	}
	return snap
}

// classify is split out so callers can reject bad names before doing I/O.
func classify(path string) (*shader.Tokens, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return shader.Classify(path)
}
