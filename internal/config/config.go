package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/glsllint/internal/expand"
	"github.com/dotcommander/glsllint/internal/lint"
	"github.com/dotcommander/glsllint/internal/project"
	"github.com/dotcommander/glsllint/internal/validator"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. GLSLLINT_VALIDATORPATH or GLSLLINT_GLSLIFY_ENABLED.
const EnvPrefix = "GLSLLINT"

// Config represents the glsllint configuration
type Config struct {
	Root               string        `mapstructure:"root"`
	Exclude            []string      `mapstructure:"exclude"`
	FollowSymlinks     bool          `mapstructure:"followSymlinks"`
	Format             string        `mapstructure:"format"`
	Output             string        `mapstructure:"output"`
	FailOn             string        `mapstructure:"failOn"`
	Quiet              bool          `mapstructure:"quiet"`
	Verbose            bool          `mapstructure:"verbose"`
	Concurrency        int           `mapstructure:"concurrency"`
	Timeout            time.Duration `mapstructure:"timeout"`
	ValidatorPath      string        `mapstructure:"validatorPath"`
	LinkSimilarShaders bool          `mapstructure:"linkSimilarShaders"`
	Glslify            GlslifyConfig `mapstructure:"glslify"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// GlslifyConfig contains glslify expansion configuration
type GlslifyConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

func setDefaults() {
	viper.SetDefault("root", ".")
	viper.SetDefault("exclude", []string{})
	viper.SetDefault("followSymlinks", false)
	viper.SetDefault("format", "console")
	viper.SetDefault("output", "")
	viper.SetDefault("failOn", "error")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("concurrency", lint.DefaultConcurrency)
	viper.SetDefault("timeout", validator.DefaultTimeout)
	viper.SetDefault("validatorPath", validator.DefaultCommand)
	viper.SetDefault("linkSimilarShaders", false)
	viper.SetDefault("glslify.enabled", true)
	viper.SetDefault("glslify.command", expand.DefaultCommand)
	viper.SetDefault("glslify.args", []string{})
}

// LoadConfig loads configuration from defaults, the first .glsllintrc file
// found in rootPath (or the working directory), and GLSLLINT_* environment
// variables. A non-empty rootPath overrides the configured root.
func LoadConfig(rootPath string) (*Config, error) {
	setDefaults()

	searchDir := rootPath
	if searchDir == "" {
		searchDir = "."
	}
	if path := project.FindConfigFile(searchDir); path != "" {
		// Watching needs the directory of the file.
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return current(rootPath)
}

// current unmarshals the settings viper holds now.
func current(rootPath string) (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.ConfigFile = viper.ConfigFileUsed()

	if rootPath != "" {
		config.Root = rootPath
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Watch calls fn with the reloaded configuration every time the config file
// LoadConfig read changes on disk. Invalid edits are logged and skipped.
// The returned func stops delivery. Without a config file there is nothing
// to watch and the returned func does nothing.
func Watch(rootPath string, fn func(*Config)) (cancel func()) {
	if viper.ConfigFileUsed() == "" {
		return func() {}
	}

	var stopped atomic.Bool
	viper.OnConfigChange(func(e fsnotify.Event) {
		if stopped.Load() {
			return
		}
		cfg, err := current(rootPath)
		if err != nil {
			slog.Warn("Ignoring config change",
				slog.String("file", e.Name),
				slog.String("error", err.Error()),
			)
			return
		}
		slog.Info("Config reloaded", slog.String("file", e.Name))
		fn(cfg)
	})
	viper.WatchConfig()

	return func() { stopped.Store(true) }
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	switch config.Format {
	case "console", "compact", "json", "markdown":
	default:
		return fmt.Errorf("invalid format: %s. Must be one of console, compact, json, markdown", config.Format)
	}

	switch config.FailOn {
	case "error", "warning", "info":
	default:
		return fmt.Errorf("invalid fail-on level: %s. Must be 'error', 'warning', or 'info'", config.FailOn)
	}

	if config.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if config.Glslify.Enabled && config.Glslify.Command == "" {
		return fmt.Errorf("glslify.command is required when glslify is enabled")
	}

	return nil
}

// Settings projects the configuration onto lint session settings.
func (c *Config) Settings() lint.Settings {
	return lint.Settings{
		ValidatorPath:      c.ValidatorPath,
		LinkSimilarShaders: c.LinkSimilarShaders,
		Timeout:            c.Timeout,
		Glslify: lint.GlslifySettings{
			Enabled: c.Glslify.Enabled,
			Command: c.Glslify.Command,
			Args:    c.Glslify.Args,
		},
	}
}

// AsMap returns the configuration keyed like the config file.
func (c *Config) AsMap() map[string]any {
	exclude := c.Exclude
	if exclude == nil {
		exclude = []string{}
	}
	args := c.Glslify.Args
	if args == nil {
		args = []string{}
	}
	return map[string]any{
		"root":               c.Root,
		"exclude":            exclude,
		"followSymlinks":     c.FollowSymlinks,
		"format":             c.Format,
		"output":             c.Output,
		"failOn":             c.FailOn,
		"quiet":              c.Quiet,
		"verbose":            c.Verbose,
		"concurrency":        c.Concurrency,
		"timeout":            c.Timeout.String(),
		"validatorPath":      c.ValidatorPath,
		"linkSimilarShaders": c.LinkSimilarShaders,
		"glslify": map[string]any{
			"enabled": c.Glslify.Enabled,
			"command": c.Glslify.Command,
			"args":    args,
		},
	}
}

// SaveConfig saves the configuration to path, as YAML for .yaml/.yml files
// and JSON otherwise.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config.AsMap())
	default:
		data, err = json.MarshalIndent(config.AsMap(), "", "  ")
	}
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
