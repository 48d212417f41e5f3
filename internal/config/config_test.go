package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/glsllint/internal/validator"
)

// resetViper resets viper to a clean state for each test
func resetViper() {
	viper.Reset()
}

// setupTestDir creates a temporary directory and makes it the working directory.
func setupTestDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})
	return tmpDir
}

func validConfig() *Config {
	return &Config{
		Root:          ".",
		Format:        "console",
		FailOn:        "error",
		Concurrency:   4,
		Timeout:       10 * time.Second,
		ValidatorPath: "glslangValidator",
		Glslify:       GlslifyConfig{Enabled: true, Command: "glslify"},
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper()
	setupTestDir(t)

	config, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, ".", config.Root)
	assert.Empty(t, config.Exclude)
	assert.Equal(t, "console", config.Format)
	assert.Equal(t, "error", config.FailOn)
	assert.False(t, config.FollowSymlinks)
	assert.False(t, config.Quiet)
	assert.False(t, config.Verbose)
	assert.Equal(t, 4, config.Concurrency)
	assert.Equal(t, validator.DefaultTimeout, config.Timeout)
	assert.Equal(t, "glslangValidator", config.ValidatorPath)
	assert.False(t, config.LinkSimilarShaders)
	assert.True(t, config.Glslify.Enabled)
	assert.Equal(t, "glslify", config.Glslify.Command)
	assert.Empty(t, config.ConfigFile)
}

func TestLoadConfigFromJSON(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	configData := map[string]any{
		"root":               "/custom/root",
		"exclude":            []string{"vendor/**", "**/*.tmp.frag"},
		"followSymlinks":     true,
		"format":             "json",
		"output":             "report.json",
		"failOn":             "warning",
		"quiet":              true,
		"concurrency":        8,
		"timeout":            "3s",
		"validatorPath":      "/opt/glslang/bin/glslangValidator",
		"linkSimilarShaders": true,
		"glslify": map[string]any{
			"enabled": false,
			"command": "npx",
			"args":    []string{"glslify"},
		},
	}

	jsonData, err := json.MarshalIndent(configData, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".glsllintrc.json"), jsonData, 0644))

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/custom/root", config.Root)
	assert.Equal(t, []string{"vendor/**", "**/*.tmp.frag"}, config.Exclude)
	assert.True(t, config.FollowSymlinks)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "report.json", config.Output)
	assert.Equal(t, "warning", config.FailOn)
	assert.True(t, config.Quiet)
	assert.Equal(t, 8, config.Concurrency)
	assert.Equal(t, 3*time.Second, config.Timeout)
	assert.Equal(t, "/opt/glslang/bin/glslangValidator", config.ValidatorPath)
	assert.True(t, config.LinkSimilarShaders)
	assert.False(t, config.Glslify.Enabled)
	assert.Equal(t, "npx", config.Glslify.Command)
	assert.Equal(t, []string{"glslify"}, config.Glslify.Args)
	assert.Equal(t, ".glsllintrc.json", filepath.Base(config.ConfigFile))
}

func TestLoadConfigFromYAML(t *testing.T) {
	for _, name := range []string{".glsllintrc.yaml", ".glsllintrc.yml"} {
		t.Run(name, func(t *testing.T) {
			resetViper()
			tmpDir := setupTestDir(t)

			yamlContent := `
format: markdown
failOn: info
verbose: true
timeout: 250ms
linkSimilarShaders: true
glslify:
  command: ./node_modules/.bin/glslify
`
			require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte(yamlContent), 0644))

			config, err := LoadConfig("")
			require.NoError(t, err)

			assert.Equal(t, "markdown", config.Format)
			assert.Equal(t, "info", config.FailOn)
			assert.True(t, config.Verbose)
			assert.Equal(t, 250*time.Millisecond, config.Timeout)
			assert.True(t, config.LinkSimilarShaders)
			assert.True(t, config.Glslify.Enabled, "unset keys keep defaults")
			assert.Equal(t, "./node_modules/.bin/glslify", config.Glslify.Command)
		})
	}
}

func TestLoadConfigFromRootPath(t *testing.T) {
	resetViper()
	setupTestDir(t)

	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, ".glsllintrc.yaml"), []byte("concurrency: 2\n"), 0644))

	config, err := LoadConfig(project)
	require.NoError(t, err)

	assert.Equal(t, project, config.Root)
	assert.Equal(t, 2, config.Concurrency)
}

func TestLoadConfigConfigFilePriority(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".glsllintrc.json"), []byte(`{"concurrency": 3}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".glsllintrc.yaml"), []byte("concurrency: 5\n"), 0644))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, config.Concurrency, "JSON config takes precedence")
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	resetViper()
	setupTestDir(t)

	t.Setenv("GLSLLINT_VALIDATORPATH", "/env/glslangValidator")
	t.Setenv("GLSLLINT_LINKSIMILARSHADERS", "true")
	t.Setenv("GLSLLINT_GLSLIFY_ENABLED", "false")
	t.Setenv("GLSLLINT_TIMEOUT", "2s")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/env/glslangValidator", config.ValidatorPath)
	assert.True(t, config.LinkSimilarShaders)
	assert.False(t, config.Glslify.Enabled)
	assert.Equal(t, 2*time.Second, config.Timeout)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".glsllintrc.json"), []byte("{not json"), 0644))

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfigValidationError(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".glsllintrc.yaml"), []byte("format: xml\n"), 0644))

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"json format", func(c *Config) { c.Format = "json" }, ""},
		{"markdown format", func(c *Config) { c.Format = "markdown" }, ""},
		{"compact format", func(c *Config) { c.Format = "compact" }, ""},
		{"invalid format", func(c *Config) { c.Format = "xml" }, "invalid format"},
		{"fail on warning", func(c *Config) { c.FailOn = "warning" }, ""},
		{"fail on info", func(c *Config) { c.FailOn = "info" }, ""},
		{"invalid fail on", func(c *Config) { c.FailOn = "suggestion" }, "invalid fail-on level"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency must be at least 1"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout must be positive"},
		{"glslify without command", func(c *Config) { c.Glslify.Command = "" }, "glslify.command"},
		{"glslify disabled without command", func(c *Config) {
			c.Glslify.Enabled = false
			c.Glslify.Command = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := validateConfig(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettings(t *testing.T) {
	c := validConfig()
	c.ValidatorPath = "/usr/bin/glslangValidator"
	c.LinkSimilarShaders = true
	c.Glslify.Args = []string{"-t", "glslify-hex"}

	s := c.Settings()
	assert.Equal(t, "/usr/bin/glslangValidator", s.ValidatorPath)
	assert.True(t, s.LinkSimilarShaders)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.True(t, s.Glslify.Enabled)
	assert.Equal(t, "glslify", s.Glslify.Command)
	assert.Equal(t, []string{"-t", "glslify-hex"}, s.Glslify.Args)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	for _, name := range []string{".glsllintrc.json", ".glsllintrc.yaml"} {
		t.Run(name, func(t *testing.T) {
			resetViper()
			tmpDir := setupTestDir(t)

			original := validConfig()
			original.Timeout = 1500 * time.Millisecond
			original.Exclude = []string{"dist/**"}
			original.LinkSimilarShaders = true
			require.NoError(t, SaveConfig(original, filepath.Join(tmpDir, name)))

			loaded, err := LoadConfig("")
			require.NoError(t, err)
			assert.Equal(t, original.Timeout, loaded.Timeout)
			assert.Equal(t, original.Exclude, loaded.Exclude)
			assert.True(t, loaded.LinkSimilarShaders)
		})
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", ".glsllintrc.yaml")
	require.NoError(t, SaveConfig(validConfig(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "10s", decoded["timeout"])
}

func TestSaveConfigInvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := SaveConfig(validConfig(), filepath.Join(blocker, "sub", ".glsllintrc.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating directory")
}

func TestWatchWithoutConfigFile(t *testing.T) {
	resetViper()
	setupTestDir(t)

	_, err := LoadConfig("")
	require.NoError(t, err)

	cancel := Watch("", func(*Config) { t.Error("unexpected change") })
	cancel()
}

func TestWatchDeliversChanges(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)
	path := filepath.Join(tmpDir, ".glsllintrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("linkSimilarShaders: false\n"), 0644))

	_, err := LoadConfig("")
	require.NoError(t, err)

	changes := make(chan *Config, 8)
	cancel := Watch("", func(c *Config) { changes <- c })
	defer cancel()

	require.NoError(t, os.WriteFile(path, []byte("linkSimilarShaders: true\n"), 0644))

	select {
	case c := <-changes:
		assert.True(t, c.LinkSimilarShaders)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not delivered")
	}
}
