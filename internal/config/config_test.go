package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.IgnoreCase)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogDir)
	assert.True(t, cfg.Color)
	assert.True(t, cfg.History.Enabled)
	assert.Empty(t, cfg.History.DBPath)
	assert.Equal(t, 30, cfg.History.KeepDays)
	assert.NoError(t, cfg.Validate())
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `ignore_case: true
log_level: debug
log_dir: /tmp/minigrep-logs
color: false
history:
  enabled: false
  db_path: /tmp/history.db
  keep_days: 7
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.IgnoreCase)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/minigrep-logs", cfg.LogDir)
	assert.False(t, cfg.Color)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/history.db", cfg.History.DBPath)
	assert.Equal(t, 7, cfg.History.KeepDays)
}

// TestLoadConfigPartialFile verifies absent keys keep their defaults
func TestLoadConfigPartialFile(t *testing.T) {
	path := writeConfig(t, `log_level: warn
history:
  keep_days: 0
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Color, "color should keep its default")
	assert.True(t, cfg.History.Enabled, "history.enabled should keep its default")
	assert.Equal(t, 0, cfg.History.KeepDays, "explicit zero should be honored")
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

// TestLoadConfigMalformed tests that invalid YAML is reported
func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "log_level: [unterminated\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

// TestLoadConfigFromDir verifies config.yaml is found inside the directory
func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("ignore_case: true\n"), 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.True(t, cfg.IgnoreCase)
}

// TestApplyEnv verifies IGNORE_CASE only needs to be present
func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{name: "unset", env: map[string]string{}, want: false},
		{name: "set to 1", env: map[string]string{IgnoreCaseEnv: "1"}, want: true},
		{name: "set to empty", env: map[string]string{IgnoreCaseEnv: ""}, want: true},
		{name: "set to 0 still counts", env: map[string]string{IgnoreCaseEnv: "0"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ApplyEnv(func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			})
			assert.Equal(t, tt.want, cfg.IgnoreCase)
		})
	}
}

// TestMergeWithFlags verifies flags override config values
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IgnoreCase = true

	cfg.MergeWithFlags(boolPtr(false), strPtr("error"), strPtr("/var/log/minigrep"), boolPtr(false), boolPtr(false))

	assert.True(t, cfg.IgnoreCase, "an unset --ignore-case flag must not undo the config file")
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "/var/log/minigrep", cfg.LogDir)
	assert.False(t, cfg.Color)
	assert.False(t, cfg.History.Enabled)

	cfg = DefaultConfig()
	cfg.MergeWithFlags(boolPtr(true), nil, nil, nil, nil)
	assert.True(t, cfg.IgnoreCase)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.History.Enabled)
}

// TestValidate covers invalid values
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "uppercase level", mutate: func(c *Config) { c.LogLevel = "DEBUG" }},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "invalid log_level"},
		{name: "negative keep days", mutate: func(c *Config) { c.History.KeepDays = -1 }, wantErr: "keep_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestLoadDotEnv verifies .env values are loaded without overriding the environment
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MINIGREP_TEST_FROM_FILE=file\nMINIGREP_TEST_PRESET=file\n"), 0644))

	t.Setenv("MINIGREP_TEST_PRESET", "env")
	t.Setenv("MINIGREP_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("MINIGREP_TEST_FROM_FILE"))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("MINIGREP_TEST_FROM_FILE") })

	assert.Equal(t, "file", os.Getenv("MINIGREP_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("MINIGREP_TEST_PRESET"))
}

// TestLoadDotEnvMissing verifies a missing .env file is ignored
func TestLoadDotEnvMissing(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
