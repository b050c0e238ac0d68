package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Processing.OnError = OnErrorAbort
	cfg.Logging.Level = "debug"
	cfg.Metrics.Textfile = "/var/lib/node_exporter/settle.prom"

	path := filepath.Join(t.TempDir(), "settle.yaml")
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, OnErrorSkip, cfg.Processing.OnError)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Empty(t, cfg.Metrics.Textfile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processing:\n  on_error: abort\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, OnErrorAbort, cfg.Processing.OnError)
	assert.Equal(t, "warn", cfg.Logging.Level, "unset keys keep their defaults")
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processing: [\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settle.yaml")
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "on_error: skip")
	assert.Contains(t, contents, "level: warn")
	assert.Contains(t, contents, "format: console")
	assert.Contains(t, contents, "textfile: \"\"")
	assert.Contains(t, contents, "rejects_file: \"\"")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SETTLE_ON_ERROR", "abort")
	t.Setenv("SETTLE_LOG_FORMAT", "json")
	t.Setenv("SETTLE_METRICS_TEXTFILE", "/tmp/settle.prom")
	t.Setenv("SETTLE_REJECTS_FILE", "/tmp/rejects.csv")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, OnErrorAbort, cfg.Processing.OnError)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "warn", cfg.Logging.Level, "unset variables leave values alone")
	assert.Equal(t, "/tmp/settle.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "/tmp/rejects.csv", cfg.Processing.RejectsFile)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"on_error", func(c *Config) { c.Processing.OnError = "retry" }, "processing.on_error"},
		{"level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		err := cfg.Validate()
		require.Error(t, err, tt.name)
		assert.Contains(t, err.Error(), tt.want, tt.name)
	}

	cfg := Default()
	cfg.Logging.Level = "ERROR"
	assert.NoError(t, cfg.Validate(), "levels are case-insensitive")
}
