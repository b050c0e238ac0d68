package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"", zapcore.InfoLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.input)
		require.NoError(t, err, "parseLevel(%q)", tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseLevel("trace")
	assert.Error(t, err)
}

func TestNewLogger_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settle.log")
	logger, err := NewLogger(Config{Level: "warn", Format: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Info("dropped below level")
	logger.Named("engine").Warn("transaction rejected", zap.Uint32("tx", 7), zap.String("reason", "not_disputed"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "dropped below level")
	assert.Contains(t, out, `"msg":"transaction rejected"`)
	assert.Contains(t, out, `"logger":"engine"`)
	assert.Contains(t, out, `"tx":7`)
	assert.Contains(t, out, `"reason":"not_disputed"`)
}

func TestNewLogger_Defaults(t *testing.T) {
	logger, err := NewLogger(DefaultConfig())
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger(Config{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()
	logger.With(zap.Int("client", 1)).Error("ignored")
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
