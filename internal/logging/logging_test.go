package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/idilsaglam/shoplist/internal/config"
)

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, l)

	l, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, l)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shoplist.log")
	log, err := New(config.LoggingConfig{Level: "info", File: path}, false)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("saved list")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "saved list")
	assert.NotContains(t, string(b), "hidden")
}

func TestVerboseForcesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shoplist.log")
	log, err := New(config.LoggingConfig{Level: "error", File: path, JSON: true}, true)
	require.NoError(t, err)
	log.Debug("details")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"details"`)
}

func TestForTUIWithoutFileIsNop(t *testing.T) {
	log, err := ForTUI(config.LoggingConfig{Level: "debug"}, true)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))
}
