package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrlogo/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 300, cfg.DefaultSize)
	assert.Equal(t, 2000, cfg.MaxSize)
	assert.Equal(t, int64(5<<20), cfg.MaxLogoBytes)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.AllowRemoteSources)
	assert.True(t, cfg.ParallelDecode)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("QR_MAX_SIZE", "1000")
	t.Setenv("ALLOW_REMOTE_SOURCES", "true")
	t.Setenv("SOURCE_FETCH_TIMEOUT", "3s")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 1000, cfg.MaxSize)
	assert.True(t, cfg.AllowRemoteSources)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))
}

func TestLoadRejectsBadRanges(t *testing.T) {
	t.Setenv("QR_DEFAULT_SIZE", "5000")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "QR_DEFAULT_SIZE")
}
