package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policydash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FRED_API_KEY", "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, SourceCSV, cfg.Data.Source)
	assert.Equal(t, ":8050", cfg.Server.Addr)
	assert.Zero(t, cfg.FRED.Timeout)
	assert.Empty(t, cfg.FRED.APIKey)
	assert.Equal(t, "info", cfg.Logging().Level)
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("FRED_API_KEY", "abc123")

	cfg, err := Load(writeConfig(t, "data:\n  dir: cache\n"))
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.FREDProvider().APIKey)
	assert.Equal(t, "cache", cfg.Data.Dir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("POLICYDASH_SERVER_ADDR", ":9000")

	cfg, err := Load(writeConfig(t, "server:\n  addr: \":8000\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "sqlite without db", body: "data:\n  source: sqlite\n"},
		{name: "unknown source", body: "data:\n  source: parquet\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadTimeoutIsOptIn(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Zero(t, cfg.FREDProvider().Timeout)

	t.Setenv("POLICYDASH_FRED_TIMEOUT", "45s")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.FREDProvider().Timeout)
}
