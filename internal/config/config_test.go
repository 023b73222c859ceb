package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "arsenal.sqlite3", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "Admin", cfg.AdminUser)
	assert.Empty(t, cfg.RedisURL)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, 168, cfg.TokenExpiryHours)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := "DB=/var/lib/arsenal/file.db\nADDR=:9000\nMETRICS=false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arsenal.env"), []byte(content), 0o600))

	t.Setenv("ARSENAL_ADDR", ":9100")
	t.Setenv("ARSENAL_REDIS_URL", "redis://localhost:6379/1")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/arsenal/file.db", cfg.DBPath, "from file")
	assert.Equal(t, ":9100", cfg.Addr, "env wins over file")
	assert.False(t, cfg.Metrics)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
}

func TestRejectsNonPositiveExpiry(t *testing.T) {
	t.Setenv("ARSENAL_TOKEN_EXPIRY_HOURS", "0")
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
