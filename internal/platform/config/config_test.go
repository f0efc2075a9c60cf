package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig_FileValues(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
  address: ":9090"
  cors:
    allowedOrigins: ["https://app.example.com"]
database:
  driver: postgres
  dsn: "host=db user=kollab"
redis:
  enabled: true
  schemaCacheTTL: 30s
table:
  timezone: UTC
  bulkConcurrency: 4
`)
	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.Cors.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.SchemaCacheTTL)
	assert.Equal(t, 4, cfg.Table.BulkConcurrency)
	// 未在文件中出现的键取默认值
	assert.Equal(t, 500, cfg.Table.MaxBulkSize)
	assert.Equal(t, "warn", cfg.Database.LogLevel)

	loc, err := cfg.Table.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := writeConfig(t, "server:\n  address: \":9090\"\n")
	t.Setenv("SERVER_ADDRESS", ":7070")
	t.Setenv("TABLE_MAXBULKSIZE", "50")

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, 50, cfg.Table.MaxBulkSize)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	dir := writeConfig(t, "database:\n  driver: oracle\n")
	_, err := config.LoadConfig(dir)
	assert.ErrorContains(t, err, "oracle")
}

func TestLoadConfig_RejectsBadTimezone(t *testing.T) {
	dir := writeConfig(t, "table:\n  timezone: Mars/Olympus\n")
	_, err := config.LoadConfig(dir)
	assert.Error(t, err)
}
