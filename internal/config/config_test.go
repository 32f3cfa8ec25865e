package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 50, cfg.Import.MaxFileSizeMB)
	assert.Equal(t, int64(50<<20), cfg.Import.MaxFileSizeBytes())
	assert.Equal(t, 4, cfg.Import.WorkerConcurrency)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.RedactPIIEnabled())
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9090
import:
  max_file_size_mb: 25
  worker_concurrency: 8
  run_timeout_minutes: 5
logging:
  level: debug
  redact_pii: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(25<<20), cfg.Import.MaxFileSizeBytes())
	assert.Equal(t, 8, cfg.Import.WorkerConcurrency)
	assert.Equal(t, 5*60, int(cfg.Import.RunTimeout().Seconds()))
	assert.False(t, cfg.Logging.RedactPIIEnabled())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://db/test")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("IMPORT_WORKER_CONCURRENCY", "2")
	t.Setenv("ARCHIVE_S3_BUCKET", "seller-archive")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres://db/test", cfg.Database.URL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Import.WorkerConcurrency)
	assert.True(t, cfg.Archive.Enabled, "setting a bucket enables archival")
	assert.Equal(t, "seller-archive", cfg.Archive.S3Bucket)
}

func TestLoadFromEnv_BadNumbersIgnored(t *testing.T) {
	path := writeConfig(t, "")

	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("IMPORT_WORKER_CONCURRENCY", "-3")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Import.WorkerConcurrency)
}
