package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromMissingFileUsesDefaults(t *testing.T) {
	cfg := LoadConfigFrom(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 50, cfg.WebSocket.HistoryLimit)
	assert.EqualValues(t, 10*1024*1024, cfg.Upload.MaxSize)
	assert.Equal(t, "/uploads", cfg.Upload.URLPrefix)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfigFromYAMLKeepsOmittedDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "8080"
  allowedOrigins: ["http://localhost:3000"]
database:
  driver: mysql
  host: db.internal
websocket:
  pingInterval: 15s
redis:
  enabled: true
  presenceTTL: 45s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg := LoadConfigFrom(path)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 15*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, 50, cfg.WebSocket.HistoryLimit)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 45*time.Second, cfg.Redis.PresenceTTL)
}

func TestLoadConfigFromInvalidYAMLFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	cfg := LoadConfigFrom(path)
	assert.Equal(t, "3001", cfg.Server.Port)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"8080\"\n"), 0o644))

	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_EXPIRE_TIME", "2h")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "0")
	t.Setenv("WS_HISTORY_LIMIT", "20")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("UPLOAD_BACKEND", "s3")
	t.Setenv("UPLOAD_S3_BUCKET", "files")
	t.Setenv("LOG_CONSOLE", "false")

	cfg := LoadConfigFrom(path)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 20, cfg.WebSocket.HistoryLimit)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 1e-9)
	assert.Equal(t, "s3", cfg.Upload.Backend)
	assert.Equal(t, "files", cfg.Upload.S3.Bucket)
	assert.False(t, cfg.Log.Console)
}

func TestMalformedEnvironmentValuesAreIgnored(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("WS_PING_INTERVAL", "soon")
	t.Setenv("REDIS_ENABLED", "maybe")

	cfg := LoadConfigFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingInterval)
	assert.False(t, cfg.Redis.Enabled)
}
