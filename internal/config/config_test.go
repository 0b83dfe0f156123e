package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: test-secret\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "mongo", cfg.Storage.Driver)
	require.Equal(t, "HS256", cfg.JWT.SigningMethod)
	require.Equal(t, "test-secret", cfg.JWT.Secret)
	require.Equal(t, 20, cfg.WS.RateLimitPerSec)
	require.Equal(t, 256, cfg.WS.SendBuffer)
	require.Equal(t, 15*time.Second, cfg.ReadTimeout)
	require.Equal(t, 10*time.Second, cfg.HandshakeTimeout)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
  read_timeout_seconds: 30
storage:
  driver: memory
ws:
  rate_limit_per_sec: 5
  handshake_timeout_seconds: 3
kafka:
  enabled: true
  brokers: ["kafka-1:9092", "kafka-2:9092"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "9000", cfg.Server.Port)
	require.Equal(t, 30*time.Second, cfg.ReadTimeout)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, 5, cfg.WS.RateLimitPerSec)
	require.Equal(t, 3*time.Second, cfg.HandshakeTimeout)
	require.True(t, cfg.Kafka.Enabled)
	require.Len(t, cfg.Kafka.Brokers, 2)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: file-secret\n")

	t.Setenv("APP_SERVER_PORT", "7777")
	t.Setenv("APP_JWT_SECRET", "env-secret")
	// Env-only key, absent from the file entirely.
	t.Setenv("APP_STORAGE_DRIVER", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "7777", cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.JWT.Secret)
	require.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
