package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadApp(t *testing.T) {
	t.Run("defaults applied to empty file", func(t *testing.T) {
		cfg, err := LoadApp(writeYAML(t, "{}"))
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, BackendMemory, cfg.Store.Backend)
		assert.Equal(t, BackendMemory, cfg.Ledger.Backend)
		assert.Equal(t, "kv_store", cfg.Store.Table)
		assert.Equal(t, 60.0, cfg.Spawn.SpawnDistance)
		assert.Equal(t, 30.0, cfg.Spawn.BufferZone)
		assert.Equal(t, 5.0, cfg.Spawn.MinObstacleSpacing)
		assert.Equal(t, 2.0, cfg.Spawn.LaneTolerance)
		assert.Equal(t, 20.0, cfg.Spawn.DeferralMargin)
		assert.Equal(t, 5*time.Second, cfg.Spawn.HistoryDuration)
		assert.Equal(t, []float64{-3, 0, 3}, cfg.Spawn.Lanes)
		assert.Equal(t, 3, cfg.Rewards.MaxAttempts)
		assert.Equal(t, RewardModeMock, cfg.Rewards.Mode)
		assert.Equal(t, 5*time.Second, cfg.Rewards.Timeout)
		assert.False(t, cfg.Kafka.Enabled)
	})

	t.Run("environment variables are expanded", func(t *testing.T) {
		t.Setenv("RUNNER_REDIS_ADDR", "redis.internal:6380")
		cfg, err := LoadApp(writeYAML(t, `
store:
  backend: redis
  async: true
redis:
  addr: ${RUNNER_REDIS_ADDR}
spawn:
  spawn_distance: 80
  lanes: [-2, 2]
`))
		require.NoError(t, err)

		assert.Equal(t, BackendRedis, cfg.Store.Backend)
		assert.True(t, cfg.Store.Async)
		assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
		assert.Equal(t, 80.0, cfg.Spawn.SpawnDistance)
		assert.Equal(t, []float64{-2, 2}, cfg.Spawn.Lanes)
	})

	t.Run("unknown store backend", func(t *testing.T) {
		_, err := LoadApp(writeYAML(t, "store:\n  backend: etcd\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown store backend "etcd"`)
	})

	t.Run("redis ledger is rejected", func(t *testing.T) {
		_, err := LoadApp(writeYAML(t, "ledger:\n  backend: redis\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown ledger backend")
	})

	t.Run("http rewards need an endpoint", func(t *testing.T) {
		_, err := LoadApp(writeYAML(t, "rewards:\n  mode: http\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rewards endpoint is required")

		cfg, err := LoadApp(writeYAML(t, "rewards:\n  mode: http\n  endpoint: http://wallet:9000\n"))
		require.NoError(t, err)
		assert.Equal(t, "http://wallet:9000", cfg.Rewards.Endpoint)
	})

	t.Run("unknown rewards mode", func(t *testing.T) {
		_, err := LoadApp(writeYAML(t, "rewards:\n  mode: carrier_pigeon\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown rewards mode "carrier_pigeon"`)
	})

	t.Run("negative session sweep interval", func(t *testing.T) {
		_, err := LoadApp(writeYAML(t, "sessions:\n  sweep_interval: -1s\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sweep_interval must be positive")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadApp("/nonexistent/config.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadApp(writeYAML(t, "server: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config file")
	})
}

func TestPostgresConfig_ConnectionString(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "runner"}
	assert.Equal(t, "postgres://u:p@db:5433/runner?sslmode=disable", c.ConnectionString())

	c.SSLMode = "require"
	assert.Equal(t, "postgres://u:p@db:5433/runner?sslmode=require", c.ConnectionString())
}

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5*time.Second, cfg.Store.WriteTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTTL)
	assert.Equal(t, time.Minute, cfg.Sessions.SweepInterval)
}
