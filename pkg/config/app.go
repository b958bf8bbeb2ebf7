package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"

	RewardModeMock = "mock"
	RewardModeHTTP = "http"
)

// AppConfig represents the server configuration loaded from config.yaml.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Spawn    SpawnConfig    `yaml:"spawn"`
	Rewards  RewardsConfig  `yaml:"rewards"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Sessions SessionsConfig `yaml:"sessions"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig selects where progression snapshots are persisted.
type StoreConfig struct {
	Backend      string        `yaml:"backend"`
	Async        bool          `yaml:"async"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	Table        string        `yaml:"table"`
}

// LedgerConfig selects where claim receipts are recorded.
type LedgerConfig struct {
	Backend string `yaml:"backend"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	KeyTTL       time.Duration `yaml:"key_ttl"`
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxConnections  int           `yaml:"max_connections"`
	MinConnections  int           `yaml:"min_connections"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// ConnectionString returns the PostgreSQL connection URL.
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode,
	)
}

// SessionsConfig bounds how long player sessions stay in memory.
type SessionsConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// KafkaConfig holds gameplay event consumer configuration
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
	Enabled bool     `yaml:"enabled"`
}

// SpawnConfig tunes the spawn validator. Distances are in track units.
type SpawnConfig struct {
	SpawnDistance      float64       `yaml:"spawn_distance"`
	BufferZone         float64       `yaml:"buffer_zone"`
	MinObstacleSpacing float64       `yaml:"min_obstacle_spacing"`
	LaneTolerance      float64       `yaml:"lane_tolerance"`
	DeferralMargin     float64       `yaml:"deferral_margin"`
	HistoryDuration    time.Duration `yaml:"history_duration"`
	Lanes              []float64     `yaml:"lanes"`
}

// RewardsConfig controls how claimed rewards are granted. Mode "mock" logs
// grants; mode "http" posts them to the wallet service at Endpoint.
type RewardsConfig struct {
	Mode        string        `yaml:"mode"`
	Endpoint    string        `yaml:"endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

// CatalogConfig points at an optional catalog.json override.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// LoadApp reads server configuration from a YAML file.
func LoadApp(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Ledger.Backend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}
	if len(c.Spawn.Lanes) == 0 {
		return fmt.Errorf("spawn lanes cannot be empty")
	}
	if c.Sessions.IdleTTL < 0 || c.Sessions.SweepInterval < 0 {
		return fmt.Errorf("session idle_ttl and sweep_interval must be positive")
	}
	switch c.Rewards.Mode {
	case RewardModeMock:
	case RewardModeHTTP:
		if c.Rewards.Endpoint == "" {
			return fmt.Errorf("rewards endpoint is required in http mode")
		}
	default:
		return fmt.Errorf("unknown rewards mode %q", c.Rewards.Mode)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *AppConfig) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	// Store defaults
	if c.Store.Backend == "" {
		c.Store.Backend = BackendMemory
	}
	if c.Store.WriteTimeout == 0 {
		c.Store.WriteTimeout = 5 * time.Second
	}
	if c.Store.Table == "" {
		c.Store.Table = "kv_store"
	}
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = BackendMemory
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 100
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 10
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = 3 * time.Second
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = 3 * time.Second
	}

	// PostgreSQL defaults
	if c.Postgres.Host == "" {
		c.Postgres.Host = "localhost"
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.Database == "" {
		c.Postgres.Database = "runner_progression"
	}
	if c.Postgres.MaxConnections == 0 {
		c.Postgres.MaxConnections = 25
	}
	if c.Postgres.MinConnections == 0 {
		c.Postgres.MinConnections = 5
	}
	if c.Postgres.MaxConnLifetime == 0 {
		c.Postgres.MaxConnLifetime = 1 * time.Hour
	}
	if c.Postgres.MaxConnIdleTime == 0 {
		c.Postgres.MaxConnIdleTime = 30 * time.Minute
	}

	// Kafka defaults
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "runner-gameplay-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "runner-progression"
	}

	// Spawn defaults
	if c.Spawn.SpawnDistance == 0 {
		c.Spawn.SpawnDistance = 60
	}
	if c.Spawn.BufferZone == 0 {
		c.Spawn.BufferZone = 30
	}
	if c.Spawn.MinObstacleSpacing == 0 {
		c.Spawn.MinObstacleSpacing = 5
	}
	if c.Spawn.LaneTolerance == 0 {
		c.Spawn.LaneTolerance = 2
	}
	if c.Spawn.DeferralMargin == 0 {
		c.Spawn.DeferralMargin = 20
	}
	if c.Spawn.HistoryDuration == 0 {
		c.Spawn.HistoryDuration = 5 * time.Second
	}
	if len(c.Spawn.Lanes) == 0 {
		c.Spawn.Lanes = []float64{-3, 0, 3}
	}

	if c.Sessions.IdleTTL == 0 {
		c.Sessions.IdleTTL = 30 * time.Minute
	}
	if c.Sessions.SweepInterval == 0 {
		c.Sessions.SweepInterval = time.Minute
	}

	if c.Rewards.Mode == "" {
		c.Rewards.Mode = RewardModeMock
	}
	if c.Rewards.Timeout == 0 {
		c.Rewards.Timeout = 5 * time.Second
	}
	if c.Rewards.MaxAttempts == 0 {
		c.Rewards.MaxAttempts = 3
	}
	if c.Rewards.RetryDelay == 0 {
		c.Rewards.RetryDelay = 200 * time.Millisecond
	}
}

// DefaultAppConfig returns a configuration with all defaults
func DefaultAppConfig() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}
