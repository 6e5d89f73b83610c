// Package config provides centralized configuration management for the server.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Profile  ProfileConfig
	Check    CheckConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// StorageConfig holds document storage settings.
type StorageConfig struct {
	// DataDir holds one directory per document (default: ./data)
	DataDir string `env:"DATA_DIR" default:"./data"`

	// MaxUploadSize is the maximum accepted body size in bytes (default: 100MB)
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" default:"104857600"`
}

// ProfileConfig holds inference and checking limits.
type ProfileConfig struct {
	// MaxRows is the row ceiling for sampled data files (default: 100000)
	MaxRows int `env:"PROFILE_MAX_ROWS" default:"100000"`

	// MaxErrorsPerColumn stops a column scan once exceeded (default: 100)
	MaxErrorsPerColumn int `env:"PROFILE_MAX_ERRORS_PER_COLUMN" default:"100"`

	// Workers bounds parallel column checks; 0 means one per column (default: 4)
	Workers int `env:"PROFILE_WORKERS" default:"4"`

	// SentinelRule is prefix or exact (default: prefix)
	SentinelRule string `env:"PROFILE_SENTINEL_RULE" default:"prefix"`
}

// CheckConfig holds check admission settings.
type CheckConfig struct {
	// MaxConcurrent is the maximum number of document checks at once (default: 4)
	MaxConcurrent int `env:"CHECK_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a check slot (default: 30s)
	MaxWaitTime time.Duration `env:"CHECK_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration of one document check (default: 5m)
	Timeout time.Duration `env:"CHECK_TIMEOUT" default:"5m"`
}

// CacheConfig holds the result cache memory layer settings.
type CacheConfig struct {
	// MemoryTTL is how long results stay in memory (default: 30m)
	MemoryTTL time.Duration `env:"CACHE_MEMORY_TTL" default:"30m"`

	// CleanupInterval is how often expired entries are swept (default: 10m)
	CleanupInterval time.Duration `env:"CACHE_CLEANUP_INTERVAL" default:"10m"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string for check history (optional)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// HistoryRetention is how long check runs are kept (default: 90 days)
	HistoryRetention time.Duration `env:"HISTORY_RETENTION" default:"2160h"`

	// HistoryPruneInterval is how often old runs are deleted (default: 24h)
	HistoryPruneInterval time.Duration `env:"HISTORY_PRUNE_INTERVAL" default:"24h"`
}

// Enabled reports whether check history should be stored.
func (c *DatabaseConfig) Enabled() bool { return c.URL != "" }

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// CheckLimit is requests per minute for check and infer endpoints (default: 20)
	CheckLimit int `env:"RATE_LIMIT_CHECK" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey enforces X-API-Key on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
