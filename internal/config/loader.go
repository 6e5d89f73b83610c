package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables, applies defaults
// for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadSection(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// parsers covers every field type Config declares.
var parsers = map[reflect.Type]func(string) (any, error){
	reflect.TypeOf(""): func(s string) (any, error) { return s, nil },
	reflect.TypeOf(0): func(s string) (any, error) {
		return strconv.Atoi(s)
	},
	reflect.TypeOf(int64(0)): func(s string) (any, error) {
		return strconv.ParseInt(s, 10, 64)
	},
	reflect.TypeOf(false): func(s string) (any, error) {
		return strconv.ParseBool(s)
	},
	reflect.TypeOf(time.Duration(0)): func(s string) (any, error) {
		return time.ParseDuration(s)
	},
	reflect.TypeOf([]string(nil)): func(s string) (any, error) {
		return splitList(s), nil
	},
}

// loadSection fills the tagged fields of a config section, descending into
// nested sections.
func loadSection(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := loadSection(fv); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}
		value := lookupEnv(name, field.Tag.Get("envAlt"), field.Tag.Get("default"))
		if value == "" {
			continue
		}

		parse, ok := parsers[field.Type]
		if !ok {
			return fmt.Errorf("%s: unsupported field type %s", name, field.Type)
		}
		parsed, err := parse(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
		fv.Set(reflect.ValueOf(parsed).Convert(field.Type))
	}
	return nil
}

// lookupEnv returns the primary variable, then the alternate, then def.
func lookupEnv(name, alt, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	if alt != "" {
		if v := os.Getenv(alt); v != "" {
			return v
		}
	}
	return def
}

// splitList splits a comma-separated value, dropping blank items.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation; history is optional
	if c.Database.Enabled() {
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Database.HistoryRetention <= 0 {
			errs = append(errs, "HISTORY_RETENTION must be positive")
		}
		if c.Database.HistoryPruneInterval <= 0 {
			errs = append(errs, "HISTORY_PRUNE_INTERVAL must be positive")
		}
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Storage validation
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		errs = append(errs, "DATA_DIR must not be empty")
	}
	if c.Storage.MaxUploadSize <= 0 {
		errs = append(errs, "MAX_UPLOAD_SIZE must be positive")
	}

	// Profile validation
	if c.Profile.MaxRows <= 0 {
		errs = append(errs, "PROFILE_MAX_ROWS must be positive")
	}
	if c.Profile.MaxErrorsPerColumn <= 0 {
		errs = append(errs, "PROFILE_MAX_ERRORS_PER_COLUMN must be positive")
	}
	if c.Profile.Workers < 0 {
		errs = append(errs, "PROFILE_WORKERS must be non-negative")
	}
	validRules := map[string]bool{"prefix": true, "exact": true}
	if !validRules[strings.ToLower(c.Profile.SentinelRule)] {
		errs = append(errs, fmt.Sprintf("PROFILE_SENTINEL_RULE (%q) must be one of: prefix, exact", c.Profile.SentinelRule))
	}

	// Check validation
	if c.Check.MaxConcurrent <= 0 {
		errs = append(errs, "CHECK_MAX_CONCURRENT must be positive")
	}
	if c.Check.MaxWaitTime <= 0 {
		errs = append(errs, "CHECK_MAX_WAIT_TIME must be positive")
	}
	if c.Check.Timeout < 0 {
		errs = append(errs, "CHECK_TIMEOUT must be non-negative")
	}

	// Cache validation
	if c.Cache.MemoryTTL <= 0 {
		errs = append(errs, "CACHE_MEMORY_TTL must be positive")
	}
	if c.Cache.CleanupInterval <= 0 {
		errs = append(errs, "CACHE_CLEANUP_INTERVAL must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.CheckLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_CHECK must be positive when rate limiting is enabled")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs and API keys are masked.
func (c *Config) String() string {
	db := "disabled"
	if c.Database.Enabled() {
		db = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Storage: {DataDir: %q, MaxUploadSize: %d}, ", c.Storage.DataDir, c.Storage.MaxUploadSize))
	b.WriteString(fmt.Sprintf("Profile: {MaxRows: %d, MaxErrorsPerColumn: %d, Workers: %d, SentinelRule: %q}, ",
		c.Profile.MaxRows, c.Profile.MaxErrorsPerColumn, c.Profile.Workers, c.Profile.SentinelRule))
	b.WriteString(fmt.Sprintf("Check: {MaxConcurrent: %d, Timeout: %s}, ", c.Check.MaxConcurrent, c.Check.Timeout))
	b.WriteString(fmt.Sprintf("Database: {URL: %s, MaxConns: %d, MinConns: %d}, ",
		db, c.Database.MaxConns, c.Database.MinConns))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: %d configured}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys)))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
