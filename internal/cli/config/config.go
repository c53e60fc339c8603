package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/vellum-engine/vellum/internal/logging"
	"github.com/vellum-engine/vellum/internal/versionstore"
)

// EnvPrefix prefixes every environment override, e.g. VELLUM_LOG_LEVEL.
const EnvPrefix = "VELLUM"

// Config represents the vellum configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Output   OutputConfig   `mapstructure:"output"`
	Server   ServerConfig   `mapstructure:"server"`
	Versions VersionsConfig `mapstructure:"versions"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// OutputConfig controls how commands print results
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// ServerConfig represents inspect server configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// VersionsConfig selects the version ledger backend
type VersionsConfig struct {
	Backend string      `mapstructure:"backend"`
	Redis   RedisConfig `mapstructure:"redis"`
	SQL     SQLConfig   `mapstructure:"sql"`
}

// RedisConfig represents the Redis ledger connection
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// SQLConfig represents the SQL ledger connection
type SQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Load loads the configuration from vellum.yaml in dir (or the current
// directory when dir is empty) and VELLUM_* environment variables.
func Load(dir string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)
	v.SetDefault("output.format", FormatTable)
	v.SetDefault("output.no_color", false)
	v.SetDefault("server.addr", ":7070")
	v.SetDefault("versions.backend", versionstore.BackendSQLite)
	v.SetDefault("versions.redis.addr", "localhost:6379")
	v.SetDefault("versions.redis.password", "")
	v.SetDefault("versions.redis.db", 0)
	v.SetDefault("versions.redis.prefix", "vellum:")
	v.SetDefault("versions.sql.dsn", "vellum.db")

	// Set config name and paths
	v.SetConfigName("vellum")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)

	// Nested keys map to VELLUM_VERSIONS_REDIS_ADDR and friends
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the configuration Load produces without a file or
// environment overrides.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "warn"},
		Output: OutputConfig{Format: FormatTable},
		Server: ServerConfig{Addr: ":7070"},
		Versions: VersionsConfig{
			Backend: versionstore.BackendSQLite,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "vellum:"},
			SQL:     SQLConfig{DSN: "vellum.db"},
		},
	}
}

// Store returns the version ledger configuration.
func (c *Config) Store() versionstore.Config {
	return versionstore.Config{
		Backend: c.Versions.Backend,
		Redis: versionstore.RedisConfig{
			Addr:     c.Versions.Redis.Addr,
			Password: c.Versions.Redis.Password,
			DB:       c.Versions.Redis.DB,
			Prefix:   c.Versions.Redis.Prefix,
		},
		DSN: c.Versions.SQL.DSN,
	}
}

// Logging returns the logger options.
func (c *Config) Logging() logging.Options {
	return logging.Options{Level: c.Log.Level, Development: c.Log.Development}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	switch cfg.Output.Format {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("output.format must be %q or %q, got: %s", FormatTable, FormatJSON, cfg.Output.Format)
	}

	switch cfg.Versions.Backend {
	case versionstore.BackendMemory, versionstore.BackendRedis:
	case versionstore.BackendSQLite, versionstore.BackendPostgres:
		if cfg.Versions.SQL.DSN == "" {
			return fmt.Errorf("versions.sql.dsn is required for the %s backend", cfg.Versions.Backend)
		}
	default:
		return fmt.Errorf("versions.backend must be one of memory, redis, sqlite, postgres, got: %s", cfg.Versions.Backend)
	}

	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}
