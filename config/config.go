// File: /config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for the directory, the friendship store and (unless
// LikeStore is redis) the like ledger.
const (
	StorageMemory   = "memory"
	StorageMySQL    = "mysql"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Like store backends.
const (
	LikeStoreDefault = "store"
	LikeStoreRedis   = "redis"
)

type Config struct {
	Port        string `yaml:"port"`
	Storage     string `yaml:"storage"`
	DatabaseURL string `yaml:"database_url"`

	LikeStore     string `yaml:"like_store"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int `yaml:"rate_limit_burst"`

	LogLevel      string        `yaml:"log_level"`
	StatsInterval time.Duration `yaml:"stats_interval"`
	SeedData      bool          `yaml:"seed_data"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:               "8080",
		Storage:            StorageMemory,
		LikeStore:          LikeStoreDefault,
		RedisAddr:          "localhost:6379",
		RateLimitPerMinute: 600,
		RateLimitBurst:     100,
		LogLevel:           "info",
		StatsInterval:      time.Minute,
	}
}

// Load applies, in order, the defaults, the YAML file at path (if path is not
// empty) and environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.Storage = strings.ToLower(getEnv("STORAGE", c.Storage))
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.LikeStore = strings.ToLower(getEnv("LIKE_STORE", c.LikeStore))
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))

	var err error
	if c.RedisDB, err = getEnvInt("REDIS_DB", c.RedisDB); err != nil {
		return err
	}
	if c.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute); err != nil {
		return err
	}
	if c.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", c.RateLimitBurst); err != nil {
		return err
	}
	if raw := os.Getenv("STATS_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("STATS_INTERVAL: %w", err)
		}
		c.StatsInterval = d
	}
	if raw := os.Getenv("SEED_DATA"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("SEED_DATA: %w", err)
		}
		c.SeedData = b
	}
	return nil
}

// Validate rejects unknown backends and unusable limits.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage {
	case StorageMemory:
	case StorageMySQL, StoragePostgres, StorageSQLite:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("storage %q requires DATABASE_URL", c.Storage))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}

	switch c.LikeStore {
	case LikeStoreDefault:
	case LikeStoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("like store redis requires REDIS_ADDR"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown like store %q", c.LikeStore))
	}

	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("rate limit must be positive, got %d", c.RateLimitPerMinute))
	}
	if c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("rate limit burst must be positive, got %d", c.RateLimitBurst))
	}
	if c.StatsInterval <= 0 {
		errs = append(errs, fmt.Errorf("stats interval must be positive, got %s", c.StatsInterval))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
