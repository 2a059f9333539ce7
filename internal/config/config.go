// Package config reads process configuration from the environment (optionally seeded
// from a .env file) and the optional YAML zone layout.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"package-organizer/internal/adapters/kvstore"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Config struct {
	StoreDriver string
	DBPath      string
	DatabaseURL string
	RedisAddr   string
	RedisPrefix string
	QuotaBytes  int
	ZonesFile   string
	Port        string
	LogLevel    string
	LogFormat   string
	Feedback    string
}

// LoadEnv reads .env files when present. A missing file is not an error.
func LoadEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Get returns the environment value of key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetInt returns the integer value of key, or fallback when unset.
func GetInt(key string, fallback int) (int, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", key, raw)
	}
	return v, nil
}

// FromEnv builds the Config from environment variables.
func FromEnv() (Config, error) {
	quota, err := GetInt("STORAGE_QUOTA_BYTES", kvstore.DefaultQuotaBytes)
	if err != nil {
		return Config{}, err
	}
	if quota < 0 {
		return Config{}, fmt.Errorf("config: STORAGE_QUOTA_BYTES must not be negative")
	}

	cfg := Config{
		StoreDriver: strings.ToLower(Get("STORE_DRIVER", DriverSqlite)),
		DBPath:      Get("DB_PATH", "data/organizer.db"),
		DatabaseURL: Get("DATABASE_URL", ""),
		RedisAddr:   Get("REDIS_ADDR", "localhost:6379"),
		RedisPrefix: Get("REDIS_PREFIX", "organizer:"),
		QuotaBytes:  quota,
		ZonesFile:   Get("ZONES_FILE", ""),
		Port:        Get("PORT", "8080"),
		LogLevel:    Get("LOG_LEVEL", "info"),
		LogFormat:   Get("LOG_FORMAT", "text"),
		Feedback:    strings.ToLower(Get("FEEDBACK", "log")),
	}

	switch cfg.StoreDriver {
	case DriverSqlite, DriverRedis, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("config: DATABASE_URL is required for STORE_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}
