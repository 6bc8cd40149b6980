// Package config loads the library's settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Local snapshot store
	SQLitePath string

	// Remote store. An empty URL disables remote sync entirely.
	DatabaseURL   string
	RemoteTimeout time.Duration

	// Sync event publishing. An empty URL disables it.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger
	MaxInFlightSync int

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, consulting an optional
// .env file first.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		SQLitePath: getEnv("EXPENSY_SQLITE_PATH", "./data/expensy.db"),

		DatabaseURL:   getEnv("EXPENSY_DATABASE_URL", ""),
		RemoteTimeout: getEnvDuration("EXPENSY_REMOTE_TIMEOUT", 5*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expensy"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_events"),

		MaxInFlightSync: getEnvInt("EXPENSY_MAX_INFLIGHT_SYNC", 4),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if c.SQLitePath == "" {
		errors = append(errors, "SQLite snapshot path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLitePath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create snapshot directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.DatabaseURL != "" {
		if parsedURL, err := url.Parse(c.DatabaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid database URL '%s': %v", c.DatabaseURL, err))
		} else if parsedURL.Scheme != "postgres" && parsedURL.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid database URL scheme '%s': must be 'postgres' or 'postgresql'", parsedURL.Scheme))
		}
	}

	if c.RemoteTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid remote timeout %v: must be at least 100ms", c.RemoteTimeout))
	} else if c.RemoteTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid remote timeout %v: must be at most 1 minute", c.RemoteTimeout))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.MaxInFlightSync < 1 {
		errors = append(errors, fmt.Sprintf("invalid max in-flight sync %d: must be at least 1", c.MaxInFlightSync))
	} else if c.MaxInFlightSync > 64 {
		errors = append(errors, fmt.Sprintf("invalid max in-flight sync %d: must be at most 64", c.MaxInFlightSync))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "pretty":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'pretty'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
