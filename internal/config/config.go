package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DBPath              string
	LogLevel            string
	AutosaveQuietPeriod time.Duration
	FlushWorkerCount    int
	FlushQueueSize      int
	SessionIdleTTL      time.Duration
	SessionSweepEvery   time.Duration
	RequestTimeout      time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:flashdeck.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		AutosaveQuietPeriod: time.Duration(envIntOr("AUTOSAVE_QUIET_PERIOD_MS", 1000)) * time.Millisecond,
		FlushWorkerCount:    envIntOr("FLUSH_WORKER_COUNT", 2),
		FlushQueueSize:      envIntOr("FLUSH_QUEUE_SIZE", 128),
		SessionIdleTTL:      envDurationOr("SESSION_IDLE_TTL", 30*time.Minute),
		SessionSweepEvery:   envDurationOr("SESSION_SWEEP_INTERVAL", time.Minute),
		RequestTimeout:      envDurationOr("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.AutosaveQuietPeriod <= 0 {
		problems = append(problems, "AUTOSAVE_QUIET_PERIOD_MS must be positive")
	}
	if c.FlushWorkerCount < 1 {
		problems = append(problems, "FLUSH_WORKER_COUNT must be at least 1")
	}
	if c.FlushQueueSize < 1 {
		problems = append(problems, "FLUSH_QUEUE_SIZE must be at least 1")
	}
	if c.SessionIdleTTL <= 0 {
		problems = append(problems, "SESSION_IDLE_TTL must be positive")
	}
	if c.SessionSweepEvery <= 0 {
		problems = append(problems, "SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.RequestTimeout < 0 {
		problems = append(problems, "REQUEST_TIMEOUT cannot be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
