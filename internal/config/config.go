package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	Timezone         string
	SweepWorkerCount int
	SweepQueueSize   int
	SweepInterval    time.Duration
	RandomSeed       int64
	NotifyWebhookURL string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "file:cheatcodes.db"),
		LogLevel:         strings.ToUpper(envOr("LOG_LEVEL", "INFO")),
		Timezone:         envOr("TIMEZONE", "Local"),
		SweepWorkerCount: envIntOr("SWEEP_WORKER_COUNT", 2),
		SweepQueueSize:   envIntOr("SWEEP_QUEUE_SIZE", 64),
		SweepInterval:    envDurationOr("SWEEP_INTERVAL", 24*time.Hour),
		RandomSeed:       int64(envIntOr("RANDOM_SEED", 0)),
		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
	}
}

// Validate reports every invalid field at once.
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
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", c.LogLevel))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE %q: %v", c.Timezone, err))
	}
	if c.SweepWorkerCount <= 0 {
		problems = append(problems, "SWEEP_WORKER_COUNT must be positive")
	}
	if c.SweepQueueSize <= 0 {
		problems = append(problems, "SWEEP_QUEUE_SIZE must be positive")
	}
	if c.SweepInterval < time.Minute {
		problems = append(problems, "SWEEP_INTERVAL must be at least 1m")
	}
	if c.NotifyWebhookURL != "" {
		if u, err := url.Parse(c.NotifyWebhookURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("NOTIFY_WEBHOOK_URL must be an http(s) URL, got %q", c.NotifyWebhookURL))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves Timezone. Calendar days, daily caps and grace deadlines
// are all computed in this location.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, fmt.Errorf("timezone cannot be empty")
	}
	return time.LoadLocation(c.Timezone)
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

// Seed returns RandomSeed, or a time-based seed when it is zero.
func (c Config) Seed() int64 {
	if c.RandomSeed != 0 {
		return c.RandomSeed
	}
	return time.Now().UnixNano()
}
