// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// Env selects the log format: "dev" and "local" get colour text output,
	// anything else JSON. Defaults to "prod".
	Env string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string

	// MaxBodyBytes caps request bodies, photo uploads included. Defaults to 10 MiB.
	MaxBodyBytes int64

	// FiltersPath points at a YAML filter catalog. Empty uses the built-in one.
	FiltersPath string

	// Ingest is disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	IngestTopic  string
	IngestGroup  string

	// Photo uploads are disabled when S3Endpoint is empty.
	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool
}

// IngestEnabled reports whether a Kafka feed is configured.
func (c Config) IngestEnabled() bool { return len(c.KafkaBrokers) > 0 }

// UploadsEnabled reports whether photo object storage is configured.
func (c Config) UploadsEnabled() bool { return c.S3Endpoint != "" }

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first variable that does not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Env:              getEnv("APP_ENV", "prod"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		FiltersPath:      os.Getenv("FILTERS_PATH"),
		KafkaBrokers:     splitCSV(os.Getenv("KAFKA_BROKERS")),
		IngestTopic:      getEnv("INGEST_TOPIC", "rv-listings"),
		IngestGroup:      getEnv("INGEST_GROUP", "rv-search"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		S3Bucket:         getEnv("S3_BUCKET", "rv-photos"),
	}

	var err error
	if cfg.MaxBodyBytes, err = parseInt64Env("MAX_BODY_BYTES", 10<<20); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// LoadDotEnv seeds the process environment from a .env file. Variables that
// are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config.LoadDotEnv: %w", err)
	}
	return nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseInt64Env(key string, def int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q is not a positive integer", key, raw)
	}
	return n, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
