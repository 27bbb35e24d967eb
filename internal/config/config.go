package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Token modes understood by the access gate.
const (
	TokenModeIdentity = "identity"
	TokenModeSigned   = "signed"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabasePath   string
	LogLevel       string
	AllowedOrigins []string

	// TokenMode selects the access-gate strategy: "identity" preserves the
	// legacy token-is-the-user-id contract, "signed" issues expiring JWTs.
	TokenMode   string
	TokenSecret string
	TokenTTL    time.Duration

	// DigestSchedule is a standard cron expression for the activity digest.
	DigestSchedule string
}

// fileConfig mirrors Config for the optional TOML file. Environment
// variables override anything set here.
type fileConfig struct {
	ServerPort     int      `toml:"server_port"`
	DatabasePath   string   `toml:"database_path"`
	LogLevel       string   `toml:"log_level"`
	AllowedOrigins []string `toml:"allowed_origins"`
	TokenMode      string   `toml:"token_mode"`
	TokenSecret    string   `toml:"token_secret"`
	TokenTTL       string   `toml:"token_ttl"`
	DigestSchedule string   `toml:"digest_schedule"`
}

// Load loads configuration from an optional TOML file (CONFIG_FILE), then
// environment variables, then defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:     8080,
		DatabasePath:   "./taskloft.db",
		LogLevel:       "info",
		AllowedOrigins: []string{"http://localhost:3000"},
		TokenMode:      TokenModeIdentity,
		TokenTTL:       24 * time.Hour,
		DigestSchedule: "@hourly",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, err
		}
		if fc.ServerPort != 0 {
			cfg.ServerPort = fc.ServerPort
		}
		if fc.DatabasePath != "" {
			cfg.DatabasePath = fc.DatabasePath
		}
		if fc.LogLevel != "" {
			cfg.LogLevel = fc.LogLevel
		}
		if len(fc.AllowedOrigins) > 0 {
			cfg.AllowedOrigins = fc.AllowedOrigins
		}
		if fc.TokenMode != "" {
			cfg.TokenMode = fc.TokenMode
		}
		if fc.TokenSecret != "" {
			cfg.TokenSecret = fc.TokenSecret
		}
		if fc.TokenTTL != "" {
			ttl, err := time.ParseDuration(fc.TokenTTL)
			if err != nil {
				return nil, err
			}
			cfg.TokenTTL = ttl
		}
		if fc.DigestSchedule != "" {
			cfg.DigestSchedule = fc.DigestSchedule
		}
	}

	if portStr, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, err
		}
		cfg.ServerPort = port
	}
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if origins, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}
	cfg.TokenMode = getEnv("TOKEN_MODE", cfg.TokenMode)
	cfg.TokenSecret = getEnv("TOKEN_SECRET", cfg.TokenSecret)
	if ttlStr, ok := os.LookupEnv("TOKEN_TTL"); ok {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, err
		}
		cfg.TokenTTL = ttl
	}
	cfg.DigestSchedule = getEnv("DIGEST_SCHEDULE", cfg.DigestSchedule)

	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
