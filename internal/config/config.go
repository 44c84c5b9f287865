// Package config loads server settings from the environment. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"

	"github.com/mmynk/splitledger/pkg/logging"
)

// devSecret is only accepted when JWT_SECRET is unset and a warning is logged.
const devSecret = "splitledger-dev-secret"

// Config holds all application configuration.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
	Currency  string
	LogLevel  slog.Level

	// InsecureSecret is set when JWTSecret fell back to the development default.
	InsecureSecret bool
}

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:    getEnv("DB_PATH", "./data/ledger.db"),
		JWTSecret: getEnv("JWT_SECRET", ""),
		Currency:  getEnv("CURRENCY", "USD"),
		LogLevel:  logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}
	cfg.Port = port

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "72h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q", os.Getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	if money.GetCurrency(cfg.Currency) == nil {
		return nil, fmt.Errorf("unknown CURRENCY %q", cfg.Currency)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devSecret
		cfg.InsecureSecret = true
	}
	return cfg, nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
