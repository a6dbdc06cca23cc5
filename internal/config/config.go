// Package config loads application configuration from environment variables,
// with an optional .env file for development.
package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the server.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DBPath is the SQLite file backing the key-value store.
	DBPath string

	// InviteBaseURL is the host part of generated invite links.
	InviteBaseURL string

	// Environment is "development" or "production".
	Environment string
}

// Load reads configuration from the environment. Outside production a .env
// file is loaded first; its absence is fine, the system environment wins
// either way.
func Load() *Config {
	env := getEnv("GO_ENV", "development")

	if env != "production" {
		if err := godotenv.Load(); err != nil {
			slog.Debug("No .env file loaded", "error", err)
		}
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./data/partyplus.db"),
		InviteBaseURL: getEnv("INVITE_BASE_URL", "https://partyplus-invite.netlify.app"),
		Environment:   env,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
