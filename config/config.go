// Package config loads service configuration from the environment.
// A .env file, if present, is loaded first; explicit environment
// variables win over it, and command-line flags win over both.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	DBPath string
	Env    string
}

// Load reads configuration with sensible defaults.
// Precedence: explicit env var > .env file > default.
func Load() Config {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	return Config{
		Port:   getEnv("PORT", "8080"),
		DBPath: getEnv("DB_PATH", "orders.db"),
		Env:    getEnv("APP_ENV", "development"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
