package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func SetupEnv() {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file found, relying on process environment")
	}
}

// Config returns the environment variable or defaults to empty string
func Config(key string) string {
	return os.Getenv(key)
}

// Int returns the environment variable parsed as an integer, or fallback
// when the variable is unset or malformed.
func Int(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid integer for %s (%q), using default %d\n", key, raw, fallback)
		return fallback
	}
	return n
}

// Duration returns the environment variable parsed as a time.Duration
// (e.g. "5m", "1h30m"), or fallback when unset or malformed.
func Duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid duration for %s (%q), using default %s\n", key, raw, fallback)
		return fallback
	}
	return d
}
