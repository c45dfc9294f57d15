package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds runtime settings, read from the environment with a .env file
// as an optional local override.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string
}

// Load reads configuration. A missing .env file is not an error; real
// environment variables always win over file values.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:      getenv("ROOMSYNC_PORT", "8080"),
		DBPath:    getenv("ROOMSYNC_DB_PATH", "roomsync.db"),
		LogLevel:  getenv("ROOMSYNC_LOG_LEVEL", "info"),
		LogFormat: getenv("ROOMSYNC_LOG_FORMAT", "text"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
