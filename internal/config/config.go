package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application. It is loaded once at
// startup and treated as immutable afterwards.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// DatabasePath is the SQLite database file path.
	DatabasePath string

	// SessionSecret signs session tokens. Required.
	SessionSecret string

	// FrontendOrigin is the browser origin allowed to call the API with
	// credentials. Empty disables CORS headers.
	FrontendOrigin string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port := 5000
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "socialfeed.db"
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	return &Config{
		Port:           port,
		DatabasePath:   dbPath,
		SessionSecret:  secret,
		FrontendOrigin: os.Getenv("FRONTEND_ORIGIN"),
	}, nil
}
