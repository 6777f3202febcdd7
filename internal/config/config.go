package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings for the front end.
type Config struct {
	// ListenAddr is the local address the page server binds to.
	ListenAddr string
	// RemoteBaseURL is the auction marketplace API root, e.g.
	// "https://api.example.com".
	RemoteBaseURL string
	// APIKey is sent on every remote call in the X-Api-Key header.
	APIKey string
	// SessionFile is the path the auth store persists the session to.
	SessionFile string
}

// Load reads configuration from the environment, honoring a .env file in
// the working directory when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:    getenv("AUCTION_LISTEN_ADDR", ":8080"),
		RemoteBaseURL: os.Getenv("AUCTION_API_URL"),
		APIKey:        os.Getenv("AUCTION_API_KEY"),
		SessionFile:   os.Getenv("AUCTION_SESSION_FILE"),
	}

	if cfg.RemoteBaseURL == "" {
		return Config{}, fmt.Errorf("config: AUCTION_API_URL is required")
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("config: AUCTION_API_KEY is required")
	}

	if cfg.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: cannot resolve config dir: %w", err)
		}
		cfg.SessionFile = filepath.Join(dir, "auction-house", "session.json")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
