// Package config loads application settings from the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	appName = "bite-terminal"

	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
)

// Config holds application configuration
type Config struct {
	DataDir        string // catch history, database and log live here
	HistoryBackend string // json or sqlite
	Language       string // geocoding result language
	DefaultSpecies string
	Hours          int // hours scored per search

	GeoTimeout     time.Duration
	WeatherTimeout time.Duration

	GeocodingURL string
	ForecastURL  string

	LogLevel string
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		DataDir:        getenvDefault("BITE_DATA_DIR", defaultDataDir()),
		HistoryBackend: strings.ToLower(getenvDefault("BITE_HISTORY_BACKEND", "json")),
		Language:       getenvDefault("BITE_LANGUAGE", "en"),
		DefaultSpecies: getenvDefault("BITE_DEFAULT_SPECIES", "Pike"),
		GeocodingURL:   getenvDefault("BITE_GEOCODING_URL", DefaultGeocodingURL),
		ForecastURL:    getenvDefault("BITE_FORECAST_URL", DefaultForecastURL),
		LogLevel:       getenvDefault("BITE_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Hours, err = getenvInt("BITE_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.GeoTimeout, err = getenvDuration("BITE_GEO_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.WeatherTimeout, err = getenvDuration("BITE_WEATHER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.HistoryBackend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid BITE_HISTORY_BACKEND %q: want json or sqlite", c.HistoryBackend)
	}
	if c.Hours < 1 || c.Hours > 120 {
		return fmt.Errorf("invalid BITE_HOURS %d: want 1..120", c.Hours)
	}
	if c.GeoTimeout <= 0 || c.WeatherTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory is empty")
	}
	return nil
}

// LogFile returns the path of the application log
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, appName+".log")
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(dir, appName)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
