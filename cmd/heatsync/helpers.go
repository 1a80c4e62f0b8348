package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mfeltz/heatsync/internal/config"
	"github.com/mfeltz/heatsync/internal/storage"
	"github.com/mfeltz/heatsync/internal/storage/bolt"
	"github.com/mfeltz/heatsync/internal/storage/redis"
	"github.com/mfeltz/heatsync/internal/strava"
	"github.com/rs/zerolog"
)

func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "", "bolt":
		return bolt.Open(cfg.Path)
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func newProviderClient(cfg config.ProviderConfig) *strava.Client {
	return strava.New(strava.Config{
		BaseURL:      cfg.BaseURL,
		AuthorizeURL: cfg.AuthorizeURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scope:        cfg.Scope,
		Timeout:      parseDuration(cfg.HTTPTimeout, strava.DefaultTimeout),
	})
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// parseDuration parses a duration string with a fallback
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
