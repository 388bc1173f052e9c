package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nasermirzaei89/env"

	"tildes-reader/scraper"
)

// config is read from the environment (and an optional .env file); flags override it.
type config struct {
	BaseURL  string
	Port     string
	Timeout  time.Duration
	LogLevel slog.Level
}

func loadConfig() (*config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	timeout, err := time.ParseDuration(env.GetString("TILDES_HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("parse TILDES_HTTP_TIMEOUT: %w", err)
	}

	return &config{
		BaseURL:  env.GetString("TILDES_BASE_URL", scraper.DefaultBaseURL),
		Port:     env.GetString("PORT", "8080"),
		Timeout:  timeout,
		LogLevel: parseLogLevel(env.GetString("LOG_LEVEL", "info")),
	}, nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", levelStr)

		return slog.LevelInfo
	}
}
