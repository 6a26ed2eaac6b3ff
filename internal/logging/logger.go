// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level   string    // "debug", "info", ...; falls back to LOG_LEVEL
	Output  io.Writer // defaults to os.Stdout
	Service string    // attached to every entry
	Version string
}

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Configure replaces the global logger.
func Configure(cfg Config) {
	level := zerolog.InfoLevel
	raw := cfg.Level
	if raw == "" {
		raw = os.Getenv("LOG_LEVEL")
	}
	if raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stdout
	}

	service := cfg.Service
	if service == "" {
		service = "stream-relay"
	}

	l := zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("service", service).
		Str("version", cfg.Version).
		Logger()

	mu.Lock()
	base = l
	mu.Unlock()
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
