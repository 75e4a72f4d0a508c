// Package logging configures the process-wide zerolog logger. The console
// owns the terminal, so log output normally goes to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level  string    // "debug", "info", ...; falls back to LOG_LEVEL, then info
	Output io.Writer // defaults to io.Discard
}

var (
	mu   sync.RWMutex
	base = zerolog.Nop()
)

// Configure replaces the global logger.
func Configure(cfg Config) {
	level := zerolog.InfoLevel
	lvl := cfg.Level
	if lvl == "" {
		lvl = os.Getenv("LOG_LEVEL")
	}
	if lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	w := cfg.Output
	if w == nil {
		w = io.Discard
	}

	l := zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", "digimonnaie").
		Logger()

	mu.Lock()
	base = l
	mu.Unlock()
}

// OpenFile opens (creating parents) an append-only log file suitable for
// Config.Output.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
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
