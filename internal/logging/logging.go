// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config selects the logger's level, format and optional log file.
type Config struct {
	// Level is debug, info, warn or error. Empty means warn.
	Level string

	// Format is text or json. Empty means text.
	Format string

	// Out receives log records. Nil means stderr.
	Out io.Writer

	// Dir, when set, also appends JSON records to Dir/ankisync.log.
	Dir string
}

var (
	mu     sync.RWMutex
	global = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", s)
	}
}

// Setup installs the global logger and returns a cleanup function that
// closes the log file, if any, and resets the logger.
func Setup(cfg Config) (func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		h = slog.NewTextHandler(out, opts)
	case "json":
		h = slog.NewJSONHandler(out, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var file *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		file, err = os.OpenFile(filepath.Join(cfg.Dir, "ankisync.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		h = fanout{h, slog.NewJSONHandler(file, opts)}
	}

	mu.Lock()
	global = slog.New(h)
	mu.Unlock()

	return func() error {
		mu.Lock()
		defer mu.Unlock()
		global = slog.New(slog.NewTextHandler(io.Discard, nil))
		if file != nil {
			return file.Close()
		}
		return nil
	}, nil
}

// L returns the global logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}
