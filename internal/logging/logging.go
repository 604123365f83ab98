// Package logging builds the slog logger shared by the traintrack commands.
package logging

import (
	"io"
	"log/slog"

	"github.com/meltforce/traintrack/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger configured from cfg. Output goes to fallback unless a
// log file is configured, in which case it is rotated by lumberjack.
// The returned closer must be closed on shutdown.
func New(cfg config.LogConfig, fallback io.Writer) (*slog.Logger, io.Closer) {
	var out io.Writer = fallback
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:  cfg.File,
			MaxSize:   cfg.MaxSizeMB, // megabytes
			LocalTime: true,
			Compress:  true,
		}
		out = rotating
		closer = rotating
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closer
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
