package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config holds the logger settings.
type Config struct {
	Level  slog.Level
	Format string    // "json" or "text"
	Output io.Writer // defaults to os.Stdout
}

// DefaultConfig returns the default logger settings.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: "json",
	}
}

// New builds a logger from cfg and installs it as the slog default.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level: cfg.Level,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
