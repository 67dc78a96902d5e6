package logger

import (
	"io"
	"log/slog"
	"os"
)

const (
	EMPTY   = ""
	DEBUG   = "debug"
	INFO    = "info"
	WARN    = "warn"
	ERROR   = "error"
	JSON    = "json"
	TEXT    = "text"
	SERVICE = "service"
)

type Logger struct {
	*slog.Logger
}

type Config struct {
	Level     string
	Format    string
	Output    io.Writer
	AddSource bool
	Service   string
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Format == EMPTY {
		cfg.Format = JSON
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == TEXT {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	if cfg.Service != EMPTY {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String(SERVICE, cfg.Service),
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops every record. Used by tests.
func Discard() *Logger {
	return New(Config{Level: ERROR, Output: io.Discard})
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Fatal logs a critical error and exits the application with status code 1
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

func parseLevel(level string) slog.Level {
	switch level {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
