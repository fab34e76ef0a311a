// Package logging provides structured logging on top of log/slog with
// booking-domain context fields and per-component child loggers.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// LogLevel represents different logging levels.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logging configuration.
type Config struct {
	Level  LogLevel
	Format string // "json" or "text"
	Output string // "stdout", "stderr", or file path
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Format: "json", Output: "stdout"}
}

// Logger wraps slog with typed fields and component scoping.
type Logger struct {
	config  Config
	slogger *slog.Logger
	file    *os.File
}

// New creates a structured logger.
func New(config Config) (*Logger, error) {
	l := &Logger{config: config}

	var writer io.Writer
	switch config.Output {
	case "", "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(config.Output), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		writer = f
	}

	opts := &slog.HandlerOptions{Level: slogLevel(config.Level)}
	var handler slog.Handler
	if config.Format == "text" {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}
	l.slogger = slog.New(handler)
	return l, nil
}

// Nop returns a logger that discards everything; used in tests.
func Nop() *Logger {
	return &Logger{
		config:  Config{Level: LevelError + 1},
		slogger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// WithComponent returns a child logger tagging every entry with a component
// name (e.g. "usecase.create_booking", "notify.dispatcher").
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{config: l.config, slogger: l.slogger.With(slog.String("component", component))}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, nil, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, nil, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, nil, fields) }

func (l *Logger) Error(msg string, err error, fields ...Field) {
	l.log(LevelError, msg, err, fields)
}

func (l *Logger) log(level LogLevel, msg string, err error, fields []Field) {
	if level < l.config.Level {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+1)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	l.slogger.LogAttrs(context.Background(), slogLevel(level), msg, attrs...)
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Field is a structured log field.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field             { return Field{Key: key, Value: value} }
func Int(key string, value int) Field            { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field        { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field          { return Field{Key: key, Value: value} }
func Duration(key string, v time.Duration) Field { return Field{Key: key, Value: v} }

// Domain-specific fields used across use cases and handlers.
func WorkshopID(id int64) Field { return Field{Key: "workshop_id", Value: id} }
func BookingID(id int64) Field  { return Field{Key: "booking_id", Value: id} }
func GuardianID(id int64) Field { return Field{Key: "guardian_id", Value: id} }
func RequestID(id string) Field { return Field{Key: "request_id", Value: id} }
