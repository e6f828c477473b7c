// Package logger provides a context-aware structured logger built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level is the minimum severity a Logger emits.
type Level = slog.Level

// Log levels.
const (
	LevelDebug Level = slog.LevelDebug
	LevelInfo  Level = slog.LevelInfo
	LevelWarn  Level = slog.LevelWarn
	LevelError Level = slog.LevelError
)

// ContextFn extracts extra key/value pairs from a context (trace ids, run ids).
type ContextFn func(ctx context.Context) []any

// LoggerInterface is the logging contract shared by all modules.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) LoggerInterface
}

// Logger writes JSON records through slog.
type Logger struct {
	handler slog.Handler
	log     *slog.Logger
	ctxFn   ContextFn
}

// New creates a Logger writing to w. The service name is attached to every record.
func New(w io.Writer, level Level, service string, ctxFn ContextFn) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	l := slog.New(h).With("service", service)

	return &Logger{
		handler: h,
		log:     l,
		ctxFn:   ctxFn,
	}
}

// ParseLevel maps a config string onto a Level. Unknown values map to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, msg, args...)
}

// With returns a child logger carrying args on every record.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{
		handler: l.handler,
		log:     l.log.With(args...),
		ctxFn:   l.ctxFn,
	}
}

// Slog exposes the underlying *slog.Logger for packages that take one directly.
func (l *Logger) Slog() *slog.Logger {
	return l.log
}

func (l *Logger) write(ctx context.Context, level Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.log.Enabled(ctx, level) {
		return
	}
	if l.ctxFn != nil {
		args = append(args, l.ctxFn(ctx)...)
	}
	l.log.Log(ctx, level, msg, args...)
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() *Logger {
	return New(io.Discard, LevelError+1, "nop", nil)
}
