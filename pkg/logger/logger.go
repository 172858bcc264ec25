// Package logger provides the structured, levelled logger used across
// ordersync, built on log/slog.
//
// In production (APP_ENV=production) records are emitted as JSON for log
// aggregators; everywhere else a human-readable text handler is used. When
// MONGO_LOG_URI is configured, records are additionally fanned out to a
// MongoDB collection through an asynchronous sink (see mongo_handler.go).
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/ordersync/ordersync/config"
)

var L *slog.Logger

func init() {
	var handler slog.Handler

	switch config.AppEnv() {
	case "production", "prod":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	if uri := config.MongoLogURI(); uri != "" {
		if mh, err := NewMongoHandler(uri, config.MongoLogDatabase(), config.MongoLogCollection()); err == nil {
			handler = NewMultiHandler(handler, mh)
		}
		// A failed sink connection falls back to stdout only; logging must
		// never prevent startup.
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx by the server's
// logging middleware, or the base logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a pre-tagged *slog.Logger into ctx. Called by the
// logging middleware; application code rarely needs it.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
