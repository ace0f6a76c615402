// Package logger provides a structured, levelled logger built on log/slog.
//
// Production environments log JSON, everything else logs text. Set
// LOG_MONGO_URI and call UseMongo to also ship records to MongoDB:
//
//	closeSink, err := logger.UseMongo(config.LogMongoURI(), config.LogMongoDB(), config.LogMongoCollection())
//	if err == nil {
//	    defer closeSink()
//	}
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/kashvi-events/config"
)

var L *slog.Logger

func init() {
	L = slog.New(NewHandler(config.AppEnv(), os.Stdout))
	slog.SetDefault(L)
}

// NewHandler returns the stdout handler for env: JSON at INFO for
// production, text at DEBUG otherwise.
func NewHandler(env string, w io.Writer) slog.Handler {
	switch env {
	case "production", "prod":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// UseMongo tees every record of L into a MongoDB collection. The returned
// func flushes pending records and disconnects.
func UseMongo(uri, db, collection string) (func(), error) {
	mh, err := NewMongoHandler(uri, db, collection)
	if err != nil {
		return nil, err
	}

	L = slog.New(NewMultiHandler(L.Handler(), mh))
	slog.SetDefault(L)
	return mh.Close, nil
}

// WithEvent returns L tagged with the event name.
func WithEvent(name string) *slog.Logger {
	return L.With("event", name)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
