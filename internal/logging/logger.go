// Package logging defines the structured-logging interface used across the
// server and its slog and zap backends.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "request served", "method", "POST", "status", 201)
type Logger interface {
	// Debug logs diagnostic detail that is off in normal operation.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a Logger writing to w. format is "json" or "text" and applies
// to both backends.
func New(backend, format string, w io.Writer) (Logger, error) {
	switch backend {
	case "", BackendSlog:
		var h slog.Handler
		if format == "text" {
			h = slog.NewTextHandler(w, nil)
		} else {
			h = slog.NewJSONHandler(w, nil)
		}
		return NewSlogLogger(slog.New(h)), nil
	case BackendZap:
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		var enc zapcore.Encoder
		if format == "text" {
			enc = zapcore.NewConsoleEncoder(encCfg)
		} else {
			enc = zapcore.NewJSONEncoder(encCfg)
		}
		core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.InfoLevel)
		return NewZapLogger(zap.New(core)), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
