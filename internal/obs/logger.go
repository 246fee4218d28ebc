// Package obs wraps zap for the core's context-aware structured logging.
//
// Grounded on github.com/fyrsmithlabs/contextd/internal/logging: a thin
// wrapper adding context-sourced fields to every call site rather than a
// bespoke logging facade.
package obs

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with context-aware methods.
type Logger struct {
	z *zap.Logger
}

// New builds a Logger. format is "json" (default) or "console".
func New(format string, fields map[string]string) (*Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if format == "console" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(zapWriter())), zapcore.InfoLevel)
	z := zap.New(core, zap.AddCaller())

	if len(fields) > 0 {
		zf := make([]zap.Field, 0, len(fields))
		for k, v := range fields {
			zf = append(zf, zap.String(k, v))
		}
		z = z.With(zf...)
	}
	return &Logger{z: z}, nil
}

// NewNop returns a Logger that discards everything (used by tests).
func NewNop() *Logger { return &Logger{z: zap.NewNop()} }

type ctxKey struct{}

// fieldsFromContext returns fields attached via WithFields, or nil.
func fieldsFromContext(ctx context.Context) []zap.Field {
	v, _ := ctx.Value(ctxKey{}).([]zap.Field)
	return v
}

// WithFields attaches fields to ctx so every Logger call made with it is
// annotated — e.g. collection name, shard id, request id.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	existing := fieldsFromContext(ctx)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.z.Debug(msg, append(fieldsFromContext(ctx), fields...)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.z.Info(msg, append(fieldsFromContext(ctx), fields...)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.z.Warn(msg, append(fieldsFromContext(ctx), fields...)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.z.Error(msg, append(fieldsFromContext(ctx), fields...)...)
}

// With returns a child Logger with constant fields attached.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

// Named returns a child Logger namespaced under name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{z: l.z.Named(name)}
}

func (l *Logger) Sync() error { return l.z.Sync() }

func (l *Logger) Underlying() *zap.Logger { return l.z }
