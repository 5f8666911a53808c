package observability

import (
	"fmt"

	"go.uber.org/zap"
)

// NewZap builds a zap logger at the given level ("debug", "info", ...).
// Development mode switches to the console encoder with caller info.
func NewZap(level string, development bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	return cfg.Build()
}

type zapLogger struct{ l *zap.Logger }

// FromZap adapts a zap logger to Logger.
func FromZap(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return zapLogger{l: l}
}

func (z zapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, zapFields(fields)...) }
func (z zapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, zapFields(fields)...) }
func (z zapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, zapFields(fields)...) }
func (z zapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, zapFields(fields)...) }

func (z zapLogger) With(fields ...Field) Logger {
	return zapLogger{l: z.l.With(zapFields(fields)...)}
}

func zapFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.(type) {
		case stringField:
			out = append(out, zap.String(v.key, v.val))
		case intField:
			out = append(out, zap.Int(v.key, v.val))
		case int64Field:
			out = append(out, zap.Int64(v.key, v.val))
		case boolField:
			out = append(out, zap.Bool(v.key, v.val))
		case durationField:
			out = append(out, zap.Duration(v.key, v.val))
		case errorField:
			out = append(out, zap.NamedError(v.key, v.err))
		default:
			out = append(out, zap.Any(f.Key(), f.Value()))
		}
	}
	return out
}
