package logger

import (
	"context"
	"fmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"sync/atomic"
)

type ctxKey struct{}

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// Init builds the process logger. Until it is called every call is a no-op.
func Init(level string, development bool) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("zapcore.ParseLevel: %w", err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("cfg.Build: %w", err)
	}
	global.Store(l)
	return nil
}

func Sync() {
	_ = global.Load().Sync()
}

// With returns a context whose log lines carry fields.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	prev, _ := ctx.Value(ctxKey{}).([]zap.Field)
	merged := make([]zap.Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

func fromCtx(ctx context.Context) *zap.Logger {
	l := global.Load()
	if ctx == nil {
		return l
	}
	if fields, ok := ctx.Value(ctxKey{}).([]zap.Field); ok {
		return l.With(fields...)
	}
	return l
}

func Debugf(ctx context.Context, template string, args ...any) {
	fromCtx(ctx).Debug(fmt.Sprintf(template, args...))
}

func Infof(ctx context.Context, template string, args ...any) {
	fromCtx(ctx).Info(fmt.Sprintf(template, args...))
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	fromCtx(ctx).Info(msg, fields...)
}

func Warnf(ctx context.Context, template string, args ...any) {
	fromCtx(ctx).Warn(fmt.Sprintf(template, args...))
}

func Errorf(ctx context.Context, template string, args ...any) {
	fromCtx(ctx).Error(fmt.Sprintf(template, args...))
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	fromCtx(ctx).Error(msg, fields...)
}

func Fatal(ctx context.Context, err error) {
	fromCtx(ctx).Fatal(err.Error())
}
