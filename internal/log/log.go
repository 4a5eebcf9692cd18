package log

import (
	"fmt"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the process-wide logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	File   string // extra sink next to stdout; empty for stdout only
}

var global atomic.Pointer[zap.Logger]

func init() {
	l, err := New(Options{Level: "info", Format: "json"})
	if err != nil {
		l = zap.NewNop()
	}
	global.Store(l)
}

// New builds a zap logger writing one line per event.
func New(o Options) (*zap.Logger, error) {
	if o.Level == "" {
		o.Level = "info"
	}
	level, err := zapcore.ParseLevel(o.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	if o.Format != "console" {
		o.Format = "json"
	}

	enc := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "action",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}

	out := []string{"stdout"}
	if o.File != "" {
		out = append(out, o.File)
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         o.Format,
		EncoderConfig:    enc,
		OutputPaths:      out,
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

// Init replaces the global logger.
func Init(o Options) error {
	l, err := New(o)
	if err != nil {
		return err
	}
	old := global.Swap(l)
	_ = old.Sync()
	return nil
}

// L returns the global logger for code that has no request context.
func L() *zap.Logger { return global.Load() }

// SetLogger installs l and returns a func restoring the previous logger.
func SetLogger(l *zap.Logger) (restore func()) {
	old := global.Swap(l)
	return func() { global.Store(old) }
}

// Sync flushes buffered entries.
func Sync() { _ = L().Sync() }

func write(level zapcore.Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := L()
	ce := l.Check(level, action)
	if ce == nil {
		return
	}
	zf := make([]zap.Field, 0, 8)
	if c != nil {
		zf = append(zf,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			zf = append(zf, zap.String("req_id", rid))
		}
	}
	if err != nil {
		zf = append(zf, zap.String("err", err.Error()))
	}
	if len(fields) > 0 {
		zf = append(zf, zap.Any("fields", fields))
	}
	ce.Write(zf...)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, c, action, nil, fields)
}

// Audit records state changes made on behalf of a caller.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, c, action, nil, append1(fields, "audit", true))
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.WarnLevel, c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zapcore.ErrorLevel, c, action, err, fields)
}

func append1(fields map[string]any, k string, v any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for fk, fv := range fields {
		out[fk] = fv
	}
	out[k] = v
	return out
}
