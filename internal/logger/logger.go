// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// The demo host writes one JSON log per day to `<dir>/YYYY-MM-DD.log`, teeing
// colorized console output when attached to a TTY.  Lumberjack handles
// rotation, compression, and retention.
//
// Request handlers do not hold a logger of their own: the request logging
// middleware stores one carrying the request ID via WithContext, and code
// deeper in the stack (form actions, component handlers) pulls it back out
// with FromContext.
//
//	log, err := logger.New(logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level})
//	ctx = logger.WithContext(ctx, log.With("request_id", rid))
//	logger.FromContext(ctx).Errorw("store action failed", "err", err)
package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	Dir   string // created if missing
	Level string // debug, info, warn, or error; empty means info
	Tee   bool   // also write to stdout
}

// New builds the file logger described by o and installs it as the
// process-wide default via zap.ReplaceGlobals.
func New(o Options) (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if o.Level != "" {
		l, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		level = l
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return nil, err
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(o.Dir, time.Now().Format(time.DateOnly)+".log"),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	})

	enc := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewJSONEncoder(enc), sink, level)}
	if o.Tee {
		console := enc
		console.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(console), zapcore.AddSync(os.Stdout), level))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(sink)).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "dir", o.Dir, "level", level.String(), "tee", o.Tee)
	return z, nil
}

type ctxKey struct{}

// WithContext attaches l to ctx for request-scoped fields.
func WithContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by WithContext, or the global
// sugared logger when none is attached.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok && l != nil {
			return l
		}
	}
	return zap.S()
}
