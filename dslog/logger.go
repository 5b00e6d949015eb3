// Package dslog implements DirSchema's structured logging setup: a thin
// zap wrapper configured from a dsconfig.Config, console or JSON encoded,
// with an optional rotating file sink.
//
// Grounded on the teacher's logging package, thinned: policy enforcement,
// redaction middleware, throttling, and correlation-ID propagation are
// dropped, since a validation library has no request pipeline for them to
// guard — the evaluator logs one operational warning per adapter failure
// and nothing else.
package dslog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fulmenhq/dirschema/dsconfig"
)

// Logger wraps a configured zap.Logger with the fields dirschema attaches
// to every log line it emits (path, component).
type Logger struct {
	zap *zap.Logger
}

// New builds a Logger from cfg: LogLevel selects the minimum severity,
// LogProfile selects "console" (human-readable, the default) or "json"
// encoding, and a non-empty LogFile adds a lumberjack-rotated file sink
// alongside stderr.
func New(cfg dsconfig.Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(levelOrDefault(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("dslog: %w", err)
	}
	atomicLevel := zap.NewAtomicLevelAt(level)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.LogProfile == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), atomicLevel),
	}
	if cfg.LogFile != "" {
		lumber := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(lumber), atomicLevel))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return &Logger{zap: zapLogger}, nil
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

// Warn logs an operational (not validation) warning: an adapter failure a
// rule evaluation encountered but that doesn't itself abort the run.
func (l *Logger) Warn(msg string, fields ...zap.Field) { l.zap.Warn(msg, fields...) }

// Error logs an operational error.
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }

// Info logs an informational line (e.g. "validation run complete").
func (l *Logger) Info(msg string, fields ...zap.Field) { l.zap.Info(msg, fields...) }

// Debug logs a diagnostic line useful when tracing evaluator recursion.
func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }

// WithPath returns a child Logger that annotates every line with path.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{zap: l.zap.With(zap.String("path", path))}
}

// WithComponent returns a child Logger that annotates every line with
// component (e.g. "adapter", "evaluate", "plugin").
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{zap: l.zap.With(zap.String("component", component))}
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error { return l.zap.Sync() }
