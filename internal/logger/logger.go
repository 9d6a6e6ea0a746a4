package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"streaming-db/internal/config"
)

// New creates a logger that writes only to stderr. Stdout carries the
// Success/Fail protocol and must never see a log line.
func New(cfg config.Log) (*zap.Logger, error) {
	var zcfg zap.Config

	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		// Sampling would drop repeated per-row load messages.
		zcfg.Sampling = nil
	}

	levelName := cfg.Level
	if levelName == "" {
		levelName = "error"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.Format == "json" {
		zcfg.Encoding = "json"
	} else {
		zcfg.Encoding = "console"
	}

	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.CallerKey = "caller"
	zcfg.EncoderConfig.StacktraceKey = "stacktrace"

	return zcfg.Build()
}

// WithInvocation tags every entry of one CLI run.
func WithInvocation(logger *zap.Logger, invocationID, command, driver string) *zap.Logger {
	fields := []zap.Field{zap.String("invocation_id", invocationID)}

	if command != "" {
		fields = append(fields, zap.String("command", command))
	}
	if driver != "" {
		fields = append(fields, zap.String("driver", driver))
	}

	return logger.With(fields...)
}
