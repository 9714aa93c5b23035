package logger

import (
	"capacity-bknd/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.Logger
}

// New builds the service logger. Production logs JSON, development logs
// colored console lines, test discards everything. LOG_LEVEL overrides the
// environment's default level.
func New(cfg *config.Config) *Logger {
	if cfg.Environment == "test" {
		return &Logger{zap.NewNop()}
	}

	l, err := buildConfig(cfg).Build()
	if err != nil {
		panic(err)
	}
	return &Logger{l.With(zap.String("service", "capacity"))}
}

func buildConfig(cfg *config.Config) zap.Config {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.EncoderConfig.TimeKey = "timestamp"

	if cfg.LogLevel != "" {
		if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
			zapCfg.Level = lvl
		}
	}
	return zapCfg
}

// Sync flushes buffered entries; stderr sync errors are expected on some
// terminals and ignored.
func (l *Logger) Sync() {
	_ = l.Logger.Sync()
}
