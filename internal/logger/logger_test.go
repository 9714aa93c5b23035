package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"capacity-bknd/internal/config"
)

func TestBuildConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		level    string
		encoding string
		want     zapcore.Level
	}{
		{"production default", "production", "", "json", zapcore.InfoLevel},
		{"development default", "development", "", "console", zapcore.DebugLevel},
		{"level override", "production", "warn", "json", zapcore.WarnLevel},
		{"bad level ignored", "development", "loud", "console", zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zc := buildConfig(&config.Config{Environment: tt.env, LogLevel: tt.level})
			assert.Equal(t, tt.encoding, zc.Encoding)
			assert.Equal(t, tt.want, zc.Level.Level())
			assert.Equal(t, "timestamp", zc.EncoderConfig.TimeKey)
		})
	}
}

func TestNew_TestEnvironmentIsSilent(t *testing.T) {
	l := New(&config.Config{Environment: "test"})
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}
