package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APPLIES_TOKENS", "")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8780", cfg.Port)
	assert.Equal(t, "S/E", cfg.SubstationMarker)
	assert.Contains(t, cfg.AppliesTokens, "SI")
	assert.Equal(t, "Nombre Subestación", cfg.EquipmentSubstationCol)
	assert.False(t, cfg.HasDatabase())
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APPLIES_TOKENS", " vale , , ok ")
	t.Setenv("MAX_UPLOAD_MB", "notanumber")
	t.Setenv("BUNDEBUG", "true")
	t.Setenv("FEEDER_COLUMN_PREFIX", "Feeder")

	cfg := Load()
	assert.Equal(t, []string{"vale", "ok"}, cfg.AppliesTokens)
	assert.Equal(t, 32, cfg.MaxUploadMB)
	assert.True(t, cfg.BunDebug)
	assert.Equal(t, "Feeder", cfg.FeederColumnPrefix)
}

func TestValidate(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	cfg.Environment = "staging"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.AppliesTokens = nil
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.DatabaseURL = "postgres://localhost/db"
	cfg.EquipmentQuery = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_SubstationMarker(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	cfg.SubstationMarker = "s/e"
	assert.NoError(t, cfg.Validate())

	cfg.SubstationMarker = "..."
	assert.Error(t, cfg.Validate())
}

func TestValidate_LogLevel(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	cfg.LogLevel = "warn"
	assert.NoError(t, cfg.Validate())

	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}
