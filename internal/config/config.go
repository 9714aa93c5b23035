package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"capacity-bknd/internal/normalize"
)

type Config struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"oneof=development production test"`
	LogLevel    string `validate:"omitempty,oneof=debug info warn error"`

	// Postgres source, optional
	DatabaseURL     string
	BunDebug        bool
	EquipmentQuery  string `validate:"required_with=DatabaseURL"`
	GenerationQuery string `validate:"required_with=DatabaseURL"`

	// CORS
	AllowedOrigins []string

	MaxUploadMB int `validate:"min=1,max=512"`

	// Workbook sheets, empty means first sheet
	EquipmentSheet  string
	GenerationSheet string

	// Matching rules
	SubstationMarker string   `validate:"required,marker"`
	AppliesTokens    []string `validate:"min=1,dive,required"`

	// Equipment columns
	EquipmentSubstationCol  string `validate:"required"`
	EquipmentTransformerCol string `validate:"required"`
	EquipmentCapacityCol    string `validate:"required"`
	EquipmentAppliesCol     string `validate:"required"`
	FeederColumnPrefix      string `validate:"required"`

	// Generation columns
	GenerationSubstationCol string `validate:"required"`
	GenerationFeederCol     string `validate:"required"`
	GenerationPowerCol      string `validate:"required"`
	GenerationStatusCol     string `validate:"required"`
	GenerationProcessIDCol  string
	GenerationOwnerCol      string
	GenerationCommuneCol    string
	GenerationPoleIDCol     string
}

// Load loads environment variables and returns a Config struct
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("APP_PORT", "8780"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),

		DatabaseURL:     getEnv("DATABASE_URL", ""),
		BunDebug:        getEnvAsBool("BUNDEBUG", false),
		EquipmentQuery:  getEnv("EQUIPMENT_QUERY", "SELECT * FROM app.capacidad_transformadores"),
		GenerationQuery: getEnv("GENERATION_QUERY", "SELECT * FROM app.informacion_pmgd"),

		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		MaxUploadMB:    getEnvAsInt("MAX_UPLOAD_MB", 32),

		EquipmentSheet:  getEnv("EQUIPMENT_SHEET", ""),
		GenerationSheet: getEnv("GENERATION_SHEET", ""),

		SubstationMarker: getEnv("SUBSTATION_MARKER", "S/E"),
		AppliesTokens:    getEnvAsList("APPLIES_TOKENS", "SI,SÍ,S,SII,SIP,SI APLICA,APLICA,YES,Y,X,OK,TRUE"),

		EquipmentSubstationCol:  getEnv("EQUIPMENT_SUBSTATION_COL", "Nombre Subestación"),
		EquipmentTransformerCol: getEnv("EQUIPMENT_TRANSFORMER_COL", "Transformador"),
		EquipmentCapacityCol:    getEnv("EQUIPMENT_CAPACITY_COL", "Capacidad"),
		EquipmentAppliesCol:     getEnv("EQUIPMENT_APPLIES_COL", "Aplica"),
		FeederColumnPrefix:      getEnv("FEEDER_COLUMN_PREFIX", "Alimentador"),

		GenerationSubstationCol: getEnv("GENERATION_SUBSTATION_COL", "SUBESTACION"),
		GenerationFeederCol:     getEnv("GENERATION_FEEDER_COL", "ALIMENTADOR"),
		GenerationPowerCol:      getEnv("GENERATION_POWER_COL", "POTENCIA_MW"),
		GenerationStatusCol:     getEnv("GENERATION_STATUS_COL", "ESTADO_PMGD"),
		GenerationProcessIDCol:  getEnv("GENERATION_PROCESS_ID_COL", "ID_PROCESO"),
		GenerationOwnerCol:      getEnv("GENERATION_OWNER_COL", "PROPIETARIO"),
		GenerationCommuneCol:    getEnv("GENERATION_COMMUNE_COL", "COMUNA"),
		GenerationPoleIDCol:     getEnv("GENERATION_POLE_ID_COL", "ID_POSTE"),
	}
}

// Validate checks the struct tags above. A substation marker must keep at
// least one character after normalization.
func (c *Config) Validate() error {
	v := validator.New()
	_ = v.RegisterValidation("marker", func(fl validator.FieldLevel) bool {
		return normalize.Key(fl.Field().String()) != ""
	})
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// MaxUploadBytes is the multipart memory limit for one request.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// HasDatabase reports whether the Postgres source is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("invalid bool for %s, defaulting to %v\n", key, fallback)
		return fallback
	}
	return val
}

func getEnvAsInt(key string, fallback int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("invalid int for %s, defaulting to %d\n", key, fallback)
		return fallback
	}
	return val
}

// getEnvAsList splits a comma-separated value, dropping empty entries.
func getEnvAsList(key, fallback string) []string {
	parts := strings.Split(getEnv(key, fallback), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
