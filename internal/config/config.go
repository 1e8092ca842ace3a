package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/HuseyinOrkun/FMUT/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine   EngineConfig
	Database DatabaseConfig
	Data     DataConfig
}

// EngineConfig holds permutation engine defaults
type EngineConfig struct {
	NumPermutations int
	Seed            int64
	Workers         int
	Alpha           float64
	ProgressEvery   int
}

// DatabaseConfig holds result-store connection settings
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// DataConfig holds measurement ingestion settings
type DataConfig struct {
	ExcelFile string
}

// Load reads configuration from environment variables (and a .env file when
// present) and validates it.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	config := &Config{
		Engine: EngineConfig{
			NumPermutations: getEnvInt("FMAX_NUM_PERMUTATIONS", 2500),
			Seed:            int64(getEnvInt("FMAX_SEED", 0)),
			Workers:         getEnvInt("FMAX_WORKERS", 0),
			Alpha:           getEnvFloat("FMAX_ALPHA", 0.05),
			ProgressEvery:   getEnvInt("FMAX_PROGRESS_EVERY", 100),
		},
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			Enabled: os.Getenv("DATABASE_URL") != "",
		},
		Data: DataConfig{
			ExcelFile: os.Getenv("FMAX_EXCEL_FILE"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Engine.NumPermutations < 1 {
		return errors.ConfigInvalid("FMAX_NUM_PERMUTATIONS must be >= 1")
	}
	if c.Engine.Alpha <= 0 || c.Engine.Alpha >= 1 {
		return errors.ConfigInvalid("FMAX_ALPHA must be in (0, 1)")
	}
	if c.Engine.Workers < 0 {
		return errors.ConfigInvalid("FMAX_WORKERS must be >= 0")
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
