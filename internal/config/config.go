package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Forage   ForageConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// ForageConfig holds the estimation-pipeline knobs that operators may tune
// per deployment. The regression constants themselves live in the forage
// package's pasture catalog.
type ForageConfig struct {
	// ClampIndex switches out-of-range vegetation indices from rejection
	// to clamping.
	ClampIndex bool
	// MaxCloudCover is the highest acceptable sample cloud fraction.
	MaxCloudCover float64
	// ReferencePeriodDays is the grazing period carrying capacity is
	// expressed over.
	ReferencePeriodDays int
	// DefaultSubLots is the paddock subdivision used when an analysis
	// request does not specify one.
	DefaultSubLots int
	// SimulationSeed makes simulated samples reproducible across runs.
	SimulationSeed int64
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for
// development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "pastizal")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("FORAGE_CLAMP_INDEX", false)
	v.SetDefault("FORAGE_MAX_CLOUD_COVER", 0.2)
	v.SetDefault("FORAGE_REFERENCE_PERIOD_DAYS", 30)
	v.SetDefault("FORAGE_DEFAULT_SUBLOTS", 24)
	v.SetDefault("FORAGE_SIMULATION_SEED", 1)

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Forage: ForageConfig{
			ClampIndex:          v.GetBool("FORAGE_CLAMP_INDEX"),
			MaxCloudCover:       v.GetFloat64("FORAGE_MAX_CLOUD_COVER"),
			ReferencePeriodDays: v.GetInt("FORAGE_REFERENCE_PERIOD_DAYS"),
			DefaultSubLots:      v.GetInt("FORAGE_DEFAULT_SUBLOTS"),
			SimulationSeed:      v.GetInt64("FORAGE_SIMULATION_SEED"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.Forage.MaxCloudCover < 0 || c.Forage.MaxCloudCover > 1 {
		return fmt.Errorf("FORAGE_MAX_CLOUD_COVER must be a fraction between 0 and 1")
	}
	if c.Forage.ReferencePeriodDays < 1 {
		return fmt.Errorf("FORAGE_REFERENCE_PERIOD_DAYS must be at least 1")
	}
	if c.Forage.DefaultSubLots < 1 {
		return fmt.Errorf("FORAGE_DEFAULT_SUBLOTS must be at least 1")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
