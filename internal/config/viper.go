// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Storage drivers accepted by storage.driver.
const (
	DriverYAML     = "yaml"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// EnvPrefix prefixes every environment override, e.g. PNL_LOG_LEVEL.
const EnvPrefix = "PNL"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Plan struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"plan" yaml:"plan"`

	Storage struct {
		Driver      string `mapstructure:"driver" yaml:"driver"`
		SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
		PostgresURL string `mapstructure:"postgres_url" yaml:"-"` // Never serialize credentials
	} `mapstructure:"storage" yaml:"storage"`

	Engine struct {
		StrictFormulas bool    `mapstructure:"strict_formulas" yaml:"strict_formulas"`
		DefaultTaxRate float64 `mapstructure:"default_tax_rate" yaml:"default_tax_rate"`
	} `mapstructure:"engine" yaml:"engine"`

	Export struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"export" yaml:"export"`
}

// NewViper returns a Viper instance with defaults, config file locations and
// environment bindings set. Callers may bind command-line flags before
// passing it to LoadConfig.
func NewViper() *viper.Viper {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.pnl-forecast")
	v.AddConfigPath(".pnl-forecast")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The connection string is commonly provided unprefixed.
	if err := v.BindEnv("storage.postgres_url", EnvPrefix+"_STORAGE_POSTGRES_URL", "DATABASE_URL"); err != nil {
		fmt.Printf("Warning: failed to bind DATABASE_URL environment variable: %v\n", err)
	}
	return v
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return LoadConfig(NewViper())
}

// LoadConfig reads the optional config file and unmarshals and validates
// the result.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("plan.file", "plan.yaml")

	v.SetDefault("storage.driver", DriverYAML)
	v.SetDefault("storage.sqlite_path", "data/plan.db")
	v.SetDefault("storage.postgres_url", "")

	v.SetDefault("engine.strict_formulas", false)
	v.SetDefault("engine.default_tax_rate", 25.0)

	v.SetDefault("export.delimiter", ",")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	switch config.Storage.Driver {
	case DriverYAML:
		if config.Plan.File == "" {
			return fmt.Errorf("plan.file is required for the yaml driver")
		}
	case DriverSQLite:
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if config.Storage.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL or storage.postgres_url required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be 'yaml', 'sqlite' or 'postgres')", config.Storage.Driver)
	}

	if config.Engine.DefaultTaxRate < 0 || config.Engine.DefaultTaxRate > 100 {
		return fmt.Errorf("engine.default_tax_rate must be between 0 and 100, got: %g", config.Engine.DefaultTaxRate)
	}

	if utf8.RuneCountInString(config.Export.Delimiter) != 1 {
		return fmt.Errorf("export delimiter must be a single character, got: %s", config.Export.Delimiter)
	}

	return nil
}

// Delimiter returns the export delimiter as a rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Export.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
