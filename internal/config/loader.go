package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigPaths holds the paths to configuration files
type ConfigPaths struct {
	Main string // mixrd.toml, .yaml or .json; empty uses defaults only
	Env  string // dotenv file; a missing file is ignored
}

// DefaultConfigPaths returns the default configuration file paths
func DefaultConfigPaths() ConfigPaths {
	return ConfigPaths{Main: "mixrd.toml", Env: ".env"}
}

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file
// 3. Environment variables (MIXRD_ prefix), after loading the dotenv file
func LoadConfig(paths ConfigPaths) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if paths.Main != "" {
		if err := loadMainConfig(v, paths.Main); err != nil {
			return nil, fmt.Errorf("failed to load main config: %w", err)
		}
	}

	if paths.Env != "" {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(paths.Env); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", paths.Env, err)
		}
	}
	v.SetEnvPrefix("MIXRD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = paths.Main

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

func loadMainConfig(v *viper.Viper, configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	return nil
}

// SaveExampleConfig writes the default configuration to configPath. The
// format follows the file extension.
func SaveExampleConfig(configPath string) error {
	v := viper.New()
	setDefaults(v)
	v.Set("genesis_file", "genesis.yaml")
	v.Set("payout.schedule", "@daily")
	v.SetConfigFile(configPath)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}
	return nil
}
