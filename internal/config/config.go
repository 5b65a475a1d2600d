package config

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/viper"
)

type Config struct {
	Output          string   `mapstructure:"output"`
	Manifest        string   `mapstructure:"manifest"`
	Match           []string `mapstructure:"match"`
	ContinueOnError bool     `mapstructure:"continue_on_error"`
	VerifyMeta      bool     `mapstructure:"verify_meta"`
	MaxBlockSize    int      `mapstructure:"max_block_size"`
	LogLevel        string   `mapstructure:"log_level"`
	LogFormat       string   `mapstructure:"log_format"`
}

// Load initializes and loads configuration from file
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("output", ".")
	v.SetDefault("manifest", "")
	v.SetDefault("match", []string{})
	v.SetDefault("continue_on_error", false)
	v.SetDefault("verify_meta", false)
	v.SetDefault("max_block_size", 0xFFFF)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("UNZAP")
	v.AutomaticEnv()

	// Config file handling
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName("unzap")
		v.SetConfigType("yaml")
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise only fail deep inside a run
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level '%s': expected debug, info, warn or error", c.LogLevel)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format '%s': expected text or json", c.LogFormat)
	}

	if c.MaxBlockSize == 0 || c.MaxBlockSize < -1 {
		return fmt.Errorf("invalid max_block_size %d: must be positive, or -1 for no limit", c.MaxBlockSize)
	}

	if c.Output == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	for _, pattern := range c.Match {
		if pattern == "" {
			return fmt.Errorf("match pattern cannot be empty")
		}
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid match pattern '%s': %w", pattern, err)
		}
	}

	return nil
}
