// Package config loads the artcat application configuration from file
// and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds catalog API settings.
type APIConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	UserAgent         string `mapstructure:"user_agent"`
	PageSize          int    `mapstructure:"page_size"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// CacheConfig holds response cache settings. An empty RedisAddr
// disables the cache.
type CacheConfig struct {
	RedisAddr string `mapstructure:"redis_addr"`
}

// StoreConfig holds selection persistence settings. An empty Path keeps
// selections in memory only.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://api.artic.edu/api/v1",
			UserAgent:         "artcat/1.0 (+https://github.com/Sternrassler/artic-catalog)",
			PageSize:          12,
			RequestsPerMinute: 60,
		},
		Cache: CacheConfig{
			RedisAddr: "",
		},
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS.
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "artcat", "artcat.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "artcat", "artcat.log")
	}
}

// defaultStorePath returns the default selection database path.
func defaultStorePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "artcat", "selections.db")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "artcat", "selections.db")
	}
}

// defaultConfigPath returns the default config directory for the current OS.
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "artcat")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "artcat")
	}
}

// Load reads configuration from file and environment. A missing config
// file is not an error; defaults apply.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides, e.g. ARTCAT_API_USER_AGENT
	viper.SetEnvPrefix("ARTCAT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.API.PageSize < 1 {
		cfg.API.PageSize = 12
	}

	return cfg, nil
}

// Save writes the configuration to the default config file, creating
// the directory if needed, and returns the written path.
func Save(cfg *Config) (string, error) {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set("api.base_url", cfg.API.BaseURL)
	viper.Set("api.user_agent", cfg.API.UserAgent)
	viper.Set("api.page_size", cfg.API.PageSize)
	viper.Set("api.requests_per_minute", cfg.API.RequestsPerMinute)

	viper.Set("cache.redis_addr", cfg.Cache.RedisAddr)
	viper.Set("store.path", cfg.Store.Path)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configFile, nil
}
