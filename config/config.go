package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Runtime  RuntimeConfig
	Analysis AnalysisConfig
	Wardrobe WardrobeConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RuntimeConfig holds model runtime configuration
type RuntimeConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// AnalysisConfig holds analysis engine tuning
type AnalysisConfig struct {
	CacheCapacity     int           `mapstructure:"cache_capacity"`
	CacheShortCircuit bool          `mapstructure:"cache_short_circuit"`
	CallTimeout       time.Duration `mapstructure:"call_timeout"`
	BatchSize         int           `mapstructure:"batch_size"`
	BatchDelay        time.Duration `mapstructure:"batch_delay"`
	Debug             bool          `mapstructure:"debug"`
}

// WardrobeConfig holds Firestore wardrobe configuration. An empty project ID
// disables the wardrobe subsystem entirely.
type WardrobeConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	UserID          string `mapstructure:"user_id"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/stylescout/")

	// Environment variable settings
	v.SetEnvPrefix("STYLESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	// Runtime defaults target a local Ollama-compatible server
	v.SetDefault("runtime.base_url", "http://localhost:11434")
	v.SetDefault("runtime.model", "gemma3:4b")

	// Analysis defaults
	v.SetDefault("analysis.cache_capacity", 100)
	v.SetDefault("analysis.cache_short_circuit", true)
	v.SetDefault("analysis.call_timeout", "30s")
	v.SetDefault("analysis.batch_size", 3)
	v.SetDefault("analysis.batch_delay", "500ms")
	v.SetDefault("analysis.debug", false)

	// Wardrobe defaults: disabled until a project is configured
	v.SetDefault("wardrobe.project_id", "")
	v.SetDefault("wardrobe.credentials_file", "")
	v.SetDefault("wardrobe.user_id", "default")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Runtime.BaseURL == "" {
		return fmt.Errorf("runtime base URL is required (set STYLESCOUT_RUNTIME_BASE_URL)")
	}
	if config.Runtime.Model == "" {
		return fmt.Errorf("runtime model name is required (set STYLESCOUT_RUNTIME_MODEL)")
	}

	if config.Analysis.BatchSize < 1 {
		return fmt.Errorf("analysis batch size must be positive, got: %d", config.Analysis.BatchSize)
	}
	if config.Analysis.CacheCapacity < 1 {
		return fmt.Errorf("analysis cache capacity must be positive, got: %d", config.Analysis.CacheCapacity)
	}

	if config.Wardrobe.ProjectID != "" && config.Wardrobe.UserID == "" {
		return fmt.Errorf("wardrobe user ID is required when a project is configured")
	}

	return nil
}
