// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"fintrack/internal/classifier"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. FINTRACK_SERVER_PORT.
const EnvPrefix = "FINTRACK"

// Config represents the complete application configuration
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Data      DataConfig      `mapstructure:"data" yaml:"data"`
	Model     ModelConfig     `mapstructure:"model" yaml:"model"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Analytics AnalyticsConfig `mapstructure:"analytics" yaml:"analytics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DataConfig locates the transaction database and the seed CSV.
type DataConfig struct {
	DBPath    string `mapstructure:"db_path" yaml:"db_path"`
	SeedPath  string `mapstructure:"seed_path" yaml:"seed_path"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// Corpus names accepted by model.corpus.
const (
	CorpusSeed     = "seed"
	CorpusDatabase = "database"
)

// ModelConfig holds training hyperparameters and the bundle location.
// Corpus selects the training rows: the seed CSV or the categorized
// transactions in the database.
type ModelConfig struct {
	Path          string        `mapstructure:"path" yaml:"path"`
	MinSamples    int           `mapstructure:"min_samples" yaml:"min_samples"`
	MaxFeatures   int           `mapstructure:"max_features" yaml:"max_features"`
	Alpha         float64       `mapstructure:"alpha" yaml:"alpha"`
	StopWords     string        `mapstructure:"stop_words" yaml:"stop_words"`
	Corpus        string        `mapstructure:"corpus" yaml:"corpus"`
	RetryInterval time.Duration `mapstructure:"retry_interval" yaml:"retry_interval"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type AnalyticsConfig struct {
	WindowDays       int     `mapstructure:"window_days" yaml:"window_days"`
	FoodAlertPercent float64 `mapstructure:"food_alert_percent" yaml:"food_alert_percent"`
}

// DelimiterRune returns the CSV delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Data.Delimiter)
	return r
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return initialize("")
}

// InitializeConfigFile loads configuration from an explicit file instead of
// the search path.
func InitializeConfigFile(path string) (*Config, error) {
	return initialize(path)
}

func initialize(file string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.fintrack")
		v.AddConfigPath(".fintrack")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			if file != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
			}
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Data defaults
	v.SetDefault("data.db_path", "fintrack.db")
	v.SetDefault("data.seed_path", "data/raw_transactions.csv")
	v.SetDefault("data.delimiter", ",")

	// Model defaults
	v.SetDefault("model.path", "models/category_model.yaml")
	v.SetDefault("model.min_samples", 20)
	v.SetDefault("model.max_features", classifier.DefaultMaxFeatures)
	v.SetDefault("model.alpha", classifier.DefaultAlpha)
	v.SetDefault("model.stop_words", "english")
	v.SetDefault("model.corpus", CorpusSeed)
	v.SetDefault("model.retry_interval", time.Minute)

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Analytics defaults
	v.SetDefault("analytics.window_days", 30)
	v.SetDefault("analytics.food_alert_percent", 25.0)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate CSV delimiter
	if utf8.RuneCountInString(config.Data.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.Data.Delimiter)
	}

	if config.Model.MinSamples < 1 {
		return fmt.Errorf("model.min_samples must be at least 1, got: %d", config.Model.MinSamples)
	}
	if config.Model.MaxFeatures < 1 {
		return fmt.Errorf("model.max_features must be at least 1, got: %d", config.Model.MaxFeatures)
	}
	if config.Model.Alpha <= 0 {
		return fmt.Errorf("model.alpha must be positive, got: %f", config.Model.Alpha)
	}
	if _, ok := classifier.StopWordsByName(config.Model.StopWords); !ok {
		return fmt.Errorf("unknown model.stop_words list: %s (must be 'english' or 'none')", config.Model.StopWords)
	}
	if config.Model.Corpus != CorpusSeed && config.Model.Corpus != CorpusDatabase {
		return fmt.Errorf("invalid model.corpus: %s (must be '%s' or '%s')", config.Model.Corpus, CorpusSeed, CorpusDatabase)
	}
	if config.Model.RetryInterval < 0 {
		return fmt.Errorf("model.retry_interval must not be negative, got: %s", config.Model.RetryInterval)
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", config.Server.Port)
	}
	for _, origin := range config.Server.CORSOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "*" && origin != "" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid server.cors_origins entry: %s (must be '*' or start with http:// or https://)", origin)
		}
	}

	if config.Analytics.WindowDays < 1 {
		return fmt.Errorf("analytics.window_days must be at least 1, got: %d", config.Analytics.WindowDays)
	}
	if config.Analytics.FoodAlertPercent <= 0 || config.Analytics.FoodAlertPercent > 100 {
		return fmt.Errorf("analytics.food_alert_percent must be between 0 and 100, got: %f", config.Analytics.FoodAlertPercent)
	}

	return nil
}
