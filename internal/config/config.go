package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        App        `mapstructure:"app"`
	Embedding  Embedding  `mapstructure:"embedding"`
	Similarity Similarity `mapstructure:"similarity"`
	Aggregator Aggregator `mapstructure:"aggregator"`
	Timeline   Timeline   `mapstructure:"timeline"`
	Profile    Profile    `mapstructure:"profile"`
	Sources    Sources    `mapstructure:"sources"`
	Cache      Cache      `mapstructure:"cache"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// Embedding holds embedding provider configuration.
type Embedding struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Dimensions int32  `mapstructure:"dimensions"`
	Timeout    string `mapstructure:"timeout"`
}

// Similarity holds similarity engine configuration.
type Similarity struct {
	Threshold float64 `mapstructure:"threshold"`
}

// Aggregator holds aggregation configuration.
type Aggregator struct {
	MaxConcurrency     int     `mapstructure:"max_concurrency"`
	RelevanceThreshold float64 `mapstructure:"relevance_threshold"`
}

// Timeline holds timeline clustering configuration.
type Timeline struct {
	DistanceThreshold float64 `mapstructure:"distance_threshold"`
	MembersThreshold  int     `mapstructure:"members_threshold"`
	TimeWeight        float64 `mapstructure:"time_weight"`
}

// Profile holds media profile enrichment configuration.
type Profile struct {
	MaxConcurrency int    `mapstructure:"max_concurrency"`
	Model          string `mapstructure:"model"`
	Timeout        string `mapstructure:"timeout"`
}

// Sources holds source connector configuration.
type Sources struct {
	Language string `mapstructure:"language"`
	Region   string `mapstructure:"region"`
	Limit    int    `mapstructure:"limit"`
	Timeout  string `mapstructure:"timeout"`
}

// Cache holds persistence configuration.
type Cache struct {
	Directory string `mapstructure:"directory"`
}

var globalConfig *Config

// Load loads configuration from .env, an optional YAML config file, and
// environment variables, in increasing precedence.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".autotopicsum")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	// GEMINI_API_KEY is the conventional name; support the GOOGLE_ variant too.
	_ = viper.BindEnv("embedding.api_key", "GEMINI_API_KEY", "GOOGLE_AI_API_KEY")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Used by tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".autotopicsum")

	viper.SetDefault("embedding.model", "gemini-embedding-001")
	viper.SetDefault("embedding.dimensions", 768)
	viper.SetDefault("embedding.timeout", "30s")

	viper.SetDefault("similarity.threshold", 0.7)

	viper.SetDefault("aggregator.max_concurrency", 3)
	viper.SetDefault("aggregator.relevance_threshold", 0.3)

	viper.SetDefault("timeline.distance_threshold", 0.6)
	viper.SetDefault("timeline.members_threshold", 2)
	viper.SetDefault("timeline.time_weight", 0.7)

	viper.SetDefault("profile.max_concurrency", 5)
	viper.SetDefault("profile.model", "gemini-flash-lite-latest")
	viper.SetDefault("profile.timeout", "60s")

	viper.SetDefault("sources.language", "zh-CN")
	viper.SetDefault("sources.region", "CN")
	viper.SetDefault("sources.limit", 100)
	viper.SetDefault("sources.timeout", "15s")

	viper.SetDefault("cache.directory", ".autotopicsum")
}

func validate(c *Config) error {
	if c.Similarity.Threshold < 0 || c.Similarity.Threshold > 1 {
		return fmt.Errorf("similarity.threshold must be in [0,1], got %v", c.Similarity.Threshold)
	}
	if c.Aggregator.RelevanceThreshold < 0 || c.Aggregator.RelevanceThreshold > 1 {
		return fmt.Errorf("aggregator.relevance_threshold must be in [0,1], got %v", c.Aggregator.RelevanceThreshold)
	}
	if c.Aggregator.MaxConcurrency < 1 {
		return fmt.Errorf("aggregator.max_concurrency must be positive, got %d", c.Aggregator.MaxConcurrency)
	}
	if c.Timeline.MembersThreshold < 1 {
		return fmt.Errorf("timeline.members_threshold must be positive, got %d", c.Timeline.MembersThreshold)
	}
	return nil
}
