package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Geo    GeoConfig    `yaml:"geo" mapstructure:"geo"`
	GitHub GitHubConfig `yaml:"github" mapstructure:"github"`
	HF     HFConfig     `yaml:"hf" mapstructure:"hf"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// GeoConfig configures the geocoding layer.
type GeoConfig struct {
	// Provider selects the geocoding backend: "google", "nominatim", or
	// empty to pick google when a key is configured, nominatim otherwise.
	Provider        string `yaml:"provider" mapstructure:"provider"`
	GoogleKey       string `yaml:"google_key" mapstructure:"google_key"`
	CachePath       string `yaml:"cache_path" mapstructure:"cache_path"`
	AliasPath       string `yaml:"alias_path" mapstructure:"alias_path"`
	CheckpointEvery int    `yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
}

// GitHubConfig holds GitHub API settings for the harvest command.
type GitHubConfig struct {
	Token    string `yaml:"token" mapstructure:"token"`
	PerPage  int    `yaml:"per_page" mapstructure:"per_page"`
	MaxRepos int    `yaml:"max_repos" mapstructure:"max_repos"`
}

// HFConfig holds Hugging Face Hub settings for the harvest command.
type HFConfig struct {
	Token         string `yaml:"token" mapstructure:"token"`
	MaxAssets     int    `yaml:"max_assets" mapstructure:"max_assets"`
	LimitPerQuery int    `yaml:"limit_per_query" mapstructure:"limit_per_query"`
	StartYear     int    `yaml:"start_year" mapstructure:"start_year"`
	EndYear       int    `yaml:"end_year" mapstructure:"end_year"`
}

// FetchConfig configures the resilient HTTP fetcher.
type FetchConfig struct {
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts   int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseBackoffMs int    `yaml:"base_backoff_ms" mapstructure:"base_backoff_ms"`
}

// StoreConfig configures the run log database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SOURCER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("geo.provider", "")
	v.SetDefault("geo.cache_path", "geocode_cache.json")
	v.SetDefault("geo.checkpoint_every", 50)
	v.SetDefault("github.per_page", 50)
	v.SetDefault("github.max_repos", 500)
	v.SetDefault("hf.max_assets", 1200)
	v.SetDefault("hf.limit_per_query", 200)
	v.SetDefault("hf.start_year", 2023)
	v.SetDefault("hf.end_year", 2026)
	v.SetDefault("fetch.user_agent", "sourcer-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 20)
	v.SetDefault("fetch.max_attempts", 6)
	v.SetDefault("fetch.base_backoff_ms", 1800)
	v.SetDefault("store.path", "sourcer_runs.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
