package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Classifier struct {
	Provider     string        `mapstructure:"provider"`
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   uint64        `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	UserAgent    string        `mapstructure:"user_agent"`
}

type Scan struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
	Source    string        `mapstructure:"source"` // requests | sample
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | text
}

type Config struct {
	Env         string     `mapstructure:"env"`
	ListenAddr  string     `mapstructure:"listen_addr"`
	DatabaseURL string     `mapstructure:"database_url"`
	SeedCatalog bool       `mapstructure:"seed_catalog"`
	Log         Log        `mapstructure:"log"`
	Classifier  Classifier `mapstructure:"classifier"`
	Scan        Scan       `mapstructure:"scan"`
}

// ErrNoDatabase is returned alongside a usable Config when no database URL is
// set; callers fall back to the in-memory store.
var ErrNoDatabase = errors.New("database_url not set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("database_url", "")
	v.SetDefault("seed_catalog", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("classifier.provider", "gemini")
	v.SetDefault("classifier.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.model", "gemini-3-flash-preview")
	v.SetDefault("classifier.timeout", "20s")
	v.SetDefault("classifier.max_retries", 0)
	v.SetDefault("classifier.retry_backoff", "500ms")
	v.SetDefault("classifier.user_agent", "prophub/1.0")

	v.SetDefault("scan.enabled", true)
	v.SetDefault("scan.interval", "15s")
	v.SetDefault("scan.batch_size", 5)
	v.SetDefault("scan.source", "requests")
}

// Load reads defaults, then the YAML file at path (or ./config.yaml when path
// is empty and the file exists), then PROPHUB_* environment variables.
// A missing database URL is reported as ErrNoDatabase with a valid Config.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("PROPHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// conventional names used by hosting platforms
	_ = v.BindEnv("database_url", "PROPHUB_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("classifier.api_key", "PROPHUB_CLASSIFIER_API_KEY", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.DatabaseURL == "" {
		return cfg, ErrNoDatabase
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Scan.Source {
	case "requests", "sample":
	default:
		return fmt.Errorf("scan.source must be requests or sample, got %q", c.Scan.Source)
	}
	switch c.Classifier.Provider {
	case "gemini":
	default:
		return fmt.Errorf("unknown classifier provider: %s", c.Classifier.Provider)
	}
	if c.Classifier.Timeout <= 0 {
		return fmt.Errorf("classifier.timeout must be positive")
	}
	if c.Scan.Interval <= 0 {
		return fmt.Errorf("scan.interval must be positive")
	}
	return nil
}
