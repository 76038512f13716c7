// Package config provides Viper-based configuration for the collector and
// the dashboard.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"policydash/internal/logging"
	"policydash/internal/providers/fred"
)

const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config represents the complete policydash configuration
type Config struct {
	FRED   FREDConfig   `mapstructure:"fred"`
	Data   DataConfig   `mapstructure:"data"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// FREDConfig holds the remote API settings. Only the collector needs them.
type FREDConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RateLimitPerSec float64       `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// DataConfig locates the cache files and the optional SQLite mirror.
type DataConfig struct {
	Dir    string `mapstructure:"dir"`
	DB     string `mapstructure:"db"`
	Source string `mapstructure:"source"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads configuration from file and environment variables. Environment
// keys use the POLICYDASH_ prefix (POLICYDASH_DATA_DIR, ...); the API key is
// also read from FRED_API_KEY.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("policydash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/policydash")
	}

	v.SetEnvPrefix("POLICYDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("fred.api_key", "FRED_API_KEY", "POLICYDASH_FRED_API_KEY"); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fred.base_url", "https://api.stlouisfed.org/")
	v.SetDefault("fred.timeout", time.Duration(0))
	v.SetDefault("fred.rate_limit_per_sec", 2)
	v.SetDefault("fred.rate_limit_burst", 2)

	v.SetDefault("data.dir", "data")
	v.SetDefault("data.db", "")
	v.SetDefault("data.source", SourceCSV)

	v.SetDefault("server.addr", ":8050")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
}

// Validate re-checks the configuration after flag overrides.
func (c *Config) Validate() error {
	return validate(c)
}

func validate(cfg *Config) error {
	cfg.Data.Source = strings.ToLower(strings.TrimSpace(cfg.Data.Source))
	switch cfg.Data.Source {
	case SourceCSV:
	case SourceSQLite:
		if strings.TrimSpace(cfg.Data.DB) == "" {
			return errors.New("data.source sqlite requires data.db")
		}
	default:
		return fmt.Errorf("unknown data.source %q", cfg.Data.Source)
	}
	if strings.TrimSpace(cfg.Data.Dir) == "" {
		return errors.New("data.dir is required")
	}
	return nil
}

func (c *Config) FREDProvider() fred.Config {
	return fred.Config{
		BaseURL:         c.FRED.BaseURL,
		APIKey:          c.FRED.APIKey,
		RateLimitPerSec: c.FRED.RateLimitPerSec,
		RateLimitBurst:  c.FRED.RateLimitBurst,
		Timeout:         c.FRED.Timeout,
	}
}

func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.Log.Level,
		OutputFile: c.Log.File,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
		Compress:   c.Log.Compress,
	}
}
