package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"circadian/internal/circadian"
)

// Config holds all configuration values.
type Config struct {
	AppPort           int    `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Proxies whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	StateFile      string `mapstructure:"STATE_FILE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisKey      string `mapstructure:"REDIS_KEY"`

	DefaultSleepGoal int `mapstructure:"DEFAULT_SLEEP_GOAL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", 8484)
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	v.SetDefault("TRUSTED_PROXIES", []string{})
	v.SetDefault("STORAGE_BACKEND", "file")
	v.SetDefault("STATE_FILE", "data/circadian.json")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY", "circadian:state")
	v.SetDefault("DEFAULT_SLEEP_GOAL", circadian.DefaultSleepGoal)
}

// Load reads config.yaml from file (or from . and ./config when file is
// empty), then lets environment variables override it.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case "development", "staging", "production":
	default:
		return errors.New("config: ENV must be one of: development, staging, production")
	}
	switch c.StorageBackend {
	case "file":
		if c.StateFile == "" {
			return errors.New("config: STATE_FILE is required when STORAGE_BACKEND=file")
		}
	case "redis":
		if c.RedisAddr == "" || c.RedisKey == "" {
			return errors.New("config: REDIS_ADDR and REDIS_KEY are required when STORAGE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("config: unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	if !circadian.ValidSleepGoal(c.DefaultSleepGoal) {
		return fmt.Errorf("config: DEFAULT_SLEEP_GOAL must be between %d and %d", circadian.MinSleepGoal, circadian.MaxSleepGoal)
	}
	if c.MaxRequestsPerMin <= 0 {
		return errors.New("config: MAX_REQUESTS_PER_MIN must be > 0")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
