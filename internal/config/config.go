package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Session SessionConfig `yaml:"session" mapstructure:"session"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// CatalogConfig locates the price table files.
type CatalogConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// SessionConfig configures the pending-valuation state machine.
type SessionConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// TTL returns the session lifetime as a duration.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
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
	v.SetEnvPrefix("WYCENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "wycena.db")
	v.SetDefault("catalog.dir", "./data")
	v.SetDefault("session.ttl_minutes", 10)
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

// Validate checks the loaded configuration for values the CLI cannot
// run with.
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}
	if c.Catalog.Dir == "" {
		problems = append(problems, "catalog.dir is required")
	}
	if c.Session.TTLMinutes <= 0 {
		problems = append(problems, "session.ttl_minutes must be > 0")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
