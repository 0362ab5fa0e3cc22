package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/outlier"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Models   ModelsConfig   `yaml:"models" mapstructure:"models"`
	Patterns PatternsConfig `yaml:"patterns" mapstructure:"patterns"`
	Train    TrainConfig    `yaml:"train" mapstructure:"train"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ModelsConfig configures model artifact storage.
type ModelsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// PatternsConfig configures pattern-library overrides.
type PatternsConfig struct {
	// OverridesPath points to an optional YAML file reordering
	// processor-family precedence; empty uses the built-in order.
	OverridesPath string `yaml:"overrides_path" mapstructure:"overrides_path"`
}

// TrainConfig configures training runs.
type TrainConfig struct {
	// OutlierStrategy maps category name to "zscore" or "iqr".
	OutlierStrategy map[string]string `yaml:"outlier_strategy" mapstructure:"outlier_strategy"`
	// Weights overrides the ensemble blend; empty uses the built-in prior.
	Weights []float64 `yaml:"weights" mapstructure:"weights"`
	Holdout float64   `yaml:"holdout" mapstructure:"holdout"`
	Seed    int64     `yaml:"seed" mapstructure:"seed"`
}

// OutlierFor resolves the configured outlier strategy for a category.
func (t TrainConfig) OutlierFor(c model.Category) outlier.Strategy {
	if s, ok := t.OutlierStrategy[string(c)]; ok {
		return outlier.Strategy(s)
	}
	// Thin, skewed furniture prices get the quantile-based filter.
	if c == model.CategoryFurniture {
		return outlier.StrategyIQR
	}
	return outlier.StrategyZScore
}

// ServerConfig configures the prediction API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
	// RateLimitRPS caps per-client request rate on prediction routes.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields the given mode depends on. Modes mirror
// the top-level commands: "train" and "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres", "":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Models.Dir == "" {
		problems = append(problems, "models.dir is required")
	}
	if c.Train.Holdout < 0 || c.Train.Holdout >= 1 {
		problems = append(problems, "train.holdout must be in [0, 1)")
	}
	for _, w := range c.Train.Weights {
		if w < 0 {
			problems = append(problems, "train.weights values must be >= 0")
			break
		}
	}
	for cat, strat := range c.Train.OutlierStrategy {
		if _, ok := model.ParseCategory(cat); !ok {
			problems = append(problems, "train.outlier_strategy: unknown category "+cat)
		}
		switch outlier.Strategy(strat) {
		case outlier.StrategyZScore, outlier.StrategyIQR:
		default:
			problems = append(problems, "train.outlier_strategy: unknown strategy "+strat)
		}
	}

	switch mode {
	case "train":
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for postgres")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
			problems = append(problems, "server rate limit values must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "pricing.db")
	v.SetDefault("models.dir", "models")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("train.outlier_strategy", map[string]string{
		string(model.CategoryMobile):    string(outlier.StrategyZScore),
		string(model.CategoryLaptop):    string(outlier.StrategyZScore),
		string(model.CategoryFurniture): string(outlier.StrategyIQR),
	})
	v.SetDefault("train.holdout", 0.0)

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
