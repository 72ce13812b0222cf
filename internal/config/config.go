package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full CLI configuration.
type Config struct {
	Join   JoinConfig   `yaml:"join" mapstructure:"join"`
	Zonal  ZonalConfig  `yaml:"zonal" mapstructure:"zonal"`
	Graph  GraphConfig  `yaml:"graph" mapstructure:"graph"`
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// JoinConfig configures the spatial join engine.
type JoinConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ZonalConfig configures zonal extraction.
type ZonalConfig struct {
	Workers   int  `yaml:"workers" mapstructure:"workers"`
	FullCover bool `yaml:"full_cover" mapstructure:"full_cover"`
}

// GraphConfig configures community detection.
type GraphConfig struct {
	Resolution float64 `yaml:"resolution" mapstructure:"resolution"`
	Seed       uint64  `yaml:"seed" mapstructure:"seed"`
	Directed   bool    `yaml:"directed" mapstructure:"directed"`
}

// RenderConfig configures choropleth output.
type RenderConfig struct {
	Width   int     `yaml:"width" mapstructure:"width"`
	Quality float64 `yaml:"quality" mapstructure:"quality"`
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
	v.SetEnvPrefix("GEOKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("join.workers", 1)
	v.SetDefault("zonal.workers", 1)
	v.SetDefault("zonal.full_cover", false)
	v.SetDefault("graph.resolution", 1.0)
	v.SetDefault("graph.seed", 1)
	v.SetDefault("graph.directed", false)
	v.SetDefault("render.width", 800)
	v.SetDefault("render.quality", 85)

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
