package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"foodinspect/internal/bootstrap/logging"
	"foodinspect/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Cities   CitiesConfig   `mapstructure:"cities"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SourceConfig describes the upstream Socrata dataset and how to page it.
type SourceConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Dataset    string `mapstructure:"dataset"`
	AppToken   string `mapstructure:"app_token"`
	PageSize   int    `mapstructure:"page_size"`
	MaxRecords int    `mapstructure:"max_records"`
	Checkpoint string `mapstructure:"checkpoint"`
	Resumable  bool   `mapstructure:"resumable"`
}

type GeocoderConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Cooldown  time.Duration `mapstructure:"cooldown"`
	ZipTable  string        `mapstructure:"zip_table"`
}

type CitiesConfig struct {
	Trusted        []string `mapstructure:"trusted"`
	MatchThreshold int      `mapstructure:"match_threshold"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Source.BaseURL == "" {
		return Config{}, errors.New("source.base_url is required")
	}
	if cfg.Source.Dataset == "" {
		return Config{}, errors.New("source.dataset is required")
	}
	if cfg.Source.PageSize <= 0 {
		return Config{}, errors.New("source.page_size must be positive")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("dataset", cfg.Source.Dataset),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "foodinspect")
	v.SetDefault("app.env", "local")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/inspections.sqlite")

	v.SetDefault("source.base_url", "https://data.cityofchicago.org")
	v.SetDefault("source.dataset", "4ijn-s7e5")
	v.SetDefault("source.page_size", 1000)
	v.SetDefault("source.max_records", 0)
	v.SetDefault("source.checkpoint", "data/raw_checkpoint.json")
	v.SetDefault("source.resumable", true)

	v.SetDefault("geocoder.enabled", true)
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "foodinspect/1.0")
	v.SetDefault("geocoder.cooldown", "1s")
	v.SetDefault("geocoder.zip_table", "")

	v.SetDefault("cities.trusted", []string{"CHICAGO"})
	v.SetDefault("cities.match_threshold", 85)

	v.SetDefault("metrics.addr", "")
}
