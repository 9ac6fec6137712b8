package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		App     `json:"app"     toml:"app"`
		HTTP    `json:"http"    toml:"http"`
		DB      `json:"db"      toml:"db"`
		Auth    `json:"auth"    toml:"auth"`
		Orders  `json:"orders"  toml:"orders"`
		Workers `json:"workers" toml:"workers"`
		Log     `json:"logger"  toml:"logger"`
	}

	App struct {
		Name        string `json:"name"        toml:"name"        env:"APP_NAME"`
		Environment string `json:"environment" toml:"environment" env:"ENV_NAME" env-default:"dev"`
		Debug       bool   `json:"debug"       toml:"debug"       env:"DEBUG"    env-default:"false"`
	}

	HTTP struct {
		Port string `json:"port" toml:"port" env:"HTTP_PORT" env-default:"8080"`
	}

	DB struct {
		DatabaseURL       string `json:"database_url"        toml:"database_url"        env:"DATABASE_URL"`
		PoolMax           int32  `json:"pool_max"            toml:"pool_max"            env:"PG_POOL_MAX" env-default:"10"`
		ConnectTimeout    int    `json:"connect_timeout"     toml:"connect_timeout"     env:"PG_POOL_CONN_TIMEOUT" env-default:"5"`
		HealthCheckPeriod int    `json:"health_check_period" toml:"health_check_period" env:"PG_POOL_HEALTHCHECK" env-default:"1"`
	}

	Auth struct {
		JWTSecret string `json:"jwt_secret" toml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	}

	// Orders carries the execution-engine policy knobs. GramsPerToken is the
	// token-to-gold conversion factor; RejectOnZeroPrice switches the engine
	// from the permissive source behaviour (fill market orders at 0 when no
	// price row exists for the day) to rejecting them.
	Orders struct {
		GramsPerToken     string `json:"grams_per_token"      toml:"grams_per_token"      env:"ORDERS_GRAMS_PER_TOKEN" env-default:"1"`
		RejectOnZeroPrice bool   `json:"reject_on_zero_price" toml:"reject_on_zero_price" env:"ORDERS_REJECT_ON_ZERO_PRICE" env-default:"false"`
	}

	Workers struct {
		ExpiryInterval  int  `json:"expiry_interval_minutes"   toml:"expiry_interval_minutes"   env:"WORKER_EXPIRY_INTERVAL" env-default:"5"`
		MatcherEnabled  bool `json:"matcher_enabled"           toml:"matcher_enabled"           env:"WORKER_MATCHER_ENABLED" env-default:"false"`
		MatcherInterval int  `json:"matcher_interval_minutes"  toml:"matcher_interval_minutes"  env:"WORKER_MATCHER_INTERVAL" env-default:"1"`
	}

	Log struct {
		Level slog.Level `json:"level" toml:"level" env:"LOG_LEVEL"`
	}
)

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	_, b, _, _ := runtime.Caller(0)
	basePath := filepath.Dir(b)

	configTomlPath := filepath.Join(basePath, "config.toml")
	err := cleanenv.ReadConfig(configTomlPath, cfg)
	if err != nil {
		configJsonPath := filepath.Join(basePath, "config.json")
		err = cleanenv.ReadConfig(configJsonPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	err = cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("env read error: %w", err)
	}

	return cfg, nil
}
