package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"hermannm.dev/wrap"
)

type Config struct {
	BaseConfig
	ClickHouse ClickHouse
	Postgres   Postgres
}

type BaseConfig struct {
	IsProduction bool        `env:"PRODUCTION"`
	DB           SupportedDB `env:"DATABASE"`
	API          API
}

type API struct {
	Port string `env:"API_PORT"`
	// Requests per second allowed per client IP.
	RateLimit float64 `env:"API_RATE_LIMIT" envDefault:"5"`
	RateBurst int     `env:"API_RATE_BURST" envDefault:"10"`
}

type ClickHouse struct {
	Address      string `env:"CLICKHOUSE_ADDRESS"`
	DatabaseName string `env:"CLICKHOUSE_DB_NAME"`
	Username     string `env:"CLICKHOUSE_USERNAME"`
	Password     string `env:"CLICKHOUSE_PASSWORD"`
	Debug        bool   `env:"CLICKHOUSE_DEBUG_ENABLED" envDefault:"false"`
}

type Postgres struct {
	URL      string `env:"POSTGRES_URL"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
}

type SupportedDB string

const (
	DBClickHouse SupportedDB = "clickhouse"
	DBPostgres   SupportedDB = "postgres"
)

// ReadFromEnv loads variables from a .env file if one exists, then parses the base config and
// the config for the selected database.
func ReadFromEnv() (Config, error) {
	// Variables may also be set directly in the environment, so a missing file is fine
	_ = godotenv.Load()

	return parseEnv()
}

func parseEnv() (Config, error) {
	parseOptions := env.Options{RequiredIfNoDef: true}

	var config Config

	if err := env.ParseWithOptions(&config.BaseConfig, parseOptions); err != nil {
		return Config{}, wrap.Error(err, "failed to parse base config")
	}

	switch config.DB {
	case DBClickHouse:
		if err := env.ParseWithOptions(&config.ClickHouse, parseOptions); err != nil {
			return Config{}, wrap.Error(err, "failed to parse ClickHouse config")
		}
	case DBPostgres:
		if err := env.ParseWithOptions(&config.Postgres, parseOptions); err != nil {
			return Config{}, wrap.Error(err, "failed to parse Postgres config")
		}
	default:
		err := fmt.Errorf("must be one of: '%s', '%s'", DBClickHouse, DBPostgres)
		return Config{}, wrap.Errorf(err, "unsupported value '%s' for DATABASE in env", config.DB)
	}

	if config.API.RateLimit <= 0 || config.API.RateBurst <= 0 {
		return Config{}, fmt.Errorf(
			"API_RATE_LIMIT and API_RATE_BURST must be positive, got %v and %d",
			config.API.RateLimit, config.API.RateBurst,
		)
	}

	return config, nil
}
