package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T, database string) {
	t.Setenv("PRODUCTION", "false")
	t.Setenv("DATABASE", database)
	t.Setenv("API_PORT", "8000")
}

func TestParseClickHouseConfig(t *testing.T) {
	setBaseEnv(t, "clickhouse")
	t.Setenv("CLICKHOUSE_ADDRESS", "localhost:9000")
	t.Setenv("CLICKHOUSE_DB_NAME", "budget")
	t.Setenv("CLICKHOUSE_USERNAME", "default")
	t.Setenv("CLICKHOUSE_PASSWORD", "secret")

	config, err := parseEnv()
	require.NoError(t, err)

	assert.Equal(t, DBClickHouse, config.DB)
	assert.Equal(t, "8000", config.API.Port)
	assert.Equal(t, 5.0, config.API.RateLimit)
	assert.Equal(t, 10, config.API.RateBurst)
	assert.Equal(t, "localhost:9000", config.ClickHouse.Address)
	assert.False(t, config.ClickHouse.Debug)
	assert.Empty(t, config.Postgres.URL)
}

func TestParsePostgresConfig(t *testing.T) {
	setBaseEnv(t, "postgres")
	t.Setenv("POSTGRES_URL", "postgres://localhost:5432/budget")
	t.Setenv("POSTGRES_MAX_CONNS", "25")
	t.Setenv("API_RATE_LIMIT", "0.5")

	config, err := parseEnv()
	require.NoError(t, err)

	assert.Equal(t, DBPostgres, config.DB)
	assert.Equal(t, int32(25), config.Postgres.MaxConns)
	assert.Equal(t, 0.5, config.API.RateLimit)
}

func TestParseConfigMissingBackendVariables(t *testing.T) {
	setBaseEnv(t, "postgres")

	_, err := parseEnv()
	assert.ErrorContains(t, err, "POSTGRES_URL")
}

func TestParseConfigUnsupportedDatabase(t *testing.T) {
	setBaseEnv(t, "elasticsearch")

	_, err := parseEnv()
	assert.ErrorContains(t, err, "unsupported value 'elasticsearch' for DATABASE")
}

func TestParseConfigInvalidRateLimit(t *testing.T) {
	setBaseEnv(t, "postgres")
	t.Setenv("POSTGRES_URL", "postgres://localhost:5432/budget")
	t.Setenv("API_RATE_BURST", "0")

	_, err := parseEnv()
	assert.ErrorContains(t, err, "API_RATE_BURST")
}
