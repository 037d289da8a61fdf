package clickhouse

import (
	"context"
	"errors"

	clickhousego "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/ClickHouse/clickhouse-go/v2/lib/proto"
	"hermannm.dev/budget-analytics/config"
	"hermannm.dev/budget-analytics/db"
	"hermannm.dev/devlog/log"
	"hermannm.dev/wrap"
)

// Implements db.AnalyticsDB for ClickHouse.
type ClickHouseDB struct {
	conn queryer
}

// The subset of driver.Conn used by ClickHouseDB.
type queryer interface {
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
}

func NewClickHouseDB(ctx context.Context, config config.ClickHouse) (ClickHouseDB, error) {
	// Options docs: https://clickhouse.com/docs/en/integrations/go#connection-settings
	conn, err := clickhousego.Open(&clickhousego.Options{
		Addr: []string{config.Address},
		Auth: clickhousego.Auth{
			Database: config.DatabaseName,
			Username: config.Username,
			Password: config.Password,
		},
		Debug: config.Debug,
		Debugf: func(format string, v ...any) {
			log.Debugf(format, v...)
		},
		Compression: &clickhousego.Compression{Method: clickhousego.CompressionLZ4},
	})
	if err != nil {
		return ClickHouseDB{}, wrap.Error(err, "failed to connect to ClickHouse")
	}

	if err := conn.Ping(ctx); err != nil {
		return ClickHouseDB{}, wrap.Error(err, "failed to ping ClickHouse connection")
	}

	return ClickHouseDB{conn: conn}, nil
}

// Applies the statement timeout on the server, and makes columns of LEFT JOINed tables NULL
// for rows without a match (instead of the column type's default value), which the coalesced
// economic classification and null-keeping exclusions rely on.
func withQuerySettings(ctx context.Context) context.Context {
	return clickhousego.Context(ctx, clickhousego.WithSettings(clickhousego.Settings{
		"max_execution_time": int(db.StatementTimeout.Seconds()),
		"join_use_nulls":     1,
	}))
}

// See https://github.com/ClickHouse/ClickHouse/blob/bd387f6d2c30f67f2822244c0648f2169adab4d3/src/Common/ErrorCodes.cpp
const (
	clickhouseTimeoutExceededErrorCode = 159
	clickhouseTooSlowErrorCode         = 160
)

func isTimeout(err error) bool {
	var clickhouseErr *proto.Exception
	if !errors.As(err, &clickhouseErr) {
		return false
	}

	return clickhouseErr.Code == clickhouseTimeoutExceededErrorCode ||
		clickhouseErr.Code == clickhouseTooSlowErrorCode
}

var errUnexpectedRowCount = errors.New("unexpected number of result rows")
