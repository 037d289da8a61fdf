package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"hermannm.dev/budget-analytics/config"
	"hermannm.dev/budget-analytics/db"
	"hermannm.dev/wrap"
)

// Implements db.AnalyticsDB for PostgreSQL.
type PostgresDB struct {
	pool pool
}

// The subset of *pgxpool.Pool used by PostgresDB.
type pool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func NewPostgresDB(ctx context.Context, config config.Postgres) (PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(config.URL)
	if err != nil {
		return PostgresDB{}, wrap.Error(err, "invalid Postgres connection URL")
	}
	poolConfig.MaxConns = config.MaxConns

	connPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return PostgresDB{}, wrap.Error(err, "failed to create Postgres connection pool")
	}

	if err := connPool.Ping(ctx); err != nil {
		connPool.Close()
		return PostgresDB{}, wrap.Error(err, "failed to ping Postgres")
	}

	return PostgresDB{pool: connPool}, nil
}

// Analytics queries only read, and the statement timeout is set per transaction so that it does
// not leak to other users of the pooled connection.
var readOnlyTxOptions = pgx.TxOptions{AccessMode: pgx.ReadOnly}

var setStatementTimeout = fmt.Sprintf(
	"SET LOCAL statement_timeout = %d",
	db.StatementTimeout.Milliseconds(),
)

func (postgres PostgresDB) withStatementTimeout(
	ctx context.Context,
	runQueries func(tx pgx.Tx) error,
) error {
	tx, err := postgres.pool.BeginTx(ctx, readOnlyTxOptions)
	if err != nil {
		return wrap.Error(err, "failed to begin transaction")
	}

	if _, err := tx.Exec(ctx, setStatementTimeout); err != nil {
		_ = tx.Rollback(ctx)
		return wrap.Error(err, "failed to configure transaction")
	}

	if err := runQueries(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return wrap.Error(err, "failed to commit transaction")
	}

	return nil
}

// See https://www.postgresql.org/docs/current/errcodes-appendix.html
const postgresQueryCanceledCode = "57014"

func isTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == postgresQueryCanceledCode
}
