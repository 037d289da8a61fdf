package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"hermannm.dev/budget-analytics/db"
	"hermannm.dev/budget-analytics/db/sqlquery"
	"hermannm.dev/devlog/log"
	"hermannm.dev/wrap"
)

func (postgres PostgresDB) QueryClassificationPeriods(
	ctx context.Context,
	filter db.AnalyticsFilter,
) (db.ClassificationPeriodResult, error) {
	plan, err := db.NewClassificationPeriodPlan(filter)
	if err != nil {
		return db.ClassificationPeriodResult{}, err
	}

	query, err := sqlquery.BuildClassificationPeriodQuery(plan, Dialect{})
	if err != nil {
		return db.ClassificationPeriodResult{}, db.ClassifyError(
			err, "failed to build classification period query", nil,
		)
	}

	log.Debug("generated postgres query", slog.String("query", query.SQL))

	var rows []db.ClassificationPeriodData
	if err := postgres.withStatementTimeout(ctx, func(tx pgx.Tx) error {
		rows, err = queryClassificationRows(ctx, tx, query, scanClassificationPeriodRow)
		return err
	}); err != nil {
		return db.ClassificationPeriodResult{}, db.ClassifyError(
			err, "classification period query failed", isTimeout,
		)
	}

	result := db.NewClassificationPeriodResult(rows, plan.RowLimit)
	if result.Truncated {
		log.Warnf("classification period query truncated to %d rows", plan.RowLimit)
	}
	return result, nil
}

func (postgres PostgresDB) QueryNormalizedAggregates(
	ctx context.Context,
	normalizedQuery db.NormalizedQuery,
) (db.NormalizedAggregatedResult, error) {
	plan, err := db.NewNormalizedPlan(normalizedQuery)
	if err != nil {
		return db.NormalizedAggregatedResult{}, err
	}
	if plan.IsEmpty() {
		return db.EmptyNormalizedAggregatedResult(), nil
	}

	query, err := sqlquery.BuildNormalizedQuery(plan, Dialect{})
	if err != nil {
		return db.NormalizedAggregatedResult{}, db.ClassifyError(
			err, "failed to build normalized query", nil,
		)
	}

	log.Debug("generated postgres query", slog.String("query", query.SQL))

	result := db.EmptyNormalizedAggregatedResult()
	if err := postgres.withStatementTimeout(ctx, func(tx pgx.Tx) error {
		var totalCount int64
		result.Items, err = queryClassificationRows(
			ctx, tx, query,
			func(rows pgx.Rows) (db.AggregatedClassification, error) {
				return scanNormalizedRow(rows, &totalCount)
			},
		)
		if err != nil {
			return err
		}
		result.TotalCount = totalCount

		// The window count is only available on returned rows, so pages past the end need a
		// separate count.
		if len(result.Items) == 0 && plan.Pagination.Offset > 0 {
			result.TotalCount, err = queryNormalizedCount(ctx, tx, plan)
			if err != nil {
				return wrap.Error(err, "failed to count normalized groups")
			}
		}
		return nil
	}); err != nil {
		return db.NormalizedAggregatedResult{}, db.ClassifyError(
			err, "normalized aggregate query failed", isTimeout,
		)
	}

	return result, nil
}

func queryNormalizedCount(ctx context.Context, tx pgx.Tx, plan db.NormalizedPlan) (int64, error) {
	query, err := sqlquery.BuildNormalizedCountQuery(plan, Dialect{})
	if err != nil {
		return 0, wrap.Error(err, "failed to build count query")
	}

	log.Debug("generated postgres query", slog.String("query", query.SQL))

	var totalCount int64
	if err := tx.QueryRow(ctx, query.SQL, query.Args...).Scan(&totalCount); err != nil {
		return 0, err
	}
	return totalCount, nil
}

func queryClassificationRows[Row any](
	ctx context.Context,
	tx pgx.Tx,
	query sqlquery.Query,
	scanRow func(rows pgx.Rows) (Row, error),
) ([]Row, error) {
	rows, err := tx.Query(ctx, query.SQL, query.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]Row, 0)
	for rows.Next() {
		result, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanClassificationPeriodRow(rows pgx.Rows) (db.ClassificationPeriodData, error) {
	var raw db.RawClassificationRow
	var year, count int64
	var amount string

	if err := rows.Scan(
		&raw.FunctionalCode,
		&raw.FunctionalName,
		&raw.EconomicCode,
		&raw.EconomicName,
		&year,
		&amount,
		&count,
	); err != nil {
		return db.ClassificationPeriodData{}, wrap.Error(err, "failed to scan result row")
	}

	raw.Year, raw.Amount, raw.Count = year, amount, count
	return raw.ToClassificationPeriodData()
}

func scanNormalizedRow(rows pgx.Rows, totalCount *int64) (db.AggregatedClassification, error) {
	var raw db.RawClassificationRow
	var count int64
	var amount string

	if err := rows.Scan(
		&raw.FunctionalCode,
		&raw.FunctionalName,
		&raw.EconomicCode,
		&raw.EconomicName,
		&amount,
		&count,
		totalCount,
	); err != nil {
		return db.AggregatedClassification{}, wrap.Error(err, "failed to scan result row")
	}

	raw.Amount, raw.Count = amount, count
	return raw.ToAggregatedClassification()
}
