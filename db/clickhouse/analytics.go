package clickhouse

import (
	"context"
	"log/slog"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/shopspring/decimal"
	"hermannm.dev/budget-analytics/db"
	"hermannm.dev/budget-analytics/db/sqlquery"
	"hermannm.dev/devlog/log"
	"hermannm.dev/wrap"
)

func (clickhouse ClickHouseDB) QueryClassificationPeriods(
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

	rows, err := runQuery(ctx, clickhouse.conn, query, scanClassificationPeriodRow)
	if err != nil {
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

func (clickhouse ClickHouseDB) QueryNormalizedAggregates(
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

	var totalCount int64
	items, err := runQuery(
		ctx, clickhouse.conn, query,
		func(rows driver.Rows) (db.AggregatedClassification, error) {
			return scanNormalizedRow(rows, &totalCount)
		},
	)
	if err != nil {
		return db.NormalizedAggregatedResult{}, db.ClassifyError(
			err, "normalized aggregate query failed", isTimeout,
		)
	}

	// The window count is only available on returned rows, so pages past the end need a
	// separate count.
	if len(items) == 0 && plan.Pagination.Offset > 0 {
		totalCount, err = clickhouse.queryNormalizedCount(ctx, plan)
		if err != nil {
			return db.NormalizedAggregatedResult{}, db.ClassifyError(
				err, "failed to count normalized groups", isTimeout,
			)
		}
	}

	return db.NormalizedAggregatedResult{Items: items, TotalCount: totalCount}, nil
}

func (clickhouse ClickHouseDB) queryNormalizedCount(
	ctx context.Context,
	plan db.NormalizedPlan,
) (int64, error) {
	query, err := sqlquery.BuildNormalizedCountQuery(plan, Dialect{})
	if err != nil {
		return 0, wrap.Error(err, "failed to build count query")
	}

	counts, err := runQuery(ctx, clickhouse.conn, query, func(rows driver.Rows) (int64, error) {
		var count int64
		err := rows.Scan(&count)
		return count, err
	})
	if err != nil {
		return 0, err
	}
	if len(counts) != 1 {
		return 0, wrap.Errorf(errUnexpectedRowCount, "got %d rows from count query", len(counts))
	}
	return counts[0], nil
}

func runQuery[Row any](
	ctx context.Context,
	conn queryer,
	query sqlquery.Query,
	scanRow func(rows driver.Rows) (Row, error),
) ([]Row, error) {
	log.Debug("generated clickhouse query", slog.String("query", query.SQL))

	rows, err := conn.Query(withQuerySettings(ctx), query.SQL, query.Args...)
	if err != nil {
		return nil, wrap.Error(err, "failed to execute query against ClickHouse")
	}
	defer rows.Close()

	results := make([]Row, 0)
	for rows.Next() {
		result, err := scanRow(rows)
		if err != nil {
			return nil, wrap.Error(err, "failed to parse query result")
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, wrap.Error(err, "failed to read query result")
	}
	return results, nil
}

func scanClassificationPeriodRow(rows driver.Rows) (db.ClassificationPeriodData, error) {
	var raw db.RawClassificationRow
	var year, count int64
	var amount decimal.Decimal

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

func scanNormalizedRow(rows driver.Rows, totalCount *int64) (db.AggregatedClassification, error) {
	var raw db.RawClassificationRow
	var count int64
	var amount decimal.Decimal

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
