package db

import (
	"context"
	"time"
)

// AnalyticsDB runs analytics queries over budget execution line items. Implemented by
// clickhouse.ClickHouseDB and postgres.PostgresDB.
//
// Errors are always of type *InvalidFilterError, *TimeoutError or *DatabaseError.
type AnalyticsDB interface {
	// QueryClassificationPeriods sums line item amounts per classification and year. It never
	// sums across years, so that callers may normalize each year separately.
	QueryClassificationPeriods(
		ctx context.Context,
		filter AnalyticsFilter,
	) (ClassificationPeriodResult, error)

	// QueryNormalizedAggregates multiplies line item amounts by their period's factor, then
	// sums per classification across all periods. Returns an empty result without querying if
	// there are no factors.
	QueryNormalizedAggregates(
		ctx context.Context,
		query NormalizedQuery,
	) (NormalizedAggregatedResult, error)
}

// StatementTimeout is enforced by the database server on every analytics query.
const StatementTimeout = 30 * time.Second

// ClassificationPeriodRowLimit caps the number of rows returned by QueryClassificationPeriods,
// to bound memory use for unfiltered queries.
const ClassificationPeriodRowLimit = 100_000
