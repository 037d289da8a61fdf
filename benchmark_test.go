package main

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"testing"

	"github.com/shopspring/decimal"
	"hermannm.dev/budget-analytics/config"
	"hermannm.dev/budget-analytics/db"
	"hermannm.dev/devlog"
	"hermannm.dev/devlog/log"
	"hermannm.dev/wrap"
)

// Benchmarks run against the database configured in env, which must already contain budget
// execution data for the queried periods.
var (
	database db.AnalyticsDB

	benchmarkFilter = db.AnalyticsFilter{
		AccountCategory: db.AccountCategoryExpense,
		ReportPeriod: db.ReportPeriod{
			Frequency: db.FrequencyQuarter,
			Selection: db.PeriodSelection{
				Interval: &db.PeriodInterval{
					Start: db.PeriodDate{Year: 2020, Quarter: 1},
					End:   db.PeriodDate{Year: 2023, Quarter: 4},
				},
			},
		},
		FunctionalPrefixes: []string{"65.", "66."},
		Exclude:            &db.ExcludeFilter{EconomicPrefixes: []string{"85."}},
	}

	benchmarkNormalizedQuery = db.NormalizedQuery{
		Filter:     benchmarkFilter,
		Factors:    benchmarkFactors(),
		Pagination: db.PaginationParams{Limit: 100},
	}
)

// Sets up logger and database connection before running benchmarks. Benchmarks are skipped if
// no database is configured.
func TestMain(m *testing.M) {
	logHandler := devlog.NewHandler(os.Stdout, &devlog.Options{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(logHandler))

	conf, err := config.ReadFromEnv()
	if err != nil {
		log.Warnf("no database configured, skipping benchmarks: %v", err)
		os.Exit(m.Run())
	}

	database, err = connectToDB(context.Background(), conf)
	if err != nil {
		log.ErrorCause(err, "failed to initialize database")
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func BenchmarkClassificationPeriods(b *testing.B) {
	requireDatabase(b)

	for i := 0; i < b.N; i++ {
		if _, err := database.QueryClassificationPeriods(
			context.Background(),
			benchmarkFilter,
		); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNormalizedAggregates(b *testing.B) {
	requireDatabase(b)

	for i := 0; i < b.N; i++ {
		if _, err := database.QueryNormalizedAggregates(
			context.Background(),
			benchmarkNormalizedQuery,
		); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConcurrentQueries(b *testing.B) {
	requireDatabase(b)

	const concurrentQueries = 64

	// Divides by GOMAXPROCS, since SetParallelism multiplies its argument by GOMAXPROCS, and we
	// want exactly concurrentQueries number of concurrent queries
	b.SetParallelism(max(concurrentQueries/runtime.GOMAXPROCS(0), 1))

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := database.QueryNormalizedAggregates(
				context.Background(),
				benchmarkNormalizedQuery,
			); err != nil {
				b.Fatal(wrap.Error(err, "concurrent normalized query failed"))
			}
		}
	})
}

// Summing the raw classification rows of a single year must give the same total as the
// normalized query with a multiplier of 1 for that year.
func TestNormalizedAggregatesWithUnitFactorMatchRawSum(t *testing.T) {
	if database == nil {
		t.Skip("no database configured")
	}

	filter := db.AnalyticsFilter{
		AccountCategory: db.AccountCategoryExpense,
		ReportPeriod: db.ReportPeriod{
			Frequency: db.FrequencyYear,
			Selection: db.PeriodSelection{Dates: []db.PeriodDate{{Year: 2022}}},
		},
	}

	raw, err := database.QueryClassificationPeriods(context.Background(), filter)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Truncated {
		t.Skip("classification period result truncated, cannot compare sums")
	}

	rawSum := decimal.Zero
	var rawCount int64
	for _, row := range raw.Rows {
		rawSum = rawSum.Add(row.Amount)
		rawCount += row.Count
	}

	normalizedSum := decimal.Zero
	var normalizedCount int64
	var groups int64
	for {
		page, err := database.QueryNormalizedAggregates(context.Background(), db.NormalizedQuery{
			Filter:     filter,
			Factors:    db.PeriodFactorMap{"2022": decimal.NewFromInt(1)},
			Pagination: db.PaginationParams{Limit: db.MaxPageLimit, Offset: int(groups)},
		})
		if err != nil {
			t.Fatal(err)
		}

		for _, item := range page.Items {
			normalizedSum = normalizedSum.Add(item.Amount)
			normalizedCount += item.Count
		}
		groups += int64(len(page.Items))

		if len(page.Items) == 0 || groups >= page.TotalCount {
			break
		}
	}

	if !rawSum.Equal(normalizedSum) {
		t.Errorf("raw sum %s does not equal normalized sum %s", rawSum, normalizedSum)
	}
	if rawCount != normalizedCount {
		t.Errorf("raw line item count %d does not equal normalized count %d", rawCount, normalizedCount)
	}
	if groups != int64(raw.DistinctClassificationCount) {
		t.Errorf(
			"got %d normalized groups, but %d distinct raw classifications",
			groups, raw.DistinctClassificationCount,
		)
	}
}

func requireDatabase(b *testing.B) {
	if database == nil {
		b.Skip("no database configured")
	}
	b.ResetTimer()
}

// Quarterly factors with 2% inflation per quarter, normalized to 2023-Q4 prices.
func benchmarkFactors() db.PeriodFactorMap {
	factors := make(db.PeriodFactorMap)
	rate := decimal.RequireFromString("1.02")
	multiplier := decimal.NewFromInt(1)

	for year := 2023; year >= 2020; year-- {
		for quarter := 4; quarter >= 1; quarter-- {
			factors[db.PeriodDate{Year: year, Quarter: quarter}.String()] = multiplier
			multiplier = multiplier.Mul(rate)
		}
	}
	return factors
}
