package db

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodConditionsForYearInterval(t *testing.T) {
	filter := yearFilter(AccountCategoryExpense, 2020, 2021)

	assert.Equal(t, []Predicate{
		Comparison{Column: ColumnYear, Operator: OperatorGreaterOrEqual, Value: 2020},
		Comparison{Column: ColumnYear, Operator: OperatorLessOrEqual, Value: 2021},
	}, PeriodConditions(filter.ReportPeriod))
}

func TestPeriodConditionsUseTupleComparisonForQuarters(t *testing.T) {
	reportPeriod := ReportPeriod{
		Frequency: FrequencyQuarter,
		Selection: PeriodSelection{
			Interval: &PeriodInterval{
				Start: PeriodDate{Year: 2020, Quarter: 3},
				End:   PeriodDate{Year: 2021, Quarter: 1},
			},
		},
	}

	assert.Equal(t, []Predicate{
		TupleComparison{
			Columns:  []Column{ColumnYear, ColumnQuarter},
			Operator: OperatorGreaterOrEqual,
			Values:   []any{2020, 3},
		},
		TupleComparison{
			Columns:  []Column{ColumnYear, ColumnQuarter},
			Operator: OperatorLessOrEqual,
			Values:   []any{2021, 1},
		},
	}, PeriodConditions(reportPeriod))
}

func TestPeriodConditionsForDiscreteMonths(t *testing.T) {
	reportPeriod := ReportPeriod{
		Frequency: FrequencyMonth,
		Selection: PeriodSelection{
			Dates: []PeriodDate{{Year: 2022, Month: 1}, {Year: 2023, Month: 12}},
		},
	}

	assert.Equal(t, []Predicate{
		AnyOf{
			AllOf{
				Comparison{Column: ColumnYear, Operator: OperatorEqual, Value: 2022},
				Comparison{Column: ColumnMonth, Operator: OperatorEqual, Value: 1},
			},
			AllOf{
				Comparison{Column: ColumnYear, Operator: OperatorEqual, Value: 2023},
				Comparison{Column: ColumnMonth, Operator: OperatorEqual, Value: 12},
			},
		},
	}, PeriodConditions(reportPeriod))
}

func TestPeriodConditionsForDiscreteYears(t *testing.T) {
	reportPeriod := ReportPeriod{
		Frequency: FrequencyYear,
		Selection: PeriodSelection{Dates: []PeriodDate{{Year: 2019}, {Year: 2021}}},
	}

	assert.Equal(t, []Predicate{
		AnyOf{
			Comparison{Column: ColumnYear, Operator: OperatorEqual, Value: 2019},
			Comparison{Column: ColumnYear, Operator: OperatorEqual, Value: 2021},
		},
	}, PeriodConditions(reportPeriod))
}

func TestFrequencyConditions(t *testing.T) {
	assert.Empty(t, FrequencyConditions(FrequencyMonth))
	assert.Equal(t, []Predicate{Flag{Column: ColumnIsQuarterly}}, FrequencyConditions(FrequencyQuarter))
	assert.Equal(t, []Predicate{Flag{Column: ColumnIsYearly}}, FrequencyConditions(FrequencyYear))
}

func TestDimensionConditionsAlwaysScopeAccountCategory(t *testing.T) {
	expense := DimensionConditions(yearFilter(AccountCategoryExpense, 2020, 2020))
	assert.Equal(t, []Predicate{
		Comparison{Column: ColumnAccountCategory, Operator: OperatorEqual, Value: "ch"},
	}, expense)

	filter := yearFilter(AccountCategoryIncome, 2020, 2020)
	filter.ReportType = "PRINCIPAL_AGGREGATED"
	filter.FundingSourceIDs = []int64{1, 2}

	assert.Equal(t, []Predicate{
		Comparison{Column: ColumnAccountCategory, Operator: OperatorEqual, Value: "vn"},
		Comparison{Column: ColumnReportType, Operator: OperatorEqual, Value: "PRINCIPAL_AGGREGATED"},
		Membership{Column: ColumnFundingSourceID, Values: []int64{1, 2}},
	}, DimensionConditions(filter))
}

func TestCodeConditions(t *testing.T) {
	filter := yearFilter(AccountCategoryExpense, 2020, 2020)
	filter.FunctionalCodes = []string{"65.02"}
	filter.FunctionalPrefixes = []string{"65.", "66."}
	filter.EconomicPrefixes = []string{"10."}

	assert.Equal(t, []Predicate{
		Membership{Column: ColumnFunctionalCode, Values: []string{"65.02"}},
		PrefixMatch{Column: ColumnFunctionalCode, Prefixes: []string{"65.", "66."}},
		PrefixMatch{Column: ColumnEconomicCode, Prefixes: []string{"10."}},
	}, CodeConditions(filter))
}

func TestEntityAndGeographyConditionsRequireJoins(t *testing.T) {
	isUAT := false
	minPopulation := int64(5000)

	filter := yearFilter(AccountCategoryExpense, 2020, 2020)
	filter.EntityTypes = []string{"uat"}
	filter.IsUAT = &isUAT
	filter.CountyCodes = []string{"CJ"}
	filter.MinPopulation = &minPopulation

	assert.Empty(t, EntityConditions(filter, JoinPlan{}))
	assert.Empty(t, GeographyConditions(filter, JoinPlan{}))

	joins := PlanJoins(filter)
	assert.Equal(t, []Predicate{
		Membership{Column: ColumnEntityType, Values: []string{"uat"}},
		Comparison{Column: ColumnEntityIsUAT, Operator: OperatorEqual, Value: false},
	}, EntityConditions(filter, joins))
	assert.Equal(t, []Predicate{
		Membership{Column: ColumnUATCountyCode, Values: []string{"CJ"}},
		Comparison{Column: ColumnUATPopulation, Operator: OperatorGreaterOrEqual, Value: int64(5000)},
	}, GeographyConditions(filter, joins))
}

func TestAmountConditionsFollowFrequency(t *testing.T) {
	minAmount := decimal.NewFromInt(1000)

	monthly := AnalyticsFilter{
		AccountCategory: AccountCategoryExpense,
		ReportPeriod: ReportPeriod{
			Frequency: FrequencyMonth,
			Selection: PeriodSelection{Dates: []PeriodDate{{Year: 2023, Month: 6}}},
		},
		ItemMinAmount: &minAmount,
	}
	yearly := yearFilter(AccountCategoryExpense, 2023, 2023)
	yearly.ItemMinAmount = &minAmount

	monthlyConditions := AmountConditions(monthly)
	require.Len(t, monthlyConditions, 1)
	assert.Equal(t, ColumnMonthlyAmount, monthlyConditions[0].(Comparison).Column)

	yearlyConditions := AmountConditions(yearly)
	require.Len(t, yearlyConditions, 1)
	assert.Equal(t, ColumnYTDAmount, yearlyConditions[0].(Comparison).Column)
	assert.Equal(t, OperatorGreaterOrEqual, yearlyConditions[0].(Comparison).Operator)
	assert.True(t, minAmount.Equal(yearlyConditions[0].(Comparison).Value.(decimal.Decimal)))

	assert.Equal(t, ColumnQuarterlyAmount, FrequencyQuarter.AmountColumn())
}

func TestExclusionConditionsSkipEconomicCodesForIncome(t *testing.T) {
	exclude := &ExcludeFilter{
		FunctionalCodes:  []string{"84.02"},
		EconomicCodes:    []string{"20.01"},
		EconomicPrefixes: []string{"10."},
	}

	expense := yearFilter(AccountCategoryExpense, 2020, 2020)
	expense.Exclude = exclude
	assert.Equal(t, []Predicate{
		Not{Predicate: Membership{Column: ColumnFunctionalCode, Values: []string{"84.02"}}},
		Not{Predicate: Membership{Column: ColumnEconomicCode, Values: []string{"20.01"}}},
		Not{Predicate: PrefixMatch{Column: ColumnEconomicCode, Prefixes: []string{"10."}}},
	}, ExclusionConditions(expense, PlanJoins(expense)))

	income := yearFilter(AccountCategoryIncome, 2020, 2020)
	income.Exclude = exclude
	assert.Equal(t, []Predicate{
		Not{Predicate: Membership{Column: ColumnFunctionalCode, Values: []string{"84.02"}}},
	}, ExclusionConditions(income, PlanJoins(income)))
}

func TestNotKeepsNullsOfNullableColumns(t *testing.T) {
	economic := Not{Predicate: Membership{Column: ColumnEconomicCode, Values: []string{"20.01"}}}
	column, ok := economic.NullableColumn()
	assert.True(t, ok)
	assert.Equal(t, ColumnEconomicCode, column)

	functional := Not{Predicate: Membership{Column: ColumnFunctionalCode, Values: []string{"84"}}}
	_, ok = functional.NullableColumn()
	assert.False(t, ok)
}

func TestBuildConditionsOnlyReferenceJoinedTables(t *testing.T) {
	isUAT := true
	maxPopulation := int64(200_000)

	for _, filter := range []AnalyticsFilter{
		yearFilter(AccountCategoryExpense, 2018, 2024),
		func() AnalyticsFilter {
			filter := yearFilter(AccountCategoryExpense, 2018, 2024)
			filter.IsUAT = &isUAT
			filter.Exclude = &ExcludeFilter{EntityTypes: []string{"school"}}
			return filter
		}(),
		func() AnalyticsFilter {
			filter := yearFilter(AccountCategoryIncome, 2018, 2024)
			filter.MaxPopulation = &maxPopulation
			filter.Exclude = &ExcludeFilter{CountyCodes: []string{"B"}, UATIDs: []int64{3}}
			return filter
		}(),
	} {
		joins := PlanJoins(filter)
		tables := ReferencedTables(BuildConditions(filter, joins)...)

		assert.Equal(t, joins.Entity, tables[TableEntities], "entity join %+v", joins)
		assert.Equal(t, joins.UAT, tables[TableUATs], "UAT join %+v", joins)
		assert.False(t, tables[TableEconomicClassifications])
	}
}
