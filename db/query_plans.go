package db

import "github.com/shopspring/decimal"

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 1000
)

type PaginationParams struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize applies the default limit when none is given, and clamps it to MaxPageLimit.
func (pagination PaginationParams) Normalize() (PaginationParams, error) {
	if pagination.Limit < 0 {
		return PaginationParams{}, newInvalidFilterError("pagination.limit", "cannot be negative")
	}
	if pagination.Offset < 0 {
		return PaginationParams{}, newInvalidFilterError("pagination.offset", "cannot be negative")
	}

	if pagination.Limit == 0 {
		pagination.Limit = DefaultPageLimit
	} else if pagination.Limit > MaxPageLimit {
		pagination.Limit = MaxPageLimit
	}
	return pagination, nil
}

// AggregateFilters bound the normalized, summed amount of each classification group. Raw line
// item amounts are bounded by AnalyticsFilter.ItemMinAmount/ItemMaxAmount instead.
type AggregateFilters struct {
	MinAmount *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount *decimal.Decimal `json:"maxAmount,omitempty"`
}

func (filters AggregateFilters) Validate() error {
	if filters.MinAmount != nil && filters.MaxAmount != nil &&
		filters.MinAmount.GreaterThan(*filters.MaxAmount) {
		return newInvalidFilterError(
			"aggregateFilters.minAmount",
			"%s is greater than maxAmount %s",
			filters.MinAmount, filters.MaxAmount,
		)
	}
	return nil
}

// NormalizedQuery is the input to the aggregate-after-normalize query.
type NormalizedQuery struct {
	Filter           AnalyticsFilter  `json:"filter"`
	Factors          PeriodFactorMap  `json:"factors"`
	Pagination       PaginationParams `json:"pagination"`
	AggregateFilters AggregateFilters `json:"aggregateFilters"`
	Sort             SortOptions      `json:"sort"`
}

// ClassificationPeriodPlan is the compiled form of a raw aggregation query, grouping line items
// by classification and year.
type ClassificationPeriodPlan struct {
	Frequency    Frequency
	AmountColumn Column
	Joins        JoinPlan
	Predicates   []Predicate
	// The query fetches one more row than this, to detect truncation.
	RowLimit int
}

func NewClassificationPeriodPlan(filter AnalyticsFilter) (ClassificationPeriodPlan, error) {
	if err := filter.Validate(); err != nil {
		return ClassificationPeriodPlan{}, err
	}

	joins := PlanJoins(filter)
	frequency := filter.ReportPeriod.Frequency

	return ClassificationPeriodPlan{
		Frequency:    frequency,
		AmountColumn: frequency.AmountColumn(),
		Joins:        joins,
		Predicates:   BuildConditions(filter, joins),
		RowLimit:     ClassificationPeriodRowLimit,
	}, nil
}

// NormalizedPlan is the compiled form of a normalized aggregation query, which multiplies each
// line item's amount by its period's factor before grouping by classification.
type NormalizedPlan struct {
	Frequency        Frequency
	AmountColumn     Column
	Joins            JoinPlan
	Predicates       []Predicate
	Factors          []PeriodFactor
	AggregateFilters AggregateFilters
	Sort             SortOptions
	Pagination       PaginationParams
}

func NewNormalizedPlan(query NormalizedQuery) (NormalizedPlan, error) {
	filter := query.Filter
	if err := filter.Validate(); err != nil {
		return NormalizedPlan{}, err
	}

	frequency := filter.ReportPeriod.Frequency

	factors, err := query.Factors.Normalize(frequency)
	if err != nil {
		return NormalizedPlan{}, err
	}

	pagination, err := query.Pagination.Normalize()
	if err != nil {
		return NormalizedPlan{}, err
	}

	if err := query.AggregateFilters.Validate(); err != nil {
		return NormalizedPlan{}, err
	}

	sort := query.Sort.WithDefaults()
	if !sort.By.IsValid() {
		return NormalizedPlan{}, newInvalidFilterError("sort.by", "invalid sort field")
	}
	if !sort.Order.IsValid() {
		return NormalizedPlan{}, newInvalidFilterError("sort.order", "invalid sort order")
	}

	joins := PlanJoins(filter)

	return NormalizedPlan{
		Frequency:        frequency,
		AmountColumn:     frequency.AmountColumn(),
		Joins:            joins,
		Predicates:       BuildConditions(filter, joins),
		Factors:          factors,
		AggregateFilters: query.AggregateFilters,
		Sort:             sort,
		Pagination:       pagination,
	}, nil
}

// IsEmpty is true when there are no factors to normalize with. Such a plan matches nothing, and
// must not be sent to the database.
func (plan NormalizedPlan) IsEmpty() bool {
	return len(plan.Factors) == 0
}
