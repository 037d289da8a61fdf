package db

import "github.com/shopspring/decimal"

// AnalyticsFilter is the semantic content of an analytics query. All fields except
// AccountCategory and ReportPeriod are optional, and are AND-ed together when present.
type AnalyticsFilter struct {
	AccountCategory AccountCategory `json:"accountCategory"`
	ReportPeriod    ReportPeriod    `json:"reportPeriod"`

	ReportType       string   `json:"reportType,omitempty"`
	MainCreditorCUI  string   `json:"mainCreditorCui,omitempty"`
	ReportIDs        []string `json:"reportIds,omitempty"`
	EntityCUIs       []string `json:"entityCuis,omitempty"`
	FundingSourceIDs []int64  `json:"fundingSourceIds,omitempty"`
	BudgetSectorIDs  []int64  `json:"budgetSectorIds,omitempty"`
	ExpenseTypes     []string `json:"expenseTypes,omitempty"`

	FunctionalCodes    []string `json:"functionalCodes,omitempty"`
	FunctionalPrefixes []string `json:"functionalPrefixes,omitempty"`
	EconomicCodes      []string `json:"economicCodes,omitempty"`
	EconomicPrefixes   []string `json:"economicPrefixes,omitempty"`
	ProgramCodes       []string `json:"programCodes,omitempty"`

	EntityTypes   []string `json:"entityTypes,omitempty"`
	IsUAT         *bool    `json:"isUat,omitempty"`
	UATIDs        []int64  `json:"uatIds,omitempty"`
	CountyCodes   []string `json:"countyCodes,omitempty"`
	MinPopulation *int64   `json:"minPopulation,omitempty"`
	MaxPopulation *int64   `json:"maxPopulation,omitempty"`

	// Bounds on each line item's amount, in the amount column selected by the report period's
	// frequency.
	ItemMinAmount *decimal.Decimal `json:"itemMinAmount,omitempty"`
	ItemMaxAmount *decimal.Decimal `json:"itemMaxAmount,omitempty"`

	Exclude *ExcludeFilter `json:"exclude,omitempty"`
}

// ExcludeFilter mirrors the list fields of AnalyticsFilter. Line items matching any of its
// fields are left out.
type ExcludeFilter struct {
	ReportIDs          []string `json:"reportIds,omitempty"`
	EntityCUIs         []string `json:"entityCuis,omitempty"`
	FunctionalCodes    []string `json:"functionalCodes,omitempty"`
	FunctionalPrefixes []string `json:"functionalPrefixes,omitempty"`
	// Ignored for the INCOME account category.
	EconomicCodes []string `json:"economicCodes,omitempty"`
	// Ignored for the INCOME account category.
	EconomicPrefixes []string `json:"economicPrefixes,omitempty"`
	EntityTypes      []string `json:"entityTypes,omitempty"`
	CountyCodes      []string `json:"countyCodes,omitempty"`
	UATIDs           []int64  `json:"uatIds,omitempty"`
}

// Validate checks the invariants that must hold before the filter is compiled into a query.
// Errors are of type *InvalidFilterError.
func (filter AnalyticsFilter) Validate() error {
	if !filter.AccountCategory.IsValid() {
		return newInvalidFilterError("accountCategory", "must be one of EXPENSE, INCOME")
	}

	if err := filter.ReportPeriod.Validate(); err != nil {
		return err
	}

	if filter.ItemMinAmount != nil && filter.ItemMaxAmount != nil &&
		filter.ItemMinAmount.GreaterThan(*filter.ItemMaxAmount) {
		return newInvalidFilterError(
			"itemMinAmount",
			"%s is greater than itemMaxAmount %s",
			filter.ItemMinAmount, filter.ItemMaxAmount,
		)
	}

	if filter.MinPopulation != nil && filter.MaxPopulation != nil &&
		*filter.MinPopulation > *filter.MaxPopulation {
		return newInvalidFilterError(
			"minPopulation",
			"%d is greater than maxPopulation %d",
			*filter.MinPopulation, *filter.MaxPopulation,
		)
	}

	return nil
}
