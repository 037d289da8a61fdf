package db

// BuildConditions runs every condition builder on the filter, returning the predicates that
// are AND-ed together in the WHERE clause of both query shapes. The filter must be validated.
func BuildConditions(filter AnalyticsFilter, joins JoinPlan) []Predicate {
	var predicates []Predicate
	predicates = append(predicates, PeriodConditions(filter.ReportPeriod)...)
	predicates = append(predicates, FrequencyConditions(filter.ReportPeriod.Frequency)...)
	predicates = append(predicates, DimensionConditions(filter)...)
	predicates = append(predicates, CodeConditions(filter)...)
	predicates = append(predicates, EntityConditions(filter, joins)...)
	predicates = append(predicates, GeographyConditions(filter, joins)...)
	predicates = append(predicates, AmountConditions(filter)...)
	predicates = append(predicates, ExclusionConditions(filter, joins)...)
	return predicates
}

// PeriodConditions restricts line items to the selected periods. For QUARTER and MONTH, interval
// bounds compare (year, quarter) or (year, month) tuples, so that an interval ending in 2021-Q1
// does not match the rest of 2021.
func PeriodConditions(reportPeriod ReportPeriod) []Predicate {
	columns := reportPeriod.Frequency.PeriodColumns()
	selection := reportPeriod.Selection

	if interval := selection.Interval; interval != nil {
		if len(columns) == 1 {
			return []Predicate{
				Comparison{Column: columns[0], Operator: OperatorGreaterOrEqual, Value: interval.Start.Year},
				Comparison{Column: columns[0], Operator: OperatorLessOrEqual, Value: interval.End.Year},
			}
		}

		return []Predicate{
			TupleComparison{
				Columns:  columns,
				Operator: OperatorGreaterOrEqual,
				Values:   interval.Start.Components(),
			},
			TupleComparison{
				Columns:  columns,
				Operator: OperatorLessOrEqual,
				Values:   interval.End.Components(),
			},
		}
	}

	if len(selection.Dates) == 0 {
		return nil
	}

	anyOf := make(AnyOf, 0, len(selection.Dates))
	for _, date := range selection.Dates {
		components := date.Components()

		equalities := make(AllOf, 0, len(columns))
		for i, column := range columns {
			equalities = append(
				equalities,
				Comparison{Column: column, Operator: OperatorEqual, Value: components[i]},
			)
		}

		if len(equalities) == 1 {
			anyOf = append(anyOf, equalities[0])
		} else {
			anyOf = append(anyOf, equalities)
		}
	}

	return []Predicate{anyOf}
}

// FrequencyConditions keeps only line items that are snapshots at the frequency's granularity,
// so that quarterly and yearly aggregations do not count the same amounts several times.
func FrequencyConditions(frequency Frequency) []Predicate {
	if flag, ok := frequency.EligibilityFlag(); ok {
		return []Predicate{Flag{Column: flag}}
	}
	return nil
}

// DimensionConditions always scopes the query to the filter's account category, and adds an
// equality or membership condition for each populated dimension field.
func DimensionConditions(filter AnalyticsFilter) []Predicate {
	code, _ := filter.AccountCategory.Code()
	predicates := []Predicate{
		Comparison{Column: ColumnAccountCategory, Operator: OperatorEqual, Value: code},
	}

	if filter.ReportType != "" {
		predicates = append(predicates, Comparison{
			Column:   ColumnReportType,
			Operator: OperatorEqual,
			Value:    filter.ReportType,
		})
	}
	if filter.MainCreditorCUI != "" {
		predicates = append(predicates, Comparison{
			Column:   ColumnMainCreditorCUI,
			Operator: OperatorEqual,
			Value:    filter.MainCreditorCUI,
		})
	}

	predicates = appendMembership(predicates, ColumnReportID, filter.ReportIDs)
	predicates = appendMembership(predicates, ColumnEntityCUI, filter.EntityCUIs)
	predicates = appendMembership(predicates, ColumnFundingSourceID, filter.FundingSourceIDs)
	predicates = appendMembership(predicates, ColumnBudgetSectorID, filter.BudgetSectorIDs)
	predicates = appendMembership(predicates, ColumnExpenseType, filter.ExpenseTypes)
	return predicates
}

// CodeConditions matches exact classification codes with membership, and code prefixes with an
// OR of prefix matches within each classification family.
func CodeConditions(filter AnalyticsFilter) []Predicate {
	var predicates []Predicate
	predicates = appendMembership(predicates, ColumnFunctionalCode, filter.FunctionalCodes)
	predicates = appendMembership(predicates, ColumnEconomicCode, filter.EconomicCodes)
	predicates = appendMembership(predicates, ColumnProgramCode, filter.ProgramCodes)
	predicates = appendPrefixMatch(predicates, ColumnFunctionalCode, filter.FunctionalPrefixes)
	predicates = appendPrefixMatch(predicates, ColumnEconomicCode, filter.EconomicPrefixes)
	return predicates
}

// EntityConditions filters on entity attributes. Nothing is emitted unless the entity join is
// planned.
func EntityConditions(filter AnalyticsFilter, joins JoinPlan) []Predicate {
	if !joins.Entity {
		return nil
	}

	var predicates []Predicate
	predicates = appendMembership(predicates, ColumnEntityType, filter.EntityTypes)
	if filter.IsUAT != nil {
		predicates = append(predicates, Comparison{
			Column:   ColumnEntityIsUAT,
			Operator: OperatorEqual,
			Value:    *filter.IsUAT,
		})
	}
	predicates = appendMembership(predicates, ColumnEntityUATID, filter.UATIDs)
	return predicates
}

// GeographyConditions filters on UAT attributes. Nothing is emitted unless the UAT join is
// planned.
func GeographyConditions(filter AnalyticsFilter, joins JoinPlan) []Predicate {
	if !joins.UAT {
		return nil
	}

	var predicates []Predicate
	predicates = appendMembership(predicates, ColumnUATCountyCode, filter.CountyCodes)
	if filter.MinPopulation != nil {
		predicates = append(predicates, Comparison{
			Column:   ColumnUATPopulation,
			Operator: OperatorGreaterOrEqual,
			Value:    *filter.MinPopulation,
		})
	}
	if filter.MaxPopulation != nil {
		predicates = append(predicates, Comparison{
			Column:   ColumnUATPopulation,
			Operator: OperatorLessOrEqual,
			Value:    *filter.MaxPopulation,
		})
	}
	return predicates
}

// AmountConditions bounds each line item's amount, in the same column that the query sums.
func AmountConditions(filter AnalyticsFilter) []Predicate {
	column := filter.ReportPeriod.Frequency.AmountColumn()

	var predicates []Predicate
	if filter.ItemMinAmount != nil {
		predicates = append(predicates, Comparison{
			Column:   column,
			Operator: OperatorGreaterOrEqual,
			Value:    *filter.ItemMinAmount,
		})
	}
	if filter.ItemMaxAmount != nil {
		predicates = append(predicates, Comparison{
			Column:   column,
			Operator: OperatorLessOrEqual,
			Value:    *filter.ItemMaxAmount,
		})
	}
	return predicates
}

// ExclusionConditions negates the inclusion shapes for each field of the filter's Exclude.
// Economic code exclusions are not applied to income queries, where economic classification is
// not used.
func ExclusionConditions(filter AnalyticsFilter, joins JoinPlan) []Predicate {
	exclude := filter.Exclude
	if exclude == nil {
		return nil
	}

	var included []Predicate
	included = appendMembership(included, ColumnReportID, exclude.ReportIDs)
	included = appendMembership(included, ColumnEntityCUI, exclude.EntityCUIs)
	included = appendMembership(included, ColumnFunctionalCode, exclude.FunctionalCodes)
	included = appendPrefixMatch(included, ColumnFunctionalCode, exclude.FunctionalPrefixes)

	if filter.AccountCategory != AccountCategoryIncome {
		included = appendMembership(included, ColumnEconomicCode, exclude.EconomicCodes)
		included = appendPrefixMatch(included, ColumnEconomicCode, exclude.EconomicPrefixes)
	}

	if joins.Entity {
		included = appendMembership(included, ColumnEntityType, exclude.EntityTypes)
		included = appendMembership(included, ColumnEntityUATID, exclude.UATIDs)
	}
	if joins.UAT {
		included = appendMembership(included, ColumnUATCountyCode, exclude.CountyCodes)
	}

	predicates := make([]Predicate, 0, len(included))
	for _, predicate := range included {
		predicates = append(predicates, Not{Predicate: predicate})
	}
	return predicates
}

func appendMembership[Value string | int64](
	predicates []Predicate,
	column Column,
	values []Value,
) []Predicate {
	if len(values) == 0 {
		return predicates
	}
	return append(predicates, Membership{Column: column, Values: values})
}

func appendPrefixMatch(predicates []Predicate, column Column, prefixes []string) []Predicate {
	if len(prefixes) == 0 {
		return predicates
	}
	return append(predicates, PrefixMatch{Column: column, Prefixes: prefixes})
}
