package sqlquery

import (
	"errors"

	"hermannm.dev/budget-analytics/db"
	"hermannm.dev/wrap"
)

const factorTableAlias = "f"

// BuildNormalizedQuery renders a query that joins each line item to its period's multiplier,
// then sums the multiplied amounts per classification, filtered, sorted and paginated by the
// plan. Selected columns, in order: functional code, functional name, economic code, economic
// name, normalized amount, line item count, and total number of groups before pagination.
func BuildNormalizedQuery(plan db.NormalizedPlan, dialect Dialect) (Query, error) {
	if plan.IsEmpty() {
		return Query{}, errors.New("cannot build normalized query without factors")
	}

	query := NewQueryBuilder(dialect)
	normalizedAmount := normalizedAmountExpression(plan)

	query.WriteString("SELECT ")
	query.writeClassificationSelect()
	query.WriteString(", ")
	query.WriteString(dialect.DecimalResult(normalizedAmount))
	query.WriteString(" AS normalized_amount, ")
	query.WriteString(dialect.IntegerResult("COUNT(*)"))
	query.WriteString(" AS line_item_count, ")
	query.WriteString(dialect.IntegerResult("COUNT(*) OVER ()"))
	query.WriteString(" AS total_count")

	if err := query.writeNormalizedGroups(plan); err != nil {
		return Query{}, err
	}

	query.WriteString(" ORDER BY ")
	if err := query.writeSort(plan.Sort, normalizedAmount); err != nil {
		return Query{}, err
	}

	query.WriteString(" LIMIT ")
	query.WriteString(query.Bind(plan.Pagination.Limit))
	query.WriteString(" OFFSET ")
	query.WriteString(query.Bind(plan.Pagination.Offset))

	return query.Query(), nil
}

// BuildNormalizedCountQuery renders a query counting the groups that BuildNormalizedQuery would
// return without pagination. Used when a page is empty, since the window count is then not
// available.
func BuildNormalizedCountQuery(plan db.NormalizedPlan, dialect Dialect) (Query, error) {
	if plan.IsEmpty() {
		return Query{}, errors.New("cannot build normalized query without factors")
	}

	query := NewQueryBuilder(dialect)

	query.WriteString("SELECT ")
	query.WriteString(dialect.IntegerResult("COUNT(*)"))
	query.WriteString(" AS total_count FROM (SELECT 1 AS matched")
	if err := query.writeNormalizedGroups(plan); err != nil {
		return Query{}, err
	}
	query.WriteString(") AS normalized_groups")

	return query.Query(), nil
}

func normalizedAmountExpression(plan db.NormalizedPlan) string {
	return "SUM(" + plan.AmountColumn.Qualified() + " * " + factorTableAlias + ".multiplier)"
}

// Writes everything from FROM up to and including HAVING, shared between the paginated query
// and the count query.
func (builder *QueryBuilder) writeNormalizedGroups(plan db.NormalizedPlan) error {
	if err := builder.writeFrom(plan.Joins, plan.Predicates); err != nil {
		return wrap.Error(err, "invalid join plan")
	}

	periodKeys, multipliers := db.SplitFactors(plan.Factors)
	builder.WriteString(" INNER JOIN ")
	builder.WriteString(builder.dialect.FactorTable(builder.Bind(periodKeys), builder.Bind(multipliers)))
	builder.WriteString(" ON " + factorTableAlias + ".period_key = ")
	builder.WriteString(builder.dialect.PeriodKey(plan.Frequency))

	if err := builder.WriteWhere(plan.Predicates); err != nil {
		return wrap.Error(err, "failed to write query conditions")
	}

	builder.writeClassificationGroupBy()

	normalizedAmount := normalizedAmountExpression(plan)
	var having []string
	if plan.AggregateFilters.MinAmount != nil {
		having = append(having, normalizedAmount+" >= "+builder.dialect.DecimalParameter(
			builder.Bind(plan.AggregateFilters.MinAmount.String()),
		))
	}
	if plan.AggregateFilters.MaxAmount != nil {
		having = append(having, normalizedAmount+" <= "+builder.dialect.DecimalParameter(
			builder.Bind(plan.AggregateFilters.MaxAmount.String()),
		))
	}
	for i, condition := range having {
		if i == 0 {
			builder.WriteString(" HAVING ")
		} else {
			builder.WriteString(" AND ")
		}
		builder.WriteString(condition)
	}

	return nil
}

// Ties are broken by functional code, then economic code, so that pages are stable.
func (builder *QueryBuilder) writeSort(sort db.SortOptions, normalizedAmount string) error {
	switch sort.By {
	case db.SortFieldAmount:
		builder.WriteString(normalizedAmount)
	case db.SortFieldCount:
		builder.WriteString("COUNT(*)")
	case db.SortFieldFunctionalCode:
		builder.WriteColumn(db.ColumnFunctionalClassificationCode)
	default:
		return errors.New("invalid sort field")
	}

	builder.WriteRune(' ')
	if ok := builder.WriteSortOrder(sort.Order); !ok {
		return errors.New("invalid sort order")
	}

	if sort.By != db.SortFieldFunctionalCode {
		builder.WriteString(", ")
		builder.WriteColumn(db.ColumnFunctionalClassificationCode)
		builder.WriteString(" ASC")
	}
	builder.WriteString(", ")
	builder.WriteString(economicCodeExpression())
	builder.WriteString(" ASC")

	return nil
}
