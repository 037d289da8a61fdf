package sqlquery

import (
	"hermannm.dev/budget-analytics/db"
	"hermannm.dev/wrap"
)

// BuildClassificationPeriodQuery renders a query summing line item amounts per classification
// and year. Selected columns, in order: functional code, functional name, economic code,
// economic name, year, amount, line item count.
func BuildClassificationPeriodQuery(
	plan db.ClassificationPeriodPlan,
	dialect Dialect,
) (Query, error) {
	query := NewQueryBuilder(dialect)

	query.WriteString("SELECT ")
	query.writeClassificationSelect()
	query.WriteString(", ")
	query.WriteString(dialect.IntegerResult(db.ColumnYear.Qualified()))
	query.WriteString(" AS period_year, ")
	query.WriteString(dialect.DecimalResult("SUM(" + plan.AmountColumn.Qualified() + ")"))
	query.WriteString(" AS amount, ")
	query.WriteString(dialect.IntegerResult("COUNT(*)"))
	query.WriteString(" AS line_item_count")

	if err := query.writeFrom(plan.Joins, plan.Predicates); err != nil {
		return Query{}, wrap.Error(err, "invalid join plan")
	}
	if err := query.WriteWhere(plan.Predicates); err != nil {
		return Query{}, wrap.Error(err, "failed to write query conditions")
	}

	query.writeClassificationGroupBy()
	query.WriteString(", ")
	query.WriteColumn(db.ColumnYear)

	query.WriteString(" ORDER BY ")
	query.WriteColumn(db.ColumnFunctionalClassificationCode)
	query.WriteString(", ")
	query.WriteString(economicCodeExpression())
	query.WriteString(", ")
	query.WriteColumn(db.ColumnYear)

	// One more than the limit, so that truncation can be detected
	query.WriteString(" LIMIT ")
	query.WriteString(query.Bind(plan.RowLimit + 1))

	return query.Query(), nil
}
