package sqlquery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"hermannm.dev/budget-analytics/db"
)

// QueryBuilder writes SQL text, collecting bound arguments as it goes. Only fixed schema names
// and expressions from the Dialect are written as text; every value from a filter goes through
// Bind.
type QueryBuilder struct {
	strings.Builder
	dialect Dialect
	args    []any
}

func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Bind adds an argument, returning its placeholder. Placeholders must be written in the order
// that their arguments were bound.
func (builder *QueryBuilder) Bind(value any) string {
	builder.args = append(builder.args, value)
	return builder.dialect.Placeholder(len(builder.args))
}

func (builder *QueryBuilder) Query() Query {
	return Query{SQL: builder.String(), Args: builder.args}
}

func (builder *QueryBuilder) WriteColumn(column db.Column) {
	builder.WriteString(column.Qualified())
}

// WriteTable writes the table's name followed by its alias.
func (builder *QueryBuilder) WriteTable(table db.Table) {
	builder.WriteString(table.String())
	builder.WriteString(" AS ")
	builder.WriteString(table.Alias())
}

func (builder *QueryBuilder) WriteSortOrder(sortOrder db.SortOrder) (ok bool) {
	sortOrderString, ok := sqlSortOrders.GetName(sortOrder)
	if !ok {
		return false
	}

	builder.WriteString(sortOrderString)
	return true
}

// WriteWhere writes a WHERE clause AND-ing the given predicates, or nothing if there are none.
func (builder *QueryBuilder) WriteWhere(predicates []db.Predicate) error {
	for i, predicate := range predicates {
		if i == 0 {
			builder.WriteString(" WHERE ")
		} else {
			builder.WriteString(" AND ")
		}

		if err := builder.WritePredicate(predicate); err != nil {
			return err
		}
	}
	return nil
}

func (builder *QueryBuilder) WritePredicate(predicate db.Predicate) error {
	switch predicate := predicate.(type) {
	case db.Comparison:
		operator, ok := sqlComparisonOperators.GetName(predicate.Operator)
		if !ok {
			return fmt.Errorf("invalid comparison operator %d", predicate.Operator)
		}

		builder.WriteColumn(predicate.Column)
		builder.WriteString(" " + operator + " ")
		builder.writeValue(predicate.Value)
	case db.Membership:
		builder.WriteString(
			builder.dialect.Membership(predicate.Column.Qualified(), builder.Bind(predicate.Values)),
		)
	case db.PrefixMatch:
		if len(predicate.Prefixes) == 0 {
			return fmt.Errorf("empty prefix list for column %s", predicate.Column)
		}

		builder.WriteRune('(')
		for i, prefix := range predicate.Prefixes {
			if i != 0 {
				builder.WriteString(" OR ")
			}
			builder.WriteString(builder.dialect.StartsWith(
				predicate.Column.Qualified(),
				builder.Bind(builder.dialect.PrefixArgument(prefix)),
			))
		}
		builder.WriteRune(')')
	case db.TupleComparison:
		operator, ok := sqlComparisonOperators.GetName(predicate.Operator)
		if !ok {
			return fmt.Errorf("invalid comparison operator %d", predicate.Operator)
		}
		if len(predicate.Columns) != len(predicate.Values) || len(predicate.Columns) == 0 {
			return errors.New("tuple comparison must have as many values as columns")
		}

		builder.WriteRune('(')
		for i, column := range predicate.Columns {
			if i != 0 {
				builder.WriteString(", ")
			}
			builder.WriteColumn(column)
		}
		builder.WriteString(") " + operator + " (")
		for i, value := range predicate.Values {
			if i != 0 {
				builder.WriteString(", ")
			}
			builder.writeValue(value)
		}
		builder.WriteRune(')')
	case db.Flag:
		builder.WriteColumn(predicate.Column)
	case db.AllOf:
		return builder.writeJoined([]db.Predicate(predicate), " AND ")
	case db.AnyOf:
		return builder.writeJoined([]db.Predicate(predicate), " OR ")
	case db.Not:
		if column, ok := predicate.NullableColumn(); ok {
			builder.WriteRune('(')
			builder.WriteColumn(column)
			builder.WriteString(" IS NULL OR NOT (")
			if err := builder.WritePredicate(predicate.Predicate); err != nil {
				return err
			}
			builder.WriteString("))")
		} else {
			builder.WriteString("NOT (")
			if err := builder.WritePredicate(predicate.Predicate); err != nil {
				return err
			}
			builder.WriteRune(')')
		}
	default:
		return fmt.Errorf("unrecognized predicate type %T", predicate)
	}

	return nil
}

func (builder *QueryBuilder) writeJoined(predicates []db.Predicate, separator string) error {
	if len(predicates) == 0 {
		return errors.New("cannot combine empty list of predicates")
	}

	builder.WriteRune('(')
	for i, predicate := range predicates {
		if i != 0 {
			builder.WriteString(separator)
		}
		if err := builder.WritePredicate(predicate); err != nil {
			return err
		}
	}
	builder.WriteRune(')')
	return nil
}

func (builder *QueryBuilder) writeValue(value any) {
	if amount, isDecimal := value.(decimal.Decimal); isDecimal {
		builder.WriteString(builder.dialect.DecimalParameter(builder.Bind(amount.String())))
	} else {
		builder.WriteString(builder.Bind(value))
	}
}
