package sqlquery

import "hermannm.dev/budget-analytics/db"

// Dialect renders the parts of a query that differ between database engines. Arguments named
// placeholder are bind markers returned by QueryBuilder.Bind.
type Dialect interface {
	// Placeholder returns the bind marker for the argument at the given 1-based position.
	Placeholder(position int) string

	// Membership matches column against an array parameter.
	Membership(column string, valuesPlaceholder string) string

	// StartsWith matches column against a prefix parameter, whose value is produced by
	// PrefixArgument.
	StartsWith(column string, prefixPlaceholder string) string
	PrefixArgument(prefix string) string

	// DecimalParameter casts a parameter bound as decimal text to an exact numeric.
	DecimalParameter(placeholder string) string

	// DecimalResult and IntegerResult cast selected expressions to types that the backend
	// scans its rows into.
	DecimalResult(expression string) string
	IntegerResult(expression string) string

	// PeriodKey formats the line item's period at the given frequency the same way as
	// db.PeriodDate.String.
	PeriodKey(frequency db.Frequency) string

	// FactorTable returns a derived table aliased f, with columns period_key and multiplier,
	// built from two parallel array parameters.
	FactorTable(periodKeysPlaceholder string, multipliersPlaceholder string) string
}

type Query struct {
	SQL  string
	Args []any
}
