package postgres

import (
	"strconv"
	"strings"

	"hermannm.dev/budget-analytics/db"
)

// Dialect implements sqlquery.Dialect for PostgreSQL.
type Dialect struct{}

func (Dialect) Placeholder(position int) string {
	return "$" + strconv.Itoa(position)
}

func (Dialect) Membership(column string, valuesPlaceholder string) string {
	return column + " = ANY(" + valuesPlaceholder + ")"
}

func (Dialect) StartsWith(column string, prefixPlaceholder string) string {
	return column + " LIKE " + prefixPlaceholder
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PrefixArgument escapes LIKE wildcards in the prefix, then appends one.
func (Dialect) PrefixArgument(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

func (Dialect) DecimalParameter(placeholder string) string {
	return placeholder + "::text::numeric"
}

// Numeric results are selected as text, so they are scanned without loss of precision.
func (Dialect) DecimalResult(expression string) string {
	return "(" + expression + ")::text"
}

func (Dialect) IntegerResult(expression string) string {
	return "(" + expression + ")::bigint"
}

func (Dialect) PeriodKey(frequency db.Frequency) string {
	year := db.ColumnYear.Qualified() + "::text"

	switch frequency {
	case db.FrequencyMonth:
		return year + " || '-' || LPAD(" + db.ColumnMonth.Qualified() + "::text, 2, '0')"
	case db.FrequencyQuarter:
		return year + " || '-Q' || " + db.ColumnQuarter.Qualified() + "::text"
	default:
		return year
	}
}

func (Dialect) FactorTable(periodKeysPlaceholder string, multipliersPlaceholder string) string {
	return "unnest(" + periodKeysPlaceholder + "::text[], " +
		multipliersPlaceholder + "::text[]::numeric[]) AS f(period_key, multiplier)"
}
