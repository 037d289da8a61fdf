package clickhouse

import (
	"hermannm.dev/budget-analytics/db"
)

// Dialect implements sqlquery.Dialect for ClickHouse. The driver formats bound arguments into
// the query on the client, with slices becoming array literals.
type Dialect struct{}

// Scale of decimals bound as parameters and of normalization multipliers.
const decimalScale = "10"

func (Dialect) Placeholder(int) string {
	return "?"
}

func (Dialect) Membership(column string, valuesPlaceholder string) string {
	return "has(" + valuesPlaceholder + ", " + column + ")"
}

func (Dialect) StartsWith(column string, prefixPlaceholder string) string {
	return "startsWith(" + column + ", " + prefixPlaceholder + ")"
}

func (Dialect) PrefixArgument(prefix string) string {
	return prefix
}

func (Dialect) DecimalParameter(placeholder string) string {
	return "toDecimal128(" + placeholder + ", " + decimalScale + ")"
}

// Decimal sums are scanned directly into decimal.Decimal.
func (Dialect) DecimalResult(expression string) string {
	return expression
}

func (Dialect) IntegerResult(expression string) string {
	return "toInt64(" + expression + ")"
}

func (Dialect) PeriodKey(frequency db.Frequency) string {
	year := "toString(" + db.ColumnYear.Qualified() + ")"

	switch frequency {
	case db.FrequencyMonth:
		return "concat(" + year + ", '-', leftPad(toString(" + db.ColumnMonth.Qualified() + "), 2, '0'))"
	case db.FrequencyQuarter:
		return "concat(" + year + ", '-Q', toString(" + db.ColumnQuarter.Qualified() + "))"
	default:
		return year
	}
}

func (Dialect) FactorTable(periodKeysPlaceholder string, multipliersPlaceholder string) string {
	return "(SELECT tupleElement(factor, 1) AS period_key, " +
		"toDecimal128(tupleElement(factor, 2), " + decimalScale + ") AS multiplier " +
		"FROM (SELECT arrayJoin(arrayZip(" + periodKeysPlaceholder + ", " + multipliersPlaceholder +
		")) AS factor)) AS f"
}
