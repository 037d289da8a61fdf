package db

import "hermannm.dev/enumnames"

type ComparisonOperator int8

const (
	OperatorEqual ComparisonOperator = iota + 1
	OperatorGreaterOrEqual
	OperatorLessOrEqual
)

var comparisonOperatorNames = enumnames.NewMap(map[ComparisonOperator]string{
	OperatorEqual:          "EQUAL",
	OperatorGreaterOrEqual: "GREATER_OR_EQUAL",
	OperatorLessOrEqual:    "LESS_OR_EQUAL",
})

func (operator ComparisonOperator) IsValid() bool {
	return comparisonOperatorNames.ContainsEnumValue(operator)
}

func (operator ComparisonOperator) String() string {
	return comparisonOperatorNames.GetNameOrFallback(operator, "INVALID_OPERATOR")
}
