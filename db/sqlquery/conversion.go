package sqlquery

import (
	"hermannm.dev/budget-analytics/db"
	"hermannm.dev/enumnames"
)

var sqlComparisonOperators = enumnames.NewMap(map[db.ComparisonOperator]string{
	db.OperatorEqual:          "=",
	db.OperatorGreaterOrEqual: ">=",
	db.OperatorLessOrEqual:    "<=",
})

var sqlSortOrders = enumnames.NewMap(map[db.SortOrder]string{
	db.SortOrderAscending:  "ASC",
	db.SortOrderDescending: "DESC",
})
