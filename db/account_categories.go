package db

import "hermannm.dev/enumnames"

type AccountCategory int8

const (
	AccountCategoryExpense AccountCategory = iota + 1
	AccountCategoryIncome
)

var accountCategoryNames = enumnames.NewMap(map[AccountCategory]string{
	AccountCategoryExpense: "EXPENSE",
	AccountCategoryIncome:  "INCOME",
})

// Values of the account_category column in the line items table.
var accountCategoryCodes = enumnames.NewMap(map[AccountCategory]string{
	AccountCategoryExpense: "ch",
	AccountCategoryIncome:  "vn",
})

func (category AccountCategory) IsValid() bool {
	return accountCategoryNames.ContainsEnumValue(category)
}

func (category AccountCategory) String() string {
	return accountCategoryNames.GetNameOrFallback(category, "INVALID_ACCOUNT_CATEGORY")
}

// Code returns the category as stored in the database.
func (category AccountCategory) Code() (code string, ok bool) {
	return accountCategoryCodes.GetName(category)
}

func (category AccountCategory) MarshalJSON() ([]byte, error) {
	return accountCategoryNames.MarshalToNameJSON(category)
}

func (category *AccountCategory) UnmarshalJSON(bytes []byte) error {
	return accountCategoryNames.UnmarshalFromNameJSON(bytes, category)
}
