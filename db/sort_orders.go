package db

import "hermannm.dev/enumnames"

type SortOrder int8

const (
	SortOrderAscending SortOrder = iota + 1
	SortOrderDescending
)

var sortOrderMap = enumnames.NewMap(map[SortOrder]string{
	SortOrderAscending:  "ASCENDING",
	SortOrderDescending: "DESCENDING",
})

func (sortOrder SortOrder) IsValid() bool {
	return sortOrderMap.ContainsEnumValue(sortOrder)
}

func (sortOrder SortOrder) String() string {
	return sortOrderMap.GetNameOrFallback(sortOrder, "INVALID_SORT_ORDER")
}

func (sortOrder SortOrder) MarshalJSON() ([]byte, error) {
	return sortOrderMap.MarshalToNameJSON(sortOrder)
}

func (sortOrder *SortOrder) UnmarshalJSON(bytes []byte) error {
	return sortOrderMap.UnmarshalFromNameJSON(bytes, sortOrder)
}

// SortField is what normalized aggregates are ordered by.
type SortField int8

const (
	SortFieldAmount SortField = iota + 1
	SortFieldCount
	SortFieldFunctionalCode
)

var sortFieldMap = enumnames.NewMap(map[SortField]string{
	SortFieldAmount:         "AMOUNT",
	SortFieldCount:          "COUNT",
	SortFieldFunctionalCode: "FUNCTIONAL_CODE",
})

func (sortField SortField) IsValid() bool {
	return sortFieldMap.ContainsEnumValue(sortField)
}

func (sortField SortField) String() string {
	return sortFieldMap.GetNameOrFallback(sortField, "INVALID_SORT_FIELD")
}

func (sortField SortField) MarshalJSON() ([]byte, error) {
	return sortFieldMap.MarshalToNameJSON(sortField)
}

func (sortField *SortField) UnmarshalJSON(bytes []byte) error {
	return sortFieldMap.UnmarshalFromNameJSON(bytes, sortField)
}

type SortOptions struct {
	By    SortField `json:"by"`
	Order SortOrder `json:"order"`
}

// WithDefaults fills unset fields, sorting by amount in descending order unless told otherwise.
func (options SortOptions) WithDefaults() SortOptions {
	if options.By == 0 {
		options.By = SortFieldAmount
	}
	if options.Order == 0 {
		options.Order = SortOrderDescending
	}
	return options
}
