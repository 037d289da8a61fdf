package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"hermannm.dev/wrap"
)

// Line items without an economic classification are grouped under these placeholders.
const (
	UnknownEconomicCode = "00.00.00"
	UnknownEconomicName = "Unknown economic classification"
)

type ClassificationPeriodData struct {
	FunctionalCode string          `json:"functionalCode"`
	FunctionalName string          `json:"functionalName"`
	EconomicCode   string          `json:"economicCode"`
	EconomicName   string          `json:"economicName"`
	Year           int             `json:"year"`
	Amount         decimal.Decimal `json:"amount"`
	Count          int64           `json:"count"`
}

type ClassificationPeriodResult struct {
	Rows []ClassificationPeriodData `json:"rows"`
	// Number of distinct (functional code, economic code) pairs among the rows.
	DistinctClassificationCount int `json:"distinctClassificationCount"`
	// True if the query matched more than ClassificationPeriodRowLimit rows, in which case only
	// the first ClassificationPeriodRowLimit are included.
	Truncated bool `json:"truncated"`
}

type AggregatedClassification struct {
	FunctionalCode string          `json:"functionalCode"`
	FunctionalName string          `json:"functionalName"`
	EconomicCode   string          `json:"economicCode"`
	EconomicName   string          `json:"economicName"`
	Amount         decimal.Decimal `json:"amount"`
	Count          int64           `json:"count"`
}

type NormalizedAggregatedResult struct {
	Items      []AggregatedClassification `json:"items"`
	TotalCount int64                      `json:"totalCount"`
}

func EmptyNormalizedAggregatedResult() NormalizedAggregatedResult {
	return NormalizedAggregatedResult{Items: []AggregatedClassification{}, TotalCount: 0}
}

// RawClassificationRow is a result row as scanned by a backend. Numeric fields hold whatever
// representation the driver produced, and are converted by the To* methods.
type RawClassificationRow struct {
	FunctionalCode string
	FunctionalName string
	EconomicCode   string
	EconomicName   string
	Year           any
	Amount         any
	Count          any
}

func (raw RawClassificationRow) ToClassificationPeriodData() (ClassificationPeriodData, error) {
	year, err := ParseInteger(raw.Year)
	if err != nil {
		return ClassificationPeriodData{}, wrap.Error(err, "failed to parse year")
	}

	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return ClassificationPeriodData{}, wrap.Error(err, "failed to parse amount")
	}

	count, err := ParseInteger(raw.Count)
	if err != nil {
		return ClassificationPeriodData{}, wrap.Error(err, "failed to parse count")
	}

	return ClassificationPeriodData{
		FunctionalCode: raw.FunctionalCode,
		FunctionalName: raw.FunctionalName,
		EconomicCode:   raw.EconomicCode,
		EconomicName:   raw.EconomicName,
		Year:           int(year),
		Amount:         amount,
		Count:          count,
	}, nil
}

func (raw RawClassificationRow) ToAggregatedClassification() (AggregatedClassification, error) {
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return AggregatedClassification{}, wrap.Error(err, "failed to parse normalized amount")
	}

	count, err := ParseInteger(raw.Count)
	if err != nil {
		return AggregatedClassification{}, wrap.Error(err, "failed to parse count")
	}

	return AggregatedClassification{
		FunctionalCode: raw.FunctionalCode,
		FunctionalName: raw.FunctionalName,
		EconomicCode:   raw.EconomicCode,
		EconomicName:   raw.EconomicName,
		Amount:         amount,
		Count:          count,
	}, nil
}

// ParseAmount converts a driver's representation of a numeric value to a decimal. Floats are
// rejected, since they cannot represent summed amounts exactly.
func ParseAmount(value any) (decimal.Decimal, error) {
	switch value := value.(type) {
	case decimal.Decimal:
		return value, nil
	case *decimal.Decimal:
		if value == nil {
			return decimal.Zero, nil
		}
		return *value, nil
	case string:
		return parseDecimalString(value)
	case []byte:
		return parseDecimalString(string(value))
	case nil:
		// SUM over no rows
		return decimal.Zero, nil
	}

	if integer, err := ParseInteger(value); err == nil {
		return decimal.NewFromInt(integer), nil
	}

	return decimal.Decimal{}, fmt.Errorf("unsupported amount type %T", value)
}

func parseDecimalString(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, wrap.Errorf(err, "invalid decimal '%s'", value)
	}
	return amount, nil
}

// ParseInteger converts a driver's representation of an integer (native integer of any width,
// or decimal text) to an int64.
func ParseInteger(value any) (int64, error) {
	switch value := value.(type) {
	case int64:
		return value, nil
	case int32:
		return int64(value), nil
	case int16:
		return int64(value), nil
	case int:
		return int64(value), nil
	case uint64:
		if value > uint64(1<<63-1) {
			return 0, fmt.Errorf("integer %d overflows int64", value)
		}
		return int64(value), nil
	case uint32:
		return int64(value), nil
	case uint16:
		return int64(value), nil
	case string:
		return parseIntegerString(value)
	case []byte:
		return parseIntegerString(string(value))
	}

	return 0, fmt.Errorf("unsupported integer type %T", value)
}

func parseIntegerString(value string) (int64, error) {
	integer, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, wrap.Errorf(err, "invalid integer '%s'", value)
	}
	return integer, nil
}

// NewClassificationPeriodResult builds the result from rows fetched with a limit of
// rowLimit+1, marking it as truncated if the extra row is present.
func NewClassificationPeriodResult(
	rows []ClassificationPeriodData,
	rowLimit int,
) ClassificationPeriodResult {
	truncated := len(rows) > rowLimit
	if truncated {
		rows = rows[:rowLimit]
	}
	if rows == nil {
		rows = []ClassificationPeriodData{}
	}

	type classification struct {
		functionalCode string
		economicCode   string
	}
	distinct := make(map[classification]struct{})
	for _, row := range rows {
		distinct[classification{row.FunctionalCode, row.EconomicCode}] = struct{}{}
	}

	return ClassificationPeriodResult{
		Rows:                        rows,
		DistinctClassificationCount: len(distinct),
		Truncated:                   truncated,
	}
}
