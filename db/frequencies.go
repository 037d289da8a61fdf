package db

import "hermannm.dev/enumnames"

// Frequency is the reporting granularity that a filter's period selection is expressed in.
// It also decides which amount column of the line items table is aggregated.
type Frequency int8

const (
	FrequencyYear Frequency = iota + 1
	FrequencyQuarter
	FrequencyMonth
)

var frequencyNames = enumnames.NewMap(map[Frequency]string{
	FrequencyYear:    "YEAR",
	FrequencyQuarter: "QUARTER",
	FrequencyMonth:   "MONTH",
})

func (frequency Frequency) IsValid() bool {
	return frequencyNames.ContainsEnumValue(frequency)
}

func (frequency Frequency) String() string {
	return frequencyNames.GetNameOrFallback(frequency, "INVALID_FREQUENCY")
}

func (frequency Frequency) MarshalJSON() ([]byte, error) {
	return frequencyNames.MarshalToNameJSON(frequency)
}

func (frequency *Frequency) UnmarshalJSON(bytes []byte) error {
	return frequencyNames.UnmarshalFromNameJSON(bytes, frequency)
}

// AmountColumn returns the line item amount column matching the frequency: monthly amounts for
// MONTH, quarterly amounts for QUARTER and year-to-date amounts for YEAR.
func (frequency Frequency) AmountColumn() Column {
	switch frequency {
	case FrequencyMonth:
		return ColumnMonthlyAmount
	case FrequencyQuarter:
		return ColumnQuarterlyAmount
	default:
		return ColumnYTDAmount
	}
}

// EligibilityFlag returns the boolean column that marks line items as reportable at the
// frequency. Monthly rows are always eligible, so MONTH returns ok=false.
func (frequency Frequency) EligibilityFlag() (flag Column, ok bool) {
	switch frequency {
	case FrequencyQuarter:
		return ColumnIsQuarterly, true
	case FrequencyYear:
		return ColumnIsYearly, true
	default:
		return Column{}, false
	}
}

// PeriodColumns returns the line item columns that identify a period at the frequency, in
// lexicographic order.
func (frequency Frequency) PeriodColumns() []Column {
	switch frequency {
	case FrequencyMonth:
		return []Column{ColumnYear, ColumnMonth}
	case FrequencyQuarter:
		return []Column{ColumnYear, ColumnQuarter}
	default:
		return []Column{ColumnYear}
	}
}
