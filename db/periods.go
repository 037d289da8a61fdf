package db

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// PeriodDate is one reporting period: a year, a quarter of a year or a month of a year.
// Quarter and Month are 0 when the period is coarser than them.
type PeriodDate struct {
	Year    int
	Quarter int
	Month   int
}

var (
	yearPattern    = regexp.MustCompile(`^(\d{4})$`)
	quarterPattern = regexp.MustCompile(`^(\d{4})-Q([1-4])$`)
	monthPattern   = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])$`)
)

// ParsePeriodDate parses periods on the forms "2023" (year), "2023-Q1" (quarter) and "2023-01"
// (month).
func ParsePeriodDate(value string) (PeriodDate, error) {
	var period PeriodDate
	if match := yearPattern.FindStringSubmatch(value); match != nil {
		period = PeriodDate{Year: mustAtoi(match[1])}
	} else if match := quarterPattern.FindStringSubmatch(value); match != nil {
		period = PeriodDate{Year: mustAtoi(match[1]), Quarter: mustAtoi(match[2])}
	} else if match := monthPattern.FindStringSubmatch(value); match != nil {
		period = PeriodDate{Year: mustAtoi(match[1]), Month: mustAtoi(match[2])}
	} else {
		return PeriodDate{}, fmt.Errorf(
			"invalid period '%s' (expected YYYY, YYYY-Qn or YYYY-MM)",
			value,
		)
	}

	// The zero PeriodDate marks a missing period
	if period.Year == 0 {
		return PeriodDate{}, fmt.Errorf("invalid period '%s': year 0000 does not exist", value)
	}

	return period, nil
}

// Only called on regex matches of digits.
func mustAtoi(digits string) int {
	number, err := strconv.Atoi(digits)
	if err != nil {
		panic(err)
	}
	return number
}

// Granularity returns the frequency that the period is expressed in.
func (period PeriodDate) Granularity() Frequency {
	switch {
	case period.Month != 0:
		return FrequencyMonth
	case period.Quarter != 0:
		return FrequencyQuarter
	default:
		return FrequencyYear
	}
}

func (period PeriodDate) IsZero() bool {
	return period == PeriodDate{}
}

// String formats the period the same way as it is parsed, which is also the form of the period
// keys that normalization factors are matched on.
func (period PeriodDate) String() string {
	switch period.Granularity() {
	case FrequencyMonth:
		return fmt.Sprintf("%04d-%02d", period.Year, period.Month)
	case FrequencyQuarter:
		return fmt.Sprintf("%04d-Q%d", period.Year, period.Quarter)
	default:
		return fmt.Sprintf("%04d", period.Year)
	}
}

// Compare returns -1, 0 or 1 depending on whether the period sorts before, equal to or after the
// other period. Both periods are expected to have the same granularity.
func (period PeriodDate) Compare(other PeriodDate) int {
	for _, pair := range [][2]int{
		{period.Year, other.Year},
		{period.Quarter, other.Quarter},
		{period.Month, other.Month},
	} {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	return 0
}

// Components returns the values of the period's columns, in the order given by
// Frequency.PeriodColumns for its granularity.
func (period PeriodDate) Components() []any {
	switch period.Granularity() {
	case FrequencyMonth:
		return []any{period.Year, period.Month}
	case FrequencyQuarter:
		return []any{period.Year, period.Quarter}
	default:
		return []any{period.Year}
	}
}

func (period PeriodDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(period.String())
}

func (period *PeriodDate) UnmarshalJSON(bytes []byte) error {
	var value string
	if err := json.Unmarshal(bytes, &value); err != nil {
		return err
	}

	parsed, err := ParsePeriodDate(value)
	if err != nil {
		return err
	}

	*period = parsed
	return nil
}

type ReportPeriod struct {
	Frequency Frequency       `json:"type"`
	Selection PeriodSelection `json:"selection"`
}

// PeriodSelection holds either an inclusive interval or a list of discrete periods.
type PeriodSelection struct {
	Interval *PeriodInterval `json:"interval,omitempty"`
	Dates    []PeriodDate    `json:"dates,omitempty"`
}

type PeriodInterval struct {
	Start PeriodDate `json:"start"`
	End   PeriodDate `json:"end"`
}

func (reportPeriod ReportPeriod) Validate() error {
	if !reportPeriod.Frequency.IsValid() {
		return newInvalidFilterError("reportPeriod.type", "must be one of MONTH, QUARTER, YEAR")
	}

	selection := reportPeriod.Selection
	switch {
	case selection.Interval != nil && len(selection.Dates) != 0:
		return newInvalidFilterError(
			"reportPeriod.selection",
			"cannot have both interval and dates",
		)
	case selection.Interval != nil:
		interval := *selection.Interval
		if err := reportPeriod.validateDate("reportPeriod.selection.interval.start", interval.Start); err != nil {
			return err
		}
		if err := reportPeriod.validateDate("reportPeriod.selection.interval.end", interval.End); err != nil {
			return err
		}
		if interval.Start.Compare(interval.End) > 0 {
			return newInvalidFilterError(
				"reportPeriod.selection.interval",
				"start '%s' is after end '%s'",
				interval.Start, interval.End,
			)
		}
	case len(selection.Dates) != 0:
		for i, date := range selection.Dates {
			field := fmt.Sprintf("reportPeriod.selection.dates[%d]", i)
			if err := reportPeriod.validateDate(field, date); err != nil {
				return err
			}
		}
	default:
		return newInvalidFilterError("reportPeriod.selection", "must have either interval or dates")
	}

	return nil
}

func (reportPeriod ReportPeriod) validateDate(field string, date PeriodDate) error {
	if date.IsZero() {
		return newInvalidFilterError(field, "missing period")
	}
	if granularity := date.Granularity(); granularity != reportPeriod.Frequency {
		return newInvalidFilterError(
			field,
			"period '%s' has granularity %s, but report period type is %s",
			date, granularity, reportPeriod.Frequency,
		)
	}
	return nil
}
