package db

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// PeriodFactorMap maps period keys (in the period format of the query's frequency, e.g. "2023"
// or "2023-Q1") to the multiplier applied to amounts in that period. The factors are computed
// outside of this package, from inflation indices, exchange rates or population.
type PeriodFactorMap map[string]decimal.Decimal

type PeriodFactor struct {
	PeriodKey  string
	Multiplier decimal.Decimal
}

// Normalize checks that every key is a period at the given frequency, and returns the factors
// sorted by period.
func (factors PeriodFactorMap) Normalize(frequency Frequency) ([]PeriodFactor, error) {
	periods := make([]PeriodDate, 0, len(factors))
	multipliers := make(map[PeriodDate]decimal.Decimal, len(factors))

	for key, multiplier := range factors {
		field := fmt.Sprintf("factors[%s]", key)

		period, err := ParsePeriodDate(key)
		if err != nil {
			return nil, newInvalidFilterError(field, "%s", err.Error())
		}
		if period.Granularity() != frequency {
			return nil, newInvalidFilterError(
				field,
				"period has granularity %s, but report period type is %s",
				period.Granularity(), frequency,
			)
		}

		periods = append(periods, period)
		multipliers[period] = multiplier
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Compare(periods[j]) < 0
	})

	normalized := make([]PeriodFactor, 0, len(periods))
	for _, period := range periods {
		normalized = append(normalized, PeriodFactor{
			PeriodKey:  period.String(),
			Multiplier: multipliers[period],
		})
	}
	return normalized, nil
}

// SplitFactors returns the period keys and multipliers as parallel arrays, the form in which
// they are bound as query parameters. Multipliers are formatted as exact decimal strings.
func SplitFactors(factors []PeriodFactor) (periodKeys []string, multipliers []string) {
	periodKeys = make([]string, 0, len(factors))
	multipliers = make([]string, 0, len(factors))
	for _, factor := range factors {
		periodKeys = append(periodKeys, factor.PeriodKey)
		multipliers = append(multipliers, factor.Multiplier.String())
	}
	return periodKeys, multipliers
}
