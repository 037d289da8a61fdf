package db

// JoinPlan records which optional dimension tables a query must join. It is computed once per
// query, and every condition builder reads it, so that no predicate references a table that
// is not joined.
type JoinPlan struct {
	// LEFT JOIN entities on the line item's entity CUI.
	Entity bool
	// LEFT JOIN uats on the entity's UAT ID. Implies Entity.
	UAT bool
}

func PlanJoins(filter AnalyticsFilter) JoinPlan {
	return JoinPlan{Entity: NeedsEntityJoin(filter), UAT: NeedsUATJoin(filter)}
}

// NeedsEntityJoin reports whether the filter references entity attributes, either directly or
// through the geography dimension, which is reached through the entity.
func NeedsEntityJoin(filter AnalyticsFilter) bool {
	if len(filter.EntityTypes) != 0 || filter.IsUAT != nil || len(filter.UATIDs) != 0 {
		return true
	}

	if exclude := filter.Exclude; exclude != nil &&
		(len(exclude.EntityTypes) != 0 || len(exclude.UATIDs) != 0) {
		return true
	}

	return NeedsUATJoin(filter)
}

// NeedsUATJoin reports whether the filter references geography (UAT) attributes.
func NeedsUATJoin(filter AnalyticsFilter) bool {
	if len(filter.CountyCodes) != 0 || filter.MinPopulation != nil || filter.MaxPopulation != nil {
		return true
	}

	return filter.Exclude != nil && len(filter.Exclude.CountyCodes) != 0
}
