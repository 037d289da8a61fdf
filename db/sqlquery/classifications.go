package sqlquery

import (
	"fmt"

	"hermannm.dev/budget-analytics/db"
)

// The coalesced economic classification expressions are written by the same functions in both
// SELECT and GROUP BY, so that grouping always matches what is selected.

func economicCodeExpression() string {
	return fmt.Sprintf(
		"COALESCE(%s, '%s')",
		db.ColumnEconomicClassificationCode.Qualified(),
		db.UnknownEconomicCode,
	)
}

func economicNameExpression() string {
	return fmt.Sprintf(
		"COALESCE(%s, '%s')",
		db.ColumnEconomicClassificationName.Qualified(),
		db.UnknownEconomicName,
	)
}

func (builder *QueryBuilder) writeClassificationSelect() {
	builder.WriteColumn(db.ColumnFunctionalClassificationCode)
	builder.WriteString(" AS classification_functional_code, ")
	builder.WriteColumn(db.ColumnFunctionalClassificationName)
	builder.WriteString(" AS classification_functional_name, ")
	builder.WriteString(economicCodeExpression())
	builder.WriteString(" AS classification_economic_code, ")
	builder.WriteString(economicNameExpression())
	builder.WriteString(" AS classification_economic_name")
}

func (builder *QueryBuilder) writeClassificationGroupBy() {
	builder.WriteString(" GROUP BY ")
	builder.WriteColumn(db.ColumnFunctionalClassificationCode)
	builder.WriteString(", ")
	builder.WriteColumn(db.ColumnFunctionalClassificationName)
	builder.WriteString(", ")
	builder.WriteString(economicCodeExpression())
	builder.WriteString(", ")
	builder.WriteString(economicNameExpression())
}

// writeFrom writes the line items table with the classification joins that every query has,
// followed by the optional dimension joins of the plan.
func (builder *QueryBuilder) writeFrom(joins db.JoinPlan, predicates []db.Predicate) error {
	if err := checkJoins(joins, predicates); err != nil {
		return err
	}

	builder.WriteString(" FROM ")
	builder.WriteTable(db.TableLineItems)

	builder.WriteString(" INNER JOIN ")
	builder.WriteTable(db.TableFunctionalClassifications)
	builder.writeJoinCondition(db.ColumnFunctionalClassificationCode, db.ColumnFunctionalCode)

	builder.WriteString(" LEFT JOIN ")
	builder.WriteTable(db.TableEconomicClassifications)
	builder.writeJoinCondition(db.ColumnEconomicClassificationCode, db.ColumnEconomicCode)

	if joins.Entity || joins.UAT {
		builder.WriteString(" LEFT JOIN ")
		builder.WriteTable(db.TableEntities)
		builder.writeJoinCondition(db.ColumnEntityCUIKey, db.ColumnEntityCUI)
	}

	if joins.UAT {
		builder.WriteString(" LEFT JOIN ")
		builder.WriteTable(db.TableUATs)
		builder.writeJoinCondition(db.ColumnUATID, db.ColumnEntityUATID)
	}

	return nil
}

func (builder *QueryBuilder) writeJoinCondition(joined db.Column, joinedOn db.Column) {
	builder.WriteString(" ON ")
	builder.WriteColumn(joined)
	builder.WriteString(" = ")
	builder.WriteColumn(joinedOn)
}

// checkJoins verifies that no predicate references a dimension table that is not joined.
func checkJoins(joins db.JoinPlan, predicates []db.Predicate) error {
	tables := db.ReferencedTables(predicates...)
	if tables[db.TableEntities] && !(joins.Entity || joins.UAT) {
		return fmt.Errorf("predicate references %s, which is not joined", db.TableEntities)
	}
	if tables[db.TableUATs] && !joins.UAT {
		return fmt.Errorf("predicate references %s, which is not joined", db.TableUATs)
	}
	return nil
}
