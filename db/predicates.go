package db

// Predicate is a boolean condition over the fixed query schema. Predicates never contain SQL:
// values are rendered as bound parameters by the query assembler of each backend.
//
// The set of predicate types is closed; see the types in this file.
type Predicate interface {
	predicate()
}

// Comparison compares a column to a single value. A decimal.Decimal value is bound as an
// exact numeric.
type Comparison struct {
	Column   Column
	Operator ComparisonOperator
	Value    any
}

// Membership matches rows where the column equals one of the given values. Values must be a
// slice ([]string or []int64).
type Membership struct {
	Column Column
	Values any
}

// PrefixMatch matches rows where the column starts with any of the given prefixes.
type PrefixMatch struct {
	Column   Column
	Prefixes []string
}

// TupleComparison compares columns lexicographically to values, i.e. (year, quarter) >= (2021, 2).
type TupleComparison struct {
	Columns  []Column
	Operator ComparisonOperator
	Values   []any
}

// Flag matches rows where the boolean column is true.
type Flag struct {
	Column Column
}

// AllOf matches rows matching every one of its predicates.
type AllOf []Predicate

// AnyOf matches rows matching at least one of its predicates.
type AnyOf []Predicate

// Not negates a predicate. If the negated predicate only references a single nullable column,
// rows where that column is NULL are kept (see NullableColumn).
type Not struct {
	Predicate Predicate
}

func (Comparison) predicate()      {}
func (Membership) predicate()      {}
func (PrefixMatch) predicate()     {}
func (TupleComparison) predicate() {}
func (Flag) predicate()            {}
func (AllOf) predicate()           {}
func (AnyOf) predicate()           {}
func (Not) predicate()             {}

// NullableColumn returns the column whose NULL values should pass the negation. In SQL,
// NOT (NULL = ANY(...)) is NULL, so a plain negation would drop line items lacking e.g. an
// economic code from the result, although they are not excluded.
func (not Not) NullableColumn() (column Column, ok bool) {
	columns := ReferencedColumns(not.Predicate)
	if len(columns) != 1 || !columns[0].Nullable {
		return Column{}, false
	}
	return columns[0], true
}

// ReferencedColumns returns the distinct columns that the predicate reads, in order of first
// appearance.
func ReferencedColumns(predicate Predicate) []Column {
	var columns []Column
	add := func(column Column) {
		for _, existing := range columns {
			if existing == column {
				return
			}
		}
		columns = append(columns, column)
	}

	var visit func(predicate Predicate)
	visit = func(predicate Predicate) {
		switch predicate := predicate.(type) {
		case Comparison:
			add(predicate.Column)
		case Membership:
			add(predicate.Column)
		case PrefixMatch:
			add(predicate.Column)
		case TupleComparison:
			for _, column := range predicate.Columns {
				add(column)
			}
		case Flag:
			add(predicate.Column)
		case AllOf:
			for _, child := range predicate {
				visit(child)
			}
		case AnyOf:
			for _, child := range predicate {
				visit(child)
			}
		case Not:
			visit(predicate.Predicate)
		}
	}

	visit(predicate)
	return columns
}

// ReferencedTables returns the tables that the predicates read from.
func ReferencedTables(predicates ...Predicate) map[Table]bool {
	tables := make(map[Table]bool)
	for _, predicate := range predicates {
		for _, column := range ReferencedColumns(predicate) {
			tables[column.Table] = true
		}
	}
	return tables
}
