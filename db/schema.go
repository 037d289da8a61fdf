package db

import "hermannm.dev/enumnames"

// Table is one of the fixed tables that analytics queries read from.
type Table int8

const (
	TableLineItems Table = iota + 1
	TableFunctionalClassifications
	TableEconomicClassifications
	TableEntities
	TableUATs
)

var tableNames = enumnames.NewMap(map[Table]string{
	TableLineItems:                 "execution_line_items",
	TableFunctionalClassifications: "functional_classifications",
	TableEconomicClassifications:   "economic_classifications",
	TableEntities:                  "entities",
	TableUATs:                      "uats",
})

var tableAliases = enumnames.NewMap(map[Table]string{
	TableLineItems:                 "eli",
	TableFunctionalClassifications: "fc",
	TableEconomicClassifications:   "ec",
	TableEntities:                  "e",
	TableUATs:                      "u",
})

func (table Table) IsValid() bool {
	return tableNames.ContainsEnumValue(table)
}

func (table Table) String() string {
	return tableNames.GetNameOrFallback(table, "INVALID_TABLE")
}

// Alias is the name the table is referred to by in generated queries.
func (table Table) Alias() string {
	return tableAliases.GetNameOrFallback(table, "INVALID_TABLE_ALIAS")
}

type Column struct {
	Table Table
	Name  string
	// Whether the column may be NULL in query results, either because it is nullable in the
	// table itself or because its table is LEFT JOINed.
	Nullable bool
}

// Qualified returns the column name prefixed by its table alias.
func (column Column) Qualified() string {
	return column.Table.Alias() + "." + column.Name
}

func (column Column) String() string {
	return column.Qualified()
}

var (
	ColumnReportID        = Column{Table: TableLineItems, Name: "report_id"}
	ColumnReportType      = Column{Table: TableLineItems, Name: "report_type"}
	ColumnEntityCUI       = Column{Table: TableLineItems, Name: "entity_cui"}
	ColumnMainCreditorCUI = Column{Table: TableLineItems, Name: "main_creditor_cui", Nullable: true}
	ColumnBudgetSectorID  = Column{Table: TableLineItems, Name: "budget_sector_id"}
	ColumnFundingSourceID = Column{Table: TableLineItems, Name: "funding_source_id"}
	ColumnFunctionalCode  = Column{Table: TableLineItems, Name: "functional_code"}
	ColumnEconomicCode    = Column{Table: TableLineItems, Name: "economic_code", Nullable: true}
	ColumnProgramCode     = Column{Table: TableLineItems, Name: "program_code", Nullable: true}
	ColumnExpenseType     = Column{Table: TableLineItems, Name: "expense_type", Nullable: true}
	ColumnAccountCategory = Column{Table: TableLineItems, Name: "account_category"}
	ColumnYear            = Column{Table: TableLineItems, Name: "year"}
	ColumnQuarter         = Column{Table: TableLineItems, Name: "quarter"}
	ColumnMonth           = Column{Table: TableLineItems, Name: "month"}
	ColumnIsQuarterly     = Column{Table: TableLineItems, Name: "is_quarterly"}
	ColumnIsYearly        = Column{Table: TableLineItems, Name: "is_yearly"}
	ColumnMonthlyAmount   = Column{Table: TableLineItems, Name: "monthly_amount"}
	ColumnQuarterlyAmount = Column{Table: TableLineItems, Name: "quarterly_amount"}
	ColumnYTDAmount       = Column{Table: TableLineItems, Name: "ytd_amount"}

	ColumnFunctionalClassificationCode = Column{
		Table: TableFunctionalClassifications,
		Name:  "functional_code",
	}
	ColumnFunctionalClassificationName = Column{
		Table: TableFunctionalClassifications,
		Name:  "functional_name",
	}

	ColumnEconomicClassificationCode = Column{
		Table:    TableEconomicClassifications,
		Name:     "economic_code",
		Nullable: true,
	}
	ColumnEconomicClassificationName = Column{
		Table:    TableEconomicClassifications,
		Name:     "economic_name",
		Nullable: true,
	}

	ColumnEntityCUIKey  = Column{Table: TableEntities, Name: "cui", Nullable: true}
	ColumnEntityType    = Column{Table: TableEntities, Name: "entity_type", Nullable: true}
	ColumnEntityIsUAT   = Column{Table: TableEntities, Name: "is_uat", Nullable: true}
	ColumnEntityUATID   = Column{Table: TableEntities, Name: "uat_id", Nullable: true}
	ColumnUATID         = Column{Table: TableUATs, Name: "id", Nullable: true}
	ColumnUATCountyCode = Column{Table: TableUATs, Name: "county_code", Nullable: true}
	ColumnUATPopulation = Column{Table: TableUATs, Name: "population", Nullable: true}
)
