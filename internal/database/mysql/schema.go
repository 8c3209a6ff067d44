package mysql

import (
	"fmt"
	"strings"

	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/types"
)

func (m *Adapter) GenerateCreateTableSQL(table types.SchemaTable) string {
	return CreateTableSQL(table)
}

// CreateTableSQL renders MySQL DDL for table. Shared with the Data API
// adapter when it targets Aurora MySQL.
func CreateTableSQL(table types.SchemaTable) string {
	var lines []string
	var foreignKeys []string

	for _, column := range table.Columns {
		if column.ForeignKeyTable != "" && column.ForeignKeyColumn != "" {
			fk := fmt.Sprintf("  FOREIGN KEY (`%s`) REFERENCES `%s`(`%s`)",
				column.Name, column.ForeignKeyTable, column.ForeignKeyColumn)
			if column.OnDeleteAction != "" {
				fk += fmt.Sprintf(" ON DELETE %s", column.OnDeleteAction)
			}
			foreignKeys = append(foreignKeys, fk)
		}
	}

	lines = append(lines, fmt.Sprintf("CREATE TABLE `%s` (", table.Name))

	for i, column := range table.Columns {
		comma := ","
		if i == len(table.Columns)-1 && len(foreignKeys) == 0 {
			comma = ""
		}
		lines = append(lines, fmt.Sprintf("  `%s` %s%s", column.Name, FormatColumnType(column), comma))
	}

	for i, fk := range foreignKeys {
		comma := ","
		if i == len(foreignKeys)-1 {
			comma = ""
		}
		lines = append(lines, fmt.Sprintf("%s%s", fk, comma))
	}

	lines = append(lines, ") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4")
	return strings.Join(lines, "\n")
}

// DropTableSQL is the idempotent drop used by the schema reset.
func DropTableSQL(tableName string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", common.QuoteBacktick(tableName))
}

func FormatColumnType(column types.SchemaColumn) string {
	var parts []string
	columnType := column.Type
	if len(column.EnumValues) > 0 {
		columnType = enumType(column.EnumValues)
	}
	parts = append(parts, columnType)

	if column.IsAutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}

	if column.IsPrimary {
		parts = append(parts, "PRIMARY KEY")
	}

	if column.IsUnique && !column.IsPrimary {
		parts = append(parts, "UNIQUE")
	}

	if !column.Nullable && !column.IsPrimary {
		parts = append(parts, "NOT NULL")
	}

	if column.Default != "" {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", column.Default))
	}

	return strings.Join(parts, " ")
}

func enumType(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return "ENUM(" + strings.Join(quoted, ", ") + ")"
}
