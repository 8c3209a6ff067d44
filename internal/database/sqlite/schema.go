package sqlite

import (
	"fmt"
	"strings"

	"github.com/Rana718/schemaseed/internal/types"
)

func (s *Adapter) GenerateCreateTableSQL(table types.SchemaTable) string {
	var lines []string
	var foreignKeys []string

	for _, column := range table.Columns {
		if column.ForeignKeyTable != "" && column.ForeignKeyColumn != "" {
			fk := fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s(%s)",
				quoteIdent(column.Name), quoteIdent(column.ForeignKeyTable), quoteIdent(column.ForeignKeyColumn))
			if column.OnDeleteAction != "" {
				fk += fmt.Sprintf(" ON DELETE %s", column.OnDeleteAction)
			}
			foreignKeys = append(foreignKeys, fk)
		}
	}

	lines = append(lines, fmt.Sprintf("CREATE TABLE %s (", quoteIdent(table.Name)))

	for i, column := range table.Columns {
		comma := ","
		if i == len(table.Columns)-1 && len(foreignKeys) == 0 {
			comma = ""
		}
		lines = append(lines, fmt.Sprintf("  %s %s%s", quoteIdent(column.Name), formatColumnType(column), comma))
	}

	for i, fk := range foreignKeys {
		comma := ","
		if i == len(foreignKeys)-1 {
			comma = ""
		}
		lines = append(lines, fk+comma)
	}

	lines = append(lines, ")")
	return strings.Join(lines, "\n")
}

func DropTableSQL(tableName string) string {
	return "DROP TABLE IF EXISTS " + quoteIdent(tableName)
}

// formatColumnType keeps declared types for their affinity. Only an
// INTEGER PRIMARY KEY aliases the rowid, so auto-increment keys are rewritten.
func formatColumnType(column types.SchemaColumn) string {
	if column.IsPrimary && column.IsAutoIncrement {
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	parts := []string{column.Type}

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
	if len(column.EnumValues) > 0 {
		quoted := make([]string, len(column.EnumValues))
		for i, v := range column.EnumValues {
			quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
		parts = append(parts, fmt.Sprintf("CHECK (%s IN (%s))", quoteIdent(column.Name), strings.Join(quoted, ", ")))
	}

	return strings.Join(parts, " ")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
