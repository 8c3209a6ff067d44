package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Rana718/schemaseed/internal/types"
)

func (p *Adapter) GenerateCreateTableSQL(table types.SchemaTable) string {
	return CreateTableSQL(table)
}

// CreateTableSQL renders PostgreSQL DDL for table. Shared with the Data API
// adapter when it targets Aurora PostgreSQL.
func CreateTableSQL(table types.SchemaTable) string {
	var lines []string
	var constraints []string

	for _, column := range table.Columns {
		if column.ForeignKeyTable != "" && column.ForeignKeyColumn != "" {
			fk := fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s(%s)",
				pq.QuoteIdentifier(column.Name),
				pq.QuoteIdentifier(column.ForeignKeyTable),
				pq.QuoteIdentifier(column.ForeignKeyColumn))
			if column.OnDeleteAction != "" {
				fk += fmt.Sprintf(" ON DELETE %s", column.OnDeleteAction)
			}
			constraints = append(constraints, fk)
		}
	}

	lines = append(lines, fmt.Sprintf("CREATE TABLE %s (", pq.QuoteIdentifier(table.Name)))

	for i, column := range table.Columns {
		comma := ","
		if i == len(table.Columns)-1 && len(constraints) == 0 {
			comma = ""
		}
		lines = append(lines, fmt.Sprintf("  %s %s%s", pq.QuoteIdentifier(column.Name), FormatColumnType(column), comma))
	}

	for i, c := range constraints {
		comma := ","
		if i == len(constraints)-1 {
			comma = ""
		}
		lines = append(lines, c+comma)
	}

	lines = append(lines, ")")
	return strings.Join(lines, "\n")
}

func DropTableSQL(tableName string) string {
	return "DROP TABLE IF EXISTS " + pq.QuoteIdentifier(tableName)
}

// FormatColumnType maps AUTO_INCREMENT integers onto SERIAL and enum columns
// onto a CHECK constraint.
func FormatColumnType(column types.SchemaColumn) string {
	var parts []string

	columnType := column.Type
	if column.IsAutoIncrement {
		switch strings.ToUpper(column.Type) {
		case "BIGINT":
			columnType = "BIGSERIAL"
		default:
			columnType = "SERIAL"
		}
	}
	parts = append(parts, columnType)

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
		parts = append(parts, checkIn(column.Name, column.EnumValues))
	}

	return strings.Join(parts, " ")
}

func checkIn(name string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = pq.QuoteLiteral(v)
	}
	return fmt.Sprintf("CHECK (%s IN (%s))", pq.QuoteIdentifier(name), strings.Join(quoted, ", "))
}
