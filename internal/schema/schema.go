package schema

import (
	"fmt"
	"regexp"

	"github.com/Rana718/schemaseed/internal/types"
)

const (
	Customers = "customers"
	Products  = "products"
	Orders    = "orders"
)

// OrderStatuses is the closed set accepted by orders.status, in declaration order.
var OrderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier reports whether name can be interpolated into SQL as a
// table, column or database name.
func IsValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// Tables returns the sample schema in declaration order.
func Tables() []types.SchemaTable {
	return []types.SchemaTable{
		{
			Name:       Customers,
			PrimaryKey: "customer_id",
			Columns: []types.SchemaColumn{
				{Name: "customer_id", Type: "INT", IsPrimary: true, IsAutoIncrement: true},
				{Name: "first_name", Type: "VARCHAR(50)"},
				{Name: "last_name", Type: "VARCHAR(50)"},
				{Name: "email", Type: "VARCHAR(100)", IsUnique: true},
				{Name: "created_at", Type: "TIMESTAMP", Nullable: true, Default: "CURRENT_TIMESTAMP"},
			},
		},
		{
			Name:       Products,
			PrimaryKey: "product_id",
			Columns: []types.SchemaColumn{
				{Name: "product_id", Type: "INT", IsPrimary: true, IsAutoIncrement: true},
				{Name: "product_name", Type: "VARCHAR(100)"},
				{Name: "description", Type: "TEXT", Nullable: true},
				{Name: "price", Type: "DECIMAL(10, 2)"},
				{Name: "stock_quantity", Type: "INT", Default: "0"},
			},
		},
		{
			Name:       Orders,
			PrimaryKey: "order_id",
			Columns: []types.SchemaColumn{
				{Name: "order_id", Type: "INT", IsPrimary: true, IsAutoIncrement: true},
				{Name: "customer_id", Type: "INT", ForeignKeyTable: Customers, ForeignKeyColumn: "customer_id"},
				{Name: "order_date", Type: "TIMESTAMP", Nullable: true, Default: "CURRENT_TIMESTAMP"},
				{Name: "total_amount", Type: "DECIMAL(10, 2)"},
				{Name: "status", Type: "VARCHAR(20)", Nullable: true, Default: "'pending'", EnumValues: OrderStatuses},
			},
		},
	}
}

// Validate checks identifiers and that every foreign key points at a declared table.
func Validate(tables []types.SchemaTable) error {
	declared := make(map[string]bool, len(tables))
	for _, table := range tables {
		if !IsValidIdentifier(table.Name) {
			return fmt.Errorf("invalid table name: %s", table.Name)
		}
		declared[table.Name] = true
	}

	for _, table := range tables {
		for _, col := range table.Columns {
			if !IsValidIdentifier(col.Name) {
				return fmt.Errorf("invalid column name in table %s: %s", table.Name, col.Name)
			}
			if col.ForeignKeyTable != "" && !declared[col.ForeignKeyTable] {
				return fmt.Errorf("table %s has FK column %s referencing non-existent table %s",
					table.Name, col.Name, col.ForeignKeyTable)
			}
		}
	}
	return nil
}

// Lookup finds a table by name.
func Lookup(tables []types.SchemaTable, name string) (types.SchemaTable, bool) {
	for _, table := range tables {
		if table.Name == name {
			return table, true
		}
	}
	return types.SchemaTable{}, false
}
