package database

import (
	"context"

	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/types"
)

// Adapter is the statement executor the seeder is written against. Each
// transport (RDS Data API, MySQL, PostgreSQL, SQLite) provides one.
type Adapter interface {
	Connect(ctx context.Context, info common.ConnectionInfo) error
	Close() error
	Ping(ctx context.Context) error

	// Database discovery
	ListDatabases(ctx context.Context) ([]string, error)
	DatabaseExists(ctx context.Context, name string) (bool, error)
	CreateDatabase(ctx context.Context, name string) error
	UseDatabase(ctx context.Context, name string) error
	CurrentDatabase() string

	// Schema operations
	DropTable(ctx context.Context, tableName string) error
	CreateTable(ctx context.Context, table types.SchemaTable) error
	GenerateCreateTableSQL(table types.SchemaTable) string

	// Data operations
	InsertRows(ctx context.Context, spec common.InsertSpec) ([]int64, error)
	ExecuteQuery(ctx context.Context, query string, args ...interface{}) (*common.QueryResult, error)

	// Transaction control for the insert phase
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
