package common

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

type QueryResult struct {
	Columns []string
	Rows    []map[string]interface{}
}

// ConnectionInfo carries the coordinates of a direct connection. Database may
// be empty to connect to the server without selecting a database.
type ConnectionInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Charset  string
}

// Decimal is a fixed-point literal such as "1299.99". Adapters bind it as
// text so the server performs the exact conversion.
type Decimal string

func (d Decimal) Value() (driver.Value, error) {
	return string(d), nil
}

// InsertSpec describes one multi-row insert. Rows are positional against Columns.
type InsertSpec struct {
	Table      string
	PrimaryKey string
	Columns    []string
	Rows       [][]interface{}
}

// Validate rejects specs whose rows do not line up with the column list.
func (s InsertSpec) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("insert into %s has no columns", s.Table)
	}
	for i, row := range s.Rows {
		if len(row) != len(s.Columns) {
			return fmt.Errorf("insert into %s: row %d has %d values, expected %d",
				s.Table, i+1, len(row), len(s.Columns))
		}
	}
	return nil
}

// SQLConn is satisfied by both *sql.DB and *sql.Tx.
type SQLConn interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// ScanRows drains rows into a QueryResult, converting driver byte slices and
// timestamps to strings.
func ScanRows(rows *sql.Rows) (*QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = NormalizeValue(values[i])
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &QueryResult{Columns: columns, Rows: results}, nil
}

// NormalizeValue maps driver values onto the small set of types the display
// layer understands: string, int64, float64, bool and nil.
func NormalizeValue(val interface{}) interface{} {
	switch v := val.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(timestampLayout)
	case driver.Valuer:
		inner, err := v.Value()
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return NormalizeValue(inner)
	default:
		return v
	}
}

// QuoteBacktick quotes a MySQL identifier.
func QuoteBacktick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// SequentialIDs expands a first generated key into count consecutive keys,
// the allocation MySQL and SQLite use for a single multi-row insert.
func SequentialIDs(first int64, count int) []int64 {
	ids := make([]int64, count)
	for i := range ids {
		ids[i] = first + int64(i)
	}
	return ids
}
