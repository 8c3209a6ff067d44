package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/types"
)

// MemoryDatabase is the name SQLite gives a private in-memory database.
const MemoryDatabase = ":memory:"

// Adapter treats each database file as a database. Host, port and
// credentials in ConnectionInfo are ignored.
type Adapter struct {
	db          *sql.DB
	tx          *sql.Tx
	qb          squirrel.StatementBuilderType
	currentPath string
	log         *zap.Logger
}

func New(log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		qb:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log.Named("sqlite"),
	}
}

func (s *Adapter) Connect(ctx context.Context, info common.ConnectionInfo) error {
	path := info.Database
	if path == "" {
		path = MemoryDatabase
	}
	return s.open(ctx, path)
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

func (s *Adapter) open(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// A single connection keeps an in-memory database alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to open SQLite database %s: %w", path, err)
	}

	s.log.Debug("opened", zap.String("path", path))
	s.db = db
	s.currentPath = path
	return nil
}

func (s *Adapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Adapter) conn() common.SQLConn {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Adapter) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	s.log.Debug("exec", zap.String("sql", query), zap.Int("args", len(args)))
	return s.conn().ExecContext(ctx, query, args...)
}

// ListDatabases reports the files attached to the current connection.
func (s *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	result, err := s.ExecuteQuery(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		file, _ := row["file"].(string)
		if file == "" {
			file, _ = row["name"].(string)
		}
		names = append(names, file)
	}
	return names, nil
}

func (s *Adapter) DatabaseExists(ctx context.Context, name string) (bool, error) {
	if name == MemoryDatabase || name == s.currentPath {
		return true, nil
	}
	_, err := os.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat database file %s: %w", name, err)
}

// CreateDatabase is a no-op: SQLite creates the file when it is first opened.
func (s *Adapter) CreateDatabase(ctx context.Context, name string) error {
	return nil
}

func (s *Adapter) UseDatabase(ctx context.Context, name string) error {
	if s.currentPath == name {
		return nil
	}
	if s.tx != nil {
		return fmt.Errorf("cannot switch to database %s inside a transaction", name)
	}

	if s.db != nil {
		s.db.Close()
	}
	if err := s.open(ctx, name); err != nil {
		return fmt.Errorf("failed to switch to database %s: %w", name, err)
	}
	return nil
}

func (s *Adapter) CurrentDatabase() string {
	return s.currentPath
}

func (s *Adapter) DropTable(ctx context.Context, tableName string) error {
	_, err := s.exec(ctx, DropTableSQL(tableName))
	return err
}

func (s *Adapter) CreateTable(ctx context.Context, table types.SchemaTable) error {
	_, err := s.exec(ctx, s.GenerateCreateTableSQL(table))
	return err
}

func (s *Adapter) InsertRows(ctx context.Context, spec common.InsertSpec) ([]int64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(spec.Rows) == 0 {
		return nil, nil
	}

	columns := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		columns[i] = quoteIdent(c)
	}

	query := s.qb.Insert(quoteIdent(spec.Table)).Columns(columns...)
	for _, row := range spec.Rows {
		query = query.Values(row...)
	}
	if spec.PrimaryKey != "" {
		query = query.Suffix("RETURNING " + quoteIdent(spec.PrimaryKey))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert for %s: %w", spec.Table, err)
	}

	if spec.PrimaryKey == "" {
		_, err := s.exec(ctx, sqlStr, args...)
		return nil, err
	}

	s.log.Debug("insert", zap.String("sql", sqlStr), zap.Int("args", len(args)))
	rows, err := s.conn().QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0, len(spec.Rows))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to read generated key for %s: %w", spec.Table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) != len(spec.Rows) {
		return nil, fmt.Errorf("insert into %s returned %d keys, expected %d", spec.Table, len(ids), len(spec.Rows))
	}
	return ids, nil
}

func (s *Adapter) ExecuteQuery(ctx context.Context, query string, args ...interface{}) (*common.QueryResult, error) {
	s.log.Debug("query", zap.String("sql", query), zap.Int("args", len(args)))

	rows, err := s.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return common.ScanRows(rows)
}

func (s *Adapter) Begin(ctx context.Context) error {
	if s.tx != nil {
		return fmt.Errorf("transaction already in progress")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Adapter) Commit(ctx context.Context) error {
	if s.tx == nil {
		return fmt.Errorf("no transaction in progress")
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Adapter) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}
