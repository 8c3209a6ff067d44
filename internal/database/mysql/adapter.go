package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/types"
)

const defaultPort = "3306"

type Adapter struct {
	db        *sql.DB
	tx        *sql.Tx
	qb        squirrel.StatementBuilderType
	cfg       *mysql.Config
	currentDB string
	log       *zap.Logger
}

func New(log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		qb:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log.Named("mysql"),
	}
}

// NewWithDB wraps an already opened handle. UseDatabase is unavailable.
func NewWithDB(db *sql.DB, log *zap.Logger) *Adapter {
	m := New(log)
	m.db = db
	return m
}

func (m *Adapter) Connect(ctx context.Context, info common.ConnectionInfo) error {
	cfg := mysql.NewConfig()
	cfg.User = info.User
	cfg.Passwd = info.Password
	cfg.Net = "tcp"
	cfg.Addr = hostPort(info.Host, info.Port)
	cfg.DBName = info.Database

	charset := info.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	cfg.Params = map[string]string{"charset": charset}

	m.cfg = cfg
	m.currentDB = info.Database
	return m.open(ctx)
}

func (m *Adapter) open(ctx context.Context) error {
	connector, err := mysql.NewConnector(m.cfg)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(15 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to MySQL at %s: %w", m.cfg.Addr, err)
	}

	m.log.Debug("connected", zap.String("addr", m.cfg.Addr), zap.String("database", m.cfg.DBName))
	m.db = db
	return nil
}

func hostPort(host, port string) string {
	if port == "" {
		if _, _, err := net.SplitHostPort(host); err == nil {
			return host
		}
		port = defaultPort
	}
	return net.JoinHostPort(host, port)
}

func (m *Adapter) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *Adapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *Adapter) conn() common.SQLConn {
	if m.tx != nil {
		return m.tx
	}
	return m.db
}

func (m *Adapter) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	m.log.Debug("exec", zap.String("sql", query), zap.Int("args", len(args)))
	return m.conn().ExecContext(ctx, query, args...)
}

func (m *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	result, err := m.ExecuteQuery(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, err
	}
	return firstColumn(result), nil
}

// DatabaseExists matches name as a LIKE pattern against the catalog.
func (m *Adapter) DatabaseExists(ctx context.Context, name string) (bool, error) {
	result, err := m.ExecuteQuery(ctx, "SHOW DATABASES LIKE ?", name)
	if err != nil {
		return false, err
	}
	return len(result.Rows) > 0, nil
}

func (m *Adapter) CreateDatabase(ctx context.Context, name string) error {
	if _, err := m.exec(ctx, "CREATE DATABASE "+common.QuoteBacktick(name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// UseDatabase reconnects with name as the default schema so every pooled
// connection targets it.
func (m *Adapter) UseDatabase(ctx context.Context, name string) error {
	if m.currentDB == name {
		return nil
	}
	if m.cfg == nil {
		return fmt.Errorf("cannot switch to database %s: adapter was not opened with Connect", name)
	}

	if m.db != nil {
		m.db.Close()
	}

	m.cfg.DBName = name
	if err := m.open(ctx); err != nil {
		return fmt.Errorf("failed to switch to database %s: %w", name, err)
	}
	m.currentDB = name
	return nil
}

func (m *Adapter) CurrentDatabase() string {
	return m.currentDB
}

func (m *Adapter) DropTable(ctx context.Context, tableName string) error {
	_, err := m.exec(ctx, DropTableSQL(tableName))
	return err
}

func (m *Adapter) CreateTable(ctx context.Context, table types.SchemaTable) error {
	_, err := m.exec(ctx, m.GenerateCreateTableSQL(table))
	return err
}

// InsertRows issues one multi-row INSERT. MySQL hands out consecutive
// AUTO_INCREMENT values to a single statement and reports the first one.
func (m *Adapter) InsertRows(ctx context.Context, spec common.InsertSpec) ([]int64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(spec.Rows) == 0 {
		return nil, nil
	}

	query := m.qb.Insert(common.QuoteBacktick(spec.Table)).Columns(spec.Columns...)
	for _, row := range spec.Rows {
		query = query.Values(row...)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert for %s: %w", spec.Table, err)
	}

	res, err := m.exec(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}

	first, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read generated key for %s: %w", spec.Table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows for %s: %w", spec.Table, err)
	}
	if int(affected) != len(spec.Rows) {
		return nil, fmt.Errorf("insert into %s affected %d rows, expected %d", spec.Table, affected, len(spec.Rows))
	}

	return common.SequentialIDs(first, len(spec.Rows)), nil
}

func (m *Adapter) ExecuteQuery(ctx context.Context, query string, args ...interface{}) (*common.QueryResult, error) {
	m.log.Debug("query", zap.String("sql", query), zap.Int("args", len(args)))

	rows, err := m.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return common.ScanRows(rows)
}

func (m *Adapter) Begin(ctx context.Context) error {
	if m.tx != nil {
		return fmt.Errorf("transaction already in progress")
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	m.tx = tx
	return nil
}

func (m *Adapter) Commit(ctx context.Context) error {
	if m.tx == nil {
		return fmt.Errorf("no transaction in progress")
	}
	err := m.tx.Commit()
	m.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (m *Adapter) Rollback(ctx context.Context) error {
	if m.tx == nil {
		return nil
	}
	err := m.tx.Rollback()
	m.tx = nil
	return err
}

func firstColumn(result *common.QueryResult) []string {
	if len(result.Columns) == 0 {
		return nil
	}
	col := result.Columns[0]
	names := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		names = append(names, strings.TrimSpace(fmt.Sprintf("%v", row[col])))
	}
	return names
}
