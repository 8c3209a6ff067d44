package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/types"
)

const (
	defaultPort     = "5432"
	defaultDatabase = "postgres"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Adapter struct {
	pool      *pgxpool.Pool
	tx        pgx.Tx
	qb        squirrel.StatementBuilderType
	info      common.ConnectionInfo
	currentDB string
	log       *zap.Logger
}

func New(log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		qb:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		log: log.Named("postgres"),
	}
}

func (p *Adapter) Connect(ctx context.Context, info common.ConnectionInfo) error {
	p.info = info
	p.currentDB = info.Database
	return p.open(ctx, info.Database)
}

// ConnectionURL renders info as a postgres:// URL. An empty database selects
// the maintenance database so discovery can run before a target is chosen.
func ConnectionURL(info common.ConnectionInfo, database string) string {
	if database == "" {
		database = defaultDatabase
	}
	port := info.Port
	if port == "" {
		port = defaultPort
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(info.Host, port),
		Path:   "/" + database,
	}
	if info.Password != "" {
		u.User = url.UserPassword(info.User, info.Password)
	} else if info.User != "" {
		u.User = url.User(info.User)
	}
	return u.String()
}

func (p *Adapter) open(ctx context.Context, database string) error {
	config, err := pgxpool.ParseConfig(ConnectionURL(p.info, database))
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	config.MaxConns = 1
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to connect to PostgreSQL at %s: %w", config.ConnConfig.Host, err)
	}

	p.log.Debug("connected", zap.String("host", config.ConnConfig.Host), zap.String("database", config.ConnConfig.Database))
	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Adapter) conn() querier {
	if p.tx != nil {
		return p.tx
	}
	return p.pool
}

func (p *Adapter) exec(ctx context.Context, query string, args ...interface{}) error {
	p.log.Debug("exec", zap.String("sql", query), zap.Int("args", len(args)))
	_, err := p.conn().Exec(ctx, query, args...)
	return err
}

func (p *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	result, err := p.ExecuteQuery(ctx, "SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY oid")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		names = append(names, fmt.Sprintf("%v", row["datname"]))
	}
	return names, nil
}

func (p *Adapter) DatabaseExists(ctx context.Context, name string) (bool, error) {
	result, err := p.ExecuteQuery(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", name)
	if err != nil {
		return false, err
	}
	return len(result.Rows) > 0, nil
}

func (p *Adapter) CreateDatabase(ctx context.Context, name string) error {
	if err := p.exec(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// UseDatabase reconnects, since a PostgreSQL session is bound to one database.
func (p *Adapter) UseDatabase(ctx context.Context, name string) error {
	if p.currentDB == name {
		return nil
	}
	if p.tx != nil {
		return fmt.Errorf("cannot switch to database %s inside a transaction", name)
	}

	if p.pool != nil {
		p.pool.Close()
	}
	if err := p.open(ctx, name); err != nil {
		return fmt.Errorf("failed to switch to database %s: %w", name, err)
	}
	p.currentDB = name
	return nil
}

func (p *Adapter) CurrentDatabase() string {
	return p.currentDB
}

func (p *Adapter) DropTable(ctx context.Context, tableName string) error {
	return p.exec(ctx, DropTableSQL(tableName))
}

func (p *Adapter) CreateTable(ctx context.Context, table types.SchemaTable) error {
	return p.exec(ctx, p.GenerateCreateTableSQL(table))
}

// InsertRows uses RETURNING so generated keys come back in row order.
func (p *Adapter) InsertRows(ctx context.Context, spec common.InsertSpec) ([]int64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(spec.Rows) == 0 {
		return nil, nil
	}

	columns := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		columns[i] = pq.QuoteIdentifier(c)
	}

	query := p.qb.Insert(pq.QuoteIdentifier(spec.Table)).Columns(columns...)
	for _, row := range spec.Rows {
		query = query.Values(row...)
	}
	if spec.PrimaryKey != "" {
		query = query.Suffix("RETURNING " + pq.QuoteIdentifier(spec.PrimaryKey))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert for %s: %w", spec.Table, err)
	}

	if spec.PrimaryKey == "" {
		return nil, p.exec(ctx, sqlStr, args...)
	}

	p.log.Debug("insert", zap.String("sql", sqlStr), zap.Int("args", len(args)))
	rows, err := p.conn().Query(ctx, sqlStr, args...)
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

func (p *Adapter) ExecuteQuery(ctx context.Context, query string, args ...interface{}) (*common.QueryResult, error) {
	p.log.Debug("query", zap.String("sql", query), zap.Int("args", len(args)))

	rows, err := p.conn().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	fieldDescriptions := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescriptions))
	for i, fd := range fieldDescriptions {
		columns[i] = fd.Name
	}

	results := []map[string]interface{}{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = common.NormalizeValue(values[i])
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &common.QueryResult{Columns: columns, Rows: results}, nil
}

func (p *Adapter) Begin(ctx context.Context) error {
	if p.tx != nil {
		return fmt.Errorf("transaction already in progress")
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	p.tx = tx
	return nil
}

func (p *Adapter) Commit(ctx context.Context) error {
	if p.tx == nil {
		return fmt.Errorf("no transaction in progress")
	}
	err := p.tx.Commit(ctx)
	p.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (p *Adapter) Rollback(ctx context.Context) error {
	if p.tx == nil {
		return nil
	}
	err := p.tx.Rollback(ctx)
	p.tx = nil
	return err
}
