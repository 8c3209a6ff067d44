package dataapi

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rdsdata/types"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/database/mysql"
	"github.com/Rana718/schemaseed/internal/database/postgres"
	"github.com/Rana718/schemaseed/internal/types"
)

const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// API is the subset of the rdsdata client the adapter calls.
type API interface {
	ExecuteStatement(ctx context.Context, params *rdsdata.ExecuteStatementInput, optFns ...func(*rdsdata.Options)) (*rdsdata.ExecuteStatementOutput, error)
	BatchExecuteStatement(ctx context.Context, params *rdsdata.BatchExecuteStatementInput, optFns ...func(*rdsdata.Options)) (*rdsdata.BatchExecuteStatementOutput, error)
	BeginTransaction(ctx context.Context, params *rdsdata.BeginTransactionInput, optFns ...func(*rdsdata.Options)) (*rdsdata.BeginTransactionOutput, error)
	CommitTransaction(ctx context.Context, params *rdsdata.CommitTransactionInput, optFns ...func(*rdsdata.Options)) (*rdsdata.CommitTransactionOutput, error)
	RollbackTransaction(ctx context.Context, params *rdsdata.RollbackTransactionInput, optFns ...func(*rdsdata.Options)) (*rdsdata.RollbackTransactionOutput, error)
}

type Options struct {
	ResourceARN string
	SecretARN   string
	Region      string
	Engine      string

	// Endpoint overrides the service URL, e.g. for a local emulator.
	Endpoint        string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string

	Logger *zap.Logger
}

// Adapter sends every statement through the RDS Data API. There is no session:
// the target database and transaction travel with each request.
type Adapter struct {
	client    API
	opts      Options
	qb        squirrel.StatementBuilderType
	currentDB string
	txID      string
	log       *zap.Logger
}

func New(opts Options) *Adapter {
	if opts.Engine == "" {
		opts.Engine = EngineMySQL
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		opts: opts,
		qb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log:  log.Named("dataapi"),
	}
}

// NewWithClient uses client instead of building one from the AWS config chain.
func NewWithClient(client API, opts Options) *Adapter {
	a := New(opts)
	a.client = client
	return a
}

// Connect resolves AWS configuration and builds the client. The host and
// credential fields of info are not used; Database selects the initial target.
func (a *Adapter) Connect(ctx context.Context, info common.ConnectionInfo) error {
	a.currentDB = info.Database
	if a.client != nil {
		return nil
	}

	client, err := newClient(ctx, a.opts)
	if err != nil {
		return err
	}
	a.client = client
	a.log.Debug("client ready",
		zap.String("region", a.opts.Region),
		zap.String("resource_arn", a.opts.ResourceARN),
		zap.String("engine", a.opts.Engine))
	return nil
}

func newClient(ctx context.Context, opts Options) (*rdsdata.Client, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(opts.Region),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	var clientOpts []func(*rdsdata.Options)
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *rdsdata.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		})
	}
	return rdsdata.NewFromConfig(cfg, clientOpts...), nil
}

func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.execute(ctx, "SELECT 1", nil, false)
	return err
}

func (a *Adapter) execute(ctx context.Context, sql string, args []interface{}, metadata bool) (*rdsdata.ExecuteStatementOutput, error) {
	params, err := toParameters(args)
	if err != nil {
		return nil, err
	}

	input := &rdsdata.ExecuteStatementInput{
		ResourceArn:           aws.String(a.opts.ResourceARN),
		SecretArn:             aws.String(a.opts.SecretARN),
		Sql:                   aws.String(namedPlaceholders(sql)),
		Parameters:            params,
		IncludeResultMetadata: metadata,
	}
	if a.currentDB != "" {
		input.Database = aws.String(a.currentDB)
	}
	if a.txID != "" {
		input.TransactionId = aws.String(a.txID)
	}

	a.log.Debug("execute statement",
		zap.String("sql", aws.ToString(input.Sql)),
		zap.String("database", a.currentDB),
		zap.Bool("in_transaction", a.txID != ""))
	return a.client.ExecuteStatement(ctx, input)
}

func (a *Adapter) isPostgres() bool {
	return a.opts.Engine == EnginePostgres
}

func (a *Adapter) quote(name string) string {
	if a.isPostgres() {
		return pq.QuoteIdentifier(name)
	}
	return common.QuoteBacktick(name)
}

func (a *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	query := "SHOW DATABASES"
	if a.isPostgres() {
		query = "SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY oid"
	}

	out, err := a.execute(ctx, query, nil, false)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(out.Records))
	for _, record := range out.Records {
		if len(record) == 0 {
			continue
		}
		names = append(names, fmt.Sprintf("%v", fromField(record[0])))
	}
	return names, nil
}

func (a *Adapter) DatabaseExists(ctx context.Context, name string) (bool, error) {
	query := "SELECT SCHEMA_NAME FROM information_schema.SCHEMATA WHERE SCHEMA_NAME = ?"
	if a.isPostgres() {
		query = "SELECT datname FROM pg_database WHERE datname = ?"
	}

	out, err := a.execute(ctx, query, []interface{}{name}, false)
	if err != nil {
		return false, err
	}
	return len(out.Records) > 0, nil
}

func (a *Adapter) CreateDatabase(ctx context.Context, name string) error {
	if _, err := a.execute(ctx, "CREATE DATABASE "+a.quote(name), nil, false); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// UseDatabase only changes the database named on subsequent requests.
func (a *Adapter) UseDatabase(ctx context.Context, name string) error {
	if a.txID != "" && a.currentDB != name {
		return fmt.Errorf("cannot switch to database %s inside a transaction", name)
	}
	a.currentDB = name
	return nil
}

func (a *Adapter) CurrentDatabase() string {
	return a.currentDB
}

func (a *Adapter) DropTable(ctx context.Context, tableName string) error {
	query := mysql.DropTableSQL(tableName)
	if a.isPostgres() {
		query = postgres.DropTableSQL(tableName)
	}
	_, err := a.execute(ctx, query, nil, false)
	return err
}

func (a *Adapter) CreateTable(ctx context.Context, table types.SchemaTable) error {
	_, err := a.execute(ctx, a.GenerateCreateTableSQL(table), nil, false)
	return err
}

func (a *Adapter) GenerateCreateTableSQL(table types.SchemaTable) string {
	if a.isPostgres() {
		return postgres.CreateTableSQL(table)
	}
	return mysql.CreateTableSQL(table)
}

// InsertRows runs one single-row INSERT per parameter set in a batch request.
// Generated keys come from the per-row update results when the engine reports
// them, otherwise they are read back from the highest keys in the table.
func (a *Adapter) InsertRows(ctx context.Context, spec common.InsertSpec) ([]int64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(spec.Rows) == 0 {
		return nil, nil
	}

	columns := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		columns[i] = a.quote(c)
	}
	sqlStr, _, err := a.qb.Insert(a.quote(spec.Table)).
		Columns(columns...).
		Values(spec.Rows[0]...).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert for %s: %w", spec.Table, err)
	}

	sets := make([][]rdstypes.SqlParameter, 0, len(spec.Rows))
	for i, row := range spec.Rows {
		params, err := toParameters(row)
		if err != nil {
			return nil, fmt.Errorf("insert into %s: row %d: %w", spec.Table, i+1, err)
		}
		sets = append(sets, params)
	}

	input := &rdsdata.BatchExecuteStatementInput{
		ResourceArn:   aws.String(a.opts.ResourceARN),
		SecretArn:     aws.String(a.opts.SecretARN),
		Sql:           aws.String(namedPlaceholders(sqlStr)),
		ParameterSets: sets,
	}
	if a.currentDB != "" {
		input.Database = aws.String(a.currentDB)
	}
	if a.txID != "" {
		input.TransactionId = aws.String(a.txID)
	}

	a.log.Debug("batch execute statement",
		zap.String("sql", aws.ToString(input.Sql)),
		zap.Int("rows", len(sets)))
	out, err := a.client.BatchExecuteStatement(ctx, input)
	if err != nil {
		return nil, err
	}

	if spec.PrimaryKey == "" {
		return nil, nil
	}

	if ids, ok := generatedKeys(out, len(spec.Rows)); ok {
		return ids, nil
	}
	return a.latestKeys(ctx, spec.Table, spec.PrimaryKey, len(spec.Rows))
}

func generatedKeys(out *rdsdata.BatchExecuteStatementOutput, want int) ([]int64, bool) {
	if len(out.UpdateResults) != want {
		return nil, false
	}
	ids := make([]int64, 0, want)
	for _, result := range out.UpdateResults {
		if len(result.GeneratedFields) == 0 {
			return nil, false
		}
		id, ok := fieldInt64(result.GeneratedFields[0])
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// latestKeys reads the n highest keys of table in ascending order. It is only
// accurate inside the transaction that performed the insert.
func (a *Adapter) latestKeys(ctx context.Context, table, pk string, n int) ([]int64, error) {
	query, _, err := squirrel.Select(a.quote(pk)).
		From(a.quote(table)).
		OrderBy(a.quote(pk) + " DESC").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return nil, err
	}

	out, err := a.execute(ctx, query, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read generated keys for %s: %w", table, err)
	}
	if len(out.Records) != n {
		return nil, fmt.Errorf("expected %d generated keys for %s, found %d", n, table, len(out.Records))
	}

	ids := make([]int64, n)
	for i, record := range out.Records {
		if len(record) == 0 {
			return nil, fmt.Errorf("empty key record for %s", table)
		}
		id, ok := fieldInt64(record[0])
		if !ok {
			return nil, fmt.Errorf("non-integer key in %s", table)
		}
		ids[n-1-i] = id
	}
	return ids, nil
}

func (a *Adapter) ExecuteQuery(ctx context.Context, query string, args ...interface{}) (*common.QueryResult, error) {
	out, err := a.execute(ctx, query, args, true)
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(out.ColumnMetadata))
	for i, meta := range out.ColumnMetadata {
		name := aws.ToString(meta.Label)
		if name == "" {
			name = aws.ToString(meta.Name)
		}
		columns[i] = name
	}

	rows := make([]map[string]interface{}, 0, len(out.Records))
	for _, record := range out.Records {
		row := make(map[string]interface{}, len(columns))
		for i, field := range record {
			if i >= len(columns) {
				break
			}
			row[columns[i]] = fromField(field)
		}
		rows = append(rows, row)
	}

	return &common.QueryResult{Columns: columns, Rows: rows}, nil
}

func (a *Adapter) Begin(ctx context.Context) error {
	if a.txID != "" {
		return fmt.Errorf("transaction already in progress")
	}

	input := &rdsdata.BeginTransactionInput{
		ResourceArn: aws.String(a.opts.ResourceARN),
		SecretArn:   aws.String(a.opts.SecretARN),
	}
	if a.currentDB != "" {
		input.Database = aws.String(a.currentDB)
	}

	out, err := a.client.BeginTransaction(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	a.txID = aws.ToString(out.TransactionId)
	a.log.Debug("transaction started", zap.String("transaction_id", a.txID))
	return nil
}

func (a *Adapter) Commit(ctx context.Context) error {
	if a.txID == "" {
		return fmt.Errorf("no transaction in progress")
	}
	txID := a.txID
	a.txID = ""

	_, err := a.client.CommitTransaction(ctx, &rdsdata.CommitTransactionInput{
		ResourceArn:   aws.String(a.opts.ResourceARN),
		SecretArn:     aws.String(a.opts.SecretARN),
		TransactionId: aws.String(txID),
	})
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (a *Adapter) Rollback(ctx context.Context) error {
	if a.txID == "" {
		return nil
	}
	txID := a.txID
	a.txID = ""

	_, err := a.client.RollbackTransaction(ctx, &rdsdata.RollbackTransactionInput{
		ResourceArn:   aws.String(a.opts.ResourceARN),
		SecretArn:     aws.String(a.opts.SecretARN),
		TransactionId: aws.String(txID),
	})
	return err
}

