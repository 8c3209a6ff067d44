package dataapi

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rdsdata/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/schema"
)

type fakeAPI struct {
	statements []*rdsdata.ExecuteStatementInput
	batches    []*rdsdata.BatchExecuteStatementInput
	begun      []*rdsdata.BeginTransactionInput
	committed  []string
	rolledBack []string

	execute func(in *rdsdata.ExecuteStatementInput) (*rdsdata.ExecuteStatementOutput, error)
	batch   func(in *rdsdata.BatchExecuteStatementInput) (*rdsdata.BatchExecuteStatementOutput, error)
}

func (f *fakeAPI) ExecuteStatement(ctx context.Context, in *rdsdata.ExecuteStatementInput, _ ...func(*rdsdata.Options)) (*rdsdata.ExecuteStatementOutput, error) {
	f.statements = append(f.statements, in)
	if f.execute != nil {
		return f.execute(in)
	}
	return &rdsdata.ExecuteStatementOutput{}, nil
}

func (f *fakeAPI) BatchExecuteStatement(ctx context.Context, in *rdsdata.BatchExecuteStatementInput, _ ...func(*rdsdata.Options)) (*rdsdata.BatchExecuteStatementOutput, error) {
	f.batches = append(f.batches, in)
	if f.batch != nil {
		return f.batch(in)
	}
	return &rdsdata.BatchExecuteStatementOutput{}, nil
}

func (f *fakeAPI) BeginTransaction(ctx context.Context, in *rdsdata.BeginTransactionInput, _ ...func(*rdsdata.Options)) (*rdsdata.BeginTransactionOutput, error) {
	f.begun = append(f.begun, in)
	return &rdsdata.BeginTransactionOutput{TransactionId: aws.String(fmt.Sprintf("tx-%d", len(f.begun)))}, nil
}

func (f *fakeAPI) CommitTransaction(ctx context.Context, in *rdsdata.CommitTransactionInput, _ ...func(*rdsdata.Options)) (*rdsdata.CommitTransactionOutput, error) {
	f.committed = append(f.committed, aws.ToString(in.TransactionId))
	return &rdsdata.CommitTransactionOutput{}, nil
}

func (f *fakeAPI) RollbackTransaction(ctx context.Context, in *rdsdata.RollbackTransactionInput, _ ...func(*rdsdata.Options)) (*rdsdata.RollbackTransactionOutput, error) {
	f.rolledBack = append(f.rolledBack, aws.ToString(in.TransactionId))
	return &rdsdata.RollbackTransactionOutput{}, nil
}

func newTestAdapter(t *testing.T, api *fakeAPI, engine string) *Adapter {
	a := NewWithClient(api, Options{
		ResourceARN: "arn:aws:rds:us-east-1:123456789012:cluster:demo",
		SecretARN:   "arn:aws:secretsmanager:us-east-1:123456789012:secret:demo",
		Region:      "us-east-1",
		Engine:      engine,
	})
	require.NoError(t, a.Connect(context.Background(), common.ConnectionInfo{}))
	return a
}

func strField(s string) rdstypes.Field { return &rdstypes.FieldMemberStringValue{Value: s} }
func longField(n int64) rdstypes.Field { return &rdstypes.FieldMemberLongValue{Value: n} }

func TestListDatabases(t *testing.T) {
	api := &fakeAPI{execute: func(in *rdsdata.ExecuteStatementInput) (*rdsdata.ExecuteStatementOutput, error) {
		return &rdsdata.ExecuteStatementOutput{Records: [][]rdstypes.Field{
			{strField("information_schema")}, {strField("shop")}, {strField("test")},
		}}, nil
	}}
	a := newTestAdapter(t, api, EngineMySQL)

	names, err := a.ListDatabases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"information_schema", "shop", "test"}, names)

	require.Len(t, api.statements, 1)
	in := api.statements[0]
	assert.Equal(t, "SHOW DATABASES", aws.ToString(in.Sql))
	assert.Nil(t, in.Database, "no database is named before one is selected")
	assert.Equal(t, "arn:aws:rds:us-east-1:123456789012:cluster:demo", aws.ToString(in.ResourceArn))
}

func TestStatementsCarryDatabaseAndTransaction(t *testing.T) {
	api := &fakeAPI{}
	a := newTestAdapter(t, api, EngineMySQL)
	ctx := context.Background()

	require.NoError(t, a.UseDatabase(ctx, "shop"))
	require.NoError(t, a.DropTable(ctx, schema.Orders))
	require.NoError(t, a.Begin(ctx))
	assert.Error(t, a.UseDatabase(ctx, "other"))
	_, err := a.ExecuteQuery(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, a.Commit(ctx))

	require.Len(t, api.statements, 2)
	assert.Equal(t, "DROP TABLE IF EXISTS `orders`", aws.ToString(api.statements[0].Sql))
	assert.Equal(t, "shop", aws.ToString(api.statements[0].Database))
	assert.Nil(t, api.statements[0].TransactionId)

	assert.Equal(t, "tx-1", aws.ToString(api.statements[1].TransactionId))
	assert.True(t, api.statements[1].IncludeResultMetadata)

	require.Len(t, api.begun, 1)
	assert.Equal(t, "shop", aws.ToString(api.begun[0].Database))
	assert.Equal(t, []string{"tx-1"}, api.committed)
	assert.ErrorContains(t, a.Commit(ctx), "no transaction in progress")
}

func TestExecuteQueryMapsColumns(t *testing.T) {
	api := &fakeAPI{execute: func(in *rdsdata.ExecuteStatementInput) (*rdsdata.ExecuteStatementOutput, error) {
		return &rdsdata.ExecuteStatementOutput{
			ColumnMetadata: []rdstypes.ColumnMetadata{
				{Name: aws.String("product_id"), Label: aws.String("product_id")},
				{Name: aws.String("price")},
				{Name: aws.String("description")},
			},
			Records: [][]rdstypes.Field{
				{longField(1), strField("1299.99"), &rdstypes.FieldMemberIsNull{Value: true}},
			},
		}, nil
	}}
	a := newTestAdapter(t, api, EngineMySQL)

	result, err := a.ExecuteQuery(context.Background(), "SELECT product_id, price, description FROM products WHERE stock_quantity > ? AND product_name <> '?'", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"product_id", "price", "description"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(1), result.Rows[0]["product_id"])
	assert.Equal(t, "1299.99", result.Rows[0]["price"])
	assert.Nil(t, result.Rows[0]["description"])

	in := api.statements[0]
	assert.Equal(t, "SELECT product_id, price, description FROM products WHERE stock_quantity > :p1 AND product_name <> '?'", aws.ToString(in.Sql))
	require.Len(t, in.Parameters, 1)
	assert.Equal(t, "p1", aws.ToString(in.Parameters[0].Name))
	assert.Equal(t, &rdstypes.FieldMemberLongValue{Value: 10}, in.Parameters[0].Value)
}

func TestInsertRowsUsesGeneratedFields(t *testing.T) {
	api := &fakeAPI{batch: func(in *rdsdata.BatchExecuteStatementInput) (*rdsdata.BatchExecuteStatementOutput, error) {
		results := make([]rdstypes.UpdateResult, len(in.ParameterSets))
		for i := range results {
			results[i] = rdstypes.UpdateResult{GeneratedFields: []rdstypes.Field{longField(int64(11 + i))}}
		}
		return &rdsdata.BatchExecuteStatementOutput{UpdateResults: results}, nil
	}}
	a := newTestAdapter(t, api, EngineMySQL)

	ids, err := a.InsertRows(context.Background(), common.InsertSpec{
		Table:      schema.Products,
		PrimaryKey: "product_id",
		Columns:    []string{"product_name", "price", "stock_quantity"},
		Rows: [][]interface{}{
			{"Laptop", common.Decimal("1299.99"), int64(50)},
			{"Tablet", common.Decimal("499.99"), int64(30)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, ids)

	require.Len(t, api.batches, 1)
	in := api.batches[0]
	assert.Equal(t, "INSERT INTO `products` (`product_name`,`price`,`stock_quantity`) VALUES (:p1,:p2,:p3)", aws.ToString(in.Sql))
	require.Len(t, in.ParameterSets, 2)

	price := in.ParameterSets[1][1]
	assert.Equal(t, "p2", aws.ToString(price.Name))
	assert.Equal(t, rdstypes.TypeHintDecimal, price.TypeHint)
	assert.Equal(t, &rdstypes.FieldMemberStringValue{Value: "499.99"}, price.Value)
	assert.Empty(t, api.statements, "no key lookup when the service reports generated fields")
}

func TestInsertRowsFallsBackToKeyLookup(t *testing.T) {
	api := &fakeAPI{
		batch: func(in *rdsdata.BatchExecuteStatementInput) (*rdsdata.BatchExecuteStatementOutput, error) {
			return &rdsdata.BatchExecuteStatementOutput{UpdateResults: make([]rdstypes.UpdateResult, len(in.ParameterSets))}, nil
		},
		execute: func(in *rdsdata.ExecuteStatementInput) (*rdsdata.ExecuteStatementOutput, error) {
			return &rdsdata.ExecuteStatementOutput{Records: [][]rdstypes.Field{
				{longField(9)}, {longField(8)}, {longField(7)},
			}}, nil
		},
	}
	a := newTestAdapter(t, api, EnginePostgres)

	ids, err := a.InsertRows(context.Background(), common.InsertSpec{
		Table:      schema.Customers,
		PrimaryKey: "customer_id",
		Columns:    []string{"email"},
		Rows:       [][]interface{}{{"a@example.com"}, {"b@example.com"}, {"c@example.com"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8, 9}, ids)

	assert.Equal(t, `INSERT INTO "customers" ("email") VALUES (:p1)`, aws.ToString(api.batches[0].Sql))
	require.Len(t, api.statements, 1)
	assert.Equal(t, `SELECT "customer_id" FROM "customers" ORDER BY "customer_id" DESC LIMIT 3`, aws.ToString(api.statements[0].Sql))
}

func TestEngineSelectsDialect(t *testing.T) {
	tables := schema.Tables()
	orders, ok := schema.Lookup(tables, schema.Orders)
	require.True(t, ok)

	mysqlAdapter := newTestAdapter(t, &fakeAPI{}, EngineMySQL)
	assert.Contains(t, mysqlAdapter.GenerateCreateTableSQL(orders), "ENGINE=InnoDB")

	pgAdapter := newTestAdapter(t, &fakeAPI{}, EnginePostgres)
	assert.Contains(t, pgAdapter.GenerateCreateTableSQL(orders), `"order_id" SERIAL PRIMARY KEY`)
}

func TestCreateDatabaseWrapsServiceError(t *testing.T) {
	api := &fakeAPI{execute: func(in *rdsdata.ExecuteStatementInput) (*rdsdata.ExecuteStatementOutput, error) {
		return nil, &rdstypes.DatabaseErrorException{Message: aws.String("Access denied for user")}
	}}
	a := newTestAdapter(t, api, EngineMySQL)

	err := a.CreateDatabase(context.Background(), "mcpdemo_testdb")
	require.Error(t, err)
	assert.Equal(t, "CREATE DATABASE `mcpdemo_testdb`", aws.ToString(api.statements[0].Sql))

	failure := Classify(err)
	assert.Equal(t, ClassDatabaseError, failure.Class)
	assert.Equal(t, "DatabaseErrorException", failure.Code)
	assert.Equal(t, "Access denied for user", failure.Message)
}

func TestClassify(t *testing.T) {
	bad := Classify(fmt.Errorf("wrapped: %w", &rdstypes.BadRequestException{Message: aws.String("Database returned SQL exception")}))
	assert.Equal(t, ClassBadRequest, bad.Class)
	assert.Equal(t, "BadRequestException", bad.Code)
	assert.Equal(t, "Database returned SQL exception", bad.Message)

	svc := Classify(&smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"})
	assert.Equal(t, ClassService, svc.Class)
	assert.Equal(t, "ThrottlingException", svc.Code)

	other := Classify(errors.New("dial tcp: timeout"))
	assert.Equal(t, ClassOther, other.Class)
	assert.Equal(t, "dial tcp: timeout", other.Message)

	assert.Equal(t, Failure{}, Classify(nil))
}

func TestToParameter(t *testing.T) {
	p, err := toParameter("p1", nil)
	require.NoError(t, err)
	assert.Equal(t, &rdstypes.FieldMemberIsNull{Value: true}, p.Value)

	p, err = toParameter("p1", 3)
	require.NoError(t, err)
	assert.Equal(t, &rdstypes.FieldMemberLongValue{Value: 3}, p.Value)

	p, err = toParameter("p1", true)
	require.NoError(t, err)
	assert.Equal(t, &rdstypes.FieldMemberBooleanValue{Value: true}, p.Value)

	_, err = toParameter("p1", struct{}{})
	assert.ErrorContains(t, err, "unsupported parameter type")
}
