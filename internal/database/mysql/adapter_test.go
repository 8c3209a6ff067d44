package mysql

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/schema"
)

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db, nil), mock
}

func TestInsertRowsReturnsConsecutiveKeys(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `customers` (first_name,last_name,email) VALUES (?,?,?),(?,?,?)")).
		WithArgs("John", "Doe", "john.doe@example.com", "Jane", "Smith", "jane.smith@example.com").
		WillReturnResult(sqlmock.NewResult(7, 2))

	ids, err := a.InsertRows(context.Background(), common.InsertSpec{
		Table:      "customers",
		PrimaryKey: "customer_id",
		Columns:    []string{"first_name", "last_name", "email"},
		Rows: [][]interface{}{
			{"John", "Doe", "john.doe@example.com"},
			{"Jane", "Smith", "jane.smith@example.com"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRowsShortWrite(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectExec("INSERT INTO `products`").WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := a.InsertRows(context.Background(), common.InsertSpec{
		Table:   "products",
		Columns: []string{"product_name"},
		Rows:    [][]interface{}{{"Laptop"}, {"Tablet"}},
	})
	assert.ErrorContains(t, err, "affected 1 rows, expected 2")
}

func TestInsertRowsRejectsRaggedRows(t *testing.T) {
	a, _ := newMockAdapter(t)

	_, err := a.InsertRows(context.Background(), common.InsertSpec{
		Table:   "products",
		Columns: []string{"product_name", "price"},
		Rows:    [][]interface{}{{"Laptop"}},
	})
	assert.ErrorContains(t, err, "row 1 has 1 values, expected 2")
}

func TestDatabaseDiscovery(t *testing.T) {
	a, mock := newMockAdapter(t)
	ctx := context.Background()

	mock.ExpectQuery("SHOW DATABASES").
		WillReturnRows(sqlmock.NewRows([]string{"Database"}).
			AddRow("information_schema").AddRow("shop").AddRow("test"))
	names, err := a.ListDatabases(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"information_schema", "shop", "test"}, names)

	mock.ExpectQuery(regexp.QuoteMeta("SHOW DATABASES LIKE ?")).WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"Database (shop)"}).AddRow("shop"))
	exists, err := a.DatabaseExists(ctx, "shop")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SHOW DATABASES LIKE ?")).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"Database (missing)"}))
	exists, err = a.DatabaseExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	mock.ExpectExec(regexp.QuoteMeta("CREATE DATABASE `mcpdemo_testdb`")).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, a.CreateDatabase(ctx, "mcpdemo_testdb"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDatabaseError(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectExec("CREATE DATABASE").WillReturnError(errors.New("access denied"))
	err := a.CreateDatabase(context.Background(), "shop")
	assert.ErrorContains(t, err, "failed to create database shop: access denied")
}

func TestDropTableIsConditional(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS `orders`")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, a.DropTable(context.Background(), "orders"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRoutesStatements(t *testing.T) {
	a, mock := newMockAdapter(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `customers`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	require.NoError(t, a.Begin(ctx))
	assert.Error(t, a.Begin(ctx), "nested begin must fail")

	_, err := a.InsertRows(ctx, common.InsertSpec{
		Table:   "customers",
		Columns: []string{"email"},
		Rows:    [][]interface{}{{"john.doe@example.com"}},
	})
	require.NoError(t, err)
	require.NoError(t, a.Rollback(ctx))
	assert.ErrorContains(t, a.Commit(ctx), "no transaction in progress")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteQueryConvertsBytes(t *testing.T) {
	a, mock := newMockAdapter(t)

	mock.ExpectQuery("SELECT \\* FROM customers").
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "email"}).
			AddRow([]byte("1"), []byte("john.doe@example.com")))

	result, err := a.ExecuteQuery(context.Background(), "SELECT * FROM customers LIMIT 5")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "1", result.Rows[0]["customer_id"])
	assert.Equal(t, "john.doe@example.com", result.Rows[0]["email"])
}

func TestCreateTableSQL(t *testing.T) {
	orders, ok := schema.Lookup(schema.Tables(), schema.Orders)
	require.True(t, ok)

	ddl := CreateTableSQL(orders)
	assert.True(t, strings.HasPrefix(ddl, "CREATE TABLE `orders` ("))
	assert.Contains(t, ddl, "`order_id` INT AUTO_INCREMENT PRIMARY KEY,")
	assert.Contains(t, ddl, "`customer_id` INT NOT NULL,")
	assert.Contains(t, ddl, "`order_date` TIMESTAMP DEFAULT CURRENT_TIMESTAMP,")
	assert.Contains(t, ddl, "`total_amount` DECIMAL(10, 2) NOT NULL,")
	assert.Contains(t, ddl, "`status` ENUM('pending', 'processing', 'shipped', 'delivered', 'cancelled') DEFAULT 'pending',")
	assert.Contains(t, ddl, "FOREIGN KEY (`customer_id`) REFERENCES `customers`(`customer_id`)")

	customers, ok := schema.Lookup(schema.Tables(), schema.Customers)
	require.True(t, ok)
	assert.Contains(t, CreateTableSQL(customers), "`email` VARCHAR(100) UNIQUE NOT NULL,")
}

func TestHostPort(t *testing.T) {
	assert.Equal(t, "db.example.com:3306", hostPort("db.example.com", ""))
	assert.Equal(t, "db.example.com:3307", hostPort("db.example.com:3307", ""))
	assert.Equal(t, "db.example.com:3310", hostPort("db.example.com", "3310"))
}
