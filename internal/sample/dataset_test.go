package sample

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultDataset(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)

	assert.Len(t, ds.Customers, 5)
	assert.Len(t, ds.Products, 5)
	assert.Len(t, ds.Orders, 6)

	assert.Equal(t, Customer{FirstName: "John", LastName: "Doe", Email: "john.doe@example.com"}, ds.Customers[0])
	assert.Equal(t, "Smart Watch", ds.Products[4].Name)
	assert.Equal(t, Money(19999), ds.Products[4].Price)
	assert.EqualValues(t, 60, ds.Products[4].StockQuantity)

	last := ds.Orders[5]
	assert.Equal(t, "john.doe@example.com", last.Customer)
	assert.Equal(t, "499.99", last.TotalAmount.String())
	assert.Equal(t, "shipped", last.Status)

	var johnOrders int
	for _, o := range ds.Orders {
		if o.Customer == ds.Customers[0].Email {
			johnOrders++
		}
	}
	assert.Equal(t, 2, johnOrders)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	ds, err := Load("")
	require.NoError(t, err)
	assert.Len(t, ds.Orders, 6)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	content := `
customers:
  - {first_name: Ada, last_name: Lovelace, email: ada@example.com}
products:
  - {name: Engine, price: 10.5, stock_quantity: 1}
orders:
  - {customer: ADA@example.com, total_amount: 10.50, status: pending}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Money(1050), ds.Products[0].Price)
	assert.Equal(t, Money(1050), ds.Orders[0].TotalAmount)
}

func TestValidateRejectsBadData(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown customer",
			yaml:    "customers: [{first_name: A, last_name: B, email: a@b.c}]\norders: [{customer: x@y.z, total_amount: 1}]",
			wantErr: "unknown customer",
		},
		{
			name:    "bad status",
			yaml:    "customers: [{first_name: A, last_name: B, email: a@b.c}]\norders: [{customer: a@b.c, total_amount: 1, status: lost}]",
			wantErr: "must be one of",
		},
		{
			name:    "duplicate email",
			yaml:    "customers: [{first_name: A, last_name: B, email: a@b.c}, {first_name: C, last_name: D, email: A@b.c}]",
			wantErr: "duplicate email",
		},
		{
			name:    "too many decimals",
			yaml:    "customers: [{first_name: A, last_name: B, email: a@b.c}]\nproducts: [{name: X, price: 1.999}]",
			wantErr: "more than two decimal places",
		},
		{
			name:    "no customers",
			yaml:    "products: []",
			wantErr: "no customers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{"1299.99", 129999},
		{"699.98", 69998},
		{"0", 0},
		{"5.5", 550},
		{"-3.25", -325},
		{"99999999.99", 9999999999},
		{"-99999999.99", -9999999999},
		{"0012.50", 1250},
	}
	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "abc", "1.", ".5", "1.234", "100000000.00", "1e3",
		"184467440737095517.00", "-184467440737095517.00", "99999999999999999999999.99", "1.2.3", "--1"} {
		_, err := ParseMoney(bad)
		assert.Error(t, err, bad)
	}
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "1299.99", Money(129999).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-1.50", Money(-150).String())
	assert.EqualValues(t, "249.99", Money(24999).Decimal())

	out, err := yaml.Marshal(struct {
		Price Money `yaml:"price"`
	}{Price: 69998})
	require.NoError(t, err)
	assert.Equal(t, "price: \"699.98\"\n", string(out))
}
