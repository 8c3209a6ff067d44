package sample

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Rana718/schemaseed/internal/schema"
)

//go:embed dataset.yaml
var defaultDataset []byte

type Customer struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
}

type Product struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Price         Money  `yaml:"price"`
	StockQuantity int64  `yaml:"stock_quantity"`
}

// Order names its customer by email.
type Order struct {
	Customer    string `yaml:"customer"`
	TotalAmount Money  `yaml:"total_amount"`
	Status      string `yaml:"status"`
}

type Dataset struct {
	Customers []Customer `yaml:"customers"`
	Products  []Product  `yaml:"products"`
	Orders    []Order    `yaml:"orders"`
}

// Default returns the built-in dataset.
func Default() (*Dataset, error) {
	return Parse(defaultDataset)
}

// Load reads a dataset file. An empty path selects the built-in dataset.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks the rows against the schema constraints the database
// would otherwise reject mid-insert.
func (d *Dataset) Validate() error {
	if len(d.Customers) == 0 {
		return fmt.Errorf("dataset has no customers")
	}

	emails := make(map[string]bool, len(d.Customers))
	for i, c := range d.Customers {
		if c.FirstName == "" || c.LastName == "" {
			return fmt.Errorf("customer %d: first_name and last_name are required", i+1)
		}
		if !strings.Contains(c.Email, "@") {
			return fmt.Errorf("customer %d: invalid email %q", i+1, c.Email)
		}
		key := strings.ToLower(c.Email)
		if emails[key] {
			return fmt.Errorf("customer %d: duplicate email %s", i+1, c.Email)
		}
		emails[key] = true
	}

	for i, p := range d.Products {
		if p.Name == "" {
			return fmt.Errorf("product %d: name is required", i+1)
		}
		if p.Price < 0 {
			return fmt.Errorf("product %s: negative price", p.Name)
		}
		if p.StockQuantity < 0 {
			return fmt.Errorf("product %s: negative stock_quantity", p.Name)
		}
	}

	for i, o := range d.Orders {
		if !emails[strings.ToLower(o.Customer)] {
			return fmt.Errorf("order %d: unknown customer %s", i+1, o.Customer)
		}
		if o.Status != "" && !validStatus(o.Status) {
			return fmt.Errorf("order %d: status %q must be one of %v", i+1, o.Status, schema.OrderStatuses)
		}
	}

	return nil
}

func validStatus(status string) bool {
	for _, s := range schema.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
