package schema

import (
	"fmt"

	"github.com/Rana718/schemaseed/internal/types"
)

// DependencyGraph orders tables by their foreign keys. Ties are broken by
// declaration order so the result is stable across runs.
type DependencyGraph struct {
	tables []types.SchemaTable
	byName map[string]types.SchemaTable
}

func NewDependencyGraph(tables []types.SchemaTable) *DependencyGraph {
	g := &DependencyGraph{
		tables: tables,
		byName: make(map[string]types.SchemaTable, len(tables)),
	}
	for _, table := range tables {
		g.byName[table.Name] = table
	}
	return g
}

// CreationOrder puts every table after the tables it references.
func (g *DependencyGraph) CreationOrder() ([]string, error) {
	return g.walk(func(name string) []string {
		return g.byName[name].Dependencies()
	})
}

// DropOrder puts every table after the tables that reference it. Each table
// is preceded directly by its dependents, so for customers/products/orders
// this yields orders, customers, products.
func (g *DependencyGraph) DropOrder() ([]string, error) {
	return g.walk(g.dependents)
}

func (g *DependencyGraph) dependents(name string) []string {
	var out []string
	for _, table := range g.tables {
		for _, dep := range table.Dependencies() {
			if dep == name {
				out = append(out, table.Name)
				break
			}
		}
	}
	return out
}

func (g *DependencyGraph) walk(edges func(string) []string) ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	order := make([]string, 0, len(g.tables))

	var visit func(string) error
	visit = func(tableName string) error {
		if temp[tableName] {
			return fmt.Errorf("circular dependency detected involving table: %s", tableName)
		}
		if visited[tableName] {
			return nil
		}

		temp[tableName] = true
		for _, next := range edges(tableName) {
			if _, known := g.byName[next]; !known {
				continue
			}
			if err := visit(next); err != nil {
				return err
			}
		}

		temp[tableName] = false
		visited[tableName] = true
		order = append(order, tableName)
		return nil
	}

	for _, table := range g.tables {
		if err := visit(table.Name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
