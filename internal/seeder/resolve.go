package seeder

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Rana718/schemaseed/internal/database"
)

// Resolver decides which database a run targets. Implementations may read
// the catalog but must not change it; creation happens after confirmation.
type Resolver interface {
	Resolve(ctx context.Context, adapter database.Adapter) (Target, error)
}

// FirstAvailable picks the first non-system database in catalog order and
// falls back to creating Fallback when there is none.
type FirstAvailable struct {
	System   []string
	Fallback string
	Logger   *zap.Logger
}

func (r FirstAvailable) Resolve(ctx context.Context, adapter database.Adapter) (Target, error) {
	if r.Fallback == "" {
		return Target{}, fmt.Errorf("no fallback database configured")
	}

	names, err := adapter.ListDatabases(ctx)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Warn("database enumeration failed, using fallback",
				zap.String("fallback", r.Fallback), zap.Error(err))
		}
		return Target{Name: r.Fallback, Create: true}, nil
	}

	system := make(map[string]bool, len(r.System))
	for _, name := range r.System {
		system[strings.ToLower(name)] = true
	}

	for _, name := range names {
		if !system[strings.ToLower(name)] {
			return Target{Name: name}, nil
		}
	}

	return Target{Name: r.Fallback, Create: true, Fallback: r.Fallback}, nil
}

// EnsureNamed targets Name, creating it when the catalog does not have it.
type EnsureNamed struct {
	Name string
}

func (r EnsureNamed) Resolve(ctx context.Context, adapter database.Adapter) (Target, error) {
	if r.Name == "" {
		return Target{}, fmt.Errorf("database name cannot be empty")
	}

	exists, err := adapter.DatabaseExists(ctx, r.Name)
	if err != nil {
		return Target{}, fmt.Errorf("failed to check database %s: %w", r.Name, err)
	}
	return Target{Name: r.Name, Create: !exists}, nil
}
