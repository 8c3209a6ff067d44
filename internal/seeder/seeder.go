package seeder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rana718/schemaseed/internal/config"
	"github.com/Rana718/schemaseed/internal/database"
	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/sample"
	"github.com/Rana718/schemaseed/internal/schema"
	"github.com/Rana718/schemaseed/internal/types"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
)

type Options struct {
	// Connection is passed to the adapter during INIT.
	Connection common.ConnectionInfo
	Tables     []types.SchemaTable
	Dataset    *sample.Dataset
	Resolver   Resolver

	// Confirm is asked once the target is known. Nil skips the gate.
	Confirm func(Target) (bool, error)

	Out    io.Writer
	Format string
	Logger *zap.Logger
}

type Seeder struct {
	adapter database.Adapter
	opts    Options
	tables  []types.SchemaTable
	graph   *schema.DependencyGraph
	out     io.Writer
	log     *zap.Logger
	report  *Report
}

func New(adapter database.Adapter, opts Options) (*Seeder, error) {
	if adapter == nil {
		return nil, fmt.Errorf("adapter is required")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}

	tables := opts.Tables
	if len(tables) == 0 {
		tables = schema.Tables()
	}
	if err := schema.Validate(tables); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	if opts.Dataset == nil {
		ds, err := sample.Default()
		if err != nil {
			return nil, err
		}
		opts.Dataset = ds
	} else if err := opts.Dataset.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Format == "" {
		opts.Format = config.FormatLines
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Seeder{
		adapter: adapter,
		opts:    opts,
		tables:  tables,
		graph:   schema.NewDependencyGraph(tables),
		out:     opts.Out,
		log:     log.Named("seeder"),
	}, nil
}

func (s *Seeder) enter(p Phase) {
	s.report.Phase = p
	s.log.Debug("phase", zap.Stringer("phase", p))
}

func (s *Seeder) fail(err error) error {
	s.log.Debug("phase failed", zap.Stringer("phase", s.report.Phase), zap.Error(err))
	return &PhaseError{Phase: s.report.Phase, Err: err}
}

// Run executes one seeding pass. The adapter is connected and pinged during
// INIT and closed before Run returns. A declined confirmation returns
// ErrAborted. A database the resolver deferred is created at the start of
// RESET_SCHEMA, so nothing is written before the operator confirms.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	s.report = &Report{
		RunID:    uuid.NewString(),
		Inserted: make(map[string]int),
		Verified: make(map[string]int),
	}
	log := s.log
	s.log = log.With(zap.String("run_id", s.report.RunID))
	defer func() { s.log = log }()

	s.enter(PhaseInit)
	if err := s.adapter.Connect(ctx, s.opts.Connection); err != nil {
		return s.report, s.fail(err)
	}
	defer func() {
		if err := s.adapter.Close(); err != nil {
			s.log.Warn("close failed", zap.Error(err))
		}
	}()
	if err := s.adapter.Ping(ctx); err != nil {
		return s.report, s.fail(fmt.Errorf("failed to ping database: %w", err))
	}

	s.enter(PhaseResolveDB)
	target, err := s.opts.Resolver.Resolve(ctx, s.adapter)
	if err != nil {
		return s.report, s.fail(err)
	}
	s.report.Target = target
	if target.Create {
		cyan.Fprintf(s.out, "📦 Database '%s' will be created\n", target.Name)
	} else {
		cyan.Fprintf(s.out, "📦 Using existing database: %s\n", target.Name)
	}

	s.enter(PhaseConfirm)
	if s.opts.Confirm != nil {
		ok, err := s.opts.Confirm(target)
		if err != nil {
			return s.report, s.fail(err)
		}
		if !ok {
			s.enter(PhaseAborted)
			return s.report, ErrAborted
		}
	}

	s.enter(PhaseResetSchema)
	if err := s.ensureDatabase(ctx, target); err != nil {
		return s.report, s.fail(err)
	}
	if err := s.resetSchema(ctx); err != nil {
		return s.report, s.fail(err)
	}

	s.enter(PhaseInsertData)
	if err := s.insertData(ctx); err != nil {
		return s.report, s.fail(err)
	}

	s.enter(PhaseVerify)
	if err := s.verify(ctx); err != nil {
		return s.report, s.fail(err)
	}

	s.enter(PhaseDone)
	return s.report, nil
}

func (s *Seeder) ensureDatabase(ctx context.Context, target Target) error {
	if target.Create {
		cyan.Fprintf(s.out, "🔨 Creating database: %s\n", target.Name)
		err := s.adapter.CreateDatabase(ctx, target.Name)
		if err != nil && target.Fallback != "" {
			yellow.Fprintf(s.out, "⚠️  %v\n", err)
			cyan.Fprintf(s.out, "🔨 Attempting to create fallback database: %s\n", target.Fallback)
			target.Name = target.Fallback
			s.report.Target.Name = target.Fallback
			err = s.adapter.CreateDatabase(ctx, target.Fallback)
		}
		if err != nil {
			return err
		}
		s.report.Created = true
		green.Fprintf(s.out, "✅ Database '%s' created successfully\n", target.Name)
	}

	if err := s.adapter.UseDatabase(ctx, target.Name); err != nil {
		return err
	}
	return nil
}

// resetSchema drops then recreates every table, one statement at a time.
// There is no rollback if a statement in the middle fails.
func (s *Seeder) resetSchema(ctx context.Context) error {
	dropOrder, err := s.graph.DropOrder()
	if err != nil {
		return err
	}
	createOrder, err := s.graph.CreationOrder()
	if err != nil {
		return err
	}

	cyan.Fprintln(s.out, "🗑️  Dropping tables...")
	for _, name := range dropOrder {
		if err := s.adapter.DropTable(ctx, name); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", name, err)
		}
	}

	cyan.Fprintln(s.out, "🏗️  Creating tables...")
	for _, name := range createOrder {
		table, ok := schema.Lookup(s.tables, name)
		if !ok {
			return fmt.Errorf("table %s is not declared", name)
		}
		if err := s.adapter.CreateTable(ctx, table); err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
		fmt.Fprintf(s.out, "  - %s\n", name)
	}
	return nil
}

// insertData writes the dataset inside one transaction. Orders are bound to
// the keys generated for their customers.
func (s *Seeder) insertData(ctx context.Context) (err error) {
	cyan.Fprintln(s.out, "📝 Inserting sample data...")

	if err := s.adapter.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := s.adapter.Rollback(ctx); rbErr != nil {
				s.log.Warn("rollback failed", zap.Error(rbErr))
			}
			yellow.Fprintln(s.out, "🔄 Insert rolled back")
		}
	}()

	ds := s.opts.Dataset

	customerIDs, err := s.insert(ctx, customerSpec(ds))
	if err != nil {
		return err
	}
	byEmail := make(map[string]int64, len(customerIDs))
	for i, c := range ds.Customers {
		byEmail[strings.ToLower(c.Email)] = customerIDs[i]
	}

	if _, err = s.insert(ctx, productSpec(ds)); err != nil {
		return err
	}

	spec, err := orderSpec(ds, byEmail)
	if err != nil {
		return err
	}
	if _, err = s.insert(ctx, spec); err != nil {
		return err
	}

	if err = s.adapter.Commit(ctx); err != nil {
		return err
	}
	green.Fprintln(s.out, "✅ Sample data inserted successfully")
	return nil
}

func (s *Seeder) insert(ctx context.Context, spec common.InsertSpec) ([]int64, error) {
	ids, err := s.adapter.InsertRows(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", spec.Table, err)
	}
	if spec.PrimaryKey != "" && len(ids) != len(spec.Rows) {
		return nil, fmt.Errorf("insert into %s returned %d keys for %d rows", spec.Table, len(ids), len(spec.Rows))
	}
	s.report.Inserted[spec.Table] = len(spec.Rows)
	fmt.Fprintf(s.out, "  - %s: %d rows\n", spec.Table, len(spec.Rows))
	return ids, nil
}

func customerSpec(ds *sample.Dataset) common.InsertSpec {
	spec := common.InsertSpec{
		Table:      schema.Customers,
		PrimaryKey: "customer_id",
		Columns:    []string{"first_name", "last_name", "email"},
	}
	for _, c := range ds.Customers {
		spec.Rows = append(spec.Rows, []interface{}{c.FirstName, c.LastName, c.Email})
	}
	return spec
}

func productSpec(ds *sample.Dataset) common.InsertSpec {
	spec := common.InsertSpec{
		Table:      schema.Products,
		PrimaryKey: "product_id",
		Columns:    []string{"product_name", "description", "price", "stock_quantity"},
	}
	for _, p := range ds.Products {
		var description interface{}
		if p.Description != "" {
			description = p.Description
		}
		spec.Rows = append(spec.Rows, []interface{}{p.Name, description, p.Price.Decimal(), p.StockQuantity})
	}
	return spec
}

func orderSpec(ds *sample.Dataset, customerIDs map[string]int64) (common.InsertSpec, error) {
	spec := common.InsertSpec{
		Table:      schema.Orders,
		PrimaryKey: "order_id",
		Columns:    []string{"customer_id", "total_amount", "status"},
	}
	for i, o := range ds.Orders {
		id, ok := customerIDs[strings.ToLower(o.Customer)]
		if !ok {
			return spec, fmt.Errorf("order %d references unknown customer %s", i+1, o.Customer)
		}
		status := o.Status
		if status == "" {
			status = schema.OrderStatuses[0]
		}
		spec.Rows = append(spec.Rows, []interface{}{id, o.TotalAmount.Decimal(), status})
	}
	return spec, nil
}
