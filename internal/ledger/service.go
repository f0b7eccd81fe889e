package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service is the ledger engine. It holds no state besides its store; the
// category tree is rebuilt from the store on every operation.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Store exposes the underlying store to tools that need direct reads.
func (s *Service) Store() Store {
	return s.store
}

// readGroup runs a read model's loads concurrently, or one at a time when the
// store sits on a single connection.
func (s *Service) readGroup(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if sr, ok := s.store.(SerialReader); ok && sr.SerialReads() {
		g.SetLimit(1)
	}
	return g, gctx
}

func (s *Service) tree(ctx context.Context, farmID uuid.UUID) (*Tree, error) {
	cats, err := s.store.Categories(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return NewTree(cats), nil
}

// assumption loads the farm-year assumption or fails with
// *AssumptionNotFoundError.
func (s *Service) assumption(ctx context.Context, farmID uuid.UUID, fiscalYear int) (*Assumption, error) {
	a, err := s.store.Assumption(ctx, farmID, fiscalYear)
	if errors.Is(err, ErrNotFound) {
		return nil, &AssumptionNotFoundError{FiscalYear: fiscalYear}
	}
	if err != nil {
		return nil, fmt.Errorf("load assumption: %w", err)
	}
	return a, nil
}

// optionalAssumption returns nil without error when no assumption exists.
func (s *Service) optionalAssumption(ctx context.Context, farmID uuid.UUID, fiscalYear int) (*Assumption, error) {
	a, err := s.store.Assumption(ctx, farmID, fiscalYear)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load assumption: %w", err)
	}
	return a, nil
}

// record loads a monthly record, or returns an unsaved empty one.
func (s *Service) record(ctx context.Context, farmID uuid.UUID, fiscalYear int, month string, typ RecordType) (*MonthlyRecord, error) {
	r, err := s.store.MonthlyRecord(ctx, farmID, fiscalYear, month, typ)
	if errors.Is(err, ErrNotFound) {
		return &MonthlyRecord{
			FarmID: farmID, FiscalYear: fiscalYear, Month: month, Type: typ,
			Data: ValueMap{}, Comments: CommentMap{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s record for %s: %w", typ, month, err)
	}
	if r.Data == nil {
		r.Data = ValueMap{}
	}
	if r.Comments == nil {
		r.Comments = CommentMap{}
	}
	return r, nil
}

func validateMonth(month string) error {
	if !fiscal.IsValidMonth(month) {
		return fmt.Errorf("%w: invalid month %q", ErrInvalidInput, month)
	}
	return nil
}

// startMonth is the assumption's start month, or the default when a is nil.
func startMonth(a *Assumption) string {
	if a == nil || a.StartMonth == "" {
		return fiscal.DefaultStartMonth
	}
	return a.StartMonth
}

// rollupDivisor is the acres used to derive per-unit values from actuals.
// A missing assumption divides by 1.
func rollupDivisor(a *Assumption) (float64, bool) {
	if a == nil {
		return 1, false
	}
	return a.TotalAcres, true
}

// Categories returns the farm's active categories ordered by level then sort
// order.
func (s *Service) Categories(ctx context.Context, farmID uuid.UUID) ([]Category, error) {
	t, err := s.tree(ctx, farmID)
	if err != nil {
		return nil, err
	}
	return t.Categories(), nil
}

// CategoryTree returns the farm's categories nested under their parents.
func (s *Service) CategoryTree(ctx context.Context, farmID uuid.UUID) ([]CategoryNode, error) {
	t, err := s.tree(ctx, farmID)
	if err != nil {
		return nil, err
	}
	return t.Nested(), nil
}

// LeafCategories returns the categories that have no children.
func (s *Service) LeafCategories(ctx context.Context, farmID uuid.UUID) ([]Category, error) {
	t, err := s.tree(ctx, farmID)
	if err != nil {
		return nil, err
	}
	return t.Leaves(), nil
}

// ValidateLeaf fails with *InvalidCategoryError unless code is a leaf.
func (s *Service) ValidateLeaf(ctx context.Context, farmID uuid.UUID, code string) error {
	t, err := s.tree(ctx, farmID)
	if err != nil {
		return err
	}
	return t.ValidateLeaf(code)
}
