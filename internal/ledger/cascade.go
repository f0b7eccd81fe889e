package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CellResult is the full recalculated month in both representations.
type CellResult struct {
	PerUnit    ValueMap `json:"perUnit"`
	Accounting ValueMap `json:"accounting"`
}

type CellOptions struct {
	// IsActual marks both records actual. When false the existing flags are
	// kept.
	IsActual bool
}

// cellInputs is everything a cell edit reads before computing a write.
type cellInputs struct {
	tree       *Tree
	assumption *Assumption
	perUnit    *MonthlyRecord
	accounting *MonthlyRecord
}

// loadCell issues the reads of a cell edit concurrently and validates the
// leaf and assumption before anything is written.
func (s *Service) loadCell(ctx context.Context, farmID uuid.UUID, fiscalYear int, month, code string) (*cellInputs, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	var in cellInputs
	g, gctx := s.readGroup(ctx)
	g.Go(func() (err error) {
		in.tree, err = s.tree(gctx, farmID)
		return err
	})
	g.Go(func() (err error) {
		in.assumption, err = s.optionalAssumption(gctx, farmID, fiscalYear)
		return err
	})
	g.Go(func() (err error) {
		in.perUnit, err = s.record(gctx, farmID, fiscalYear, month, PerUnit)
		return err
	})
	g.Go(func() (err error) {
		in.accounting, err = s.record(gctx, farmID, fiscalYear, month, Accounting)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := in.tree.ValidateLeaf(code); err != nil {
		return nil, err
	}
	if in.assumption == nil {
		return nil, &AssumptionNotFoundError{FiscalYear: fiscalYear}
	}
	return &in, nil
}

// UpdatePerUnitCell sets a per-unit leaf value and regenerates the month's
// accounting record as per-unit × total acres. A nil comment leaves any
// stored comment for code untouched. Actual flags are not changed.
func (s *Service) UpdatePerUnitCell(ctx context.Context, farmID uuid.UUID, fiscalYear int, month, code string, value float64, comment *string) (*CellResult, error) {
	in, err := s.loadCell(ctx, farmID, fiscalYear, month, code)
	if err != nil {
		return nil, err
	}
	cats := in.tree.Categories()

	data := in.perUnit.Data.Clone()
	data[code] = value
	perUnit := RecalcParentSums(data, cats)

	in.perUnit.Data = perUnit
	if comment != nil {
		in.perUnit.Comments[code] = *comment
	}
	if err := s.store.SaveMonthlyRecord(ctx, in.perUnit); err != nil {
		return nil, fmt.Errorf("save per-unit record: %w", err)
	}

	accounting := scaleValues(perUnit, in.assumption.TotalAcres)
	in.accounting.Data = accounting
	if err := s.store.SaveMonthlyRecord(ctx, in.accounting); err != nil {
		return nil, fmt.Errorf("save accounting record: %w", err)
	}

	return &CellResult{PerUnit: perUnit, Accounting: accounting}, nil
}

// UpdateAccountingCell sets an accounting leaf value and regenerates the
// month's per-unit record as accounting ÷ total acres (0 when acres is 0).
func (s *Service) UpdateAccountingCell(ctx context.Context, farmID uuid.UUID, fiscalYear int, month, code string, value float64, opts CellOptions) (*CellResult, error) {
	in, err := s.loadCell(ctx, farmID, fiscalYear, month, code)
	if err != nil {
		return nil, err
	}
	cats := in.tree.Categories()

	data := in.accounting.Data.Clone()
	data[code] = value
	accounting := RecalcParentSums(data, cats)
	wasActual := in.accounting.IsActual

	in.accounting.Data = accounting
	if opts.IsActual {
		in.accounting.IsActual = true
	}
	if err := s.store.SaveMonthlyRecord(ctx, in.accounting); err != nil {
		return nil, fmt.Errorf("save accounting record: %w", err)
	}

	perUnit := perUnitFromAccounting(accounting, in.assumption.TotalAcres)
	in.perUnit.Data = perUnit
	// A per-unit row created here inherits the accounting flag.
	if opts.IsActual || (in.perUnit.ID == uuid.Nil && wasActual) {
		in.perUnit.IsActual = true
	}
	if err := s.store.SaveMonthlyRecord(ctx, in.perUnit); err != nil {
		return nil, fmt.Errorf("save per-unit record: %w", err)
	}

	return &CellResult{PerUnit: perUnit, Accounting: accounting}, nil
}

// CheckEditable fails with *LockedMonthError when the record holds actuals
// or the year's budget is frozen. Callers run it before a grid cell edit.
func (s *Service) CheckEditable(ctx context.Context, farmID uuid.UUID, fiscalYear int, month string, typ RecordType) error {
	if err := validateMonth(month); err != nil {
		return err
	}
	rec, err := s.record(ctx, farmID, fiscalYear, month, typ)
	if err != nil {
		return err
	}
	if rec.IsActual {
		return &LockedMonthError{Month: month, Type: typ, Reason: LockedActual}
	}

	a, err := s.optionalAssumption(ctx, farmID, fiscalYear)
	if err != nil {
		return err
	}
	if a != nil && a.IsFrozen {
		return &LockedMonthError{Month: month, Type: typ, Reason: LockedFrozen}
	}
	return nil
}
