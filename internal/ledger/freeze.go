package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Freeze snapshots every monthly record of the year as the budget baseline
// and marks the assumption frozen. Any earlier snapshot for the year is
// replaced, never merged.
func (s *Service) Freeze(ctx context.Context, farmID uuid.UUID, fiscalYear int) (*Assumption, error) {
	a, err := s.assumption(ctx, farmID, fiscalYear)
	if err != nil {
		return nil, err
	}
	if a.IsFrozen {
		return nil, ErrAlreadyFrozen
	}

	var perUnit, accounting []MonthlyRecord
	g, gctx := s.readGroup(ctx)
	g.Go(func() (err error) {
		perUnit, err = s.store.MonthlyRecords(gctx, farmID, fiscalYear, PerUnit)
		return err
	})
	g.Go(func() (err error) {
		accounting, err = s.store.MonthlyRecords(gctx, farmID, fiscalYear, Accounting)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load monthly records: %w", err)
	}

	now := s.now()
	rows := make([]FrozenRecord, 0, len(perUnit)+len(accounting))
	for _, r := range append(perUnit, accounting...) {
		rows = append(rows, FrozenRecord{
			FarmID:     r.FarmID,
			FiscalYear: r.FiscalYear,
			Month:      r.Month,
			Type:       r.Type,
			Data:       r.Data.Clone(),
			IsActual:   r.IsActual,
			Comments:   r.Comments.Clone(),
			FrozenAt:   now,
		})
	}
	if err := s.store.ReplaceFrozen(ctx, farmID, fiscalYear, rows); err != nil {
		return nil, fmt.Errorf("replace frozen records: %w", err)
	}

	a.IsFrozen = true
	a.FrozenAt = &now
	if err := s.store.SaveAssumption(ctx, a); err != nil {
		return nil, fmt.Errorf("save assumption: %w", err)
	}

	LogFreeze("frozen", farmID, fiscalYear, len(rows))
	return a, nil
}

// Unfreeze clears the frozen flag. The snapshot stays for forecast
// comparison.
func (s *Service) Unfreeze(ctx context.Context, farmID uuid.UUID, fiscalYear int) (*Assumption, error) {
	a, err := s.assumption(ctx, farmID, fiscalYear)
	if err != nil {
		return nil, err
	}
	if !a.IsFrozen {
		return nil, ErrNotFrozen
	}

	a.IsFrozen = false
	a.FrozenAt = nil
	if err := s.store.SaveAssumption(ctx, a); err != nil {
		return nil, fmt.Errorf("save assumption: %w", err)
	}

	LogFreeze("unfrozen", farmID, fiscalYear, 0)
	return a, nil
}
