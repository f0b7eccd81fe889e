package ledger

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// SaveManualActuals merges entered leaf amounts into the month's accounting
// record, marks it actual and regenerates per-unit from the result. It is the
// fallback for farms without a GL feed.
func (s *Service) SaveManualActuals(ctx context.Context, farmID uuid.UUID, fiscalYear int, month string, data ValueMap) (*CellResult, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: data is required", ErrInvalidInput)
	}
	t, err := s.tree(ctx, farmID)
	if err != nil {
		return nil, err
	}
	for code := range data {
		if err := t.ValidateLeaf(code); err != nil {
			return nil, err
		}
	}

	accounting, err := s.record(ctx, farmID, fiscalYear, month, Accounting)
	if err != nil {
		return nil, err
	}
	perUnit, err := s.record(ctx, farmID, fiscalYear, month, PerUnit)
	if err != nil {
		return nil, err
	}
	a, err := s.optionalAssumption(ctx, farmID, fiscalYear)
	if err != nil {
		return nil, err
	}

	merged := accounting.Data.Clone()
	for code, v := range data {
		merged[code] = v
	}
	accounting.Data = RecalcParentSums(merged, t.Categories())
	accounting.IsActual = true
	if err := s.store.SaveMonthlyRecord(ctx, accounting); err != nil {
		return nil, fmt.Errorf("save accounting record: %w", err)
	}

	acres, ok := rollupDivisor(a)
	if !ok {
		log.Printf("[Manual Actuals] No assumption record for farm=%s FY=%d. Per-unit will divide by 1.", farmID, fiscalYear)
	}
	perUnit.Data = perUnitFromAccounting(accounting.Data, acres)
	perUnit.IsActual = true
	if err := s.store.SaveMonthlyRecord(ctx, perUnit); err != nil {
		return nil, fmt.Errorf("save per-unit record: %w", err)
	}

	log.Printf("[Manual Actuals] farm=%s FY=%d month=%s codes=%d", farmID, fiscalYear, month, len(data))
	return &CellResult{PerUnit: perUnit.Data, Accounting: accounting.Data}, nil
}
