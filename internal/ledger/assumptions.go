package ledger

import (
	"context"
	"fmt"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/google/uuid"
)

type AssumptionInput struct {
	FiscalYear int      `json:"fiscal_year"`
	StartMonth string   `json:"start_month"`
	TotalAcres float64  `json:"total_acres"`
	Crops      CropList `json:"crops"`
}

// Assumption returns the farm-year assumption or *AssumptionNotFoundError.
func (s *Service) Assumption(ctx context.Context, farmID uuid.UUID, fiscalYear int) (*Assumption, error) {
	return s.assumption(ctx, farmID, fiscalYear)
}

// SaveAssumption creates or updates the farm-year assumption and pre-seeds
// empty records for all 12 months of both types. When total acres changes,
// accounting values are re-derived from per-unit values, which are kept as
// entered.
func (s *Service) SaveAssumption(ctx context.Context, farmID uuid.UUID, in AssumptionInput) (*Assumption, error) {
	if !fiscal.ValidYear(in.FiscalYear) {
		return nil, fmt.Errorf("%w: invalid fiscal year %d", ErrInvalidInput, in.FiscalYear)
	}
	if in.TotalAcres <= 0 {
		return nil, fmt.Errorf("%w: total_acres must be positive", ErrInvalidInput)
	}
	if in.Crops.TotalAcres() > in.TotalAcres {
		return nil, fmt.Errorf("%w: crop acres sum exceeds total acres", ErrInvalidInput)
	}
	sm := in.StartMonth
	if sm == "" {
		sm = fiscal.DefaultStartMonth
	}
	if err := validateMonth(sm); err != nil {
		return nil, err
	}

	existing, err := s.optionalAssumption(ctx, farmID, in.FiscalYear)
	if err != nil {
		return nil, err
	}

	a := &Assumption{
		FarmID:     farmID,
		FiscalYear: in.FiscalYear,
		TotalAcres: in.TotalAcres,
		Crops:      in.Crops,
		StartMonth: sm,
		EndMonth:   fiscal.EndMonth(sm),
	}
	if a.Crops == nil {
		a.Crops = CropList{}
	}
	if existing != nil {
		a.ID = existing.ID
		a.IsFrozen = existing.IsFrozen
		a.FrozenAt = existing.FrozenAt
	}
	if err := s.store.SaveAssumption(ctx, a); err != nil {
		return nil, fmt.Errorf("save assumption: %w", err)
	}

	if err := s.store.EnsureMonthlyRecords(ctx, farmID, in.FiscalYear, fiscal.Months(sm)); err != nil {
		return nil, fmt.Errorf("seed monthly records: %w", err)
	}

	if existing != nil && existing.TotalAcres != 0 && existing.TotalAcres != in.TotalAcres {
		if err := s.rescaleAccounting(ctx, farmID, in.FiscalYear, in.TotalAcres); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// rescaleAccounting rewrites accounting = per-unit × acres for every month
// that has per-unit data.
func (s *Service) rescaleAccounting(ctx context.Context, farmID uuid.UUID, fiscalYear int, acres float64) error {
	perUnitRows, err := s.store.MonthlyRecords(ctx, farmID, fiscalYear, PerUnit)
	if err != nil {
		return fmt.Errorf("load per-unit records: %w", err)
	}
	for _, pu := range perUnitRows {
		if len(pu.Data) == 0 {
			continue
		}
		acc, err := s.record(ctx, farmID, fiscalYear, pu.Month, Accounting)
		if err != nil {
			return err
		}
		acc.Data = scaleValues(pu.Data, acres)
		if err := s.store.SaveMonthlyRecord(ctx, acc); err != nil {
			return fmt.Errorf("save accounting record for %s: %w", pu.Month, err)
		}
	}
	return nil
}
