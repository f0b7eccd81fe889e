package ledger

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// ClearYear deletes the year's GL details and resets every monthly record
// of the year to empty, non-actual data. Assumptions, categories, GL
// accounts and frozen budgets are kept.
func (s *Service) ClearYear(ctx context.Context, farmID uuid.UUID, fiscalYear int) (ClearResult, error) {
	res, err := s.store.ClearYear(ctx, farmID, fiscalYear)
	if err != nil {
		LogError("clear year", err)
		return ClearResult{}, fmt.Errorf("clear FY %d: %w", fiscalYear, err)
	}
	log.Printf("[Clear Year] farm=%s FY=%d deleted %d GL details, reset %d monthly records",
		farmID, fiscalYear, res.DeletedDetails, res.ResetMonthly)
	return res, nil
}
