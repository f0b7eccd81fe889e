package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type GlAccountInput struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	CategoryCode  string `json:"category_code"`
}

// resolveMapping returns the id of the leaf an account maps to, or nil for an
// empty code.
func resolveMapping(t *Tree, code string) (*uuid.UUID, error) {
	if code == "" {
		return nil, nil
	}
	if err := t.ValidateLeaf(code); err != nil {
		return nil, err
	}
	c, _ := t.Lookup(code)
	return &c.ID, nil
}

// GlAccounts lists the farm's active GL accounts.
func (s *Service) GlAccounts(ctx context.Context, farmID uuid.UUID) ([]GlAccount, error) {
	all, err := s.store.GlAccounts(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("load GL accounts: %w", err)
	}
	active := make([]GlAccount, 0, len(all))
	for _, a := range all {
		if a.IsActive {
			active = append(active, a)
		}
	}
	return active, nil
}

// UpsertGlAccounts creates or updates accounts by account number. A category
// code must name a leaf.
func (s *Service) UpsertGlAccounts(ctx context.Context, farmID uuid.UUID, inputs []GlAccountInput) ([]GlAccount, error) {
	t, err := s.tree(ctx, farmID)
	if err != nil {
		return nil, err
	}
	return s.upsertGlAccounts(ctx, t, farmID, inputs)
}

func (s *Service) upsertGlAccounts(ctx context.Context, t *Tree, farmID uuid.UUID, inputs []GlAccountInput) ([]GlAccount, error) {
	accounts := make([]GlAccount, 0, len(inputs))
	for _, in := range inputs {
		in.AccountNumber = strings.TrimSpace(in.AccountNumber)
		in.AccountName = strings.TrimSpace(in.AccountName)
		if in.AccountNumber == "" || in.AccountName == "" {
			continue
		}
		categoryID, err := resolveMapping(t, in.CategoryCode)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", in.AccountNumber, err)
		}
		a := GlAccount{
			FarmID:        farmID,
			AccountNumber: in.AccountNumber,
			AccountName:   in.AccountName,
			CategoryID:    categoryID,
			IsActive:      true,
		}
		if err := s.store.SaveGlAccount(ctx, &a); err != nil {
			return nil, fmt.Errorf("save GL account %s: %w", in.AccountNumber, err)
		}
		a.CategoryCode = in.CategoryCode
		accounts = append(accounts, a)
	}
	return accounts, nil
}

type GlAccountUpdate struct {
	AccountName  *string `json:"account_name"`
	CategoryCode *string `json:"category_code"`
	IsActive     *bool   `json:"is_active"`
	// FiscalYear re-runs the year's rollups after a deactivation.
	FiscalYear int `json:"fiscal_year"`
}

// UpdateGlAccount edits an account owned by the farm. Deactivating clears its
// mapping so rollups exclude it, and re-rolls every month of FiscalYear when
// one is given.
func (s *Service) UpdateGlAccount(ctx context.Context, farmID, id uuid.UUID, upd GlAccountUpdate) (*GlAccount, error) {
	a, err := s.store.GlAccount(ctx, farmID, id)
	if err != nil {
		return nil, fmt.Errorf("GL account %s: %w", id, err)
	}

	if upd.AccountName != nil {
		a.AccountName = *upd.AccountName
	}
	if upd.IsActive != nil {
		a.IsActive = *upd.IsActive
	}
	if upd.CategoryCode != nil {
		t, err := s.tree(ctx, farmID)
		if err != nil {
			return nil, err
		}
		if a.CategoryID, err = resolveMapping(t, *upd.CategoryCode); err != nil {
			return nil, err
		}
	}
	deactivated := upd.IsActive != nil && !*upd.IsActive
	if deactivated {
		a.CategoryID = nil
	}
	if err := s.store.SaveGlAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("save GL account: %w", err)
	}

	if deactivated && upd.FiscalYear != 0 {
		if _, err := s.RollupYear(ctx, farmID, upd.FiscalYear); err != nil {
			return nil, err
		}
	}
	return a, nil
}

type GlAssignment struct {
	AccountNumber string `json:"account_number"`
	CategoryCode  string `json:"category_code"`
}

// BulkAssignGlAccounts remaps accounts by number. Assignments naming an
// unknown account or a code that is not a leaf are skipped. An empty code
// unmaps. The year's months are re-rolled when fiscalYear is non-zero.
func (s *Service) BulkAssignGlAccounts(ctx context.Context, farmID uuid.UUID, assignments []GlAssignment, fiscalYear int) (int, error) {
	t, err := s.tree(ctx, farmID)
	if err != nil {
		return 0, err
	}
	all, err := s.store.GlAccounts(ctx, farmID)
	if err != nil {
		return 0, fmt.Errorf("load GL accounts: %w", err)
	}
	byNumber := make(map[string]GlAccount, len(all))
	for _, a := range all {
		byNumber[a.AccountNumber] = a
	}

	updated := 0
	for _, as := range assignments {
		a, ok := byNumber[as.AccountNumber]
		if !ok {
			continue
		}
		categoryID, err := resolveMapping(t, as.CategoryCode)
		if err != nil {
			continue
		}
		a.CategoryID = categoryID
		if err := s.store.SaveGlAccount(ctx, &a); err != nil {
			return updated, fmt.Errorf("save GL account %s: %w", a.AccountNumber, err)
		}
		updated++
	}

	if fiscalYear != 0 {
		if _, err := s.RollupYear(ctx, farmID, fiscalYear); err != nil {
			return updated, err
		}
	}
	return updated, nil
}
