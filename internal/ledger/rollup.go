package ledger

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/google/uuid"
)

// RollupResult is a month's data after a rollup.
type RollupResult struct {
	Accounting ValueMap `json:"accounting"`
	PerUnit    ValueMap `json:"perUnit"`
}

// RollupGlActuals aggregates the month's GL details into leaf categories and
// rewrites both records as actual. Every leaf is zeroed before the sums are
// applied, so running it again with unchanged details gives the same result
// and repairs a month left half-written by a failed run.
func (s *Service) RollupGlActuals(ctx context.Context, farmID uuid.UUID, fiscalYear int, month string) (*RollupResult, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	start := time.Now()

	var (
		tree       *Tree
		actuals    []GlActualAmount
		accounting *MonthlyRecord
		perUnit    *MonthlyRecord
		assumption *Assumption
	)
	g, gctx := s.readGroup(ctx)
	g.Go(func() (err error) {
		tree, err = s.tree(gctx, farmID)
		return err
	})
	g.Go(func() (err error) {
		actuals, err = s.store.GlActualsForMonth(gctx, farmID, fiscalYear, month)
		if err != nil {
			err = fmt.Errorf("load GL actuals: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		accounting, err = s.record(gctx, farmID, fiscalYear, month, Accounting)
		return err
	})
	g.Go(func() (err error) {
		perUnit, err = s.record(gctx, farmID, fiscalYear, month, PerUnit)
		return err
	})
	g.Go(func() (err error) {
		assumption, err = s.optionalAssumption(gctx, farmID, fiscalYear)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sums := ValueMap{}
	for _, a := range actuals {
		if a.CategoryCode == "" {
			continue
		}
		sums[a.CategoryCode] += a.Amount
	}

	merged := accounting.Data.Clone()
	for _, code := range tree.LeafCodes() {
		merged[code] = 0
	}
	for code, v := range sums {
		merged[code] = v
	}
	withParents := RecalcParentSums(merged, tree.Categories())

	accounting.Data = withParents
	accounting.IsActual = true
	if err := s.store.SaveMonthlyRecord(ctx, accounting); err != nil {
		return nil, fmt.Errorf("save accounting record: %w", err)
	}

	acres, ok := rollupDivisor(assumption)
	if !ok {
		log.Printf("[GL Rollup] No assumption record for farm=%s FY=%d. Per-unit will divide by 1 (showing raw dollar amounts).",
			farmID, fiscalYear)
	}
	perUnit.Data = perUnitFromAccounting(withParents, acres)
	perUnit.IsActual = true
	if err := s.store.SaveMonthlyRecord(ctx, perUnit); err != nil {
		return nil, fmt.Errorf("save per-unit record: %w", err)
	}

	LogRollup(farmID, fiscalYear, month, len(sums), time.Since(start))
	return &RollupResult{Accounting: withParents, PerUnit: perUnit.Data}, nil
}

// RollupYear re-runs the rollup for every month of the fiscal year in fiscal
// order.
func (s *Service) RollupYear(ctx context.Context, farmID uuid.UUID, fiscalYear int) (map[string]*RollupResult, error) {
	a, err := s.optionalAssumption(ctx, farmID, fiscalYear)
	if err != nil {
		return nil, err
	}
	return s.rollupMonths(ctx, farmID, fiscalYear, fiscal.Months(startMonth(a)))
}

func (s *Service) rollupMonths(ctx context.Context, farmID uuid.UUID, fiscalYear int, months []string) (map[string]*RollupResult, error) {
	results := make(map[string]*RollupResult, len(months))
	for _, m := range months {
		res, err := s.RollupGlActuals(ctx, farmID, fiscalYear, m)
		if err != nil {
			return results, fmt.Errorf("rollup %s: %w", m, err)
		}
		results[m] = res
	}
	return results, nil
}

// GlActualRow is one imported actual amount addressed by account number.
type GlActualRow struct {
	AccountNumber string  `json:"account_number"`
	Month         string  `json:"month"`
	Amount        float64 `json:"amount"`
}

type ImportResult struct {
	MonthsImported int                      `json:"monthsImported"`
	RowsImported   int                      `json:"rowsImported"`
	SkippedRows    int                      `json:"skippedRows"`
	Results        map[string]*RollupResult `json:"results"`
}

// ImportGlActuals upserts detail rows in one transaction, skipping unknown
// account numbers, then rolls up each affected month once.
func (s *Service) ImportGlActuals(ctx context.Context, farmID uuid.UUID, fiscalYear int, rows []GlActualRow) (*ImportResult, error) {
	start := time.Now()
	for _, r := range rows {
		if err := validateMonth(r.Month); err != nil {
			return nil, err
		}
	}

	accounts, err := s.store.GlAccounts(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("load GL accounts: %w", err)
	}
	byNumber := make(map[string]uuid.UUID, len(accounts))
	for _, a := range accounts {
		byNumber[a.AccountNumber] = a.ID
	}

	type key struct {
		month string
		id    uuid.UUID
	}
	res := &ImportResult{}
	affected := map[string]bool{}
	index := map[key]int{}
	details := make([]GlActualDetail, 0, len(rows))
	for _, r := range rows {
		id, ok := byNumber[r.AccountNumber]
		if !ok {
			res.SkippedRows++
			continue
		}
		affected[r.Month] = true
		// A repeated account and month keeps the last amount.
		if i, dup := index[key{r.Month, id}]; dup {
			details[i].Amount = r.Amount
			continue
		}
		index[key{r.Month, id}] = len(details)
		details = append(details, GlActualDetail{
			FarmID: farmID, FiscalYear: fiscalYear, Month: r.Month, GlAccountID: id, Amount: r.Amount,
		})
	}
	if err := s.store.UpsertGlActuals(ctx, details); err != nil {
		return nil, fmt.Errorf("upsert GL actuals: %w", err)
	}
	res.RowsImported = len(details)

	months := make([]string, 0, len(affected))
	for m := range affected {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		return fiscal.MonthIndex(months[i], "") < fiscal.MonthIndex(months[j], "")
	})

	res.Results, err = s.rollupMonths(ctx, farmID, fiscalYear, months)
	if err != nil {
		return nil, err
	}
	res.MonthsImported = len(months)

	LogImport("GL Import", farmID, fiscalYear, res.RowsImported, res.MonthsImported, time.Since(start))
	return res, nil
}
