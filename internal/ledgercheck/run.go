package ledgercheck

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type Config struct {
	DatabaseURL string
	FarmID      string
	// FiscalYear 0 checks every year with an assumption.
	FiscalYear int
	Tolerance  float64
}

const monthsQuery = `
SELECT a.fiscal_year, a.total_acres, p.month, p.data_json, c.data_json
FROM ledger.assumptions a
JOIN ledger.monthly_data p
  ON p.farm_id = a.farm_id AND p.fiscal_year = a.fiscal_year AND p.type = 'per_unit'
JOIN ledger.monthly_data c
  ON c.farm_id = a.farm_id AND c.fiscal_year = a.fiscal_year AND c.month = p.month AND c.type = 'accounting'
WHERE a.farm_id = $1 AND ($2 = 0 OR a.fiscal_year = $2)
ORDER BY a.fiscal_year, p.month`

// Run checks a farm read-only and returns the mismatches found.
func Run(ctx context.Context, cfg Config) ([]Mismatch, error) {
	farmID, err := uuid.Parse(cfg.FarmID)
	if err != nil {
		return nil, fmt.Errorf("invalid farm id: %w", err)
	}
	if cfg.FiscalYear != 0 && !fiscal.ValidYear(cfg.FiscalYear) {
		return nil, fmt.Errorf("invalid fiscal year %d", cfg.FiscalYear)
	}
	tol := cfg.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, monthsQuery, farmID, cfg.FiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out    []Mismatch
		months int
	)
	for rows.Next() {
		var m Month
		if err := rows.Scan(&m.FiscalYear, &m.Acres, &m.Month, &m.PerUnit, &m.Accounting); err != nil {
			return nil, err
		}
		months++
		out = append(out, Compare(m, tol)...)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Printf("[Ledger Check] farm=%s months=%d mismatches=%d", farmID, months, len(out))
	return out, nil
}
