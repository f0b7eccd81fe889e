package actualsimport

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run(cfg Config) error {
	farmID, err := uuid.Parse(cfg.FarmID)
	if err != nil {
		return fmt.Errorf("invalid farm id: %w", err)
	}
	if !fiscal.ValidYear(cfg.FiscalYear) {
		return fmt.Errorf("invalid fiscal year %d", cfg.FiscalYear)
	}

	f, err := os.Open(cfg.CSVPath)
	if err != nil {
		return err
	}
	defer f.Close()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.Transaction(func(tx *gorm.DB) error {
		svc := ledger.NewService(ledger.NewGormStore(tx))
		if cfg.Wipe {
			cleared, err := svc.ClearYear(ctx, farmID, cfg.FiscalYear)
			if err != nil {
				return err
			}
			log.Printf("Cleared FY%d: %d GL rows, %d monthly records reset", cfg.FiscalYear, cleared.DeletedDetails, cleared.ResetMonthly)
		}

		res, err := Import(ctx, svc, farmID, cfg.FiscalYear, f)
		if err != nil {
			return err
		}
		for _, s := range res.SkippedDetails {
			log.Printf("⚠️ Skipped %s: %s", s.Account, s.Reason)
		}
		log.Printf("✅ Imported %d accounts across %d months (%d skipped)", res.Imported, res.Months, res.Skipped)
		return nil
	})
}

// Import parses an actuals CSV and loads it into fiscalYear.
func Import(ctx context.Context, svc *ledger.Service, farmID uuid.UUID, fiscalYear int, r io.Reader) (*ledger.AccountImportResult, error) {
	accounts, err := ledger.ParseActualsCSV(r)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts found in csv")
	}
	return svc.ImportAccountingAccounts(ctx, farmID, fiscalYear, accounts)
}
