package ledger

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// LogRollup logs a completed GL rollup for one month.
func LogRollup(farmID uuid.UUID, fiscalYear int, month string, categories int, duration time.Duration) {
	log.Printf("[GL Rollup] farm=%s FY=%d month=%s categories=%d in %dms",
		farmID, fiscalYear, month, categories, duration.Milliseconds())
}

// LogImport logs an actuals import.
func LogImport(source string, farmID uuid.UUID, fiscalYear, rows, months int, duration time.Duration) {
	log.Printf("[%s] farm=%s FY=%d imported %d rows across %d months in %dms",
		source, farmID, fiscalYear, rows, months, duration.Milliseconds())
}

// LogFreeze logs a freeze or unfreeze.
func LogFreeze(action string, farmID uuid.UUID, fiscalYear, rows int) {
	log.Printf("[Budget] %s farm=%s FY=%d rows=%d", action, farmID, fiscalYear, rows)
}

// LogError logs a failed ledger operation.
func LogError(operation string, err error) {
	log.Printf("[ledger] %s error: %v", operation, err)
}
