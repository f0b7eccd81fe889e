package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Re-runs the GL rollup for every month of a fiscal year, e.g. after GL
// accounts were remapped directly in the database.
func main() {
	farm := flag.String("farm", "", "farm uuid")
	year := flag.Int("year", 0, "fiscal year")
	flag.Parse()

	godotenv.Load(".env.local")

	farmID, err := uuid.Parse(*farm)
	if err != nil || !fiscal.ValidYear(*year) {
		flag.Usage()
		os.Exit(2)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	svc := ledger.NewService(ledger.NewGormStore(db))
	results, err := svc.RollupYear(context.Background(), farmID, *year)
	if err != nil {
		log.Fatalf("Rollup failed: %v", err)
	}

	for _, m := range fiscal.CalendarMonths {
		if r, ok := results[m]; ok {
			fmt.Printf("  %s: %d categories\n", m, len(r.Accounting))
		}
	}
	fmt.Printf("✓ Rolled up %d months for FY%d\n", len(results), *year)
}
