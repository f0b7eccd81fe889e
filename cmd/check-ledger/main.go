package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/C2Farms/C2-Backend/internal/ledgercheck"
	"github.com/joho/godotenv"
)

func main() {
	var (
		farm = flag.String("farm", "", "farm uuid")
		year = flag.Int("year", 0, "fiscal year (default: all years)")
		tol  = flag.Float64("tolerance", ledgercheck.DefaultTolerance, "allowed difference in dollars")
	)
	flag.Parse()

	godotenv.Load(".env.local")

	if *farm == "" {
		flag.Usage()
		os.Exit(2)
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	mismatches, err := ledgercheck.Run(context.Background(), ledgercheck.Config{
		DatabaseURL: dbURL,
		FarmID:      *farm,
		FiscalYear:  *year,
		Tolerance:   *tol,
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, m := range mismatches {
		fmt.Printf("FY%d %s %-24s per_unit=%.2f accounting=%.2f expected=%.2f\n",
			m.FiscalYear, m.Month, m.Code, m.PerUnit, m.Accounting, m.Expected)
	}
	if len(mismatches) > 0 {
		os.Exit(1)
	}
	fmt.Println("✓ Ledger consistent")
}
