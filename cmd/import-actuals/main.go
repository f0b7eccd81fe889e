package main

import (
	"flag"
	"log"
	"os"

	"github.com/C2Farms/C2-Backend/internal/actualsimport"
)

func main() {
	var (
		csvPath = flag.String("csv", "", "path to accounting CSV export")
		dbURL   = flag.String("db", "", "DATABASE_URL")
		farmID  = flag.String("farm", "", "farm uuid")
		year    = flag.Int("year", 0, "fiscal year")
		wipe    = flag.Bool("wipe", false, "clear the fiscal year's actuals before importing")
	)
	flag.Parse()

	if *csvPath == "" || *dbURL == "" || *farmID == "" || *year == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := actualsimport.Config{
		CSVPath:     *csvPath,
		DatabaseURL: *dbURL,
		FarmID:      *farmID,
		FiscalYear:  *year,
		Wipe:        *wipe,
	}

	if err := actualsimport.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
