package main

import (
	"context"
	"flag"
	"log"

	"github.com/C2Farms/C2-Backend/internal/config"
	"github.com/C2Farms/C2-Backend/internal/db"
	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/C2Farms/C2-Backend/internal/seeds"
	"github.com/joho/godotenv"
)

func main() {
	year := flag.Int("year", 0, "fiscal year to seed (default: current)")
	flag.Parse()

	godotenv.Load(".env.local")
	db.Connect(config.LoadFromEnv())
	ledger.Init()

	svc := ledger.NewService(ledger.NewGormStore(db.DB))
	ctx := context.Background()

	var err error
	if *year != 0 {
		err = seeds.SeedDemoFarm(ctx, svc, *year)
	} else {
		err = seeds.SeedAll(ctx, svc)
	}
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
