package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/C2Farms/C2-Backend/internal/config"
	"github.com/C2Farms/C2-Backend/internal/db"
	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/C2Farms/C2-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	db.Connect(cfg)

	ledger.Init()
	svc := ledger.NewService(ledger.NewGormStore(db.DB))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Get("/", RootHandler)

	r.Mount("/farms", ledger.SetupRoutes(svc, cfg))

	fmt.Printf("Server listening on port :%s...\n", cfg.Port)

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
