package ledger

import (
	"net/http"

	"github.com/C2Farms/C2-Backend/internal/config"
	"github.com/C2Farms/C2-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes serves the ledger under /{farmId}. Mount it at /farms.
func SetupRoutes(svc *Service, cfg config.Config) http.Handler {
	r := chi.NewRouter()
	h := NewHandlers(svc)
	importLimit := middleware.RateLimit(cfg.ImportRatePerMin, cfg.ImportBurst, farmRateKey)

	r.Post("/", h.CreateFarm)

	r.Route("/{farmId}", func(r chi.Router) {
		r.Use(h.FarmContext)

		r.Get("/categories", h.ListCategories)
		r.Get("/categories/leaves", h.ListLeafCategories)
		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)
		r.Post("/chart-of-accounts/init", h.InitChartOfAccounts)

		r.Get("/gl-accounts", h.ListGlAccounts)
		r.Post("/gl-accounts", h.UpsertGlAccounts)
		r.Put("/gl-accounts/{id}", h.UpdateGlAccount)
		r.Post("/gl-accounts/bulk-assign", h.BulkAssignGlAccounts)
		r.Post("/gl-actuals/{year}/rollup", h.RollupYear)

		r.Get("/assumptions/{year}", h.GetAssumption)
		r.Post("/assumptions", h.SaveAssumption)
		r.Post("/assumptions/{year}/freeze", h.FreezeBudget)
		r.Post("/assumptions/{year}/unfreeze", h.UnfreezeBudget)

		r.Get("/per-unit/{year}", h.forecast(PerUnit))
		r.Patch("/per-unit/{year}/{month}", h.UpdatePerUnitCell)
		r.Get("/accounting/{year}", h.forecast(Accounting))
		r.Patch("/accounting/{year}/{month}", h.UpdateAccountingCell)
		r.Delete("/accounting/clear-year/{year}", h.ClearYear)

		r.Post("/financial/manual-actual", h.SaveManualActuals)
		r.Get("/prior-year/{year}", h.PriorYear)
		r.Get("/statement/{year}", h.Statement)

		r.Group(func(r chi.Router) {
			r.Use(importLimit)
			r.Post("/gl-actuals/import", h.ImportGlActuals)
			r.Post("/accounting/import-csv", h.ImportAccountingCSV)
		})
	})

	return r
}
