package seeds

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/C2Farms/C2-Backend/internal/ledger"
)

const DemoFarmName = "C2 Demo Farm"

var demoCrops = ledger.CropList{
	{Name: "Canola", Acres: 2500},
	{Name: "Spring Wheat", Acres: 2000},
	{Name: "Peas", Acres: 500},
}

const demoAcres = 5000

// demoBudget is the per-acre budget for each leaf, by month.
var demoBudget = map[string]map[string]float64{
	"rev_canola":        {"Sep": 180, "Oct": 120},
	"rev_spring_wheat":  {"Sep": 110, "Oct": 70},
	"rev_peas":          {"Oct": 25},
	"rev_other_income":  {"Mar": 4},
	"input_seed":        {"Apr": 38, "May": 22},
	"input_fert":        {"Nov": 30, "Apr": 45, "May": 20},
	"input_chem":        {"May": 12, "Jun": 25, "Jul": 10},
	"lpm_personnel":     {"Nov": 4, "Dec": 3, "Jan": 3, "Feb": 3, "Mar": 4, "Apr": 6, "May": 7, "Jun": 6, "Jul": 6, "Aug": 8, "Sep": 9, "Oct": 7},
	"lpm_fog":           {"Apr": 6, "May": 8, "Jun": 3, "Aug": 7, "Sep": 9, "Oct": 5},
	"lpm_repairs":       {"Jan": 5, "Feb": 5, "Mar": 6, "Jul": 4},
	"lpm_shop":          {"Dec": 2, "Mar": 2, "Jun": 2, "Sep": 2},
	"lbf_rent_interest": {"Nov": 60, "May": 15},
	"ins_crop":          {"Jun": 18},
	"ins_other":         {"Jan": 6},
}

// SeedAll creates the demo farm with the default chart of accounts and a
// per-acre budget for the current fiscal year. Running it again refreshes
// the budget values unless the year is frozen.
func SeedAll(ctx context.Context, svc *ledger.Service) error {
	fy, _ := fiscal.Current(fiscal.DefaultStartMonth)
	return SeedDemoFarm(ctx, svc, fy)
}

func SeedDemoFarm(ctx context.Context, svc *ledger.Service, fiscalYear int) error {
	store := svc.Store()
	id := FarmID(DemoFarmName)

	_, err := store.Farm(ctx, id)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		if err := store.SaveFarm(ctx, &ledger.Farm{ID: id, Name: DemoFarmName}); err != nil {
			return fmt.Errorf("create demo farm: %w", err)
		}
		log.Printf("✅ Created farm %s (%s)", DemoFarmName, id)
	case err != nil:
		return fmt.Errorf("load demo farm: %w", err)
	default:
		log.Printf("⚠️ Farm exists, refreshing: %s", DemoFarmName)
	}

	if _, err := svc.InitChartOfAccounts(ctx, id, demoCrops); err != nil {
		return err
	}
	a, err := svc.SaveAssumption(ctx, id, ledger.AssumptionInput{
		FiscalYear: fiscalYear,
		TotalAcres: demoAcres,
		Crops:      demoCrops,
	})
	if err != nil {
		return err
	}
	if a.IsFrozen {
		log.Printf("⚠️ FY%d budget is frozen, leaving values alone", fiscalYear)
		return nil
	}

	cells := 0
	for code, months := range demoBudget {
		for month, v := range months {
			if _, err := svc.UpdatePerUnitCell(ctx, id, fiscalYear, month, code, v, nil); err != nil {
				return fmt.Errorf("seed %s %s: %w", code, month, err)
			}
			cells++
		}
	}

	log.Printf("✅ Seeded %d budget cells for FY%d", cells, fiscalYear)
	return nil
}
