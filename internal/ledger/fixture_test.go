package ledger_test

import (
	"context"
	"testing"

	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testFY = 2025

var testCrops = ledger.CropList{
	{Name: "Canola", Acres: 600},
	{Name: "Spring Wheat", Acres: 400},
}

type fixture struct {
	ctx   context.Context
	store *ledger.MemStore
	svc   *ledger.Service
	farm  uuid.UUID
}

// newFixture returns a farm with the default chart of accounts and a
// 1000 acre assumption for testFY.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := ledger.NewMemStore()
	svc := ledger.NewService(store)

	farm := &ledger.Farm{Name: "Prairie Test Farm"}
	require.NoError(t, store.SaveFarm(ctx, farm))

	_, err := svc.InitChartOfAccounts(ctx, farm.ID, testCrops)
	require.NoError(t, err)
	_, err = svc.SaveAssumption(ctx, farm.ID, ledger.AssumptionInput{
		FiscalYear: testFY,
		TotalAcres: 1000,
		Crops:      testCrops,
	})
	require.NoError(t, err)

	return &fixture{ctx: ctx, store: store, svc: svc, farm: farm.ID}
}

func (f *fixture) record(t *testing.T, fy int, month string, typ ledger.RecordType) *ledger.MonthlyRecord {
	t.Helper()
	r, err := f.store.MonthlyRecord(f.ctx, f.farm, fy, month, typ)
	require.NoError(t, err)
	return r
}

func (f *fixture) category(t *testing.T, code string) ledger.Category {
	t.Helper()
	cats, err := f.svc.Categories(f.ctx, f.farm)
	require.NoError(t, err)
	for _, c := range cats {
		if c.Code == code {
			return c
		}
	}
	t.Fatalf("category %s not found", code)
	return ledger.Category{}
}

func (f *fixture) glAccount(t *testing.T, number string) ledger.GlAccount {
	t.Helper()
	accounts, err := f.store.GlAccounts(f.ctx, f.farm)
	require.NoError(t, err)
	for _, a := range accounts {
		if a.AccountNumber == number {
			return a
		}
	}
	t.Fatalf("GL account %s not found", number)
	return ledger.GlAccount{}
}
