package ledger_test

import (
	"testing"

	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAssumption_Validation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]ledger.AssumptionInput{
		"year too early":   {FiscalYear: 1999, TotalAcres: 10},
		"zero acres":       {FiscalYear: testFY, TotalAcres: 0},
		"crops over total": {FiscalYear: testFY, TotalAcres: 100, Crops: ledger.CropList{{Name: "Oats", Acres: 150}}},
		"unknown start":    {FiscalYear: testFY, TotalAcres: 100, StartMonth: "Sept"},
	}
	for name, in := range cases {
		_, err := f.svc.SaveAssumption(f.ctx, f.farm, in)
		assert.ErrorIs(t, err, ledger.ErrInvalidInput, name)
	}
}

func TestSaveAssumption_SeedsRecordsAndEndMonth(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.SaveAssumption(f.ctx, f.farm, ledger.AssumptionInput{
		FiscalYear: 2030, TotalAcres: 500, StartMonth: "Jul",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jul", a.StartMonth)
	assert.Equal(t, "Jun", a.EndMonth)

	for _, typ := range []ledger.RecordType{ledger.PerUnit, ledger.Accounting} {
		rows, err := f.store.MonthlyRecords(f.ctx, f.farm, 2030, typ)
		require.NoError(t, err)
		assert.Len(t, rows, 12)
	}

	fc, err := f.svc.Forecast(f.ctx, f.farm, 2030, ledger.PerUnit)
	require.NoError(t, err)
	assert.Equal(t, "Jul", fc.Months[0])
	assert.Equal(t, "Jun", fc.Months[11])
}

func TestSaveAssumption_AcresChangeRescalesAccounting(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdatePerUnitCell(f.ctx, f.farm, testFY, "May", "lpm_fog", 8, nil)
	require.NoError(t, err)
	require.Equal(t, 8000.0, f.record(t, testFY, "May", ledger.Accounting).Data["lpm_fog"])

	_, err = f.svc.SaveAssumption(f.ctx, f.farm, ledger.AssumptionInput{
		FiscalYear: testFY, TotalAcres: 1500, Crops: testCrops,
	})
	require.NoError(t, err)

	assert.Equal(t, 12000.0, f.record(t, testFY, "May", ledger.Accounting).Data["lpm_fog"])
	assert.Equal(t, 12000.0, f.record(t, testFY, "May", ledger.Accounting).Data["lpm"])
	assert.Equal(t, 8.0, f.record(t, testFY, "May", ledger.PerUnit).Data["lpm_fog"])
}

func TestSaveAssumption_KeepsFrozenState(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Freeze(f.ctx, f.farm, testFY)
	require.NoError(t, err)

	a, err := f.svc.SaveAssumption(f.ctx, f.farm, ledger.AssumptionInput{
		FiscalYear: testFY, TotalAcres: 1000, Crops: testCrops,
	})
	require.NoError(t, err)
	assert.True(t, a.IsFrozen)
	assert.NotNil(t, a.FrozenAt)

	got, err := f.svc.Assumption(f.ctx, f.farm, testFY)
	require.NoError(t, err)
	assert.True(t, got.IsFrozen)
	assert.Len(t, got.Crops, 2)
}
