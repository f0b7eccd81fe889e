package ledger_test

import (
	"testing"

	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowByCode(t *testing.T, rows []ledger.ForecastRow, code string) ledger.ForecastRow {
	t.Helper()
	for _, r := range rows {
		if r.Code == code {
			return r
		}
	}
	t.Fatalf("row %s not found", code)
	return ledger.ForecastRow{}
}

func TestForecast_PerUnitTotalsAndComputedRows(t *testing.T) {
	f := newFixture(t)
	note := "hedged"
	for _, m := range []string{"Nov", "Dec", "Jan"} {
		_, err := f.svc.UpdatePerUnitCell(f.ctx, f.farm, testFY, m, "input_seed", 10, nil)
		require.NoError(t, err)
	}
	_, err := f.svc.UpdatePerUnitCell(f.ctx, f.farm, testFY, "Oct", "rev_canola", 200, &note)
	require.NoError(t, err)

	fc, err := f.svc.Forecast(f.ctx, f.farm, testFY, ledger.PerUnit)
	require.NoError(t, err)

	assert.Equal(t, "Nov", fc.StartMonth)
	assert.Equal(t, "Nov", fc.Months[0])
	assert.Equal(t, 1000.0, fc.TotalAcres)
	assert.False(t, fc.IsFrozen)
	assert.Nil(t, fc.Summary)

	seed := rowByCode(t, fc.Rows, "input_seed")
	assert.Equal(t, 30.0, seed.ForecastTotal)
	assert.Equal(t, 30.0, seed.FrozenBudgetTotal)
	assert.Equal(t, 0.0, seed.Variance)
	require.NotNil(t, seed.ParentCode)
	assert.Equal(t, "inputs", *seed.ParentCode)

	canola := rowByCode(t, fc.Rows, "rev_canola")
	assert.Equal(t, "hedged", canola.Comments["Oct"])
	assert.Nil(t, rowByCode(t, fc.Rows, "revenue").ParentCode)

	totalExp := rowByCode(t, fc.Rows, ledger.TotalExpenseCode)
	profit := rowByCode(t, fc.Rows, ledger.ProfitCode)
	assert.True(t, totalExp.IsComputed)
	assert.Equal(t, 30.0, totalExp.ForecastTotal)
	assert.Equal(t, 170.0, profit.ForecastTotal)
	assert.Equal(t, -10.0, profit.Months["Nov"])
	assert.Equal(t, 200.0, profit.Months["Oct"])
	assert.Equal(t, ledger.ProfitCode, fc.Rows[len(fc.Rows)-1].Code)
}

func TestForecast_VarianceAgainstFrozenBudget(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateAccountingCell(f.ctx, f.farm, testFY, "Nov", "lpm_fog", 4000, ledger.CellOptions{})
	require.NoError(t, err)
	_, err = f.svc.Freeze(f.ctx, f.farm, testFY)
	require.NoError(t, err)

	// Actuals come in over budget after the freeze.
	_, err = f.svc.ImportGlActuals(f.ctx, f.farm, testFY, []ledger.GlActualRow{
		{AccountNumber: "6200", Month: "Nov", Amount: 5000},
	})
	require.NoError(t, err)

	fc, err := f.svc.Forecast(f.ctx, f.farm, testFY, ledger.Accounting)
	require.NoError(t, err)
	assert.True(t, fc.IsFrozen)
	assert.True(t, fc.Rows[0].Actuals["Nov"])
	assert.False(t, fc.Rows[0].Actuals["Dec"])

	fog := rowByCode(t, fc.Rows, "lpm_fog")
	assert.Equal(t, 5000.0, fog.ForecastTotal)
	assert.Equal(t, 4000.0, fog.FrozenBudgetTotal)
	assert.Equal(t, 1000.0, fog.Variance)
	assert.Equal(t, 25.0, fog.PctDiff)

	totalExp := rowByCode(t, fc.Rows, ledger.TotalExpenseCode)
	assert.Equal(t, 4000.0, totalExp.FrozenBudgetTotal)
	assert.Equal(t, 1000.0, totalExp.Variance)

	sum := fc.Summary["Nov"]
	assert.Equal(t, 0.0, sum.Revenue)
	assert.Equal(t, 5000.0, sum.TotalExpense)
	assert.Equal(t, -5000.0, sum.Profit)
}

func TestForecast_PriorYear(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SaveAssumption(f.ctx, f.farm, ledger.AssumptionInput{FiscalYear: testFY - 1, TotalAcres: 1000})
	require.NoError(t, err)
	for _, m := range []string{"Nov", "Jul"} {
		_, err := f.svc.UpdatePerUnitCell(f.ctx, f.farm, testFY-1, m, "input_fert", 12.345, nil)
		require.NoError(t, err)
	}

	prior, err := f.svc.PriorYearAggregate(f.ctx, f.farm, testFY, ledger.PerUnit)
	require.NoError(t, err)
	assert.Equal(t, 24.69, prior["input_fert"])
	assert.Equal(t, 24.69, prior["inputs"])

	fc, err := f.svc.Forecast(f.ctx, f.farm, testFY, ledger.PerUnit)
	require.NoError(t, err)
	assert.Equal(t, 24.69, rowByCode(t, fc.Rows, "input_fert").PriorYear)
	assert.Equal(t, 0.0, rowByCode(t, fc.Rows, "input_fert").ForecastTotal)
}

func TestForecast_NoAssumptionUsesDefaultMonths(t *testing.T) {
	f := newFixture(t)
	fc, err := f.svc.Forecast(f.ctx, f.farm, testFY+4, ledger.Accounting)
	require.NoError(t, err)
	assert.Equal(t, "Nov", fc.StartMonth)
	assert.Len(t, fc.Months, 12)
	assert.Equal(t, 0.0, fc.TotalAcres)
	assert.NotEmpty(t, fc.Rows)
}
