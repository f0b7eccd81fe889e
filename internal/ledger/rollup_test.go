package ledger_test

import (
	"context"
	"testing"

	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportGlActuals_RollsUpAffectedMonths(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.ImportGlActuals(f.ctx, f.farm, testFY, []ledger.GlActualRow{
		{AccountNumber: "5100", Month: "Nov", Amount: 1000},
		{AccountNumber: "5100", Month: "Nov", Amount: 500},
		{AccountNumber: "5200", Month: "Nov", Amount: 2000},
		{AccountNumber: "7100", Month: "Dec", Amount: 3000},
		{AccountNumber: "7200", Month: "Dec", Amount: 250},
		{AccountNumber: "9999", Month: "Dec", Amount: 42},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.MonthsImported)
	assert.Equal(t, 4, res.RowsImported)
	assert.Equal(t, 1, res.SkippedRows)

	nov := f.record(t, testFY, "Nov", ledger.Accounting)
	assert.True(t, nov.IsActual)
	assert.Equal(t, 500.0, nov.Data["input_seed"], "last amount for a repeated account wins")
	assert.Equal(t, 2000.0, nov.Data["input_fert"])
	assert.Equal(t, 2500.0, nov.Data["inputs"])
	assert.Equal(t, 0.0, nov.Data["lpm"])

	dec := f.record(t, testFY, "Dec", ledger.Accounting)
	assert.Equal(t, 3250.0, dec.Data["lbf_rent_interest"])
	assert.Equal(t, 3250.0, dec.Data["lbf"])

	pu := f.record(t, testFY, "Nov", ledger.PerUnit)
	assert.True(t, pu.IsActual)
	assert.Equal(t, 2.5, pu.Data["inputs"])
	assert.Equal(t, 0.5, pu.Data["input_seed"])

	assert.False(t, f.record(t, testFY, "Jan", ledger.Accounting).IsActual)
}

func TestImportGlActuals_InvalidMonth(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportGlActuals(f.ctx, f.farm, testFY, []ledger.GlActualRow{
		{AccountNumber: "5100", Month: "Nov", Amount: 1},
		{AccountNumber: "5100", Month: "nov", Amount: 1},
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
	assert.False(t, f.record(t, testFY, "Nov", ledger.Accounting).IsActual)
}

func TestRollupGlActuals_Idempotent(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportGlActuals(f.ctx, f.farm, testFY, []ledger.GlActualRow{
		{AccountNumber: "6200", Month: "Feb", Amount: 1234.56},
		{AccountNumber: "4900", Month: "Feb", Amount: 10000},
	})
	require.NoError(t, err)
	first := f.record(t, testFY, "Feb", ledger.Accounting).Data

	again, err := f.svc.RollupGlActuals(f.ctx, f.farm, testFY, "Feb")
	require.NoError(t, err)
	assert.Equal(t, first, again.Accounting)
	assert.Equal(t, first, f.record(t, testFY, "Feb", ledger.Accounting).Data)
}

func TestRollupGlActuals_ZeroesLeavesWithoutActuals(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateAccountingCell(f.ctx, f.farm, testFY, "Mar", "lpm_repairs", 700, ledger.CellOptions{})
	require.NoError(t, err)

	res, err := f.svc.ImportGlActuals(f.ctx, f.farm, testFY, []ledger.GlActualRow{
		{AccountNumber: "6200", Month: "Mar", Amount: 300},
	})
	require.NoError(t, err)

	mar := res.Results["Mar"].Accounting
	assert.Equal(t, 0.0, mar["lpm_repairs"])
	assert.Equal(t, 300.0, mar["lpm_fog"])
	assert.Equal(t, 300.0, mar["lpm"])
}

func TestRollupGlActuals_ExcludesUnmappedAccounts(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportGlActuals(f.ctx, f.farm, testFY, []ledger.GlActualRow{
		{AccountNumber: "5100", Month: "Nov", Amount: 100},
		{AccountNumber: "5200", Month: "Nov", Amount: 200},
	})
	require.NoError(t, err)
	require.Equal(t, 300.0, f.record(t, testFY, "Nov", ledger.Accounting).Data["inputs"])

	inactive := false
	fert := f.glAccount(t, "5200")
	_, err = f.svc.UpdateGlAccount(f.ctx, f.farm, fert.ID, ledger.GlAccountUpdate{IsActive: &inactive, FiscalYear: testFY})
	require.NoError(t, err)

	nov := f.record(t, testFY, "Nov", ledger.Accounting)
	assert.Equal(t, 0.0, nov.Data["input_fert"])
	assert.Equal(t, 100.0, nov.Data["inputs"])
	assert.Nil(t, f.glAccount(t, "5200").CategoryID)
}

func TestRollupGlActuals_NoAssumptionDividesByOne(t *testing.T) {
	f := newFixture(t)
	const fy = testFY + 1

	_, err := f.svc.ImportGlActuals(f.ctx, f.farm, fy, []ledger.GlActualRow{
		{AccountNumber: "8100", Month: "Jun", Amount: 4500},
	})
	require.NoError(t, err)

	acc := f.record(t, fy, "Jun", ledger.Accounting)
	pu := f.record(t, fy, "Jun", ledger.PerUnit)
	assert.Equal(t, 4500.0, acc.Data["ins_crop"])
	assert.Equal(t, acc.Data, pu.Data)
}

func TestRollupYear_MarksEveryMonth(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.RollupYear(context.Background(), f.farm, testFY)
	require.NoError(t, err)
	assert.Len(t, res, 12)
	for _, m := range []string{"Nov", "Jun", "Oct"} {
		assert.True(t, f.record(t, testFY, m, ledger.Accounting).IsActual, m)
	}
}
