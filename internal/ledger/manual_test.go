package ledger_test

import (
	"errors"
	"testing"

	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveManualActuals_MergesAndMarksActual(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateAccountingCell(f.ctx, f.farm, testFY, "Aug", "ins_other", 1200, ledger.CellOptions{})
	require.NoError(t, err)

	res, err := f.svc.SaveManualActuals(f.ctx, f.farm, testFY, "Aug", ledger.ValueMap{"ins_crop": 3000})
	require.NoError(t, err)
	assert.Equal(t, 4200.0, res.Accounting["insurance"])
	assert.Equal(t, 4.2, res.PerUnit["insurance"])

	assert.True(t, f.record(t, testFY, "Aug", ledger.Accounting).IsActual)
	assert.True(t, f.record(t, testFY, "Aug", ledger.PerUnit).IsActual)
}

func TestSaveManualActuals_Rejections(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SaveManualActuals(f.ctx, f.farm, testFY, "Aug", ledger.ValueMap{"insurance": 1})
	var invalid *ledger.InvalidCategoryError
	assert.True(t, errors.As(err, &invalid))

	_, err = f.svc.SaveManualActuals(f.ctx, f.farm, testFY, "Augst", ledger.ValueMap{"ins_crop": 1})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = f.svc.SaveManualActuals(f.ctx, f.farm, testFY, "Aug", ledger.ValueMap{})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	assert.False(t, f.record(t, testFY, "Aug", ledger.Accounting).IsActual)
}

func TestClearYear(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportGlActuals(f.ctx, f.farm, testFY, []ledger.GlActualRow{
		{AccountNumber: "5100", Month: "Nov", Amount: 100},
		{AccountNumber: "5100", Month: "Dec", Amount: 100},
	})
	require.NoError(t, err)

	res, err := f.svc.ClearYear(f.ctx, f.farm, testFY)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DeletedDetails)
	assert.Equal(t, int64(24), res.ResetMonthly)

	nov := f.record(t, testFY, "Nov", ledger.Accounting)
	assert.Empty(t, nov.Data)
	assert.False(t, nov.IsActual)

	// The assumption and chart of accounts are kept.
	_, err = f.svc.Assumption(f.ctx, f.farm, testFY)
	require.NoError(t, err)
	assert.Len(t, f.mustAccounts(t), 12)

	// A rollup after clearing finds no details.
	again, err := f.svc.RollupGlActuals(f.ctx, f.farm, testFY, "Nov")
	require.NoError(t, err)
	assert.Equal(t, 0.0, again.Accounting["inputs"])
}

func (f *fixture) mustAccounts(t *testing.T) []ledger.GlAccount {
	t.Helper()
	accounts, err := f.svc.GlAccounts(f.ctx, f.farm)
	require.NoError(t, err)
	return accounts
}
