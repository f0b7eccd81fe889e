package ledger_test

import (
	"testing"

	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeze_SnapshotsEveryRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdatePerUnitCell(f.ctx, f.farm, testFY, "Nov", "input_seed", 10, nil)
	require.NoError(t, err)

	a, err := f.svc.Freeze(f.ctx, f.farm, testFY)
	require.NoError(t, err)
	assert.True(t, a.IsFrozen)
	require.NotNil(t, a.FrozenAt)

	pu, err := f.store.FrozenRecords(f.ctx, f.farm, testFY, ledger.PerUnit)
	require.NoError(t, err)
	acc, err := f.store.FrozenRecords(f.ctx, f.farm, testFY, ledger.Accounting)
	require.NoError(t, err)
	assert.Len(t, pu, 12)
	assert.Len(t, acc, 12)

	for _, r := range acc {
		if r.Month == "Nov" {
			assert.Equal(t, 10000.0, r.Data["input_seed"])
		}
	}

	_, err = f.svc.Freeze(f.ctx, f.farm, testFY)
	assert.ErrorIs(t, err, ledger.ErrAlreadyFrozen)
}

func TestFreeze_ReplacesEarlierSnapshot(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdatePerUnitCell(f.ctx, f.farm, testFY, "Nov", "input_seed", 10, nil)
	require.NoError(t, err)
	_, err = f.svc.Freeze(f.ctx, f.farm, testFY)
	require.NoError(t, err)

	_, err = f.svc.Unfreeze(f.ctx, f.farm, testFY)
	require.NoError(t, err)
	_, err = f.svc.UpdatePerUnitCell(f.ctx, f.farm, testFY, "Nov", "input_seed", 0, nil)
	require.NoError(t, err)
	_, err = f.svc.Freeze(f.ctx, f.farm, testFY)
	require.NoError(t, err)

	rows, err := f.store.FrozenRecords(f.ctx, f.farm, testFY, ledger.PerUnit)
	require.NoError(t, err)
	assert.Len(t, rows, 12)
	for _, r := range rows {
		if r.Month == "Nov" {
			assert.Equal(t, 0.0, r.Data["input_seed"])
		}
	}
}

func TestUnfreeze(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Unfreeze(f.ctx, f.farm, testFY)
	assert.ErrorIs(t, err, ledger.ErrNotFrozen)

	_, err = f.svc.Freeze(f.ctx, f.farm, testFY)
	require.NoError(t, err)
	a, err := f.svc.Unfreeze(f.ctx, f.farm, testFY)
	require.NoError(t, err)
	assert.False(t, a.IsFrozen)
	assert.Nil(t, a.FrozenAt)

	// The snapshot is kept for comparison.
	rows, err := f.store.FrozenRecords(f.ctx, f.farm, testFY, ledger.Accounting)
	require.NoError(t, err)
	assert.Len(t, rows, 12)

	_, err = f.svc.Freeze(f.ctx, f.farm, testFY+3)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
