package ledger_test

import (
	"testing"

	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func cat(code string, parent *ledger.Category, level, sort int) ledger.Category {
	c := ledger.Category{ID: uuid.New(), Code: code, Level: level, SortOrder: sort, IsActive: true}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	return c
}

func TestRecalcParentSums_Nested(t *testing.T) {
	root := cat("lpm", nil, 0, 1)
	mid := cat("lpm_equipment", &root, 1, 2)
	fuel := cat("lpm_fog", &mid, 2, 3)
	repairs := cat("lpm_repairs", &mid, 2, 4)
	labour := cat("lpm_personnel", &root, 1, 5)
	cats := []ledger.Category{root, mid, fuel, repairs, labour}

	data := ledger.ValueMap{"lpm_fog": 10, "lpm_repairs": 5.5, "lpm_personnel": 20, "lpm": 999}
	out := ledger.RecalcParentSums(data, cats)

	assert.Equal(t, 15.5, out["lpm_equipment"])
	assert.Equal(t, 35.5, out["lpm"])
	assert.Equal(t, 10.0, out["lpm_fog"])

	// The input is left alone.
	assert.Equal(t, 999.0, data["lpm"])
	_, ok := data["lpm_equipment"]
	assert.False(t, ok)
}

func TestRecalcParentSums_MissingChildrenCountAsZero(t *testing.T) {
	root := cat("inputs", nil, 0, 1)
	seed := cat("input_seed", &root, 1, 2)
	fert := cat("input_fert", &root, 1, 3)

	out := ledger.RecalcParentSums(ledger.ValueMap{"input_seed": 4, "stray": 7}, []ledger.Category{root, seed, fert})

	assert.Equal(t, 4.0, out["inputs"])
	assert.Equal(t, 7.0, out["stray"])
	_, ok := out["input_fert"]
	assert.False(t, ok)
}

func TestRecalcParentSums_EmptyDataZeroesParents(t *testing.T) {
	root := cat("insurance", nil, 0, 1)
	crop := cat("ins_crop", &root, 1, 2)

	out := ledger.RecalcParentSums(ledger.ValueMap{}, []ledger.Category{root, crop})
	assert.Equal(t, ledger.ValueMap{"insurance": 0}, out)
}
