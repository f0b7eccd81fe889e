package ledger_test

import (
	"testing"

	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplate(t *testing.T) {
	tmpl, err := ledger.DefaultTemplate()
	require.NoError(t, err)

	var roots, children int
	for _, c := range tmpl.Categories {
		if c.Parent == "" {
			roots++
		} else {
			children++
		}
	}
	assert.Equal(t, 5, roots)
	assert.Equal(t, 11, children)
	assert.Len(t, tmpl.GlAccounts, 12)
}

func TestCropRevenueCategories(t *testing.T) {
	cats := ledger.CropRevenueCategories(ledger.CropList{
		{Name: "Canola"},
		{Name: "  spring   WHEAT "},
		{Name: "   "},
	})
	require.Len(t, cats, 2)
	assert.Equal(t, "rev_canola", cats[0].Code)
	assert.Equal(t, "Canola Revenue", cats[0].DisplayName)
	assert.Equal(t, "rev_spring_wheat", cats[1].Code)
	assert.Equal(t, "Spring Wheat Revenue", cats[1].DisplayName)
	assert.Equal(t, "revenue", cats[1].Parent)
	assert.Equal(t, ledger.CategoryRevenue, cats[1].CategoryType)
}

func TestTemplateWithCrops(t *testing.T) {
	tmpl, err := ledger.DefaultTemplate()
	require.NoError(t, err)

	var revenue []ledger.TemplateCategory
	for _, c := range tmpl.WithCrops(testCrops) {
		if c.Parent == "revenue" {
			revenue = append(revenue, c)
		}
	}
	require.Len(t, revenue, 3)
	assert.Equal(t, "rev_canola", revenue[0].Code)
	assert.Equal(t, 2, revenue[0].SortOrder)
	assert.Equal(t, "rev_spring_wheat", revenue[1].Code)
	assert.Equal(t, 3, revenue[1].SortOrder)
	assert.Equal(t, "rev_other_income", revenue[2].Code)
	assert.Equal(t, 4, revenue[2].SortOrder)
}

func TestInitChartOfAccounts_Idempotent(t *testing.T) {
	f := newFixture(t)
	before, err := f.svc.Categories(f.ctx, f.farm)
	require.NoError(t, err)
	assert.Len(t, before, 18)

	// A renamed default account survives a re-run.
	_, err = f.svc.UpsertGlAccounts(f.ctx, f.farm, []ledger.GlAccountInput{
		{AccountNumber: "6200", AccountName: "Diesel", CategoryCode: "lpm_fog"},
	})
	require.NoError(t, err)

	after, err := f.svc.InitChartOfAccounts(f.ctx, f.farm, testCrops)
	require.NoError(t, err)
	assert.Len(t, after, 18)
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID, before[i].Code)
	}

	accounts, err := f.svc.GlAccounts(f.ctx, f.farm)
	require.NoError(t, err)
	assert.Len(t, accounts, 12)
	assert.Equal(t, "Diesel", f.glAccount(t, "6200").AccountName)
	assert.Equal(t, "ins_crop", f.glAccount(t, "8100").CategoryCode)

	canola := f.category(t, "rev_canola")
	assert.Equal(t, "revenue.rev_canola", canola.Path)
	assert.Equal(t, 1, canola.Level)
}
