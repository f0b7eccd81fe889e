package ledger_test

import (
	"strings"
	"testing"

	"github.com/C2Farms/C2-Backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleActualsCSV = "\ufeffaccount,category_code,Nov,Dec,Jan\n" +
	"Seed Purchases,input_seed,\"$1,200.50\",,300\n" +
	"Custom Spraying,input_chem,(150),75,\n" +
	",,,,\n"

func TestParseActualsCSV(t *testing.T) {
	accounts, err := ledger.ParseActualsCSV(strings.NewReader(sampleActualsCSV))
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "Seed Purchases", accounts[0].Name)
	assert.Equal(t, "input_seed", accounts[0].CategoryCode)
	assert.Equal(t, map[string]float64{"Nov": 1200.50, "Jan": 300}, accounts[0].Months)

	assert.Equal(t, map[string]float64{"Nov": -150, "Dec": 75}, accounts[1].Months)
}

func TestParseActualsCSV_Errors(t *testing.T) {
	_, err := ledger.ParseActualsCSV(strings.NewReader("name,category_code,Nov\nx,input_seed,1\n"))
	assert.ErrorContains(t, err, "missing required column: account")

	_, err = ledger.ParseActualsCSV(strings.NewReader("account,category_code,Nov\n"))
	assert.Error(t, err)

	_, err = ledger.ParseActualsCSV(strings.NewReader("account,category_code,Nov\nx,input_seed,abc\n"))
	assert.ErrorContains(t, err, "row 2")
}

func TestImportAccountingAccounts(t *testing.T) {
	f := newFixture(t)
	accounts, err := ledger.ParseActualsCSV(strings.NewReader(sampleActualsCSV))
	require.NoError(t, err)
	accounts = append(accounts,
		ledger.AccountImport{Name: "Mystery", CategoryCode: "inputs", Months: map[string]float64{"Nov": 1}},
		ledger.AccountImport{Name: "Typo Month", CategoryCode: "lpm_fog", Months: map[string]float64{"Novv": 9, "Feb": 60}},
		ledger.AccountImport{Name: "", CategoryCode: "lpm_fog", Months: map[string]float64{"Feb": 1}},
	)

	res, err := f.svc.ImportAccountingAccounts(f.ctx, f.farm, testFY, accounts)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 4, res.Months)
	assert.Equal(t, 3, res.Skipped)
	assert.Len(t, res.SkippedDetails, 3)

	nov := f.record(t, testFY, "Nov", ledger.Accounting)
	assert.True(t, nov.IsActual)
	assert.Equal(t, 1200.50, nov.Data["input_seed"])
	assert.Equal(t, -150.0, nov.Data["input_chem"])
	assert.Equal(t, 1050.50, nov.Data["inputs"])

	feb := f.record(t, testFY, "Feb", ledger.Accounting)
	assert.Equal(t, 60.0, feb.Data["lpm_fog"])

	acct := f.glAccount(t, "Seed Purchases")
	assert.Equal(t, "Seed Purchases", acct.AccountName)
	assert.Equal(t, "input_seed", acct.CategoryCode)
	assert.True(t, acct.IsActive)

	// Re-importing the same file changes nothing.
	_, err = f.svc.ImportAccountingAccounts(f.ctx, f.farm, testFY, accounts)
	require.NoError(t, err)
	assert.Equal(t, nov.Data, f.record(t, testFY, "Nov", ledger.Accounting).Data)
}

func TestImportAccountingAccounts_RequiresAssumption(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportAccountingAccounts(f.ctx, f.farm, testFY+2, []ledger.AccountImport{
		{Name: "Seed", CategoryCode: "input_seed", Months: map[string]float64{"Nov": 1}},
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = f.svc.ImportAccountingAccounts(f.ctx, f.farm, testFY, nil)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}
