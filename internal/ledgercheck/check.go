// Package ledgercheck verifies that stored accounting values agree with
// per-unit values times the year's acres.
package ledgercheck

import (
	"math"
	"sort"

	"github.com/C2Farms/C2-Backend/internal/ledger"
)

// DefaultTolerance absorbs cent rounding on both sides of the cascade.
const DefaultTolerance = 0.05

type Mismatch struct {
	FiscalYear int
	Month      string
	Code       string
	PerUnit    float64
	Accounting float64
	Expected   float64
}

// Month holds the two records of one fiscal month.
type Month struct {
	FiscalYear int
	Month      string
	Acres      float64
	PerUnit    ledger.ValueMap
	Accounting ledger.ValueMap
}

// Compare returns every code where accounting differs from per-unit × acres
// by more than tol. A code missing on one side counts as zero. Months without
// acres are not checked.
func Compare(m Month, tol float64) []Mismatch {
	if m.Acres <= 0 {
		return nil
	}
	codes := map[string]struct{}{}
	for c := range m.PerUnit {
		codes[c] = struct{}{}
	}
	for c := range m.Accounting {
		codes[c] = struct{}{}
	}

	var out []Mismatch
	for c := range codes {
		pu, acct := m.PerUnit[c], m.Accounting[c]
		want := pu * m.Acres
		// Per-unit values are stored to the cent, so allow one cent per acre.
		if math.Abs(acct-want) > tol+0.005*m.Acres {
			out = append(out, Mismatch{
				FiscalYear: m.FiscalYear,
				Month:      m.Month,
				Code:       c,
				PerUnit:    pu,
				Accounting: acct,
				Expected:   want,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
