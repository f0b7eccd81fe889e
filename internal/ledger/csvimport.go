package ledger

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/google/uuid"
)

// AccountImport is one line of an accounting export: an account name, the
// leaf it belongs to and its monthly amounts.
type AccountImport struct {
	Name         string             `json:"name"`
	CategoryCode string             `json:"category_code"`
	Months       map[string]float64 `json:"months"`
}

type SkippedImport struct {
	Account string `json:"account"`
	Reason  string `json:"reason"`
}

type AccountImportResult struct {
	Imported       int             `json:"imported"`
	Months         int             `json:"months"`
	Skipped        int             `json:"skipped"`
	SkippedDetails []SkippedImport `json:"skippedDetails"`
}

// ImportAccountingAccounts turns each line into a GL account numbered by its
// name and mapped to its leaf, stores the monthly amounts as GL details and
// rolls up every affected month. Lines with a missing field or a code that
// is not a leaf are reported and skipped, as are invalid months.
func (s *Service) ImportAccountingAccounts(ctx context.Context, farmID uuid.UUID, fiscalYear int, accounts []AccountImport) (*AccountImportResult, error) {
	start := time.Now()
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: accounts array is required", ErrInvalidInput)
	}
	if _, err := s.assumption(ctx, farmID, fiscalYear); err != nil {
		var notFound *AssumptionNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: no assumptions found for FY %d, set up acres and crops before importing",
				ErrInvalidInput, fiscalYear)
		}
		return nil, err
	}
	t, err := s.tree(ctx, farmID)
	if err != nil {
		return nil, err
	}

	res := &AccountImportResult{SkippedDetails: []SkippedImport{}}
	skip := func(account, reason string) {
		res.SkippedDetails = append(res.SkippedDetails, SkippedImport{Account: account, Reason: reason})
	}

	type cell struct {
		account uuid.UUID
		month   string
	}
	affected := map[string]bool{}
	seen := map[cell]int{}
	var details []GlActualDetail
	for _, acct := range accounts {
		name := strings.TrimSpace(acct.Name)
		if name == "" || acct.CategoryCode == "" || acct.Months == nil {
			if name == "" {
				name = "?"
			}
			skip(name, "Missing name, category_code, or months")
			continue
		}
		categoryID, err := resolveMapping(t, acct.CategoryCode)
		if err != nil {
			skip(name, fmt.Sprintf("Invalid leaf category %q", acct.CategoryCode))
			continue
		}

		gl := &GlAccount{
			FarmID:        farmID,
			AccountNumber: name,
			AccountName:   name,
			CategoryID:    categoryID,
			IsActive:      true,
		}
		if err := s.store.SaveGlAccount(ctx, gl); err != nil {
			return nil, fmt.Errorf("save GL account %s: %w", name, err)
		}

		for _, month := range sortedMonths(acct.Months) {
			if !fiscal.IsValidMonth(month) {
				skip(name, fmt.Sprintf("Invalid month %q", month))
				continue
			}
			key := cell{gl.ID, month}
			if i, ok := seen[key]; ok {
				details[i].Amount = acct.Months[month]
				continue
			}
			seen[key] = len(details)
			details = append(details, GlActualDetail{
				FarmID: farmID, FiscalYear: fiscalYear, Month: month, GlAccountID: gl.ID, Amount: acct.Months[month],
			})
			affected[month] = true
		}
		res.Imported++
	}

	if err := s.store.UpsertGlActuals(ctx, details); err != nil {
		return nil, fmt.Errorf("upsert GL actuals: %w", err)
	}

	months := make([]string, 0, len(affected))
	for m := range affected {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		return fiscal.MonthIndex(months[i], "") < fiscal.MonthIndex(months[j], "")
	})
	if _, err := s.rollupMonths(ctx, farmID, fiscalYear, months); err != nil {
		return nil, err
	}

	res.Months = len(months)
	res.Skipped = len(res.SkippedDetails)
	LogImport("CSV Import", farmID, fiscalYear, len(details), res.Months, time.Since(start))
	return res, nil
}

func sortedMonths(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseActualsCSV reads an accounting export with the header
// account,category_code followed by any of the month columns Jan..Dec.
// Blank month cells are left out; amounts may carry $, thousands separators
// or parentheses for negatives.
func ParseActualsCSV(r io.Reader) ([]AccountImport, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, k := range []string{"account", "category_code"} {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	var out []AccountImport
	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		get := func(i int) string {
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		acct := AccountImport{
			Name:         get(col["account"]),
			CategoryCode: get(col["category_code"]),
			Months:       map[string]float64{},
		}
		if acct.Name == "" && acct.CategoryCode == "" {
			continue
		}
		for _, m := range fiscal.CalendarMonths {
			i, ok := col[m]
			if !ok {
				continue
			}
			raw := get(i)
			if raw == "" {
				continue
			}
			v, err := parseAmount(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", rowIdx+1, m, err)
			}
			acct.Months[m] = v
		}
		out = append(out, acct)
	}
	return out, nil
}

func parseAmount(s string) (float64, error) {
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		v = -v
	}
	return v, nil
}
