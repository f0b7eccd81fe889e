package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/C2Farms/C2-Backend/internal/utils"
	"github.com/google/uuid"
)

type StatementRowType string

const (
	RowHeader     StatementRowType = "header"
	RowChild      StatementRowType = "child"
	RowSubtotal   StatementRowType = "subtotal"
	RowBlank      StatementRowType = "blank"
	RowGrandTotal StatementRowType = "grandTotal"
	RowProfit     StatementRowType = "profit"
)

// StatementRow is one printable line of a financial statement. Values follow
// the statement's month order; header and blank rows carry none.
type StatementRow struct {
	Label  string           `json:"label"`
	Values []float64        `json:"values"`
	Total  float64          `json:"total"`
	Type   StatementRowType `json:"type"`
}

type Statement struct {
	FiscalYear int            `json:"fiscalYear"`
	Type       RecordType     `json:"type"`
	Months     []string       `json:"months"`
	Rows       []StatementRow `json:"rows"`
}

// BuildStatementRows lays out a revenue section, one section per expense
// root, then Total Expenses and Net Profit (Loss). data is keyed by month.
func BuildStatementRows(t *Tree, data map[string]ValueMap, months []string) []StatementRow {
	values := func(code string) ([]float64, float64) {
		vals := make([]float64, len(months))
		var total float64
		for i, m := range months {
			vals[i] = data[m][code]
			total += vals[i]
		}
		return vals, total
	}

	var revenue *Category
	var expenses []Category
	for _, root := range t.Roots() {
		switch root.CategoryType {
		case CategoryRevenue:
			if revenue == nil {
				r := root
				revenue = &r
			}
		case CategoryComputed:
		default:
			expenses = append(expenses, root)
		}
	}

	var rows []StatementRow
	blank := StatementRow{Values: []float64{}, Type: RowBlank}
	section := func(parent Category) {
		rows = append(rows, StatementRow{Label: parent.DisplayName, Values: []float64{}, Type: RowHeader})
		for _, child := range t.Children(parent.ID) {
			vals, total := values(child.Code)
			rows = append(rows, StatementRow{Label: child.DisplayName, Values: vals, Total: total, Type: RowChild})
		}
		short, _, _ := strings.Cut(parent.DisplayName, " - ")
		vals, total := values(parent.Code)
		rows = append(rows, StatementRow{Label: "Total " + short, Values: vals, Total: total, Type: RowSubtotal})
		rows = append(rows, blank)
	}

	if revenue != nil {
		section(*revenue)
	}
	for _, g := range expenses {
		section(g)
	}

	expVals := make([]float64, len(months))
	var expTotal float64
	for i, m := range months {
		var sum float64
		for _, g := range expenses {
			sum += data[m][g.Code]
		}
		expVals[i] = utils.Round2(sum)
		expTotal += expVals[i]
	}
	rows = append(rows,
		StatementRow{Label: "Total Expenses", Values: expVals, Total: utils.Round2(expTotal), Type: RowGrandTotal},
		blank,
	)

	revVals := make([]float64, len(months))
	if revenue != nil {
		revVals, _ = values(revenue.Code)
	}
	profit := make([]float64, len(months))
	var profitTotal float64
	for i := range months {
		profit[i] = utils.Round2(revVals[i] - expVals[i])
		profitTotal += profit[i]
	}
	rows = append(rows, StatementRow{Label: "Net Profit (Loss)", Values: profit, Total: utils.Round2(profitTotal), Type: RowProfit})
	return rows
}

// Statement builds the statement for one representation of a fiscal year.
func (s *Service) Statement(ctx context.Context, farmID uuid.UUID, fiscalYear int, typ RecordType) (*Statement, error) {
	if typ != PerUnit && typ != Accounting {
		return nil, fmt.Errorf("%w: unknown record type %q", ErrInvalidInput, typ)
	}
	t, err := s.tree(ctx, farmID)
	if err != nil {
		return nil, err
	}
	a, err := s.optionalAssumption(ctx, farmID, fiscalYear)
	if err != nil {
		return nil, err
	}
	records, err := s.store.MonthlyRecords(ctx, farmID, fiscalYear, typ)
	if err != nil {
		return nil, fmt.Errorf("load %s records: %w", typ, err)
	}

	data := make(map[string]ValueMap, len(records))
	for _, r := range records {
		data[r.Month] = r.Data
	}
	months := fiscal.Months(startMonth(a))
	return &Statement{
		FiscalYear: fiscalYear,
		Type:       typ,
		Months:     months,
		Rows:       BuildStatementRows(t, data, months),
	}, nil
}
