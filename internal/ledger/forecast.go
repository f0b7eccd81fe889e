package ledger

import (
	"context"
	"fmt"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/C2Farms/C2-Backend/internal/utils"
	"github.com/google/uuid"
)

// Codes of the synthetic rows appended to every forecast.
const (
	TotalExpenseCode = "_total_expense"
	ProfitCode       = "_profit"
)

// ForecastRow is one category across the fiscal year with its variance
// against the frozen budget.
type ForecastRow struct {
	Code         string             `json:"code"`
	DisplayName  string             `json:"display_name"`
	Level        int                `json:"level"`
	ParentCode   *string            `json:"parent_code"`
	CategoryType CategoryType       `json:"category_type"`
	SortOrder    int                `json:"sort_order"`
	IsComputed   bool               `json:"isComputed,omitempty"`
	Months       map[string]float64 `json:"months"`
	Actuals      map[string]bool    `json:"actuals"`
	Comments     map[string]string  `json:"comments,omitempty"`

	PriorYear         float64 `json:"priorYear"`
	ForecastTotal     float64 `json:"forecastTotal"`
	FrozenBudgetTotal float64 `json:"frozenBudgetTotal"`
	Variance          float64 `json:"variance"`
	PctDiff           float64 `json:"pctDiff"`
}

type MonthSummary struct {
	Revenue      float64 `json:"revenue"`
	TotalExpense float64 `json:"totalExpense"`
	Profit       float64 `json:"profit"`
}

// Forecast is the grid for one representation of a fiscal year.
type Forecast struct {
	FiscalYear int                     `json:"fiscalYear"`
	Type       RecordType              `json:"type"`
	StartMonth string                  `json:"startMonth"`
	Months     []string                `json:"months"`
	TotalAcres float64                 `json:"totalAcres"`
	IsFrozen   bool                    `json:"isFrozen"`
	Rows       []ForecastRow           `json:"rows"`
	Summary    map[string]MonthSummary `json:"summary,omitempty"`
}

// variance fills the budget comparison of a row whose ForecastTotal is set.
// Before a freeze the budget is the forecast itself, so variance is 0.
func (r *ForecastRow) variance(frozenTotal float64, isFrozen bool) {
	r.FrozenBudgetTotal = r.ForecastTotal
	if isFrozen {
		r.FrozenBudgetTotal = frozenTotal
	}
	r.Variance = r.ForecastTotal - r.FrozenBudgetTotal
	r.PctDiff = pctDiff(r.Variance, r.FrozenBudgetTotal)
}

func pctDiff(variance, budget float64) float64 {
	if budget == 0 {
		return 0
	}
	if budget < 0 {
		budget = -budget
	}
	return variance / budget * 100
}

func (r *ForecastRow) round() {
	for m, v := range r.Months {
		r.Months[m] = utils.Round2(v)
	}
	r.PriorYear = utils.Round2(r.PriorYear)
	r.ForecastTotal = utils.Round2(r.ForecastTotal)
	r.FrozenBudgetTotal = utils.Round2(r.FrozenBudgetTotal)
	r.Variance = utils.Round2(r.Variance)
	r.PctDiff = utils.Round2(r.PctDiff)
}

// forecastInputs are the independent reads behind a forecast.
type forecastInputs struct {
	tree       *Tree
	assumption *Assumption
	current    []MonthlyRecord
	frozen     []FrozenRecord
	prior      []MonthlyRecord
}

func (s *Service) loadForecast(ctx context.Context, farmID uuid.UUID, fiscalYear int, typ RecordType) (*forecastInputs, error) {
	var in forecastInputs
	g, gctx := s.readGroup(ctx)
	g.Go(func() (err error) {
		in.tree, err = s.tree(gctx, farmID)
		return err
	})
	g.Go(func() (err error) {
		in.assumption, err = s.optionalAssumption(gctx, farmID, fiscalYear)
		return err
	})
	g.Go(func() (err error) {
		in.current, err = s.store.MonthlyRecords(gctx, farmID, fiscalYear, typ)
		return err
	})
	g.Go(func() (err error) {
		in.frozen, err = s.store.FrozenRecords(gctx, farmID, fiscalYear, typ)
		return err
	})
	g.Go(func() (err error) {
		in.prior, err = s.store.MonthlyRecords(gctx, farmID, fiscalYear-1, typ)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load forecast: %w", err)
	}
	return &in, nil
}

func aggregate(records []MonthlyRecord) ValueMap {
	agg := ValueMap{}
	for _, r := range records {
		for k, v := range r.Data {
			agg[k] += v
		}
	}
	return agg
}

// Forecast builds the grid for one representation. Each row totals the 12
// fiscal months and compares against the frozen snapshot when the budget is
// frozen. Total expense and profit rows are appended when the farm has a
// revenue root and at least one expense root. Accounting grids also carry a
// per-month revenue, expense and profit summary.
func (s *Service) Forecast(ctx context.Context, farmID uuid.UUID, fiscalYear int, typ RecordType) (*Forecast, error) {
	in, err := s.loadForecast(ctx, farmID, fiscalYear, typ)
	if err != nil {
		return nil, err
	}

	sm := startMonth(in.assumption)
	months := fiscal.Months(sm)
	out := &Forecast{
		FiscalYear: fiscalYear,
		Type:       typ,
		StartMonth: sm,
		Months:     months,
	}
	if in.assumption != nil {
		out.TotalAcres = in.assumption.TotalAcres
		out.IsFrozen = in.assumption.IsFrozen
	}

	current := make(map[string]MonthlyRecord, len(in.current))
	for _, r := range in.current {
		current[r.Month] = r
	}
	frozen := make(map[string]ValueMap, len(in.frozen))
	for _, r := range in.frozen {
		frozen[r.Month] = r.Data
	}
	prior := aggregate(in.prior)

	actuals := make(map[string]bool, len(months))
	for _, m := range months {
		actuals[m] = current[m].IsActual
	}

	cats := in.tree.Categories()
	rows := make([]ForecastRow, 0, len(cats)+2)
	for _, c := range cats {
		row := ForecastRow{
			Code:         c.Code,
			DisplayName:  c.DisplayName,
			Level:        c.Level,
			CategoryType: c.CategoryType,
			SortOrder:    c.SortOrder,
			Months:       make(map[string]float64, len(months)),
			Actuals:      actuals,
			PriorYear:    prior[c.Code],
		}
		if pc := in.tree.ParentCode(c); pc != "" {
			row.ParentCode = &pc
		}
		if typ == PerUnit {
			row.Comments = make(map[string]string, len(months))
		}

		var frozenTotal float64
		for _, m := range months {
			v := current[m].Data[c.Code]
			row.Months[m] = v
			row.ForecastTotal += v
			frozenTotal += frozen[m][c.Code]
			if row.Comments != nil {
				row.Comments[m] = current[m].Comments[c.Code]
			}
		}
		row.variance(frozenTotal, out.IsFrozen)
		rows = append(rows, row)
	}

	revenue, expenses := splitRoots(rows)
	if typ == Accounting {
		out.Summary = make(map[string]MonthSummary, len(months))
		for _, m := range months {
			var sum MonthSummary
			for _, r := range revenue {
				sum.Revenue += r.Months[m]
			}
			for _, r := range expenses {
				sum.TotalExpense += r.Months[m]
			}
			sum.Profit = sum.Revenue - sum.TotalExpense
			out.Summary[m] = MonthSummary{
				Revenue:      utils.Round2(sum.Revenue),
				TotalExpense: utils.Round2(sum.TotalExpense),
				Profit:       utils.Round2(sum.Profit),
			}
		}
	}

	if len(revenue) > 0 && len(expenses) > 0 {
		totalExp := computedRow(TotalExpenseCode, "Total Expense", 998, months, actuals, expenses, nil)
		profit := computedRow(ProfitCode, "Profit", 999, months, actuals, revenue, []ForecastRow{totalExp})
		rows = append(rows, totalExp, profit)
	}

	for i := range rows {
		rows[i].round()
	}
	out.Rows = rows
	return out, nil
}

// splitRoots returns the revenue row and the top-level expense rows. Only
// the first revenue root counts, matching the statement.
func splitRoots(rows []ForecastRow) (revenue, expenses []ForecastRow) {
	for _, r := range rows {
		if r.ParentCode != nil || r.Level != 0 {
			continue
		}
		switch r.CategoryType {
		case CategoryRevenue:
			if len(revenue) == 0 {
				revenue = append(revenue, r)
			}
		case CategoryComputed:
		default:
			expenses = append(expenses, r)
		}
	}
	return revenue, expenses
}

// computedRow sums plus rows and subtracts minus rows, budget totals
// included.
func computedRow(code, name string, sortOrder int, months []string, actuals map[string]bool, plus, minus []ForecastRow) ForecastRow {
	row := ForecastRow{
		Code:         code,
		DisplayName:  name,
		Level:        -1,
		CategoryType: CategoryComputed,
		SortOrder:    sortOrder,
		IsComputed:   true,
		Months:       make(map[string]float64, len(months)),
		Actuals:      actuals,
	}
	var budget float64
	for _, r := range plus {
		for _, m := range months {
			row.Months[m] += r.Months[m]
		}
		row.PriorYear += r.PriorYear
		row.ForecastTotal += r.ForecastTotal
		budget += r.FrozenBudgetTotal
	}
	for _, r := range minus {
		for _, m := range months {
			row.Months[m] -= r.Months[m]
		}
		row.PriorYear -= r.PriorYear
		row.ForecastTotal -= r.ForecastTotal
		budget -= r.FrozenBudgetTotal
	}

	row.FrozenBudgetTotal = budget
	row.Variance = row.ForecastTotal - budget
	row.PctDiff = pctDiff(row.Variance, budget)
	return row
}

// PriorYearAggregate sums each code's values over every month of fy-1.
func (s *Service) PriorYearAggregate(ctx context.Context, farmID uuid.UUID, fiscalYear int, typ RecordType) (ValueMap, error) {
	records, err := s.store.MonthlyRecords(ctx, farmID, fiscalYear-1, typ)
	if err != nil {
		return nil, fmt.Errorf("load prior year: %w", err)
	}
	agg := aggregate(records)
	for k, v := range agg {
		agg[k] = utils.Round2(v)
	}
	return agg, nil
}
