package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/C2Farms/C2-Backend/internal/fiscal"
	"github.com/C2Farms/C2-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handlers binds the HTTP surface to a Service.
type Handlers struct {
	svc *Service
}

func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps ledger errors to status codes. Anything unrecognised is
// logged and reported as a 500.
func writeError(w http.ResponseWriter, op string, err error) {
	var (
		invalidCat *InvalidCategoryError
		locked     *LockedMonthError
		dupCode    *DuplicateCategoryCodeError
	)
	switch {
	case errors.As(err, &invalidCat):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &locked):
		if locked.Reason == LockedFrozen {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusLocked)
	case errors.As(err, &dupCode):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrAlreadyFrozen), errors.Is(err, ErrNotFrozen), errors.Is(err, ErrDuplicateGlAcc):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		LogError(op, err)
		http.Error(w, "Failed to "+op+": "+err.Error(), http.StatusInternalServerError)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func farmID(r *http.Request) uuid.UUID {
	id, _ := utils.GetFarmIDFromContext(r.Context())
	return id
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	fy, ok := fiscal.ParseYear(chi.URLParam(r, "year"))
	if !ok {
		http.Error(w, "Invalid fiscal year", http.StatusBadRequest)
	}
	return fy, ok
}

func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func recordTypeQuery(r *http.Request, def RecordType) (RecordType, bool) {
	switch t := RecordType(r.URL.Query().Get("type")); t {
	case "":
		return def, true
	case PerUnit, Accounting:
		return t, true
	default:
		return "", false
	}
}

// FarmContext resolves {farmId} into the request context and rejects
// unknown farms.
func (h *Handlers) FarmContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "farmId"))
		if err != nil {
			http.Error(w, "Invalid farm id", http.StatusBadRequest)
			return
		}
		if _, err := h.svc.store.Farm(r.Context(), id); err != nil {
			writeError(w, "load farm", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(utils.WithFarmID(r.Context(), id)))
	})
}

// farmRateKey buckets import requests by farm.
func farmRateKey(r *http.Request) string {
	id, ok := utils.GetFarmIDFromContext(r.Context())
	if !ok {
		return ""
	}
	return id.String()
}

func (h *Handlers) CreateFarm(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &input) {
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	farm := &Farm{Name: input.Name}
	if err := h.svc.store.SaveFarm(r.Context(), farm); err != nil {
		writeError(w, "create farm", err)
		return
	}
	writeJSON(w, http.StatusCreated, farm)
}

// ListCategories returns the active categories, nested when ?tree=true.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("tree") == "true" {
		tree, err := h.svc.CategoryTree(r.Context(), farmID(r))
		if err != nil {
			writeError(w, "fetch categories", err)
			return
		}
		writeJSON(w, http.StatusOK, tree)
		return
	}
	cats, err := h.svc.Categories(r.Context(), farmID(r))
	if err != nil {
		writeError(w, "fetch categories", err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handlers) ListLeafCategories(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.svc.LeafCategories(r.Context(), farmID(r))
	if err != nil {
		writeError(w, "fetch leaf categories", err)
		return
	}
	writeJSON(w, http.StatusOK, leaves)
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryCreate
	if !decode(w, r, &input) {
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), farmID(r), input)
	if err != nil {
		writeError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input CategoryUpdate
	if !decode(w, r, &input) {
		return
	}
	c, err := h.svc.UpdateCategory(r.Context(), farmID(r), id, input)
	if err != nil {
		writeError(w, "update category", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeactivateCategory(r.Context(), farmID(r), id); err != nil {
		writeError(w, "deactivate category", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deactivated"})
}

// InitChartOfAccounts seeds the default template. Crops come from the body,
// or from the assumption of fiscal_year when the body has none.
func (h *Handlers) InitChartOfAccounts(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FiscalYear int      `json:"fiscal_year"`
		Crops      CropList `json:"crops"`
	}
	if !decode(w, r, &input) {
		return
	}
	crops := input.Crops
	if len(crops) == 0 && input.FiscalYear != 0 {
		a, err := h.svc.optionalAssumption(r.Context(), farmID(r), input.FiscalYear)
		if err != nil {
			writeError(w, "load assumption", err)
			return
		}
		if a != nil {
			crops = a.Crops
		}
	}
	cats, err := h.svc.InitChartOfAccounts(r.Context(), farmID(r), crops)
	if err != nil {
		writeError(w, "initialize chart of accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handlers) ListGlAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.GlAccounts(r.Context(), farmID(r))
	if err != nil {
		writeError(w, "fetch GL accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handlers) UpsertGlAccounts(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Accounts []GlAccountInput `json:"accounts"`
	}
	if !decode(w, r, &input) {
		return
	}
	if len(input.Accounts) == 0 {
		http.Error(w, "accounts array is required", http.StatusBadRequest)
		return
	}
	accounts, err := h.svc.UpsertGlAccounts(r.Context(), farmID(r), input.Accounts)
	if err != nil {
		writeError(w, "save GL accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handlers) UpdateGlAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input GlAccountUpdate
	if !decode(w, r, &input) {
		return
	}
	a, err := h.svc.UpdateGlAccount(r.Context(), farmID(r), id, input)
	if err != nil {
		writeError(w, "update GL account", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) BulkAssignGlAccounts(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FiscalYear  int            `json:"fiscal_year"`
		Assignments []GlAssignment `json:"assignments"`
	}
	if !decode(w, r, &input) {
		return
	}
	if len(input.Assignments) == 0 {
		http.Error(w, "assignments array is required", http.StatusBadRequest)
		return
	}
	n, err := h.svc.BulkAssignGlAccounts(r.Context(), farmID(r), input.Assignments, input.FiscalYear)
	if err != nil {
		writeError(w, "assign GL accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

// ImportGlActuals upserts any accounts sent along with the rows, then
// imports the rows.
func (h *Handlers) ImportGlActuals(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FiscalYear int              `json:"fiscal_year"`
		Accounts   []GlAccountInput `json:"accounts"`
		Rows       []GlActualRow    `json:"rows"`
	}
	if !decode(w, r, &input) {
		return
	}
	if !fiscal.ValidYear(input.FiscalYear) {
		http.Error(w, "Invalid fiscal year", http.StatusBadRequest)
		return
	}
	if len(input.Rows) == 0 {
		http.Error(w, "rows array is required", http.StatusBadRequest)
		return
	}
	if len(input.Accounts) > 0 {
		if _, err := h.svc.UpsertGlAccounts(r.Context(), farmID(r), input.Accounts); err != nil {
			writeError(w, "save GL accounts", err)
			return
		}
	}
	res, err := h.svc.ImportGlActuals(r.Context(), farmID(r), input.FiscalYear, input.Rows)
	if err != nil {
		writeError(w, "import GL actuals", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ImportAccountingCSV takes either the parsed JSON form or a raw text/csv
// body with the year in ?fiscal_year=.
func (h *Handlers) ImportAccountingCSV(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FiscalYear int             `json:"fiscal_year"`
		Accounts   []AccountImport `json:"accounts"`
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		fy, err := strconv.Atoi(r.URL.Query().Get("fiscal_year"))
		if err != nil {
			http.Error(w, "fiscal_year query parameter is required", http.StatusBadRequest)
			return
		}
		accounts, err := ParseActualsCSV(r.Body)
		if err != nil {
			http.Error(w, "Invalid CSV: "+err.Error(), http.StatusBadRequest)
			return
		}
		input.FiscalYear, input.Accounts = fy, accounts
	} else if !decode(w, r, &input) {
		return
	}

	if !fiscal.ValidYear(input.FiscalYear) {
		http.Error(w, "Invalid fiscal year", http.StatusBadRequest)
		return
	}
	res, err := h.svc.ImportAccountingAccounts(r.Context(), farmID(r), input.FiscalYear, input.Accounts)
	if err != nil {
		writeError(w, "import accounting CSV", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) ClearYear(w http.ResponseWriter, r *http.Request) {
	fy, ok := yearParam(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ClearYear(r.Context(), farmID(r), fy)
	if err != nil {
		writeError(w, "clear year", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) GetAssumption(w http.ResponseWriter, r *http.Request) {
	fy, ok := yearParam(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Assumption(r.Context(), farmID(r), fy)
	if err != nil {
		writeError(w, "fetch assumptions", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) SaveAssumption(w http.ResponseWriter, r *http.Request) {
	var input AssumptionInput
	if !decode(w, r, &input) {
		return
	}
	a, err := h.svc.SaveAssumption(r.Context(), farmID(r), input)
	if err != nil {
		writeError(w, "save assumptions", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) FreezeBudget(w http.ResponseWriter, r *http.Request) {
	fy, ok := yearParam(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Freeze(r.Context(), farmID(r), fy)
	if err != nil {
		writeError(w, "freeze budget", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) UnfreezeBudget(w http.ResponseWriter, r *http.Request) {
	fy, ok := yearParam(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Unfreeze(r.Context(), farmID(r), fy)
	if err != nil {
		writeError(w, "unfreeze budget", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) forecast(typ RecordType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fy, ok := yearParam(w, r)
		if !ok {
			return
		}
		f, err := h.svc.Forecast(r.Context(), farmID(r), fy, typ)
		if err != nil {
			writeError(w, "fetch "+string(typ)+" data", err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

type cellInput struct {
	CategoryCode string   `json:"category_code"`
	Value        *float64 `json:"value"`
	Comment      *string  `json:"comment"`
	IsActual     bool     `json:"is_actual"`
}

// readCell parses the year, month and body of a cell edit and rejects locked
// months.
func (h *Handlers) readCell(w http.ResponseWriter, r *http.Request, typ RecordType) (int, string, cellInput, bool) {
	var input cellInput
	fy, ok := yearParam(w, r)
	if !ok {
		return 0, "", input, false
	}
	month := chi.URLParam(r, "month")
	if !decode(w, r, &input) {
		return 0, "", input, false
	}
	if input.CategoryCode == "" || input.Value == nil {
		http.Error(w, "category_code and value are required", http.StatusBadRequest)
		return 0, "", input, false
	}
	if err := h.svc.CheckEditable(r.Context(), farmID(r), fy, month, typ); err != nil {
		writeError(w, "update "+string(typ)+" cell", err)
		return 0, "", input, false
	}
	return fy, month, input, true
}

func (h *Handlers) UpdatePerUnitCell(w http.ResponseWriter, r *http.Request) {
	fy, month, input, ok := h.readCell(w, r, PerUnit)
	if !ok {
		return
	}
	res, err := h.svc.UpdatePerUnitCell(r.Context(), farmID(r), fy, month, input.CategoryCode, *input.Value, input.Comment)
	if err != nil {
		writeError(w, "update per-unit cell", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) UpdateAccountingCell(w http.ResponseWriter, r *http.Request) {
	fy, month, input, ok := h.readCell(w, r, Accounting)
	if !ok {
		return
	}
	res, err := h.svc.UpdateAccountingCell(r.Context(), farmID(r), fy, month, input.CategoryCode, *input.Value,
		CellOptions{IsActual: input.IsActual})
	if err != nil {
		writeError(w, "update accounting cell", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) SaveManualActuals(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FiscalYear int      `json:"fiscal_year"`
		Month      string   `json:"month"`
		Data       ValueMap `json:"data"`
	}
	if !decode(w, r, &input) {
		return
	}
	if input.FiscalYear == 0 || input.Month == "" || input.Data == nil {
		http.Error(w, "fiscal_year, month, and data are required", http.StatusBadRequest)
		return
	}
	res, err := h.svc.SaveManualActuals(r.Context(), farmID(r), input.FiscalYear, input.Month, input.Data)
	if err != nil {
		writeError(w, "save actuals", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) RollupYear(w http.ResponseWriter, r *http.Request) {
	fy, ok := yearParam(w, r)
	if !ok {
		return
	}
	res, err := h.svc.RollupYear(r.Context(), farmID(r), fy)
	if err != nil {
		writeError(w, "roll up GL actuals", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) PriorYear(w http.ResponseWriter, r *http.Request) {
	fy, ok := yearParam(w, r)
	if !ok {
		return
	}
	typ, ok := recordTypeQuery(r, PerUnit)
	if !ok {
		http.Error(w, "Invalid type", http.StatusBadRequest)
		return
	}
	agg, err := h.svc.PriorYearAggregate(r.Context(), farmID(r), fy, typ)
	if err != nil {
		writeError(w, "fetch prior year", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fiscalYear": fy - 1, "data": agg})
}

func (h *Handlers) Statement(w http.ResponseWriter, r *http.Request) {
	fy, ok := yearParam(w, r)
	if !ok {
		return
	}
	typ, ok := recordTypeQuery(r, Accounting)
	if !ok {
		http.Error(w, "Invalid type", http.StatusBadRequest)
		return
	}
	st, err := h.svc.Statement(r.Context(), farmID(r), fy, typ)
	if err != nil {
		writeError(w, "build statement", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
