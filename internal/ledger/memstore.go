package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type monthlyKey struct {
	farmID     uuid.UUID
	fiscalYear int
	month      string
	typ        RecordType
}

type detailKey struct {
	farmID      uuid.UUID
	fiscalYear  int
	month       string
	glAccountID uuid.UUID
}

type yearKey struct {
	farmID     uuid.UUID
	fiscalYear int
}

// MemStore is an in-memory Store. Values are copied on the way in and out so
// callers never share maps with the store.
type MemStore struct {
	mu sync.RWMutex

	farms       map[uuid.UUID]Farm
	categories  map[uuid.UUID]Category
	assumptions map[yearKey]Assumption
	monthly     map[monthlyKey]MonthlyRecord
	frozen      map[monthlyKey]FrozenRecord
	glAccounts  map[uuid.UUID]GlAccount
	details     map[detailKey]GlActualDetail
}

func NewMemStore() *MemStore {
	return &MemStore{
		farms:       map[uuid.UUID]Farm{},
		categories:  map[uuid.UUID]Category{},
		assumptions: map[yearKey]Assumption{},
		monthly:     map[monthlyKey]MonthlyRecord{},
		frozen:      map[monthlyKey]FrozenRecord{},
		glAccounts:  map[uuid.UUID]GlAccount{},
		details:     map[detailKey]GlActualDetail{},
	}
}

func (s *MemStore) SaveFarm(_ context.Context, f *Farm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.UpdatedAt = time.Now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = f.UpdatedAt
	}
	s.farms[f.ID] = *f
	return nil
}

func (s *MemStore) Farm(_ context.Context, id uuid.UUID) (*Farm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.farms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (s *MemStore) Categories(_ context.Context, farmID uuid.UUID) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Category
	for _, c := range s.categories {
		if c.FarmID == farmID && c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (s *MemStore) Category(_ context.Context, farmID, id uuid.UUID) (*Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok || c.FarmID != farmID {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemStore) categoryByCode(farmID uuid.UUID, code string) (Category, bool) {
	for _, c := range s.categories {
		if c.FarmID == farmID && c.Code == code {
			return c, true
		}
	}
	return Category{}, false
}

func (s *MemStore) CreateCategory(_ context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categoryByCode(c.FarmID, c.Code); ok {
		return &DuplicateCategoryCodeError{Code: c.Code}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.categories[c.ID] = *c
	return nil
}

func (s *MemStore) UpdateCategory(_ context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now()
	s.categories[c.ID] = *c
	return nil
}

func (s *MemStore) UpsertCategory(_ context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.categoryByCode(c.FarmID, c.Code); ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	s.categories[c.ID] = *c
	return nil
}

func (s *MemStore) MaxSortOrder(_ context.Context, farmID uuid.UUID, parentID *uuid.UUID) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	maxSort, found := 0, false
	for _, c := range s.categories {
		if c.FarmID != farmID || !sameParent(c.ParentID, parentID) {
			continue
		}
		if !found || c.SortOrder > maxSort {
			maxSort, found = c.SortOrder, true
		}
	}
	return maxSort, found, nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *MemStore) Assumption(_ context.Context, farmID uuid.UUID, fiscalYear int) (*Assumption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assumptions[yearKey{farmID, fiscalYear}]
	if !ok {
		return nil, ErrNotFound
	}
	a.Crops = append(CropList(nil), a.Crops...)
	return &a, nil
}

func (s *MemStore) SaveAssumption(_ context.Context, a *Assumption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := yearKey{a.FarmID, a.FiscalYear}
	if existing, ok := s.assumptions[key]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	stored := *a
	stored.Crops = append(CropList(nil), a.Crops...)
	s.assumptions[key] = stored
	return nil
}

func copyRecord(r MonthlyRecord) MonthlyRecord {
	r.Data = r.Data.Clone()
	r.Comments = r.Comments.Clone()
	return r
}

func (s *MemStore) MonthlyRecord(_ context.Context, farmID uuid.UUID, fiscalYear int, month string, typ RecordType) (*MonthlyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.monthly[monthlyKey{farmID, fiscalYear, month, typ}]
	if !ok {
		return nil, ErrNotFound
	}
	r = copyRecord(r)
	return &r, nil
}

func (s *MemStore) MonthlyRecords(_ context.Context, farmID uuid.UUID, fiscalYear int, typ RecordType) ([]MonthlyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []MonthlyRecord
	for k, r := range s.monthly {
		if k.farmID == farmID && k.fiscalYear == fiscalYear && k.typ == typ {
			out = append(out, copyRecord(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (s *MemStore) SaveMonthlyRecord(_ context.Context, r *MonthlyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := monthlyKey{r.FarmID, r.FiscalYear, r.Month, r.Type}
	if existing, ok := s.monthly[key]; ok {
		r.ID = existing.ID
	} else if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.UpdatedAt = time.Now()
	s.monthly[key] = copyRecord(*r)
	return nil
}

func (s *MemStore) EnsureMonthlyRecords(_ context.Context, farmID uuid.UUID, fiscalYear int, months []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range months {
		for _, typ := range []RecordType{PerUnit, Accounting} {
			key := monthlyKey{farmID, fiscalYear, m, typ}
			if _, ok := s.monthly[key]; ok {
				continue
			}
			s.monthly[key] = MonthlyRecord{
				ID: uuid.New(), FarmID: farmID, FiscalYear: fiscalYear, Month: m, Type: typ,
				Data: ValueMap{}, Comments: CommentMap{}, UpdatedAt: time.Now(),
			}
		}
	}
	return nil
}

func (s *MemStore) ClearYear(_ context.Context, farmID uuid.UUID, fiscalYear int) (ClearResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res ClearResult
	for k := range s.details {
		if k.farmID == farmID && k.fiscalYear == fiscalYear {
			delete(s.details, k)
			res.DeletedDetails++
		}
	}
	for k, r := range s.monthly {
		if k.farmID == farmID && k.fiscalYear == fiscalYear {
			r.Data = ValueMap{}
			r.IsActual = false
			r.UpdatedAt = time.Now()
			s.monthly[k] = r
			res.ResetMonthly++
		}
	}
	return res, nil
}

func (s *MemStore) ReplaceFrozen(_ context.Context, farmID uuid.UUID, fiscalYear int, rows []FrozenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.frozen {
		if k.farmID == farmID && k.fiscalYear == fiscalYear {
			delete(s.frozen, k)
		}
	}
	for _, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		r.Data = r.Data.Clone()
		r.Comments = r.Comments.Clone()
		s.frozen[monthlyKey{farmID, fiscalYear, r.Month, r.Type}] = r
	}
	return nil
}

func (s *MemStore) FrozenRecords(_ context.Context, farmID uuid.UUID, fiscalYear int, typ RecordType) ([]FrozenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []FrozenRecord
	for k, r := range s.frozen {
		if k.farmID == farmID && k.fiscalYear == fiscalYear && k.typ == typ {
			r.Data = r.Data.Clone()
			r.Comments = r.Comments.Clone()
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (s *MemStore) withCategoryCode(a GlAccount) GlAccount {
	a.CategoryCode = ""
	if a.CategoryID != nil {
		if c, ok := s.categories[*a.CategoryID]; ok {
			a.CategoryCode = c.Code
		}
	}
	return a
}

func (s *MemStore) GlAccounts(_ context.Context, farmID uuid.UUID) ([]GlAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []GlAccount
	for _, a := range s.glAccounts {
		if a.FarmID == farmID {
			out = append(out, s.withCategoryCode(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	return out, nil
}

func (s *MemStore) GlAccount(_ context.Context, farmID, id uuid.UUID) (*GlAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.glAccounts[id]
	if !ok || a.FarmID != farmID {
		return nil, ErrNotFound
	}
	a = s.withCategoryCode(a)
	return &a, nil
}

func (s *MemStore) SaveGlAccount(_ context.Context, a *GlAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found bool
	for _, existing := range s.glAccounts {
		if existing.FarmID == a.FarmID && existing.AccountNumber == a.AccountNumber {
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			found = true
			break
		}
	}
	if !found {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	stored := *a
	if a.CategoryID != nil {
		id := *a.CategoryID
		stored.CategoryID = &id
	}
	stored.CategoryCode = ""
	s.glAccounts[a.ID] = stored
	*a = s.withCategoryCode(stored)
	return nil
}

func (s *MemStore) GlActualsForMonth(_ context.Context, farmID uuid.UUID, fiscalYear int, month string) ([]GlActualAmount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []GlActualAmount
	for k, d := range s.details {
		if k.farmID != farmID || k.fiscalYear != fiscalYear || k.month != month {
			continue
		}
		acc, ok := s.glAccounts[d.GlAccountID]
		if !ok {
			continue
		}
		out = append(out, GlActualAmount{
			GlAccountID:  d.GlAccountID,
			CategoryCode: s.withCategoryCode(acc).CategoryCode,
			Amount:       d.Amount,
		})
	}
	return out, nil
}

func (s *MemStore) UpsertGlActuals(_ context.Context, rows []GlActualDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range rows {
		if _, ok := s.glAccounts[d.GlAccountID]; !ok {
			return ErrNotFound
		}
	}
	for _, d := range rows {
		key := detailKey{d.FarmID, d.FiscalYear, d.Month, d.GlAccountID}
		if existing, ok := s.details[key]; ok {
			d.ID = existing.ID
		} else if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		d.UpdatedAt = time.Now()
		s.details[key] = d
	}
	return nil
}
