package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// SerialReads reports whether the store is bound to a transaction. A
// transaction holds one connection, and pgx rejects a query while another
// one's rows are still open on it.
func (s *GormStore) SerialReads() bool {
	_, ok := s.db.Statement.ConnPool.(gorm.TxCommitter)
	return ok
}

// isUniqueViolation matches both gorm's translated error and a raw pgx error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) SaveFarm(ctx context.Context, f *Farm) error {
	return s.db.WithContext(ctx).Save(f).Error
}

func (s *GormStore) Farm(ctx context.Context, id uuid.UUID) (*Farm, error) {
	var f Farm
	if err := s.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *GormStore) Categories(ctx context.Context, farmID uuid.UUID) ([]Category, error) {
	var cats []Category
	err := s.db.WithContext(ctx).
		Where("farm_id = ? AND is_active = ?", farmID, true).
		Order("level ASC, sort_order ASC, code ASC").
		Find(&cats).Error
	return cats, err
}

func (s *GormStore) MaxSortOrder(ctx context.Context, farmID uuid.UUID, parentID *uuid.UUID) (int, bool, error) {
	q := s.db.WithContext(ctx).Model(&Category{}).Where("farm_id = ?", farmID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	var res struct{ Max *int }
	if err := q.Select("MAX(sort_order) AS max").Scan(&res).Error; err != nil {
		return 0, false, err
	}
	if res.Max == nil {
		return 0, false, nil
	}
	return *res.Max, true, nil
}

func (s *GormStore) Category(ctx context.Context, farmID, id uuid.UUID) (*Category, error) {
	var c Category
	if err := s.db.WithContext(ctx).First(&c, "id = ? AND farm_id = ?", id, farmID).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, c *Category) error {
	err := s.db.WithContext(ctx).Create(c).Error
	if isUniqueViolation(err) {
		return &DuplicateCategoryCodeError{Code: c.Code}
	}
	return err
}

func (s *GormStore) UpdateCategory(ctx context.Context, c *Category) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *GormStore) UpsertCategory(ctx context.Context, c *Category) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "farm_id"}, {Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "parent_id", "path", "level", "sort_order", "category_type", "is_active", "updated_at",
		}),
	}).Create(c).Error
}

func (s *GormStore) Assumption(ctx context.Context, farmID uuid.UUID, fiscalYear int) (*Assumption, error) {
	var a Assumption
	err := s.db.WithContext(ctx).
		First(&a, "farm_id = ? AND fiscal_year = ?", farmID, fiscalYear).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *GormStore) SaveAssumption(ctx context.Context, a *Assumption) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "farm_id"}, {Name: "fiscal_year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_acres", "crops_json", "start_month", "end_month", "is_frozen", "frozen_at", "updated_at",
		}),
	}).Create(a).Error
}

func (s *GormStore) MonthlyRecord(ctx context.Context, farmID uuid.UUID, fiscalYear int, month string, typ RecordType) (*MonthlyRecord, error) {
	var r MonthlyRecord
	err := s.db.WithContext(ctx).
		First(&r, "farm_id = ? AND fiscal_year = ? AND month = ? AND type = ?", farmID, fiscalYear, month, typ).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *GormStore) MonthlyRecords(ctx context.Context, farmID uuid.UUID, fiscalYear int, typ RecordType) ([]MonthlyRecord, error) {
	var rows []MonthlyRecord
	err := s.db.WithContext(ctx).
		Where("farm_id = ? AND fiscal_year = ? AND type = ?", farmID, fiscalYear, typ).
		Order("month ASC").
		Find(&rows).Error
	return rows, err
}

var monthlyKeyColumns = []clause.Column{{Name: "farm_id"}, {Name: "fiscal_year"}, {Name: "month"}, {Name: "type"}}

func (s *GormStore) SaveMonthlyRecord(ctx context.Context, r *MonthlyRecord) error {
	if r.Data == nil {
		r.Data = ValueMap{}
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   monthlyKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{"data_json", "is_actual", "comments_json", "updated_at"}),
	}).Create(r).Error
}

func (s *GormStore) EnsureMonthlyRecords(ctx context.Context, farmID uuid.UUID, fiscalYear int, months []string) error {
	rows := make([]MonthlyRecord, 0, len(months)*2)
	for _, m := range months {
		for _, typ := range []RecordType{PerUnit, Accounting} {
			rows = append(rows, MonthlyRecord{
				FarmID: farmID, FiscalYear: fiscalYear, Month: m, Type: typ,
				Data: ValueMap{}, Comments: CommentMap{},
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: monthlyKeyColumns, DoNothing: true}).
		Create(&rows).Error
}

func (s *GormStore) ClearYear(ctx context.Context, farmID uuid.UUID, fiscalYear int) (ClearResult, error) {
	var res ClearResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("farm_id = ? AND fiscal_year = ?", farmID, fiscalYear).Delete(&GlActualDetail{})
		if del.Error != nil {
			return del.Error
		}
		res.DeletedDetails = del.RowsAffected

		upd := tx.Model(&MonthlyRecord{}).
			Where("farm_id = ? AND fiscal_year = ?", farmID, fiscalYear).
			Updates(map[string]interface{}{
				"data_json":  ValueMap{},
				"is_actual":  false,
				"updated_at": time.Now(),
			})
		if upd.Error != nil {
			return upd.Error
		}
		res.ResetMonthly = upd.RowsAffected
		return nil
	})
	return res, err
}

func (s *GormStore) ReplaceFrozen(ctx context.Context, farmID uuid.UUID, fiscalYear int, rows []FrozenRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("farm_id = ? AND fiscal_year = ?", farmID, fiscalYear).
			Delete(&FrozenRecord{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (s *GormStore) FrozenRecords(ctx context.Context, farmID uuid.UUID, fiscalYear int, typ RecordType) ([]FrozenRecord, error) {
	var rows []FrozenRecord
	err := s.db.WithContext(ctx).
		Where("farm_id = ? AND fiscal_year = ? AND type = ?", farmID, fiscalYear, typ).
		Order("month ASC").
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) glAccountQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("ledger.gl_accounts AS a").
		Select("a.*, COALESCE(c.code, '') AS category_code").
		Joins("LEFT JOIN ledger.categories c ON c.id = a.category_id")
}

func (s *GormStore) GlAccounts(ctx context.Context, farmID uuid.UUID) ([]GlAccount, error) {
	var accs []GlAccount
	err := s.glAccountQuery(ctx).
		Where("a.farm_id = ?", farmID).
		Order("a.account_number ASC").
		Scan(&accs).Error
	return accs, err
}

func (s *GormStore) GlAccount(ctx context.Context, farmID, id uuid.UUID) (*GlAccount, error) {
	var accs []GlAccount
	err := s.glAccountQuery(ctx).
		Where("a.farm_id = ? AND a.id = ?", farmID, id).
		Limit(1).
		Scan(&accs).Error
	if err != nil {
		return nil, err
	}
	if len(accs) == 0 {
		return nil, ErrNotFound
	}
	return &accs[0], nil
}

func (s *GormStore) SaveGlAccount(ctx context.Context, a *GlAccount) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "farm_id"}, {Name: "account_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_name", "category_id", "is_active", "updated_at"}),
	}).Create(a).Error
}

func (s *GormStore) GlActualsForMonth(ctx context.Context, farmID uuid.UUID, fiscalYear int, month string) ([]GlActualAmount, error) {
	var rows []GlActualAmount
	err := s.db.WithContext(ctx).
		Table("ledger.gl_actual_details AS d").
		Select("d.gl_account_id, COALESCE(c.code, '') AS category_code, d.amount").
		Joins("JOIN ledger.gl_accounts a ON a.id = d.gl_account_id").
		Joins("LEFT JOIN ledger.categories c ON c.id = a.category_id").
		Where("d.farm_id = ? AND d.fiscal_year = ? AND d.month = ?", farmID, fiscalYear, month).
		Scan(&rows).Error
	return rows, err
}

func (s *GormStore) UpsertGlActuals(ctx context.Context, rows []GlActualDetail) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "farm_id"}, {Name: "fiscal_year"}, {Name: "month"}, {Name: "gl_account_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).CreateInBatches(&rows, 200).Error
	})
}
