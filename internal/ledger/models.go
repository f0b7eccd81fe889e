package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CategoryType string

const (
	CategoryRevenue   CategoryType = "REVENUE"
	CategoryInput     CategoryType = "INPUT"
	CategoryLPM       CategoryType = "LPM"
	CategoryLBF       CategoryType = "LBF"
	CategoryInsurance CategoryType = "INSURANCE"
	CategoryComputed  CategoryType = "COMPUTED"
)

// RecordType selects one of the two representations of a month.
type RecordType string

const (
	PerUnit    RecordType = "per_unit"
	Accounting RecordType = "accounting"
)

// Farm is the tenant every ledger row belongs to.
type Farm struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Farm) TableName() string {
	return "ledger.farms"
}

// Category is one node of a farm's chart of accounts. Only leaves hold
// entered values; parents are always derived.
type Category struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FarmID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_category_farm_code" json:"farm_id"`
	Code         string       `gorm:"not null;uniqueIndex:idx_category_farm_code" json:"code"`
	DisplayName  string       `gorm:"not null" json:"display_name"`
	ParentID     *uuid.UUID   `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Path         string       `gorm:"not null" json:"path"`
	Level        int          `gorm:"not null;default:0" json:"level"` // 0=root
	SortOrder    int          `gorm:"not null;default:0" json:"sort_order"`
	CategoryType CategoryType `gorm:"type:text;not null" json:"category_type"`
	IsActive     bool         `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Category) TableName() string {
	return "ledger.categories"
}

// MonthlyRecord holds one representation of one fiscal month. Data carries
// both leaf and derived parent values keyed by category code.
type MonthlyRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FarmID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_monthly_key" json:"farm_id"`
	FiscalYear int        `gorm:"not null;uniqueIndex:idx_monthly_key" json:"fiscal_year"`
	Month      string     `gorm:"not null;uniqueIndex:idx_monthly_key" json:"month"`
	Type       RecordType `gorm:"type:text;not null;uniqueIndex:idx_monthly_key" json:"type"`
	Data       ValueMap   `gorm:"column:data_json;type:jsonb;not null" json:"data"`
	IsActual   bool       `gorm:"not null" json:"is_actual"`
	Comments   CommentMap `gorm:"column:comments_json;type:jsonb" json:"comments,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (MonthlyRecord) TableName() string {
	return "ledger.monthly_data"
}

// FrozenRecord is a copy of a MonthlyRecord taken when a budget is frozen.
type FrozenRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FarmID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_frozen_key" json:"farm_id"`
	FiscalYear int        `gorm:"not null;uniqueIndex:idx_frozen_key" json:"fiscal_year"`
	Month      string     `gorm:"not null;uniqueIndex:idx_frozen_key" json:"month"`
	Type       RecordType `gorm:"type:text;not null;uniqueIndex:idx_frozen_key" json:"type"`
	Data       ValueMap   `gorm:"column:data_json;type:jsonb;not null" json:"data"`
	IsActual   bool       `gorm:"not null" json:"is_actual"`
	Comments   CommentMap `gorm:"column:comments_json;type:jsonb" json:"comments,omitempty"`
	FrozenAt   time.Time  `gorm:"not null" json:"frozen_at"`
}

func (FrozenRecord) TableName() string {
	return "ledger.monthly_data_frozen"
}

// GlAccount is a general ledger account. A nil CategoryID means unmapped, and
// its actuals are left out of every rollup.
type GlAccount struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FarmID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_gl_farm_number" json:"farm_id"`
	AccountNumber string     `gorm:"not null;uniqueIndex:idx_gl_farm_number" json:"account_number"`
	AccountName   string     `gorm:"not null" json:"account_name"`
	CategoryID    *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	IsActive      bool       `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Filled on reads for display.
	CategoryCode string `gorm:"column:category_code;->;-:migration" json:"category_code,omitempty"`
}

func (GlAccount) TableName() string {
	return "ledger.gl_accounts"
}

// GlActualDetail is the raw actual amount for one account in one month.
type GlActualDetail struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FarmID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_gl_detail_key" json:"farm_id"`
	FiscalYear  int       `gorm:"not null;uniqueIndex:idx_gl_detail_key" json:"fiscal_year"`
	Month       string    `gorm:"not null;uniqueIndex:idx_gl_detail_key" json:"month"`
	GlAccountID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_gl_detail_key" json:"gl_account_id"`
	Amount      float64   `gorm:"not null" json:"amount"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (GlActualDetail) TableName() string {
	return "ledger.gl_actual_details"
}

// GlActualAmount is a detail amount joined to its account's mapped category.
// CategoryCode is empty when the account is unmapped.
type GlActualAmount struct {
	GlAccountID  uuid.UUID
	CategoryCode string
	Amount       float64
}

type Crop struct {
	Name  string  `json:"name"`
	Acres float64 `json:"acres"`
}

// Assumption carries the per-year inputs of the cascade. TotalAcres is the
// pivot between per-unit and accounting values.
type Assumption struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FarmID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_assumption_farm_year" json:"farm_id"`
	FiscalYear int        `gorm:"not null;uniqueIndex:idx_assumption_farm_year" json:"fiscal_year"`
	TotalAcres float64    `gorm:"not null;default:0" json:"total_acres"`
	Crops      CropList   `gorm:"column:crops_json;type:jsonb" json:"crops"`
	StartMonth string     `gorm:"not null;default:'Nov'" json:"start_month"`
	EndMonth   string     `gorm:"not null;default:'Oct'" json:"end_month"`
	IsFrozen   bool       `gorm:"not null" json:"is_frozen"`
	FrozenAt   *time.Time `json:"frozen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Assumption) TableName() string {
	return "ledger.assumptions"
}

// ValueMap maps category code to amount and is stored as JSONB.
type ValueMap map[string]float64

// Clone returns a copy that can be modified without touching m.
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m ValueMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]float64(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *ValueMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// CommentMap maps leaf code to a free-text note.
type CommentMap map[string]string

func (m CommentMap) Clone() CommentMap {
	out := make(CommentMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m CommentMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *CommentMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

type CropList []Crop

func (c CropList) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Crop(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *CropList) Scan(value interface{}) error {
	return scanJSON(value, c)
}

// TotalAcres sums the acres of every crop.
func (c CropList) TotalAcres() float64 {
	var sum float64
	for _, crop := range c {
		sum += crop.Acres
	}
	return sum
}

func scanJSON(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}
}
