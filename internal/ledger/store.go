package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence the ledger engine runs on. Monthly records are
// always written wholesale per (farm, year, month, type); merging happens in
// the engine before the write.
type Store interface {
	SaveFarm(ctx context.Context, f *Farm) error
	Farm(ctx context.Context, id uuid.UUID) (*Farm, error)

	// Categories returns the farm's active categories ordered by level then
	// sort order.
	Categories(ctx context.Context, farmID uuid.UUID) ([]Category, error)
	Category(ctx context.Context, farmID, id uuid.UUID) (*Category, error)
	// CreateCategory fails with *DuplicateCategoryCodeError when the code is
	// taken on the farm.
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	// UpsertCategory inserts or updates by (farm, code).
	UpsertCategory(ctx context.Context, c *Category) error
	// MaxSortOrder is the highest sort order among the children of parentID,
	// or among roots when parentID is nil, inactive categories included. ok is
	// false when there are none.
	MaxSortOrder(ctx context.Context, farmID uuid.UUID, parentID *uuid.UUID) (max int, ok bool, err error)

	Assumption(ctx context.Context, farmID uuid.UUID, fiscalYear int) (*Assumption, error)
	// SaveAssumption inserts or updates by (farm, fiscal year).
	SaveAssumption(ctx context.Context, a *Assumption) error

	MonthlyRecord(ctx context.Context, farmID uuid.UUID, fiscalYear int, month string, typ RecordType) (*MonthlyRecord, error)
	MonthlyRecords(ctx context.Context, farmID uuid.UUID, fiscalYear int, typ RecordType) ([]MonthlyRecord, error)
	// SaveMonthlyRecord replaces the record stored under its key.
	SaveMonthlyRecord(ctx context.Context, r *MonthlyRecord) error
	// EnsureMonthlyRecords creates empty per-unit and accounting rows for the
	// months that have none.
	EnsureMonthlyRecords(ctx context.Context, farmID uuid.UUID, fiscalYear int, months []string) error
	// ClearYear deletes GL details for the year and resets both
	// representations to empty, non-actual data. It is atomic.
	ClearYear(ctx context.Context, farmID uuid.UUID, fiscalYear int) (ClearResult, error)

	// ReplaceFrozen deletes the year's frozen rows and writes rows in their
	// place in one transaction.
	ReplaceFrozen(ctx context.Context, farmID uuid.UUID, fiscalYear int, rows []FrozenRecord) error
	FrozenRecords(ctx context.Context, farmID uuid.UUID, fiscalYear int, typ RecordType) ([]FrozenRecord, error)

	// GlAccounts returns every account of the farm ordered by number, with
	// CategoryCode filled for mapped accounts.
	GlAccounts(ctx context.Context, farmID uuid.UUID) ([]GlAccount, error)
	GlAccount(ctx context.Context, farmID, id uuid.UUID) (*GlAccount, error)
	// SaveGlAccount inserts or updates by (farm, account number).
	SaveGlAccount(ctx context.Context, a *GlAccount) error

	// GlActualsForMonth joins each detail to its account's mapped category.
	GlActualsForMonth(ctx context.Context, farmID uuid.UUID, fiscalYear int, month string) ([]GlActualAmount, error)
	// UpsertGlActuals writes all rows or none.
	UpsertGlActuals(ctx context.Context, rows []GlActualDetail) error
}

// SerialReader is implemented by stores that cannot serve overlapping reads,
// such as one bound to a database transaction.
type SerialReader interface {
	SerialReads() bool
}

type ClearResult struct {
	DeletedDetails int64 `json:"deletedDetails"`
	ResetMonthly   int64 `json:"resetMonthly"`
}
