package ledger

import (
	"log"

	"github.com/C2Farms/C2-Backend/internal/db"
)

func Init() {
	// Ensure the ledger schema exists
	if err := db.EnsureSchema(db.DB, "ledger"); err != nil {
		log.Fatal("Failed to ensure schema ledger: ", err)
	}

	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension:", err)
	}

	if err := db.DB.AutoMigrate(
		&Farm{},
		&Category{},
		&Assumption{},
		&MonthlyRecord{},
		&FrozenRecord{},
		&GlAccount{},
		&GlActualDetail{},
	); err != nil {
		log.Fatal("Failed to auto-migrate ledger tables: ", err)
	}

	// Tree loads and rollup joins
	if err := db.DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_category_tree
		ON ledger.categories (farm_id, level, sort_order);
	`).Error; err != nil {
		log.Fatal("Failed to create idx_category_tree: ", err)
	}
	if err := db.DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_gl_detail_month
		ON ledger.gl_actual_details (farm_id, fiscal_year, month);
	`).Error; err != nil {
		log.Fatal("Failed to create idx_gl_detail_month: ", err)
	}

	log.Println("Ledger module initialized")
}
