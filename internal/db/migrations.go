package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Statements must stay valid for both sqlite and postgres.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS kv_store (
		store_key VARCHAR(128) PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_kv_store_updated_at ON kv_store (updated_at);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
