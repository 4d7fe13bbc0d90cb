package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Statements must stay valid for both postgres and sqlite.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS collections (
		name VARCHAR(128) PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
