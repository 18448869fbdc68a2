package models

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrationResult describes what Migrate changed.
type MigrationResult struct {
	Created        bool // The schema did not exist and has been created and seeded
	ReplayRequired bool // Derived balances are stale and must be recomputed from the log
}

// Migrate migrates all models to the schema defined in the code.
//
// On a fresh database, one envelope per name in defaults is created.
// Older databases that predate the projected balance get the column added,
// which is reported with ReplayRequired since the column holds no data yet.
func Migrate(db *gorm.DB, defaults []string) (result MigrationResult, err error) {
	migrator := db.Migrator()
	result.Created = !migrator.HasTable(&Envelope{})

	if !result.Created && !migrator.HasColumn(&Envelope{}, "ProjectedCents") {
		err = migrator.AddColumn(&Envelope{}, "ProjectedCents")
		if err != nil {
			return MigrationResult{}, fmt.Errorf("error when adding ProjectedCents column for Envelope: %w", err)
		}

		result.ReplayRequired = true
	}

	err = db.AutoMigrate(Envelope{}, LogEntry{})
	if err != nil {
		return MigrationResult{}, fmt.Errorf("error during DB migration: %w", err)
	}

	if result.Created {
		err = seed(db, defaults)
		if err != nil {
			return MigrationResult{}, err
		}
	}

	return result, nil
}

// seed creates the default envelopes.
func seed(db *gorm.DB, names []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			err := tx.Create(&Envelope{Name: name}).Error
			if err != nil {
				return fmt.Errorf("error when creating default envelope '%s': %w", name, err)
			}
		}

		return nil
	})
}
