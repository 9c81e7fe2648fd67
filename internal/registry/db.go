package registry

import (
	"fmt"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jujutime/juju/internal/models"
)

// Open opens the registry database inside the data directory and runs
// migrations. The registry holds projects, activity types and phases; session
// records themselves live in the flat CSV files, never in here.
func Open(dataDir string) (*gorm.DB, error) {
	dbPath := filepath.Join(dataDir, "registry.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Project{},
		&models.ProjectPhase{},
		&models.ActivityType{},
	); err != nil {
		return nil, fmt.Errorf("failed to run registry migrations: %w", err)
	}

	return db, nil
}

// Close closes the underlying database connection.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
