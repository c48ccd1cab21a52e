package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	models "fleetops/vanlist/internal/models/gorm"
)

var PgDB *gorm.DB

// InitPostgresORM opens the primary GORM handle. TranslateError is on so
// unique-constraint violations surface as gorm.ErrDuplicatedKey and the
// services can turn a losing write race into a conflict error instead of a
// driver-specific failure.
func InitPostgresORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	PgDB = db
	return db, nil
}

// Migrate creates or updates the schema for every model the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.Van{},
		&models.Driver{},
		&models.DailyAssignment{},
		&models.DriverVanPreassignment{},
		&models.ImportLog{},
		&models.HistoricalAssignment{},
	)
}
