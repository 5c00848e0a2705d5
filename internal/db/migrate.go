package db

import (
	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table the service owns.
func Models() []interface{} {
	return []interface{}{
		&model.StoredSnapshot{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...", nil)

	if err := db.AutoMigrate(Models()...); err != nil {
		logger.Error("Failed to run migrations", err, nil)
		return err
	}

	logger.Info("Database migrations completed", nil)
	return nil
}
