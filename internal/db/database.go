package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ikkim/shopgenie-backend/config"
	appLogger "github.com/ikkim/shopgenie-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the database selected by the storage backend: postgres
// uses the Database section, sqlite opens Storage.SQLitePath.
func Initialize(cfg *config.Config) error {
	var dialector gorm.Dialector

	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		appLogger.Info("Connecting to database", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.DBName,
			"user":     cfg.Database.User,
		})
		dialector = postgres.Open(cfg.Database.DSN())
	case config.StorageSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		appLogger.Info("Opening SQLite database", map[string]interface{}{
			"path": cfg.Storage.SQLitePath,
		})
		dialector = sqlite.Open(cfg.Storage.SQLitePath)
	default:
		return fmt.Errorf("storage backend %q does not use a database", cfg.Storage.Backend)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Use silent mode, we'll use our own logger
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// SQLite serializes writers anyway
	maxOpen := 20
	if cfg.Storage.Backend == config.StorageSQLite {
		maxOpen = 1
	}
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetMaxOpenConns(maxOpen)

	appLogger.Info("Database connection established successfully", map[string]interface{}{
		"max_open_conns": maxOpen,
	})
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
