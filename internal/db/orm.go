package db

import (
	"fmt"

	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/logging"
	models "clientflow/leadboard/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ORM *gorm.DB

// InitORM opens the GORM connection for the configured driver.
func InitORM(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer; one shared connection also keeps
		// ":memory:" databases visible to every query.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	ORM = db
	logging.Info("Connected to database via GORM", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates the lead tables and the credit ledger.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.TableConfig{}, &models.TableRow{}, &models.Credit{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
