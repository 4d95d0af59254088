package db

import (
	"fmt"
	"time"

	"clientflow/leadboard/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

var DB *sqlx.DB

// InitSQL sets up the sqlx handle used by raw-SQL repositories. Postgres gets its own
// lib/pq pool; sqlite shares the ORM's connection.
func InitSQL(cfg config.DatabaseConfig, orm *gorm.DB) error {
	if cfg.Driver == "sqlite" {
		sqlDB, err := WrapORM(orm, "sqlite3")
		if err != nil {
			return err
		}
		DB = sqlDB
		return nil
	}
	return InitPostgres(cfg)
}

func InitPostgres(cfg config.DatabaseConfig) error {
	var err error

	for i := 0; i < 10; i++ {
		DB, err = sqlx.Connect("postgres", cfg.DSN())
		if err == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return err
}

// WrapORM exposes the ORM's pool through sqlx. driverName selects the bind style.
func WrapORM(orm *gorm.DB, driverName string) (*sqlx.DB, error) {
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql pool: %w", err)
	}
	return sqlx.NewDb(sqlDB, driverName), nil
}
