package repositories

import (
	"context"
	"errors"

	"clientflow/leadboard/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// TableConfigRepo handles lead table metadata
type TableConfigRepo struct {
	db *gormlib.DB
}

// NewTableConfigRepo creates a new table config repository
func NewTableConfigRepo(db *gormlib.DB) *TableConfigRepo {
	return &TableConfigRepo{db: db}
}

func (r *TableConfigRepo) Create(ctx context.Context, name string) (*gorm.TableConfig, error) {
	table := gorm.TableConfig{Name: name}
	if err := r.db.WithContext(ctx).Create(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// FindByID returns nil when the table does not exist
func (r *TableConfigRepo) FindByID(ctx context.Context, id string) (*gorm.TableConfig, error) {
	var table gorm.TableConfig

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&table).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &table, nil
}

// ListWithCounts returns every table with its row count, newest first
func (r *TableConfigRepo) ListWithCounts(ctx context.Context) ([]gorm.TableSummary, error) {
	var tables []gorm.TableSummary

	err := r.db.WithContext(ctx).
		Model(&gorm.TableConfig{}).
		Select("table_configs.id, table_configs.name, table_configs.created_at, COUNT(table_rows.id) AS row_count").
		Joins("LEFT JOIN table_rows ON table_rows.table_config_id = table_configs.id").
		Group("table_configs.id, table_configs.name, table_configs.created_at").
		Order("table_configs.created_at DESC").
		Scan(&tables).Error
	if err != nil {
		return nil, err
	}

	return tables, nil
}

// UpdateAIPrompt sets the table's prompt. Returns nil when the table does not exist.
func (r *TableConfigRepo) UpdateAIPrompt(ctx context.Context, id string, prompt string) (*gorm.TableConfig, error) {
	result := r.db.WithContext(ctx).
		Model(&gorm.TableConfig{}).
		Where("id = ?", id).
		Update("ai_prompt", prompt)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return r.FindByID(ctx, id)
}

// Delete removes the table and all of its rows. Returns false when the table does not exist.
func (r *TableConfigRepo) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("table_config_id = ?", id).Delete(&gorm.TableRow{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&gorm.TableConfig{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})

	return deleted, err
}
