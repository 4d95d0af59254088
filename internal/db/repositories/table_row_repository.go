package repositories

import (
	"context"
	"errors"
	"fmt"

	"clientflow/leadboard/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

const insertChunkSize = 100

// TableRowRepo handles lead rows
type TableRowRepo struct {
	db *gormlib.DB
}

// NewTableRowRepo creates a new table row repository
func NewTableRowRepo(db *gormlib.DB) *TableRowRepo {
	return &TableRowRepo{db: db}
}

// CreateBatch persists rows as one unit: either all of them are stored or none.
func (r *TableRowRepo) CreateBatch(ctx context.Context, rows []gorm.TableRow) error {
	if len(rows) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		return tx.CreateInBatches(&rows, insertChunkSize).Error
	})
}

// CountByTable counts the rows stored for a table
func (r *TableRowRepo) CountByTable(ctx context.Context, tableID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&gorm.TableRow{}).
		Where("table_config_id = ?", tableID).
		Count(&count).Error
	return count, err
}

// ListByTable returns a table's rows in import order
func (r *TableRowRepo) ListByTable(ctx context.Context, tableID string) ([]gorm.TableRow, error) {
	var rows []gorm.TableRow
	err := r.db.WithContext(ctx).
		Where("table_config_id = ?", tableID).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

// FindInTable returns the row only when it belongs to tableID, nil otherwise
func (r *TableRowRepo) FindInTable(ctx context.Context, tableID, rowID string) (*gorm.TableRow, error) {
	var row gorm.TableRow

	err := r.db.WithContext(ctx).
		Where("id = ? AND table_config_id = ?", rowID, tableID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// FindManyInTable returns the listed rows that belong to tableID, in import order
func (r *TableRowRepo) FindManyInTable(ctx context.Context, tableID string, rowIDs []string) ([]gorm.TableRow, error) {
	var rows []gorm.TableRow
	err := r.db.WithContext(ctx).
		Where("table_config_id = ? AND id IN ?", tableID, rowIDs).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateColumn sets one column of a row and returns the row as it was before and
// after the change. Both are nil when the row is not in the table. column must come
// from the field schema, never from user input.
func (r *TableRowRepo) UpdateColumn(ctx context.Context, tableID, rowID, column, value string) (before *gorm.TableRow, after *gorm.TableRow, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		var current gorm.TableRow
		if err := tx.Where("id = ? AND table_config_id = ?", rowID, tableID).First(&current).Error; err != nil {
			if errors.Is(err, gormlib.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Model(&gorm.TableRow{}).Where("id = ?", rowID).Update(column, value).Error; err != nil {
			return fmt.Errorf("update %s: %w", column, err)
		}

		var updated gorm.TableRow
		if err := tx.Where("id = ?", rowID).First(&updated).Error; err != nil {
			return err
		}

		before, after = &current, &updated
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// DeleteInTable removes the listed rows of a table and reports how many were deleted
func (r *TableRowRepo) DeleteInTable(ctx context.Context, tableID string, rowIDs []string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("table_config_id = ? AND id IN ?", tableID, rowIDs).
		Delete(&gorm.TableRow{})
	return result.RowsAffected, result.Error
}
