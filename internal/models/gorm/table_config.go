package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// TableConfig is one imported lead table.
type TableConfig struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	AIPrompt  *string   `gorm:"column:ai_prompt;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Rows []TableRow `gorm:"foreignKey:TableConfigID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (TableConfig) TableName() string {
	return "table_configs"
}

func (t *TableConfig) BeforeCreate(tx *gormlib.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TableSummary is a TableConfig with its row count, as listed on the dashboard.
type TableSummary struct {
	ID        string    `gorm:"column:id"`
	Name      string    `gorm:"column:name"`
	CreatedAt time.Time `gorm:"column:created_at"`
	RowCount  int64     `gorm:"column:row_count"`
}
