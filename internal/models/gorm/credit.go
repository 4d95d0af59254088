package gorm

import "time"

// Credit is the ledger row. Reads and writes go through the sqlx CreditsRepo; the
// model exists so the table is migrated with the rest of the schema.
type Credit struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Balance   int64     `gorm:"column:balance;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Credit) TableName() string {
	return "credits"
}
