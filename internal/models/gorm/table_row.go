package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	gormlib "gorm.io/gorm"
)

// TableRow is one normalized lead belonging to a TableConfig.
type TableRow struct {
	ID            string `gorm:"column:id;primaryKey;type:varchar(36)"`
	TableConfigID string `gorm:"column:table_config_id;type:varchar(36);not null;index"`
	Position      int    `gorm:"column:position;not null;default:0"`

	FirstName           string  `gorm:"column:first_name;type:text"`
	LastName            string  `gorm:"column:last_name;type:text"`
	Email               *string `gorm:"column:email;type:text"`
	AIPersonalizedEmail *string `gorm:"column:ai_personalized_email;type:text"`
	CurrentPosition     string  `gorm:"column:current_position;type:text"`
	Location            string  `gorm:"column:location;type:text"`
	ProfileSummary      string  `gorm:"column:profile_summary;type:text"`
	Specialities        string  `gorm:"column:specialities;type:text"`
	LinkedinURL         string  `gorm:"column:linkedin_url;type:text"`
	CompanyName         string  `gorm:"column:company_name;type:text"`
	Industry            string  `gorm:"column:industry;type:text"`
	TenureAtPosition    string  `gorm:"column:tenure_at_position;type:text"`
	TenureAtCompany     string  `gorm:"column:tenure_at_company;type:text"`
	CompanyDescription  string  `gorm:"column:company_description;type:text"`

	// Source keeps the record exactly as it was submitted.
	Source datatypes.JSON `gorm:"column:source"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (TableRow) TableName() string {
	return "table_rows"
}

func (r *TableRow) BeforeCreate(tx *gormlib.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
