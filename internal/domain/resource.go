package domain

import "time"

// Resource Model
type Resource struct {
	FID          string     `gorm:"column:f_id;primaryKey;size:32" json:"f_id"`         // Natural key
	FName        string     `gorm:"column:f_name;unique;not null" json:"f_name"`        // Unique display name
	FDescription string     `gorm:"column:f_description;not null" json:"f_description"` // Description
	FImage       []byte     `gorm:"column:f_image;type:longblob" json:"-"`              // Optional image bytes
	Category     string     `gorm:"not null" json:"category"`                           // Category label
	DeletedAt    *time.Time `gorm:"column:deleted_at" json:"deleted_at"`                // Soft-delete marker, nil when live
}

// TableName keeps the legacy table name.
// Soft deletion is managed explicitly (plain *time.Time, not gorm.DeletedAt)
// so listings still include soft-deleted rows.
func (Resource) TableName() string {
	return "university_resources"
}
