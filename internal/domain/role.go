package domain

// Role Model
type Role struct {
	ID       string `gorm:"primaryKey;size:8" json:"id"` // Role code, e.g. R01
	RoleType string `gorm:"not null" json:"role_type"`   // Role label
}

// Seeded role codes
const (
	RoleUser       = "R01"
	RoleAdmin      = "R02"
	RoleSuperAdmin = "R03"
)
