package domain

// User Model
type User struct {
	ID         string  `gorm:"primaryKey;size:32" json:"id"`   // Natural key, e.g. ORG-001 / ADV-014 / STF-203
	Name       string  `gorm:"not null" json:"name"`           // Display name
	Department string  `gorm:"not null" json:"department"`     // Department label
	RoleID     string  `gorm:"size:8;not null" json:"role_id"` // Foreign key to Role
	Active     bool    `gorm:"not null" json:"active"`         // False when deactivated/archived; set explicitly on create
	Role       Role    `gorm:"foreignKey:RoleID" json:"-"`     // Role relation (read-only)
	Account    Account `gorm:"foreignKey:UserID" json:"-"`     // One-to-one login credentials
}

// Category prefixes carried by user IDs; they override the stored
// role type for display purposes.
const (
	PrefixOrganization = "ORG-"
	PrefixAdviser      = "ADV-"
	PrefixStaff        = "STF-"
)
