package domain

// Account Model
type Account struct {
	ID       uint   `gorm:"primaryKey" json:"-"`                         // Surrogate key
	UserID   string `gorm:"size:32;uniqueIndex;not null" json:"user_id"` // Foreign key to User (1:1)
	Username string `gorm:"size:64;unique;not null" json:"username"`     // Unique login name
	Email    string `gorm:"size:128;unique;not null" json:"email"`       // Unique email
	Password string `gorm:"not null" json:"-"`                           // bcrypt hash, never serialized
}
