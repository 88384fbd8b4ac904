package models

import "time"

// Role names assigned to user accounts.
const (
	// RoleAdmin grants access to the admin panel.
	RoleAdmin = "admin"
	// RoleUser is the default role for registered accounts.
	RoleUser = "user"
)

// User represents an account and its preferences.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:text;not null"`                             // Display name.
	Email    string `gorm:"type:text;not null;uniqueIndex"`                 // Unique login email.
	Password string `gorm:"type:text;not null"`                             // Hashed password.
	Role     string `gorm:"type:varchar(16);not null;default:'user';index"` // admin or user.

	Theme             string  `gorm:"type:varchar(16);not null;default:'light'"`     // UI theme.
	ZakatRate         float64 `gorm:"type:decimal(5,2);not null;default:2.5"`        // Zakat rate in percent.
	ContractType      string  `gorm:"type:varchar(32);not null;default:'murabahah'"` // Preferred contract type.
	CalculationMethod string  `gorm:"type:varchar(32);not null;default:'hijri'"`     // Calendar used for calculations.
	ProfilePicture    string  `gorm:"type:text"`                                     // Profile picture reference.

	TOTPSecret  string `gorm:"type:text"`              // TOTP secret for the second factor.
	TOTPEnabled bool   `gorm:"not null;default:false"` // Whether login requires a TOTP code.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
