package models

import "time"

// AccessToken records an issued bearer token so it can be revoked.
type AccessToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`                                // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owning user.

	JTI  string `gorm:"column:jti;type:varchar(64);not null;uniqueIndex"` // JWT ID claim.
	Name string `gorm:"type:varchar(64)"`                                 // Client label.

	ExpiresAt  time.Time  `gorm:"not null;index"` // Expiry time.
	LastUsedAt *time.Time // Last authenticated request.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
