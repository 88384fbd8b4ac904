package models

import "time"

// Category is a user-defined label for grouping tasks.
type Category struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex:idx_categories_user_name"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owning user.

	Name  string `gorm:"type:varchar(64);not null;uniqueIndex:idx_categories_user_name"` // Label, unique per user.
	Color string `gorm:"type:varchar(16)"`                                               // Optional display color.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
