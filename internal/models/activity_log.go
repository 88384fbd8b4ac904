package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is an append-only audit record.
type ActivityLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID *uint64 `gorm:"index"`                                         // Acting user, nil for system.
	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Acting user.

	Action      string  `gorm:"type:varchar(64);not null;index"` // Action name.
	SubjectType string  `gorm:"type:varchar(32);index"`          // Subject kind, empty when none.
	SubjectID   *uint64 `gorm:"index"`                           // Subject identifier.

	Metadata datatypes.JSON // Optional structured details.

	CreatedAt time.Time `gorm:"not null;index"` // Creation timestamp.
}
