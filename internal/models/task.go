package models

import "time"

// ResetCycle is the recurrence policy attached to a task.
type ResetCycle string

// ResetCycle values stored in the database. One-time tasks store NULL.
const (
	ResetCycleDaily   ResetCycle = "daily"
	ResetCycleWeekly  ResetCycle = "weekly"
	ResetCycleMonthly ResetCycle = "monthly"
	ResetCycleYearly  ResetCycle = "yearly"
)

// Task is a trackable commitment owned by one user.
type Task struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`                                // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owning user.

	Text      string `gorm:"type:text;not null"`     // Free-text description.
	Category  string `gorm:"type:varchar(64);index"` // Category label.
	Completed bool   `gorm:"not null;default:false"` // Completion flag.
	Progress  int    `gorm:"not null;default:0"`     // Percentage 0-100.

	HasLimit     bool    `gorm:"not null;default:false"` // Tracked by a numeric target.
	CurrentValue int     `gorm:"not null;default:0"`     // Accumulated value.
	TargetValue  *int    `gorm:"type:integer"`           // Target value when HasLimit is set.
	Unit         *string `gorm:"type:varchar(32)"`       // Unit label when HasLimit is set.

	ResetCycle  *ResetCycle `gorm:"type:varchar(16);index"` // Recurrence policy, nil for one-time.
	LastResetAt *time.Time  `gorm:"index"`                  // Last reset time.

	IncrementPerCheck bool `gorm:"not null;default:false"` // Each check adds IncrementValue.
	IncrementValue    int  `gorm:"not null;default:1"`     // Default progress increment.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TaskHistory records one progress event for a task.
type TaskHistory struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	TaskID uint64 `gorm:"not null;index"`                                // Related task ID.
	Task   *Task  `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"` // Related task.
	UserID uint64 `gorm:"not null;index"`                                // Owning user ID.

	Value int    `gorm:"not null"`  // Value delta.
	Note  string `gorm:"type:text"` // Optional note.

	CreatedAt time.Time `gorm:"not null;index"` // Event timestamp.
}
