package models

import (
	"time"

	"gorm.io/datatypes"
)

// DirectoryItem types.
const (
	DirectoryTypeFolder = "folder"
	DirectoryTypeItem   = "item"
)

// DirectoryContent is the payload carried by item nodes.
type DirectoryContent struct {
	Dalil       string `json:"dalil"`
	Source      string `json:"source"`
	Explanation string `json:"explanation"`
}

// DirectoryItem is a folder or leaf in a user's reference tree.
type DirectoryItem struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`                                // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"` // Owning user.

	ParentID *uint64        `gorm:"index"`                                           // Parent folder ID.
	Parent   *DirectoryItem `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"` // Parent folder.

	Name      string `gorm:"type:text;not null"`        // Display name.
	Type      string `gorm:"type:varchar(16);not null"` // folder or item.
	SortOrder int    `gorm:"not null;default:0"`        // Ordering among siblings.

	Content *datatypes.JSONType[DirectoryContent] // Item payload.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsFolder reports whether the node may hold children.
func (d *DirectoryItem) IsFolder() bool {
	return d != nil && d.Type == DirectoryTypeFolder
}
