package models

import (
	"time"

	"gorm.io/datatypes"
)

// ToolSource is a structured citation attached to a catalog tool.
type ToolSource struct {
	Title     string `json:"title"`
	Reference string `json:"reference"`
	URL       string `json:"url,omitempty"`
}

// Tool is an entry in the Islamic-finance tool catalog.
type Tool struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:varchar(255);not null"`      // Tool name.
	Category    string `gorm:"type:varchar(64);not null;index"` // Catalog category.
	Description string `gorm:"type:text"`                       // Description.

	Inputs   datatypes.JSONSlice[string] // Required inputs.
	Outputs  datatypes.JSONSlice[string] // Produced outputs.
	Benefits datatypes.JSONSlice[string] // Listed benefits.

	ShariaBasis string `gorm:"type:text"` // Scriptural or jurisprudential basis.
	Link        string `gorm:"type:text"` // External link.

	RelatedDirectories datatypes.JSONSlice[string]     // Related directory references.
	Sources            datatypes.JSONSlice[ToolSource] // Structured citations.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
