package store

import "time"

// FilterRecord is a filter of the workspace. Model holds the full filter
// state; Document is the exported text, kept for records saved without it.
type FilterRecord struct {
	ID           string `gorm:"primaryKey;type:text"`
	Position     int    `gorm:"not null;index"`
	Name         string `gorm:"type:text;not null"`
	ImportedFrom string `gorm:"type:text"`
	Model        string `gorm:"type:text"`
	Document     string `gorm:"type:text;not null"`
	LastEdited   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkspaceState holds the selected filter
type WorkspaceState struct {
	ID               uint `gorm:"primaryKey"`
	SelectedFilterID string
	UpdatedAt        time.Time
}
