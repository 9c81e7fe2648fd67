package models

import (
	"time"
)

// Project represents a trackable project in the registry
type Project struct {
	ID        string    `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"unique;not null" json:"name"`
	Archived bool   `gorm:"default:false" json:"archived"`

	// Relationships
	Phases []ProjectPhase `gorm:"foreignKey:ProjectID" json:"phases"`
}

// ActivityType represents a category of work (coding, meetings, ...)
type ActivityType struct {
	ID   string `gorm:"primarykey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`
}

// ProjectPhase represents a named phase within a single project
type ProjectPhase struct {
	ID        string `gorm:"primarykey" json:"id"`
	ProjectID string `gorm:"not null;index" json:"project_id"`
	Name      string `gorm:"not null" json:"name"`
}
