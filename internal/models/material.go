// internal/models/material.go
package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Material is one line of a project's materials list. Rows are written by
// the platform's import tooling; this service only reads them to derive
// search terms.
type Material struct {
	BaseModel
	ProjectID   uuid.UUID      `json:"project_id" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Quantity    float64        `json:"quantity" gorm:"default:0"`
	Unit        string         `json:"unit" gorm:"size:50"`
	Category    string         `json:"category" gorm:"size:100;index"`
	Images      pq.StringArray `json:"images,omitempty" gorm:"type:text[]"`
}

// SearchTerm concatenates name and description into the provider lookup key.
func (m *Material) SearchTerm() string {
	if m.Description != "" {
		return strings.TrimSpace(m.Name + " " + m.Description)
	}
	return m.Name
}
