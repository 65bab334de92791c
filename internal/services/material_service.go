// internal/services/material_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/batisource/sourcing-backend/internal/models"
)

// MaterialService reads the materials list maintained by the platform's
// import tooling. This service never writes materials; it only derives
// search terms from them.
type MaterialService struct {
	db *gorm.DB
}

func NewMaterialService(db *gorm.DB) *MaterialService {
	return &MaterialService{db: db}
}

func (s *MaterialService) GetProjectMaterials(projectID uuid.UUID) ([]models.Material, error) {
	var materials []models.Material
	if err := s.db.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch materials: %w", err)
	}
	return materials, nil
}

// GetProjectSearchTerms returns the ordered search terms for a project,
// one per material (name plus description).
func (s *MaterialService) GetProjectSearchTerms(projectID uuid.UUID) ([]string, error) {
	materials, err := s.GetProjectMaterials(projectID)
	if err != nil {
		return nil, err
	}
	if len(materials) == 0 {
		return nil, ErrNoMaterials
	}

	terms := make([]string, 0, len(materials))
	for _, m := range materials {
		terms = append(terms, m.SearchTerm())
	}
	return terms, nil
}
