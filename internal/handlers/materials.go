// internal/handlers/materials.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/batisource/sourcing-backend/internal/services"
	"github.com/batisource/sourcing-backend/internal/utils"
)

type MaterialHandler struct {
	materialService *services.MaterialService
}

func NewMaterialHandler(materialService *services.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

// GET /projects/:id/materials
func (h *MaterialHandler) GetProjectMaterials(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	materials, err := h.materialService.GetProjectMaterials(projectID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, materials)
}

// GET /projects/:id/search-terms previews the terms a batch search over
// this project would run.
func (h *MaterialHandler) GetProjectSearchTerms(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	terms, err := h.materialService.GetProjectSearchTerms(projectID)
	if err != nil {
		if errors.Is(err, services.ErrNoMaterials) {
			utils.NotFoundResponse(c, "Project materials")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"search_terms": terms})
}
