// internal/handlers/search.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/batisource/sourcing-backend/internal/models"
	"github.com/batisource/sourcing-backend/internal/provider"
	"github.com/batisource/sourcing-backend/internal/services"
	"github.com/batisource/sourcing-backend/internal/utils"
)

type SearchHandler struct {
	searchService *services.SearchService
	orchestrator  *services.Orchestrator
}

func NewSearchHandler(searchService *services.SearchService, orchestrator *services.Orchestrator) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		orchestrator:  orchestrator,
	}
}

type searchBatchRequest struct {
	ProjectID   *uuid.UUID           `json:"project_id"`
	SearchTerms []string             `json:"search_terms"`
	Options     models.SearchOptions `json:"options"`
}

// GET /search?q=...&imageUrl=... — an image URL takes priority, with the
// keyword kept as fallback when the image yields nothing.
func (h *SearchHandler) SearchKeyword(c *gin.Context) {
	query := c.Query("q")
	imageURL := c.Query("imageUrl")
	if query == "" && imageURL == "" {
		utils.BadRequestResponse(c, "Query parameter 'q' or 'imageUrl' is required", nil)
		return
	}

	maxResults := parseMaxResults(c)
	ctx := c.Request.Context()

	var (
		result *models.TermResult
		err    error
	)
	if imageURL != "" {
		result, err = h.searchService.SearchImage(ctx, imageURL, query, maxResults)
	} else {
		result, err = h.searchService.SearchSingle(ctx, query, maxResults)
	}
	if err != nil {
		respondSearchError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

func parseMaxResults(c *gin.Context) int {
	for _, key := range []string{"max_results", "maxResults"} {
		if raw := c.Query(key); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				return parsed
			}
		}
	}
	return 0
}

// GET /search/image?url=...
func (h *SearchHandler) SearchImage(c *gin.Context) {
	imageURL := c.Query("url")
	if imageURL == "" {
		utils.BadRequestResponse(c, "Query parameter 'url' is required", nil)
		return
	}

	fallback := c.Query("fallback")
	maxResults := parseMaxResults(c)

	result, err := h.searchService.SearchImage(c.Request.Context(), imageURL, fallback, maxResults)
	if err != nil {
		respondSearchError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /search runs a batch of terms, either from the request body or
// resolved from a project's materials. Small batches block until the
// aggregate is ready; large ones are delegated to the background worker
// and awaited.
func (h *SearchHandler) SearchBatch(c *gin.Context) {
	var req searchBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	ctx := c.Request.Context()

	var (
		result *models.AggregateResult
		err    error
	)

	switch {
	case len(req.SearchTerms) > 0:
		result, err = h.orchestrator.SearchTerms(ctx, req.ProjectID, req.SearchTerms, req.Options, nil)
	case req.ProjectID != nil:
		result, err = h.orchestrator.SearchProjectTerms(ctx, *req.ProjectID, req.Options, nil)
	default:
		utils.BadRequestResponse(c, "Either search_terms or project_id is required", nil)
		return
	}

	if err != nil {
		if errors.Is(err, services.ErrSearchCancelled) && result != nil {
			// Partial outcome; the caller still gets what was gathered.
			utils.SuccessResponseWithMeta(c, result, gin.H{"cancelled": true})
			return
		}
		respondSearchError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

func respondSearchError(c *gin.Context, err error) {
	var provErr *provider.Error

	switch {
	case errors.Is(err, provider.ErrNotConfigured):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "PROVIDER_NOT_CONFIGURED", "Search provider is not configured", nil)
	case errors.Is(err, services.ErrNoMaterials):
		utils.NotFoundResponse(c, "Project materials")
	case errors.Is(err, services.ErrSearchCancelled):
		utils.ErrorResponse(c, http.StatusRequestTimeout, "SEARCH_CANCELLED", "Search was cancelled", nil)
	case errors.As(err, &provErr):
		utils.BadGatewayResponse(c, provErr.Error())
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
