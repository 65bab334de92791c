// internal/handlers/jobs.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/batisource/sourcing-backend/internal/models"
	"github.com/batisource/sourcing-backend/internal/services"
	"github.com/batisource/sourcing-backend/internal/utils"
)

type JobHandler struct {
	jobService   *services.JobService
	orchestrator *services.Orchestrator
}

func NewJobHandler(jobService *services.JobService, orchestrator *services.Orchestrator) *JobHandler {
	return &JobHandler{
		jobService:   jobService,
		orchestrator: orchestrator,
	}
}

// POST /jobs creates a background search job and returns immediately; the
// caller polls GET /jobs/:id for progress.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req services.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	job, err := h.orchestrator.StartJob(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrNoMaterials) {
			utils.NotFoundResponse(c, "Project materials")
			return
		}
		if verrs := utils.GetValidationErrors(errors.Unwrap(err)); len(verrs) > 0 {
			utils.ValidationErrorResponse(c, verrs)
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.AcceptedResponse(c, job)
}

// GET /jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	listParams := services.JobListParams{
		PaginationParams: params,
	}

	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		if projectID, err := uuid.Parse(projectIDStr); err == nil {
			listParams.ProjectID = &projectID
		}
	}

	if requestIDStr := c.Query("supplier_request_id"); requestIDStr != "" {
		if requestID, err := uuid.Parse(requestIDStr); err == nil {
			listParams.SupplierRequestID = &requestID
		}
	}

	if params.Status != "" {
		status := models.JobStatus(params.Status)
		listParams.Status = &status
	}

	jobs, total, err := h.jobService.ListJobs(listParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(jobs, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid job ID", nil)
		return
	}

	job, err := h.jobService.GetJob(id)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			utils.NotFoundResponse(c, "Search job")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponseWithMeta(c, job, gin.H{"progress": job.Progress()})
}

// DELETE /jobs/:id requests cancellation. Cancelling a job that already
// reached a terminal status is a no-op, not an error.
func (h *JobHandler) CancelJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid job ID", nil)
		return
	}

	if err := h.orchestrator.CancelJob(id); err != nil {
		switch {
		case errors.Is(err, services.ErrJobNotFound):
			utils.NotFoundResponse(c, "Search job")
		case errors.Is(err, services.ErrJobTerminal):
			utils.SuccessResponse(c, gin.H{"cancelled": false, "reason": "job already finished"})
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"cancelled": true})
}
