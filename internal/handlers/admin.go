// internal/handlers/admin.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/batisource/sourcing-backend/internal/services"
	"github.com/batisource/sourcing-backend/internal/utils"
)

type AdminHandler struct {
	jobService      *services.JobService
	exchangeService *services.ExchangeService
	searchLogs      *services.SearchLogService
}

func NewAdminHandler(jobService *services.JobService, exchangeService *services.ExchangeService, searchLogs *services.SearchLogService) *AdminHandler {
	return &AdminHandler{
		jobService:      jobService,
		exchangeService: exchangeService,
		searchLogs:      searchLogs,
	}
}

// GET /admin/jobs/stats
func (h *AdminHandler) GetJobStats(c *gin.Context) {
	stats, err := h.jobService.JobStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /admin/exchange-rate
func (h *AdminHandler) GetExchangeRate(c *gin.Context) {
	utils.SuccessResponse(c, h.exchangeService.CurrentRate())
}

// PUT /admin/exchange-rate
func (h *AdminHandler) UpdateExchangeRate(c *gin.Context) {
	var req services.UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	rate, err := h.exchangeService.UpdateRate(&req)
	if err != nil {
		if verrs := utils.GetValidationErrors(errors.Unwrap(err)); len(verrs) > 0 {
			utils.ValidationErrorResponse(c, verrs)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, rate)
}

// GET /admin/search-logs
func (h *AdminHandler) ListSearchLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	logs, total, err := h.searchLogs.ListLogs(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(logs, total, params)
	utils.PaginatedResponse(c, result)
}
