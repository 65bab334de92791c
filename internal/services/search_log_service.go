// internal/services/search_log_service.go
package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/batisource/sourcing-backend/internal/models"
	"github.com/batisource/sourcing-backend/internal/utils"
)

// SearchLogService records provider lookups for auditing. Writes are
// asynchronous and best-effort; a failed insert never affects a search.
type SearchLogService struct {
	db *gorm.DB
}

func NewSearchLogService(db *gorm.DB) *SearchLogService {
	return &SearchLogService{db: db}
}

func (s *SearchLogService) Record(jobID *uuid.UUID, searchType models.SearchType, result *models.TermResult, duration time.Duration, searchErr error) {
	if s == nil || s.db == nil {
		return
	}

	entry := &models.SearchLog{
		JobID:      jobID,
		SearchType: searchType,
		DurationMs: duration.Milliseconds(),
		Success:    searchErr == nil,
	}
	if result != nil {
		entry.Query = result.SearchQuery
		entry.QueryTranslated = result.SearchQueryTranslated
		entry.ResultCount = len(result.Results)
	}
	if searchErr != nil {
		entry.ErrorMessage = searchErr.Error()
	}

	go func() {
		if err := s.db.Create(entry).Error; err != nil {
			logrus.WithError(err).Error("Failed to create search log")
		}
	}()
}

func (s *SearchLogService) ListLogs(params utils.PaginationParams) ([]models.SearchLog, int64, error) {
	query := s.db.Model(&models.SearchLog{})

	if params.Search != "" {
		query = query.Where("LOWER(query) LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	allowedSortFields := []string{"created_at", "duration_ms", "result_count"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var logs []models.SearchLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
