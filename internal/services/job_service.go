// internal/services/job_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/batisource/sourcing-backend/internal/config"
	"github.com/batisource/sourcing-backend/internal/models"
	"github.com/batisource/sourcing-backend/internal/utils"
)

// JobService is the Job Store: the persistent record of search jobs and
// the only path through which their lifecycle advances. After a claim,
// results and progress are mutated exclusively by the worker; everyone
// else reads, or requests cancellation.
type JobService struct {
	db  *gorm.DB
	cfg config.SearchConfig
}

func NewJobService(db *gorm.DB, cfg config.SearchConfig) *JobService {
	return &JobService{db: db, cfg: cfg}
}

type CreateJobRequest struct {
	ProjectID         *uuid.UUID           `json:"project_id,omitempty"`
	SupplierRequestID *uuid.UUID           `json:"supplier_request_id,omitempty"`
	SearchTerms       []string             `json:"search_terms" validate:"required,min=1"`
	Options           models.SearchOptions `json:"options"`
}

type JobListParams struct {
	utils.PaginationParams
	ProjectID         *uuid.UUID
	SupplierRequestID *uuid.UUID
	Status            *models.JobStatus
}

func (s *JobService) CreateJob(req *CreateJobRequest) (*models.SearchJob, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if len(req.SearchTerms) > s.cfg.MaxTermsPerJob {
		return nil, fmt.Errorf("maximum %d search terms per job", s.cfg.MaxTermsPerJob)
	}

	options := models.JSONB{}
	if req.Options.MaxResults > 0 {
		options["max_results"] = float64(req.Options.MaxResults)
	}

	job := &models.SearchJob{
		ProjectID:         req.ProjectID,
		SupplierRequestID: req.SupplierRequestID,
		SearchTerms:       req.SearchTerms,
		Options:           options,
		Status:            models.JobStatusPending,
		TotalTerms:        len(req.SearchTerms),
	}

	if err := s.db.Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create search job: %w", err)
	}

	return job, nil
}

func (s *JobService) GetJob(id uuid.UUID) (*models.SearchJob, error) {
	var job models.SearchJob
	if err := s.db.First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &job, nil
}

func (s *JobService) ListJobs(params JobListParams) ([]models.SearchJob, int64, error) {
	query := s.db.Model(&models.SearchJob{})

	if params.ProjectID != nil {
		query = query.Where("project_id = ?", *params.ProjectID)
	}
	if params.SupplierRequestID != nil {
		query = query.Where("supplier_request_id = ?", *params.SupplierRequestID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status", "total_terms", "completed_at"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var jobs []models.SearchJob
	if err := query.Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch jobs: %w", err)
	}

	return jobs, total, nil
}

// claimUpdate flips a job from pending to running in one guarded UPDATE.
// The status condition makes the claim a compare-and-swap: RowsAffected
// tells the caller whether it won.
func (s *JobService) claimUpdate(id uuid.UUID, now time.Time) *gorm.DB {
	return s.db.Model(&models.SearchJob{}).
		Where("id = ? AND status = ?", id, models.JobStatusPending).
		Updates(map[string]interface{}{
			"status":     models.JobStatusRunning,
			"started_at": now,
		})
}

// ClaimJob atomically transitions a pending job to running. The
// conditional update is the idempotency gate for at-least-once delivery:
// a redelivered job ID finds the row non-pending and the second claim
// fails with ErrJobNotClaimable.
func (s *JobService) ClaimJob(id uuid.UUID) (*models.SearchJob, error) {
	res := s.claimUpdate(id, time.Now())
	if res.Error != nil {
		return nil, fmt.Errorf("failed to claim job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetJob(id); err != nil {
			return nil, err
		}
		return nil, ErrJobNotClaimable
	}

	return s.GetJob(id)
}

// ClaimNextPending claims the oldest pending job, or returns (nil, nil)
// when the queue is drained. Used by the worker's redelivery sweep. The
// claim goes through the same compare-and-swap as ClaimJob, so two
// sweepers racing on one row leave exactly one winner; the loser moves
// on to the next pending row.
func (s *JobService) ClaimNextPending() (*models.SearchJob, error) {
	for {
		var job models.SearchJob
		err := s.db.Where("status = ?", models.JobStatusPending).
			Order("created_at ASC").
			First(&job).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("database error: %w", err)
		}

		res := s.claimUpdate(job.ID, time.Now())
		if res.Error != nil {
			return nil, fmt.Errorf("failed to claim job: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}
		return s.GetJob(job.ID)
	}
}

// UpdateProgress writes the counters and the term in flight. It never
// touches results.
func (s *JobService) UpdateProgress(id uuid.UUID, completedTerms, failedTerms int, currentTerm *string) error {
	res := s.db.Model(&models.SearchJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"completed_terms": completedTerms,
			"failed_terms":    failedTerms,
			"current_term":    currentTerm,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update progress: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// AppendResult appends one term's outcome, preserving input order. Only
// the claiming worker calls this, one term at a time.
func (s *JobService) AppendResult(id uuid.UUID, result models.TermResult) error {
	job, err := s.GetJob(id)
	if err != nil {
		return err
	}

	results := append(job.Results, result)
	if err := s.db.Model(&models.SearchJob{}).
		Where("id = ?", id).
		Update("results", results).Error; err != nil {
		return fmt.Errorf("failed to append result: %w", err)
	}
	return nil
}

// Finalize moves a job into a terminal state exactly once. A job already
// terminal is left untouched; finalization is idempotent-safe but never
// rewrites one terminal state into another.
func (s *JobService) Finalize(id uuid.UUID, status models.JobStatus, errorMessage *string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("finalize requires a terminal status, got %q", status)
	}

	now := time.Now()
	res := s.db.Model(&models.SearchJob{}).
		Where("id = ? AND status IN ?", id, []models.JobStatus{models.JobStatusPending, models.JobStatusRunning}).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
			"current_term":  nil,
			"completed_at":  now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to finalize job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Already terminal, or missing.
		if _, err := s.GetJob(id); err != nil {
			return err
		}
	}
	return nil
}

// Cancel requests cooperative cancellation. Allowed only while pending or
// running; the worker observes the flag between terms and stops early.
func (s *JobService) Cancel(id uuid.UUID) error {
	now := time.Now()
	res := s.db.Model(&models.SearchJob{}).
		Where("id = ? AND status IN ?", id, []models.JobStatus{models.JobStatusPending, models.JobStatusRunning}).
		Updates(map[string]interface{}{
			"status":       models.JobStatusCancelled,
			"completed_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to cancel job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		job, err := s.GetJob(id)
		if err != nil {
			return err
		}
		if job.Status.IsTerminal() {
			return ErrJobTerminal
		}
	}
	return nil
}

// JobStats aggregates job counts per status for the admin dashboard.
func (s *JobService) JobStats() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}

	var rows []row
	if err := s.db.Model(&models.SearchJob{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate job stats: %w", err)
	}

	stats := make(map[string]int64, len(rows))
	for _, r := range rows {
		stats[r.Status] = r.Count
	}
	return stats, nil
}
