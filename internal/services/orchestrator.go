// internal/services/orchestrator.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/batisource/sourcing-backend/internal/config"
	"github.com/batisource/sourcing-backend/internal/models"
)

// Dispatcher pushes a claimed-for-processing job id to the worker queue.
// A nil dispatcher leaves pickup to the worker's pending-job sweep.
type Dispatcher interface {
	Enqueue(ctx context.Context, jobID string) error
}

// JobStore is the slice of the job service the orchestrator needs.
type JobStore interface {
	CreateJob(req *CreateJobRequest) (*models.SearchJob, error)
	GetJob(id uuid.UUID) (*models.SearchJob, error)
	Cancel(id uuid.UUID) error
}

// TermSource resolves a project into its ordered search terms.
type TermSource interface {
	GetProjectSearchTerms(projectID uuid.UUID) ([]string, error)
}

// Orchestrator decides how a batch of terms gets searched: small batches run
// inline, large ones become a background job that is polled to completion.
type Orchestrator struct {
	search    *SearchService
	materials TermSource
	jobs      JobStore
	dispatch  Dispatcher
	cfg       config.SearchConfig
}

func NewOrchestrator(search *SearchService, materials TermSource, jobs JobStore, dispatch Dispatcher, cfg config.SearchConfig) *Orchestrator {
	return &Orchestrator{
		search:    search,
		materials: materials,
		jobs:      jobs,
		dispatch:  dispatch,
		cfg:       cfg,
	}
}

// SearchTerms routes the batch by size. Fewer terms than the sync threshold
// run sequentially in the calling goroutine; anything larger is handed to the
// background worker and awaited.
func (o *Orchestrator) SearchTerms(ctx context.Context, projectID *uuid.UUID, terms []string, opts models.SearchOptions, onProgress ProgressFunc) (*models.AggregateResult, error) {
	if len(terms) < o.cfg.SyncThreshold {
		return o.search.SearchMany(ctx, terms, opts, onProgress)
	}
	return o.runJob(ctx, projectID, terms, opts, onProgress)
}

// SearchProjectTerms resolves a project's materials into search terms and
// runs them through SearchTerms.
func (o *Orchestrator) SearchProjectTerms(ctx context.Context, projectID uuid.UUID, opts models.SearchOptions, onProgress ProgressFunc) (*models.AggregateResult, error) {
	terms, err := o.materials.GetProjectSearchTerms(projectID)
	if err != nil {
		return nil, err
	}
	return o.SearchTerms(ctx, &projectID, terms, opts, onProgress)
}

// StartJob creates a background job and dispatches it without waiting for
// the result. When the request carries no explicit terms, the project's
// materials supply them.
func (o *Orchestrator) StartJob(ctx context.Context, req *CreateJobRequest) (*models.SearchJob, error) {
	if len(req.SearchTerms) == 0 && req.ProjectID != nil {
		terms, err := o.materials.GetProjectSearchTerms(*req.ProjectID)
		if err != nil {
			return nil, err
		}
		req.SearchTerms = terms
	}

	job, err := o.jobs.CreateJob(req)
	if err != nil {
		return nil, err
	}

	if o.dispatch != nil {
		if err := o.dispatch.Enqueue(ctx, job.ID.String()); err != nil {
			// The sweep will still pick the job up; dispatch only shortens latency.
			logrus.WithError(err).WithField("job_id", job.ID).Warn("Failed to dispatch job to queue")
		}
	}

	return job, nil
}

// CancelJob requests cooperative cancellation of a pending or running job.
func (o *Orchestrator) CancelJob(id uuid.UUID) error {
	return o.jobs.Cancel(id)
}

func (o *Orchestrator) runJob(ctx context.Context, projectID *uuid.UUID, terms []string, opts models.SearchOptions, onProgress ProgressFunc) (*models.AggregateResult, error) {
	req := &CreateJobRequest{
		ProjectID:   projectID,
		SearchTerms: terms,
		Options:     opts,
	}

	job, err := o.StartJob(ctx, req)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"job_id": job.ID,
		"terms":  len(terms),
	}).Info("Search batch handed to background worker")

	return o.awaitJob(ctx, job.ID, onProgress)
}

// awaitJob polls the job until it reaches a terminal status. Caller
// cancellation is forwarded to the job so the worker stops too.
func (o *Orchestrator) awaitJob(ctx context.Context, id uuid.UUID, onProgress ProgressFunc) (*models.AggregateResult, error) {
	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := o.jobs.Cancel(id); err != nil && err != ErrJobTerminal {
				logrus.WithError(err).WithField("job_id", id).Warn("Failed to cancel job on caller shutdown")
			}
			return nil, ErrSearchCancelled
		case <-ticker.C:
		}

		job, err := o.jobs.GetJob(id)
		if err != nil {
			return nil, err
		}

		switch job.Status {
		case models.JobStatusCompleted:
			return aggregateFromJob(job), nil
		case models.JobStatusCancelled:
			return aggregateFromJob(job), ErrSearchCancelled
		case models.JobStatusFailed:
			msg := "search job failed"
			if job.ErrorMessage != nil {
				msg = *job.ErrorMessage
			}
			return nil, fmt.Errorf("%s", msg)
		default:
			if onProgress != nil {
				current := ""
				if job.CurrentTerm != nil {
					current = *job.CurrentTerm
				}
				onProgress(job.CompletedTerms+job.FailedTerms, job.TotalTerms, current)
			}
		}
	}
}

func aggregateFromJob(job *models.SearchJob) *models.AggregateResult {
	agg := &models.AggregateResult{
		TotalProducts:     job.TotalTerms,
		CompletedSearches: job.CompletedTerms,
		FailedSearches:    job.FailedTerms,
		Results:           []models.TermResult(job.Results),
	}
	if job.StartedAt != nil {
		agg.StartedAt = *job.StartedAt
	}
	if job.CompletedAt != nil {
		agg.CompletedAt = *job.CompletedAt
	}
	return agg
}
