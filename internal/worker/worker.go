// internal/worker/worker.go
package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/batisource/sourcing-backend/internal/config"
	"github.com/batisource/sourcing-backend/internal/models"
	"github.com/batisource/sourcing-backend/internal/provider"
	"github.com/batisource/sourcing-backend/internal/services"
)

// maxTermWords caps how many words of a material description are sent to the
// provider; long descriptions dilute keyword relevance.
const maxTermWords = 5

// JobStore is the slice of the job service the worker needs.
type JobStore interface {
	ClaimJob(id uuid.UUID) (*models.SearchJob, error)
	ClaimNextPending() (*models.SearchJob, error)
	GetJob(id uuid.UUID) (*models.SearchJob, error)
	UpdateProgress(id uuid.UUID, completedTerms, failedTerms int, currentTerm *string) error
	AppendResult(id uuid.UUID, result models.TermResult) error
	Finalize(id uuid.UUID, status models.JobStatus, errorMessage *string) error
}

// Searcher runs a single provider lookup.
type Searcher interface {
	SearchTerm(ctx context.Context, term string, maxResults int) (*models.TermResult, error)
}

// Queue delivers dispatched job IDs. Nil is allowed; the worker then relies
// on the pending-job sweep alone.
type Queue interface {
	Dequeue(ctx context.Context, block time.Duration) (string, error)
}

// Worker drains the job queue and processes search jobs term by term,
// persisting progress after every term so pollers see live state.
type Worker struct {
	store       JobStore
	searcher    Searcher
	queue       Queue
	logs        *services.SearchLogService
	cfg         config.WorkerConfig
	providerCfg config.ProviderConfig
}

func New(store JobStore, searcher Searcher, queue Queue, logs *services.SearchLogService, cfg config.WorkerConfig, providerCfg config.ProviderConfig) *Worker {
	return &Worker{
		store:       store,
		searcher:    searcher,
		queue:       queue,
		logs:        logs,
		cfg:         cfg,
		providerCfg: providerCfg,
	}
}

// Run blocks until ctx is cancelled. Dispatched jobs are picked up from the
// queue; between queue deliveries the worker sweeps for pending jobs that
// were never dispatched or whose dispatch was lost.
func (w *Worker) Run(ctx context.Context) error {
	logrus.WithFields(logrus.Fields{
		"queue": w.cfg.QueueName,
		"sweep": w.cfg.SweepInterval.String(),
	}).Info("Worker started")

	for {
		if ctx.Err() != nil {
			logrus.Info("Worker stopped")
			return ctx.Err()
		}

		if w.queue != nil {
			jobID, err := w.queue.Dequeue(ctx, w.cfg.SweepInterval)
			if err != nil {
				if ctx.Err() != nil {
					logrus.Info("Worker stopped")
					return ctx.Err()
				}
				logrus.WithError(err).Error("Failed to dequeue job")
				time.Sleep(time.Second)
				continue
			}
			if jobID != "" {
				w.processDispatched(ctx, jobID)
				continue
			}
		} else {
			select {
			case <-ctx.Done():
				logrus.Info("Worker stopped")
				return ctx.Err()
			case <-time.After(w.cfg.SweepInterval):
			}
		}

		w.sweep(ctx)
	}
}

// sweep claims pending jobs oldest-first until the table is drained.
func (w *Worker) sweep(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := w.store.ClaimNextPending()
		if err != nil {
			logrus.WithError(err).Error("Failed to claim pending job")
			return
		}
		if job == nil {
			return
		}

		w.process(ctx, job)
	}
}

func (w *Worker) processDispatched(ctx context.Context, jobID string) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		logrus.WithField("job_id", jobID).Warn("Discarding malformed job ID from queue")
		return
	}

	job, err := w.store.ClaimJob(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrJobNotClaimable):
			// Another worker won the claim, or the job was cancelled first.
			logrus.WithField("job_id", id).Debug("Job no longer claimable")
		case errors.Is(err, services.ErrJobNotFound):
			logrus.WithField("job_id", id).Warn("Dequeued job does not exist")
		default:
			logrus.WithError(err).WithField("job_id", id).Error("Failed to claim job")
		}
		return
	}

	w.process(ctx, job)
}

// process runs a claimed job to a terminal status. Each term is searched at
// most once; failures occupy their result slot and the job keeps going.
func (w *Worker) process(ctx context.Context, job *models.SearchJob) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"job_id": job.ID,
		"terms":  job.TotalTerms,
	}).Info("Processing search job")

	maxResults := job.MaxResults(w.providerCfg.MaxResults)
	limiter := rate.NewLimiter(rate.Every(w.providerCfg.RequestDelay), 1)

	completed := job.CompletedTerms
	failed := job.FailedTerms

	for _, term := range job.SearchTerms {
		cancelled, err := w.jobCancelled(job.ID)
		if err != nil {
			w.fail(job.ID, err)
			return
		}
		if cancelled {
			logrus.WithField("job_id", job.ID).Info("Job cancelled, stopping")
			return
		}

		if err := w.store.UpdateProgress(job.ID, completed, failed, &term); err != nil {
			w.fail(job.ID, err)
			return
		}

		if err := limiter.Wait(ctx); err != nil {
			w.abort(ctx, job.ID, err)
			return
		}

		start := time.Now()
		result, err := w.searcher.SearchTerm(ctx, simplifyTerm(term), maxResults)
		w.logs.Record(&job.ID, models.SearchTypeKeyword, result, time.Since(start), err)
		if err != nil {
			if errors.Is(err, provider.ErrNotConfigured) {
				w.fail(job.ID, err)
				return
			}
			if ctx.Err() != nil {
				w.abort(ctx, job.ID, err)
				return
			}

			logrus.WithError(err).WithFields(logrus.Fields{
				"job_id": job.ID,
				"term":   term,
			}).Warn("Term search failed")

			failed++
			result = &models.TermResult{
				SearchQuery: term,
				Results:     []models.ProductRecord{},
				SearchedAt:  time.Now(),
				Error:       err.Error(),
			}
		} else {
			completed++
			result.SearchQuery = term
		}

		if err := w.store.AppendResult(job.ID, *result); err != nil {
			w.fail(job.ID, err)
			return
		}
		if err := w.store.UpdateProgress(job.ID, completed, failed, &term); err != nil {
			w.fail(job.ID, err)
			return
		}
	}

	if err := w.store.UpdateProgress(job.ID, completed, failed, nil); err != nil {
		w.fail(job.ID, err)
		return
	}
	if err := w.store.Finalize(job.ID, models.JobStatusCompleted, nil); err != nil {
		logrus.WithError(err).WithField("job_id", job.ID).Error("Failed to finalize job")
		return
	}

	logrus.WithFields(logrus.Fields{
		"job_id":    job.ID,
		"completed": completed,
		"failed":    failed,
	}).Info("Search job completed")
}

// jobCancelled re-reads the job row; cancellation is cooperative and only
// observed between terms, never mid-request.
func (w *Worker) jobCancelled(id uuid.UUID) (bool, error) {
	job, err := w.store.GetJob(id)
	if err != nil {
		return false, err
	}
	return job.Status == models.JobStatusCancelled, nil
}

// abort handles a context ending mid-job. A cancelled parent context means
// the worker is shutting down and the claim is released back to failed so
// the deadline case stays distinguishable in the error message.
func (w *Worker) abort(ctx context.Context, id uuid.UUID, cause error) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		w.fail(id, errors.New("job deadline exceeded"))
		return
	}

	cancelled, err := w.jobCancelled(id)
	if err == nil && cancelled {
		logrus.WithField("job_id", id).Info("Job cancelled, stopping")
		return
	}

	w.fail(id, cause)
}

func (w *Worker) fail(id uuid.UUID, cause error) {
	msg := cause.Error()
	logrus.WithError(cause).WithField("job_id", id).Error("Search job failed")
	if err := w.store.Finalize(id, models.JobStatusFailed, &msg); err != nil {
		logrus.WithError(err).WithField("job_id", id).Error("Failed to finalize job")
	}
}

// simplifyTerm trims a term down to its first words so long material
// descriptions still produce usable provider keywords.
func simplifyTerm(term string) string {
	words := strings.Fields(term)
	if len(words) <= maxTermWords {
		return strings.TrimSpace(term)
	}
	return strings.Join(words[:maxTermWords], " ")
}
