// internal/services/orchestrator_test.go
package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/batisource/sourcing-backend/internal/config"
	"github.com/batisource/sourcing-backend/internal/models"
)

type stubJobStore struct {
	mtx       sync.Mutex
	created   []*CreateJobRequest
	job       *models.SearchJob
	getCalls  int
	cancelled bool

	// transitionAfter flips the job to its terminal form after that many
	// GetJob calls, simulating a worker finishing in the background.
	transitionAfter int
	terminal        func(job *models.SearchJob)
}

func (s *stubJobStore) CreateJob(req *CreateJobRequest) (*models.SearchJob, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.created = append(s.created, req)
	s.job = &models.SearchJob{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		SearchTerms: req.SearchTerms,
		Status:      models.JobStatusPending,
		TotalTerms:  len(req.SearchTerms),
	}
	return s.job, nil
}

func (s *stubJobStore) GetJob(id uuid.UUID) (*models.SearchJob, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.job == nil || s.job.ID != id {
		return nil, ErrJobNotFound
	}

	s.getCalls++
	if s.getCalls >= s.transitionAfter && s.terminal != nil {
		s.terminal(s.job)
	}

	copied := *s.job
	return &copied, nil
}

func (s *stubJobStore) Cancel(id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.job == nil || s.job.ID != id {
		return ErrJobNotFound
	}
	if s.job.Status.IsTerminal() {
		return ErrJobTerminal
	}
	s.job.Status = models.JobStatusCancelled
	s.cancelled = true
	return nil
}

type stubTermSource struct {
	terms []string
	err   error
}

func (s *stubTermSource) GetProjectSearchTerms(uuid.UUID) ([]string, error) {
	return s.terms, s.err
}

type stubDispatcher struct {
	mtx      sync.Mutex
	enqueued []string
	err      error
}

func (d *stubDispatcher) Enqueue(_ context.Context, jobID string) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	d.enqueued = append(d.enqueued, jobID)
	return d.err
}

func completeJob(results ...models.TermResult) func(job *models.SearchJob) {
	return func(job *models.SearchJob) {
		now := time.Now()
		job.Status = models.JobStatusCompleted
		job.CompletedTerms = len(results)
		job.Results = results
		started := now.Add(-time.Second)
		job.StartedAt = &started
		job.CompletedAt = &now
	}
}

func testOrchestrator(searcher TermSearcher, source TermSource, jobs JobStore, dispatch Dispatcher) *Orchestrator {
	cfg := config.SearchConfig{
		SyncThreshold:   5,
		PollInterval:    5 * time.Millisecond,
		MaxTermsPerJob:  50,
		MaxSyncProducts: 20,
		CacheTTL:        time.Minute,
	}
	return NewOrchestrator(testSearchService(searcher), source, jobs, dispatch, cfg)
}

func TestSearchTermsSmallBatchRunsInline(t *testing.T) {
	searcher := &stubSearcher{}
	jobs := &stubJobStore{}
	o := testOrchestrator(searcher, &stubTermSource{}, jobs, &stubDispatcher{})

	agg, err := o.SearchTerms(context.Background(), nil, []string{"ciment", "pompe"}, models.SearchOptions{}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 2, agg.CompletedSearches)
	assert.Len(t, searcher.termCalls, 2)
	assert.Empty(t, jobs.created)
}

func TestSearchTermsLargeBatchUsesJob(t *testing.T) {
	searcher := &stubSearcher{}
	jobs := &stubJobStore{
		transitionAfter: 2,
		terminal: completeJob(
			models.TermResult{SearchQuery: "t1"},
			models.TermResult{SearchQuery: "t2"},
			models.TermResult{SearchQuery: "t3"},
			models.TermResult{SearchQuery: "t4"},
			models.TermResult{SearchQuery: "t5"},
		),
	}
	dispatch := &stubDispatcher{}
	o := testOrchestrator(searcher, &stubTermSource{}, jobs, dispatch)

	terms := []string{"t1", "t2", "t3", "t4", "t5"}
	agg, err := o.SearchTerms(context.Background(), nil, terms, models.SearchOptions{}, nil)

	assert.NoError(t, err)
	assert.Len(t, jobs.created, 1)
	assert.Len(t, dispatch.enqueued, 1)
	// The inline searcher is never touched for delegated batches.
	assert.Empty(t, searcher.termCalls)

	assert.Equal(t, 5, agg.TotalProducts)
	assert.Equal(t, 5, agg.CompletedSearches)
	assert.Len(t, agg.Results, 5)
	assert.Equal(t, "t1", agg.Results[0].SearchQuery)
}

func TestSearchTermsJobFailureSurfaces(t *testing.T) {
	msg := "provider request failed (status 500): boom"
	jobs := &stubJobStore{
		transitionAfter: 1,
		terminal: func(job *models.SearchJob) {
			job.Status = models.JobStatusFailed
			job.ErrorMessage = &msg
		},
	}
	o := testOrchestrator(&stubSearcher{}, &stubTermSource{}, jobs, nil)

	_, err := o.SearchTerms(context.Background(), nil, []string{"a", "b", "c", "d", "e"}, models.SearchOptions{}, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSearchTermsJobCancellationReturnsPartial(t *testing.T) {
	jobs := &stubJobStore{
		transitionAfter: 1,
		terminal: func(job *models.SearchJob) {
			job.Status = models.JobStatusCancelled
			job.CompletedTerms = 2
			job.Results = []models.TermResult{
				{SearchQuery: "a"},
				{SearchQuery: "b"},
			}
		},
	}
	o := testOrchestrator(&stubSearcher{}, &stubTermSource{}, jobs, nil)

	agg, err := o.SearchTerms(context.Background(), nil, []string{"a", "b", "c", "d", "e"}, models.SearchOptions{}, nil)

	assert.ErrorIs(t, err, ErrSearchCancelled)
	assert.NotNil(t, agg)
	assert.Len(t, agg.Results, 2)
}

func TestSearchTermsCallerCancellationCancelsJob(t *testing.T) {
	jobs := &stubJobStore{transitionAfter: 1000}
	o := testOrchestrator(&stubSearcher{}, &stubTermSource{}, jobs, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()

	_, err := o.SearchTerms(ctx, nil, []string{"a", "b", "c", "d", "e"}, models.SearchOptions{}, nil)

	assert.ErrorIs(t, err, ErrSearchCancelled)
	jobs.mtx.Lock()
	defer jobs.mtx.Unlock()
	assert.True(t, jobs.cancelled)
}

func TestSearchTermsReportsJobProgress(t *testing.T) {
	current := "c"
	jobs := &stubJobStore{
		transitionAfter: 3,
		terminal:        completeJob(models.TermResult{SearchQuery: "a"}),
	}
	// Pre-terminal polls observe a running job with partial counters.
	preTerminal := func(job *models.SearchJob) {
		job.Status = models.JobStatusRunning
		job.CompletedTerms = 2
		job.CurrentTerm = &current
	}

	inner := jobs.terminal
	calls := 0
	jobs.transitionAfter = 0
	jobs.terminal = func(job *models.SearchJob) {
		calls++
		if calls < 3 {
			preTerminal(job)
			return
		}
		inner(job)
	}

	var seen [][2]int
	o := testOrchestrator(&stubSearcher{}, &stubTermSource{}, jobs, nil)

	_, err := o.SearchTerms(context.Background(), nil, []string{"a", "b", "c", "d", "e"}, models.SearchOptions{},
		func(done, total int, currentTerm string) {
			seen = append(seen, [2]int{done, total})
			assert.Equal(t, "c", currentTerm)
		})

	assert.NoError(t, err)
	assert.NotEmpty(t, seen)
	assert.Equal(t, [2]int{2, 5}, seen[0])
}

func TestSearchProjectTerms(t *testing.T) {
	searcher := &stubSearcher{}
	source := &stubTermSource{terms: []string{"ciment gris", "pompe immergée"}}
	o := testOrchestrator(searcher, source, &stubJobStore{}, nil)

	projectID := uuid.New()
	agg, err := o.SearchProjectTerms(context.Background(), projectID, models.SearchOptions{}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 2, agg.CompletedSearches)
}

func TestSearchProjectTermsNoMaterials(t *testing.T) {
	source := &stubTermSource{err: ErrNoMaterials}
	o := testOrchestrator(&stubSearcher{}, source, &stubJobStore{}, nil)

	_, err := o.SearchProjectTerms(context.Background(), uuid.New(), models.SearchOptions{}, nil)

	assert.ErrorIs(t, err, ErrNoMaterials)
}

func TestStartJobToleratesDispatchFailure(t *testing.T) {
	jobs := &stubJobStore{}
	dispatch := &stubDispatcher{err: errors.New("redis down")}
	o := testOrchestrator(&stubSearcher{}, &stubTermSource{}, jobs, dispatch)

	job, err := o.StartJob(context.Background(), &CreateJobRequest{SearchTerms: []string{"a"}})

	assert.NoError(t, err)
	assert.NotNil(t, job)
	assert.Equal(t, models.JobStatusPending, job.Status)
}

func TestStartJobResolvesProjectTerms(t *testing.T) {
	jobs := &stubJobStore{}
	source := &stubTermSource{terms: []string{"ciment gris", "pompe immergée", "tube pvc"}}
	o := testOrchestrator(&stubSearcher{}, source, jobs, nil)

	projectID := uuid.New()
	job, err := o.StartJob(context.Background(), &CreateJobRequest{ProjectID: &projectID})

	assert.NoError(t, err)
	assert.Equal(t, []string{"ciment gris", "pompe immergée", "tube pvc"}, []string(job.SearchTerms))
	assert.Equal(t, 3, job.TotalTerms)
}

func TestStartJobProjectWithoutMaterials(t *testing.T) {
	jobs := &stubJobStore{}
	source := &stubTermSource{err: ErrNoMaterials}
	o := testOrchestrator(&stubSearcher{}, source, jobs, nil)

	projectID := uuid.New()
	_, err := o.StartJob(context.Background(), &CreateJobRequest{ProjectID: &projectID})

	assert.ErrorIs(t, err, ErrNoMaterials)
	assert.Empty(t, jobs.created)
}

func TestStartJobExplicitTermsSkipProjectLookup(t *testing.T) {
	jobs := &stubJobStore{}
	source := &stubTermSource{err: ErrNoMaterials}
	o := testOrchestrator(&stubSearcher{}, source, jobs, nil)

	projectID := uuid.New()
	job, err := o.StartJob(context.Background(), &CreateJobRequest{
		ProjectID:   &projectID,
		SearchTerms: []string{"sable fin"},
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"sable fin"}, []string(job.SearchTerms))
}

func TestCancelJobTerminalIsRejected(t *testing.T) {
	jobs := &stubJobStore{}
	o := testOrchestrator(&stubSearcher{}, &stubTermSource{}, jobs, nil)

	job, _ := jobs.CreateJob(&CreateJobRequest{SearchTerms: []string{"a"}})
	job.Status = models.JobStatusCompleted

	err := o.CancelJob(job.ID)
	assert.ErrorIs(t, err, ErrJobTerminal)
}
