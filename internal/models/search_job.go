// internal/models/search_job.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SearchJob is the unit of asynchronous search work. It is created
// pending, claimed and mutated only by the background worker, and read
// (plus optionally cancelled) by everyone else. Jobs are never deleted;
// cancellation is a status transition.
type SearchJob struct {
	BaseModel
	ProjectID         *uuid.UUID     `json:"project_id,omitempty" gorm:"type:uuid;index"`
	SupplierRequestID *uuid.UUID     `json:"supplier_request_id,omitempty" gorm:"type:uuid;index"`
	SearchTerms       pq.StringArray `json:"search_terms" gorm:"type:text[];not null"`
	Options           JSONB          `json:"options" gorm:"type:jsonb"`
	Status            JobStatus      `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	TotalTerms        int            `json:"total_terms" gorm:"not null"`
	CompletedTerms    int            `json:"completed_terms" gorm:"default:0"`
	FailedTerms       int            `json:"failed_terms" gorm:"default:0"`
	CurrentTerm       *string        `json:"current_term,omitempty" gorm:"size:512"`
	Results           TermResultList `json:"results,omitempty" gorm:"type:jsonb"`
	ErrorMessage      *string        `json:"error_message,omitempty" gorm:"type:text"`
	StartedAt         *time.Time     `json:"started_at,omitempty"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
}

// MaxResults reads the per-job result cap from the options bag.
func (j *SearchJob) MaxResults(fallback int) int {
	if j.Options == nil {
		return fallback
	}
	if v, ok := j.Options["max_results"]; ok {
		// jsonb numbers decode as float64
		if f, ok := v.(float64); ok && f >= 1 {
			return int(f)
		}
	}
	return fallback
}

// Progress returns the completion percentage for status snapshots.
func (j *SearchJob) Progress() int {
	if j.TotalTerms == 0 {
		return 0
	}
	return int(float64(j.CompletedTerms+j.FailedTerms) / float64(j.TotalTerms) * 100)
}
