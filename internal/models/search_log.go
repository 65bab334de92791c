// internal/models/search_log.go
package models

import "github.com/google/uuid"

// SearchLog records one provider lookup for auditing and debugging.
// Writes are best-effort and asynchronous.
type SearchLog struct {
	BaseModel
	JobID           *uuid.UUID `json:"job_id,omitempty" gorm:"type:uuid;index"`
	Query           string     `json:"query" gorm:"size:512;not null"`
	QueryTranslated string     `json:"query_translated" gorm:"size:512"`
	SearchType      SearchType `json:"search_type" gorm:"type:varchar(20);default:'keyword'"`
	ResultCount     int        `json:"result_count"`
	DurationMs      int64      `json:"duration_ms"`
	Success         bool       `json:"success"`
	ErrorMessage    string     `json:"error_message" gorm:"type:text"`
}
