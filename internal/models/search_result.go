// internal/models/search_result.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// PriceRange is a provider price span in a single currency.
type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

type Supplier struct {
	Name            string   `json:"name"`
	Location        string   `json:"location"`
	YearsOnPlatform *int     `json:"years_on_platform,omitempty"`
	Rating          *float64 `json:"rating,omitempty"`
	Verified        bool     `json:"verified"`
}

// ProductRecord is the canonical normalized product, independent of the
// provider's response schema.
type ProductRecord struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	TitleNative    string     `json:"title_native,omitempty"`
	Price          PriceRange `json:"price"`
	PriceConverted PriceRange `json:"price_converted"`
	MOQ            int        `json:"moq"`
	SoldCount      int        `json:"sold_count"`
	Supplier       Supplier   `json:"supplier"`
	ImageURL       string     `json:"image_url"`
	ProductURL     string     `json:"product_url"`
}

// TermResult is one search's outcome for one input term. A per-term
// failure is recorded in Error; it does not fail the surrounding job.
type TermResult struct {
	SearchQuery           string          `json:"search_query"`
	SearchQueryTranslated string          `json:"search_query_translated,omitempty"`
	Results               []ProductRecord `json:"results"`
	SearchedAt            time.Time       `json:"searched_at"`
	TotalFound            int             `json:"total_found"`
	Error                 string          `json:"error,omitempty"`
}

// TermResultList stores an ordered list of term results as a jsonb column.
type TermResultList []TermResult

func (l TermResultList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *TermResultList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// AggregateResult is the merged outcome of a batch of term searches,
// identical in shape for the synchronous and the job-backed path.
type AggregateResult struct {
	TotalProducts     int          `json:"total_products"`
	CompletedSearches int          `json:"completed_searches"`
	FailedSearches    int          `json:"failed_searches"`
	Results           []TermResult `json:"results"`
	StartedAt         time.Time    `json:"started_at"`
	CompletedAt       time.Time    `json:"completed_at"`
}

// SearchOptions is the per-request / per-job configuration bag.
type SearchOptions struct {
	MaxResults int `json:"max_results,omitempty"`
}
