// internal/models/exchange_rate.go
package models

import "time"

// ExchangeRate is an admin-maintained conversion rate between the
// provider currency and the tenant's reporting currency.
type ExchangeRate struct {
	BaseModel
	BaseCurrency  string    `json:"base_currency" gorm:"size:10;not null;index:idx_exchange_rates_pair"`
	QuoteCurrency string    `json:"quote_currency" gorm:"size:10;not null;index:idx_exchange_rates_pair"`
	Rate          float64   `json:"rate" gorm:"type:decimal(18,6);not null"`
	Source        string    `json:"source" gorm:"size:100"`
	EffectiveAt   time.Time `json:"effective_at"`
}
