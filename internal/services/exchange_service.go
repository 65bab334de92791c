// internal/services/exchange_service.go
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/batisource/sourcing-backend/internal/config"
	"github.com/batisource/sourcing-backend/internal/models"
	"github.com/batisource/sourcing-backend/internal/utils"
)

// ExchangeService resolves the provider-to-reporting-currency rate. The
// latest admin-maintained row wins; when none exists the fixed rate from
// configuration applies. Lookups are cached in-process and refreshed on
// an interval so the hot search path never waits on the database.
type ExchangeService struct {
	db  *gorm.DB
	cfg config.ExchangeConfig

	mtx       sync.RWMutex
	rate      float64
	fetchedAt time.Time
}

func NewExchangeService(db *gorm.DB, cfg config.ExchangeConfig) *ExchangeService {
	return &ExchangeService{db: db, cfg: cfg, rate: cfg.FixedRate}
}

// Rate returns the current conversion rate, refreshing from the database
// when the cached value has gone stale.
func (s *ExchangeService) Rate() float64 {
	s.mtx.RLock()
	rate, fetchedAt := s.rate, s.fetchedAt
	s.mtx.RUnlock()

	if time.Since(fetchedAt) < s.cfg.RefreshInterval {
		return rate
	}

	fresh, err := s.lookupRate()
	if err != nil {
		// Stale beats unavailable.
		return rate
	}

	s.mtx.Lock()
	s.rate = fresh
	s.fetchedAt = time.Now()
	s.mtx.Unlock()

	return fresh
}

// Convert converts a provider-currency amount into the reporting
// currency, rounded to the nearest unit.
func (s *ExchangeService) Convert(amount float64) float64 {
	converted := amount * s.Rate()
	return float64(int64(converted + 0.5))
}

func (s *ExchangeService) lookupRate() (float64, error) {
	var row models.ExchangeRate
	err := s.db.Where("base_currency = ? AND quote_currency = ?", s.cfg.ProviderCurrency, s.cfg.ReportingCurrency).
		Order("effective_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.cfg.FixedRate, nil
		}
		return 0, fmt.Errorf("failed to look up exchange rate: %w", err)
	}
	return row.Rate, nil
}

type UpdateRateRequest struct {
	Rate   float64 `json:"rate" validate:"required,gt=0"`
	Source string  `json:"source"`
}

// UpdateRate records a new rate row and refreshes the cached value.
func (s *ExchangeService) UpdateRate(req *UpdateRateRequest) (*models.ExchangeRate, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	row := &models.ExchangeRate{
		BaseCurrency:  s.cfg.ProviderCurrency,
		QuoteCurrency: s.cfg.ReportingCurrency,
		Rate:          req.Rate,
		Source:        req.Source,
		EffectiveAt:   time.Now(),
	}
	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to store exchange rate: %w", err)
	}

	s.mtx.Lock()
	s.rate = req.Rate
	s.fetchedAt = time.Now()
	s.mtx.Unlock()

	return row, nil
}

// CurrentRate exposes the cached pair for the admin surface.
func (s *ExchangeService) CurrentRate() map[string]interface{} {
	return map[string]interface{}{
		"base_currency":  s.cfg.ProviderCurrency,
		"quote_currency": s.cfg.ReportingCurrency,
		"rate":           s.Rate(),
	}
}
