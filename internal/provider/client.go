// internal/provider/client.go
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/batisource/sourcing-backend/internal/config"
	"github.com/batisource/sourcing-backend/internal/models"
	"github.com/batisource/sourcing-backend/internal/translate"
)

// Client wraps the external product-search API. It translates terms into
// the provider's query language and normalizes the heterogeneous response
// into canonical ProductRecords.
type Client struct {
	cfg               config.ProviderConfig
	httpClient        *http.Client
	translator        *translate.Translator
	convert           RateFunc
	providerCurrency  string
	reportingCurrency string
}

func NewClient(cfg config.ProviderConfig, translator *translate.Translator, exchange config.ExchangeConfig, convert RateFunc) *Client {
	if convert == nil {
		rate := exchange.FixedRate
		convert = func(amount float64) float64 { return float64(int64(amount*rate + 0.5)) }
	}
	return &Client{
		cfg:               cfg,
		httpClient:        &http.Client{Timeout: cfg.Timeout},
		translator:        translator,
		convert:           convert,
		providerCurrency:  exchange.ProviderCurrency,
		reportingCurrency: exchange.ReportingCurrency,
	}
}

// searchResponse tolerates both flat and data-wrapped payload shapes.
type searchResponse struct {
	Items []rawItem `json:"items"`
	Total int       `json:"total"`
	Data  *struct {
		Items []rawItem `json:"items"`
		Total int       `json:"total"`
	} `json:"data"`
}

// SearchTerm looks up one term. The term is translated first; the
// returned TermResult carries the translated query when it differs.
// A zero-result page is a valid result, not an error.
func (c *Client) SearchTerm(ctx context.Context, term string, maxResults int) (*models.TermResult, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if maxResults < 1 {
		maxResults = c.cfg.MaxResults
	}

	translated := c.translator.Translate(term)

	params := url.Values{}
	params.Set("keyword", translated)
	params.Set("page", "1")
	params.Set("sort", "monthSold")
	params.Set("pageSize", strconv.Itoa(maxResults))

	records, total, err := c.doSearch(ctx, params)
	if err != nil {
		return nil, err
	}

	result := &models.TermResult{
		SearchQuery: term,
		Results:     records,
		SearchedAt:  time.Now(),
		TotalFound:  total,
	}
	if translated != term {
		result.SearchQueryTranslated = translated
	}
	return result, nil
}

// SearchByImage looks up products matching a reference image.
func (c *Client) SearchByImage(ctx context.Context, imageURL string, maxResults int) (*models.TermResult, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if maxResults < 1 {
		maxResults = c.cfg.MaxResults
	}

	params := url.Values{}
	params.Set("imageUrl", imageURL)
	params.Set("page", "1")
	params.Set("sort", "monthSold")
	params.Set("pageSize", strconv.Itoa(maxResults))

	records, total, err := c.doSearch(ctx, params)
	if err != nil {
		return nil, err
	}

	return &models.TermResult{
		SearchQuery: imageURL,
		Results:     records,
		SearchedAt:  time.Now(),
		TotalFound:  total,
	}, nil
}

func (c *Client) doSearch(ctx context.Context, params url.Values) ([]models.ProductRecord, int, error) {
	endpoint := c.cfg.BaseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &Error{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   truncate(string(body), 200),
		}).Warn("Provider search request failed")
		return nil, 0, &Error{StatusCode: resp.StatusCode, Message: truncate(string(body), 200)}
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, 0, &Error{StatusCode: resp.StatusCode, Message: "malformed response payload"}
	}

	items := decoded.Items
	total := decoded.Total
	if decoded.Data != nil {
		items = decoded.Data.Items
		total = decoded.Data.Total
	}

	records := make([]models.ProductRecord, 0, len(items))
	for i, item := range items {
		records = append(records, normalizeItem(item, i, c.providerCurrency, c.reportingCurrency, c.convert))
	}

	// Truncate after normalization so totalFound can still reflect the
	// provider's own total when it reports one.
	if total <= 0 {
		total = len(records)
	}
	if max, _ := strconv.Atoi(params.Get("pageSize")); max > 0 && len(records) > max {
		records = records[:max]
	}

	return records, total, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
