// internal/provider/parse.go
package provider

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/batisource/sourcing-backend/internal/models"
)

// rawItem is one product as the provider returns it. Field names and
// value types vary between listings, so everything goes through the
// tolerant accessors below.
type rawItem map[string]interface{}

func (r rawItem) str(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			switch s := v.(type) {
			case string:
				if s != "" {
					return s
				}
			case float64:
				return strconv.FormatFloat(s, 'f', -1, 64)
			}
		}
	}
	return ""
}

func (r rawItem) num(keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func (r rawItem) firstRaw(keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func (r rawItem) boolean(keys ...string) bool {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return false
}

// parseSoldCount converts the provider's sales shorthand to an integer.
// "215617" -> 215617, "1万+" -> 10000, "2.5万" -> 25000. Malformed input
// yields 0 and never panics.
func parseSoldCount(v interface{}) int {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		if n < 0 {
			return 0
		}
		return int(n)
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimSuffix(s, "+")
		multiplier := 1.0
		if strings.HasSuffix(s, "万") {
			s = strings.TrimSuffix(s, "万")
			multiplier = 10000
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || f < 0 {
			return 0
		}
		return int(f * multiplier)
	default:
		return 0
	}
}

// RateFunc converts an amount in the provider currency to the reporting
// currency. Injected so tests and deployments can swap the rate source.
type RateFunc func(amount float64) float64

// normalizeItem maps one raw listing into the canonical ProductRecord.
func normalizeItem(item rawItem, index int, providerCurrency, reportingCurrency string, convert RateFunc) models.ProductRecord {
	priceMin, okMin := item.num("priceMin", "price", "wholesale_price", "origin_price")
	priceMax, okMax := item.num("priceMax", "price")
	if !okMax {
		priceMax = priceMin
	}
	if !okMin && okMax {
		priceMin = priceMax
	}
	if priceMin > priceMax {
		priceMin, priceMax = priceMax, priceMin
	}

	moq := 1
	if v, ok := item.num("moq", "minOrder", "min_order"); ok && v >= 1 {
		moq = int(v)
	}

	id := item.str("id", "offerId", "offer_id")
	if id == "" {
		id = fmt.Sprintf("item-%d-%d", index, time.Now().UnixMilli())
	}

	title := item.str("title", "name")
	if title == "" {
		title = "Unknown"
	}

	supplier := models.Supplier{
		Name:     item.str("supplierName", "companyName", "company_name"),
		Location: item.str("supplierLocation", "location"),
		Verified: item.boolean("isVerified", "verified"),
	}
	if supplier.Name == "" {
		supplier.Name = "Unknown"
	}
	if supplier.Location == "" {
		supplier.Location = "China"
	}
	if v, ok := item.num("yearsOnPlatform", "years_on_platform"); ok {
		years := int(v)
		supplier.YearsOnPlatform = &years
	}
	if v, ok := item.num("supplierRating", "rating"); ok {
		rating := v
		supplier.Rating = &rating
	}

	return models.ProductRecord{
		ID:          id,
		Title:       title,
		TitleNative: item.str("titleChinese", "title_native"),
		Price: models.PriceRange{
			Min:      priceMin,
			Max:      priceMax,
			Currency: providerCurrency,
		},
		PriceConverted: models.PriceRange{
			Min:      convert(priceMin),
			Max:      convert(priceMax),
			Currency: reportingCurrency,
		},
		MOQ:        moq,
		SoldCount:  parseSoldCount(item.firstRaw("sold", "salesCount", "monthSold")),
		Supplier:   supplier,
		ImageURL:   item.str("imageUrl", "image", "mainImage"),
		ProductURL: item.str("productUrl", "url", "detailUrl"),
	}
}
