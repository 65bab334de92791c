// internal/provider/parse_test.go
package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSoldCount(t *testing.T) {
	cases := []struct {
		name     string
		input    interface{}
		expected int
	}{
		{"numeric", float64(215617), 215617},
		{"numeric string", "1500", 1500},
		{"wan shorthand", "1万", 10000},
		{"wan with plus", "1万+", 10000},
		{"fractional wan", "2.5万", 25000},
		{"plain plus", "500+", 500},
		{"spaces", " 42 ", 42},
		{"negative", float64(-3), 0},
		{"malformed", "abc万", 0},
		{"empty", "", 0},
		{"nil", nil, 0},
		{"unexpected type", []string{"x"}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseSoldCount(tc.input))
		})
	}
}

func identityRate(amount float64) float64 { return amount }

func TestNormalizeItemPriceFallbacks(t *testing.T) {
	record := normalizeItem(rawItem{
		"id":    "p1",
		"title": "Ciment Portland",
		"price": 25.5,
	}, 0, "CNY", "XOF", identityRate)

	assert.Equal(t, 25.5, record.Price.Min)
	assert.Equal(t, 25.5, record.Price.Max)
	assert.Equal(t, "CNY", record.Price.Currency)
}

func TestNormalizeItemSwapsInvertedRange(t *testing.T) {
	record := normalizeItem(rawItem{
		"priceMin": 80.0,
		"priceMax": 20.0,
	}, 0, "CNY", "XOF", identityRate)

	assert.Equal(t, 20.0, record.Price.Min)
	assert.Equal(t, 80.0, record.Price.Max)
}

func TestNormalizeItemConvertsPrices(t *testing.T) {
	double := func(amount float64) float64 { return amount * 2 }

	record := normalizeItem(rawItem{
		"priceMin": 10.0,
		"priceMax": 30.0,
	}, 0, "CNY", "XOF", double)

	assert.Equal(t, 20.0, record.PriceConverted.Min)
	assert.Equal(t, 60.0, record.PriceConverted.Max)
	assert.Equal(t, "XOF", record.PriceConverted.Currency)
}

func TestNormalizeItemDefaults(t *testing.T) {
	record := normalizeItem(rawItem{}, 3, "CNY", "XOF", identityRate)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "Unknown", record.Title)
	assert.Equal(t, 1, record.MOQ)
	assert.Equal(t, "Unknown", record.Supplier.Name)
	assert.Equal(t, "China", record.Supplier.Location)
	assert.Nil(t, record.Supplier.YearsOnPlatform)
	assert.Nil(t, record.Supplier.Rating)
	assert.Zero(t, record.SoldCount)
}

func TestNormalizeItemAlternateFieldNames(t *testing.T) {
	record := normalizeItem(rawItem{
		"offerId":      "987654",
		"name":         "Pompe solaire",
		"titleChinese": "太阳能水泵",
		"minOrder":     10.0,
		"monthSold":    "3万+",
		"companyName":  "Hebei Pump Co",
		"location":     "Hebei",
		"verified":     true,
		"rating":       4.7,
		"image":        "https://img.example.com/p.jpg",
		"detailUrl":    "https://www.example.com/offer/987654",
	}, 0, "CNY", "XOF", identityRate)

	assert.Equal(t, "987654", record.ID)
	assert.Equal(t, "Pompe solaire", record.Title)
	assert.Equal(t, "太阳能水泵", record.TitleNative)
	assert.Equal(t, 10, record.MOQ)
	assert.Equal(t, 30000, record.SoldCount)
	assert.Equal(t, "Hebei Pump Co", record.Supplier.Name)
	assert.Equal(t, "Hebei", record.Supplier.Location)
	assert.True(t, record.Supplier.Verified)
	assert.NotNil(t, record.Supplier.Rating)
	assert.Equal(t, 4.7, *record.Supplier.Rating)
	assert.Equal(t, "https://img.example.com/p.jpg", record.ImageURL)
	assert.Equal(t, "https://www.example.com/offer/987654", record.ProductURL)
}

func TestNormalizeItemStringPrices(t *testing.T) {
	record := normalizeItem(rawItem{
		"priceMin": "12.50",
		"priceMax": "45",
	}, 0, "CNY", "XOF", identityRate)

	assert.Equal(t, 12.5, record.Price.Min)
	assert.Equal(t, 45.0, record.Price.Max)
}
