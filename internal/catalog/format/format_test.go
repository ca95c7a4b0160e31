package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tair/storefront/internal/catalog/domain"
)

func ptr[T any](v T) *T { return &v }

func TestCurrency(t *testing.T) {
	tests := map[string]struct {
		amount float64
		code   string
		want   string
	}{
		"grouping and cents": {amount: 1234.5, code: "USD", want: "$1,234.50"},
		"whole amount":       {amount: 19, code: "usd", want: "$19.00"},
		"default currency":   {amount: 0.5, code: "", want: "$0.50"},
		"negative":           {amount: -5, code: "USD", want: "-$5.00"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Currency(tc.amount, tc.code))
		})
	}
}

func TestPrice(t *testing.T) {
	_, ok := Price(nil)
	assert.False(t, ok)

	got, ok := Price(&domain.Price{Amount: 20, Currency: "USD", OriginalAmount: ptr(25.0)})
	assert.True(t, ok)
	assert.Equal(t, PriceDisplay{Current: "$20.00", Original: "$25.00", Discount: 20}, got)

	got, _ = Price(&domain.Price{Amount: 20, Currency: "USD", OriginalAmount: ptr(15.0)})
	assert.Equal(t, PriceDisplay{Current: "$20.00"}, got, "original below current is not a discount")
}

func TestRating(t *testing.T) {
	assert.Equal(t, "", Rating(nil, ptr(3)))
	assert.Equal(t, "4.6 (128 reviews)", Rating(ptr(4.58), ptr(128)))
	assert.Equal(t, "5.0 (1 review)", Rating(ptr(5.0), ptr(1)))
	assert.Equal(t, "3.0 (1,204 reviews)", Rating(ptr(3.0), ptr(1204)))
	assert.Equal(t, "4.2", Rating(ptr(4.2), nil))
}

func TestInventoryLabel(t *testing.T) {
	tests := map[domain.InventoryStatus]string{
		domain.InventoryInStock:    "In stock",
		domain.InventoryLowStock:   "Low stock",
		domain.InventoryOutOfStock: "Out of stock",
		domain.InventoryPreorder:   "Pre-order",
		"in_stock":                 "In stock",
	}
	for status, want := range tests {
		got, ok := InventoryLabel(status)
		assert.True(t, ok, status)
		assert.Equal(t, want, got)
	}

	for _, status := range []domain.InventoryStatus{"", "BACKORDERED"} {
		_, ok := InventoryLabel(status)
		assert.False(t, ok, status)
	}
}

func TestBadges(t *testing.T) {
	assert.Equal(t, []string{"Featured", "New"}, Badges(domain.Product{Featured: true, Badges: []string{"New"}}))
	assert.Equal(t, []string{"New", "Featured"}, Badges(domain.Product{Featured: true, Badges: []string{"New", "Featured"}}))
	assert.Equal(t, []string{}, Badges(domain.Product{}))
}

func TestNewCard(t *testing.T) {
	c := NewCard(domain.Product{
		Name:            "Lumen",
		Price:           &domain.Price{Amount: 19, Currency: "USD"},
		Rating:          ptr(4.9),
		ReviewCount:     ptr(10),
		InventoryStatus: "MYSTERY",
	})

	assert.Equal(t, "$19.00", c.DisplayPrice.Current)
	assert.Equal(t, "4.9 (10 reviews)", c.RatingLabel)
	assert.Empty(t, c.InventoryLabel)
}
