// Package fallback bundles the demo catalog shown when the catalog API is
// unreachable or returns nothing.
package fallback

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/catalog/gateway"
)

//go:embed products.csv
var productsCSV []byte

// row mirrors the CSV columns. Everything stays a string so the records go
// through the same normalizer as upstream responses.
type row struct {
	Name            string `csv:"name"`
	Slug            string `csv:"slug"`
	Summary         string `csv:"summary"`
	Description     string `csv:"description"`
	Price           string `csv:"price"`
	OriginalPrice   string `csv:"originalPrice"`
	Currency        string `csv:"currency"`
	ImageURL        string `csv:"imageUrl"`
	ThumbnailURL    string `csv:"thumbnailUrl"`
	Badges          string `csv:"badges"`
	Tags            string `csv:"tags"`
	Rating          string `csv:"rating"`
	ReviewCount     string `csv:"reviewCount"`
	InventoryStatus string `csv:"inventoryStatus"`
	Featured        string `csv:"featured"`
	SerialNumber    string `csv:"serialNumber"`
	Stock           string `csv:"stock"`
	CreatedAt       string `csv:"createdAt"`
	UpdatedAt       string `csv:"updatedAt"`
}

func (r row) raw(id string) map[string]any {
	return map[string]any{
		"id":              id,
		"name":            r.Name,
		"slug":            r.Slug,
		"summary":         r.Summary,
		"description":     r.Description,
		"price":           r.Price,
		"originalPrice":   r.OriginalPrice,
		"currency":        r.Currency,
		"imageUrl":        r.ImageURL,
		"thumbnailUrl":    r.ThumbnailURL,
		"badges":          r.Badges,
		"tags":            r.Tags,
		"rating":          r.Rating,
		"reviewCount":     r.ReviewCount,
		"inventoryStatus": r.InventoryStatus,
		"featured":        r.Featured,
		"serialNumber":    r.SerialNumber,
		"stock":           r.Stock,
		"createdAt":       r.CreatedAt,
		"updatedAt":       r.UpdatedAt,
	}
}

var (
	once     sync.Once
	products []domain.Product
	loadErr  error
)

// Products returns the bundled catalog. The slice is shared; callers must
// not modify it.
func Products() ([]domain.Product, error) {
	once.Do(func() {
		products, loadErr = Parse(productsCSV)
	})
	return products, loadErr
}

// Parse decodes a catalog CSV. Products get ids fallback-1, fallback-2, ...
func Parse(data []byte) ([]domain.Product, error) {
	var rows []row
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode fallback catalog: %w", err)
	}

	out := make([]domain.Product, 0, len(rows))
	for i, r := range rows {
		out = append(out, gateway.Normalize(r.raw(fmt.Sprintf("fallback-%d", i+1))))
	}
	return out, nil
}
