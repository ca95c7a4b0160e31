package domain

import (
	"strings"
	"time"
)

// DefaultCurrency is used whenever neither the record nor its price names one
const DefaultCurrency = "USD"

// InventoryStatus is the upper-cased availability of a product.
// Values outside the known set are kept as received so they can be
// rendered as absent rather than guessed.
type InventoryStatus string

const (
	InventoryInStock    InventoryStatus = "IN_STOCK"
	InventoryLowStock   InventoryStatus = "LOW_STOCK"
	InventoryOutOfStock InventoryStatus = "OUT_OF_STOCK"
	InventoryPreorder   InventoryStatus = "PREORDER"
)

// ParseInventoryStatus upper-cases s without validating it
func ParseInventoryStatus(s string) InventoryStatus {
	return InventoryStatus(strings.ToUpper(strings.TrimSpace(s)))
}

// Known reports whether s is one of the four known statuses
func (s InventoryStatus) Known() bool {
	switch s {
	case InventoryInStock, InventoryLowStock, InventoryOutOfStock, InventoryPreorder:
		return true
	}
	return false
}

// Price is the canonical price of a product.
// OriginalAmount is a pre-discount price and only meaningful when greater than Amount.
type Price struct {
	Amount         float64  `json:"amount"`
	Currency       string   `json:"currency"`
	OriginalAmount *float64 `json:"originalAmount,omitempty"`
}

// Discounted reports whether the original amount exceeds the current one
func (p Price) Discounted() bool {
	return p.OriginalAmount != nil && *p.OriginalAmount > p.Amount
}

// Product is the canonical, UI-facing product. Badges and Tags are nil when
// the upstream sent nothing usable.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug,omitempty"`
	Summary         string          `json:"summary,omitempty"`
	Description     string          `json:"description,omitempty"`
	SerialNumber    string          `json:"serialNumber,omitempty"`
	Price           *Price          `json:"price,omitempty"`
	ImageURL        string          `json:"imageUrl,omitempty"`
	ThumbnailURL    string          `json:"thumbnailUrl,omitempty"`
	Badges          []string        `json:"badges,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	Rating          *float64        `json:"rating,omitempty"`
	ReviewCount     *int            `json:"reviewCount,omitempty"`
	InventoryStatus InventoryStatus `json:"inventoryStatus,omitempty"`
	Featured        bool            `json:"featured"`
	Stock           *int            `json:"stock,omitempty"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedTime parses CreatedAt. Missing or unparsable values yield the Unix epoch.
func (p Product) CreatedTime() time.Time {
	raw := strings.TrimSpace(p.CreatedAt)
	if raw == "" {
		return time.Unix(0, 0).UTC()
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Unix(0, 0).UTC()
}

// HasTag reports whether the product carries tag, ignoring case
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
