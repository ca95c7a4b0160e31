package format

import (
	"github.com/tair/storefront/internal/catalog/domain"
)

// Card is a product with its display strings, as served by the storefront
type Card struct {
	domain.Product
	DisplayPrice   *PriceDisplay `json:"displayPrice,omitempty"`
	RatingLabel    string        `json:"ratingLabel,omitempty"`
	InventoryLabel string        `json:"inventoryLabel,omitempty"`
	DisplayBadges  []string      `json:"displayBadges"`
}

// NewCard renders every display field of p
func NewCard(p domain.Product) Card {
	c := Card{
		Product:       p,
		RatingLabel:   Rating(p.Rating, p.ReviewCount),
		DisplayBadges: Badges(p),
	}
	if price, ok := Price(p.Price); ok {
		c.DisplayPrice = &price
	}
	if label, ok := InventoryLabel(p.InventoryStatus); ok {
		c.InventoryLabel = label
	}
	return c
}

// Cards renders a list of products
func Cards(products []domain.Product) []Card {
	out := make([]Card, 0, len(products))
	for _, p := range products {
		out = append(out, NewCard(p))
	}
	return out
}
