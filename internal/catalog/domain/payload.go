package domain

// Payload is the body sent upstream on create and update.
// Nil fields are omitted from the request.
type Payload struct {
	Name            *string          `json:"name,omitempty"`
	Slug            *string          `json:"slug,omitempty"`
	Summary         *string          `json:"summary,omitempty"`
	Description     *string          `json:"description,omitempty"`
	SerialNumber    *string          `json:"serialNumber,omitempty"`
	Price           *float64         `json:"price,omitempty"`
	OriginalPrice   *float64         `json:"originalPrice,omitempty"`
	Currency        *string          `json:"currency,omitempty"`
	ImageURL        *string          `json:"imageUrl,omitempty"`
	ThumbnailURL    *string          `json:"thumbnailUrl,omitempty"`
	Badges          []string         `json:"badges,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	Rating          *float64         `json:"rating,omitempty"`
	ReviewCount     *int             `json:"reviewCount,omitempty"`
	InventoryStatus *InventoryStatus `json:"inventoryStatus,omitempty"`
	Featured        *bool            `json:"featured,omitempty"`
	Stock           *int             `json:"stock,omitempty"`
}

// IsEmpty reports whether the payload carries no updatable field
func (p Payload) IsEmpty() bool {
	return p.Name == nil && p.Slug == nil && p.Summary == nil && p.Description == nil &&
		p.SerialNumber == nil && p.Price == nil && p.OriginalPrice == nil && p.Currency == nil &&
		p.ImageURL == nil && p.ThumbnailURL == nil && len(p.Badges) == 0 && len(p.Tags) == 0 &&
		p.Rating == nil && p.ReviewCount == nil && p.InventoryStatus == nil && p.Featured == nil &&
		p.Stock == nil
}

// ToProduct renders the payload as the canonical product it describes
func (p Payload) ToProduct(id string) Product {
	out := Product{
		ID:          id,
		Name:        deref(p.Name),
		Slug:        deref(p.Slug),
		Summary:     deref(p.Summary),
		Description: deref(p.Description),

		SerialNumber: deref(p.SerialNumber),
		ImageURL:     deref(p.ImageURL),
		ThumbnailURL: deref(p.ThumbnailURL),
		Badges:       p.Badges,
		Tags:         p.Tags,
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
		Stock:        p.Stock,
	}
	if out.ThumbnailURL == "" {
		out.ThumbnailURL = out.ImageURL
	}
	if p.InventoryStatus != nil {
		out.InventoryStatus = *p.InventoryStatus
	}
	if p.Featured != nil {
		out.Featured = *p.Featured
	}
	if p.Price != nil {
		currency := deref(p.Currency)
		if currency == "" {
			currency = DefaultCurrency
		}
		out.Price = &Price{Amount: *p.Price, Currency: currency, OriginalAmount: p.OriginalPrice}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
