package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/media"
)

// FormToPayload validates the draft and converts it into an upstream payload.
// Blank optional fields are omitted.
func FormToPayload(f FormState) (domain.Payload, error) {
	price, ok := parseNumber(f.Price)
	if !ok || price <= 0 {
		return domain.Payload{}, &ValidationError{Field: FieldPrice, Message: "Price must be a positive number."}
	}

	p := domain.Payload{
		Name:         optString(f.Name),
		Slug:         optString(f.Slug),
		Summary:      optString(f.Summary),
		Description:  optString(f.Description),
		SerialNumber: optString(f.SerialNumber),
		Price:        &price,
		ImageURL:     optURL(f.ImageURL),
		ThumbnailURL: optURL(f.ThumbnailURL),
		Badges:       splitList(f.Badges),
		Tags:         splitList(f.Tags),
		Featured:     &f.Featured,
	}

	if currency := strings.ToUpper(strings.TrimSpace(f.Currency)); currency != "" {
		p.Currency = &currency
	}
	if f.InventoryStatus != "" {
		status := domain.ParseInventoryStatus(string(f.InventoryStatus))
		p.InventoryStatus = &status
	}

	if !blank(f.OriginalPrice) {
		v, ok := parseNumber(f.OriginalPrice)
		if !ok {
			return domain.Payload{}, &ValidationError{Field: FieldOriginalPrice, Message: "Original price must be a number."}
		}
		p.OriginalPrice = &v
	}
	if !blank(f.Rating) {
		v, ok := parseNumber(f.Rating)
		if !ok || v < 0 {
			return domain.Payload{}, &ValidationError{Field: FieldRating, Message: "Rating must be a non-negative number."}
		}
		p.Rating = &v
	}
	if !blank(f.ReviewCount) {
		v, ok := parseCount(f.ReviewCount)
		if !ok {
			return domain.Payload{}, &ValidationError{Field: FieldReviewCount, Message: "Review count must be a non-negative whole number."}
		}
		p.ReviewCount = &v
	}
	if !blank(f.Stock) {
		v, ok := parseCount(f.Stock)
		if !ok {
			return domain.Payload{}, &ValidationError{Field: FieldStock, Message: "Stock must be a non-negative whole number."}
		}
		p.Stock = &v
	}

	return p, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseCount accepts whole numbers from zero up
func parseCount(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// optURL drops blanks and embedded previews, which are placeholders for a
// pending upload rather than real links
func optURL(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || media.IsDataURI(s) {
		return nil
	}
	return &s
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
