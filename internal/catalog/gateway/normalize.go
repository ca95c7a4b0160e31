package gateway

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tair/storefront/internal/catalog/domain"
)

// Normalize converts a loosely typed upstream record into the canonical product.
// Numbers may arrive as JSON numbers or numeric strings; badges and tags as
// arrays, JSON-encoded arrays or comma lists.
func Normalize(raw map[string]any) domain.Product {
	p := domain.Product{
		ID:           idOf(raw),
		Name:         stringField(raw, "name", "title"),
		Slug:         stringField(raw, "slug"),
		Summary:      stringField(raw, "summary"),
		Description:  stringField(raw, "description"),
		SerialNumber: stringField(raw, "serialNumber", "serial_number"),
		ImageURL:     stringField(raw, "imageUrl", "image_url", "image"),
		ThumbnailURL: stringField(raw, "thumbnailUrl", "thumbnail_url", "thumbnail"),
		Badges:       stringList(raw["badges"]),
		Tags:         stringList(raw["tags"]),
		Rating:       floatPtr(raw["rating"]),
		ReviewCount:  intPtr(first(raw, "reviewCount", "review_count", "reviews")),
		Featured:     boolOf(raw["featured"]),
		Stock:        intPtr(raw["stock"]),
		CreatedAt:    stringField(raw, "createdAt", "created_at"),
		UpdatedAt:    stringField(raw, "updatedAt", "updated_at"),
	}

	if status := stringField(raw, "inventoryStatus", "inventory_status"); status != "" {
		p.InventoryStatus = domain.ParseInventoryStatus(status)
	}
	if p.ThumbnailURL == "" {
		p.ThumbnailURL = p.ImageURL
	}
	p.Price = priceOf(raw)

	return p
}

func priceOf(raw map[string]any) *domain.Price {
	var (
		amount   *float64
		original *float64
		nested   string
	)

	switch v := raw["price"].(type) {
	case map[string]any:
		amount = floatPtr(first(v, "amount", "value"))
		original = floatPtr(first(v, "originalAmount", "original", "originalPrice"))
		nested = stringField(v, "currency")
	default:
		amount = floatPtr(v)
	}
	if amount == nil {
		return nil
	}

	if sibling := floatPtr(first(raw, "originalPrice", "original_price")); sibling != nil {
		original = sibling
	}

	currency := strings.ToUpper(stringField(raw, "currency"))
	if currency == "" {
		currency = strings.ToUpper(nested)
	}
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	return &domain.Price{Amount: *amount, Currency: currency, OriginalAmount: original}
}

func idOf(raw map[string]any) string {
	v := first(raw, "id", "_id")
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case nil:
		return ""
	default:
		if f := floatPtr(id); f != nil {
			return strconv.FormatFloat(*f, 'f', -1, 64)
		}
		return ""
	}
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringField(m map[string]any, keys ...string) string {
	switch v := first(m, keys...).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func floatPtr(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func intPtr(v any) *int {
	f := floatPtr(v)
	if f == nil {
		return nil
	}
	i := int(math.Round(*f))
	return &i
}

func boolOf(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true
		}
		return false
	default:
		if f := floatPtr(b); f != nil {
			return *f != 0
		}
		return false
	}
}

// stringList coerces elements to strings and drops empty ones.
// An empty result is nil, which marks "no value".
func stringList(v any) []string {
	var items []any

	switch list := v.(type) {
	case []any:
		items = list
	case []string:
		for _, s := range list {
			items = append(items, s)
		}
	case string:
		s := strings.TrimSpace(list)
		if strings.HasPrefix(s, "[") {
			if err := json.Unmarshal([]byte(s), &items); err != nil {
				items = nil
			}
		} else {
			for _, part := range strings.Split(s, ",") {
				items = append(items, part)
			}
		}
	default:
		return nil
	}

	var out []string
	for _, item := range items {
		if s := elementString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func elementString(v any) string {
	switch e := v.(type) {
	case string:
		return strings.TrimSpace(e)
	case bool:
		if e {
			return "true"
		}
		return ""
	case nil:
		return ""
	default:
		f := floatPtr(e)
		if f == nil || *f == 0 {
			return ""
		}
		return strconv.FormatFloat(*f, 'f', -1, 64)
	}
}
