package gateway

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tair/storefront/internal/catalog/domain"
)

// ListOptions are sent to GET /products as query parameters
type ListOptions struct {
	Search   string
	Category string
	Tags     []string
	MinPrice *float64
	MaxPrice *float64
	Sort     domain.SortKey
	Featured *bool
	Page     int
	Limit    int
}

func (o ListOptions) values() url.Values {
	params := map[string]any{
		"search":   o.Search,
		"category": o.Category,
		"tags":     o.Tags,
		"minPrice": o.MinPrice,
		"maxPrice": o.MaxPrice,
		"sort":     string(o.Sort),
		"featured": o.Featured,
	}
	if o.Page > 0 {
		params["page"] = o.Page
	}
	if o.Limit > 0 {
		params["limit"] = o.Limit
	}
	return encodeQuery(params)
}

// encodeQuery joins slices with commas, writes booleans as 0/1 and omits
// nil and empty values.
func encodeQuery(params map[string]any) url.Values {
	q := url.Values{}
	for key, raw := range params {
		if v, ok := queryValue(raw); ok {
			q.Set(key, v)
		}
	}
	return q
}

func queryValue(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, strings.TrimSpace(v) != ""
	case []string:
		parts := make([]string, 0, len(v))
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), len(parts) > 0
	case bool:
		return boolDigit(v), true
	case *bool:
		if v == nil {
			return "", false
		}
		return boolDigit(*v), true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case *float64:
		if v == nil {
			return "", false
		}
		return strconv.FormatFloat(*v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
