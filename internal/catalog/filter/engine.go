package filter

import (
	"math"
	"sort"
	"strings"

	"github.com/tair/storefront/internal/catalog/domain"
)

// Apply narrows, orders and pages products according to spec.
// The input slice is never modified.
func Apply(products []domain.Product, spec domain.FilterSpec) []domain.Product {
	out := Narrow(products, spec)
	SortProducts(out, spec.Sort)
	return Paginate(out, spec.Page, spec.Limit)
}

// Narrow applies the search, tag, category, price and featured predicates in order
// and returns a new slice.
func Narrow(products []domain.Product, spec domain.FilterSpec) []domain.Product {
	out := make([]domain.Product, 0, len(products))

	search := strings.ToLower(strings.TrimSpace(spec.Search))
	tags := nonBlank(spec.Tags)
	category := strings.TrimSpace(spec.Category)

	for _, p := range products {
		if search != "" && !strings.Contains(searchText(p), search) {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(p, tags) {
			continue
		}
		if category != "" && !p.HasTag(category) {
			continue
		}
		if spec.MinPrice != nil && (p.Price == nil || p.Price.Amount < *spec.MinPrice) {
			continue
		}
		if spec.MaxPrice != nil && (p.Price == nil || p.Price.Amount > *spec.MaxPrice) {
			continue
		}
		if spec.Featured != nil && p.Featured != *spec.Featured {
			continue
		}
		out = append(out, p)
	}

	return out
}

// SortProducts orders products in place with a stable sort on a single key.
// Unknown keys fall back to featured-first.
func SortProducts(products []domain.Product, key domain.SortKey) {
	var less func(a, b domain.Product) bool

	switch key {
	case domain.SortPriceAsc:
		less = func(a, b domain.Product) bool { return priceOr(a, math.Inf(1)) < priceOr(b, math.Inf(1)) }
	case domain.SortPriceDesc:
		less = func(a, b domain.Product) bool { return priceOr(a, math.Inf(-1)) > priceOr(b, math.Inf(-1)) }
	case domain.SortRating:
		less = func(a, b domain.Product) bool { return ratingOf(a) > ratingOf(b) }
	case domain.SortNewest:
		less = func(a, b domain.Product) bool { return a.CreatedTime().After(b.CreatedTime()) }
	default:
		less = func(a, b domain.Product) bool { return a.Featured && !b.Featured }
	}

	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}

// Paginate returns the requested page. A non-positive limit disables paging;
// pages past the end are empty.
func Paginate(products []domain.Product, page, limit int) []domain.Product {
	if limit <= 0 {
		return products
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * limit
	if start >= len(products) {
		return []domain.Product{}
	}
	end := start + limit
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}

func searchText(p domain.Product) string {
	parts := []string{p.Name, p.Summary, p.Description, p.SerialNumber}
	parts = append(parts, p.Tags...)
	parts = append(parts, p.Badges...)
	return strings.ToLower(strings.Join(parts, " "))
}

func hasAnyTag(p domain.Product, tags []string) bool {
	for _, t := range tags {
		if p.HasTag(t) {
			return true
		}
	}
	return false
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func priceOr(p domain.Product, missing float64) float64 {
	if p.Price == nil || math.IsNaN(p.Price.Amount) {
		return missing
	}
	return p.Price.Amount
}

func ratingOf(p domain.Product) float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}
