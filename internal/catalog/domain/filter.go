package domain

// SortKey selects the single sort applied after filtering
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

// FilterSpec describes the desired view of a product collection.
// Zero values mean "not set"; Page and Limit are only honoured when Limit > 0.
type FilterSpec struct {
	Search   string
	Category string
	Tags     []string
	MinPrice *float64
	MaxPrice *float64
	Sort     SortKey
	Featured *bool
	Page     int
	Limit    int
}

// Unpaged returns a copy of the spec without pagination
func (s FilterSpec) Unpaged() FilterSpec {
	s.Page = 0
	s.Limit = 0
	return s
}
