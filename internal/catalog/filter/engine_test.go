package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/catalog/domain"
)

func price(amount float64) *domain.Price {
	return &domain.Price{Amount: amount, Currency: domain.DefaultCurrency}
}

func ptr[T any](v T) *T { return &v }

func names(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func mugs() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Red Mug", Price: price(10)},
		{ID: "2", Name: "Blue Mug", Price: price(5)},
	}
}

func catalog() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Aurora Dashboard Kit", Price: price(134.1), Tags: []string{"React", "UX"}, Badges: []string{"New"}, Rating: ptr(4.48), CreatedAt: "2025-01-02T00:00:00Z"},
		{ID: "2", Name: "Nimbus Landing Theme", Price: price(125.29), Tags: []string{"Astro", "Commerce"}, Rating: ptr(4.38), CreatedAt: "2025-01-03T00:00:00Z", SerialNumber: "FS-2027-002"},
		{ID: "3", Name: "Velocity Ecommerce Stack", Tags: []string{"Commerce"}, Featured: true, CreatedAt: "not a date"},
		{ID: "4", Name: "Lumen Icon System", Price: price(19), Tags: []string{"design"}, Rating: ptr(4.9), Featured: true, Summary: "Icons for teams"},
		{ID: "5", Name: "Pulse Motion Library", Price: price(60), Description: "Motion primitives", Rating: ptr(4.48), CreatedAt: "2025-02-01"},
	}
}

func TestApply_SortPriceAscending(t *testing.T) {
	got := Apply(mugs(), domain.FilterSpec{Sort: domain.SortPriceAsc})
	assert.Equal(t, []string{"Blue Mug", "Red Mug"}, names(got))
}

func TestApply_SearchMatchesSubstringCaseInsensitively(t *testing.T) {
	got := Apply(mugs(), domain.FilterSpec{Search: "  red "})
	assert.Equal(t, []string{"Red Mug"}, names(got))
}

func TestApply_SearchCoversAllTextFields(t *testing.T) {
	tests := map[string]struct {
		search string
		want   []string
	}{
		"summary":       {search: "icons for", want: []string{"Lumen Icon System"}},
		"description":   {search: "PRIMITIVES", want: []string{"Pulse Motion Library"}},
		"serial number": {search: "fs-2027", want: []string{"Nimbus Landing Theme"}},
		"tag":           {search: "astro", want: []string{"Nimbus Landing Theme"}},
		"badge":         {search: "new", want: []string{"Aurora Dashboard Kit"}},
		"no match":      {search: "zzz", want: []string{}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Apply(catalog(), domain.FilterSpec{Search: tc.search})
			assert.ElementsMatch(t, tc.want, names(got))
		})
	}
}

func TestApply_TagFilterIsOrAcrossTags(t *testing.T) {
	got := Apply(catalog(), domain.FilterSpec{Tags: []string{"ux", "DESIGN"}})
	assert.Equal(t, []string{"Lumen Icon System", "Aurora Dashboard Kit"}, names(got))
}

func TestApply_CategoryIsAPseudoTag(t *testing.T) {
	got := Apply(catalog(), domain.FilterSpec{Category: "commerce", Sort: domain.SortPriceAsc})
	assert.Equal(t, []string{"Nimbus Landing Theme", "Velocity Ecommerce Stack"}, names(got))
}

func TestApply_PriceBoundsExcludeMissingPrices(t *testing.T) {
	got := Narrow(catalog(), domain.FilterSpec{MinPrice: ptr(20.0)})
	assert.Equal(t, []string{"Aurora Dashboard Kit", "Nimbus Landing Theme", "Pulse Motion Library"}, names(got))

	got = Narrow(catalog(), domain.FilterSpec{MaxPrice: ptr(60.0)})
	assert.Equal(t, []string{"Lumen Icon System", "Pulse Motion Library"}, names(got))

	got = Narrow(catalog(), domain.FilterSpec{MinPrice: ptr(60.0), MaxPrice: ptr(130.0)})
	assert.Equal(t, []string{"Nimbus Landing Theme", "Pulse Motion Library"}, names(got))
}

func TestApply_FeaturedFilterMatchesStrictly(t *testing.T) {
	got := Narrow(catalog(), domain.FilterSpec{Featured: ptr(true)})
	assert.Equal(t, []string{"Velocity Ecommerce Stack", "Lumen Icon System"}, names(got))

	got = Narrow(catalog(), domain.FilterSpec{Featured: ptr(false)})
	assert.Len(t, got, 3)
}

func TestApply_SortOrders(t *testing.T) {
	tests := map[string]struct {
		sort domain.SortKey
		want []string
	}{
		"price descending treats missing price as lowest": {
			sort: domain.SortPriceDesc,
			want: []string{"Aurora Dashboard Kit", "Nimbus Landing Theme", "Pulse Motion Library", "Lumen Icon System", "Velocity Ecommerce Stack"},
		},
		"price ascending puts missing price last": {
			sort: domain.SortPriceAsc,
			want: []string{"Lumen Icon System", "Pulse Motion Library", "Nimbus Landing Theme", "Aurora Dashboard Kit", "Velocity Ecommerce Stack"},
		},
		"rating keeps ties in input order": {
			sort: domain.SortRating,
			want: []string{"Lumen Icon System", "Aurora Dashboard Kit", "Pulse Motion Library", "Nimbus Landing Theme", "Velocity Ecommerce Stack"},
		},
		"newest treats unparsable dates as epoch": {
			sort: domain.SortNewest,
			want: []string{"Pulse Motion Library", "Nimbus Landing Theme", "Aurora Dashboard Kit", "Velocity Ecommerce Stack", "Lumen Icon System"},
		},
		"default puts featured first in stable order": {
			sort: "",
			want: []string{"Velocity Ecommerce Stack", "Lumen Icon System", "Aurora Dashboard Kit", "Nimbus Landing Theme", "Pulse Motion Library"},
		},
		"unknown key behaves as default": {
			sort: "alphabetical",
			want: []string{"Velocity Ecommerce Stack", "Lumen Icon System", "Aurora Dashboard Kit", "Nimbus Landing Theme", "Pulse Motion Library"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Apply(catalog(), domain.FilterSpec{Sort: tc.sort})
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestApply_PaginationBoundaries(t *testing.T) {
	four := catalog()[:4]

	first := Apply(four, domain.FilterSpec{Sort: domain.SortPriceAsc, Limit: 2, Page: 1})
	assert.Equal(t, []string{"Lumen Icon System", "Nimbus Landing Theme"}, names(first))

	third := Apply(four, domain.FilterSpec{Sort: domain.SortPriceAsc, Limit: 2, Page: 3})
	require.NotNil(t, third)
	assert.Empty(t, third)

	clamped := Apply(four, domain.FilterSpec{Sort: domain.SortPriceAsc, Limit: 2, Page: -4})
	assert.Equal(t, names(first), names(clamped))

	unpaged := Apply(four, domain.FilterSpec{Page: 3})
	assert.Len(t, unpaged, 4)
}

func TestApply_EmptyCollection(t *testing.T) {
	got := Apply(nil, domain.FilterSpec{Search: "x", Tags: []string{"a"}, Sort: domain.SortRating, Limit: 3})
	assert.Empty(t, got)
}

func TestApply_IsIdempotentWithoutPagination(t *testing.T) {
	spec := domain.FilterSpec{Tags: []string{"commerce", "ux"}, MinPrice: ptr(1.0), Sort: domain.SortPriceDesc}

	once := Apply(catalog(), spec)
	twice := Apply(once, spec)
	assert.Equal(t, once, twice)
}

func TestApply_WithoutSortReturnsSubsequence(t *testing.T) {
	input := catalog()
	got := Narrow(input, domain.FilterSpec{MaxPrice: ptr(130.0)})

	idx := 0
	for _, p := range got {
		for idx < len(input) && input[idx].ID != p.ID {
			idx++
		}
		require.Less(t, idx, len(input), "result is not a subsequence of the input")
		idx++
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	input := catalog()
	before := names(input)

	_ = Apply(input, domain.FilterSpec{Sort: domain.SortPriceAsc})
	assert.Equal(t, before, names(input))
}
