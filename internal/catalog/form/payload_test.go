package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/catalog/domain"
)

func validDraft() FormState {
	f := DefaultFormState()
	f.Name = "Mug"
	f.Price = "12.5"
	return f
}

func TestFormToPayload_ValidationMessages(t *testing.T) {
	tests := map[string]struct {
		mutate func(*FormState)
		field  string
		msg    string
	}{
		"missing price":     {mutate: func(f *FormState) { f.Price = " " }, field: FieldPrice, msg: "Price must be a positive number."},
		"negative price":    {mutate: func(f *FormState) { f.Price = "-3" }, field: FieldPrice, msg: "Price must be a positive number."},
		"text price":        {mutate: func(f *FormState) { f.Price = "ten" }, field: FieldPrice, msg: "Price must be a positive number."},
		"original price":    {mutate: func(f *FormState) { f.OriginalPrice = "abc" }, field: FieldOriginalPrice, msg: "Original price must be a number."},
		"negative rating":   {mutate: func(f *FormState) { f.Rating = "-1" }, field: FieldRating, msg: "Rating must be a non-negative number."},
		"review count":      {mutate: func(f *FormState) { f.ReviewCount = "many" }, field: FieldReviewCount, msg: "Review count must be a non-negative whole number."},
		"fractional count":  {mutate: func(f *FormState) { f.ReviewCount = "2.5" }, field: FieldReviewCount, msg: "Review count must be a non-negative whole number."},
		"negative reviews":  {mutate: func(f *FormState) { f.ReviewCount = "-4" }, field: FieldReviewCount, msg: "Review count must be a non-negative whole number."},
		"stock":             {mutate: func(f *FormState) { f.Stock = "lots" }, field: FieldStock, msg: "Stock must be a non-negative whole number."},
		"fractional stock":  {mutate: func(f *FormState) { f.Stock = "1.5" }, field: FieldStock, msg: "Stock must be a non-negative whole number."},
		"negative stock":    {mutate: func(f *FormState) { f.Stock = "-1" }, field: FieldStock, msg: "Stock must be a non-negative whole number."},
		"infinite original": {mutate: func(f *FormState) { f.OriginalPrice = "Inf" }, field: FieldOriginalPrice, msg: "Original price must be a number."},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := validDraft()
			tc.mutate(&f)

			_, err := FormToPayload(f)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
			assert.Equal(t, tc.msg, vErr.Message)
		})
	}
}

func TestFormToPayload_BuildsTrimmedPayload(t *testing.T) {
	f := validDraft()
	f.Name = "  Mug  "
	f.Summary = "   "
	f.Badges = " New, ,Sale "
	f.Tags = ""
	f.Rating = "0"
	f.Stock = "4"
	f.ImageURL = "data:image/png;base64,AAAA"
	f.ThumbnailURL = "https://cdn.example.com/t.png"
	f.Currency = "eur"

	p, err := FormToPayload(f)
	require.NoError(t, err)

	assert.Equal(t, "Mug", *p.Name)
	assert.Nil(t, p.Summary)
	assert.Equal(t, []string{"New", "Sale"}, p.Badges)
	assert.Nil(t, p.Tags)
	assert.Equal(t, 0.0, *p.Rating)
	assert.Equal(t, 4, *p.Stock)
	assert.Nil(t, p.ImageURL, "embedded previews are not real links")
	assert.Equal(t, "https://cdn.example.com/t.png", *p.ThumbnailURL)
	assert.Equal(t, "EUR", *p.Currency)
	assert.Equal(t, domain.InventoryInStock, *p.InventoryStatus)
	assert.False(t, *p.Featured)
}

func TestProductToFormState(t *testing.T) {
	f := ProductToFormState(domain.Product{
		Name:        "Lamp",
		Price:       &domain.Price{Amount: 19.5, Currency: "GBP", OriginalAmount: ptr(25.0)},
		Badges:      []string{"New", "Sale"},
		ReviewCount: ptr(8),
	})

	assert.Equal(t, "19.5", f.Price)
	assert.Equal(t, "25", f.OriginalPrice)
	assert.Equal(t, "GBP", f.Currency)
	assert.Equal(t, "New, Sale", f.Badges)
	assert.Equal(t, "", f.Tags)
	assert.Equal(t, "8", f.ReviewCount)
	assert.Equal(t, "", f.Rating)
	assert.Equal(t, domain.InventoryInStock, f.InventoryStatus)
}

func TestRoundTripPreservesCoreFields(t *testing.T) {
	products := []domain.Product{
		{Name: "Aurora", Price: &domain.Price{Amount: 134.1, Currency: "USD"}, Tags: []string{"React", "UX"}, Badges: []string{"New"}},
		{Name: "Nimbus", Price: &domain.Price{Amount: 5, Currency: "USD", OriginalAmount: ptr(9.0)}, Tags: []string{"Astro"}},
		{Name: "Bare", Price: &domain.Price{Amount: 0.99, Currency: "USD"}},
	}

	for _, p := range products {
		t.Run(p.Name, func(t *testing.T) {
			first := ProductToFormState(p)
			payload, err := FormToPayload(first)
			require.NoError(t, err)

			again := ProductToFormState(payload.ToProduct("x"))

			assert.Equal(t, first.Name, again.Name)
			assert.Equal(t, first.Price, again.Price)
			assert.Equal(t, first.Tags, again.Tags)
			assert.Equal(t, first.Badges, again.Badges)
		})
	}
}
