package form

import (
	"strconv"
	"strings"

	"github.com/tair/storefront/internal/catalog/domain"
)

// FormState is the draft of a product while it is being edited. Numeric
// fields stay strings until submit so partial input is never rejected.
type FormState struct {
	Name            string                 `json:"name"`
	Slug            string                 `json:"slug"`
	Summary         string                 `json:"summary"`
	Description     string                 `json:"description"`
	SerialNumber    string                 `json:"serialNumber"`
	Price           string                 `json:"price"`
	OriginalPrice   string                 `json:"originalPrice"`
	Currency        string                 `json:"currency"`
	ImageURL        string                 `json:"imageUrl"`
	ThumbnailURL    string                 `json:"thumbnailUrl"`
	Badges          string                 `json:"badges"`
	Tags            string                 `json:"tags"`
	Rating          string                 `json:"rating"`
	ReviewCount     string                 `json:"reviewCount"`
	InventoryStatus domain.InventoryStatus `json:"inventoryStatus"`
	Featured        bool                   `json:"featured"`
	Stock           string                 `json:"stock"`
}

// DefaultFormState is the blank draft used for new products
func DefaultFormState() FormState {
	return FormState{
		Currency:        domain.DefaultCurrency,
		InventoryStatus: domain.InventoryInStock,
	}
}

// ProductToFormState snapshots p into a draft
func ProductToFormState(p domain.Product) FormState {
	f := DefaultFormState()

	f.Name = p.Name
	f.Slug = p.Slug
	f.Summary = p.Summary
	f.Description = p.Description
	f.SerialNumber = p.SerialNumber
	f.ImageURL = p.ImageURL
	f.ThumbnailURL = p.ThumbnailURL
	f.Badges = strings.Join(p.Badges, ", ")
	f.Tags = strings.Join(p.Tags, ", ")
	f.Rating = floatString(p.Rating)
	f.ReviewCount = intString(p.ReviewCount)
	f.Stock = intString(p.Stock)
	f.Featured = p.Featured

	if p.InventoryStatus != "" {
		f.InventoryStatus = p.InventoryStatus
	}
	if p.Price != nil {
		f.Price = floatString(&p.Price.Amount)
		f.OriginalPrice = floatString(p.Price.OriginalAmount)
		if p.Price.Currency != "" {
			f.Currency = p.Price.Currency
		}
	}
	return f
}

// Field names accepted by Machine.ChangeField
const (
	FieldName            = "name"
	FieldSlug            = "slug"
	FieldSummary         = "summary"
	FieldDescription     = "description"
	FieldSerialNumber    = "serialNumber"
	FieldPrice           = "price"
	FieldOriginalPrice   = "originalPrice"
	FieldCurrency        = "currency"
	FieldImageURL        = "imageUrl"
	FieldThumbnailURL    = "thumbnailUrl"
	FieldBadges          = "badges"
	FieldTags            = "tags"
	FieldRating          = "rating"
	FieldReviewCount     = "reviewCount"
	FieldInventoryStatus = "inventoryStatus"
	FieldFeatured        = "featured"
	FieldStock           = "stock"
)

// Fields lists every editable field in display order
var Fields = []string{
	FieldName, FieldSlug, FieldSummary, FieldDescription, FieldSerialNumber,
	FieldPrice, FieldOriginalPrice, FieldCurrency, FieldImageURL, FieldThumbnailURL,
	FieldBadges, FieldTags, FieldRating, FieldReviewCount, FieldInventoryStatus,
	FieldFeatured, FieldStock,
}

// set updates one field by name. No validation happens here.
func (f *FormState) set(name, value string) error {
	switch name {
	case FieldName:
		f.Name = value
	case FieldSlug:
		f.Slug = value
	case FieldSummary:
		f.Summary = value
	case FieldDescription:
		f.Description = value
	case FieldSerialNumber:
		f.SerialNumber = value
	case FieldPrice:
		f.Price = value
	case FieldOriginalPrice:
		f.OriginalPrice = value
	case FieldCurrency:
		f.Currency = value
	case FieldImageURL:
		f.ImageURL = value
	case FieldThumbnailURL:
		f.ThumbnailURL = value
	case FieldBadges:
		f.Badges = value
	case FieldTags:
		f.Tags = value
	case FieldRating:
		f.Rating = value
	case FieldReviewCount:
		f.ReviewCount = value
	case FieldStock:
		f.Stock = value
	case FieldInventoryStatus:
		f.InventoryStatus = domain.ParseInventoryStatus(value)
	case FieldFeatured:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			f.Featured = true
		default:
			f.Featured = false
		}
	default:
		return ErrUnknownField
	}
	return nil
}

func floatString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
