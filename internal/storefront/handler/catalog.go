package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/storefront/internal/catalog/browse"
	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/catalog/format"
	"github.com/tair/storefront/pkg/logger"
)

// CatalogResponse is one page of the storefront catalog
type CatalogResponse struct {
	Items    []format.Card `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
	Fallback bool          `json:"fallback"`
	Error    string        `json:"error,omitempty"`
}

// ListCatalog handles GET /api/catalog
func (h *Handler) ListCatalog(c *fiber.Ctx) error {
	spec, err := specFromQuery(c)
	if err != nil {
		return err
	}

	browser := browse.New(h.catalog, h.fallback, h.opts.FetchLimit)
	browser.Refresh(c.UserContext(), spec)
	view := browser.View(spec)

	if view.Fallback {
		// Fallback pages must not outlive the outage in the response cache
		c.Set(fiber.HeaderCacheControl, "no-store")
	}

	return c.JSON(CatalogResponse{
		Items:    format.Cards(view.Items),
		Total:    view.Total,
		Page:     view.Page,
		Limit:    view.Limit,
		Fallback: view.Fallback,
		Error:    view.Error,
	})
}

// GetProduct handles GET /api/catalog/:id
func (h *Handler) GetProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	for _, p := range h.fallback {
		if p.ID == id {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return c.JSON(format.NewCard(p))
		}
	}

	product, err := h.catalog.GetByID(c.UserContext(), id)
	if err != nil {
		logger.Warn(c.UserContext()).Err(err).Str("product_id", id).Msg("Failed to load product")
		return err
	}
	return c.JSON(format.NewCard(product))
}

// specFromQuery reads the catalog filter from the query string
func specFromQuery(c *fiber.Ctx) (domain.FilterSpec, error) {
	spec := domain.FilterSpec{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: strings.TrimSpace(c.Query("category")),
		Tags:     splitCSV(c.Query("tags")),
		Sort:     domain.SortKey(strings.TrimSpace(c.Query("sort"))),
	}

	var err error
	if spec.MinPrice, err = optFloat(c.Query("minPrice")); err != nil {
		return spec, fiber.NewError(fiber.StatusBadRequest, "minPrice must be a number")
	}
	if spec.MaxPrice, err = optFloat(c.Query("maxPrice")); err != nil {
		return spec, fiber.NewError(fiber.StatusBadRequest, "maxPrice must be a number")
	}

	switch strings.ToLower(strings.TrimSpace(c.Query("featured"))) {
	case "":
	case "1", "true":
		featured := true
		spec.Featured = &featured
	case "0", "false":
		featured := false
		spec.Featured = &featured
	default:
		return spec, fiber.NewError(fiber.StatusBadRequest, "featured must be 0 or 1")
	}

	spec.Page = max(c.QueryInt("page", 1), 1)
	spec.Limit = max(c.QueryInt("limit", 0), 0)
	return spec, nil
}

func optFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
