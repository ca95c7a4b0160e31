package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/pkg/logger"
)

// ListResult is one page of products as reported by the upstream
type ListResult struct {
	Items    []domain.Product
	Total    int
	Page     int
	PageSize int
}

// Credentials are posted to /login
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// List fetches products. The upstream may answer with a bare array or an
// {items, total, page, pageSize} envelope.
func (c *Client) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	data, err := c.do(ctx, call{
		op:       "list",
		method:   http.MethodGet,
		path:     "/products",
		query:    opts.values(),
		fallback: FallbackLoadProducts,
	})
	if err != nil {
		return ListResult{}, err
	}

	var (
		rawItems []any
		envelope map[string]any
	)
	switch v := data.(type) {
	case []any:
		rawItems = v
	case map[string]any:
		envelope = v
		rawItems, _ = first(v, "items", "data", "products").([]any)
	}

	items := make([]domain.Product, 0, len(rawItems))
	for _, raw := range rawItems {
		if m, ok := raw.(map[string]any); ok {
			items = append(items, Normalize(m))
		}
	}

	result := ListResult{Items: items, Total: len(items), Page: 1, PageSize: len(items)}
	if envelope != nil {
		if n := intPtr(envelope["total"]); n != nil {
			result.Total = *n
		}
		if n := intPtr(envelope["page"]); n != nil {
			result.Page = *n
		}
		if n := intPtr(first(envelope, "pageSize", "page_size")); n != nil {
			result.PageSize = *n
		}
	}

	logger.Debug(ctx).
		Int("count", len(items)).
		Int("total", result.Total).
		Msg("Products listed")

	return result, nil
}

// GetByID fetches a single product
func (c *Client) GetByID(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, invalidArgument("Product id is required")
	}

	data, err := c.do(ctx, call{
		op:       "get",
		method:   http.MethodGet,
		path:     "/products/" + url.PathEscape(id),
		fallback: FallbackRequestFailed,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return productFrom(data)
}

// Create persists a new product
func (c *Client) Create(ctx context.Context, payload domain.Payload) (domain.Product, error) {
	if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
		return domain.Product{}, invalidArgument("Product name is required")
	}

	data, err := c.do(ctx, call{
		op:       "create",
		method:   http.MethodPost,
		path:     "/products",
		body:     payload,
		fallback: FallbackRequestFailed,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return productFrom(data)
}

// Update replaces the given fields of an existing product
func (c *Client) Update(ctx context.Context, id string, payload domain.Payload) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, invalidArgument("Product id is required")
	}
	if payload.IsEmpty() {
		return domain.Product{}, invalidArgument("Nothing to update")
	}

	data, err := c.do(ctx, call{
		op:       "update",
		method:   http.MethodPut,
		path:     "/products/" + url.PathEscape(id),
		body:     payload,
		fallback: FallbackRequestFailed,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return productFrom(data)
}

// Delete removes a product
func (c *Client) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalidArgument("Product id is required")
	}

	_, err := c.do(ctx, call{
		op:       "delete",
		method:   http.MethodDelete,
		path:     "/products/" + url.PathEscape(id),
		fallback: FallbackRequestFailed,
	})
	return err
}

// Login exchanges credentials for a token and stores it
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return "", invalidArgument("Email and password are required")
	}

	data, err := c.do(ctx, call{
		op:       "login",
		method:   http.MethodPost,
		path:     "/login",
		body:     creds,
		fallback: FallbackRequestFailed,
	})
	if err != nil {
		return "", err
	}

	body, _ := data.(map[string]any)
	token := stringField(body, "token", "accessToken", "access_token")
	if token == "" {
		return "", fmt.Errorf("login response carried no token")
	}

	if c.tokens != nil {
		if err := c.tokens.Set(ctx, token); err != nil {
			return "", fmt.Errorf("failed to store token: %w", err)
		}
	}
	return token, nil
}

// productFrom accepts either the record itself or a {data: record} wrapper
func productFrom(data any) (domain.Product, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return domain.Product{}, fmt.Errorf("unexpected catalog api response %T", data)
	}
	if inner, ok := m["data"].(map[string]any); ok {
		m = inner
	}
	return Normalize(m), nil
}
