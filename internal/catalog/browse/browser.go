package browse

import (
	"context"
	"sync"

	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/catalog/filter"
	"github.com/tair/storefront/internal/catalog/gateway"
	"github.com/tair/storefront/pkg/logger"
)

// DefaultFetchLimit bounds how many products one refresh pulls from upstream
const DefaultFetchLimit = 200

// Lister fetches products from the catalog API
type Lister interface {
	List(ctx context.Context, opts gateway.ListOptions) (gateway.ListResult, error)
}

// View is the visible page of the catalog
type View struct {
	Items    []domain.Product `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Fallback bool             `json:"fallback"`
	Error    string           `json:"error,omitempty"`
}

// Browser holds the latest fetched collection and re-runs the filter engine
// over it. Only the most recent Refresh may replace the collection.
type Browser struct {
	lister     Lister
	fallback   []domain.Product
	fetchLimit int

	mu         sync.Mutex
	generation uint64
	products   []domain.Product
	isFallback bool
	errMsg     string
	lastSpec   domain.FilterSpec
}

// New creates a browser. fallback is shown whenever the upstream fails or
// returns nothing.
func New(lister Lister, fallback []domain.Product, fetchLimit int) *Browser {
	if fetchLimit <= 0 {
		fetchLimit = DefaultFetchLimit
	}
	return &Browser{lister: lister, fallback: fallback, fetchLimit: fetchLimit}
}

// Refresh fetches up to fetchLimit products and remembers spec for Reload.
// It reports false when a newer Refresh started meanwhile, in which case the
// response was discarded.
func (b *Browser) Refresh(ctx context.Context, spec domain.FilterSpec) bool {
	b.mu.Lock()
	b.generation++
	gen := b.generation
	b.lastSpec = spec
	b.mu.Unlock()

	// filtering happens locally, so an empty answer means an empty catalog
	res, err := b.lister.List(ctx, gateway.ListOptions{Limit: b.fetchLimit})

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.generation {
		logger.Debug(ctx).Uint64("generation", gen).Msg("Discarding stale catalog response")
		return false
	}

	switch {
	case err != nil:
		logger.Warn(ctx).Err(err).Msg("Catalog API unavailable, serving fallback catalog")
		b.useFallback(gateway.Message(err, gateway.FallbackLoadProducts))
	case len(res.Items) == 0:
		b.useFallback("")
	default:
		if res.Total > len(res.Items) {
			logger.Warn(ctx).
				Int("fetched", len(res.Items)).
				Int("total", res.Total).
				Msg("Catalog larger than the fetch limit, browsing a truncated collection")
		}
		b.products = res.Items
		b.isFallback = false
		b.errMsg = ""
	}
	return true
}

// Reload repeats the last Refresh
func (b *Browser) Reload(ctx context.Context) error {
	b.mu.Lock()
	spec := b.lastSpec
	b.mu.Unlock()

	b.Refresh(ctx, spec)
	return nil
}

func (b *Browser) useFallback(msg string) {
	b.products = b.fallback
	b.isFallback = true
	b.errMsg = msg
}

// View filters, sorts and pages the current collection
func (b *Browser) View(spec domain.FilterSpec) View {
	b.mu.Lock()
	products := b.products
	isFallback, errMsg := b.isFallback, b.errMsg
	b.mu.Unlock()

	narrowed := filter.Narrow(products, spec)
	filter.SortProducts(narrowed, spec.Sort)

	page := spec.Page
	if page < 1 {
		page = 1
	}

	return View{
		Items:    filter.Paginate(narrowed, page, spec.Limit),
		Total:    len(narrowed),
		Page:     page,
		Limit:    spec.Limit,
		Fallback: isFallback,
		Error:    errMsg,
	}
}

// Products returns the current collection
func (b *Browser) Products() []domain.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.products
}
