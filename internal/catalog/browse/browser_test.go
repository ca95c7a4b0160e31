package browse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/catalog/gateway"
)

type stubLister struct {
	mu      sync.Mutex
	calls   []gateway.ListOptions
	respond func(opts gateway.ListOptions) (gateway.ListResult, error)
}

func (s *stubLister) List(ctx context.Context, opts gateway.ListOptions) (gateway.ListResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, opts)
	s.mu.Unlock()
	return s.respond(opts)
}

func product(id, name string, amount float64) domain.Product {
	return domain.Product{ID: id, Name: name, Price: &domain.Price{Amount: amount, Currency: "USD"}}
}

var demo = []domain.Product{product("fallback-1", "Demo", 1)}

func TestRefresh_ServesUpstreamCollection(t *testing.T) {
	lister := &stubLister{respond: func(gateway.ListOptions) (gateway.ListResult, error) {
		return gateway.ListResult{Items: []domain.Product{product("1", "Red Mug", 10), product("2", "Blue Mug", 5)}}, nil
	}}
	b := New(lister, demo, 50)

	spec := domain.FilterSpec{Search: "mug", Sort: domain.SortPriceAsc, Page: 2, Limit: 1}
	require.True(t, b.Refresh(context.Background(), spec))

	view := b.View(spec)
	assert.False(t, view.Fallback)
	assert.Equal(t, 2, view.Total)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Red Mug", view.Items[0].Name)

	require.Len(t, lister.calls, 1)
	assert.Equal(t, gateway.ListOptions{Limit: 50}, lister.calls[0])
}

func TestRefresh_NoMatchesIsNotFallback(t *testing.T) {
	lister := &stubLister{respond: func(gateway.ListOptions) (gateway.ListResult, error) {
		return gateway.ListResult{Items: []domain.Product{product("1", "Red Mug", 10)}}, nil
	}}
	b := New(lister, demo, 0)

	spec := domain.FilterSpec{Search: "teapot"}
	require.True(t, b.Refresh(context.Background(), spec))
	view := b.View(spec)

	assert.False(t, view.Fallback)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Total)
}

func TestRefresh_FallsBackOnError(t *testing.T) {
	lister := &stubLister{respond: func(gateway.ListOptions) (gateway.ListResult, error) {
		return gateway.ListResult{}, &gateway.GatewayError{Status: 502}
	}}
	b := New(lister, demo, 0)

	b.Refresh(context.Background(), domain.FilterSpec{})
	view := b.View(domain.FilterSpec{})

	assert.True(t, view.Fallback)
	assert.Equal(t, gateway.FallbackLoadProducts, view.Error)
	assert.Equal(t, demo, view.Items)
}

func TestRefresh_FallsBackOnEmptyResult(t *testing.T) {
	lister := &stubLister{respond: func(gateway.ListOptions) (gateway.ListResult, error) {
		return gateway.ListResult{}, nil
	}}
	b := New(lister, demo, 0)

	b.Refresh(context.Background(), domain.FilterSpec{})
	view := b.View(domain.FilterSpec{})

	assert.True(t, view.Fallback)
	assert.Empty(t, view.Error)
	assert.Len(t, view.Items, 1)
}

func TestRefresh_StaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	var first sync.Once
	lister := &stubLister{respond: func(gateway.ListOptions) (gateway.ListResult, error) {
		slow := false
		first.Do(func() { slow = true })
		if slow {
			close(started)
			<-release
			return gateway.ListResult{Items: []domain.Product{product("s", "Stale", 1)}}, nil
		}
		return gateway.ListResult{Items: []domain.Product{product("f", "Fresh", 1)}}, nil
	}}
	b := New(lister, demo, 0)

	applied := make(chan bool, 1)
	go func() {
		applied <- b.Refresh(context.Background(), domain.FilterSpec{Search: "slow"})
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("slow refresh never started")
	}

	assert.True(t, b.Refresh(context.Background(), domain.FilterSpec{Search: "fast"}))
	close(release)
	assert.False(t, <-applied)

	products := b.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "Fresh", products[0].Name)
}

func TestReloadRepeatsLastRefresh(t *testing.T) {
	lister := &stubLister{respond: func(gateway.ListOptions) (gateway.ListResult, error) {
		return gateway.ListResult{}, errors.New("offline")
	}}
	b := New(lister, demo, 0)

	b.Refresh(context.Background(), domain.FilterSpec{Category: "ux"})
	require.NoError(t, b.Reload(context.Background()))

	require.Len(t, lister.calls, 2)
	assert.Equal(t, lister.calls[0], lister.calls[1])
	assert.True(t, b.View(domain.FilterSpec{}).Fallback)
}
