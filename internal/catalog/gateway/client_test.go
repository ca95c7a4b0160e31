package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/auth"
	"github.com/tair/storefront/internal/catalog/domain"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

type upstream struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	response string
}

func (u *upstream) handler(w http.ResponseWriter, r *http.Request) {
	rec := recorded{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.RawQuery,
		auth:   r.Header.Get("Authorization"),
	}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.body)
	}

	u.mu.Lock()
	u.requests = append(u.requests, rec)
	status, response := u.status, u.response
	u.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func (u *upstream) reply(status int, response string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status, u.response = status, response
}

func (u *upstream) last(t *testing.T) recorded {
	t.Helper()
	u.mu.Lock()
	defer u.mu.Unlock()
	require.NotEmpty(t, u.requests)
	return u.requests[len(u.requests)-1]
}

func (u *upstream) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.requests)
}

func newTestClient(t *testing.T, tokens auth.TokenStore) (*Client, *upstream) {
	t.Helper()
	up := &upstream{}
	srv := httptest.NewServer(http.HandlerFunc(up.handler))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURLs: []string{srv.URL}, Timeout: 2 * time.Second}, tokens)
	return c, up
}

func TestList_BareArrayDefaultsPaging(t *testing.T) {
	c, up := newTestClient(t, nil)
	up.reply(http.StatusOK, `[{"id": 1, "name": "Red Mug", "price": 10}, {"id": 2, "name": "Blue Mug", "price": 5}, "junk"]`)

	res, err := c.List(context.Background(), ListOptions{})
	require.NoError(t, err)

	assert.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 2, res.PageSize)
	assert.Equal(t, "1", res.Items[0].ID)
}

func TestList_Envelope(t *testing.T) {
	c, up := newTestClient(t, nil)
	up.reply(http.StatusOK, `{"items": [{"id": "a", "name": "A"}], "total": 40, "page": 3, "pageSize": 12}`)

	res, err := c.List(context.Background(), ListOptions{})
	require.NoError(t, err)

	assert.Len(t, res.Items, 1)
	assert.Equal(t, 40, res.Total)
	assert.Equal(t, 3, res.Page)
	assert.Equal(t, 12, res.PageSize)
}

func TestList_QueryEncoding(t *testing.T) {
	c, up := newTestClient(t, nil)
	up.reply(http.StatusOK, `[]`)

	_, err := c.List(context.Background(), ListOptions{
		Search:   "mug",
		Tags:     []string{"a", "", "b"},
		Featured: ptr(false),
		MinPrice: ptr(10.5),
		Category: "",
		Limit:    12,
	})
	require.NoError(t, err)

	assert.Equal(t, "featured=0&limit=12&minPrice=10.5&search=mug&tags=a%2Cb", up.last(t).query)
}

func TestList_ErrorUsesOperationFallback(t *testing.T) {
	c, up := newTestClient(t, nil)
	up.reply(http.StatusBadRequest, `{"unexpected": true}`)

	_, err := c.List(context.Background(), ListOptions{})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadRequest, gwErr.Status)
	assert.Equal(t, FallbackLoadProducts, gwErr.Message)
	assert.Equal(t, FallbackLoadProducts, Message(err, "other"))
}

func TestGatewayError_MessageExtraction(t *testing.T) {
	tests := map[string]struct {
		body string
		want string
	}{
		"message": {body: `{"message": "Slug already taken"}`, want: "Slug already taken"},
		"error":   {body: `{"error": "Forbidden"}`, want: "Forbidden"},
		"detail":  {body: `{"detail": "Not found"}`, want: "Not found"},
		"empty":   {body: ``, want: FallbackRequestFailed},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, up := newTestClient(t, nil)
			up.reply(http.StatusConflict, tc.body)

			_, err := c.GetByID(context.Background(), "7")
			assert.Equal(t, tc.want, Message(err, "unused"))
		})
	}
}

func TestInvalidArgumentsNeverReachTheNetwork(t *testing.T) {
	c, up := newTestClient(t, nil)
	ctx := context.Background()
	name := "Mug"

	_, err := c.GetByID(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.Create(ctx, domain.Payload{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "Product name is required", Message(err, "x"))

	_, err = c.Update(ctx, "", domain.Payload{Name: &name})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.Update(ctx, "1", domain.Payload{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.ErrorIs(t, c.Delete(ctx, " "), ErrInvalidArgument)

	assert.Zero(t, up.count())
}

func TestCreateAndUpdateSendPayload(t *testing.T) {
	c, up := newTestClient(t, nil)
	ctx := context.Background()
	name := "Mug"
	price := 20.0

	up.reply(http.StatusCreated, `{"data": {"id": 9, "name": "Mug", "price": {"amount": 20}}}`)
	p, err := c.Create(ctx, domain.Payload{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "9", p.ID)
	assert.Equal(t, http.MethodPost, up.last(t).method)
	assert.Equal(t, map[string]any{"name": "Mug", "price": 20.0}, up.last(t).body)

	up.reply(http.StatusOK, `{"id": 9, "name": "Mug", "price": 21}`)
	_, err = c.Update(ctx, "9", domain.Payload{Price: ptr(21.0)})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, up.last(t).method)
	assert.Equal(t, "/products/9", up.last(t).path)

	up.reply(http.StatusNoContent, ``)
	require.NoError(t, c.Delete(ctx, "9"))
	assert.Equal(t, http.MethodDelete, up.last(t).method)
}

func TestAuthorizationIsDerivedPerCall(t *testing.T) {
	tokens := auth.NewMemoryTokenStore()
	c, up := newTestClient(t, tokens)
	up.reply(http.StatusOK, `[]`)
	ctx := context.Background()

	_, err := c.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, up.last(t).auth)

	require.NoError(t, tokens.Set(ctx, "first"))
	_, err = c.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer first", up.last(t).auth)

	require.NoError(t, tokens.Set(ctx, "rotated"))
	_, err = c.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer rotated", up.last(t).auth)

	require.NoError(t, tokens.Clear(ctx))
	_, err = c.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, up.last(t).auth)
}

func TestWithTokenStoreDoesNotAffectOriginal(t *testing.T) {
	ctx := context.Background()
	session := auth.NewMemoryTokenStore()
	require.NoError(t, session.Set(ctx, "session-token"))

	c, up := newTestClient(t, auth.NewMemoryTokenStore())
	up.reply(http.StatusOK, `[]`)

	_, err := c.WithTokenStore(session).List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-token", up.last(t).auth)

	_, err = c.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, up.last(t).auth)
}

func TestLoginStoresToken(t *testing.T) {
	tokens := auth.NewMemoryTokenStore()
	c, up := newTestClient(t, tokens)
	ctx := context.Background()

	up.reply(http.StatusOK, `{"accessToken": "abc"}`)
	token, err := c.Login(ctx, Credentials{Email: "admin@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
	assert.Equal(t, "/login", up.last(t).path)

	stored, ok := tokens.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", stored)
}

func TestLoginRejected(t *testing.T) {
	tokens := auth.NewMemoryTokenStore()
	c, up := newTestClient(t, tokens)
	up.reply(http.StatusUnauthorized, `{"message": "Invalid credentials"}`)

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	assert.Equal(t, "Invalid credentials", Message(err, FallbackRequestFailed))

	_, ok := tokens.Get(context.Background())
	assert.False(t, ok)
}

func TestServerErrorsTripBreaker(t *testing.T) {
	up := &upstream{}
	srv := httptest.NewServer(http.HandlerFunc(up.handler))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURLs: []string{srv.URL}, BreakerMaxFailures: 2, BreakerCooldown: time.Hour}, nil)
	up.reply(http.StatusServiceUnavailable, `{"message": "down"}`)

	for i := 0; i < 2; i++ {
		_, err := c.List(context.Background(), ListOptions{})
		assert.Equal(t, "down", Message(err, ""))
	}

	_, err := c.List(context.Background(), ListOptions{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, up.count())
	assert.Equal(t, BreakerOpen, c.Breaker().State())
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	up := &upstream{}
	srv := httptest.NewServer(http.HandlerFunc(up.handler))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURLs: []string{srv.URL}, BreakerMaxFailures: 1}, nil)
	up.reply(http.StatusNotFound, `{"message": "missing"}`)

	for i := 0; i < 3; i++ {
		_, _ = c.GetByID(context.Background(), "1")
	}
	assert.Equal(t, BreakerClosed, c.Breaker().State())
}
