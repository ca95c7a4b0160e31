package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/storefront/internal/auth"
	"github.com/tair/storefront/pkg/logger"
)

var tracer = otel.Tracer("catalog-gateway")

// Config configures the catalog API client
type Config struct {
	BaseURLs           []string
	Timeout            time.Duration
	BreakerMaxFailures int
	BreakerCooldown    time.Duration
}

// Client talks to the remote catalog API. The Authorization header is
// derived from the token store on every call, never cached on the client.
type Client struct {
	endpoints *Endpoints
	breaker   *Breaker
	http      *http.Client
	tokens    auth.TokenStore
}

// NewClient creates a catalog API client. A nil token store sends every
// request anonymously.
func NewClient(cfg Config, tokens auth.TokenStore) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		endpoints: NewEndpoints(cfg.BaseURLs),
		breaker:   NewBreaker("catalog-api", cfg.BreakerMaxFailures, cfg.BreakerCooldown),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens: tokens,
	}
}

// WithTokenStore returns a client sharing endpoints and breaker but reading
// credentials from tokens. The storefront binds one per browser session.
func (c *Client) WithTokenStore(tokens auth.TokenStore) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// Breaker exposes the upstream circuit breaker for health reporting
func (c *Client) Breaker() *Breaker {
	return c.breaker
}

// Ping checks that an upstream instance answers at all
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Next()+"/products?limit=1", nil)
	if err != nil {
		return fmt.Errorf("failed to build ping request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog api unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("catalog api unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any
	fallback string
}

// do performs one request and returns the decoded JSON body (nil when empty).
// Non-2xx responses become *GatewayError.
func (c *Client) do(ctx context.Context, cl call) (any, error) {
	ctx, span := tracer.Start(ctx, "gateway."+cl.op,
		trace.WithAttributes(
			attribute.String("http.method", cl.method),
			attribute.String("catalog.path", cl.path),
		),
	)
	defer span.End()

	start := time.Now()
	status := 0
	defer func() {
		requestsTotal.WithLabelValues(cl.op, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(cl.op).Observe(time.Since(start).Seconds())
	}()

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var resp *http.Response
	err = c.breaker.Call(func() error {
		r, doErr := c.http.Do(req)
		if doErr != nil {
			return doErr
		}
		resp = r
		if r.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("catalog api server error: %d", r.StatusCode)
		}
		return nil
	})
	if resp == nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error(ctx).Err(err).Str("operation", cl.op).Msg("Catalog API request failed")
		if errors.Is(err, ErrCircuitOpen) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to call catalog api: %w", err)
	}
	defer resp.Body.Close()

	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.status_code", status))

	data, err := decodeBody(resp.Body)
	if status < 200 || status >= 300 {
		gwErr := &GatewayError{Status: status, Message: extractMessage(data, cl.fallback), Data: data}
		span.RecordError(gwErr)
		span.SetStatus(codes.Error, gwErr.Message)
		logger.Warn(ctx).
			Str("operation", cl.op).
			Int("status", status).
			Str("message", gwErr.Message).
			Msg("Catalog API returned an error")
		return nil, gwErr
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to decode catalog api response: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	target := c.endpoints.Next() + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(ctx, req)

	return req, nil
}

// authorize sets or removes the bearer credential from the current token
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		req.Header.Del("Authorization")
		return
	}
	token, ok := c.tokens.Get(ctx)
	if !ok {
		req.Header.Del("Authorization")
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func decodeBody(r io.Reader) (any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return strings.TrimSpace(string(raw)), err
	}
	return data, nil
}
