package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/sdmx"
	"github.com/zjrosen/conceptnav/internal/tracing"
)

// DefaultTimeout bounds a single registry round trip.
const DefaultTimeout = 60 * time.Second

// Fetcher is the read side used by the navigator.
type Fetcher interface {
	Fetch(ctx context.Context, req Request, opts ...FetchOption) (*sdmx.Message, error)
}

// Client resolves structure requests through the response cache and the
// registry.
type Client struct {
	baseURL string
	http    *http.Client
	cache   ResponseCache
	tracer  trace.Tracer
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCache sets the response cache. Without one every fetch goes to the
// network.
func WithCache(cache ResponseCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithTracer records a span per fetch.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// NewClient creates a registry client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		tracer:  tracing.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the registry endpoint requests are rendered against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cache returns the configured response cache, which may be nil.
func (c *Client) Cache() ResponseCache {
	return c.cache
}

type fetchOptions struct {
	purge bool
}

// FetchOption tunes a single Fetch call.
type FetchOption func(*fetchOptions)

// WithPurge bypasses the cache for the lookup and refreshes it with the
// fresh response.
func WithPurge() FetchOption {
	return func(o *fetchOptions) { o.purge = true }
}

// WithPurgeIf applies WithPurge when purge is true.
func WithPurgeIf(purge bool) FetchOption {
	return func(o *fetchOptions) { o.purge = o.purge || purge }
}

// Fetch resolves req, consulting the cache unless purged. A body without a
// top-level "data" member fails with ErrMalformedResponse and is not cached.
func (c *Client) Fetch(ctx context.Context, req Request, opts ...FetchOption) (*sdmx.Message, error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	u := req.URL(c.baseURL)
	ctx, span := c.tracer.Start(ctx, tracing.SpanRegistryFetch, trace.WithAttributes(
		attribute.String(tracing.AttrURL, u),
		attribute.String(tracing.AttrResourceType, req.ResourceType),
		attribute.Bool(tracing.AttrPurge, o.purge),
	))
	defer span.End()

	body, hit := c.lookup(ctx, u, o.purge)
	span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, hit))

	if !hit {
		var err error
		body, err = c.get(ctx, u)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.ErrorErr(log.CatRegistry, "fetch failed", err, "url", u)
			return nil, err
		}
	}

	msg, err := decode(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatRegistry, "decode failed", err, "url", u, "cached", hit)
		return nil, fmt.Errorf("%s: %w", u, err)
	}

	if !hit && c.cache != nil {
		if err := c.cache.Put(ctx, u, body); err != nil {
			log.Warn(log.CatCache, "failed to store response", "url", u, "error", err)
		}
	}

	log.Debug(log.CatRegistry, "fetched", "url", u, "cached", hit, "bytes", len(body))
	return msg, nil
}

func (c *Client) lookup(ctx context.Context, u string, purge bool) ([]byte, bool) {
	if c.cache == nil || purge {
		return nil, false
	}
	body, ok, err := c.cache.Match(ctx, u)
	if err != nil {
		log.Warn(log.CatCache, "cache lookup failed", "url", u, "error", err)
		return nil, false
	}
	return body, ok
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", u, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, u, resp.StatusCode)
	}
	return body, nil
}

func decode(body []byte) (*sdmx.Message, error) {
	var msg sdmx.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decode structure message: %w", err)
	}
	if msg.Data == nil {
		return nil, ErrMalformedResponse
	}
	return &msg, nil
}
