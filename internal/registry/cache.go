package registry

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zjrosen/conceptnav/internal/log"
)

// ResponseCache stores raw response bodies keyed by request URL.
type ResponseCache interface {
	Match(ctx context.Context, url string) ([]byte, bool, error)
	Put(ctx context.Context, url string, body []byte) error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// DefaultMemoryEntries bounds the in-memory response tier.
const DefaultMemoryEntries = 256

// MemoryCache is a bounded LRU of response bodies.
type MemoryCache struct {
	entries *lru.Cache[string, []byte]
}

// NewMemoryCache creates an LRU holding at most size bodies.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryCache{entries: c}, nil
}

func (m *MemoryCache) Match(_ context.Context, url string) ([]byte, bool, error) {
	body, ok := m.entries.Get(url)
	return body, ok, nil
}

func (m *MemoryCache) Put(_ context.Context, url string, body []byte) error {
	m.entries.Add(url, body)
	return nil
}

func (m *MemoryCache) Clear(context.Context) error {
	m.entries.Purge()
	return nil
}

// Len returns the number of cached bodies.
func (m *MemoryCache) Len() int {
	return m.entries.Len()
}

// TieredCache answers from Front first and falls back to Back, promoting
// back-tier hits into the front. Writes go to both tiers.
type TieredCache struct {
	Front ResponseCache
	Back  ResponseCache
}

func (t TieredCache) Match(ctx context.Context, url string) ([]byte, bool, error) {
	if body, ok, err := t.Front.Match(ctx, url); err == nil && ok {
		return body, true, nil
	}

	body, ok, err := t.Back.Match(ctx, url)
	if err != nil || !ok {
		return nil, false, err
	}
	if err := t.Front.Put(ctx, url, body); err != nil {
		log.Warn(log.CatCache, "failed to promote response", "url", url, "error", err)
	}
	return body, true, nil
}

func (t TieredCache) Put(ctx context.Context, url string, body []byte) error {
	if err := t.Front.Put(ctx, url, body); err != nil {
		return err
	}
	return t.Back.Put(ctx, url, body)
}

func (t TieredCache) Clear(ctx context.Context) error {
	for _, c := range []ResponseCache{t.Front, t.Back} {
		if cl, ok := c.(Clearer); ok {
			if err := cl.Clear(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
