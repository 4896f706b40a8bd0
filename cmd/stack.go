package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zjrosen/conceptnav/internal/config"
	"github.com/zjrosen/conceptnav/internal/flags"
	"github.com/zjrosen/conceptnav/internal/infrastructure/sqlite"
	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/navigator"
	"github.com/zjrosen/conceptnav/internal/registry"
	"github.com/zjrosen/conceptnav/internal/session"
	"github.com/zjrosen/conceptnav/internal/tracing"
)

// stack is the registry pipeline every command runs on: response caches,
// client, session and navigator.
type stack struct {
	nav    *navigator.Navigator
	sess   *session.Session
	db     *sqlite.DB
	tracer *tracing.Provider
}

func newStack(c config.Config, purge bool) (*stack, error) {
	provider, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("%w: tracing: %w", ErrInvalidConfig, err)
	}
	s := &stack{tracer: provider}

	opts := []registry.Option{
		registry.WithBaseURL(c.Registry.BaseURL),
		registry.WithHTTPClient(&http.Client{Timeout: c.Registry.Timeout}),
		registry.WithTracer(provider.Tracer()),
	}
	ff := flags.New(c.Flags)
	cache, err := s.openCache(c, ff)
	if err != nil {
		s.Close(context.Background())
		return nil, err
	}
	if cache != nil {
		opts = append(opts, registry.WithCache(cache))
	}
	client := registry.NewClient(opts...)

	s.sess = session.New(c.SessionStore())
	s.nav = navigator.New(client, s.sess,
		c.Navigator(purge, ff.Enabled(flags.FlagPrefetchConstraints)),
		navigator.WithTracer(provider.Tracer()),
	)

	log.Debug(log.CatConfig, "pipeline ready",
		"registry", client.BaseURL(),
		"session", s.sess.ID(),
		"durable", s.db != nil,
		"tracing", provider.Enabled())
	return s, nil
}

// openCache returns the LRU front tier, backed by the sqlite file when the
// durable-cache flag is on. A sqlite file that cannot be opened degrades to
// memory only.
func (s *stack) openCache(c config.Config, ff *flags.Registry) (registry.ResponseCache, error) {
	if c.Cache.Disabled {
		log.Info(log.CatCache, "response cache disabled")
		return nil, nil
	}

	mem, err := registry.NewMemoryCache(c.Cache.MemoryEntries)
	if err != nil {
		return nil, err
	}
	if !ff.Enabled(flags.FlagDurableCache) {
		return mem, nil
	}

	db, err := sqlite.NewDB(c.Cache.Path)
	if err != nil {
		log.Warn(log.CatDB, "durable cache unavailable, using memory only", "path", c.Cache.Path, "error", err)
		return mem, nil
	}
	s.db = db
	return registry.TieredCache{Front: mem, Back: db.ResponseCache(0)}, nil
}

// Close releases the session, database and tracer.
func (s *stack) Close(ctx context.Context) {
	if s.sess != nil {
		s.sess.Close()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.ErrorErr(log.CatDB, "closing response cache", err)
		}
	}
	if s.tracer != nil {
		if err := s.tracer.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatConfig, "flushing traces", err)
		}
	}
}
