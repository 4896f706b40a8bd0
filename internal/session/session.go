// Package session holds the derived collections of one browsing session.
//
// Every collection lives under its own key. Writers always store a whole
// collection; replacing or invalidating the artefacts also drops the unique
// concept index derived from them.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/cachemanager"
	"github.com/zjrosen/conceptnav/internal/category"
	"github.com/zjrosen/conceptnav/internal/concept"
	"github.com/zjrosen/conceptnav/internal/constraint"
	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/pubsub"
)

// Key names a session collection.
type Key string

const (
	KeyFilteredDataflows Key = "filteredDataFlowIds"
	KeyAllDataflows      Key = "allDataFlowIds"
	KeyArtefacts         Key = "dataFlowCollection"
	KeyUniqueConcepts    Key = "derivedUniqueConcepts"
	KeyStructureLinks    Key = "dataStructureLinkingDataFlow"
	KeyConstraints       Key = "constraintCollection"
	KeyCategories        Key = "dataCategory"
)

// Keys lists every session key.
var Keys = []Key{
	KeyFilteredDataflows, KeyAllDataflows, KeyArtefacts, KeyUniqueConcepts,
	KeyStructureLinks, KeyConstraints, KeyCategories,
}

// Change is published whenever a key is stored or invalidated.
type Change struct {
	SessionID string
	Key       Key
}

// Config sets entry lifetimes.
type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig keeps entries for the whole session.
func DefaultConfig() Config {
	return Config{TTL: cachemanager.NoExpiration, CleanupInterval: cachemanager.DefaultCleanupInterval}
}

// Session is one browsing session's store.
type Session struct {
	id        string
	createdAt time.Time
	ttl       time.Duration

	dataflows   *cachemanager.InMemoryCacheManager[Key, []string]
	artefacts   *cachemanager.InMemoryCacheManager[Key, []*artefact.Artefact]
	concepts    *cachemanager.InMemoryCacheManager[Key, *concept.Index]
	links       *cachemanager.InMemoryCacheManager[Key, category.LinkTable]
	constraints *cachemanager.InMemoryCacheManager[Key, *constraint.Collection]
	categories  *cachemanager.InMemoryCacheManager[Key, category.Collection]

	broker *pubsub.Broker[Change]
}

// New creates an empty session with a fresh ID.
func New(cfg Config) *Session {
	if cfg.TTL == 0 {
		cfg.TTL = cachemanager.NoExpiration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = cachemanager.DefaultCleanupInterval
	}

	s := &Session{
		id:          uuid.NewString(),
		createdAt:   time.Now(),
		ttl:         cfg.TTL,
		dataflows:   cachemanager.NewInMemoryCacheManager[Key, []string]("dataflows", cfg.TTL, cfg.CleanupInterval),
		artefacts:   cachemanager.NewInMemoryCacheManager[Key, []*artefact.Artefact]("artefacts", cfg.TTL, cfg.CleanupInterval),
		concepts:    cachemanager.NewInMemoryCacheManager[Key, *concept.Index]("concepts", cfg.TTL, cfg.CleanupInterval),
		links:       cachemanager.NewInMemoryCacheManager[Key, category.LinkTable]("structure-links", cfg.TTL, cfg.CleanupInterval),
		constraints: cachemanager.NewInMemoryCacheManager[Key, *constraint.Collection]("constraints", cfg.TTL, cfg.CleanupInterval),
		categories:  cachemanager.NewInMemoryCacheManager[Key, category.Collection]("categories", cfg.TTL, cfg.CleanupInterval),
		broker:      pubsub.NewBroker[Change](),
	}
	log.Info(log.CatSession, "session started", "id", s.id)
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// TTL returns the lifetime applied to stored collections.
func (s *Session) TTL() time.Duration { return s.ttl }

// Subscribe returns a channel of store and invalidate notifications.
func (s *Session) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return s.broker.Subscribe(ctx)
}

func (s *Session) stored(key Key) {
	log.Debug(log.CatSession, "stored", "session", s.id, "key", key)
	s.broker.Publish(pubsub.StoredEvent, Change{SessionID: s.id, Key: key})
}

func (s *Session) invalidated(key Key) {
	log.Debug(log.CatSession, "invalidated", "session", s.id, "key", key)
	s.broker.Publish(pubsub.InvalidatedEvent, Change{SessionID: s.id, Key: key})
}

// FilteredDataflows returns the dataflows of the last category selection.
func (s *Session) FilteredDataflows(ctx context.Context) ([]string, bool) {
	return s.dataflows.Get(ctx, KeyFilteredDataflows)
}

func (s *Session) SetFilteredDataflows(ctx context.Context, ids []string) {
	s.dataflows.Set(ctx, KeyFilteredDataflows, ids, s.ttl)
	s.stored(KeyFilteredDataflows)
}

// AllDataflows returns every dataflow of the catalogue.
func (s *Session) AllDataflows(ctx context.Context) ([]string, bool) {
	return s.dataflows.Get(ctx, KeyAllDataflows)
}

func (s *Session) SetAllDataflows(ctx context.Context, ids []string) {
	s.dataflows.Set(ctx, KeyAllDataflows, ids, s.ttl)
	s.stored(KeyAllDataflows)
}

// Artefacts returns the artefact collection.
func (s *Session) Artefacts(ctx context.Context) ([]*artefact.Artefact, bool) {
	return s.artefacts.Get(ctx, KeyArtefacts)
}

// SetArtefacts replaces the artefact collection and drops the unique concept
// index built from the previous one.
func (s *Session) SetArtefacts(ctx context.Context, artefacts []*artefact.Artefact) {
	s.dropConcepts(ctx)
	s.artefacts.Set(ctx, KeyArtefacts, artefacts, s.ttl)
	s.stored(KeyArtefacts)
}

// InvalidateArtefacts removes the artefact collection and the unique concept
// index.
func (s *Session) InvalidateArtefacts(ctx context.Context) {
	_ = s.artefacts.Delete(ctx, KeyArtefacts)
	s.invalidated(KeyArtefacts)
	s.dropConcepts(ctx)
}

func (s *Session) dropConcepts(ctx context.Context) {
	if _, ok := s.concepts.Get(ctx, KeyUniqueConcepts); !ok {
		return
	}
	_ = s.concepts.Delete(ctx, KeyUniqueConcepts)
	s.invalidated(KeyUniqueConcepts)
}

// UniqueConcepts returns the derived concept index.
func (s *Session) UniqueConcepts(ctx context.Context) (*concept.Index, bool) {
	return s.concepts.Get(ctx, KeyUniqueConcepts)
}

func (s *Session) SetUniqueConcepts(ctx context.Context, idx *concept.Index) {
	s.concepts.Set(ctx, KeyUniqueConcepts, idx, s.ttl)
	s.stored(KeyUniqueConcepts)
}

// StructureLinks returns the structure to dataflow table.
func (s *Session) StructureLinks(ctx context.Context) (category.LinkTable, bool) {
	return s.links.Get(ctx, KeyStructureLinks)
}

func (s *Session) SetStructureLinks(ctx context.Context, table category.LinkTable) {
	s.links.Set(ctx, KeyStructureLinks, table, s.ttl)
	s.stored(KeyStructureLinks)
}

// Constraints returns the constraint collection.
func (s *Session) Constraints(ctx context.Context) (*constraint.Collection, bool) {
	return s.constraints.Get(ctx, KeyConstraints)
}

func (s *Session) SetConstraints(ctx context.Context, c *constraint.Collection) {
	s.constraints.Set(ctx, KeyConstraints, c, s.ttl)
	s.stored(KeyConstraints)
}

// Categories returns the flattened category collection.
func (s *Session) Categories(ctx context.Context) (category.Collection, bool) {
	return s.categories.Get(ctx, KeyCategories)
}

func (s *Session) SetCategories(ctx context.Context, c category.Collection) {
	s.categories.Set(ctx, KeyCategories, c, s.ttl)
	s.stored(KeyCategories)
}

// ConceptCache exposes the concept index store for read-through loading.
// Writes through it are published like SetUniqueConcepts.
func (s *Session) ConceptCache() cachemanager.CacheManager[Key, *concept.Index] {
	return conceptStore{InMemoryCacheManager: s.concepts, s: s}
}

type conceptStore struct {
	*cachemanager.InMemoryCacheManager[Key, *concept.Index]
	s *Session
}

func (c conceptStore) Set(ctx context.Context, key Key, idx *concept.Index, ttl time.Duration) {
	c.InMemoryCacheManager.Set(ctx, key, idx, ttl)
	c.s.stored(key)
}

// Clear drops every collection.
func (s *Session) Clear(ctx context.Context) {
	_ = s.dataflows.Flush(ctx)
	_ = s.artefacts.Flush(ctx)
	_ = s.concepts.Flush(ctx)
	_ = s.links.Flush(ctx)
	_ = s.constraints.Flush(ctx)
	_ = s.categories.Flush(ctx)
	for _, k := range Keys {
		s.invalidated(k)
	}
}

// Close releases subscribers.
func (s *Session) Close() {
	s.broker.Close()
	log.Info(log.CatSession, "session closed", "id", s.id)
}
