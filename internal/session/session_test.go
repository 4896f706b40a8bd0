package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/category"
	"github.com/zjrosen/conceptnav/internal/concept"
	"github.com/zjrosen/conceptnav/internal/constraint"
	"github.com/zjrosen/conceptnav/internal/pubsub"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s := New(DefaultConfig())
	t.Cleanup(s.Close)
	return s
}

func nextChange(t *testing.T, ch <-chan pubsub.Event[Change]) pubsub.Event[Change] {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("expected session change")
		return pubsub.Event[Change]{}
	}
}

func TestNew_AssignsID(t *testing.T) {
	a := newSession(t)
	b := newSession(t)

	require.NotEmpty(t, a.ID())
	require.NotEqual(t, a.ID(), b.ID())
	require.False(t, a.CreatedAt().IsZero())
}

func TestSession_EmptyByDefault(t *testing.T) {
	s := newSession(t)
	ctx := t.Context()

	_, ok := s.AllDataflows(ctx)
	require.False(t, ok)
	_, ok = s.Artefacts(ctx)
	require.False(t, ok)
	_, ok = s.UniqueConcepts(ctx)
	require.False(t, ok)
	_, ok = s.Constraints(ctx)
	require.False(t, ok)
}

func TestSession_StoresWholeCollections(t *testing.T) {
	s := newSession(t)
	ctx := t.Context()

	s.SetAllDataflows(ctx, []string{"DF_A", "DF_B"})
	s.SetFilteredDataflows(ctx, []string{"DF_B"})
	s.SetStructureLinks(ctx, category.LinkTable{{DsID: "DSD_A", DfID: "DF_A"}})
	s.SetCategories(ctx, category.Collection{{ID: "LFS", SchemeID: "DOMAINS"}})
	s.SetConstraints(ctx, constraint.NewCollection(&constraint.Set{DfID: "DF_A"}))

	all, ok := s.AllDataflows(ctx)
	require.True(t, ok)
	require.Equal(t, []string{"DF_A", "DF_B"}, all)

	filtered, ok := s.FilteredDataflows(ctx)
	require.True(t, ok)
	require.Equal(t, []string{"DF_B"}, filtered)

	links, ok := s.StructureLinks(ctx)
	require.True(t, ok)
	require.Len(t, links, 1)

	cats, ok := s.Categories(ctx)
	require.True(t, ok)
	require.Equal(t, "LFS", cats[0].ID)

	cons, ok := s.Constraints(ctx)
	require.True(t, ok)
	require.Equal(t, 1, cons.Len())
}

func TestSession_SetArtefactsDropsConcepts(t *testing.T) {
	s := newSession(t)
	ctx := t.Context()

	s.SetArtefacts(ctx, []*artefact.Artefact{{DfID: "DF_A"}})
	s.SetUniqueConcepts(ctx, concept.NewIndex())
	_, ok := s.UniqueConcepts(ctx)
	require.True(t, ok)

	s.SetArtefacts(ctx, []*artefact.Artefact{{DfID: "DF_A"}, {DfID: "DF_B"}})

	_, ok = s.UniqueConcepts(ctx)
	require.False(t, ok)
	arts, ok := s.Artefacts(ctx)
	require.True(t, ok)
	require.Len(t, arts, 2)
}

func TestSession_InvalidateArtefacts(t *testing.T) {
	s := newSession(t)
	ctx := t.Context()

	s.SetArtefacts(ctx, []*artefact.Artefact{{DfID: "DF_A"}})
	s.SetUniqueConcepts(ctx, concept.NewIndex())

	s.InvalidateArtefacts(ctx)

	_, ok := s.Artefacts(ctx)
	require.False(t, ok)
	_, ok = s.UniqueConcepts(ctx)
	require.False(t, ok)
}

func TestSession_PublishesChanges(t *testing.T) {
	s := newSession(t)
	ctx := t.Context()
	ch := s.Subscribe(ctx)

	s.SetAllDataflows(ctx, []string{"DF_A"})
	ev := nextChange(t, ch)
	require.Equal(t, pubsub.StoredEvent, ev.Type)
	require.Equal(t, KeyAllDataflows, ev.Payload.Key)
	require.Equal(t, s.ID(), ev.Payload.SessionID)

	s.SetUniqueConcepts(ctx, concept.NewIndex())
	require.Equal(t, KeyUniqueConcepts, nextChange(t, ch).Payload.Key)

	s.InvalidateArtefacts(ctx)
	ev = nextChange(t, ch)
	require.Equal(t, pubsub.InvalidatedEvent, ev.Type)
	require.Equal(t, KeyArtefacts, ev.Payload.Key)
	ev = nextChange(t, ch)
	require.Equal(t, pubsub.InvalidatedEvent, ev.Type)
	require.Equal(t, KeyUniqueConcepts, ev.Payload.Key)
}

func TestSession_Clear(t *testing.T) {
	s := newSession(t)
	ctx := t.Context()

	s.SetAllDataflows(ctx, []string{"DF_A"})
	s.SetCategories(ctx, category.Collection{{ID: "LFS"}})
	s.Clear(ctx)

	_, ok := s.AllDataflows(ctx)
	require.False(t, ok)
	_, ok = s.Categories(ctx)
	require.False(t, ok)
}

func TestSession_ExpiresWithTTL(t *testing.T) {
	s := New(Config{TTL: 20 * time.Millisecond, CleanupInterval: time.Minute})
	t.Cleanup(s.Close)
	ctx := t.Context()

	s.SetAllDataflows(ctx, []string{"DF_A"})
	require.Eventually(t, func() bool {
		_, ok := s.AllDataflows(ctx)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestSession_ConceptCachePublishes(t *testing.T) {
	s := newSession(t)
	ctx := t.Context()
	ch := s.Subscribe(ctx)

	store := s.ConceptCache()
	store.Set(ctx, KeyUniqueConcepts, concept.NewIndex(), s.TTL())

	require.Equal(t, KeyUniqueConcepts, nextChange(t, ch).Payload.Key)
	_, ok := s.UniqueConcepts(ctx)
	require.True(t, ok)
}

func TestSession_ConceptCacheRefreshExtendsLifetime(t *testing.T) {
	s := New(Config{TTL: time.Second, CleanupInterval: time.Minute})
	t.Cleanup(s.Close)
	ctx := t.Context()

	idx := concept.NewIndex()
	store := s.ConceptCache()
	store.Set(ctx, KeyUniqueConcepts, idx, s.TTL())

	time.Sleep(600 * time.Millisecond)
	got, ok := store.GetWithRefresh(ctx, KeyUniqueConcepts, s.TTL())
	require.True(t, ok)
	require.Same(t, idx, got)

	time.Sleep(600 * time.Millisecond)
	got, ok = s.UniqueConcepts(ctx)
	require.True(t, ok, "a refreshed read starts the lifetime over")
	require.Same(t, idx, got)
}
