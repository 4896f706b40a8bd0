// Package navigator runs the browsing pipeline: it loads the catalogue,
// matches category selections, fetches and normalizes artefacts, loads
// constraints and derives the rows shown to the user. All derived state is
// kept in the session.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/cachemanager"
	"github.com/zjrosen/conceptnav/internal/category"
	"github.com/zjrosen/conceptnav/internal/concept"
	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/registry"
	"github.com/zjrosen/conceptnav/internal/sdmx"
	"github.com/zjrosen/conceptnav/internal/session"
	"github.com/zjrosen/conceptnav/internal/tracing"
)

var (
	// ErrNotLoaded is returned when the catalogue has not been loaded yet.
	ErrNotLoaded = errors.New("catalogue not loaded")

	// ErrUnknownConcept is returned for a concept missing from the current view.
	ErrUnknownConcept = errors.New("unknown concept")
)

// Config tunes the pipeline.
type Config struct {
	CategorySchemeAgency  string
	CategorySchemeID      string
	GeneralConceptsScheme string
	ExcludedCategories    []string
	RoleAllowList         []string
	// Concurrency bounds per-dataflow fetches.
	Concurrency int
	// Purge bypasses the response cache once per request during this run.
	Purge bool
	// PrefetchConstraints loads, purging, the constraints of every dataflow
	// during Load.
	PrefetchConstraints bool
}

// DefaultConfig returns the Eurostat microdata catalogue settings.
func DefaultConfig() Config {
	return Config{
		CategorySchemeAgency:  "ESTAT",
		CategorySchemeID:      "MICRODATA_DOMAINS",
		GeneralConceptsScheme: artefact.DefaultGeneralConceptsScheme,
		ExcludedCategories:    category.DefaultExcluded,
		RoleAllowList:         concept.DefaultRoleAllowList,
		Concurrency:           8,
	}
}

// View is the result of the last successful refresh.
type View struct {
	Selection category.Selection
	// Dataflows are the matched dataflow IDs in match order.
	Dataflows []string
	Artefacts []*artefact.Artefact
	Concepts  *concept.Index
}

// Navigator orchestrates the pipeline for one session.
type Navigator struct {
	fetcher registry.Fetcher
	session *session.Session
	cfg     Config
	tracer  trace.Tracer

	concepts *cachemanager.ReadThroughCache[session.Key, *concept.Index, []*artefact.Artefact]

	mu      sync.Mutex
	linker  *category.Linker
	indexed []string
	last    View

	purgeMu sync.Mutex
	purged  map[registry.Request]bool
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithTracer records pipeline spans.
func WithTracer(t trace.Tracer) Option {
	return func(n *Navigator) { n.tracer = t }
}

// New creates a navigator over fetcher storing its state in sess.
func New(fetcher registry.Fetcher, sess *session.Session, cfg Config, opts ...Option) *Navigator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	n := &Navigator{
		fetcher: fetcher,
		session: sess,
		cfg:     cfg,
		tracer:  tracing.Noop(),
		purged:  make(map[registry.Request]bool),
	}
	for _, opt := range opts {
		opt(n)
	}

	roles := concept.WithRoleAllowList(cfg.RoleAllowList)
	n.concepts = cachemanager.NewReadThroughCache(
		sess.ConceptCache(),
		func(_ context.Context, arts []*artefact.Artefact) (*concept.Index, error) {
			return concept.Build(arts, roles), nil
		},
		false,
	)
	return n
}

// Session returns the session the navigator writes to.
func (n *Navigator) Session() *session.Session {
	return n.session
}

// fetch resolves req, purging it the first time it is seen when Purge is
// set or force is true.
func (n *Navigator) fetch(ctx context.Context, req registry.Request, force bool) (*sdmx.Message, error) {
	n.purgeMu.Lock()
	purge := force || (n.cfg.Purge && !n.purged[req])
	if purge {
		n.purged[req] = true
	}
	n.purgeMu.Unlock()

	return n.fetcher.Fetch(ctx, req, registry.WithPurgeIf(purge))
}

// Load fetches the category schemes, the structure link table and the
// categorisations, and resets the dataflow lists to the whole catalogue.
func (n *Navigator) Load(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var schemes, catalogue, edges *sdmx.Message
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		schemes, err = n.fetch(gctx, registry.Request{
			ResourceType: registry.ResourceCategoryScheme,
			ResourceID:   "all",
			References:   registry.ReferencesParents,
		}, false)
		return err
	})
	g.Go(func() (err error) {
		catalogue, err = n.fetch(gctx, registry.Request{
			ResourceType: registry.ResourceCategoryScheme,
			Agency:       n.cfg.CategorySchemeAgency,
			ResourceID:   n.cfg.CategorySchemeID,
			References:   registry.ReferencesAll,
		}, false)
		return err
	})
	g.Go(func() (err error) {
		edges, err = n.fetch(gctx, registry.Request{
			ResourceType: registry.ResourceCategorisation,
			ResourceID:   "all",
			References:   registry.ReferencesAncestors,
		}, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}

	categories := category.Flatten(schemes)
	links := category.BuildLinkTable(catalogue)
	all := links.DataflowIDs()

	n.session.SetCategories(ctx, categories)
	n.session.SetStructureLinks(ctx, links)
	n.session.SetAllDataflows(ctx, all)
	n.session.SetFilteredDataflows(ctx, all)
	var categorisations []sdmx.Categorisation
	if edges != nil && edges.Data != nil {
		categorisations = edges.Data.Categorisations
	}
	n.linker = category.NewLinker(categories, links, categorisations)

	log.Info(log.CatNav, "catalogue loaded",
		"categories", len(categories), "structures", len(links), "dataflows", len(all))

	if n.cfg.PrefetchConstraints {
		if _, err := n.constraints(ctx, all, true); err != nil {
			log.ErrorErr(log.CatNav, "constraint prefetch failed", err)
		}
	}
	return nil
}

// Forms returns the category selectors offered to the user.
func (n *Navigator) Forms(ctx context.Context) ([]category.Form, error) {
	categories, ok := n.session.Categories(ctx)
	if !ok {
		return nil, ErrNotLoaded
	}
	return category.FormOptions(categories, n.cfg.ExcludedCategories), nil
}

// Match resolves sel to dataflow IDs and stores them as the filtered list.
// An empty selection matches every dataflow.
func (n *Navigator) Match(ctx context.Context, sel category.Selection) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ids, err := n.match(ctx, sel)
	if err != nil {
		return nil, err
	}
	n.session.SetFilteredDataflows(ctx, ids)
	return ids, nil
}

func (n *Navigator) match(ctx context.Context, sel category.Selection) ([]string, error) {
	if n.linker == nil {
		return nil, ErrNotLoaded
	}

	_, span := n.tracer.Start(ctx, tracing.SpanNavigatorMatch,
		trace.WithAttributes(attribute.String(tracing.AttrSelection, fmt.Sprint(sel))))
	defer span.End()

	ids := n.linker.MatchDataflows(sel)
	span.SetAttributes(attribute.Int(tracing.AttrDataflowCount, len(ids)))
	return ids, nil
}

// Refresh matches sel, loads the artefacts of the matched dataflows and
// rebuilds the concept index. On failure the previous view is returned with
// the error and stays current.
func (n *Navigator) Refresh(ctx context.Context, sel category.Selection) (View, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ctx, span := n.tracer.Start(ctx, tracing.SpanNavigatorRefresh, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, n.session.ID()),
		attribute.String(tracing.AttrSelection, fmt.Sprint(sel)),
	))
	defer span.End()

	view, err := n.refresh(ctx, sel)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatNav, "refresh failed, keeping previous view", err, "selection", sel)
		return n.last, err
	}

	n.last = view
	log.Info(log.CatNav, "refreshed",
		"dataflows", len(view.Dataflows), "artefacts", len(view.Artefacts), "concepts", view.Concepts.Len())
	return view, nil
}

func (n *Navigator) refresh(ctx context.Context, sel category.Selection) (View, error) {
	ids, err := n.match(ctx, sel)
	if err != nil {
		return View{}, err
	}

	arts, err := n.artefacts(ctx, ids)
	if err != nil {
		return View{}, err
	}

	var idx *concept.Index
	if slices.Equal(n.indexed, ids) {
		idx, err = n.concepts.GetWithRefresh(ctx, session.KeyUniqueConcepts, arts, n.session.TTL())
	} else {
		idx, err = n.concepts.Reload(ctx, session.KeyUniqueConcepts, arts, n.session.TTL())
	}
	if err != nil {
		return View{}, fmt.Errorf("build concept index: %w", err)
	}
	n.indexed = ids
	n.session.SetFilteredDataflows(ctx, ids)

	return View{Selection: sel, Dataflows: ids, Artefacts: arts, Concepts: idx}, nil
}

// Current returns the last successful view.
func (n *Navigator) Current() View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}
