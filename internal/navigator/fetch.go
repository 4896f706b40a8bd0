package navigator

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/constraint"
	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/registry"
	"github.com/zjrosen/conceptnav/internal/sdmx"
	"github.com/zjrosen/conceptnav/internal/tracing"
)

// Artefacts returns the artefacts of dfIDs in dfIDs order, fetching the ones
// the session does not hold yet.
func (n *Navigator) Artefacts(ctx context.Context, dfIDs []string) ([]*artefact.Artefact, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.artefacts(ctx, dfIDs)
}

func (n *Navigator) artefacts(ctx context.Context, dfIDs []string) ([]*artefact.Artefact, error) {
	ctx, span := n.tracer.Start(ctx, tracing.SpanNavigatorArtefacts,
		trace.WithAttributes(attribute.Int(tracing.AttrDataflowCount, len(dfIDs))))
	defer span.End()

	have, _ := n.session.Artefacts(ctx)
	byID := make(map[string]*artefact.Artefact, len(have))
	for _, a := range have {
		byID[a.DfID] = a
	}

	var missing []string
	for _, id := range dfIDs {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		categories, _ := n.session.Categories(ctx)
		lookup := categories.Lookup()

		fetched := make([]*artefact.Artefact, len(missing))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(n.cfg.Concurrency)
		for i, id := range missing {
			g.Go(func() error {
				msg, err := n.fetch(gctx, registry.DataflowRequest(id, registry.ReferencesAll), false)
				if err != nil {
					return fmt.Errorf("fetch artefact %s: %w", id, err)
				}
				a, err := artefact.Normalize(sdmx.NewBundle(id, msg), lookup,
					artefact.WithGeneralConceptsScheme(n.cfg.GeneralConceptsScheme))
				if err != nil {
					return err
				}
				fetched[i] = a
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		n.session.SetArtefacts(ctx, append(slices.Clone(have), fetched...))
		for _, a := range fetched {
			byID[a.DfID] = a
		}
		log.Debug(log.CatNav, "fetched artefacts", "count", len(fetched), "cached", len(have))
	}

	out := make([]*artefact.Artefact, 0, len(dfIDs))
	for _, id := range dfIDs {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// Constraints returns the constraint sets of dfIDs. Sets already in the
// session are reused unless purge is true, in which case every set is
// fetched again bypassing the response cache.
func (n *Navigator) Constraints(ctx context.Context, dfIDs []string, purge bool) (*constraint.Collection, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.constraints(ctx, dfIDs, purge)
}

func (n *Navigator) constraints(ctx context.Context, dfIDs []string, purge bool) (*constraint.Collection, error) {
	ctx, span := n.tracer.Start(ctx, tracing.SpanNavigatorConstraints, trace.WithAttributes(
		attribute.Int(tracing.AttrDataflowCount, len(dfIDs)),
		attribute.Bool(tracing.AttrPurge, purge),
	))
	defer span.End()

	have, _ := n.session.Constraints(ctx)
	toFetch := dfIDs
	if !purge {
		toFetch = have.Missing(dfIDs)
	}
	if len(toFetch) == 0 {
		return have.Filter(dfIDs), nil
	}

	sets := make([]*constraint.Set, len(toFetch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.cfg.Concurrency)
	for i, id := range toFetch {
		g.Go(func() error {
			msg, err := n.fetch(gctx, registry.DataflowRequest(id, registry.ReferencesAncestors), purge)
			if err != nil {
				return fmt.Errorf("fetch constraints %s: %w", id, err)
			}
			sets[i] = constraint.Parse(id, msg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	merged := have.Merge(constraint.NewCollection(sets...))
	n.session.SetConstraints(ctx, merged)
	log.Debug(log.CatNav, "fetched constraints", "count", len(sets), "purge", purge, "total", merged.Len())
	return merged.Filter(dfIDs), nil
}
