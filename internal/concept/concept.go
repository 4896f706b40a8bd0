// Package concept merges the concepts of many artefacts into one index keyed
// by concept ID.
package concept

import (
	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/log"
)

// Representation values beyond the text types reported by the registry.
const (
	RepresentationCodes = "codes"
	RepresentationMixed = "mixed"
)

// Appearance stamps.
const (
	AppearanceCoded = "c"
	AppearanceText  = "t"
)

// NoDescription is used when no artefact describes a concept.
const NoDescription = "no description"

// DefaultRoleAllowList is the closed set of concept roles kept on entries.
var DefaultRoleAllowList = []string{"SEX", "AGE"}

// DSDRef records one dataflow a concept appears in.
type DSDRef struct {
	DfID string `json:"dfId"`
	DsID string `json:"dsId"`
	// ClID is the code list ID, "" for free text.
	ClID string `json:"clId"`
}

// Entry is one concept merged across artefacts.
type Entry struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Representation string            `json:"representation"`
	ConceptRoles   []string          `json:"conceptRoles"`
	DSD            []DSDRef          `json:"dsd"`
	Appearance     map[string]string `json:"appearance"`
}

// Mixed reports whether the concept is coded in some dataflows and free text
// in others.
func (e *Entry) Mixed() bool { return e.Representation == RepresentationMixed }

// Coded reports whether the concept has a code list in at least one dataflow.
func (e *Entry) Coded() bool {
	return e.Representation == RepresentationCodes || e.Mixed()
}

// Index is the unique concept index. Entries keep first-sighting order.
type Index struct {
	order   []string
	entries map[string]*Entry
	roles   map[string]bool
}

// Option configures an Index.
type Option func(*Index)

// WithRoleAllowList replaces DefaultRoleAllowList.
func WithRoleAllowList(roles []string) Option {
	return func(idx *Index) {
		if len(roles) == 0 {
			return
		}
		idx.roles = make(map[string]bool, len(roles))
		for _, r := range roles {
			idx.roles[r] = true
		}
	}
}

// NewIndex creates an empty index.
func NewIndex(opts ...Option) *Index {
	idx := &Index{entries: make(map[string]*Entry)}
	WithRoleAllowList(DefaultRoleAllowList)(idx)
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Build folds artefacts into a fresh index.
func Build(artefacts []*artefact.Artefact, opts ...Option) *Index {
	idx := NewIndex(opts...)
	for _, a := range artefacts {
		Fold(idx, a)
	}
	log.Debug(log.CatConcept, "built concept index", "artefacts", len(artefacts), "concepts", idx.Len())
	return idx
}

// Fold merges the concepts of a into idx and returns idx.
//
// Representation flips to "mixed" as soon as a sighting's coded-ness differs
// from the accumulated one and never flips back. Two free-text sightings
// with different text types keep the lexically smaller type so the result
// does not depend on fold order.
func Fold(idx *Index, a *artefact.Artefact) *Index {
	for _, id := range a.OrderedConceptIDs() {
		c := a.Concepts[id]
		rep := c.Representation()
		ref := DSDRef{DfID: a.DfID, DsID: a.DsID, ClID: c.CodeList.ID()}

		e, ok := idx.entries[id]
		if !ok {
			e = &Entry{
				ID:             id,
				Name:           a.ConceptName(id),
				Description:    description(a, id),
				Representation: rep,
				ConceptRoles:   idx.filterRoles(c.Roles),
				Appearance:     make(map[string]string),
			}
			idx.entries[id] = e
			idx.order = append(idx.order, id)
		} else {
			idx.merge(e, a, id, c)
		}

		e.DSD = append(e.DSD, ref)
		if c.Coded() {
			e.Appearance[a.DfID] = AppearanceCoded
		} else {
			e.Appearance[a.DfID] = AppearanceText
		}
	}
	return idx
}

func (idx *Index) merge(e *Entry, a *artefact.Artefact, id string, c artefact.Concept) {
	rep := c.Representation()
	switch {
	case e.Mixed():
	case (rep == RepresentationCodes) != (e.Representation == RepresentationCodes):
		log.Debug(log.CatConcept, "representation became mixed", "concept", id, "dfId", a.DfID)
		e.Representation = RepresentationMixed
	case rep != RepresentationCodes && rep < e.Representation:
		e.Representation = rep
	}

	if e.Name == artefact.Unknown {
		e.Name = a.ConceptName(id)
	}
	if e.Description == NoDescription {
		e.Description = description(a, id)
	}
	if len(e.ConceptRoles) == 0 {
		e.ConceptRoles = idx.filterRoles(c.Roles)
	}
}

func (idx *Index) filterRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if idx.roles[r] {
			out = append(out, r)
		}
	}
	return out
}

func description(a *artefact.Artefact, id string) string {
	if d, ok := a.Description[id]; ok && d != "" {
		return d
	}
	return NoDescription
}

// Get returns the entry for conceptID.
func (idx *Index) Get(conceptID string) (*Entry, bool) {
	if idx == nil {
		return nil, false
	}
	e, ok := idx.entries[conceptID]
	return e, ok
}

// Len returns the number of concepts.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.order)
}

// IDs returns concept IDs in first-sighting order.
func (idx *Index) IDs() []string {
	return append([]string(nil), idx.order...)
}

// Entries returns entries in first-sighting order.
func (idx *Index) Entries() []*Entry {
	out := make([]*Entry, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.entries[id])
	}
	return out
}

// DataflowIDs returns the dataflows in which conceptID is coded, in DSD
// order.
func (idx *Index) DataflowIDs(conceptID string) []string {
	e, ok := idx.entries[conceptID]
	if !ok {
		return nil
	}
	var out []string
	for _, ref := range e.DSD {
		if ref.ClID != "" {
			out = append(out, ref.DfID)
		}
	}
	return out
}
