package constraint

import (
	"fmt"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/log"
)

// Collection is the set of loaded constraint sets, one per dataflow.
type Collection struct {
	order []string
	sets  map[string]*Set
}

// NewCollection keeps sets in the given order. A later set for the same
// dataflow replaces the earlier one.
func NewCollection(sets ...*Set) *Collection {
	c := &Collection{sets: make(map[string]*Set, len(sets))}
	for _, s := range sets {
		c.put(s)
	}
	return c
}

func (c *Collection) put(s *Set) {
	if _, ok := c.sets[s.DfID]; !ok {
		c.order = append(c.order, s.DfID)
	}
	c.sets[s.DfID] = s
}

// Len returns the number of dataflows with a constraint set.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Get returns the set loaded for dfID.
func (c *Collection) Get(dfID string) (*Set, bool) {
	if c == nil {
		return nil, false
	}
	s, ok := c.sets[dfID]
	return s, ok
}

// Sets returns every set in load order.
func (c *Collection) Sets() []*Set {
	if c == nil {
		return nil
	}
	out := make([]*Set, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.sets[id])
	}
	return out
}

// Missing returns the dataflows of dfIDs without a loaded set.
func (c *Collection) Missing(dfIDs []string) []string {
	var missing []string
	for _, id := range dfIDs {
		if _, ok := c.Get(id); !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Filter returns a collection restricted to dfIDs, in dfIDs order.
func (c *Collection) Filter(dfIDs []string) *Collection {
	out := NewCollection()
	for _, id := range dfIDs {
		if s, ok := c.Get(id); ok {
			out.put(s)
		}
	}
	return out
}

// Merge returns a collection holding c's sets replaced or extended by
// other's.
func (c *Collection) Merge(other *Collection) *Collection {
	out := NewCollection(c.Sets()...)
	for _, s := range other.Sets() {
		out.put(s)
	}
	return out
}

// Resolve resolves conceptID for the artefact's dataflow. It fails with
// ErrMissingConstraintDocument when no set was loaded for it.
func (c *Collection) Resolve(a *artefact.Artefact, conceptID, country string) ([]CodeRow, error) {
	set, ok := c.Get(a.DfID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", a.DfID, ErrMissingConstraintDocument)
	}
	return Resolve(a, set, conceptID, country), nil
}

// ResolveSoft is Resolve with a missing constraint document logged and
// degraded to an empty result.
func (c *Collection) ResolveSoft(a *artefact.Artefact, conceptID, country string) []CodeRow {
	rows, err := c.Resolve(a, conceptID, country)
	if err != nil {
		log.Warn(log.CatConstraint, "resolving without constraints", "dfId", a.DfID, "concept", conceptID, "error", err)
		return []CodeRow{}
	}
	return rows
}

// ConstrainedCountries returns every country with a region listing
// conceptID in any set, first seen first.
func (c *Collection) ConstrainedCountries(conceptID string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range c.Sets() {
		for _, cc := range s.Countries[conceptID] {
			if !seen[cc] {
				seen[cc] = true
				out = append(out, cc)
			}
		}
	}
	return out
}
