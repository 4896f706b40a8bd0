package category

import (
	"sort"

	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/sdmx"
)

// Selection maps a category scheme ID to the chosen category ID. Empty
// category IDs mean nothing was chosen for that scheme.
type Selection map[string]string

// Empty reports whether no scheme has a chosen category.
func (s Selection) Empty() bool {
	for _, v := range s {
		if v != "" {
			return false
		}
	}
	return true
}

// Linker matches dataflows against a category selection.
type Linker struct {
	categories      Collection
	links           LinkTable
	categorisations []sdmx.Categorisation
}

// NewLinker creates a linker over the flattened categories, the structure
// link table and every known categorisation.
func NewLinker(categories Collection, links LinkTable, categorisations []sdmx.Categorisation) *Linker {
	return &Linker{categories: categories, links: links, categorisations: categorisations}
}

// MatchDataflows returns the dataflows categorised under the most selected
// categories. Every dataflow tied at the highest tally is returned, in the
// order its first categorisation was seen. An empty selection returns all
// known dataflows.
func (l *Linker) MatchDataflows(sel Selection) []string {
	if sel.Empty() {
		return l.links.DataflowIDs()
	}

	wanted := make(map[string]bool, len(sel))
	for _, scheme := range sortedKeys(sel) {
		id := sel[scheme]
		if id == "" {
			continue
		}
		if link, ok := l.categories.LinkOf(scheme, id); ok {
			wanted[link] = true
		} else {
			log.Warn(log.CatCategory, "selected category not found", "scheme", scheme, "category", id)
		}
	}

	var targets []string
	tally := make(map[string]int)
	for _, c := range l.categorisations {
		if !wanted[c.Source] {
			continue
		}
		if tally[c.Target] == 0 {
			targets = append(targets, c.Target)
		}
		tally[c.Target]++
	}

	best := 0
	for _, n := range tally {
		best = max(best, n)
	}

	out := make([]string, 0, len(targets))
	for _, target := range targets {
		if tally[target] != best {
			continue
		}
		if dfID, ok := l.links.DataflowByURN(target); ok {
			out = append(out, dfID)
		}
	}

	log.Debug(log.CatCategory, "matched dataflows", "selection", sel, "tally", best, "matches", len(out))
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
