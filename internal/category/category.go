// Package category flattens category schemes, links data structures to
// dataflows and matches dataflows against a category selection.
package category

import (
	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/sdmx"
)

// Item is one category of a scheme.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SchemeID string `json:"categorySchemeId"`
	// Link is the URN of the category, the key categorisations refer to.
	Link string `json:"link"`
}

// Collection is the flattened list of categories of every scheme.
type Collection []Item

var _ artefact.CategoryLookup = Collection(nil)

// Flatten lists the categories of every scheme in msg. Subcategories are
// listed before their parent; deeper levels are not visited.
func Flatten(msg *sdmx.Message) Collection {
	if msg == nil || msg.Data == nil {
		return nil
	}

	var out Collection
	for _, scheme := range msg.Data.CategorySchemes {
		for _, cat := range scheme.Categories {
			for _, sub := range cat.Categories {
				out = append(out, item(scheme.ID, sub))
			}
			out = append(out, item(scheme.ID, cat))
		}
	}
	return out
}

func item(schemeID string, c sdmx.Category) Item {
	return Item{ID: c.ID, Name: c.Label(), SchemeID: schemeID, Link: c.SelfURN()}
}

// CategoryByLink resolves a categorisation source.
func (c Collection) CategoryByLink(urn string) (artefact.CategoryLink, bool) {
	for _, it := range c {
		if it.Link == urn {
			return artefact.CategoryLink{SchemeID: it.SchemeID, ID: it.ID, Name: it.Name}, true
		}
	}
	return artefact.CategoryLink{}, false
}

// Lookup indexes the collection by link for repeated resolution.
func (c Collection) Lookup() artefact.CategoryMap {
	m := make(artefact.CategoryMap, len(c))
	for _, it := range c {
		if _, ok := m[it.Link]; ok {
			continue
		}
		m[it.Link] = artefact.CategoryLink{SchemeID: it.SchemeID, ID: it.ID, Name: it.Name}
	}
	return m
}

// LinkOf returns the link of category id, preferring a match in schemeID.
// The first category with that id in any scheme is the fallback.
func (c Collection) LinkOf(schemeID, id string) (string, bool) {
	fallback := ""
	for _, it := range c {
		if it.ID != id {
			continue
		}
		if it.SchemeID == schemeID {
			return it.Link, true
		}
		if fallback == "" {
			fallback = it.Link
		}
	}
	return fallback, fallback != ""
}

// Schemes returns the scheme IDs in first-seen order.
func (c Collection) Schemes() []string {
	var out []string
	seen := make(map[string]bool)
	for _, it := range c {
		if !seen[it.SchemeID] {
			seen[it.SchemeID] = true
			out = append(out, it.SchemeID)
		}
	}
	return out
}
