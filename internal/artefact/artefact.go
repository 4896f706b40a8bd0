// Package artefact turns one dataflow's reference bundle into a flat
// Artefact record: its concepts, code lists, names, category path and the
// countries that have provision agreements for it.
package artefact

import (
	"errors"
	"sort"
)

var (
	// ErrInvalidBundle is returned when a bundle carries no data structure
	// definition.
	ErrInvalidBundle = errors.New("reference bundle has no data structure definition")

	// ErrUnresolvedCategoryLink marks a categorisation whose source category is
	// not in the category index. It is recovered with UnknownCategory.
	ErrUnresolvedCategoryLink = errors.New("categorisation source not found in category index")
)

const (
	// DefaultGeneralConceptsScheme is excluded from name and description
	// extraction.
	DefaultGeneralConceptsScheme = "CS_ESTAT_GENERAL_CONCEPTS"

	// NoFormat is the representation of a component with neither an
	// enumeration nor a text format.
	NoFormat = "no format"

	// Unknown is the fallback for missing names and unresolved categories.
	Unknown = "unknown"
)

// CodeListRef points a concept at a code list. The zero value means the
// concept is free text.
type CodeListRef struct {
	id      string
	version string
}

// NoCodeList is the free-text reference.
func NoCodeList() CodeListRef { return CodeListRef{} }

// RefCodeList references code list id at version.
func RefCodeList(id, version string) CodeListRef {
	return CodeListRef{id: id, version: version}
}

// IsNone reports whether the concept has no code list.
func (r CodeListRef) IsNone() bool { return r.id == "" }

// ID returns the code list ID, "" for NoCodeList.
func (r CodeListRef) ID() string { return r.id }

// Version returns the referenced code list version.
func (r CodeListRef) Version() string { return r.version }

func (r CodeListRef) String() string {
	if r.IsNone() {
		return "none"
	}
	return r.id + "(" + r.version + ")"
}

// Concept is one component of the data structure as seen by this dataflow.
type Concept struct {
	CodeList CodeListRef
	// TextType is the declared text format type, "" when the component has
	// a code list or no text format at all.
	TextType  string
	MaxLength int
	Roles     []string
}

// Coded reports whether the concept is backed by a code list.
func (c Concept) Coded() bool { return !c.CodeList.IsNone() }

// Representation is "codes" for coded concepts, otherwise the text type or
// NoFormat.
func (c Concept) Representation() string {
	switch {
	case c.Coded():
		return "codes"
	case c.TextType != "":
		return c.TextType
	default:
		return NoFormat
	}
}

// Code is one entry of a code list.
type Code struct {
	ID   string
	Name string
}

// CodeList keeps codes in registry order.
type CodeList []Code

// Name returns the display name of code id.
func (l CodeList) Name(id string) (string, bool) {
	for _, c := range l {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

// CategoryLink is one step of a dataflow's category path.
type CategoryLink struct {
	SchemeID string
	ID       string
	Name     string
}

// UnknownCategory stands in for a categorisation whose category is missing.
var UnknownCategory = CategoryLink{SchemeID: Unknown, ID: Unknown, Name: Unknown}

// CategoryLookup resolves a category by the URN of its self link.
type CategoryLookup interface {
	CategoryByLink(urn string) (CategoryLink, bool)
}

// CategoryMap is a CategoryLookup over a plain map.
type CategoryMap map[string]CategoryLink

func (m CategoryMap) CategoryByLink(urn string) (CategoryLink, bool) {
	c, ok := m[urn]
	return c, ok
}

// Artefact is the normalized view of one dataflow.
type Artefact struct {
	DfID string
	DsID string

	Categories []CategoryLink

	// ConceptIDs lists Concepts keys in component order. Keys missing from
	// it are still part of the artefact, see OrderedConceptIDs.
	ConceptIDs []string
	Concepts   map[string]Concept

	// Codes maps code list ID to its codes.
	Codes map[string]CodeList

	ProvisionAgreementCountries []string

	Name        map[string]string
	Description map[string]string
}

// OrderedConceptIDs returns ConceptIDs followed by any Concepts key it does
// not list, those sorted by ID. IDs in ConceptIDs with no Concepts entry are
// skipped.
func (a *Artefact) OrderedConceptIDs() []string {
	ids := make([]string, 0, len(a.Concepts))
	listed := make(map[string]bool, len(a.ConceptIDs))
	for _, id := range a.ConceptIDs {
		if _, ok := a.Concepts[id]; !ok || listed[id] {
			continue
		}
		listed[id] = true
		ids = append(ids, id)
	}
	var rest []string
	for id := range a.Concepts {
		if !listed[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

// ConceptName returns the scheme name of conceptID, or Unknown.
func (a *Artefact) ConceptName(conceptID string) string {
	if n, ok := a.Name[conceptID]; ok {
		return n
	}
	return Unknown
}

// CodeListFor returns the codes backing conceptID. ok is false for free-text
// and unknown concepts and for code lists missing from the bundle.
func (a *Artefact) CodeListFor(conceptID string) (CodeList, bool) {
	c, ok := a.Concepts[conceptID]
	if !ok || !c.Coded() {
		return nil, false
	}
	codes, ok := a.Codes[c.CodeList.ID()]
	return codes, ok
}

// Category returns the category the dataflow is filed under in schemeID.
func (a *Artefact) Category(schemeID string) (CategoryLink, bool) {
	for _, c := range a.Categories {
		if c.SchemeID == schemeID {
			return c, true
		}
	}
	return CategoryLink{}, false
}

// HasCountry reports whether country has a provision agreement.
func (a *Artefact) HasCountry(country string) bool {
	for _, c := range a.ProvisionAgreementCountries {
		if c == country {
			return true
		}
	}
	return false
}
