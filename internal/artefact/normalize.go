package artefact

import (
	"fmt"

	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/sdmx"
	"github.com/zjrosen/conceptnav/internal/urn"
)

type options struct {
	generalConceptsScheme string
}

// Option tunes Normalize.
type Option func(*options)

// WithGeneralConceptsScheme overrides DefaultGeneralConceptsScheme.
func WithGeneralConceptsScheme(id string) Option {
	return func(o *options) {
		if id != "" {
			o.generalConceptsScheme = id
		}
	}
}

// Normalize builds the Artefact for bundle. Categorisations are resolved
// through categories; a nil lookup resolves nothing.
func Normalize(bundle sdmx.Bundle, categories CategoryLookup, opts ...Option) (*Artefact, error) {
	o := options{generalConceptsScheme: DefaultGeneralConceptsScheme}
	for _, opt := range opts {
		opt(&o)
	}

	if len(bundle.DataStructures) == 0 {
		return nil, fmt.Errorf("%s: %w", bundle.DfID, ErrInvalidBundle)
	}
	ds := bundle.DataStructures[0]

	ids, concepts := extractConcepts(ds.Components)
	names, descriptions := extractNames(bundle.ConceptSchemes, o.generalConceptsScheme)

	a := &Artefact{
		DfID:                        bundle.DfID,
		DsID:                        ds.ID,
		Categories:                  linkCategories(bundle.DfID, bundle.Categorisations, categories),
		ConceptIDs:                  ids,
		Concepts:                    concepts,
		Codes:                       formatCodeLists(bundle.Codelists),
		ProvisionAgreementCountries: agreementCountries(bundle.ProvisionAgreements),
		Name:                        names,
		Description:                 descriptions,
	}

	log.Debug(log.CatNormalize, "normalized dataflow",
		"dfId", a.DfID, "dsId", a.DsID, "concepts", len(a.ConceptIDs), "codelists", len(a.Codes))
	return a, nil
}

// extractConcepts reads attributes and dimensions. Measures are the observed
// values and never become concepts.
func extractConcepts(c sdmx.DataStructureComponents) ([]string, map[string]Concept) {
	var components []sdmx.Component
	components = append(components, c.AttributeList.Attributes...)
	components = append(components, c.DimensionList.Dimensions...)

	ids := make([]string, 0, len(components))
	concepts := make(map[string]Concept, len(components))
	for _, comp := range components {
		if _, seen := concepts[comp.ID]; !seen {
			ids = append(ids, comp.ID)
		}
		concepts[comp.ID] = extractConcept(comp)
	}
	return ids, concepts
}

func extractConcept(comp sdmx.Component) Concept {
	var c Concept

	rep := comp.LocalRepresentation
	if rep.Enumeration != "" {
		if ref, ok := urn.ParseReference(rep.Enumeration); ok {
			c.CodeList = RefCodeList(ref.ID, ref.Version)
		} else {
			log.Warn(log.CatNormalize, "unparseable enumeration", "component", comp.ID, "urn", rep.Enumeration)
		}
	}
	if c.CodeList.IsNone() && rep.TextFormat != nil {
		c.TextType = rep.TextFormat.TextType
		c.MaxLength = rep.TextFormat.MaxLength
	}

	for _, role := range comp.ConceptRoles {
		if v := urn.RoleValue(role); v != "" {
			c.Roles = append(c.Roles, v)
		}
	}
	return c
}

func extractNames(schemes []sdmx.ConceptScheme, excluded string) (map[string]string, map[string]string) {
	names := make(map[string]string)
	descriptions := make(map[string]string)
	for _, cs := range schemes {
		if cs.ID == excluded {
			continue
		}
		for _, concept := range cs.Concepts {
			names[concept.ID] = concept.Label()
			if d := concept.Text(); d != "" {
				descriptions[concept.ID] = d
			}
		}
	}
	return names, descriptions
}

func formatCodeLists(lists []sdmx.Codelist) map[string]CodeList {
	out := make(map[string]CodeList, len(lists))
	for _, cl := range lists {
		codes := make(CodeList, 0, len(cl.Codes))
		for _, code := range cl.Codes {
			codes = append(codes, Code{ID: code.ID, Name: code.Label()})
		}
		out[cl.ID] = codes
	}
	return out
}

func linkCategories(dfID string, edges []sdmx.Categorisation, categories CategoryLookup) []CategoryLink {
	links := make([]CategoryLink, 0, len(edges))
	for _, edge := range edges {
		var (
			link CategoryLink
			ok   bool
		)
		if categories != nil {
			link, ok = categories.CategoryByLink(edge.Source)
		}
		if !ok {
			log.Debug(log.CatNormalize, ErrUnresolvedCategoryLink.Error(), "dfId", dfID, "source", edge.Source)
			link = UnknownCategory
		}
		links = append(links, link)
	}
	return links
}

func agreementCountries(agreements []sdmx.ProvisionAgreement) []string {
	countries := make([]string, 0, len(agreements))
	seen := make(map[string]bool, len(agreements))
	for _, pa := range agreements {
		cc := urn.CountryFromAgreementID(pa.ID)
		if cc == "" || seen[cc] {
			continue
		}
		seen[cc] = true
		countries = append(countries, cc)
	}
	return countries
}
