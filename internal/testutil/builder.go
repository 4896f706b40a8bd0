// Package testutil builds SDMX structure messages for tests and serves them
// from a fake registry.
package testutil

import (
	"github.com/zjrosen/conceptnav/internal/sdmx"
)

type schemeData struct {
	id         string
	categories []CategoryData
}

// Builder accumulates fixture dataflows and category schemes and renders
// them as the messages the registry returns for each query.
type Builder struct {
	dataflows []dataflowData
	schemes   []schemeData
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithDataflow adds a dataflow with optional configuration.
func (b *Builder) WithDataflow(id string, opts ...DataflowOption) *Builder {
	df := defaultDataflow(id)
	for _, opt := range opts {
		opt(&df)
	}
	b.dataflows = append(b.dataflows, df)
	return b
}

// WithCategoryScheme adds a category scheme.
func (b *Builder) WithCategoryScheme(id string, categories ...CategoryData) *Builder {
	b.schemes = append(b.schemes, schemeData{id: id, categories: categories})
	return b
}

// DataflowIDs lists the fixture dataflows in insertion order.
func (b *Builder) DataflowIDs() []string {
	ids := make([]string, 0, len(b.dataflows))
	for _, df := range b.dataflows {
		ids = append(ids, df.id)
	}
	return ids
}

func (b *Builder) dataflow(id string) (dataflowData, bool) {
	for _, df := range b.dataflows {
		if df.id == id {
			return df, true
		}
	}
	return dataflowData{}, false
}

// Bundle returns the reference bundle of dfID, as fetched with
// references=all.
func (b *Builder) Bundle(dfID string) sdmx.Bundle {
	return sdmx.NewBundle(dfID, b.ArtefactMessage(dfID))
}

// ArtefactMessage is the dataflow/{dfID}?references=all response.
func (b *Builder) ArtefactMessage(dfID string) *sdmx.Message {
	df, ok := b.dataflow(dfID)
	if !ok {
		return nil
	}
	return &sdmx.Message{Data: &sdmx.Structures{
		Dataflows:           []sdmx.Dataflow{renderDataflow(df)},
		DataStructures:      []sdmx.DataStructure{renderStructure(df)},
		ConceptSchemes:      renderConceptSchemes(df),
		Codelists:           renderCodelists(df),
		Categorisations:     renderCategorisations(df),
		ContentConstraints:  renderConstraints(df),
		ProvisionAgreements: renderAgreements(df),
	}}
}

// ConstraintMessage is the dataflow/{dfID}?references=ancestors response.
func (b *Builder) ConstraintMessage(dfID string) *sdmx.Message {
	df, ok := b.dataflow(dfID)
	if !ok {
		return nil
	}
	return &sdmx.Message{Data: &sdmx.Structures{
		Dataflows:           []sdmx.Dataflow{renderDataflow(df)},
		ContentConstraints:  renderConstraints(df),
		ProvisionAgreements: renderAgreements(df),
	}}
}

// CatalogueMessage is the categoryscheme/ESTAT/{scheme}?references=all
// response used to link structures to dataflows.
func (b *Builder) CatalogueMessage() *sdmx.Message {
	s := &sdmx.Structures{CategorySchemes: b.renderSchemes()}
	for _, df := range b.dataflows {
		s.Dataflows = append(s.Dataflows, renderDataflow(df))
		s.DataStructures = append(s.DataStructures, renderStructure(df))
		s.Categorisations = append(s.Categorisations, renderCategorisations(df)...)
	}
	return &sdmx.Message{Data: s}
}

// CategorisationMessage is the categorisation/all/all?references=ancestors
// response.
func (b *Builder) CategorisationMessage() *sdmx.Message {
	s := &sdmx.Structures{CategorySchemes: b.renderSchemes()}
	for _, df := range b.dataflows {
		s.Categorisations = append(s.Categorisations, renderCategorisations(df)...)
	}
	return &sdmx.Message{Data: s}
}

// CategorySchemeMessage is the categoryscheme/all/all?references=parents
// response.
func (b *Builder) CategorySchemeMessage() *sdmx.Message {
	return &sdmx.Message{Data: &sdmx.Structures{CategorySchemes: b.renderSchemes()}}
}

func nameable(id, name, urn string) sdmx.Nameable {
	n := sdmx.Nameable{ID: id, Version: "1.0", Name: name}
	if urn != "" {
		n.Links = []sdmx.Link{{Rel: "self", URN: urn}}
	}
	return n
}

func renderDataflow(df dataflowData) sdmx.Dataflow {
	return sdmx.Dataflow{
		Nameable:  nameable(df.id, df.id, DataflowURN(df.id)),
		Structure: DataStructureURN(df.dsID),
	}
}

func renderStructure(df dataflowData) sdmx.DataStructure {
	ds := sdmx.DataStructure{Nameable: nameable(df.dsID, df.dsID, DataStructureURN(df.dsID))}
	for _, c := range df.components {
		comp := sdmx.Component{ID: c.id, ConceptIdentity: ConceptURN(conceptScheme(df, c), c.id)}
		switch {
		case c.codelist != "":
			comp.LocalRepresentation.Enumeration = CodelistURN(c.codelist)
		case c.hasFormat:
			comp.LocalRepresentation.TextFormat = &sdmx.TextFormat{TextType: c.textType}
		}
		for _, role := range c.roles {
			comp.ConceptRoles = append(comp.ConceptRoles, ConceptURN(GeneralConceptsScheme, role))
		}

		if c.attribute {
			ds.Components.AttributeList.Attributes = append(ds.Components.AttributeList.Attributes, comp)
		} else {
			ds.Components.DimensionList.Dimensions = append(ds.Components.DimensionList.Dimensions, comp)
		}
	}
	return ds
}

func conceptScheme(df dataflowData, c componentData) string {
	if c.general {
		return GeneralConceptsScheme
	}
	return "CS_" + df.dsID
}

func renderConceptSchemes(df dataflowData) []sdmx.ConceptScheme {
	own := sdmx.ConceptScheme{Nameable: nameable("CS_"+df.dsID, "Concepts of "+df.dsID, "")}
	general := sdmx.ConceptScheme{Nameable: nameable(GeneralConceptsScheme, "General concepts", "")}
	for _, c := range df.components {
		concept := sdmx.Concept{Nameable: nameable(c.id, c.name, ConceptURN(conceptScheme(df, c), c.id))}
		concept.Description = c.description
		if c.general {
			general.Concepts = append(general.Concepts, concept)
		} else {
			own.Concepts = append(own.Concepts, concept)
		}
	}
	return []sdmx.ConceptScheme{own, general}
}

func renderCodelists(df dataflowData) []sdmx.Codelist {
	var lists []sdmx.Codelist
	seen := make(map[string]bool)
	for _, c := range df.components {
		if c.codelist == "" || seen[c.codelist] {
			continue
		}
		seen[c.codelist] = true
		cl := sdmx.Codelist{Nameable: nameable(c.codelist, c.codelist, CodelistURN(c.codelist))}
		for _, code := range c.codes {
			cl.Codes = append(cl.Codes, sdmx.Code{Nameable: sdmx.Nameable{ID: code.ID, Name: code.Name}})
		}
		lists = append(lists, cl)
	}
	return lists
}

func renderCategorisations(df dataflowData) []sdmx.Categorisation {
	out := make([]sdmx.Categorisation, 0, len(df.categories))
	for _, ref := range df.categories {
		out = append(out, sdmx.Categorisation{
			Nameable: nameable(df.id+"@"+ref.scheme+"."+ref.id, "", ""),
			Source:   CategoryURN(ref.scheme, ref.id),
			Target:   DataflowURN(df.id),
		})
	}
	return out
}

func renderAgreements(df dataflowData) []sdmx.ProvisionAgreement {
	out := make([]sdmx.ProvisionAgreement, 0, len(df.countries))
	for _, cc := range df.countries {
		id := AgreementID(df.id, cc)
		out = append(out, sdmx.ProvisionAgreement{Nameable: nameable(id, id, AgreementURN(id))})
	}
	return out
}

func renderConstraints(df dataflowData) []sdmx.ContentConstraint {
	out := make([]sdmx.ContentConstraint, 0, len(df.constraints))
	for i, c := range df.constraints {
		attachment := sdmx.Attachment{{Level: "provisionAgreements", URNs: []string{AgreementURN(AgreementID(df.id, c.country))}}}
		if c.country == "ALL" {
			attachment = sdmx.Attachment{{Level: "dataflows", URNs: []string{DataflowURN(df.id)}}}
		}

		values := []sdmx.ComponentValue{{ID: c.conceptID, Values: sdmx.ValueSelect(c.values)}}
		region := sdmx.CubeRegion{IsIncluded: c.included}
		if c.attribute {
			region.Attributes = values
		} else {
			region.KeyValues = values
		}

		out = append(out, sdmx.ContentConstraint{
			Nameable:             nameable(df.id+"_CC_"+string(rune('A'+i)), "", ""),
			ConstraintAttachment: attachment,
			CubeRegions:          []sdmx.CubeRegion{region},
		})
	}
	return out
}

func (b *Builder) renderSchemes() []sdmx.CategoryScheme {
	out := make([]sdmx.CategoryScheme, 0, len(b.schemes))
	for _, s := range b.schemes {
		scheme := sdmx.CategoryScheme{Nameable: nameable(s.id, s.id, CategorySchemeURN(s.id))}
		for _, c := range s.categories {
			scheme.Categories = append(scheme.Categories, renderCategory(s.id, c))
		}
		out = append(out, scheme)
	}
	return out
}

func renderCategory(scheme string, c CategoryData) sdmx.Category {
	cat := sdmx.Category{Nameable: nameable(c.ID, c.Name, CategoryURN(scheme, c.ID))}
	for _, sub := range c.Subcategories {
		cat.Categories = append(cat.Categories, renderCategory(scheme, sub))
	}
	return cat
}
