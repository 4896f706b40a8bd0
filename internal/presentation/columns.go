package presentation

import (
	"fmt"
	"strings"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/urn"
)

// Category schemes that make up a code table column header.
const (
	SchemeCollectionYear = "MICRODATA_COLLECTION_YEAR"
	SchemeFileType       = "MICRODATA_FILE_TYPE"
	SchemeDomains        = "MICRODATA_DOMAINS"
)

// Column is one per-dataflow column of a table.
type Column struct {
	DfID  string `json:"dfId"`
	Label string `json:"label"`
}

func byDataflow(artefacts []*artefact.Artefact) map[string]*artefact.Artefact {
	out := make(map[string]*artefact.Artefact, len(artefacts))
	for _, a := range artefacts {
		out[a.DfID] = a
	}
	return out
}

// StructureColumns labels each dataflow by its data structure ID with the
// ANON_ and _DSD decorations removed. Dataflows without an artefact are
// labelled by their ID.
func StructureColumns(artefacts []*artefact.Artefact, dfIDs []string) []Column {
	index := byDataflow(artefacts)
	cols := make([]Column, 0, len(dfIDs))
	for _, id := range dfIDs {
		label := id
		if a, ok := index[id]; ok && a.DsID != "" {
			label = urn.StructureLabel(a.DsID)
		}
		cols = append(cols, Column{DfID: id, Label: label})
	}
	return cols
}

// CodeColumnHeaders labels each dataflow "{year} {file type} {domain}" from
// the categories it is filed under.
func CodeColumnHeaders(artefacts []*artefact.Artefact, dfIDs []string) []Column {
	index := byDataflow(artefacts)
	cols := make([]Column, 0, len(dfIDs))
	for _, id := range dfIDs {
		a, ok := index[id]
		if !ok {
			cols = append(cols, Column{DfID: id, Label: id})
			continue
		}
		label := fmt.Sprintf("%s %s %s",
			categoryID(a, SchemeCollectionYear),
			categoryID(a, SchemeFileType),
			categoryID(a, SchemeDomains))
		cols = append(cols, Column{DfID: id, Label: strings.TrimSpace(label)})
	}
	return cols
}

func categoryID(a *artefact.Artefact, scheme string) string {
	if c, ok := a.Category(scheme); ok {
		return c.ID
	}
	return ""
}

// CodeTableTitle titles the code table of conceptID for country.
func CodeTableTitle(conceptID, country string) string {
	if country == "codes" {
		return conceptID + " variable code list"
	}
	return fmt.Sprintf("%s variable code list for %q", conceptID, country)
}
