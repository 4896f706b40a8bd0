// Package presentation projects engine results into flat rows and renders
// them as tables, JSON or markdown.
package presentation

import (
	"encoding/json"
	"strings"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/concept"
	"github.com/zjrosen/conceptnav/internal/constraint"
)

// Marks used in the per-dataflow columns.
const (
	MarkCoded   = concept.AppearanceCoded
	MarkText    = concept.AppearanceText
	MarkPresent = "x"
)

// ConceptRow is one line of the "Usage of variables" table.
type ConceptRow struct {
	ConceptID    string
	ConceptName  string
	ConceptRoles string
	Description  string
	// Dataflows maps dfId to "c" or "t".
	Dataflows map[string]string
}

// MarshalJSON flattens the dataflow marks into the row object.
func (r ConceptRow) MarshalJSON() ([]byte, error) {
	return flatten(r.Dataflows, map[string]string{
		"conceptId":    r.ConceptID,
		"conceptName":  r.ConceptName,
		"conceptRoles": r.ConceptRoles,
		"description":  r.Description,
	})
}

// CountryRow is one line of the "Participation of Countries" table.
type CountryRow struct {
	CountryCode string
	Dataflows   map[string]string
}

func (r CountryRow) MarshalJSON() ([]byte, error) {
	return flatten(r.Dataflows, map[string]string{"countryCode": r.CountryCode})
}

// CodeRow is one line of a code appearance table.
type CodeRow struct {
	Code      string
	Name      string
	Dataflows map[string]string
}

func (r CodeRow) MarshalJSON() ([]byte, error) {
	return flatten(r.Dataflows, map[string]string{"code": r.Code, "name": r.Name})
}

// flatten merges the per-dataflow marks and the fixed fields into a single
// object. Fixed fields win on a key clash.
func flatten(marks, fixed map[string]string) ([]byte, error) {
	obj := make(map[string]string, len(marks)+len(fixed))
	for k, v := range marks {
		obj[k] = v
	}
	for k, v := range fixed {
		obj[k] = v
	}
	return json.Marshal(obj)
}

// ConceptRows lists the index entries in first-sighting order.
func ConceptRows(idx *concept.Index) []ConceptRow {
	if idx == nil {
		return []ConceptRow{}
	}
	rows := make([]ConceptRow, 0, idx.Len())
	for _, e := range idx.Entries() {
		marks := make(map[string]string, len(e.Appearance))
		for df, mark := range e.Appearance {
			marks[df] = mark
		}
		rows = append(rows, ConceptRow{
			ConceptID:    e.ID,
			ConceptName:  e.Name,
			ConceptRoles: strings.Join(e.ConceptRoles, ", "),
			Description:  e.Description,
			Dataflows:    marks,
		})
	}
	return rows
}

// CountryRows marks, per provision agreement country, the dataflows it takes
// part in. An empty filter keeps every artefact. Countries keep first-seen
// order.
func CountryRows(artefacts []*artefact.Artefact, filter []string) []CountryRow {
	keep := make(map[string]bool, len(filter))
	for _, id := range filter {
		keep[id] = true
	}

	var order []string
	byCountry := make(map[string]map[string]string)
	for _, a := range artefacts {
		if len(filter) > 0 && !keep[a.DfID] {
			continue
		}
		for _, cc := range a.ProvisionAgreementCountries {
			marks, ok := byCountry[cc]
			if !ok {
				marks = make(map[string]string)
				byCountry[cc] = marks
				order = append(order, cc)
			}
			marks[a.DfID] = MarkPresent
		}
	}

	rows := make([]CountryRow, 0, len(order))
	for _, cc := range order {
		rows = append(rows, CountryRow{CountryCode: cc, Dataflows: byCountry[cc]})
	}
	return rows
}

// DataflowCodes is the resolved code list of one dataflow.
type DataflowCodes struct {
	DfID  string
	Codes []constraint.CodeRow
}

// CodeAppearanceRows merges resolved code lists by code and name, marking
// the dataflows each pair appears in. It also returns the dataflows that
// contributed at least one code, in input order; the others get no column.
func CodeAppearanceRows(lists []DataflowCodes) ([]CodeRow, []string) {
	type pair struct{ code, name string }

	var (
		order   []pair
		columns []string
	)
	marks := make(map[pair]map[string]string)
	for _, l := range lists {
		if len(l.Codes) == 0 {
			continue
		}
		columns = append(columns, l.DfID)
		for _, c := range l.Codes {
			p := pair{c.Code, c.Name}
			m, ok := marks[p]
			if !ok {
				m = make(map[string]string)
				marks[p] = m
				order = append(order, p)
			}
			m[l.DfID] = MarkPresent
		}
	}

	rows := make([]CodeRow, 0, len(order))
	for _, p := range order {
		rows = append(rows, CodeRow{Code: p.code, Name: p.name, Dataflows: marks[p]})
	}
	return rows, columns
}
