package presentation

import (
	"fmt"
	"strings"

	"github.com/zjrosen/conceptnav/internal/concept"
	"github.com/zjrosen/conceptnav/internal/constraint"
)

const (
	noteMixed = "This variable representation has changed over the time series, i.e. it has both codes and free text as values."
	noteText  = "This variable representation has a free text as values."
)

// Detail describes one concept of the index.
type Detail struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Roles          []string `json:"conceptRoles,omitempty"`
	Representation string   `json:"representation"`
	Note           string   `json:"note,omitempty"`
	// Lenses are the code views on offer: "codes" for the full code list
	// followed by every constrained country.
	Lenses []string `json:"lenses"`
}

// HasCodeList reports whether the full code list lens is offered.
func (d Detail) HasCodeList() bool {
	return len(d.Lenses) > 0 && d.Lenses[0] == constraint.CodesMode
}

// Countries returns the constrained country lenses.
func (d Detail) Countries() []string {
	if d.HasCodeList() {
		return d.Lenses[1:]
	}
	return d.Lenses
}

// ConceptDetail builds the detail of e. countries lists the countries with
// a constraint on the concept.
func ConceptDetail(e *concept.Entry, countries []string) Detail {
	d := Detail{
		ID:             e.ID,
		Name:           e.Name,
		Roles:          e.ConceptRoles,
		Representation: e.Representation,
		Lenses:         []string{},
	}
	if e.Description != concept.NoDescription {
		d.Description = e.Description
	}

	switch {
	case e.Mixed():
		d.Note = noteMixed
	case !e.Coded():
		d.Note = noteText
	}

	if e.Coded() {
		d.Lenses = append(d.Lenses, constraint.CodesMode)
	}
	d.Lenses = append(d.Lenses, countries...)
	return d
}

// Markdown renders the detail as a markdown document.
func (d Detail) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.ID)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| ID | %s |\n", d.ID)
	fmt.Fprintf(&b, "| Name | %s |\n", escapeCell(d.Name))
	if d.Description != "" {
		fmt.Fprintf(&b, "| Description | %s |\n", escapeCell(d.Description))
	}
	if len(d.Roles) > 0 {
		fmt.Fprintf(&b, "| General Concepts | %s |\n", strings.Join(d.Roles, ", "))
	}
	if d.Note != "" {
		fmt.Fprintf(&b, "| Data Representation | %s |\n", d.Note)
	}
	if d.HasCodeList() {
		fmt.Fprintf(&b, "| Code List | `%s` |\n", constraint.CodesMode)
	}
	if countries := d.Countries(); len(countries) > 0 {
		fmt.Fprintf(&b, "| Data Constraints | `%s` |\n", strings.Join(countries, "` `"))
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
