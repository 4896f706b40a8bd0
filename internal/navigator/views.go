package navigator

import (
	"context"
	"fmt"

	"github.com/zjrosen/conceptnav/internal/presentation"
)

// CodeTable is the code appearance table of one concept and lens.
type CodeTable struct {
	Title   string                 `json:"title"`
	Columns []presentation.Column  `json:"columns"`
	Rows    []presentation.CodeRow `json:"rows"`
}

// ConceptRows projects the current concept index.
func (n *Navigator) ConceptRows() []presentation.ConceptRow {
	return presentation.ConceptRows(n.Current().Concepts)
}

// ConceptColumns labels the matched dataflows by structure.
func (n *Navigator) ConceptColumns() []presentation.Column {
	v := n.Current()
	return presentation.StructureColumns(v.Artefacts, v.Dataflows)
}

// CountryRows marks the countries taking part in the matched dataflows.
// With no matched dataflows every loaded artefact counts.
func (n *Navigator) CountryRows(ctx context.Context) []presentation.CountryRow {
	all, _ := n.session.Artefacts(ctx)
	return presentation.CountryRows(all, n.Current().Dataflows)
}

// CountryColumns labels the columns of CountryRows.
func (n *Navigator) CountryColumns(ctx context.Context) []presentation.Column {
	all, _ := n.session.Artefacts(ctx)
	ids := n.Current().Dataflows
	if len(ids) == 0 {
		for _, a := range all {
			ids = append(ids, a.DfID)
		}
	}
	return presentation.StructureColumns(all, ids)
}

// CodeTable resolves conceptID for country, or for every code when country
// is "codes", across the matched dataflows. Dataflows without a constraint
// document contribute no codes.
func (n *Navigator) CodeTable(ctx context.Context, conceptID, country string) (CodeTable, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	v := n.last
	if _, ok := v.Concepts.Get(conceptID); !ok {
		return CodeTable{}, fmt.Errorf("%s: %w", conceptID, ErrUnknownConcept)
	}

	cons, err := n.constraints(ctx, v.Dataflows, false)
	if err != nil {
		return CodeTable{}, err
	}

	lists := make([]presentation.DataflowCodes, 0, len(v.Artefacts))
	for _, a := range v.Artefacts {
		if _, ok := a.Concepts[conceptID]; !ok {
			continue
		}
		lists = append(lists, presentation.DataflowCodes{
			DfID:  a.DfID,
			Codes: cons.ResolveSoft(a, conceptID, country),
		})
	}

	rows, ids := presentation.CodeAppearanceRows(lists)
	return CodeTable{
		Title:   presentation.CodeTableTitle(conceptID, country),
		Columns: presentation.CodeColumnHeaders(v.Artefacts, ids),
		Rows:    rows,
	}, nil
}

// ConceptDetail describes conceptID with every country constraining it.
func (n *Navigator) ConceptDetail(ctx context.Context, conceptID string) (presentation.Detail, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	e, ok := n.last.Concepts.Get(conceptID)
	if !ok {
		return presentation.Detail{}, fmt.Errorf("%s: %w", conceptID, ErrUnknownConcept)
	}

	if _, err := n.constraints(ctx, n.last.Dataflows, false); err != nil {
		return presentation.Detail{}, err
	}
	all, _ := n.session.Constraints(ctx)
	return presentation.ConceptDetail(e, all.ConstrainedCountries(conceptID)), nil
}
