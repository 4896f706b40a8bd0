package presentation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conceptnav/internal/concept"
)

func TestConceptDetail_Coded(t *testing.T) {
	e := &concept.Entry{
		ID: "SEX", Name: "Sex", Description: "Sex of the respondent",
		Representation: concept.RepresentationCodes, ConceptRoles: []string{"SEX"},
	}

	d := ConceptDetail(e, []string{"DE", "IT"})
	require.True(t, d.HasCodeList())
	require.Equal(t, []string{"codes", "DE", "IT"}, d.Lenses)
	require.Equal(t, []string{"DE", "IT"}, d.Countries())
	require.Empty(t, d.Note)

	md := d.Markdown()
	require.Contains(t, md, "| Description | Sex of the respondent |")
	require.Contains(t, md, "| General Concepts | SEX |")
	require.Contains(t, md, "| Code List | `codes` |")
	require.Contains(t, md, "| Data Constraints | `DE` `IT` |")
}

func TestConceptDetail_Mixed(t *testing.T) {
	e := &concept.Entry{ID: "AGE", Name: "Age", Description: concept.NoDescription, Representation: concept.RepresentationMixed}

	d := ConceptDetail(e, nil)
	require.Equal(t, noteMixed, d.Note)
	require.Equal(t, []string{"codes"}, d.Lenses)
	require.Empty(t, d.Description)
	require.NotContains(t, d.Markdown(), "Description")
}

func TestConceptDetail_FreeText(t *testing.T) {
	e := &concept.Entry{ID: "REGION", Name: "Region", Representation: "String"}

	d := ConceptDetail(e, []string{"FR"})
	require.Equal(t, noteText, d.Note)
	require.False(t, d.HasCodeList())
	require.Equal(t, []string{"FR"}, d.Countries())
	require.NotContains(t, d.Markdown(), "Code List")
}

func TestDetail_MarkdownEscapesCells(t *testing.T) {
	d := Detail{ID: "X", Name: "a|b", Description: "line\nbreak"}
	md := d.Markdown()
	require.Contains(t, md, `| Name | a\|b |`)
	require.Contains(t, md, "| Description | line break |")
}
