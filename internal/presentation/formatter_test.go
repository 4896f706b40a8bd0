package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conceptnav/internal/category"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestFormatter_ConceptsJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, WithFormat(FormatJSON))

	rows := []ConceptRow{{ConceptID: "SEX", ConceptName: "Sex", Dataflows: map[string]string{"DF_A": "c"}}}
	require.NoError(t, f.FormatConcepts(rows, []Column{{DfID: "DF_A", Label: "A"}}))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "c", got[0]["DF_A"])
	require.Equal(t, "SEX", got[0]["conceptId"])
}

func TestFormatter_ConceptsTable(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)

	rows := []ConceptRow{
		{ConceptID: "SEX", ConceptName: "Sex", ConceptRoles: "SEX", Dataflows: map[string]string{"DF_A": "c"}},
		{ConceptID: "REGION", ConceptName: "Region", Dataflows: map[string]string{"DF_B": "t"}},
	}
	require.NoError(t, f.FormatConcepts(rows, []Column{{DfID: "DF_A", Label: "LFS_2020"}, {DfID: "DF_B", Label: "HBS_2021"}}))

	out := buf.String()
	require.Contains(t, out, "Variable ID")
	require.Contains(t, out, "LFS_2020")
	require.Contains(t, out, "REGION")
}

func TestFormatter_CountriesTable(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)

	require.NoError(t, f.FormatCountries(
		[]CountryRow{{CountryCode: "DE", Dataflows: map[string]string{"DF_A": "x"}}},
		[]Column{{DfID: "DF_A", Label: "LFS_2020"}}))
	require.Contains(t, buf.String(), "DE")
	require.Contains(t, buf.String(), "Country")
}

func TestFormatter_CodesTableHasTitle(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)

	require.NoError(t, f.FormatCodes("SEX variable code list",
		[]CodeRow{{Code: "M", Name: "Male", Dataflows: map[string]string{"DF_A": "x"}}},
		[]Column{{DfID: "DF_A", Label: "2020 PUF LFS"}}))
	require.Contains(t, buf.String(), "SEX variable code list")
	require.Contains(t, buf.String(), "Male")
}

func TestFormatter_Categories(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)

	forms := []category.Form{{
		SchemeID: "MICRODATA_DOMAINS",
		Label:    "Microdata Domains Selector",
		Options:  []category.FormOption{{Value: "HBS", Label: "Household budget survey"}},
	}}
	require.NoError(t, f.FormatCategories(forms))
	require.Contains(t, buf.String(), "Microdata Domains Selector")
	require.Contains(t, buf.String(), "HBS")
}

func TestFormatter_DetailJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, WithFormat(FormatJSON))

	require.NoError(t, f.FormatDetail(Detail{ID: "SEX", Name: "Sex", Representation: "codes", Lenses: []string{"codes"}}))
	require.JSONEq(t, `{"id":"SEX","name":"Sex","representation":"codes","lenses":["codes"]}`, buf.String())
}

func TestFormatter_DetailMarkdown(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, WithWidth(80), WithMarkdownStyle("notty"))

	require.NoError(t, f.FormatDetail(Detail{ID: "SEX", Name: "Sex", Lenses: []string{}}))
	require.Contains(t, buf.String(), "SEX")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
