package presentation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/concept"
	"github.com/zjrosen/conceptnav/internal/constraint"
)

func artefactWith(dfID, dsID string, countries ...string) *artefact.Artefact {
	return &artefact.Artefact{DfID: dfID, DsID: dsID, ProvisionAgreementCountries: countries}
}

func TestConceptRow_MarshalJSONFlattens(t *testing.T) {
	row := ConceptRow{
		ConceptID:    "SEX",
		ConceptName:  "Sex",
		ConceptRoles: "SEX",
		Description:  "no description",
		Dataflows:    map[string]string{"DF_A": "c", "DF_B": "t"},
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"conceptId": "SEX",
		"conceptName": "Sex",
		"conceptRoles": "SEX",
		"description": "no description",
		"DF_A": "c",
		"DF_B": "t"
	}`, string(data))
}

func TestCountryAndCodeRow_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(CountryRow{CountryCode: "DE", Dataflows: map[string]string{"DF_A": "x"}})
	require.NoError(t, err)
	require.JSONEq(t, `{"countryCode":"DE","DF_A":"x"}`, string(data))

	data, err = json.Marshal(CodeRow{Code: "M", Name: "Male", Dataflows: map[string]string{"DF_A": "x"}})
	require.NoError(t, err)
	require.JSONEq(t, `{"code":"M","name":"Male","DF_A":"x"}`, string(data))
}

func TestConceptRows(t *testing.T) {
	a := &artefact.Artefact{
		DfID:       "DF_A",
		DsID:       "DSD_A",
		ConceptIDs: []string{"SEX", "REGION"},
		Concepts: map[string]artefact.Concept{
			"SEX":    {CodeList: artefact.RefCodeList("CL_SEX", "1.0"), Roles: []string{"SEX", "TIME"}},
			"REGION": {CodeList: artefact.NoCodeList(), TextType: "String"},
		},
		Name:        map[string]string{"SEX": "Sex", "REGION": "Region"},
		Description: map[string]string{"SEX": "Sex of the respondent"},
	}

	rows := ConceptRows(concept.Build([]*artefact.Artefact{a}))
	require.Equal(t, []ConceptRow{
		{ConceptID: "SEX", ConceptName: "Sex", ConceptRoles: "SEX", Description: "Sex of the respondent", Dataflows: map[string]string{"DF_A": "c"}},
		{ConceptID: "REGION", ConceptName: "Region", ConceptRoles: "", Description: concept.NoDescription, Dataflows: map[string]string{"DF_A": "t"}},
	}, rows)

	require.Empty(t, ConceptRows(nil))
}

func TestCountryRows(t *testing.T) {
	arts := []*artefact.Artefact{
		artefactWith("DF_A", "DSD_A", "DE", "FR"),
		artefactWith("DF_B", "DSD_B", "AT", "DE"),
	}

	all := CountryRows(arts, nil)
	require.Equal(t, []CountryRow{
		{CountryCode: "DE", Dataflows: map[string]string{"DF_A": "x", "DF_B": "x"}},
		{CountryCode: "FR", Dataflows: map[string]string{"DF_A": "x"}},
		{CountryCode: "AT", Dataflows: map[string]string{"DF_B": "x"}},
	}, all)

	filtered := CountryRows(arts, []string{"DF_B"})
	require.Equal(t, []CountryRow{
		{CountryCode: "AT", Dataflows: map[string]string{"DF_B": "x"}},
		{CountryCode: "DE", Dataflows: map[string]string{"DF_B": "x"}},
	}, filtered)
}

func TestCodeAppearanceRows(t *testing.T) {
	rows, cols := CodeAppearanceRows([]DataflowCodes{
		{DfID: "DF_A", Codes: []constraint.CodeRow{{Code: "M", Name: "Male"}, {Code: "F", Name: "Female"}}},
		{DfID: "DF_B", Codes: []constraint.CodeRow{}},
		{DfID: "DF_C", Codes: []constraint.CodeRow{{Code: "M", Name: "Male"}, {Code: "M", Name: "Men"}}},
	})

	require.Equal(t, []string{"DF_A", "DF_C"}, cols)
	require.Equal(t, []CodeRow{
		{Code: "M", Name: "Male", Dataflows: map[string]string{"DF_A": "x", "DF_C": "x"}},
		{Code: "F", Name: "Female", Dataflows: map[string]string{"DF_A": "x"}},
		{Code: "M", Name: "Men", Dataflows: map[string]string{"DF_C": "x"}},
	}, rows)
}

func TestCodeAppearanceRows_Empty(t *testing.T) {
	rows, cols := CodeAppearanceRows(nil)
	require.Empty(t, rows)
	require.Empty(t, cols)
}
