package presentation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conceptnav/internal/artefact"
)

func TestStructureColumns(t *testing.T) {
	arts := []*artefact.Artefact{artefactWith("DF_LFS", "ANON_LFS_2020_DSD")}

	cols := StructureColumns(arts, []string{"DF_LFS", "DF_GONE"})
	require.Equal(t, []Column{
		{DfID: "DF_LFS", Label: "LFS_2020"},
		{DfID: "DF_GONE", Label: "DF_GONE"},
	}, cols)
}

func TestCodeColumnHeaders(t *testing.T) {
	a := artefactWith("DF_LFS", "DSD")
	a.Categories = []artefact.CategoryLink{
		{SchemeID: SchemeDomains, ID: "LFS"},
		{SchemeID: SchemeCollectionYear, ID: "2020"},
		{SchemeID: SchemeFileType, ID: "PUF"},
	}
	b := artefactWith("DF_PART", "DSD")
	b.Categories = []artefact.CategoryLink{{SchemeID: SchemeDomains, ID: "HBS"}}

	cols := CodeColumnHeaders([]*artefact.Artefact{a, b}, []string{"DF_LFS", "DF_PART"})
	require.Equal(t, []Column{
		{DfID: "DF_LFS", Label: "2020 PUF LFS"},
		{DfID: "DF_PART", Label: "HBS"},
	}, cols)
}

func TestCodeTableTitle(t *testing.T) {
	require.Equal(t, "SEX variable code list", CodeTableTitle("SEX", "codes"))
	require.Equal(t, `SEX variable code list for "DE"`, CodeTableTitle("SEX", "DE"))
}
