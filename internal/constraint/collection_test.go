package constraint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conceptnav/internal/sdmx"
	"github.com/zjrosen/conceptnav/internal/testutil"
)

func TestParse_StandardCatalogue(t *testing.T) {
	b := testutil.NewBuilder().WithStandardCatalogue()

	s := Parse(testutil.DfLFS2020, b.ConstraintMessage(testutil.DfLFS2020))
	require.Equal(t, testutil.DfLFS2020, s.DfID)
	require.Equal(t, []Region{
		{Included: true, AttachedTo: AttachedToProvisionAgreements, Country: "DE", Values: map[string][]string{"SEX": {"M"}}},
		{Included: true, AttachedTo: AttachedToDataflows, Country: AllCountries, Values: map[string][]string{"AGE": {"Y15-24"}}},
	}, s.Regions)
	require.Equal(t, map[string][]string{"SEX": {"DE"}, "AGE": {AllCountries}}, s.Countries)
}

func TestParse_EachValueListIsOneRegion(t *testing.T) {
	msg := &sdmx.Message{Data: &sdmx.Structures{ContentConstraints: []sdmx.ContentConstraint{{
		ConstraintAttachment: sdmx.Attachment{
			{Level: AttachedToProvisionAgreements, URNs: []string{testutil.AgreementURN("LFS_2020_FR")}},
		},
		CubeRegions: []sdmx.CubeRegion{{
			IsIncluded: true,
			Attributes: []sdmx.ComponentValue{{ID: "SEX", Values: sdmx.ValueSelect{"F"}}},
			KeyValues:  []sdmx.ComponentValue{{ID: "SEX", Values: sdmx.ValueSelect{"M"}}, {ID: "AGE", Values: sdmx.ValueSelect{"Y1"}}},
			Components: []sdmx.ComponentValue{},
		}},
	}}}}

	s := Parse("DF_X", msg)
	require.Len(t, s.Regions, 3, "an empty but present list still yields a region")
	require.Equal(t, map[string][]string{"SEX": {"F"}}, s.Regions[0].Values)
	require.Equal(t, []string{"FR", "FR"}, s.Countries["SEX"])
	require.Equal(t, []string{"FR"}, s.Countries["AGE"])
}

func TestParse_MultipleAttachmentKeysUsesFirstInDocument(t *testing.T) {
	body := func(first, second string) string {
		return `{"data": {"contentConstraints": [{
			"id": "CC_X",
			"constraintAttachment": {` + first + `, ` + second + `},
			"cubeRegions": [{"isIncluded": true, "keyValues": [{"id": "SEX", "values": ["M"]}]}]
		}]}}`
	}
	agreements := `"provisionAgreements": ["` + testutil.AgreementURN("LFS_2020_FR") + `"]`
	dataflows := `"dataflows": ["` + testutil.DataflowURN("DF_X") + `"]`

	tests := []struct {
		name        string
		first       string
		second      string
		wantLevel   string
		wantCountry string
	}{
		{"agreements first", agreements, dataflows, AttachedToProvisionAgreements, "FR"},
		{"dataflows first", dataflows, agreements, AttachedToDataflows, AllCountries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg sdmx.Message
			require.NoError(t, json.Unmarshal([]byte(body(tt.first, tt.second)), &msg))

			s := Parse("DF_X", &msg)
			require.Len(t, s.Regions, 1)
			require.Equal(t, tt.wantLevel, s.Regions[0].AttachedTo)
			require.Equal(t, tt.wantCountry, s.Regions[0].Country)
		})
	}
}

func TestParse_SkipsUnattachedConstraints(t *testing.T) {
	msg := &sdmx.Message{Data: &sdmx.Structures{ContentConstraints: []sdmx.ContentConstraint{
		{CubeRegions: []sdmx.CubeRegion{{KeyValues: []sdmx.ComponentValue{{ID: "SEX"}}}}},
		{ConstraintAttachment: sdmx.Attachment{{Level: AttachedToProvisionAgreements}}},
	}}}

	require.Empty(t, Parse("DF_X", msg).Regions)
	require.Empty(t, Parse("DF_X", nil).Regions)
}

func TestCollection_OrderFilterMerge(t *testing.T) {
	a := &Set{DfID: "A", Countries: map[string][]string{"SEX": {"DE", "FR"}}}
	b := &Set{DfID: "B", Countries: map[string][]string{"SEX": {"FR", "IT"}, "AGE": {"AT"}}}
	b2 := &Set{DfID: "B", Countries: map[string][]string{}}
	c := NewCollection(a, b)

	require.Equal(t, 2, c.Len())
	require.Equal(t, []string{"DE", "FR", "IT"}, c.ConstrainedCountries("SEX"))
	require.Empty(t, c.ConstrainedCountries("REGION"))

	filtered := c.Filter([]string{"B", "Z"})
	require.Equal(t, []*Set{b}, filtered.Sets())

	require.Equal(t, []string{"Z"}, c.Missing([]string{"A", "Z"}))

	merged := c.Merge(NewCollection(b2, &Set{DfID: "C"}))
	require.Equal(t, []*Set{a, b2, {DfID: "C"}}, merged.Sets())
	require.Equal(t, []*Set{a, b}, c.Sets(), "merge does not touch the receiver")

	var nilCollection *Collection
	require.Zero(t, nilCollection.Len())
	require.Equal(t, []string{"A"}, nilCollection.Missing([]string{"A"}))
}

func TestResolve_EndToEndFromFixtures(t *testing.T) {
	b := testutil.NewBuilder().WithStandardCatalogue()
	set := Parse(testutil.DfHBS2021, b.ConstraintMessage(testutil.DfHBS2021))
	a := normalizedHBS(t, b)

	require.Equal(t, []CodeRow{{Code: "M", Name: "Male"}}, Resolve(a, set, "SEX", "IT"))
	require.Empty(t, Resolve(a, set, "SEX", "DE"))
}
