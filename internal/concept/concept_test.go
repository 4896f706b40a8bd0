package concept

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/testutil"
)

func coded(cl string) artefact.Concept {
	return artefact.Concept{CodeList: artefact.RefCodeList(cl, "1.0")}
}

func text(textType string) artefact.Concept {
	return artefact.Concept{TextType: textType}
}

func single(dfID, conceptID string, c artefact.Concept) *artefact.Artefact {
	return &artefact.Artefact{
		DfID:        dfID,
		DsID:        "DSD_" + dfID,
		ConceptIDs:  []string{conceptID},
		Concepts:    map[string]artefact.Concept{conceptID: c},
		Name:        map[string]string{conceptID: conceptID + " name"},
		Description: map[string]string{},
	}
}

func TestFold_AgeCodedAndUncodedIsMixed(t *testing.T) {
	idx := Build([]*artefact.Artefact{
		single("DF_A", "AGE", coded("CL_AGE")),
		single("DF_B", "AGE", text("Integer")),
	})

	e, ok := idx.Get("AGE")
	require.True(t, ok)
	require.Equal(t, RepresentationMixed, e.Representation)
	require.True(t, e.Coded())
	require.Equal(t, map[string]string{"DF_A": AppearanceCoded, "DF_B": AppearanceText}, e.Appearance)
	require.Equal(t, []DSDRef{
		{DfID: "DF_A", DsID: "DSD_DF_A", ClID: "CL_AGE"},
		{DfID: "DF_B", DsID: "DSD_DF_B", ClID: ""},
	}, e.DSD)
	require.Equal(t, []string{"DF_A"}, idx.DataflowIDs("AGE"))
}

func TestFold_ConceptsWithoutComponentOrder(t *testing.T) {
	idx := Build([]*artefact.Artefact{{
		DfID:     "DF_A",
		DsID:     "DSD_DF_A",
		Concepts: map[string]artefact.Concept{"SEX": coded("CL_SEX"), "AGE": coded("CL_AGE")},
	}})

	require.Equal(t, 2, idx.Len())
	require.Equal(t, []string{"AGE", "SEX"}, idx.IDs())
	e, ok := idx.Get("AGE")
	require.True(t, ok)
	require.Equal(t, map[string]string{"DF_A": AppearanceCoded}, e.Appearance)
}

func TestFold_XORLaw(t *testing.T) {
	cases := []struct {
		name  string
		first artefact.Concept
		next  artefact.Concept
		want  string
	}{
		{"both coded", coded("CL_1"), coded("CL_2"), RepresentationCodes},
		{"coded then text", coded("CL_1"), text("String"), RepresentationMixed},
		{"text then coded", text("String"), coded("CL_1"), RepresentationMixed},
		{"both text", text("String"), text("String"), "String"},
		{"text types differ", text("String"), text("Integer"), "Integer"},
		{"no format and text", artefact.Concept{}, text("String"), "String"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idx := Build([]*artefact.Artefact{single("A", "X", tc.first), single("B", "X", tc.next)})
			e, _ := idx.Get("X")
			require.Equal(t, tc.want, e.Representation)
		})
	}
}

func TestFold_MixedIsIrreversible(t *testing.T) {
	idx := Build([]*artefact.Artefact{
		single("A", "X", coded("CL")),
		single("B", "X", text("String")),
		single("C", "X", coded("CL")),
		single("D", "X", text("String")),
	})
	e, _ := idx.Get("X")
	require.Equal(t, RepresentationMixed, e.Representation)
}

func TestFold_DefaultsAndRoleFilter(t *testing.T) {
	a := single("DF_A", "SEX", coded("CL_SEX"))
	a.Concepts["SEX"] = artefact.Concept{CodeList: artefact.RefCodeList("CL_SEX", "1.0"), Roles: []string{"SEX", "TIME", "AGE"}}
	delete(a.Name, "SEX")

	idx := Build([]*artefact.Artefact{a})
	e, _ := idx.Get("SEX")
	require.Equal(t, artefact.Unknown, e.Name)
	require.Equal(t, NoDescription, e.Description)
	require.Equal(t, []string{"SEX", "AGE"}, e.ConceptRoles)

	idx = Build([]*artefact.Artefact{a}, WithRoleAllowList([]string{"TIME"}))
	e, _ = idx.Get("SEX")
	require.Equal(t, []string{"TIME"}, e.ConceptRoles)
}

func TestFold_LaterSightingFillsMissingName(t *testing.T) {
	first := single("A", "X", coded("CL"))
	delete(first.Name, "X")
	second := single("B", "X", coded("CL"))
	second.Description["X"] = "described"

	idx := Build([]*artefact.Artefact{first, second})
	e, _ := idx.Get("X")
	require.Equal(t, "X name", e.Name)
	require.Equal(t, "described", e.Description)
}

func TestBuild_StandardCatalogue(t *testing.T) {
	b := testutil.NewBuilder().WithStandardCatalogue()
	var artefacts []*artefact.Artefact
	for _, id := range b.DataflowIDs() {
		a, err := artefact.Normalize(b.Bundle(id), nil)
		require.NoError(t, err)
		artefacts = append(artefacts, a)
	}

	idx := Build(artefacts)
	require.Equal(t, []string{"SEX", "AGE", "REGION"}, idx.IDs())

	sex, _ := idx.Get("SEX")
	require.Equal(t, RepresentationCodes, sex.Representation)
	require.Equal(t, []string{"SEX"}, sex.ConceptRoles)
	require.Equal(t, "Sex of the respondent", sex.Description)
	require.Len(t, sex.DSD, 3)

	age, _ := idx.Get("AGE")
	require.Equal(t, RepresentationMixed, age.Representation)
	require.Equal(t, []string{"AGE"}, age.ConceptRoles)

	region, _ := idx.Get("REGION")
	require.Equal(t, "String", region.Representation)
	require.Equal(t, map[string]string{testutil.DfLFS2020: AppearanceText}, region.Appearance)
}

func TestFold_OrderIndependent(t *testing.T) {
	conceptIDs := []string{"SEX", "AGE", "REGION", "INCOME"}
	textTypes := []string{"", "String", "Integer", "Decimal"}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "artefacts")
		artefacts := make([]*artefact.Artefact, 0, n)
		for i := 0; i < n; i++ {
			dfID := "DF_" + string(rune('A'+i))
			a := &artefact.Artefact{
				DfID:        dfID,
				DsID:        "DSD_" + dfID,
				Concepts:    map[string]artefact.Concept{},
				Name:        map[string]string{},
				Description: map[string]string{},
			}
			for _, id := range conceptIDs {
				if !rapid.Bool().Draw(t, "has "+id) {
					continue
				}
				var c artefact.Concept
				if rapid.Bool().Draw(t, "coded "+id) {
					c.CodeList = artefact.RefCodeList("CL_"+id, "1.0")
				} else {
					c.TextType = rapid.SampledFrom(textTypes).Draw(t, "type "+id)
				}
				c.Roles = []string{id}
				a.ConceptIDs = append(a.ConceptIDs, id)
				a.Concepts[id] = c
				a.Name[id] = id + " name"
			}
			artefacts = append(artefacts, a)
		}

		permuted := rapid.Permutation(artefacts).Draw(t, "order")

		want := canonical(Build(artefacts))
		got := canonical(Build(permuted))
		if len(want) != len(got) {
			t.Fatalf("concept count differs: %d vs %d", len(want), len(got))
		}
		for id, w := range want {
			g, ok := got[id]
			if !ok {
				t.Fatalf("missing concept %s", id)
			}
			require.Equal(t, w, g, id)
		}
	})
}

// canonical drops the order dependent parts of the index.
func canonical(idx *Index) map[string]Entry {
	out := make(map[string]Entry, idx.Len())
	for _, e := range idx.Entries() {
		c := *e
		c.DSD = append([]DSDRef(nil), e.DSD...)
		sort.Slice(c.DSD, func(i, j int) bool { return c.DSD[i].DfID < c.DSD[j].DfID })
		out[e.ID] = c
	}
	return out
}
