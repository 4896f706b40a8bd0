package category

import (
	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/sdmx"
)

// StructureLink ties a data structure to the dataflow built on it.
type StructureLink struct {
	DsID      string `json:"dsId"`
	DsURN     string `json:"dsUrn"`
	DsVersion string `json:"dsVersion"`
	DfID      string `json:"dfId"`
	DfURN     string `json:"dfUrn"`
}

// LinkTable is the structure to dataflow table, one row per structure.
type LinkTable []StructureLink

// BuildLinkTable pairs each data structure of msg with the dataflow whose
// structure reference equals the structure's URN. Structures no dataflow
// uses keep an empty DfID.
func BuildLinkTable(msg *sdmx.Message) LinkTable {
	if msg == nil || msg.Data == nil {
		return nil
	}

	byStructure := make(map[string]sdmx.Dataflow, len(msg.Data.Dataflows))
	for _, df := range msg.Data.Dataflows {
		if _, ok := byStructure[df.Structure]; !ok {
			byStructure[df.Structure] = df
		}
	}

	table := make(LinkTable, 0, len(msg.Data.DataStructures))
	for _, ds := range msg.Data.DataStructures {
		link := StructureLink{DsID: ds.ID, DsURN: ds.SelfURN(), DsVersion: ds.Version}
		if df, ok := byStructure[link.DsURN]; ok {
			link.DfID = df.ID
			link.DfURN = df.SelfURN()
		} else {
			log.Debug(log.CatCategory, "structure without dataflow", "dsId", ds.ID)
		}
		table = append(table, link)
	}
	return table
}

// DataflowIDs lists every linked dataflow once, in table order.
func (t LinkTable) DataflowIDs() []string {
	out := make([]string, 0, len(t))
	seen := make(map[string]bool, len(t))
	for _, l := range t {
		if l.DfID == "" || seen[l.DfID] {
			continue
		}
		seen[l.DfID] = true
		out = append(out, l.DfID)
	}
	return out
}

// DataflowByURN translates a dataflow URN to its ID.
func (t LinkTable) DataflowByURN(urn string) (string, bool) {
	for _, l := range t {
		if l.DfURN == urn && l.DfID != "" {
			return l.DfID, true
		}
	}
	return "", false
}

// StructureOf returns the structure row of dfID.
func (t LinkTable) StructureOf(dfID string) (StructureLink, bool) {
	for _, l := range t {
		if l.DfID == dfID {
			return l, true
		}
	}
	return StructureLink{}, false
}
