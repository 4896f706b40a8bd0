// Package urn holds the positional conventions used to pull identifiers out
// of SDMX URNs and artefact IDs.
//
// The registry does not expose these values as separate fields, so every
// caller that needs a code list ID, a concept role or a provision agreement
// country goes through this package rather than splitting strings inline.
package urn

import (
	"regexp"
	"strings"
)

// referencePattern matches the trailing "ID(VERSION).path.to.value" segment.
var referencePattern = regexp.MustCompile(`^(.+)\((.+)\)(.*)$`)

// Reference is the decoded tail of a maintainable-artefact URN.
type Reference struct {
	ID      string
	Version string
	// Value is the last dot-separated segment after the version, empty when
	// the URN points at the artefact itself.
	Value string
}

// ParseReference decodes the final colon-delimited segment of urn.
//
//	urn:sdmx:org.sdmx.infomodel.codelist.Codelist=ESTAT:CL_SEX(1.0)
//	  -> {ID: CL_SEX, Version: 1.0}
//	urn:sdmx:org.sdmx.infomodel.conceptscheme.Concept=ESTAT:CS_GC(1.2).SEX
//	  -> {ID: CS_GC, Version: 1.2, Value: SEX}
func ParseReference(urn string) (Reference, bool) {
	tail := urn
	if i := strings.LastIndex(urn, ":"); i >= 0 {
		tail = urn[i+1:]
	}

	m := referencePattern.FindStringSubmatch(tail)
	if m == nil {
		return Reference{}, false
	}

	path := strings.Split(m[3], ".")
	return Reference{
		ID:      m[1],
		Version: m[2],
		Value:   path[len(path)-1],
	}, true
}

// RoleValue returns the concept a concept-role URN points at, or "" when the
// URN does not parse.
func RoleValue(urn string) string {
	ref, ok := ParseReference(urn)
	if !ok {
		return ""
	}
	return ref.Value
}

// CountryFromAgreementID takes the final "_" segment of a provision agreement
// ID or URN and keeps its first two characters.
//
//	LFS_2020_DE                                -> DE
//	...ProvisionAgreement=ESTAT:SILC_2021_FR(1.0) -> FR
func CountryFromAgreementID(id string) string {
	seg := id
	if i := strings.LastIndex(id, "_"); i >= 0 {
		seg = id[i+1:]
	}
	if len(seg) > 2 {
		seg = seg[:2]
	}
	return seg
}

// StructureLabel shortens a data structure ID for column headers by dropping
// the first "ANON_" and "_DSD" markers.
func StructureLabel(dsID string) string {
	label := strings.Replace(dsID, "ANON_", "", 1)
	return strings.Replace(label, "_DSD", "", 1)
}
