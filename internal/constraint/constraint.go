// Package constraint parses content constraints into ordered cube regions and
// resolves the codes a country may report for a concept.
package constraint

import (
	"errors"

	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/sdmx"
	"github.com/zjrosen/conceptnav/internal/urn"
)

// ErrMissingConstraintDocument is returned when no constraint set was loaded
// for a dataflow.
var ErrMissingConstraintDocument = errors.New("no constraint document for dataflow")

// Attachment levels of a content constraint.
const (
	AttachedToDataflows           = "dataflows"
	AttachedToProvisionAgreements = "provisionAgreements"
)

const (
	// AllCountries is the synthetic country of dataflow level regions.
	AllCountries = "ALL"

	// CodesMode requests every code of the code list, ignoring regions.
	CodesMode = "codes"
)

// Region is one cube region scoped to a single country.
type Region struct {
	Included   bool
	AttachedTo string
	Country    string
	// Values maps concept ID to the listed code IDs.
	Values map[string][]string
}

// Set holds the regions of one dataflow in source order.
type Set struct {
	DfID    string
	Regions []Region
	// Countries maps concept ID to the countries of every region that lists
	// it. Entries repeat; use it for presence checks only.
	Countries map[string][]string
}

// Parse builds the constraint set of dfID from a references=ancestors
// response. A nil message yields an empty set.
func Parse(dfID string, msg *sdmx.Message) *Set {
	set := &Set{DfID: dfID, Countries: make(map[string][]string)}
	if msg == nil || msg.Data == nil {
		return set
	}

	for _, cc := range msg.Data.ContentConstraints {
		attachedTo, country, ok := attachment(dfID, cc)
		if !ok {
			continue
		}

		for _, cube := range cc.CubeRegions {
			for _, values := range [][]sdmx.ComponentValue{cube.Attributes, cube.KeyValues, cube.Components} {
				if values == nil {
					continue
				}
				set.add(Region{
					Included:   cube.IsIncluded,
					AttachedTo: attachedTo,
					Country:    country,
					Values:     regionValues(values),
				})
			}
		}
	}

	log.Debug(log.CatConstraint, "parsed constraints", "dfId", dfID, "regions", len(set.Regions))
	return set
}

func (s *Set) add(r Region) {
	s.Regions = append(s.Regions, r)
	for conceptID := range r.Values {
		s.Countries[conceptID] = append(s.Countries[conceptID], r.Country)
	}
}

// attachment picks the attachment level and the country the constraint is
// scoped to. With several levels the first one in the document is used.
func attachment(dfID string, cc sdmx.ContentConstraint) (string, string, bool) {
	levels := cc.ConstraintAttachment.Levels()
	if len(levels) == 0 {
		log.Warn(log.CatConstraint, "constraint without attachment", "dfId", dfID, "constraint", cc.ID)
		return "", "", false
	}
	if len(levels) > 1 {
		log.Warn(log.CatConstraint, "constraint attachment has more than one key", "dfId", dfID, "keys", levels, "using", levels[0])
	}

	attachedTo := levels[0]
	if attachedTo == AttachedToDataflows {
		return attachedTo, AllCountries, true
	}

	urns := cc.ConstraintAttachment.URNs(attachedTo)
	if len(urns) == 0 {
		log.Warn(log.CatConstraint, "constraint attachment lists no artefact", "dfId", dfID, "attachedTo", attachedTo)
		return "", "", false
	}
	return attachedTo, urn.CountryFromAgreementID(urns[0]), true
}

func regionValues(items []sdmx.ComponentValue) map[string][]string {
	values := make(map[string][]string, len(items))
	for _, item := range items {
		values[item.ID] = append([]string(nil), item.Values...)
	}
	return values
}
