package constraint

import (
	"github.com/zjrosen/conceptnav/internal/artefact"
)

// CodeRow is one resolved code.
type CodeRow struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Resolve returns the codes of conceptID that country may report, in code
// list order. Regions attached to country add their values to an included or
// excluded bucket; a non-empty included bucket wins, then the excluded bucket
// is subtracted, and with no matching region nothing is returned. CodesMode
// returns the whole code list.
func Resolve(a *artefact.Artefact, set *Set, conceptID, country string) []CodeRow {
	codes, ok := a.CodeListFor(conceptID)
	if !ok {
		return []CodeRow{}
	}

	if country == CodesMode {
		return rows(codes, func(string) bool { return true })
	}

	included := make(map[string]bool)
	excluded := make(map[string]bool)
	if set != nil {
		for _, r := range set.Regions {
			if r.Country != country {
				continue
			}
			bucket := excluded
			if r.Included {
				bucket = included
			}
			for _, v := range r.Values[conceptID] {
				bucket[v] = true
			}
		}
	}

	switch {
	case len(included) > 0:
		return rows(codes, func(id string) bool { return included[id] })
	case len(excluded) > 0:
		return rows(codes, func(id string) bool { return !excluded[id] })
	default:
		return []CodeRow{}
	}
}

func rows(codes artefact.CodeList, keep func(string) bool) []CodeRow {
	out := make([]CodeRow, 0, len(codes))
	for _, c := range codes {
		if keep(c.ID) {
			out = append(out, CodeRow{Code: c.ID, Name: c.Name})
		}
	}
	return out
}
