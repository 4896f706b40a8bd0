package category

import (
	"sort"
	"strings"
)

// DefaultExcluded are category IDs left out of the selection form.
var DefaultExcluded = []string{"LFS", "SILC"}

// FormOption is one choice of a selector.
type FormOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Form is the selector of one category scheme.
type Form struct {
	SchemeID string       `json:"schemeId"`
	Label    string       `json:"label"`
	Options  []FormOption `json:"options"`
}

// FormOptions groups categories by scheme, drops the excluded IDs and sorts
// each scheme's options by category ID.
func FormOptions(c Collection, excluded []string) []Form {
	skip := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}

	var forms []Form
	index := make(map[string]int)
	for _, it := range c {
		if skip[it.ID] {
			continue
		}
		i, ok := index[it.SchemeID]
		if !ok {
			i = len(forms)
			index[it.SchemeID] = i
			forms = append(forms, Form{SchemeID: it.SchemeID, Label: SelectorLabel(it.SchemeID)})
		}
		forms[i].Options = append(forms[i].Options, FormOption{Value: it.ID, Label: it.Name})
	}

	for i := range forms {
		sort.SliceStable(forms[i].Options, func(a, b int) bool {
			return forms[i].Options[a].Value < forms[i].Options[b].Value
		})
	}
	return forms
}

// SelectorLabel turns MICRODATA_FILE_TYPE into "Microdata File Type Selector".
func SelectorLabel(schemeID string) string {
	words := strings.Split(strings.ToLower(schemeID), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + " Selector"
}
