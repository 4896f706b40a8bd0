// Package sdmx defines the subset of the SDMX-JSON structure message that
// conceptnav reads from the registry.
package sdmx

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message is a structure query response. Data is nil when the body carried
// no top-level "data" member.
type Message struct {
	Data *Structures `json:"data"`
}

// Structures holds every artefact list a structure response may carry.
type Structures struct {
	Dataflows           []Dataflow           `json:"dataflows,omitempty"`
	DataStructures      []DataStructure      `json:"dataStructures,omitempty"`
	ConceptSchemes      []ConceptScheme      `json:"conceptSchemes,omitempty"`
	Codelists           []Codelist           `json:"codelists,omitempty"`
	Categorisations     []Categorisation     `json:"categorisations,omitempty"`
	CategorySchemes     []CategoryScheme     `json:"categorySchemes,omitempty"`
	ContentConstraints  []ContentConstraint  `json:"contentConstraints,omitempty"`
	ProvisionAgreements []ProvisionAgreement `json:"provisionAgreements,omitempty"`
}

// Link is a hypermedia reference. The first link of an artefact carries its
// own URN.
type Link struct {
	Rel  string `json:"rel,omitempty"`
	URN  string `json:"urn,omitempty"`
	Href string `json:"href,omitempty"`
}

// Names is the localised form of a name or description.
type Names map[string]string

// Nameable is embedded by artefacts that carry a name and description in
// either the flat or localised form.
type Nameable struct {
	ID           string `json:"id"`
	Version      string `json:"version,omitempty"`
	Name         string `json:"name,omitempty"`
	Names        Names  `json:"names,omitempty"`
	Description  string `json:"description,omitempty"`
	Descriptions Names  `json:"descriptions,omitempty"`
	Links        []Link `json:"links,omitempty"`
}

// Label returns the flat name, falling back to the English localisation.
func (n Nameable) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.Names["en"]
}

// Text returns the flat description, falling back to the English localisation.
func (n Nameable) Text() string {
	if n.Description != "" {
		return n.Description
	}
	return n.Descriptions["en"]
}

// SelfURN returns the URN of the first link, or "".
func (n Nameable) SelfURN() string {
	if len(n.Links) == 0 {
		return ""
	}
	return n.Links[0].URN
}

type Dataflow struct {
	Nameable
	// Structure is the URN of the data structure definition.
	Structure string `json:"structure"`
}

type DataStructure struct {
	Nameable
	Components DataStructureComponents `json:"dataStructureComponents"`
}

type DataStructureComponents struct {
	AttributeList struct {
		Attributes []Component `json:"attributes"`
	} `json:"attributeList"`
	DimensionList struct {
		Dimensions     []Component `json:"dimensions"`
		TimeDimensions []Component `json:"timeDimensions,omitempty"`
	} `json:"dimensionList"`
	MeasureList struct {
		Measures []Component `json:"measures,omitempty"`
	} `json:"measureList"`
}

// Component is a dimension, attribute or measure of a data structure.
type Component struct {
	ID                  string              `json:"id"`
	ConceptIdentity     string              `json:"conceptIdentity,omitempty"`
	ConceptRoles        []string            `json:"conceptRoles,omitempty"`
	LocalRepresentation LocalRepresentation `json:"localRepresentation"`
}

type LocalRepresentation struct {
	// Enumeration is the code list URN for coded components.
	Enumeration string      `json:"enumeration,omitempty"`
	TextFormat  *TextFormat `json:"textFormat,omitempty"`
}

type TextFormat struct {
	TextType  string `json:"textType,omitempty"`
	MaxLength int    `json:"maxLength,omitempty"`
}

type ConceptScheme struct {
	Nameable
	Concepts []Concept `json:"concepts"`
}

type Concept struct {
	Nameable
}

type Codelist struct {
	Nameable
	Codes []Code `json:"codes"`
}

type Code struct {
	Nameable
}

// Categorisation links a category (Source) to a dataflow (Target).
type Categorisation struct {
	Nameable
	Source string `json:"source"`
	Target string `json:"target"`
}

type CategoryScheme struct {
	Nameable
	Categories []Category `json:"categories"`
}

type Category struct {
	Nameable
	Categories []Category `json:"categories,omitempty"`
}

type ProvisionAgreement struct {
	Nameable
}

type ContentConstraint struct {
	Nameable
	ConstraintAttachment Attachment   `json:"constraintAttachment"`
	CubeRegions          []CubeRegion `json:"cubeRegions"`
}

type CubeRegion struct {
	IsIncluded bool             `json:"isIncluded"`
	KeyValues  []ComponentValue `json:"keyValues,omitempty"`
	Attributes []ComponentValue `json:"attributes,omitempty"`
	Components []ComponentValue `json:"components,omitempty"`
}

// ComponentValue lists the constrained values of one component.
type ComponentValue struct {
	ID     string      `json:"id"`
	Values ValueSelect `json:"values"`
}

// ValueSelect is a list of code IDs. The registry emits either plain strings
// or objects with a "value" member.
type ValueSelect []string

// UnmarshalJSON accepts ["M","F"] as well as [{"value":"M"},{"value":"F"}].
func (v *ValueSelect) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("values: %w", err)
	}

	out := make(ValueSelect, 0, len(raw))
	for _, r := range raw {
		r = bytes.TrimSpace(r)
		if len(r) > 0 && r[0] == '{' {
			var obj struct {
				Value string `json:"value"`
			}
			if err := json.Unmarshal(r, &obj); err != nil {
				return fmt.Errorf("values: %w", err)
			}
			out = append(out, obj.Value)
			continue
		}
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return fmt.Errorf("values: %w", err)
		}
		out = append(out, s)
	}
	*v = out
	return nil
}

// Attachment maps an attachment level ("dataflows" or "provisionAgreements")
// to the URNs it constrains. Levels keep the order of the JSON object.
type Attachment []AttachmentLevel

type AttachmentLevel struct {
	Level string
	URNs  []string
}

// Levels returns the attachment levels in document order.
func (a Attachment) Levels() []string {
	out := make([]string, 0, len(a))
	for _, l := range a {
		out = append(out, l.Level)
	}
	return out
}

// URNs returns the URNs listed under level.
func (a Attachment) URNs(level string) []string {
	for _, l := range a {
		if l.Level == level {
			return l.URNs
		}
	}
	return nil
}

func (a *Attachment) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*a = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("constraint attachment: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("constraint attachment: want object, got %v", tok)
	}

	var out Attachment
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("constraint attachment: %w", err)
		}
		level, _ := tok.(string)
		var urns []string
		if err := dec.Decode(&urns); err != nil {
			return fmt.Errorf("constraint attachment %q: %w", level, err)
		}
		out = append(out, AttachmentLevel{Level: level, URNs: urns})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("constraint attachment: %w", err)
	}
	*a = out
	return nil
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(l.Level)
		if err != nil {
			return nil, err
		}
		urns, err := json.Marshal(l.URNs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(urns)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
