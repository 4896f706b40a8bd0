package testutil

// CodeData is one code of a fixture code list.
type CodeData struct {
	ID   string
	Name string
}

// C creates a CodeData.
func C(id, name string) CodeData {
	return CodeData{ID: id, Name: name}
}

// CategoryData is a fixture category with optional subcategories.
type CategoryData struct {
	ID            string
	Name          string
	Subcategories []CategoryData
}

// Cat creates a CategoryData.
func Cat(id, name string, subs ...CategoryData) CategoryData {
	return CategoryData{ID: id, Name: name, Subcategories: subs}
}

type componentData struct {
	id          string
	codelist    string
	codes       []CodeData
	textType    string
	hasFormat   bool
	attribute   bool
	roles       []string
	name        string
	description string
	general     bool
}

type constraintData struct {
	country   string
	included  bool
	conceptID string
	values    []string
	attribute bool
}

type categoryRef struct {
	scheme string
	id     string
}

// dataflowData holds everything one fixture dataflow contributes.
type dataflowData struct {
	id          string
	dsID        string
	components  []componentData
	countries   []string
	constraints []constraintData
	categories  []categoryRef
}

func defaultDataflow(id string) dataflowData {
	return dataflowData{id: id, dsID: "DSD_" + id}
}

func (d *dataflowData) component(id string) *componentData {
	for i := range d.components {
		if d.components[i].id == id {
			return &d.components[i]
		}
	}
	d.components = append(d.components, componentData{id: id, name: id})
	return &d.components[len(d.components)-1]
}

// DataflowOption configures a dataflow during builder setup.
type DataflowOption func(*dataflowData)

// Structure sets the data structure ID.
func Structure(dsID string) DataflowOption {
	return func(d *dataflowData) { d.dsID = dsID }
}

// Coded adds a dimension backed by code list clID.
func Coded(conceptID, clID string, codes ...CodeData) DataflowOption {
	return func(d *dataflowData) {
		c := d.component(conceptID)
		c.codelist = clID
		c.codes = codes
	}
}

// Text adds a free-text dimension with the given text type.
func Text(conceptID, textType string) DataflowOption {
	return func(d *dataflowData) {
		c := d.component(conceptID)
		c.textType = textType
		c.hasFormat = true
	}
}

// Unformatted adds a dimension with no representation at all.
func Unformatted(conceptID string) DataflowOption {
	return func(d *dataflowData) { d.component(conceptID) }
}

// AsAttribute files conceptID under the attribute list instead of the
// dimension list.
func AsAttribute(conceptID string) DataflowOption {
	return func(d *dataflowData) { d.component(conceptID).attribute = true }
}

// Roles attaches general-concept roles to conceptID.
func Roles(conceptID string, roles ...string) DataflowOption {
	return func(d *dataflowData) {
		c := d.component(conceptID)
		c.roles = append(c.roles, roles...)
	}
}

// Named sets the scheme name and description of conceptID.
func Named(conceptID, name, description string) DataflowOption {
	return func(d *dataflowData) {
		c := d.component(conceptID)
		c.name = name
		c.description = description
	}
}

// General files conceptID under the general concepts scheme.
func General(conceptID string) DataflowOption {
	return func(d *dataflowData) { d.component(conceptID).general = true }
}

// Countries adds one provision agreement per country.
func Countries(countries ...string) DataflowOption {
	return func(d *dataflowData) { d.countries = append(d.countries, countries...) }
}

// Include adds a content constraint including values of conceptID for
// country. Country "ALL" attaches the constraint to the dataflow.
func Include(country, conceptID string, values ...string) DataflowOption {
	return func(d *dataflowData) {
		d.constraints = append(d.constraints, constraintData{country: country, included: true, conceptID: conceptID, values: values})
	}
}

// Exclude is Include for an excluding region.
func Exclude(country, conceptID string, values ...string) DataflowOption {
	return func(d *dataflowData) {
		d.constraints = append(d.constraints, constraintData{country: country, conceptID: conceptID, values: values})
	}
}

// IncludeAttribute is Include with the values listed under "attributes".
func IncludeAttribute(country, conceptID string, values ...string) DataflowOption {
	return func(d *dataflowData) {
		d.constraints = append(d.constraints, constraintData{country: country, included: true, conceptID: conceptID, values: values, attribute: true})
	}
}

// Category files the dataflow under category id of scheme.
func Category(scheme, id string) DataflowOption {
	return func(d *dataflowData) { d.categories = append(d.categories, categoryRef{scheme: scheme, id: id}) }
}
