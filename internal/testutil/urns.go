package testutil

import "fmt"

// Agency owns every fixture artefact.
const Agency = "ESTAT"

// GeneralConceptsScheme is the scheme fixture concepts can be filed under to
// be left out of name extraction.
const GeneralConceptsScheme = "CS_ESTAT_GENERAL_CONCEPTS"

func DataflowURN(id string) string {
	return fmt.Sprintf("urn:sdmx:org.sdmx.infomodel.datastructure.Dataflow=%s:%s(1.0)", Agency, id)
}

func DataStructureURN(id string) string {
	return fmt.Sprintf("urn:sdmx:org.sdmx.infomodel.datastructure.DataStructure=%s:%s(1.0)", Agency, id)
}

func CodelistURN(id string) string {
	return fmt.Sprintf("urn:sdmx:org.sdmx.infomodel.codelist.Codelist=%s:%s(1.0)", Agency, id)
}

func ConceptURN(scheme, id string) string {
	return fmt.Sprintf("urn:sdmx:org.sdmx.infomodel.conceptscheme.Concept=%s:%s(1.0).%s", Agency, scheme, id)
}

func CategorySchemeURN(id string) string {
	return fmt.Sprintf("urn:sdmx:org.sdmx.infomodel.categoryscheme.CategoryScheme=%s:%s(1.0)", Agency, id)
}

func CategoryURN(scheme, id string) string {
	return fmt.Sprintf("urn:sdmx:org.sdmx.infomodel.categoryscheme.Category=%s:%s(1.0).%s", Agency, scheme, id)
}

func AgreementURN(id string) string {
	return fmt.Sprintf("urn:sdmx:org.sdmx.infomodel.registry.ProvisionAgreement=%s:%s(1.0)", Agency, id)
}

// AgreementID names the provision agreement of country for dfID so that its
// last "_" segment starts with the country code.
func AgreementID(dfID, country string) string {
	return dfID + "_" + country
}
