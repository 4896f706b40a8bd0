package testutil

// Fixture identifiers of the standard catalogue.
const (
	DfLFS2020 = "DF_LFS_2020_PUF"
	DfLFS2021 = "DF_LFS_2021_PUF"
	DfHBS2021 = "DF_HBS_2021_SUF"

	SchemeDomains = "MICRODATA_DOMAINS"
	SchemeYear    = "MICRODATA_COLLECTION_YEAR"
	SchemeFile    = "MICRODATA_FILE_TYPE"
)

// WithStandardCatalogue adds three microdata dataflows over three category
// schemes.
//
//	DF_LFS_2020_PUF  LFS 2020 PUF  SEX coded, AGE coded, REGION string   DE FR
//	DF_LFS_2021_PUF  LFS 2021 PUF  SEX coded, AGE coded                  AT
//	DF_HBS_2021_SUF  HBS 2021 SUF  SEX coded, AGE integer                DE IT
func (b *Builder) WithStandardCatalogue() *Builder {
	sex := Coded("SEX", "CL_SEX", C("M", "Male"), C("F", "Female"))
	ageBands := Coded("AGE", "CL_AGE", C("Y15-24", "15 to 24 years"), C("Y25-64", "25 to 64 years"))

	return b.
		WithCategoryScheme(SchemeDomains,
			Cat("LFS", "Labour force survey"),
			Cat("SILC", "Income and living conditions"),
			Cat("HBS", "Household budget survey")).
		WithCategoryScheme(SchemeYear,
			Cat("2020", "2020"),
			Cat("2021", "2021")).
		WithCategoryScheme(SchemeFile,
			Cat("PUF", "Public use file"),
			Cat("SUF", "Scientific use file")).
		WithDataflow(DfLFS2020,
			Structure("ANON_LFS_2020_DSD"),
			sex, Roles("SEX", "SEX"), Named("SEX", "Sex", "Sex of the respondent"),
			ageBands, Roles("AGE", "AGE", "TIME"), Named("AGE", "Age", ""),
			Text("REGION", "String"), Named("REGION", "Region", "NUTS region of residence"),
			Countries("DE", "FR"),
			Include("DE", "SEX", "M"),
			Include("ALL", "AGE", "Y15-24"),
			Category(SchemeDomains, "LFS"), Category(SchemeYear, "2020"), Category(SchemeFile, "PUF")).
		WithDataflow(DfLFS2021,
			Structure("ANON_LFS_2021_DSD"),
			sex, Named("SEX", "Sex", "Sex of the respondent"),
			ageBands, Named("AGE", "Age", ""),
			Countries("AT"),
			Category(SchemeDomains, "LFS"), Category(SchemeYear, "2021"), Category(SchemeFile, "PUF")).
		WithDataflow(DfHBS2021,
			Structure("ANON_HBS_2021_DSD"),
			sex, Named("SEX", "Sex", "Sex of the respondent"),
			Text("AGE", "Integer"), Named("AGE", "Age", ""),
			Countries("DE", "IT"),
			Exclude("IT", "SEX", "F"),
			Category(SchemeDomains, "HBS"), Category(SchemeYear, "2021"), Category(SchemeFile, "SUF"))
}
