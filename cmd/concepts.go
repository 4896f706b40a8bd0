package cmd

import (
	"github.com/spf13/cobra"
)

var conceptsCmd = &cobra.Command{
	Use:   "concepts",
	Short: "List the variables of the selected dataflows",
	Long: `List every variable used by the selected dataflows, with its general
concept roles. Each dataflow column shows "c" for a coded variable and "t"
for free text.`,
	Args: cobra.NoArgs,
	RunE: runConcepts,
}

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the countries taking part in the selected dataflows",
	Args:  cobra.NoArgs,
	RunE:  runCountries,
}

func init() {
	for _, c := range []*cobra.Command{conceptsCmd, countriesCmd} {
		addSelectFlag(c)
		addFormatFlag(c)
		rootCmd.AddCommand(c)
	}
}

func runConcepts(cmd *cobra.Command, _ []string) error {
	out, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := openView(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	return out.FormatConcepts(s.nav.ConceptRows(), s.nav.ConceptColumns())
}

func runCountries(cmd *cobra.Command, _ []string) error {
	out, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := openView(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	return out.FormatCountries(s.nav.CountryRows(ctx), s.nav.CountryColumns(ctx))
}
