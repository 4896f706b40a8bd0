package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/conceptnav/internal/constraint"
)

var countryFlag string

var codesCmd = &cobra.Command{
	Use:   "codes CONCEPT",
	Short: "Show which codes of a variable each dataflow allows",
	Long: `Resolve the codes of CONCEPT across the selected dataflows. With
--country the codes allowed for that country are shown; the default "codes"
lists every code of the code list.`,
	Args: cobra.ExactArgs(1),
	RunE: runCodes,
}

var detailCmd = &cobra.Command{
	Use:   "detail CONCEPT",
	Short: "Describe a variable and the countries constraining it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetail,
}

func init() {
	codesCmd.Flags().StringVar(&countryFlag, "country", constraint.CodesMode,
		`country code, or "codes" for the full code list`)
	for _, c := range []*cobra.Command{codesCmd, detailCmd} {
		addSelectFlag(c)
		addFormatFlag(c)
		rootCmd.AddCommand(c)
	}
}

func runCodes(cmd *cobra.Command, args []string) error {
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

	table, err := s.nav.CodeTable(ctx, args[0], countryFlag)
	if err != nil {
		return err
	}
	return out.FormatCodes(table.Title, table.Rows, table.Columns)
}

func runDetail(cmd *cobra.Command, args []string) error {
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

	d, err := s.nav.ConceptDetail(ctx, args[0])
	if err != nil {
		return err
	}
	return out.FormatDetail(d)
}
