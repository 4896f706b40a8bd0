package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the selectable categories of every category scheme",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func init() {
	addFormatFlag(categoriesCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	out, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := newStack(cfg, purgeFlag)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if err := s.nav.Load(ctx); err != nil {
		return fmt.Errorf("loading catalogue: %w", err)
	}
	forms, err := s.nav.Forms(ctx)
	if err != nil {
		return err
	}
	return out.FormatCategories(forms)
}
