package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zjrosen/conceptnav/internal/category"
	"github.com/zjrosen/conceptnav/internal/presentation"
)

var (
	selectFlags []string
	formatFlag  string
)

func addSelectFlag(c *cobra.Command) {
	c.Flags().StringArrayVarP(&selectFlags, "select", "s", nil,
		"category choice as SCHEME=CATEGORY, repeatable (default: catalogue.default_selection)")
}

func addFormatFlag(c *cobra.Command) {
	c.Flags().StringVarP(&formatFlag, "format", "f", string(presentation.FormatTable),
		"output format: table or json")
}

// parseSelection turns SCHEME=CATEGORY pairs into a selection. Scheme IDs
// are upper-cased; an empty category clears the scheme.
func parseSelection(pairs []string) (category.Selection, error) {
	sel := make(category.Selection, len(pairs))
	for _, pair := range pairs {
		scheme, id, ok := strings.Cut(pair, "=")
		scheme = strings.ToUpper(strings.TrimSpace(scheme))
		if !ok || scheme == "" {
			return nil, fmt.Errorf("invalid --select %q: want SCHEME=CATEGORY", pair)
		}
		if id = strings.TrimSpace(id); id == "" {
			delete(sel, scheme)
			continue
		}
		sel[scheme] = id
	}
	return sel, nil
}

// selection returns the --select choice, or the configured default when no
// --select was given.
func selection(c *cobra.Command) (category.Selection, error) {
	if !c.Flags().Changed("select") {
		return cfg.Selection(), nil
	}
	return parseSelection(selectFlags)
}

// newFormatter writes to the command's output. Output that is not a terminal
// gets plain markdown.
func newFormatter(c *cobra.Command) (*presentation.Formatter, error) {
	format, err := presentation.ParseFormat(formatFlag)
	if err != nil {
		return nil, err
	}

	w := c.OutOrStdout()
	width := 0
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil { //nolint:gosec // G115: fd fits in int
			width = tw
		}
	}
	style := cfg.UI.MarkdownStyle
	if termenv.NewOutput(w).Profile == termenv.Ascii {
		style = "notty"
	}

	return presentation.NewFormatter(w,
		presentation.WithFormat(format),
		presentation.WithWidth(width),
		presentation.WithMarkdownStyle(style),
	), nil
}

// openView loads the catalogue and refreshes it for the command's selection.
// The caller closes the returned stack.
func openView(ctx context.Context, c *cobra.Command) (*stack, error) {
	sel, err := selection(c)
	if err != nil {
		return nil, err
	}

	s, err := newStack(cfg, purgeFlag)
	if err != nil {
		return nil, err
	}
	if err := s.nav.Load(ctx); err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}
	if _, err := s.nav.Refresh(ctx, sel); err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("refreshing selection: %w", err)
	}
	return s, nil
}
