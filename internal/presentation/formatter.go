package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/conceptnav/internal/category"
	"github.com/zjrosen/conceptnav/internal/log"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table or json)", s)
	}
}

const (
	defaultWidth     = 120
	maxNameWidth     = 40
	maxMarkWidth     = 12
	descriptionWidth = 60
)

// Formatter handles output formatting
type Formatter struct {
	writer        io.Writer
	format        Format
	width         int
	markdownStyle string
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

func WithFormat(f Format) FormatterOption {
	return func(fm *Formatter) { fm.format = f }
}

// WithWidth sets the wrap width of rendered markdown.
func WithWidth(w int) FormatterOption {
	return func(fm *Formatter) {
		if w > 0 {
			fm.width = w
		}
	}
}

// WithMarkdownStyle selects the glamour style, "dark" or "light".
func WithMarkdownStyle(style string) FormatterOption {
	return func(fm *Formatter) { fm.markdownStyle = style }
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, opts ...FormatterOption) *Formatter {
	f := &Formatter{
		writer:        writer,
		format:        FormatTable,
		width:         defaultWidth,
		markdownStyle: "dark",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FormatConcepts writes the concept table.
func (f *Formatter) FormatConcepts(rows []ConceptRow, cols []Column) error {
	if f.format == FormatJSON {
		return f.writeJSON(rows)
	}

	headers := append([]string{"roles", "Variable ID", "Variable Name"}, labels(cols)...)
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := []string{r.ConceptRoles, r.ConceptID, truncate(r.ConceptName, maxNameWidth)}
		cells = append(cells, append(line, marks(r.Dataflows, cols)...))
	}
	return f.writeTable(headers, cells)
}

// FormatCountries writes the country participation table.
func (f *Formatter) FormatCountries(rows []CountryRow, cols []Column) error {
	if f.format == FormatJSON {
		return f.writeJSON(rows)
	}

	headers := append([]string{"Country"}, labels(cols)...)
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, append([]string{r.CountryCode}, marks(r.Dataflows, cols)...))
	}
	return f.writeTable(headers, cells)
}

// FormatCodes writes a code appearance table under title.
func (f *Formatter) FormatCodes(title string, rows []CodeRow, cols []Column) error {
	if f.format == FormatJSON {
		return f.writeJSON(rows)
	}

	if _, err := fmt.Fprintln(f.writer, lipgloss.NewStyle().Bold(true).Render(title)); err != nil {
		return err
	}
	headers := append([]string{"id", "Code Name"}, labels(cols)...)
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := []string{r.Code, wordwrap.String(r.Name, descriptionWidth)}
		cells = append(cells, append(line, marks(r.Dataflows, cols)...))
	}
	return f.writeTable(headers, cells)
}

// FormatCategories writes the selector of every category scheme.
func (f *Formatter) FormatCategories(forms []category.Form) error {
	if f.format == FormatJSON {
		return f.writeJSON(forms)
	}

	for i, form := range forms {
		if i > 0 {
			if _, err := fmt.Fprintln(f.writer); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(f.writer, lipgloss.NewStyle().Bold(true).Render(form.Label)); err != nil {
			return err
		}
		cells := make([][]string, 0, len(form.Options))
		for _, opt := range form.Options {
			cells = append(cells, []string{opt.Value, truncate(opt.Label, maxNameWidth)})
		}
		if err := f.writeTable([]string{"id", "name"}, cells); err != nil {
			return err
		}
	}
	return nil
}

// FormatDetail writes a concept detail, rendered through glamour in table
// mode.
func (f *Formatter) FormatDetail(d Detail) error {
	if f.format == FormatJSON {
		return f.writeJSON(d)
	}

	out, err := RenderMarkdown(d.Markdown(), f.width, f.markdownStyle)
	if err != nil {
		return err
	}
	_, err = io.WriteString(f.writer, out)
	return err
}

// RenderMarkdown renders md for a terminal of the given width.
func RenderMarkdown(md string, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}

// FormatResult writes any value as JSON.
func (f *Formatter) FormatResult(result any) error {
	return f.writeJSON(result)
}

func (f *Formatter) writeJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *Formatter) writeTable(headers []string, rows [][]string) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	out := t.Render()
	if w := widest(out); w > f.width {
		log.Debug(log.CatUI, "table wider than output", "width", w, "limit", f.width)
	}
	_, err := fmt.Fprintln(f.writer, out)
	return err
}

func labels(cols []Column) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, truncate(c.Label, maxMarkWidth))
	}
	return out
}

func marks(m map[string]string, cols []Column) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, m[c.DfID])
	}
	return out
}

// truncate cuts s to width display cells.
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// widest returns the display width of the longest line of s.
func widest(s string) int {
	w := 0
	for _, line := range strings.Split(s, "\n") {
		w = max(w, ansi.StringWidth(line))
	}
	return w
}
