package browser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/conceptnav/internal/keys"
	"github.com/zjrosen/conceptnav/internal/presentation"
	"github.com/zjrosen/conceptnav/internal/ui/styles"
)

const (
	maxNameWidth = 32
	minWidth     = 40
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.logs.Visible() {
		return m.logs.Overlay()
	}

	switch m.screen {
	case screenPickScheme, screenPickCategory:
		return m.picker.Overlay()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(styles.StatusBarStyle.Render(m.help.View(keys.Browser)))
	return b.String()
}

func (m Model) renderHeader() string {
	var parts []string
	for _, f := range m.forms {
		if id := m.selection[f.SchemeID]; id != "" {
			parts = append(parts, id)
		}
	}
	scope := "all dataflows"
	if len(parts) > 0 {
		scope = strings.Join(parts, " · ")
	}
	return styles.TitleStyle.Render("conceptnav") + styles.SubtitleStyle.Render(scope)
}

func (m Model) renderBody() string {
	width := m.contentWidth()
	switch m.screen {
	case screenDetail:
		lines := strings.Split(m.detailRendered, "\n")
		lensBox := m.lenses.View()
		room := max(m.bodyHeight()-lipgloss.Height(lensBox)-2, 1)
		if len(lines) > room {
			lines = lines[:room]
		}
		lines = append(lines, strings.Split(lensBox, "\n")...)
		return styles.RenderSection(lines, m.detail.ID, m.detail.Name, width, true)

	case screenCodes:
		return styles.RenderSection(strings.Split(m.table.View(), "\n"), m.codes.Title, "esc to go back", width, true)
	}

	title, hint := TitleConcepts, fmt.Sprintf("%d dataflows", len(m.view.Dataflows))
	if m.kind == kindCountries {
		title = TitleCountries
	}
	return styles.RenderSection(strings.Split(m.table.View(), "\n"), title, hint, width, true)
}

func (m Model) renderStatus() string {
	text := m.status
	if m.loading {
		text = m.spinner.View() + " " + text
	}
	switch m.statusLevel {
	case statusError:
		return styles.StatusErrorStyle.Render(text)
	case statusWarn:
		return styles.StatusWarnStyle.Render(text)
	default:
		return styles.StatusBarStyle.Render(text)
	}
}

func (m Model) contentWidth() int {
	return max(m.width, minWidth)
}

// bodyHeight is the room between the header and the status and help lines.
func (m Model) bodyHeight() int {
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = 4
	}
	return max(m.height-3-helpHeight-2, 3)
}

func (m *Model) resizeTable() {
	m.table.SetWidth(m.contentWidth() - 2)
	// header row and its border
	m.table.SetHeight(max(m.bodyHeight()-2, 1))
}

// rebuildTable swaps in the columns and rows of the current screen. Rows are
// cleared before the columns change so no row is rendered against a column
// set of another length.
func (m *Model) rebuildTable() {
	var cols []table.Column
	var rows []table.Row
	switch {
	case m.screen == screenCodes:
		cols, rows = codeTable(m.codes.Columns, m.codes.Rows)
	case m.kind == kindCountries:
		cols, rows = countryTable(m.svc.CountryColumns(m.ctx), m.svc.CountryRows(m.ctx))
	default:
		cols, rows = conceptTable(m.svc.ConceptColumns(), m.svc.ConceptRows())
	}
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
	m.resizeTable()
}

func conceptTable(dfCols []presentation.Column, data []presentation.ConceptRow) ([]table.Column, []table.Row) {
	cols := []table.Column{{Title: "ID"}, {Title: "Name"}, {Title: "Roles"}}
	for _, c := range dfCols {
		cols = append(cols, table.Column{Title: c.Label})
	}
	rows := make([]table.Row, 0, len(data))
	for _, r := range data {
		row := table.Row{r.ConceptID, r.ConceptName, r.ConceptRoles}
		for _, c := range dfCols {
			row = append(row, r.Dataflows[c.DfID])
		}
		rows = append(rows, row)
	}
	return fit(cols, rows), rows
}

func countryTable(dfCols []presentation.Column, data []presentation.CountryRow) ([]table.Column, []table.Row) {
	cols := []table.Column{{Title: "Country"}}
	for _, c := range dfCols {
		cols = append(cols, table.Column{Title: c.Label})
	}
	sorted := append([]presentation.CountryRow(nil), data...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CountryCode < sorted[j].CountryCode })
	rows := make([]table.Row, 0, len(sorted))
	for _, r := range sorted {
		row := table.Row{r.CountryCode}
		for _, c := range dfCols {
			row = append(row, r.Dataflows[c.DfID])
		}
		rows = append(rows, row)
	}
	return fit(cols, rows), rows
}

func codeTable(dfCols []presentation.Column, data []presentation.CodeRow) ([]table.Column, []table.Row) {
	cols := []table.Column{{Title: "Code"}, {Title: "Name"}}
	for _, c := range dfCols {
		cols = append(cols, table.Column{Title: c.Label})
	}
	rows := make([]table.Row, 0, len(data))
	for _, r := range data {
		row := table.Row{r.Code, r.Name}
		for _, c := range dfCols {
			row = append(row, r.Dataflows[c.DfID])
		}
		rows = append(rows, row)
	}
	return fit(cols, rows), rows
}

// fit sizes each column to its widest cell. The name column is capped at
// maxNameWidth.
func fit(cols []table.Column, rows []table.Row) []table.Column {
	for i := range cols {
		w := runewidth.StringWidth(cols[i].Title)
		for _, r := range rows {
			w = max(w, runewidth.StringWidth(r[i]))
		}
		if cols[i].Title == "Name" {
			w = min(w, maxNameWidth)
		}
		cols[i].Width = w
	}
	return cols
}
