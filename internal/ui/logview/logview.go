// Package logview provides an in-app log viewer overlay that shows recent
// log entries without leaving the TUI.
package logview

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/conceptnav/internal/keys"
	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/ui/styles"
)

const (
	// MaxEntries bounds the retained log entries; older ones are dropped.
	MaxEntries = 500

	viewportMaxHeight = 25
	viewportMinHeight = 5
	boxMaxWidth       = 160
	boxMinWidth       = 40
)

// CloseMsg is sent when the overlay closes.
type CloseMsg struct{}

// Model is the log viewer state.
type Model struct {
	visible  bool
	minLevel log.Level
	entries  []log.Entry
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden log viewer showing every level.
func New() Model {
	return Model{minLevel: log.LevelDebug}
}

// Append records e, dropping the oldest entry past MaxEntries.
func (m *Model) Append(e log.Entry) {
	m.entries = append(m.entries, e)
	if over := len(m.entries) - MaxEntries; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
	if m.visible {
		m.refreshViewport()
		m.viewport.GotoBottom()
	}
}

// Len returns the number of retained entries.
func (m Model) Len() int {
	return len(m.entries)
}

// MinLevel returns the active level filter.
func (m Model) MinLevel() log.Level {
	return m.minLevel
}

// Update handles keys while the overlay is visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.LogView.Close):
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, keys.LogView.Clear):
			m.entries = nil
		case key.Matches(msg, keys.LogView.Debug):
			m.minLevel = log.LevelDebug
		case key.Matches(msg, keys.LogView.Info):
			m.minLevel = log.LevelInfo
		case key.Matches(msg, keys.LogView.Warn):
			m.minLevel = log.LevelWarn
		case key.Matches(msg, keys.LogView.Error):
			m.minLevel = log.LevelError
		case key.Matches(msg, keys.LogView.Down):
			m.viewport.ScrollDown(1)
			return m, nil
		case key.Matches(msg, keys.LogView.Up):
			m.viewport.ScrollUp(1)
			return m, nil
		case key.Matches(msg, keys.LogView.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, keys.LogView.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		default:
			return m, nil
		}
		m.refreshViewport()

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}
	return m, nil
}

// View renders the overlay box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	boxWidth := m.boxWidth()
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)
	dividerStyle := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor)
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Logs"))
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.filterHint())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth).
		Render(b.String())
}

// Overlay centres the box on a screen of the last known size.
func (m Model) Overlay() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.View())
}

// Visible reports whether the overlay is shown.
func (m Model) Visible() bool {
	return m.visible
}

// Show makes the overlay visible, scrolled to the newest entry.
func (m *Model) Show() {
	m.visible = true
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// Hide makes the overlay invisible.
func (m *Model) Hide() {
	m.visible = false
}

// SetSize updates the screen size the overlay is laid out for.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.refreshViewport()
}

func (m Model) filtered() []log.Entry {
	var out []log.Entry
	for _, e := range m.entries {
		if e.Level >= m.minLevel {
			out = append(out, e)
		}
	}
	return out
}

func (m Model) content(width int) string {
	entries := m.filtered()
	if len(entries) == 0 {
		return lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Italic(true).
			Render("No logs to display")
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, colorize(e, width))
	}
	return strings.Join(lines, "\n")
}

// refreshViewport rebuilds the viewport for the current size and filter.
// Header, footer and borders take six lines.
func (m *Model) refreshViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	width := m.boxWidth() - 2
	height := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)

	m.viewport = viewport.New(width, height)
	m.viewport.SetContent(m.content(width))
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func colorize(e log.Entry, width int) string {
	line := strings.TrimSuffix(e.Line, "\n")
	if line == "" {
		line = "[" + e.Level.String() + "] [" + string(e.Category) + "] " + e.Message
	}
	if ansi.StringWidth(line) > width {
		line = ansi.Truncate(line, width-3, "...")
	}

	var color lipgloss.TerminalColor
	switch {
	case e.Level >= log.LevelError:
		color = styles.StatusErrorColor
	case e.Level == log.LevelWarn:
		color = styles.StatusWarningColor
	case e.Level == log.LevelInfo:
		color = styles.BorderHighlightFocusColor
	default:
		color = styles.TextMutedColor
	}
	return lipgloss.NewStyle().Foreground(color).Render(line)
}

func (m Model) filterHint() string {
	hint := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	active := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)

	parts := []string{hint.Render("[c] Clear")}
	for _, f := range []struct {
		label string
		level log.Level
	}{
		{"[d] Debug", log.LevelDebug},
		{"[i] Info", log.LevelInfo},
		{"[w] Warn", log.LevelWarn},
		{"[e] Error", log.LevelError},
	} {
		if m.minLevel == f.level {
			parts = append(parts, active.Render(f.label))
		} else {
			parts = append(parts, hint.Render(f.label))
		}
	}
	parts = append(parts, hint.Render("[esc] Close"))
	return strings.Join(parts, "  ")
}
