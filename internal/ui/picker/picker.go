// Package picker provides an option picker used for category and lens
// selection.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/conceptnav/internal/keys"
	"github.com/zjrosen/conceptnav/internal/ui/styles"
)

// maxVisible caps the rendered options; longer lists scroll.
const maxVisible = 12

// Option represents a picker option with label and value.
type Option struct {
	Label string
	Value string
	Hint  string                 // Optional muted text after the label
	Color lipgloss.TerminalColor // Optional color for the label
}

// SelectMsg is sent when an option is confirmed.
type SelectMsg struct {
	PickerID string
	Option   Option
}

// CancelMsg is sent when the picker is cancelled.
type CancelMsg struct {
	PickerID string
}

// Model holds the picker state.
type Model struct {
	id             string
	title          string
	options        []Option
	selected       int
	offset         int
	boxWidth       int // Width of the picker box itself
	viewportWidth  int // Full viewport width for centering
	viewportHeight int // Full viewport height for centering
}

// New creates a new picker with the given title and options. id is echoed
// back in SelectMsg and CancelMsg.
func New(id, title string, options []Option) Model {
	return Model{
		id:      id,
		title:   title,
		options: options,
	}
}

// ID returns the picker's identifier.
func (m Model) ID() string { return m.id }

// SetSize sets the viewport dimensions used to center the box.
func (m Model) SetSize(width, height int) Model {
	m.viewportWidth = width
	m.viewportHeight = height
	return m
}

// SetBoxWidth sets the width of the picker box itself.
func (m Model) SetBoxWidth(width int) Model {
	m.boxWidth = width
	return m
}

// SetSelected sets the initially selected index.
func (m Model) SetSelected(index int) Model {
	if index >= 0 && index < len(m.options) {
		m.selected = index
		m.scroll()
	}
	return m
}

// Selected returns the currently selected option.
func (m Model) Selected() Option {
	if m.selected >= 0 && m.selected < len(m.options) {
		return m.options[m.selected]
	}
	return Option{}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keys.Picker.Down):
		if m.selected < len(m.options)-1 {
			m.selected++
		}
	case key.Matches(keyMsg, keys.Picker.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(keyMsg, keys.Picker.Confirm):
		if len(m.options) == 0 {
			return m, nil
		}
		sel := SelectMsg{PickerID: m.id, Option: m.Selected()}
		return m, func() tea.Msg { return sel }
	case key.Matches(keyMsg, keys.Picker.Cancel):
		id := m.id
		return m, func() tea.Msg { return CancelMsg{PickerID: id} }
	}
	m.scroll()
	return m, nil
}

// scroll keeps the selected option inside the visible window.
func (m *Model) scroll() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+maxVisible {
		m.offset = m.selected - maxVisible + 1
	}
}

// View renders the picker box (without positioning).
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	width := m.boxWidth
	if width == 0 {
		width = 36
	}

	end := min(m.offset+maxVisible, len(m.options))
	var options strings.Builder
	for i := m.offset; i < end; i++ {
		opt := m.options[i]
		labelStyle := lipgloss.NewStyle()
		if opt.Color != nil {
			labelStyle = labelStyle.Foreground(opt.Color)
		}
		var line string
		if i == m.selected {
			line = styles.SelectionIndicatorStyle.Render(">") + labelStyle.Bold(true).Render(opt.Label)
		} else {
			line = " " + labelStyle.Render(opt.Label)
		}
		if opt.Hint != "" {
			line += " " + hintStyle.Render(opt.Hint)
		}
		options.WriteString(line)
		if i < end-1 {
			options.WriteString("\n")
		}
	}
	if len(m.options) > maxVisible {
		options.WriteString("\n" + hintStyle.Render(fmt.Sprintf(" %d/%d", m.selected+1, len(m.options))))
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width)

	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", width))
	content := titleStyle.Render(m.title) + "\n" +
		divider + "\n" +
		options.String()

	return boxStyle.Render(content)
}

// Overlay centers the picker box in the viewport.
func (m Model) Overlay() string {
	return lipgloss.Place(
		m.viewportWidth, m.viewportHeight,
		lipgloss.Center, lipgloss.Center,
		m.View(),
	)
}

// FindIndexByValue returns the index of the option with the given value.
func FindIndexByValue(options []Option, value string) int {
	for i, opt := range options {
		if opt.Value == value {
			return i
		}
	}
	return 0
}
