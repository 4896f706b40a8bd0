// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// BrowserKeyMap defines the keybindings of the concept browser.
type BrowserKeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Actions
	Enter      key.Binding
	ToggleView key.Binding
	Categories key.Binding
	Refresh    key.Binding
	Save       key.Binding
	Logs       key.Binding

	// General
	Back key.Binding
	Help key.Binding
	Quit key.Binding
}

// Browser is the keymap used by the browser model.
var Browser = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "move down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "concept details"),
	),
	ToggleView: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "variables/countries"),
	),
	Categories: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "choose categories"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save selection"),
	),
	Logs: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "logs"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns keybindings for the short help view.
func (k BrowserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.ToggleView, k.Categories, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k BrowserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.ToggleView, k.Categories, k.Refresh, k.Save},
		{k.Logs, k.Help, k.Quit},
	}
}

// PickerKeyMap defines the keybindings of option pickers.
type PickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// Picker is the keymap used by picker overlays.
var Picker = PickerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up", "ctrl+p"),
		key.WithHelp("k/↑", "previous"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down", "ctrl+n"),
		key.WithHelp("j/↓", "next"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// LogViewKeyMap defines the keybindings of the log viewer.
type LogViewKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Clear  key.Binding
	Debug  key.Binding
	Info   key.Binding
	Warn   key.Binding
	Error  key.Binding
	Close  key.Binding
}

// LogView is the keymap used by the log viewer overlay.
var LogView = LogViewKeyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down")),
	Top:    key.NewBinding(key.WithKeys("g")),
	Bottom: key.NewBinding(key.WithKeys("G")),
	Clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	Debug:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "debug")),
	Info:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
	Warn:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "warn")),
	Error:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "error")),
	Close:  key.NewBinding(key.WithKeys("esc", "L"), key.WithHelp("esc", "close")),
}
