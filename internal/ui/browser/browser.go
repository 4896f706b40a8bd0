// Package browser contains the interactive concept browser.
//
// The browser shows either the concepts of the matched dataflows ("Usage of
// variables") or the countries taking part in them ("Participation of
// Countries"). A category picker per scheme narrows the dataflows, enter on a
// concept opens its detail and a lens of the detail opens the code
// appearance table.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/conceptnav/internal/category"
	"github.com/zjrosen/conceptnav/internal/keys"
	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/navigator"
	"github.com/zjrosen/conceptnav/internal/presentation"
	"github.com/zjrosen/conceptnav/internal/ui/logview"
	"github.com/zjrosen/conceptnav/internal/ui/markdown"
	"github.com/zjrosen/conceptnav/internal/ui/picker"
	"github.com/zjrosen/conceptnav/internal/ui/styles"
)

// Service is the part of the navigator the browser drives.
type Service interface {
	Load(ctx context.Context) error
	Forms(ctx context.Context) ([]category.Form, error)
	Refresh(ctx context.Context, sel category.Selection) (navigator.View, error)
	ConceptRows() []presentation.ConceptRow
	ConceptColumns() []presentation.Column
	CountryRows(ctx context.Context) []presentation.CountryRow
	CountryColumns(ctx context.Context) []presentation.Column
	ConceptDetail(ctx context.Context, conceptID string) (presentation.Detail, error)
	CodeTable(ctx context.Context, conceptID, country string) (navigator.CodeTable, error)
}

// Table titles of the two top-level views.
const (
	TitleConcepts  = "Usage of variables"
	TitleCountries = "Participation of Countries"
)

const (
	schemePickerID = "scheme"
	lensPickerID   = "lens"
)

type tableKind int

const (
	kindConcepts tableKind = iota
	kindCountries
)

type screen int

const (
	screenTable screen = iota
	screenPickScheme
	screenPickCategory
	screenDetail
	screenCodes
)

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
)

// Config carries the browser's startup state and hooks.
type Config struct {
	// Selection is applied on the first refresh.
	Selection category.Selection
	// MarkdownStyle is the glamour style of the detail pane.
	MarkdownStyle string
	// SaveSelection persists the current selection; nil disables ctrl+s.
	SaveSelection func(category.Selection) error
	// Logs feeds the log viewer and puts warnings in the status bar when set.
	Logs *log.LogListener
}

// Messages produced by the browser's commands.
type (
	loadedMsg struct {
		forms []category.Form
		err   error
	}
	refreshedMsg struct {
		view navigator.View
		err  error
	}
	detailMsg struct {
		detail   presentation.Detail
		rendered string
		err      error
	}
	codesMsg struct {
		table navigator.CodeTable
		lens  string
		err   error
	}
	savedMsg struct {
		err error
	}
)

// Model is the browser state.
type Model struct {
	ctx context.Context
	svc Service
	cfg Config

	width  int
	height int

	screen  screen
	kind    tableKind
	loading bool
	loaded  bool

	forms     []category.Form
	selection category.Selection
	view      navigator.View

	table   table.Model
	spinner spinner.Model
	help    help.Model

	picker picker.Model
	lenses picker.Model
	logs   logview.Model

	detail         presentation.Detail
	detailRendered string
	codes          navigator.CodeTable
	codesLens      string

	status      string
	statusLevel statusLevel
}

// New creates the browser over svc. ctx bounds every registry call the
// browser triggers.
func New(ctx context.Context, svc Service, cfg Config) Model {
	sel := make(category.Selection, len(cfg.Selection))
	for k, v := range cfg.Selection {
		sel[k] = v
	}

	t := table.New(table.WithFocused(true))
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.BorderDefaultColor).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(styles.SelectionIndicatorColor).
		Background(styles.BorderHighlightFocusColor).
		Bold(false)
	t.SetStyles(ts)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.SpinnerColor)),
	)

	return Model{
		ctx:       ctx,
		svc:       svc,
		cfg:       cfg,
		selection: sel,
		table:     t,
		spinner:   sp,
		help:      help.New(),
		logs:      logview.New(),
		loading:   true,
		status:    "Loading catalogue…",
	}
}

// Init loads the catalogue and starts the spinner and log listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadCmd()}
	if m.cfg.Logs != nil {
		cmds = append(cmds, m.cfg.Logs.Listen())
	}
	return tea.Batch(cmds...)
}

// Selection returns the current category selection.
func (m Model) Selection() category.Selection {
	return m.selection
}

// Status returns the status bar text.
func (m Model) Status() string {
	return m.status
}

func (m Model) loadCmd() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		if err := svc.Load(ctx); err != nil {
			return loadedMsg{err: err}
		}
		forms, err := svc.Forms(ctx)
		return loadedMsg{forms: forms, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	sel := make(category.Selection, len(m.selection))
	for k, v := range m.selection {
		sel[k] = v
	}
	return func() tea.Msg {
		view, err := svc.Refresh(ctx, sel)
		return refreshedMsg{view: view, err: err}
	}
}

func (m Model) detailCmd(conceptID string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	width, style := m.contentWidth(), m.cfg.MarkdownStyle
	return func() tea.Msg {
		d, err := svc.ConceptDetail(ctx, conceptID)
		if err != nil {
			return detailMsg{err: err}
		}
		rendered := d.Markdown()
		if r, rerr := markdown.New(width, style); rerr == nil {
			if out, rerr := r.Render(rendered); rerr == nil {
				rendered = out
			}
		} else {
			log.Warn(log.CatUI, "markdown renderer unavailable", "style", style, "error", rerr)
		}
		return detailMsg{detail: d, rendered: strings.TrimRight(rendered, "\n")}
	}
}

func (m Model) codesCmd(conceptID, lens string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		t, err := svc.CodeTable(ctx, conceptID, lens)
		return codesMsg{table: t, lens: lens, err: err}
	}
}

func (m Model) saveCmd() tea.Cmd {
	save, sel := m.cfg.SaveSelection, m.selection
	return func() tea.Msg {
		return savedMsg{err: save(sel)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.picker = m.picker.SetSize(msg.Width, msg.Height)
		m.logs.SetSize(msg.Width, msg.Height)
		m.resizeTable()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case log.LogEvent:
		m.logs.Append(msg.Payload)
		if msg.Payload.Level >= log.LevelWarn {
			level := statusWarn
			if msg.Payload.Level >= log.LevelError {
				level = statusError
			}
			m.setStatus(level, fmt.Sprintf("[%s] %s", msg.Payload.Category, msg.Payload.Message))
		}
		if m.cfg.Logs == nil {
			return m, nil
		}
		return m, m.cfg.Logs.Listen()

	case loadedMsg:
		if msg.err != nil {
			m.loading = false
			m.setStatus(statusError, "Loading catalogue failed: "+msg.err.Error())
			return m, nil
		}
		m.forms = msg.forms
		m.loaded = true
		m.status = "Matching dataflows…"
		return m, m.refreshCmd()

	case refreshedMsg:
		m.loading = false
		if msg.err != nil {
			// the tables keep showing the last good view
			m.setStatus(statusError, "Refresh failed: "+msg.err.Error())
			return m, nil
		}
		m.view = msg.view
		m.rebuildTable()
		m.setStatus(statusInfo, fmt.Sprintf("%d dataflows, %d concepts", len(msg.view.Dataflows), msg.view.Concepts.Len()))
		return m, nil

	case detailMsg:
		m.loading = false
		if msg.err != nil {
			m.setStatus(statusError, msg.err.Error())
			return m, nil
		}
		m.detail = msg.detail
		m.detailRendered = msg.rendered
		m.lenses = picker.New(lensPickerID, "Code lists of "+msg.detail.ID, lensOptions(msg.detail)).SetBoxWidth(m.contentWidth() - 2)
		m.screen = screenDetail
		m.setStatus(statusInfo, "")
		return m, nil

	case codesMsg:
		m.loading = false
		if msg.err != nil {
			m.setStatus(statusError, msg.err.Error())
			return m, nil
		}
		m.codes = msg.table
		m.codesLens = msg.lens
		m.screen = screenCodes
		m.rebuildTable()
		m.setStatus(statusInfo, fmt.Sprintf("%d codes", len(msg.table.Rows)))
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setStatus(statusError, "Saving selection failed: "+msg.err.Error())
		} else {
			m.setStatus(statusInfo, "Selection saved")
		}
		return m, nil

	case logview.CloseMsg:
		return m, nil

	case picker.SelectMsg:
		return m.handlePick(msg)

	case picker.CancelMsg:
		switch msg.PickerID {
		case lensPickerID:
			m.screen = screenTable
			m.rebuildTable()
		case schemePickerID:
			m.screen = screenTable
		default:
			m.screen = screenPickScheme
			m.picker = m.schemePicker(msg.PickerID)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.logs.Visible() {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}
	if key.Matches(msg, keys.Browser.Logs) {
		m.logs.Show()
		return m, nil
	}

	switch m.screen {
	case screenPickScheme, screenPickCategory:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case screenDetail:
		var cmd tea.Cmd
		m.lenses, cmd = m.lenses.Update(msg)
		if key.Matches(msg, keys.Browser.Quit) {
			return m, tea.Quit
		}
		return m, cmd

	case screenCodes:
		if key.Matches(msg, keys.Browser.Back) {
			m.screen = screenDetail
			m.rebuildTable()
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, keys.Browser.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Browser.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizeTable()
		return m, nil
	}

	if m.screen != screenTable {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Browser.ToggleView):
		if m.kind == kindConcepts {
			m.kind = kindCountries
		} else {
			m.kind = kindConcepts
		}
		m.rebuildTable()
		return m, nil

	case key.Matches(msg, keys.Browser.Categories):
		if len(m.forms) == 0 {
			return m, nil
		}
		m.screen = screenPickScheme
		m.picker = m.schemePicker("")
		return m, nil

	case key.Matches(msg, keys.Browser.Refresh):
		if !m.loaded {
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd())

	case key.Matches(msg, keys.Browser.Save):
		if m.cfg.SaveSelection == nil {
			m.setStatus(statusWarn, "No config file to save the selection to")
			return m, nil
		}
		return m, m.saveCmd()

	case key.Matches(msg, keys.Browser.Enter):
		if m.kind != kindConcepts {
			return m, nil
		}
		row := m.table.SelectedRow()
		if len(row) == 0 {
			return m, nil
		}
		m.loading = true
		m.status = "Loading " + row[0] + "…"
		return m, tea.Batch(m.spinner.Tick, m.detailCmd(row[0]))
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handlePick(msg picker.SelectMsg) (tea.Model, tea.Cmd) {
	switch msg.PickerID {
	case lensPickerID:
		m.loading = true
		m.status = "Resolving codes…"
		return m, tea.Batch(m.spinner.Tick, m.codesCmd(m.detail.ID, msg.Option.Value))

	case schemePickerID:
		form, ok := m.form(msg.Option.Value)
		if !ok {
			m.screen = screenTable
			return m, nil
		}
		m.screen = screenPickCategory
		m.picker = categoryPicker(form, m.selection[form.SchemeID]).SetSize(m.width, m.height)
		return m, nil
	}

	// a category picker is identified by its scheme
	if msg.Option.Value == "" {
		delete(m.selection, msg.PickerID)
	} else {
		m.selection[msg.PickerID] = msg.Option.Value
	}
	m.screen = screenTable
	m.loading = true
	m.status = "Matching dataflows…"
	log.Debug(log.CatUI, "selection changed", "scheme", msg.PickerID, "category", msg.Option.Value)
	return m, tea.Batch(m.spinner.Tick, m.refreshCmd())
}

func (m Model) form(schemeID string) (category.Form, bool) {
	for _, f := range m.forms {
		if f.SchemeID == schemeID {
			return f, true
		}
	}
	return category.Form{}, false
}

// schemePicker lists the schemes with their current choice, preselecting
// current.
func (m Model) schemePicker(current string) picker.Model {
	options := make([]picker.Option, 0, len(m.forms))
	for _, f := range m.forms {
		choice := m.selection[f.SchemeID]
		if choice == "" {
			choice = "any"
		}
		options = append(options, picker.Option{Label: f.Label, Value: f.SchemeID, Hint: choice})
	}
	return picker.New(schemePickerID, "Categories", options).
		SetSelected(picker.FindIndexByValue(options, current)).
		SetBoxWidth(48).
		SetSize(m.width, m.height)
}

func categoryPicker(f category.Form, current string) picker.Model {
	options := make([]picker.Option, 0, len(f.Options)+1)
	options = append(options, picker.Option{Label: "(any)", Value: ""})
	for _, o := range f.Options {
		options = append(options, picker.Option{Label: o.Label, Value: o.Value, Hint: o.Value})
	}
	return picker.New(f.SchemeID, f.Label, options).
		SetSelected(picker.FindIndexByValue(options, current)).
		SetBoxWidth(48)
}

func lensOptions(d presentation.Detail) []picker.Option {
	options := make([]picker.Option, 0, len(d.Lenses))
	for _, lens := range d.Lenses {
		label := lens
		if d.HasCodeList() && lens == d.Lenses[0] {
			label = "All codes"
		}
		options = append(options, picker.Option{Label: label, Value: lens})
	}
	return options
}

func (m *Model) setStatus(level statusLevel, text string) {
	m.statusLevel = level
	m.status = text
}

// Err reports whether the status bar currently shows an error.
func (m Model) Err() error {
	if m.statusLevel == statusError {
		return errors.New(m.status)
	}
	return nil
}
