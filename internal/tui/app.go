package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/leaderboard/internal/config"
	"github.com/jask/leaderboard/internal/leaderboard"
	"github.com/jask/leaderboard/internal/picker"
	"github.com/jask/leaderboard/internal/prefs"
)

// App is the leaderboard screen.
type App struct {
	ctx   context.Context
	store *leaderboard.Store
	cfg   config.Config
	log   *zap.Logger
	tz    *time.Location
	keys  keyMap
	help  help.Model

	query     leaderboard.Query
	rows      []leaderboard.Entry
	rowCursor int
	colCursor int

	modal          modalState
	search         textinput.Model
	editor         textinput.Model
	editingID      string
	editingField   leaderboard.Field
	categoryCursor int
	picker         *picker.Creatable

	status    string
	statusErr bool
	width     int
	height    int

	// savePrefs persists filter/sort changes; nil disables it.
	savePrefs func(prefs.View) error
}

type modalState string

const (
	modalNone          modalState = ""
	modalSearch        modalState = "search"
	modalEditText      modalState = "editText"
	modalCategory      modalState = "category"
	modalPicker        modalState = "picker"
	modalConfirmDelete modalState = "confirmDelete"
)

// Options carries the optional collaborators of App.
type Options struct {
	Logger   *zap.Logger
	Location *time.Location
	// View restores a saved filter/sort selection.
	View *prefs.View
	// SaveView is called whenever filter or sort changes.
	SaveView func(prefs.View) error
}

func New(ctx context.Context, cfg config.Config, store *leaderboard.Store, opts Options) *App {
	tz := opts.Location
	if tz == nil {
		tz = time.UTC
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	search := textinput.New()
	search.Placeholder = "Search leader, runner-up, or notes"
	search.Prompt = "/ "

	editor := textinput.New()
	editor.Prompt = "> "
	editor.CharLimit = 500

	a := &App{
		ctx:       ctx,
		store:     store,
		cfg:       cfg,
		log:       log,
		tz:        tz,
		keys:      newKeyMap(),
		help:      help.New(),
		search:    search,
		editor:    editor,
		savePrefs: opts.SaveView,
	}
	a.query.SortBy = cfg.UI.DefaultSort
	if a.query.SortBy == "" {
		a.query.SortBy = leaderboard.SortByDate
	}
	if v := opts.View; v != nil {
		if v.Category == "" || leaderboard.IsCategory(v.Category) {
			a.query.Category = v.Category
		}
		if slices.Contains(leaderboard.SortKeys, v.SortBy) {
			a.query.SortBy = v.SortBy
		}
	}
	a.refresh()
	return a
}

func (a *App) Init() tea.Cmd { return nil }

// refresh recomputes the derived rows, keeping the cursor on the same entry when possible.
func (a *App) refresh() {
	a.refreshFocus(a.currentID())
}

func (a *App) refreshFocus(id string) {
	a.rows = leaderboard.Derive(a.store.Entries(), a.query)
	if i := slices.IndexFunc(a.rows, func(e leaderboard.Entry) bool { return e.ID == id }); i >= 0 {
		a.rowCursor = i
	}
	if a.rowCursor >= len(a.rows) {
		a.rowCursor = len(a.rows) - 1
	}
	if a.rowCursor < 0 {
		a.rowCursor = 0
	}
}

func (a *App) currentID() string {
	if a.rowCursor < 0 || a.rowCursor >= len(a.rows) {
		return ""
	}
	return a.rows[a.rowCursor].ID
}

func (a *App) currentField() leaderboard.Field {
	return leaderboard.Fields[a.colCursor]
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
		return a, nil
	case errMsg:
		a.setError(m.error)
		return a, nil
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.modal {
		case modalSearch:
			return a.handleSearchKey(m)
		case modalEditText:
			return a.handleEditTextKey(m)
		case modalCategory:
			return a.handleCategoryKey(m)
		case modalPicker:
			return a.handlePickerKey(m)
		case modalConfirmDelete:
			return a.handleConfirmDeleteKey(m)
		}
		return a.handleBrowseKey(m)
	}
	return a, nil
}

func (a *App) handleBrowseKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Up):
		if a.rowCursor > 0 {
			a.rowCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.rowCursor < len(a.rows)-1 {
			a.rowCursor++
		}
	case key.Matches(m, a.keys.Left):
		if a.colCursor > 0 {
			a.colCursor--
		}
	case key.Matches(m, a.keys.Right):
		if a.colCursor < len(leaderboard.Fields)-1 {
			a.colCursor++
		}
	case key.Matches(m, a.keys.Add):
		e, err := a.store.AddEntry(a.ctx)
		a.refreshFocus(e.ID)
		if err != nil {
			a.setError(err)
			return a, nil
		}
		a.setStatus("row added")
	case key.Matches(m, a.keys.Delete):
		if len(a.rows) == 0 {
			a.setStatus("nothing to delete")
			return a, nil
		}
		a.editingID = a.currentID()
		a.modal = modalConfirmDelete
	case key.Matches(m, a.keys.Filter):
		a.cycleFilter(1)
		return a, a.saveViewCmd()
	case key.Matches(m, a.keys.FilterBk):
		a.cycleFilter(-1)
		return a, a.saveViewCmd()
	case key.Matches(m, a.keys.Sort):
		a.query.SortBy = leaderboard.NextSortKey(a.query.SortBy)
		a.refresh()
		a.setStatus("sorted by " + a.query.SortBy)
		return a, a.saveViewCmd()
	case key.Matches(m, a.keys.Search):
		a.modal = modalSearch
		a.search.SetValue(a.query.Search)
		a.search.CursorEnd()
		return a, a.search.Focus()
	case key.Matches(m, a.keys.Edit):
		return a.openEditor()
	}
	return a, nil
}

// cycleFilter steps through "All" followed by every category.
func (a *App) cycleFilter(step int) {
	options := append([]string{""}, leaderboard.Categories...)
	i := slices.Index(options, a.query.Category)
	if i < 0 {
		i = 0
	}
	i = (i + step + len(options)) % len(options)
	a.query.Category = options[i]
	a.refresh()
	a.setStatus("filter: " + filterLabel(a.query.Category))
}

func filterLabel(category string) string {
	if category == "" {
		return "All"
	}
	return category
}

func (a *App) openEditor() (tea.Model, tea.Cmd) {
	if len(a.rows) == 0 {
		a.setStatus("no rows - press a to add one")
		return a, nil
	}
	e := a.rows[a.rowCursor]
	a.editingID = e.ID
	a.editingField = a.currentField()

	switch a.editingField {
	case leaderboard.FieldCategory:
		a.categoryCursor = max(0, slices.Index(leaderboard.Categories, e.Category))
		a.modal = modalCategory
		return a, nil
	case leaderboard.FieldLeader, leaderboard.FieldRunnerUp:
		a.picker = picker.New(fieldTitle(a.editingField), a.store.Tools(), e.Value(a.editingField, ""))
		a.modal = modalPicker
		return a, nil
	case leaderboard.FieldDate:
		a.editor.SetValue(e.Date.In(a.tz).Format(isoDate))
	default:
		a.editor.SetValue(e.Value(a.editingField, ""))
	}
	a.editor.CursorEnd()
	a.modal = modalEditText
	return a, a.editor.Focus()
}

const isoDate = "2006-01-02"

func fieldTitle(f leaderboard.Field) string {
	switch f {
	case leaderboard.FieldDate:
		return "Date"
	case leaderboard.FieldCategory:
		return "Category"
	case leaderboard.FieldLeader:
		return "Leader"
	case leaderboard.FieldRunnerUp:
		return "Runner-up"
	case leaderboard.FieldNotes:
		return "Notes"
	}
	return string(f)
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEnter:
		a.modal = modalNone
		a.search.Blur()
		return a, nil
	case tea.KeyEsc:
		a.modal = modalNone
		a.search.Blur()
		a.search.SetValue("")
		a.query.Search = ""
		a.refresh()
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	a.query.Search = a.search.Value()
	a.refresh()
	return a, cmd
}

func (a *App) handleEditTextKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.closeModal()
		return a, nil
	case tea.KeyEnter:
		value := a.editor.Value()
		if a.editingField == leaderboard.FieldDate {
			// read in the display zone so the value round-trips with what was shown
			t, err := leaderboard.ParseDateIn(value, a.tz)
			if err != nil {
				a.setError(err)
				return a, nil
			}
			value = t.Format(time.RFC3339Nano)
		}
		id, field := a.editingID, a.editingField
		if err := a.store.UpdateField(a.ctx, id, field, value); err != nil {
			a.setError(err)
			if errors.Is(err, leaderboard.ErrInvalidDate) {
				return a, nil
			}
		} else {
			a.setStatus(fieldTitle(field) + " updated")
		}
		a.closeModal()
		a.refreshFocus(id)
		return a, nil
	}
	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(m)
	return a, cmd
}

func (a *App) handleCategoryKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.closeModal()
	case "up", "k":
		if a.categoryCursor > 0 {
			a.categoryCursor--
		}
	case "down", "j":
		if a.categoryCursor < len(leaderboard.Categories)-1 {
			a.categoryCursor++
		}
	case "enter":
		id := a.editingID
		a.applyField(id, leaderboard.FieldCategory, leaderboard.Categories[a.categoryCursor])
		a.closeModal()
		a.refreshFocus(id)
	}
	return a, nil
}

func (a *App) handlePickerKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.picker == nil {
		a.closeModal()
		return a, nil
	}
	if m.String() == "tab" || m.String() == "shift+tab" {
		// focus leaves the picker
		if a.picker.Mode() == picker.ModeEditing {
			if a.picker.Blur().Action != picker.ActionDiscarded {
				a.setStatus("enter saves the new tool, esc discards it")
				return a, nil
			}
		}
		a.closeModal()
		return a.handleBrowseKey(m)
	}

	res, cmd := a.picker.Update(m)
	switch res.Action {
	case picker.ActionSelected, picker.ActionCommitted:
		id := a.editingID
		a.applyField(id, a.editingField, res.Value)
		a.closeModal()
		a.refreshFocus(id)
		return a, nil
	case picker.ActionCancelled:
		a.closeModal()
		return a, nil
	}
	return a, cmd
}

func (a *App) handleConfirmDeleteKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "y", "Y":
		id := a.editingID
		a.closeModal()
		if err := a.store.DeleteEntry(a.ctx, id); err != nil {
			a.setError(err)
		} else {
			a.setStatus("row deleted")
		}
		a.refresh()
	case "n", "N", "esc":
		a.closeModal()
	}
	return a, nil
}

func (a *App) applyField(id string, field leaderboard.Field, value string) {
	if err := a.store.UpdateField(a.ctx, id, field, value); err != nil {
		a.setError(err)
		return
	}
	a.setStatus(fieldTitle(field) + " updated")
}

func (a *App) closeModal() {
	a.modal = modalNone
	a.editor.Blur()
	a.editor.SetValue("")
	a.picker = nil
	a.editingID = ""
	a.editingField = ""
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.log.Warn("action failed", zap.Error(err))
	a.status = "error: " + err.Error()
	a.statusErr = true
}

func (a *App) saveViewCmd() tea.Cmd {
	if a.savePrefs == nil {
		return nil
	}
	v := prefs.View{Category: a.query.Category, SortBy: a.query.SortBy}
	save := a.savePrefs
	return func() tea.Msg {
		if err := save(v); err != nil {
			return errMsg{fmt.Errorf("save view prefs: %w", err)}
		}
		return nil
	}
}

// errMsg carries a failure from a tea.Cmd back to the status line.
type errMsg struct{ error }
