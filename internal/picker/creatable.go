// Package picker implements the creatable pick-list used for tool-name cells:
// choose a known name or switch to a text buffer and type a new one.
package picker

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/leaderboard/internal/leaderboard"
)

// Mode is the picker state. The zero value is PickList.
type Mode int

const (
	ModePickList Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "picklist"
}

// Action is what a key press did to the picker.
type Action int

const (
	ActionNone Action = iota
	ActionMoved
	ActionSelected
	ActionEditing
	ActionCommitted
	ActionDiscarded
	ActionCancelled
)

// Result tells the caller what a key did. Value is set for Selected and Committed.
type Result struct {
	Action Action
	Value  string
}

const maxVisibleRows = 12

// NewOptionLabel is the sentinel row that switches to text entry.
const NewOptionLabel = "+ New tool…"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#b4befe")).Bold(true)
	sentinelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
)

// Creatable is bound to one field of one entry for as long as it is open.
type Creatable struct {
	title   string
	options []string
	cursor  int
	mode    Mode
	input   textinput.Model
}

// New builds a picker over tools (sorted for display) with current preselected.
func New(title string, tools []string, current string) *Creatable {
	in := textinput.New()
	in.Placeholder = "tool name"
	in.Prompt = "> "
	in.CharLimit = 80

	p := &Creatable{
		title:   strings.TrimSpace(title),
		options: leaderboard.SortTools(tools),
		input:   in,
	}
	if i := slices.Index(p.options, current); i >= 0 {
		p.cursor = i
	}
	return p
}

func (p *Creatable) Mode() Mode { return p.mode }

func (p *Creatable) Cursor() int { return p.cursor }

// Options returns the concrete choices, excluding the sentinel.
func (p *Creatable) Options() []string { return slices.Clone(p.options) }

// Buffer returns the current text-entry contents.
func (p *Creatable) Buffer() string { return p.input.Value() }

func (p *Creatable) onSentinel() bool { return p.cursor == len(p.options) }

// Update handles one key press.
func (p *Creatable) Update(msg tea.KeyMsg) (Result, tea.Cmd) {
	if p.mode == ModeEditing {
		return p.updateEditing(msg)
	}
	return p.updatePickList(msg), nil
}

func (p *Creatable) updatePickList(msg tea.KeyMsg) Result {
	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
			return Result{Action: ActionMoved}
		}
	case "down", "j":
		if p.cursor < len(p.options) {
			p.cursor++
			return Result{Action: ActionMoved}
		}
	case "enter":
		if p.onSentinel() {
			p.startEditing()
			return Result{Action: ActionEditing}
		}
		return Result{Action: ActionSelected, Value: p.options[p.cursor]}
	case "esc":
		return Result{Action: ActionCancelled}
	}
	return Result{Action: ActionNone}
}

func (p *Creatable) updateEditing(msg tea.KeyMsg) (Result, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		value := strings.TrimSpace(p.input.Value())
		if value == "" {
			return Result{Action: ActionNone}, nil
		}
		p.stopEditing()
		if !slices.Contains(p.options, value) {
			p.options = leaderboard.SortTools(append(p.options, value))
		}
		p.cursor = slices.Index(p.options, value)
		return Result{Action: ActionCommitted, Value: value}, nil
	case tea.KeyEsc:
		p.stopEditing()
		return Result{Action: ActionDiscarded}, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return Result{Action: ActionNone}, cmd
}

// Blur is called when focus leaves the picker. With nothing typed it behaves
// like Esc; a non-empty buffer is kept for when focus returns.
func (p *Creatable) Blur() Result {
	if p.mode == ModeEditing && strings.TrimSpace(p.input.Value()) == "" {
		p.stopEditing()
		return Result{Action: ActionDiscarded}
	}
	return Result{Action: ActionNone}
}

func (p *Creatable) startEditing() {
	p.mode = ModeEditing
	p.input.SetValue("")
	p.input.Focus()
}

func (p *Creatable) stopEditing() {
	p.mode = ModePickList
	p.input.Reset()
	p.input.Blur()
}

// View renders the list, or the text buffer while editing.
func (p *Creatable) View() string {
	var b strings.Builder
	if p.title != "" {
		b.WriteString(titleStyle.Render(p.title) + "\n")
	}
	if p.mode == ModeEditing {
		b.WriteString(p.input.View() + "\n")
		b.WriteString(hintStyle.Render("[enter] Save  [esc] Back"))
		return b.String()
	}
	total := len(p.options) + 1
	start := 0
	if p.cursor >= maxVisibleRows {
		start = p.cursor - maxVisibleRows + 1
	}
	end := min(total, start+maxVisibleRows)
	for i := start; i < end; i++ {
		if i == len(p.options) {
			b.WriteString(p.row(i, sentinelStyle.Render(NewOptionLabel)) + "\n")
			continue
		}
		b.WriteString(p.row(i, p.options[i]) + "\n")
	}
	if end < total {
		b.WriteString(hintStyle.Render(fmt.Sprintf("  … %d more", total-end)) + "\n")
	}
	b.WriteString(hintStyle.Render("[enter] Select  [esc] Cancel"))
	return b.String()
}

func (p *Creatable) row(i int, label string) string {
	if i == p.cursor {
		return fmt.Sprintf("%s %s", cursorStyle.Render("▶"), label)
	}
	return "  " + label
}
