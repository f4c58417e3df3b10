package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/leaderboard/internal/leaderboard"
)

var columnHeaders = []string{"Date", "Category", "Leader", "Runner-up", "Notes"}

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Editable AI Leaderboard") + "\n")
	b.WriteString(a.renderControls() + "\n\n")
	b.WriteString(a.renderTable())

	switch a.modal {
	case modalNone, modalSearch:
	default:
		b.WriteString("\n" + modalStyle.Render(a.renderModal()))
	}

	b.WriteString("\n")
	if a.status != "" {
		if a.statusErr {
			b.WriteString(errorStyle.Render(a.status))
		} else {
			b.WriteString(statusStyle.Render(a.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

func (a *App) renderControls() string {
	search := valueStyle.Render(a.query.Search)
	if a.modal == modalSearch {
		search = a.search.View()
	} else if a.query.Search == "" {
		search = labelStyle.Render("(none)")
	}
	return fmt.Sprintf("%s %s   %s %s   %s %s   %s",
		labelStyle.Render("Filter:"), valueStyle.Render(filterLabel(a.query.Category)),
		labelStyle.Render("Sort:"), valueStyle.Render(a.query.SortBy),
		labelStyle.Render("Search:"), search,
		labelStyle.Render(fmt.Sprintf("%d/%d rows", len(a.rows), len(a.store.Entries()))),
	)
}

// columnWidths sizes Notes to whatever the terminal leaves over.
func (a *App) columnWidths() []int {
	widths := []int{12, 30, 20, 20, 24}
	if a.width > 0 {
		used := 0
		for _, w := range widths[:4] {
			used += w + 1
		}
		if rest := a.width - used; rest > widths[4] {
			widths[4] = rest
		}
	}
	return widths
}

func (a *App) renderTable() string {
	widths := a.columnWidths()
	var lines []string

	header := make([]string, len(columnHeaders))
	for i, h := range columnHeaders {
		header[i] = headerStyle.Render(fit(h, widths[i]))
	}
	lines = append(lines, strings.Join(header, " "))

	if len(a.rows) == 0 {
		lines = append(lines, labelStyle.Render("No entries match. Press a to add a row."))
		return strings.Join(lines, "\n")
	}

	counts := leaderboard.LeaderCounts(a.store.Entries())
	for ri, e := range a.rows {
		cells := make([]string, len(leaderboard.Fields))
		for ci, f := range leaderboard.Fields {
			text := fit(a.cellText(e, f), widths[ci])
			style := lipgloss.NewStyle()
			if f == leaderboard.FieldLeader {
				switch leaderboard.EmphasisFor(counts[e.Leader]) {
				case leaderboard.EmphasisStrong:
					style = strongLeader
				case leaderboard.EmphasisModerate:
					style = moderateLeader
				}
			}
			if ri == a.rowCursor {
				if ci == a.colCursor {
					style = focusCell.Inherit(style)
				} else {
					style = selectedRow.Inherit(style)
				}
			}
			cells[ci] = style.Render(text)
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func (a *App) cellText(e leaderboard.Entry, f leaderboard.Field) string {
	if f == leaderboard.FieldDate {
		layout := a.cfg.UI.DateFormat
		if layout == "" {
			layout = isoDate
		}
		return e.Date.In(a.tz).Format(layout)
	}
	return e.Value(f, "")
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int) string {
	s = ansi.Truncate(s, w, "…")
	if pad := w - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalEditText:
		return titleStyle.Render("Edit "+fieldTitle(a.editingField)) + "\n" + a.editor.View() + "\n" +
			labelStyle.Render("[enter] Save  [esc] Cancel")
	case modalCategory:
		out := titleStyle.Render("Select category") + "\n"
		for i, c := range leaderboard.Categories {
			marker := " "
			if i == a.categoryCursor {
				marker = "▶"
			}
			out += fmt.Sprintf("%s %s\n", marker, c)
		}
		return out + labelStyle.Render("[enter] Select  [esc] Cancel")
	case modalPicker:
		if a.picker == nil {
			return ""
		}
		return a.picker.View()
	case modalConfirmDelete:
		return titleStyle.Render("Delete row?") + "\n" + labelStyle.Render("[y] Yes  [n] No")
	}
	return ""
}
