package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/styles"
)

// View renders the grid, the status bar and the help line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.view.render(), m.footer())
}

func (m Model) footer() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.statusBar(), m.helpView())
}

func (m Model) helpView() string {
	if _, ok := m.view.editors[m.view.cursor()]; ok {
		if m.showHelp {
			return m.help.FullHelpView(editingKeys{m.keys}.FullHelp())
		}
		return m.help.ShortHelpView(editingKeys{m.keys}.ShortHelp())
	}
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m Model) statusBar() string {
	left := []string{styles.StatusModeStyle.Render(strings.ToUpper(string(m.svc.Mode())))}
	if m.svc.IsBatchEditing() {
		left = append(left, styles.StatusBatchStyle.Render("BATCH"))
	}

	pending := len(m.svc.EditingCells(editing.FilterChanged))
	if pending > 0 {
		left = append(left, styles.StatusMutedStyle.Render(fmt.Sprintf("%d pending", pending)))
	}
	if m.stats.unsaved {
		left = append(left, styles.StatusMutedStyle.Render("modified"))
	}

	msg := m.status
	msgStyle := styles.StatusMutedStyle
	if m.statusErr {
		msgStyle = styles.StatusErrorStyle
	}
	if cur := m.view.cursor(); msg == "" {
		if msgs := m.messagesFor(cur); len(msgs) > 0 {
			msg = strings.Join(msgs, "; ")
			msgStyle = styles.StatusErrorStyle
		} else if cur.IsCell() {
			msg = m.position(cur)
		}
	}
	left = append(left, msgStyle.Render(msg))

	bar := lipgloss.JoinHorizontal(lipgloss.Top, left...)
	if m.width > 0 {
		return styles.StatusBarStyle.Width(m.width).MaxWidth(m.width).MaxHeight(1).Render(bar)
	}
	return bar
}

func (m Model) position(pos editmodel.Position) string {
	return fmt.Sprintf("%s · %s  (%d/%d)", pos.Row.ID, pos.Column.Title(), m.view.cursorRow+1, m.ds.RowCount())
}
