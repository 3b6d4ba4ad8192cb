package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/grid"
	"github.com/colonyops/gridedit/internal/store/yamlfile"
)

var zeroPos editmodel.Position

// datasetChangedMsg is sent when the dataset file changed on disk.
type datasetChangedMsg yamlfile.DatasetEvent

// --- Window ---

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	m.layout()
	return m
}

// layout sizes the grid area to what is left after the header, pinned
// rows and the footer.
func (m Model) layout() {
	footer := lipgloss.Height(m.footer())
	m.view.width = m.width
	m.view.bodyRows = max(m.height-1-m.view.pinnedCount()-footer, 1)
	m.view.scrollIntoView()
}

// --- Keys ---

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	if ed, ok := m.view.editors[m.view.cursor()]; ok && !m.view.headerFocused {
		return m.handleEditorKey(msg, ed)
	}
	return m.handleGridKey(msg)
}

// handleEditorKey routes keys while the cell under the cursor is being
// edited. Keys the grid does not claim go to the text input.
func (m Model) handleEditorKey(msg tea.KeyMsg, ed *cellEditor) (Model, tea.Cmd) {
	pos := m.view.cursor()

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.svc.StopEditing(zeroPos, editing.StopParams{
			Trigger: editing.KeyDown(editing.KeyEscape),
			Source:  editing.SourceUI,
			Cancel:  true,
		})
		m.setStatus("edit cancelled")
		return m, nil

	case key.Matches(msg, m.keys.FillRange):
		m.svc.ApplyBulkEdit(pos, m.view.selection())
		m.reportValidation(pos)
		return m, nil

	case key.Matches(msg, m.keys.Commit):
		stopped := m.svc.StopEditing(zeroPos, editing.StopParams{
			Trigger: editing.KeyDown(editing.KeyEnter),
			Source:  editing.SourceUI,
		})
		if !stopped && !m.svc.IsBatchEditing() {
			m.reportValidation(pos)
			return m, nil
		}
		m.setStatus("")
		return m, nil

	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
		backwards := key.Matches(msg, m.keys.Prev)
		outcome := m.svc.MoveToNextCell(pos, backwards, editing.KeyDown(editing.KeyTab), editing.SourceUI)
		if outcome == editing.NavBlocked {
			m.reportValidation(pos)
		}
		return m, nil
	}

	cmd := ed.update(msg)
	m.svc.SyncEditors()
	return m, cmd
}

func (m Model) handleGridKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	v := m.view
	pos := v.cursor()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
	case key.Matches(msg, m.keys.Up):
		v.move(-1, 0, false)
	case key.Matches(msg, m.keys.Down):
		v.move(1, 0, false)
	case key.Matches(msg, m.keys.Left):
		v.move(0, -1, false)
	case key.Matches(msg, m.keys.Right):
		v.move(0, 1, false)
	case key.Matches(msg, m.keys.ExtendUp):
		v.move(-1, 0, true)
	case key.Matches(msg, m.keys.ExtendDown):
		v.move(1, 0, true)
	case key.Matches(msg, m.keys.ExtendLeft):
		v.move(0, -1, true)
	case key.Matches(msg, m.keys.ExtendRight):
		v.move(0, 1, true)

	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
		backwards := key.Matches(msg, m.keys.Prev)
		if row, col, ok := grid.NewNavigator(m.ds).Next(pos.Row, pos.Column, backwards, nil); ok {
			v.FocusCell(editmodel.Position{Row: row, Column: col})
		}

	case key.Matches(msg, m.keys.Edit):
		k := editing.KeyEnter
		if msg.String() == "f2" {
			k = editing.KeyF2
		}
		m.start(pos, editing.StartParams{Trigger: editing.KeyDown(k)})

	case key.Matches(msg, m.keys.Clear):
		k := editing.KeyBackspace
		if msg.Type == tea.KeyDelete {
			k = editing.KeyDelete
		}
		m.start(pos, editing.StartParams{Trigger: editing.KeyDown(k), StartedEdit: true})

	case key.Matches(msg, m.keys.FillRange):
		// the selection is filled from the cell it was started on
		src := v.anchor()
		if v.hasSelection() && m.svc.Model().HasEdits(src, editmodel.HasEditsOpts{}) {
			m.svc.ApplyBulkEdit(src, v.selection())
			m.setStatus("filled selection")
		}

	case key.Matches(msg, m.keys.Copy):
		m.copyCell(pos)

	case key.Matches(msg, m.keys.Batch):
		m.toggleBatch()
	case key.Matches(msg, m.keys.BatchSave):
		m.commitBatch()
	case key.Matches(msg, m.keys.BatchDrop):
		if m.svc.IsBatchEditing() {
			m.svc.StopEditing(zeroPos, editing.StopParams{Source: editing.SourceAPI, Cancel: true})
			m.setStatus("pending edits discarded")
		}
	case key.Matches(msg, m.keys.SwitchMode):
		next := editing.ModeFullRow
		if m.svc.Mode() == editing.ModeFullRow {
			next = editing.ModeSingleCell
		}
		m.svc.SetMode(next)
		m.setStatus("mode: " + string(next))
	case key.Matches(msg, m.keys.Save):
		m.save()

	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && !msg.Alt:
		m.start(pos, editing.StartParams{
			Trigger:     editing.KeyDown(editing.Key(string(msg.Runes))),
			StartedEdit: true,
		})
	}

	return m, nil
}

// copyCell puts the cell's display text on the system clipboard.
func (m *Model) copyCell(pos editmodel.Position) {
	if !pos.IsCell() {
		return
	}
	text := pos.Column.Format(pos.Row.Value(pos.Column))
	if err := m.copy(text); err != nil {
		m.log.Warn().Err(err).Msg("clipboard write failed")
		m.setError("copy failed: " + err.Error())
		return
	}
	m.setStatus("copied " + pos.Column.Title())
}

func (m *Model) start(pos editmodel.Position, params editing.StartParams) {
	if !pos.IsCell() {
		return
	}
	params.Source = editing.SourceUI
	if !m.svc.IsCellEditable(pos, params.Source) {
		m.setError(fmt.Sprintf("%s is read-only", pos.Column.Title()))
		return
	}
	m.svc.StartEditing(pos, params)
}

// --- Mouse ---

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m
	}

	row, col, ok := m.view.cellAt(msg.X, msg.Y)
	if !ok {
		if msg.Y == 0 {
			m.view.FocusHeader()
		}
		return m
	}

	now := m.now()
	trigger := editing.Click()
	if m.lastClick.row == row && m.lastClick.col == col && now.Sub(m.lastClick.at) <= doubleClickWindow {
		trigger = editing.DoubleClick()
		m.lastClick = click{row: -1, col: -1}
	} else {
		m.lastClick = click{row: row, col: col, at: now}
	}

	target, _ := m.ds.RowAt(row)
	pos := editmodel.Position{Row: target, Column: m.ds.Columns()[col]}
	trigger.Extending = msg.Shift

	// Clicking away from the open editor ends the edit, unless batch
	// editing keeps it pending.
	if !m.svc.IsBatchEditing() && m.outsideOpenEdit(pos) {
		m.svc.StopEditing(zeroPos, editing.StopParams{Trigger: trigger, Source: editing.SourceUI})
	}

	m.view.headerFocused = false
	m.view.moveTo(row, col, msg.Shift)
	m.svc.StartEditing(pos, editing.StartParams{Trigger: trigger, Source: editing.SourceUI})
	return m
}

func (m Model) outsideOpenEdit(pos editmodel.Position) bool {
	open := editmodel.HasEditsOpts{WithOpenEditor: true}
	if !m.svc.IsEditing(zeroPos, open) {
		return false
	}
	if m.svc.Mode() == editing.ModeFullRow {
		return !m.svc.IsRowEditing(pos.Row, open)
	}
	return !m.svc.IsEditing(pos, open)
}

// --- Session commands ---

func (m *Model) toggleBatch() {
	if !m.svc.IsBatchEditing() {
		m.svc.EnableBatchEditing()
		m.setStatus("batch editing on")
		return
	}
	if !m.svc.DisableBatchEditing() {
		m.setError("fix invalid cells before leaving batch mode")
		return
	}
	m.setStatus("batch editing off")
}

func (m *Model) commitBatch() {
	if !m.svc.IsBatchEditing() {
		return
	}
	before := m.stats.committed
	if !m.svc.StopEditing(zeroPos, editing.StopParams{Source: editing.SourceAPI}) {
		m.setError("some cells are invalid")
		return
	}
	m.setStatus(fmt.Sprintf("committed %d cells", m.stats.committed-before))
}

func (m *Model) save() {
	if !m.svc.IsBatchEditing() {
		m.svc.StopEditing(zeroPos, editing.StopParams{Source: editing.SourceAPI})
	}

	if m.watcher != nil {
		m.watcher.Mute(500 * time.Millisecond)
	}
	if err := m.ds.Save(m.path); err != nil {
		m.log.Error().Err(err).Str("path", m.path).Msg("save dataset")
		m.setError(err.Error())
		return
	}
	m.stats.unsaved = false

	if pending := len(m.svc.EditingCells(editing.FilterChanged)); pending > 0 {
		m.setStatus(fmt.Sprintf("wrote %s, %d pending edits not included", m.path, pending))
		return
	}
	m.setStatus("wrote " + m.path)
}

// reportValidation shows the validation messages of pos in the status bar.
func (m *Model) reportValidation(pos editmodel.Position) {
	if msgs := m.messagesFor(pos); len(msgs) > 0 {
		m.setError(msgs[0])
	}
}

func (m Model) messagesFor(pos editmodel.Position) []string {
	if !pos.IsCell() {
		return nil
	}
	model := m.svc.Model()
	msgs := append([]string(nil), model.CellValidation().Get(pos)...)
	msgs = append(msgs, model.RowValidation().Get(pos.Row)...)
	return append(msgs, m.stats.rowErrors[pos.Row]...)
}

// --- Reload ---

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return datasetChangedMsg(ev)
	}
}

func (m Model) handleDatasetChanged(msg datasetChangedMsg) (Model, tea.Cmd) {
	fresh, err := grid.Load(m.path)
	if err != nil {
		m.log.Warn().Err(err).Str("path", msg.Path).Msg("reload dataset")
		m.setError("reload failed: " + err.Error())
		return m, m.waitForChange()
	}

	m.ds.Merge(fresh)
	m.cfg.ApplyColumns(m.ds)
	m.svc.RefreshData()
	m.view.clampToData()
	m.layout()

	m.log.Debug().Str("path", msg.Path).Int("rows", m.ds.RowCount()).Msg("dataset reloaded")
	m.setStatus("reloaded " + m.path)
	return m, m.waitForChange()
}
