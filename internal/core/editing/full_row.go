package editing

import (
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/eventbus"
	"github.com/colonyops/gridedit/internal/core/grid"
)

// fullRow opens every editable column of one row together and commits
// the row as a unit.
type fullRow struct {
	base
	row *grid.Row
}

func (f *fullRow) Mode() Mode { return ModeFullRow }

func (f *fullRow) ShouldStart(pos editmodel.Position, params StartParams) bool {
	return f.shouldStart(pos, params)
}

func (f *fullRow) ShouldStop(pos editmodel.Position, trigger *Trigger, source Source) Decision {
	if d := f.shouldStop(trigger, source); d != Undecided {
		return d
	}
	if f.row == nil || !f.svc.data.Contains(f.row) {
		return Yes
	}
	return decide(pos.Row != f.row)
}

func (f *fullRow) ShouldCancel(_ editmodel.Position, trigger *Trigger, source Source) bool {
	return f.shouldCancel(trigger, source)
}

func (f *fullRow) editableCells(row *grid.Row, source Source) []editmodel.Position {
	var cells []editmodel.Position
	for _, col := range f.svc.data.Columns() {
		p := editmodel.Position{Row: row, Column: col}
		if f.svc.IsCellEditable(p, source) {
			cells = append(cells, p)
		}
	}
	return cells
}

func (f *fullRow) Start(pos editmodel.Position, params StartParams) {
	row := pos.Row
	if f.row != nil && f.row != row {
		f.CleanupEditors(pos)
	}

	cells := f.editableCells(row, params.Source)
	if len(cells) == 0 {
		return
	}

	open := f.row == row && f.svc.model.HasRowEdits(row, editmodel.HasEditsOpts{WithOpenEditor: true})
	f.row = row
	if !open && !params.Silent {
		f.svc.bus.PublishRowEditingStarted(eventbus.RowEditingStartedPayload{Row: row})
	}

	for _, c := range cells {
		f.svc.model.Start(c)
	}

	focus := cells[0]
	for _, c := range cells {
		if c == pos {
			focus = pos
			break
		}
	}
	f.setupEditors(cells, focus, params)
}

func (f *fullRow) failed(pos editmodel.Position) bool {
	return f.cellFailed(pos) || f.svc.model.RowValidation().HasErrors(pos.Row)
}

func (f *fullRow) Stop(cancel bool, params StopParams) bool {
	results := f.classify(cancel, f.failed)
	actions := StopActions{Destroy: results.All}
	if !cancel {
		actions = f.ProcessValidationResults(results)
	}

	stopped := f.svc.applyStop(actions, results, cancel, params, f.rowDone)
	if len(actions.Keep) == 0 {
		f.row = nil
	}
	return stopped
}

func (f *fullRow) rowDone(row *grid.Row, wasOpen, committed bool) {
	if committed {
		f.svc.bus.PublishRowValueChanged(eventbus.RowValueChangedPayload{Row: row})
	}
	if wasOpen {
		f.svc.bus.PublishRowEditingStopped(eventbus.RowEditingStoppedPayload{Row: row})
	}
}

// ProcessValidationResults keeps a whole row open when any of its cells
// fails and the policy blocks.
func (f *fullRow) ProcessValidationResults(results ValidationResults) StopActions {
	return splitFailing(results, f.svc.settings.InvalidCommit, func(p editmodel.Position) any { return p.Row })
}

func (f *fullRow) MoveToNextEditingCell(prev editmodel.Position, backwards bool, trigger *Trigger, source Source, preventNavigation bool) bool {
	row, col, ok := f.svc.nav.Next(prev.Row, prev.Column, backwards, nil)
	if !ok {
		return false
	}
	next := editmodel.Position{Row: row, Column: col}

	if preventNavigation {
		f.svc.focusEditor(prev)
		return true
	}

	if ed, ok := f.svc.renderer.Editor(prev); ok {
		ed.FocusOut()
	}

	if row != prev.Row {
		cells := f.editableCells(row, source)
		if len(cells) == 0 {
			f.svc.StopEditing(editmodel.Position{}, StopParams{Source: source})
		} else {
			start := cells[0]
			if f.svc.IsCellEditable(next, source) {
				start = next
			}
			f.svc.StartEditing(start, StartParams{
				Trigger:          trigger,
				Source:           source,
				StartedEdit:      true,
				IgnoreTriggerKey: true,
			})
		}
	}

	if _, ok := f.svc.renderer.Editor(next); ok {
		f.svc.focusEditor(next)
	} else {
		f.svc.renderer.FocusCell(next)
	}
	return true
}

func (f *fullRow) CleanupEditors(keep editmodel.Position) {
	open := rowsOf(f.svc.openPositions())
	f.cleanup(func(p editmodel.Position) bool {
		return keep.Row != nil && p.Row == keep.Row
	})
	for _, row := range open {
		if f.svc.model.HasRowEdits(row, editmodel.HasEditsOpts{WithOpenEditor: true}) {
			continue
		}
		// rows left without any edit were already reported by the purge
		if f.svc.model.HasRowEdits(row, editmodel.HasEditsOpts{}) {
			f.svc.bus.PublishRowEditingStopped(eventbus.RowEditingStoppedPayload{Row: row})
		}
	}
	if keep.Row == nil || keep.Row != f.row {
		if !f.svc.model.HasRowEdits(f.row, editmodel.HasEditsOpts{WithOpenEditor: true}) {
			f.row = nil
		}
	}
}

func (f *fullRow) Destroy() {
	f.CleanupEditors(editmodel.Position{})
	f.row = nil
}
