package editing

import (
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/eventbus"
	"github.com/colonyops/gridedit/internal/core/grid"
)

// StopEditing asks the strategy whether the current edit ends and, if so,
// commits or discards it. It returns true when no editor was kept open by
// validation. Re-entrant calls made while a stop is in progress are
// ignored.
func (s *Service) StopEditing(pos editmodel.Position, params StopParams) bool {
	if params.Source == "" {
		params.Source = SourceUI
	}
	if params.Source.soft() {
		if s.batch {
			s.syncFromEditors()
			s.refreshPending()
			params.Source = SourceUI
		} else {
			params.Source = SourceAPI
		}
	}

	if s.stopping {
		return false
	}
	if !s.model.HasEdits(editmodel.Position{}, editmodel.HasEditsOpts{}) {
		return true
	}

	s.stopping = true
	defer func() { s.stopping = false }()

	s.syncFromEditors()

	willStop := !params.Cancel && s.strategy.ShouldStop(pos, params.Trigger, params.Source) == Yes
	willCancel := params.Cancel && s.strategy.ShouldCancel(pos, params.Trigger, params.Source)

	if willStop || willCancel {
		if willStop {
			s.validateEdit()
		}
		affected := rowsOf(positionsOf(s.model.GetEditPositions()))
		stopped := s.strategy.Stop(willCancel, params)
		for _, row := range affected {
			s.renderer.RefreshRow(row)
		}
		s.purgeUnchangedEdits()
		return stopped
	}

	if s.batch && (params.Source == SourceUI || params.Source == SourceEdit) {
		s.deferBatchStop(params)
	}
	s.purgeUnchangedEdits()
	return false
}

// deferBatchStop handles UI stops in batch mode. ENTER closes the open
// editors keeping their values pending, ESCAPE reverts them.
func (s *Service) deferBatchStop(params StopParams) {
	switch {
	case params.Trigger.isKey(KeyEnter):
		s.validateEdit()
		if s.settings.InvalidCommit == InvalidCommitBlock && s.openEditorFailing() {
			s.focusFirstInvalid()
			return
		}
		s.strategy.CleanupEditors(editmodel.Position{})
	case params.Trigger.isKey(KeyEscape):
		for _, e := range s.model.GetEditPositions() {
			if e.Value.State == editmodel.StateEditing {
				s.model.ClearEditValue(e.Position)
				s.destroyEditor(e.Position)
			}
		}
		s.model.CellValidation().Reset()
		s.model.RowValidation().Reset()
		s.strategy.CleanupEditors(editmodel.Position{})
	default:
		s.refreshPending()
	}
}

func (s *Service) openEditorFailing() bool {
	for _, e := range s.model.GetEditPositions() {
		if e.Value.State == editmodel.StateEditing && s.failing(e.Position) {
			return true
		}
	}
	return false
}

// applyStop executes a strategy's StopActions. Destroyed cells are
// processed row by row: commit, notify, then tear down the editor. Failing
// cells that are destroyed rather than kept are reverted.
// rowDone, when set, runs after the last cell of each row.
func (s *Service) applyStop(actions StopActions, results ValidationResults, cancel bool, params StopParams, rowDone func(row *grid.Row, wasOpen, committed bool)) bool {
	failed := make(map[editmodel.Position]bool, len(results.Fail))
	for _, p := range results.Fail {
		failed[p] = true
	}

	for _, row := range rowsOf(actions.Destroy) {
		wasOpen := s.model.HasRowEdits(row, editmodel.HasEditsOpts{WithOpenEditor: true})
		committed := false
		for _, p := range actions.Destroy {
			if p.Row != row {
				continue
			}
			if s.finishCell(p, cancel || failed[p], params) {
				committed = true
			}
		}
		if rowDone != nil {
			rowDone(row, wasOpen, committed)
		}
	}

	for _, p := range actions.Keep {
		s.keepEditor(p)
	}
	if len(actions.Keep) > 0 {
		s.focusFirstInvalid()
		return false
	}
	return true
}

// finishCell commits (unless discarded) and closes one cell. It returns
// true when the row data changed.
func (s *Service) finishCell(pos editmodel.Position, discard bool, params StopParams) bool {
	v, ok := s.model.GetEdit(pos)
	if !ok {
		return false
	}

	if ed, ok := s.renderer.Editor(pos); ok && ed.CancelAfterEnd() {
		discard = true
	}

	committed := false
	if !discard && v.Changed() {
		if pos.Row.SetDataValue(pos.Column, v.NewValue) {
			committed = true
			s.bus.PublishCellValueChanged(eventbus.CellValueChangedPayload{
				Position: pos,
				OldValue: v.OldValue,
				NewValue: v.NewValue,
				Source:   string(params.Source),
			})
		}
	}

	newValue := v.NewValue
	if editmodel.IsUnedited(newValue) {
		newValue = v.OldValue
	}
	if v.State == editmodel.StateEditing || committed {
		s.bus.PublishCellEditingStopped(eventbus.CellEditingStoppedPayload{
			Position:     pos,
			OldValue:     v.OldValue,
			NewValue:     newValue,
			ValueChanged: committed,
			Cancelled:    discard,
			Source:       string(params.Source),
		})
	}

	s.pending.drop(pos)
	if _, ok := s.renderer.Editor(pos); ok {
		s.renderer.UnmountEditor(pos)
	}
	s.model.Stop(pos)
	s.renderer.RefreshCell(pos)
	return committed
}

// keepEditor leaves pos open and marks its editor invalid.
func (s *Service) keepEditor(pos editmodel.Position) {
	ed, ok := s.renderer.Editor(pos)
	if !ok {
		return
	}
	ed.Refresh(s.editorParams(pos, setupOpts{}))
	ed.SetInvalid(s.failing(pos))
}

func (s *Service) failing(pos editmodel.Position) bool {
	if s.model.CellValidation().HasErrors(pos) {
		return true
	}
	return s.strategy.Mode() == ModeFullRow && s.model.RowValidation().HasErrors(pos.Row)
}

func (s *Service) focusFirstInvalid() {
	var first editmodel.Position
	for _, e := range s.model.GetEditPositions() {
		if e.Value.State != editmodel.StateEditing {
			continue
		}
		if first.IsZero() {
			first = e.Position
		}
		if s.failing(e.Position) {
			s.focusEditor(e.Position)
			return
		}
	}
	if !first.IsZero() {
		s.focusEditor(first)
	}
}

// HasValidationErrors reports cell or row failures at pos. A zero position
// asks about every pending edit.
func (s *Service) HasValidationErrors(pos editmodel.Position) bool {
	if pos.IsZero() {
		for _, e := range s.model.GetEditPositions() {
			if s.failing(e.Position) {
				return true
			}
		}
		return false
	}
	if pos.Column == nil {
		if s.model.RowValidation().HasErrors(pos.Row) {
			return true
		}
		edits, _ := s.model.GetEditRow(pos.Row, false)
		for col := range edits {
			if s.model.CellValidation().HasErrors(editmodel.Position{Row: pos.Row, Column: col}) {
				return true
			}
		}
		return false
	}
	return s.failing(pos)
}

// CheckNavWithValidation decides whether navigation away from pos may
// proceed. Under the block policy focus returns to the invalid editor;
// under revert the invalid values are reverted.
func (s *Service) CheckNavWithValidation(pos editmodel.Position) NavCheck {
	if !s.HasValidationErrors(pos) {
		return NavContinue
	}

	if s.settings.InvalidCommit == InvalidCommitBlock {
		s.focusFirstInvalid()
		return NavBlockStop
	}

	for _, e := range s.model.GetEditPositions() {
		if !pos.IsZero() && e.Row != pos.Row {
			continue
		}
		if pos.Column != nil && e.Column != pos.Column {
			continue
		}
		if s.failing(e.Position) {
			s.RevertSingleCellEdit(e.Position, false)
		}
	}
	return NavRevertContinue
}

// MoveToNextCell handles TAB and shift+TAB.
func (s *Service) MoveToNextCell(prev editmodel.Position, backwards bool, trigger *Trigger, source Source) NavOutcome {
	if source == "" {
		source = SourceUI
	}

	if s.model.HasEdits(editmodel.Position{}, editmodel.HasEditsOpts{WithOpenEditor: true}) {
		s.syncFromEditors()
		s.validateEdit()
		if s.CheckNavWithValidation(editmodel.Position{}) == NavBlockStop {
			return NavBlocked
		}
	}

	if s.strategy.MoveToNextEditingCell(prev, backwards, trigger, source, false) {
		return NavMoved
	}
	if s.renderer.FocusHeader() {
		return NavHeader
	}
	s.StopEditing(editmodel.Position{}, StopParams{Source: source})
	return NavStopped
}

// RevertSingleCellEdit restores the original value of an open cell and
// rebuilds its editor.
func (s *Service) RevertSingleCellEdit(pos editmodel.Position, focus bool) {
	if _, ok := s.renderer.Editor(pos); !ok {
		if _, ok := s.model.GetEdit(pos); ok {
			s.model.ClearEditValue(pos)
			s.model.CellValidation().Clear(pos)
			s.model.RowValidation().Clear(pos.Row)
		}
		return
	}

	s.model.ClearEditValue(pos)
	s.model.CellValidation().Clear(pos)
	s.model.RowValidation().Clear(pos.Row)
	s.destroyEditor(pos)
	s.setupEditor(pos, setupOpts{silent: true, source: SourceUI})
	s.validateEdit()
	s.renderer.RefreshCell(pos)
	if focus {
		s.focusEditor(pos)
	}
}

func positionsOf(edits []editmodel.Edit) []editmodel.Position {
	out := make([]editmodel.Position, len(edits))
	for i, e := range edits {
		out[i] = e.Position
	}
	return out
}
