package editing

import (
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/eventbus"
	"github.com/colonyops/gridedit/internal/core/grid"
)

type setupOpts struct {
	key             Key
	cellStartedEdit bool
	silent          bool
	source          Source
}

// syncFromEditors copies every open editor's value into the model.
// Editors that asked to be discarded or report their own validation
// errors are skipped.
func (s *Service) syncFromEditors() {
	for _, e := range s.model.GetEditPositions() {
		if e.Value.State != editmodel.StateEditing {
			continue
		}
		ed, ok := s.renderer.Editor(e.Position)
		if !ok || ed.CancelAfterEnd() || len(ed.ValidationErrors()) > 0 {
			continue
		}
		s.updatePending(e.Position, e.Value, ed.Value(), SourceEdit)
	}
}

// SyncEditors copies the open editors' values into the model. Callers
// invoke it after each keystroke so pending values track the widgets.
func (s *Service) SyncEditors() {
	s.syncFromEditors()
}

func (s *Service) updatePending(pos editmodel.Position, current editmodel.Value, value any, source Source) {
	if editmodel.IsUnedited(current.NewValue) {
		if grid.ValuesEqual(current.OldValue, value) {
			return
		}
	} else if grid.ValuesEqual(current.NewValue, value) {
		return
	}

	current.NewValue = value
	s.model.SetEdit(pos, current)
	s.bus.PublishCellEditValuesChanged(eventbus.CellEditValuesChangedPayload{
		Position: pos,
		OldValue: current.OldValue,
		NewValue: value,
		Source:   string(source),
	})
}

// ValidateEdit syncs open editors, re-runs cell and row validation over
// every pending edit and returns the failures. Row-level failures carry a
// Position without a column.
func (s *Service) ValidateEdit() []ValidationError {
	s.syncFromEditors()
	return s.validateEdit()
}

func (s *Service) validateEdit() []ValidationError {
	var out []ValidationError
	cells := s.model.CellValidation()
	edits := s.model.GetEditPositions()

	for _, e := range edits {
		var msgs []string
		ed, hasEditor := s.renderer.Editor(e.Position)
		if hasEditor {
			msgs = append(msgs, ed.ValidationErrors()...)
		}
		if !editmodel.IsUnedited(e.Value.NewValue) {
			msgs = append(msgs, e.Column.Validate(e.Value.NewValue)...)
		}

		cells.Set(e.Position, msgs)
		s.model.SetErrors(e.Position, msgs)
		if hasEditor {
			ed.SetInvalid(len(msgs) > 0)
		}
		if len(msgs) > 0 {
			out = append(out, ValidationError{Position: e.Position, Messages: msgs})
		}
	}

	if s.strategy.Mode() != ModeFullRow || s.rowValidator == nil {
		return out
	}

	for _, row := range rowsOf(positionsOf(edits)) {
		values := make(map[*grid.Column]any)
		for _, col := range s.data.Columns() {
			values[col] = s.GetCellDataValue(editmodel.Position{Row: row, Column: col})
		}
		msgs := s.rowValidator(row, values)
		s.model.RowValidation().Set(row, msgs)
		s.bus.PublishRowValidated(eventbus.RowValidatedPayload{Row: row, Errors: msgs})
		if len(msgs) > 0 {
			out = append(out, ValidationError{Position: editmodel.Position{Row: row}, Messages: msgs})
		}
	}
	return out
}

func (s *Service) editorParams(pos editmodel.Position, opts setupOpts) EditorParams {
	params := EditorParams{
		Position:        pos,
		Key:             opts.key,
		CellStartedEdit: opts.cellStartedEdit,
		Errors:          s.model.CellValidation().Get(pos),
	}

	v, ok := s.model.GetEdit(pos)
	switch {
	case ok && !editmodel.IsUnedited(v.NewValue):
		params.Value = v.NewValue
	default:
		params.Value = pos.Row.Value(pos.Column)
		if dv, ok := s.data.(DisplayValuer); ok {
			if display, ok := dv.DisplayValue(pos); ok {
				params.Value = display
			}
		}
	}
	return params
}

// setupEditor makes sure pos is in the editing state and has a live
// editor, mounting one or refreshing the existing one.
func (s *Service) setupEditor(pos editmodel.Position, opts setupOpts) {
	v, ok := s.model.GetEdit(pos)
	switch {
	case !ok:
		s.model.Start(pos)
	case v.State != editmodel.StateEditing:
		s.model.SetState(pos, editmodel.StateEditing)
	}

	params := s.editorParams(pos, opts)
	if ed, ok := s.renderer.Editor(pos); ok {
		ed.Refresh(params)
		return
	}

	s.renderer.MountEditor(pos, params)
	if !opts.silent {
		s.bus.PublishCellEditingStarted(eventbus.CellEditingStartedPayload{
			Position: pos,
			Source:   string(opts.source),
		})
	}
}

// destroyEditor tears down pos's editor and demotes its pending entry to
// changed. The entry itself is kept.
func (s *Service) destroyEditor(pos editmodel.Position) {
	s.pending.drop(pos)
	if _, ok := s.renderer.Editor(pos); ok {
		s.renderer.UnmountEditor(pos)
	}
	if v, ok := s.model.GetEdit(pos); ok && v.State == editmodel.StateEditing {
		s.model.SetState(pos, editmodel.StateChanged)
	}
	s.renderer.RefreshCell(pos)
}

// focusEditor moves focus into pos's editor, waiting for the editor to
// attach when it is not mounted yet.
func (s *Service) focusEditor(pos editmodel.Position) {
	if !pos.IsCell() {
		return
	}
	ed, ok := s.renderer.Editor(pos)
	if !ok {
		if s.model.HasEdits(pos, editmodel.HasEditsOpts{WithOpenEditor: true}) {
			s.pending.add(pos, waitEditor, func() { s.focusEditor(pos) })
		}
		return
	}
	s.renderer.FocusCell(pos)
	ed.FocusIn()
}

// purgeUnchangedEdits removes pending entries that are neither open nor
// different from the committed value. Calling it twice is a no-op.
func (s *Service) purgeUnchangedEdits() {
	var purged []editmodel.Edit
	for _, e := range s.model.GetEditPositions() {
		if e.Value.State == editmodel.StateEditing || e.Value.Changed() {
			continue
		}
		s.model.Stop(e.Position)
		purged = append(purged, e)
	}

	for _, e := range purged {
		newValue := e.Value.NewValue
		if editmodel.IsUnedited(newValue) {
			newValue = e.Value.OldValue
		}
		s.bus.PublishCellEditingStopped(eventbus.CellEditingStoppedPayload{
			Position: e.Position,
			OldValue: e.Value.OldValue,
			NewValue: newValue,
		})
		s.renderer.RefreshCell(e.Position)
	}

	if s.strategy.Mode() != ModeFullRow {
		return
	}
	for _, row := range rowsOf(positionsOf(purged)) {
		if !s.model.HasRowEdits(row, editmodel.HasEditsOpts{}) {
			s.bus.PublishRowEditingStopped(eventbus.RowEditingStoppedPayload{Row: row})
		}
	}
}

// openPositions lists the cells whose editor is open.
func (s *Service) openPositions() []editmodel.Position {
	var out []editmodel.Position
	for _, e := range s.model.GetEditPositions() {
		if e.Value.State == editmodel.StateEditing {
			out = append(out, e.Position)
		}
	}
	return out
}

// refreshPending pushes pending values into open editors and redraws every
// row with pending edits without closing anything.
func (s *Service) refreshPending() {
	edits := s.model.GetEditPositions()
	for _, e := range edits {
		if ed, ok := s.renderer.Editor(e.Position); ok {
			ed.Refresh(s.editorParams(e.Position, setupOpts{}))
		}
	}
	for _, row := range rowsOf(positionsOf(edits)) {
		s.renderer.RefreshRow(row)
	}
}
