package editing

import (
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/grid"
)

// ApplyBulkEdit copies pos's current value into every editable cell of
// ranges, coerced to each target column's type. Outside batch mode the
// result is committed immediately.
func (s *Service) ApplyBulkEdit(pos editmodel.Position, ranges []grid.CellRange) {
	if !pos.IsCell() || len(ranges) == 0 {
		return
	}

	s.syncFromEditors()
	value := s.GetCellDataValue(pos)

	edits := s.model.GetEditMap(true)
	changed := 0
	for _, r := range ranges {
		for _, row := range s.data.RowsInRange(r) {
			for _, col := range r.Columns {
				target := editmodel.Position{Row: row, Column: col}
				if !s.IsCellEditable(target, SourceRange) {
					continue
				}
				coerced := col.Coerce(value)

				rowEdits, ok := edits[row]
				if !ok {
					rowEdits = make(editmodel.Row)
					edits[row] = rowEdits
				}
				if existing, ok := rowEdits[col]; ok {
					existing.NewValue = coerced
				} else {
					rowEdits[col] = &editmodel.Value{
						NewValue: coerced,
						OldValue: row.Value(col),
						State:    editmodel.StateChanged,
					}
				}
				changed++
			}
		}
	}
	if changed == 0 {
		return
	}

	s.model.SetEditMap(edits)
	s.log.Debug().Int("cells", changed).Msg("bulk edit applied")

	// Open editors inside the ranges must show the new value before the
	// stop syncs them back into the model.
	s.refreshPending()
	if s.batch {
		s.purgeUnchangedEdits()
		return
	}
	s.StopEditing(editmodel.Position{}, StopParams{Source: SourceAPI})
}

// EditMap returns a snapshot of every pending edit.
func (s *Service) EditMap() editmodel.Map {
	return s.model.GetEditMap(true)
}

// SetEditMap cancels the current edit, replaces the model with m and opens
// the last editing-state entry of m. Editing-state entries outside that
// entry's scope become changed. Entries for unknown rows or columns, or
// for cells that are not editable, are dropped.
func (s *Service) SetEditMap(m editmodel.Map) {
	if s.model.HasEdits(editmodel.Position{}, editmodel.HasEditsOpts{}) {
		s.StopEditing(editmodel.Position{}, StopParams{Source: SourceAPI, Cancel: true})
	}

	clean := make(editmodel.Map)
	var focus editmodel.Position
	for _, e := range editmodel.Positions(m) {
		if s.isStale(e.Position) {
			s.log.Debug().Str("pos", e.Position.String()).Msg("skipping edit for unknown cell")
			continue
		}
		if !s.IsCellEditable(e.Position, SourceAPI) {
			s.log.Debug().Str("pos", e.Position.String()).Msg("skipping edit for read-only cell")
			continue
		}
		if _, ok := clean[e.Row]; !ok {
			clean[e.Row] = make(editmodel.Row)
		}
		v := e.Value.Clone()
		clean[e.Row][e.Column] = &v
		if v.State == editmodel.StateEditing {
			focus = e.Position
		}
	}

	for row, edits := range clean {
		for col, v := range edits {
			if v.State != editmodel.StateEditing {
				continue
			}
			p := editmodel.Position{Row: row, Column: col}
			inScope := p == focus
			if s.strategy.Mode() == ModeFullRow {
				inScope = row == focus.Row
			}
			if !inScope {
				v.State = editmodel.StateChanged
			}
		}
	}

	s.model.SetEditMap(clean)
	for row := range clean {
		s.renderer.RefreshRow(row)
	}

	if focus.IsCell() {
		s.StartEditing(focus, StartParams{
			Source:           SourceAPI,
			StartedEdit:      true,
			IgnoreTriggerKey: true,
			ContinueEditing:  true,
		})
	}
}

// SetEditingCells injects ID-keyed edits, as SetEditMap does. Original
// values are always taken from the current row data. Entries that do not
// resolve to an editable cell are skipped and counted.
func (s *Service) SetEditingCells(cells []CellEdit) (skipped int) {
	m := make(editmodel.Map)
	for _, c := range cells {
		row, ok := s.data.RowByID(c.RowID)
		if !ok {
			skipped++
			continue
		}
		col, ok := s.data.ColumnByID(c.ColumnID)
		if !ok {
			skipped++
			continue
		}
		pos := editmodel.Position{Row: row, Column: col}
		if !s.IsCellEditable(pos, SourceAPI) {
			skipped++
			continue
		}

		state := c.State
		if state != editmodel.StateEditing {
			state = editmodel.StateChanged
		}
		if _, ok := m[row]; !ok {
			m[row] = make(editmodel.Row)
		}
		m[row][col] = &editmodel.Value{
			NewValue: col.Coerce(c.NewValue),
			OldValue: row.Value(col),
			State:    state,
		}
	}

	if skipped > 0 {
		s.log.Debug().Int("skipped", skipped).Msg("some edits did not resolve to editable cells")
	}
	s.SetEditMap(m)
	return skipped
}

// EditingCells lists pending edits that carry a value, filtered by state.
func (s *Service) EditingCells(filter Filter) []CellEdit {
	var out []CellEdit
	for _, e := range s.model.GetEditPositions() {
		if editmodel.IsUnedited(e.Value.NewValue) {
			continue
		}
		switch filter {
		case FilterChanged:
			if e.Value.State != editmodel.StateChanged {
				continue
			}
		case FilterEditing:
			if e.Value.State != editmodel.StateEditing {
				continue
			}
		}
		out = append(out, CellEdit{
			RowID:    e.Row.ID,
			ColumnID: e.Column.ID,
			NewValue: e.Value.NewValue,
			OldValue: e.Value.OldValue,
			State:    e.Value.State,
		})
	}
	return out
}
