package editmodel

import "github.com/colonyops/gridedit/internal/core/grid"

// HasEditsOpts narrows HasEdits.
type HasEditsOpts struct {
	// WithOpenEditor only counts cells in StateEditing.
	WithOpenEditor bool
	// CheckSiblings also looks at the row's pinned sibling.
	CheckSiblings bool
}

// Model is the authoritative store of pending edits.
type Model struct {
	edits Map

	cells *CellValidation
	rows  *RowValidation
}

// New creates an empty model.
func New() *Model {
	return &Model{
		edits: make(Map),
		cells: NewCellValidation(),
		rows:  NewRowValidation(),
	}
}

// CellValidation returns the per-cell validation store.
func (m *Model) CellValidation() *CellValidation { return m.cells }

// RowValidation returns the per-row validation store.
func (m *Model) RowValidation() *RowValidation { return m.rows }

// Start seeds an Unedited editing entry for pos unless one exists.
func (m *Model) Start(pos Position) {
	if !pos.IsCell() {
		return
	}
	if _, ok := m.GetEdit(pos); ok {
		return
	}
	m.SetEdit(pos, Value{
		NewValue: Unedited,
		OldValue: pos.Row.Value(pos.Column),
		State:    StateEditing,
	})
}

// SetEdit inserts or overwrites the edit for a cell. Row and column are
// both required.
func (m *Model) SetEdit(pos Position, v Value) {
	if !pos.IsCell() {
		return
	}
	row, ok := m.edits[pos.Row]
	if !ok {
		row = make(Row)
		m.edits[pos.Row] = row
	}
	cloned := v.Clone()
	row[pos.Column] = &cloned
}

// GetEdit returns a copy of the edit for a cell.
func (m *Model) GetEdit(pos Position) (Value, bool) {
	if !pos.IsCell() {
		return Value{}, false
	}
	v, ok := m.edits[pos.Row][pos.Column]
	if !ok || v == nil {
		return Value{}, false
	}
	return v.Clone(), true
}

// GetEditRow returns a copy of a row's edits. With checkSibling the pinned
// sibling's edits are returned when the row itself has none.
func (m *Model) GetEditRow(row *grid.Row, checkSibling bool) (Row, bool) {
	if row == nil {
		return nil, false
	}
	if edits, ok := m.edits[row]; ok && len(edits) > 0 {
		return Map{row: edits}.Clone()[row], true
	}
	if checkSibling && row.Sibling != nil {
		if edits, ok := m.edits[row.Sibling]; ok && len(edits) > 0 {
			return Map{row.Sibling: edits}.Clone()[row.Sibling], true
		}
	}
	return nil, false
}

// RemoveEdits deletes one cell's edit, or every edit of the row when the
// column is nil.
func (m *Model) RemoveEdits(pos Position) {
	if pos.Row == nil {
		return
	}
	row, ok := m.edits[pos.Row]
	if !ok {
		return
	}
	if pos.Column == nil {
		delete(m.edits, pos.Row)
		return
	}
	delete(row, pos.Column)
	if len(row) == 0 {
		delete(m.edits, pos.Row)
	}
}

// ClearEditValue reverts a cell's pending value to its original and marks
// it changed.
func (m *Model) ClearEditValue(pos Position) {
	v, ok := m.lookup(pos)
	if !ok {
		return
	}
	v.NewValue = v.OldValue
	v.State = StateChanged
	v.Errors = nil
}

// SetState moves a cell to state without touching its values. A missing
// entry is created as an Unedited placeholder.
func (m *Model) SetState(pos Position, state State) {
	if !pos.IsCell() {
		return
	}
	if v, ok := m.lookup(pos); ok {
		v.State = state
		return
	}
	m.SetEdit(pos, Value{
		NewValue: Unedited,
		OldValue: pos.Row.Value(pos.Column),
		State:    state,
	})
}

// SetErrors attaches validation messages to an existing edit.
func (m *Model) SetErrors(pos Position, msgs []string) {
	if v, ok := m.lookup(pos); ok {
		v.Errors = append([]string(nil), msgs...)
	}
}

// GetEditMap returns the live map, or a deep copy when copied is true.
// Callers must not mutate the live map.
func (m *Model) GetEditMap(copied bool) Map {
	if copied {
		return m.edits.Clone()
	}
	return m.edits
}

// SetEditMap replaces all pending edits with a deep copy of edits.
func (m *Model) SetEditMap(edits Map) {
	m.edits = edits.Clone()
}

// HasEdits reports whether pos has pending edits. A zero position asks
// about the whole model; a row-only position asks about the row.
func (m *Model) HasEdits(pos Position, opts HasEditsOpts) bool {
	if pos.Row == nil {
		if !opts.WithOpenEditor {
			return len(m.edits) > 0
		}
		for _, edits := range m.edits {
			if anyEditing(edits) {
				return true
			}
		}
		return false
	}

	edits, ok := m.GetEditRow(pos.Row, opts.CheckSiblings)
	if !ok {
		return false
	}

	if pos.Column != nil {
		v, ok := edits[pos.Column]
		if !ok {
			return false
		}
		return !opts.WithOpenEditor || v.State == StateEditing
	}

	if opts.WithOpenEditor {
		return anyEditing(edits)
	}
	return len(edits) > 0
}

// HasRowEdits reports whether a row has pending edits.
func (m *Model) HasRowEdits(row *grid.Row, opts HasEditsOpts) bool {
	if row == nil {
		return false
	}
	return m.HasEdits(Position{Row: row}, opts)
}

// GetEditPositions flattens the model into a sorted list of edits.
func (m *Model) GetEditPositions() []Edit {
	return Positions(m.edits)
}

// Clear discards every pending edit and validation result.
func (m *Model) Clear() {
	m.edits = make(Map)
	m.cells.Reset()
	m.rows.Reset()
}

// Stop discards the edits for pos, or everything for a zero position.
func (m *Model) Stop(pos Position) {
	if pos.IsZero() {
		m.Clear()
		return
	}
	m.RemoveEdits(pos)
	m.cells.Clear(pos)
	if pos.Column == nil || !m.HasRowEdits(pos.Row, HasEditsOpts{}) {
		m.rows.Clear(pos.Row)
	}
}

func (m *Model) lookup(pos Position) (*Value, bool) {
	if !pos.IsCell() {
		return nil, false
	}
	v, ok := m.edits[pos.Row][pos.Column]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func anyEditing(edits Row) bool {
	for _, v := range edits {
		if v != nil && v.State == StateEditing {
			return true
		}
	}
	return false
}
