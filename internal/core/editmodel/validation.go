package editmodel

import "github.com/colonyops/gridedit/internal/core/grid"

// CellValidation holds the latest validation messages per cell.
type CellValidation struct {
	errs map[*grid.Row]map[*grid.Column][]string
}

// NewCellValidation creates an empty cell validation store.
func NewCellValidation() *CellValidation {
	return &CellValidation{errs: make(map[*grid.Row]map[*grid.Column][]string)}
}

// Get returns the messages recorded for pos.
func (v *CellValidation) Get(pos Position) []string {
	return v.errs[pos.Row][pos.Column]
}

// Set records messages for pos; an empty list clears the cell.
func (v *CellValidation) Set(pos Position, msgs []string) {
	if !pos.IsCell() {
		return
	}
	if len(msgs) == 0 {
		v.Clear(pos)
		return
	}
	row, ok := v.errs[pos.Row]
	if !ok {
		row = make(map[*grid.Column][]string)
		v.errs[pos.Row] = row
	}
	row[pos.Column] = append([]string(nil), msgs...)
}

// Clear drops the messages for a cell, or for a whole row when the column
// is nil.
func (v *CellValidation) Clear(pos Position) {
	row, ok := v.errs[pos.Row]
	if !ok {
		return
	}
	if pos.Column == nil {
		delete(v.errs, pos.Row)
		return
	}
	delete(row, pos.Column)
	if len(row) == 0 {
		delete(v.errs, pos.Row)
	}
}

// HasErrors reports whether pos (or any cell when pos is zero, or any cell
// of the row when the column is nil) has messages.
func (v *CellValidation) HasErrors(pos Position) bool {
	if pos.Row == nil {
		return len(v.errs) > 0
	}
	row, ok := v.errs[pos.Row]
	if !ok {
		return false
	}
	if pos.Column == nil {
		return len(row) > 0
	}
	return len(row[pos.Column]) > 0
}

// Reset drops all messages.
func (v *CellValidation) Reset() {
	v.errs = make(map[*grid.Row]map[*grid.Column][]string)
}

// RowValidation holds whole-row validation messages.
type RowValidation struct {
	errs map[*grid.Row][]string
}

// NewRowValidation creates an empty row validation store.
func NewRowValidation() *RowValidation {
	return &RowValidation{errs: make(map[*grid.Row][]string)}
}

// Get returns the messages recorded for row.
func (v *RowValidation) Get(row *grid.Row) []string {
	return v.errs[row]
}

// Set records messages for row; an empty list clears it.
func (v *RowValidation) Set(row *grid.Row, msgs []string) {
	if row == nil {
		return
	}
	if len(msgs) == 0 {
		delete(v.errs, row)
		return
	}
	v.errs[row] = append([]string(nil), msgs...)
}

// Clear drops the messages for row.
func (v *RowValidation) Clear(row *grid.Row) {
	delete(v.errs, row)
}

// HasErrors reports whether row (or any row when nil) has messages.
func (v *RowValidation) HasErrors(row *grid.Row) bool {
	if row == nil {
		return len(v.errs) > 0
	}
	return len(v.errs[row]) > 0
}

// Reset drops all messages.
func (v *RowValidation) Reset() {
	v.errs = make(map[*grid.Row][]string)
}
