// Package editmodel stores pending cell edits. It is a pure store: no
// validation, no rendering, no event dispatch. The editing service is its
// only writer.
package editmodel

import (
	"fmt"
	"slices"

	"github.com/colonyops/gridedit/internal/core/grid"
)

// State is the lifecycle state of a pending edit.
type State string

const (
	// StateEditing means a live editor currently owns the cell.
	StateEditing State = "editing"
	// StateChanged means the value is pending with no editor attached.
	StateChanged State = "changed"
)

type sentinel struct{ name string }

func (s *sentinel) String() string { return s.name }

// Unedited is the pending value of a cell whose editor has not produced a
// value yet. It is distinct from nil (the user cleared the cell) and from
// any user value; compare against it with == only.
var Unedited any = &sentinel{name: "<unedited>"}

// IsUnedited reports whether v is the Unedited marker.
func IsUnedited(v any) bool {
	return v == Unedited
}

// Position identifies a cell, or a whole row when Column is nil.
type Position struct {
	Row    *grid.Row
	Column *grid.Column
}

// IsCell reports whether both row and column are set.
func (p Position) IsCell() bool {
	return p.Row != nil && p.Column != nil
}

// IsZero reports whether the position names nothing.
func (p Position) IsZero() bool {
	return p.Row == nil && p.Column == nil
}

func (p Position) String() string {
	row, col := "<nil>", "<nil>"
	if p.Row != nil {
		row = p.Row.ID
	}
	if p.Column != nil {
		col = p.Column.ID
	}
	return fmt.Sprintf("%s/%s", row, col)
}

// Value is the pending edit record for one cell.
type Value struct {
	NewValue any
	OldValue any
	State    State
	Errors   []string
}

// Changed reports whether the pending value differs from the original.
// An Unedited pending value never counts as a change.
func (v Value) Changed() bool {
	if IsUnedited(v.NewValue) {
		return false
	}
	return !grid.ValuesEqual(v.NewValue, v.OldValue)
}

// Clone returns a copy that shares no mutable state with v.
func (v Value) Clone() Value {
	v.Errors = slices.Clone(v.Errors)
	return v
}

// Row maps column to pending edit for one row.
type Row map[*grid.Column]*Value

// Map maps row to its pending edits. A row is present only while it has at
// least one pending edit.
type Map map[*grid.Row]Row

// Clone deep-copies the map: new outer and inner maps and cloned values.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for row, edits := range m {
		if len(edits) == 0 {
			continue
		}
		inner := make(Row, len(edits))
		for col, v := range edits {
			if v == nil {
				continue
			}
			cloned := v.Clone()
			inner[col] = &cloned
		}
		if len(inner) > 0 {
			out[row] = inner
		}
	}
	return out
}

// Edit is a flattened map entry.
type Edit struct {
	Position
	Value Value
}

// Positions flattens a map into a list sorted by display order so
// iteration is deterministic.
func Positions(m Map) []Edit {
	var out []Edit
	for row, edits := range m {
		for col, v := range edits {
			if v == nil {
				continue
			}
			out = append(out, Edit{Position: Position{Row: row, Column: col}, Value: v.Clone()})
		}
	}
	slices.SortFunc(out, func(a, b Edit) int {
		if a.Row.Index != b.Row.Index {
			return a.Row.Index - b.Row.Index
		}
		if a.Row != b.Row {
			return compareIDs(a.Row.ID, b.Row.ID)
		}
		return a.Column.Index - b.Column.Index
	})
	return out
}

func compareIDs(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
