package grid

import "reflect"

// Pinned identifies where a row is pinned.
type Pinned string

const (
	PinnedNone Pinned = ""
	PinnedTop  Pinned = "top"
)

// Row is one row entity of the grid. Rows are compared by identity; the
// editing layer keys pending edits by *Row.
type Row struct {
	ID   string
	Data map[string]any

	// Group marks group rows. With tree data a group row may carry its own
	// data; a group row without data is a filler row.
	Group bool
	Level int

	Pinned Pinned

	// Sibling links a pinned mirror and the row it mirrors. Both share the
	// same Data map.
	Sibling *Row

	// Index is the row's position in display order.
	Index int
}

// Value returns the committed value for a column.
func (r *Row) Value(col *Column) any {
	if r == nil || col == nil || r.Data == nil {
		return nil
	}
	return r.Data[col.ID]
}

// SetDataValue writes a committed value. It returns false when the value
// is unchanged so callers can skip treating the write as a data mutation.
func (r *Row) SetDataValue(col *Column, v any) bool {
	if r == nil || col == nil {
		return false
	}
	if ValuesEqual(r.Value(col), v) {
		return false
	}
	if r.Data == nil {
		r.Data = make(map[string]any)
		if r.Sibling != nil && r.Sibling.Data == nil {
			r.Sibling.Data = r.Data
		}
	}
	r.Data[col.ID] = v
	return true
}

// HasData reports whether the row carries data. Tree-data filler rows do
// not.
func (r *Row) HasData() bool {
	return r != nil && r.Data != nil
}

// ValuesEqual compares two cell values. Numbers compare numerically so an
// int loaded from YAML equals the float64 typed into an editor.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, aNum := numeric(a)
	fb, bNum := numeric(b)
	if aNum && bNum {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func numeric(v any) (float64, bool) {
	if _, ok := v.(string); ok {
		return 0, false
	}
	return toFloat(v)
}
