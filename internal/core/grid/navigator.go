package grid

// CellRange is a rectangular block of cells: an inclusive span of display
// rows across a set of columns.
type CellRange struct {
	StartRow int
	EndRow   int
	Columns  []*Column
}

// Navigator walks cells in display order, row-major.
type Navigator struct {
	ds *Dataset
}

// NewNavigator creates a navigator over ds.
func NewNavigator(ds *Dataset) *Navigator {
	return &Navigator{ds: ds}
}

// Next returns the first cell after (row, col) for which accept returns
// true, searching forwards or backwards. A nil accept accepts every cell.
// It returns false when the search runs off either end of the grid.
func (n *Navigator) Next(row *Row, col *Column, backwards bool, accept func(*Row, *Column) bool) (*Row, *Column, bool) {
	cols := n.ds.Columns()
	if len(cols) == 0 || row == nil || col == nil {
		return nil, nil, false
	}

	step := 1
	if backwards {
		step = -1
	}

	total := n.ds.RowCount() * len(cols)
	for i := row.Index*len(cols) + col.Index + step; i >= 0 && i < total; i += step {
		r, ok := n.ds.RowAt(i / len(cols))
		if !ok {
			return nil, nil, false
		}
		c := cols[i%len(cols)]
		if accept == nil || accept(r, c) {
			return r, c, true
		}
	}

	return nil, nil, false
}
