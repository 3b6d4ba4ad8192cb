package editing

import (
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/grid"
)

// DataSource resolves rows and columns. grid.Dataset implements it.
type DataSource interface {
	Columns() []*grid.Column
	Contains(row *grid.Row) bool
	HasColumn(col *grid.Column) bool
	RowByID(id string) (*grid.Row, bool)
	ColumnByID(id string) (*grid.Column, bool)
	RowsInRange(r grid.CellRange) []*grid.Row
}

// DisplayValuer is optionally implemented by a DataSource that formats
// values for display differently from their committed form. Editors open
// with the display value when there is no pending value.
type DisplayValuer interface {
	DisplayValue(pos editmodel.Position) (any, bool)
}

// EditorParams is the parameter bag handed to a live editor.
type EditorParams struct {
	Position editmodel.Position
	// Value is what the editor opens with: the pending value, else the
	// display value, else the committed value.
	Value any
	// Key is the key that started editing, empty when none applies.
	Key             Key
	CellStartedEdit bool
	Errors          []string
}

// Editor is a live editing widget.
type Editor interface {
	// Value returns the widget's current value.
	Value() any
	// CancelAfterEnd reports that the widget wants its value discarded.
	CancelAfterEnd() bool
	// ValidationErrors returns widget-level failures, such as unparsable
	// input.
	ValidationErrors() []string
	// Refresh updates the widget in place.
	Refresh(params EditorParams)
	FocusIn()
	FocusOut()
	// SetInvalid toggles the widget's invalid marker.
	SetInvalid(invalid bool)
}

// Renderer mounts, finds and tears down live editors and refreshes cells.
type Renderer interface {
	// IsCellRendered reports whether the cell currently has a visual
	// representation. Starts on unrendered cells wait for CellAttached.
	IsCellRendered(pos editmodel.Position) bool
	// MountEditor creates an editor. The renderer calls
	// Service.EditorAttached once the editor is usable.
	MountEditor(pos editmodel.Position, params EditorParams)
	Editor(pos editmodel.Position) (Editor, bool)
	UnmountEditor(pos editmodel.Position)
	RefreshCell(pos editmodel.Position)
	RefreshRow(row *grid.Row)
	FocusCell(pos editmodel.Position)
	// FocusHeader moves focus to the header row, reporting false when
	// there is no header to focus.
	FocusHeader() bool
}

// Navigator finds the next focus target. grid.Navigator implements it.
type Navigator interface {
	Next(row *grid.Row, col *grid.Column, backwards bool, accept func(*grid.Row, *grid.Column) bool) (*grid.Row, *grid.Column, bool)
}

// RowValidator validates a whole row given the effective value of every
// column. It returns failure messages.
type RowValidator func(row *grid.Row, values map[*grid.Column]any) []string

type nopRenderer struct{}

func (nopRenderer) IsCellRendered(editmodel.Position) bool       { return true }
func (nopRenderer) MountEditor(editmodel.Position, EditorParams) {}
func (nopRenderer) Editor(editmodel.Position) (Editor, bool)     { return nil, false }
func (nopRenderer) UnmountEditor(editmodel.Position)             {}
func (nopRenderer) RefreshCell(editmodel.Position)               {}
func (nopRenderer) RefreshRow(*grid.Row)                         {}
func (nopRenderer) FocusCell(editmodel.Position)                 {}
func (nopRenderer) FocusHeader() bool                            { return false }

type nopNavigator struct{}

func (nopNavigator) Next(*grid.Row, *grid.Column, bool, func(*grid.Row, *grid.Column) bool) (*grid.Row, *grid.Column, bool) {
	return nil, nil, false
}
