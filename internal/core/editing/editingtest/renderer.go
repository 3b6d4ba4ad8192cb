// Package editingtest provides in-memory collaborators for testing code
// built on the editing service.
package editingtest

import (
	"fmt"

	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/grid"
)

// Editor is a fake live editor. Tests drive it by setting Val, Errs or
// Cancel directly.
type Editor struct {
	Params    editing.EditorParams
	Val       any
	Errs      []string
	Cancel    bool
	Invalid   bool
	Focused   bool
	Refreshes int
}

func (e *Editor) Value() any                 { return e.Val }
func (e *Editor) CancelAfterEnd() bool       { return e.Cancel }
func (e *Editor) ValidationErrors() []string { return e.Errs }
func (e *Editor) FocusIn()                   { e.Focused = true }
func (e *Editor) FocusOut()                  { e.Focused = false }
func (e *Editor) SetInvalid(invalid bool)    { e.Invalid = invalid }

func (e *Editor) Refresh(params editing.EditorParams) {
	e.Params = params
	e.Val = params.Value
	e.Refreshes++
}

// Renderer is a fake editing.Renderer that records what it was asked to
// do.
type Renderer struct {
	// OnEditorAttached and OnCellAttached are wired to the service's
	// EditorAttached and CellAttached.
	OnEditorAttached func(editmodel.Position)
	OnCellAttached   func(editmodel.Position)

	// DeferAttach holds mounted editors back until Attach is called.
	DeferAttach bool
	// HasHeader makes FocusHeader succeed.
	HasHeader bool

	Focused       editmodel.Position
	HeaderFocused bool
	Calls         []string

	editors    map[editmodel.Position]*Editor
	mounting   map[editmodel.Position]*Editor
	unrendered map[editmodel.Position]bool
}

var _ editing.Renderer = (*Renderer)(nil)

// NewRenderer creates an empty Renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		editors:    make(map[editmodel.Position]*Editor),
		mounting:   make(map[editmodel.Position]*Editor),
		unrendered: make(map[editmodel.Position]bool),
	}
}

func (r *Renderer) record(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// Hide marks a cell as not rendered.
func (r *Renderer) Hide(pos editmodel.Position) {
	r.unrendered[pos] = true
}

// Show renders a hidden cell and notifies the service.
func (r *Renderer) Show(pos editmodel.Position) {
	delete(r.unrendered, pos)
	if r.OnCellAttached != nil {
		r.OnCellAttached(pos)
	}
}

// Attach finishes mounting a deferred editor.
func (r *Renderer) Attach(pos editmodel.Position) {
	ed, ok := r.mounting[pos]
	if !ok {
		return
	}
	delete(r.mounting, pos)
	r.editors[pos] = ed
	if r.OnEditorAttached != nil {
		r.OnEditorAttached(pos)
	}
}

// Live returns the fake editor mounted on pos, or nil.
func (r *Renderer) Live(pos editmodel.Position) *Editor {
	return r.editors[pos]
}

// Type replaces the value of pos's editor. It panics without an editor so
// tests fail loudly.
func (r *Renderer) Type(pos editmodel.Position, v any) {
	ed, ok := r.editors[pos]
	if !ok {
		panic("editingtest: no editor at " + pos.String())
	}
	ed.Val = v
}

// OpenEditors returns the number of mounted editors.
func (r *Renderer) OpenEditors() int {
	return len(r.editors)
}

func (r *Renderer) IsCellRendered(pos editmodel.Position) bool {
	return !r.unrendered[pos]
}

func (r *Renderer) MountEditor(pos editmodel.Position, params editing.EditorParams) {
	r.record("mount %s", pos)
	ed := &Editor{Params: params, Val: params.Value}
	if params.Key.Printable() {
		ed.Val = string(params.Key)
	}

	if r.DeferAttach {
		r.mounting[pos] = ed
		return
	}
	r.editors[pos] = ed
	if r.OnEditorAttached != nil {
		r.OnEditorAttached(pos)
	}
}

func (r *Renderer) Editor(pos editmodel.Position) (editing.Editor, bool) {
	ed, ok := r.editors[pos]
	if !ok {
		return nil, false
	}
	return ed, true
}

func (r *Renderer) UnmountEditor(pos editmodel.Position) {
	r.record("unmount %s", pos)
	delete(r.editors, pos)
	delete(r.mounting, pos)
}

func (r *Renderer) RefreshCell(pos editmodel.Position) {
	r.record("refresh-cell %s", pos)
}

func (r *Renderer) RefreshRow(row *grid.Row) {
	r.record("refresh-row %s", row.ID)
}

func (r *Renderer) FocusCell(pos editmodel.Position) {
	r.Focused = pos
	r.HeaderFocused = false
}

func (r *Renderer) FocusHeader() bool {
	if !r.HasHeader {
		return false
	}
	r.HeaderFocused = true
	r.Focused = editmodel.Position{}
	return true
}
