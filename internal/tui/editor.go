package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/grid"
)

// cellEditor is the live editing widget for one cell. Text is parsed
// against the column type on every read, so unparsable input surfaces as a
// widget-level validation error.
type cellEditor struct {
	col     *grid.Column
	input   textinput.Model
	invalid bool
	cancel  bool
}

var _ editing.Editor = (*cellEditor)(nil)

func newCellEditor(pos editmodel.Position, params editing.EditorParams, width int) *cellEditor {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Width = max(width-3, 1)
	ti.Cursor.SetMode(cursor.CursorStatic)

	ed := &cellEditor{col: pos.Column, input: ti}
	ed.Refresh(params)

	switch {
	case params.Key == editing.KeyBackspace || params.Key == editing.KeyDelete:
		ed.input.SetValue("")
	case params.CellStartedEdit && params.Key.Printable():
		ed.input.SetValue(string(params.Key))
	}
	ed.input.CursorEnd()

	return ed
}

func (e *cellEditor) text(v any) string {
	if editmodel.IsUnedited(v) {
		return ""
	}
	return e.col.Format(v)
}

// Value returns the parsed input, or the raw text when it does not parse.
func (e *cellEditor) Value() any {
	v, err := e.col.Parse(e.input.Value())
	if err != nil {
		return e.input.Value()
	}
	return v
}

func (e *cellEditor) CancelAfterEnd() bool { return e.cancel }

func (e *cellEditor) ValidationErrors() []string {
	if _, err := e.col.Parse(e.input.Value()); err != nil {
		return []string{err.Error()}
	}
	return nil
}

func (e *cellEditor) Refresh(params editing.EditorParams) {
	e.input.SetValue(e.text(params.Value))
	e.input.CursorEnd()
	e.invalid = len(params.Errors) > 0
}

func (e *cellEditor) FocusIn() { _ = e.input.Focus() }

func (e *cellEditor) FocusOut() { e.input.Blur() }

func (e *cellEditor) SetInvalid(invalid bool) { e.invalid = invalid }

func (e *cellEditor) Focused() bool { return e.input.Focused() }

func (e *cellEditor) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

func (e *cellEditor) View() string { return e.input.View() }
