package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/grid"
	"github.com/colonyops/gridedit/internal/core/styles"
)

// gridView owns cursor, scroll and live editors. It is the editing
// service's renderer: the service mounts and focuses editors through it,
// and it reports cells and editors back once they are on screen.
type gridView struct {
	ds  *grid.Dataset
	svc *editing.Service

	cellWidth int
	width     int
	bodyRows  int // body rows that fit below the header and pinned rows

	cursorRow, cursorCol int
	anchorRow, anchorCol int // -1 when nothing is selected
	rowOffset, colOffset int
	headerFocused        bool

	editors map[editmodel.Position]*cellEditor
	mounted []editmodel.Position // editors not yet reported attached
}

var _ editing.Renderer = (*gridView)(nil)

func newGridView(ds *grid.Dataset, cellWidth int) *gridView {
	return &gridView{
		ds:        ds,
		cellWidth: max(cellWidth, 4),
		anchorRow: -1,
		anchorCol: -1,
		editors:   make(map[editmodel.Position]*cellEditor),
	}
}

// --- editing.Renderer ---

func (v *gridView) IsCellRendered(pos editmodel.Position) bool {
	if v.width == 0 || v.bodyRows <= 0 {
		return true // not laid out yet, everything counts as visible
	}
	return v.rowVisible(pos.Row.Index) && v.colVisible(pos.Column.Index)
}

func (v *gridView) MountEditor(pos editmodel.Position, params editing.EditorParams) {
	v.editors[pos] = newCellEditor(pos, params, v.cellWidth)
	v.mounted = append(v.mounted, pos)
}

func (v *gridView) Editor(pos editmodel.Position) (editing.Editor, bool) {
	ed, ok := v.editors[pos]
	if !ok {
		return nil, false
	}
	return ed, true
}

func (v *gridView) UnmountEditor(pos editmodel.Position) {
	delete(v.editors, pos)
}

// RefreshCell and RefreshRow are no-ops: every frame is drawn from the
// model.
func (v *gridView) RefreshCell(editmodel.Position) {}

func (v *gridView) RefreshRow(*grid.Row) {}

func (v *gridView) FocusCell(pos editmodel.Position) {
	if !pos.IsCell() {
		return
	}
	v.headerFocused = false
	v.moveTo(pos.Row.Index, pos.Column.Index, false)
}

func (v *gridView) FocusHeader() bool {
	v.headerFocused = true
	return true
}

// flush reports newly visible cells and freshly mounted editors to the
// service, draining work queued while they were off screen.
func (v *gridView) flush() {
	if v.svc == nil {
		return
	}
	for len(v.mounted) > 0 {
		pos := v.mounted[0]
		v.mounted = v.mounted[1:]
		v.svc.EditorAttached(pos)
	}
	for _, row := range v.visibleRows() {
		for _, col := range v.visibleCols() {
			v.svc.CellAttached(editmodel.Position{Row: row, Column: col})
		}
	}
}

// --- cursor and scrolling ---

func (v *gridView) cursor() editmodel.Position {
	row, ok := v.ds.RowAt(v.cursorRow)
	cols := v.ds.Columns()
	if !ok || v.cursorCol < 0 || v.cursorCol >= len(cols) {
		return editmodel.Position{}
	}
	return editmodel.Position{Row: row, Column: cols[v.cursorCol]}
}

// moveTo places the cursor. With extend the selection anchor is kept (or
// set at the old cursor), otherwise the selection is cleared.
func (v *gridView) moveTo(row, col int, extend bool) {
	if extend {
		if v.anchorRow < 0 {
			v.anchorRow, v.anchorCol = v.cursorRow, v.cursorCol
		}
	} else {
		v.anchorRow, v.anchorCol = -1, -1
	}
	v.cursorRow = clamp(row, 0, v.ds.RowCount()-1)
	v.cursorCol = clamp(col, 0, len(v.ds.Columns())-1)
	v.scrollIntoView()
}

func (v *gridView) move(dRow, dCol int, extend bool) {
	v.headerFocused = false
	v.moveTo(v.cursorRow+dRow, v.cursorCol+dCol, extend)
}

func (v *gridView) pinnedCount() int { return len(v.ds.PinnedRows()) }

func (v *gridView) visibleColCount() int {
	if v.width == 0 {
		return len(v.ds.Columns())
	}
	return max(v.width/v.cellWidth, 1)
}

func (v *gridView) scrollIntoView() {
	if body := v.cursorRow - v.pinnedCount(); body >= 0 && v.bodyRows > 0 {
		if body < v.rowOffset {
			v.rowOffset = body
		}
		if body >= v.rowOffset+v.bodyRows {
			v.rowOffset = body - v.bodyRows + 1
		}
	}
	n := v.visibleColCount()
	if v.cursorCol < v.colOffset {
		v.colOffset = v.cursorCol
	}
	if v.cursorCol >= v.colOffset+n {
		v.colOffset = v.cursorCol - n + 1
	}
}

// clampToData keeps cursor and scroll inside the dataset after a reload.
func (v *gridView) clampToData() {
	v.cursorRow = clamp(v.cursorRow, 0, v.ds.RowCount()-1)
	v.cursorCol = clamp(v.cursorCol, 0, len(v.ds.Columns())-1)
	v.anchorRow, v.anchorCol = -1, -1
	v.rowOffset = clamp(v.rowOffset, 0, max(len(v.ds.Rows())-1, 0))
	v.colOffset = clamp(v.colOffset, 0, max(len(v.ds.Columns())-1, 0))
	v.scrollIntoView()
}

func (v *gridView) rowVisible(idx int) bool {
	p := v.pinnedCount()
	if idx < p {
		return true
	}
	body := idx - p
	return body >= v.rowOffset && body < v.rowOffset+v.bodyRows
}

func (v *gridView) colVisible(idx int) bool {
	return idx >= v.colOffset && idx < v.colOffset+v.visibleColCount()
}

func (v *gridView) visibleRows() []*grid.Row {
	out := append([]*grid.Row(nil), v.ds.PinnedRows()...)
	body := v.ds.Rows()
	end := len(body)
	if v.bodyRows > 0 {
		end = min(v.rowOffset+v.bodyRows, len(body))
	}
	for i := v.rowOffset; i < end; i++ {
		out = append(out, body[i])
	}
	return out
}

func (v *gridView) visibleCols() []*grid.Column {
	cols := v.ds.Columns()
	if v.colOffset >= len(cols) {
		return nil
	}
	end := min(v.colOffset+v.visibleColCount(), len(cols))
	return cols[v.colOffset:end]
}

// cellAt maps screen coordinates inside the grid area to a cell. Line 0 is
// the header.
func (v *gridView) cellAt(x, y int) (row, col int, ok bool) {
	if y <= 0 || x < 0 {
		return 0, 0, false
	}
	col = v.colOffset + x/v.cellWidth
	if col >= len(v.ds.Columns()) {
		return 0, 0, false
	}
	line := y - 1
	if p := v.pinnedCount(); line < p {
		row = line
	} else {
		row = p + v.rowOffset + (line - p)
	}
	if row >= v.ds.RowCount() || (v.bodyRows > 0 && !v.rowVisible(row)) {
		return 0, 0, false
	}
	return row, col, true
}

// --- selection ---

func (v *gridView) hasSelection() bool { return v.anchorRow >= 0 }

// anchor returns the cell the selection started on.
func (v *gridView) anchor() editmodel.Position {
	row, ok := v.ds.RowAt(v.anchorRow)
	cols := v.ds.Columns()
	if !ok || v.anchorCol < 0 || v.anchorCol >= len(cols) {
		return editmodel.Position{}
	}
	return editmodel.Position{Row: row, Column: cols[v.anchorCol]}
}

func (v *gridView) selected(row, col int) bool {
	if !v.hasSelection() {
		return false
	}
	r0, r1 := minMax(v.anchorRow, v.cursorRow)
	c0, c1 := minMax(v.anchorCol, v.cursorCol)
	return row >= r0 && row <= r1 && col >= c0 && col <= c1
}

// selection returns the selected block as a cell range, or the cursor cell
// when nothing is selected.
func (v *gridView) selection() []grid.CellRange {
	r0, r1, c0, c1 := v.cursorRow, v.cursorRow, v.cursorCol, v.cursorCol
	if v.hasSelection() {
		r0, r1 = minMax(v.anchorRow, v.cursorRow)
		c0, c1 = minMax(v.anchorCol, v.cursorCol)
	}
	cols := v.ds.Columns()
	if len(cols) == 0 {
		return nil
	}
	return []grid.CellRange{{StartRow: r0, EndRow: r1, Columns: cols[c0 : c1+1]}}
}

// --- rendering ---

func (v *gridView) render() string {
	cols := v.visibleCols()
	var b strings.Builder

	for _, col := range cols {
		st := styles.HeaderCellStyle
		if v.headerFocused && col.Index == v.cursorCol {
			st = st.Reverse(true)
		}
		b.WriteString(v.cell(st, col.Title()))
	}

	for _, row := range v.visibleRows() {
		b.WriteByte('\n')
		for i, col := range cols {
			b.WriteString(v.renderCell(row, col, i == 0))
		}
	}

	return b.String()
}

func (v *gridView) renderCell(row *grid.Row, col *grid.Column, first bool) string {
	pos := editmodel.Position{Row: row, Column: col}

	if ed, ok := v.editors[pos]; ok {
		st := styles.EditingCellStyle
		if ed.invalid {
			st = styles.InvalidCellStyle.Reverse(true)
		}
		return v.cell(st, ed.View())
	}

	text := col.Format(v.svc.GetCellDataValue(pos))
	if first && row.Level > 0 {
		text = strings.Repeat("  ", row.Level) + text
	}
	if row.Group && !row.HasData() && first {
		text = "▸ " + row.ID
	}

	return v.cell(v.cellStyle(pos), text)
}

func (v *gridView) cellStyle(pos editmodel.Position) lipgloss.Style {
	model := v.svc.Model()
	row, col := pos.Row.Index, pos.Column.Index

	switch {
	case !v.headerFocused && row == v.cursorRow && col == v.cursorCol:
		return styles.CursorCellStyle
	case v.selected(row, col):
		return styles.SelectedCellStyle
	case model.CellValidation().HasErrors(pos):
		return styles.InvalidCellStyle
	}

	if e, ok := model.GetEdit(pos); ok && e.Changed() {
		return styles.PendingCellStyle
	}

	switch {
	case pos.Row.Group:
		return styles.GroupCellStyle
	case pos.Row.Pinned != grid.PinnedNone:
		return styles.PinnedCellStyle
	case !v.svc.IsCellEditable(pos, editing.SourceUI):
		return styles.ReadOnlyCellStyle
	}
	return styles.CellStyle
}

func (v *gridView) cell(st lipgloss.Style, text string) string {
	text = ansi.Truncate(text, v.cellWidth-2, "…")
	return st.Width(v.cellWidth).MaxWidth(v.cellWidth).Render(text)
}

func clamp(n, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(n, lo), hi)
}

func minMax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
