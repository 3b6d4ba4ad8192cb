package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/grid"
)

func loadPeople(t *testing.T) *grid.Dataset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.yaml")
	require.NoError(t, os.WriteFile(path, []byte(people), 0o644))
	ds, err := grid.Load(path)
	require.NoError(t, err)
	return ds
}

func TestCellAt(t *testing.T) {
	ds := loadPeople(t)

	tests := []struct {
		name      string
		colOffset int
		x, y      int
		wantRow   int
		wantCol   int
		wantOK    bool
	}{
		{name: "header line", x: 0, y: 0},
		{name: "negative x", x: -1, y: 1},
		{name: "first cell", x: 0, y: 1, wantOK: true},
		{name: "last cell", x: 25, y: 3, wantRow: 2, wantCol: 2, wantOK: true},
		{name: "past last column", x: 30, y: 1},
		{name: "past last row", x: 0, y: 4},
		{name: "scrolled columns", colOffset: 1, x: 0, y: 2, wantRow: 1, wantCol: 1, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newGridView(ds, 10)
			v.colOffset = tt.colOffset

			row, col, ok := v.cellAt(tt.x, tt.y)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantRow, row)
				assert.Equal(t, tt.wantCol, col)
			}
		})
	}
}

func TestCellEditor(t *testing.T) {
	ds := loadPeople(t)
	row, ok := ds.RowAt(0)
	require.True(t, ok)
	age := ds.Columns()[2]
	pos := editmodel.Position{Row: row, Column: age}

	tests := []struct {
		name       string
		params     editing.EditorParams
		wantText   string
		wantValue  any
		wantErrors bool
	}{
		{
			name:      "opens with current value",
			params:    editing.EditorParams{Value: 36.0},
			wantText:  "36",
			wantValue: 36.0,
		},
		{
			name:      "printable key replaces text",
			params:    editing.EditorParams{Value: 36.0, Key: editing.Key("7"), CellStartedEdit: true},
			wantText:  "7",
			wantValue: 7.0,
		},
		{
			name:     "backspace clears",
			params:   editing.EditorParams{Value: 36.0, Key: editing.KeyBackspace},
			wantText: "",
		},
		{
			name:       "unparsable text",
			params:     editing.EditorParams{Value: "abc"},
			wantText:   "abc",
			wantValue:  "abc",
			wantErrors: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := newCellEditor(pos, tt.params, 10)

			assert.Equal(t, tt.wantText, ed.input.Value())
			assert.Equal(t, tt.wantValue, ed.Value())
			if tt.wantErrors {
				assert.NotEmpty(t, ed.ValidationErrors())
			} else {
				assert.Empty(t, ed.ValidationErrors())
			}
		})
	}
}

func TestCellEditor_Focus(t *testing.T) {
	ds := loadPeople(t)
	row, _ := ds.RowAt(0)
	ed := newCellEditor(editmodel.Position{Row: row, Column: ds.Columns()[1]}, editing.EditorParams{Value: "ada"}, 10)

	assert.False(t, ed.Focused())
	ed.FocusIn()
	assert.True(t, ed.Focused())
	ed.FocusOut()
	assert.False(t, ed.Focused())

	ed.Refresh(editing.EditorParams{Value: "ann", Errors: []string{"bad"}})
	assert.Equal(t, "ann", ed.input.Value())
	assert.True(t, ed.invalid)
}
