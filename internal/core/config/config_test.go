package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/grid"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "/tmp/gridedit")
	require.NoError(t, err)

	assert.Equal(t, "single-cell", cfg.Editing.Mode)
	assert.Equal(t, 2, cfg.Editing.ClickToEdit)
	assert.Equal(t, "block", cfg.Editing.InvalidCommit)
	assert.Equal(t, "tokyo-night", cfg.TUI.Theme)
	assert.Equal(t, 14, cfg.TUI.CellWidth)
	assert.True(t, cfg.WatchEnabled())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/tmp/gridedit", cfg.DataDir)
	assert.Equal(t, "/tmp/gridedit/drafts", cfg.DraftsDir())
	assert.Equal(t, "/tmp/gridedit/gridedit.log", cfg.LogFile())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
editing:
  mode: full-row
  click_to_edit: 1
  batch: true
  invalid_commit: revert
columns:
  - match: "price*"
    type: number
    min: 0
tui:
  theme: gruvbox
  watch: false
`)

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	assert.Equal(t, "full-row", cfg.Editing.Mode)
	assert.Equal(t, 14, cfg.TUI.CellWidth, "unset values get defaults")
	assert.False(t, cfg.WatchEnabled())
	assert.Equal(t, "/data", cfg.DataDir)

	settings := cfg.Settings()
	assert.Equal(t, editing.ModeFullRow, settings.Mode)
	assert.Equal(t, 1, settings.ClickToEdit)
	assert.True(t, settings.Batch)
	assert.Equal(t, editing.InvalidCommitRevert, settings.InvalidCommit)

	require.Len(t, cfg.Columns, 1)
	require.NotNil(t, cfg.Columns[0].Min)
	assert.InDelta(t, 0.0, *cfg.Columns[0].Min, 0)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "editing: [", "parse config file"},
		{"bad mode", "editing:\n  mode: sideways\n", "editing.mode"},
		{"bad clicks", "editing:\n  click_to_edit: 3\n", "click_to_edit"},
		{"bad policy", "editing:\n  invalid_commit: shrug\n", "invalid_commit"},
		{"narrow cells", "tui:\n  cell_width: 2\n", "cell_width"},
		{"rule without match", "columns:\n  - type: number\n", "match is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), "/data")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_EmptyDataDir(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}

func TestApplyColumns(t *testing.T) {
	yes, no := true, false
	minPrice := 0.0

	cfg := DefaultConfig()
	cfg.Columns = []ColumnRule{
		{Match: "*", Editable: &yes},
		{Match: "price_*", Type: "number", Min: &minPrice, SingleClickEdit: &yes},
		{Match: "id", Editable: &no},
		{Match: "name", Required: true, MaxLength: 5, Pattern: "^[a-z]+$"},
	}

	ds := grid.New([]*grid.Column{
		{ID: "id"},
		{ID: "name"},
		{ID: "price_net"},
	}, nil)
	cfg.ApplyColumns(ds)

	id, _ := ds.ColumnByID("id")
	name, _ := ds.ColumnByID("name")
	price, _ := ds.ColumnByID("price_net")

	assert.False(t, id.Editable, "later rule wins")
	assert.True(t, name.Editable)
	assert.True(t, name.Validation.Required)
	assert.Equal(t, 5, name.Validation.MaxLength)
	require.NotNil(t, name.Validation.Pattern)
	assert.True(t, name.Validation.Pattern.MatchString("ada"))

	assert.Equal(t, grid.TypeNumber, price.Type)
	assert.Equal(t, 1, price.ClickToEdit)
	require.NotNil(t, price.Validation.Min)
	assert.InDelta(t, 0.0, *price.Validation.Min, 0)
}

func TestColumnRule_Matches(t *testing.T) {
	tests := []struct {
		pattern string
		id      string
		want    bool
	}{
		{"*", "name", true},
		{"price*", "price_net", true},
		{"price*", "unit_price", false},
		{"{a,b}", "b", true},
		{"[", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnRule{Match: tt.pattern}.Matches(tt.id))
		})
	}
}
