package yamlfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/gridedit/internal/core/drafts"
	"github.com/colonyops/gridedit/internal/core/editing"
)

func newDraft(t *testing.T, dataset string, savedAt time.Time) drafts.Draft {
	t.Helper()
	d, err := drafts.New(dataset, editing.ModeSingleCell, []editing.CellEdit{
		{RowID: "r1", ColumnID: "name", NewValue: "ada lovelace", OldValue: "ada"},
		{RowID: "r2", ColumnID: "age", NewValue: 41.0, OldValue: 40.0},
	})
	require.NoError(t, err)
	d.SavedAt = savedAt
	return d
}

func TestDraftStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore(filepath.Join(t.TempDir(), "drafts"))

	d := newDraft(t, "people.yaml", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, store.Save(ctx, d))

	got, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, d.Dataset, got.Dataset)
	assert.Equal(t, editing.ModeSingleCell, got.Mode)
	assert.True(t, d.SavedAt.Equal(got.SavedAt))
	require.Len(t, got.Edits, 2)
	assert.Equal(t, "ada lovelace", got.Edits[0].NewValue)
	assert.Equal(t, "name", got.Edits[0].ColumnID)
}

func TestDraftStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore(t.TempDir())

	d := newDraft(t, "people.yaml", time.Now())
	require.NoError(t, store.Save(ctx, d))

	d.Edits = d.Edits[:1]
	require.NoError(t, store.Save(ctx, d))

	got, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, got.Edits, 1)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDraftStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore(t.TempDir())

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, drafts.ErrNotFound)

	err = store.Delete(ctx, "missing")
	require.ErrorIs(t, err, drafts.ErrNotFound)
}

func TestDraftStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewDraftStore(dir)

	now := time.Now()
	older := newDraft(t, "a.yaml", now.Add(-time.Hour))
	newer := newDraft(t, "b.yaml", now)
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))

	// junk files are skipped
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("{{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestDraftStore_ListMissingDir(t *testing.T) {
	store := NewDraftStore(filepath.Join(t.TempDir(), "nope"))
	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDraftStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore(t.TempDir())

	d := newDraft(t, "people.yaml", time.Now())
	require.NoError(t, store.Save(ctx, d))
	require.NoError(t, store.Delete(ctx, d.ID))

	_, err := store.Get(ctx, d.ID)
	require.ErrorIs(t, err, drafts.ErrNotFound)
}

func TestDraftIDIsStable(t *testing.T) {
	a, err := drafts.New("people.yaml", editing.ModeFullRow, nil)
	require.NoError(t, err)
	b, err := drafts.New("./people.yaml", editing.ModeSingleCell, nil)
	require.NoError(t, err)
	c, err := drafts.New("other.yaml", editing.ModeSingleCell, nil)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}
