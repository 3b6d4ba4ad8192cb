package editing_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/editing/editingtest"
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/eventbus"
	"github.com/colonyops/gridedit/internal/core/eventbus/testbus"
	"github.com/colonyops/gridedit/internal/core/grid"
)

type fixture struct {
	ds  *grid.Dataset
	r   *editingtest.Renderer
	bus *testbus.Bus
	svc *editing.Service

	id, name, age *grid.Column
}

func newFixture(t *testing.T, settings editing.Settings) *fixture {
	t.Helper()

	minAge := 0.0
	f := &fixture{
		id:   &grid.Column{ID: "id"},
		name: &grid.Column{ID: "name", Editable: true, Validation: grid.Validation{Required: true}},
		age:  &grid.Column{ID: "age", Type: grid.TypeNumber, Editable: true, Validation: grid.Validation{Min: &minAge}},
	}
	f.ds = grid.New([]*grid.Column{f.id, f.name, f.age}, []*grid.Row{
		{ID: "r1", Data: map[string]any{"id": "1", "name": "ada", "age": 36.0}},
		{ID: "r2", Data: map[string]any{"id": "2", "name": "bob", "age": 40.0}},
		{ID: "r3", Data: map[string]any{"id": "3", "name": "cy", "age": 22.0}},
	})
	f.bus = testbus.New(t)
	f.r = editingtest.NewRenderer()
	f.svc = editing.New(editing.Deps{
		Data:      f.ds,
		Renderer:  f.r,
		Navigator: grid.NewNavigator(f.ds),
		Bus:       f.bus.EventBus,
		Logger:    zerolog.Nop(),
	}, settings)
	f.r.OnEditorAttached = f.svc.EditorAttached
	f.r.OnCellAttached = f.svc.CellAttached
	return f
}

func (f *fixture) row(id string) *grid.Row {
	r, ok := f.ds.RowByID(id)
	if !ok {
		panic("no row " + id)
	}
	return r
}

func (f *fixture) pos(rowID string, col *grid.Column) editmodel.Position {
	return editmodel.Position{Row: f.row(rowID), Column: col}
}

func (f *fixture) start(pos editmodel.Position) {
	f.svc.StartEditing(pos, editing.StartParams{Trigger: editing.KeyDown(editing.KeyEnter)})
}

func (f *fixture) pressEnter() bool {
	return f.svc.StopEditing(editmodel.Position{}, editing.StopParams{Trigger: editing.KeyDown(editing.KeyEnter)})
}

func (f *fixture) pressEscape() bool {
	return f.svc.StopEditing(editmodel.Position{}, editing.StopParams{Trigger: editing.KeyDown(editing.KeyEscape), Cancel: true})
}

func (f *fixture) state(pos editmodel.Position) editmodel.State {
	v, ok := f.svc.Model().GetEdit(pos)
	if !ok {
		return ""
	}
	return v.State
}

func TestStartEditing_Triggers(t *testing.T) {
	tests := []struct {
		name   string
		params editing.StartParams
		setup  func(f *fixture)
		col    func(f *fixture) *grid.Column
		want   bool
	}{
		{name: "enter", params: editing.StartParams{Trigger: editing.KeyDown(editing.KeyEnter)}, want: true},
		{name: "f2", params: editing.StartParams{Trigger: editing.KeyDown(editing.KeyF2)}, want: true},
		{name: "tab", params: editing.StartParams{Trigger: editing.KeyDown(editing.KeyTab)}, want: true},
		{name: "printable without intent", params: editing.StartParams{Trigger: editing.KeyDown("x")}, want: false},
		{name: "printable with intent", params: editing.StartParams{Trigger: editing.KeyDown("x"), StartedEdit: true}, want: true},
		{name: "backspace without intent", params: editing.StartParams{Trigger: editing.KeyDown(editing.KeyBackspace)}, want: false},
		{name: "backspace with intent", params: editing.StartParams{Trigger: editing.KeyDown(editing.KeyBackspace), StartedEdit: true}, want: true},
		{name: "single click with default double", params: editing.StartParams{Trigger: editing.Click()}, want: false},
		{name: "double click", params: editing.StartParams{Trigger: editing.DoubleClick()}, want: true},
		{
			name:   "single click with column override",
			params: editing.StartParams{Trigger: editing.Click()},
			setup:  func(f *fixture) { f.name.ClickToEdit = 1 },
			want:   true,
		},
		{
			name:   "extending selection never starts",
			params: editing.StartParams{Trigger: &editing.Trigger{Kind: editing.TriggerClick, Extending: true}},
			setup:  func(f *fixture) { f.name.ClickToEdit = 1 },
			want:   false,
		},
		{name: "api without intent", params: editing.StartParams{Source: editing.SourceAPI}, want: false},
		{name: "api with intent", params: editing.StartParams{Source: editing.SourceAPI, StartedEdit: true}, want: true},
		{
			name:   "non-editable column",
			params: editing.StartParams{Trigger: editing.KeyDown(editing.KeyEnter)},
			col:    func(f *fixture) *grid.Column { return f.id },
			want:   false,
		},
		{
			name:   "group row without group edit",
			params: editing.StartParams{Trigger: editing.KeyDown(editing.KeyEnter)},
			setup:  func(f *fixture) { f.row("r1").Group = true },
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, editing.Settings{})
			if tt.setup != nil {
				tt.setup(f)
			}
			col := f.name
			if tt.col != nil {
				col = tt.col(f)
			}
			pos := f.pos("r1", col)

			f.svc.StartEditing(pos, tt.params)

			assert.Equal(t, tt.want, f.svc.IsEditing(pos, editmodel.HasEditsOpts{WithOpenEditor: true}))
			assert.Equal(t, tt.want, f.r.Live(pos) != nil)
		})
	}
}

func TestStartEditing_TypedKeySeedsEditor(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	pos := f.pos("r1", f.name)

	f.svc.StartEditing(pos, editing.StartParams{Trigger: editing.KeyDown("z"), StartedEdit: true})

	ed := f.r.Live(pos)
	require.NotNil(t, ed)
	assert.Equal(t, editing.Key("z"), ed.Params.Key)
	assert.Equal(t, "z", ed.Val)
	assert.True(t, ed.Focused)
	assert.Equal(t, pos, f.r.Focused)
}

func TestSingleCell_CommitOnEnter(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	pos := f.pos("r1", f.name)

	f.start(pos)
	f.r.Type(pos, "grace")
	assert.True(t, f.pressEnter())

	assert.Equal(t, "grace", f.row("r1").Data["name"])
	assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
	assert.Zero(t, f.r.OpenEditors())
	assert.Equal(t, []eventbus.Event{
		eventbus.EventCellEditingStarted,
		eventbus.EventCellEditValuesChanged,
		eventbus.EventCellValueChanged,
		eventbus.EventCellEditingStopped,
	}, f.bus.Names())

	stopped := f.bus.Of(eventbus.EventCellEditingStopped)[0].(eventbus.CellEditingStoppedPayload)
	assert.True(t, stopped.ValueChanged)
	assert.False(t, stopped.Cancelled)
	assert.Equal(t, "ada", stopped.OldValue)
	assert.Equal(t, "grace", stopped.NewValue)
}

func TestSingleCell_CancelOnEscape(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	pos := f.pos("r1", f.name)

	f.start(pos)
	f.r.Type(pos, "grace")
	f.pressEscape()

	assert.Equal(t, "ada", f.row("r1").Data["name"])
	assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
	f.bus.AssertNotPublished(t, eventbus.EventCellValueChanged)

	stopped := f.bus.Of(eventbus.EventCellEditingStopped)[0].(eventbus.CellEditingStoppedPayload)
	assert.False(t, stopped.ValueChanged)
	assert.True(t, stopped.Cancelled)
}

func TestSingleCell_UnchangedValueDoesNotCommit(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	pos := f.pos("r1", f.name)

	f.start(pos)
	f.r.Type(pos, "ada")
	f.pressEnter()

	f.bus.AssertNotPublished(t, eventbus.EventCellValueChanged)
	f.bus.AssertNotPublished(t, eventbus.EventCellEditValuesChanged)
	stopped := f.bus.Of(eventbus.EventCellEditingStopped)[0].(eventbus.CellEditingStoppedPayload)
	assert.False(t, stopped.ValueChanged)
}

func TestSingleCell_CancelAfterEndDiscards(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	pos := f.pos("r1", f.name)

	f.start(pos)
	f.r.Type(pos, "grace")
	f.r.Live(pos).Cancel = true
	f.pressEnter()

	assert.Equal(t, "ada", f.row("r1").Data["name"])
	assert.Zero(t, f.r.OpenEditors())
}

func TestSingleCell_StartingAnotherCellCommitsPrevious(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	name, age := f.pos("r1", f.name), f.pos("r1", f.age)

	f.start(name)
	f.r.Type(name, "grace")
	f.svc.StartEditing(age, editing.StartParams{Trigger: editing.KeyDown(editing.KeyF2)})

	assert.Equal(t, "grace", f.row("r1").Data["name"])
	assert.Equal(t, 1, f.r.OpenEditors())
	assert.NotNil(t, f.r.Live(age))
	assert.Equal(t, editmodel.StateEditing, f.state(age))
	assert.Empty(t, f.state(name))
}

func TestBatch_DefersCommitUntilAPIStop(t *testing.T) {
	f := newFixture(t, editing.Settings{Batch: true})
	a, b := f.pos("r1", f.name), f.pos("r2", f.name)

	f.start(a)
	f.r.Type(a, "x")
	f.start(b)
	f.r.Type(b, "y")

	assert.Equal(t, editmodel.StateChanged, f.state(a))
	assert.Equal(t, editmodel.StateEditing, f.state(b))
	assert.Equal(t, 1, f.r.OpenEditors())

	assert.False(t, f.svc.StopEditing(editmodel.Position{}, editing.StopParams{Source: editing.SourceUI}))
	assert.Equal(t, "ada", f.row("r1").Data["name"])
	assert.Equal(t, "bob", f.row("r2").Data["name"])
	f.bus.AssertNotPublished(t, eventbus.EventCellValueChanged)

	assert.True(t, f.svc.StopEditing(editmodel.Position{}, editing.StopParams{Source: editing.SourceAPI}))
	assert.Equal(t, "x", f.row("r1").Data["name"])
	assert.Equal(t, "y", f.row("r2").Data["name"])
	assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
	assert.Equal(t, 2, f.bus.Count(eventbus.EventCellValueChanged))
}

func TestBatch_EnterKeepsValueEscapeReverts(t *testing.T) {
	f := newFixture(t, editing.Settings{Batch: true})
	a, b := f.pos("r1", f.name), f.pos("r2", f.name)

	f.start(a)
	f.r.Type(a, "x")
	f.pressEnter()

	assert.Zero(t, f.r.OpenEditors())
	v, ok := f.svc.Model().GetEdit(a)
	require.True(t, ok)
	assert.Equal(t, editmodel.StateChanged, v.State)
	assert.Equal(t, "x", v.NewValue)
	assert.Equal(t, "ada", f.row("r1").Data["name"])

	f.start(b)
	f.r.Type(b, "y")
	f.pressEscape()

	assert.Zero(t, f.r.OpenEditors())
	assert.Empty(t, f.state(b))
	assert.Equal(t, editmodel.StateChanged, f.state(a))
	assert.Equal(t, "bob", f.row("r2").Data["name"])
}

func TestBatch_APICancelDiscardsEverything(t *testing.T) {
	f := newFixture(t, editing.Settings{Batch: true})
	a, b := f.pos("r1", f.name), f.pos("r2", f.name)

	f.start(a)
	f.r.Type(a, "x")
	f.start(b)
	f.r.Type(b, "y")
	f.svc.StopEditing(editmodel.Position{}, editing.StopParams{Source: editing.SourceAPI, Cancel: true})

	assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
	assert.Equal(t, "ada", f.row("r1").Data["name"])
	assert.Equal(t, "bob", f.row("r2").Data["name"])
}

func TestBatch_PurgeIsIdempotent(t *testing.T) {
	f := newFixture(t, editing.Settings{Batch: true})
	a, b := f.pos("r1", f.name), f.pos("r2", f.name)

	f.start(a)
	f.start(b)
	f.r.Type(b, "y")

	// a was opened but never changed, so leaving it purged it.
	assert.Empty(t, f.state(a))
	assert.Equal(t, 1, f.bus.Count(eventbus.EventCellEditingStopped))

	stop := editing.StopParams{Source: editing.SourceUI}
	f.svc.StopEditing(editmodel.Position{}, stop)
	before := editmodel.Positions(f.svc.EditMap())
	f.svc.StopEditing(editmodel.Position{}, stop)
	after := editmodel.Positions(f.svc.EditMap())

	assert.Equal(t, before, after)
	assert.Equal(t, 1, f.bus.Count(eventbus.EventCellEditingStopped))
}

func TestBatch_Toggle(t *testing.T) {
	t.Run("disabling commits pending edits", func(t *testing.T) {
		f := newFixture(t, editing.Settings{Batch: true})
		pos := f.pos("r1", f.name)

		require.True(t, f.svc.SetDataValue(pos, "x", editing.SourcePaste))
		assert.Equal(t, "ada", f.row("r1").Data["name"])

		assert.True(t, f.svc.DisableBatchEditing())
		assert.False(t, f.svc.IsBatchEditing())
		assert.Equal(t, "x", f.row("r1").Data["name"])
		f.bus.AssertPublished(t, eventbus.EventBatchEditingStopped)
	})

	t.Run("invalid pending edit keeps batch on", func(t *testing.T) {
		f := newFixture(t, editing.Settings{Batch: true})
		pos := f.pos("r1", f.name)

		require.True(t, f.svc.SetDataValue(pos, "", editing.SourcePaste))

		assert.False(t, f.svc.DisableBatchEditing())
		assert.True(t, f.svc.IsBatchEditing())
		assert.Equal(t, "ada", f.row("r1").Data["name"])
		f.bus.AssertNotPublished(t, eventbus.EventBatchEditingStopped)
	})

	t.Run("enabling commits the open edit", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		pos := f.pos("r1", f.name)

		f.start(pos)
		f.r.Type(pos, "x")
		f.svc.EnableBatchEditing()

		assert.True(t, f.svc.IsBatchEditing())
		assert.Equal(t, "x", f.row("r1").Data["name"])
		f.bus.AssertPublished(t, eventbus.EventBatchEditingStarted)
	})
}

func TestSetDataValue(t *testing.T) {
	t.Run("ui source needs an active edit", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		assert.False(t, f.svc.SetDataValue(f.pos("r1", f.name), "x", editing.SourceUI))
		assert.Equal(t, "ada", f.row("r1").Data["name"])
	})

	t.Run("paste commits outside batch", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		assert.True(t, f.svc.SetDataValue(f.pos("r1", f.name), "zed", editing.SourcePaste))
		assert.Equal(t, "zed", f.row("r1").Data["name"])
		assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
	})

	t.Run("value equal to committed is a no-op", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		assert.False(t, f.svc.SetDataValue(f.pos("r1", f.name), "ada", editing.SourcePaste))
		assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
		f.bus.AssertNotPublished(t, eventbus.EventCellEditValuesChanged)
	})

	t.Run("value equal to pending is a no-op", func(t *testing.T) {
		f := newFixture(t, editing.Settings{Batch: true})
		pos := f.pos("r1", f.name)
		require.True(t, f.svc.SetDataValue(pos, "zz", editing.SourcePaste))
		f.bus.Reset()

		assert.False(t, f.svc.SetDataValue(pos, "zz", editing.SourcePaste))
		assert.Empty(t, f.bus.Names())
	})

	t.Run("value equal to original removes the edit", func(t *testing.T) {
		f := newFixture(t, editing.Settings{Batch: true})
		pos := f.pos("r1", f.name)
		require.True(t, f.svc.SetDataValue(pos, "zz", editing.SourcePaste))
		require.Equal(t, editmodel.StateChanged, f.state(pos))

		assert.True(t, f.svc.SetDataValue(pos, "ada", editing.SourcePaste))
		assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
		assert.Equal(t, 2, f.bus.Count(eventbus.EventCellEditValuesChanged))
	})
}

func TestFullRow_OpensEveryEditableColumn(t *testing.T) {
	f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow})
	name, age := f.pos("r1", f.name), f.pos("r1", f.age)

	f.start(age)

	assert.Equal(t, 2, f.r.OpenEditors())
	assert.Equal(t, editmodel.StateEditing, f.state(name))
	assert.Equal(t, editmodel.StateEditing, f.state(age))
	assert.Empty(t, f.state(f.pos("r1", f.id)))
	assert.Equal(t, 1, f.bus.Count(eventbus.EventRowEditingStarted))
	assert.True(t, f.r.Live(age).Focused)

	// Starting again inside the same row does not restart the row.
	f.svc.StartEditing(name, editing.StartParams{Trigger: editing.KeyDown(editing.KeyF2)})
	assert.Equal(t, 1, f.bus.Count(eventbus.EventRowEditingStarted))
}

func TestFullRow_CommitsRowAsUnit(t *testing.T) {
	f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow})
	name, age := f.pos("r1", f.name), f.pos("r1", f.age)

	f.start(name)
	f.r.Type(name, "grace")
	f.r.Type(age, 50.0)
	f.bus.Reset()

	assert.True(t, f.pressEnter())

	assert.Equal(t, "grace", f.row("r1").Data["name"])
	assert.Equal(t, 50.0, f.row("r1").Data["age"])
	assert.Zero(t, f.r.OpenEditors())
	assert.Equal(t, []eventbus.Event{
		eventbus.EventCellEditValuesChanged,
		eventbus.EventCellEditValuesChanged,
		eventbus.EventCellValueChanged,
		eventbus.EventCellEditingStopped,
		eventbus.EventCellValueChanged,
		eventbus.EventCellEditingStopped,
		eventbus.EventRowValueChanged,
		eventbus.EventRowEditingStopped,
	}, f.bus.Names())
}

func TestFullRow_MovingToAnotherRowCommits(t *testing.T) {
	f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow})
	name := f.pos("r1", f.name)

	f.start(name)
	f.r.Type(name, "grace")
	f.start(f.pos("r2", f.age))

	assert.Equal(t, "grace", f.row("r1").Data["name"])
	assert.False(t, f.svc.IsRowEditing(f.row("r1"), editmodel.HasEditsOpts{}))
	assert.True(t, f.svc.IsRowEditing(f.row("r2"), editmodel.HasEditsOpts{WithOpenEditor: true}))
	assert.Equal(t, 2, f.bus.Count(eventbus.EventRowEditingStarted))
	assert.Equal(t, 1, f.bus.Count(eventbus.EventRowEditingStopped))
}

func TestFullRow_ValidationBlocksWholeRow(t *testing.T) {
	f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow})
	name, age := f.pos("r1", f.name), f.pos("r1", f.age)

	f.start(age)
	f.r.Type(name, "")
	f.r.Type(age, 50.0)

	assert.False(t, f.pressEnter())

	assert.Equal(t, "ada", f.row("r1").Data["name"])
	assert.Equal(t, 36.0, f.row("r1").Data["age"])
	assert.Equal(t, editmodel.StateEditing, f.state(name))
	assert.Equal(t, editmodel.StateEditing, f.state(age))
	assert.True(t, f.r.Live(name).Invalid)
	assert.False(t, f.r.Live(age).Invalid)
	assert.Equal(t, name, f.r.Focused)
	assert.True(t, f.svc.HasValidationErrors(name))
	f.bus.AssertNotPublished(t, eventbus.EventCellValueChanged)
}

func TestFullRow_RevertPolicyCommitsValidCells(t *testing.T) {
	f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow, InvalidCommit: editing.InvalidCommitRevert})
	name, age := f.pos("r1", f.name), f.pos("r1", f.age)

	f.start(age)
	f.r.Type(name, "")
	f.r.Type(age, 50.0)

	assert.True(t, f.pressEnter())

	assert.Equal(t, "ada", f.row("r1").Data["name"])
	assert.Equal(t, 50.0, f.row("r1").Data["age"])
	assert.Zero(t, f.r.OpenEditors())
	assert.Equal(t, 1, f.bus.Count(eventbus.EventCellValueChanged))
}

func TestFullRow_RowValidator(t *testing.T) {
	f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow})
	f.svc.SetRowValidator(func(row *grid.Row, values map[*grid.Column]any) []string {
		if age, ok := values[f.age].(float64); ok && age < 18 {
			return []string{"must be an adult"}
		}
		return nil
	})
	age := f.pos("r1", f.age)

	f.start(age)
	f.r.Type(age, 10.0)

	assert.False(t, f.pressEnter())
	assert.True(t, f.svc.HasValidationErrors(editmodel.Position{Row: f.row("r1")}))
	assert.Equal(t, []string{"must be an adult"}, f.svc.Model().RowValidation().Get(f.row("r1")))
	f.bus.AssertPublished(t, eventbus.EventRowValidated)

	errs := f.svc.ValidateEdit()
	require.Len(t, errs, 1)
	assert.Nil(t, errs[0].Position.Column)

	f.r.Type(age, 20.0)
	assert.True(t, f.pressEnter())
	assert.Equal(t, 20.0, f.row("r1").Data["age"])
	assert.False(t, f.svc.HasValidationErrors(editmodel.Position{}))
}

func TestFullRow_CancelRestoresRow(t *testing.T) {
	f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow})
	name, age := f.pos("r1", f.name), f.pos("r1", f.age)

	f.start(name)
	f.r.Type(name, "grace")
	f.r.Type(age, 50.0)
	f.bus.Reset()

	assert.True(t, f.pressEscape())

	assert.Equal(t, "ada", f.row("r1").Data["name"])
	assert.Equal(t, 36.0, f.row("r1").Data["age"])
	assert.Zero(t, f.r.OpenEditors())
	assert.False(t, f.svc.IsRowEditing(f.row("r1"), editmodel.HasEditsOpts{}))
	assert.Equal(t, 1, f.bus.Count(eventbus.EventRowEditingStopped))
	f.bus.AssertNotPublished(t, eventbus.EventCellValueChanged)
	f.bus.AssertNotPublished(t, eventbus.EventRowValueChanged)
}

func TestFullRow_MoveToNextCell(t *testing.T) {
	t.Run("within the row only moves focus", func(t *testing.T) {
		f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow})
		name, age := f.pos("r1", f.name), f.pos("r1", f.age)

		f.start(name)
		f.r.Type(name, "grace")
		got := f.svc.MoveToNextCell(name, false, editing.KeyDown(editing.KeyTab), editing.SourceUI)

		assert.Equal(t, editing.NavMoved, got)
		assert.Equal(t, 2, f.r.OpenEditors())
		assert.Equal(t, "ada", f.row("r1").Data["name"])
		assert.Equal(t, age, f.r.Focused)
		assert.True(t, f.r.Live(age).Focused)
		assert.False(t, f.r.Live(name).Focused)
		assert.Equal(t, 1, f.bus.Count(eventbus.EventRowEditingStarted))
		f.bus.AssertNotPublished(t, eventbus.EventRowEditingStopped)
	})

	t.Run("across rows commits the old row and opens the next", func(t *testing.T) {
		f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow})
		age := f.pos("r1", f.age)
		next := f.pos("r2", f.name)

		f.start(age)
		f.r.Type(age, 50.0)
		got := f.svc.MoveToNextCell(age, false, editing.KeyDown(editing.KeyTab), editing.SourceUI)

		assert.Equal(t, editing.NavMoved, got)
		assert.Equal(t, 50.0, f.row("r1").Data["age"])
		assert.False(t, f.svc.IsRowEditing(f.row("r1"), editmodel.HasEditsOpts{}))
		assert.True(t, f.svc.IsRowEditing(f.row("r2"), editmodel.HasEditsOpts{WithOpenEditor: true}))
		require.NotNil(t, f.r.Live(next))
		assert.True(t, f.r.Live(next).Focused)
		assert.Equal(t, 2, f.bus.Count(eventbus.EventRowEditingStarted))
		assert.Equal(t, 1, f.bus.Count(eventbus.EventRowEditingStopped))
	})
}

func TestFullRow_Batch(t *testing.T) {
	f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow, Batch: true})
	name := f.pos("r1", f.name)

	f.start(name)
	f.r.Type(name, "grace")
	f.start(f.pos("r2", f.age))

	assert.Equal(t, "ada", f.row("r1").Data["name"])
	assert.Equal(t, editmodel.StateChanged, f.state(name))
	assert.Empty(t, f.state(f.pos("r1", f.age)), "unchanged cells of the old row are purged")
	assert.True(t, f.svc.IsRowEditing(f.row("r2"), editmodel.HasEditsOpts{WithOpenEditor: true}))
	assert.Equal(t, 2, f.r.OpenEditors())
	assert.Equal(t, 2, f.bus.Count(eventbus.EventRowEditingStarted))
	assert.Equal(t, 1, f.bus.Count(eventbus.EventRowEditingStopped), "leaving a row closes it")
	f.bus.AssertNotPublished(t, eventbus.EventCellValueChanged)

	assert.True(t, f.svc.StopEditing(editmodel.Position{}, editing.StopParams{Source: editing.SourceAPI}))

	assert.Equal(t, "grace", f.row("r1").Data["name"])
	assert.Equal(t, 40.0, f.row("r2").Data["age"])
	assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
	assert.Equal(t, 1, f.bus.Count(eventbus.EventCellValueChanged))
	assert.Equal(t, 2, f.bus.Count(eventbus.EventRowEditingStopped))
}

func TestFullRow_BatchEnterClosesRow(t *testing.T) {
	f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow, Batch: true})
	name := f.pos("r1", f.name)

	f.start(name)
	f.r.Type(name, "grace")
	f.pressEnter()

	assert.Zero(t, f.r.OpenEditors())
	assert.Equal(t, editmodel.StateChanged, f.state(name))
	assert.Equal(t, 1, f.bus.Count(eventbus.EventRowEditingStopped))
}

func TestMoveToNextCell(t *testing.T) {
	t.Run("commits and opens the next editable cell", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		name, age := f.pos("r1", f.name), f.pos("r1", f.age)

		f.start(name)
		f.r.Type(name, "x")
		got := f.svc.MoveToNextCell(name, false, editing.KeyDown(editing.KeyTab), editing.SourceUI)

		assert.Equal(t, editing.NavMoved, got)
		assert.Equal(t, "x", f.row("r1").Data["name"])
		require.NotNil(t, f.r.Live(age))
		assert.True(t, f.r.Live(age).Focused)
		assert.Equal(t, age, f.r.Focused)
	})

	t.Run("skips non-editable columns across rows", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		age := f.pos("r1", f.age)

		f.start(age)
		got := f.svc.MoveToNextCell(age, false, editing.KeyDown(editing.KeyTab), editing.SourceUI)

		assert.Equal(t, editing.NavMoved, got)
		assert.NotNil(t, f.r.Live(f.pos("r2", f.name)))
	})

	t.Run("stops at the end without a header", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		last := f.pos("r3", f.age)

		f.start(last)
		f.r.Type(last, 5.0)
		got := f.svc.MoveToNextCell(last, false, editing.KeyDown(editing.KeyTab), editing.SourceUI)

		assert.Equal(t, editing.NavStopped, got)
		assert.Equal(t, 5.0, f.row("r3").Data["age"])
		assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
	})

	t.Run("focuses the header going back from the first cell", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		f.r.HasHeader = true
		first := f.pos("r1", f.name)

		f.start(first)
		got := f.svc.MoveToNextCell(first, true, editing.KeyDown(editing.KeyTab), editing.SourceUI)

		assert.Equal(t, editing.NavHeader, got)
		assert.True(t, f.r.HeaderFocused)
	})

	t.Run("invalid value blocks navigation", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		name := f.pos("r1", f.name)

		f.start(name)
		f.r.Type(name, "")
		got := f.svc.MoveToNextCell(name, false, editing.KeyDown(editing.KeyTab), editing.SourceUI)

		assert.Equal(t, editing.NavBlocked, got)
		assert.Equal(t, editmodel.StateEditing, f.state(name))
		assert.True(t, f.r.Live(name).Invalid)
		assert.Nil(t, f.r.Live(f.pos("r1", f.age)))
		assert.Equal(t, "ada", f.row("r1").Data["name"])
	})

	t.Run("invalid value is reverted under revert policy", func(t *testing.T) {
		f := newFixture(t, editing.Settings{InvalidCommit: editing.InvalidCommitRevert})
		name := f.pos("r1", f.name)

		f.start(name)
		f.r.Type(name, "")
		got := f.svc.MoveToNextCell(name, false, editing.KeyDown(editing.KeyTab), editing.SourceUI)

		assert.Equal(t, editing.NavMoved, got)
		assert.Equal(t, "ada", f.row("r1").Data["name"])
		assert.NotNil(t, f.r.Live(f.pos("r1", f.age)))
	})
}

func TestCheckNavWithValidation(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	name := f.pos("r1", f.name)

	f.start(name)
	assert.Equal(t, editing.NavContinue, f.svc.CheckNavWithValidation(name))

	f.r.Type(name, "")
	f.svc.ValidateEdit()
	assert.Equal(t, editing.NavBlockStop, f.svc.CheckNavWithValidation(name))
}

func TestRevertSingleCellEdit(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	pos := f.pos("r1", f.name)

	f.start(pos)
	f.r.Type(pos, "")
	f.svc.ValidateEdit()
	require.True(t, f.svc.HasValidationErrors(pos))

	f.svc.RevertSingleCellEdit(pos, true)

	ed := f.r.Live(pos)
	require.NotNil(t, ed)
	assert.Equal(t, "ada", ed.Val)
	assert.False(t, ed.Invalid)
	assert.True(t, ed.Focused)
	assert.False(t, f.svc.HasValidationErrors(pos))
	assert.Equal(t, editmodel.StateEditing, f.state(pos))
}

func TestApplyBulkEdit(t *testing.T) {
	t.Run("commits coerced values outside batch", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		age := f.pos("r1", f.age)

		f.start(age)
		f.r.Type(age, 50.0)
		f.svc.ApplyBulkEdit(age, []grid.CellRange{{StartRow: 0, EndRow: 2, Columns: []*grid.Column{f.id, f.name, f.age}}})

		for _, id := range []string{"r1", "r2", "r3"} {
			assert.Equal(t, 50.0, f.row(id).Data["age"], id)
			assert.Equal(t, "50", f.row(id).Data["name"], id)
		}
		assert.Equal(t, "1", f.row("r1").Data["id"])
		assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
	})

	t.Run("stays pending in batch", func(t *testing.T) {
		f := newFixture(t, editing.Settings{Batch: true})
		age := f.pos("r1", f.age)

		f.start(age)
		f.r.Type(age, 50.0)
		f.svc.ApplyBulkEdit(age, []grid.CellRange{{StartRow: 0, EndRow: 2, Columns: []*grid.Column{f.age}}})

		assert.Equal(t, 40.0, f.row("r2").Data["age"])
		assert.Len(t, f.svc.EditingCells(editing.FilterChanged), 2)
		assert.Len(t, f.svc.EditingCells(editing.FilterEditing), 1)
	})

	t.Run("reaches open editors of the full row", func(t *testing.T) {
		f := newFixture(t, editing.Settings{Mode: editing.ModeFullRow})
		age := f.pos("r1", f.age)

		f.start(age)
		f.r.Type(age, 50.0)
		f.svc.ApplyBulkEdit(age, []grid.CellRange{{StartRow: 0, EndRow: 1, Columns: []*grid.Column{f.name}}})

		assert.Equal(t, "50", f.row("r1").Data["name"])
		assert.Equal(t, "50", f.row("r2").Data["name"])
		assert.Equal(t, 50.0, f.row("r1").Data["age"])
		assert.Zero(t, f.r.OpenEditors())
	})

	t.Run("unrepresentable values become nil", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		name := f.pos("r1", f.name)

		f.start(name)
		f.r.Type(name, "abc")
		f.svc.ApplyBulkEdit(name, []grid.CellRange{{StartRow: 1, EndRow: 2, Columns: []*grid.Column{f.age}}})

		assert.Nil(t, f.row("r2").Data["age"])
		assert.Nil(t, f.row("r3").Data["age"])
		assert.Equal(t, "abc", f.row("r1").Data["name"])
	})
}

func TestSetEditMap(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	r1, r2, r3 := f.row("r1"), f.row("r2"), f.row("r3")

	f.start(f.pos("r1", f.age))
	f.r.Type(f.pos("r1", f.age), 99.0)

	f.svc.SetEditMap(editmodel.Map{
		r1: {f.name: {NewValue: "n1", OldValue: "ada", State: editmodel.StateChanged}},
		r2: {f.name: {NewValue: "n2", OldValue: "bob", State: editmodel.StateEditing}},
		r3: {f.age: {NewValue: 1.0, OldValue: 22.0, State: editmodel.StateEditing}},
	})

	assert.Equal(t, 36.0, r1.Data["age"])
	assert.Empty(t, f.state(f.pos("r1", f.age)))
	assert.Equal(t, editmodel.StateChanged, f.state(f.pos("r1", f.name)))
	assert.Equal(t, editmodel.StateChanged, f.state(f.pos("r2", f.name)))
	assert.Equal(t, editmodel.StateEditing, f.state(f.pos("r3", f.age)))

	assert.Equal(t, 1, f.r.OpenEditors())
	ed := f.r.Live(f.pos("r3", f.age))
	require.NotNil(t, ed)
	assert.Equal(t, 1.0, ed.Val)

	snapshot := f.svc.EditMap()
	f.svc.SetEditMap(snapshot)
	assert.Equal(t, editmodel.Positions(snapshot), editmodel.Positions(f.svc.EditMap()))
}

func TestSetEditMap_SkipsReadOnlyCells(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	id := f.pos("r1", f.id)

	f.svc.SetEditMap(editmodel.Map{
		f.row("r1"): {f.id: {NewValue: "9", OldValue: "1", State: editmodel.StateEditing}},
	})

	assert.Empty(t, f.state(id))
	assert.Zero(t, f.r.OpenEditors())
	assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))

	f.svc.StopEditing(editmodel.Position{}, editing.StopParams{Source: editing.SourceAPI})
	assert.Equal(t, "1", f.row("r1").Data["id"])
}

func TestSetEditingCells(t *testing.T) {
	f := newFixture(t, editing.Settings{})

	skipped := f.svc.SetEditingCells([]editing.CellEdit{
		{RowID: "r1", ColumnID: "name", NewValue: "n1"},
		{RowID: "missing", ColumnID: "name", NewValue: "x"},
		{RowID: "r1", ColumnID: "id", NewValue: "x"},
		{RowID: "r2", ColumnID: "missing", NewValue: "x"},
		{RowID: "r2", ColumnID: "age", NewValue: "41"},
	})

	assert.Equal(t, 3, skipped)
	cells := f.svc.EditingCells(editing.FilterAll)
	require.Len(t, cells, 2)
	assert.Equal(t, editing.CellEdit{RowID: "r1", ColumnID: "name", NewValue: "n1", OldValue: "ada", State: editmodel.StateChanged}, cells[0])
	assert.Equal(t, 41.0, cells[1].NewValue)
}

func TestSetEditingCells_LogsSkipsAtDebug(t *testing.T) {
	f := newFixture(t, editing.Settings{})

	var buf bytes.Buffer
	svc := editing.New(editing.Deps{
		Data:      f.ds,
		Renderer:  f.r,
		Navigator: grid.NewNavigator(f.ds),
		Bus:       f.bus.EventBus,
		Logger:    zerolog.New(&buf).Level(zerolog.InfoLevel),
	}, editing.Settings{})

	skipped := svc.SetEditingCells([]editing.CellEdit{{RowID: "missing", ColumnID: "name", NewValue: "x"}})

	assert.Equal(t, 1, skipped)
	assert.Empty(t, buf.String())
}

func TestEditingCells_ExcludesUnedited(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	pos := f.pos("r1", f.name)

	f.start(pos)
	assert.Empty(t, f.svc.EditingCells(editing.FilterAll))

	f.r.Type(pos, "x")
	f.svc.ValidateEdit()
	cells := f.svc.EditingCells(editing.FilterEditing)
	require.Len(t, cells, 1)
	assert.Equal(t, "x", cells[0].NewValue)
	assert.Empty(t, f.svc.EditingCells(editing.FilterChanged))
}

func TestGetCellDataValue(t *testing.T) {
	f := newFixture(t, editing.Settings{Batch: true})
	pos := f.pos("r1", f.name)

	assert.Equal(t, "ada", f.svc.GetCellDataValue(pos))
	f.start(pos)
	assert.Equal(t, "ada", f.svc.GetCellDataValue(pos))

	f.r.Type(pos, "x")
	f.pressEnter()
	assert.Equal(t, "x", f.svc.GetCellDataValue(pos))
	assert.Equal(t, "ada", f.row("r1").Data["name"])
}

func TestGetCellDataValue_PinnedSibling(t *testing.T) {
	f := newFixture(t, editing.Settings{Batch: true})
	mirror, err := f.ds.Pin("r1", "r1-pinned")
	require.NoError(t, err)

	require.True(t, f.svc.SetDataValue(f.pos("r1", f.name), "x", editing.SourcePaste))

	pinned := editmodel.Position{Row: mirror, Column: f.name}
	assert.Equal(t, "x", f.svc.GetCellDataValue(pinned))
	assert.True(t, f.svc.IsEditing(pinned, editmodel.HasEditsOpts{CheckSiblings: true}))
	assert.False(t, f.svc.IsEditing(pinned, editmodel.HasEditsOpts{}))
}

func TestContinuations(t *testing.T) {
	t.Run("focus waits for the editor to attach", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		f.r.DeferAttach = true
		pos := f.pos("r1", f.name)

		f.start(pos)
		assert.Nil(t, f.r.Live(pos))
		assert.True(t, f.svc.IsEditing(pos, editmodel.HasEditsOpts{WithOpenEditor: true}))

		f.r.Attach(pos)
		require.NotNil(t, f.r.Live(pos))
		assert.True(t, f.r.Live(pos).Focused)
	})

	t.Run("start waits for the cell to render", func(t *testing.T) {
		f := newFixture(t, editing.Settings{})
		pos := f.pos("r1", f.name)
		f.r.Hide(pos)

		f.start(pos)
		assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))

		f.r.Show(pos)
		assert.NotNil(t, f.r.Live(pos))

		// The queue is drained exactly once.
		f.pressEscape()
		f.r.Show(pos)
		assert.Nil(t, f.r.Live(pos))
	})
}

func TestSetMode(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	pos := f.pos("r1", f.name)

	f.start(pos)
	f.r.Type(pos, "x")
	f.svc.SetMode(editing.ModeFullRow)

	assert.Equal(t, editing.ModeFullRow, f.svc.Mode())
	assert.Equal(t, "x", f.row("r1").Data["name"])
	assert.Zero(t, f.r.OpenEditors())

	f.start(pos)
	assert.Equal(t, 2, f.r.OpenEditors())
}

func TestRefreshData_DropsRemovedRows(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	pos := f.pos("r2", f.name)

	f.start(pos)
	f.ds.Merge(grid.New([]*grid.Column{
		{ID: "id"},
		{ID: "name", Editable: true},
		{ID: "age", Type: grid.TypeNumber, Editable: true},
	}, []*grid.Row{
		{ID: "r1", Data: map[string]any{"name": "ada"}},
		{ID: "r3", Data: map[string]any{"name": "cy"}},
	}))
	f.svc.RefreshData()

	assert.False(t, f.svc.IsEditing(editmodel.Position{}, editmodel.HasEditsOpts{}))
	assert.Zero(t, f.r.OpenEditors())
}

func TestStopEditing_ReentrantCallsAreIgnored(t *testing.T) {
	f := newFixture(t, editing.Settings{})
	pos := f.pos("r1", f.name)

	calls := 0
	f.bus.SubscribeCellValueChanged(func(eventbus.CellValueChangedPayload) {
		calls++
		assert.False(t, f.svc.StopEditing(editmodel.Position{}, editing.StopParams{Source: editing.SourceAPI}))
	})

	f.start(pos)
	f.r.Type(pos, "x")
	assert.True(t, f.pressEnter())

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, f.bus.Count(eventbus.EventCellEditingStopped))
}
