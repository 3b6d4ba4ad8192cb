package editing

import (
	"github.com/rs/zerolog"

	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/eventbus"
	"github.com/colonyops/gridedit/internal/core/grid"
)

// Deps are the collaborators of a Service. Data is required; everything
// else falls back to an inert default.
type Deps struct {
	Data         DataSource
	Model        *editmodel.Model
	Renderer     Renderer
	Navigator    Navigator
	Bus          *eventbus.EventBus
	Logger       zerolog.Logger
	RowValidator RowValidator
}

// Service is the edit session manager.
type Service struct {
	data         DataSource
	model        *editmodel.Model
	renderer     Renderer
	nav          Navigator
	bus          *eventbus.EventBus
	log          zerolog.Logger
	rowValidator RowValidator

	settings Settings
	strategy Strategy
	batch    bool
	stopping bool
	pending  continuations
}

// New creates a Service.
func New(deps Deps, settings Settings) *Service {
	settings = settings.withDefaults()

	s := &Service{
		data:         deps.Data,
		model:        deps.Model,
		renderer:     deps.Renderer,
		nav:          deps.Navigator,
		bus:          deps.Bus,
		log:          deps.Logger,
		rowValidator: deps.RowValidator,
		settings:     settings,
		batch:        settings.Batch,
	}
	if s.model == nil {
		s.model = editmodel.New()
	}
	if s.renderer == nil {
		s.renderer = nopRenderer{}
	}
	if s.nav == nil {
		s.nav = nopNavigator{}
	}
	s.strategy = newStrategy(settings.Mode, s)
	return s
}

// SetRenderer swaps the renderer. Views that need the service to exist
// before they can render call this once constructed.
func (s *Service) SetRenderer(r Renderer) {
	if r == nil {
		r = nopRenderer{}
	}
	s.renderer = r
}

// SetNavigator swaps the navigator.
func (s *Service) SetNavigator(n Navigator) {
	if n == nil {
		n = nopNavigator{}
	}
	s.nav = n
}

// SetRowValidator installs the row-level validator used in full-row mode.
func (s *Service) SetRowValidator(fn RowValidator) {
	s.rowValidator = fn
}

// Model exposes the edit model for read access.
func (s *Service) Model() *editmodel.Model { return s.model }

// Settings returns the current settings.
func (s *Service) Settings() Settings {
	st := s.settings
	st.Batch = s.batch
	st.Mode = s.strategy.Mode()
	return st
}

// Mode returns the active editing mode.
func (s *Service) Mode() Mode { return s.strategy.Mode() }

// SetMode swaps the editing strategy. Any open edit is committed first,
// and cancelled when validation keeps it open.
func (s *Service) SetMode(mode Mode) {
	if !mode.Valid() || s.strategy.Mode() == mode {
		return
	}

	if s.model.HasEdits(editmodel.Position{}, editmodel.HasEditsOpts{}) {
		s.StopEditing(editmodel.Position{}, StopParams{Source: SourceAPI})
	}
	if s.model.HasEdits(editmodel.Position{}, editmodel.HasEditsOpts{}) {
		s.StopEditing(editmodel.Position{}, StopParams{Source: SourceAPI, Cancel: true})
	}

	s.strategy.Destroy()
	s.strategy = newStrategy(mode, s)
	s.settings.Mode = mode
	s.log.Debug().Str("mode", string(mode)).Msg("editing mode changed")
}

// IsBatchEditing reports whether batch mode is on.
func (s *Service) IsBatchEditing() bool { return s.batch }

// EnableBatchEditing switches batch mode on. An open edit is committed
// first.
func (s *Service) EnableBatchEditing() {
	if s.batch {
		return
	}
	if s.model.HasEdits(editmodel.Position{}, editmodel.HasEditsOpts{}) {
		s.StopEditing(editmodel.Position{}, StopParams{Source: SourceAPI})
	}
	s.batch = true
	s.bus.PublishBatchEditingStarted(eventbus.BatchEditingStartedPayload{})
}

// DisableBatchEditing commits every pending edit and switches batch mode
// off. It returns false, leaving batch mode on, when validation blocked
// the commit.
func (s *Service) DisableBatchEditing() bool {
	if !s.batch {
		return true
	}
	if s.model.HasEdits(editmodel.Position{}, editmodel.HasEditsOpts{}) {
		if !s.StopEditing(editmodel.Position{}, StopParams{Source: SourceAPI}) {
			return false
		}
	}
	s.batch = false
	s.bus.PublishBatchEditingStopped(eventbus.BatchEditingStoppedPayload{})
	return true
}

// IsEditing reports whether pos (or, for a zero position, the grid) has
// pending edits.
func (s *Service) IsEditing(pos editmodel.Position, opts editmodel.HasEditsOpts) bool {
	return s.model.HasEdits(pos, opts)
}

// IsRowEditing reports whether a row has pending edits.
func (s *Service) IsRowEditing(row *grid.Row, opts editmodel.HasEditsOpts) bool {
	return s.model.HasRowEdits(row, opts)
}

// IsCellEditable applies group and tree-data rules on top of the column's
// own editability.
func (s *Service) IsCellEditable(pos editmodel.Position, _ Source) bool {
	if !pos.IsCell() || s.isStale(pos) {
		return false
	}
	row := pos.Row
	if row.Group && !s.settings.GroupEdit {
		if !s.settings.TreeData || !row.HasData() {
			return false
		}
	}
	return pos.Column.IsEditable(row)
}

func (s *Service) editableAt(row *grid.Row, col *grid.Column) bool {
	return s.IsCellEditable(editmodel.Position{Row: row, Column: col}, SourceUI)
}

func (s *Service) clickToEdit(col *grid.Column) int {
	if col != nil && (col.ClickToEdit == 1 || col.ClickToEdit == 2) {
		return col.ClickToEdit
	}
	return s.settings.ClickToEdit
}

func (s *Service) isStale(pos editmodel.Position) bool {
	if pos.Row != nil && !s.data.Contains(pos.Row) {
		return true
	}
	return pos.Column != nil && !s.data.HasColumn(pos.Column)
}

// StartEditing opens an editor on pos when the active strategy agrees.
func (s *Service) StartEditing(pos editmodel.Position, params StartParams) {
	if params.Source == "" {
		params.Source = SourceUI
	}
	if !pos.IsCell() || s.isStale(pos) {
		s.log.Debug().Str("pos", pos.String()).Msg("start ignored for unknown cell")
		return
	}
	if !s.IsCellEditable(pos, params.Source) {
		return
	}

	if !s.renderer.IsCellRendered(pos) {
		s.pending.add(pos, waitCell, func() { s.StartEditing(pos, params) })
		return
	}

	open := editmodel.HasEditsOpts{WithOpenEditor: true}
	if !s.strategy.ShouldStart(pos, params) {
		if params.Source != SourceAPI && s.model.HasEdits(pos, open) {
			s.StopEditing(editmodel.Position{}, StopParams{Source: params.Source})
		}
		return
	}

	if !s.batch && !params.ContinueEditing && s.model.HasEdits(editmodel.Position{}, open) &&
		s.strategy.ShouldStop(pos, nil, params.Source) == Yes {
		if !s.StopEditing(editmodel.Position{}, StopParams{Source: params.Source}) && s.outsideScope(pos) {
			s.log.Debug().Str("pos", pos.String()).Msg("start blocked by invalid edit")
			return
		}
	}

	s.strategy.Start(pos, params)
}

// outsideScope reports whether an editor outside pos's strategy scope is
// still open.
func (s *Service) outsideScope(pos editmodel.Position) bool {
	for _, e := range s.model.GetEditPositions() {
		if e.Value.State != editmodel.StateEditing {
			continue
		}
		if s.strategy.Mode() == ModeFullRow {
			if e.Row != pos.Row {
				return true
			}
		} else if e.Position != pos {
			return true
		}
	}
	return false
}

// CellAttached runs work that waited for pos to be rendered.
func (s *Service) CellAttached(pos editmodel.Position) {
	s.pending.drain(pos, waitCell)
}

// EditorAttached runs work that waited for pos's editor to mount.
func (s *Service) EditorAttached(pos editmodel.Position) {
	s.pending.drain(pos, waitEditor)
}

// GetCellDataValue returns the pending value for pos, looking at the
// pinned sibling too, or the committed value when nothing is pending.
func (s *Service) GetCellDataValue(pos editmodel.Position) any {
	if !pos.IsCell() {
		return nil
	}
	if edits, ok := s.model.GetEditRow(pos.Row, true); ok {
		if v, ok := edits[pos.Column]; ok && !editmodel.IsUnedited(v.NewValue) {
			return v.NewValue
		}
	}
	return pos.Row.Value(pos.Column)
}

// SetDataValue writes a pending value from outside the editor (paste,
// fill, a renderer toggle) and commits or defers it like a stop would. It
// returns true when the model changed.
func (s *Service) SetDataValue(pos editmodel.Position, value any, source Source) bool {
	if !pos.IsCell() || s.isStale(pos) {
		return false
	}
	if !source.writable() && !s.model.HasEdits(editmodel.Position{}, editmodel.HasEditsOpts{}) {
		return false
	}

	current, exists := s.model.GetEdit(pos)
	if !exists {
		current = editmodel.Value{
			NewValue: editmodel.Unedited,
			OldValue: pos.Row.Value(pos.Column),
			State:    editmodel.StateChanged,
		}
	}

	if !editmodel.IsUnedited(current.NewValue) && grid.ValuesEqual(current.NewValue, value) {
		return false
	}

	if grid.ValuesEqual(current.OldValue, value) {
		if !exists {
			return false
		}
		if _, ok := s.renderer.Editor(pos); ok {
			s.destroyEditor(pos)
		}
		s.model.Stop(pos)
		s.bus.PublishCellEditValuesChanged(eventbus.CellEditValuesChangedPayload{
			Position: pos,
			OldValue: current.OldValue,
			NewValue: value,
			Source:   string(source),
		})
		s.renderer.RefreshCell(pos)
		return true
	}

	current.NewValue = value
	s.model.SetEdit(pos, current)
	if ed, ok := s.renderer.Editor(pos); ok {
		ed.Refresh(s.editorParams(pos, setupOpts{}))
	}
	s.bus.PublishCellEditValuesChanged(eventbus.CellEditValuesChangedPayload{
		Position: pos,
		OldValue: current.OldValue,
		NewValue: value,
		Source:   string(source),
	})

	stopSource := SourceAPI
	if s.batch {
		stopSource = SourceUI
	}
	s.StopEditing(pos, StopParams{Source: stopSource, SuppressNavigateAfterEdit: true})
	s.renderer.RefreshCell(pos)
	return true
}

// RefreshData drops edits, editors and queued work for rows or columns
// that no longer exist. Call it after the data source changed.
func (s *Service) RefreshData() {
	for _, e := range s.model.GetEditPositions() {
		if !s.isStale(e.Position) {
			continue
		}
		s.log.Debug().Str("pos", e.Position.String()).Msg("dropping edit for removed cell")
		s.destroyEditor(e.Position)
		s.model.Stop(e.Position)
	}
	s.pending.prune(s.isStale)
}
