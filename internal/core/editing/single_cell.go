package editing

import (
	"github.com/colonyops/gridedit/internal/core/editmodel"
)

// singleCell keeps at most one cell open at a time. The open cell is
// always derived from the model.
type singleCell struct {
	base
}

func (s *singleCell) Mode() Mode { return ModeSingleCell }

func (s *singleCell) active() (editmodel.Position, bool) {
	for _, e := range s.svc.model.GetEditPositions() {
		if e.Value.State == editmodel.StateEditing {
			return e.Position, true
		}
	}
	return editmodel.Position{}, false
}

func (s *singleCell) ShouldStart(pos editmodel.Position, params StartParams) bool {
	return s.shouldStart(pos, params)
}

func (s *singleCell) ShouldStop(pos editmodel.Position, trigger *Trigger, source Source) Decision {
	if d := s.shouldStop(trigger, source); d != Undecided {
		return d
	}
	active, ok := s.active()
	if !ok {
		return Undecided
	}
	if !pos.IsCell() {
		return Yes
	}
	return decide(active != pos)
}

func (s *singleCell) ShouldCancel(_ editmodel.Position, trigger *Trigger, source Source) bool {
	return s.shouldCancel(trigger, source)
}

func (s *singleCell) Start(pos editmodel.Position, params StartParams) {
	if active, ok := s.active(); ok && active != pos {
		s.CleanupEditors(pos)
	}
	s.svc.model.Start(pos)
	s.setupEditors([]editmodel.Position{pos}, pos, params)
}

func (s *singleCell) Stop(cancel bool, params StopParams) bool {
	results := s.classify(cancel, s.cellFailed)
	actions := StopActions{Destroy: results.All}
	if !cancel {
		actions = s.ProcessValidationResults(results)
	}
	return s.svc.applyStop(actions, results, cancel, params, nil)
}

// ProcessValidationResults keeps only the failing cells open when the
// policy blocks; passing cells still commit.
func (s *singleCell) ProcessValidationResults(results ValidationResults) StopActions {
	return splitFailing(results, s.svc.settings.InvalidCommit, func(p editmodel.Position) any { return p })
}

func (s *singleCell) MoveToNextEditingCell(prev editmodel.Position, backwards bool, trigger *Trigger, source Source, preventNavigation bool) bool {
	row, col, ok := s.svc.nav.Next(prev.Row, prev.Column, backwards, s.svc.editableAt)
	if !ok {
		return false
	}
	next := editmodel.Position{Row: row, Column: col}

	if preventNavigation {
		s.svc.focusEditor(prev)
		return true
	}

	if ed, ok := s.svc.renderer.Editor(prev); ok {
		ed.FocusOut()
	}

	if s.svc.IsCellEditable(next, source) {
		s.svc.StartEditing(next, StartParams{
			Trigger:          trigger,
			Source:           source,
			StartedEdit:      true,
			IgnoreTriggerKey: true,
		})
	}

	if _, ok := s.svc.renderer.Editor(next); ok {
		s.svc.focusEditor(next)
	} else {
		s.svc.renderer.FocusCell(next)
	}
	return true
}

func (s *singleCell) CleanupEditors(keep editmodel.Position) {
	s.cleanup(func(p editmodel.Position) bool {
		return keep.IsCell() && p == keep
	})
}

func (s *singleCell) Destroy() {
	s.CleanupEditors(editmodel.Position{})
}
