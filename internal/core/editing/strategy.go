package editing

import (
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/grid"
)

// Strategy decides when editing starts, stops and cancels, and drives the
// open, close and navigate lifecycle for one editing mode.
type Strategy interface {
	Mode() Mode

	ShouldStart(pos editmodel.Position, params StartParams) bool
	// ShouldStop answers Yes, No, or Undecided when neither the shared
	// rules nor the strategy have an opinion. Undecided never stops.
	ShouldStop(pos editmodel.Position, trigger *Trigger, source Source) Decision
	ShouldCancel(pos editmodel.Position, trigger *Trigger, source Source) bool

	Start(pos editmodel.Position, params StartParams)
	// Stop commits or discards open positions. It returns false when
	// validation kept at least one editor open.
	Stop(cancel bool, params StopParams) bool

	MoveToNextEditingCell(prev editmodel.Position, backwards bool, trigger *Trigger, source Source, preventNavigation bool) bool
	ProcessValidationResults(results ValidationResults) StopActions

	// CleanupEditors syncs open editors and closes those outside keep's
	// scope into pending entries. A zero keep closes everything.
	CleanupEditors(keep editmodel.Position)
	// Destroy tears the strategy down before it is replaced.
	Destroy()
}

func newStrategy(mode Mode, svc *Service) Strategy {
	b := base{svc: svc}
	if mode == ModeFullRow {
		return &fullRow{base: b}
	}
	return &singleCell{base: b}
}

// base holds the rules shared by every strategy.
type base struct {
	svc *Service
}

func (b *base) shouldStart(pos editmodel.Position, params StartParams) bool {
	t := params.Trigger
	if t.isKeyDown() {
		switch {
		case t.Key == KeyTab, t.Key == KeyEnter, t.Key == KeyF2:
			return true
		case t.Key == KeyBackspace, t.Key == KeyDelete, t.Key.Printable():
			if params.StartedEdit {
				return true
			}
		}
	}

	if t != nil && t.Extending {
		return false
	}

	clicks := b.svc.clickToEdit(pos.Column)
	if t != nil && t.Kind == TriggerClick && clicks == 1 {
		return true
	}
	if t != nil && t.Kind == TriggerDoubleClick && clicks == 2 {
		return true
	}

	if params.Source == SourceAPI {
		return params.StartedEdit
	}
	return false
}

func (b *base) shouldStop(trigger *Trigger, source Source) Decision {
	batch := b.svc.batch

	if batch && source == SourceAPI {
		return Yes
	}
	if batch && (source == SourceUI || source == SourceEdit) {
		return No
	}
	if source == SourceAPI {
		return Yes
	}
	if trigger.isKeyDown() && !batch {
		return decide(trigger.Key == KeyEnter)
	}
	return Undecided
}

func (b *base) shouldCancel(trigger *Trigger, source Source) bool {
	if trigger.isKey(KeyEscape) && !b.svc.batch {
		return true
	}
	return source == SourceAPI
}

// classify walks every pending position and sorts it into pass or fail.
// A cancel passes everything.
func (b *base) classify(cancel bool, failed func(editmodel.Position) bool) ValidationResults {
	var res ValidationResults
	for _, e := range b.svc.model.GetEditPositions() {
		res.All = append(res.All, e.Position)
		if !cancel && failed(e.Position) {
			res.Fail = append(res.Fail, e.Position)
			continue
		}
		res.Pass = append(res.Pass, e.Position)
	}
	return res
}

func (b *base) cellFailed(pos editmodel.Position) bool {
	return b.svc.model.CellValidation().HasErrors(pos)
}

// setupEditors opens an editor on every cell and moves focus into focus.
func (b *base) setupEditors(cells []editmodel.Position, focus editmodel.Position, params StartParams) {
	for _, c := range cells {
		opts := setupOpts{source: params.Source, silent: params.Silent}
		if c == focus {
			opts.cellStartedEdit = params.StartedEdit
			if !params.IgnoreTriggerKey && params.Trigger.isKeyDown() {
				opts.key = params.Trigger.Key
			}
		}
		b.svc.setupEditor(c, opts)
	}
	b.svc.focusEditor(focus)
}

// cleanup closes open editors for which inScope is false.
func (b *base) cleanup(inScope func(editmodel.Position) bool) {
	b.svc.syncFromEditors()
	for _, e := range b.svc.model.GetEditPositions() {
		if e.Value.State != editmodel.StateEditing || inScope(e.Position) {
			continue
		}
		b.svc.destroyEditor(e.Position)
	}
	b.svc.purgeUnchangedEdits()
}

func splitFailing(results ValidationResults, policy InvalidCommitPolicy, groupOf func(editmodel.Position) any) StopActions {
	if len(results.Fail) == 0 || policy != InvalidCommitBlock {
		return StopActions{Destroy: results.All}
	}

	blocked := make(map[any]bool, len(results.Fail))
	for _, p := range results.Fail {
		blocked[groupOf(p)] = true
	}

	var actions StopActions
	for _, p := range results.All {
		if blocked[groupOf(p)] {
			actions.Keep = append(actions.Keep, p)
		} else {
			actions.Destroy = append(actions.Destroy, p)
		}
	}
	return actions
}

func rowsOf(positions []editmodel.Position) []*grid.Row {
	var rows []*grid.Row
	seen := make(map[*grid.Row]bool)
	for _, p := range positions {
		if p.Row == nil || seen[p.Row] {
			continue
		}
		seen[p.Row] = true
		rows = append(rows, p.Row)
	}
	return rows
}
