package editing

import (
	"unicode"
	"unicode/utf8"

	"github.com/colonyops/gridedit/internal/core/editmodel"
)

// Mode selects the editing strategy.
type Mode string

const (
	ModeSingleCell Mode = "single-cell"
	ModeFullRow    Mode = "full-row"
)

// Valid reports whether m names a strategy.
func (m Mode) Valid() bool {
	return m == ModeSingleCell || m == ModeFullRow
}

// InvalidCommitPolicy decides what happens when a pending value fails
// validation on stop or navigation.
type InvalidCommitPolicy string

const (
	// InvalidCommitBlock keeps the invalid editor open and blocks navigation.
	InvalidCommitBlock InvalidCommitPolicy = "block"
	// InvalidCommitRevert reverts the invalid value and lets navigation
	// continue.
	InvalidCommitRevert InvalidCommitPolicy = "revert"
)

// Source identifies what originated a start, stop or write.
type Source string

const (
	SourceUI         Source = "ui"
	SourceAPI        Source = "api"
	SourceEdit       Source = "edit"
	SourcePaste      Source = "paste"
	SourceFillHandle Source = "fillHandle"
	SourceRange      Source = "rangeSvc"
	SourceRenderer   Source = "renderer"
)

// soft sources are re-dispatched as ui (batch) or api (otherwise) stops.
func (s Source) soft() bool {
	switch s {
	case SourcePaste, SourceFillHandle, SourceRange:
		return true
	}
	return false
}

// writable sources may call SetDataValue while nothing is being edited.
func (s Source) writable() bool {
	switch s {
	case SourcePaste, SourceFillHandle, SourceRenderer, SourceEdit:
		return true
	}
	return false
}

// Key is a key name or a single printable character.
type Key string

const (
	KeyEnter     Key = "enter"
	KeyF2        Key = "f2"
	KeyTab       Key = "tab"
	KeyEscape    Key = "esc"
	KeyBackspace Key = "backspace"
	KeyDelete    Key = "delete"
)

// Printable reports whether the key is a single printable character.
func (k Key) Printable() bool {
	if utf8.RuneCountInString(string(k)) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(string(k))
	return unicode.IsPrint(r)
}

// TriggerKind is the kind of user gesture behind a Trigger.
type TriggerKind int

const (
	TriggerKeyDown TriggerKind = iota + 1
	TriggerClick
	TriggerDoubleClick
)

// Trigger describes the interaction that caused a start or stop.
type Trigger struct {
	Kind TriggerKind
	Key  Key

	// Extending is set for gestures that widen a multi-cell selection
	// (shift-click, shift-drag). They never start editing.
	Extending bool
}

// KeyDown builds a key press trigger.
func KeyDown(k Key) *Trigger {
	return &Trigger{Kind: TriggerKeyDown, Key: k}
}

// Click builds a single-click trigger.
func Click() *Trigger {
	return &Trigger{Kind: TriggerClick}
}

// DoubleClick builds a double-click trigger.
func DoubleClick() *Trigger {
	return &Trigger{Kind: TriggerDoubleClick}
}

func (t *Trigger) isKey(k Key) bool {
	return t != nil && t.Kind == TriggerKeyDown && t.Key == k
}

func (t *Trigger) isKeyDown() bool {
	return t != nil && t.Kind == TriggerKeyDown
}

// StartParams carries the context of a start request.
type StartParams struct {
	Trigger *Trigger
	Source  Source

	// StartedEdit asserts the caller's intent to start editing. API starts
	// require it; typed characters and backspace need it too.
	StartedEdit bool

	// IgnoreTriggerKey opens the editor without seeding it from the
	// trigger's key.
	IgnoreTriggerKey bool

	// Silent suppresses started events.
	Silent bool

	// ContinueEditing skips closing the currently open position.
	ContinueEditing bool
}

// StopParams carries the context of a stop request.
type StopParams struct {
	Trigger *Trigger
	Source  Source
	Cancel  bool

	SuppressNavigateAfterEdit bool
}

// Decision is a strategy's tri-state answer.
type Decision int

const (
	Undecided Decision = iota
	Yes
	No
)

func decide(b bool) Decision {
	if b {
		return Yes
	}
	return No
}

// NavCheck is the outcome of validating before navigation.
type NavCheck int

const (
	NavContinue NavCheck = iota
	NavRevertContinue
	NavBlockStop
)

// NavOutcome is the result of MoveToNextCell.
type NavOutcome int

const (
	// NavMoved means focus moved to another cell.
	NavMoved NavOutcome = iota
	// NavBlocked means validation kept focus in the invalid editor.
	NavBlocked
	// NavHeader means there was no next cell and focus went to the header.
	NavHeader
	// NavStopped means there was no next cell and editing stopped.
	NavStopped
)

// Filter narrows EditingCells.
type Filter int

const (
	FilterAll Filter = iota
	// FilterChanged returns pending cells with no open editor.
	FilterChanged
	// FilterEditing returns cells with an open editor.
	FilterEditing
)

// CellEdit is an ID-keyed pending edit, the public face of an edit map
// entry.
type CellEdit struct {
	RowID    string          `json:"row"                 yaml:"row"`
	ColumnID string          `json:"column"              yaml:"column"`
	NewValue any             `json:"new_value"           yaml:"new_value"`
	OldValue any             `json:"old_value,omitempty" yaml:"old_value,omitempty"`
	State    editmodel.State `json:"state,omitempty"     yaml:"state,omitempty"`
}

// ValidationError is the validation result for one cell, or for a whole
// row when Position.Column is nil.
type ValidationError struct {
	Position editmodel.Position
	Messages []string
}

// ValidationResults classifies the positions walked by a stop.
type ValidationResults struct {
	All  []editmodel.Position
	Pass []editmodel.Position
	Fail []editmodel.Position
}

// StopActions is a strategy's split of a stop into editors to destroy
// (commit or discard) and editors to keep open.
type StopActions struct {
	Destroy []editmodel.Position
	Keep    []editmodel.Position
}

// Settings are the read-only configuration inputs of the service.
type Settings struct {
	Mode Mode
	// ClickToEdit is the default click count that starts editing: 1 or 2.
	ClickToEdit   int
	Batch         bool
	InvalidCommit InvalidCommitPolicy
	// GroupEdit allows editing group rows and tree-data filler rows.
	GroupEdit bool
	// TreeData marks group rows as tree nodes that may carry data.
	TreeData bool
}

func (s Settings) withDefaults() Settings {
	if !s.Mode.Valid() {
		s.Mode = ModeSingleCell
	}
	if s.ClickToEdit != 1 {
		s.ClickToEdit = 2
	}
	if s.InvalidCommit != InvalidCommitRevert {
		s.InvalidCommit = InvalidCommitBlock
	}
	return s
}
