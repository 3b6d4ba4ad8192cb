// Package eventbus provides a typed, synchronous publish/subscribe bus for
// editing lifecycle notifications. Subscribers run inside the Publish call,
// so notification order matches the order the editing service publishes in.
package eventbus

import (
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/grid"
)

// Event names a notification type.
type Event string

const (
	EventBatchEditingStarted   Event = "batch.editing-started"
	EventBatchEditingStopped   Event = "batch.editing-stopped"
	EventCellEditValuesChanged Event = "cell.edit-values-changed"
	EventCellEditingStarted    Event = "cell.editing-started"
	EventCellEditingStopped    Event = "cell.editing-stopped"
	EventCellValueChanged      Event = "cell.value-changed"
	EventRowEditingStarted     Event = "row.editing-started"
	EventRowEditingStopped     Event = "row.editing-stopped"
	EventRowValidated          Event = "row.validated"
	EventRowValueChanged       Event = "row.value-changed"
)

// Events maps every event to its payload type.
var Events = map[Event]any{
	// Keep list sorted A-Z
	EventBatchEditingStarted:   BatchEditingStartedPayload{},
	EventBatchEditingStopped:   BatchEditingStoppedPayload{},
	EventCellEditValuesChanged: CellEditValuesChangedPayload{},
	EventCellEditingStarted:    CellEditingStartedPayload{},
	EventCellEditingStopped:    CellEditingStoppedPayload{},
	EventCellValueChanged:      CellValueChangedPayload{},
	EventRowEditingStarted:     RowEditingStartedPayload{},
	EventRowEditingStopped:     RowEditingStoppedPayload{},
	EventRowValidated:          RowValidatedPayload{},
	EventRowValueChanged:       RowValueChangedPayload{},
}

// BatchEditingStartedPayload is emitted when batch mode is switched on.
type BatchEditingStartedPayload struct{}

// BatchEditingStoppedPayload is emitted when batch mode is switched off.
type BatchEditingStoppedPayload struct{}

// CellEditingStartedPayload is emitted when a live editor opens on a cell.
type CellEditingStartedPayload struct {
	Position editmodel.Position
	Source   string
}

// CellEditingStoppedPayload is emitted when a cell's editing session ends.
// ValueChanged is true only when the pending value was committed.
type CellEditingStoppedPayload struct {
	Position     editmodel.Position
	OldValue     any
	NewValue     any
	ValueChanged bool
	Cancelled    bool
	Source       string
}

// CellEditValuesChangedPayload is emitted when a pending value changes
// while the cell is still being edited.
type CellEditValuesChangedPayload struct {
	Position editmodel.Position
	OldValue any
	NewValue any
	Source   string
}

// CellValueChangedPayload is emitted after a committed data write.
type CellValueChangedPayload struct {
	Position editmodel.Position
	OldValue any
	NewValue any
	Source   string
}

// RowEditingStartedPayload is emitted once when full-row editing opens.
type RowEditingStartedPayload struct {
	Row *grid.Row
}

// RowEditingStoppedPayload is emitted after every cell of a row has been
// processed by a stop.
type RowEditingStoppedPayload struct {
	Row *grid.Row
}

// RowValueChangedPayload is emitted when a full-row stop committed at
// least one cell of the row.
type RowValueChangedPayload struct {
	Row *grid.Row
}

// RowValidatedPayload is emitted after row-level validation ran.
type RowValidatedPayload struct {
	Row    *grid.Row
	Errors []string
}
