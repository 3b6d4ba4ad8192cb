// Package editing is the edit session manager of the grid.
//
// A Service receives every interaction that may begin or end an edit
// (key presses, clicks, API calls, paste), asks the active Strategy whether
// the interaction starts, stops or cancels editing, records pending values
// in the editmodel.Model, commits them to the row data, and publishes
// lifecycle events on the event bus.
//
// Two strategies exist: single-cell editing, where one cell is open at a
// time, and full-row editing, where every editable column of one row is
// open together. In batch mode UI-originated stops are deferred: editors
// close into pending "changed" entries that are committed together by an
// API stop.
//
// The service never renders anything itself. Live editing widgets are
// mounted and torn down through the Renderer, next-cell search goes through
// the Navigator, and rows and columns come from the DataSource. All calls
// are expected on one goroutine; nothing in this package locks.
package editing
