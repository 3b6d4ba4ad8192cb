// Package tui implements the interactive data grid.
package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/colonyops/gridedit/internal/core/config"
	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/editmodel"
	"github.com/colonyops/gridedit/internal/core/eventbus"
	"github.com/colonyops/gridedit/internal/core/grid"
	"github.com/colonyops/gridedit/internal/core/logging"
	"github.com/colonyops/gridedit/internal/store/yamlfile"
)

// doubleClickWindow is the maximum delay between two clicks on the same
// cell for them to count as a double click.
const doubleClickWindow = 400 * time.Millisecond

// Options configures the TUI.
type Options struct {
	Path    string                   // dataset file, used for save and reload
	Dataset *grid.Dataset            // loaded dataset
	Service *editing.Service         // edit session manager bound to Dataset
	Bus     *eventbus.EventBus       // bus the service publishes on
	Watcher *yamlfile.DatasetWatcher // optional; reloads the dataset on change
}

// Result describes the session state after the program exits.
type Result struct {
	// Pending holds edits that were never committed (batch mode).
	Pending []editing.CellEdit
	// Unsaved reports committed changes that were not written to disk.
	Unsaved bool
}

// sessionStats is updated by event bus subscribers.
type sessionStats struct {
	committed int
	unsaved   bool
	rowErrors map[*grid.Row][]string
}

type click struct {
	row, col int
	at       time.Time
}

// Model is the main Bubble Tea model for the grid.
type Model struct {
	cfg  *config.Config
	path string
	ds   *grid.Dataset
	svc  *editing.Service
	log  zerolog.Logger

	view  *gridView
	stats *sessionStats

	keys     KeyMap
	help     help.Model
	showHelp bool

	watcher *yamlfile.DatasetWatcher
	changes <-chan yamlfile.DatasetEvent
	cancel  context.CancelFunc

	lastClick click
	now       func() time.Time
	copy      func(string) error

	width     int
	height    int
	status    string
	statusErr bool
	quitting  bool
}

// New creates a grid model. The model installs itself as the service's
// renderer and subscribes to the service's events.
func New(cfg *config.Config, opts Options) Model {
	view := newGridView(opts.Dataset, cfg.TUI.CellWidth)
	view.svc = opts.Service
	opts.Service.SetRenderer(view)
	opts.Service.SetNavigator(grid.NewNavigator(opts.Dataset))

	stats := &sessionStats{rowErrors: make(map[*grid.Row][]string)}
	opts.Bus.SubscribeCellValueChanged(func(eventbus.CellValueChangedPayload) {
		stats.committed++
		stats.unsaved = true
	})
	opts.Bus.SubscribeRowValidated(func(p eventbus.RowValidatedPayload) {
		if len(p.Errors) == 0 {
			delete(stats.rowErrors, p.Row)
			return
		}
		stats.rowErrors[p.Row] = p.Errors
	})
	opts.Bus.SubscribeRowEditingStopped(func(p eventbus.RowEditingStoppedPayload) {
		delete(stats.rowErrors, p.Row)
	})

	m := Model{
		cfg:     cfg,
		path:    opts.Path,
		ds:      opts.Dataset,
		svc:     opts.Service,
		log:     logging.Component("tui"),
		view:    view,
		stats:   stats,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		watcher: opts.Watcher,
		now:     time.Now,
		copy:    clipboard.WriteAll,
	}

	if opts.Watcher != nil {
		ctx, cancel := context.WithCancel(context.Background())
		m.changes = opts.Watcher.Watch(ctx)
		m.cancel = cancel
	}

	return m
}

// Result returns the session outcome. Call after the program exits.
func (m Model) Result() Result {
	pending := m.svc.EditingCells(editing.FilterAll)
	// editors do not outlive the session
	for i := range pending {
		pending[i].State = editmodel.StateChanged
	}
	return Result{
		Pending: pending,
		Unsaved: m.stats.unsaved,
	}
}

// Init starts listening for dataset changes.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)
	case tea.MouseMsg:
		m = m.handleMouse(msg)
	case datasetChangedMsg:
		m, cmd = m.handleDatasetChanged(msg)
	}

	m.view.flush()
	return m, cmd
}

func (m Model) quit() (Model, tea.Cmd) {
	if m.svc.IsBatchEditing() {
		m.svc.SyncEditors()
	} else {
		m.svc.StopEditing(zeroPos, editing.StopParams{Source: editing.SourceAPI})
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) setError(msg string) {
	m.status = msg
	m.statusErr = true
}
