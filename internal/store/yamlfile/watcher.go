package yamlfile

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/gridedit/internal/core/logging"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 8
)

// DatasetEvent reports that the watched dataset file changed on disk.
type DatasetEvent struct {
	Path      string
	Timestamp time.Time
}

// DatasetWatcher watches one dataset file using fsnotify. The parent
// directory is watched so editors that save by rename-and-replace are seen.
type DatasetWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     zerolog.Logger

	mu          sync.Mutex
	subscribers []chan<- DatasetEvent
	debounce    *time.Timer
	muted       time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDatasetWatcher starts watching the file at path.
func NewDatasetWatcher(path string) (*DatasetWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	dw := &DatasetWatcher{
		path:    abs,
		watcher: watcher,
		log:     logging.Component("watcher"),
		ctx:     ctx,
		cancel:  cancel,
	}

	dw.wg.Add(1)
	go dw.run()

	return dw, nil
}

// Watch returns a channel that receives an event after each change to the
// dataset. The channel is closed when ctx is done or the watcher closes.
func (dw *DatasetWatcher) Watch(ctx context.Context) <-chan DatasetEvent {
	ch := make(chan DatasetEvent, eventBufferSize)

	dw.mu.Lock()
	dw.subscribers = append(dw.subscribers, ch)
	dw.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			dw.unsubscribe(ch)
		case <-dw.ctx.Done():
			// Watcher is closing, channel will be closed by Close()
		}
	}()

	return ch
}

// Mute suppresses events for d. Used around our own saves so writing the
// dataset does not trigger a reload.
func (dw *DatasetWatcher) Mute(d time.Duration) {
	dw.mu.Lock()
	dw.muted = time.Now().Add(d)
	dw.mu.Unlock()
}

// Close stops watching and closes all subscriber channels.
func (dw *DatasetWatcher) Close() error {
	dw.cancel()

	dw.mu.Lock()
	if dw.debounce != nil {
		dw.debounce.Stop()
	}
	for _, ch := range dw.subscribers {
		close(ch)
	}
	dw.subscribers = nil
	dw.mu.Unlock()

	err := dw.watcher.Close()
	dw.wg.Wait()
	return err
}

func (dw *DatasetWatcher) unsubscribe(ch chan<- DatasetEvent) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	for i, sub := range dw.subscribers {
		if sub == ch {
			dw.subscribers = append(dw.subscribers[:i], dw.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (dw *DatasetWatcher) run() {
	defer dw.wg.Done()

	for {
		select {
		case <-dw.ctx.Done():
			return
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			dw.handleEvent(event)
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.log.Warn().Err(err).Str("path", dw.path).Msg("watch error")
		}
	}
}

func (dw *DatasetWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Clean(event.Name) != dw.path {
		return
	}

	dw.mu.Lock()
	defer dw.mu.Unlock()

	if time.Now().Before(dw.muted) {
		return
	}
	if dw.debounce != nil {
		dw.debounce.Stop()
	}
	dw.debounce = time.AfterFunc(debounceDelay, dw.notify)
}

func (dw *DatasetWatcher) notify() {
	event := DatasetEvent{Path: dw.path, Timestamp: time.Now()}

	dw.mu.Lock()
	defer dw.mu.Unlock()

	for _, ch := range dw.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, a reload is already queued
		}
	}
	dw.debounce = nil
}
