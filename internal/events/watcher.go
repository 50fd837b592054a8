package events

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of writes SQLite makes for one transaction.
const DefaultDebounce = 250 * time.Millisecond

// WatcherOpts configures a [Watcher].
type WatcherOpts struct {
	DatabasePath string
	Bus          *Bus
	Debounce     time.Duration
	Logger       *log.Logger
}

// Watcher publishes [TaskUpdated] when the database file changes on disk.
type Watcher struct {
	dir     string
	files   map[string]bool
	bus     *Bus
	delay   time.Duration
	logger  *log.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewWatcher creates a [Watcher] for the database at opts.DatabasePath.
//
// The parent directory is watched so WAL and journal files created after start are seen.
func NewWatcher(opts WatcherOpts) (*Watcher, error) {
	if opts.DatabasePath == "" || opts.DatabasePath == ":memory:" {
		return nil, fmt.Errorf("cannot watch database path %q", opts.DatabasePath)
	}
	if opts.Bus == nil {
		return nil, fmt.Errorf("watcher requires a bus")
	}

	abs, err := filepath.Abs(opts.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	delay := opts.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	base := filepath.Base(abs)
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		dir:     filepath.Dir(abs),
		files:   map[string]bool{base: true, base + "-wal": true, base + "-journal": true},
		bus:     opts.Bus,
		delay:   delay,
		logger:  logger,
		watcher: fw,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.wg.Add(1)
	go w.eventLoop()

	w.logger.Debug("watching database", "dir", w.dir)
	return nil
}

// Stop stops the event loop and any pending signal. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		w.cancel()
		_ = w.watcher.Close()

		w.mu.Lock()
		w.stopped = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		w.wg.Wait()
	})
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)

		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.files[filepath.Base(event.Name)] {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()

	if stopped {
		return
	}

	w.logger.Debug("database changed on disk")
	w.bus.Publish(Event{Kind: TaskUpdated, Source: "watcher"})
}
