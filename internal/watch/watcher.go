// Package watch turns filesystem activity in a directory into throttled
// scheduler triggers.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/atomicstack/multiview/internal/logging"
	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the minimum gap between two triggers.
const DefaultInterval = 250 * time.Millisecond

// Event is a relevant change seen in the watched directory.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Config describes what to watch and whom to tell.
type Config struct {
	Dir      string
	Interval time.Duration
	Clock    clockwork.Clock
	// Trigger is called at most once per Interval after a burst of changes.
	Trigger func()
}

// Watcher forwards create, write and rename events in one directory to a
// throttled trigger.
type Watcher struct {
	cfg      Config
	throttle *throttle

	events  chan Event
	pending chan struct{}
	wg      sync.WaitGroup
}

// New returns a watcher for cfg.Dir. It does nothing until Run.
func New(cfg Config) *Watcher {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	return &Watcher{
		cfg:      cfg,
		throttle: newThrottle(cfg.Interval, cfg.Clock),
		events:   make(chan Event, 16),
		pending:  make(chan struct{}, 1),
	}
}

// Events returns relevant changes. Events are dropped when nobody reads.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run watches until ctx ends. It returns an error only when the directory
// cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}
	events.Watch.Start(w.cfg.Dir)

	w.wg.Add(1)
	go w.fire(ctx)
	defer w.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			events.Watch.Stop(w.cfg.Dir)
			return nil
		case evt, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(evt)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.Error(fmt.Errorf("watch %s: %w", w.cfg.Dir, err))
		}
	}
}

func (w *Watcher) handle(evt fsnotify.Event) {
	if !relevant(evt.Op) {
		return
	}
	events.Watch.Change(filepath.Base(evt.Name), evt.Op.String())
	select {
	case w.events <- Event{Path: evt.Name, Op: evt.Op}:
	default:
	}
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

// fire coalesces pending changes into throttled trigger calls.
func (w *Watcher) fire(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.pending:
		}
		if !w.throttle.wait(ctx) {
			return
		}
		events.Watch.Trigger(w.cfg.Dir)
		if w.cfg.Trigger != nil {
			w.cfg.Trigger()
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) || op.Has(fsnotify.Rename)
}
