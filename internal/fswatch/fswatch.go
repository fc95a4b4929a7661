// Package fswatch implements directory watching on fsnotify, translating raw
// filesystem events into add/change/delete batches of entry names.
package fswatch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultCoalesce is the window during which consecutive same-op events
// merge into a single batch.
const DefaultCoalesce = 100 * time.Millisecond

// Op identifies the kind of change a batch reports.
type Op int

const (
	// OpAdd reports names newly present in the directory.
	OpAdd Op = iota
	// OpChange reports names whose content changed.
	OpChange
	// OpDelete reports names removed from the directory.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpChange:
		return "change"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Batch is one notification: an operation reported for a non-empty ordered
// set of names relative to the watched directory.
type Batch struct {
	Op    Op
	Names []string
}

// Handle releases a single subscription.
type Handle interface {
	Close() error
}

// Options controls watcher behavior.
type Options struct {
	// Coalesce is the merge window for consecutive same-op events.
	// Zero means DefaultCoalesce.
	Coalesce time.Duration

	// Logger receives watcher warnings. Nil silences them.
	Logger *log.Logger
}

// Watcher monitors the immediate entries of a single directory and fans
// batches out to its subscribers. Batches for differing operations are
// delivered in arrival order; events inside subdirectories are not reported.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	coalesce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	subs    map[uint64]func(Batch)
	nextID  uint64
	known   map[string]struct{}
	pending *Batch
	timer   *time.Timer
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Watcher for the immediate entries of dir and seeds its known
// name set from a directory listing.
func New(dir string, opts Options) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	coalesce := opts.Coalesce
	if coalesce <= 0 {
		coalesce = DefaultCoalesce
	}

	instance := &Watcher{
		dir:      dir,
		watcher:  watcher,
		coalesce: coalesce,
		logger:   opts.Logger,
		subs:     make(map[uint64]func(Batch)),
		known:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}

	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			instance.known[entry.Name()] = struct{}{}
		}
	}

	instance.wg.Add(1)
	go instance.run()
	return instance, nil
}

// Subscribe registers a callback for batches. The returned Handle removes
// exactly this subscription; other subscribers stay attached.
func (w *Watcher) Subscribe(fn func(Batch)) Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	return &subHandle{watcher: w, id: id}
}

// Names returns the sorted entry names the watcher currently knows about.
func (w *Watcher) Names() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.known))
	for name := range w.known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close stops the watcher. Subscriptions are dropped and no further batches
// are delivered.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

type subHandle struct {
	watcher *Watcher
	id      uint64
}

func (h *subHandle) Close() error {
	h.watcher.mu.Lock()
	delete(h.watcher.subs, h.id)
	h.watcher.mu.Unlock()
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if op, name, ok := w.convert(event); ok {
				w.enqueue(op, name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logf("fswatch: %v", err)
		}
	}
}

// convert maps an fsnotify event onto a batch operation and a name relative
// to the watched directory. Events for the directory itself, for nested
// paths, and for chmod are dropped.
func (w *Watcher) convert(event fsnotify.Event) (Op, string, bool) {
	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil || rel == "." || rel == ".." || strings.ContainsRune(rel, filepath.Separator) {
		return 0, "", false
	}

	switch {
	case event.Has(fsnotify.Create):
		return OpAdd, rel, true
	case event.Has(fsnotify.Write):
		return OpChange, rel, true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A rename away is a delete here; the new name arrives as a create.
		return OpDelete, rel, true
	default:
		return 0, "", false
	}
}

// enqueue merges the event into the pending batch when the operation
// matches, or flushes the pending batch and starts a new one.
func (w *Watcher) enqueue(op Op, name string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}

	switch op {
	case OpDelete:
		delete(w.known, name)
	default:
		w.known[name] = struct{}{}
	}

	var flushed *delivery
	if w.pending != nil && w.pending.Op == op {
		if !contains(w.pending.Names, name) {
			w.pending.Names = append(w.pending.Names, name)
		}
		w.timer.Reset(w.coalesce)
	} else {
		flushed = w.takePendingLocked()
		w.pending = &Batch{Op: op, Names: []string{name}}
		w.timer = time.AfterFunc(w.coalesce, w.flush)
	}
	w.mu.Unlock()

	flushed.deliver()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	flushed := w.takePendingLocked()
	w.mu.Unlock()

	flushed.deliver()
}

// delivery pairs a batch with the subscriber list captured while the lock
// was held, so callbacks run unlocked.
type delivery struct {
	batch Batch
	subs  []func(Batch)
}

func (d *delivery) deliver() {
	if d == nil {
		return
	}
	for _, fn := range d.subs {
		fn(d.batch)
	}
}

func (w *Watcher) takePendingLocked() *delivery {
	if w.pending == nil {
		return nil
	}
	batch := *w.pending
	w.pending = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	subs := make([]func(Batch), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	return &delivery{batch: batch, subs: subs}
}

func contains(names []string, name string) bool {
	for _, candidate := range names {
		if candidate == name {
			return true
		}
	}
	return false
}

func (w *Watcher) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}
