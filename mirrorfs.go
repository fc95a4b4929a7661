package mirrorfs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/aweris/mirrorfs/internal/compression"
	"github.com/aweris/mirrorfs/internal/fswatch"
)

type state int

const (
	stateUnstarted state = iota
	stateStarting
	stateReady
	stateFailed
	stateStopped
)

// Cache is an in-memory mirror of a directory's immediate entries and their
// content, kept current from watcher notifications. Reads never touch the
// filesystem.
//
// A Cache moves through unstarted, starting, ready, and stopped states.
// Stopped is terminal: content stays readable but frozen, and results of I/O
// still in flight are discarded.
type Cache struct {
	dir    string
	fsys   FileSystem
	store  *contentStore
	reg    *registry
	engine *engine
	codec  *compression.Codec
	jsonOn atomic.Bool
	logger *log.Logger

	mu      sync.Mutex
	state   state
	watcher Watcher
	handle  Handle
	owned   bool
}

// Metrics reports cache counters.
type Metrics struct {
	Entries          int
	KeySetMutations  uint64
	SnapshotRebuilds uint64
	EventsDelivered  uint64
	FileErrors       uint64
}

// Open creates a Cache for the immediate entries of dir. No filesystem
// access happens until Start.
func Open(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("mirrorfs: directory is required")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	var codec *compression.Codec
	if options.CompressionLevel > 0 {
		var err error
		codec, err = compression.New(options.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("mirrorfs: create codec: %w", err)
		}
	}

	cache := &Cache{
		dir:     dir,
		fsys:    options.FileSystem,
		store:   newContentStore(),
		reg:     &registry{},
		codec:   codec,
		logger:  options.Logger,
		watcher: options.Watcher,
	}
	cache.jsonOn.Store(options.JSON)

	cache.engine = &engine{
		store: cache.store,
		pipe: &pipeline{
			fsys:    options.FileSystem,
			dir:     dir,
			jsonOn:  &cache.jsonOn,
			jsonExt: options.JSONExtension,
			codec:   codec,
		},
		keep:        options.Filter.resolve(),
		reg:         cache.reg,
		concurrency: options.Concurrency,
		logger:      options.Logger,
	}

	return cache, nil
}

// Start brings the cache to ready: it resolves the initial entry set, probes
// and reads every admitted entry, and attaches to the watcher. It returns
// once all initial reads completed, so it waits for the slowest of them.
//
// A cache bound to an existing watcher seeds from that watcher's known
// names; otherwise Start creates a watcher scoped to the directory and seeds
// from a directory listing. Any listing or watcher fault fails the start and
// the cache never becomes ready. Start is single-shot.
func (c *Cache) Start(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case stateUnstarted:
	case stateStopped:
		c.mu.Unlock()
		return ErrStopped
	default:
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.state = stateStarting
	watcher := c.watcher
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return c.fail(nil, false, err)
	}

	var names []string
	owned := false
	if watcher == nil {
		info, err := c.fsys.Stat(c.dir)
		if err != nil {
			return c.fail(nil, false, fmt.Errorf("mirrorfs: stat %s: %w", c.dir, err))
		}
		if !info.IsDir() {
			return c.fail(nil, false, ErrNotADirectory)
		}

		created, err := fswatch.New(c.dir, fswatch.Options{Logger: c.logger})
		if err != nil {
			return c.fail(nil, false, fmt.Errorf("mirrorfs: %w", err))
		}
		watcher = created
		owned = true

		names, err = c.fsys.List(c.dir)
		if err != nil {
			return c.fail(watcher, owned, fmt.Errorf("mirrorfs: list %s: %w", c.dir, err))
		}
	} else {
		names = watcher.Names()
	}

	if err := ctx.Err(); err != nil {
		return c.fail(watcher, owned, err)
	}

	// Initial add batch. Per-entry faults surface as error events and leave
	// that entry out; they do not fail the start.
	c.engine.applyReads(names)

	handle := watcher.Subscribe(c.engine.handle)

	c.mu.Lock()
	if c.state != stateStarting {
		// Stopped while starting.
		c.mu.Unlock()
		handle.Close()
		if owned {
			watcher.Close()
		}
		return ErrStopped
	}
	c.state = stateReady
	c.watcher = watcher
	c.handle = handle
	c.owned = owned
	c.mu.Unlock()

	return nil
}

func (c *Cache) fail(watcher Watcher, owned bool, err error) error {
	c.mu.Lock()
	c.state = stateFailed
	c.mu.Unlock()
	if owned && watcher != nil {
		watcher.Close()
	}
	return err
}

// Stop detaches the cache from its watcher and freezes the store. Content
// stays readable. In-flight probes and reads finish but their results are
// discarded and raise no notifications. Stop is idempotent and terminal.
func (c *Cache) Stop() error {
	c.mu.Lock()
	if c.state == stateStopped {
		c.mu.Unlock()
		return nil
	}
	c.state = stateStopped
	handle := c.handle
	watcher := c.watcher
	owned := c.owned
	c.handle = nil
	c.mu.Unlock()

	c.store.freeze()

	if handle != nil {
		handle.Close()
	}
	if owned && watcher != nil {
		return watcher.Close()
	}
	return nil
}

// Get returns the cached content for an entry name. A present entry with
// nothing readable behind it (a subdirectory, for example) yields
// (nil, true).
func (c *Cache) Get(name string) (*Content, bool) {
	return c.store.get(name)
}

// Filenames returns the sorted names of all cached entries. The slice is
// recomputed only after a key-set change; callers must not modify it.
func (c *Cache) Filenames() []string {
	return c.store.filenames()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.store.len()
}

// Dir returns the watched directory.
func (c *Cache) Dir() string {
	return c.dir
}

// EnableJSON turns on JSON decoding for entries read or re-read from now
// on. Already-cached entries are not re-decoded.
func (c *Cache) EnableJSON() {
	c.jsonOn.Store(true)
}

// DisableJSON turns off JSON decoding for subsequent reads.
func (c *Cache) DisableJSON() {
	c.jsonOn.Store(false)
}

// Notify registers a handler for one event kind. Handlers run synchronously
// during reconciliation, in registration order, for the cache's lifetime.
func (c *Cache) Notify(kind EventKind, fn func(Event)) {
	c.reg.add(kind, fn)
}

// Metrics reports current cache counters.
func (c *Cache) Metrics() Metrics {
	version, rebuilds, entries := c.store.stats()
	return Metrics{
		Entries:          entries,
		KeySetMutations:  version,
		SnapshotRebuilds: rebuilds,
		EventsDelivered:  c.engine.eventsDelivered.Load(),
		FileErrors:       c.engine.fileErrors.Load(),
	}
}
