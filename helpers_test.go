package mirrorfs

import (
	"io/fs"
	"sort"
	"sync"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", message)
}

// fakeInfo implements fs.FileInfo for fakeFS entries.
type fakeInfo struct {
	name string
	dir  bool
	size int64
}

func (i fakeInfo) Name() string       { return i.name }
func (i fakeInfo) Size() int64        { return i.size }
func (i fakeInfo) ModTime() time.Time { return time.Time{} }
func (i fakeInfo) IsDir() bool        { return i.dir }
func (i fakeInfo) Sys() any           { return nil }

func (i fakeInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0755
	}
	return 0644
}

// fakeFS is an in-memory FileSystem with per-path failure injection and an
// optional gate that blocks reads until released.
type fakeFS struct {
	mu       sync.Mutex
	files    map[string][]byte
	dirs     map[string]bool
	statErr  map[string]error
	readErr  map[string]error
	listErr  error
	readGate map[string]chan struct{}
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		statErr:  make(map[string]error),
		readErr:  make(map[string]error),
		readGate: make(map[string]chan struct{}),
	}
}

func (f *fakeFS) write(path string, content []byte) {
	f.mu.Lock()
	f.files[path] = content
	f.mu.Unlock()
}

func (f *fakeFS) mkdir(path string) {
	f.mu.Lock()
	f.dirs[path] = true
	f.mu.Unlock()
}

func (f *fakeFS) remove(path string) {
	f.mu.Lock()
	delete(f.files, path)
	delete(f.dirs, path)
	f.mu.Unlock()
}

func (f *fakeFS) gateRead(path string) chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	f.readGate[path] = gate
	f.mu.Unlock()
	return gate
}

func (f *fakeFS) List(dir string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var names []string
	prefix := dir + "/"
	for path := range f.files {
		if len(path) > len(prefix) && path[:len(prefix)] == prefix {
			names = append(names, path[len(prefix):])
		}
	}
	for path := range f.dirs {
		if len(path) > len(prefix) && path[:len(prefix)] == prefix {
			names = append(names, path[len(prefix):])
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeFS) Stat(path string) (fs.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.statErr[path]; err != nil {
		return nil, err
	}
	if f.dirs[path] {
		return fakeInfo{name: path, dir: true}, nil
	}
	if content, ok := f.files[path]; ok {
		return fakeInfo{name: path, size: int64(len(content))}, nil
	}
	return nil, fs.ErrNotExist
}

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	f.mu.Lock()
	gate := f.readGate[path]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.readErr[path]; err != nil {
		return nil, err
	}
	content, ok := f.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return content, nil
}

// fakeWatcher is a hand-driven Watcher.
type fakeWatcher struct {
	mu     sync.Mutex
	subs   map[int]func(Batch)
	nextID int
	names  []string
	closed bool
}

func newFakeWatcher(names ...string) *fakeWatcher {
	return &fakeWatcher{subs: make(map[int]func(Batch)), names: names}
}

func (w *fakeWatcher) Subscribe(fn func(Batch)) Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	return &fakeHandle{watcher: w, id: id}
}

func (w *fakeWatcher) Names() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.names...)
}

func (w *fakeWatcher) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return nil
}

func (w *fakeWatcher) subscriberCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

// send delivers a batch synchronously to all subscribers.
func (w *fakeWatcher) send(op BatchOp, names ...string) {
	w.mu.Lock()
	subs := make([]func(Batch), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.Unlock()
	for _, fn := range subs {
		fn(Batch{Op: op, Names: names})
	}
}

type fakeHandle struct {
	watcher *fakeWatcher
	id      int
}

func (h *fakeHandle) Close() error {
	h.watcher.mu.Lock()
	delete(h.watcher.subs, h.id)
	h.watcher.mu.Unlock()
	return nil
}

// recorder collects events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(event Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recorder) attach(cache *Cache) {
	for _, kind := range []EventKind{EventAdded, EventUpdated, EventDeleted, EventError} {
		cache.Notify(kind, r.record)
	}
}

func (r *recorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, event := range r.events {
		if event.Kind == kind {
			count++
		}
	}
	return count
}

func (r *recorder) last(kind EventKind) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i], true
		}
	}
	return Event{}, false
}
