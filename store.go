package mirrorfs

import (
	"sort"
	"sync"
)

// contentStore maps entry names to cached content. The version counter moves
// exactly once per key-set change (insert or remove, never overwrite) and
// invalidates the derived name snapshot.
//
// All mutation goes through one mutex, so applying a single name's outcome is
// atomic with respect to that name. Once frozen, mutations are discarded:
// results of I/O still in flight when the cache stops must not reanimate it.
type contentStore struct {
	mu      sync.Mutex
	entries map[string]*Content
	version uint64
	frozen  bool

	names    []string
	namesVer uint64

	rebuilds uint64
}

func newContentStore() *contentStore {
	return &contentStore{entries: make(map[string]*Content)}
}

func (s *contentStore) get(name string) (*Content, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.entries[name]
	return content, ok
}

func (s *contentStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// upsert stores content under name. The version moves only when the name is
// new. Returns applied=false when the store is frozen.
func (s *contentStore) upsert(name string, content *Content) (existed, applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return false, false
	}
	_, existed = s.entries[name]
	s.entries[name] = content
	if !existed {
		s.version++
	}
	return existed, true
}

// remove deletes name and returns the prior content. Removing an absent name
// is a no-op: the watcher may report the same deletion more than once.
func (s *contentStore) remove(name string) (prior *Content, existed, applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return nil, false, false
	}
	prior, existed = s.entries[name]
	if !existed {
		return nil, false, true
	}
	delete(s.entries, name)
	s.version++
	return prior, true, true
}

// filenames returns the sorted entry names, recomputed only when the version
// moved since the previous call. Callers must not modify the slice.
func (s *contentStore) filenames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.names != nil && s.namesVer == s.version {
		return s.names
	}
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	s.names = names
	s.namesVer = s.version
	s.rebuilds++
	return names
}

func (s *contentStore) freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

func (s *contentStore) isFrozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

func (s *contentStore) stats() (version, rebuilds uint64, entries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, s.rebuilds, len(s.entries)
}
