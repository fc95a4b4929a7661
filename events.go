package mirrorfs

import "sync"

// EventKind identifies a cache notification.
type EventKind int

const (
	// EventAdded fires when a name enters the cache. Content carries the
	// resolved value, or nil for a no-content entry.
	EventAdded EventKind = iota
	// EventUpdated fires when an existing entry's content is overwritten.
	EventUpdated
	// EventDeleted fires when a name leaves the cache. Content carries the
	// prior value.
	EventDeleted
	// EventError fires for a per-name probe, read, or decode fault.
	EventError
)

// String returns a human-readable representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventDeleted:
		return "deleted"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one cache notification.
type Event struct {
	Kind    EventKind
	Name    string
	Content *Content
	Err     error
}

type subscription struct {
	kind EventKind
	fn   func(Event)
}

// registry is the cache's observer list. Handlers run synchronously during
// reconciliation, in registration order. There is no ambient bus: each cache
// instance owns its registry.
type registry struct {
	mu   sync.Mutex
	subs []subscription
}

func (r *registry) add(kind EventKind, fn func(Event)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.subs = append(r.subs, subscription{kind: kind, fn: fn})
	r.mu.Unlock()
}

func (r *registry) emit(event Event) {
	r.mu.Lock()
	subs := make([]subscription, len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, sub := range subs {
		if sub.kind == event.Kind {
			sub.fn(event)
		}
	}
}
