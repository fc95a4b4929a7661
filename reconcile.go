package mirrorfs

import (
	"log"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
)

// engine reconciles watcher batches with the store.
//
// Add and change batches share one path: probe and read every admitted name
// concurrently, then apply the completed batch. An add for a name already
// cached overwrites it, and a change for a name never cached inserts it, so
// a missed or duplicated watcher notification degrades to the right result.
// Delete batches skip the pipeline entirely.
//
// When an add and a delete for the same name race, whichever application
// reaches the store last wins. No causal ordering beyond that.
type engine struct {
	store *contentStore
	pipe  *pipeline
	keep  func(string) bool
	reg   *registry

	concurrency int
	logger      *log.Logger

	eventsDelivered atomic.Uint64
	fileErrors      atomic.Uint64
}

func (e *engine) handle(batch Batch) {
	if batch.Op == BatchDelete {
		e.applyDeletes(batch.Names)
		return
	}
	e.applyReads(batch.Names)
}

// applyReads probes and reads every admitted name in parallel, then applies
// the completed batch to the store and emits notifications, insertions as
// added and overwrites as updated.
func (e *engine) applyReads(names []string) {
	admitted := names[:0:0]
	for _, name := range names {
		if e.keep(name) {
			admitted = append(admitted, name)
		}
	}
	if len(admitted) == 0 {
		return
	}

	outcomes := make([]outcome, len(admitted))
	p := pool.New().WithMaxGoroutines(e.concurrency)
	for i, name := range admitted {
		p.Go(func() {
			outcomes[i] = e.pipe.run(name)
		})
	}
	p.Wait()

	events := make([]Event, 0, len(outcomes))
	for _, out := range outcomes {
		if out.err != nil {
			e.fileErrors.Add(1)
			e.logf("mirrorfs: %v", out.err)
			events = append(events, Event{Kind: EventError, Name: out.name, Err: out.err})
			continue
		}
		existed, applied := e.store.upsert(out.name, out.content)
		if !applied {
			return
		}
		kind := EventAdded
		if existed {
			kind = EventUpdated
		}
		events = append(events, Event{Kind: kind, Name: out.name, Content: out.content})
	}
	e.emit(events)
}

func (e *engine) applyDeletes(names []string) {
	events := make([]Event, 0, len(names))
	for _, name := range names {
		prior, existed, applied := e.store.remove(name)
		if !applied {
			return
		}
		if !existed {
			continue
		}
		events = append(events, Event{Kind: EventDeleted, Name: name, Content: prior})
	}
	e.emit(events)
}

func (e *engine) emit(events []Event) {
	if e.store.isFrozen() {
		return
	}
	for _, event := range events {
		e.eventsDelivered.Add(1)
		e.reg.emit(event)
	}
}

func (e *engine) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}
