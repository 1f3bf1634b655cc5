// Package session holds the current diagram state and is the single pathway
// through which it changes.
//
// A [Session] is the change context shared by every front end: the terminal
// editor, the HTTP API and the persistence synchronizer all receive the same
// *Session explicitly. Readers call [Session.Snapshot] and never modify what
// they get back. Writers call [Session.Dispatch] with a [change.Event]:
//
//	sess := session.New(initial, session.WithLogger(logger))
//	unsubscribe := sess.Subscribe(func(prev, next *diagram.Snapshot) {
//	    // react to changes
//	})
//	defer unsubscribe()
//
//	sess.Dispatch(change.LinkAdded{Key: key, From: "User", To: "Order"})
//
// # Concurrency
//
// Dispatches are serialized by a mutex; the current snapshot is held in an
// atomic pointer, so reads never block. Observers run synchronously on the
// dispatching goroutine, in dispatch order, and must not dispatch themselves.
//
// # Loading
//
// [Load] builds the initial snapshot from a catalog source and the stored
// overlay. [Session.Reload] refreshes the entities later without touching
// links or placements.
package session

import (
	"context"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/entitydiagram/pkg/catalog"
	"github.com/matzehuels/entitydiagram/pkg/change"
	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/observability"
)

// Observer is notified after each state change with the previous and the new
// snapshot. prev is never equal to next.
type Observer func(prev, next *diagram.Snapshot)

// Session is the change context.
type Session struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[diagram.Snapshot]

	obsMu     sync.RWMutex
	observers map[uint64]Observer
	nextID    uint64

	logger *log.Logger
}

// Option configures a [Session].
type Option func(*Session)

// WithLogger sets the logger used for dispatch tracing.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session holding initial. A nil snapshot starts empty.
func New(initial *diagram.Snapshot, opts ...Option) *Session {
	if initial == nil {
		initial = diagram.Empty()
	}
	s := &Session{
		observers: make(map[uint64]Observer),
		logger:    log.New(os.Stderr),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(initial)
	return s
}

// Snapshot returns the current snapshot. The result must not be modified.
func (s *Session) Snapshot() *diagram.Snapshot {
	return s.current.Load()
}

// Dispatch applies e and returns the resulting snapshot. Observers are
// notified only when the snapshot changed.
func (s *Session) Dispatch(e change.Event) *diagram.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	next := change.Reduce(prev, e)
	applied := next != prev
	observability.Events().OnDispatch(e.Type(), applied)
	if !applied {
		s.logger.Debug("event had no effect", "type", e.Type())
		return prev
	}
	s.logger.Debug("event applied", "type", e.Type())
	s.publish(prev, next)
	return next
}

// DispatchAll applies events in order, as separate dispatches.
func (s *Session) DispatchAll(events ...change.Event) *diagram.Snapshot {
	var next *diagram.Snapshot
	for _, e := range events {
		next = s.Dispatch(e)
	}
	if next == nil {
		return s.Snapshot()
	}
	return next
}

// ReplaceEntities swaps in a freshly adapted entity list, for catalog
// reloads. Positions are joined again from the placement overlay, so user
// layout survives. Links and placements are left as they are.
func (s *Session) ReplaceEntities(entities []diagram.Entity) *diagram.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept, dropped := diagram.UniqueEntities(entities)
	if len(dropped) > 0 {
		s.logger.Warn("dropped entities with duplicate keys", "keys", dropped)
	}

	prev := s.current.Load()
	next := prev.Clone()
	next.Entities = joinPositions(kept, prev.Positions)
	s.publish(prev, next)
	return next
}

// Subscribe registers obs and returns a function that removes it.
func (s *Session) Subscribe(obs Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = obs
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

// publish stores next and notifies observers. Callers hold s.mu.
func (s *Session) publish(prev, next *diagram.Snapshot) {
	s.current.Store(next)

	s.obsMu.RLock()
	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	observers := make([]Observer, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		observers = append(observers, s.observers[id])
	}
	s.obsMu.RUnlock()

	for _, obs := range observers {
		obs(prev, next)
	}
}

// Reload fetches the catalogs from src and replaces the entities.
func (s *Session) Reload(ctx context.Context, src catalog.Source) (*diagram.Snapshot, error) {
	cats, err := catalog.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	if dups := catalog.DuplicateKeys(cats); len(dups) > 0 {
		s.logger.Warn("catalog records share entity keys; keeping the first", "keys", dups)
	}
	return s.ReplaceEntities(catalog.Adapt(cats, nil)), nil
}
