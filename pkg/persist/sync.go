package persist

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/session"
)

// Defaults for [Synchronizer].
const (
	DefaultDelay        = 500 * time.Millisecond
	DefaultWriteTimeout = 30 * time.Second
)

// Domain names, as reported to logs and hooks.
const (
	DomainLinks     = "links"
	DomainPositions = "positions"
)

// Writer persists overlay collections. Each call replaces the stored
// collection. [overlay.Overlay] implements Writer.
type Writer interface {
	SaveLinks(ctx context.Context, links []diagram.Link) error
	SavePositions(ctx context.Context, positions []diagram.Placement) error
}

// Status summarizes the synchronizer for status lines and health checks.
type Status struct {
	Pending   bool      // a write is scheduled or in flight
	LastWrite time.Time // time of the last successful write
	LastErr   error     // error of the most recent failed write, cleared on success
}

// Synchronizer debounces overlay writes.
type Synchronizer struct {
	delay   time.Duration
	timeout time.Duration
	logger  *log.Logger

	links     *domain[diagram.Link]
	positions *domain[diagram.Placement]

	mu          sync.Mutex
	closed      bool
	unsubscribe func()
}

// Option configures a [Synchronizer].
type Option func(*Synchronizer)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithWriteTimeout bounds each timer-driven write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger for write results.
func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// New creates a synchronizer writing through w.
func New(w Writer, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		delay:   DefaultDelay,
		timeout: DefaultWriteTimeout,
		logger:  log.New(os.Stderr),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.links = &domain[diagram.Link]{
		name:    DomainLinks,
		extract: func(snap *diagram.Snapshot) []diagram.Link { return snap.Links },
		equal:   diagram.LinksEqual,
		save:    w.SaveLinks,
		owner:   s,
	}
	s.positions = &domain[diagram.Placement]{
		name:    DomainPositions,
		extract: func(snap *diagram.Snapshot) []diagram.Placement { return snap.Positions },
		equal:   diagram.PlacementsEqual,
		save:    w.SavePositions,
		owner:   s,
	}
	return s
}

// Attach takes the session's current state as the persisted baseline and
// subscribes to its changes. Attach may be called once.
func (s *Synchronizer) Attach(sess *session.Session) {
	snap := sess.Snapshot()
	s.links.setBaseline(snap)
	s.positions.setBaseline(snap)

	unsubscribe := sess.Subscribe(s.Observe)

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

// Observe schedules a write for each domain whose collection differs between
// prev and next. It has the signature of a [session.Observer].
func (s *Synchronizer) Observe(prev, next *diagram.Snapshot) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.links.observe(prev, next)
	s.positions.observe(prev, next)
}

// Flush writes all pending collections now.
func (s *Synchronizer) Flush(ctx context.Context) error {
	return errors.Join(s.links.flush(ctx), s.positions.flush(ctx))
}

// Close stops observing, cancels timers and flushes pending writes.
func (s *Synchronizer) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.links.stop()
	s.positions.stop()
	return s.Flush(ctx)
}

// Status reports the combined state of both domains.
func (s *Synchronizer) Status() Status {
	a, b := s.links.status(), s.positions.status()
	st := Status{Pending: a.Pending || b.Pending, LastWrite: a.LastWrite, LastErr: a.LastErr}
	if b.LastWrite.After(st.LastWrite) {
		st.LastWrite = b.LastWrite
	}
	if st.LastErr == nil {
		st.LastErr = b.LastErr
	}
	return st
}
