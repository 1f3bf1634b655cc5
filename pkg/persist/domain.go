package persist

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/observability"
)

// domain debounces writes of one overlay collection.
type domain[T any] struct {
	name    string
	extract func(*diagram.Snapshot) []T
	equal   func(a, b []T) bool
	save    func(context.Context, []T) error
	owner   *Synchronizer

	writeMu sync.Mutex // serializes writes

	mu        sync.Mutex
	timer     *time.Timer
	pending   bool
	inFlight  bool
	latest    []T
	written   []T
	lastWrite time.Time
	lastErr   error
}

func (d *domain[T]) setBaseline(snap *diagram.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.written = d.extract(snap)
}

func (d *domain[T]) observe(prev, next *diagram.Snapshot) {
	v := d.extract(next)
	if d.equal(d.extract(prev), v) {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.latest = v
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.owner.delay, d.fire)
	observability.Sync().OnScheduled(d.name)
}

func (d *domain[T]) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), d.owner.timeout)
	defer cancel()
	// Errors are logged and reported to hooks by flush.
	_ = d.flush(ctx)
}

func (d *domain[T]) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// flush writes the latest collection if one is pending and it differs from
// the last one written.
func (d *domain[T]) flush(ctx context.Context) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return nil
	}
	v, base := d.latest, d.written
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.equal(v, base) {
		d.mu.Unlock()
		d.owner.logger.Debug("overlay unchanged, skipping write", "domain", d.name)
		observability.Sync().OnSkipped(d.name)
		return nil
	}
	d.inFlight = true
	d.mu.Unlock()

	start := time.Now()
	err := d.save(ctx, v)
	elapsed := time.Since(start)
	observability.Sync().OnWrite(ctx, d.name, len(v), elapsed, err)

	d.mu.Lock()
	d.inFlight = false
	if err == nil {
		d.written = v
		d.lastWrite = time.Now()
		d.lastErr = nil
	} else {
		d.lastErr = err
	}
	d.mu.Unlock()

	if err != nil {
		d.owner.logger.Error("overlay write failed", "domain", d.name, "items", len(v), "error", err)
		return err
	}
	d.owner.logger.Debug("overlay written", "domain", d.name, "items", len(v), "took", elapsed)
	return nil
}

func (d *domain[T]) status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{Pending: d.pending || d.inFlight, LastWrite: d.lastWrite, LastErr: d.lastErr}
}
