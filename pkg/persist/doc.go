// Package persist writes the diagram overlay back to its store, debounced.
//
// A [Synchronizer] observes a [session.Session]. The link list and the
// position overlay are independent domains, each with its own timer. A change
// to a domain (re)starts that domain's timer; when the timer fires, the
// latest collection is written as a whole through the [Writer]:
//
//	sync := persist.New(overlay, persist.WithDelay(500*time.Millisecond))
//	sync.Attach(sess)
//	defer sync.Close(context.Background())
//
// A burst of events therefore produces one write carrying the final state.
//
// Writes are skipped when the collection equals the last one written, and
// nothing is written until the first change after [Synchronizer.Attach].
// Failed writes are logged and not retried; the next change writes the full
// collection again. [Synchronizer.Close] flushes pending writes so the final
// state is never dropped on shutdown.
package persist
