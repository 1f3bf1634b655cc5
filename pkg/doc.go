// Package pkg provides the core libraries for entitydiagram.
//
// # Overview
//
// entitydiagram shows the schemas, product types and field types of a
// commerce catalog as an entity-relationship diagram. Entities come from the
// catalog and are read-only; the user draws links between them, labels both
// ends of each link and arranges the boxes. Those links and positions live in
// a separate overlay store so that catalog reloads never discard them.
//
// # Architecture
//
// The typical data flow:
//
//	Catalog API / fixture files
//	         ↓
//	    [catalog] package (fetch + adapt records to entities)
//	         ↓
//	    [session] package (current snapshot, joined with the overlay)
//	         ↓  change events from [editor], the CLI or the HTTP API
//	    [change] package (pure reducer)
//	         ↓
//	    [persist] package (debounced overlay writes)
//	         ↓
//	    [overlay] package (file, SQLite, Redis, MongoDB or platform API)
//
// # Quick Start
//
//	src := catalog.NewFileSource("./fixtures", nil)
//	store, _ := overlay.NewFileStore("")
//	ov := overlay.New(store, overlay.DefaultContainer)
//
//	snap, _ := session.Load(ctx, src, ov)
//	sess := session.New(snap)
//
//	sync := persist.New(ov)
//	sync.Attach(sess)
//	defer sync.Close(ctx)
//
//	sess.Dispatch(change.LinkAdded{Key: editor.NewLinkKey(), From: "User", To: "Order"})
//
// # Main Packages
//
// ## Domain
//
// [diagram] - Entities, links, overlay placements and the immutable snapshot.
//
// [change] - The closed set of change events, their JSON codec and the reducer
// that applies them with structural sharing.
//
// [editor] - Pointer and keyboard gestures over a snapshot: moving boxes,
// drawing links from a title onto another body, editing and seeding labels.
//
// [render] - Static SVG of an editor view, and Graphviz export to SVG, PNG,
// PDF or DOT.
//
// ## State and Persistence
//
// [session] - The current snapshot behind an atomic pointer, with ordered
// observers and catalog reloads that keep the overlay.
//
// [persist] - One debounced writer per overlay collection. Close flushes.
//
// [overlay] - Record stores holding the links and positions collections.
//
// ## Catalog Access
//
// [catalog] - HTTP and fixture-file sources, and the adapter from catalog
// records to entities.
//
// [cache] - Response cache and retry helpers used by the catalog client.
//
// ## Shared
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hook interfaces for events, sync writes, cache and
// upstream HTTP, installed by the metrics layer.
//
// [buildinfo] - Version information.
//
// # Testing
//
//	go test ./...                                            # all tests
//	ENTITYDIAGRAM_TEST_REDIS=redis://localhost:6379 go test ./pkg/overlay/  # with Redis
//
// [diagram]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/diagram
// [change]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/change
// [editor]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/editor
// [render]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/render
// [session]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/session
// [persist]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/persist
// [overlay]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/overlay
// [catalog]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/catalog
// [cache]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/entitydiagram/pkg/buildinfo
package pkg
