// Package change implements the event-sourced reducer for diagram snapshots.
//
// Every edit to a diagram is expressed as an [Event]. [Reduce] applies one
// event to a [diagram.Snapshot] and returns the next snapshot without
// modifying the input:
//
//	next := change.Reduce(prev, change.LinkAdded{Key: "L1", From: "User", To: "Order"})
//
// # Closed Event Set
//
// Event is a closed sum type. Its marker method is unexported, so only the
// five variants in this package implement it:
//
//   - [NodePositionChanged]: set an entity's position overlay entry
//   - [LinkAdded]: append a link (idempotent by key)
//   - [LinkModified]: reroute and relabel a link
//   - [LinkRemoved]: delete a link
//   - [LinkTextChanged]: set one label of a link
//
// # Tolerance
//
// Events that reference unknown keys are no-ops rather than errors, because
// UI gestures can race catalog reloads. A no-op returns the input snapshot
// pointer, so observers can skip work with a pointer comparison.
//
// # Structural Sharing
//
// Reduce clones only the slice a variant touches. Untouched slices, and the
// attribute slices inside entities, are shared between snapshots and are
// never written to.
//
// # Wire Format
//
// [Marshal] and [Unmarshal] encode events as JSON objects with a "type"
// discriminator, for the HTTP API and scripted edits.
package change
