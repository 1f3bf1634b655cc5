// Package diagram defines the entity-relationship graph model.
//
// A [Snapshot] is one immutable version of the graph: the entities derived
// from the schema catalogs, the user-authored [Link] list, and the position
// overlay ([Placement] records). Snapshots are replaced, never mutated, so
// observers can compare pointers to detect change and keep reading an old
// snapshot while a new one is being published.
//
// # Overlay
//
// Links and placements form the overlay: the only data that is persisted.
// Entities are rebuilt from the catalogs on every load and joined with the
// placements by key.
//
// # Coordinates
//
// Positions are serialized as two numbers separated by a single space:
//
//	loc := diagram.FormatLoc(diagram.Point{X: 120, Y: 40}) // "120 40"
//	p := diagram.ParseLoc("not a point")                   // (0,0)
package diagram
