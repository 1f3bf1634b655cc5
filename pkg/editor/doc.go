// Package editor turns pointer and keyboard input into diagram change events.
//
// An [Editor] reads the current snapshot from a [Dispatcher] (normally a
// *session.Session) and dispatches events back to it. It keeps only
// transient gesture state: a drag in progress, a rubber band, the selected
// link and an active label edit. Everything else lives in the snapshot.
//
// # Gestures
//
//   - Pointer down on an entity body and drag: moves the entity. Only the
//     final position is dispatched, as one NodePositionChanged on release.
//   - Pointer down on an entity title and drag: draws a rubber band. Releasing
//     over the body of another entity dispatches LinkAdded with a fresh key;
//     releasing anywhere else abandons the gesture.
//   - Pointer down on a link label: edits the label. Confirm dispatches
//     LinkTextChanged; Cancel, or pressing elsewhere, discards the edit.
//   - Pointer down on a link line: selects it. Delete or Backspace removes it.
//   - Double click on a link without labels: seeds "Label" and "Relation".
//
// Hit boxes are computed from attribute counts (see [BoxHeight]); entities
// without a stored position are drawn on a grid ([DefaultPosition]) that is
// never persisted.
//
// An Editor is not safe for concurrent use; drive it from one goroutine.
package editor
