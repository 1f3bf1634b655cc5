// Package render draws diagrams for export and preview.
//
// # Static SVG
//
// [SVG] draws an [editor.View] with the same geometry the interactive editor
// hit-tests against: entity boxes sized by attribute count, anchored link
// lines, end labels, the selected link and any rubber band in progress.
//
//	svg := render.SVG(ed.View())
//
// # Graphviz
//
// [DOT] converts a snapshot to Graphviz DOT, one HTML-table node per entity
// and one edge per link with the from/to labels as tail/head labels.
// [RenderDOT] lays the DOT out and renders it to SVG or PNG using the
// embedded Graphviz. PDF goes through SVG and rsvg-convert ([ToPDF]).
//
//	opts := render.Options{Pinned: true}
//	dot := render.DOT(snap, opts)
//	png, err := render.RenderDOT(ctx, dot, render.FormatPNG, opts)
//
// Links whose endpoints do not resolve to an entity are never drawn.
package render
