package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
)

// Options configures DOT conversion.
type Options struct {
	// Pinned emits stored positions as fixed node coordinates. Graphviz only
	// honors them with the neato layout, which RenderDOT then selects.
	Pinned bool
	// Inherited includes inherited attributes below the own attributes.
	Inherited bool
}

// DOT converts a snapshot to Graphviz DOT.
func DOT(s *diagram.Snapshot, opts Options) string {
	if s == nil {
		s = diagram.Empty()
	}
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=plain, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10, arrowhead=vee];\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
	}
	buf.WriteString("\n")

	known := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		known[e.Key] = true
		attrs := []string{"label=<" + fmtTable(e, opts.Inherited) + ">"}
		if opts.Pinned && e.Position != nil {
			attrs = append(attrs, fmt.Sprintf("pos=\"%g,%g!\"", e.Position.X, -e.Position.Y))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", e.Key, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range s.Links {
		if !known[l.From] || !known[l.To] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q", l.From, l.To)
		if attrs := fmtEdgeAttrs(l); len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtTable(e diagram.Entity, inherited bool) string {
	var b strings.Builder
	b.WriteString(`<table border="0" cellborder="1" cellspacing="0" cellpadding="4">`)
	fmt.Fprintf(&b, `<tr><td bgcolor="lightgrey"><b>%s</b></td></tr>`, html.EscapeString(e.Key))
	rows := e.Attributes
	if inherited {
		rows = append(rows[:len(rows):len(rows)], e.InheritedAttributes...)
	}
	for _, a := range rows {
		name := html.EscapeString(a.Name)
		if a.IsKey {
			name = "<u>" + name + "</u>"
		}
		if a.Color != "" {
			name = fmt.Sprintf(`<font color="%s">%s</font>`, html.EscapeString(a.Color), name)
		}
		fmt.Fprintf(&b, `<tr><td align="left">%s</td></tr>`, name)
	}
	b.WriteString("</table>")
	return b.String()
}

func fmtEdgeAttrs(l diagram.Link) []string {
	var attrs []string
	if t := l.FromLabel(); t != "" {
		attrs = append(attrs, fmt.Sprintf("taillabel=%q", t))
	}
	if t := l.ToLabel(); t != "" {
		attrs = append(attrs, fmt.Sprintf("headlabel=%q", t))
	}
	return attrs
}

// RenderDOT lays out and renders a DOT graph produced by [DOT] with the same
// opts.
//
// FormatDOT returns the input unchanged. FormatPDF renders SVG and converts it
// with [ToPDF].
func RenderDOT(ctx context.Context, dot string, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatDOT:
		return []byte(dot), nil
	case FormatPDF:
		svg, err := RenderDOT(ctx, dot, FormatSVG, opts)
		if err != nil {
			return nil, err
		}
		return ToPDF(ctx, svg)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(layoutFor(opts))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	switch f {
	case FormatSVG:
		if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		return normalizeViewBox(buf.Bytes()), nil
	case FormatPNG:
		if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("render: unsupported format %q", f)
}

// Export converts s to DOT and renders it in format f.
func Export(ctx context.Context, s *diagram.Snapshot, f Format, opts Options) ([]byte, error) {
	return RenderDOT(ctx, DOT(s, opts), f, opts)
}

// layoutFor picks the Graphviz engine. Only neato honors pinned positions.
func layoutFor(opts Options) graphviz.Layout {
	if opts.Pinned {
		return graphviz.NEATO
	}
	return graphviz.DOT
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg element with one sized in
// pixels and anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
