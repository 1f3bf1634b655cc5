package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/editor"
)

const svgPadding = 20.0

const svgStyle = `
    .entity { fill: white; stroke: #333; stroke-width: 1.5; }
    .entity.dragging { stroke-dasharray: 4 2; }
    .title { fill: #e8e8e8; stroke: #333; stroke-width: 1.5; }
    .title-text { font: bold 13px sans-serif; }
    .attr { font: 12px sans-serif; }
    .attr.key { text-decoration: underline; }
    .inherited { font-style: italic; }
    .link { stroke: #555; stroke-width: 1.5; fill: none; }
    .link.selected { stroke: #1e88e5; stroke-width: 3; }
    .label { font: 11px sans-serif; fill: #333; }
    .editing { fill: #fff8c4; stroke: #1e88e5; }
    .band { stroke: #1e88e5; stroke-width: 1.5; stroke-dasharray: 6 4; }`

// SVG draws an editor view as a standalone SVG document.
func SVG(v editor.View) []byte {
	minP, maxP := bounds(v)
	w, h := maxP.X-minP.X, maxP.Y-minP.Y

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		minP.X, minP.Y, w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgStyle)
	buf.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="#555"/></marker></defs>` + "\n")

	for _, lv := range v.Links {
		renderLink(&buf, lv)
	}
	for _, ev := range v.Entities {
		renderEntity(&buf, ev)
	}
	for _, lv := range v.Links {
		renderLabel(&buf, lv.FromAt, lv.Link.FromLabel())
		renderLabel(&buf, lv.ToAt, lv.Link.ToLabel())
	}
	if rb := v.RubberBand; rb != nil {
		fmt.Fprintf(&buf, `  <line class="band" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
			rb.From.X, rb.From.Y, rb.To.X, rb.To.Y)
	}
	if ed := v.Edit; ed != nil {
		r := editor.LabelRect(ed.At)
		fmt.Fprintf(&buf, `  <rect class="editing" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			r.Min.X, r.Min.Y, r.Width(), r.Height())
		fmt.Fprintf(&buf, `  <text class="label" x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle">%s|</text>`+"\n",
			ed.At.X, ed.At.Y, escapeXML(ed.Text))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderEntity(buf *bytes.Buffer, ev editor.EntityView) {
	b := ev.Box
	class := "entity"
	if ev.Dragging {
		class += " dragging"
	}
	fmt.Fprintf(buf, `  <g id="entity-%s">`+"\n", escapeXML(ev.Entity.Key))
	fmt.Fprintf(buf, `    <rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4"/>`+"\n",
		class, b.Min.X, b.Min.Y, b.Width(), b.Height())
	t := editor.TitleRect(b)
	fmt.Fprintf(buf, `    <rect class="title" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4"/>`+"\n",
		t.Min.X, t.Min.Y, t.Width(), t.Height())
	fmt.Fprintf(buf, `    <text class="title-text" x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		t.Center().X, t.Center().Y, escapeXML(ev.Entity.Key))

	// The row below the title is the attribute header; rows start after it.
	y := t.Max.Y + editor.RowHeight + editor.RowHeight/2
	row := func(a diagram.Attribute, extra string) {
		class := "attr" + extra
		if a.IsKey {
			class += " key"
		}
		fill := ""
		if a.Color != "" {
			fill = fmt.Sprintf(` fill="%s"`, escapeXML(a.Color))
		}
		fmt.Fprintf(buf, `    <text class="%s" x="%.1f" y="%.1f" dominant-baseline="middle"%s>%s</text>`+"\n",
			class, b.Min.X+8, y, fill, escapeXML(a.Name))
		y += editor.RowHeight
	}
	for _, a := range ev.Entity.Attributes {
		row(a, "")
	}
	for _, a := range ev.Entity.InheritedAttributes {
		row(a, " inherited")
	}
	buf.WriteString("  </g>\n")
}

func renderLink(buf *bytes.Buffer, lv editor.LinkView) {
	class := "link"
	if lv.Selected {
		class += " selected"
	}
	fmt.Fprintf(buf, `  <line id="link-%s" class="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" marker-end="url(#arrow)"/>`+"\n",
		escapeXML(lv.Link.Key), class, lv.From.X, lv.From.Y, lv.To.X, lv.To.Y)
}

func renderLabel(buf *bytes.Buffer, at diagram.Point, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(buf, `  <text class="label" x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		at.X, at.Y, escapeXML(text))
}

// bounds returns the padded extent of everything drawn. An empty view yields
// a small canvas at the origin.
func bounds(v editor.View) (minP, maxP diagram.Point) {
	minP = diagram.Point{X: math.Inf(1), Y: math.Inf(1)}
	maxP = diagram.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	grow := func(p diagram.Point) {
		minP = diagram.Point{X: math.Min(minP.X, p.X), Y: math.Min(minP.Y, p.Y)}
		maxP = diagram.Point{X: math.Max(maxP.X, p.X), Y: math.Max(maxP.Y, p.Y)}
	}
	for _, ev := range v.Entities {
		grow(ev.Box.Min)
		grow(ev.Box.Max)
	}
	for _, lv := range v.Links {
		for _, at := range []diagram.Point{lv.FromAt, lv.ToAt} {
			r := editor.LabelRect(at)
			grow(r.Min)
			grow(r.Max)
		}
	}
	if rb := v.RubberBand; rb != nil {
		grow(rb.From)
		grow(rb.To)
	}
	if math.IsInf(minP.X, 1) {
		return diagram.Point{}, diagram.Point{X: 2 * svgPadding, Y: 2 * svgPadding}
	}
	pad := diagram.Point{X: svgPadding, Y: svgPadding}
	return minP.Sub(pad), maxP.Add(pad)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
