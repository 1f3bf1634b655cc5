package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/editor"
)

// One terminal cell covers cellWidth×cellHeight canvas units.
const (
	cellWidth  = 10.0
	cellHeight = 20.0
)

// ink classifies a cell for styling.
type ink uint8

const (
	inkNone ink = iota
	inkFill
	inkBorder
	inkTitle
	inkAttr
	inkKey
	inkInherited
	inkDragging
	inkLink
	inkSelected
	inkLabel
	inkBand
	inkEdit
)

var inkStyles = map[ink]lipgloss.Style{
	inkBorder:    lipgloss.NewStyle().Foreground(colorGray),
	inkTitle:     lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
	inkAttr:      lipgloss.NewStyle().Foreground(colorWhite),
	inkKey:       lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorWhite),
	inkInherited: lipgloss.NewStyle().Foreground(colorDim),
	inkDragging:  lipgloss.NewStyle().Foreground(colorYellow),
	inkLink:      lipgloss.NewStyle().Foreground(colorBlue),
	inkSelected:  lipgloss.NewStyle().Bold(true).Foreground(colorYellow),
	inkLabel:     lipgloss.NewStyle().Foreground(colorGreen),
	inkBand:      lipgloss.NewStyle().Foreground(colorYellow),
	inkEdit:      lipgloss.NewStyle().Reverse(true),
}

// viewport maps between terminal cells and canvas coordinates. Origin is the
// canvas point at the top-left corner of cell (0,0).
type viewport struct {
	origin diagram.Point
}

func (vp viewport) cell(p diagram.Point) (col, row int) {
	return int(math.Floor((p.X - vp.origin.X) / cellWidth)),
		int(math.Floor((p.Y - vp.origin.Y) / cellHeight))
}

// point returns the canvas point at the center of a cell.
func (vp viewport) point(col, row int) diagram.Point {
	return diagram.Point{
		X: vp.origin.X + (float64(col)+0.5)*cellWidth,
		Y: vp.origin.Y + (float64(row)+0.5)*cellHeight,
	}
}

func (vp *viewport) pan(cols, rows int) {
	vp.origin.X += float64(cols) * cellWidth
	vp.origin.Y += float64(rows) * cellHeight
}

// canvas is a fixed-size grid of styled runes.
type canvas struct {
	w, h  int
	runes [][]rune
	inks  [][]ink
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: max(w, 0), h: max(h, 0)}
	c.runes = make([][]rune, c.h)
	c.inks = make([][]ink, c.h)
	for y := range c.h {
		c.runes[y] = []rune(strings.Repeat(" ", c.w))
		c.inks[y] = make([]ink, c.w)
	}
	return c
}

func (c *canvas) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.w && y < c.h
}

func (c *canvas) set(x, y int, r rune, k ink) {
	if !c.inBounds(x, y) {
		return
	}
	c.runes[y][x] = r
	c.inks[y][x] = k
}

func (c *canvas) text(x, y int, s string, k ink) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, k)
	}
}

// textCentered writes s centered on column x, clipped to [lo, hi].
func (c *canvas) textCentered(x, y int, s string, k ink, lo, hi int) {
	if hi < lo {
		return
	}
	rs := []rune(s)
	if n := hi - lo + 1; len(rs) > n {
		rs = rs[:n]
	}
	start := x - len(rs)/2
	start = min(max(start, lo), hi-len(rs)+1)
	for i, r := range rs {
		c.set(start+i, y, r, k)
	}
}

// plain returns the grid without styling.
func (c *canvas) plain() string {
	lines := make([]string, c.h)
	for y := range c.h {
		lines[y] = string(c.runes[y])
	}
	return strings.Join(lines, "\n")
}

// styled returns the grid with runs of equal ink rendered in their style.
func (c *canvas) styled() string {
	var b strings.Builder
	for y := range c.h {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.w; {
			k := c.inks[y][x]
			end := x
			for end < c.w && c.inks[y][end] == k {
				end++
			}
			run := string(c.runes[y][x:end])
			if st, ok := inkStyles[k]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			x = end
		}
	}
	return b.String()
}

// drawView paints an editor view. Links are drawn around boxes, never through
// them; labels, the rubber band and the label editor go on top.
func drawView(c *canvas, vp viewport, v editor.View) {
	for _, ev := range v.Entities {
		drawEntity(c, vp, ev)
	}
	for _, lv := range v.Links {
		k := inkLink
		if lv.Selected {
			k = inkSelected
		}
		if x, y, ok := drawLine(c, vp, lv.From, lv.To, k, true); ok {
			c.set(x, y, arrowHead(lv.From, lv.To), k)
		}
	}
	for _, lv := range v.Links {
		if ed := v.Edit; ed != nil && ed.LinkKey == lv.Link.Key {
			if ed.IsFrom {
				drawLabel(c, vp, lv.ToAt, lv.Link.ToLabel(), inkLabel)
			} else {
				drawLabel(c, vp, lv.FromAt, lv.Link.FromLabel(), inkLabel)
			}
			continue
		}
		drawLabel(c, vp, lv.FromAt, lv.Link.FromLabel(), inkLabel)
		drawLabel(c, vp, lv.ToAt, lv.Link.ToLabel(), inkLabel)
	}
	if rb := v.RubberBand; rb != nil {
		drawLine(c, vp, rb.From, rb.To, inkBand, false)
	}
	if ed := v.Edit; ed != nil {
		drawLabel(c, vp, ed.At, ed.Text+"▏", inkEdit)
	}
}

func drawEntity(c *canvas, vp viewport, ev editor.EntityView) {
	x0, y0 := vp.cell(ev.Box.Min)
	x1, y1 := vp.cell(ev.Box.Max)
	border := inkBorder
	if ev.Dragging {
		border = inkDragging
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r := ' '
			switch {
			case y == y0 && x == x0:
				r = '┌'
			case y == y0 && x == x1:
				r = '┐'
			case y == y1 && x == x0:
				r = '└'
			case y == y1 && x == x1:
				r = '┘'
			case y == y0 || y == y1:
				r = '─'
			case x == x0 || x == x1:
				r = '│'
			}
			k := inkFill
			if r != ' ' {
				k = border
			}
			c.set(x, y, r, k)
		}
	}

	cx, _ := vp.cell(ev.Center)
	_, ty := vp.cell(diagram.Point{Y: ev.Box.Min.Y + editor.TitleHeight/2})
	c.textCentered(cx, ty, " "+ev.Entity.Key+" ", inkTitle, x0+1, x1-1)

	row := 0
	put := func(a diagram.Attribute, k ink) {
		y := ev.Box.Min.Y + editor.TitleHeight + editor.RowHeight*(float64(row)+1.5)
		row++
		_, cy := vp.cell(diagram.Point{Y: y})
		if cy <= y0 || cy >= y1 {
			return
		}
		name := []rune(a.Name)
		if n := x1 - x0 - 2; len(name) > n {
			name = name[:max(n, 0)]
		}
		c.text(x0+1, cy, string(name), k)
	}
	for _, a := range ev.Entity.Attributes {
		k := inkAttr
		if a.IsKey {
			k = inkKey
		}
		put(a, k)
	}
	for _, a := range ev.Entity.InheritedAttributes {
		put(a, inkInherited)
	}
}

func drawLabel(c *canvas, vp viewport, at diagram.Point, text string, k ink) {
	if text == "" {
		return
	}
	x, y := vp.cell(at)
	half := int(editor.LabelHalfWidth / cellWidth)
	c.textCentered(x, y, text, k, x-half, x+half-1)
}

// drawLine rasterizes a→b with Bresenham's algorithm. With blankOnly it
// leaves painted cells alone. It returns the last cell it wrote.
func drawLine(c *canvas, vp viewport, a, b diagram.Point, k ink, blankOnly bool) (lastX, lastY int, ok bool) {
	x0, y0 := vp.cell(a)
	x1, y1 := vp.cell(b)
	r := lineRune(x1-x0, y1-y0)

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		if c.inBounds(x0, y0) && (!blankOnly || c.inks[y0][x0] == inkNone) {
			c.set(x0, y0, r, k)
			lastX, lastY, ok = x0, y0, true
		}
		if x0 == x1 && y0 == y1 {
			return lastX, lastY, ok
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// lineRune picks the glyph closest to a line's slope.
func lineRune(dx, dy int) rune {
	switch {
	case dy == 0 || abs(dx) > 3*abs(dy):
		return '─'
	case dx == 0 || abs(dy) > 3*abs(dx):
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func arrowHead(from, to diagram.Point) rune {
	d := to.Sub(from)
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X >= 0 {
			return '▶'
		}
		return '◀'
	}
	if d.Y > 0 {
		return '▼'
	}
	return '▲'
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
