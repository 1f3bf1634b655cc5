package editor

import (
	"math"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
)

// Box and link geometry, in canvas units.
const (
	BoxWidth     = 150.0
	TitleHeight  = 24.0
	RowHeight    = 20.0
	MinBoxHeight = 64.0

	// AnchorRadius is how far link endpoints sit from entity centers.
	AnchorRadius = 42.0

	// Labels sit at these fractions of the anchored segment, lifted by LabelLift.
	FromLabelAt = 0.3
	ToLabelAt   = 0.7
	LabelLift   = 10.0

	LabelHalfWidth  = 50.0
	LabelHalfHeight = 10.0

	// LinkHitTolerance is the distance from a link line that still selects it.
	LinkHitTolerance = 10.0

	// RubberBandLift raises the rubber band start above the anchor entity's center.
	RubberBandLift = 38.0
)

// Default placement grid for entities without a stored position.
const (
	GridColumns  = 4
	GridSpacingX = 220.0
	GridSpacingY = 240.0
	GridOriginX  = 120.0
	GridOriginY  = 120.0
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min, Max diagram.Point
}

// RectAround returns the rectangle of size w×h centered on c.
func RectAround(c diagram.Point, w, h float64) Rect {
	return Rect{
		Min: diagram.Point{X: c.X - w/2, Y: c.Y - h/2},
		Max: diagram.Point{X: c.X + w/2, Y: c.Y + h/2},
	}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p diagram.Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of r.
func (r Rect) Center() diagram.Point {
	return diagram.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// BoxHeight is the height of an entity box: title, header row, and one row
// per own and inherited attribute.
func BoxHeight(e diagram.Entity) float64 {
	h := TitleHeight + RowHeight + RowHeight*float64(len(e.Attributes)+len(e.InheritedAttributes))
	return math.Max(h, MinBoxHeight)
}

// EntityBox returns the box of e centered on c.
func EntityBox(e diagram.Entity, c diagram.Point) Rect {
	return RectAround(c, BoxWidth, BoxHeight(e))
}

// TitleRect returns the title region of an entity box.
func TitleRect(box Rect) Rect {
	return Rect{Min: box.Min, Max: diagram.Point{X: box.Max.X, Y: box.Min.Y + TitleHeight}}
}

// BodyContains reports whether p is inside box but below its title region.
func BodyContains(box Rect, p diagram.Point) bool {
	return box.Contains(p) && p.Y > box.Min.Y+TitleHeight
}

// DefaultPosition returns the grid placement for the i-th entity.
func DefaultPosition(i int) diagram.Point {
	return diagram.Point{
		X: GridOriginX + GridSpacingX*float64(i%GridColumns),
		Y: GridOriginY + GridSpacingY*float64(i/GridColumns),
	}
}

// Anchors returns the endpoints of a link between two centers: each center
// moved toward the other by AnchorRadius. Coincident centers anchor in place.
func Anchors(from, to diagram.Point) (a, b diagram.Point) {
	d := to.Sub(from)
	n := math.Hypot(d.X, d.Y)
	if n == 0 {
		return from, to
	}
	u := diagram.Point{X: d.X / n * AnchorRadius, Y: d.Y / n * AnchorRadius}
	return from.Add(u), to.Sub(u)
}

// LabelPoints returns where the from and to labels of a segment a→b sit.
func LabelPoints(a, b diagram.Point) (from, to diagram.Point) {
	return lerp(a, b, FromLabelAt).Sub(diagram.Point{Y: LabelLift}),
		lerp(a, b, ToLabelAt).Sub(diagram.Point{Y: LabelLift})
}

// LabelRect returns the hit box of a label centered on p.
func LabelRect(p diagram.Point) Rect {
	return RectAround(p, 2*LabelHalfWidth, 2*LabelHalfHeight)
}

// DistanceToSegment returns the distance from p to the segment a→b.
func DistanceToSegment(p, a, b diagram.Point) float64 {
	d := b.Sub(a)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	q := lerp(a, b, t)
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func lerp(a, b diagram.Point, t float64) diagram.Point {
	return diagram.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
