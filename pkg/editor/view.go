package editor

import (
	"slices"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
)

// EntityView is an entity as drawn.
type EntityView struct {
	Entity diagram.Entity
	Center diagram.Point
	Box    Rect
	// Placed is false for entities shown at their grid default.
	Placed   bool
	Dragging bool
}

// LinkView is a link as drawn. Links whose endpoints are missing are not drawn.
type LinkView struct {
	Link     diagram.Link
	From, To diagram.Point // anchored endpoints
	FromAt   diagram.Point // from-label center
	ToAt     diagram.Point // to-label center
	Selected bool
}

// RubberBand is the provisional line of a link gesture.
type RubberBand struct {
	Source   string
	From, To diagram.Point
}

// LabelEdit is the label being edited.
type LabelEdit struct {
	LinkKey string
	IsFrom  bool
	Text    string
	At      diagram.Point
}

// View is everything needed to draw the editor.
type View struct {
	Entities   []EntityView
	Links      []LinkView
	RubberBand *RubberBand
	Edit       *LabelEdit
}

// View computes the current drawing state.
func (e *Editor) View() View {
	return e.view(e.d.Snapshot())
}

func (e *Editor) view(s *diagram.Snapshot) View {
	if s == nil {
		s = diagram.Empty()
	}
	var v View

	centers := make(map[string]diagram.Point, len(s.Entities))
	v.Entities = make([]EntityView, 0, len(s.Entities))
	for i, ent := range s.Entities {
		ev := EntityView{Entity: ent, Center: DefaultPosition(i)}
		if ent.Position != nil {
			ev.Center, ev.Placed = *ent.Position, true
		}
		if e.drag != nil && e.drag.key == ent.Key {
			ev.Center, ev.Dragging = e.drag.pos, true
		}
		ev.Box = EntityBox(ent, ev.Center)
		centers[ent.Key] = ev.Center
		v.Entities = append(v.Entities, ev)
	}

	v.Links = make([]LinkView, 0, len(s.Links))
	for _, l := range s.Links {
		fc, ok1 := centers[l.From]
		tc, ok2 := centers[l.To]
		if !ok1 || !ok2 {
			continue
		}
		a, b := Anchors(fc, tc)
		fa, ta := LabelPoints(a, b)
		v.Links = append(v.Links, LinkView{
			Link: l, From: a, To: b, FromAt: fa, ToAt: ta,
			Selected: l.Key == e.selected,
		})
	}

	if e.band != nil {
		if c, ok := centers[e.band.from]; ok {
			v.RubberBand = &RubberBand{
				Source: e.band.from,
				From:   diagram.Point{X: c.X, Y: c.Y - RubberBandLift},
				To:     e.band.cursor,
			}
		}
	}

	if e.edit != nil {
		if lv, ok := v.FindLink(e.edit.link); ok {
			at := lv.ToAt
			if e.edit.isFrom {
				at = lv.FromAt
			}
			v.Edit = &LabelEdit{LinkKey: e.edit.link, IsFrom: e.edit.isFrom, Text: string(e.edit.buf), At: at}
		}
	}
	return v
}

// FindLink returns the drawn link with key.
func (v View) FindLink(key string) (LinkView, bool) {
	i := slices.IndexFunc(v.Links, func(lv LinkView) bool { return lv.Link.Key == key })
	if i < 0 {
		return LinkView{}, false
	}
	return v.Links[i], true
}

// EntityAt returns the first entity whose box contains p.
func (v View) EntityAt(p diagram.Point) (EntityView, bool) {
	for _, ev := range v.Entities {
		if ev.Box.Contains(p) {
			return ev, true
		}
	}
	return EntityView{}, false
}

// BodyAt returns the first entity whose body (below the title) contains p.
func (v View) BodyAt(p diagram.Point) (EntityView, bool) {
	for _, ev := range v.Entities {
		if BodyContains(ev.Box, p) {
			return ev, true
		}
	}
	return EntityView{}, false
}

// LabelAt returns the link and end of the non-empty label under p.
func (v View) LabelAt(p diagram.Point) (key string, isFrom bool, ok bool) {
	for _, lv := range v.Links {
		if lv.Link.FromLabel() != "" && LabelRect(lv.FromAt).Contains(p) {
			return lv.Link.Key, true, true
		}
		if lv.Link.ToLabel() != "" && LabelRect(lv.ToAt).Contains(p) {
			return lv.Link.Key, false, true
		}
	}
	return "", false, false
}

// LinkAt returns the link whose line passes closest to p within
// LinkHitTolerance.
func (v View) LinkAt(p diagram.Point) (string, bool) {
	best, bestD := "", LinkHitTolerance
	found := false
	for _, lv := range v.Links {
		if d := DistanceToSegment(p, lv.From, lv.To); d <= bestD {
			best, bestD, found = lv.Link.Key, d, true
		}
	}
	return best, found
}
