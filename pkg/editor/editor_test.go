package editor

import (
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/entitydiagram/pkg/change"
	"github.com/matzehuels/entitydiagram/pkg/diagram"
)

type recorder struct {
	snap   *diagram.Snapshot
	events []change.Event
}

func (r *recorder) Snapshot() *diagram.Snapshot { return r.snap }

func (r *recorder) Dispatch(e change.Event) *diagram.Snapshot {
	r.events = append(r.events, e)
	r.snap = change.Reduce(r.snap, e)
	return r.snap
}

func pt(x, y float64) diagram.Point { return diagram.Point{X: x, Y: y} }

func entity(key string, at *diagram.Point) diagram.Entity {
	return diagram.Entity{
		Key:      key,
		Position: at,
		Attributes: []diagram.Attribute{
			{Name: "id", IsKey: true},
			{Name: "name"},
		},
	}
}

// User at (100,100) and Order at (400,100). Both boxes span y 58..142 with
// the title in 58..82. The anchored link runs (142,100)→(358,100).
func fixture(links ...diagram.Link) *recorder {
	u, o := pt(100, 100), pt(400, 100)
	s := diagram.Empty()
	s.Entities = []diagram.Entity{entity("User", &u), entity("Order", &o)}
	if links != nil {
		s.Links = links
	}
	return &recorder{snap: s}
}

func newEditor(r *recorder) *Editor {
	return New(r, WithKeyFunc(func() string { return "k1" }))
}

func TestMoveGesture(t *testing.T) {
	r := fixture()
	ed := newEditor(r)

	ed.PointerDown(pt(100, 120))
	if ed.Mode() != ModeMoving {
		t.Fatalf("Mode = %v, want moving", ed.Mode())
	}
	ed.PointerMove(pt(150, 170))
	ed.PointerMove(pt(200, 220))

	v := ed.View()
	if got := v.Entities[0]; !got.Dragging || got.Center != pt(200, 200) {
		t.Errorf("dragged entity = %+v, want center (200,200)", got)
	}
	if len(r.events) != 0 {
		t.Fatalf("events during drag = %v, want none", r.events)
	}

	ed.PointerUp(pt(200, 220))
	want := []change.Event{change.MoveTo("User", pt(200, 200))}
	if !reflect.DeepEqual(r.events, want) {
		t.Errorf("events = %v, want %v", r.events, want)
	}
	if e, _ := r.snap.FindEntity("User"); *e.Position != pt(200, 200) {
		t.Errorf("User position = %v", *e.Position)
	}
	if ed.Mode() != ModeIdle {
		t.Errorf("Mode after up = %v", ed.Mode())
	}
}

func TestMoveWithoutMotionEmitsNothing(t *testing.T) {
	r := fixture()
	ed := newEditor(r)

	ed.PointerDown(pt(90, 130))
	ed.PointerMove(pt(120, 130))
	ed.PointerUp(pt(90, 130))

	if len(r.events) != 0 {
		t.Errorf("events = %v, want none", r.events)
	}
}

func TestMoveUnplacedEntity(t *testing.T) {
	r := fixture()
	r.snap.Entities = append(r.snap.Entities, entity("Cart", nil))
	ed := newEditor(r)

	c := DefaultPosition(2)
	ed.PointerDown(c.Add(pt(0, 10)))
	ed.PointerUp(c.Add(pt(5, 10)))

	want := []change.Event{change.MoveTo("Cart", c.Add(pt(5, 0)))}
	if !reflect.DeepEqual(r.events, want) {
		t.Errorf("events = %v, want %v", r.events, want)
	}
}

func TestLinkGesture(t *testing.T) {
	tests := []struct {
		name string
		up   diagram.Point
		want []change.Event
	}{
		{"onto other body", pt(400, 120), []change.Event{change.LinkAdded{Key: "k1", From: "User", To: "Order"}}},
		{"onto own body", pt(100, 120), nil},
		{"onto other title", pt(400, 65), nil},
		{"onto empty canvas", pt(250, 400), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fixture()
			ed := newEditor(r)

			ed.PointerDown(pt(100, 65))
			if ed.Mode() != ModeLinking {
				t.Fatalf("Mode = %v, want linking", ed.Mode())
			}
			ed.PointerMove(tt.up)
			ed.PointerUp(tt.up)

			if !reflect.DeepEqual(r.events, tt.want) {
				t.Errorf("events = %v, want %v", r.events, tt.want)
			}
			if ed.View().RubberBand != nil {
				t.Error("rubber band survives pointer up")
			}
		})
	}
}

func TestRubberBand(t *testing.T) {
	ed := newEditor(fixture())
	ed.PointerDown(pt(100, 65))
	ed.PointerMove(pt(300, 300))

	rb := ed.View().RubberBand
	if rb == nil {
		t.Fatal("no rubber band")
	}
	if rb.Source != "User" || rb.From != pt(100, 100-RubberBandLift) || rb.To != pt(300, 300) {
		t.Errorf("rubber band = %+v", rb)
	}

	ed.Cancel()
	if ed.View().RubberBand != nil || ed.Mode() != ModeIdle {
		t.Error("Cancel did not abandon the gesture")
	}
}

func TestLabelEditConfirm(t *testing.T) {
	r := fixture(diagram.Link{Key: "L", From: "User", To: "Order", Text: diagram.Label("places"), ToText: diagram.Label("placed by")})
	ed := newEditor(r)

	v := ed.View()
	lv, _ := v.FindLink("L")
	ed.PointerDown(lv.FromAt)
	if ed.Mode() != ModeEditing {
		t.Fatalf("Mode = %v, want editing", ed.Mode())
	}
	if got := ed.View().Edit; got == nil || got.Text != "places" || !got.IsFrom {
		t.Fatalf("Edit = %+v", got)
	}

	for range "places" {
		ed.Key(KeyBackspace)
	}
	for _, c := range "owns" {
		ed.TypeRune(c)
	}
	ed.Key(KeyEnter)

	want := []change.Event{change.LinkTextChanged{Key: "L", OldText: "places", NewText: "owns", IsFromText: true}}
	if !reflect.DeepEqual(r.events, want) {
		t.Fatalf("events = %v, want %v", r.events, want)
	}
	l, _ := r.snap.FindLink("L")
	if l.FromLabel() != "owns" || l.ToLabel() != "placed by" {
		t.Errorf("labels = %q/%q", l.FromLabel(), l.ToLabel())
	}
}

func TestLabelEditToEnd(t *testing.T) {
	r := fixture(diagram.Link{Key: "L", From: "User", To: "Order", Text: diagram.Label("a"), ToText: diagram.Label("b")})
	ed := newEditor(r)

	lv, _ := ed.View().FindLink("L")
	ed.PointerDown(lv.ToAt)
	ed.TypeRune('!')
	ed.Confirm()

	want := []change.Event{change.LinkTextChanged{Key: "L", OldText: "b", NewText: "b!"}}
	if !reflect.DeepEqual(r.events, want) {
		t.Errorf("events = %v, want %v", r.events, want)
	}
}

func TestLabelEditCancel(t *testing.T) {
	link := diagram.Link{Key: "L", From: "User", To: "Order", Text: diagram.Label("places")}

	t.Run("escape", func(t *testing.T) {
		r := fixture(link)
		ed := newEditor(r)
		lv, _ := ed.View().FindLink("L")
		ed.PointerDown(lv.FromAt)
		ed.TypeRune('x')
		ed.Key(KeyEscape)
		if len(r.events) != 0 || ed.Mode() != ModeIdle {
			t.Errorf("events = %v, mode = %v", r.events, ed.Mode())
		}
	})

	t.Run("blur", func(t *testing.T) {
		r := fixture(link)
		ed := newEditor(r)
		lv, _ := ed.View().FindLink("L")
		ed.PointerDown(lv.FromAt)
		ed.TypeRune('x')
		ed.PointerDown(pt(800, 800))
		if len(r.events) != 0 || ed.Mode() != ModeIdle {
			t.Errorf("events = %v, mode = %v", r.events, ed.Mode())
		}
	})

	t.Run("press same label keeps editing", func(t *testing.T) {
		r := fixture(link)
		ed := newEditor(r)
		lv, _ := ed.View().FindLink("L")
		ed.PointerDown(lv.FromAt)
		ed.TypeRune('x')
		ed.PointerDown(lv.FromAt.Add(pt(5, 0)))
		if got := ed.View().Edit; got == nil || got.Text != "placesx" {
			t.Errorf("Edit = %+v", got)
		}
	})
}

func TestEmptyLabelsAreNotHittable(t *testing.T) {
	r := fixture(diagram.Link{Key: "L", From: "User", To: "Order"})
	ed := newEditor(r)
	lv, _ := ed.View().FindLink("L")

	ed.PointerDown(lv.FromAt)
	if ed.Mode() == ModeEditing {
		t.Error("empty label entered edit mode")
	}
}

func TestSelectAndDelete(t *testing.T) {
	r := fixture(diagram.Link{Key: "L", From: "User", To: "Order"})
	ed := newEditor(r)

	ed.PointerDown(pt(250, 105))
	if ed.Selected() != "L" {
		t.Fatalf("Selected = %q, want L", ed.Selected())
	}
	if lv, _ := ed.View().FindLink("L"); !lv.Selected {
		t.Error("view does not mark selection")
	}

	ed.Key(KeyDelete)
	want := []change.Event{change.LinkRemoved{Key: "L"}}
	if !reflect.DeepEqual(r.events, want) {
		t.Errorf("events = %v, want %v", r.events, want)
	}
	if len(r.snap.Links) != 0 || ed.Selected() != "" {
		t.Errorf("links = %v, selected = %q", r.snap.Links, ed.Selected())
	}
}

func TestSelectionClearedOnCanvas(t *testing.T) {
	r := fixture(diagram.Link{Key: "L", From: "User", To: "Order"})
	ed := newEditor(r)

	ed.PointerDown(pt(250, 100))
	ed.PointerDown(pt(250, 300))
	ed.Key(KeyBackspace)

	if ed.Selected() != "" || len(r.events) != 0 {
		t.Errorf("selected = %q, events = %v", ed.Selected(), r.events)
	}
}

func TestDeleteIgnoredWhileEditing(t *testing.T) {
	r := fixture(diagram.Link{Key: "L", From: "User", To: "Order", Text: diagram.Label("ab")})
	ed := newEditor(r)
	lv, _ := ed.View().FindLink("L")

	ed.PointerDown(lv.FromAt)
	ed.Key(KeyDelete)
	ed.Key(KeyBackspace)

	if len(r.events) != 0 {
		t.Fatalf("events = %v, want none", r.events)
	}
	if got := ed.View().Edit; got == nil || got.Text != "a" {
		t.Errorf("Edit = %+v, want buffer %q", got, "a")
	}
}

func TestDoubleClickSeedsLabels(t *testing.T) {
	r := fixture(diagram.Link{Key: "L", From: "User", To: "Order"})
	ed := newEditor(r)

	ed.DoubleClick(pt(250, 102))
	want := []change.Event{
		change.LinkTextChanged{Key: "L", NewText: SeedFromLabel, IsFromText: true},
		change.LinkTextChanged{Key: "L", NewText: SeedToLabel},
	}
	if !reflect.DeepEqual(r.events, want) {
		t.Fatalf("events = %v, want %v", r.events, want)
	}

	// Labels now exist; a second double click changes nothing.
	ed.DoubleClick(pt(250, 102))
	if len(r.events) != 2 {
		t.Errorf("events = %d, want 2", len(r.events))
	}
}

func TestSelectNext(t *testing.T) {
	r := fixture(
		diagram.Link{Key: "A", From: "User", To: "Order"},
		diagram.Link{Key: "B", From: "Order", To: "User"},
	)
	ed := newEditor(r)

	var got []string
	for range 3 {
		ed.Key(KeyTab)
		got = append(got, ed.Selected())
	}
	if want := []string{"A", "B", "A"}; !reflect.DeepEqual(got, want) {
		t.Errorf("selection cycle = %v, want %v", got, want)
	}
}

func TestViewSkipsDanglingLinks(t *testing.T) {
	r := fixture(
		diagram.Link{Key: "ok", From: "User", To: "Order"},
		diagram.Link{Key: "dangling", From: "User", To: "Ghost"},
	)
	v := newEditor(r).View()

	if len(v.Links) != 1 || v.Links[0].Link.Key != "ok" {
		t.Errorf("links = %+v", v.Links)
	}
}

func TestViewDefaultPlacement(t *testing.T) {
	r := fixture()
	r.snap.Entities = append(r.snap.Entities, entity("Cart", nil))
	v := newEditor(r).View()

	got := v.Entities[2]
	if got.Placed || got.Center != DefaultPosition(2) {
		t.Errorf("Cart = %+v, want unplaced at %v", got, DefaultPosition(2))
	}
	if !v.Entities[0].Placed {
		t.Error("User should be placed")
	}
}

func TestGeometry(t *testing.T) {
	near := func(a, b diagram.Point) bool {
		return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
	}

	a, b := Anchors(pt(100, 100), pt(400, 100))
	if !near(a, pt(142, 100)) || !near(b, pt(358, 100)) {
		t.Errorf("Anchors = %v, %v", a, b)
	}
	if a, b := Anchors(pt(5, 5), pt(5, 5)); a != b {
		t.Errorf("coincident Anchors = %v, %v", a, b)
	}

	f, to := LabelPoints(pt(0, 0), pt(100, 0))
	if !near(f, pt(30, -10)) || !near(to, pt(70, -10)) {
		t.Errorf("LabelPoints = %v, %v", f, to)
	}

	tests := []struct {
		attrs, inherited int
		want             float64
	}{
		{0, 0, MinBoxHeight},
		{2, 0, 84},
		{4, 3, 184},
	}
	for _, tt := range tests {
		e := diagram.Entity{
			Attributes:          make([]diagram.Attribute, tt.attrs),
			InheritedAttributes: make([]diagram.Attribute, tt.inherited),
		}
		if got := BoxHeight(e); got != tt.want {
			t.Errorf("BoxHeight(%d,%d) = %v, want %v", tt.attrs, tt.inherited, got, tt.want)
		}
	}

	if d := DistanceToSegment(pt(50, 10), pt(0, 0), pt(100, 0)); d != 10 {
		t.Errorf("DistanceToSegment = %v, want 10", d)
	}
	if d := DistanceToSegment(pt(-3, 4), pt(0, 0), pt(100, 0)); d != 5 {
		t.Errorf("DistanceToSegment past end = %v, want 5", d)
	}
}

func TestNewLinkKey(t *testing.T) {
	k1, k2 := NewLinkKey(), NewLinkKey()
	if k1 == k2 {
		t.Fatal("keys repeat")
	}
	id, err := uuid.Parse(k1)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.Version() != 7 {
		t.Errorf("Version = %d, want 7", id.Version())
	}
}
