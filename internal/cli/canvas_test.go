package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/entitydiagram/pkg/change"
	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/editor"
)

func TestViewportRoundTrip(t *testing.T) {
	vp := viewport{origin: diagram.Point{X: -50, Y: 40}}
	for _, cell := range [][2]int{{0, 0}, {3, 7}, {-2, -1}} {
		col, row := vp.cell(vp.point(cell[0], cell[1]))
		if col != cell[0] || row != cell[1] {
			t.Errorf("cell(point(%v)) = (%d, %d)", cell, col, row)
		}
	}

	vp.pan(2, -1)
	if vp.origin != (diagram.Point{X: -30, Y: 20}) {
		t.Errorf("origin after pan = %+v", vp.origin)
	}
}

func TestLineRune(t *testing.T) {
	tests := []struct {
		dx, dy int
		want   rune
	}{
		{5, 0, '─'},
		{-9, 2, '─'},
		{0, 4, '│'},
		{1, -6, '│'},
		{3, 3, '╲'},
		{-3, -2, '╲'},
		{3, -3, '╱'},
	}
	for _, tt := range tests {
		if got := lineRune(tt.dx, tt.dy); got != tt.want {
			t.Errorf("lineRune(%d, %d) = %q, want %q", tt.dx, tt.dy, got, tt.want)
		}
	}
}

func TestTextCenteredClips(t *testing.T) {
	c := newCanvas(10, 1)
	c.textCentered(5, 0, "abcdefgh", inkLabel, 2, 5)
	if got := c.plain(); got != "  abcd    " {
		t.Errorf("plain() = %q", got)
	}

	c = newCanvas(4, 1)
	c.textCentered(0, 0, "x", inkLabel, 3, 1)
	if got := c.plain(); got != "    " {
		t.Errorf("empty range wrote %q", got)
	}
}

func canvasSnapshot() *diagram.Snapshot {
	return &diagram.Snapshot{
		Entities: []diagram.Entity{
			{
				Key:        "User",
				Position:   &diagram.Point{X: 100, Y: 100},
				Attributes: []diagram.Attribute{{Name: "id", IsKey: true}, {Name: "email"}},
			},
			{
				Key:        "Order",
				Position:   &diagram.Point{X: 400, Y: 100},
				Attributes: []diagram.Attribute{{Name: "id", IsKey: true}, {Name: "total"}},
			},
		},
	}
}

func drawSnapshot(t *testing.T, s *diagram.Snapshot, setup func(*editor.Editor)) []string {
	t.Helper()
	ed := editor.New(&staticDispatcher{s})
	if setup != nil {
		setup(ed)
	}
	c := newCanvas(60, 10)
	drawView(c, viewport{}, ed.View())
	return strings.Split(c.plain(), "\n")
}

type staticDispatcher struct{ s *diagram.Snapshot }

func (d *staticDispatcher) Snapshot() *diagram.Snapshot             { return d.s }
func (d *staticDispatcher) Dispatch(change.Event) *diagram.Snapshot { return d.s }

func TestDrawEntities(t *testing.T) {
	lines := drawSnapshot(t, canvasSnapshot(), nil)

	// User spans x 25..175 and y 58..142.
	if !strings.HasPrefix(lines[2][len("  "):], "┌") {
		t.Errorf("missing top-left corner:\n%s", strings.Join(lines, "\n"))
	}
	for row, want := range map[int]string{3: "User", 5: "id", 6: "email"} {
		if !strings.Contains(lines[row], want) {
			t.Errorf("row %d = %q, want %q", row, lines[row], want)
		}
	}
	if !strings.Contains(lines[3], "Order") {
		t.Errorf("row 3 = %q, want Order title", lines[3])
	}
}

func TestDrawLinkAroundBoxes(t *testing.T) {
	s := canvasSnapshot()
	s.Links = []diagram.Link{{Key: "l1", From: "User", To: "Order", Text: diagram.Label("owns")}}
	lines := drawSnapshot(t, s, nil)

	row := []rune(lines[5])
	if row[18] != '─' || row[31] != '▶' {
		t.Errorf("link row = %q", lines[5])
	}
	if strings.ContainsRune(string(row[3:17]), '─') {
		t.Errorf("link drawn through box: %q", lines[5])
	}
	if !strings.Contains(lines[4], "owns") {
		t.Errorf("label row = %q", lines[4])
	}
}

func TestDrawLabelEdit(t *testing.T) {
	s := canvasSnapshot()
	s.Links = []diagram.Link{{Key: "l1", From: "User", To: "Order", Text: diagram.Label("owns")}}
	lines := drawSnapshot(t, s, func(ed *editor.Editor) {
		ed.PointerDown(diagram.Point{X: 205, Y: 90})
		ed.TypeRune('!')
	})

	if !strings.Contains(lines[4], "owns!▏") {
		t.Errorf("edit row = %q", lines[4])
	}
}

func TestStyledKeepsText(t *testing.T) {
	c := newCanvas(20, 2)
	c.text(1, 0, "User", inkTitle)
	c.text(1, 1, "id", inkKey)
	out := c.styled()
	if !strings.Contains(out, "User") || !strings.Contains(out, "id") || strings.Count(out, "\n") != 1 {
		t.Errorf("styled() = %q", out)
	}
}
