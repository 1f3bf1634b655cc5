package editor

import (
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/entitydiagram/pkg/change"
	"github.com/matzehuels/entitydiagram/pkg/diagram"
)

// Default label texts seeded by a double click on an unlabeled link.
const (
	SeedFromLabel = "Label"
	SeedToLabel   = "Relation"
)

// Dispatcher provides the state an Editor reads and accepts the events it emits.
type Dispatcher interface {
	Snapshot() *diagram.Snapshot
	Dispatch(e change.Event) *diagram.Snapshot
}

// Key is a non-text key the editor reacts to.
type Key int

const (
	KeyEnter Key = iota
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyTab
)

// Mode is the editor's current interaction.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMoving
	ModeLinking
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeMoving:
		return "moving"
	case ModeLinking:
		return "linking"
	case ModeEditing:
		return "editing"
	default:
		return "idle"
	}
}

type drag struct {
	key    string
	offset diagram.Point // entity center minus pointer
	start  diagram.Point
	pos    diagram.Point
}

type rubberBand struct {
	from   string
	cursor diagram.Point
}

type labelEdit struct {
	link   string
	isFrom bool
	old    string
	buf    []rune
}

// Editor is the interactive diagram controller.
type Editor struct {
	d      Dispatcher
	newKey func() string

	drag     *drag
	band     *rubberBand
	edit     *labelEdit
	selected string
}

// Option configures an [Editor].
type Option func(*Editor)

// WithKeyFunc overrides link key generation.
func WithKeyFunc(fn func() string) Option {
	return func(e *Editor) { e.newKey = fn }
}

// New creates an editor over d.
func New(d Dispatcher, opts ...Option) *Editor {
	e := &Editor{d: d, newKey: NewLinkKey}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewLinkKey returns a time-ordered random UUID.
func NewLinkKey() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Mode returns the current interaction.
func (e *Editor) Mode() Mode {
	switch {
	case e.edit != nil:
		return ModeEditing
	case e.drag != nil:
		return ModeMoving
	case e.band != nil:
		return ModeLinking
	default:
		return ModeIdle
	}
}

// Selected returns the key of the selected link, or "".
func (e *Editor) Selected() string { return e.selected }

// =============================================================================
// Pointer input
// =============================================================================

// PointerDown starts a gesture at p.
func (e *Editor) PointerDown(p diagram.Point) {
	v := e.View()

	if e.edit != nil {
		if key, isFrom, ok := v.LabelAt(p); ok && key == e.edit.link && isFrom == e.edit.isFrom {
			return
		}
		e.Cancel()
	}

	if key, isFrom, ok := v.LabelAt(p); ok {
		lv, _ := v.FindLink(key)
		text := lv.Link.ToLabel()
		if isFrom {
			text = lv.Link.FromLabel()
		}
		e.edit = &labelEdit{link: key, isFrom: isFrom, old: text, buf: []rune(text)}
		e.selected = key
		return
	}

	if ev, ok := v.EntityAt(p); ok {
		e.selected = ""
		if TitleRect(ev.Box).Contains(p) {
			e.band = &rubberBand{from: ev.Entity.Key, cursor: p}
			return
		}
		e.drag = &drag{key: ev.Entity.Key, offset: ev.Center.Sub(p), start: ev.Center, pos: ev.Center}
		return
	}

	if key, ok := v.LinkAt(p); ok {
		e.selected = key
		return
	}
	e.selected = ""
}

// PointerMove updates the gesture in progress.
func (e *Editor) PointerMove(p diagram.Point) {
	switch {
	case e.drag != nil:
		e.drag.pos = p.Add(e.drag.offset)
	case e.band != nil:
		e.band.cursor = p
	}
}

// PointerUp completes the gesture in progress.
func (e *Editor) PointerUp(p diagram.Point) {
	switch {
	case e.drag != nil:
		d := e.drag
		e.drag = nil
		end := p.Add(d.offset)
		if end != d.start {
			e.d.Dispatch(change.MoveTo(d.key, end))
		}
	case e.band != nil:
		b := e.band
		e.band = nil
		target, ok := e.View().BodyAt(p)
		if !ok || target.Entity.Key == b.from {
			return
		}
		e.d.Dispatch(change.LinkAdded{Key: e.newKey(), From: b.from, To: target.Entity.Key})
	}
}

// DoubleClick seeds default labels on an unlabeled link at p.
func (e *Editor) DoubleClick(p diagram.Point) {
	v := e.View()
	key, _, ok := v.LabelAt(p)
	if !ok {
		key, ok = v.LinkAt(p)
	}
	if !ok {
		return
	}
	lv, _ := v.FindLink(key)
	if lv.Link.FromLabel() != "" || lv.Link.ToLabel() != "" {
		return
	}
	e.d.Dispatch(change.LinkTextChanged{Key: key, NewText: SeedFromLabel, IsFromText: true})
	e.d.Dispatch(change.LinkTextChanged{Key: key, NewText: SeedToLabel, IsFromText: false})
	e.selected = key
}

// =============================================================================
// Keyboard input
// =============================================================================

// Key handles a non-text key.
func (e *Editor) Key(k Key) {
	switch k {
	case KeyEnter:
		e.Confirm()
	case KeyEscape:
		e.Cancel()
	case KeyTab:
		if e.edit == nil {
			e.SelectNext()
		}
	case KeyBackspace:
		if e.edit != nil {
			if n := len(e.edit.buf); n > 0 {
				e.edit.buf = e.edit.buf[:n-1]
			}
			return
		}
		e.removeSelected()
	case KeyDelete:
		if e.edit != nil {
			return
		}
		e.removeSelected()
	}
}

// TypeRune appends r to the active label edit.
func (e *Editor) TypeRune(r rune) {
	if e.edit != nil {
		e.edit.buf = append(e.edit.buf, r)
	}
}

// Confirm commits the active label edit.
func (e *Editor) Confirm() {
	if e.edit == nil {
		return
	}
	ed := e.edit
	e.edit = nil
	e.d.Dispatch(change.LinkTextChanged{
		Key:        ed.link,
		OldText:    ed.old,
		NewText:    string(ed.buf),
		IsFromText: ed.isFrom,
	})
}

// Cancel discards the active label edit and abandons any gesture.
func (e *Editor) Cancel() {
	e.edit = nil
	e.drag = nil
	e.band = nil
}

// SelectNext selects the next visible link, wrapping around.
func (e *Editor) SelectNext() {
	links := e.View().Links
	if len(links) == 0 {
		e.selected = ""
		return
	}
	i := slices.IndexFunc(links, func(lv LinkView) bool { return lv.Link.Key == e.selected })
	e.selected = links[(i+1)%len(links)].Link.Key
}

func (e *Editor) removeSelected() {
	if e.selected == "" {
		return
	}
	key := e.selected
	e.selected = ""
	e.d.Dispatch(change.LinkRemoved{Key: key})
}
