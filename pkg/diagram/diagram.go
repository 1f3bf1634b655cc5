package diagram

import "slices"

// =============================================================================
// Constants
// =============================================================================

// Kind identifies the catalog an entity was sourced from.
type Kind string

// Catalog kinds.
const (
	KindSchema      Kind = "schema"       // freeform custom-object schemas
	KindProductType Kind = "product-type" // product types
	KindFieldType   Kind = "field-type"   // field-definition types
)

// =============================================================================
// Point
// =============================================================================

// Point is a 2-D coordinate in canvas units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// =============================================================================
// Entity
// =============================================================================

// Attribute is one row in an entity box.
type Attribute struct {
	Name  string `json:"name"`
	IsKey bool   `json:"isKey"`
	Color string `json:"color"`
}

// Entity is a node derived from one catalog record.
//
// Entities are immutable apart from Position. Attribute slices are replaced
// wholesale on reload and must never be modified in place.
type Entity struct {
	Key                 string      `json:"key"`
	Source              Kind        `json:"source,omitempty"`
	Position            *Point      `json:"position,omitempty"`
	Attributes          []Attribute `json:"attributes"`
	InheritedAttributes []Attribute `json:"inheritedAttributes,omitempty"`
}

// HasPosition reports whether the entity has a stored or user-set position.
func (e Entity) HasPosition() bool { return e.Position != nil }

// Clone returns a copy of e that shares no memory with it.
func (e Entity) Clone() Entity {
	if e.Position != nil {
		p := *e.Position
		e.Position = &p
	}
	e.Attributes = slices.Clone(e.Attributes)
	e.InheritedAttributes = slices.Clone(e.InheritedAttributes)
	return e
}

// WithPosition returns a copy of e placed at p.
func (e Entity) WithPosition(p Point) Entity {
	e.Position = &p
	return e
}

// =============================================================================
// Link
// =============================================================================

// Link is a user-authored directed relationship between two entities.
//
// From and To may reference entities that do not exist; renderers skip such
// links. Text labels the from end, ToText the to end. A nil label means the
// label was never set, which is distinct from an empty label.
type Link struct {
	Key    string  `json:"key"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Text   *string `json:"text,omitempty"`
	ToText *string `json:"toText,omitempty"`
}

// Label returns a pointer to s, for populating optional link labels.
func Label(s string) *string { return &s }

// FromLabel returns the from-end label, or "" when unset.
func (l Link) FromLabel() string { return deref(l.Text) }

// ToLabel returns the to-end label, or "" when unset.
func (l Link) ToLabel() string { return deref(l.ToText) }

// Clone returns a copy of l with its own labels.
func (l Link) Clone() Link {
	if l.Text != nil {
		l.Text = Label(*l.Text)
	}
	if l.ToText != nil {
		l.ToText = Label(*l.ToText)
	}
	return l
}

// Equal reports whether two links carry the same key, endpoints and labels.
func (l Link) Equal(o Link) bool {
	return l.Key == o.Key && l.From == o.From && l.To == o.To &&
		labelEqual(l.Text, o.Text) && labelEqual(l.ToText, o.ToText)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func labelEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// =============================================================================
// Placement - Position Overlay Record
// =============================================================================

// Placement is one record of the position overlay: an entity key and its
// serialized coordinate. Placements are stored apart from the catalog so that
// reloads never discard user layout, and may outlive their entity.
type Placement struct {
	Key string `json:"key"`
	Loc string `json:"loc"`
}

// Point parses the stored coordinate. Malformed values yield (0,0).
func (p Placement) Point() Point { return ParseLoc(p.Loc) }
