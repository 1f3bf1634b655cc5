package change

import "github.com/matzehuels/entitydiagram/pkg/diagram"

// Event type names, used as the JSON discriminator.
const (
	TypeNodePositionChanged = "nodePositionChanged"
	TypeLinkAdded           = "linkAdded"
	TypeLinkModified        = "linkModified"
	TypeLinkRemoved         = "linkRemoved"
	TypeLinkTextChanged     = "linkTextChanged"
)

// Event is a change to a diagram snapshot.
// The set of implementations is closed; see the package documentation.
type Event interface {
	// Type returns the wire name of the event.
	Type() string
	event()
}

// NodePositionChanged moves an entity. Loc is a serialized coordinate
// (see [diagram.FormatLoc]).
type NodePositionChanged struct {
	Key string
	Loc string
}

// LinkAdded creates a link. Text and ToText are optional labels.
type LinkAdded struct {
	Key    string
	From   string
	To     string
	Text   *string
	ToText *string
}

// LinkModified replaces the endpoints and labels of an existing link.
type LinkModified struct {
	Key     string
	NewFrom string
	NewTo   string
	Text    *string
	ToText  *string
}

// LinkRemoved deletes a link.
type LinkRemoved struct {
	Key string
}

// LinkTextChanged sets the from label (IsFromText) or the to label of a link.
// OldText is informational only and is never checked against the current label.
type LinkTextChanged struct {
	Key        string
	OldText    string
	NewText    string
	IsFromText bool
}

func (NodePositionChanged) Type() string { return TypeNodePositionChanged }
func (LinkAdded) Type() string           { return TypeLinkAdded }
func (LinkModified) Type() string        { return TypeLinkModified }
func (LinkRemoved) Type() string         { return TypeLinkRemoved }
func (LinkTextChanged) Type() string     { return TypeLinkTextChanged }

func (NodePositionChanged) event() {}
func (LinkAdded) event()           {}
func (LinkModified) event()        {}
func (LinkRemoved) event()         {}
func (LinkTextChanged) event()     {}

// MoveTo builds a NodePositionChanged event for an entity at p.
func MoveTo(key string, p diagram.Point) NodePositionChanged {
	return NodePositionChanged{Key: key, Loc: diagram.FormatLoc(p)}
}
