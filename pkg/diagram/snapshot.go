package diagram

import "slices"

// Snapshot is one immutable version of the graph state.
//
// Invariants: entity keys, link keys and placement keys are each unique.
// A published snapshot and the slices it references are never modified;
// producers clone the slices they change and share the rest.
type Snapshot struct {
	Entities  []Entity    `json:"entities"`
	Links     []Link      `json:"links"`
	Positions []Placement `json:"positions"`
}

// Empty returns a snapshot with no entities, links or placements.
func Empty() *Snapshot {
	return &Snapshot{Entities: []Entity{}, Links: []Link{}, Positions: []Placement{}}
}

// FindEntity returns the entity with the given key.
func (s *Snapshot) FindEntity(key string) (Entity, bool) {
	if i := s.EntityIndex(key); i >= 0 {
		return s.Entities[i], true
	}
	return Entity{}, false
}

// FindLink returns the link with the given key.
func (s *Snapshot) FindLink(key string) (Link, bool) {
	if i := s.LinkIndex(key); i >= 0 {
		return s.Links[i], true
	}
	return Link{}, false
}

// FindPlacement returns the placement overlay record for an entity key.
func (s *Snapshot) FindPlacement(key string) (Placement, bool) {
	if i := s.PlacementIndex(key); i >= 0 {
		return s.Positions[i], true
	}
	return Placement{}, false
}

// EntityIndex returns the index of the entity with key, or -1.
func (s *Snapshot) EntityIndex(key string) int {
	return slices.IndexFunc(s.Entities, func(e Entity) bool { return e.Key == key })
}

// LinkIndex returns the index of the link with key, or -1.
func (s *Snapshot) LinkIndex(key string) int {
	return slices.IndexFunc(s.Links, func(l Link) bool { return l.Key == key })
}

// PlacementIndex returns the index of the placement for key, or -1.
func (s *Snapshot) PlacementIndex(key string) int {
	return slices.IndexFunc(s.Positions, func(p Placement) bool { return p.Key == key })
}

// LinksEqual reports whether two link lists are structurally equal,
// including order.
func LinksEqual(a, b []Link) bool {
	return slices.EqualFunc(a, b, Link.Equal)
}

// PlacementsEqual reports whether two placement lists are structurally equal,
// including order.
func PlacementsEqual(a, b []Placement) bool {
	return slices.Equal(a, b)
}

// Clone returns a deep copy of s. Writes through the copy, including through
// label and position pointers, never reach s.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Entities:  make([]Entity, len(s.Entities)),
		Links:     make([]Link, len(s.Links)),
		Positions: slices.Clone(s.Positions),
	}
	if c.Positions == nil {
		c.Positions = []Placement{}
	}
	for i, e := range s.Entities {
		c.Entities[i] = e.Clone()
	}
	for i, l := range s.Links {
		c.Links[i] = l.Clone()
	}
	return c
}

// UniqueEntities drops every entity whose key was already seen, keeping the
// first occurrence. It returns the kept entities and the keys of the dropped
// ones, in order. entities is not modified.
func UniqueEntities(entities []Entity) (kept []Entity, dropped []string) {
	seen := make(map[string]struct{}, len(entities))
	kept = make([]Entity, 0, len(entities))
	for _, e := range entities {
		if _, dup := seen[e.Key]; dup {
			dropped = append(dropped, e.Key)
			continue
		}
		seen[e.Key] = struct{}{}
		kept = append(kept, e)
	}
	return kept, dropped
}
