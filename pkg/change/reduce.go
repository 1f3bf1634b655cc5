package change

import (
	"fmt"
	"slices"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
)

// Reduce applies e to s and returns the resulting snapshot.
//
// s is never modified. If the event has no effect, s itself is returned;
// otherwise the result is built on a deep copy of s and shares no memory
// with it.
// A nil snapshot is treated as empty.
func Reduce(s *diagram.Snapshot, e Event) *diagram.Snapshot {
	if s == nil {
		s = diagram.Empty()
	}
	switch e := e.(type) {
	case NodePositionChanged:
		return reducePosition(s, e)
	case LinkAdded:
		return reduceLinkAdded(s, e)
	case LinkModified:
		return reduceLinkModified(s, e)
	case LinkRemoved:
		return reduceLinkRemoved(s, e)
	case LinkTextChanged:
		return reduceLinkText(s, e)
	default:
		// Unreachable: Event cannot be implemented outside this package.
		panic(fmt.Sprintf("change: unhandled event %T", e))
	}
}

// ReduceAll applies events in order.
func ReduceAll(s *diagram.Snapshot, events ...Event) *diagram.Snapshot {
	for _, e := range events {
		s = Reduce(s, e)
	}
	return s
}

func reducePosition(s *diagram.Snapshot, e NodePositionChanged) *diagram.Snapshot {
	i := s.PlacementIndex(e.Key)
	j := s.EntityIndex(e.Key)
	p := diagram.ParseLoc(e.Loc)

	placed := i >= 0 && s.Positions[i].Loc == e.Loc
	// The overlay entry is recorded even when the entity is absent.
	moved := j < 0 || (s.Entities[j].Position != nil && *s.Entities[j].Position == p)
	if placed && moved {
		return s
	}

	next := s.Clone()
	if i < 0 {
		next.Positions = append(next.Positions, diagram.Placement{Key: e.Key, Loc: e.Loc})
	} else {
		next.Positions[i].Loc = e.Loc
	}
	if j >= 0 {
		next.Entities[j] = next.Entities[j].WithPosition(p)
	}
	return next
}

func reduceLinkAdded(s *diagram.Snapshot, e LinkAdded) *diagram.Snapshot {
	if s.LinkIndex(e.Key) >= 0 {
		return s
	}
	next := s.Clone()
	next.Links = append(next.Links, diagram.Link{
		Key:    e.Key,
		From:   e.From,
		To:     e.To,
		Text:   cloneLabel(e.Text),
		ToText: cloneLabel(e.ToText),
	})
	return next
}

func reduceLinkModified(s *diagram.Snapshot, e LinkModified) *diagram.Snapshot {
	i := s.LinkIndex(e.Key)
	if i < 0 {
		return s
	}
	updated := diagram.Link{
		Key:    e.Key,
		From:   e.NewFrom,
		To:     e.NewTo,
		Text:   cloneLabel(e.Text),
		ToText: cloneLabel(e.ToText),
	}
	return withLink(s, i, updated)
}

func reduceLinkRemoved(s *diagram.Snapshot, e LinkRemoved) *diagram.Snapshot {
	i := s.LinkIndex(e.Key)
	if i < 0 {
		return s
	}
	next := s.Clone()
	next.Links = slices.Delete(next.Links, i, i+1)
	return next
}

func reduceLinkText(s *diagram.Snapshot, e LinkTextChanged) *diagram.Snapshot {
	i := s.LinkIndex(e.Key)
	if i < 0 {
		return s
	}
	updated := s.Links[i].Clone()
	if e.IsFromText {
		updated.Text = diagram.Label(e.NewText)
	} else {
		updated.ToText = diagram.Label(e.NewText)
	}
	return withLink(s, i, updated)
}

// withLink returns a snapshot with link i replaced, or s if nothing changed.
func withLink(s *diagram.Snapshot, i int, l diagram.Link) *diagram.Snapshot {
	if s.Links[i].Equal(l) {
		return s
	}
	next := s.Clone()
	next.Links[i] = l
	return next
}

func cloneLabel(s *string) *string {
	if s == nil {
		return nil
	}
	return diagram.Label(*s)
}
