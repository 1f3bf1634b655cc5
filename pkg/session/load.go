package session

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/entitydiagram/pkg/catalog"
	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/overlay"
)

// Load builds the initial snapshot.
//
// The position overlay is read first. The three catalogs and the link list
// are then fetched concurrently and the catalogs adapted into entities
// joined with the positions. Any failure aborts the load.
func Load(ctx context.Context, src catalog.Source, ov *overlay.Overlay) (*diagram.Snapshot, error) {
	positions, err := ov.LoadPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}

	var (
		cats  catalog.Catalogs
		links []diagram.Link
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = catalog.Fetch(gctx, src)
		if err != nil {
			return fmt.Errorf("load catalogs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		links, err = ov.LoadLinks(gctx)
		if err != nil {
			return fmt.Errorf("load links: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &diagram.Snapshot{
		Entities:  catalog.Adapt(cats, positions),
		Links:     links,
		Positions: positions,
	}, nil
}

// joinPositions returns entities with positions taken from placements.
// Entities without a placement keep whatever position they carry.
func joinPositions(entities []diagram.Entity, placements []diagram.Placement) []diagram.Entity {
	if len(placements) == 0 {
		return entities
	}
	locs := make(map[string]diagram.Point, len(placements))
	for _, p := range placements {
		locs[p.Key] = p.Point()
	}
	out := make([]diagram.Entity, len(entities))
	for i, e := range entities {
		if p, ok := locs[e.Key]; ok {
			e = e.WithPosition(p)
		}
		out[i] = e
	}
	return out
}
