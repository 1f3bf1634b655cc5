package overlay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/errors"
)

// Overlay reads and writes the link list and position overlay of one diagram.
type Overlay struct {
	store     Store
	container string
}

// New creates an Overlay over store. An empty container selects
// [DefaultContainer].
func New(store Store, container string) *Overlay {
	if container == "" {
		container = DefaultContainer
	}
	return &Overlay{store: store, container: container}
}

// Container returns the container the overlay records live in.
func (o *Overlay) Container() string { return o.container }

// LoadLinks returns the stored link list, or an empty list if none is stored.
func (o *Overlay) LoadLinks(ctx context.Context) ([]diagram.Link, error) {
	links := []diagram.Link{}
	if err := o.load(ctx, LinksKey, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// LoadPositions returns the stored position overlay, or an empty list.
func (o *Overlay) LoadPositions(ctx context.Context) ([]diagram.Placement, error) {
	positions := []diagram.Placement{}
	if err := o.load(ctx, PositionsKey, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// SaveLinks replaces the stored link list.
func (o *Overlay) SaveLinks(ctx context.Context, links []diagram.Link) error {
	if links == nil {
		links = []diagram.Link{}
	}
	return o.save(ctx, LinksKey, links)
}

// SavePositions replaces the stored position overlay.
func (o *Overlay) SavePositions(ctx context.Context, positions []diagram.Placement) error {
	if positions == nil {
		positions = []diagram.Placement{}
	}
	return o.save(ctx, PositionsKey, positions)
}

func (o *Overlay) load(ctx context.Context, key string, v any) error {
	rec, err := o.store.Get(ctx, o.container, key)
	if err != nil {
		return err
	}
	if rec == nil || len(rec.Value) == 0 || string(rec.Value) == "null" {
		return nil
	}
	if err := json.Unmarshal(rec.Value, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s/%s", o.container, key)
	}
	return nil
}

func (o *Overlay) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s/%s", o.container, key)
	}
	return o.store.Put(ctx, Record{
		Container:    o.container,
		Key:          key,
		Value:        data,
		LastModified: time.Now().UTC(),
	})
}
