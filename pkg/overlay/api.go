package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/matzehuels/entitydiagram/pkg/cache"
	"github.com/matzehuels/entitydiagram/pkg/catalog"
)

// APIStore stores records as custom objects through the platform API, the
// same place the catalogs are read from.
type APIStore struct {
	client *catalog.Client
}

// NewAPIStore creates a store that reads and writes custom objects of the
// client's project.
func NewAPIStore(client *catalog.Client) *APIStore {
	return &APIStore{client: client}
}

type customObject struct {
	Container      string          `json:"container"`
	Key            string          `json:"key"`
	Value          json.RawMessage `json:"value"`
	LastModifiedAt time.Time       `json:"lastModifiedAt,omitzero"`
}

func (s *APIStore) Get(ctx context.Context, container, key string) (*Record, error) {
	q := url.Values{
		"limit": {"1"},
		"where": {fmt.Sprintf("key = %q", key)},
	}
	var page catalog.PagedQueryResponse[customObject]
	err := s.client.Get(ctx, "custom-objects/"+url.PathEscape(container), q, true, &page)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get", Record{Container: container, Key: key}, err)
	}
	if len(page.Results) == 0 {
		return nil, nil
	}
	obj := page.Results[0]
	return &Record{
		Container:    obj.Container,
		Key:          obj.Key,
		Value:        obj.Value,
		LastModified: obj.LastModifiedAt,
	}, nil
}

func (s *APIStore) Put(ctx context.Context, rec Record) error {
	payload := customObject{Container: rec.Container, Key: rec.Key, Value: rec.Value}
	if err := s.client.Post(ctx, "custom-objects", payload, nil); err != nil {
		return storeErr("put", rec, err)
	}
	return nil
}

func (s *APIStore) Close() error { return nil }

var _ Store = (*APIStore)(nil)
