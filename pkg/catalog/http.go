package catalog

import (
	"context"
	"net/url"
	"strconv"

	"github.com/matzehuels/entitydiagram/pkg/errors"
)

// Defaults for [HTTPSource].
const (
	DefaultSchemaContainer = "mc-custom-object-schema"
	DefaultPageLimit       = 200
)

// HTTPSource reads catalogs from the platform API.
// Only the first page of each catalog is read.
type HTTPSource struct {
	client          *Client
	schemaContainer string
	limit           int
	refresh         bool
}

// HTTPOption configures an [HTTPSource].
type HTTPOption func(*HTTPSource)

// WithSchemaContainer overrides the custom-object container holding schemas.
func WithSchemaContainer(name string) HTTPOption {
	return func(s *HTTPSource) { s.schemaContainer = name }
}

// WithPageLimit overrides the page size.
func WithPageLimit(n int) HTTPOption {
	return func(s *HTTPSource) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithRefresh bypasses cached responses.
func WithRefresh(refresh bool) HTTPOption {
	return func(s *HTTPSource) { s.refresh = refresh }
}

// NewHTTPSource creates a source backed by client.
func NewHTTPSource(client *Client, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{client: client, schemaContainer: DefaultSchemaContainer, limit: DefaultPageLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schemas fetches custom-object schema records.
func (s *HTTPSource) Schemas(ctx context.Context) ([]SchemaRecord, error) {
	var page PagedQueryResponse[SchemaRecord]
	if err := s.get(ctx, "custom-objects/"+url.PathEscape(s.schemaContainer), &page); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch schemas")
	}
	return page.Results, nil
}

// ProductTypes fetches product types.
func (s *HTTPSource) ProductTypes(ctx context.Context) ([]ProductType, error) {
	var page PagedQueryResponse[ProductType]
	if err := s.get(ctx, "product-types", &page); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch product types")
	}
	return page.Results, nil
}

// Types fetches field-definition types.
func (s *HTTPSource) Types(ctx context.Context) ([]FieldType, error) {
	var page PagedQueryResponse[FieldType]
	if err := s.get(ctx, "types", &page); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch types")
	}
	return page.Results, nil
}

func (s *HTTPSource) get(ctx context.Context, path string, v any) error {
	q := url.Values{"limit": {strconv.Itoa(s.limit)}}
	return s.client.Get(ctx, path, q, s.refresh, v)
}

var _ Source = (*HTTPSource)(nil)
