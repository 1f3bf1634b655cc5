package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Source fetches the raw catalog records.
type Source interface {
	Schemas(ctx context.Context) ([]SchemaRecord, error)
	ProductTypes(ctx context.Context) ([]ProductType, error)
	Types(ctx context.Context) ([]FieldType, error)
}

// Fetch retrieves all three catalogs concurrently.
// The first error cancels the remaining requests.
func Fetch(ctx context.Context, src Source) (Catalogs, error) {
	var c Catalogs
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Schemas, err = src.Schemas(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.ProductTypes, err = src.ProductTypes(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.Types, err = src.Types(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Catalogs{}, err
	}
	return c, nil
}
