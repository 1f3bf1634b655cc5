// Package catalog reads the external schema catalogs and adapts them into
// diagram entities.
//
// Three catalogs feed the diagram:
//
//   - custom-object schemas ([SchemaRecord]), keyed by record key
//   - product types ([ProductType]), keyed by name, falling back to key
//   - field-definition types ([FieldType]), keyed by key
//
// A [Source] fetches the raw records. [HTTPSource] talks to the platform API;
// [FileSource] reads fixture files from a directory and can watch it for
// changes. [Adapt] converts the records into [diagram.Entity] values and
// joins them with the position overlay.
//
// # Usage
//
//	src := catalog.NewHTTPSource(client)
//	cats, err := catalog.Fetch(ctx, src)
//	if err != nil {
//	    return err
//	}
//	entities := catalog.Adapt(cats, placements)
package catalog
