package catalog

import (
	"slices"

	"github.com/matzehuels/entitydiagram/pkg/diagram"
)

// Attribute colors per catalog.
const (
	ColorSchema      = "green"
	ColorProductType = "blue"
	ColorFieldType   = "red"
	ColorInherited   = "black"
)

// productInherited is the attribute set every product type shares. Each
// entity receives its own copy.
var productInherited = []diagram.Attribute{
	{Name: "id", IsKey: true, Color: ColorInherited},
	{Name: "name", Color: ColorInherited},
	{Name: "description", Color: ColorInherited},
}

// IsKeyAttribute reports whether an attribute name marks the record key.
// Only "id" qualifies; catalogs carry no explicit key flag.
func IsKeyAttribute(name string) bool { return name == "id" }

// Adapt converts catalog records into entities and joins each with its
// placement, if any.
//
// Entities are emitted as all schemas, then all product types, then all field
// types, each in source order. A product type resolves to its name, which can
// collide with another record's key; only the first entity with a given key
// is kept (see [DuplicateKeys]). Placements with malformed coordinates yield
// (0,0); placements for unknown keys are ignored.
func Adapt(c Catalogs, positions []diagram.Placement) []diagram.Entity {
	locs := make(map[string]diagram.Point, len(positions))
	for _, p := range positions {
		locs[p.Key] = p.Point()
	}

	out := make([]diagram.Entity, 0, c.Len())
	seen := make(map[string]struct{}, c.Len())
	add := func(e diagram.Entity) {
		if _, dup := seen[e.Key]; dup {
			return
		}
		seen[e.Key] = struct{}{}
		if p, ok := locs[e.Key]; ok {
			e = e.WithPosition(p)
		}
		out = append(out, e)
	}

	for _, s := range c.Schemas {
		attrs := make([]diagram.Attribute, len(s.Value.Attributes))
		for i, a := range s.Value.Attributes {
			attrs[i] = attribute(a.Name, ColorSchema)
		}
		add(diagram.Entity{Key: s.Key, Source: diagram.KindSchema, Attributes: attrs})
	}
	for _, pt := range c.ProductTypes {
		attrs := make([]diagram.Attribute, len(pt.Attributes))
		for i, a := range pt.Attributes {
			attrs[i] = attribute(a.Name, ColorProductType)
		}
		add(diagram.Entity{
			Key:                 pt.EntityKey(),
			Source:              diagram.KindProductType,
			Attributes:          attrs,
			InheritedAttributes: slices.Clone(productInherited),
		})
	}
	for _, ft := range c.Types {
		attrs := make([]diagram.Attribute, len(ft.FieldDefinitions))
		for i, f := range ft.FieldDefinitions {
			attrs[i] = attribute(f.Name, ColorFieldType)
		}
		add(diagram.Entity{Key: ft.Key, Source: diagram.KindFieldType, Attributes: attrs})
	}
	return out
}

// DuplicateKeys returns the entity keys Adapt would drop because an earlier
// record already resolved to them, in source order.
func DuplicateKeys(c Catalogs) []string {
	keys := make([]string, 0, c.Len())
	for _, s := range c.Schemas {
		keys = append(keys, s.Key)
	}
	for _, pt := range c.ProductTypes {
		keys = append(keys, pt.EntityKey())
	}
	for _, ft := range c.Types {
		keys = append(keys, ft.Key)
	}
	seen := make(map[string]struct{}, len(keys))
	var dups []string
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			dups = append(dups, k)
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// EntityKey returns the diagram key of a product type: its name, or its key
// when the name is empty.
func (p ProductType) EntityKey() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Key
}

func attribute(name, color string) diagram.Attribute {
	return diagram.Attribute{Name: name, IsKey: IsKeyAttribute(name), Color: color}
}
