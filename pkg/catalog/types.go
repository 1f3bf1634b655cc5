package catalog

import "encoding/json"

// PagedQueryResponse is one page of a catalog query.
type PagedQueryResponse[T any] struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	Total   *int `json:"total,omitempty"`
	Results []T  `json:"results"`
}

// Catalogs holds the records of all three catalogs.
type Catalogs struct {
	Schemas      []SchemaRecord
	ProductTypes []ProductType
	Types        []FieldType
}

// Len returns the total number of records.
func (c Catalogs) Len() int {
	return len(c.Schemas) + len(c.ProductTypes) + len(c.Types)
}

// =============================================================================
// Custom-object schemas
// =============================================================================

// SchemaRecord is a custom object holding a freeform schema definition.
type SchemaRecord struct {
	ID    string      `json:"id,omitempty"`
	Key   string      `json:"key"`
	Value SchemaValue `json:"value"`
}

// SchemaValue is the payload of a schema record.
type SchemaValue struct {
	Attributes []SchemaAttribute `json:"attributes"`
}

// SchemaAttribute is one attribute of a custom-object schema.
type SchemaAttribute struct {
	Name      string       `json:"name"`
	Type      string       `json:"type,omitempty"`
	Required  bool         `json:"required,omitempty"`
	Set       bool         `json:"set,omitempty"`
	Reference *Reference   `json:"reference,omitempty"`
	Enum      []EnumOption `json:"enum,omitempty"`
}

// Reference describes a reference-typed schema attribute.
type Reference struct {
	By   string `json:"by"`
	Type string `json:"type"`
}

// EnumOption is one allowed value of an enum schema attribute.
type EnumOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// =============================================================================
// Product types and field types
// =============================================================================

// ProductType is a product-type definition.
type ProductType struct {
	ID         string                 `json:"id,omitempty"`
	Name       string                 `json:"name,omitempty"`
	Key        string                 `json:"key,omitempty"`
	Attributes []ProductTypeAttribute `json:"attributes"`
}

// ProductTypeAttribute is one attribute definition of a product type.
type ProductTypeAttribute struct {
	Name       string            `json:"name"`
	Label      map[string]string `json:"label,omitempty"`
	IsRequired bool              `json:"isRequired,omitempty"`
	Type       AttributeType     `json:"type"`
}

// FieldType is a type with field definitions that extends platform resources.
type FieldType struct {
	ID               string            `json:"id,omitempty"`
	Name             json.RawMessage   `json:"name,omitempty"`
	Key              string            `json:"key"`
	FieldDefinitions []FieldDefinition `json:"fieldDefinitions"`
	ResourceTypeIDs  []string          `json:"resourceTypeIds,omitempty"`
}

// FieldDefinition is one field of a [FieldType].
type FieldDefinition struct {
	Name     string            `json:"name"`
	Label    map[string]string `json:"label,omitempty"`
	Required bool              `json:"required,omitempty"`
	Type     AttributeType     `json:"type"`
}

// AttributeType describes the type of a product-type attribute or field.
type AttributeType struct {
	Name            string         `json:"name"`
	Values          []EnumValue    `json:"values,omitempty"`
	ReferenceTypeID string         `json:"referenceTypeId,omitempty"`
	ElementType     *AttributeType `json:"elementType,omitempty"`
}

// EnumValue is an enum value. Label is either a string or a localized map.
type EnumValue struct {
	Key   string          `json:"key"`
	Label json.RawMessage `json:"label,omitempty"`
}
