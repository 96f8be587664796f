package schema

import "github.com/speakeasy-api/openapi/sequencedmap"

// Type names that may appear in the "type" keyword.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
	TypeNull    = "null"
	TypeAny     = "any"
)

// Schema is one node of a linked JSON Schema graph. The struct is
// closed: there is one explicit field per keyword this module consults,
// populated once at ingest. Nodes are compared by pointer identity; the
// same *Schema may be reached through several paths (shared sub-schema,
// self-reference), and caching layers rely on that.
type Schema struct {
	// BoolValue marks the boolean schema forms `true` and `false`.
	// When set, every other field is zero.
	BoolValue *bool

	// Ref carries an unresolved `$ref` pointer text. The linker rewrites
	// reference nodes into direct edges; a non-empty Ref reaching type
	// construction is a fatal input error.
	Ref string

	ID          string // $id
	LegacyID    string // id (draft-04 and earlier)
	Title       string
	Description string
	Deprecated  bool

	// Type holds the declared "type" keyword: absent, one name, or a
	// set of names. TypeDeclaredAsList records whether the source
	// document spelled a single name as a one-element array; the
	// normalizer collapses that to the bare scalar form.
	Type               []string
	TypeDeclaredAsList bool

	// Enum values in declaration order. EnumKeyed marks the legacy
	// object-shaped spelling, whose values are taken in key order.
	Enum      []any
	EnumKeyed bool

	// Const value; HasConst distinguishes a declared null from absence.
	// The normalizer folds const into a singleton Enum.
	Const    any
	HasConst bool

	Properties        *sequencedmap.Map[string, *Schema]
	PatternProperties *sequencedmap.Map[string, *Schema]

	// Definitions merges the "definitions" and "$defs" keywords in
	// encounter order. Entries feed naming and reachability only.
	Definitions *sequencedmap.Map[string, *Schema]

	// Required property names. RequiredIsFalse records the legacy
	// boolean-false spelling, which normalizes to the empty set.
	Required        []string
	RequiredIsFalse bool

	AdditionalProperties *SchemaOrBool
	AdditionalItems      *SchemaOrBool

	// Items holds the single-schema form, ItemsList the positional
	// form. At most one is set.
	Items     *Schema
	ItemsList []*Schema

	MinItems *int
	MaxItems *int

	AllOf []*Schema
	AnyOf []*Schema
	OneOf []*Schema

	// Extends targets. ExtendsDeclaredSingle records a single-schema
	// spelling; the normalizer flattens it to the array form.
	Extends               []*Schema
	ExtendsDeclaredSingle bool

	// GoType overrides the generated type verbatim.
	GoType string
	// GoEnumNames pairs display identifiers with Enum values by index.
	GoEnumNames []string
}

// SchemaOrBool models keywords accepting either a schema or a boolean
// (additionalProperties, additionalItems). Bool is meaningful only when
// Schema is nil.
type SchemaOrBool struct {
	Schema *Schema
	Bool   bool
}

// IsSchema reports whether the keyword carried a schema value.
func (sb *SchemaOrBool) IsSchema() bool { return sb != nil && sb.Schema != nil }

// HasType reports whether t is in the declared type set.
func (s *Schema) HasType(t string) bool {
	for _, v := range s.Type {
		if v == t {
			return true
		}
	}
	return false
}

// IsObjectLike reports whether the node declares an object shape: it
// carries properties, or declares type object or any.
func (s *Schema) IsObjectLike() bool {
	if s == nil || s.BoolValue != nil {
		return false
	}
	if s.Properties != nil {
		return true
	}
	return s.HasType(TypeObject) || s.HasType(TypeAny)
}

// IsArrayLike reports whether the node declares an array shape.
func (s *Schema) IsArrayLike() bool {
	if s == nil || s.BoolValue != nil {
		return false
	}
	return s.HasType(TypeArray) || s.Items != nil || s.ItemsList != nil
}

// CloneForType returns a copy of s narrowed to the single declared type
// t. Naming and documentation hints are stripped from the copy: the
// composite node built for the original hoists them, and carrying them
// twice would duplicate generated documentation. The clone is a fresh
// node identity and shares structural children with s.
func (s *Schema) CloneForType(t string) *Schema {
	c := *s
	c.Type = []string{t}
	c.TypeDeclaredAsList = false
	c.Title = ""
	c.ID = ""
	c.LegacyID = ""
	c.Description = ""
	return &c
}

// BoolSchema returns the boolean schema form for v.
func BoolSchema(v bool) *Schema {
	return &Schema{BoolValue: &v}
}

// Int is a convenience for the *int bound fields.
func Int(v int) *int { return &v }
