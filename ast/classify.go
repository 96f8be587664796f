package ast

import "github.com/skemagen/skemagen/schema"

// Tag is a structural category yielded by Classify. A node yields more
// than one tag only when it declares several primitive type names; the
// builder composes those into a single union node.
type Tag int

const (
	TagRef Tag = iota // unresolved reference; fatal at build time
	TagCustom
	TagNamedEnum
	TagUnnamedEnum
	TagAllOf
	TagAnyOf
	TagOneOf
	TagTypedArray
	TagUntypedArray
	TagRecord
	TagString
	TagNumber
	TagBoolean
	TagNull
	TagObject
	TagAny

	// tagComposite keys the cache entry for multi-typed primitive
	// schemas; it is never returned by Classify.
	tagComposite Tag = -1
)

// Classify inspects a normalized node's shape and yields its category
// tags. Boolean schema forms are handled by the builder before
// classification.
func Classify(s *schema.Schema) []Tag {
	switch {
	case s.Ref != "":
		return []Tag{TagRef}
	case s.GoType != "":
		return []Tag{TagCustom}
	case s.Enum != nil && len(s.GoEnumNames) > 0:
		return []Tag{TagNamedEnum}
	case s.Enum != nil:
		return []Tag{TagUnnamedEnum}
	case len(s.AllOf) > 0:
		return []Tag{TagAllOf}
	case len(s.AnyOf) > 0:
		return []Tag{TagAnyOf}
	case len(s.OneOf) > 0:
		return []Tag{TagOneOf}
	case s.Items != nil || s.ItemsList != nil:
		return []Tag{TagTypedArray}
	case isRecord(s):
		return []Tag{TagRecord}
	}
	if len(s.Type) > 0 {
		tags := make([]Tag, 0, len(s.Type))
		for _, t := range s.Type {
			tags = append(tags, tagForType(t))
		}
		return tags
	}
	return []Tag{TagAny}
}

// isRecord reports whether the node declares structural members of its
// own, as opposed to being a bare object-typed map.
func isRecord(s *schema.Schema) bool {
	if s.Properties != nil || s.PatternProperties != nil {
		return true
	}
	if s.AdditionalProperties.IsSchema() {
		return true
	}
	return len(s.Extends) > 0
}

func tagForType(t string) Tag {
	switch t {
	case schema.TypeString:
		return TagString
	case schema.TypeNumber, schema.TypeInteger:
		return TagNumber
	case schema.TypeBoolean:
		return TagBoolean
	case schema.TypeNull:
		return TagNull
	case schema.TypeObject:
		return TagObject
	case schema.TypeArray:
		return TagUntypedArray
	default:
		// "any" and unrecognized names are wildcards.
		return TagAny
	}
}
