package schema

import "strconv"

// Visitor receives each node exactly once per walk, together with the
// key the node was reached under: a property or definition name where
// one exists, otherwise the structural keyword.
type Visitor func(node *Schema, key string)

// Walk visits root and, recursively, every structural child reachable
// through property values, items, additionalItems/additionalProperties
// when schema-valued, allOf/anyOf/oneOf members, extends, and
// definition-map values. An identity-based visited set makes revisits
// of shared or cyclic nodes a no-op, so the walk always terminates.
// Each call performs one full walk from scratch.
func Walk(root *Schema, visit Visitor) {
	walk(root, "", visit, make(map[*Schema]bool))
}

func walk(s *Schema, key string, visit Visitor, seen map[*Schema]bool) {
	if s == nil || seen[s] {
		return
	}
	seen[s] = true
	visit(s, key)

	if s.Properties != nil {
		for k, child := range s.Properties.All() {
			walk(child, k, visit, seen)
		}
	}
	if s.PatternProperties != nil {
		for k, child := range s.PatternProperties.All() {
			walk(child, k, visit, seen)
		}
	}
	walk(s.Items, "items", visit, seen)
	for i, child := range s.ItemsList {
		walk(child, "items/"+strconv.Itoa(i), visit, seen)
	}
	if s.AdditionalItems.IsSchema() {
		walk(s.AdditionalItems.Schema, "additionalItems", visit, seen)
	}
	if s.AdditionalProperties.IsSchema() {
		walk(s.AdditionalProperties.Schema, "additionalProperties", visit, seen)
	}
	for _, child := range s.AllOf {
		walk(child, "allOf", visit, seen)
	}
	for _, child := range s.AnyOf {
		walk(child, "anyOf", visit, seen)
	}
	for _, child := range s.OneOf {
		walk(child, "oneOf", visit, seen)
	}
	for _, child := range s.Extends {
		walk(child, "extends", visit, seen)
	}
	if s.Definitions != nil {
		for k, child := range s.Definitions.All() {
			walk(child, k, visit, seen)
		}
	}
}
