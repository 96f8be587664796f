package schema

import "github.com/speakeasy-api/openapi/sequencedmap"

// DefinitionsCache memoizes definition collection per root node. Roots
// are stable identities for a given input document, so a cache may
// outlive a single build.
type DefinitionsCache struct {
	byRoot map[*Schema]*sequencedmap.Map[string, *Schema]
}

func NewDefinitionsCache() *DefinitionsCache {
	return &DefinitionsCache{byRoot: make(map[*Schema]*sequencedmap.Map[string, *Schema])}
}

// Definitions gathers every definition-map entry found at any node
// reachable from root, in walk order. First declaration of a key wins.
// Repeated queries against the same root reuse the cached result.
func (c *DefinitionsCache) Definitions(root *Schema) *sequencedmap.Map[string, *Schema] {
	if m, ok := c.byRoot[root]; ok {
		return m
	}
	out := sequencedmap.New[string, *Schema]()
	Walk(root, func(n *Schema, _ string) {
		if n.Definitions == nil {
			return
		}
		for k, v := range n.Definitions.All() {
			if _, exists := out.Get(k); !exists {
				out.Set(k, v)
			}
		}
	})
	c.byRoot[root] = out
	return out
}

// KeyFor returns the definitions key node was declared under, matching
// by identity.
func KeyFor(defs *sequencedmap.Map[string, *Schema], node *Schema) (string, bool) {
	if defs == nil {
		return "", false
	}
	for k, v := range defs.All() {
		if v == node {
			return k, true
		}
	}
	return "", false
}
