// Package linker resolves local $ref pointers into direct graph
// edges, the precondition the AST builder asserts fatally. Only
// same-document references are supported; fetching remote documents
// is out of scope.
package linker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/speakeasy-api/openapi/sequencedmap"

	"github.com/skemagen/skemagen/schema"
)

type linker struct {
	root *schema.Schema
	file string
	errs *multierror.Error
}

// Link rewires every reference-shaped node reachable from root into a
// direct edge to its pointer target, mutating the graph in place.
// Every unresolvable pointer is reported, aggregated into one error.
// The returned root differs from the input only when the root itself
// is a reference.
func Link(root *schema.Schema, file string) (*schema.Schema, error) {
	l := &linker{root: root, file: file}
	linked := l.resolve(root)
	l.walk(linked, make(map[*schema.Schema]bool))
	if err := l.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return linked, nil
}

func (l *linker) walk(s *schema.Schema, seen map[*schema.Schema]bool) {
	if s == nil || seen[s] {
		return
	}
	seen[s] = true

	l.relinkMap(s.Properties, seen)
	l.relinkMap(s.PatternProperties, seen)
	l.relinkMap(s.Definitions, seen)
	if s.Items != nil {
		s.Items = l.resolve(s.Items)
		l.walk(s.Items, seen)
	}
	for i := range s.ItemsList {
		s.ItemsList[i] = l.resolve(s.ItemsList[i])
		l.walk(s.ItemsList[i], seen)
	}
	if s.AdditionalItems.IsSchema() {
		s.AdditionalItems.Schema = l.resolve(s.AdditionalItems.Schema)
		l.walk(s.AdditionalItems.Schema, seen)
	}
	if s.AdditionalProperties.IsSchema() {
		s.AdditionalProperties.Schema = l.resolve(s.AdditionalProperties.Schema)
		l.walk(s.AdditionalProperties.Schema, seen)
	}
	for _, group := range [][]*schema.Schema{s.AllOf, s.AnyOf, s.OneOf, s.Extends} {
		for i := range group {
			group[i] = l.resolve(group[i])
			l.walk(group[i], seen)
		}
	}
}

// relinkMap rewires each map value, then descends. Keys are snapshotted
// first so resolution never mutates the map mid-iteration.
func (l *linker) relinkMap(m *sequencedmap.Map[string, *schema.Schema], seen map[*schema.Schema]bool) {
	if m == nil {
		return
	}
	keys := make([]string, 0, m.Len())
	for k := range m.All() {
		keys = append(keys, k)
	}
	for _, k := range keys {
		child, _ := m.Get(k)
		m.Set(k, l.resolve(child))
	}
	for _, k := range keys {
		child, _ := m.Get(k)
		l.walk(child, seen)
	}
}

// resolve follows a reference chain to its final non-reference target.
// On failure the node is returned unchanged and the failure recorded.
func (l *linker) resolve(s *schema.Schema) *schema.Schema {
	if s == nil || s.Ref == "" {
		return s
	}
	seen := map[*schema.Schema]bool{}
	cur := s
	for cur.Ref != "" {
		if seen[cur] {
			l.fail(s, fmt.Sprintf("circular $ref chain through %q", s.Ref))
			return s
		}
		seen[cur] = true
		target, err := navigate(l.root, cur.Ref)
		if err != nil {
			l.fail(cur, err.Error())
			return s
		}
		cur = target
	}
	return cur
}

func (l *linker) fail(node *schema.Schema, detail string) {
	l.errs = multierror.Append(l.errs, &schema.Error{
		Code:   schema.CodeUnresolvedRef,
		File:   l.file,
		Node:   node,
		Detail: detail,
	})
}

// navigate evaluates a local JSON Pointer against the schema graph.
func navigate(root *schema.Schema, ref string) (*schema.Schema, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, fmt.Errorf("cannot resolve $ref %q: only same-document references are supported", ref)
	}
	pointer := strings.TrimPrefix(ref, "#")
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return root, nil
	}
	segs := strings.Split(pointer, "/")
	for i := range segs {
		segs[i] = strings.ReplaceAll(strings.ReplaceAll(segs[i], "~1", "/"), "~0", "~")
	}

	cur := root
	for i := 0; i < len(segs); i++ {
		if cur == nil {
			return nil, fmt.Errorf("cannot resolve $ref %q: path ends at a missing node", ref)
		}
		var err error
		switch segs[i] {
		case "definitions", "$defs":
			i++
			cur, err = mapStep(ref, cur.Definitions, segs, i)
		case "properties":
			i++
			cur, err = mapStep(ref, cur.Properties, segs, i)
		case "patternProperties":
			i++
			cur, err = mapStep(ref, cur.PatternProperties, segs, i)
		case "items":
			if cur.ItemsList != nil {
				i++
				cur, err = indexStep(ref, cur.ItemsList, segs, i)
			} else {
				cur = cur.Items
			}
		case "additionalProperties":
			if !cur.AdditionalProperties.IsSchema() {
				return nil, fmt.Errorf("cannot resolve $ref %q: additionalProperties is not a schema", ref)
			}
			cur = cur.AdditionalProperties.Schema
		case "additionalItems":
			if !cur.AdditionalItems.IsSchema() {
				return nil, fmt.Errorf("cannot resolve $ref %q: additionalItems is not a schema", ref)
			}
			cur = cur.AdditionalItems.Schema
		case "allOf":
			i++
			cur, err = indexStep(ref, cur.AllOf, segs, i)
		case "anyOf":
			i++
			cur, err = indexStep(ref, cur.AnyOf, segs, i)
		case "oneOf":
			i++
			cur, err = indexStep(ref, cur.OneOf, segs, i)
		case "extends":
			i++
			cur, err = indexStep(ref, cur.Extends, segs, i)
		default:
			return nil, fmt.Errorf("cannot resolve $ref %q: unsupported segment %q", ref, segs[i])
		}
		if err != nil {
			return nil, err
		}
	}
	if cur == nil {
		return nil, fmt.Errorf("cannot resolve $ref %q: no schema at target", ref)
	}
	return cur, nil
}

func mapStep(ref string, m *sequencedmap.Map[string, *schema.Schema], segs []string, i int) (*schema.Schema, error) {
	if i >= len(segs) {
		return nil, fmt.Errorf("cannot resolve $ref %q: missing key segment", ref)
	}
	if m == nil {
		return nil, fmt.Errorf("cannot resolve $ref %q: no such member %q", ref, segs[i])
	}
	child, ok := m.Get(segs[i])
	if !ok {
		return nil, fmt.Errorf("cannot resolve $ref %q: no such member %q", ref, segs[i])
	}
	return child, nil
}

func indexStep(ref string, list []*schema.Schema, segs []string, i int) (*schema.Schema, error) {
	if i >= len(segs) {
		return nil, fmt.Errorf("cannot resolve $ref %q: missing index segment", ref)
	}
	idx, err := strconv.Atoi(segs[i])
	if err != nil || idx < 0 || idx >= len(list) {
		return nil, fmt.Errorf("cannot resolve $ref %q: index %q out of range", ref, segs[i])
	}
	return list[idx], nil
}
