package ast

import (
	"fmt"

	"github.com/skemagen/skemagen/schema"
)

// tagNever keys cache entries for `false` boolean schemas; like
// tagComposite it never leaves the classifier.
const tagNever Tag = -2

// Builder constructs the AST for one normalized schema graph. All of
// its state lives for a single build: the cache guarantees at most one
// Node per (schema node, category) pair, and the namer's used-name set
// only grows.
type Builder struct {
	root  *schema.Schema
	file  string
	cache map[buildKey]*Node
	namer *Namer
	defs  *schema.DefinitionsCache
}

type buildKey struct {
	node *schema.Schema
	tag  Tag
}

// NewBuilder prepares a build over the given linked, normalized root.
// file names the originating document in fatal errors.
func NewBuilder(root *schema.Schema, file string) *Builder {
	return &Builder{
		root:  root,
		file:  file,
		cache: make(map[buildKey]*Node),
		namer: NewNamer(),
		defs:  schema.NewDefinitionsCache(),
	}
}

// Build constructs the full AST. By the time it returns, every
// placeholder inserted for a cyclic or shared reference has been
// filled in place.
func (b *Builder) Build() (*Node, error) {
	return b.build(b.root, "")
}

func (b *Builder) build(s *schema.Schema, keyName string) (*Node, error) {
	if s.BoolValue != nil {
		if *s.BoolValue {
			node, done := b.fromCache(s, TagAny)
			if !done {
				node.Kind = KindAny
				node.KeyName = keyName
			}
			return node, nil
		}
		node, done := b.fromCache(s, tagNever)
		if !done {
			node.Kind = KindNever
			node.KeyName = keyName
		}
		return node, nil
	}

	tags := Classify(s)
	if len(tags) == 1 {
		return b.buildAs(s, tags[0], keyName)
	}
	return b.buildComposite(s, keyName)
}

// buildComposite handles schemas declaring several primitive type
// names: a union whose children are built from single-type copies.
// The composite hoists description/title/$id; the copies carry none of
// them, so documentation is not duplicated per branch.
func (b *Builder) buildComposite(s *schema.Schema, keyName string) (*Node, error) {
	node, done := b.fromCache(s, tagComposite)
	if done {
		return node, nil
	}
	node.Kind = KindUnion
	node.KeyName = keyName
	node.Comment = s.Description
	node.Deprecated = s.Deprecated
	node.StandaloneName = b.nameFor(s)
	for _, t := range s.Type {
		child, err := b.build(s.CloneForType(t), "")
		if err != nil {
			return nil, err
		}
		node.Params = append(node.Params, child)
	}
	return node, nil
}

func (b *Builder) buildAs(s *schema.Schema, tag Tag, keyName string) (*Node, error) {
	if tag == TagRef {
		return nil, &schema.Error{
			Code:   schema.CodeUnresolvedRef,
			File:   b.file,
			Node:   s,
			Detail: fmt.Sprintf("unresolved $ref %q reached type construction; references must be linked into direct edges first", s.Ref),
		}
	}

	node, done := b.fromCache(s, tag)
	if done {
		return node, nil
	}
	node.KeyName = keyName
	node.Comment = s.Description
	node.Deprecated = s.Deprecated
	node.StandaloneName = b.nameFor(s)

	var err error
	switch tag {
	case TagCustom:
		node.Kind = KindCustom
		node.Custom = s.GoType
	case TagNamedEnum:
		err = b.fillNamedEnum(node, s)
	case TagUnnamedEnum:
		b.fillUnnamedEnum(node, s)
	case TagAllOf:
		node.Kind = KindIntersection
		node.Params, err = b.buildEach(s.AllOf)
	case TagAnyOf:
		node.Kind = KindUnion
		node.Params, err = b.buildEach(s.AnyOf)
	case TagOneOf:
		node.Kind = KindUnion
		node.Params, err = b.buildEach(s.OneOf)
	case TagTypedArray:
		err = b.fillTypedArray(node, s)
	case TagUntypedArray:
		b.fillUntypedArray(node, s)
	case TagRecord:
		err = b.fillRecord(node, s)
	case TagString:
		node.Kind = KindString
	case TagNumber:
		node.Kind = KindNumber
	case TagBoolean:
		node.Kind = KindBoolean
	case TagNull:
		node.Kind = KindNull
	case TagObject:
		node.Kind = KindObject
	case TagAny:
		node.Kind = KindAny
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

// fromCache returns the node for (s, tag), inserting an empty
// placeholder on first request. done reports a cache hit — possibly a
// placeholder still being filled further up the recursion, which is
// exactly what lets self-referential and diamond-shaped graphs
// terminate and share structure.
func (b *Builder) fromCache(s *schema.Schema, tag Tag) (node *Node, done bool) {
	k := buildKey{node: s, tag: tag}
	if n, ok := b.cache[k]; ok {
		return n, true
	}
	n := &Node{}
	b.cache[k] = n
	return n, false
}

// nameFor picks a standalone declaration name: declared title, then
// $id, then the key the node was declared under in a reachable
// definitions map. Without a candidate the node stays anonymous.
func (b *Builder) nameFor(s *schema.Schema) string {
	candidate := s.Title
	if candidate == "" {
		candidate = idName(s.ID)
	}
	if candidate == "" {
		if key, ok := schema.KeyFor(b.defs.Definitions(b.root), s); ok {
			candidate = key
		}
	}
	if candidate == "" {
		return ""
	}
	return b.namer.Allocate(candidate)
}

func (b *Builder) buildEach(children []*schema.Schema) ([]*Node, error) {
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		n, err := b.build(c, "")
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (b *Builder) fillNamedEnum(node *Node, s *schema.Schema) error {
	if s.EnumKeyed {
		return &schema.Error{
			Code:   schema.CodeMalformedEnum,
			File:   b.file,
			Node:   s,
			Detail: "enum with display names must be an ordered sequence, not a keyed map",
		}
	}
	node.Kind = KindEnum
	for i, v := range s.Enum {
		ident := ""
		if i < len(s.GoEnumNames) {
			ident = s.GoEnumNames[i]
		} else {
			ident = SafeIdent(fmt.Sprintf("%v", v))
		}
		node.Enum = append(node.Enum, EnumMember{
			Ident: ident,
			Value: &Node{Kind: KindLiteral, Literal: v},
		})
	}
	return nil
}

// An enum without display names is a union of its literal values, in
// declaration order (key order for the legacy map-shaped spelling).
func (b *Builder) fillUnnamedEnum(node *Node, s *schema.Schema) {
	node.Kind = KindUnion
	for _, v := range s.Enum {
		node.Params = append(node.Params, &Node{Kind: KindLiteral, Literal: v})
	}
}

func (b *Builder) fillTypedArray(node *Node, s *schema.Schema) error {
	if s.ItemsList != nil {
		node.Kind = KindTuple
		node.MinItems, node.MaxItems = bounds(s)
		for _, c := range s.ItemsList {
			child, err := b.build(c, "")
			if err != nil {
				return err
			}
			node.Params = append(node.Params, child)
		}
		return b.fillSpread(node, s)
	}

	// Single item schema carrying bounds: replicate it positionally.
	// The normalizer usually rewrites this shape already; handling it
	// here keeps partially-normalized inputs well defined.
	minItems, maxItems := bounds(s)
	if minItems > 0 || maxItems >= 0 {
		elem, err := b.build(s.Items, "")
		if err != nil {
			return err
		}
		node.Kind = KindTuple
		node.MinItems, node.MaxItems = minItems, maxItems
		length := maxItems
		if minItems > length {
			length = minItems
		}
		for i := 0; i < length; i++ {
			node.Params = append(node.Params, elem)
		}
		if maxItems < 0 {
			node.SpreadParam = elem
		}
		return nil
	}

	elem, err := b.build(s.Items, "")
	if err != nil {
		return err
	}
	node.Kind = KindArray
	node.Params = []*Node{elem}
	return nil
}

func (b *Builder) fillSpread(node *Node, s *schema.Schema) error {
	switch {
	case s.AdditionalItems.IsSchema():
		spread, err := b.build(s.AdditionalItems.Schema, "")
		if err != nil {
			return err
		}
		node.SpreadParam = spread
	case s.AdditionalItems != nil && s.AdditionalItems.Bool:
		node.SpreadParam = &Node{Kind: KindAny}
	}
	return nil
}

func (b *Builder) fillUntypedArray(node *Node, s *schema.Schema) {
	minItems, maxItems := bounds(s)
	if minItems > 0 || maxItems >= 0 {
		node.Kind = KindTuple
		node.MinItems, node.MaxItems = minItems, maxItems
		length := maxItems
		if minItems > length {
			length = minItems
		}
		for i := 0; i < length; i++ {
			node.Params = append(node.Params, &Node{Kind: KindAny})
		}
		if maxItems < 0 {
			node.SpreadParam = &Node{Kind: KindAny}
		}
		return
	}
	node.Kind = KindArray
	node.Params = []*Node{{Kind: KindAny}}
}

func (b *Builder) fillRecord(node *Node, s *schema.Schema) error {
	node.Kind = KindInterface

	if s.Properties != nil {
		for key, child := range s.Properties.All() {
			t, err := b.build(child, key)
			if err != nil {
				return err
			}
			node.Members = append(node.Members, Member{
				KeyName:  key,
				Required: containsString(s.Required, key),
				Type:     t,
			})
		}
	}

	// A single pattern property with no independently declared
	// additionalProperties acts as the record's one catch-all member.
	singlePattern := s.PatternProperties != nil &&
		s.PatternProperties.Len() == 1 &&
		s.AdditionalProperties == nil
	hasCatchAll := false

	if s.PatternProperties != nil {
		for pattern, child := range s.PatternProperties.All() {
			if singlePattern {
				t, err := b.build(child, "")
				if err != nil {
					return err
				}
				node.Members = append(node.Members, Member{
					Required: true,
					CatchAll: true,
					Type:     t,
				})
				hasCatchAll = true
				continue
			}
			t, err := b.build(child, pattern)
			if err != nil {
				return err
			}
			node.Members = append(node.Members, Member{
				KeyName:         pattern,
				Required:        containsString(s.Required, pattern),
				PatternProperty: true,
				Type:            t,
				Comment:         fmt.Sprintf("Present only under keys matching the pattern %q.", pattern),
			})
		}
	}

	if s.Definitions != nil {
		for key, child := range s.Definitions.All() {
			t, err := b.build(child, key)
			if err != nil {
				return err
			}
			node.Members = append(node.Members, Member{
				KeyName:               key,
				UnreachableDefinition: true,
				Type:                  t,
				Comment:               "Declared in the definitions map; never present as an actual field.",
			})
		}
	}

	switch {
	case s.AdditionalProperties.IsSchema():
		t, err := b.build(s.AdditionalProperties.Schema, "")
		if err != nil {
			return err
		}
		node.Members = append(node.Members, Member{Required: true, CatchAll: true, Type: t})
	case s.AdditionalProperties == nil, s.AdditionalProperties.Bool:
		if !hasCatchAll {
			node.Members = append(node.Members, Member{Required: true, CatchAll: true, Type: &Node{Kind: KindAny}})
		}
	default:
		// additionalProperties: false — closed record, no catch-all.
	}

	for _, e := range s.Extends {
		t, err := b.build(e, "")
		if err != nil {
			return err
		}
		node.SuperTypes = append(node.SuperTypes, t)
	}
	return nil
}

// bounds reads the normalized numeric bounds; max is -1 when
// unbounded above.
func bounds(s *schema.Schema) (minItems, maxItems int) {
	maxItems = -1
	if s.MinItems != nil {
		minItems = *s.MinItems
	}
	if s.MaxItems != nil {
		maxItems = *s.MaxItems
	}
	return minItems, maxItems
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
