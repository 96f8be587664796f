package ast_test

import (
	"testing"

	"github.com/speakeasy-api/openapi/sequencedmap"

	"github.com/skemagen/skemagen/ast"
	"github.com/skemagen/skemagen/schema"
)

func mustBuild(t *testing.T, root *schema.Schema) *ast.Node {
	t.Helper()
	node, err := ast.NewBuilder(root, "test.json").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return node
}

func schemaMap(pairs ...any) *sequencedmap.Map[string, *schema.Schema] {
	m := sequencedmap.New[string, *schema.Schema]()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(*schema.Schema))
	}
	return m
}

// fieldMembers filters out catch-all and definition members.
func fieldMembers(n *ast.Node) []ast.Member {
	var out []ast.Member
	for _, m := range n.Members {
		if !m.CatchAll && !m.UnreachableDefinition {
			out = append(out, m)
		}
	}
	return out
}

func TestSelfReferenceSharesOneNode(t *testing.T) {
	root := &schema.Schema{Title: "Tree", Type: []string{"object"}}
	root.Properties = schemaMap("child", root)

	node := mustBuild(t, root)
	if node.Kind != ast.KindInterface {
		t.Fatalf("want interface, got %v", node.Kind)
	}
	fields := fieldMembers(node)
	if len(fields) != 1 {
		t.Fatalf("want one field, got %d", len(fields))
	}
	if fields[0].Type != node {
		t.Fatal("self-referential member must share the node, not copy it")
	}
}

func TestDiamondSharing(t *testing.T) {
	leaf := &schema.Schema{Title: "Leaf", Type: []string{"string"}}
	root := &schema.Schema{
		Type:       []string{"object"},
		Properties: schemaMap("a", leaf, "b", leaf),
	}

	node := mustBuild(t, root)
	fields := fieldMembers(node)
	if len(fields) != 2 {
		t.Fatalf("want two fields, got %d", len(fields))
	}
	if fields[0].Type != fields[1].Type {
		t.Fatal("both paths to the shared schema must reach one node")
	}
	if fields[0].Type.StandaloneName != "Leaf" {
		t.Fatalf("want name Leaf, got %q", fields[0].Type.StandaloneName)
	}
}

func TestMultiTypePrimitiveBecomesUnion(t *testing.T) {
	root := &schema.Schema{
		Title:       "Flexible",
		Description: "string or number",
		Type:        []string{"string", "number"},
	}
	node := mustBuild(t, root)
	if node.Kind != ast.KindUnion {
		t.Fatalf("want union, got %v", node.Kind)
	}
	if node.Comment != "string or number" || node.StandaloneName != "Flexible" {
		t.Fatalf("documentation should be hoisted onto the union, got %+v", node)
	}
	if len(node.Params) != 2 {
		t.Fatalf("want two branches, got %d", len(node.Params))
	}
	if node.Params[0].Kind != ast.KindString || node.Params[1].Kind != ast.KindNumber {
		t.Fatalf("branch kinds wrong: %v, %v", node.Params[0].Kind, node.Params[1].Kind)
	}
	if node.Params[0].Comment != "" {
		t.Fatal("branches must not repeat the hoisted documentation")
	}
}

func TestOpenRecordGetsAnyCatchAll(t *testing.T) {
	root := &schema.Schema{
		Type:       []string{"object"},
		Properties: schemaMap("name", &schema.Schema{Type: []string{"string"}}),
	}
	node := mustBuild(t, root)
	last := node.Members[len(node.Members)-1]
	if !last.CatchAll || last.Type.Kind != ast.KindAny {
		t.Fatalf("open record needs a wildcard catch-all, got %+v", last)
	}
}

func TestClosedRecordHasNoCatchAll(t *testing.T) {
	root := &schema.Schema{
		Type:                 []string{"object"},
		Properties:           schemaMap("name", &schema.Schema{Type: []string{"string"}}),
		AdditionalProperties: &schema.SchemaOrBool{Bool: false},
	}
	node := mustBuild(t, root)
	for _, m := range node.Members {
		if m.CatchAll {
			t.Fatal("closed record must not carry a catch-all member")
		}
	}
}

func TestTypedCatchAll(t *testing.T) {
	root := &schema.Schema{
		Type:                 []string{"object"},
		Properties:           schemaMap("name", &schema.Schema{Type: []string{"string"}}),
		AdditionalProperties: &schema.SchemaOrBool{Schema: &schema.Schema{Type: []string{"number"}}},
	}
	node := mustBuild(t, root)
	last := node.Members[len(node.Members)-1]
	if !last.CatchAll || last.Type.Kind != ast.KindNumber {
		t.Fatalf("want typed catch-all, got %+v", last)
	}
}

func TestRequiredFlagFollowsRequiredSet(t *testing.T) {
	root := &schema.Schema{
		Type: []string{"object"},
		Properties: schemaMap(
			"must", &schema.Schema{Type: []string{"string"}},
			"may", &schema.Schema{Type: []string{"string"}},
		),
		Required: []string{"must"},
	}
	node := mustBuild(t, root)
	fields := fieldMembers(node)
	if !fields[0].Required || fields[1].Required {
		t.Fatalf("required flags wrong: %+v", fields)
	}
}

func TestUnnamedEnumIsUnionOfLiterals(t *testing.T) {
	root := &schema.Schema{Enum: []any{"red", "green", "blue"}}
	node := mustBuild(t, root)
	if node.Kind != ast.KindUnion {
		t.Fatalf("want union, got %v", node.Kind)
	}
	if len(node.Params) != 3 {
		t.Fatalf("want three literals, got %d", len(node.Params))
	}
	for i, want := range []string{"red", "green", "blue"} {
		p := node.Params[i]
		if p.Kind != ast.KindLiteral || p.Literal != want {
			t.Fatalf("literal %d: want %q, got %+v", i, want, p)
		}
	}
}

func TestNamedEnumPairsIdentifiers(t *testing.T) {
	root := &schema.Schema{
		Title:       "Color",
		Enum:        []any{"red", "light green"},
		GoEnumNames: []string{"Red"},
	}
	node := mustBuild(t, root)
	if node.Kind != ast.KindEnum {
		t.Fatalf("want enum, got %v", node.Kind)
	}
	if node.Enum[0].Ident != "Red" {
		t.Fatalf("declared name ignored: %q", node.Enum[0].Ident)
	}
	// Past the declared names the value itself supplies the identifier.
	if node.Enum[1].Ident != "LightGreen" {
		t.Fatalf("derived name wrong: %q", node.Enum[1].Ident)
	}
	if node.Enum[1].Value.Literal != "light green" {
		t.Fatalf("value lost: %v", node.Enum[1].Value.Literal)
	}
}

func TestKeyedNamedEnumIsFatal(t *testing.T) {
	root := &schema.Schema{
		Enum:        []any{"a"},
		EnumKeyed:   true,
		GoEnumNames: []string{"A"},
	}
	_, err := ast.NewBuilder(root, "enum.json").Build()
	se, ok := schema.AsSchemaError(err)
	if !ok || se.Code != schema.CodeMalformedEnum {
		t.Fatalf("want %s, got %v", schema.CodeMalformedEnum, err)
	}
}

func TestKeyedUnnamedEnumIsAllowed(t *testing.T) {
	root := &schema.Schema{Enum: []any{"a", "b"}, EnumKeyed: true}
	node := mustBuild(t, root)
	if node.Kind != ast.KindUnion || len(node.Params) != 2 {
		t.Fatalf("keyed spelling without names is still a plain union, got %+v", node)
	}
}

func TestUnresolvedRefIsFatal(t *testing.T) {
	root := &schema.Schema{
		Type:       []string{"object"},
		Properties: schemaMap("x", &schema.Schema{Ref: "#/definitions/missing"}),
	}
	_, err := ast.NewBuilder(root, "refs.json").Build()
	se, ok := schema.AsSchemaError(err)
	if !ok || se.Code != schema.CodeUnresolvedRef {
		t.Fatalf("want %s, got %v", schema.CodeUnresolvedRef, err)
	}
	if se.File != "refs.json" {
		t.Fatalf("error should carry the document name, got %q", se.File)
	}
}

func TestSinglePatternPropertyIsCatchAll(t *testing.T) {
	root := &schema.Schema{
		Type:              []string{"object"},
		PatternProperties: schemaMap("^x-", &schema.Schema{Type: []string{"string"}}),
	}
	node := mustBuild(t, root)
	if len(node.Members) != 1 {
		t.Fatalf("want exactly the catch-all member, got %d members", len(node.Members))
	}
	m := node.Members[0]
	if !m.CatchAll || m.Type.Kind != ast.KindString {
		t.Fatalf("want string catch-all, got %+v", m)
	}
}

func TestMultiplePatternPropertiesKeepPatterns(t *testing.T) {
	root := &schema.Schema{
		Type: []string{"object"},
		PatternProperties: schemaMap(
			"^a", &schema.Schema{Type: []string{"string"}},
			"^b", &schema.Schema{Type: []string{"number"}},
		),
	}
	node := mustBuild(t, root)
	var patterns []string
	for _, m := range node.Members {
		if m.PatternProperty {
			patterns = append(patterns, m.KeyName)
		}
	}
	if len(patterns) != 2 || patterns[0] != "^a" || patterns[1] != "^b" {
		t.Fatalf("want both patterns in order, got %v", patterns)
	}
}

func TestTupleWithSpread(t *testing.T) {
	root := &schema.Schema{
		Type: []string{"array"},
		ItemsList: []*schema.Schema{
			{Type: []string{"string"}},
			{Type: []string{"number"}},
		},
		AdditionalItems: &schema.SchemaOrBool{Schema: &schema.Schema{Type: []string{"boolean"}}},
		MinItems:        schema.Int(1),
	}
	node := mustBuild(t, root)
	if node.Kind != ast.KindTuple {
		t.Fatalf("want tuple, got %v", node.Kind)
	}
	if len(node.Params) != 2 {
		t.Fatalf("want two positions, got %d", len(node.Params))
	}
	if node.SpreadParam == nil || node.SpreadParam.Kind != ast.KindBoolean {
		t.Fatalf("want boolean spread, got %+v", node.SpreadParam)
	}
	if node.MinItems != 1 || node.MaxItems != -1 {
		t.Fatalf("bounds wrong: min=%d max=%d", node.MinItems, node.MaxItems)
	}
}

func TestUntypedArrayOfAny(t *testing.T) {
	node := mustBuild(t, &schema.Schema{Type: []string{"array"}})
	if node.Kind != ast.KindArray || node.Params[0].Kind != ast.KindAny {
		t.Fatalf("want []any shape, got %+v", node)
	}
}

func TestBooleanSchemas(t *testing.T) {
	open := mustBuild(t, schema.BoolSchema(true))
	if open.Kind != ast.KindAny {
		t.Fatalf("true schema: want any, got %v", open.Kind)
	}
	closed := mustBuild(t, schema.BoolSchema(false))
	if closed.Kind != ast.KindNever {
		t.Fatalf("false schema: want never, got %v", closed.Kind)
	}
}

func TestGoTypeOverride(t *testing.T) {
	node := mustBuild(t, &schema.Schema{GoType: "time.Duration", Type: []string{"string"}})
	if node.Kind != ast.KindCustom || node.Custom != "time.Duration" {
		t.Fatalf("want custom time.Duration, got %+v", node)
	}
}

func TestIntersectionAndUnions(t *testing.T) {
	allOf := mustBuild(t, &schema.Schema{AllOf: []*schema.Schema{
		{Type: []string{"object"}}, {Type: []string{"object"}},
	}})
	if allOf.Kind != ast.KindIntersection || len(allOf.Params) != 2 {
		t.Fatalf("allOf: want two-way intersection, got %+v", allOf)
	}
	oneOf := mustBuild(t, &schema.Schema{OneOf: []*schema.Schema{
		{Type: []string{"string"}}, {Type: []string{"number"}},
	}})
	if oneOf.Kind != ast.KindUnion || len(oneOf.Params) != 2 {
		t.Fatalf("oneOf: want two-way union, got %+v", oneOf)
	}
}

func TestExtendsBecomeSuperTypes(t *testing.T) {
	base := &schema.Schema{
		Title:      "Base",
		Type:       []string{"object"},
		Properties: schemaMap("id", &schema.Schema{Type: []string{"string"}}),
	}
	root := &schema.Schema{
		Type:       []string{"object"},
		Properties: schemaMap("name", &schema.Schema{Type: []string{"string"}}),
		Extends:    []*schema.Schema{base},
	}
	node := mustBuild(t, root)
	if len(node.SuperTypes) != 1 || node.SuperTypes[0].StandaloneName != "Base" {
		t.Fatalf("want Base supertype, got %+v", node.SuperTypes)
	}
}

func TestDefinitionsProvideNamesAndMembers(t *testing.T) {
	def := &schema.Schema{
		Type:       []string{"object"},
		Properties: schemaMap("city", &schema.Schema{Type: []string{"string"}}),
	}
	root := &schema.Schema{
		Type:        []string{"object"},
		Properties:  schemaMap("home", def),
		Definitions: schemaMap("address", def),
	}
	node := mustBuild(t, root)
	fields := fieldMembers(node)
	if fields[0].Type.StandaloneName != "Address" {
		t.Fatalf("definitions key should name the node, got %q", fields[0].Type.StandaloneName)
	}
	var defMember *ast.Member
	for i := range node.Members {
		if node.Members[i].UnreachableDefinition {
			defMember = &node.Members[i]
		}
	}
	if defMember == nil {
		t.Fatal("definition entry missing from the record")
	}
	if defMember.Type != fields[0].Type {
		t.Fatal("definition and property must share one node")
	}
}

func TestNameCollisionsGetSuffixes(t *testing.T) {
	build := func() (string, string) {
		a := &schema.Schema{Title: "Thing", Type: []string{"string"}}
		b := &schema.Schema{Title: "Thing", Type: []string{"number"}}
		root := &schema.Schema{
			Type:       []string{"object"},
			Properties: schemaMap("a", a, "b", b),
		}
		node := mustBuild(t, root)
		fields := fieldMembers(node)
		return fields[0].Type.StandaloneName, fields[1].Type.StandaloneName
	}

	first, second := build()
	if first != "Thing" || second != "Thing1" {
		t.Fatalf("want Thing/Thing1, got %q/%q", first, second)
	}
	again1, again2 := build()
	if again1 != first || again2 != second {
		t.Fatal("allocation must reproduce across builds")
	}
}

func TestNameFromID(t *testing.T) {
	node := mustBuild(t, &schema.Schema{
		ID:   "https://example.com/schemas/address.json#",
		Type: []string{"object"},
	})
	if node.StandaloneName != "Address" {
		t.Fatalf("want Address from $id, got %q", node.StandaloneName)
	}
}

func TestSafeIdent(t *testing.T) {
	cases := map[string]string{
		"first name":    "FirstName",
		"x-rate-limit":  "XRateLimit",
		"3d model":      "N3DModel",
		"":              "Untitled",
		"!!!":           "Untitled",
		"already_Fine9": "AlreadyFine9",
	}
	for in, want := range cases {
		if got := ast.SafeIdent(in); got != want {
			t.Errorf("SafeIdent(%q) = %q, want %q", in, got, want)
		}
	}
}
