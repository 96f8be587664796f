// Package gen renders a declaration AST as Go source. It consumes
// only the documented node surface: kinds, names, members, params.
// Output ordering is first-reached declaration order, so rendering is
// deterministic for a deterministic AST.
package gen

import (
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/skemagen/skemagen/ast"
)

// Options control rendering.
type Options struct {
	// Package is the package clause of the emitted file. Defaults to
	// "types".
	Package string
	// RootName names an anonymous root node. Defaults to "Root".
	RootName string
}

// Render emits Go declarations for every named node reachable from
// root. Anonymous nodes are inlined at their use sites.
func Render(root *ast.Node, opts Options) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("gen: nil AST")
	}
	if opts.Package == "" {
		opts.Package = "types"
	}
	if opts.RootName == "" {
		opts.RootName = "Root"
	}

	r := &renderer{
		rootName: map[*ast.Node]string{},
		active:   map[*ast.Node]bool{},
	}
	if root.StandaloneName == "" {
		r.rootName[root] = ast.SafeIdent(opts.RootName)
	}
	decls := r.collect(root)

	var b strings.Builder
	b.WriteString("// Code generated by skemagen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n", opts.Package)
	for _, d := range decls {
		b.WriteString("\n")
		r.renderDecl(&b, d)
	}
	return []byte(b.String()), nil
}

type renderer struct {
	// rootName overrides the declaration name of an anonymous root
	// without mutating the caller's AST.
	rootName map[*ast.Node]string

	// active tracks interfaces being inlined right now; an anonymous
	// cycle degrades to any instead of recursing forever.
	active map[*ast.Node]bool
}

func (r *renderer) nameOf(n *ast.Node) string {
	if name, ok := r.rootName[n]; ok {
		return name
	}
	return n.StandaloneName
}

// collect gathers named nodes in first-reached order.
func (r *renderer) collect(root *ast.Node) []*ast.Node {
	var decls []*ast.Node
	seen := map[*ast.Node]bool{}
	var visit func(n *ast.Node)
	visit = func(n *ast.Node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		if r.nameOf(n) != "" {
			decls = append(decls, n)
		}
		for _, p := range n.Params {
			visit(p)
		}
		visit(n.SpreadParam)
		for _, m := range n.Members {
			visit(m.Type)
		}
		for _, st := range n.SuperTypes {
			visit(st)
		}
	}
	visit(root)
	return decls
}

func (r *renderer) renderDecl(b *strings.Builder, n *ast.Node) {
	r.comment(b, "", n.Comment, n.Deprecated)
	name := r.nameOf(n)
	switch n.Kind {
	case ast.KindInterface:
		fmt.Fprintf(b, "type %s %s\n", name, r.structExpr(n, ""))
	case ast.KindEnum:
		r.renderEnum(b, name, n)
	case ast.KindCustom:
		// Verbatim type text stays interchangeable with its target.
		fmt.Fprintf(b, "type %s = %s\n", name, n.Custom)
	default:
		// Defined types, not aliases, so recursive shapes stay legal.
		fmt.Fprintf(b, "type %s %s\n", name, r.inlineExpr(n, ""))
	}
}

func (r *renderer) renderEnum(b *strings.Builder, name string, n *ast.Node) {
	base := enumBase(n.Enum)
	fmt.Fprintf(b, "type %s %s\n\n", name, base)
	if base == "any" {
		b.WriteString("var (\n")
	} else {
		b.WriteString("const (\n")
	}
	used := map[string]bool{}
	for _, m := range n.Enum {
		ident := uniqueIdent(name+ast.SafeIdent(m.Ident), used)
		fmt.Fprintf(b, "\t%s %s = %s\n", ident, name, goLiteral(m.Value.Literal))
	}
	b.WriteString(")\n")
}

// typeExpr names the node when it has a declaration, otherwise inlines
// it.
func (r *renderer) typeExpr(n *ast.Node, indent string) string {
	if n == nil {
		return "any"
	}
	if name := r.nameOf(n); name != "" {
		return name
	}
	return r.inlineExpr(n, indent)
}

func (r *renderer) inlineExpr(n *ast.Node, indent string) string {
	switch n.Kind {
	case ast.KindString:
		return "string"
	case ast.KindNumber:
		return "float64"
	case ast.KindBoolean:
		return "bool"
	case ast.KindNull, ast.KindAny:
		return "any"
	case ast.KindNever:
		// No inhabitants; the empty struct is the closest Go spelling.
		return "struct{}"
	case ast.KindObject:
		return "map[string]any"
	case ast.KindCustom:
		return n.Custom
	case ast.KindArray:
		if len(n.Params) == 1 {
			return "[]" + r.typeExpr(n.Params[0], indent)
		}
		return "[]any"
	case ast.KindTuple:
		// Go has no tuple types; positional contents degrade to a
		// slice of the widest common element type.
		return "[]" + commonExpr(r, n, indent)
	case ast.KindUnion:
		if base := literalBase(n.Params); base != "" {
			return base
		}
		return "any"
	case ast.KindIntersection:
		return "any"
	case ast.KindLiteral:
		return literalType(n.Literal)
	case ast.KindInterface:
		if r.active[n] {
			return "any"
		}
		r.active[n] = true
		expr := r.structExpr(n, indent)
		delete(r.active, n)
		return expr
	case ast.KindEnum:
		return enumBase(n.Enum)
	default:
		return "any"
	}
}

func (r *renderer) structExpr(n *ast.Node, indent string) string {
	inner := indent + "\t"
	var b strings.Builder
	b.WriteString("struct {\n")
	for _, st := range n.SuperTypes {
		if name := r.nameOf(st); name != "" {
			fmt.Fprintf(&b, "%s%s\n", inner, name)
		}
	}
	used := map[string]bool{}
	for _, m := range n.Members {
		switch {
		case m.UnreachableDefinition:
			// Declared only so the member type gets emitted; no field.
		case m.PatternProperty:
			r.comment(&b, inner, m.Comment, false)
			fmt.Fprintf(&b, "%s// Values are carried by the catch-all map.\n", inner)
		case m.CatchAll:
			name := uniqueIdent("AdditionalProperties", used)
			fmt.Fprintf(&b, "%s%s map[string]%s `json:\"-\"`\n", inner, name, r.typeExpr(m.Type, inner))
		default:
			r.comment(&b, inner, memberComment(m), m.Type.Deprecated)
			name := uniqueIdent(ast.SafeIdent(m.KeyName), used)
			tag := m.KeyName
			if !m.Required {
				tag += ",omitempty"
			}
			fmt.Fprintf(&b, "%s%s %s `json:%q`\n", inner, name, r.fieldExpr(m.Type, inner), tag)
		}
	}
	b.WriteString(indent + "}")
	return b.String()
}

// fieldExpr types a struct field. Fields of named struct types are
// pointers: recursive records would otherwise have infinite size, and
// absence stays distinguishable from the zero value.
func (r *renderer) fieldExpr(n *ast.Node, indent string) string {
	if n != nil && n.Kind == ast.KindInterface && r.nameOf(n) != "" {
		return "*" + r.nameOf(n)
	}
	return r.typeExpr(n, indent)
}

func memberComment(m ast.Member) string {
	if m.Comment != "" {
		return m.Comment
	}
	if m.Type != nil && m.Type.StandaloneName == "" {
		return m.Type.Comment
	}
	return ""
}

func (r *renderer) comment(b *strings.Builder, indent, text string, deprecated bool) {
	for _, line := range commentLines(text) {
		fmt.Fprintf(b, "%s// %s\n", indent, line)
	}
	if deprecated {
		if text != "" {
			fmt.Fprintf(b, "%s//\n", indent)
		}
		fmt.Fprintf(b, "%s// Deprecated: marked deprecated in the schema.\n", indent)
	}
}

func commentLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

func uniqueIdent(name string, used map[string]bool) string {
	if !used[name] {
		used[name] = true
		return name
	}
	for i := 1; ; i++ {
		alt := fmt.Sprintf("%s%d", name, i)
		if !used[alt] {
			used[alt] = true
			return alt
		}
	}
}

// commonExpr finds one element type shared by all tuple positions.
func commonExpr(r *renderer, n *ast.Node, indent string) string {
	exprs := map[string]bool{}
	for _, p := range n.Params {
		exprs[r.typeExpr(p, indent)] = true
	}
	if n.SpreadParam != nil {
		exprs[r.typeExpr(n.SpreadParam, indent)] = true
	}
	if len(exprs) == 1 {
		for e := range exprs {
			return e
		}
	}
	return "any"
}

// literalBase reports the scalar base type of an all-literal union,
// or "" when the members are heterogeneous.
func literalBase(params []*ast.Node) string {
	base := ""
	for _, p := range params {
		if p.Kind != ast.KindLiteral {
			return ""
		}
		t := literalType(p.Literal)
		if base == "" {
			base = t
		} else if base != t {
			return ""
		}
	}
	return base
}

func literalType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case gojson.Number:
		return "float64"
	case float64, int, int64:
		return "float64"
	default:
		return "any"
	}
}

func enumBase(members []ast.EnumMember) string {
	base := ""
	for _, m := range members {
		t := literalType(m.Value.Literal)
		if base == "" {
			base = t
		} else if base != t {
			return "any"
		}
	}
	if base == "" {
		return "any"
	}
	return base
}

// goLiteral renders a JSON value as a Go literal.
func goLiteral(v any) string {
	if v == nil {
		return "nil"
	}
	out, err := gojson.Marshal(v)
	if err != nil {
		return "nil"
	}
	return string(out)
}
