// Package normalize rewrites a schema graph, in place, into the
// deterministic form the AST builder expects. The pipeline is an
// ordered list of independent, idempotent rules; each rule runs to
// completion over the whole tree before the next starts.
package normalize

import "github.com/skemagen/skemagen/schema"

// Options control the policy rules of the pipeline.
type Options struct {
	// File names the originating document in fatal errors.
	File string

	// StripArrayBounds erases minItems/maxItems from array-like nodes
	// after folding them into descriptions, reproducing the legacy
	// behavior in which tuple arity is never derived from bounds. The
	// default keeps bounds so bounded single-item arrays become tuples.
	StripArrayBounds bool
}

// Rule is one rewrite step. Rules never recurse themselves; the runner
// walks the tree and applies the rule at every node.
type Rule struct {
	Name  string
	apply func(n *schema.Schema, opt Options) error
}

// Pipeline returns the full rule list in application order. The slice
// is freshly constructed on every call, so callers may truncate it to
// exercise a prefix in isolation.
func Pipeline() []Rule {
	return []Rule{
		{"drop null type implied by enum", ruleDropNullTypeImpliedByEnum},
		{"collapse unary type set", ruleCollapseUnaryType},
		{"default required to empty", ruleDefaultRequired},
		{"required false becomes empty", ruleRequiredFalse},
		{"default additionalProperties to true", ruleDefaultAdditionalProperties},
		{"migrate legacy id to $id", ruleMigrateLegacyID},
		{"escape description", ruleEscapeDescription},
		{"annotate stripped bounds", ruleAnnotateBounds},
		{"strip array bounds", ruleStripBounds},
		{"default minItems to zero", ruleDefaultMinItems},
		{"drop oversized maxItems", ruleDropOversizedMaxItems},
		{"tuple arity from items", ruleTupleArity},
		{"remove empty extends", ruleRemoveEmptyExtends},
		{"extends becomes array", ruleExtendsToArray},
		{"const becomes singleton enum", ruleConstToEnum},
	}
}

// Apply runs the full pipeline over root, mutating it in place.
func Apply(root *schema.Schema, opt Options) error {
	return ApplyRules(root, opt, Pipeline())
}

// ApplyRules runs the given rules in order, one full tree walk per
// rule. The first rule error aborts the remaining pipeline.
func ApplyRules(root *schema.Schema, opt Options, rules []Rule) error {
	for _, r := range rules {
		var firstErr error
		schema.Walk(root, func(n *schema.Schema, _ string) {
			if firstErr != nil || n.BoolValue != nil {
				return
			}
			if err := r.apply(n, opt); err != nil {
				firstErr = err
			}
		})
		if firstErr != nil {
			return firstErr
		}
	}
	return nil
}
