package skemagen

import (
	"errors"

	"github.com/skemagen/skemagen/ast"
	"github.com/skemagen/skemagen/linker"
	"github.com/skemagen/skemagen/loader"
	"github.com/skemagen/skemagen/normalize"
	"github.com/skemagen/skemagen/schema"
)

// Options bundle the policy of one generation run.
type Options struct {
	// FileName identifies the source document in error messages.
	FileName string

	// StripArrayBounds reproduces the legacy behavior of erasing
	// minItems/maxItems (after folding them into descriptions) instead
	// of deriving tuple arity from them. Off by default: bounds are
	// preserved and bounded arrays become tuples.
	StripArrayBounds bool
}

// Generate normalizes root in place and builds the declaration AST.
// The input graph must already be linked: any surviving $ref fails
// with an unresolved_ref error. Given the same input graph the output
// AST, including allocated names and member order, is identical on
// every run.
func Generate(root *schema.Schema, opts Options) (*ast.Node, error) {
	if root == nil {
		return nil, errors.New("skemagen: nil schema")
	}
	err := normalize.Apply(root, normalize.Options{
		File:             opts.FileName,
		StripArrayBounds: opts.StripArrayBounds,
	})
	if err != nil {
		return nil, err
	}
	return ast.NewBuilder(root, opts.FileName).Build()
}

// GenerateBytes decodes a document, links its local references and
// generates the AST. The codec follows the FileName extension; JSON
// when the name gives no hint.
func GenerateBytes(data []byte, opts Options) (*ast.Node, error) {
	root, err := loader.Load(opts.FileName, data)
	if err != nil {
		return nil, err
	}
	root, err = linker.Link(root, opts.FileName)
	if err != nil {
		return nil, err
	}
	return Generate(root, opts)
}
