package normalize

import (
	"fmt"
	"strings"

	"github.com/skemagen/skemagen/schema"
)

// enumContainsNull reports whether a declared enum carries the null
// value.
func enumContainsNull(n *schema.Schema) bool {
	for _, v := range n.Enum {
		if v == nil {
			return true
		}
	}
	return false
}

// Nullability already implied by an enum value makes a declared "null"
// type redundant.
func ruleDropNullTypeImpliedByEnum(n *schema.Schema, _ Options) error {
	if n.Enum == nil || !enumContainsNull(n) || !n.HasType(schema.TypeNull) {
		return nil
	}
	kept := n.Type[:0]
	for _, t := range n.Type {
		if t != schema.TypeNull {
			kept = append(kept, t)
		}
	}
	n.Type = kept
	return nil
}

func ruleCollapseUnaryType(n *schema.Schema, _ Options) error {
	if len(n.Type) == 1 {
		n.TypeDeclaredAsList = false
	}
	return nil
}

func ruleDefaultRequired(n *schema.Schema, _ Options) error {
	if n.IsObjectLike() && n.Required == nil && !n.RequiredIsFalse {
		n.Required = []string{}
	}
	return nil
}

func ruleRequiredFalse(n *schema.Schema, _ Options) error {
	if n.RequiredIsFalse {
		n.Required = []string{}
		n.RequiredIsFalse = false
	}
	return nil
}

func ruleDefaultAdditionalProperties(n *schema.Schema, _ Options) error {
	if n.IsObjectLike() && n.AdditionalProperties == nil && n.PatternProperties == nil {
		n.AdditionalProperties = &schema.SchemaOrBool{Bool: true}
	}
	return nil
}

func ruleMigrateLegacyID(n *schema.Schema, opt Options) error {
	if n.LegacyID == "" {
		return nil
	}
	if n.ID != "" && n.ID != n.LegacyID {
		return &schema.Error{
			Code:   schema.CodeIDConflict,
			File:   opt.File,
			Node:   n,
			Detail: fmt.Sprintf("schema declares both id=%q and $id=%q", n.LegacyID, n.ID),
		}
	}
	n.ID = n.LegacyID
	n.LegacyID = ""
	return nil
}

// A literal "*/" inside a description would terminate a block-style
// documentation comment early in the emitted source.
func ruleEscapeDescription(n *schema.Schema, _ Options) error {
	if strings.Contains(n.Description, "*/") {
		n.Description = strings.ReplaceAll(n.Description, "*/", `*\/`)
	}
	return nil
}

// Bound annotations are written only when the bounds are about to be
// stripped; with bounds preserved the tuple node carries them
// structurally and the annotation would state them twice.
func ruleAnnotateBounds(n *schema.Schema, opt Options) error {
	if !opt.StripArrayBounds || !n.IsArrayLike() {
		return nil
	}
	if n.MinItems != nil && *n.MinItems > 0 {
		n.Description = appendAnnotation(n.Description, fmt.Sprintf("@minItems %d", *n.MinItems))
	}
	if n.MaxItems != nil {
		n.Description = appendAnnotation(n.Description, fmt.Sprintf("@maxItems %d", *n.MaxItems))
	}
	return nil
}

func appendAnnotation(desc, note string) string {
	if desc == "" {
		return note
	}
	return desc + "\n\n" + note
}

func ruleStripBounds(n *schema.Schema, opt Options) error {
	if !opt.StripArrayBounds || !n.IsArrayLike() {
		return nil
	}
	n.MinItems = nil
	n.MaxItems = nil
	return nil
}

func ruleDefaultMinItems(n *schema.Schema, opt Options) error {
	if opt.StripArrayBounds {
		return nil
	}
	if n.IsArrayLike() && n.MinItems == nil {
		n.MinItems = schema.Int(0)
	}
	return nil
}

// maxTupleGap caps the spread between minItems and maxItems before the
// upper bound is discarded, so tuple replication cannot materialize a
// pathologically wide type.
const maxTupleGap = 20

func ruleDropOversizedMaxItems(n *schema.Schema, opt Options) error {
	if opt.StripArrayBounds {
		return nil
	}
	if n.MinItems != nil && n.MaxItems != nil && *n.MaxItems-*n.MinItems > maxTupleGap {
		n.MaxItems = nil
	}
	return nil
}

func ruleTupleArity(n *schema.Schema, opt Options) error {
	if opt.StripArrayBounds {
		return nil
	}
	minPresent := n.MinItems != nil && *n.MinItems > 0
	maxPresent := n.MaxItems != nil
	if n.Items != nil && (minPresent || maxPresent) {
		length := 0
		if maxPresent {
			length = *n.MaxItems
		}
		if n.MinItems != nil && *n.MinItems > length {
			length = *n.MinItems
		}
		list := make([]*schema.Schema, length)
		for i := range list {
			list[i] = n.Items
		}
		if !maxPresent {
			// No upper bound: keep a trailing open slot.
			n.AdditionalItems = &schema.SchemaOrBool{Schema: n.Items}
		}
		n.ItemsList = list
		n.Items = nil
		return nil
	}
	if n.ItemsList != nil && maxPresent && len(n.ItemsList) > *n.MaxItems {
		n.ItemsList = n.ItemsList[:*n.MaxItems]
	}
	return nil
}

func ruleRemoveEmptyExtends(n *schema.Schema, _ Options) error {
	if n.Extends != nil && len(n.Extends) == 0 {
		n.Extends = nil
		n.ExtendsDeclaredSingle = false
	}
	return nil
}

func ruleExtendsToArray(n *schema.Schema, _ Options) error {
	n.ExtendsDeclaredSingle = false
	return nil
}

func ruleConstToEnum(n *schema.Schema, _ Options) error {
	if !n.HasConst {
		return nil
	}
	n.Enum = []any{n.Const}
	n.EnumKeyed = false
	n.Const = nil
	n.HasConst = false
	return nil
}
