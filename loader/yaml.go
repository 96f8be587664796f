package loader

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/skemagen/skemagen/schema"
	"github.com/speakeasy-api/openapi/sequencedmap"
)

// YAML decodes one YAML schema document. Mapping order is positional
// in the yaml.v3 node tree, so declaration order survives just as it
// does for JSON input.
func YAML(data []byte) (*schema.Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	n := &doc
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, fmt.Errorf("loader: empty YAML document")
		}
		n = n.Content[0]
	}
	return yamlSchema(n)
}

func yamlSchema(n *yaml.Node) (*schema.Schema, error) {
	n = deref(n)
	if n.Kind == yaml.ScalarNode && n.Tag == "!!bool" {
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, fmt.Errorf("loader: %w", err)
		}
		return schema.BoolSchema(b), nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("loader: schema must be a mapping or boolean at line %d", n.Line)
	}

	s := &schema.Schema{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val := deref(n.Content[i+1])
		if err := assignYAML(s, key, val); err != nil {
			return nil, fmt.Errorf("loader: keyword %q: %w", key, err)
		}
	}
	return s, nil
}

func assignYAML(s *schema.Schema, key string, n *yaml.Node) error {
	var err error
	switch key {
	case "$ref":
		s.Ref = n.Value
	case "$id":
		s.ID = n.Value
	case "id":
		s.LegacyID = n.Value
	case "title":
		s.Title = n.Value
	case "description":
		s.Description = n.Value
	case "deprecated":
		s.Deprecated, err = yamlBool(n)
	case "type":
		err = yamlType(s, n)
	case "enum":
		err = yamlEnum(s, n)
	case "const":
		s.Const, err = yamlValue(n)
		s.HasConst = err == nil
	case "properties":
		s.Properties, err = yamlSchemaMap(n)
	case "patternProperties":
		s.PatternProperties, err = yamlSchemaMap(n)
	case "definitions", "$defs":
		err = yamlMergeDefinitions(s, n)
	case "required":
		err = yamlRequired(s, n)
	case "additionalProperties":
		s.AdditionalProperties, err = yamlSchemaOrBool(n)
	case "additionalItems":
		s.AdditionalItems, err = yamlSchemaOrBool(n)
	case "items":
		err = yamlItems(s, n)
	case "minItems":
		s.MinItems, err = yamlIntPtr(n)
	case "maxItems":
		s.MaxItems, err = yamlIntPtr(n)
	case "allOf":
		s.AllOf, err = yamlSchemaList(n)
	case "anyOf":
		s.AnyOf, err = yamlSchemaList(n)
	case "oneOf":
		s.OneOf, err = yamlSchemaList(n)
	case "extends":
		err = yamlExtends(s, n)
	case "goType":
		s.GoType = n.Value
	case "goEnumNames":
		err = n.Decode(&s.GoEnumNames)
	default:
		// Ignored, same as the JSON path.
	}
	return err
}

func deref(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

func yamlBool(n *yaml.Node) (bool, error) {
	return strconv.ParseBool(n.Value)
}

func yamlIntPtr(n *yaml.Node) (*int, error) {
	v, err := strconv.Atoi(n.Value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func yamlType(s *schema.Schema, n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		s.TypeDeclaredAsList = true
		for _, c := range n.Content {
			s.Type = append(s.Type, deref(c).Value)
		}
		return nil
	}
	s.Type = []string{n.Value}
	return nil
}

func yamlEnum(s *schema.Schema, n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		for _, c := range n.Content {
			v, err := yamlValue(deref(c))
			if err != nil {
				return err
			}
			s.Enum = append(s.Enum, v)
		}
		return nil
	case yaml.MappingNode:
		s.EnumKeyed = true
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(deref(n.Content[i+1]))
			if err != nil {
				return err
			}
			s.Enum = append(s.Enum, v)
		}
		return nil
	}
	return fmt.Errorf("enum must be a sequence or mapping at line %d", n.Line)
}

// yamlValue converts a YAML scalar/collection into the JSON-compatible
// value shape the rest of the module uses; numbers become json.Number
// for parity with the JSON path.
func yamlValue(n *yaml.Node) (any, error) {
	n = deref(n)
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return nil, nil
		case "!!bool":
			return strconv.ParseBool(n.Value)
		case "!!int", "!!float":
			return json.Number(n.Value), nil
		default:
			return n.Value, nil
		}
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported YAML value at line %d", n.Line)
}

func yamlRequired(s *schema.Schema, n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!bool" {
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return err
		}
		if !b {
			s.RequiredIsFalse = true
		}
		return nil
	}
	return n.Decode(&s.Required)
}

func yamlSchemaOrBool(n *yaml.Node) (*schema.SchemaOrBool, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!bool" {
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, err
		}
		return &schema.SchemaOrBool{Bool: b}, nil
	}
	child, err := yamlSchema(n)
	if err != nil {
		return nil, err
	}
	return &schema.SchemaOrBool{Schema: child}, nil
}

func yamlItems(s *schema.Schema, n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		list, err := yamlSchemaList(n)
		if err != nil {
			return err
		}
		s.ItemsList = list
		return nil
	}
	child, err := yamlSchema(n)
	if err != nil {
		return err
	}
	s.Items = child
	return nil
}

func yamlSchemaList(n *yaml.Node) ([]*schema.Schema, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected a sequence at line %d", n.Line)
	}
	out := make([]*schema.Schema, 0, len(n.Content))
	for _, c := range n.Content {
		child, err := yamlSchema(c)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func yamlSchemaMap(n *yaml.Node) (*sequencedmap.Map[string, *schema.Schema], error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at line %d", n.Line)
	}
	out := sequencedmap.New[string, *schema.Schema]()
	for i := 0; i+1 < len(n.Content); i += 2 {
		child, err := yamlSchema(n.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", n.Content[i].Value, err)
		}
		out.Set(n.Content[i].Value, child)
	}
	return out, nil
}

func yamlMergeDefinitions(s *schema.Schema, n *yaml.Node) error {
	m, err := yamlSchemaMap(n)
	if err != nil {
		return err
	}
	if s.Definitions == nil {
		s.Definitions = m
		return nil
	}
	for k, v := range m.All() {
		s.Definitions.Set(k, v)
	}
	return nil
}

func yamlExtends(s *schema.Schema, n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil
		}
		return fmt.Errorf("extends must be a mapping or sequence at line %d", n.Line)
	case yaml.SequenceNode:
		list, err := yamlSchemaList(n)
		if err != nil {
			return err
		}
		s.Extends = list
		return nil
	}
	child, err := yamlSchema(n)
	if err != nil {
		return err
	}
	s.Extends = []*schema.Schema{child}
	s.ExtendsDeclaredSingle = true
	return nil
}
