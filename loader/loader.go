// Package loader ingests JSON Schema documents into the closed
// schema.Schema node form. Keyword handling happens once, here:
// downstream code never probes raw maps. Property, pattern-property
// and definition declaration order survives decoding, which the
// generator's determinism guarantee depends on.
package loader

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/speakeasy-api/openapi/sequencedmap"

	"github.com/skemagen/skemagen/schema"
)

// Load decodes a schema document, picking the codec from the file
// extension. Anything that is not .yaml or .yml is treated as JSON.
func Load(name string, data []byte) (*schema.Schema, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return YAML(data)
	default:
		return JSON(data)
	}
}

// JSON decodes one JSON Schema document. Boolean schemas (`true`,
// `false`) are valid inputs. Keywords outside the consulted set are
// ignored.
func JSON(data []byte) (*schema.Schema, error) {
	return parseSchema(data)
}

func parseSchema(raw []byte) (*schema.Schema, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("true")):
		return schema.BoolSchema(true), nil
	case bytes.Equal(raw, []byte("false")):
		return schema.BoolSchema(false), nil
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("loader: schema must be an object or boolean, got %q", snippet(raw))
	}

	s := &schema.Schema{}
	dec := gojson.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("loader: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("loader: unexpected token %v", keyTok)
		}
		var val gojson.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("loader: keyword %q: %w", key, err)
		}
		if err := assign(s, key, val); err != nil {
			return nil, fmt.Errorf("loader: keyword %q: %w", key, err)
		}
	}
	return s, nil
}

func assign(s *schema.Schema, key string, raw []byte) error {
	var err error
	switch key {
	case "$ref":
		s.Ref, err = parseString(raw)
	case "$id":
		s.ID, err = parseString(raw)
	case "id":
		s.LegacyID, err = parseString(raw)
	case "title":
		s.Title, err = parseString(raw)
	case "description":
		s.Description, err = parseString(raw)
	case "deprecated":
		s.Deprecated, err = parseBool(raw)
	case "type":
		err = parseType(s, raw)
	case "enum":
		s.Enum, s.EnumKeyed, err = parseEnum(raw)
	case "const":
		s.Const, err = parseValue(raw)
		s.HasConst = err == nil
	case "properties":
		s.Properties, err = parseSchemaMap(raw)
	case "patternProperties":
		s.PatternProperties, err = parseSchemaMap(raw)
	case "definitions", "$defs":
		err = mergeDefinitions(s, raw)
	case "required":
		err = parseRequired(s, raw)
	case "additionalProperties":
		s.AdditionalProperties, err = parseSchemaOrBool(raw)
	case "additionalItems":
		s.AdditionalItems, err = parseSchemaOrBool(raw)
	case "items":
		err = parseItems(s, raw)
	case "minItems":
		s.MinItems, err = parseIntPtr(raw)
	case "maxItems":
		s.MaxItems, err = parseIntPtr(raw)
	case "allOf":
		s.AllOf, err = parseSchemaList(raw)
	case "anyOf":
		s.AnyOf, err = parseSchemaList(raw)
	case "oneOf":
		s.OneOf, err = parseSchemaList(raw)
	case "extends":
		err = parseExtends(s, raw)
	case "goType":
		s.GoType, err = parseString(raw)
	case "goEnumNames":
		err = gojson.Unmarshal(raw, &s.GoEnumNames)
	default:
		// Keyword outside the consulted set; structural shape is
		// unaffected, so it is dropped.
	}
	return err
}

func parseString(raw []byte) (string, error) {
	var s string
	err := gojson.Unmarshal(raw, &s)
	return s, err
}

func parseBool(raw []byte) (bool, error) {
	var b bool
	err := gojson.Unmarshal(raw, &b)
	return b, err
}

func parseIntPtr(raw []byte) (*int, error) {
	var n int
	if err := gojson.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// parseValue keeps numbers as json.Number so literal values render
// exactly as declared.
func parseValue(raw []byte) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	err := dec.Decode(&v)
	return v, err
}

func parseType(s *schema.Schema, raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		s.TypeDeclaredAsList = true
		return gojson.Unmarshal(raw, &s.Type)
	}
	t, err := parseString(raw)
	if err != nil {
		return err
	}
	s.Type = []string{t}
	return nil
}

// parseEnum accepts the sequence form and the legacy keyed (object)
// form, whose values are taken in key order.
func parseEnum(raw []byte) ([]any, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		dec := gojson.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var vals []any
		err := dec.Decode(&vals)
		return vals, false, err
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false, fmt.Errorf("enum must be an array or object, got %q", snippet(raw))
	}
	dec := gojson.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, false, err
	}
	var vals []any
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, false, err
		}
		var vraw gojson.RawMessage
		if err := dec.Decode(&vraw); err != nil {
			return nil, false, err
		}
		v, err := parseValue(vraw)
		if err != nil {
			return nil, false, err
		}
		vals = append(vals, v)
	}
	return vals, true, nil
}

func parseRequired(s *schema.Schema, raw []byte) error {
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("false")):
		s.RequiredIsFalse = true
		return nil
	case bytes.Equal(raw, []byte("true")):
		// Legacy noise; carries no property names.
		return nil
	}
	return gojson.Unmarshal(raw, &s.Required)
}

func parseSchemaOrBool(raw []byte) (*schema.SchemaOrBool, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("true")):
		return &schema.SchemaOrBool{Bool: true}, nil
	case bytes.Equal(raw, []byte("false")):
		return &schema.SchemaOrBool{Bool: false}, nil
	}
	child, err := parseSchema(raw)
	if err != nil {
		return nil, err
	}
	return &schema.SchemaOrBool{Schema: child}, nil
}

func parseItems(s *schema.Schema, raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		list, err := parseSchemaList(raw)
		if err != nil {
			return err
		}
		s.ItemsList = list
		return nil
	}
	child, err := parseSchema(raw)
	if err != nil {
		return err
	}
	s.Items = child
	return nil
}

func parseSchemaList(raw []byte) ([]*schema.Schema, error) {
	dec := gojson.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	out := make([]*schema.Schema, 0)
	for dec.More() {
		var vraw gojson.RawMessage
		if err := dec.Decode(&vraw); err != nil {
			return nil, err
		}
		child, err := parseSchema(vraw)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func parseSchemaMap(raw []byte) (*sequencedmap.Map[string, *schema.Schema], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("expected an object, got %q", snippet(raw))
	}
	dec := gojson.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	out := sequencedmap.New[string, *schema.Schema]()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", keyTok)
		}
		var vraw gojson.RawMessage
		if err := dec.Decode(&vraw); err != nil {
			return nil, err
		}
		child, err := parseSchema(vraw)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", key, err)
		}
		out.Set(key, child)
	}
	return out, nil
}

// mergeDefinitions folds "definitions" and "$defs" into one ordered
// map, in encounter order.
func mergeDefinitions(s *schema.Schema, raw []byte) error {
	m, err := parseSchemaMap(raw)
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

func parseExtends(s *schema.Schema, raw []byte) error {
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("null")):
		return nil
	case len(raw) > 0 && raw[0] == '[':
		list, err := parseSchemaList(raw)
		if err != nil {
			return err
		}
		s.Extends = list
		return nil
	}
	child, err := parseSchema(raw)
	if err != nil {
		return err
	}
	s.Extends = []*schema.Schema{child}
	s.ExtendsDeclaredSingle = true
	return nil
}

func snippet(raw []byte) string {
	const limit = 40
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
