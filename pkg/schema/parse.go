package schema

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseType converts a type string to a Type.
//
// Grammar:
//
//	string | date | bool | number   primitives ("boolean", "int", "float" are aliases)
//	[T]                             array of T
//	T?                              optional T
//	T = literal                     T with a default (literal parsed as YAML)
//	enum(a|b|c)                     one of the listed strings
//	@name                           reference to a registry definition
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)
	if typeStr == "" {
		return nil, fmt.Errorf("empty type")
	}

	if idx := topLevelIndex(typeStr, '='); idx >= 0 {
		inner, err := ParseType(typeStr[:idx])
		if err != nil {
			return nil, err
		}
		var literal any
		if err := yaml.Unmarshal([]byte(typeStr[idx+1:]), &literal); err != nil {
			return nil, fmt.Errorf("invalid default in %q: %w", typeStr, err)
		}
		return WithDefault(inner, literal), nil
	}

	if strings.HasSuffix(typeStr, "?") {
		inner, err := ParseType(typeStr[:len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Optional(inner), nil
	}

	// Handle array types: [string], [[date]], etc.
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return ArrayOf(elemType), nil
	}

	if strings.HasPrefix(typeStr, "enum(") && strings.HasSuffix(typeStr, ")") {
		body := typeStr[len("enum(") : len(typeStr)-1]
		var values []string
		for _, v := range strings.Split(body, "|") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("enum without values: %s", typeStr)
		}
		return EnumOf(values...), nil
	}

	if strings.HasPrefix(typeStr, "@") && len(typeStr) > 1 {
		return Ref(typeStr[1:]), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "date":
		return Date(), nil
	case "bool", "boolean":
		return Bool(), nil
	case "number", "int", "float":
		return Number(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseSpec converts a decoded YAML/JSON description into a Type.
// Strings go through ParseType, mappings become objects (fields sorted by
// name, since decoded maps carry no order; use ParseNode to keep the written
// order) and a single-element list is an array of that element.
func ParseSpec(raw any) (Type, error) {
	switch v := raw.(type) {
	case string:
		return ParseType(v)
	case map[string]any:
		return ParseObject(v)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = item
		}
		return ParseObject(m)
	case []any:
		if len(v) != 1 {
			return nil, fmt.Errorf("expected single element list for array type")
		}
		elem, err := ParseSpec(v[0])
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	default:
		return nil, fmt.Errorf("expected type string, mapping or list, got %T", raw)
	}
}

// ParseObject converts a map of field names to type descriptions into an object.
// Example: {"title": "string", "tags": "[string]?"}
func ParseObject(fields map[string]any) (*ObjectType, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	obj := Object()
	for _, name := range names {
		t, err := ParseSpec(fields[name])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		obj.Add(F(name, t))
	}
	return obj, nil
}

// ParseNode converts a YAML node into a Type, like ParseSpec, but mappings
// keep their key order so object fields are declared as written.
func ParseNode(n *yaml.Node) (Type, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) != 1 {
			return nil, fmt.Errorf("expected a single YAML document")
		}
		return ParseNode(n.Content[0])
	case yaml.AliasNode:
		return ParseNode(n.Alias)
	case yaml.ScalarNode:
		return ParseType(n.Value)
	case yaml.MappingNode:
		return ParseObjectNode(n)
	case yaml.SequenceNode:
		if len(n.Content) != 1 {
			return nil, fmt.Errorf("line %d: expected single element list for array type", n.Line)
		}
		elem, err := ParseNode(n.Content[0])
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	default:
		return nil, fmt.Errorf("line %d: expected type string, mapping or list", n.Line)
	}
}

// ParseObjectNode converts a YAML mapping of field names to type
// descriptions into an object, with fields in mapping order.
func ParseObjectNode(n *yaml.Node) (*ObjectType, error) {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of fields", n.Line)
	}

	obj := Object()
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		t, err := ParseNode(n.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		obj.Add(F(name, t))
	}
	return obj, nil
}

// topLevelIndex finds sep outside brackets and parentheses.
func topLevelIndex(s string, sep byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
