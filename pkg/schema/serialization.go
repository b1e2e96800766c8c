package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON describes the object as field names mapped to type strings,
// in declaration order. Nested objects (and arrays of objects) are written
// as nested descriptions.
func (t *ObjectType) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range t.fields {
		if f.Type == nil {
			return nil, fmt.Errorf("field %s: type is nil", f.Name)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		desc, err := json.Marshal(describe(f.Type))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		buf.Write(desc)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the description written by MarshalJSON.
func (t *ObjectType) UnmarshalJSON(data []byte) error {
	if t == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParseObject(raw)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

func describe(t Type) any {
	switch tt := t.(type) {
	case *ObjectType:
		return tt
	case *ArrayType:
		if obj, ok := tt.elem.(*ObjectType); ok {
			return []any{obj}
		}
	}
	return t.Name()
}

// Describe returns the type string of t, in the form ParseType accepts.
func Describe(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}
