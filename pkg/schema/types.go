package schema

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Type.
type Kind int

const (
	KindString Kind = iota
	KindDate
	KindBool
	KindNumber
	KindEnum
	KindArray
	KindObject
	KindOptional
	KindDefault
	KindRef
)

// Type describes the expected shape of a single value.
// The set of implementations is closed: only this package can add variants,
// so the validator can switch over them exhaustively.
type Type interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Name returns the type-string form (e.g. "string", "[date]", "enum(a|b)").
	Name() string

	sealed()
}

// --- Primitives ---

// PrimitiveType is one of string, date, bool or number.
type PrimitiveType struct {
	kind Kind
}

func (t *PrimitiveType) Kind() Kind { return t.kind }

func (t *PrimitiveType) Name() string {
	switch t.kind {
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("primitive(%d)", t.kind)
	}
}

func (t *PrimitiveType) sealed() {}

// --- Enum ---

// EnumType accepts exactly one of a fixed set of strings.
type EnumType struct {
	values []string
}

func (t *EnumType) Kind() Kind { return KindEnum }

func (t *EnumType) Name() string {
	return "enum(" + strings.Join(t.values, "|") + ")"
}

// Values returns the allowed members in declaration order.
func (t *EnumType) Values() []string {
	out := make([]string, len(t.values))
	copy(out, t.values)
	return out
}

func (t *EnumType) contains(s string) bool {
	for _, v := range t.values {
		if v == s {
			return true
		}
	}
	return false
}

func (t *EnumType) sealed() {}

// --- Array ---

// ArrayType validates every element against Elem.
type ArrayType struct {
	elem Type
}

func (t *ArrayType) Kind() Kind   { return KindArray }
func (t *ArrayType) Name() string { return "[" + t.elem.Name() + "]" }
func (t *ArrayType) Elem() Type   { return t.elem }
func (t *ArrayType) sealed()      {}

// --- Object ---

// Field is a named member of an object.
type Field struct {
	Name string
	Type Type
}

// F is shorthand for Field{Name: name, Type: t}.
func F(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// ObjectType is an ordered list of fields. Validation visits fields in
// declaration order, which keeps error reports deterministic.
type ObjectType struct {
	fields []Field
}

func (t *ObjectType) Kind() Kind { return KindObject }

func (t *ObjectType) Name() string {
	parts := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		parts = append(parts, f.Name+": "+f.Type.Name())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Fields returns a copy of the declared fields.
func (t *ObjectType) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Field looks up a field by name.
func (t *ObjectType) Field(name string) (Field, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Add appends fields to the object in place.
func (t *ObjectType) Add(fields ...Field) *ObjectType {
	t.fields = append(t.fields, fields...)
	return t
}

// Extend returns a new object holding t's fields followed by fields.
// The receiver is not modified.
func (t *ObjectType) Extend(fields ...Field) *ObjectType {
	out := make([]Field, 0, len(t.fields)+len(fields))
	out = append(out, t.fields...)
	out = append(out, fields...)
	return &ObjectType{fields: out}
}

func (t *ObjectType) sealed() {}

// --- Optional ---

// OptionalType accepts an absent value and records it as Absent.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Kind() Kind   { return KindOptional }
func (t *OptionalType) Name() string { return t.inner.Name() + "?" }
func (t *OptionalType) Inner() Type  { return t.inner }
func (t *OptionalType) sealed()      {}

// --- Default ---

// DefaultType substitutes Value when the raw value is absent.
// The default is validated through Inner on every substitution, so records
// never share the default's backing storage.
type DefaultType struct {
	inner Type
	value any
}

func (t *DefaultType) Kind() Kind { return KindDefault }

func (t *DefaultType) Name() string {
	return fmt.Sprintf("%s = %s", t.inner.Name(), formatLiteral(t.value))
}

func (t *DefaultType) Inner() Type { return t.inner }
func (t *DefaultType) Value() any  { return t.value }
func (t *DefaultType) sealed()     {}

// --- Ref ---

// RefType points at a named definition held by a registry.
// It is unbound until the registry resolves it at registration time.
type RefType struct {
	name   string
	target Type
}

func (t *RefType) Kind() Kind      { return KindRef }
func (t *RefType) Name() string    { return "@" + t.name }
func (t *RefType) RefName() string { return t.name }
func (t *RefType) Target() Type    { return t.target }

// Bind points the reference at its definition.
func (t *RefType) Bind(target Type) { t.target = target }

func (t *RefType) sealed() {}

// --- Factory Functions ---

// String creates a string type.
func String() Type { return &PrimitiveType{kind: KindString} }

// Date creates a calendar-date type. Validated dates are LocalDate values.
func Date() Type { return &PrimitiveType{kind: KindDate} }

// Bool creates a boolean type.
func Bool() Type { return &PrimitiveType{kind: KindBool} }

// Number creates a numeric type. Validated numbers are float64.
func Number() Type { return &PrimitiveType{kind: KindNumber} }

// EnumOf creates a type accepting only the given strings.
func EnumOf(values ...string) *EnumType {
	vs := make([]string, len(values))
	copy(vs, values)
	return &EnumType{values: vs}
}

// ArrayOf creates an array type with elements of the given type.
func ArrayOf(elem Type) *ArrayType {
	return &ArrayType{elem: elem}
}

// Object creates an object type from ordered fields.
func Object(fields ...Field) *ObjectType {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return &ObjectType{fields: fs}
}

// Optional marks a type as not required.
func Optional(inner Type) *OptionalType {
	return &OptionalType{inner: inner}
}

// WithDefault marks a type as not required, substituting value when absent.
// value is given in raw form and goes through the same coercion as content.
func WithDefault(inner Type, value any) *DefaultType {
	return &DefaultType{inner: inner, value: value}
}

// Ref creates a reference to a named definition.
func Ref(name string) *RefType {
	return &RefType{name: name}
}

// Unwrap strips Optional, Default and bound Ref wrappers.
func Unwrap(t Type) Type {
	for {
		switch tt := t.(type) {
		case *OptionalType:
			t = tt.inner
		case *DefaultType:
			t = tt.inner
		case *RefType:
			if tt.target == nil {
				return t
			}
			t = tt.target
		default:
			return t
		}
	}
}

func formatLiteral(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}
