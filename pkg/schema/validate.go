package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Validate checks raw against the object schema and coerces it into a Record.
//
// Fields are visited in declaration order and every failure is collected:
// a document with any error yields no record. Fields present in raw but not
// declared in the schema are ignored.
func Validate(obj *ObjectType, raw map[string]any) (Record, []*ValidationError) {
	v := &validator{}
	rec := v.object(obj, raw, "")
	if len(v.errs) > 0 {
		return Record{}, v.errs
	}
	return rec, nil
}

// Check is Validate for callers that only need an error.
// It returns an *AggregateError holding every *ValidationError.
func Check(obj *ObjectType, raw map[string]any) error {
	_, errs := Validate(obj, raw)
	if len(errs) == 0 {
		return nil
	}
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return &AggregateError{Errors: out}
}

// ValidateValue checks a single value against any type.
// A nil value is treated as absent.
func ValidateValue(t Type, value any) (any, []*ValidationError) {
	v := &validator{}
	out, ok := v.value(t, value, value != nil, "")
	if !ok {
		return nil, v.errs
	}
	return out, nil
}

type validator struct {
	errs []*ValidationError
}

func (v *validator) fail(path string, t Type, actual any, reason string) {
	e := &ValidationError{
		Path:     path,
		Expected: t.Name(),
		Actual:   actual,
		Reason:   reason,
	}
	if enum, ok := t.(*EnumType); ok {
		e.Allowed = enum.Values()
	}
	v.errs = append(v.errs, e)
}

func (v *validator) missing(path string, t Type) {
	v.errs = append(v.errs, &ValidationError{
		Path:     path,
		Expected: t.Name(),
		Missing:  true,
	})
}

func (v *validator) object(obj *ObjectType, raw map[string]any, prefix string) Record {
	rec := newRecord(len(obj.fields))
	for _, f := range obj.fields {
		val, present := raw[f.Name]
		out, ok := v.value(f.Type, val, present, joinPath(prefix, f.Name))
		if ok {
			rec.set(f.Name, out)
		}
	}
	return rec
}

// value returns the coerced value and whether it is usable.
// An explicit null counts as absent.
func (v *validator) value(t Type, raw any, present bool, path string) (any, bool) {
	if raw == nil || IsAbsent(raw) {
		present = false
	}

	switch tt := t.(type) {
	case *OptionalType:
		if !present {
			return Absent, true
		}
		return v.value(tt.inner, raw, true, path)
	case *DefaultType:
		if !present {
			return v.value(tt.inner, tt.value, tt.value != nil, path)
		}
		return v.value(tt.inner, raw, true, path)
	case *RefType:
		if tt.target == nil {
			v.fail(path, t, raw, "unresolved reference")
			return nil, false
		}
		return v.value(tt.target, raw, present, path)
	}

	if !present {
		v.missing(path, t)
		return nil, false
	}

	switch tt := t.(type) {
	case *PrimitiveType:
		out, err := coercePrimitive(tt.kind, raw)
		if err != nil {
			v.fail(path, t, raw, err.Error())
			return nil, false
		}
		return out, true
	case *EnumType:
		s, ok := raw.(string)
		if !ok || !tt.contains(s) {
			v.fail(path, t, raw, "")
			return nil, false
		}
		return s, true
	case *ArrayType:
		return v.array(tt, raw, path)
	case *ObjectType:
		m, ok := asMap(raw)
		if !ok {
			v.fail(path, t, raw, "")
			return nil, false
		}
		before := len(v.errs)
		rec := v.object(tt, m, path)
		return rec, len(v.errs) == before
	default:
		v.fail(path, t, raw, "unsupported type")
		return nil, false
	}
}

func (v *validator) array(t *ArrayType, raw any, path string) (any, bool) {
	items, ok := asSlice(raw)
	if !ok {
		v.fail(path, t, raw, "")
		return nil, false
	}

	out := make([]any, len(items))
	valid := true
	for i, item := range items {
		elem, ok := v.value(t.elem, item, item != nil, fmt.Sprintf("%s[%d]", path, i))
		if !ok {
			valid = false
			continue
		}
		out[i] = elem
	}
	return out, valid
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// --- Coercion ---

func coercePrimitive(kind Kind, raw any) (any, error) {
	switch kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("not a string")
		}
		return s, nil
	case KindBool:
		return coerceBool(raw)
	case KindNumber:
		return coerceNumber(raw)
	case KindDate:
		return coerceDate(raw)
	default:
		return nil, fmt.Errorf("unknown primitive")
	}
}

func coerceBool(raw any) (any, error) {
	switch val := raw.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("not a boolean literal")
	default:
		return nil, fmt.Errorf("not a boolean")
	}
}

func coerceNumber(raw any) (any, error) {
	var f float64
	switch val := raw.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int8:
		f = float64(val)
	case int16:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint8:
		f = float64(val)
	case uint16:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return nil, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("not a numeric literal")
		}
		f = parsed
	default:
		return nil, fmt.Errorf("not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("not a finite number")
	}
	return f, nil
}

func coerceDate(raw any) (any, error) {
	switch val := raw.(type) {
	case LocalDate:
		return val, nil
	case time.Time:
		return DateOf(val), nil
	case string:
		d, err := ParseDate(val)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("not a date")
	}
}

func asMap(raw any) (map[string]any, bool) {
	switch val := raw.(type) {
	case map[string]any:
		return val, true
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = item
		}
		return out, true
	case Record:
		out := make(map[string]any, len(val.keys))
		for _, k := range val.keys {
			if item := val.values[k]; !IsAbsent(item) {
				out[k] = item
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func asSlice(raw any) ([]any, bool) {
	switch val := raw.(type) {
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
