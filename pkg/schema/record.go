package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

type absent struct{}

func (absent) String() string { return "<absent>" }

// Absent marks an optional field that had no value in the document.
var Absent any = absent{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}

// Record is a validated document: every declared field is present, in
// declaration order, holding a typed value or Absent.
//
// Value representations: string, LocalDate, bool, float64, []any, Record.
type Record struct {
	keys   []string
	values map[string]any
}

func newRecord(size int) Record {
	return Record{
		keys:   make([]string, 0, size),
		values: make(map[string]any, size),
	}
}

func (r *Record) set(key string, v any) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Keys returns the field names in declaration order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of declared fields.
func (r Record) Len() int { return len(r.keys) }

// Value returns the stored value, Absent for absent optionals, nil for undeclared keys.
func (r Record) Value(key string) any {
	return r.values[key]
}

// Get returns the value and true if the key is declared and not absent.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	if !ok || IsAbsent(v) {
		return nil, false
	}
	return v, true
}

// Has reports whether key is declared and present.
func (r Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Text returns a string field, or "" if absent or of another type.
func (r Record) Text(key string) string {
	v, _ := r.Get(key)
	s, _ := v.(string)
	return s
}

// Date returns a date field, or the zero LocalDate.
func (r Record) Date(key string) LocalDate {
	v, _ := r.Get(key)
	d, _ := v.(LocalDate)
	return d
}

// Bool returns a boolean field, or false.
func (r Record) Bool(key string) bool {
	v, _ := r.Get(key)
	b, _ := v.(bool)
	return b
}

// Number returns a numeric field, or 0.
func (r Record) Number(key string) float64 {
	v, _ := r.Get(key)
	n, _ := v.(float64)
	return n
}

// Record returns a nested object field.
func (r Record) Record(key string) Record {
	v, _ := r.Get(key)
	rec, _ := v.(Record)
	return rec
}

// List returns an array field.
func (r Record) List(key string) []any {
	v, _ := r.Get(key)
	l, _ := v.([]any)
	return l
}

// Strings returns an array-of-string field.
func (r Record) Strings(key string) []string {
	list := r.List(key)
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Records returns an array-of-object field.
func (r Record) Records(key string) []Record {
	list := r.List(key)
	if list == nil {
		return nil
	}
	out := make([]Record, 0, len(list))
	for _, item := range list {
		if rec, ok := item.(Record); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Map converts the record into plain Go maps and slices.
// Absent fields are omitted; dates stay LocalDate.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		v := r.values[k]
		if IsAbsent(v) {
			continue
		}
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch val := v.(type) {
	case Record:
		return val.Map()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

// Raw converts the record back into the textual raw form a document would
// carry: dates become "YYYY-MM-DD" strings. Validating the result against the
// same schema reproduces an equal record.
func (r Record) Raw() map[string]any {
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		v := r.values[k]
		if IsAbsent(v) {
			continue
		}
		out[k] = rawValue(v)
	}
	return out
}

func rawValue(v any) any {
	switch val := v.(type) {
	case Record:
		return val.Raw()
	case LocalDate:
		return val.String()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = rawValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the record as a JSON object in declaration order.
// Absent fields are omitted.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range r.keys {
		v := r.values[k]
		if IsAbsent(v) {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode copies the record into out (a pointer to a struct or map) using
// mapstructure tags. LocalDate values decode into LocalDate, time.Time or
// string fields.
func (r Record) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: dateHook,
		Result:     out,
		TagName:    "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(r.Map()); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

var (
	localDateType = reflect.TypeOf(LocalDate{})
	timeType      = reflect.TypeOf(time.Time{})
)

func dateHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from != localDateType {
		return data, nil
	}
	d := data.(LocalDate)
	switch {
	case to == localDateType:
		return d, nil
	case to == timeType:
		return d.Time(), nil
	case to.Kind() == reflect.String:
		return d.String(), nil
	default:
		return data, nil
	}
}
