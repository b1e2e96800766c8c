package schema

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestStringType(t *testing.T) {
	typ := String()

	if typ.Name() != "string" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "string")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"hello", false},
		{"", false},
		{42, true},
		{3.14, true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		_, errs := ValidateValue(typ, tt.value)
		if (len(errs) > 0) != tt.wantErr {
			t.Errorf("ValidateValue(%v) errors = %v, wantErr %v", tt.value, errs, tt.wantErr)
		}
	}
}

func TestNumberType(t *testing.T) {
	typ := Number()

	tests := []struct {
		value   any
		want    float64
		wantErr bool
	}{
		{42, 42, false},
		{int8(4), 4, false},
		{int64(42), 42, false},
		{uint16(7), 7, false},
		{3.5, 3.5, false},
		{float32(1.5), 1.5, false},
		{"12.25", 12.25, false},
		{" 3 ", 3, false},
		{"twelve", 0, true},
		{true, 0, true},
		{nil, 0, true},
	}

	for _, tt := range tests {
		got, errs := ValidateValue(typ, tt.value)
		if (len(errs) > 0) != tt.wantErr {
			t.Errorf("ValidateValue(%v) errors = %v, wantErr %v", tt.value, errs, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ValidateValue(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestBoolType(t *testing.T) {
	typ := Bool()

	tests := []struct {
		value   any
		want    bool
		wantErr bool
	}{
		{true, true, false},
		{false, false, false},
		{"true", true, false},
		{"FALSE", false, false},
		{"yes", false, true},
		{1, false, true},
		{nil, false, true},
	}

	for _, tt := range tests {
		got, errs := ValidateValue(typ, tt.value)
		if (len(errs) > 0) != tt.wantErr {
			t.Errorf("ValidateValue(%v) errors = %v, wantErr %v", tt.value, errs, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ValidateValue(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestDateType(t *testing.T) {
	typ := Date()
	want := NewDate(2024, time.January, 5)

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"2024-01-05", false},
		{"2024-01-05T23:30:00Z", false},
		{"2024-01-05T01:00:00+09:00", false},
		{"2024-01-05 08:00:00", false},
		{time.Date(2024, time.January, 5, 18, 0, 0, 0, time.UTC), false},
		{want, false},
		{"05/01/2024", true},
		{"2024-13-01", true},
		{20240105, true},
	}

	for _, tt := range tests {
		got, errs := ValidateValue(typ, tt.value)
		if (len(errs) > 0) != tt.wantErr {
			t.Errorf("ValidateValue(%v) errors = %v, wantErr %v", tt.value, errs, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != want {
			t.Errorf("ValidateValue(%v) = %v, want %v", tt.value, got, want)
		}
	}
}

func TestEnumType(t *testing.T) {
	typ := EnumOf("automation", "testing", "development")

	if typ.Name() != "enum(automation|testing|development)" {
		t.Errorf("Name() = %q", typ.Name())
	}

	if _, errs := ValidateValue(typ, "testing"); len(errs) != 0 {
		t.Errorf("member rejected: %v", errs)
	}

	_, errs := ValidateValue(typ, "design")
	if len(errs) != 1 {
		t.Fatalf("ValidateValue(design) = %d errors, want 1", len(errs))
	}
	if len(errs[0].Allowed) != 3 {
		t.Errorf("Allowed = %v, want the three members", errs[0].Allowed)
	}
}

func TestArrayType(t *testing.T) {
	strings := ArrayOf(String())
	nested := ArrayOf(ArrayOf(String()))

	tests := []struct {
		typ     Type
		value   any
		wantErr bool
		desc    string
	}{
		{strings, []string{"a", "b"}, false, "string slice"},
		{strings, []string{}, false, "empty string slice"},
		{strings, []any{"a", "b"}, false, "any slice with strings"},
		{strings, []int{1, 2}, true, "slice of ints when expecting strings"},
		{strings, "not a slice", true, "string instead of slice"},
		{nested, [][]string{{"a"}, {"b", "c"}}, false, "nested string slice"},
		{nested, []any{[]any{"a"}, "b"}, true, "nested with scalar element"},
	}

	for _, tt := range tests {
		_, errs := ValidateValue(tt.typ, tt.value)
		if (len(errs) > 0) != tt.wantErr {
			t.Errorf("%s: ValidateValue(%v) errors = %v, wantErr %v", tt.desc, tt.value, errs, tt.wantErr)
		}
	}
}

func TestTypeNames(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Optional(ArrayOf(String())), "[string]?"},
		{WithDefault(Bool(), false), "bool = false"},
		{WithDefault(String(), "draft"), `string = "draft"`},
		{Ref("image"), "@image"},
		{Object(F("url", String()), F("alt", String())), "{url: string, alt: string}"},
	}

	for _, tt := range tests {
		if got := tt.typ.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	inner := Date()
	ref := Ref("when")
	ref.Bind(Optional(inner))

	if Unwrap(WithDefault(Optional(inner), nil)) != inner {
		t.Error("Unwrap should strip default and optional")
	}
	if Unwrap(ref) != inner {
		t.Error("Unwrap should follow bound references")
	}
	unbound := Ref("missing")
	if Unwrap(unbound) != unbound {
		t.Error("Unwrap should stop at unbound references")
	}
}

func TestObjectExtend(t *testing.T) {
	base := Object(F("title", String()))
	ext := base.Extend(F("date", Date()))

	if len(base.Fields()) != 1 {
		t.Errorf("Extend modified the receiver: %d fields", len(base.Fields()))
	}
	if len(ext.Fields()) != 2 {
		t.Errorf("Extend() = %d fields, want 2", len(ext.Fields()))
	}
	if _, ok := ext.Field("date"); !ok {
		t.Error("extended object should have date")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantErr  bool
		wantName string
	}{
		{"string", false, "string"},
		{"date", false, "date"},
		{"boolean", false, "bool"},
		{"int", false, "number"},
		{"[string]", false, "[string]"},
		{"[[date]]", false, "[[date]]"},
		{"[string]?", false, "[string]?"},
		{"bool = false", false, "bool = false"},
		{"string = draft", false, `string = "draft"`},
		{"enum(a | b|c)", false, "enum(a|b|c)"},
		{"@image", false, "@image"},
		{"enum()", true, ""},
		{"invalid", true, ""},
		{"[invalid]", true, ""},
		{"", true, ""},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q) Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
	}
}

func TestParseObject(t *testing.T) {
	obj, err := ParseObject(map[string]any{
		"title": "string",
		"image": map[string]any{"url": "string", "alt": "string"},
		"links": []any{map[string]any{"href": "string"}},
		"tags":  "[string]?",
	})
	if err != nil {
		t.Fatalf("ParseObject() error = %v", err)
	}

	want := "{image: {alt: string, url: string}, links: [{href: string}], tags: [string]?, title: string}"
	if obj.Name() != want {
		t.Errorf("Name() = %q, want %q", obj.Name(), want)
	}
}

func TestParseObjectError(t *testing.T) {
	_, err := ParseObject(map[string]any{"api_key": "invalid"})
	if err == nil {
		t.Fatal("ParseObject() should return error for invalid type")
	}

	_, err = ParseObject(map[string]any{"tags": []any{"string", "date"}})
	if err == nil {
		t.Fatal("ParseObject() should reject multi-element lists")
	}
}

func TestParseObjectNode(t *testing.T) {
	var node yaml.Node
	src := "title: string\nimage: {url: string, alt: string}\nlinks: [{href: string}]\ntags: \"[string]?\"\n"
	if err := yaml.Unmarshal([]byte(src), &node); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	obj, err := ParseObjectNode(&node)
	if err != nil {
		t.Fatalf("ParseObjectNode() error = %v", err)
	}

	want := "{title: string, image: {url: string, alt: string}, links: [{href: string}], tags: [string]?}"
	if obj.Name() != want {
		t.Errorf("Name() = %q, want %q", obj.Name(), want)
	}

	var bad yaml.Node
	if err := yaml.Unmarshal([]byte("tags: [string, date]\n"), &bad); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if _, err := ParseObjectNode(&bad); err == nil {
		t.Fatal("ParseObjectNode() should reject multi-element lists")
	}
}

func TestObjectJSON(t *testing.T) {
	obj := Object(
		F("title", String()),
		F("image", Object(F("url", String()), F("alt", String()))),
		F("items", ArrayOf(Object(F("name", String())))),
		F("featured", WithDefault(Bool(), false)),
	)

	data, err := obj.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	want := `{"title":"string","image":{"url":"string","alt":"string"},"items":[{"name":"string"}],"featured":"bool = false"}`
	if string(data) != want {
		t.Errorf("MarshalJSON() = %s, want %s", data, want)
	}

	var back ObjectType
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if len(back.Fields()) != 4 {
		t.Errorf("UnmarshalJSON() = %d fields, want 4", len(back.Fields()))
	}
}
