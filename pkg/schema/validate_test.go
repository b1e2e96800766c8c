package schema

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blogSchema() *ObjectType {
	return Object(
		F("title", String()),
		F("date", Date()),
		F("tags", Optional(ArrayOf(String()))),
	)
}

func experienceSchema() *ObjectType {
	entry := Object(
		F("company", String()),
		F("role", String()),
		F("period", String()),
	)
	return Object(
		F("title", String()),
		F("experiences", ArrayOf(entry)),
		F("education", entry),
	)
}

func TestValidate_Success(t *testing.T) {
	rec, errs := Validate(blogSchema(), map[string]any{
		"title": "Hello",
		"date":  "2024-01-05",
	})
	require.Empty(t, errs)

	assert.Equal(t, []string{"title", "date", "tags"}, rec.Keys())
	assert.Equal(t, "Hello", rec.Text("title"))
	assert.Equal(t, NewDate(2024, time.January, 5), rec.Date("date"))
	assert.True(t, IsAbsent(rec.Value("tags")), "absent optional must be marked Absent")
	assert.False(t, rec.Has("tags"))
}

func TestValidate_MissingField(t *testing.T) {
	rec, errs := Validate(blogSchema(), map[string]any{
		"date": "2024-01-05",
	})
	require.Len(t, errs, 1)
	assert.Equal(t, 0, rec.Len(), "no record when validation fails")

	assert.Equal(t, "title", errs[0].Path)
	assert.True(t, errs[0].Missing)
	assert.Equal(t, "string", errs[0].Expected)
	assert.Contains(t, errs[0].Error(), "missing")
}

func TestValidate_NullIsAbsent(t *testing.T) {
	rec, errs := Validate(blogSchema(), map[string]any{
		"title": "Hello",
		"date":  "2024-01-05",
		"tags":  nil,
	})
	require.Empty(t, errs)
	assert.True(t, IsAbsent(rec.Value("tags")))

	_, errs = Validate(blogSchema(), map[string]any{
		"title": nil,
		"date":  "2024-01-05",
	})
	require.Len(t, errs, 1)
	assert.True(t, errs[0].Missing)
}

func TestValidate_Defaults(t *testing.T) {
	obj := Object(
		F("featured", WithDefault(Bool(), false)),
		F("status", WithDefault(EnumOf("draft", "published"), "draft")),
		F("published", WithDefault(Date(), "2020-02-02")),
		F("labels", WithDefault(ArrayOf(String()), []any{"misc"})),
	)

	rec, errs := Validate(obj, map[string]any{})
	require.Empty(t, errs)
	assert.Equal(t, false, rec.Value("featured"))
	assert.Equal(t, "draft", rec.Text("status"))
	assert.Equal(t, NewDate(2020, time.February, 2), rec.Date("published"))
	assert.Equal(t, []string{"misc"}, rec.Strings("labels"))

	// Records never share the default's storage.
	rec.List("labels")[0] = "changed"
	again, errs := Validate(obj, map[string]any{})
	require.Empty(t, errs)
	assert.Equal(t, []string{"misc"}, again.Strings("labels"))

	// Present values override the default.
	rec, errs = Validate(obj, map[string]any{"featured": true, "status": "published"})
	require.Empty(t, errs)
	assert.True(t, rec.Bool("featured"))
	assert.Equal(t, "published", rec.Text("status"))
}

func TestValidate_Coercion(t *testing.T) {
	obj := Object(
		F("when", Date()),
		F("count", Number()),
		F("active", Bool()),
	)

	rec, errs := Validate(obj, map[string]any{
		"when":   time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC),
		"count":  json.Number("12"),
		"active": "true",
	})
	require.Empty(t, errs)
	assert.Equal(t, NewDate(2023, time.June, 1), rec.Date("when"))
	assert.Equal(t, 12.0, rec.Number("count"))
	assert.True(t, rec.Bool("active"))

	_, errs = Validate(obj, map[string]any{
		"when":   "last week",
		"count":  "a dozen",
		"active": "maybe",
	})
	require.Len(t, errs, 3)
	assert.Equal(t, "when", errs[0].Path)
	assert.Equal(t, "date", errs[0].Expected)
	assert.Equal(t, "count", errs[1].Path)
	assert.Equal(t, "number", errs[1].Expected)
	assert.Equal(t, "active", errs[2].Path)
	assert.Equal(t, "bool", errs[2].Expected)
}

func TestValidate_Enum(t *testing.T) {
	obj := Object(F("category", EnumOf("automation", "testing", "development")))

	_, errs := Validate(obj, map[string]any{"category": "design"})
	require.Len(t, errs, 1)
	assert.Equal(t, "category", errs[0].Path)
	assert.Equal(t, []string{"automation", "testing", "development"}, errs[0].Allowed)
	assert.Equal(t, "design", errs[0].Actual)

	msg := errs[0].Error()
	for _, v := range []string{"automation", "testing", "development"} {
		assert.Contains(t, msg, v)
	}
}

func TestValidate_NestedPaths(t *testing.T) {
	raw := map[string]any{
		"title": "Experience",
		"experiences": []any{
			map[string]any{"company": "A", "role": "Dev", "period": "2019"},
			map[string]any{"company": "B", "role": "Dev", "period": "2020"},
			map[string]any{"role": "Lead", "period": "2021"},
		},
		"education": map[string]any{"company": "Uni", "period": "2015"},
	}

	_, errs := Validate(experienceSchema(), raw)
	require.Len(t, errs, 2)

	assert.Equal(t, "experiences[2].company", errs[0].Path)
	assert.True(t, errs[0].Missing)
	assert.Equal(t, "education.role", errs[1].Path)
	assert.True(t, errs[1].Missing)
}

func TestValidate_ArrayElementType(t *testing.T) {
	obj := Object(F("tags", ArrayOf(String())))

	_, errs := Validate(obj, map[string]any{"tags": []any{"go", 7, "yaml", false}})
	require.Len(t, errs, 2)
	assert.Equal(t, "tags[1]", errs[0].Path)
	assert.Equal(t, "tags[3]", errs[1].Path)
}

func TestValidate_WrongContainerTypes(t *testing.T) {
	_, errs := Validate(experienceSchema(), map[string]any{
		"title":       "Experience",
		"experiences": "none",
		"education":   []any{"Uni"},
	})
	require.Len(t, errs, 2)
	assert.Equal(t, "experiences", errs[0].Path)
	assert.Equal(t, "[{company: string, role: string, period: string}]", errs[0].Expected)
	assert.Equal(t, "education", errs[1].Path)
}

func TestValidate_UnknownFieldsIgnored(t *testing.T) {
	rec, errs := Validate(blogSchema(), map[string]any{
		"title":   "Hello",
		"date":    "2024-01-05",
		"draft":   true,
		"layout":  "../layouts/Post.astro",
		"extra":   map[string]any{"nested": []any{1, 2}},
		"another": nil,
	})
	require.Empty(t, errs)
	assert.Equal(t, []string{"title", "date", "tags"}, rec.Keys())
	_, ok := rec.Get("draft")
	assert.False(t, ok)
}

func TestValidate_Exhaustive(t *testing.T) {
	_, errs := Validate(blogSchema(), map[string]any{
		"date": 12,
		"tags": []any{"ok", 3},
	})
	require.Len(t, errs, 3)

	paths := []string{errs[0].Path, errs[1].Path, errs[2].Path}
	assert.Equal(t, []string{"title", "date", "tags[1]"}, paths)
}

func TestValidate_RoundTrip(t *testing.T) {
	obj := Object(
		F("title", String()),
		F("date", Date()),
		F("score", Number()),
		F("featured", WithDefault(Bool(), false)),
		F("tags", Optional(ArrayOf(String()))),
		F("links", ArrayOf(Object(F("label", String()), F("url", Optional(String()))))),
		F("image", Object(F("url", String()), F("alt", String()))),
	)

	first, errs := Validate(obj, map[string]any{
		"title": "Hello",
		"date":  time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		"score": 4,
		"links": []any{map[string]any{"label": "home"}},
		"image": map[string]any{"url": "/a.png", "alt": "A"},
	})
	require.Empty(t, errs)

	second, errs := Validate(obj, first.Raw())
	require.Empty(t, errs)
	assert.Equal(t, first, second)

	// Already-validated records are accepted as-is.
	third, errs := Validate(obj, first.Map())
	require.Empty(t, errs)
	assert.Equal(t, first, third)
}

func TestValidate_UnresolvedRef(t *testing.T) {
	obj := Object(F("image", Ref("image")))

	_, errs := Validate(obj, map[string]any{"image": map[string]any{}})
	require.Len(t, errs, 1)
	assert.Equal(t, "unresolved reference", errs[0].Reason)
}

func TestValidate_BoundRef(t *testing.T) {
	ref := Ref("image")
	ref.Bind(Object(F("url", String()), F("alt", String())))
	obj := Object(F("cover", ref), F("thumb", Optional(ref)))

	rec, errs := Validate(obj, map[string]any{
		"cover": map[string]any{"url": "/c.png", "alt": "cover"},
	})
	require.Empty(t, errs)
	assert.Equal(t, "/c.png", rec.Record("cover").Text("url"))
	assert.False(t, rec.Has("thumb"))

	_, errs = Validate(obj, map[string]any{"cover": map[string]any{"url": "/c.png"}})
	require.Len(t, errs, 1)
	assert.Equal(t, "cover.alt", errs[0].Path)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(blogSchema(), map[string]any{"title": "a", "date": "2024-01-01"}))

	err := Check(blogSchema(), map[string]any{})
	require.Error(t, err)

	aggr, ok := err.(*AggregateError)
	require.True(t, ok, "error should be *AggregateError, got %T", err)
	assert.Len(t, aggr.Errors, 2)
	assert.Len(t, ValidationErrors(err), 2)
	assert.True(t, strings.HasPrefix(err.Error(), "2 validation errors"))
}

func TestValidationError_String(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{
			&ValidationError{Path: "title", Expected: "string", Missing: true},
			`field "title": missing (expected string)`,
		},
		{
			&ValidationError{Collection: "blog", Document: "hello", Path: "date", Expected: "date", Actual: "soon", Reason: `invalid date "soon": want YYYY-MM-DD`},
			`blog/hello: field "date": expected date, got "soon" (string): invalid date "soon": want YYYY-MM-DD`,
		},
		{
			&ValidationError{Path: "category", Expected: "enum(a|b)", Actual: "c", Allowed: []string{"a", "b"}},
			`field "category": expected one of [a, b], got "c" (string)`,
		},
		{
			&ValidationError{Path: "count", Expected: "number", Actual: true},
			`field "count": expected number, got true (bool)`,
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}
