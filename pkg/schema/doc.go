// Package schema declares record shapes and validates raw documents against them.
//
// Types form a closed set: primitives (String, Date, Bool, Number), EnumOf,
// ArrayOf, Object, and the wrappers Optional, WithDefault and Ref. Objects keep
// their fields in declaration order.
//
// Basic usage:
//
//	post := schema.Object(
//	    schema.F("title", schema.String()),
//	    schema.F("date", schema.Date()),
//	    schema.F("tags", schema.Optional(schema.ArrayOf(schema.String()))),
//	)
//
//	rec, errs := schema.Validate(post, map[string]any{
//	    "title": "Hello",
//	    "date":  "2024-01-05",
//	})
//	// rec.Date("date") == schema.NewDate(2024, time.January, 5)
//	// rec.Value("tags") == schema.Absent
//
// Validation is exhaustive: every failing field produces a *ValidationError
// with a fully qualified path such as "experiences[2].company". Unknown fields
// in the raw document are ignored.
//
// Schemas can also be parsed from type strings:
//
//	typ, err := schema.ParseType("[string]?")
//	obj, err := schema.ParseObject(map[string]any{
//	    "title":    "string",
//	    "featured": "bool = false",
//	    "category": "enum(automation|testing|development)",
//	})
package schema
