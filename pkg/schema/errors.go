package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Collection string   // Set by the collection builder; empty for bare Validate calls
	Document   string   // Set by the collection builder; empty for bare Validate calls
	Path       string   // Fully qualified field path, e.g. "experiences[2].company"
	Expected   string   // Type-string of the expected type
	Actual     any      // The value that failed validation (nil when Missing)
	Missing    bool     // Required value was absent
	Allowed    []string // Enum members, when the expected type is an enum
	Reason     string   // Extra detail from coercion, if any
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Collection != "" || e.Document != "" {
		fmt.Fprintf(&b, "%s/%s: ", e.Collection, e.Document)
	}
	fmt.Fprintf(&b, "field %q: ", e.Path)

	switch {
	case e.Missing:
		fmt.Fprintf(&b, "missing (expected %s)", e.Expected)
	case len(e.Allowed) > 0:
		fmt.Fprintf(&b, "expected one of [%s], got %s", strings.Join(e.Allowed, ", "), describeActual(e.Actual))
	default:
		fmt.Fprintf(&b, "expected %s, got %s", e.Expected, describeActual(e.Actual))
	}

	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

// ActualString renders the offending value for reports.
func (e *ValidationError) ActualString() string {
	if e.Missing {
		return "missing"
	}
	return describeActual(e.Actual)
}

func describeActual(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q (string)", val)
	default:
		return fmt.Sprintf("%v (%T)", val, val)
	}
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns every *ValidationError carried by err, looking
// through aggregates and joined errors. Returns nil if there are none.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	var visit func(error)
	visit = func(err error) {
		if err == nil {
			return
		}
		if ve, ok := err.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range multi.Unwrap() {
				visit(inner)
			}
			return
		}
		if inner := errors.Unwrap(err); inner != nil {
			visit(inner)
		}
	}
	visit(err)
	return out
}
