package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCollection is returned when a collection name has no registered schema.
var ErrUnknownCollection = errors.New("unknown collection")

// ErrDuplicateCollection is returned when a collection name is registered twice.
var ErrDuplicateCollection = errors.New("duplicate collection")

// ErrSchemaCycle is returned when a schema references itself, directly or transitively.
var ErrSchemaCycle = errors.New("schema cycle")

// ErrInvalidSchema is returned for schema declarations that can never validate
// (duplicate field names, unknown definitions, defaults that fail their own type).
var ErrInvalidSchema = errors.New("invalid schema")

// ErrRegistryFrozen is returned when the registry is modified after the build started.
var ErrRegistryFrozen = errors.New("registry is frozen")

// ErrDocumentParse is returned when a document's structured data cannot be parsed.
var ErrDocumentParse = errors.New("document parse error")

// ErrDuplicateDocument is returned when two documents of a collection share an ID.
var ErrDuplicateDocument = errors.New("duplicate document")

// ErrNotFound is returned when a document ID is not present in a collection.
var ErrNotFound = errors.New("not found")

// ErrUnknownField is returned when a query names a field the collection schema does not declare.
var ErrUnknownField = errors.New("unknown field")

// ErrInvalidCollection is returned when a collection has documents that failed to load or validate.
var ErrInvalidCollection = errors.New("collection validation failed")

// --- Registry-time errors ---

// UnknownCollectionError reports a lookup of an unregistered collection.
type UnknownCollectionError struct {
	Name  string
	Known []string
}

func (e *UnknownCollectionError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown collection %q", e.Name)
	}
	return fmt.Sprintf("unknown collection %q (registered: %s)", e.Name, strings.Join(e.Known, ", "))
}

func (e *UnknownCollectionError) Is(target error) bool { return target == ErrUnknownCollection }

// DuplicateCollectionError reports a second registration under the same name.
type DuplicateCollectionError struct {
	Name string
}

func (e *DuplicateCollectionError) Error() string {
	return fmt.Sprintf("collection %q is already registered", e.Name)
}

func (e *DuplicateCollectionError) Is(target error) bool { return target == ErrDuplicateCollection }

// SchemaCycleError reports a schema that reaches itself. Chain lists the
// definitions or field paths along the cycle, ending where it started.
type SchemaCycleError struct {
	Collection string
	Chain      []string
}

func (e *SchemaCycleError) Error() string {
	return fmt.Sprintf("collection %q: schema cycle: %s", e.Collection, strings.Join(e.Chain, " -> "))
}

func (e *SchemaCycleError) Is(target error) bool { return target == ErrSchemaCycle }

// SchemaError reports any other defect in a schema declaration.
type SchemaError struct {
	Collection string
	Path       string
	Reason     string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("collection %q: %s", e.Collection, e.Reason)
	}
	return fmt.Sprintf("collection %q: field %q: %s", e.Collection, e.Path, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// --- Load-time errors ---

// DocumentParseError reports unparsable structured data in one document.
// Line and Column are 1-based; zero means the position is unknown.
type DocumentParseError struct {
	Collection string
	Document   string
	Path       string
	Line       int
	Column     int
	Err        error
}

func (e *DocumentParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s: parse error", e.Collection, e.Document)
	if e.Path != "" {
		fmt.Fprintf(&b, " in %s", e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ", column %d", e.Column)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

func (e *DocumentParseError) Is(target error) bool { return target == ErrDocumentParse }

// DuplicateDocumentError reports a second document using an existing ID.
type DuplicateDocumentError struct {
	Collection string
	Document   string
	Path       string
	FirstPath  string
}

func (e *DuplicateDocumentError) Error() string {
	if e.Path == "" && e.FirstPath == "" {
		return fmt.Sprintf("%s/%s: duplicate document id", e.Collection, e.Document)
	}
	return fmt.Sprintf("%s/%s: duplicate document id (%s already defined by %s)", e.Collection, e.Document, e.Path, e.FirstPath)
}

func (e *DuplicateDocumentError) Is(target error) bool { return target == ErrDuplicateDocument }

// --- Access-time errors ---

// NotFoundError reports a missing document ID.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s/%s: document not found", e.Collection, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// CollectionValidationError aggregates every load and validation failure of
// one collection. Errors holds *schema.ValidationError, *DocumentParseError
// and *DuplicateDocumentError values in document order.
type CollectionValidationError struct {
	Collection string
	Documents  int // Number of documents that failed
	Errors     []error
}

func (e *CollectionValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("collection %q: %s", e.Collection, e.Errors[0].Error())
	}
	msg := fmt.Sprintf("collection %q: %d errors in %d documents:\n", e.Collection, len(e.Errors), e.Documents)
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *CollectionValidationError) Unwrap() []error { return e.Errors }

func (e *CollectionValidationError) Is(target error) bool { return target == ErrInvalidCollection }

// BuildError aggregates the failing collections of a build.
type BuildError struct {
	Collections []*CollectionValidationError
}

func (e *BuildError) Error() string {
	total := 0
	for _, c := range e.Collections {
		total += len(c.Errors)
	}
	msg := fmt.Sprintf("build failed: %d errors in %d collections", total, len(e.Collections))
	for _, c := range e.Collections {
		for _, err := range c.Errors {
			msg += "\n  - " + err.Error()
		}
	}
	return msg
}

func (e *BuildError) Unwrap() []error {
	out := make([]error, len(e.Collections))
	for i, c := range e.Collections {
		out[i] = c
	}
	return out
}
