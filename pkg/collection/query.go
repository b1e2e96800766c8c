package collection

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
)

type direction int

const (
	dirDefault direction = iota
	dirAscending
	dirDescending
)

type query struct {
	sortBy  string
	dir     direction
	filters []func(Entry) bool
	limit   int
}

// QueryOption shapes the result of GetAll.
type QueryOption func(*query)

// SortBy orders entries by a declared field, stably. Nested fields use dots
// ("image.alt"). Date fields sort newest first and every other kind sorts
// ascending unless Ascending or Descending says otherwise. Entries where the
// field is absent come last in either direction.
func SortBy(field string) QueryOption {
	return func(q *query) {
		q.sortBy = field
	}
}

// Ascending forces ascending order for SortBy.
func Ascending() QueryOption {
	return func(q *query) {
		q.dir = dirAscending
	}
}

// Descending forces descending order for SortBy.
func Descending() QueryOption {
	return func(q *query) {
		q.dir = dirDescending
	}
}

// Where keeps only the entries for which keep returns true.
// Filters run before sorting and limiting.
func Where(keep func(Entry) bool) QueryOption {
	return func(q *query) {
		q.filters = append(q.filters, keep)
	}
}

// Limit keeps at most n entries after sorting. n <= 0 means no limit.
func Limit(n int) QueryOption {
	return func(q *query) {
		q.limit = n
	}
}

func newQuery(opts []QueryOption) *query {
	q := &query{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *query) apply(r *result) ([]Entry, error) {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if q.keep(e) {
			out = append(out, e)
		}
	}

	if q.sortBy != "" {
		t, err := fieldType(r.schema, q.sortBy)
		if err != nil {
			return nil, fmt.Errorf("collection %q: cannot sort by %q: %w", r.name, q.sortBy, err)
		}

		desc := q.dir == dirDescending
		if q.dir == dirDefault {
			desc = schema.Unwrap(t).Kind() == schema.KindDate
		}

		path := strings.Split(q.sortBy, ".")
		slices.SortStableFunc(out, func(a, b Entry) int {
			av, bv := lookupPath(a.Data, path), lookupPath(b.Data, path)
			aMissing, bMissing := schema.IsAbsent(av), schema.IsAbsent(bv)
			switch {
			case aMissing && bMissing:
				return 0
			case aMissing:
				return 1
			case bMissing:
				return -1
			}
			c := compareValues(av, bv)
			if desc {
				return -c
			}
			return c
		})
	}

	if q.limit > 0 && len(out) > q.limit {
		out = out[:q.limit]
	}
	return out, nil
}

func (q *query) keep(e Entry) bool {
	for _, f := range q.filters {
		if !f(e) {
			return false
		}
	}
	return true
}

// fieldType resolves a dotted path against the schema.
func fieldType(obj *schema.ObjectType, field string) (schema.Type, error) {
	var t schema.Type = obj
	for _, part := range strings.Split(field, ".") {
		o, ok := schema.Unwrap(t).(*schema.ObjectType)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an object", domain.ErrUnknownField, part)
		}
		f, ok := o.Field(part)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownField, part)
		}
		t = f.Type
	}
	switch schema.Unwrap(t).Kind() {
	case schema.KindObject, schema.KindArray:
		return nil, fmt.Errorf("%w: %s is not a scalar", domain.ErrUnknownField, field)
	}
	return t, nil
}

func lookupPath(rec schema.Record, path []string) any {
	var v any = rec
	for _, part := range path {
		r, ok := v.(schema.Record)
		if !ok {
			return schema.Absent
		}
		val, ok := r.Get(part)
		if !ok {
			return schema.Absent
		}
		v = val
	}
	if v == nil {
		return schema.Absent
	}
	return v
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case schema.LocalDate:
		if bv, ok := b.(schema.LocalDate); ok {
			return av.Compare(bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
