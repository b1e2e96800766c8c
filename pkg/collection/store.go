package collection

import (
	"slices"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
)

type result struct {
	name    string
	schema  *schema.ObjectType
	entries []Entry
	index   map[string]int
	err     *domain.CollectionValidationError
}

// Store holds the outcome of a build: the entries of every valid collection
// and the aggregated errors of every invalid one. It is immutable and safe
// for concurrent use.
type Store struct {
	order       []string
	collections map[string]*result
}

func newStore(results []*result) *Store {
	s := &Store{collections: make(map[string]*result, len(results))}
	for _, r := range results {
		r.index = make(map[string]int, len(r.entries))
		for i, e := range r.entries {
			r.index[e.ID] = i
		}
		s.order = append(s.order, r.name)
		s.collections[r.name] = r
	}
	return s
}

// Collections returns the collection names in registration order.
func (s *Store) Collections() []string {
	return slices.Clone(s.order)
}

func (s *Store) lookup(name string) (*result, error) {
	r, ok := s.collections[name]
	if !ok {
		known := slices.Clone(s.order)
		slices.Sort(known)
		return nil, &domain.UnknownCollectionError{Name: name, Known: known}
	}
	return r, nil
}

// Schema returns the schema a collection was validated against.
func (s *Store) Schema(name string) (*schema.ObjectType, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return r.schema, nil
}

// GetAll returns the entries of a collection in loader order, or sorted and
// filtered according to opts.
//
// If any document of the collection failed to load or validate, GetAll
// returns a *domain.CollectionValidationError holding every failure and no
// entries.
func (s *Store) GetAll(name string, opts ...QueryOption) ([]Entry, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}

	q := newQuery(opts)
	return q.apply(r)
}

// GetByID returns one entry of a collection.
// An invalid collection fails the same way as GetAll.
func (s *Store) GetByID(name, id string) (Entry, error) {
	r, err := s.lookup(name)
	if err != nil {
		return Entry{}, err
	}
	if r.err != nil {
		return Entry{}, r.err
	}
	i, ok := r.index[id]
	if !ok {
		return Entry{}, &domain.NotFoundError{Collection: name, ID: id}
	}
	return r.entries[i], nil
}

// Len returns the number of entries of a valid collection, or zero.
func (s *Store) Len(name string) int {
	if r, ok := s.collections[name]; ok {
		return len(r.entries)
	}
	return 0
}

// Errors returns the failures of every invalid collection, in registration order.
func (s *Store) Errors() []*domain.CollectionValidationError {
	var out []*domain.CollectionValidationError
	for _, name := range s.order {
		if err := s.collections[name].err; err != nil {
			out = append(out, err)
		}
	}
	return out
}

// Err returns a *domain.BuildError when any collection is invalid, or nil.
func (s *Store) Err() error {
	errs := s.Errors()
	if len(errs) == 0 {
		return nil
	}
	return &domain.BuildError{Collections: errs}
}
