package memory

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

// Source implements ports.DocumentSource over documents held in memory.
// Documents are yielded in insertion order.
type Source struct {
	mu   sync.RWMutex
	docs map[string][]domain.RawDocument
	errs map[string][]error
}

// NewSource creates a Source preloaded with docs.
func NewSource(docs ...domain.RawDocument) *Source {
	s := &Source{
		docs: make(map[string][]domain.RawDocument),
		errs: make(map[string][]error),
	}
	for _, d := range docs {
		s.Put(d)
	}
	return s
}

// NewFromMaps builds a Source from collection -> id -> fields, ordering
// documents by ID. This improves DX for tests.
func NewFromMaps(data map[string]map[string]map[string]any) *Source {
	s := NewSource()
	for _, collection := range slices.Sorted(maps.Keys(data)) {
		docs := data[collection]
		for _, id := range slices.Sorted(maps.Keys(docs)) {
			s.Put(domain.RawDocument{Collection: collection, ID: id, Fields: docs[id]})
		}
	}
	return s
}

// Put appends a document to its collection.
func (s *Source) Put(doc domain.RawDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Fields == nil {
		doc.Fields = make(map[string]any)
	}
	s.docs[doc.Collection] = append(s.docs[doc.Collection], doc)
}

// Fail appends a per-document failure that Documents yields after the
// collection's documents. Used to simulate unparsable content.
func (s *Source) Fail(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[collection] = append(s.errs[collection], err)
}

// Collections returns every collection with at least one document or failure.
func (s *Source) Collections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[string]bool)
	for name := range s.docs {
		names[name] = true
	}
	for name := range s.errs {
		names[name] = true
	}
	return slices.Sorted(maps.Keys(names)), nil
}

// Documents yields a snapshot of the collection's documents.
func (s *Source) Documents(ctx context.Context, collection string) iter.Seq2[domain.RawDocument, error] {
	return func(yield func(domain.RawDocument, error) bool) {
		s.mu.RLock()
		docs := slices.Clone(s.docs[collection])
		errs := slices.Clone(s.errs[collection])
		s.mu.RUnlock()

		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				yield(domain.RawDocument{}, fmt.Errorf("load %s: %w", collection, err))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
		for _, err := range errs {
			if !yield(domain.RawDocument{}, err) {
				return
			}
		}
	}
}
