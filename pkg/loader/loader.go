// Package loader turns a DocumentSource into the per-collection document
// stream the builder validates: it stamps the collection name and enforces
// unique document IDs.
package loader

import (
	"context"
	"iter"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// Load yields the documents of collection from src.
//
// The first document with a given ID wins; every later one yields a
// *domain.DuplicateDocumentError and is dropped. Errors from the source pass
// through unchanged, and iteration always continues to the next document.
// Like the source, the returned sequence is lazy and restartable.
func Load(ctx context.Context, src ports.DocumentSource, collection string) iter.Seq2[domain.RawDocument, error] {
	return func(yield func(domain.RawDocument, error) bool) {
		seen := make(map[string]string)

		for doc, err := range src.Documents(ctx, collection) {
			if err != nil {
				if !yield(domain.RawDocument{}, err) {
					return
				}
				continue
			}

			doc.Collection = collection
			if doc.Fields == nil {
				doc.Fields = make(map[string]any)
			}

			if first, dup := seen[doc.ID]; dup {
				err := &domain.DuplicateDocumentError{
					Collection: collection,
					Document:   doc.ID,
					Path:       doc.Path,
					FirstPath:  first,
				}
				if !yield(domain.RawDocument{}, err) {
					return
				}
				continue
			}
			seen[doc.ID] = doc.Path

			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Collect drains Load into slices, for callers that need every document.
func Collect(ctx context.Context, src ports.DocumentSource, collection string) ([]domain.RawDocument, []error) {
	var docs []domain.RawDocument
	var errs []error
	for doc, err := range Load(ctx, src, collection) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errs
}
