package tests

import (
	"context"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// DocumentSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.DocumentSource.
// setupData maps collection name to the document IDs expected in enumeration order.
func DocumentSourceContractTest(t *testing.T, source ports.DocumentSource, setupData map[string][]string) {
	t.Helper()
	ctx := context.Background()

	collect := func(t *testing.T, collection string) []domain.RawDocument {
		t.Helper()
		var docs []domain.RawDocument
		for doc, err := range source.Documents(ctx, collection) {
			if err != nil {
				t.Fatalf("unexpected error loading %s: %v", collection, err)
			}
			docs = append(docs, doc)
		}
		return docs
	}

	// 1. Test Collections
	t.Run("Collections", func(t *testing.T) {
		names, err := source.Collections(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing collections: %v", err)
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}
		for name := range setupData {
			if !lookup[name] {
				t.Errorf("collection %s missing from list %v", name, names)
			}
		}

		for i := 1; i < len(names); i++ {
			if names[i-1] > names[i] {
				t.Errorf("collections not sorted: %v", names)
				break
			}
		}
	})

	// 2. Test Documents (order and identity)
	t.Run("Documents", func(t *testing.T) {
		for collection, wantIDs := range setupData {
			docs := collect(t, collection)
			if len(docs) != len(wantIDs) {
				t.Fatalf("%s: expected %d documents, got %d", collection, len(wantIDs), len(docs))
			}
			for i, doc := range docs {
				if doc.ID != wantIDs[i] {
					t.Errorf("%s[%d]: id = %q, want %q", collection, i, doc.ID, wantIDs[i])
				}
				if doc.Collection != collection {
					t.Errorf("%s/%s: collection = %q", collection, doc.ID, doc.Collection)
				}
				if doc.Fields == nil {
					t.Errorf("%s/%s: fields must not be nil", collection, doc.ID)
				}
			}
		}
	})

	// 3. Test Restartable
	t.Run("Documents_Restartable", func(t *testing.T) {
		for collection := range setupData {
			first := collect(t, collection)
			second := collect(t, collection)
			if len(first) != len(second) {
				t.Fatalf("%s: second enumeration returned %d documents, first %d", collection, len(second), len(first))
			}
			for i := range first {
				if first[i].ID != second[i].ID {
					t.Errorf("%s[%d]: unstable order %q vs %q", collection, i, first[i].ID, second[i].ID)
				}
			}
		}
	})

	// 4. Test early stop
	t.Run("Documents_EarlyStop", func(t *testing.T) {
		for collection, ids := range setupData {
			if len(ids) == 0 {
				continue
			}
			count := 0
			for range source.Documents(ctx, collection) {
				count++
				break
			}
			if count != 1 {
				t.Errorf("%s: expected to stop after one document, got %d", collection, count)
			}
		}
	})

	// 5. Test unknown collection
	t.Run("Documents_UnknownCollection", func(t *testing.T) {
		docs := collect(t, "non-existent-collection")
		if len(docs) != 0 {
			t.Errorf("expected no documents for unknown collection, got %d", len(docs))
		}
	})
}
