package ports

import (
	"context"
	"iter"

	"github.com/aretw0/lattice/pkg/domain"
)

// DocumentSource defines how the builder retrieves raw content documents.
// This allows the storage layer (filesystem, Loam, memory) to be decoupled.
type DocumentSource interface {
	// Collections lists the collection names the source can enumerate, sorted.
	Collections(ctx context.Context) ([]string, error)

	// Documents yields the raw documents of one collection in a stable order.
	// The sequence is lazy and restartable: each call re-reads the source.
	// A non-nil error is a per-document failure (typically a
	// *domain.DocumentParseError) and iteration continues with the next
	// document. A collection the source does not know yields nothing.
	Documents(ctx context.Context, collection string) iter.Seq2[domain.RawDocument, error]
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is used by watch mode to trigger a rebuild.
type Watchable interface {
	// Watch returns a channel that receives the path or ID of each changed document.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
