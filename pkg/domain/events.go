package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDocumentValidated EventType = "document_validated"
	EventCollectionBuilt   EventType = "collection_built"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// DocumentEvent is emitted once per loaded document.
type DocumentEvent struct {
	EventBase
	Collection string        `json:"collection"`
	DocumentID string        `json:"document_id"`
	Valid      bool          `json:"valid"`
	Errors     int           `json:"errors,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// CollectionEvent is emitted once per collection after all its documents are processed.
type CollectionEvent struct {
	EventBase
	Collection string        `json:"collection"`
	Documents  int           `json:"documents"`
	Failed     int           `json:"failed"`
	Errors     int           `json:"errors"`
	Duration   time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for build observability.
// Hooks may be called from multiple goroutines when the build runs in parallel.
type LifecycleHooks struct {
	OnDocument   func(context.Context, *DocumentEvent)
	OnCollection func(context.Context, *CollectionEvent)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDocument: func(ctx context.Context, e *DocumentEvent) {
			if h.OnDocument != nil {
				h.OnDocument(ctx, e)
			}
			if other.OnDocument != nil {
				other.OnDocument(ctx, e)
			}
		},
		OnCollection: func(ctx context.Context, e *CollectionEvent) {
			if h.OnCollection != nil {
				h.OnCollection(ctx, e)
			}
			if other.OnCollection != nil {
				other.OnCollection(ctx, e)
			}
		},
	}
}
