package collection

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/loader"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
	"golang.org/x/sync/errgroup"
)

// Builder loads and validates every registered collection into a Store.
type Builder struct {
	registry    *registry.Registry
	source      ports.DocumentSource
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	concurrency int
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithHooks registers lifecycle callbacks fired during the build.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Builder) {
		b.hooks = hooks
	}
}

// WithConcurrency bounds how many collections, and how many documents per
// collection, are validated at once. n <= 0 uses GOMAXPROCS; 1 is sequential.
// The resulting Store is the same for every n.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		b.concurrency = n
	}
}

// NewBuilder creates a builder over a registry and a document source.
func NewBuilder(reg *registry.Registry, src ports.DocumentSource, opts ...Option) *Builder {
	b := &Builder{
		registry:    reg,
		source:      src,
		logger:      logging.NewNop(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.concurrency <= 0 {
		b.concurrency = runtime.GOMAXPROCS(0)
	}
	return b
}

// Build freezes the registry, then loads and validates every registered
// collection.
//
// The returned error is reserved for failures that prevent building at all:
// a cancelled context, a source that cannot list its collections, or a
// collection in the source that has no registered schema. Document failures
// are recorded per collection in the Store; see Store.Err.
func (b *Builder) Build(ctx context.Context) (*Store, error) {
	b.registry.Freeze()

	if err := b.checkDrift(ctx); err != nil {
		return nil, err
	}

	names := b.registry.Names()
	results := make([]*result, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, name := range names {
		g.Go(func() error {
			res, err := b.buildCollection(gctx, name)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store := newStore(results)
	if err := store.Err(); err != nil {
		b.logger.Warn("Build finished with errors", "collections", len(names), "failed", len(store.Errors()))
	} else {
		b.logger.Info("Build finished", "collections", len(names))
	}
	return store, nil
}

// checkDrift fails when the source holds a collection the registry does not know.
func (b *Builder) checkDrift(ctx context.Context) error {
	available, err := b.source.Collections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	known := b.registry.Names()
	for _, name := range available {
		if !b.registry.Has(name) {
			sorted := slices.Clone(known)
			slices.Sort(sorted)
			return &domain.UnknownCollectionError{Name: name, Known: sorted}
		}
	}
	return nil
}

// slot is one position in loader order: a document to validate or a load failure.
type slot struct {
	doc     domain.RawDocument
	loadErr error
	entry   Entry
	errs    []*schema.ValidationError
}

func (b *Builder) buildCollection(ctx context.Context, name string) (*result, error) {
	start := time.Now()
	obj, err := b.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	var slots []*slot
	for doc, err := range loader.Load(ctx, b.source, name) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slots = append(slots, &slot{doc: doc, loadErr: err})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for _, s := range slots {
		if s.loadErr != nil {
			continue
		}
		g.Go(func() error {
			b.validate(gctx, name, obj, s)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &result{name: name, schema: obj}
	var errs []error
	failed := 0
	for _, s := range slots {
		switch {
		case s.loadErr != nil:
			failed++
			errs = append(errs, s.loadErr)
		case len(s.errs) > 0:
			failed++
			for _, e := range s.errs {
				errs = append(errs, e)
			}
		default:
			res.entries = append(res.entries, s.entry)
		}
	}
	if len(errs) > 0 {
		res.entries = nil
		res.err = &domain.CollectionValidationError{Collection: name, Documents: failed, Errors: errs}
	}

	evt := &domain.CollectionEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventCollectionBuilt},
		Collection: name,
		Documents:  len(slots),
		Failed:     failed,
		Errors:     len(errs),
		Duration:   time.Since(start),
	}
	if b.hooks.OnCollection != nil {
		b.hooks.OnCollection(ctx, evt)
	}

	if res.err != nil {
		b.logger.Warn("Collection failed validation", "collection", name, "documents", len(slots), "failed", failed, "errors", len(errs))
	} else {
		b.logger.Debug("Collection built", "collection", name, "documents", len(slots), "duration", evt.Duration)
	}
	return res, nil
}

func (b *Builder) validate(ctx context.Context, collection string, obj *schema.ObjectType, s *slot) {
	start := time.Now()
	rec, errs := schema.Validate(obj, s.doc.Fields)
	for _, e := range errs {
		e.Collection = collection
		e.Document = s.doc.ID
	}
	s.errs = errs
	if len(errs) == 0 {
		s.entry = Entry{
			ID:         s.doc.ID,
			Collection: collection,
			Path:       s.doc.Path,
			Data:       rec,
			Body:       s.doc.Body,
		}
	}

	if b.hooks.OnDocument != nil {
		b.hooks.OnDocument(ctx, &domain.DocumentEvent{
			EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventDocumentValidated},
			Collection: collection,
			DocumentID: s.doc.ID,
			Valid:      len(errs) == 0,
			Errors:     len(errs),
			Duration:   time.Since(start),
		})
	}
}
