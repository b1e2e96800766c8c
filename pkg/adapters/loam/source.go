package loam

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/loam"
)

// Source adapts a Loam repository to the lattice DocumentSource interface.
// The first path segment of a Loam document ID names its collection:
// "blog/hello" (from blog/hello.md) is document "hello" of collection "blog".
type Source struct {
	Repo *loam.TypedRepository[EntryMetadata]
	root string
}

// Option configures a Source.
type Option func(*Source)

// WithRoot sets the repository directory, used to report the file path of
// each document. Without it the path is the Loam ID.
func WithRoot(dir string) Option {
	return func(s *Source) {
		s.root = dir
	}
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[EntryMetadata], opts ...Option) *Source {
	s := &Source{
		Repo: repo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// extensions mirrors the order in which Loam resolves an extensionless ID.
var extensions = []string{".md", ".json", ".yaml", ".yml", ".csv"}

type listed struct {
	collection string
	id         string
	loamID     string
}

// list enumerates collection documents without reading their content.
// Loam IDs are already extensionless.
func (s *Source) list(ctx context.Context) ([]listed, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make([]listed, 0, len(docs))
	for _, doc := range docs {
		p := path.Clean(strings.ReplaceAll(doc.ID, "\\", "/"))
		collection, rest, ok := strings.Cut(p, "/")
		if !ok || rest == "" {
			// Top-level documents belong to no collection.
			continue
		}
		out = append(out, listed{collection: collection, id: rest, loamID: doc.ID})
	}

	slices.SortFunc(out, func(a, b listed) int { return strings.Compare(a.loamID, b.loamID) })
	return out, nil
}

// read fetches one document; List carries metadata only, so the body needs a Get.
func (s *Source) read(ctx context.Context, collection string, d listed) (domain.RawDocument, error) {
	doc, err := s.Repo.Get(ctx, d.loamID)
	if err != nil {
		return domain.RawDocument{}, &domain.DocumentParseError{
			Collection: collection,
			Document:   d.id,
			Path:       s.filePath(d.loamID),
			Err:        fmt.Errorf("loam get failed for %s: %w", d.loamID, err),
		}
	}

	fields := make(map[string]any, len(doc.Data))
	for k, v := range doc.Data {
		fields[k] = v
	}

	id := d.id
	if slug, ok := fields[domain.SlugKey].(string); ok && slug != "" {
		id = slug
	}
	return domain.RawDocument{
		Collection: collection,
		ID:         id,
		Path:       s.filePath(d.loamID),
		Fields:     fields,
		Body:       doc.Content,
	}, nil
}

func (s *Source) filePath(id string) string {
	if s.root == "" {
		return id
	}
	for _, ext := range extensions {
		if _, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(id+ext))); err == nil {
			return id + ext
		}
	}
	return id
}

// Collections lists the top-level directories holding at least one document.
func (s *Source) Collections(ctx context.Context) ([]string, error) {
	docs, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, d := range docs {
		if !slices.Contains(names, d.collection) {
			names = append(names, d.collection)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Documents implements ports.DocumentSource.
// A repository that cannot be listed yields a single *domain.DocumentParseError;
// a document that cannot be read yields one for itself and loading continues.
func (s *Source) Documents(ctx context.Context, collection string) iter.Seq2[domain.RawDocument, error] {
	return func(yield func(domain.RawDocument, error) bool) {
		docs, err := s.list(ctx)
		if err != nil {
			yield(domain.RawDocument{}, &domain.DocumentParseError{Collection: collection, Err: err})
			return
		}

		for _, d := range docs {
			if d.collection != collection {
				continue
			}
			if !yield(s.read(ctx, collection, d)) {
				return
			}
		}
	}
}

// Watch implements ports.Watchable.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces its own events; pass the changed ID up.
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
