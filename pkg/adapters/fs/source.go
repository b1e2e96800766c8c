package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/bmatcuk/doublestar/v4"
)

// Source implements ports.DocumentSource over a content directory.
// Each collection is a set of doublestar patterns relative to the root;
// by default a collection is a subdirectory holding content files at any depth.
type Source struct {
	root     string
	fsys     fs.FS
	patterns map[string][]string
	logger   *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithCollection maps a collection to explicit patterns instead of its
// default subdirectory. Calling it for any collection disables directory
// discovery: only mapped collections are listed.
func WithCollection(name string, patterns ...string) Option {
	return func(s *Source) {
		s.patterns[name] = append(s.patterns[name], patterns...)
	}
}

// WithLogger sets the logger used for skipped files.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// WithFS reads content from fsys instead of the directory at root.
// root is still used for watching and in error paths.
func WithFS(fsys fs.FS) Option {
	return func(s *Source) {
		s.fsys = fsys
	}
}

// New creates a filesystem source rooted at dir.
func New(dir string, opts ...Option) *Source {
	s := &Source{
		root:     dir,
		patterns: make(map[string][]string),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fsys == nil {
		s.fsys = os.DirFS(dir)
	}
	return s
}

// Root returns the content directory.
func (s *Source) Root() string {
	return s.root
}

// DefaultPattern is the pattern used for a collection without explicit patterns.
func DefaultPattern(collection string) string {
	return collection + "/**/*.{md,mdx,markdown,yaml,yml,json}"
}

// Collections lists the mapped collections, or the subdirectories of the root
// when no collection was mapped.
func (s *Source) Collections(ctx context.Context) ([]string, error) {
	if len(s.patterns) > 0 {
		names := make([]string, 0, len(s.patterns))
		for name := range s.patterns {
			names = append(names, name)
		}
		slices.Sort(names)
		return names, nil
	}

	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory %s: %w", s.root, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Documents yields the collection's files sorted by path.
// Unreadable or unparsable files yield a *domain.DocumentParseError.
func (s *Source) Documents(ctx context.Context, collection string) iter.Seq2[domain.RawDocument, error] {
	return func(yield func(domain.RawDocument, error) bool) {
		matches, err := s.match(collection)
		if err != nil {
			yield(domain.RawDocument{}, &domain.DocumentParseError{Collection: collection, Err: err})
			return
		}

		for _, m := range matches {
			if err := ctx.Err(); err != nil {
				yield(domain.RawDocument{}, fmt.Errorf("load %s: %w", collection, err))
				return
			}
			if !yield(s.read(collection, m)) {
				return
			}
		}
	}
}

type match struct {
	path string // relative to the root, slash separated
	base string // static prefix of the pattern that matched
}

func (s *Source) match(collection string) ([]match, error) {
	patterns, ok := s.patterns[collection]
	if !ok {
		if len(s.patterns) > 0 {
			return nil, nil
		}
		patterns = []string{DefaultPattern(collection)}
	}

	seen := make(map[string]bool)
	var out []match
	for _, pattern := range patterns {
		base, _ := doublestar.SplitPattern(pattern)
		if base == "." {
			base = ""
		}
		paths, err := doublestar.Glob(s.fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, p := range paths {
			if seen[p] || !supported(p) {
				continue
			}
			seen[p] = true
			out = append(out, match{path: p, base: base})
		}
	}
	slices.SortFunc(out, func(a, b match) int { return strings.Compare(a.path, b.path) })
	return out, nil
}

func (s *Source) read(collection string, m match) (domain.RawDocument, error) {
	id := documentID(m)
	data, err := fs.ReadFile(s.fsys, m.path)
	if err != nil {
		return domain.RawDocument{}, &domain.DocumentParseError{Collection: collection, Document: id, Path: m.path, Err: err}
	}

	fields, body, err := parseFile(m.path, data)
	if err != nil {
		perr := &domain.DocumentParseError{Collection: collection, Document: id, Path: m.path, Err: err}
		var pe *parseError
		if errors.As(err, &pe) {
			perr.Line, perr.Column, perr.Err = pe.Line, pe.Column, pe.Err
		}
		return domain.RawDocument{}, perr
	}

	if slug, ok := fields[domain.SlugKey].(string); ok && slug != "" {
		id = slug
	}
	s.logger.Debug("Document loaded", "collection", collection, "id", id, "path", m.path)

	return domain.RawDocument{
		Collection: collection,
		ID:         id,
		Path:       m.path,
		Fields:     fields,
		Body:       body,
	}, nil
}

// documentID is the matched path relative to the pattern base, without extension.
func documentID(m match) string {
	rel := m.path
	if m.base != "" {
		rel = strings.TrimPrefix(rel, m.base+"/")
	}
	return strings.TrimSuffix(rel, path.Ext(rel))
}

func supported(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(path.Ext(name)))
}
