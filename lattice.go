package lattice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/internal/site"
	"github.com/aretw0/lattice/pkg/adapters/fs"
	loamAdapter "github.com/aretw0/lattice/pkg/adapters/loam"
	"github.com/aretw0/lattice/pkg/collection"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/loam"
)

// ErrNotWatchable is returned by Watch when the source cannot report changes.
var ErrNotWatchable = errors.New("source does not support watching")

// Project is the high-level entry point of the library. It ties a content
// source to a schema registry and builds validated collections from them.
type Project struct {
	Name string

	cfg         *config.Config
	reg         *registry.Registry
	src         ports.DocumentSource
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	concurrency int
}

// Option defines a functional option for configuring the Project.
type Option func(*Project)

// WithConfig uses cfg instead of reading lattice.yaml from the project directory.
func WithConfig(cfg *config.Config) Option {
	return func(p *Project) {
		p.cfg = cfg
	}
}

// WithSource injects a custom DocumentSource, bypassing the configured backend.
func WithSource(src ports.DocumentSource) Option {
	return func(p *Project) {
		p.src = src
	}
}

// WithRegistry injects a registry, bypassing the portfolio schemas and the
// schemas declared in config.
func WithRegistry(reg *registry.Registry) Option {
	return func(p *Project) {
		p.reg = reg
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Project) {
		p.logger = logger
	}
}

// WithHooks registers observability hooks on every build.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Project) {
		p.hooks = hooks
	}
}

// WithConcurrency bounds parallel validation. n <= 0 means GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(p *Project) {
		p.concurrency = n
	}
}

// New initializes a Project rooted at dir.
// Unless overridden by options, it reads dir/lattice.yaml, registers the
// portfolio schemas plus any schemas declared in the config, and reads
// documents from the configured backend.
func New(dir string, opts ...Option) (*Project, error) {
	p := &Project{concurrency: -1}
	for _, opt := range opts {
		opt(p)
	}

	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		p.Name = filepath.Base(abs)
		dir = abs
	}

	if p.cfg == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no config is provided")
		}
		cfg, err := config.LoadDir(dir)
		if err != nil {
			return nil, err
		}
		p.cfg = cfg
	}

	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	if p.Name != "" {
		p.logger = p.logger.With("project", p.Name)
	}
	if p.concurrency < 0 {
		p.concurrency = p.cfg.Build.Concurrency
	}

	if p.reg == nil {
		reg, err := p.registry()
		if err != nil {
			return nil, err
		}
		p.reg = reg
	}

	if p.src == nil {
		src, err := p.source()
		if err != nil {
			return nil, err
		}
		p.src = src
	}

	return p, nil
}

func (p *Project) registry() (*registry.Registry, error) {
	reg := registry.New()
	if p.cfg.Portfolio {
		if err := site.Register(reg); err != nil {
			return nil, err
		}
	}
	if err := p.cfg.Register(reg); err != nil {
		return nil, fmt.Errorf("failed to register configured schemas: %w", err)
	}
	return reg, nil
}

func (p *Project) source() (ports.DocumentSource, error) {
	dir := p.cfg.ContentDir()

	switch p.cfg.Content.Backend {
	case "loam":
		// The builder never writes, so the repository is opened read-only.
		// Strict mode keeps numbers as json.Number across formats.
		repo, err := loam.Init(dir,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		return loamAdapter.New(loam.NewTypedRepository[loamAdapter.EntryMetadata](repo), loamAdapter.WithRoot(dir)), nil

	default:
		opts := []fs.Option{fs.WithLogger(p.logger)}
		patterns := p.cfg.Patterns()
		if len(patterns) > 0 {
			// Explicit patterns turn off directory discovery, so every
			// registered collection needs a mapping.
			for _, name := range p.reg.Names() {
				if globs, ok := patterns[name]; ok {
					opts = append(opts, fs.WithCollection(name, globs...))
				} else {
					opts = append(opts, fs.WithCollection(name, fs.DefaultPattern(name)))
				}
			}
			for name, globs := range patterns {
				if !p.reg.Has(name) {
					opts = append(opts, fs.WithCollection(name, globs...))
				}
			}
		}
		return fs.New(dir, opts...), nil
	}
}

// Build loads and validates every registered collection.
// The returned error covers fatal failures only; per-collection validation
// failures are reported by Store.Err.
func (p *Project) Build(ctx context.Context) (*collection.Store, error) {
	b := collection.NewBuilder(p.reg, p.src,
		collection.WithLogger(p.logger),
		collection.WithHooks(p.hooks),
		collection.WithConcurrency(p.concurrency),
	)
	return b.Build(ctx)
}

// Watch reports changed documents when the source supports it.
func (p *Project) Watch(ctx context.Context) (<-chan string, error) {
	w, ok := p.src.(ports.Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}
	return w.Watch(ctx)
}

// Registry returns the schema registry.
func (p *Project) Registry() *registry.Registry {
	return p.reg
}

// Source returns the document source.
func (p *Project) Source() ports.DocumentSource {
	return p.src
}

// Config returns the effective configuration.
func (p *Project) Config() *config.Config {
	return p.cfg
}
