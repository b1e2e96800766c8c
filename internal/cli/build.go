package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/report"
	"github.com/aretw0/lattice/pkg/collection"
)

// RunValidate builds the project once and prints the report to w.
// When any collection is invalid it returns a *ReportedError wrapping the
// store's aggregate error.
func RunValidate(ctx context.Context, opts Options, w io.Writer) error {
	_, _, err := buildAndReport(ctx, opts, w)
	return err
}

// RunBuild is RunValidate followed, for a valid build, by writing every
// collection as JSON to out. An empty out falls back to build.out from
// config, resolved against the config directory.
func RunBuild(ctx context.Context, opts Options, w io.Writer, out string) error {
	project, store, err := buildAndReport(ctx, opts, w)
	if err != nil {
		return err
	}

	if out == "" {
		cfg := project.Config()
		if cfg.Build.Out == "" {
			return nil
		}
		out = cfg.Build.Out
		if !filepath.IsAbs(out) {
			out = filepath.Join(cfg.Root, out)
		}
	}
	if err := WriteJSON(store, out); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", out)
	return nil
}

func buildAndReport(ctx context.Context, opts Options, w io.Writer) (*lattice.Project, *collection.Store, error) {
	project, store, err := BuildStore(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	if err := report.New(w).Store(store); err != nil {
		return nil, nil, &ReportedError{Err: err}
	}
	return project, store, nil
}

// ReportedError wraps a build failure whose details a report already
// printed. Its message is a one-line summary.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return "build failed" }
func (e *ReportedError) Unwrap() error { return e.Err }

// WriteJSON writes every collection of a valid store to path as one JSON
// object keyed by collection name.
func WriteJSON(store *collection.Store, path string) error {
	if err := store.Err(); err != nil {
		return err
	}

	data := make(map[string][]collection.Entry, len(store.Collections()))
	for _, name := range store.Collections() {
		entries, err := store.GetAll(name)
		if err != nil {
			return err
		}
		if entries == nil {
			entries = []collection.Entry{}
		}
		data[name] = entries
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collections: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(b, '\n'), 0644)
}

// BuildStore opens the project and builds it without printing a report.
func BuildStore(ctx context.Context, opts Options) (*lattice.Project, *collection.Store, error) {
	project, _, err := OpenProject(opts)
	if err != nil {
		return nil, nil, err
	}
	store, err := project.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	return project, store, nil
}
