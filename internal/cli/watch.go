package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/aretw0/lattice/internal/report"
	"github.com/aretw0/lattice/pkg/collection"
)

// RunWatch builds the project, prints the report, then rebuilds on every
// source change until interrupted. Invalid content is reported, not fatal.
func RunWatch(opts Options, w io.Writer) error {
	project, logger, err := OpenProject(opts)
	if err != nil {
		return err
	}
	tui.PrintBanner(w)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	printer := report.New(w)
	err = watchLoop(sigCtx, project, logger, func(store *collection.Store) {
		_ = printer.Store(store)
		printSystemMessage("Waiting for changes...")
	})
	if sig := sigCtx.Signal(); sig != nil {
		printSystemMessage("Stopped by %v.", sig)
	}
	return err
}

// watchLoop calls onBuild after the initial build and after every change
// reported by the source. Changes that arrive during a build coalesce into
// one rebuild. It returns when ctx is done.
func watchLoop(ctx context.Context, project *lattice.Project, logger *slog.Logger, onBuild func(*collection.Store)) error {
	changes, err := project.Watch(ctx)
	if err != nil {
		return err
	}

	rebuild := func() {
		store, err := project.Build(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("Build failed", "err", err)
			}
			return
		}
		onBuild(store)
	}

	logger.Info("Starting watcher", "project", project.Name)
	rebuild()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping watcher")
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("Change detected, rebuilding", "path", path)
			drain(changes)
			rebuild()
		}
	}
}

func drain(ch <-chan string) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
