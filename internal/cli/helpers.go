// Package cli holds the long-running and shared parts of the lattice commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
)

// Options are the persistent flags shared by every command.
type Options struct {
	Dir        string
	ConfigPath string
	LogLevel   string // Overrides log.level from config when set
}

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	once   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it keeps the signal for the exit message.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.once.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// LoadConfig reads --config when given, or lattice.yaml in --dir.
func LoadConfig(opts Options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadDir(opts.Dir)
	}
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, nil
}

// OpenProject loads the configuration and opens the project it describes.
// hooks run on every build, after the debug hooks when logging at debug level.
func OpenProject(opts Options, hooks ...domain.LifecycleHooks) (*lattice.Project, *slog.Logger, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	logger, err := createLogger(cfg.Log.Level, cfg.LogFile())
	if err != nil {
		return nil, nil, err
	}

	if cfg.Log.Level == "debug" {
		hooks = append([]domain.LifecycleHooks{createDebugHooks(logger)}, hooks...)
	}

	project, err := lattice.New(cfg.Root,
		lattice.WithConfig(cfg),
		lattice.WithLogger(logger),
		lattice.WithHooks(mergeHooks(hooks...)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening project: %w", err)
	}
	return project, logger, nil
}

// createLogger configures the application logger on Stderr, or on a
// rotated file when one is configured.
func createLogger(level, file string) (*slog.Logger, error) {
	l, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if file != "" {
		return logging.NewFile(file, l), nil
	}
	return logging.New(l), nil
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDocument: func(ctx context.Context, e *domain.DocumentEvent) {
			logger.Debug("Document validated", "collection", e.Collection, "document", e.DocumentID, "valid", e.Valid)
		},
		OnCollection: func(ctx context.Context, e *domain.CollectionEvent) {
			logger.Debug("Collection built", "collection", e.Collection, "documents", e.Documents, "errors", e.Errors)
		},
	}
}

func mergeHooks(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var merged domain.LifecycleHooks
	for _, h := range all {
		merged = merged.Merge(h)
	}
	return merged
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}
