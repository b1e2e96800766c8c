package cli

import (
	"context"

	mcpAdapter "github.com/aretw0/lattice/pkg/adapters/mcp"
	"github.com/aretw0/lattice/pkg/collection"
)

// RunMCP serves the project to MCP clients over stdio, or over SSE on port
// when sse is set. Stdout belongs to the protocol, so nothing else prints there.
func RunMCP(opts Options, sse bool, port int) error {
	project, logger, err := OpenProject(opts)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	store, err := project.Build(sigCtx)
	if err != nil {
		return err
	}
	if err := store.Err(); err != nil {
		logger.Warn("Serving an invalid build", "err", err)
	}
	srv := mcpAdapter.NewServer(store)

	go func() {
		err := watchLoop(sigCtx, project, logger, func(s *collection.Store) {
			srv.Update(s)
		})
		if err != nil {
			logger.Warn("Rebuild on change disabled", "err", err)
		}
	}()

	if sse {
		return srv.ServeSSE(sigCtx, port)
	}
	return srv.ServeStdio()
}
