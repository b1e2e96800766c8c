package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/lattice/internal/adapters/http"
	"github.com/aretw0/lattice/internal/metrics"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/aretw0/lattice/internal/report"
	"github.com/aretw0/lattice/pkg/collection"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

// RunServe builds the project and serves it over HTTP, rebuilding on source
// changes when the source can be watched. addr overrides serve.addr.
func RunServe(opts Options, addr string, w io.Writer) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	project, logger, err := OpenProject(opts, m.Hooks())
	if err != nil {
		return err
	}
	if addr == "" {
		addr = project.Config().Serve.Addr
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	store, err := project.Build(sigCtx)
	if err != nil {
		return err
	}
	m.RecordBuild(store.Err())

	// Everything printed before the goroutines start; afterwards only the
	// rebuild callback writes to w.
	tui.PrintBanner(w)
	fmt.Fprintf(w, "Serving %s on http://%s\n", project.Config().ContentDir(), addr)
	printer := report.New(w)
	_ = printer.Store(store)

	serverOpts := []httpAdapter.Option{
		httpAdapter.WithLogger(logger),
		httpAdapter.WithGatherer(reg),
	}
	for _, name := range project.Registry().Names() {
		if field := project.Config().SortField(name); field != "" {
			serverOpts = append(serverOpts, httpAdapter.WithDefaultSort(name, field))
		}
	}
	server := httpAdapter.NewServer(store, serverOpts...)

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	go func() {
		err := watchLoop(sigCtx, project, logger, func(s *collection.Store) {
			// The first call repeats the initial build.
			m.RecordBuild(s.Err())
			server.Update(s)
			_ = printer.Store(s)
		})
		if err != nil {
			logger.Warn("Rebuild on change disabled", "err", err)
		}
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-sigCtx.Done():
		printSystemMessage("Shutting down... Signal: %v", sigCtx.Signal())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		printSystemMessage("Server stopped gracefully")
		return nil
	}
}
