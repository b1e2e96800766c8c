package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/internal/presentation/html"
	"github.com/aretw0/lattice/pkg/collection"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// snapshot is one published build.
type snapshot struct {
	id    string
	store *collection.Store
}

// Server serves the most recent build over HTTP.
// Update swaps the build atomically, so requests never see a partial one.
type Server struct {
	current  atomic.Pointer[snapshot]
	sorts    map[string]string
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	mu          sync.Mutex
	subscribers map[chan string]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer exposes the given metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithDefaultSort sorts a collection by field when the request names none.
func WithDefaultSort(collection, field string) Option {
	return func(s *Server) {
		s.sorts[collection] = field
	}
}

// NewServer creates a server over an initial store.
func NewServer(store *collection.Store, opts ...Option) *Server {
	s := &Server{
		sorts:       make(map[string]string),
		gatherer:    prometheus.DefaultGatherer,
		logger:      logging.NewNop(),
		subscribers: make(map[chan string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.publishStore(store)
	return s
}

func (s *Server) publishStore(store *collection.Store) *snapshot {
	snap := &snapshot{id: uuid.NewString(), store: store}
	s.current.Store(snap)
	return snap
}

func (s *Server) store() *collection.Store {
	return s.current.Load().store
}

// Update replaces the served store under a new build ID and notifies
// event subscribers.
func (s *Server) Update(store *collection.Store) {
	snap := s.publishStore(store)

	data, err := json.Marshal(buildEvent{Build: snap.id, Status: status(store)})
	if err != nil {
		s.logger.Error("Failed to encode build event", "err", err)
		return
	}
	s.publish(string(data))
}

type buildEvent struct {
	Build  string `json:"build"`
	Status string `json:"status"`
}

func status(store *collection.Store) string {
	if store.Err() != nil {
		return "invalid"
	}
	return "ok"
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/collections", s.listCollections)
	r.Get("/collections/{name}", s.getCollection)
	r.Get("/collections/{name}/schema", s.getSchema)
	r.Get("/collections/{name}/entries/*", s.getEntry)
	r.Get("/events", s.events)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

type collectionSummary struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Valid   bool   `json:"valid"`
	Errors  int    `json:"errors,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	s.writeJSON(w, http.StatusOK, buildEvent{Build: snap.id, Status: status(snap.store)})
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	store := s.store()
	failed := make(map[string]int)
	for _, cve := range store.Errors() {
		failed[cve.Collection] = len(cve.Errors)
	}

	out := []collectionSummary{}
	for _, name := range store.Collections() {
		n, bad := failed[name]
		out = append(out, collectionSummary{Name: name, Entries: store.Len(name), Valid: !bad, Errors: n})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q := r.URL.Query()

	var opts []collection.QueryOption
	sortBy := q.Get("sort")
	if sortBy == "" {
		sortBy = s.sorts[name]
	}
	if sortBy != "" {
		opts = append(opts, collection.SortBy(sortBy))
	}
	switch q.Get("order") {
	case "asc":
		opts = append(opts, collection.Ascending())
	case "desc":
		opts = append(opts, collection.Descending())
	case "":
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid order %q: want asc or desc", q.Get("order")))
		return
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", l))
			return
		}
		opts = append(opts, collection.Limit(n))
	}

	entries, err := s.store().GetAll(name, opts...)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if entries == nil {
		entries = []collection.Entry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	obj, err := s.store().Schema(chi.URLParam(r, "name"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, obj)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "name"), chi.URLParam(r, "*")

	entry, err := s.store().GetByID(name, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	if r.URL.Query().Get("format") != "html" {
		s.writeJSON(w, http.StatusOK, entry)
		return
	}
	body, err := html.Render(entry.Body)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	// Embed the entry's own encoding and append the rendered body.
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	merged["html"], _ = json.Marshal(body)
	s.writeJSON(w, http.StatusOK, merged)
}

// events streams build notifications (SSE).
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-ch:
			fmt.Fprintf(w, "event: build\ndata: %s\n\n", event)
			flusher.Flush()
		}
	}
}

func (s *Server) subscribe() chan string {
	ch := make(chan string, 1)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan string) {
	s.mu.Lock()
	delete(s.subscribers, ch)
	s.mu.Unlock()
}

func (s *Server) publish(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Slow subscriber; it will see the next build.
		}
	}
}

// -- Helpers --

type errorBody struct {
	Error      string       `json:"error"`
	Collection string       `json:"collection,omitempty"`
	Problems   []problemDTO `json:"problems,omitempty"`
}

type problemDTO struct {
	Document string   `json:"document,omitempty"`
	Path     string   `json:"path,omitempty"`
	Expected string   `json:"expected,omitempty"`
	Actual   string   `json:"actual,omitempty"`
	Allowed  []string `json:"allowed,omitempty"`
	Message  string   `json:"message"`
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var cve *domain.CollectionValidationError
	switch {
	case errors.As(err, &cve):
		body := errorBody{Error: "collection failed validation", Collection: cve.Collection}
		for _, e := range cve.Errors {
			p := problemDTO{Message: e.Error()}
			var ve *schema.ValidationError
			if errors.As(e, &ve) {
				p.Document, p.Path, p.Expected, p.Actual, p.Allowed = ve.Document, ve.Path, ve.Expected, ve.ActualString(), ve.Allowed
			}
			body.Problems = append(body.Problems, p)
		}
		s.writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, domain.ErrUnknownCollection), errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrUnknownField):
		s.writeError(w, http.StatusBadRequest, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "err", err)
	}
}
