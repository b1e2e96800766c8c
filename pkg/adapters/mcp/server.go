package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/collection"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CollectionSummary describes one collection of the current build.
type CollectionSummary struct {
	Name    string   `json:"name" jsonschema_description:"Collection name"`
	Entries int      `json:"entries" jsonschema_description:"Number of entries (0 when invalid)"`
	Valid   bool     `json:"valid" jsonschema_description:"Whether every document passed validation"`
	Errors  []string `json:"errors,omitempty" jsonschema_description:"Validation failures of an invalid collection"`
}

// CollectionsResponse lists the collections of the current build.
type CollectionsResponse struct {
	Collections []CollectionSummary `json:"collections"`
}

// Server exposes a built store as MCP tools and resources, so assistants can
// query content the same way the site does.
type Server struct {
	store     atomic.Pointer[collection.Store]
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance over store.
func NewServer(store *collection.Store) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer("lattice-mcp", strings.TrimSpace(lattice.Version)),
	}
	s.store.Store(store)
	s.registerTools()
	s.registerResources()
	return s
}

// Update replaces the served store.
func (s *Server) Update(store *collection.Store) {
	s.store.Store(store)
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_collections
	s.mcpServer.AddTool(mcp.NewTool("list_collections",
		mcp.WithDescription("List the content collections with their entry counts and validation status."),
		mcp.WithOutputSchema[CollectionsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListCollections))

	// TOOL: get_collection
	s.mcpServer.AddTool(mcp.NewTool("get_collection",
		mcp.WithDescription("Get the validated entries of a collection. Fails when any document of the collection is invalid."),
		mcp.WithString("collection", mcp.Required(), mcp.Description("Collection name")),
		mcp.WithString("sort", mcp.Description("Declared field to sort by; dots select nested fields")),
		mcp.WithString("order", mcp.Description("asc or desc (dates default to desc)"), mcp.Enum("asc", "desc")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries")),
	), s.handleGetCollection)

	// TOOL: get_entry
	s.mcpServer.AddTool(mcp.NewTool("get_entry",
		mcp.WithDescription("Get one entry by ID, including its body."),
		mcp.WithString("collection", mcp.Required(), mcp.Description("Collection name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID (path below the collection, without extension)")),
	), s.handleGetEntry)

	// TOOL: describe_schema
	s.mcpServer.AddTool(mcp.NewTool("describe_schema",
		mcp.WithDescription("Describe a collection's schema as field names mapped to type strings."),
		mcp.WithString("collection", mcp.Required(), mcp.Description("Collection name")),
	), s.handleDescribeSchema)
}

func (s *Server) handleListCollections(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (CollectionsResponse, error) {
	store := s.store.Load()
	failed := make(map[string]*domain.CollectionValidationError)
	for _, cve := range store.Errors() {
		failed[cve.Collection] = cve
	}

	resp := CollectionsResponse{Collections: []CollectionSummary{}}
	for _, name := range store.Collections() {
		summary := CollectionSummary{Name: name, Entries: store.Len(name), Valid: true}
		if cve, bad := failed[name]; bad {
			summary.Valid = false
			for _, err := range cve.Errors {
				summary.Errors = append(summary.Errors, err.Error())
			}
		}
		resp.Collections = append(resp.Collections, summary)
	}
	return resp, nil
}

func (s *Server) handleGetCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var opts []collection.QueryOption
	if field := request.GetString("sort", ""); field != "" {
		opts = append(opts, collection.SortBy(field))
	}
	switch order := request.GetString("order", ""); order {
	case "asc":
		opts = append(opts, collection.Ascending())
	case "desc":
		opts = append(opts, collection.Descending())
	case "":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid order %q: want asc or desc", order)), nil
	}
	opts = append(opts, collection.Limit(request.GetInt("limit", 0)))

	entries, err := s.store.Load().GetAll(name, opts...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if entries == nil {
		entries = []collection.Entry{}
	}
	return jsonResult(entries)
}

func (s *Server) handleGetEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entry, err := s.store.Load().GetByID(name, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entry)
}

func (s *Server) handleDescribeSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	obj, err := s.store.Load().Schema(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(obj)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: lattice://collections
	s.mcpServer.AddResource(mcp.NewResource("lattice://collections", "Content collections",
		mcp.WithResourceDescription("Collections of the current build with their validation status"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		resp, _ := s.handleListCollections(ctx, mcp.CallToolRequest{}, nil)
		b, err := json.Marshal(resp)
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "lattice://collections",
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	})
}
