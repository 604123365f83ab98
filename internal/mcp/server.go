package mcp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/traintrack/internal/models"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, matcher Matcher, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("TrainTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("TrainTrack personal-trainer log. Look up clients, their previous performance of an exercise, and lifetime per-exercise summaries. Clients can be referred to by id or by exact name."),
	)

	h := &handlers{ds: ds, matcher: matcher, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListClients, Handler: h.listClients},
		server.ServerTool{Tool: toolGetLastPerformance, Handler: h.getLastPerformance},
		server.ServerTool{Tool: toolGetExerciseSummary, Handler: h.getExerciseSummary},
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
		server.ServerTool{Tool: toolExportSummaryCSV, Handler: h.exportSummaryCSV},
	)

	s.AddResources(
		server.ServerResource{Resource: resClients, Handler: h.clientsResource},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.catalogResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds      DataSource
	matcher Matcher
	log     *slog.Logger
}

// resolveClient accepts a client id or a case-insensitive exact name.
func (h *handlers) resolveClient(ref string) (models.Client, error) {
	if c, err := h.ds.Client(ref); err == nil {
		return c, nil
	}

	var matches []models.Client
	for _, c := range h.ds.Clients() {
		if strings.EqualFold(c.Name, strings.TrimSpace(ref)) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return models.Client{}, fmt.Errorf("no client with id or name %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Client{}, fmt.Errorf("%d clients are named %q, use the id", len(matches), ref)
	}
}

// --- Resource definitions ---

var resClients = mcp.NewResource(
	"traintrack://clients",
	"Clients",
	mcp.WithResourceDescription("All clients sorted by name, with the number of logged sessions"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"traintrack://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Exercise names offered as suggestions while logging"),
	mcp.WithMIMEType("application/json"),
)
