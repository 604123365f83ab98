package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/traintrack/internal/export"
)

// --- Tool definitions ---

var toolListClients = mcp.NewTool("list_clients",
	mcp.WithDescription("List clients sorted by name with their session count and most recent session date."),
	mcp.WithString("query", mcp.Description("Optional case-insensitive substring of the client name.")),
)

var toolGetLastPerformance = mcp.NewTool("get_last_performance",
	mcp.WithDescription("Find the most recently logged performance of an exercise for a client, e.g. '5 sets · 5 reps · 100 kg'. Exercise names match ignoring case."),
	mcp.WithString("client", mcp.Required(), mcp.Description("Client id or exact name")),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (e.g. Squat, Bench Press)")),
	mcp.WithString("exclude_date", mcp.Description("Session date (YYYY-MM-DD) to skip, usually the workout being logged.")),
)

var toolGetExerciseSummary = mcp.NewTool("get_exercise_summary",
	mcp.WithDescription("Lifetime per-exercise statistics for a client: number of times logged, latest performance and best performance (ranked by weight, then reps, sets, duration). Most frequent exercises first."),
	mcp.WithString("client", mcp.Required(), mcp.Description("Client id or exact name")),
	mcp.WithString("exercise", mcp.Description("Optional exact exercise name to return a single summary.")),
)

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog by case-insensitive substring. Terms shorter than 2 characters return nothing."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search term")),
)

var toolExportSummaryCSV = mcp.NewTool("export_summary_csv",
	mcp.WithDescription("Render a client's exercise summary as CSV text, one row per exercise."),
	mcp.WithString("client", mcp.Required(), mcp.Description("Client id or exact name")),
)

// --- Tool handlers ---

func (h *handlers) listClients(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.ToLower(strings.TrimSpace(req.GetString("query", "")))

	var out []clientOverview
	for _, o := range h.overview() {
		if query == "" || strings.Contains(strings.ToLower(o.Name), query) {
			out = append(out, o)
		}
	}
	if out == nil {
		out = []clientOverview{}
	}
	return jsonResult(out)
}

func (h *handlers) getLastPerformance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("client")
	if err != nil {
		return mcp.NewToolResultError("client parameter is required"), nil
	}
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	client, err := h.resolveClient(ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snap, ok := h.ds.FindLastPerformance(client.ID, exercise, req.GetString("exclude_date", ""))
	if !ok {
		return mcp.NewToolResultText("No previous " + exercise + " logged for " + client.Name + "."), nil
	}
	return jsonResult(snap)
}

func (h *handlers) getExerciseSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("client")
	if err != nil {
		return mcp.NewToolResultError("client parameter is required"), nil
	}
	client, err := h.resolveClient(ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary := h.ds.ComputeSummary(client.ID)
	if name := req.GetString("exercise", ""); name != "" {
		for _, s := range summary {
			if s.Name == name {
				return jsonResult(s)
			}
		}
		return mcp.NewToolResultError("no " + name + " logged for " + client.Name), nil
	}
	return jsonResult(summary)
}

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	return jsonResult(h.matcher.Match(query))
}

func (h *handlers) exportSummaryCSV(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("client")
	if err != nil {
		return mcp.NewToolResultError("client parameter is required"), nil
	}
	client, err := h.resolveClient(ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	if err := export.SummaryCSV(&b, h.ds.ComputeSummary(client.ID)); err != nil {
		if errors.Is(err, export.ErrNoData) {
			return mcp.NewToolResultError("no exercises logged for " + client.Name), nil
		}
		h.log.Error("mcp export_summary_csv", "error", err)
		return mcp.NewToolResultError("export failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
