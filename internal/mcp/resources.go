package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

type clientOverview struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Goal      string `json:"goal,omitempty"`
	StartDate string `json:"startDate"`
	Sessions  int    `json:"sessions"`
	LastDate  string `json:"lastDate,omitempty"`
}

func (h *handlers) overview() []clientOverview {
	clients := h.ds.Clients()
	out := make([]clientOverview, 0, len(clients))
	for _, c := range clients {
		o := clientOverview{ID: c.ID, Name: c.Name, Goal: c.Goal, StartDate: c.StartDate}
		for _, sess := range h.ds.Sessions(c.ID) {
			o.Sessions++
			if sess.Date > o.LastDate {
				o.LastDate = sess.Date
			}
		}
		out = append(out, o)
	}
	return out
}

func (h *handlers) clientsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, h.overview())
}

func (h *handlers) catalogResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, h.matcher.Names())
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
