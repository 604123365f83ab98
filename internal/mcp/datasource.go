package mcp

import (
	"github.com/meltforce/traintrack/internal/models"
	"github.com/meltforce/traintrack/internal/tracker"
)

// DataSource is the read side of the training log the MCP tools query.
type DataSource interface {
	Clients() []models.Client
	SearchClients(term string) []models.Client
	Client(id string) (models.Client, error)
	Sessions(clientID string) []models.Session
	FindLastPerformance(clientID, exerciseName, excludeDate string) (tracker.PerformanceSnapshot, bool)
	ComputeSummary(clientID string) []tracker.ExerciseSummary
}

// Compile-time check: *tracker.Store satisfies DataSource.
var _ DataSource = (*tracker.Store)(nil)

// Matcher suggests exercise names for a search term.
type Matcher interface {
	Match(term string) []string
	Names() []string
}
