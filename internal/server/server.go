package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/meltforce/traintrack/internal/tracker"
	"github.com/meltforce/traintrack/internal/workout"
)

// Matcher suggests exercise names for a typed term.
type Matcher interface {
	Match(term string) []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   *tracker.Store
	matcher Matcher
	timers  *workout.Timers
	log     *slog.Logger
	router  chi.Router
	now     func() time.Time

	mu  sync.Mutex
	pad *workout.Pad
}

// New creates a new Server with all routes configured.
func New(store *tracker.Store, matcher Matcher, timers *workout.Timers, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		matcher: matcher,
		timers:  timers,
		log:     log,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close discards the open workout and stops every timer.
func (s *Server) Close() {
	s.mu.Lock()
	if s.pad != nil {
		s.pad.Close()
		s.pad = nil
	}
	s.mu.Unlock()
	s.timers.StopAll()
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1/clients", func(r chi.Router) {
		r.Get("/", s.handleListClients)
		r.Post("/", s.handleAddClient)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteClient)
			r.Get("/sessions", s.handleListSessions)
			r.Delete("/sessions/{sessionID}", s.handleDeleteSession)
			r.Put("/sessions/{date}/exercises", s.handleUpsertExercise)
			r.Get("/last", s.handleLastPerformance)
			r.Get("/summary", s.handleSummary)
			r.Get("/summary.csv", s.handleSummaryCSV)
		})
	})

	s.router.Get("/api/v1/exercises", s.handleSearchExercises)

	s.router.Route("/api/v1/workout", func(r chi.Router) {
		r.Post("/", s.handleOpenWorkout)
		r.Get("/", s.handleGetWorkout)
		r.Delete("/", s.handleCloseWorkout)
		r.Post("/rows", s.handleAddRow)
		r.Patch("/rows/{id}", s.handleUpdateRow)
		r.Delete("/rows/{id}", s.handleRemoveRow)
		r.Post("/rows/{id}/save", s.handleSaveRow)
		r.Post("/rows/{id}/timer/start", s.handleStartTimer)
		r.Post("/rows/{id}/timer/stop", s.handleStopTimer)
	})
}
