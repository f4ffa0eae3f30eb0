// Package reportserver exposes a running or completed test run over
// HTTP, the [EXPANSION] "reporting server" of SPEC_FULL.md §6. Like
// store, it is wired in as a plan.Observer rather than a trait
// collaborator, adapted from the teacher's server/server.go
// (gorilla/mux router, route registration split from *http.Server
// construction, signal-driven graceful shutdown).
package reportserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"paratest/config"
	"paratest/errors"
	"paratest/event"
	"paratest/plan"
)

// eventBacklog bounds how many recent events /events returns; older
// ones are evicted, mirroring a live tail rather than full history
// (store.History is the durable record).
const eventBacklog = 500

// Server mirrors plan.PlanRunner's event stream over HTTP. It holds no
// reference to the runner itself — Observe is the only way it learns
// anything, keeping it a passive tap exactly like store.Recorder.
type Server struct {
	cfg        config.ReportServerConfig
	router     *mux.Router
	httpServer *http.Server

	mu     sync.RWMutex
	runs   map[uuid.UUID]plan.RunSummary
	events []event.Event
}

// NewServer builds a Server bound to cfg.Addr. Call Start (blocking,
// with signal-driven shutdown) or ListenAndServe yourself against
// Handler() to embed it in a larger mux.
func NewServer(cfg config.ReportServerConfig) *Server {
	router := mux.NewRouter()
	s := &Server{
		cfg:    cfg,
		router: router,
		runs:   make(map[uuid.UUID]plan.RunSummary),
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthCheck).Methods("GET")
	s.router.HandleFunc("/runs/{id}", s.getRun).Methods("GET")
	s.router.HandleFunc("/events", s.getEvents).Methods("GET")
}

// Handler returns the underlying http.Handler, for embedding in a
// larger mux instead of running Server's own *http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Observe implements plan.Observer: it tracks the last RunSummary seen
// per run ID and appends every event to a bounded backlog for /events.
func (s *Server) Observe(ev event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Kind == event.KindRunEnded {
		if summary, ok := ev.Payload.(plan.RunSummary); ok {
			s.runs[summary.ID] = summary
		}
	}

	s.events = append(s.events, ev)
	if len(s.events) > eventBacklog {
		s.events = s.events[len(s.events)-eventBacklog:]
	}
}

// AsObserver adapts s to plan.Observer's function signature.
func (s *Server) AsObserver() plan.Observer {
	return s.Observe
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts it down
// gracefully — the same flow as the teacher's Server.Start.
func (s *Server) Start() error {
	log.Printf("reportserver: listening on %s", s.cfg.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("reportserver: failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("reportserver: shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	idParam := mux.Vars(r)["id"]
	id, err := uuid.Parse(idParam)
	if err != nil {
		writeAppError(w, errors.NewValidationError(errors.ErrCodeInvalidFormat, "invalid run id", err))
		return
	}

	s.mu.RLock()
	summary, ok := s.runs[id]
	s.mu.RUnlock()

	if !ok {
		writeAppError(w, errors.NewNotFoundError(errors.ErrCodeResourceNotFound, "run not found", nil))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// writeAppError surfaces an *errors.AppError over HTTP using its own
// status-code mapping, so reportserver's status codes stay consistent
// with whatever the rest of the module considers that error type to be.
func writeAppError(w http.ResponseWriter, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.GetHTTPStatusCode())
	json.NewEncoder(w).Encode(map[string]string{"error": appErr.Message})
}

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	events := make([]event.Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(events)
}
