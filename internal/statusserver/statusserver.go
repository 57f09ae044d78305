// Package statusserver exposes a read-only HTTP projection of the
// engine's current run (SPEC_FULL §4.8 EXPANDED / §6): the engine
// publishes snapshots to it through the engine.RunObserver interface,
// so this package never imports internal/engine. Grounded on
// test/e2e/mock_github_server.go's router setup (gorilla/mux,
// http.Server lifecycle in a goroutine) in the teacher repository.
package statusserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/pipeforge/pipeforge/internal/model"
)

// Server holds the most recent PipelineRun snapshot and serves it over
// HTTP. It implements engine.RunObserver via OnSnapshot without
// importing the engine package.
type Server struct {
	logger *slog.Logger
	server *http.Server

	mu  sync.RWMutex
	run *model.PipelineRun
}

// New constructs a Server bound to addr (e.g. "127.0.0.1:4848").
func New(addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/runs/current", s.handleCurrentRun).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	s.server = &http.Server{Addr: addr, Handler: router}
	return s
}

// Start begins serving in a background goroutine, mirroring the
// teacher's ListenAndServe-in-a-goroutine lifecycle.
func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("status server exited", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully within the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// OnSnapshot records run as the current snapshot, satisfying
// engine.RunObserver.
func (s *Server) OnSnapshot(run *model.PipelineRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
}

func (s *Server) handleCurrentRun(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	run := s.run
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if run == nil {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no run has started yet"})
		return
	}
	_ = json.NewEncoder(w).Encode(run)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
