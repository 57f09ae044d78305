package statusserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/pipeforge/pipeforge/internal/model"
)

// newTestServer exercises the same two routes as Server without binding
// a real listener, so tests don't depend on port availability.
func newTestServer() *Server {
	s := &Server{}
	router := mux.NewRouter()
	router.HandleFunc("/runs/current", s.handleCurrentRun).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.server = &http.Server{Handler: router}
	return s
}

func TestCurrentRunNotFoundBeforeAnySnapshot(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/runs/current", nil)
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCurrentRunReturnsLatestSnapshot(t *testing.T) {
	s := newTestServer()
	run := model.NewRun("run-1", "Demo")
	s.OnSnapshot(run)

	req := httptest.NewRequest(http.MethodGet, "/runs/current", nil)
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var decoded model.PipelineRun
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.ID != "run-1" {
		t.Errorf("decoded.ID = %q, want run-1", decoded.ID)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}
