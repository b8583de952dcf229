// Package gatekeepertest provides an in-process fake gatekeeper for tests:
// the /execute submission endpoint plus the per-job /ws/{id} push channel,
// with scriptable outcomes per submission.
package gatekeepertest

import (
	"MuseLink/internal/gatekeeper"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Script tells the fake what to do for one submitted job. Exactly one of
// the behavior fields should be set; an empty Script pushes nothing.
type Script struct {
	// Result is pushed as the job's completion message.
	Result *Result

	// Raw is pushed verbatim instead of a structured message.
	Raw string

	// Silent holds the channel open without ever pushing, for timeout tests.
	Silent bool

	// DropConn closes the channel right after it is opened.
	DropConn bool

	// RejectSubmit makes /execute answer 500 for this submission.
	RejectSubmit bool

	// EmptySubmit makes /execute answer 200 without a job id.
	EmptySubmit bool

	// Delay is applied before the push, after the channel is open.
	Delay time.Duration

	// OnExecute, if set, runs while /execute handles this submission.
	OnExecute func(req *gatekeeper.JobRequest)
}

// Result mirrors the gatekeeper's completion envelope.
type Result struct {
	Format   string `json:"format"`
	Data     string `json:"data,omitempty"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Success scripts a completed job delivering resultPath/filename.
func Success(resultPath, filename string) Script {
	return Script{Result: &Result{Format: "filePath", Data: resultPath, Filename: filename}}
}

// Failure scripts a job the gatekeeper reports as failed.
func Failure(message string) Script {
	return Script{Result: &Result{Format: "error", Error: message}}
}

// Server is a scriptable fake gatekeeper backed by httptest.
type Server struct {
	httpSrv  *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	pending  []Script
	byJob    map[string]Script
	requests []gatekeeper.JobRequest
	done     chan struct{}
}

// NewServer starts the fake. Submissions consume scripts in Enqueue order;
// a submission without a script behaves like Silent.
func NewServer() *Server {
	s := &Server{
		byJob: make(map[string]Script),
		done:  make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Post("/execute", s.handleExecute)
	r.Get("/ws/{id}", s.handleResultChannel)
	s.httpSrv = httptest.NewServer(r)
	return s
}

// URL returns the fake's base URL.
func (s *Server) URL() string {
	return s.httpSrv.URL
}

// Close shuts the fake down and releases any Silent channels.
func (s *Server) Close() {
	close(s.done)
	s.httpSrv.Close()
}

// Enqueue appends a script for the next unmatched submission.
func (s *Server) Enqueue(script Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, script)
}

// Requests returns every job request received so far, in order.
func (s *Server) Requests() []gatekeeper.JobRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gatekeeper.JobRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req gatekeeper.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	var script Script
	if len(s.pending) > 0 {
		script = s.pending[0]
		s.pending = s.pending[1:]
	} else {
		script = Script{Silent: true}
	}
	s.mu.Unlock()

	// Runs before the script is published so its effects are visible to
	// the push handler and to test assertions.
	if script.OnExecute != nil {
		script.OnExecute(&req)
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	jobID := uuid.NewString()
	s.byJob[jobID] = script
	s.mu.Unlock()

	if script.RejectSubmit {
		http.Error(w, "inference backend unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]string{"status": "success"}
	if !script.EmptySubmit {
		resp["job_id"] = jobID
	}
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleResultChannel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	s.mu.Lock()
	script, known := s.byJob[jobID]
	s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if !known || script.DropConn {
		return
	}

	if script.Delay > 0 {
		select {
		case <-time.After(script.Delay):
		case <-s.done:
			return
		}
	}

	switch {
	case script.Silent:
		<-s.done
	case script.Raw != "":
		conn.WriteMessage(websocket.TextMessage, []byte(script.Raw))
	case script.Result != nil:
		conn.WriteJSON(script.Result)
	}
}
