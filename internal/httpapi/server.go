// Package httpapi serves the chat-style web front end: a question form, run
// submission, and live progress/answer streams over SSE and WebSocket.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rogerioferraz/aiquery/internal/agent"
	"github.com/rogerioferraz/aiquery/internal/streaming"
)

// runTimeout bounds a detached web run so abandoned questions cannot pin a
// goroutine forever.
const runTimeout = 10 * time.Minute

// defaultForgetAfter is how long a finished run's event backlog stays
// replayable before it is dropped.
const defaultForgetAfter = time.Minute

// RunnerFunc executes one question run, reporting checkpoints through
// progress and streamed answer fragments through answerSink, and returns the
// final answer.
type RunnerFunc func(ctx context.Context, question string, progress agent.Progress, answerSink io.Writer) (string, error)

// Server is the web front end. Each submitted question gets an independent
// run identified by a UUID; state is never shared between runs.
type Server struct {
	logger      *zap.Logger
	mgr         *streaming.Manager
	runner      RunnerFunc
	checkers    []Checker
	forgetAfter time.Duration
}

// NewServer creates the front end around a runner.
func NewServer(runner RunnerFunc, mgr *streaming.Manager, logger *zap.Logger, checkers ...Checker) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:      logger,
		mgr:         mgr,
		runner:      runner,
		checkers:    checkers,
		forgetAfter: defaultForgetAfter,
	}
}

// Routes registers all handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/stream/sse", s.handleSSE)
	mux.HandleFunc("/stream/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexHTML)
}

// handleAsk starts a run for the submitted question and returns its run id.
// POST /ask {"question": "..."}
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		http.Error(w, `{"error":"question required"}`, http.StatusBadRequest)
		return
	}

	runID := uuid.NewString()
	s.logger.Info("run submitted", zap.String("run_id", runID))

	go s.execute(runID, question)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"run_id": runID})
}

// execute drives one detached run, translating its callbacks into streaming
// events.
func (s *Server) execute(runID, question string) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	progress := func(fraction float64, desc string) {
		s.mgr.Publish(runID, streaming.Event{
			Type:     streaming.TypeProgress,
			Message:  desc,
			Fraction: fraction,
		})
	}

	// Keep the backlog around briefly for late replays, then drop it so
	// finished runs do not accumulate ring buffers for the server's lifetime.
	defer time.AfterFunc(s.forgetAfter, func() { s.mgr.Forget(runID) })

	answer, err := s.runner(ctx, question, progress, fragmentWriter{mgr: s.mgr, runID: runID})
	if err != nil {
		s.logger.Error("run failed", zap.String("run_id", runID), zap.Error(err))
		s.mgr.Publish(runID, streaming.Event{Type: streaming.TypeError, Message: err.Error()})
		return
	}
	progress(1.0, "Finalizing answer...")
	if answer == "" {
		answer = "No answer generated."
	}
	s.mgr.Publish(runID, streaming.Event{Type: streaming.TypeFinal, Message: answer})
}

// fragmentWriter publishes streamed answer fragments as events.
type fragmentWriter struct {
	mgr   *streaming.Manager
	runID string
}

func (f fragmentWriter) Write(p []byte) (int, error) {
	f.mgr.Publish(f.runID, streaming.Event{Type: streaming.TypeAnswer, Message: string(p)})
	return len(p), nil
}
