// Package http exposes the wizard over a JSON API built on chi.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aibee/wizard/internal/logging"
	"github.com/aibee/wizard/internal/presentation/graph"
	"github.com/aibee/wizard/pkg/document"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// SessionHeader carries the session id; the "session" query parameter is the fallback.
const SessionHeader = "X-Session-ID"

// DefaultSessionID is used when a request names no session.
const DefaultSessionID = "default"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Engine defines what the HTTP layer needs from the wizard.
type Engine interface {
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
	Questions(ctx context.Context, sessionID string) (domain.Options, error)
	Submit(ctx context.Context, sessionID string, answers domain.Answers) (*domain.Advance, *domain.SessionDiff, error)
	Restart(ctx context.Context, sessionID string) (*domain.Session, error)
	Export(ctx context.Context, sessionID string) (domain.Answers, error)
	Write(out io.Writer, format string, answers domain.Answers) ([]document.Diagnostic, error)
	Inspect() (*domain.Table, error)
	EntryStep() string
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Document formats served by the API.
const (
	formatDOCX     = "docx"
	formatMarkdown = "markdown"

	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	reportFilename  = "PC1_Report"
)

// Server holds the handlers.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts /metrics and counts rendered documents.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{Engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams = NewStreamManager(server.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", server.GetHealth)
	r.Get("/questions", server.GetQuestions)
	r.Post("/answers", server.SubmitAnswers)
	r.Post("/restart", server.Restart)
	r.Post("/sessions", server.CreateSession)
	r.Get("/export", server.Export)
	r.Post("/document", server.Document)
	r.Get("/document.md", server.DocumentMarkdown)
	r.Get("/graph", server.GetGraph)
	r.Get("/events", server.SubscribeEvents)

	// Paths of the first version of the API.
	r.Get("/get-questions", server.GetQuestions)
	r.Post("/submit-answers", server.SubmitAnswers)
	r.Post("/generate-json", server.Export)
	r.Post("/generate-docx", server.Document)
	r.Get("/download-docx", server.Document)

	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics.Handler())
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if id := r.URL.Query().Get("session"); id != "" {
		return id
	}
	return DefaultSessionID
}

// QuestionsResponse is the body of GET /questions.
type QuestionsResponse struct {
	SessionID string   `json:"session_id"`
	Step      string   `json:"step,omitempty"`
	Questions []string `json:"questions"`
	Variables []string `json:"variables"`
	Next      *string  `json:"next"`
}

// SubmitRequest is the body of POST /answers.
type SubmitRequest struct {
	Answers domain.Answers `json:"answers"`
}

// SubmitResponse is the body returned by POST /answers.
type SubmitResponse struct {
	Message   string              `json:"message"`
	SessionID string              `json:"session_id"`
	Next      *string             `json:"next"`
	Completed bool                `json:"completed"`
	Diff      *domain.SessionDiff `json:"diff,omitempty"`
}

// GetQuestions handles GET /questions.
func (s *Server) GetQuestions(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	opts, err := s.Engine.Questions(r.Context(), id)
	if err != nil {
		s.fail(w, "Questions", err)
		return
	}
	resp := QuestionsResponse{
		SessionID: id,
		Step:      opts.StepName,
		Questions: nonNil(opts.Questions),
		Variables: nonNil(opts.Variables),
	}
	if opts.NextStep != "" {
		resp.Next = &opts.NextStep
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SubmitAnswers handles POST /answers.
func (s *Server) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequest
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SubmitAnswers: Invalid request body", "err", err)
		return
	}

	id := sessionID(r)
	adv, diff, err := s.Engine.Submit(r.Context(), id, body.Answers)
	if err != nil {
		s.fail(w, "Submit", err)
		return
	}
	s.broadcast(id, diff)

	resp := SubmitResponse{
		Message:   "Answers saved",
		SessionID: id,
		Completed: adv.Completed,
		Diff:      diff,
	}
	if adv.Completed {
		resp.Message = "No next step found."
	} else {
		resp.Next = &adv.NextStep
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Restart handles POST /restart.
func (s *Server) Restart(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	sess, err := s.Engine.Restart(r.Context(), id)
	if err != nil {
		s.fail(w, "Restart", err)
		return
	}
	s.broadcast(id, domain.Diff(nil, sess))
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Form restarted",
		"session_id": id,
		"step":       sess.CurrentStep,
	})
}

// CreateSession handles POST /sessions by starting a session with a fresh id.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	sess, err := s.Engine.Session(r.Context(), id)
	if err != nil {
		s.fail(w, "CreateSession", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sess)
}

// Export handles GET /export: the session answers as a JSON attachment.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	answers, err := s.Engine.Export(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, "Export", err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFilename+".json"))
	s.writeJSON(w, http.StatusOK, answers)
}

// Document handles POST /document. A non-empty JSON object body is rendered
// directly; otherwise the session answers are used.
func (s *Server) Document(w http.ResponseWriter, r *http.Request) {
	answers, ok := s.documentAnswers(w, r)
	if !ok {
		return
	}
	s.writeDocument(w, formatDOCX, docxContentType, reportFilename+".docx", answers)
}

// DocumentMarkdown handles GET /document.md.
func (s *Server) DocumentMarkdown(w http.ResponseWriter, r *http.Request) {
	answers, err := s.Engine.Export(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, "Export", err)
		return
	}
	s.writeDocument(w, formatMarkdown, "text/markdown; charset=utf-8", "", answers)
}

func (s *Server) documentAnswers(w http.ResponseWriter, r *http.Request) (domain.Answers, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if len(bytes.TrimSpace(data)) > 0 {
		var answers domain.Answers
		if err := json.Unmarshal(data, &answers); err != nil {
			http.Error(w, "Invalid request body: expected a JSON object", http.StatusBadRequest)
			s.logger.Warn("Document: Invalid request body", "err", err)
			return nil, false
		}
		if len(answers) > 0 {
			return answers, true
		}
	}
	answers, err := s.Engine.Export(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, "Export", err)
		return nil, false
	}
	return answers, true
}

func (s *Server) writeDocument(w http.ResponseWriter, format, contentType, filename string, answers domain.Answers) {
	var buf bytes.Buffer
	diags, err := s.Engine.Write(&buf, format, answers)
	if err != nil {
		s.fail(w, "Document", err)
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveRender(format)
	}
	if len(diags) > 0 {
		w.Header().Set("X-Render-Diagnostics", fmt.Sprint(len(diags)))
	}
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetGraph handles GET /graph: the table as a Mermaid flowchart, with the
// session's path highlighted when a session is named.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	table, err := s.Engine.Inspect()
	if err != nil {
		s.fail(w, "Inspect", err)
		return
	}
	var overlay *graph.GraphOverlay
	if r.Header.Get(SessionHeader) != "" || r.URL.Query().Get("session") != "" {
		sess, err := s.Engine.Session(r.Context(), sessionID(r))
		if err != nil {
			s.fail(w, "Session", err)
			return
		}
		overlay = graph.OverlayFor(sess)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(table, s.Engine.EntryStep(), overlay))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SubscribeEvents handles GET /events (SSE). With a session it streams
// session diffs; without one it streams table reloads.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	id := r.Header.Get(SessionHeader)
	if id == "" {
		id = r.URL.Query().Get("session")
	}

	var (
		events <-chan string
		cancel = func() {}
	)
	if id == "" {
		changes, err := s.Engine.Watch(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusInternalServerError)
			return
		}
		reloads := make(chan string)
		go func() {
			defer close(reloads)
			for range changes {
				select {
				case reloads <- "reload":
				case <-r.Context().Done():
					return
				}
			}
		}()
		events = reloads
	} else {
		events, cancel = s.Streams.Subscribe(id)
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcast(id string, diff *domain.SessionDiff) {
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Warn("Failed to encode session diff", "session_id", id, "err", err)
		return
	}
	s.Streams.Broadcast(id, string(data))
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrEmptySessionID), errors.Is(err, domain.ErrInvalidSessionID), errors.Is(err, domain.ErrInvalidAnswer):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.Canceled):
		status = 499
	}
	if status >= 500 {
		s.logger.Error(op+" failed", "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
