// Package mcp exposes the wizard as Model Context Protocol tools, so an
// assistant can fill in the form on a user's behalf.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aibee/wizard/internal/logging"
	"github.com/aibee/wizard/internal/presentation/graph"
	"github.com/aibee/wizard/pkg/document"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultSessionID is used when a tool call names no session.
const DefaultSessionID = "default"

// Engine defines the interface required by the MCP server.
type Engine interface {
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
	Questions(ctx context.Context, sessionID string) (domain.Options, error)
	Submit(ctx context.Context, sessionID string, answers domain.Answers) (*domain.Advance, *domain.SessionDiff, error)
	Restart(ctx context.Context, sessionID string) (*domain.Session, error)
	Export(ctx context.Context, sessionID string) (domain.Answers, error)
	Write(out io.Writer, format string, answers domain.Answers) ([]document.Diagnostic, error)
	Inspect() (*domain.Table, error)
	EntryStep() string
}

// QuestionsResult is returned by get_questions.
type QuestionsResult struct {
	SessionID string   `json:"session_id" jsonschema_description:"The session the questions belong to"`
	Step      string   `json:"step" jsonschema_description:"Current step name, empty when the form is complete"`
	Questions []string `json:"questions" jsonschema_description:"Questions to ask the user, in order"`
	Variables []string `json:"variables" jsonschema_description:"Answer keys matching each question"`
	Completed bool     `json:"completed" jsonschema_description:"True when there is nothing left to ask"`
}

// SubmitResult is returned by submit_answers.
type SubmitResult struct {
	SessionID string              `json:"session_id"`
	From      string              `json:"from" jsonschema_description:"Step the answers were submitted to"`
	Next      string              `json:"next,omitempty" jsonschema_description:"New current step"`
	Completed bool                `json:"completed"`
	Diff      *domain.SessionDiff `json:"diff,omitempty" jsonschema_description:"Answers and position that changed"`
}

// Server wraps the wizard Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("wizard-mcp", version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on addr using SSE and shuts it down when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sessionArg := mcp.WithString("session_id", mcp.Description("Session identifier (default: \"default\")"))

	s.mcpServer.AddTool(mcp.NewTool("get_questions",
		mcp.WithDescription("Get the questions of the current step of the proposal form."),
		sessionArg,
		mcp.WithOutputSchema[QuestionsResult](),
	), mcp.NewStructuredToolHandler(s.handleGetQuestions))

	s.mcpServer.AddTool(mcp.NewTool("submit_answers",
		mcp.WithDescription("Submit answers for the current step and advance the form."),
		sessionArg,
		mcp.WithString("answers", mcp.Required(), mcp.Description("JSON object mapping each variable to its answer")),
		mcp.WithOutputSchema[SubmitResult](),
	), mcp.NewStructuredToolHandler(s.handleSubmitAnswers))

	s.mcpServer.AddTool(mcp.NewTool("restart",
		mcp.WithDescription("Discard all answers and return to the first step."),
		sessionArg,
	), s.handleRestart)

	s.mcpServer.AddTool(mcp.NewTool("export_answers",
		mcp.WithDescription("Export every answer collected so far as JSON."),
		sessionArg,
	), s.handleExport)

	s.mcpServer.AddTool(mcp.NewTool("render_document",
		mcp.WithDescription("Render the proposal document. Markdown is returned inline; docx is written to output_path."),
		sessionArg,
		mcp.WithString("format", mcp.Description("markdown (default) or docx"), mcp.Enum("markdown", "docx")),
		mcp.WithString("answers", mcp.Description("Optional JSON object to render instead of the session answers")),
		mcp.WithString("output_path", mcp.Description("File to write when format is docx")),
	), s.handleRenderDocument)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the form's step graph as a Mermaid flowchart."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		chart, err := s.mermaid()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(chart), nil
	})
}

func sessionFrom(args map[string]interface{}) string {
	if id, ok := args["session_id"].(string); ok && id != "" {
		return id
	}
	return DefaultSessionID
}

func parseAnswers(raw string) (domain.Answers, error) {
	var answers domain.Answers
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return nil, fmt.Errorf("answers must be a JSON object: %w", err)
	}
	return answers, nil
}

func (s *Server) handleGetQuestions(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (QuestionsResult, error) {
	id := sessionFrom(args)
	opts, err := s.engine.Questions(ctx, id)
	if err != nil {
		return QuestionsResult{}, fmt.Errorf("questions failed: %w", err)
	}
	return QuestionsResult{
		SessionID: id,
		Step:      opts.StepName,
		Questions: opts.Questions,
		Variables: opts.Variables,
		Completed: opts.StepName == "",
	}, nil
}

func (s *Server) handleSubmitAnswers(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SubmitResult, error) {
	id := sessionFrom(args)
	raw, _ := args["answers"].(string)
	answers, err := parseAnswers(raw)
	if err != nil {
		return SubmitResult{}, err
	}

	adv, diff, err := s.engine.Submit(ctx, id, answers)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("submit failed: %w", err)
	}
	return SubmitResult{
		SessionID: id,
		From:      adv.FromStep,
		Next:      adv.NextStep,
		Completed: adv.Completed,
		Diff:      diff,
	}, nil
}

func (s *Server) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := sessionFrom(request.GetArguments())
	sess, err := s.engine.Restart(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("restart failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Form restarted at step %s", sess.CurrentStep)), nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	answers, err := s.engine.Export(ctx, sessionFrom(request.GetArguments()))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	data, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleRenderDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var answers domain.Answers
	if raw, ok := args["answers"].(string); ok && raw != "" {
		parsed, err := parseAnswers(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		answers = parsed
	} else {
		exported, err := s.engine.Export(ctx, sessionFrom(args))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
		}
		answers = exported
	}

	format, _ := args["format"].(string)
	if format == "" {
		format = "markdown"
	}

	var buf bytes.Buffer
	diags, err := s.engine.Write(&buf, format, answers)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	for _, d := range diags {
		s.logger.Warn("Render diagnostic", "section", d.Section, "message", d.Message)
	}

	if format == "markdown" {
		return mcp.NewToolResultText(buf.String()), nil
	}

	path, _ := args["output_path"].(string)
	if path == "" {
		return mcp.NewToolResultError("output_path is required for binary formats"), nil
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("write failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Document written to %s (%d bytes, %d diagnostics)", path, buf.Len(), len(diags))), nil
}

func (s *Server) mermaid() (string, error) {
	table, err := s.engine.Inspect()
	if err != nil {
		return "", fmt.Errorf("inspect failed: %w", err)
	}
	return graph.GenerateMermaid(table, s.engine.EntryStep(), nil), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("wizard://graph", "Form step graph",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		chart, err := s.mermaid()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: "wizard://graph", MIMEType: "text/plain", Text: chart},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource("wizard://table", "Transition table",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		table, err := s.engine.Inspect()
		if err != nil {
			return nil, fmt.Errorf("failed to inspect table: %w", err)
		}
		if table == nil {
			return nil, errors.New("no table loaded")
		}
		data, err := json.Marshal(table.Steps())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: "wizard://table", MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
