package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aibee/wizard"
	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `q1, null, null, ["Project name?"], ["projectName"], null, null, null, q2
q2, q1, null, ["Sector?"], ["sector"], null, null, null, null
`

func newTestServer(t *testing.T) (*Server, *wizard.Engine) {
	t.Helper()
	loader, err := memory.NewFromSource(table, "")
	require.NoError(t, err)
	eng, err := wizard.New("", wizard.WithLoader(loader))
	require.NoError(t, err)
	return NewServer(eng, "test"), eng
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestServer_FormFlow(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	args := map[string]any{"session_id": "agent"}

	q, err := s.handleGetQuestions(ctx, callRequest(args), args)
	require.NoError(t, err)
	assert.Equal(t, "q1", q.Step)
	assert.Equal(t, []string{"projectName"}, q.Variables)
	assert.False(t, q.Completed)

	submitArgs := map[string]any{"session_id": "agent", "answers": `{"projectName": "Road"}`}
	res, err := s.handleSubmitAnswers(ctx, callRequest(submitArgs), submitArgs)
	require.NoError(t, err)
	assert.Equal(t, "q1", res.From)
	assert.Equal(t, "q2", res.Next)
	require.NotNil(t, res.Diff)

	submitArgs["answers"] = `{"sector": "Transport"}`
	res, err = s.handleSubmitAnswers(ctx, callRequest(submitArgs), submitArgs)
	require.NoError(t, err)
	assert.True(t, res.Completed)

	q, err = s.handleGetQuestions(ctx, callRequest(args), args)
	require.NoError(t, err)
	assert.True(t, q.Completed)

	out, err := s.handleExport(ctx, callRequest(args))
	require.NoError(t, err)
	assert.JSONEq(t, `{"projectName":"Road","sector":"Transport"}`, resultText(t, out))

	out, err = s.handleRestart(ctx, callRequest(args))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, out), "q1")
}

func TestServer_SubmitRejectsInvalidJSON(t *testing.T) {
	s, _ := newTestServer(t)
	args := map[string]any{"answers": `[1, 2`}
	_, err := s.handleSubmitAnswers(context.Background(), callRequest(args), args)
	assert.ErrorContains(t, err, "JSON object")
}

func TestServer_RenderDocument(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	out, err := s.handleRenderDocument(ctx, callRequest(map[string]any{"answers": `{"projectName": "Inline Road"}`}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, out), "Inline Road")

	out, err = s.handleRenderDocument(ctx, callRequest(map[string]any{"format": "docx"}))
	require.NoError(t, err)
	assert.True(t, out.IsError, "docx needs an output path")

	path := filepath.Join(t.TempDir(), "report.docx")
	out, err = s.handleRenderDocument(ctx, callRequest(map[string]any{"format": "docx", "output_path": path}))
	require.NoError(t, err)
	assert.False(t, out.IsError)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data[:2]))
}

func TestServer_Graph(t *testing.T) {
	s, _ := newTestServer(t)
	chart, err := s.mermaid()
	require.NoError(t, err)
	assert.Contains(t, chart, "q1 --> q2")
}
