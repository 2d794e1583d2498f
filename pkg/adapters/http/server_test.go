package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aibee/wizard"
	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `q1, null, null, ["Project name?", "Budget?"], ["projectName", "budget"], null, null, null, q2
q2, q1, null, ["Sector?"], ["sector"], null, null, null, null
`

func newTestHandler(t *testing.T, opts ...Option) (http.Handler, *wizard.Engine) {
	t.Helper()
	loader, err := memory.NewFromSource(table, "")
	require.NoError(t, err)
	eng, err := wizard.New("", wizard.WithLoader(loader))
	require.NoError(t, err)
	return NewHandler(eng, opts...), eng
}

func do(t *testing.T, h http.Handler, method, target, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestQuestionsAndAnswers(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "GET", "/questions", "s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var q QuestionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, "q1", q.Step)
	assert.Equal(t, []string{"projectName", "budget"}, q.Variables)
	require.NotNil(t, q.Next)
	assert.Equal(t, "q2", *q.Next)

	w = do(t, h, "POST", "/answers", "s1", `{"answers": {"projectName": "Road", "budget": 1500.50}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Answers saved", resp.Message)
	require.NotNil(t, resp.Next)
	assert.Equal(t, "q2", *resp.Next)
	require.NotNil(t, resp.Diff)
	assert.Equal(t, "1500.50", resp.Diff.Answers["budget"].Text(), "number literals survive the round trip")

	w = do(t, h, "POST", "/submit-answers", "s1", `{"answers": {"sector": "Transport"}}`)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Completed)
	assert.Nil(t, resp.Next)

	w = do(t, h, "GET", "/get-questions", "s1", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Empty(t, q.Questions)
	assert.Nil(t, q.Next)
	assert.Contains(t, w.Body.String(), `"questions":[]`)
}

func TestSessionSelection(t *testing.T) {
	h, eng := newTestHandler(t)

	do(t, h, "POST", "/answers?session=by-query", "", `{"answers": {"projectName": "Q"}}`)
	do(t, h, "POST", "/answers", "", `{"answers": {"projectName": "D"}}`)

	byQuery, err := eng.Export(context.Background(), "by-query")
	require.NoError(t, err)
	assert.Equal(t, "Q", byQuery["projectName"].Text())

	def, err := eng.Export(context.Background(), DefaultSessionID)
	require.NoError(t, err)
	assert.Equal(t, "D", def["projectName"].Text())
}

func TestInvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)
	w := do(t, h, "POST", "/answers", "s", `{"answers": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	long := strings.Repeat("a", 70<<10)
	w = do(t, h, "POST", "/answers", "s", `{"answers": {"projectName": "`+long+`"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestRestartAndExport(t *testing.T) {
	h, _ := newTestHandler(t)
	do(t, h, "POST", "/answers", "s", `{"answers": {"projectName": "Road"}}`)

	w := do(t, h, "GET", "/export", "s", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "PC1_Report.json")
	assert.JSONEq(t, `{"projectName":"Road"}`, w.Body.String())

	w = do(t, h, "POST", "/restart", "s", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Form restarted")

	w = do(t, h, "GET", "/export", "s", "")
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestCreateSession(t *testing.T) {
	h, _ := newTestHandler(t)
	w := do(t, h, "POST", "/sessions", "", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var sess domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Len(t, sess.ID, 36)
	assert.Equal(t, "q1", sess.CurrentStep)
}

func TestDocument(t *testing.T) {
	metrics := observability.NewMetrics()
	h, _ := newTestHandler(t, WithMetrics(metrics))
	do(t, h, "POST", "/answers", "s", `{"answers": {"projectName": "Session Road"}}`)

	w := do(t, h, "POST", "/document", "s", `{"projectName": "Body Road"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, docxContentType, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = do(t, h, "GET", "/document.md", "s", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Session Road")

	w = do(t, h, "GET", "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `wizard_document_renders_total{format="docx"} 1`)
	assert.Contains(t, w.Body.String(), `wizard_document_renders_total{format="markdown"} 1`)
}

func TestGraph(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "GET", "/graph", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "q1 --> q2")
	assert.NotContains(t, w.Body.String(), "classDef")

	w = do(t, h, "GET", "/graph", "s", "")
	assert.Contains(t, w.Body.String(), "class q1 current;")
}

func TestHealthAndCORS(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "GET", "/health", "", "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "OPTIONS", "/answers", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
}

func TestSubscribeEvents_Session(t *testing.T) {
	h, _ := newTestHandler(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/events?session=sess-1", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(wSub, reqSub)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	w := do(t, h, "POST", "/answers", "sess-1", `{"answers": {"projectName": "Road"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"projectName":"Road"`)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("s")
	defer cancel()

	for i := 0; i < 20; i++ {
		sm.Broadcast("s", "msg")
	}
	assert.Len(t, ch, cap(ch))
}
