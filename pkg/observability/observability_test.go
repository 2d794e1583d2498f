package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStepEnter(ctx, &domain.StepEvent{Step: "q1"})
	hooks.OnStepEnter(ctx, &domain.StepEvent{Step: "q1"})
	hooks.OnStepLeave(ctx, &domain.StepEvent{Step: "q1", NextStep: "q2"})
	hooks.OnStepLeave(ctx, &domain.StepEvent{Step: "q9"})
	hooks.OnPromptReturn(ctx, &domain.PromptEvent{Field: "summary", Duration: time.Second})
	hooks.OnPromptReturn(ctx, &domain.PromptEvent{Field: "summary", IsError: true})
	m.ObserveRender("docx")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepVisits.WithLabelValues("q1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PromptFailures.WithLabelValues("summary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentRenders.WithLabelValues("docx")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PromptDuration))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "wizard_step_visits_total")
}

func TestAggregate(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{OnStepEnter: func(context.Context, *domain.StepEvent) { order = append(order, "a") }}
	b := domain.LifecycleHooks{
		OnStepEnter:  func(context.Context, *domain.StepEvent) { order = append(order, "b") },
		OnPromptCall: func(context.Context, *domain.PromptEvent) { order = append(order, "b-call") },
	}

	hooks := observability.Aggregate(a, b)
	hooks.OnStepEnter(context.Background(), &domain.StepEvent{})
	hooks.OnPromptCall(context.Background(), &domain.PromptEvent{})
	hooks.OnStepLeave(context.Background(), &domain.StepEvent{})

	assert.Equal(t, []string{"a", "b", "b-call"}, order)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LoggingHooks(logger)

	hooks.OnStepEnter(context.Background(), &domain.StepEvent{EventBase: domain.EventBase{SessionID: "s1"}, Step: "q3"})
	hooks.OnPromptReturn(context.Background(), &domain.PromptEvent{Field: "summary", IsError: true})

	out := buf.String()
	require.Contains(t, out, `"msg":"step_enter"`)
	assert.Contains(t, out, `"step":"q3"`)
	assert.Contains(t, out, `"level":"WARN"`)
}
