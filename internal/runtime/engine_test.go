package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aibee/wizard/internal/runtime"
	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/aibee/wizard/pkg/domain"
)

func newEngine(t *testing.T, steps []domain.Step, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	return runtime.NewEngine(memory.NewLoader(steps...), opts...)
}

func TestEngine_FirstMatchWithFallback(t *testing.T) {
	steps := []domain.Step{
		{Name: "q1", NextStep: "q2"},
		{Name: "q2", Condition: "isProvincial", Questions: []string{"Provincial department?"}, Variables: []string{"department"}, NextStep: "q3"},
		{Name: "q2", Condition: "!isProvincial", Questions: []string{"Federal ministry?"}, Variables: []string{"federalMinistry"}, NextStep: "q4"},
		{Name: "q2", Questions: []string{"Fallback?"}, Variables: []string{"fallback"}, NextStep: "q5"},
	}
	engine := newEngine(t, steps)
	ctx := context.Background()

	tests := []struct {
		name     string
		answers  domain.Answers
		wantVar  string
		wantNext string
	}{
		{"First Condition", domain.Answers{"isProvincial": domain.String("Yes")}, "department", "q3"},
		{"Second Condition", domain.Answers{"isProvincial": domain.String("no")}, "federalMinistry", "q4"},
		{"Fallback", domain.Answers{"isProvincial": domain.String("maybe")}, "fallback", "q5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := domain.NewSession("s", "q2")
			sess.Answers = tt.answers

			opts, err := engine.CurrentOptions(ctx, sess)
			if err != nil {
				t.Fatalf("CurrentOptions failed: %v", err)
			}
			if len(opts.Variables) != 1 || opts.Variables[0] != tt.wantVar {
				t.Errorf("expected variable %q, got %v", tt.wantVar, opts.Variables)
			}
			if opts.NextStep != tt.wantNext {
				t.Errorf("expected next %q, got %q", tt.wantNext, opts.NextStep)
			}
		})
	}
}

func TestEngine_NoValidTransition(t *testing.T) {
	engine := newEngine(t, []domain.Step{
		{Name: "q1", Condition: "a", NextStep: "q2"},
		{Name: "q1", Condition: "b", NextStep: "q3"},
	})
	ctx := context.Background()
	sess := engine.Start(ctx, "s")

	_, err := engine.CurrentOptions(ctx, sess)
	if !errors.Is(err, domain.ErrNoValidTransition) {
		t.Fatalf("expected ErrNoValidTransition, got %v", err)
	}

	adv, err := engine.Submit(ctx, sess, domain.Answers{"c": domain.String("x")})
	if err != nil {
		t.Fatalf("Submit should report a terminal result, got error: %v", err)
	}
	if !adv.Completed {
		t.Errorf("expected a terminal result, got %+v", adv)
	}
	if adv.Session.Status != domain.StatusActive || adv.Session.CurrentStep != "q1" {
		t.Errorf("session must keep its position, got status %q step %q", adv.Session.Status, adv.Session.CurrentStep)
	}
	if adv.Session.Answers["c"].Text() != "x" {
		t.Errorf("answers must be merged even when nothing matches")
	}
}

func TestEngine_RetryAfterNoMatch(t *testing.T) {
	engine := newEngine(t, []domain.Step{
		{Name: "q1", Condition: "go", NextStep: "q2"},
		{Name: "q2"},
	})
	ctx := context.Background()

	adv, err := engine.Submit(ctx, engine.Start(ctx, "s"), domain.Answers{"go": domain.String("no")})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !adv.Completed || adv.Session.CurrentStep != "q1" {
		t.Fatalf("expected terminal result at q1, got completed=%v step=%q", adv.Completed, adv.Session.CurrentStep)
	}

	adv, err = engine.Submit(ctx, adv.Session, domain.Answers{"go": domain.String("yes")})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if adv.Completed || adv.NextStep != "q2" {
		t.Errorf("corrected answers should advance to q2, got completed=%v next=%q", adv.Completed, adv.NextStep)
	}
}

func TestEngine_UnknownStep(t *testing.T) {
	engine := newEngine(t, []domain.Step{{Name: "q1"}})
	sess := domain.NewSession("s", "missing")

	_, err := engine.CurrentOptions(context.Background(), sess)
	if !errors.Is(err, domain.ErrNoValidTransition) {
		t.Errorf("expected ErrNoValidTransition, got %v", err)
	}
}

func TestEngine_SubmitFlow(t *testing.T) {
	steps := []domain.Step{
		{Name: "q1", Questions: []string{"Project name?", "District?"}, Variables: []string{"projectName", "districtName"}, NextStep: "q2"},
		{Name: "q2", Condition: "hasFeasibility", VariableActions: []string{"stage=review", "feasibilityStudy=null", "formula=a=b", "broken"}, NextStep: "q3"},
		{Name: "q2", NextStep: "q4"},
		{Name: "q3"},
		{Name: "q4"},
	}
	engine := newEngine(t, steps)
	ctx := context.Background()

	sess := engine.Start(ctx, "s")
	adv, err := engine.Submit(ctx, sess, domain.Answers{
		"projectName":  domain.String("Road"),
		"districtName": domain.String("Lahore"),
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if adv.FromStep != "q1" || adv.NextStep != "q2" {
		t.Errorf("expected q1 -> q2, got %s -> %s", adv.FromStep, adv.NextStep)
	}
	if len(sess.Answers) != 0 || sess.CurrentStep != "q1" {
		t.Errorf("Submit must not mutate the input session")
	}

	adv, err = engine.Submit(ctx, adv.Session, domain.Answers{"hasFeasibility": domain.String(" TRUE ")})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	got := adv.Session
	if got.CurrentStep != "q3" {
		t.Errorf("expected q3, got %s", got.CurrentStep)
	}
	if got.Answers["stage"].Text() != "review" {
		t.Errorf("expected stage=review, got %q", got.Answers["stage"].Text())
	}
	if v, ok := got.Answers["feasibilityStudy"]; !ok || !v.IsNull() {
		t.Errorf("expected feasibilityStudy to be null, got %v (present=%v)", v, ok)
	}
	if got.Answers["formula"].Text() != "a=b" {
		t.Errorf("expected split on first '=', got %q", got.Answers["formula"].Text())
	}
	if _, ok := got.Answers["broken"]; ok {
		t.Errorf("action without '=' must be skipped")
	}
	wantHistory := []string{"q1", "q2", "q3"}
	if len(got.History) != len(wantHistory) {
		t.Fatalf("expected history %v, got %v", wantHistory, got.History)
	}
	for i := range wantHistory {
		if got.History[i] != wantHistory[i] {
			t.Errorf("history[%d]: expected %s, got %s", i, wantHistory[i], got.History[i])
		}
	}

	adv, err = engine.Submit(ctx, got, nil)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !adv.Completed || adv.Session.CurrentStep != "" {
		t.Errorf("terminal step should complete the session, got %+v", adv.Session)
	}

	if _, err := engine.CurrentOptions(ctx, adv.Session); !errors.Is(err, domain.ErrNoValidTransition) {
		t.Errorf("completed session should have no options, got %v", err)
	}
}

func TestEngine_LaterAnswersOverwrite(t *testing.T) {
	engine := newEngine(t, []domain.Step{{Name: "q1", NextStep: "q2"}, {Name: "q2", NextStep: "q3"}})
	ctx := context.Background()

	adv, _ := engine.Submit(ctx, engine.Start(ctx, "s"), domain.Answers{"name": domain.String("Old")})
	adv, _ = engine.Submit(ctx, adv.Session, domain.Answers{"name": domain.String("New")})

	if adv.Session.Answers["name"].Text() != "New" {
		t.Errorf("expected later answer to win, got %q", adv.Session.Answers["name"].Text())
	}
}

func TestEngine_Restart(t *testing.T) {
	engine := newEngine(t, []domain.Step{{Name: "start", NextStep: "next"}, {Name: "next"}}, runtime.WithEntryStep("start"))
	ctx := context.Background()

	adv, err := engine.Submit(ctx, engine.Start(ctx, "s"), domain.Answers{"x": domain.String("1")})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	reset := engine.Restart(ctx, adv.Session)
	if reset.ID != "s" {
		t.Errorf("expected session id to be kept, got %q", reset.ID)
	}
	if reset.CurrentStep != "start" {
		t.Errorf("expected entry step, got %q", reset.CurrentStep)
	}
	if len(reset.Answers) != 0 {
		t.Errorf("expected empty answers, got %v", reset.Answers)
	}
	if reset.Status != domain.StatusActive {
		t.Errorf("expected active status, got %s", reset.Status)
	}
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered, left []string
	hooks := domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			entered = append(entered, e.Step)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			left = append(left, e.Step+"->"+e.NextStep)
		},
	}
	engine := newEngine(t, []domain.Step{{Name: "q1", NextStep: "q2"}, {Name: "q2"}}, runtime.WithLifecycleHooks(hooks))
	ctx := context.Background()

	sess := engine.Start(ctx, "s")
	adv, _ := engine.Submit(ctx, sess, nil)
	_, _ = engine.Submit(ctx, adv.Session, nil)

	if len(entered) != 2 || entered[0] != "q1" || entered[1] != "q2" {
		t.Errorf("expected enter [q1 q2], got %v", entered)
	}
	if len(left) != 2 || left[0] != "q1->q2" || left[1] != "q2->" {
		t.Errorf("expected leave [q1->q2 q2->], got %v", left)
	}
}

func TestEngine_CustomConditionEvaluator(t *testing.T) {
	called := false
	eval := func(ctx context.Context, condition string, answers domain.Answers) (bool, error) {
		called = true
		if condition == "explode" {
			return false, errors.New("boom")
		}
		return condition == "always", nil
	}
	engine := newEngine(t, []domain.Step{
		{Name: "q1", Condition: "explode", NextStep: "bad"},
		{Name: "q1", Condition: "always", NextStep: "good"},
	}, runtime.WithConditionEvaluator(eval))

	opts, err := engine.CurrentOptions(context.Background(), engine.Start(context.Background(), "s"))
	if err != nil {
		t.Fatalf("CurrentOptions failed: %v", err)
	}
	if !called || opts.NextStep != "good" {
		t.Errorf("expected evaluator errors to skip the candidate, got next %q", opts.NextStep)
	}
}

type failingLoader struct{}

func (failingLoader) LoadTable(ctx context.Context) (*domain.Table, error) {
	return nil, errors.New("disk on fire")
}

func TestEngine_LoaderError(t *testing.T) {
	engine := runtime.NewEngine(failingLoader{})
	ctx := context.Background()

	if _, err := engine.Submit(ctx, engine.Start(ctx, "s"), nil); err == nil {
		t.Error("expected loader error to surface from Submit")
	}
	if _, err := engine.Inspect(); err == nil {
		t.Error("expected loader error to surface from Inspect")
	}
}
