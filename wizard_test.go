package wizard_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aibee/wizard"
	"github.com/aibee/wizard/pkg/adapters/memory"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `q1, null, null, ["Project name?", "Is it provincial?"], ["projectName", "isProvincial"], null, null, null, q2
q2, q1, isProvincial, ["Which province?"], ["province"], null, null, ["sector=Provincial"], q3
q2, q1, !isProvincial, ["Which ministry?"], ["federalMinistry"], null, null, ["sector=Federal"], q3
q3, q2, null, [], [], ["Write objectives for ^projectName"], ["Objectives"], null, null
`

func newEngine(t *testing.T, opts ...wizard.Option) *wizard.Engine {
	t.Helper()
	loader, err := memory.NewFromSource(table, "")
	require.NoError(t, err)
	eng, err := wizard.New("", append([]wizard.Option{wizard.WithLoader(loader)}, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestEngine_ConditionalFlow(t *testing.T) {
	runner := ports.PromptRunnerFunc(func(ctx context.Context, prompt string) (domain.PromptResult, error) {
		return domain.Raw("Objectives:\n- " + prompt), nil
	})
	eng := newEngine(t, wizard.WithPromptRunner(runner))
	ctx := context.Background()
	id := "s1"

	opts, err := eng.Questions(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "q1", opts.StepName)
	assert.Equal(t, []string{"projectName", "isProvincial"}, opts.Variables)

	adv, diff, err := eng.Submit(ctx, id, domain.Answers{
		"projectName":  domain.String("Ring Road"),
		"isProvincial": domain.String("no"),
	})
	require.NoError(t, err)
	assert.Equal(t, "q2", adv.NextStep)
	require.NotNil(t, diff)
	assert.Equal(t, "q2", *diff.CurrentStep)

	opts, err = eng.Questions(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"federalMinistry"}, opts.Variables, "negated condition selects the federal branch")

	_, _, err = eng.Submit(ctx, id, domain.Answers{"federalMinistry": domain.String("Communications")})
	require.NoError(t, err)

	adv, _, err = eng.Submit(ctx, id, nil)
	require.NoError(t, err)
	assert.True(t, adv.Completed)

	answers, err := eng.Export(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Federal", answers["sector"].Text())
	assert.Equal(t, "Objectives:\n- Write objectives for Ring Road", answers["Objectives"].Text())

	opts, err = eng.Questions(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, opts.StepName, "completed sessions have no questions")
}

func TestEngine_Restart(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, _, err := eng.Submit(ctx, "s", domain.Answers{"projectName": domain.String("x")})
	require.NoError(t, err)

	sess, err := eng.Restart(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "q1", sess.CurrentStep)
	assert.Empty(t, sess.Answers)

	answers, err := eng.Export(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestEngine_SessionsAreIsolated(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, _, err := eng.Submit(ctx, "a", domain.Answers{"projectName": domain.String("A")})
	require.NoError(t, err)

	answers, err := eng.Export(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestEngine_ConcurrentSubmitsOnOneSession(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := eng.Submit(ctx, "shared", domain.Answers{"isProvincial": domain.String("yes")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := eng.Session(ctx, "shared")
	require.NoError(t, err)
	// q1 -> q2 -> q3 -> completed, remaining submits are no-ops on a completed session.
	assert.True(t, sess.Completed())
	assert.Equal(t, []string{"q1", "q2", "q3"}, sess.History)
}

func TestEngine_Write(t *testing.T) {
	eng := newEngine(t)
	answers := domain.Answers{"projectName": domain.String("Ring Road")}

	var md bytes.Buffer
	_, err := eng.Write(&md, wizard.FormatMarkdown, answers)
	require.NoError(t, err)
	assert.Contains(t, md.String(), "Ring Road")

	var doc bytes.Buffer
	_, err = eng.Write(&doc, wizard.FormatDOCX, answers)
	require.NoError(t, err)
	assert.Equal(t, "PK", doc.String()[:2], "docx is a zip package")

	_, err = eng.Write(&doc, "pdf", answers)
	assert.ErrorContains(t, err, "unknown document format")
}

func TestEngine_SubmitSanitizesAnswers(t *testing.T) {
	eng := newEngine(t, wizard.WithMaxAnswerSize(32))
	ctx := context.Background()

	_, _, err := eng.Submit(ctx, "s", domain.Answers{"projectName": domain.String("Road\x1b[0m\x00")})
	require.NoError(t, err)
	answers, err := eng.Export(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Road[0m", answers["projectName"].Text())

	_, _, err = eng.Submit(ctx, "t", domain.Answers{"projectName": domain.String(strings.Repeat("a", 33))})
	require.ErrorIs(t, err, domain.ErrInvalidAnswer)

	sess, err := eng.Session(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "q1", sess.CurrentStep, "rejected answers must not advance the session")
}

func TestNew_RequiresTable(t *testing.T) {
	_, err := wizard.New("")
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts_with_json.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"capitalCost": {"data": []}}`), 0644))

	defaults, err := wizard.LoadDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, defaults["capitalCost"].JSON())

	missing, err := wizard.LoadDefaults(filepath.Join(dir, "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestEngine_AutoReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "steps.txt")
	require.NoError(t, os.WriteFile(path, []byte("q1, null, null, [\"A?\"], [\"a\"], null, null, null, null\n"), 0644))

	eng, err := wizard.New(path)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, eng.AutoReload(ctx))

	opts, err := eng.Questions(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, opts.Variables)

	require.NoError(t, os.WriteFile(path, []byte("q1, null, null, [\"B?\"], [\"b\"], null, null, null, null\n"), 0644))

	assert.Eventually(t, func() bool {
		opts, err := eng.Questions(ctx, "s")
		return err == nil && len(opts.Variables) == 1 && opts.Variables[0] == "b"
	}, 3*time.Second, 50*time.Millisecond)
}
