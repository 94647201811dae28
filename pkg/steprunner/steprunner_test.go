package steprunner_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arnavsurve/popform/pkg/browser"
	"github.com/arnavsurve/popform/pkg/browser/browsertest"
	"github.com/arnavsurve/popform/pkg/log"
	"github.com/arnavsurve/popform/pkg/steprunner"
	"github.com/arnavsurve/popform/pkg/types"
)

func newLogger(buf *bytes.Buffer) types.Logger {
	return log.NewZerologAdapter(zerolog.New(buf).Level(zerolog.DebugLevel))
}

func decodePage(t *testing.T, src string) types.PageDefinition {
	t.Helper()
	var page types.PageDefinition
	require.NoError(t, yaml.Unmarshal([]byte(src), &page))
	return page
}

func runPage(t *testing.T, page *browsertest.Page, def types.PageDefinition, debugDir string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	b := &browsertest.Browser{NewPageFunc: func(int) *browsertest.Page { return page }}
	execCtx := types.NewExecutionContext(def, newLogger(&buf), debugDir != "", debugDir)
	err := steprunner.NewPageRunner(b, execCtx).Run(context.Background())
	return buf.String(), err
}

func TestPageRunner_LoginScenario(t *testing.T) {
	user := &browsertest.Element{ID: "user", Name: "user", Type: "text"}
	submit := &browsertest.Element{ID: "submit", Type: "submit"}
	page := browsertest.NewPage(browsertest.NewDocument(user, submit))
	page.NavigatesOn["#submit"] = true

	def := decodePage(t, `
name: login
url: http://x/login
fields:
  user: bob
click: "#submit"
`)
	out, err := runPage(t, page, def, "")
	require.NoError(t, err)

	assert.Equal(t, "http://x/login", page.URL)
	assert.Equal(t, "bob", user.Prop("value"))
	assert.Equal(t, []string{"focus", "change", "blur"}, user.Events)
	assert.Equal(t, []string{"click"}, submit.Events)
	assert.Contains(t, out, "Populated login: http://x/login")
	assert.Contains(t, out, "Finished login: http://x/login")
	assert.True(t, page.Closed)
}

func TestPageRunner_CheckboxObjectBranch(t *testing.T) {
	opt := &browsertest.Element{ID: "opt", Name: "opt", Type: "checkbox"}
	page := browsertest.NewPage(browsertest.NewDocument(opt))

	def := decodePage(t, `
name: prefs
url: http://x/prefs
fields:
  opt:
    checked: true
`)
	_, err := runPage(t, page, def, "")
	require.NoError(t, err)

	assert.Equal(t, true, opt.Prop("checked"))
	assert.Nil(t, opt.Prop("value"))
	assert.Equal(t, []string{"field"}, page.Requests)
}

func TestPageRunner_CheckboxLiteralIsCoerced(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"string", `"yes"`, true},
		{"quoted false", `"false"`, true},
		{"bool true", "true", true},
		{"bool false", "false", false},
		{"zero", "0", false},
		{"null", "~", false},
		{"empty string", `""`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := &browsertest.Element{ID: "opt", Name: "opt", Type: "checkbox", Props: map[string]any{"checked": !tt.want}}
			page := browsertest.NewPage(browsertest.NewDocument(opt))

			def := decodePage(t, "name: prefs\nurl: http://x/prefs\nfields:\n  opt: "+tt.value+"\n")
			_, err := runPage(t, page, def, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, opt.Prop("checked"))
		})
	}
}

func TestPageRunner_FieldAppliesToEveryNamedElement(t *testing.T) {
	a := &browsertest.Element{ID: "a", Name: "email", Type: "text"}
	b := &browsertest.Element{ID: "b", Name: "email", Type: "text"}
	page := browsertest.NewPage(browsertest.NewDocument(a, b))

	def := decodePage(t, `
name: dup
url: http://x/dup
fields:
  email: a@b.c
  missing: nobody
`)
	out, err := runPage(t, page, def, "")
	require.NoError(t, err)

	for _, el := range []*browsertest.Element{a, b} {
		assert.Equal(t, "a@b.c", el.Prop("value"))
		assert.Equal(t, []string{"focus", "change", "blur"}, el.Events)
	}
	assert.Contains(t, out, `"matches":0`)
}

func TestPageRunner_ElementSequenceAppliedTwiceDoubles(t *testing.T) {
	tags := &browsertest.Element{ID: "tags"}
	page := browsertest.NewPage(browsertest.NewDocument(tags))

	def := decodePage(t, `
name: tags
url: http://x/tags
steps:
  - elements:
      - query: "#tags"
        push: ["x"]
  - elements:
      - query: "#tags"
        push: ["x"]
`)
	out, err := runPage(t, page, def, "")
	require.NoError(t, err)

	assert.Equal(t, []any{"x", "x"}, tags.Prop("push"))
	assert.Empty(t, tags.Events)
	assert.Contains(t, out, "Populated tags-0: http://x/tags")
	assert.Contains(t, out, "Populated tags-1: http://x/tags")
}

func TestPageRunner_ElementFieldFlagEmitsEvents(t *testing.T) {
	box := &browsertest.Element{ID: "box", Props: map[string]any{"dataset": map[string]any{"a": "1"}}}
	page := browsertest.NewPage(browsertest.NewDocument(box))

	def := decodePage(t, `
name: box
url: http://x/box
elements:
  - query: "#box"
    field: true
    value: hello
    dataset:
      b: "2"
  - query: "#absent"
    value: ignored
`)
	_, err := runPage(t, page, def, "")
	require.NoError(t, err)

	assert.Equal(t, "hello", box.Prop("value"))
	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, box.Prop("dataset"))
	assert.Equal(t, []string{"focus", "change", "blur"}, box.Events)
}

func TestPageRunner_MissingClickTargetIsFatal(t *testing.T) {
	page := browsertest.NewPage(nil)
	def := decodePage(t, `
name: broken
url: http://x/broken
click: "#nope"
`)
	_, err := runPage(t, page, def, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, steprunner.ErrElementNotFound)
	assert.Contains(t, err.Error(), `"broken"`)
	assert.True(t, page.Closed)
}

func TestPageRunner_MissingIframe(t *testing.T) {
	t.Run("tolerated during mutation", func(t *testing.T) {
		page := browsertest.NewPage(nil)
		def := decodePage(t, `
name: framed
url: http://x/framed
iframe: "#checkout"
fields:
  card: "4242"
`)
		out, err := runPage(t, page, def, "")
		require.NoError(t, err)
		assert.Contains(t, out, "Iframe not found")
	})

	t.Run("fatal for clicks", func(t *testing.T) {
		page := browsertest.NewPage(nil)
		def := decodePage(t, `
name: framed
url: http://x/framed
iframe: "#checkout"
click: "#pay"
`)
		_, err := runPage(t, page, def, "")
		assert.ErrorIs(t, err, steprunner.ErrFrameNotFound)
	})
}

func TestPageRunner_IframeFields(t *testing.T) {
	card := &browsertest.Element{ID: "card", Name: "card", Type: "text"}
	doc := browsertest.NewDocument()
	doc.Frames["#checkout"] = browsertest.NewDocument(card)
	page := browsertest.NewPage(doc)

	def := decodePage(t, `
name: framed
url: http://x/framed
iframe: "#checkout"
fields:
  card: "4242"
`)
	_, err := runPage(t, page, def, "")
	require.NoError(t, err)
	assert.Equal(t, "4242", card.Prop("value"))
}

func TestPageRunner_KeysAfterClicks(t *testing.T) {
	go1 := &browsertest.Element{ID: "go"}
	page := browsertest.NewPage(browsertest.NewDocument(go1))
	page.NavigatesOn["#go"] = true
	page.NavigatesOn["Enter"] = true
	page.NavigatesOn["Tab"] = true

	def := decodePage(t, `
name: keys
url: http://x/keys
click: "#go"
keys: [Tab, Enter]
`)
	_, err := runPage(t, page, def, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"click"}, go1.Events)
	assert.Equal(t, []string{"Tab", "Enter"}, page.Keys)
	assert.Equal(t, []string{"click"}, page.Requests)
}

func TestPageRunner_DebugScreenshots(t *testing.T) {
	page := browsertest.NewPage(nil)
	dir := t.TempDir()
	def := decodePage(t, `
name: shots
url: http://x/shots
steps:
  - description: first
  - description: second
`)
	_, err := runPage(t, page, def, dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "shots-0.before.debug.png"),
		filepath.Join(dir, "shots-0.after.debug.png"),
		filepath.Join(dir, "shots-1.before.debug.png"),
		filepath.Join(dir, "shots-1.after.debug.png"),
	}, page.Screenshots)
}

func TestPageRunner_CustomMessageAndConsole(t *testing.T) {
	page := browsertest.NewPage(nil)
	def := decodePage(t, `
name: msg
url: http://x/msg
message: All done
`)
	var buf bytes.Buffer
	b := &browsertest.Browser{NewPageFunc: func(int) *browsertest.Page { return page }}
	execCtx := types.NewExecutionContext(def, newLogger(&buf), false, "")
	runner := steprunner.NewPageRunner(b, execCtx)

	require.NoError(t, runner.Run(context.Background()))
	page.Console(browser.ConsoleMessage{Type: "log", Text: "line one\nline two"})

	out := buf.String()
	assert.Contains(t, out, "All done")
	assert.NotContains(t, out, "Finished msg")
	assert.Contains(t, out, `"console_line":"line one"`)
	assert.Contains(t, out, `"console_line":"line two"`)
	assert.Contains(t, out, `"console_type":"log"`)
}

func TestPageRunner_EvaluateErrorPropagates(t *testing.T) {
	page := browsertest.NewPage(nil)
	page.EvaluateErr = errors.New("target closed")
	def := decodePage(t, `
name: dead
url: http://x/dead
fields:
  a: b
`)
	_, err := runPage(t, page, def, "")
	assert.ErrorContains(t, err, "target closed")
}

func TestNavigationWaiter_TimeoutIsSuccess(t *testing.T) {
	var buf bytes.Buffer
	page := browsertest.NewPage(nil)
	waiter := steprunner.NavigationWaiter{
		Page:    page,
		Wait:    types.WaitOptions{Until: types.WaitLoad},
		Timeout: 20 * time.Millisecond,
		Logger:  newLogger(&buf),
	}

	start := time.Now()
	err := waiter.Trigger(context.Background(), "noop", func(context.Context) error { return nil })

	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, buf.String(), "No navigation completed after action")
}

func TestNavigationWaiter_ActionErrorPropagates(t *testing.T) {
	var buf bytes.Buffer
	waiter := steprunner.NavigationWaiter{
		Page:    browsertest.NewPage(nil),
		Timeout: time.Second,
		Logger:  newLogger(&buf),
	}
	boom := errors.New("boom")

	err := waiter.Trigger(context.Background(), "fail", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestNavigationWaiter_CancelledContextPropagates(t *testing.T) {
	var buf bytes.Buffer
	waiter := steprunner.NavigationWaiter{
		Page:    browsertest.NewPage(nil),
		Timeout: time.Minute,
		Logger:  newLogger(&buf),
	}
	ctx, cancel := context.WithCancel(context.Background())

	err := waiter.Trigger(ctx, "cancel", func(context.Context) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNavigationTimeout(t *testing.T) {
	assert.Equal(t, steprunner.DefaultNavigationTimeout, steprunner.NavigationTimeout(types.Step{}))
	assert.Equal(t, 250*time.Millisecond, steprunner.NavigationTimeout(types.Step{Delay: 250}))
}

func TestStepExecutor_PassiveDelay(t *testing.T) {
	var buf bytes.Buffer
	page := browsertest.NewPage(nil)
	def := types.PageDefinition{Name: "wait", URL: "http://x/wait"}
	executor := steprunner.StepExecutor{
		Page:    page,
		ExecCtx: types.NewExecutionContext(def, newLogger(&buf), false, ""),
		Logger:  newLogger(&buf),
	}

	start := time.Now()
	require.NoError(t, executor.Execute(context.Background(), "wait", types.Step{Delay: 30}))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Contains(t, buf.String(), string(steprunner.PhaseAwait))
}

func TestStepExecutor_DelayBoundsNavigationWait(t *testing.T) {
	var buf bytes.Buffer
	btn := &browsertest.Element{ID: "btn"}
	page := browsertest.NewPage(browsertest.NewDocument(btn))
	def := types.PageDefinition{Name: "slow", URL: "http://x/slow"}
	executor := steprunner.StepExecutor{
		Page:    page,
		ExecCtx: types.NewExecutionContext(def, newLogger(&buf), false, ""),
		Logger:  newLogger(&buf),
	}

	start := time.Now()
	err := executor.Execute(context.Background(), "slow", types.Step{Click: types.Selectors{"#btn"}, Delay: 25})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []string{"click"}, btn.Events)
	assert.NotContains(t, buf.String(), string(steprunner.PhaseAwait))
}

func TestScreenshotName(t *testing.T) {
	assert.Equal(t, "login-2.before.debug.png", steprunner.ScreenshotName("login-2", steprunner.PhaseBefore))
	assert.Equal(t, "login.after.debug.png", steprunner.ScreenshotName("login", steprunner.PhaseAfter))
}
