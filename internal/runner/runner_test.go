package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeBackend answers the few requests these tests issue. Calling any other
// method panics through the nil embedded interface.
type fakeBackend struct {
	api.Backend
	projects []model.Project
	err      error
	sawCtx   context.Context
}

func (f *fakeBackend) ListProjects(ctx context.Context) ([]model.Project, error) {
	f.sawCtx = ctx
	return f.projects, f.err
}

type listed struct{ r api.Result[[]model.Project] }
type copied struct{ err error }
type ping struct{}

func listCall() effect.Effect {
	return effect.Call[[]model.Project]{
		Request: api.ListProjects{},
		Wrap:    func(r api.Result[[]model.Project]) effect.Msg { return listed{r} },
	}
}

// runCmd executes cmd and expands batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestResolve_CallWrapsResultAndUsesDeadline(t *testing.T) {
	fb := &fakeBackend{projects: []model.Project{{ID: 1, Name: "A"}}}
	r := New(fb, WithTimeout(time.Second))

	msgs := r.Resolve(context.Background(), listCall())
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	got := msgs[0].(listed)
	if !got.r.OK() || got.r.Value[0].Name != "A" {
		t.Fatalf("unexpected result: %+v", got.r)
	}
	if _, ok := fb.sawCtx.Deadline(); !ok {
		t.Fatalf("expected the call context to carry a deadline")
	}
}

func TestResolve_ErrorIsNormalized(t *testing.T) {
	fb := &fakeBackend{err: errors.New("dial tcp: refused")}
	msgs := New(fb).Resolve(context.Background(), listCall())
	got := msgs[0].(listed)
	if got.r.Err == nil || got.r.Err.Status != 0 || got.r.Err.Message != "dial tcp: refused" {
		t.Fatalf("expected transport error with status 0, got %+v", got.r.Err)
	}
}

func TestResolve_FailedCallIsLoggedAtWarn(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	fb := &fakeBackend{err: model.NewApiError(409, "name taken")}
	New(fb, WithLogger(log)).Resolve(context.Background(), listCall())

	var line struct {
		Level   string `json:"level"`
		Msg     string `json:"msg"`
		Op      string `json:"op"`
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if line.Level != "WARN" || line.Msg != "api call failed" {
		t.Fatalf("expected a warning, got %+v", line)
	}
	if line.Op != "projects.list" || line.Status != 409 || line.Message != "name taken" {
		t.Fatalf("unexpected fields %+v", line)
	}

	buf.Reset()
	fb.err = nil
	New(fb, WithLogger(log)).Resolve(context.Background(), listCall())
	if !bytes.Contains(buf.Bytes(), []byte(`"level":"DEBUG"`)) || bytes.Contains(buf.Bytes(), []byte("WARN")) {
		t.Fatalf("expected only a debug line for a successful call, got %q", buf.String())
	}
}

func TestResolve_OrderTimersAndClipboard(t *testing.T) {
	var wrote string
	r := New(&fakeBackend{}, WithClipboard(func(s string) error { wrote = s; return nil }))

	eff := effect.Batch(
		effect.After{Delay: time.Hour, Msg: ping{}},
		effect.Clipboard{Text: "https://x/invite/abc", Wrap: func(err error) effect.Msg { return copied{err} }},
		effect.Toast{Text: "ignored"},
		listCall(),
	)
	msgs := r.Resolve(context.Background(), eff)
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d: %#v", len(msgs), msgs)
	}
	if _, ok := msgs[0].(ping); !ok {
		t.Fatalf("timer should fire immediately, got %#v", msgs[0])
	}
	if c, ok := msgs[1].(copied); !ok || c.err != nil {
		t.Fatalf("expected successful copy, got %#v", msgs[1])
	}
	if wrote != "https://x/invite/abc" {
		t.Fatalf("clipboard got %q", wrote)
	}
	if _, ok := msgs[2].(listed); !ok {
		t.Fatalf("expected list result last, got %#v", msgs[2])
	}
}

func TestResolve_ClipboardFailureIsReported(t *testing.T) {
	r := New(&fakeBackend{}, WithClipboard(func(string) error { return errors.New("no display") }))
	msgs := r.Resolve(context.Background(), effect.Clipboard{Text: "x", Wrap: func(err error) effect.Msg { return copied{err} }})
	if c := msgs[0].(copied); c.err == nil || c.err.Error() != "no display" {
		t.Fatalf("expected clipboard error, got %#v", c)
	}
}

func TestCmd_NoneIsNil(t *testing.T) {
	r := New(&fakeBackend{})
	if r.Cmd(effect.None{}) != nil {
		t.Fatalf("None should not produce a command")
	}
	if r.Cmd(effect.Batch()) != nil {
		t.Fatalf("empty batch should not produce a command")
	}
	if r.Cmd(effect.ResetSession{}) != nil {
		t.Fatalf("absorbed effects should not produce a command")
	}
}

func TestCmd_BatchRunsEveryLeaf(t *testing.T) {
	fb := &fakeBackend{projects: []model.Project{{ID: 2}}}
	r := New(fb)
	cmd := r.Cmd(effect.Batch(listCall(), effect.After{Delay: time.Millisecond, Msg: ping{}}))
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	var sawList, sawPing bool
	for _, m := range runCmd(cmd) {
		switch m.(type) {
		case listed:
			sawList = true
		case ping:
			sawPing = true
		}
	}
	if !sawList || !sawPing {
		t.Fatalf("expected both messages, list=%v ping=%v", sawList, sawPing)
	}
}
