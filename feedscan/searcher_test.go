package feedscan

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hazyhaar/feedscan/feedscan/event"
	"github.com/hazyhaar/feedscan/feedscan/internal/eligibility"
	"github.com/hazyhaar/feedscan/feedscan/internal/scan"
	"github.com/hazyhaar/feedscan/feedscan/internal/session"

	_ "modernc.org/sqlite"
)

// idleScheduler never fires: tests drive toggles only.
type idleScheduler struct{}

func (idleScheduler) Every(time.Duration, func()) func() { return func() {} }
func (idleScheduler) After(time.Duration, func())        {}

type stubPage struct{}

func (stubPage) ScrollBy(context.Context, float64) error { return nil }
func (stubPage) Window(context.Context) (scan.Window, error) {
	return scan.Window{
		ViewportHeight: 800,
		Items: []scan.Item{
			{Key: "k1", Text: "first", Top: 200, Bottom: 400},
			{Key: "k2", Text: "second", Top: 400, Bottom: 600},
		},
	}, nil
}
func (stubPage) Reveal(context.Context, scan.Key) error             { return nil }
func (stubPage) Highlight(context.Context, scan.Key, string) error  { return nil }
func (stubPage) SetLabel(context.Context, string) error             { return nil }
func (stubPage) Describe(context.Context, scan.Key) (string, error) { return "", nil }

// The stub sits on a path no oracle allows, so binding it never injects.
func (stubPage) Hints(context.Context) (string, eligibility.Hints, error) {
	return "/elsewhere", eligibility.Hints{}, nil
}
func (stubPage) HasNativeForm(context.Context) (bool, error)    { return true, nil }
func (stubPage) Inject(context.Context, string) (string, error) { return "injected", nil }
func (stubPage) Focused(context.Context) (bool, error)          { return false, nil }

// focusPage counts focus checks, which only the reload resume timer makes.
type focusPage struct {
	stubPage
	checks atomic.Int32
}

func (p *focusPage) Focused(context.Context) (bool, error) {
	p.checks.Add(1)
	return true, nil
}

type eventLog struct {
	mu     sync.Mutex
	events []event.Event
}

func (l *eventLog) add(_ context.Context, ev event.Event) error {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	return nil
}

func (l *eventLog) types() []event.Type {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []event.Type
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

// wait returns the event types once at least n were delivered.
func (l *eventLog) wait(t *testing.T, n int) []event.Type {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got := l.types()
		if len(got) >= n || time.Now().After(deadline) {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// testSearcher returns a Searcher attached to a stub page, without Chrome.
func testSearcher(t *testing.T) (*Searcher, *eventLog) {
	t.Helper()
	log := &eventLog{}
	s := newSearcher(DefaultConfig(), nil, idleScheduler{}, NewCallbackSink(log.add))
	s.bind(stubPage{}, "https://x.com/elsewhere")
	t.Cleanup(s.Stop)
	return s, log
}

func TestToggle_NotAttached(t *testing.T) {
	s := newSearcher(nil, nil, idleScheduler{})
	if _, err := s.Toggle(context.Background(), "cats"); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("got %v, want ErrNotAttached", err)
	}
}

func TestToggle_Lifecycle(t *testing.T) {
	s, log := testSearcher(t)
	ctx := context.Background()

	st, err := s.Toggle(ctx, "  Cats ")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if st.State != session.Searching || st.Query != "Cats" {
		t.Errorf("after start: got %s %q", st.State, st.Query)
	}
	if st.Cursor != "k2" {
		t.Errorf("cursor: got %q, want k2", st.Cursor)
	}

	st, _ = s.Toggle(ctx, "")
	if st.State != session.Paused || st.Label != session.LabelResume {
		t.Errorf("after pause: got %s %q", st.State, st.Label)
	}

	st, _ = s.Toggle(ctx, "dogs")
	if st.State != session.Searching || st.Query != "dogs" {
		t.Errorf("after resume: got %s %q", st.State, st.Query)
	}

	want := []event.Type{event.TypeStarted, event.TypePaused, event.TypeResumed}
	got := log.wait(t, len(want))
	if len(got) != len(want) {
		t.Fatalf("events: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d]: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestToggle_EmptyQuery(t *testing.T) {
	s, log := testSearcher(t)

	st, err := s.Toggle(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("got %v, want ErrEmptyQuery", err)
	}
	if st.State != session.Idle {
		t.Errorf("state: got %s, want idle", st.State)
	}
	if got := log.wait(t, 1); len(got) != 1 || got[0] != event.TypeRejected {
		t.Errorf("events: got %v, want [rejected]", got)
	}
}

func TestSinksFromConfig(t *testing.T) {
	dir := t.TempDir()
	sinks, err := SinksFromConfig([]SinkConfig{
		{Type: "stdout"},
		{Type: "webhook", URL: "http://127.0.0.1:1/hook"},
		{Type: "sqlite", Path: dir + "/journal.db"},
		{Type: "carrier-pigeon"},
	}, testLogger())
	if err != nil {
		t.Fatalf("SinksFromConfig: %v", err)
	}
	if len(sinks) != 3 {
		t.Errorf("sinks: got %d, want 3", len(sinks))
	}
	for _, s := range sinks {
		s.Close()
	}

	sinks, err = SinksFromConfig(nil, testLogger())
	if err != nil || len(sinks) != 1 {
		t.Errorf("default sinks: got %d, %v", len(sinks), err)
	}
}

func TestStdioSinks_NoStdoutFallback(t *testing.T) {
	sinks, err := StdioSinks([]SinkConfig{
		{Type: "stdout"},
		{Type: "carrier-pigeon"},
	}, testLogger())
	if err != nil {
		t.Fatalf("StdioSinks: %v", err)
	}
	if len(sinks) != 0 {
		t.Errorf("sinks: got %d, want 0", len(sinks))
	}

	sinks, err = StdioSinks([]SinkConfig{
		{Type: "stdout"},
		{Type: "sqlite", Path: t.TempDir() + "/journal.db"},
	}, testLogger())
	if err != nil {
		t.Fatalf("StdioSinks: %v", err)
	}
	if len(sinks) != 1 {
		t.Errorf("sinks: got %d, want 1 (journal only)", len(sinks))
	}
	for _, s := range sinks {
		s.Close()
	}
}

func TestBind_ArmsReloadResume(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.ReloadResumeDelay = 10 * time.Millisecond
	s := newSearcher(cfg, testLogger(), idleScheduler{})
	t.Cleanup(s.Stop)

	p := &focusPage{}
	s.bind(p, "https://x.com/elsewhere")

	deadline := time.Now().Add(2 * time.Second)
	for p.checks.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("reload resume never checked focus after bind")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Page.URL != "https://x.com/home" {
		t.Errorf("url: got %q", cfg.Page.URL)
	}
	if cfg.Search.TickInterval != time.Second {
		t.Errorf("tick: got %v", cfg.Search.TickInterval)
	}
}
