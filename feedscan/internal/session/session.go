// CLAUDE:SUMMARY Search session state machine: toggle start/pause/resume, recurring scan tick, scroll-and-retry, generation-guarded delayed callbacks.
// Package session owns the single search session of a page: its query,
// cursor, recurring tick and the Idle/Searching/Paused lifecycle driven by
// one toggle signal.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hazyhaar/feedscan/feedscan/event"
	"github.com/hazyhaar/feedscan/feedscan/internal/scan"
	"github.com/hazyhaar/feedscan/idgen"
)

// ErrEmptyQuery is returned when a toggle would start a search with a blank
// query. The session is left untouched.
var ErrEmptyQuery = errors.New("please enter a search term")

// State is the lifecycle state of a session.
type State int

const (
	Idle State = iota
	Searching
	Paused
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Button labels shown by the injected form.
const (
	LabelSearch = "Search"
	LabelPause  = "Pause"
	LabelResume = "Resume"
)

// LabelFor returns the button label matching a state.
func LabelFor(s State) string {
	switch s {
	case Searching:
		return LabelPause
	case Paused:
		return LabelResume
	default:
		return LabelSearch
	}
}

// Page is everything the session needs from the host page.
type Page interface {
	Scroller
	// Window captures the rendered items and the viewport height.
	Window(ctx context.Context) (scan.Window, error)
	// Reveal smooth-scrolls the item to the vertical center.
	Reveal(ctx context.Context, key scan.Key) error
	// Highlight marks the first occurrence of query inside the item.
	Highlight(ctx context.Context, key scan.Key, query string) error
	// SetLabel updates the toggle button text.
	SetLabel(ctx context.Context, label string) error
	// Describe renders the item for the located event.
	Describe(ctx context.Context, key scan.Key) (string, error)
}

// Config for creating a Session.
type Config struct {
	Page      Page
	Scheduler Scheduler

	// Emit receives every session event. Optional.
	Emit func(ctx context.Context, ev event.Event)

	// TickInterval is the scan period. Default: 1s.
	TickInterval time.Duration
	// HighlightDelay lets the reveal animation settle. Default: 150ms.
	HighlightDelay time.Duration
	// CursorDelay lets new items render after a scroll. Default: 100ms.
	CursorDelay time.Duration
	// ScrollFactor is the number of viewport heights per advance. Default: 2.
	ScrollFactor float64

	NewID  idgen.Generator
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Scheduler == nil {
		c.Scheduler = RealScheduler{}
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.HighlightDelay <= 0 {
		c.HighlightDelay = 150 * time.Millisecond
	}
	if c.CursorDelay <= 0 {
		c.CursorDelay = 100 * time.Millisecond
	}
	if c.ScrollFactor <= 0 {
		c.ScrollFactor = 2
	}
	if c.NewID == nil {
		c.NewID = idgen.Session
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Status is a point-in-time copy of the session.
type Status struct {
	SessionID  string   `json:"session_id,omitempty"`
	State      State    `json:"state"`
	Label      string   `json:"label"`
	Query      string   `json:"query,omitempty"`
	Cursor     scan.Key `json:"cursor,omitempty"`
	Ticks      uint64   `json:"ticks"`
	Generation uint64   `json:"generation"`
	LastResult string   `json:"last_result,omitempty"` // located | exhausted
	LastKey    scan.Key `json:"last_key,omitempty"`
}

// Session is the search session of one page. Safe for concurrent use; the
// mutex is never held across page calls.
type Session struct {
	cfg    Config
	logger *slog.Logger
	ctx    context.Context
	driver *Driver

	mu       sync.Mutex
	page     Page
	state    State
	query    string
	cursor   scan.Key
	stopTick func()
	gen      uint64 // bumped on every transition
	id       string
	ticks    uint64
	last     string
	lastKey  scan.Key
}

// New creates an Idle session.
func New(cfg Config) *Session {
	cfg.defaults()
	s := &Session{
		cfg:    cfg,
		logger: cfg.Logger,
		ctx:    context.Background(),
		page:   cfg.Page,
	}
	s.driver = NewDriver(pageScroller{s}, cfg.ScrollFactor)
	return s
}

// SetContext sets the context used by ticks and delayed callbacks.
func (s *Session) SetContext(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
}

// SetPage swaps the page the session drives, e.g. after a browser recycle.
// Query, cursor and state are kept.
func (s *Session) SetPage(p Page) {
	s.mu.Lock()
	s.page = p
	s.mu.Unlock()
}

// Toggle is the single user action: start, pause or resume depending on the
// current state. text is trimmed; a blank text can only pause.
func (s *Session) Toggle(ctx context.Context, text string) (Status, error) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	switch s.state {
	case Searching:
		s.stopTickLocked()
		s.state = Paused
		s.gen++
		st := s.statusLocked()
		s.mu.Unlock()

		s.logger.Info("session: paused", "session", st.SessionID, "query", st.Query)
		s.setLabel(ctx, LabelResume)
		s.emit(ctx, event.Event{Type: event.TypePaused})
		return st, nil

	default:
		if text == "" {
			st := s.statusLocked()
			s.mu.Unlock()
			s.logger.Warn("session: toggle rejected", "reason", ErrEmptyQuery)
			s.emit(ctx, event.Event{Type: event.TypeRejected, Detail: ErrEmptyQuery.Error()})
			return st, ErrEmptyQuery
		}
		resuming := s.state == Paused
		s.mu.Unlock()
		return s.start(ctx, text, resuming), nil
	}
}

// ResumeIfIdle restarts the last query when the session is Idle with a query
// and no running tick. Used after a full page reload. Reports whether a
// search was started.
func (s *Session) ResumeIfIdle(ctx context.Context) bool {
	s.mu.Lock()
	ok := s.state == Idle && s.query != "" && s.stopTick == nil
	query := s.query
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.start(ctx, query, false)
	return true
}

// Status returns a copy of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// Close stops the recurring tick. Pending one-shot callbacks still fire but
// find a new generation and do nothing.
func (s *Session) Close() {
	s.mu.Lock()
	s.stopTickLocked()
	s.gen++
	s.mu.Unlock()
}

// start moves to Searching with query, anchors the cursor on the current
// viewport center and (re)starts the tick.
func (s *Session) start(ctx context.Context, query string, resuming bool) Status {
	s.mu.Lock()
	s.state = Searching
	s.query = query
	s.gen++
	gen := s.gen
	if !resuming || s.id == "" {
		s.id = s.cfg.NewID()
	}
	s.mu.Unlock()

	cursor := s.centerKey(ctx)

	s.mu.Lock()
	if s.gen != gen {
		// Paused (or restarted) while reading the viewport.
		st := s.statusLocked()
		s.mu.Unlock()
		return st
	}
	s.cursor = cursor
	s.startTickLocked()
	st := s.statusLocked()
	s.mu.Unlock()

	typ := event.TypeStarted
	if resuming {
		typ = event.TypeResumed
	}
	s.logger.Info("session: searching", "session", st.SessionID, "query", query,
		"cursor", cursor, "resumed", resuming)
	s.setLabel(ctx, LabelPause)
	s.emit(ctx, event.Event{Type: typ, ItemKey: string(cursor)})
	return st
}

// startTickLocked starts the recurring tick, stopping any previous one
// first so at most one is ever active.
func (s *Session) startTickLocked() {
	s.stopTickLocked()
	s.stopTick = s.cfg.Scheduler.Every(s.cfg.TickInterval, s.tick)
}

func (s *Session) stopTickLocked() {
	if s.stopTick != nil {
		s.stopTick()
		s.stopTick = nil
	}
}

// tick runs one scan over the rendered window.
func (s *Session) tick() {
	s.mu.Lock()
	if s.state != Searching {
		s.mu.Unlock()
		return
	}
	gen, query, cursor := s.gen, s.query, s.cursor
	s.ticks++
	n := s.ticks
	ctx, page := s.ctx, s.page
	s.mu.Unlock()

	win, err := page.Window(ctx)
	if err != nil {
		s.logger.Warn("session: read window failed", "error", err)
		return
	}

	res := scan.Scan(query, cursor, win.Items)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("session: stale tick result dropped", "tick", n)
		return
	}
	if res.Located {
		s.stopTickLocked()
		s.state = Idle
		s.gen++
		s.last, s.lastKey = "located", res.Item.Key
		s.mu.Unlock()
		s.onLocated(ctx, page, res.Item, query, n)
		return
	}
	s.last, s.lastKey = "exhausted", ""
	s.mu.Unlock()
	s.onExhausted(ctx, win, gen, n)
}

func (s *Session) onLocated(ctx context.Context, page Page, item scan.Item, query string, tick uint64) {
	s.logger.Info("session: item located", "key", item.Key, "query", query, "tick", tick)

	if err := page.Reveal(ctx, item.Key); err != nil {
		s.logger.Warn("session: reveal failed", "key", item.Key, "error", err)
	}
	s.cfg.Scheduler.After(s.cfg.HighlightDelay, func() {
		if err := page.Highlight(ctx, item.Key, query); err != nil {
			s.logger.Warn("session: highlight failed", "key", item.Key, "error", err)
		}
	})
	s.setLabel(ctx, LabelSearch)

	snippet, err := page.Describe(ctx, item.Key)
	if err != nil || snippet == "" {
		snippet = item.Text
	}
	s.emit(ctx, event.Event{
		Type:    event.TypeLocated,
		ItemKey: string(item.Key),
		Snippet: snippet,
		Tick:    tick,
	})
}

func (s *Session) onExhausted(ctx context.Context, win scan.Window, gen, tick uint64) {
	s.logger.Debug("session: window exhausted", "items", len(win.Items), "tick", tick)
	if err := s.driver.Advance(ctx, win.ViewportHeight); err != nil {
		s.logger.Warn("session: scroll failed", "error", err)
	}
	s.cfg.Scheduler.After(s.cfg.CursorDelay, func() {
		s.recomputeCursor(ctx, gen)
	})
	s.emit(ctx, event.Event{Type: event.TypeExhausted, Tick: tick})
}

// recomputeCursor re-anchors on the post-scroll viewport center unless the
// session moved on since the tick that scheduled it.
func (s *Session) recomputeCursor(ctx context.Context, gen uint64) {
	s.mu.Lock()
	stale := s.gen != gen
	s.mu.Unlock()
	if stale {
		return
	}

	key := s.centerKey(ctx)

	s.mu.Lock()
	if s.gen == gen {
		s.cursor = key
	}
	s.mu.Unlock()
}

// centerKey returns the key of the item at the viewport center, or the null
// cursor when none straddles it or the page cannot be read.
func (s *Session) centerKey(ctx context.Context) scan.Key {
	s.mu.Lock()
	page := s.page
	s.mu.Unlock()

	win, err := page.Window(ctx)
	if err != nil {
		s.logger.Warn("session: read window for cursor failed", "error", err)
		return ""
	}
	item, ok := scan.Center(win.Items, win.ViewportHeight)
	if !ok {
		return ""
	}
	return item.Key
}

func (s *Session) setLabel(ctx context.Context, label string) {
	s.mu.Lock()
	page := s.page
	s.mu.Unlock()
	if err := page.SetLabel(ctx, label); err != nil {
		s.logger.Debug("session: set label failed", "label", label, "error", err)
	}
}

// Publish emits an event from outside the session (navigation, injection)
// stamped with the session identity and state.
func (s *Session) Publish(ctx context.Context, ev event.Event) {
	s.emit(ctx, ev)
}

func (s *Session) emit(ctx context.Context, ev event.Event) {
	if s.cfg.Emit == nil {
		return
	}
	s.mu.Lock()
	ev.SessionID = s.id
	ev.State = s.state.String()
	ev.Query = s.query
	s.mu.Unlock()
	ev.ID = idgen.New()
	ev.Timestamp = time.Now().UnixMilli()
	s.cfg.Emit(ctx, ev)
}

func (s *Session) statusLocked() Status {
	return Status{
		SessionID:  s.id,
		State:      s.state,
		Label:      LabelFor(s.state),
		Query:      s.query,
		Cursor:     s.cursor,
		Ticks:      s.ticks,
		Generation: s.gen,
		LastResult: s.last,
		LastKey:    s.lastKey,
	}
}

// pageScroller routes driver scrolls to whichever page is attached.
type pageScroller struct{ s *Session }

func (p pageScroller) ScrollBy(ctx context.Context, dy float64) error {
	p.s.mu.Lock()
	page := p.s.page
	p.s.mu.Unlock()
	return page.ScrollBy(ctx, dy)
}
