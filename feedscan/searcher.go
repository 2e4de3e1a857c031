// CLAUDE:SUMMARY Top-level orchestrator: browser lifecycle, page attachment, search session, navigation watcher, sinks.
// Package feedscan searches an infinitely scrolling feed in place. It drives
// a Chrome tab through CDP, injects a "Search in feed" form next to the
// site's own search box and, on each toggle, scans the rendered items below
// the viewport center for a case-insensitive substring, scrolling further
// down until one matches.
//
// feedscan does not index or rank anything. It emits session events
// (started, located, exhausted, ...) to sinks (stdout, webhook, callback,
// SQLite journal) for whoever wants to follow along.
package feedscan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/feedscan/feedscan/event"
	"github.com/hazyhaar/feedscan/feedscan/internal/browser"
	"github.com/hazyhaar/feedscan/feedscan/internal/eligibility"
	"github.com/hazyhaar/feedscan/feedscan/internal/navwatch"
	"github.com/hazyhaar/feedscan/feedscan/internal/page"
	"github.com/hazyhaar/feedscan/feedscan/internal/session"
	"github.com/hazyhaar/feedscan/feedscan/internal/sink"
	"github.com/hazyhaar/feedscan/feedscan/internal/snippet"
	"github.com/hazyhaar/feedscan/kit"
)

// ErrEmptyQuery is returned when a search is started without a term.
var ErrEmptyQuery = session.ErrEmptyQuery

// ErrNotAttached is returned when a toggle arrives before the feed tab is open.
var ErrNotAttached = errors.New("feedscan: no feed page attached")

// Status is a point-in-time copy of the search session.
type Status = session.Status

// Searcher is the top-level orchestrator. Create one per feed tab.
type Searcher struct {
	cfg      *Config
	mgr      *browser.Manager
	sinkR    *sink.Router
	sess     *session.Session
	nav      *navwatch.Watcher
	snippets *snippet.Renderer
	logger   *slog.Logger

	mu       sync.Mutex
	pg       *page.Page
	attached bool
	unlisten context.CancelFunc
}

// New creates a Searcher from configuration. Call Start to open the feed.
func New(cfg *Config, logger *slog.Logger, sinks ...Sink) *Searcher {
	return newSearcher(cfg, logger, nil, sinks...)
}

func newSearcher(cfg *Config, logger *slog.Logger, sched session.Scheduler, sinks ...Sink) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.ApplyDefaults()

	s := &Searcher{
		cfg:      cfg,
		sinkR:    sink.NewRouter(logger, sinks...),
		snippets: snippet.New(cfg.Search.SnippetMax),
		logger:   logger,
	}

	s.mgr = browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		MemoryLimit:      cfg.Browser.MemoryLimit,
		RecycleInterval:  cfg.Browser.RecycleInterval,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Mode:             browser.ParseMode(cfg.Browser.Stealth),
		XvfbDisplay:      cfg.Browser.XvfbDisplay,
		UserDataDir:      cfg.Browser.UserDataDir,
		Logger:           logger,
	})

	s.sess = session.New(session.Config{
		Scheduler:      sched,
		Emit:           s.emit,
		TickInterval:   cfg.Search.TickInterval,
		HighlightDelay: cfg.Search.HighlightDelay,
		CursorDelay:    cfg.Search.CursorDelay,
		ScrollFactor:   cfg.Search.ScrollFactor,
		Logger:         logger,
	})

	s.nav = navwatch.New(navwatch.Config{
		Session:           s.sess,
		Oracle:            eligibility.New(cfg.Page.AllowedPaths, cfg.Page.CanonicalHost, logger),
		Debounce:          cfg.Search.NavDebounce,
		PollInterval:      cfg.Search.PollInterval,
		InjectDelay:       cfg.Search.InjectDelay,
		ReloadResumeDelay: cfg.Search.ReloadResumeDelay,
		Logger:            logger,
	})

	return s
}

// Start launches the browser, opens the feed and injects the search form.
func (s *Searcher) Start(ctx context.Context) error {
	if _, err := s.mgr.Start(ctx); err != nil {
		return fmt.Errorf("feedscan: start browser: %w", err)
	}

	s.sess.SetContext(ctx)
	s.nav.Start(ctx)

	// The session survives a recycle; only the tab is replaced.
	s.mgr.SetRecycleCallback(&browser.RecycleCallback{
		BeforeRecycle: s.detach,
		AfterRecycle: func(*rod.Browser) {
			if err := s.attach(ctx); err != nil {
				s.logger.Error("feedscan: reattach after recycle failed", "error", err)
			}
		},
	})

	if err := s.attach(ctx); err != nil {
		return err
	}
	s.logger.Info("feedscan: feed open", "url", s.cfg.Page.URL)
	return nil
}

// Toggle starts, pauses or resumes the search. ErrEmptyQuery is returned
// when a search would start without a term.
func (s *Searcher) Toggle(ctx context.Context, text string) (Status, error) {
	s.mu.Lock()
	attached := s.attached
	s.mu.Unlock()
	if !attached {
		return s.sess.Status(), ErrNotAttached
	}

	st, err := s.sess.Toggle(ctx, text)
	if err != nil {
		return st, err
	}
	s.logger.Info("feedscan: toggled",
		"transport", kit.GetTransport(ctx), "state", st.State, "query", st.Query)
	return st, nil
}

// Status returns the current session status.
func (s *Searcher) Status() Status {
	return s.sess.Status()
}

// Stop shuts down the session, the tab, the sinks and the browser.
func (s *Searcher) Stop() {
	s.nav.Stop()
	s.sess.Close()
	s.detach()
	if err := s.sinkR.Close(); err != nil {
		s.logger.Warn("feedscan: close sinks", "error", err)
	}
	s.mgr.Close()
}

// attach opens the feed tab, installs the page script and wires signals.
func (s *Searcher) attach(ctx context.Context) error {
	tab, err := browser.OpenTab(ctx, s.mgr, s.cfg.Page.URL)
	if err != nil {
		return fmt.Errorf("feedscan: open tab: %w", err)
	}
	pg, err := page.Attach(tab, page.Config{
		ItemSelector:       s.cfg.Page.ItemSelector,
		NativeFormSelector: s.cfg.Page.NativeFormSelector,
		Snippets:           s.snippets,
		Logger:             s.logger,
	})
	if err != nil {
		tab.Close()
		return fmt.Errorf("feedscan: attach page: %w", err)
	}

	listenCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.pg = pg
	s.unlisten = cancel
	s.mu.Unlock()

	go pg.Listen(listenCtx, func(sig page.Signal) { s.onSignal(listenCtx, pg, sig) })
	// The script signalled this document before Listen subscribed.
	s.bind(pg, pg.URL())
	return nil
}

// feedPage is a tab as seen by both the session and the watcher.
type feedPage interface {
	session.Page
	navwatch.Page
}

// bind hands p to the session and the watcher and treats url as freshly
// loaded: the form is injected and reload auto-resume is armed.
func (s *Searcher) bind(p feedPage, url string) {
	s.sess.SetPage(p)
	s.nav.SetPage(p)
	s.mu.Lock()
	s.attached = true
	s.mu.Unlock()
	s.nav.Loaded(url)
}

// detach stops listening to the current tab and closes it.
func (s *Searcher) detach() {
	s.mu.Lock()
	pg, cancel := s.pg, s.unlisten
	s.pg, s.unlisten = nil, nil
	s.attached = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if pg != nil {
		pg.Detach()
		pg.Rod().Close()
	}
}

func (s *Searcher) onSignal(ctx context.Context, pg *page.Page, sig page.Signal) {
	switch sig.Op {
	case page.OpToggle:
		ctx = kit.WithTransport(ctx, "page")
		if _, err := s.Toggle(ctx, sig.Value); errors.Is(err, ErrEmptyQuery) {
			if err := pg.Alert(ctx, "Please enter a search term."); err != nil {
				s.logger.Warn("feedscan: alert failed", "error", err)
			}
		}
	case page.OpNavigate:
		s.nav.Navigated(sig.Value)
	case page.OpLoad:
		s.nav.Loaded(sig.Value)
	case page.OpReady:
		go s.nav.Reanchor(sig.Value)
	}
}

// emit stamps events with the current page URL and sends them to the sinks.
func (s *Searcher) emit(ctx context.Context, ev event.Event) {
	if ev.PageURL == "" {
		s.mu.Lock()
		pg := s.pg
		s.mu.Unlock()
		if pg != nil {
			ev.PageURL = pg.URL()
		}
	}
	s.sinkR.Emit(ctx, ev)
}
