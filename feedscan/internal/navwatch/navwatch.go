// CLAUDE:SUMMARY Re-injects the search form after SPA navigation or reload and restores the label; never resets the session.
// Package navwatch reacts to host page navigation. SPA URL changes are
// debounced, then the injection procedure runs again: eligibility check, wait
// for the native search form, inject the feed form and restore the button
// label from the session state. A full document load also arms the reload
// auto-resume.
package navwatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/feedscan/feedscan/event"
	"github.com/hazyhaar/feedscan/feedscan/internal/eligibility"
	"github.com/hazyhaar/feedscan/feedscan/internal/session"
)

// Page is what the watcher needs from the tab.
type Page interface {
	Hints(ctx context.Context) (string, eligibility.Hints, error)
	HasNativeForm(ctx context.Context) (bool, error)
	Inject(ctx context.Context, label string) (string, error)
	SetLabel(ctx context.Context, label string) error
	Focused(ctx context.Context) (bool, error)
}

// Session is the part of the search session the watcher reads and drives.
type Session interface {
	Status() session.Status
	ResumeIfIdle(ctx context.Context) bool
	Publish(ctx context.Context, ev event.Event)
}

// Config for a Watcher.
type Config struct {
	Page    Page
	Session Session
	Oracle  *eligibility.Oracle

	// Debounce for URL change bursts. Default: 300ms.
	Debounce time.Duration
	// PollInterval between native form checks. Default: 1s.
	PollInterval time.Duration
	// InjectDelay after the native form appears. Default: 500ms.
	InjectDelay time.Duration
	// ReloadResumeDelay after a full load before auto-resume. Default: 60s.
	ReloadResumeDelay time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Debounce <= 0 {
		c.Debounce = 300 * time.Millisecond
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.InjectDelay <= 0 {
		c.InjectDelay = 500 * time.Millisecond
	}
	if c.ReloadResumeDelay <= 0 {
		c.ReloadResumeDelay = time.Minute
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Oracle == nil {
		c.Oracle = eligibility.New(nil, "https://x.com", c.Logger)
	}
}

// Watcher owns the injection procedure of one tab.
type Watcher struct {
	cfg    Config
	logger *slog.Logger
	deb    *debouncer

	mu      sync.Mutex
	ctx     context.Context
	page    Page
	cancel  context.CancelFunc // current injection attempt
	resume  *time.Timer
	stopped bool
}

// New creates a Watcher. Call Start before feeding it signals.
func New(cfg Config) *Watcher {
	cfg.defaults()
	w := &Watcher{
		cfg:    cfg,
		logger: cfg.Logger,
		ctx:    context.Background(),
		page:   cfg.Page,
	}
	w.deb = newDebouncer(cfg.Debounce, w.onNavigate)
	return w
}

// Start binds the watcher to ctx; attempts and timers end with it.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx = ctx
	w.stopped = false
	w.mu.Unlock()
}

// SetPage swaps the tab, e.g. after a browser recycle.
func (w *Watcher) SetPage(p Page) {
	w.mu.Lock()
	w.page = p
	w.mu.Unlock()
}

// Navigated records a SPA URL change. Bursts collapse into one procedure.
func (w *Watcher) Navigated(url string) {
	w.deb.trigger(url)
}

// Loaded handles a full document load: inject now and arm auto-resume.
func (w *Watcher) Loaded(url string) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	if w.resume != nil {
		w.resume.Stop()
	}
	w.resume = time.AfterFunc(w.cfg.ReloadResumeDelay, w.resumeAfterReload)
	w.mu.Unlock()

	go w.Reanchor(url)
}

// Stop cancels the pending debounce, the running attempt and the resume timer.
func (w *Watcher) Stop() {
	w.deb.stop()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.resume != nil {
		w.resume.Stop()
		w.resume = nil
	}
}

func (w *Watcher) onNavigate(url string) {
	w.logger.Info("navwatch: SPA navigation detected", "url", url)
	w.cfg.Session.Publish(w.context(), event.Event{Type: event.TypeNavigated, PageURL: url})
	w.Reanchor(url)
}

// Reanchor runs the injection procedure for url, cancelling any attempt
// still waiting for the native form. It reports whether the form is in place.
func (w *Watcher) Reanchor(url string) bool {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return false
	}
	if w.cancel != nil {
		w.cancel()
	}
	ctx, cancel := context.WithCancel(w.ctx)
	w.cancel = cancel
	page := w.page
	w.mu.Unlock()

	path, hints, err := page.Hints(ctx)
	if err != nil {
		w.logger.Warn("navwatch: read hints", "url", url, "error", err)
		return false
	}
	if !w.cfg.Oracle.Allowed(path, hints) {
		w.logger.Info("navwatch: path not eligible, skipping", "path", path)
		return false
	}

	if !w.waitNativeForm(ctx, page) {
		return false
	}
	if !sleep(ctx, w.cfg.InjectDelay) {
		return false
	}

	label := session.LabelFor(w.cfg.Session.Status().State)
	res, err := page.Inject(ctx, label)
	if err != nil {
		w.logger.Warn("navwatch: inject", "url", url, "error", err)
		return false
	}
	if res == "missing" {
		w.logger.Warn("navwatch: native form vanished before injection", "url", url)
		return false
	}
	// An existing form may carry a stale label.
	if err := page.SetLabel(ctx, label); err != nil {
		w.logger.Debug("navwatch: restore label", "error", err)
	}

	w.logger.Info("navwatch: search form ready", "url", url, "result", res, "label", label)
	w.cfg.Session.Publish(ctx, event.Event{Type: event.TypeReanchored, PageURL: url, Detail: res})
	return true
}

// waitNativeForm polls until the host search form renders or ctx ends.
func (w *Watcher) waitNativeForm(ctx context.Context, page Page) bool {
	for {
		ok, err := page.HasNativeForm(ctx)
		if err != nil {
			w.logger.Debug("navwatch: native form check", "error", err)
		}
		if ok {
			return true
		}
		w.logger.Debug("navwatch: native form not yet rendered")
		if !sleep(ctx, w.cfg.PollInterval) {
			return false
		}
	}
}

func (w *Watcher) resumeAfterReload() {
	w.mu.Lock()
	ctx, page, stopped := w.ctx, w.page, w.stopped
	w.resume = nil
	w.mu.Unlock()
	if stopped {
		return
	}

	focused, err := page.Focused(ctx)
	if err != nil {
		w.logger.Debug("navwatch: focus check", "error", err)
		return
	}
	if !focused {
		return
	}
	if w.cfg.Session.ResumeIfIdle(ctx) {
		w.logger.Info("navwatch: search resumed after reload")
	}
}

func (w *Watcher) context() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctx
}

// sleep waits d or until ctx ends; false means cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
