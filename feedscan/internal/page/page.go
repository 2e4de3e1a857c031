// CLAUDE:SUMMARY Rod adapter between a feed tab and the search session: injected script, item windows, reveal/highlight, binding signals.
// Package page drives one feed tab through CDP. It installs inject.js (item
// tagging, the "Search in feed" form, navigation hooks) and exposes the
// operations the search session and the navigation watcher need.
package page

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/hazyhaar/feedscan/feedscan/internal/eligibility"
	"github.com/hazyhaar/feedscan/feedscan/internal/highlight"
	"github.com/hazyhaar/feedscan/feedscan/internal/scan"
	"github.com/hazyhaar/feedscan/feedscan/internal/snippet"
)

//go:embed inject.js
var injectJS string

// BindingName is the CDP binding the injected script calls.
const BindingName = "__feedscan_binding"

// ErrNotRendered is returned when an item key no longer matches a node.
var ErrNotRendered = errors.New("page: item no longer rendered")

// Config for attaching to a tab.
type Config struct {
	// ItemSelector matches feed items. Default: [data-testid="tweet"].
	ItemSelector string
	// NativeFormSelector matches the host search form that gets cloned.
	// Default: form[aria-label="Search"].
	NativeFormSelector string

	Snippets *snippet.Renderer
	Logger   *slog.Logger
}

func (c *Config) defaults() {
	if c.ItemSelector == "" {
		c.ItemSelector = `[data-testid="tweet"]`
	}
	if c.NativeFormSelector == "" {
		c.NativeFormSelector = `form[aria-label="Search"]`
	}
	if c.Snippets == nil {
		c.Snippets = snippet.New(0)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Page is a feed tab with the feedscan script installed.
type Page struct {
	rod    *rod.Page
	cfg    Config
	logger *slog.Logger
	remove func() error
}

// Attach adds the binding, registers inject.js for every future document
// and evaluates it in the current one.
func Attach(p *rod.Page, cfg Config) (*Page, error) {
	cfg.defaults()

	if err := (proto.RuntimeAddBinding{Name: BindingName}).Call(p); err != nil {
		cfg.Logger.Warn("page: addBinding failed (may already exist)", "error", err)
	}

	remove, err := p.EvalOnNewDocument(newDocumentScript())
	if err != nil {
		return nil, fmt.Errorf("page: register script: %w", err)
	}
	if _, err := p.Eval(injectJS); err != nil {
		return nil, fmt.Errorf("page: inject script: %w", err)
	}

	return &Page{rod: p, cfg: cfg, logger: cfg.Logger, remove: remove}, nil
}

// newDocumentScript turns the function expression into a statement that
// runs as soon as a document is created.
func newDocumentScript() string {
	return "(" + injectJS + ")();"
}

// Rod returns the underlying page.
func (p *Page) Rod() *rod.Page { return p.rod }

// URL returns the current document URL.
func (p *Page) URL() string {
	info, err := p.rod.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Window captures the rendered items in document order.
func (p *Page) Window(ctx context.Context) (scan.Window, error) {
	var win scan.Window
	raw, err := p.evalString(ctx, `(sel) => window.__feedscan.window(sel)`, p.cfg.ItemSelector)
	if err != nil {
		return win, fmt.Errorf("page: window: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &win); err != nil {
		return win, fmt.Errorf("page: decode window: %w", err)
	}
	return win, nil
}

// ScrollBy scrolls the document down by dy CSS pixels.
func (p *Page) ScrollBy(ctx context.Context, dy float64) error {
	if _, err := p.rod.Context(ctx).Eval(`(dy) => window.__feedscan.scrollBy(dy)`, dy); err != nil {
		return fmt.Errorf("page: scroll: %w", err)
	}
	return nil
}

// Reveal smooth-scrolls the item to the vertical center of the viewport.
func (p *Page) Reveal(ctx context.Context, key scan.Key) error {
	ok, err := p.evalBool(ctx, `(k) => window.__feedscan.reveal(k)`, string(key))
	if err != nil {
		return fmt.Errorf("page: reveal: %w", err)
	}
	if !ok {
		return ErrNotRendered
	}
	return nil
}

// Highlight wraps the first occurrence of query inside the item in <mark>.
// Calling it twice leaves a single mark.
func (p *Page) Highlight(ctx context.Context, key scan.Key, query string) error {
	res, err := p.rod.Context(ctx).Eval(`(k) => window.__feedscan.inner(k)`, string(key))
	if err != nil {
		return fmt.Errorf("page: highlight: read: %w", err)
	}
	if res.Value.Nil() {
		return ErrNotRendered
	}
	marked, changed, err := highlight.Mark(res.Value.Str(), query)
	if err != nil {
		return fmt.Errorf("page: highlight: %w", err)
	}
	if !changed {
		return nil
	}
	if _, err := p.rod.Context(ctx).Eval(`(k, h) => window.__feedscan.setInner(k, h)`, string(key), marked); err != nil {
		return fmt.Errorf("page: highlight: write: %w", err)
	}
	return nil
}

// SetLabel sets the toggle button text. A missing form is not an error: the
// label is restored on the next injection.
func (p *Page) SetLabel(ctx context.Context, label string) error {
	ok, err := p.evalBool(ctx, `(l) => window.__feedscan.setLabel(l)`, label)
	if err != nil {
		return fmt.Errorf("page: set label: %w", err)
	}
	if !ok {
		p.logger.Debug("page: set label: form not injected", "label", label)
	}
	return nil
}

// Describe renders the item as Markdown for the located event.
func (p *Page) Describe(ctx context.Context, key scan.Key) (string, error) {
	outer, err := p.evalString(ctx, `(k) => window.__feedscan.outer(k)`, string(key))
	if err != nil {
		return "", fmt.Errorf("page: describe: %w", err)
	}
	if outer == "" {
		return "", ErrNotRendered
	}
	return p.cfg.Snippets.Render(outer, p.URL(), ""), nil
}

// Hints reads the current path and the facts eligibility needs.
func (p *Page) Hints(ctx context.Context) (string, eligibility.Hints, error) {
	var h struct {
		Path string `json:"path"`
		eligibility.Hints
	}
	raw, err := p.evalString(ctx, `() => window.__feedscan.hints()`)
	if err != nil {
		return "", eligibility.Hints{}, fmt.Errorf("page: hints: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return "", eligibility.Hints{}, fmt.Errorf("page: decode hints: %w", err)
	}
	return h.Path, h.Hints, nil
}

// HasNativeForm reports whether the host search form is rendered.
func (p *Page) HasNativeForm(ctx context.Context) (bool, error) {
	ok, err := p.evalBool(ctx, `(sel) => window.__feedscan.hasNative(sel)`, p.cfg.NativeFormSelector)
	if err != nil {
		return false, fmt.Errorf("page: native form: %w", err)
	}
	return ok, nil
}

// Inject inserts the search form with the given button label. It returns
// "injected", "present" (already there) or "missing" (no native form).
func (p *Page) Inject(ctx context.Context, label string) (string, error) {
	res, err := p.evalString(ctx, `(sel, l) => window.__feedscan.inject(sel, l)`, p.cfg.NativeFormSelector, label)
	if err != nil {
		return "", fmt.Errorf("page: inject form: %w", err)
	}
	return res, nil
}

// Focused reports whether the injected search input has keyboard focus.
func (p *Page) Focused(ctx context.Context) (bool, error) {
	ok, err := p.evalBool(ctx, `() => window.__feedscan.focused()`)
	if err != nil {
		return false, fmt.Errorf("page: focused: %w", err)
	}
	return ok, nil
}

// Alert shows msg in a browser dialog. The dialog opens after the call
// returns so the evaluation never blocks on it.
func (p *Page) Alert(ctx context.Context, msg string) error {
	if _, err := p.rod.Context(ctx).Eval(`(m) => { setTimeout(() => alert(m), 0); }`, msg); err != nil {
		return fmt.Errorf("page: alert: %w", err)
	}
	return nil
}

// Detach unregisters the new-document script.
func (p *Page) Detach() {
	if p.remove == nil {
		return
	}
	if err := p.remove(); err != nil {
		p.logger.Debug("page: remove script", "error", err)
	}
}

func (p *Page) evalString(ctx context.Context, js string, args ...any) (string, error) {
	res, err := p.rod.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *Page) evalBool(ctx context.Context, js string, args ...any) (bool, error) {
	res, err := p.rod.Context(ctx).Eval(js, args...)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}
