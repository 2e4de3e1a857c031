// Package eligibility decides whether feedscan engages on a page path.
package eligibility

import (
	"log/slog"
	"net/url"
	"strings"
)

// DefaultPaths are the feed pages where in-feed search makes sense.
var DefaultPaths = []string{
	"/home",
	"/i/bookmarks",
	"/notifications",
	"/notifications/mentions",
	"/notifications/verified",
}

// Hints are page facts read from the DOM that identify profile pages.
type Hints struct {
	// ProfileHref is the href of the signed-in user's "Profile" nav link.
	ProfileHref string `json:"profile_href"`
	// Canonical is the href of <link rel="canonical">, if any.
	Canonical string `json:"canonical"`
}

// Oracle answers eligibility questions.
type Oracle struct {
	paths         map[string]bool
	canonicalHost string
	logger        *slog.Logger
}

// New creates an Oracle. Empty paths means DefaultPaths; canonicalHost is
// the origin a canonical link must start with (e.g. "https://x.com").
func New(paths []string, canonicalHost string, logger *slog.Logger) *Oracle {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	if logger == nil {
		logger = slog.Default()
	}
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return &Oracle{
		paths:         set,
		canonicalHost: strings.TrimRight(canonicalHost, "/"),
		logger:        logger,
	}
}

// Allowed reports whether path is a feed the search can run on: one of the
// configured paths, the signed-in user's profile, or a profile whose
// canonical link points at the same path.
func (o *Oracle) Allowed(path string, h Hints) bool {
	if o.paths[path] {
		return true
	}
	if h.ProfileHref != "" && strings.HasPrefix(h.ProfileHref, "/") && h.ProfileHref == path {
		return true
	}
	if h.Canonical == "" || o.canonicalHost == "" || !strings.HasPrefix(h.Canonical, o.canonicalHost) {
		return false
	}
	u, err := url.Parse(h.Canonical)
	if err != nil {
		o.logger.Warn("eligibility: parse canonical link", "href", h.Canonical, "error", err)
		return false
	}
	return u.Path == path
}
