// CLAUDE:SUMMARY Renders a located feed item as sanitised Markdown for events.
// Package snippet turns the HTML of a located item into the Markdown carried
// by located events.
package snippet

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

// Renderer sanitises item HTML and converts it to Markdown. Safe for
// concurrent use.
type Renderer struct {
	policy *bluemonday.Policy
	conv   *converter.Converter
	max    int
}

// New creates a Renderer. Output longer than maxLen runes is truncated;
// maxLen <= 0 means 2000.
func New(maxLen int) *Renderer {
	if maxLen <= 0 {
		maxLen = 2000
	}
	return &Renderer{
		policy: bluemonday.UGCPolicy(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		max: maxLen,
	}
}

// Render returns the Markdown for html, resolving relative links against
// pageURL. When the conversion fails or produces nothing, fallback is used.
func (r *Renderer) Render(html, pageURL, fallback string) string {
	out := fallback
	if html != "" {
		clean := r.policy.Sanitize(html)
		md, err := r.conv.ConvertString(clean, converter.WithDomain(pageURL))
		if err == nil && strings.TrimSpace(md) != "" {
			out = md
		}
	}
	return truncate(strings.TrimSpace(out), r.max)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
