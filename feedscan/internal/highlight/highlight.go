// Package highlight wraps the first occurrence of a query inside an item's
// rendered HTML with a <mark> element.
package highlight

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MarkAttr tags marks inserted by Mark so a second pass is a no-op.
const MarkAttr = "data-feedscan"

// Mark returns fragment with the first case-insensitive occurrence of query
// found in a text node wrapped in <mark data-feedscan="hit">. Tag names,
// attributes, script and style content are never matched. ok is false when
// nothing was marked (no occurrence, empty query, or already marked).
func Mark(fragment, query string) (string, bool, error) {
	if strings.TrimSpace(query) == "" {
		return fragment, false, nil
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return fragment, false, fmt.Errorf("highlight: compile: %w", err)
	}

	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return fragment, false, fmt.Errorf("highlight: parse: %w", err)
	}

	// ParseFragment returns detached siblings; hang them under ctx so the
	// text node split below can use InsertBefore on any level.
	for _, n := range nodes {
		ctx.AppendChild(n)
	}

	if hasMark(ctx) {
		return fragment, false, nil
	}

	target, loc := findText(ctx, re)
	if target == nil {
		return fragment, false, nil
	}
	splitAndMark(target, loc)

	var buf bytes.Buffer
	for c := ctx.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return fragment, false, fmt.Errorf("highlight: render: %w", err)
		}
	}
	return buf.String(), true, nil
}

func hasMark(n *html.Node) bool {
	if n.Type == html.ElementNode && n.DataAtom == atom.Mark {
		for _, a := range n.Attr {
			if a.Key == MarkAttr {
				return true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasMark(c) {
			return true
		}
	}
	return false
}

// findText returns the first text node (document order) matching re.
func findText(n *html.Node, re *regexp.Regexp) (*html.Node, []int) {
	if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
		return nil, nil
	}
	if n.Type == html.TextNode {
		if loc := re.FindStringIndex(n.Data); loc != nil {
			return n, loc
		}
		return nil, nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t, loc := findText(c, re); t != nil {
			return t, loc
		}
	}
	return nil, nil
}

// splitAndMark replaces text node t with before, <mark>match</mark>, after.
func splitAndMark(t *html.Node, loc []int) {
	parent := t.Parent
	text := t.Data

	if loc[0] > 0 {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[:loc[0]]}, t)
	}
	mark := &html.Node{
		Type:     html.ElementNode,
		Data:     "mark",
		DataAtom: atom.Mark,
		Attr:     []html.Attribute{{Key: MarkAttr, Val: "hit"}},
	}
	mark.AppendChild(&html.Node{Type: html.TextNode, Data: text[loc[0]:loc[1]]})
	parent.InsertBefore(mark, t)
	if loc[1] < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[loc[1]:]}, t)
	}
	parent.RemoveChild(t)
}
