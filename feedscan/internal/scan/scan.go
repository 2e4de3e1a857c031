// Package scan locates the first feed item matching a query inside the
// currently rendered window, resuming after a cursor item.
//
// Everything here is pure: the window is a value captured from the page and
// no function in this package touches the page.
package scan

import "strings"

// Key identifies one rendered item. Keys are assigned by the page the first
// time an element is seen, so a re-rendered node gets a new key. The zero
// Key is the null cursor.
type Key string

// Item is one feed entry as currently rendered.
type Item struct {
	Key    Key     `json:"key"`
	Text   string  `json:"text"`
	Top    float64 `json:"top"`    // viewport-relative, CSS pixels
	Bottom float64 `json:"bottom"` // viewport-relative, CSS pixels
}

// Window is the ordered list of rendered items (document order) together
// with the viewport height at capture time.
type Window struct {
	Items          []Item  `json:"items"`
	ViewportHeight float64 `json:"viewport_height"`
}

// Result is the outcome of one Scan.
type Result struct {
	Located bool
	Index   int // index into the scanned items, -1 when exhausted
	Item    Item
}

// Exhausted reports whether no item matched.
func (r Result) Exhausted() bool { return !r.Located }

// Scan walks items looking for the first one whose text contains query,
// case-insensitively. With a non-null cursor, matching starts strictly after
// the item carrying the cursor key. When the cursor is not in items the
// whole window is scanned from the first item.
func Scan(query string, cursor Key, items []Item) Result {
	needle := strings.ToLower(query)
	start := 0
	if cursor != "" {
		if i := IndexOf(items, cursor); i >= 0 {
			start = i + 1
		}
	}
	for i := start; i < len(items); i++ {
		if strings.Contains(strings.ToLower(items[i].Text), needle) {
			return Result{Located: true, Index: i, Item: items[i]}
		}
	}
	return Result{Index: -1}
}

// IndexOf returns the position of the item with key k, or -1.
func IndexOf(items []Item, k Key) int {
	for i := range items {
		if items[i].Key == k {
			return i
		}
	}
	return -1
}

// Center returns the item straddling the vertical midpoint of the viewport
// (top <= mid <= bottom). When several items qualify the last one in
// document order wins. ok is false during a gap between items.
func Center(items []Item, viewportHeight float64) (item Item, ok bool) {
	mid := viewportHeight / 2
	for _, it := range items {
		if it.Top <= mid && it.Bottom >= mid {
			item, ok = it, true
		}
	}
	return item, ok
}
