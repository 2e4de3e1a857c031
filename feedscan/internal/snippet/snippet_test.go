package snippet

import (
	"strings"
	"testing"
)

func TestRender_MarkdownLinks(t *testing.T) {
	r := New(0)
	got := r.Render(`<div><b>Alice</b> posted <a href="/alice/status/1">this</a></div>`, "https://x.com/home", "fallback")
	if !strings.Contains(got, "**Alice**") {
		t.Errorf("bold lost: %q", got)
	}
	if !strings.Contains(got, "alice/status/1)") {
		t.Errorf("link lost: %q", got)
	}
}

func TestRender_StripsScripts(t *testing.T) {
	r := New(0)
	got := r.Render(`<p>hello</p><script>alert(1)</script>`, "", "fallback")
	if strings.Contains(got, "alert") {
		t.Errorf("script survived: %q", got)
	}
	if !strings.Contains(got, "hello") {
		t.Errorf("text lost: %q", got)
	}
}

func TestRender_Fallback(t *testing.T) {
	r := New(0)
	if got := r.Render("", "", "plain text"); got != "plain text" {
		t.Errorf("empty html: got %q", got)
	}
	if got := r.Render("<script>x()</script>", "", "plain text"); got != "plain text" {
		t.Errorf("script-only html: got %q", got)
	}
}

func TestRender_Truncates(t *testing.T) {
	r := New(5)
	got := r.Render("", "", "héllo world")
	if got != "héllo…" {
		t.Errorf("truncate: got %q", got)
	}
}
