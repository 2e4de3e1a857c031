package browser

import (
	"testing"
	"time"
)

func TestShouldBlock(t *testing.T) {
	set := map[string]bool{"images": true, "media": true, "xhr": true}
	cases := []struct {
		typ  string
		want bool
	}{
		{"Image", true},
		{"Media", true},
		{"Font", false},
		{"Stylesheet", false},
		{"XHR", true},
		{"Document", false},
	}
	for _, tc := range cases {
		if got := shouldBlock(set, tc.typ); got != tc.want {
			t.Errorf("shouldBlock(%q): got %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("headful") != ModeHeadful {
		t.Error("headful")
	}
	if ParseMode("headless") != ModeHeadless || ParseMode("") != ModeHeadless {
		t.Error("headless default")
	}
	if ModeHeadful.String() != "headful" {
		t.Errorf("String: got %q", ModeHeadful.String())
	}
}

func TestConfigDefaults(t *testing.T) {
	m := NewManager(Config{})
	if m.cfg.MemoryLimit != 1<<30 || m.cfg.XvfbDisplay != ":99" || m.cfg.Mode != ModeHeadless {
		t.Errorf("defaults: %+v", m.cfg)
	}
	if m.Browser() != nil {
		t.Error("browser before Start")
	}
}

func TestRecycleReason(t *testing.T) {
	m := NewManager(Config{MemoryLimit: 100, RecycleInterval: time.Hour})
	cases := []struct {
		uptime time.Duration
		heap   int64
		want   string
	}{
		{time.Minute, 50, ""},
		{2 * time.Hour, 0, "interval"},
		{time.Minute, 101, "memory"},
		{2 * time.Hour, 101, "interval"},
	}
	for _, tc := range cases {
		if got := m.recycleReason(tc.uptime, tc.heap); got != tc.want {
			t.Errorf("recycleReason(%v, %d): got %q, want %q", tc.uptime, tc.heap, got, tc.want)
		}
	}
}
