package navwatch

import (
	"sync"
	"testing"
	"time"
)

type collector struct {
	mu   sync.Mutex
	vals []string
}

func (c *collector) add(v string) {
	c.mu.Lock()
	c.vals = append(c.vals, v)
	c.mu.Unlock()
}

func (c *collector) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.vals...)
}

func TestDebouncer_KeepsLast(t *testing.T) {
	var c collector
	d := newDebouncer(30*time.Millisecond, c.add)

	d.trigger("/a")
	d.trigger("/b")
	d.trigger("/c")
	time.Sleep(120 * time.Millisecond)

	got := c.get()
	if len(got) != 1 || got[0] != "/c" {
		t.Errorf("got %v, want [/c]", got)
	}
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	var c collector
	d := newDebouncer(20*time.Millisecond, c.add)

	d.trigger("/a")
	time.Sleep(100 * time.Millisecond)
	d.trigger("/b")
	time.Sleep(100 * time.Millisecond)

	got := c.get()
	if len(got) != 2 || got[0] != "/a" || got[1] != "/b" {
		t.Errorf("got %v, want [/a /b]", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var c collector
	d := newDebouncer(20*time.Millisecond, c.add)

	d.trigger("/a")
	d.stop()
	time.Sleep(80 * time.Millisecond)

	if got := c.get(); len(got) != 0 {
		t.Errorf("got %v after stop, want nothing", got)
	}
}

func TestDebouncer_DefaultWindow(t *testing.T) {
	d := newDebouncer(0, func(string) {})
	if d.window != 300*time.Millisecond {
		t.Errorf("window: got %v, want 300ms", d.window)
	}
}
