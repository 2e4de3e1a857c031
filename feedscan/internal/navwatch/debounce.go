package navwatch

import (
	"sync"
	"time"
)

// debouncer delivers the last value once no new value arrived for window.
type debouncer struct {
	window time.Duration
	fn     func(string)

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

func newDebouncer(window time.Duration, fn func(string)) *debouncer {
	if window <= 0 {
		window = 300 * time.Millisecond
	}
	return &debouncer{window: window, fn: fn}
}

// trigger (re)starts the window with v as the pending value.
func (d *debouncer) trigger(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		current := d.seq == seq
		d.mu.Unlock()
		// A timer that fired while a newer trigger replaced it is stale.
		if current {
			d.fn(v)
		}
	})
}

// stop drops any pending value.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
