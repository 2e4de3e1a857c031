package session

import (
	"sync"
	"time"
)

// Scheduler runs recurring and one-shot callbacks. Neither kind is awaited
// by the caller.
type Scheduler interface {
	// Every calls fn every d until stop is called. Calls of one handle never
	// overlap.
	Every(d time.Duration, fn func()) (stop func())
	// After calls fn once after d. It cannot be cancelled.
	After(d time.Duration, fn func())
}

// RealScheduler is the wall-clock Scheduler.
type RealScheduler struct{}

func (RealScheduler) Every(d time.Duration, fn func()) func() {
	done := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// A stop racing with the ticker must win.
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

func (RealScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
