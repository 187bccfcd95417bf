// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package controller

import (
	"sync"
	"time"

	"github.com/pdiddy/book-search/internal/clock"
)

// debouncer delays fn until wait has passed since the last Call. Only the
// argument of the last Call in a burst reaches fn.
type debouncer struct {
	clock clock.Clock
	wait  time.Duration
	fn    func(string)
	wg    *sync.WaitGroup

	mu        sync.Mutex
	timer     clock.Timer
	cancelled bool
}

func newDebouncer(c clock.Clock, wait time.Duration, wg *sync.WaitGroup, fn func(string)) *debouncer {
	return &debouncer{clock: c, wait: wait, fn: fn, wg: wg}
}

// Call (re)starts the quiescence window for arg.
func (d *debouncer) Call(arg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelled {
		return
	}
	d.stopLocked()

	d.wg.Add(1)
	var t clock.Timer
	t = d.clock.AfterFunc(d.wait, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timer != t {
			// Superseded after the timer had already fired.
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.fn(arg)
	})
	d.timer = t
}

// Cancel drops any pending call. The debouncer ignores Calls afterwards.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelled = true
	d.stopLocked()
}

// Pending reports whether a call is scheduled.
func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *debouncer) stopLocked() {
	if d.timer == nil {
		return
	}
	if d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
}
