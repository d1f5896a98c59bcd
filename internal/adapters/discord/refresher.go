package discord

import (
	"sync"
	"time"
)

// Refresher coalesces bursts of event mutations into a single embed
// refresh per event. Trailing debounce: every Schedule call within the
// delay window resets the timer, so the one refresh that runs reflects
// the last state. At most one refresh per event is in flight at any
// time; a Schedule arriving mid-flight queues exactly one follow-up
// run instead of writing concurrently.
//
// A refresh is a pure projection of store state, so a stray timer
// firing after a Force is harmless, just redundant.
type Refresher struct {
	mu      sync.Mutex
	entries map[uint]*refreshEntry
	delay   time.Duration
	run     func(eventID uint)
	stopped bool
}

type refreshEntry struct {
	timer    *time.Timer
	inFlight bool
	queued   bool
}

// NewRefresher creates a Refresher that calls run to perform the
// actual message edit.
func NewRefresher(delay time.Duration, run func(eventID uint)) *Refresher {
	return &Refresher{
		entries: make(map[uint]*refreshEntry),
		delay:   delay,
		run:     run,
	}
}

// Schedule requests a refresh for the event after the debounce delay.
func (r *Refresher) Schedule(eventID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	e := r.ensure(eventID)
	if e.inFlight {
		e.queued = true
		return
	}
	if e.timer != nil {
		e.timer.Reset(r.delay)
		return
	}
	e.timer = time.AfterFunc(r.delay, func() { r.fire(eventID) })
}

// Force bypasses the debounce for critical transitions (closing,
// dispatch). The single-flight guarantee still holds.
func (r *Refresher) Force(eventID uint) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	e := r.ensure(eventID)
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.inFlight {
		e.queued = true
		r.mu.Unlock()
		return
	}
	e.inFlight = true
	r.mu.Unlock()
	r.execute(eventID)
}

// Stop cancels all pending timers. In-flight refreshes finish on their
// own; none of the pending ones are guaranteed to have run.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	for _, e := range r.entries {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
	}
}

func (r *Refresher) ensure(eventID uint) *refreshEntry {
	e := r.entries[eventID]
	if e == nil {
		e = &refreshEntry{}
		r.entries[eventID] = e
	}
	return e
}

func (r *Refresher) fire(eventID uint) {
	r.mu.Lock()
	e := r.entries[eventID]
	if e == nil || r.stopped {
		r.mu.Unlock()
		return
	}
	e.timer = nil
	if e.inFlight {
		e.queued = true
		r.mu.Unlock()
		return
	}
	e.inFlight = true
	r.mu.Unlock()
	r.execute(eventID)
}

// execute runs the refresh and drains at most one queued follow-up at
// a time until no more arrive mid-flight.
func (r *Refresher) execute(eventID uint) {
	for {
		r.run(eventID)

		r.mu.Lock()
		e := r.entries[eventID]
		if e == nil {
			r.mu.Unlock()
			return
		}
		if e.queued && !r.stopped {
			e.queued = false
			r.mu.Unlock()
			continue
		}
		e.inFlight = false
		if e.timer == nil {
			delete(r.entries, eventID)
		}
		r.mu.Unlock()
		return
	}
}
