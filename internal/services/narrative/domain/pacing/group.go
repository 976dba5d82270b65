package pacing

import (
	"sync"
	"time"
)

// Group owns the timers of one scene visit. Cancel stops them all, and a
// callback whose timer raced with Cancel is dropped inside the loop turn.
type Group struct {
	clock Clock
	loop  *Loop

	mu        sync.Mutex
	nextID    uint64
	timers    map[uint64]Timer
	cancelled bool
}

// NewGroup creates a timer group. A nil clock uses RealClock; a nil loop runs
// callbacks directly on the clock goroutine.
func NewGroup(clock Clock, loop *Loop) *Group {
	if clock == nil {
		clock = RealClock{}
	}
	return &Group{clock: clock, loop: loop, timers: map[uint64]Timer{}}
}

// After schedules fn after d and returns a function that cancels it.
func (g *Group) After(d time.Duration, fn func()) func() {
	g.mu.Lock()
	if g.cancelled || fn == nil {
		g.mu.Unlock()
		return func() {}
	}
	g.nextID++
	id := g.nextID
	g.timers[id] = nil
	g.mu.Unlock()

	timer := g.clock.AfterFunc(d, func() {
		g.loop.Do(func() {
			if !g.claim(id) {
				return
			}
			fn()
		})
	})

	g.mu.Lock()
	if _, pending := g.timers[id]; !pending {
		// Cancelled or already fired while the timer was being armed.
		g.mu.Unlock()
		timer.Stop()
		return func() {}
	}
	g.timers[id] = timer
	g.mu.Unlock()

	return func() { g.stop(id) }
}

// Cancel stops every pending timer. Later calls to After schedule nothing.
func (g *Group) Cancel() {
	g.mu.Lock()
	timers := g.timers
	g.timers = map[uint64]Timer{}
	g.cancelled = true
	g.mu.Unlock()

	for _, timer := range timers {
		if timer != nil {
			timer.Stop()
		}
	}
}

// Pending returns the number of scheduled timers that have neither fired nor
// been cancelled.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.timers)
}

// claim removes id from the pending set and reports whether the callback may run.
func (g *Group) claim(id uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelled {
		return false
	}
	if _, ok := g.timers[id]; !ok {
		return false
	}
	delete(g.timers, id)
	return true
}

func (g *Group) stop(id uint64) {
	g.mu.Lock()
	timer, ok := g.timers[id]
	delete(g.timers, id)
	g.mu.Unlock()
	if ok && timer != nil {
		timer.Stop()
	}
}
