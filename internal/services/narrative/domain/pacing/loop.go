package pacing

import "sync"

// Loop runs ingress work one turn at a time. Turns are not re-entrant: work
// running inside Do must not call Do again.
type Loop struct {
	mu sync.Mutex
}

// Do runs fn as a single turn.
func (l *Loop) Do(fn func()) {
	if l == nil {
		fn()
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}
