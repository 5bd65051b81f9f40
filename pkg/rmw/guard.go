package rmw

import "sync"

// Waitable is anything a WaitSet can block on.
type Waitable interface {
	// Ready returns a channel that yields (or is closed) when the
	// entity has something pending. Implementations may replace the
	// channel over time; acquire it fresh for every wait.
	Ready() <-chan struct{}
}

// GuardCondition is a manually triggered Waitable, used to interrupt a
// WaitSet from another goroutine.
type GuardCondition struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

// NewGuardCondition returns an untriggered condition.
func NewGuardCondition() *GuardCondition {
	return &GuardCondition{ch: make(chan struct{}, 1)}
}

// Trigger marks the condition ready. The mark is sticky until one
// waiter observes it; further triggers before that coalesce into one.
func (g *GuardCondition) Trigger() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	select {
	case g.ch <- struct{}{}:
	default:
	}
}

// Ready returns the channel a WaitSet selects on. Receiving consumes
// the trigger.
func (g *GuardCondition) Ready() <-chan struct{} { return g.ch }

// Close discards any pending trigger and makes the condition inert.
// Closing twice is a no-op.
func (g *GuardCondition) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	select {
	case <-g.ch:
	default:
	}
	return nil
}
