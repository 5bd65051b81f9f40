package loopback

import "sync"

// never is the channel closed entities hand out: it blocks forever.
var never = make(chan struct{})

// notifier is a level-triggered readiness signal. While data is pending
// the channel is closed, so any number of receives succeed without
// consuming the signal; when the queue drains a fresh open channel takes
// its place. Waiters must re-acquire the channel before every wait.
type notifier struct {
	mu     sync.Mutex
	ch     chan struct{}
	ready  bool
	closed bool
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{})}
}

// set marks data pending.
func (n *notifier) set() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || n.ready {
		return
	}
	n.ready = true
	close(n.ch)
}

// clear marks the queue drained.
func (n *notifier) clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || !n.ready {
		return
	}
	n.ready = false
	n.ch = make(chan struct{})
}

// channel returns the current wait channel.
func (n *notifier) channel() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch
}

// close makes the notifier permanently not ready.
func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	n.ready = false
	n.ch = never
}
