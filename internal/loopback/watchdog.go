package loopback

import (
	"sync"
	"time"
)

// watchdog calls onMiss once per period in the absence of feeds. It
// backs deadline and liveliness-lease tracking: every publish, delivery
// or assertion feeds the watchdog, and a full period without food is a
// missed contract.
//
// The callback runs on a timer goroutine without the watchdog lock
// held; it must re-check entity state under the bus lock.
type watchdog struct {
	mu      sync.Mutex
	period  time.Duration
	onMiss  func()
	timer   *time.Timer
	armed   bool
	stopped bool
}

func newWatchdog(period time.Duration, onMiss func()) *watchdog {
	return &watchdog{period: period, onMiss: onMiss}
}

// feed restarts the period, arming the watchdog if it was idle.
func (w *watchdog) feed() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.armed = true
	w.schedule()
}

// disarm pauses the watchdog until the next feed.
func (w *watchdog) disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.armed {
		return
	}
	w.armed = false
	if w.timer != nil {
		w.timer.Stop()
	}
}

// stop permanently disables the watchdog.
func (w *watchdog) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	w.armed = false
	if w.timer != nil {
		w.timer.Stop()
	}
}

// schedule arms the next period. Callers hold w.mu.
func (w *watchdog) schedule() {
	w.timer = time.AfterFunc(w.period, w.fire)
}

func (w *watchdog) fire() {
	w.mu.Lock()
	if w.stopped || !w.armed {
		w.mu.Unlock()
		return
	}
	// Next period first, so repeated misses keep accumulating.
	w.schedule()
	miss := w.onMiss
	w.mu.Unlock()
	miss()
}
