package loopback

import (
	"fmt"
	"time"

	"github.com/ros-middleware/rmw-go/pkg/log"
	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// lsub is one loopback subscription. Everything below ignoreLocal is
// guarded by the bus mutex.
type lsub struct {
	bus  *bus
	node *lnode
	ts   rmw.TypeSupport

	topic       string
	key         topicKey
	gid         rmw.GID
	profile     qos.Profile
	ignoreLocal bool

	closed   bool
	recvSeq  uint64
	queue    []delivery
	matches  map[*lpub]struct{}
	statuses rmw.SubscriptionStatuses
	events   chan rmw.Event
	ready    *notifier

	deadline *watchdog
}

var _ rmw.Subscription = (*lsub)(nil)

func (s *lsub) Topic() string { return s.topic }

func (s *lsub) ActualQoS() qos.Profile { return s.profile }

// usableLocked reports why communication through s must fail, if it
// must. Callers hold the bus mutex.
func (s *lsub) usableLocked() error {
	if s.closed {
		return rmw.ErrClosed
	}
	if s.node.ctx.down {
		return rmw.ErrShutdown
	}
	return nil
}

func (s *lsub) CountMatchedPublishers() (int, error) {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.closed {
		return 0, fmt.Errorf("count matched publishers %s: %w", s.topic, rmw.ErrClosed)
	}
	return len(s.matches), nil
}

func (s *lsub) Take() (any, rmw.MessageInfo, bool, error) {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return nil, rmw.MessageInfo{}, false, fmt.Errorf("take %s: %w", s.topic, err)
	}
	d, ok := s.popLocked()
	if !ok {
		return nil, rmw.MessageInfo{}, false, nil
	}
	msg := s.ts.New()
	if err := s.ts.Deserialize(d.data, msg); err != nil {
		err = fmt.Errorf("take %s: %w", s.topic, err)
		b.logError(s.node.ctx.id, s.node.fqn(), "take", err)
		return nil, rmw.MessageInfo{}, false, err
	}
	return msg, d.info, true, nil
}

func (s *lsub) TakeSerialized() ([]byte, rmw.MessageInfo, bool, error) {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return nil, rmw.MessageInfo{}, false, fmt.Errorf("take serialized %s: %w", s.topic, err)
	}
	d, ok := s.popLocked()
	if !ok {
		return nil, rmw.MessageInfo{}, false, nil
	}
	// The stored bytes are shared with other queues; hand out a copy.
	buf := make([]byte, len(d.data))
	copy(buf, d.data)
	return buf, d.info, true, nil
}

// popLocked removes the oldest pending delivery, clearing readiness
// when the queue drains. Callers hold the bus mutex.
func (s *lsub) popLocked() (delivery, bool) {
	if len(s.queue) == 0 {
		s.ready.clear()
		return delivery{}, false
	}
	d := s.queue[0]
	s.queue[0] = delivery{}
	s.queue = s.queue[1:]
	if len(s.queue) == 0 {
		s.queue = nil
		s.ready.clear()
	}
	return d, true
}

// ContentFilter reports no filter: loopback never holds one.
func (s *lsub) ContentFilter() (*rmw.ContentFilterOptions, error) {
	return nil, nil
}

func (s *lsub) SetContentFilter(*rmw.ContentFilterOptions) error {
	return fmt.Errorf("set content filter %s: %w", s.topic, rmw.ErrUnsupported)
}

func (s *lsub) NetworkFlowEndpoints() ([]rmw.NetworkFlowEndpoint, error) {
	return nil, fmt.Errorf("network flow endpoints %s: %w", s.topic, rmw.ErrUnsupported)
}

func (s *lsub) Ready() <-chan struct{} { return s.ready.channel() }

func (s *lsub) Events() <-chan rmw.Event { return s.events }

func (s *lsub) TakeStatuses() rmw.SubscriptionStatuses {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	out := s.statuses
	s.statuses.RequestedDeadlineMissed.TotalCountChange = 0
	s.statuses.LivelinessChanged.AliveCountChange = 0
	s.statuses.LivelinessChanged.NotAliveCountChange = 0
	s.statuses.RequestedQoSIncompatible.TotalCountChange = 0
	s.statuses.MessageLost.TotalCountChange = 0
	s.statuses.IncompatibleType.TotalCountChange = 0
	s.statuses.Matched.TotalCountChange = 0
	s.statuses.Matched.CurrentCountChange = 0
	return out
}

func (s *lsub) Close() error {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	s.closeLocked()
	return nil
}

// closeLocked tears the subscription down: the deadline timer stops,
// matched publishers unmatch, readiness goes permanently quiet, the
// events channel closes. Callers hold the bus mutex.
func (s *lsub) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	if s.deadline != nil {
		s.deadline.stop()
	}
	s.bus.detachSub(s)
	delete(s.node.subs, s)
	s.queue = nil
	s.ready.close()
	close(s.events)
	s.bus.logLifecycle(s.node.ctx.id, log.EntitySubscription, s.node.fqn(), s.topic, s.gid.String(), "close", "")
}

// notify queues one event notice, dropping it when the buffer is full.
// Callers hold the bus mutex.
func (s *lsub) notify(t rmw.EventType, now time.Time) {
	if s.closed {
		return
	}
	select {
	case s.events <- rmw.Event{Type: t, Time: now}:
	default:
	}
}

// deadlineMissed runs on the watchdog goroutine when a full deadline
// period passed without a delivery.
func (s *lsub) deadlineMissed() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.closed || len(s.matches) == 0 {
		return
	}
	s.statuses.RequestedDeadlineMissed.TotalCount++
	s.statuses.RequestedDeadlineMissed.TotalCountChange++
	s.notify(rmw.EventRequestedDeadlineMissed, time.Now())
	b.logQoS(s.node, log.EntitySubscription, s.gid, s.topic,
		rmw.EventRequestedDeadlineMissed, "", s.statuses.RequestedDeadlineMissed.TotalCount)
}
