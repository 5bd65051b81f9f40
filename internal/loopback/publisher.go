package loopback

import (
	"context"
	"fmt"
	"time"

	"github.com/ros-middleware/rmw-go/pkg/log"
	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// lpub is one loopback publisher. Everything below the profile is
// guarded by the bus mutex.
type lpub struct {
	bus  *bus
	node *lnode
	ts   rmw.TypeSupport

	topic   string
	key     topicKey
	gid     rmw.GID
	profile qos.Profile

	closed   bool
	seq      uint64
	alive    bool
	matches  map[*lsub]struct{}
	retained []sample
	statuses rmw.PublisherStatuses
	events   chan rmw.Event

	deadline *watchdog
	lease    *watchdog
}

var _ rmw.Publisher = (*lpub)(nil)

func (p *lpub) Topic() string { return p.topic }

func (p *lpub) GID() rmw.GID { return p.gid }

func (p *lpub) ActualQoS() qos.Profile { return p.profile }

// usableLocked reports why communication through p must fail, if it
// must. Callers hold the bus mutex.
func (p *lpub) usableLocked() error {
	if p.closed {
		return rmw.ErrClosed
	}
	if p.node.ctx.down {
		return rmw.ErrShutdown
	}
	return nil
}

func (p *lpub) Publish(msg any) error {
	data, err := p.ts.Serialize(msg)
	if err != nil {
		err = fmt.Errorf("publish %s: %w", p.topic, err)
		p.bus.logError(p.node.ctx.id, p.node.fqn(), "publish", err)
		return err
	}
	return p.publishBytes(data)
}

func (p *lpub) PublishSerialized(data []byte) error {
	// The caller keeps ownership of data and may reuse it.
	buf := make([]byte, len(data))
	copy(buf, data)
	return p.publishBytes(buf)
}

func (p *lpub) publishBytes(data []byte) error {
	b := p.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := p.usableLocked(); err != nil {
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}
	b.publish(p, data)
	return nil
}

func (p *lpub) CountMatchedSubscriptions() (int, error) {
	b := p.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.closed {
		return 0, fmt.Errorf("count matched subscriptions %s: %w", p.topic, rmw.ErrClosed)
	}
	return len(p.matches), nil
}

func (p *lpub) AssertLiveliness() error {
	b := p.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := p.usableLocked(); err != nil {
		return fmt.Errorf("assert liveliness %s: %w", p.topic, err)
	}
	b.assertAlive(p, time.Now())
	return nil
}

// WaitForAllAcked returns immediately: delivery is synchronous, so by
// the time Publish returns every matched subscription already holds the
// message.
func (p *lpub) WaitForAllAcked(context.Context) error {
	b := p.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.closed {
		return fmt.Errorf("wait for acked %s: %w", p.topic, rmw.ErrClosed)
	}
	return nil
}

func (p *lpub) NetworkFlowEndpoints() ([]rmw.NetworkFlowEndpoint, error) {
	return nil, fmt.Errorf("network flow endpoints %s: %w", p.topic, rmw.ErrUnsupported)
}

func (p *lpub) Events() <-chan rmw.Event { return p.events }

func (p *lpub) TakeStatuses() rmw.PublisherStatuses {
	b := p.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	out := p.statuses
	p.statuses.OfferedDeadlineMissed.TotalCountChange = 0
	p.statuses.LivelinessLost.TotalCountChange = 0
	p.statuses.OfferedQoSIncompatible.TotalCountChange = 0
	p.statuses.IncompatibleType.TotalCountChange = 0
	p.statuses.Matched.TotalCountChange = 0
	p.statuses.Matched.CurrentCountChange = 0
	return out
}

func (p *lpub) Close() error {
	b := p.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	p.closeLocked()
	return nil
}

// closeLocked tears the publisher down: timers stop, matched
// subscriptions unmatch, the events channel closes. Callers hold the
// bus mutex.
func (p *lpub) closeLocked() {
	if p.closed {
		return
	}
	p.closed = true
	p.stopTimersLocked()
	p.bus.detachPub(p)
	delete(p.node.pubs, p)
	close(p.events)
	p.bus.logLifecycle(p.node.ctx.id, log.EntityPublisher, p.node.fqn(), p.topic, p.gid.String(), "close", "")
}

func (p *lpub) stopTimersLocked() {
	if p.deadline != nil {
		p.deadline.stop()
	}
	if p.lease != nil {
		p.lease.stop()
	}
}

// notify queues one event notice, dropping it when the buffer is full.
// Callers hold the bus mutex.
func (p *lpub) notify(t rmw.EventType, now time.Time) {
	if p.closed {
		return
	}
	select {
	case p.events <- rmw.Event{Type: t, Time: now}:
	default:
	}
}

// deadlineMissed runs on the watchdog goroutine when a full deadline
// period passed without a publish.
func (p *lpub) deadlineMissed() {
	b := p.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.closed || len(p.matches) == 0 {
		return
	}
	p.statuses.OfferedDeadlineMissed.TotalCount++
	p.statuses.OfferedDeadlineMissed.TotalCountChange++
	p.notify(rmw.EventOfferedDeadlineMissed, time.Now())
	b.logQoS(p.node, log.EntityPublisher, p.gid, p.topic,
		rmw.EventOfferedDeadlineMissed, "", p.statuses.OfferedDeadlineMissed.TotalCount)
}

// leaseMissed runs on the watchdog goroutine when a manual-by-topic
// publisher let its liveliness lease lapse.
func (p *lpub) leaseMissed() {
	b := p.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.closed || !p.alive {
		return
	}
	now := time.Now()
	p.alive = false
	// No further expiries until the next assertion.
	p.lease.disarm()

	p.statuses.LivelinessLost.TotalCount++
	p.statuses.LivelinessLost.TotalCountChange++
	p.notify(rmw.EventLivelinessLost, now)
	b.logQoS(p.node, log.EntityPublisher, p.gid, p.topic,
		rmw.EventLivelinessLost, "", p.statuses.LivelinessLost.TotalCount)

	for s := range p.matches {
		s.statuses.LivelinessChanged.AliveCount--
		s.statuses.LivelinessChanged.AliveCountChange--
		s.statuses.LivelinessChanged.NotAliveCount++
		s.statuses.LivelinessChanged.NotAliveCountChange++
		s.notify(rmw.EventLivelinessChanged, now)
	}
}
