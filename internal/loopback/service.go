package loopback

import (
	"fmt"

	"github.com/ros-middleware/rmw-go/pkg/log"
	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// exchangeQueue buffers pending requests or responses, honoring the
// keep-last depth. All methods require the bus mutex.
type exchangeQueue struct {
	history qos.History
	depth   int
	items   []exchange
	ready   *notifier
}

func newExchangeQueue(p qos.Profile) exchangeQueue {
	return exchangeQueue{history: p.History, depth: p.Depth, ready: newNotifier()}
}

func (q *exchangeQueue) push(x exchange) {
	if q.history == qos.HistoryKeepLast && len(q.items) >= q.depth {
		q.items = q.items[1:]
	}
	q.items = append(q.items, x)
	q.ready.set()
}

func (q *exchangeQueue) pop() (exchange, bool) {
	if len(q.items) == 0 {
		q.ready.clear()
		return exchange{}, false
	}
	x := q.items[0]
	q.items[0] = exchange{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
		q.ready.clear()
	}
	return x, true
}

func (q *exchangeQueue) close() {
	q.items = nil
	q.ready.close()
}

// lclient is one loopback service client. Mutable state is guarded by
// the bus mutex.
type lclient struct {
	bus  *bus
	node *lnode
	ts   rmw.ServiceTypeSupport

	service string
	key     serviceKey
	gid     rmw.GID
	profile qos.Profile

	closed  bool
	nextSeq int64
	queue   exchangeQueue
}

var _ rmw.Client = (*lclient)(nil)

func (c *lclient) ServiceName() string { return c.service }

func (c *lclient) GID() rmw.GID { return c.gid }

func (c *lclient) usableLocked() error {
	if c.closed {
		return rmw.ErrClosed
	}
	if c.node.ctx.down {
		return rmw.ErrShutdown
	}
	return nil
}

// ServerAvailable reports whether a service with this name and type is
// currently in the graph.
func (c *lclient) ServerAvailable() (bool, error) {
	b := c.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.closed {
		return false, fmt.Errorf("server available %s: %w", c.service, rmw.ErrClosed)
	}
	return len(b.services[c.key]) > 0, nil
}

func (c *lclient) SendRequest(req any) (int64, error) {
	data, err := c.ts.Request().Serialize(req)
	if err != nil {
		err = fmt.Errorf("send request %s: %w", c.service, err)
		c.bus.logError(c.node.ctx.id, c.node.fqn(), "send_request", err)
		return 0, err
	}
	b := c.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := c.usableLocked(); err != nil {
		return 0, fmt.Errorf("send request %s: %w", c.service, err)
	}
	c.nextSeq++
	seq := c.nextSeq
	b.dispatchRequest(c, data, seq)
	return seq, nil
}

func (c *lclient) TakeResponse() (any, rmw.ServiceInfo, bool, error) {
	b := c.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := c.usableLocked(); err != nil {
		return nil, rmw.ServiceInfo{}, false, fmt.Errorf("take response %s: %w", c.service, err)
	}
	x, ok := c.queue.pop()
	if !ok {
		return nil, rmw.ServiceInfo{}, false, nil
	}
	resp := c.ts.Response().New()
	if err := c.ts.Response().Deserialize(x.data, resp); err != nil {
		return nil, rmw.ServiceInfo{}, false, fmt.Errorf("take response %s: %w", c.service, err)
	}
	return resp, x.info, true, nil
}

func (c *lclient) Ready() <-chan struct{} { return c.queue.ready.channel() }

func (c *lclient) Close() error {
	b := c.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	c.closeLocked()
	return nil
}

func (c *lclient) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	c.bus.detachClient(c)
	delete(c.node.clients, c)
	c.queue.close()
	c.bus.logLifecycle(c.node.ctx.id, log.EntityClient, c.node.fqn(), c.service, c.gid.String(), "close", "")
}

// lservice is one loopback service server. Mutable state is guarded by
// the bus mutex.
type lservice struct {
	bus  *bus
	node *lnode
	ts   rmw.ServiceTypeSupport

	service string
	key     serviceKey
	gid     rmw.GID
	profile qos.Profile

	closed bool
	queue  exchangeQueue
}

var _ rmw.Service = (*lservice)(nil)

func (s *lservice) ServiceName() string { return s.service }

func (s *lservice) usableLocked() error {
	if s.closed {
		return rmw.ErrClosed
	}
	if s.node.ctx.down {
		return rmw.ErrShutdown
	}
	return nil
}

func (s *lservice) TakeRequest() (any, rmw.ServiceInfo, bool, error) {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return nil, rmw.ServiceInfo{}, false, fmt.Errorf("take request %s: %w", s.service, err)
	}
	x, ok := s.queue.pop()
	if !ok {
		return nil, rmw.ServiceInfo{}, false, nil
	}
	req := s.ts.Request().New()
	if err := s.ts.Request().Deserialize(x.data, req); err != nil {
		return nil, rmw.ServiceInfo{}, false, fmt.Errorf("take request %s: %w", s.service, err)
	}
	return req, x.info, true, nil
}

// SendResponse answers the request identified by id. A client that has
// gone away since sending means the response is quietly dropped.
func (s *lservice) SendResponse(id rmw.RequestID, resp any) error {
	data, err := s.ts.Response().Serialize(resp)
	if err != nil {
		err = fmt.Errorf("send response %s: %w", s.service, err)
		s.bus.logError(s.node.ctx.id, s.node.fqn(), "send_response", err)
		return err
	}
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return fmt.Errorf("send response %s: %w", s.service, err)
	}
	b.routeResponse(s, id, data)
	return nil
}

func (s *lservice) Ready() <-chan struct{} { return s.queue.ready.channel() }

func (s *lservice) Close() error {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *lservice) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.bus.detachService(s)
	delete(s.node.services, s)
	s.queue.close()
	s.bus.logLifecycle(s.node.ctx.id, log.EntityService, s.node.fqn(), s.service, s.gid.String(), "close", "")
}
