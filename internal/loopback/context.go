package loopback

import (
	"fmt"

	"github.com/ros-middleware/rmw-go/pkg/log"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// lctx is one loopback context. Mutable state is guarded by the domain
// bus mutex.
type lctx struct {
	mw  *Middleware
	bus *bus

	// id tags this context's trace events.
	id string

	opts rmw.ContextOptions

	down   bool
	closed bool
	nodes  map[*lnode]struct{}
}

var _ rmw.Context = (*lctx)(nil)

func (c *lctx) DomainID() int { return c.opts.DomainID }

func (c *lctx) Options() rmw.ContextOptions { return c.opts.Clone() }

func (c *lctx) SupportsFeature(f rmw.Feature) bool {
	switch f {
	case rmw.FeatureMessageInfoPublicationSequenceNumber,
		rmw.FeatureMessageInfoReceptionSequenceNumber:
		return true
	}
	return false
}

func (c *lctx) CreateNode(name, namespace string) (rmw.Node, error) {
	if err := rmw.CheckNodeName(name); err != nil {
		return nil, fmt.Errorf("create node: %w", err)
	}
	if err := rmw.CheckNamespace(namespace); err != nil {
		return nil, fmt.Errorf("create node %q: %w", name, err)
	}

	b := c.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("create node %q: %w", name, rmw.ErrClosed)
	}
	if c.down {
		return nil, fmt.Errorf("create node %q: %w", name, rmw.ErrShutdown)
	}

	n := &lnode{
		ctx:       c,
		name:      name,
		namespace: namespace,
		pubs:      make(map[*lpub]struct{}),
		subs:      make(map[*lsub]struct{}),
		clients:   make(map[*lclient]struct{}),
		services:  make(map[*lservice]struct{}),
	}
	c.nodes[n] = struct{}{}
	b.nodes[n] = struct{}{}
	b.logLifecycle(c.id, log.EntityNode, n.fqn(), "", "", "create", "")
	return n, nil
}

// Shutdown stops communication on the context. Entities stay alive for
// introspection until Close; their timers stop so a shut-down context
// produces no further QoS activity.
func (c *lctx) Shutdown() error {
	b := c.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	c.shutdownLocked()
	return nil
}

func (c *lctx) shutdownLocked() {
	if c.down {
		return
	}
	c.down = true
	for n := range c.nodes {
		n.quiesceLocked()
	}
	c.bus.logLifecycle(c.id, log.EntityContext, "", "", "", "shutdown", "")
}

// Close shuts down if needed, closes every remaining node, and leaves
// the domain.
func (c *lctx) Close() error {
	b := c.bus
	b.mu.Lock()
	if c.closed {
		b.mu.Unlock()
		return nil
	}
	c.shutdownLocked()
	for n := range c.nodes {
		n.closeLocked()
	}
	c.closed = true
	b.logLifecycle(c.id, log.EntityContext, "", "", "", "close", "")
	b.mu.Unlock()

	c.mw.release(b)
	return nil
}
