package loopback

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ros-middleware/rmw-go/pkg/log"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// Config parameterizes a Middleware.
type Config struct {
	// Logger receives a trace event for every lifecycle, match,
	// delivery and QoS status change. Nil disables tracing.
	Logger log.Logger
}

// Middleware is the loopback implementation of rmw.Middleware. Each
// instance is an isolated world: contexts created from it communicate
// when their resolved domain IDs are equal and see nothing else.
type Middleware struct {
	logger log.Logger

	mu      sync.Mutex
	domains map[int]*bus
}

var _ rmw.Middleware = (*Middleware)(nil)

// New returns a middleware with no domains joined yet.
func New(cfg Config) *Middleware {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Middleware{logger: logger, domains: make(map[int]*bus)}
}

// Name returns "loopback".
func (m *Middleware) Name() string { return "loopback" }

// SerializationFormat returns "cbor".
func (m *Middleware) SerializationFormat() string { return "cbor" }

// NewContext validates and resolves opts and joins the domain's bus,
// creating the bus on first use.
func (m *Middleware) NewContext(opts rmw.ContextOptions) (rmw.Context, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}
	opts = opts.Clone()
	if opts.DomainID == rmw.DomainIDDefault {
		opts.DomainID = 0
	}
	if opts.Discovery.Range == rmw.DiscoveryRangeNotSet {
		opts.Discovery.Range = rmw.DiscoveryRangeSystemDefault
	}

	b := m.acquire(opts.DomainID)
	c := &lctx{
		mw:    m,
		bus:   b,
		id:    uuid.NewString(),
		opts:  opts,
		nodes: make(map[*lnode]struct{}),
	}
	b.logLifecycle(c.id, log.EntityContext, "", "", "", "create",
		fmt.Sprintf("domain %d", opts.DomainID))
	return c, nil
}

// acquire returns the domain's bus, creating it on first reference.
func (m *Middleware) acquire(domain int) *bus {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.domains[domain]
	if !ok {
		b = newBus(domain, m.logger)
		m.domains[domain] = b
	}
	b.refs++
	return b
}

// release drops one context's reference, discarding the bus with the
// last one.
func (m *Middleware) release(b *bus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.refs--
	if b.refs <= 0 {
		delete(m.domains, b.domain)
	}
}
