package loopback

import (
	"fmt"

	"github.com/ros-middleware/rmw-go/pkg/log"
	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// lnode is one loopback node. Mutable state is guarded by the bus
// mutex.
type lnode struct {
	ctx       *lctx
	name      string
	namespace string

	closed   bool
	pubs     map[*lpub]struct{}
	subs     map[*lsub]struct{}
	clients  map[*lclient]struct{}
	services map[*lservice]struct{}
}

var _ rmw.Node = (*lnode)(nil)

func (n *lnode) Name() string      { return n.name }
func (n *lnode) Namespace() string { return n.namespace }

func (n *lnode) FullyQualifiedName() string { return n.fqn() }

func (n *lnode) fqn() string {
	return rmw.NodeName{Name: n.name, Namespace: n.namespace}.FullyQualifiedName()
}

// usableLocked reports why the node cannot create endpoints, if it
// cannot. Callers hold the bus mutex.
func (n *lnode) usableLocked() error {
	if n.closed {
		return rmw.ErrClosed
	}
	if n.ctx.down {
		return rmw.ErrShutdown
	}
	return nil
}

// checkEndpointName applies the ROS topic rules to a topic or service
// name unless the profile opts out of them, in which case only
// emptiness is rejected.
func checkEndpointName(name string, p qos.Profile) error {
	if p.AvoidROSNamespaceConventions {
		if name == "" {
			return fmt.Errorf("%w: empty name", rmw.ErrInvalidName)
		}
		return nil
	}
	return rmw.CheckTopicName(name)
}

func (n *lnode) CreatePublisher(ts rmw.TypeSupport, topic string, opts rmw.PublisherOptions) (rmw.Publisher, error) {
	if ts == nil {
		return nil, fmt.Errorf("create publisher %q: %w: nil type support", topic, rmw.ErrInvalidArgument)
	}
	if err := checkEndpointName(topic, opts.QoS); err != nil {
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	if opts.QoS.Depth < 0 {
		return nil, fmt.Errorf("create publisher %q: %w: negative depth %d",
			topic, rmw.ErrInvalidArgument, opts.QoS.Depth)
	}
	if opts.RequireUniqueNetworkFlowEndpoints == rmw.FlowStrictlyRequired {
		return nil, fmt.Errorf("create publisher %q: %w: unique network flow endpoints",
			topic, rmw.ErrUnsupported)
	}

	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := n.usableLocked(); err != nil {
		return nil, fmt.Errorf("create publisher %q: %w", topic, err)
	}

	key := topicKey{name: topic, raw: opts.QoS.AvoidROSNamespaceConventions}
	profile := resolvePublisher(opts.QoS, b.requestedProfiles(key))

	p := &lpub{
		bus:     b,
		node:    n,
		ts:      ts,
		topic:   topic,
		key:     key,
		gid:     rmw.NewGID(),
		profile: profile,
		alive:   true,
		matches: make(map[*lsub]struct{}),
		events:  make(chan rmw.Event, eventBuffer),
	}
	if d, ok := profile.Deadline.Std(); ok && d > 0 {
		p.deadline = newWatchdog(d, p.deadlineMissed)
	}
	if profile.Liveliness == qos.LivelinessManualByTopic {
		if d, ok := profile.LivelinessLeaseDuration.Std(); ok && d > 0 {
			p.lease = newWatchdog(d, p.leaseMissed)
			// Creation counts as the first assertion.
			p.lease.feed()
		}
	}

	n.pubs[p] = struct{}{}
	b.attachPub(p)
	b.logLifecycle(n.ctx.id, log.EntityPublisher, n.fqn(), topic, p.gid.String(), "create", profile.String())
	return p, nil
}

func (n *lnode) CreateSubscription(ts rmw.TypeSupport, topic string, opts rmw.SubscriptionOptions) (rmw.Subscription, error) {
	if ts == nil {
		return nil, fmt.Errorf("create subscription %q: %w: nil type support", topic, rmw.ErrInvalidArgument)
	}
	if err := checkEndpointName(topic, opts.QoS); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	if opts.QoS.Depth < 0 {
		return nil, fmt.Errorf("create subscription %q: %w: negative depth %d",
			topic, rmw.ErrInvalidArgument, opts.QoS.Depth)
	}
	if opts.RequireUniqueNetworkFlowEndpoints == rmw.FlowStrictlyRequired {
		return nil, fmt.Errorf("create subscription %q: %w: unique network flow endpoints",
			topic, rmw.ErrUnsupported)
	}
	if opts.ContentFilter != nil {
		return nil, fmt.Errorf("create subscription %q: %w: content filtering",
			topic, rmw.ErrUnsupported)
	}

	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := n.usableLocked(); err != nil {
		return nil, fmt.Errorf("create subscription %q: %w", topic, err)
	}

	key := topicKey{name: topic, raw: opts.QoS.AvoidROSNamespaceConventions}
	profile := resolveSubscription(opts.QoS, b.offeredProfiles(key))

	s := &lsub{
		bus:         b,
		node:        n,
		ts:          ts,
		topic:       topic,
		key:         key,
		gid:         rmw.NewGID(),
		profile:     profile,
		ignoreLocal: opts.IgnoreLocalPublications,
		matches:     make(map[*lpub]struct{}),
		events:      make(chan rmw.Event, eventBuffer),
		ready:       newNotifier(),
	}
	if d, ok := profile.Deadline.Std(); ok && d > 0 {
		s.deadline = newWatchdog(d, s.deadlineMissed)
	}

	n.subs[s] = struct{}{}
	b.attachSub(s)
	b.logLifecycle(n.ctx.id, log.EntitySubscription, n.fqn(), topic, s.gid.String(), "create", profile.String())
	return s, nil
}

func (n *lnode) CreateClient(ts rmw.ServiceTypeSupport, service string, profile qos.Profile) (rmw.Client, error) {
	if ts == nil {
		return nil, fmt.Errorf("create client %q: %w: nil type support", service, rmw.ErrInvalidArgument)
	}
	if err := checkEndpointName(service, profile); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	if profile.Depth < 0 {
		return nil, fmt.Errorf("create client %q: %w: negative depth %d",
			service, rmw.ErrInvalidArgument, profile.Depth)
	}

	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := n.usableLocked(); err != nil {
		return nil, fmt.Errorf("create client %q: %w", service, err)
	}

	resolved := resolvePublisher(profile, nil)
	c := &lclient{
		bus:     b,
		node:    n,
		ts:      ts,
		service: service,
		key:     serviceKey{name: service, typ: ts.TypeName()},
		gid:     rmw.NewGID(),
		profile: resolved,
		queue:   newExchangeQueue(resolved),
	}

	n.clients[c] = struct{}{}
	b.attachClient(c)
	b.logLifecycle(n.ctx.id, log.EntityClient, n.fqn(), service, c.gid.String(), "create", resolved.String())
	return c, nil
}

func (n *lnode) CreateService(ts rmw.ServiceTypeSupport, service string, profile qos.Profile) (rmw.Service, error) {
	if ts == nil {
		return nil, fmt.Errorf("create service %q: %w: nil type support", service, rmw.ErrInvalidArgument)
	}
	if err := checkEndpointName(service, profile); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	if profile.Depth < 0 {
		return nil, fmt.Errorf("create service %q: %w: negative depth %d",
			service, rmw.ErrInvalidArgument, profile.Depth)
	}

	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := n.usableLocked(); err != nil {
		return nil, fmt.Errorf("create service %q: %w", service, err)
	}

	resolved := resolvePublisher(profile, nil)
	s := &lservice{
		bus:     b,
		node:    n,
		ts:      ts,
		service: service,
		key:     serviceKey{name: service, typ: ts.TypeName()},
		gid:     rmw.NewGID(),
		profile: resolved,
		queue:   newExchangeQueue(resolved),
	}

	n.services[s] = struct{}{}
	b.attachService(s)
	b.logLifecycle(n.ctx.id, log.EntityService, n.fqn(), service, s.gid.String(), "create", resolved.String())
	return s, nil
}

// Graph queries. They answer from the whole domain and keep working
// after Shutdown, until the node is closed.

func (n *lnode) NodeNames() ([]rmw.NodeName, error) {
	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.closed {
		return nil, fmt.Errorf("node names: %w", rmw.ErrClosed)
	}
	return b.nodeNames(), nil
}

func (n *lnode) TopicNamesAndTypes() (rmw.NamesAndTypes, error) {
	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.closed {
		return nil, fmt.Errorf("topic names and types: %w", rmw.ErrClosed)
	}
	return b.topicNamesAndTypes(), nil
}

func (n *lnode) ServiceNamesAndTypes() (rmw.NamesAndTypes, error) {
	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.closed {
		return nil, fmt.Errorf("service names and types: %w", rmw.ErrClosed)
	}
	return b.serviceNamesAndTypes(), nil
}

func (n *lnode) CountPublishers(topic string) (int, error) {
	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.closed {
		return 0, fmt.Errorf("count publishers: %w", rmw.ErrClosed)
	}
	return b.countPublishers(topic), nil
}

func (n *lnode) CountSubscriptions(topic string) (int, error) {
	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.closed {
		return 0, fmt.Errorf("count subscriptions: %w", rmw.ErrClosed)
	}
	return b.countSubscriptions(topic), nil
}

func (n *lnode) PublishersInfoByTopic(topic string) ([]rmw.EndpointInfo, error) {
	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.closed {
		return nil, fmt.Errorf("publishers info: %w", rmw.ErrClosed)
	}
	return b.publishersInfo(topic), nil
}

func (n *lnode) SubscriptionsInfoByTopic(topic string) ([]rmw.EndpointInfo, error) {
	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.closed {
		return nil, fmt.Errorf("subscriptions info: %w", rmw.ErrClosed)
	}
	return b.subscriptionsInfo(topic), nil
}

func (n *lnode) PublisherNamesAndTypesByNode(name, namespace string) (rmw.NamesAndTypes, error) {
	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.closed {
		return nil, fmt.Errorf("publisher names by node: %w", rmw.ErrClosed)
	}
	return b.publisherNamesAndTypesByNode(name, namespace)
}

func (n *lnode) SubscriptionNamesAndTypesByNode(name, namespace string) (rmw.NamesAndTypes, error) {
	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.closed {
		return nil, fmt.Errorf("subscription names by node: %w", rmw.ErrClosed)
	}
	return b.subscriptionNamesAndTypesByNode(name, namespace)
}

func (n *lnode) Close() error {
	b := n.ctx.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	n.closeLocked()
	return nil
}

// closeLocked closes every endpoint and removes the node from the
// graph. Callers hold the bus mutex.
func (n *lnode) closeLocked() {
	if n.closed {
		return
	}
	n.closed = true
	for p := range n.pubs {
		p.closeLocked()
	}
	for s := range n.subs {
		s.closeLocked()
	}
	for c := range n.clients {
		c.closeLocked()
	}
	for s := range n.services {
		s.closeLocked()
	}
	delete(n.ctx.nodes, n)
	delete(n.ctx.bus.nodes, n)
	n.ctx.bus.logLifecycle(n.ctx.id, log.EntityNode, n.fqn(), "", "", "close", "")
}

// quiesceLocked stops every endpoint timer so a shut-down context
// produces no further QoS activity. Callers hold the bus mutex.
func (n *lnode) quiesceLocked() {
	for p := range n.pubs {
		p.stopTimersLocked()
	}
	for s := range n.subs {
		if s.deadline != nil {
			s.deadline.stop()
		}
	}
}
