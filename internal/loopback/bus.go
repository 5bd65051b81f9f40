package loopback

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ros-middleware/rmw-go/pkg/log"
	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// eventBuffer bounds an endpoint's Events channel. Notices beyond the
// buffer are dropped; the status counters never are.
const eventBuffer = 16

// topicKey is the matching partition for topic endpoints. Endpoints
// only see peers with the same name and the same stance on ROS name
// conventions.
type topicKey struct {
	name string
	raw  bool
}

// serviceKey is the matching partition for clients and services. A
// type name mismatch on the same service name simply never matches.
type serviceKey struct {
	name string
	typ  string
}

// sample is one retained publication, kept for transient-local replay.
type sample struct {
	data []byte
	src  time.Time
	seq  uint64
}

// delivery is one message pending in a subscription queue.
type delivery struct {
	data []byte
	info rmw.MessageInfo
}

// exchange is one request or response pending on the service side.
type exchange struct {
	data []byte
	info rmw.ServiceInfo
}

// bus is the in-process fabric of one domain. Every context resolved
// to the same domain ID shares a bus; entities on it see each other
// and nothing else.
//
// One mutex guards the whole domain: registries, match sets, queues
// and status counters. Watchdog callbacks re-acquire it and re-check
// entity state before acting.
type bus struct {
	domain int
	logger log.Logger

	// refs counts attached contexts. It is guarded by the owning
	// Middleware's mutex, not by mu.
	refs int

	mu       sync.Mutex
	nodes    map[*lnode]struct{}
	pubs     map[topicKey][]*lpub
	subs     map[topicKey][]*lsub
	clients  map[serviceKey][]*lclient
	services map[serviceKey][]*lservice
}

func newBus(domain int, logger log.Logger) *bus {
	return &bus{
		domain:   domain,
		logger:   logger,
		nodes:    make(map[*lnode]struct{}),
		pubs:     make(map[topicKey][]*lpub),
		subs:     make(map[topicKey][]*lsub),
		clients:  make(map[serviceKey][]*lclient),
		services: make(map[serviceKey][]*lservice),
	}
}

// unregister removes one element from a registry slice, preserving
// creation order.
func unregister[E comparable](list []E, e E) []E {
	for i, have := range list {
		if have == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Matching.

// attachPub registers p and evaluates it against every subscription in
// its partition. Callers hold b.mu.
func (b *bus) attachPub(p *lpub) {
	b.pubs[p.key] = append(b.pubs[p.key], p)
	for _, s := range b.subs[p.key] {
		b.evaluate(p, s)
	}
}

// attachSub registers s and evaluates it against every publisher in
// its partition. Callers hold b.mu.
func (b *bus) attachSub(s *lsub) {
	b.subs[s.key] = append(b.subs[s.key], s)
	for _, p := range b.pubs[s.key] {
		b.evaluate(p, s)
	}
}

// evaluate runs the matching decision for one publisher/subscription
// pair and applies its consequences: status counters, event notices,
// trace events, and for a successful match the transient-local replay.
// Callers hold b.mu.
func (b *bus) evaluate(p *lpub, s *lsub) {
	now := time.Now()

	if pt, st := p.ts.TypeName(), s.ts.TypeName(); pt != st {
		p.statuses.IncompatibleType.TotalCount++
		p.statuses.IncompatibleType.TotalCountChange++
		p.notify(rmw.EventPublisherIncompatibleType, now)
		s.statuses.IncompatibleType.TotalCount++
		s.statuses.IncompatibleType.TotalCountChange++
		s.notify(rmw.EventSubscriptionIncompatibleType, now)
		b.logMatch(p, s, "error", fmt.Sprintf("type %s does not match %s", pt, st))
		return
	}

	res := qos.CheckCompatibility(p.profile, s.profile)
	if res.Compatibility == qos.CompatibilityError {
		policy := res.Reasons[0].Policy
		p.statuses.OfferedQoSIncompatible.TotalCount++
		p.statuses.OfferedQoSIncompatible.TotalCountChange++
		p.statuses.OfferedQoSIncompatible.LastPolicy = policy
		p.notify(rmw.EventOfferedQoSIncompatible, now)
		s.statuses.RequestedQoSIncompatible.TotalCount++
		s.statuses.RequestedQoSIncompatible.TotalCountChange++
		s.statuses.RequestedQoSIncompatible.LastPolicy = policy
		s.notify(rmw.EventRequestedQoSIncompatible, now)
		b.logMatch(p, s, "error", res.Reasons[0].Message)
		return
	}

	p.matches[s] = struct{}{}
	s.matches[p] = struct{}{}

	p.statuses.Matched.TotalCount++
	p.statuses.Matched.TotalCountChange++
	p.statuses.Matched.CurrentCount++
	p.statuses.Matched.CurrentCountChange++
	p.notify(rmw.EventPublicationMatched, now)

	s.statuses.Matched.TotalCount++
	s.statuses.Matched.TotalCountChange++
	s.statuses.Matched.CurrentCount++
	s.statuses.Matched.CurrentCountChange++
	s.notify(rmw.EventSubscriptionMatched, now)

	if p.alive {
		s.statuses.LivelinessChanged.AliveCount++
		s.statuses.LivelinessChanged.AliveCountChange++
	} else {
		s.statuses.LivelinessChanged.NotAliveCount++
		s.statuses.LivelinessChanged.NotAliveCountChange++
	}
	s.notify(rmw.EventLivelinessChanged, now)

	// Deadline contracts only run while matched.
	if p.deadline != nil && len(p.matches) == 1 {
		p.deadline.feed()
	}
	if s.deadline != nil && len(s.matches) == 1 {
		s.deadline.feed()
	}

	b.logMatch(p, s, "ok", "")

	if p.profile.Durability == qos.DurabilityTransientLocal &&
		s.profile.Durability == qos.DurabilityTransientLocal &&
		!(s.ignoreLocal && s.node == p.node) {
		for _, smp := range p.retained {
			b.enqueue(s, delivery{
				data: smp.data,
				info: rmw.MessageInfo{
					SourceTime:                smp.src,
					ReceivedTime:              now,
					PublicationSequenceNumber: smp.seq,
					PublisherGID:              p.gid,
					FromIntraProcess:          true,
				},
			}, true)
		}
	}
}

// detachPub removes p from the registry and unmatches it. Callers hold
// b.mu.
func (b *bus) detachPub(p *lpub) {
	b.pubs[p.key] = unregister(b.pubs[p.key], p)
	if len(b.pubs[p.key]) == 0 {
		delete(b.pubs, p.key)
	}
	now := time.Now()
	for s := range p.matches {
		delete(s.matches, p)
		s.statuses.Matched.CurrentCount--
		s.statuses.Matched.CurrentCountChange--
		s.notify(rmw.EventSubscriptionMatched, now)
		if p.alive {
			s.statuses.LivelinessChanged.AliveCount--
			s.statuses.LivelinessChanged.AliveCountChange--
		} else {
			s.statuses.LivelinessChanged.NotAliveCount--
			s.statuses.LivelinessChanged.NotAliveCountChange--
		}
		s.notify(rmw.EventLivelinessChanged, now)
		if s.deadline != nil && len(s.matches) == 0 {
			s.deadline.disarm()
		}
	}
	p.matches = nil
}

// detachSub removes s from the registry and unmatches it. Callers hold
// b.mu.
func (b *bus) detachSub(s *lsub) {
	b.subs[s.key] = unregister(b.subs[s.key], s)
	if len(b.subs[s.key]) == 0 {
		delete(b.subs, s.key)
	}
	now := time.Now()
	for p := range s.matches {
		delete(p.matches, s)
		p.statuses.Matched.CurrentCount--
		p.statuses.Matched.CurrentCountChange--
		p.notify(rmw.EventPublicationMatched, now)
		if p.deadline != nil && len(p.matches) == 0 {
			p.deadline.disarm()
		}
	}
	s.matches = nil
}

// Delivery.

// publish hands one serialized message to every matched subscription
// and retains it when the publisher is transient-local. Callers hold
// b.mu.
func (b *bus) publish(p *lpub, data []byte) {
	now := time.Now()
	p.seq++
	seq := p.seq

	if p.profile.Durability == qos.DurabilityTransientLocal {
		if p.profile.History == qos.HistoryKeepLast && len(p.retained) >= p.profile.Depth {
			p.retained = p.retained[1:]
		}
		p.retained = append(p.retained, sample{data: data, src: now, seq: seq})
	}

	// Publishing asserts liveliness and resets the offered deadline.
	b.assertAlive(p, now)
	if p.deadline != nil && len(p.matches) > 0 {
		p.deadline.feed()
	}

	for s := range p.matches {
		if s.ignoreLocal && s.node == p.node {
			continue
		}
		b.enqueue(s, delivery{
			data: data,
			info: rmw.MessageInfo{
				SourceTime:                now,
				ReceivedTime:              now,
				PublicationSequenceNumber: seq,
				PublisherGID:              p.gid,
				FromIntraProcess:          true,
			},
		}, false)
	}

	b.logDelivery(p.node, log.EntityPublisher, p.gid, p.topic, seq, len(data), false)
}

// enqueue appends one delivery to s, honoring the history policy. A
// full keep-last queue evicts its oldest entry, which counts as a lost
// message. Callers hold b.mu.
func (b *bus) enqueue(s *lsub, d delivery, replayed bool) {
	if s.profile.History == qos.HistoryKeepLast && len(s.queue) >= s.profile.Depth {
		s.queue = s.queue[1:]
		s.statuses.MessageLost.TotalCount++
		s.statuses.MessageLost.TotalCountChange++
		s.notify(rmw.EventMessageLost, d.info.ReceivedTime)
		b.logQoS(s.node, log.EntitySubscription, s.gid, s.topic,
			rmw.EventMessageLost, "", s.statuses.MessageLost.TotalCount)
	}
	s.recvSeq++
	d.info.ReceptionSequenceNumber = s.recvSeq
	s.queue = append(s.queue, d)
	s.ready.set()
	if s.deadline != nil && len(s.matches) > 0 {
		s.deadline.feed()
	}
	b.logDelivery(s.node, log.EntitySubscription, s.gid, s.topic,
		d.info.PublicationSequenceNumber, len(d.data), replayed)
}

// assertAlive marks p alive, feeds its lease, and tells the matched
// subscriptions when that is a change. Callers hold b.mu.
func (b *bus) assertAlive(p *lpub, now time.Time) {
	if p.lease != nil {
		p.lease.feed()
	}
	if p.alive {
		return
	}
	p.alive = true
	b.logQoS(p.node, log.EntityPublisher, p.gid, p.topic,
		rmw.EventLivelinessChanged, "", p.statuses.LivelinessLost.TotalCount)
	for s := range p.matches {
		s.statuses.LivelinessChanged.AliveCount++
		s.statuses.LivelinessChanged.AliveCountChange++
		s.statuses.LivelinessChanged.NotAliveCount--
		s.statuses.LivelinessChanged.NotAliveCountChange--
		s.notify(rmw.EventLivelinessChanged, now)
	}
}

// Services.

func (b *bus) attachClient(c *lclient) {
	b.clients[c.key] = append(b.clients[c.key], c)
}

func (b *bus) detachClient(c *lclient) {
	b.clients[c.key] = unregister(b.clients[c.key], c)
	if len(b.clients[c.key]) == 0 {
		delete(b.clients, c.key)
	}
}

func (b *bus) attachService(s *lservice) {
	b.services[s.key] = append(b.services[s.key], s)
}

func (b *bus) detachService(s *lservice) {
	b.services[s.key] = unregister(b.services[s.key], s)
	if len(b.services[s.key]) == 0 {
		delete(b.services, s.key)
	}
}

// dispatchRequest fans one serialized request out to every service on
// the key. With no service attached the request is dropped; it will
// simply never be answered. Callers hold b.mu.
func (b *bus) dispatchRequest(c *lclient, data []byte, seq int64) {
	now := time.Now()
	info := rmw.ServiceInfo{
		SourceTime:   now,
		ReceivedTime: now,
		RequestID:    rmw.RequestID{WriterGID: c.gid, SequenceNumber: seq},
	}
	for _, svc := range b.services[c.key] {
		svc.queue.push(exchange{data: data, info: info})
	}
	b.logDelivery(c.node, log.EntityClient, c.gid, c.service, uint64(seq), len(data), false)
}

// routeResponse hands one serialized response back to the client that
// wrote the request. A client that has since closed means the response
// is dropped. Callers hold b.mu.
func (b *bus) routeResponse(svc *lservice, id rmw.RequestID, data []byte) {
	b.logDelivery(svc.node, log.EntityService, svc.gid, svc.service,
		uint64(id.SequenceNumber), len(data), false)
	for _, c := range b.clients[svc.key] {
		if c.gid != id.WriterGID {
			continue
		}
		now := time.Now()
		c.queue.push(exchange{data: data, info: rmw.ServiceInfo{
			SourceTime:   now,
			ReceivedTime: now,
			RequestID:    id,
		}})
		return
	}
}

// Graph queries. Callers hold b.mu.

func (b *bus) nodeNames() []rmw.NodeName {
	out := make([]rmw.NodeName, 0, len(b.nodes))
	for n := range b.nodes {
		out = append(out, rmw.NodeName{
			Name:      n.name,
			Namespace: n.namespace,
			Enclave:   n.ctx.opts.Enclave,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FullyQualifiedName() < out[j].FullyQualifiedName()
	})
	return out
}

func (b *bus) topicNamesAndTypes() rmw.NamesAndTypes {
	nt := make(rmw.NamesAndTypes)
	for key, list := range b.pubs {
		for _, p := range list {
			nt[key.name] = addType(nt[key.name], p.ts.TypeName())
		}
	}
	for key, list := range b.subs {
		for _, s := range list {
			nt[key.name] = addType(nt[key.name], s.ts.TypeName())
		}
	}
	return nt
}

func (b *bus) serviceNamesAndTypes() rmw.NamesAndTypes {
	nt := make(rmw.NamesAndTypes)
	for key := range b.services {
		nt[key.name] = addType(nt[key.name], key.typ)
	}
	for key := range b.clients {
		nt[key.name] = addType(nt[key.name], key.typ)
	}
	return nt
}

// addType inserts a type name keeping the list sorted and duplicate
// free.
func addType(types []string, typ string) []string {
	i := sort.SearchStrings(types, typ)
	if i < len(types) && types[i] == typ {
		return types
	}
	types = append(types, "")
	copy(types[i+1:], types[i:])
	types[i] = typ
	return types
}

func (b *bus) countPublishers(topic string) int {
	return len(b.pubs[topicKey{name: topic}]) + len(b.pubs[topicKey{name: topic, raw: true}])
}

func (b *bus) countSubscriptions(topic string) int {
	return len(b.subs[topicKey{name: topic}]) + len(b.subs[topicKey{name: topic, raw: true}])
}

func (b *bus) publishersInfo(topic string) []rmw.EndpointInfo {
	out := []rmw.EndpointInfo{}
	for _, raw := range []bool{false, true} {
		for _, p := range b.pubs[topicKey{name: topic, raw: raw}] {
			out = append(out, rmw.EndpointInfo{
				NodeName:      p.node.name,
				NodeNamespace: p.node.namespace,
				TopicType:     p.ts.TypeName(),
				Type:          rmw.EndpointPublisher,
				GID:           p.gid,
				QoS:           p.profile,
			})
		}
	}
	return out
}

func (b *bus) subscriptionsInfo(topic string) []rmw.EndpointInfo {
	out := []rmw.EndpointInfo{}
	for _, raw := range []bool{false, true} {
		for _, s := range b.subs[topicKey{name: topic, raw: raw}] {
			out = append(out, rmw.EndpointInfo{
				NodeName:      s.node.name,
				NodeNamespace: s.node.namespace,
				TopicType:     s.ts.TypeName(),
				Type:          rmw.EndpointSubscription,
				GID:           s.gid,
				QoS:           s.profile,
			})
		}
	}
	return out
}

// publisherNamesAndTypesByNode lists the topics the named node
// publishes. Several nodes may share a name; their topics merge.
func (b *bus) publisherNamesAndTypesByNode(name, namespace string) (rmw.NamesAndTypes, error) {
	nt := make(rmw.NamesAndTypes)
	found := false
	for n := range b.nodes {
		if n.name != name || n.namespace != namespace {
			continue
		}
		found = true
		for p := range n.pubs {
			nt[p.topic] = addType(nt[p.topic], p.ts.TypeName())
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: node %q in namespace %q not in graph",
			rmw.ErrInvalidArgument, name, namespace)
	}
	return nt, nil
}

// subscriptionNamesAndTypesByNode lists the topics the named node
// subscribes to.
func (b *bus) subscriptionNamesAndTypesByNode(name, namespace string) (rmw.NamesAndTypes, error) {
	nt := make(rmw.NamesAndTypes)
	found := false
	for n := range b.nodes {
		if n.name != name || n.namespace != namespace {
			continue
		}
		found = true
		for s := range n.subs {
			nt[s.topic] = addType(nt[s.topic], s.ts.TypeName())
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: node %q in namespace %q not in graph",
			rmw.ErrInvalidArgument, name, namespace)
	}
	return nt, nil
}

// requestedProfiles returns the resolved profile of every subscription
// in the partition, for best-available resolution. Callers hold b.mu.
func (b *bus) requestedProfiles(key topicKey) []qos.Profile {
	subs := b.subs[key]
	out := make([]qos.Profile, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.profile)
	}
	return out
}

// offeredProfiles returns the resolved profile of every publisher in
// the partition. Callers hold b.mu.
func (b *bus) offeredProfiles(key topicKey) []qos.Profile {
	pubs := b.pubs[key]
	out := make([]qos.Profile, 0, len(pubs))
	for _, p := range pubs {
		out = append(out, p.profile)
	}
	return out
}

// Trace events.

// logEvent stamps and forwards one trace event.
func (b *bus) logEvent(ev log.Event) {
	ev.Timestamp = time.Now()
	b.logger.Log(ev)
}

func (b *bus) logLifecycle(ctxID string, entity log.EntityKind, node, topic, gid, action, detail string) {
	b.logEvent(log.Event{
		ContextID: ctxID,
		Kind:      log.KindLifecycle,
		Node:      node,
		Topic:     topic,
		Entity:    entity,
		GID:       gid,
		Lifecycle: &log.LifecycleEvent{Action: action, Detail: detail},
	})
}

// logMatch records one matching decision from both endpoints' points
// of view.
func (b *bus) logMatch(p *lpub, s *lsub, compat, reason string) {
	b.logEvent(log.Event{
		ContextID: p.node.ctx.id,
		Kind:      log.KindMatch,
		Node:      p.node.fqn(),
		Topic:     p.topic,
		Entity:    log.EntityPublisher,
		GID:       p.gid.String(),
		Match:     &log.MatchEvent{PeerGID: s.gid.String(), Compatibility: compat, Reason: reason},
	})
	b.logEvent(log.Event{
		ContextID: s.node.ctx.id,
		Kind:      log.KindMatch,
		Node:      s.node.fqn(),
		Topic:     s.topic,
		Entity:    log.EntitySubscription,
		GID:       s.gid.String(),
		Match:     &log.MatchEvent{PeerGID: p.gid.String(), Compatibility: compat, Reason: reason},
	})
}

func (b *bus) logDelivery(n *lnode, entity log.EntityKind, gid rmw.GID, topic string, seq uint64, size int, replayed bool) {
	b.logEvent(log.Event{
		ContextID: n.ctx.id,
		Kind:      log.KindDelivery,
		Node:      n.fqn(),
		Topic:     topic,
		Entity:    entity,
		GID:       gid.String(),
		Delivery:  &log.DeliveryEvent{Sequence: seq, Size: size, Replayed: replayed},
	})
}

func (b *bus) logQoS(n *lnode, entity log.EntityKind, gid rmw.GID, topic string, ev rmw.EventType, policy string, total int) {
	b.logEvent(log.Event{
		ContextID: n.ctx.id,
		Kind:      log.KindQoS,
		Node:      n.fqn(),
		Topic:     topic,
		Entity:    entity,
		GID:       gid.String(),
		QoS:       &log.QoSEvent{Event: ev.String(), Policy: policy, Total: total},
	})
}

func (b *bus) logError(ctxID, node, op string, err error) {
	b.logEvent(log.Event{
		ContextID: ctxID,
		Kind:      log.KindError,
		Node:      node,
		Entity:    log.EntityNode,
		Error:     &log.ErrorEvent{Op: op, Message: err.Error()},
	})
}
