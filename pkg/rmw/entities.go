package rmw

import (
	"context"

	"github.com/ros-middleware/rmw-go/pkg/qos"
)

// Context is one connection to a middleware domain. All nodes of an
// application hang off a context.
//
// Shutdown stops communication: publishes and takes fail with
// ErrShutdown afterwards, while introspection keeps working until
// Close. Close shuts down if needed, closes every remaining child node,
// and releases the context. Both are idempotent.
type Context interface {
	// DomainID is the domain actually joined, with DomainIDDefault
	// resolved.
	DomainID() int

	// Options returns a copy of the resolved creation options.
	Options() ContextOptions

	// SupportsFeature reports whether the implementation provides an
	// optional capability.
	SupportsFeature(f Feature) bool

	// CreateNode validates name and namespace and adds a node to the
	// graph.
	CreateNode(name, namespace string) (Node, error)

	Shutdown() error
	Close() error
}

// Node is a named participant in the graph and the factory for
// endpoints. Closing a node closes its endpoints.
type Node interface {
	Name() string
	Namespace() string

	// FullyQualifiedName joins namespace and name, e.g. "/ns/talker".
	FullyQualifiedName() string

	CreatePublisher(ts TypeSupport, topic string, opts PublisherOptions) (Publisher, error)
	CreateSubscription(ts TypeSupport, topic string, opts SubscriptionOptions) (Subscription, error)
	CreateClient(ts ServiceTypeSupport, service string, profile qos.Profile) (Client, error)
	CreateService(ts ServiceTypeSupport, service string, profile qos.Profile) (Service, error)

	// Graph queries reflect the state of the whole domain, not just
	// this node.

	// NodeNames lists every node currently in the graph.
	NodeNames() ([]NodeName, error)

	// TopicNamesAndTypes maps each topic to the type names seen on it.
	TopicNamesAndTypes() (NamesAndTypes, error)

	// ServiceNamesAndTypes maps each service to the type names seen on
	// it.
	ServiceNamesAndTypes() (NamesAndTypes, error)

	CountPublishers(topic string) (int, error)
	CountSubscriptions(topic string) (int, error)

	PublishersInfoByTopic(topic string) ([]EndpointInfo, error)
	SubscriptionsInfoByTopic(topic string) ([]EndpointInfo, error)

	PublisherNamesAndTypesByNode(name, namespace string) (NamesAndTypes, error)
	SubscriptionNamesAndTypesByNode(name, namespace string) (NamesAndTypes, error)

	Close() error
}

// Publisher writes messages to one topic.
type Publisher interface {
	Topic() string

	// GID identifies this publisher across the graph.
	GID() GID

	// ActualQoS returns the profile in force, with system defaults and
	// best-available sentinels resolved.
	ActualQoS() qos.Profile

	// Publish sends one message of the publisher's type.
	Publish(msg any) error

	// PublishSerialized sends an already serialized message without
	// inspecting it.
	PublishSerialized(data []byte) error

	CountMatchedSubscriptions() (int, error)

	// AssertLiveliness manually confirms the publisher is alive. Only
	// meaningful under manual-by-topic liveliness.
	AssertLiveliness() error

	// WaitForAllAcked blocks until every matched subscription has
	// acknowledged all sent messages, or ctx is done.
	WaitForAllAcked(ctx context.Context) error

	NetworkFlowEndpoints() ([]NetworkFlowEndpoint, error)

	// Events delivers status-change notices, best effort: when the
	// buffer is full notices are dropped, the counters in TakeStatuses
	// are not.
	Events() <-chan Event

	// TakeStatuses snapshots every publisher-side status and resets the
	// change counters.
	TakeStatuses() PublisherStatuses

	Close() error
}

// Subscription reads messages from one topic.
type Subscription interface {
	Topic() string

	ActualQoS() qos.Profile

	CountMatchedPublishers() (int, error)

	// Take returns the oldest pending message. ok is false when nothing
	// is pending; readiness may be spurious.
	Take() (msg any, info MessageInfo, ok bool, err error)

	// TakeSerialized returns the oldest pending message in serialized
	// form.
	TakeSerialized() ([]byte, MessageInfo, bool, error)

	// ContentFilter returns a copy of the active filter, or nil when
	// none is set.
	ContentFilter() (*ContentFilterOptions, error)

	// SetContentFilter replaces the active filter. A nil filter clears
	// it.
	SetContentFilter(opts *ContentFilterOptions) error

	NetworkFlowEndpoints() ([]NetworkFlowEndpoint, error)

	// Ready returns the channel a WaitSet selects on. The channel may
	// be replaced as data drains; re-acquire it for every wait.
	Ready() <-chan struct{}

	Events() <-chan Event

	// TakeStatuses snapshots every subscription-side status and resets
	// the change counters.
	TakeStatuses() SubscriptionStatuses

	Close() error
}

// Client sends requests to one service and takes the responses.
type Client interface {
	ServiceName() string

	// GID identifies this client's request writer.
	GID() GID

	// ServerAvailable reports whether at least one server is matched.
	ServerAvailable() (bool, error)

	// SendRequest sends req and returns the sequence number that will
	// identify its response.
	SendRequest(req any) (int64, error)

	// TakeResponse returns the oldest pending response. ok is false
	// when nothing is pending.
	TakeResponse() (resp any, info ServiceInfo, ok bool, err error)

	Ready() <-chan struct{}

	Close() error
}

// Service receives requests for one service name and answers them.
type Service interface {
	ServiceName() string

	// TakeRequest returns the oldest pending request. ok is false when
	// nothing is pending. The ServiceInfo carries the RequestID to
	// answer with.
	TakeRequest() (req any, info ServiceInfo, ok bool, err error)

	// SendResponse answers the request identified by id.
	SendResponse(id RequestID, resp any) error

	Ready() <-chan struct{}

	Close() error
}
