package rmw

import (
	"sort"

	"github.com/ros-middleware/rmw-go/pkg/qos"
)

// NamesAndTypes maps a topic or service name to the type names seen on
// it.
type NamesAndTypes map[string][]string

// Names returns the keys, sorted.
func (nt NamesAndTypes) Names() []string {
	out := make([]string, 0, len(nt))
	for name := range nt {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NodeName identifies a node in the graph.
type NodeName struct {
	Name      string
	Namespace string

	// Enclave is the security enclave the node's context runs in.
	Enclave string
}

// FullyQualifiedName joins namespace and name.
func (n NodeName) FullyQualifiedName() string {
	if n.Namespace == "/" {
		return "/" + n.Name
	}
	return n.Namespace + "/" + n.Name
}

// EndpointType distinguishes publishers from subscriptions in endpoint
// listings.
type EndpointType uint8

const (
	EndpointInvalid EndpointType = iota
	EndpointPublisher
	EndpointSubscription
)

// String returns the lowercase endpoint kind.
func (e EndpointType) String() string {
	switch e {
	case EndpointPublisher:
		return "publisher"
	case EndpointSubscription:
		return "subscription"
	default:
		return "invalid"
	}
}

// EndpointInfo describes one endpoint discovered on a topic.
type EndpointInfo struct {
	NodeName      string
	NodeNamespace string

	// TopicType is the fully qualified message type name.
	TopicType string

	Type EndpointType
	GID  GID

	// QoS is the endpoint's resolved profile.
	QoS qos.Profile
}
