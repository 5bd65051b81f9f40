package log

import (
	"time"
)

// Event represents a middleware trace event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ContextID uniquely identifies the middleware context (UUID).
	ContextID string `cbor:"2,keyasint"`

	// Kind classifies the event type.
	Kind Kind `cbor:"3,keyasint"`

	// Node is the fully qualified name of the node involved.
	Node string `cbor:"4,keyasint,omitempty"`

	// Topic is the topic or service name involved.
	Topic string `cbor:"5,keyasint,omitempty"`

	// Entity indicates which kind of entity produced the event.
	Entity EntityKind `cbor:"6,keyasint,omitempty"`

	// GID is the global identifier of the entity, hex-encoded.
	GID string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Lifecycle *LifecycleEvent `cbor:"10,keyasint,omitempty"` // Create/close/shutdown
	Match     *MatchEvent     `cbor:"11,keyasint,omitempty"` // Endpoint matching
	Delivery  *DeliveryEvent  `cbor:"12,keyasint,omitempty"` // Message delivery
	QoS       *QoSEvent       `cbor:"13,keyasint,omitempty"` // QoS status changes
	Error     *ErrorEvent     `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Kind classifies the event type.
type Kind uint8

const (
	// KindLifecycle indicates an entity lifecycle event (create/close/shutdown).
	KindLifecycle Kind = 0
	// KindMatch indicates an endpoint matching event.
	KindMatch Kind = 1
	// KindDelivery indicates a message delivery event.
	KindDelivery Kind = 2
	// KindQoS indicates a QoS status event (deadline, liveliness, incompatibility).
	KindQoS Kind = 3
	// KindError indicates an error event.
	KindError Kind = 4
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLifecycle:
		return "LIFECYCLE"
	case KindMatch:
		return "MATCH"
	case KindDelivery:
		return "DELIVERY"
	case KindQoS:
		return "QOS"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// EntityKind indicates which kind of middleware entity produced an event.
type EntityKind uint8

const (
	// EntityContext indicates a middleware context.
	EntityContext EntityKind = 0
	// EntityNode indicates a node.
	EntityNode EntityKind = 1
	// EntityPublisher indicates a publisher.
	EntityPublisher EntityKind = 2
	// EntitySubscription indicates a subscription.
	EntitySubscription EntityKind = 3
	// EntityClient indicates a service client.
	EntityClient EntityKind = 4
	// EntityService indicates a service server.
	EntityService EntityKind = 5
)

// String returns the entity kind name.
func (e EntityKind) String() string {
	switch e {
	case EntityContext:
		return "CONTEXT"
	case EntityNode:
		return "NODE"
	case EntityPublisher:
		return "PUBLISHER"
	case EntitySubscription:
		return "SUBSCRIPTION"
	case EntityClient:
		return "CLIENT"
	case EntityService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// LifecycleEvent captures entity creation, shutdown and teardown.
type LifecycleEvent struct {
	// Action performed, e.g. "create", "close", "shutdown".
	Action string `cbor:"1,keyasint"`

	// Detail adds context, e.g. the resolved QoS profile.
	Detail string `cbor:"2,keyasint,omitempty"`
}

// MatchEvent captures an endpoint matching decision.
type MatchEvent struct {
	// PeerGID is the global identifier of the opposing endpoint.
	PeerGID string `cbor:"1,keyasint"`

	// Compatibility is the QoS verdict ("ok", "warning", "error").
	Compatibility string `cbor:"2,keyasint"`

	// Reason explains a non-ok verdict (may be truncated).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// DeliveryEvent captures one message handed to one subscription queue.
type DeliveryEvent struct {
	// Sequence is the publication sequence number of the sample.
	Sequence uint64 `cbor:"1,keyasint"`

	// Size is the serialized payload size in bytes.
	Size int `cbor:"2,keyasint"`

	// Replayed indicates a transient-local sample delivered on a late join.
	Replayed bool `cbor:"3,keyasint,omitempty"`
}

// QoSEvent captures a QoS status change on an endpoint.
type QoSEvent struct {
	// Event is the status name, e.g. "offered_deadline_missed".
	Event string `cbor:"1,keyasint"`

	// Policy names the offending policy for incompatibility events.
	Policy string `cbor:"2,keyasint,omitempty"`

	// Total is the cumulative count of this status change.
	Total int `cbor:"3,keyasint"`
}

// ErrorEvent captures errors at any layer.
type ErrorEvent struct {
	// Op describes what operation was being performed.
	Op string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`
}
