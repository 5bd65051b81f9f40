package rmw

import (
	"time"

	"github.com/ros-middleware/rmw-go/pkg/qos"
)

// EventType identifies a status-change event on an endpoint. The
// numeric order is the upstream one and must not change.
type EventType uint8

const (
	// EventLivelinessChanged: a matched publisher became alive or
	// stopped being alive.
	EventLivelinessChanged EventType = iota
	// EventRequestedDeadlineMissed: the subscription's deadline elapsed
	// without a message.
	EventRequestedDeadlineMissed
	// EventRequestedQoSIncompatible: a publisher was rejected because
	// its offer is weaker than this subscription's request.
	EventRequestedQoSIncompatible
	// EventMessageLost: the subscription lost messages.
	EventMessageLost
	// EventSubscriptionIncompatibleType: a publisher on the topic
	// carries a different type.
	EventSubscriptionIncompatibleType
	// EventSubscriptionMatched: the subscription gained or lost a
	// matched publisher.
	EventSubscriptionMatched
	// EventLivelinessLost: the publisher failed to assert liveliness
	// within its lease.
	EventLivelinessLost
	// EventOfferedDeadlineMissed: the publisher's deadline elapsed
	// without a publish.
	EventOfferedDeadlineMissed
	// EventOfferedQoSIncompatible: a subscription was rejected because
	// its request is stricter than this publisher's offer.
	EventOfferedQoSIncompatible
	// EventPublisherIncompatibleType: a subscription on the topic
	// carries a different type.
	EventPublisherIncompatibleType
	// EventPublicationMatched: the publisher gained or lost a matched
	// subscription.
	EventPublicationMatched
	// EventInvalid is the zero-information sentinel.
	EventInvalid
)

// String returns the lowercase event name.
func (e EventType) String() string {
	switch e {
	case EventLivelinessChanged:
		return "liveliness_changed"
	case EventRequestedDeadlineMissed:
		return "requested_deadline_missed"
	case EventRequestedQoSIncompatible:
		return "requested_qos_incompatible"
	case EventMessageLost:
		return "message_lost"
	case EventSubscriptionIncompatibleType:
		return "subscription_incompatible_type"
	case EventSubscriptionMatched:
		return "subscription_matched"
	case EventLivelinessLost:
		return "liveliness_lost"
	case EventOfferedDeadlineMissed:
		return "offered_deadline_missed"
	case EventOfferedQoSIncompatible:
		return "offered_qos_incompatible"
	case EventPublisherIncompatibleType:
		return "publisher_incompatible_type"
	case EventPublicationMatched:
		return "publication_matched"
	case EventInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Event is a lightweight notice that an endpoint status changed. The
// full counters live in the status structs.
type Event struct {
	Type EventType
	Time time.Time
}

// QoSIncompatibleStatus counts endpoint pairings rejected over QoS.
type QoSIncompatibleStatus struct {
	TotalCount       int
	TotalCountChange int

	// LastPolicy is the first policy that failed in the most recent
	// rejection.
	LastPolicy qos.PolicyKind
}

// MatchedStatus counts matched remote endpoints.
type MatchedStatus struct {
	TotalCount         int
	TotalCountChange   int
	CurrentCount       int
	CurrentCountChange int
}

// LivelinessChangedStatus counts matched publishers by liveliness, as
// seen from a subscription.
type LivelinessChangedStatus struct {
	AliveCount          int
	NotAliveCount       int
	AliveCountChange    int
	NotAliveCountChange int
}

// LivelinessLostStatus counts lease expiries on a publisher.
type LivelinessLostStatus struct {
	TotalCount       int
	TotalCountChange int
}

// DeadlineMissedStatus counts deadline periods that elapsed without a
// message.
type DeadlineMissedStatus struct {
	TotalCount       int
	TotalCountChange int
}

// MessageLostStatus counts messages the subscription lost.
type MessageLostStatus struct {
	TotalCount       int
	TotalCountChange int
}

// IncompatibleTypeStatus counts topic-type mismatches with remote
// endpoints.
type IncompatibleTypeStatus struct {
	TotalCount       int
	TotalCountChange int
}

// PublisherStatuses aggregates every publisher-side status.
type PublisherStatuses struct {
	OfferedDeadlineMissed  DeadlineMissedStatus
	LivelinessLost         LivelinessLostStatus
	OfferedQoSIncompatible QoSIncompatibleStatus
	IncompatibleType       IncompatibleTypeStatus
	Matched                MatchedStatus
}

// SubscriptionStatuses aggregates every subscription-side status.
type SubscriptionStatuses struct {
	RequestedDeadlineMissed  DeadlineMissedStatus
	LivelinessChanged        LivelinessChangedStatus
	RequestedQoSIncompatible QoSIncompatibleStatus
	MessageLost              MessageLostStatus
	IncompatibleType         IncompatibleTypeStatus
	Matched                  MatchedStatus
}
