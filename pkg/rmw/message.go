package rmw

import (
	"math"
	"time"
)

// SequenceNumberUnsupported marks a sequence number the middleware does
// not provide. See Feature for probing support.
const SequenceNumberUnsupported uint64 = math.MaxUint64

// MessageInfo describes one received message.
type MessageInfo struct {
	// SourceTime is when the publisher stamped the message.
	SourceTime time.Time

	// ReceivedTime is when the subscription received it.
	ReceivedTime time.Time

	// PublicationSequenceNumber counts messages as the publisher sent
	// them, or SequenceNumberUnsupported.
	PublicationSequenceNumber uint64

	// ReceptionSequenceNumber counts messages as the subscription
	// received them, or SequenceNumberUnsupported.
	ReceptionSequenceNumber uint64

	// PublisherGID identifies the sending publisher.
	PublisherGID GID

	// FromIntraProcess is set when the message never left the process.
	FromIntraProcess bool
}

// RequestID correlates a service response with its request.
type RequestID struct {
	// WriterGID identifies the client that sent the request.
	WriterGID GID

	// SequenceNumber is the client-assigned request number.
	SequenceNumber int64
}

// ServiceInfo describes one received request or response.
type ServiceInfo struct {
	SourceTime   time.Time
	ReceivedTime time.Time
	RequestID    RequestID
}
