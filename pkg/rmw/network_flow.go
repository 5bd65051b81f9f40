package rmw

// TransportProtocol names the transport layer of a network flow.
type TransportProtocol uint8

const (
	TransportUnknown TransportProtocol = iota
	TransportUDP
	TransportTCP
)

// String returns the lowercase protocol name.
func (t TransportProtocol) String() string {
	switch t {
	case TransportUDP:
		return "udp"
	case TransportTCP:
		return "tcp"
	default:
		return "unknown"
	}
}

// InternetProtocol names the network layer of a network flow.
type InternetProtocol uint8

const (
	InternetUnknown InternetProtocol = iota
	InternetIPv4
	InternetIPv6
)

// String returns the lowercase protocol name.
func (i InternetProtocol) String() string {
	switch i {
	case InternetIPv4:
		return "ipv4"
	case InternetIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// NetworkFlowEndpoint describes one transport-level flow an endpoint
// communicates over.
type NetworkFlowEndpoint struct {
	Transport TransportProtocol
	Internet  InternetProtocol

	// FlowLabel is the IPv6 flow label, when applicable.
	FlowLabel uint32

	// DSCP is the differentiated services code point, when applicable.
	DSCP uint8

	// Address is the endpoint address, host and port.
	Address string
}
