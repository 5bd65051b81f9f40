package rmw

// TypeSupport describes one message type to the middleware: its name,
// how to allocate it, and how to move it through a byte representation.
type TypeSupport interface {
	// TypeName is the fully qualified type name, e.g.
	// "example_interfaces/msg/Int32".
	TypeName() string

	// New returns a pointer to a fresh zero message of the type.
	New() any

	// Serialize encodes msg into the middleware's serialization format.
	Serialize(msg any) ([]byte, error)

	// Deserialize decodes data into msg, which must be a pointer of the
	// supported type.
	Deserialize(data []byte, msg any) error
}

// ServiceTypeSupport describes a request/response type pair.
type ServiceTypeSupport interface {
	// TypeName is the fully qualified service type name, e.g.
	// "example_interfaces/srv/AddTwoInts".
	TypeName() string

	Request() TypeSupport
	Response() TypeSupport
}
