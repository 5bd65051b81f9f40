// Package testmsgs defines the message and service types used by the
// demos and the end-to-end tests.
package testmsgs

import (
	"time"

	"github.com/ros-middleware/rmw-go/internal/typesupport"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// Int32 carries a single 32-bit integer.
type Int32 struct {
	Data int32 `cbor:"1,keyasint"`
}

// String carries a single UTF-8 string.
type String struct {
	Data string `cbor:"1,keyasint"`
}

// Header stamps a message with time and coordinate frame.
type Header struct {
	Stamp   time.Time `cbor:"1,keyasint"`
	FrameID string    `cbor:"2,keyasint,omitempty"`
}

// StampedString is a string payload with a header.
type StampedString struct {
	Header Header `cbor:"1,keyasint"`
	Data   string `cbor:"2,keyasint"`
}

// AddTwoIntsRequest asks for the sum of A and B.
type AddTwoIntsRequest struct {
	A int64 `cbor:"1,keyasint"`
	B int64 `cbor:"2,keyasint"`
}

// AddTwoIntsResponse carries the sum.
type AddTwoIntsResponse struct {
	Sum int64 `cbor:"1,keyasint"`
}

// Type supports for the message types above.
var (
	Int32Type         = typesupport.New[Int32]("std_msgs/msg/Int32")
	StringType        = typesupport.New[String]("std_msgs/msg/String")
	StampedStringType = typesupport.New[StampedString]("test_msgs/msg/StampedString")

	AddTwoIntsType = typesupport.NewService[AddTwoIntsRequest, AddTwoIntsResponse]("example_interfaces/srv/AddTwoInts")
)

// Interface checks keep the type supports aligned with the rmw contracts.
var (
	_ rmw.TypeSupport        = Int32Type
	_ rmw.ServiceTypeSupport = AddTwoIntsType
)
