// Package typesupport provides CBOR-backed message type support for
// middleware implementations that serialize Go structs directly.
package typesupport

import (
	"fmt"

	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

type messageType[T any] struct {
	name string
}

// New returns type support for the message struct T under the given
// fully qualified type name, e.g. "std_msgs/msg/Int32".
func New[T any](name string) rmw.TypeSupport {
	return messageType[T]{name: name}
}

func (m messageType[T]) TypeName() string { return m.name }

func (m messageType[T]) New() any { return new(T) }

func (m messageType[T]) Serialize(msg any) ([]byte, error) {
	v, ok := msg.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects %T, got %T", rmw.ErrInvalidArgument, m.name, new(T), msg)
	}
	return Marshal(v)
}

func (m messageType[T]) Deserialize(data []byte, into any) error {
	v, ok := into.(*T)
	if !ok {
		return fmt.Errorf("%w: %s expects %T, got %T", rmw.ErrInvalidArgument, m.name, new(T), into)
	}
	return Unmarshal(data, v)
}

type serviceType struct {
	name string
	req  rmw.TypeSupport
	resp rmw.TypeSupport
}

// NewService returns service type support pairing the request struct Req
// with the response struct Resp under the given fully qualified service
// type name, e.g. "example_interfaces/srv/AddTwoInts".
func NewService[Req, Resp any](name string) rmw.ServiceTypeSupport {
	return serviceType{
		name: name,
		req:  New[Req](name + "_Request"),
		resp: New[Resp](name + "_Response"),
	}
}

func (s serviceType) TypeName() string          { return s.name }
func (s serviceType) Request() rmw.TypeSupport  { return s.req }
func (s serviceType) Response() rmw.TypeSupport { return s.resp }
