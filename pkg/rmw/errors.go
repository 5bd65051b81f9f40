package rmw

import "errors"

// Sentinel errors shared by every middleware implementation. Call sites
// add context with fmt.Errorf and %w so callers can test with errors.Is.
var (
	// ErrInvalidArgument reports an argument outside its contract.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidName reports a topic, namespace, node, or service name
	// that failed validation.
	ErrInvalidName = errors.New("invalid name")

	// ErrShutdown reports an operation on a context that has been shut
	// down.
	ErrShutdown = errors.New("context is shut down")

	// ErrClosed reports an operation on a closed entity.
	ErrClosed = errors.New("entity is closed")

	// ErrUnsupported reports an operation the middleware does not
	// implement.
	ErrUnsupported = errors.New("operation not supported")

	// ErrNoSuchImplementation reports a middleware name with no
	// registered implementation.
	ErrNoSuchImplementation = errors.New("no such middleware implementation")

	// ErrImplementationRegistered reports a second registration under an
	// already taken name.
	ErrImplementationRegistered = errors.New("middleware implementation already registered")
)
