// Package rmw defines the middleware abstraction layer: the entity
// interfaces (Context, Node, Publisher, Subscription, Client, Service),
// the options and metadata structs they exchange, and the registry that
// concrete middleware implementations plug into.
//
// The package contains no transport of its own. An implementation
// registers itself under a name with Register; applications pick one
// with Select, which honors the RMW_IMPLEMENTATION environment
// variable, and create a Context from it. Every entity is created from
// its parent and released with Close; closing a parent closes its
// children first.
//
// Call failures and semantic verdicts travel on separate channels: an
// error return means the call itself failed, while a rejected QoS
// pairing or an invalid name surfaces as a classified result
// (qos.Result, names result codes) from a successful call. The one
// exception is entity creation, which refuses invalid names with an
// error wrapping ErrInvalidName, since no entity exists to carry a
// verdict.
package rmw
