// Package loopback implements the middleware interface entirely in
// process. Contexts that resolve to the same domain ID share one bus;
// endpoints on the bus are matched by topic and QoS exactly like a
// networked implementation would, messages are serialized once and
// fanned out to the matched subscription queues, and deadline and
// liveliness contracts are enforced with timers.
//
// Loopback exists for tests, demos and single-process deployments. It
// supports transient-local replay, per-message sequence numbers on both
// ends, and the full status/event surface. It does not provide network
// flows or content filtering; those operations return ErrUnsupported.
package loopback
