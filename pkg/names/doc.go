// Package names validates full topic names, namespaces, and node names
// against the ROS naming rules.
//
// Each validator runs a fixed sequence of checks over the raw bytes of
// the name and reports the first rule violated together with the byte
// offset where it happened. The length bound is always checked last, so
// an over-long but otherwise well-formed name is distinguishable from a
// structurally broken one.
//
// The validators are pure functions. They allocate nothing, touch no
// shared state, and may be called concurrently.
package names
