// Package graph checks topologies of publishers and subscriptions for
// trouble: invalid topic names, type mismatches, and QoS pairings that
// prevent endpoints from matching.
//
// Reports can be built from a live node's graph queries (AnalyzeNode)
// or from a YAML description of an intended topology (LoadDescription),
// so a deployment can be checked before anything runs.
package graph
