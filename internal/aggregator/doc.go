// Package aggregator implements the multi-source tool aggregation engine.
//
// The engine discovers tools from every enabled source server concurrently,
// normalizes their schemas into canonical descriptors, resolves name
// collisions by priority (configuration order breaking ties) and publishes
// the result as an immutable snapshot. Consumers read snapshots through the
// Registry without ever blocking on an in-progress cycle.
//
// # Core Components
//
//   - Engine: owns the per-server clients, execution limiters and health
//     tracker; exposes DiscoverAll, Tools, Dispatch and Status.
//   - orchestrator: runs one discovery cycle as a bounded concurrent
//     fan-out; concurrent triggers coalesce into the in-flight cycle.
//   - resolver: deterministic collision resolution producing the winning
//     descriptor per canonical name plus a conflict log.
//   - Registry: atomic snapshot holder with a non-blocking update channel.
//   - Server: the MCP front end (streamable-http, sse or stdio) that keeps
//     its registered tools in sync with the current snapshot and routes
//     calls through Engine.Dispatch.
//
// # Failure Model
//
// Discovery tolerates partial failure: a server that errors or exceeds its
// timeout is recorded as failed for the cycle and its tools are excluded,
// while the remaining servers still contribute. Health transitions follow
// consecutive failures against the configured threshold, and availability
// is re-checked at dispatch time so a stale snapshot never routes a call to
// a server already known to be down.
package aggregator
