// Package source owns the connection to each configured tool provider.
//
// A Client wraps one mcp-go transport (stdio subprocess, SSE or streamable
// HTTP) and classifies every failure at this boundary into the engine's
// error taxonomy: ConnectionError on handshake, DiscoveryError on listing,
// ExecutionError on calls. The Limiter bounds per-server execution
// concurrency with a configurable queue-or-reject overflow policy.
package source
