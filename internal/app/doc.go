// Package app bootstraps the toolmux server: logging, configuration
// loading and validation, optional tracing, the aggregation engine and the
// MCP front end, plus the configuration watcher that applies file changes
// to the running engine.
package app
