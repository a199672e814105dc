package source

import "fmt"

// ConnectionError indicates that a source server could not be reached or
// launched within its timeout.
type ConnectionError struct {
	Server string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to server %q: %v", e.Server, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DiscoveryError indicates a protocol-level failure while listing a
// server's tools.
type DiscoveryError struct {
	Server string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to discover tools from server %q: %v", e.Server, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// ExecutionKind distinguishes whether a failed tool call ever reached the
// provider.
type ExecutionKind string

const (
	// ExecutionTransport means the call never reached the provider.
	ExecutionTransport ExecutionKind = "transport"
	// ExecutionTool means the provider executed the tool and reported an
	// error result.
	ExecutionTool ExecutionKind = "tool"
)

// ExecutionError indicates a failed tool execution. Kind tells the caller
// whether the tool ran at all.
type ExecutionError struct {
	Server string
	Tool   string
	Kind   ExecutionKind
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %q on server %q failed (%s): %v", e.Tool, e.Server, e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// BackpressureError indicates a call was rejected because the server
// already had its maximum number of in-flight executions.
type BackpressureError struct {
	Server string
	Limit  int
}

func (e *BackpressureError) Error() string {
	return fmt.Sprintf("server %q at capacity (%d in-flight calls)", e.Server, e.Limit)
}
