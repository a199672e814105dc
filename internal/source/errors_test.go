package source

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("starting server: %w", &ConnectionError{Server: "excel", Err: cause})

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "excel", connErr.Server)
	assert.ErrorIs(t, err, cause)
}

func TestExecutionErrorKinds(t *testing.T) {
	transport := &ExecutionError{Server: "excel", Tool: "read_range", Kind: ExecutionTransport, Err: errors.New("broken pipe")}
	tool := &ExecutionError{Server: "excel", Tool: "read_range", Kind: ExecutionTool, Err: errors.New("range out of bounds")}

	assert.Contains(t, transport.Error(), "transport")
	assert.Contains(t, tool.Error(), "tool")

	// Kind survives wrapping so callers can distinguish "never ran" from
	// "ran and failed".
	wrapped := fmt.Errorf("dispatch: %w", transport)
	var execErr *ExecutionError
	require.ErrorAs(t, wrapped, &execErr)
	assert.Equal(t, ExecutionTransport, execErr.Kind)
}

func TestBackpressureError(t *testing.T) {
	err := &BackpressureError{Server: "analytics", Limit: 4}
	assert.Contains(t, err.Error(), "analytics")
	assert.Contains(t, err.Error(), "4")
}

func TestDiscoveryErrorUnwrap(t *testing.T) {
	cause := errors.New("protocol error")
	err := &DiscoveryError{Server: "analytics", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "analytics")
}
