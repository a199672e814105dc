package source

import (
	"context"
	"fmt"
	"time"

	"toolmux/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
)

// defaultInitTimeout bounds Initialize when the caller's context carries no
// deadline of its own.
const defaultInitTimeout = 10 * time.Second

// StdioClient talks to a source server launched as a local subprocess.
type StdioClient struct {
	baseClient
	command string
	args    []string
	env     map[string]string
}

// NewStdioClient creates a stdio-based client. The subprocess is not
// started until Initialize is called.
func NewStdioClient(server, command string, args []string, env map[string]string) *StdioClient {
	return &StdioClient{
		baseClient: baseClient{server: server},
		command:    command,
		args:       args,
		env:        env,
	}
}

// Initialize starts the subprocess and performs the protocol handshake.
// On any failure the subprocess is torn down before returning.
func (c *StdioClient) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	logging.Debug("StdioClient", "Starting %s: %s %v", c.server, c.command, c.args)

	var envStrings []string
	for k, v := range c.env {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
	}

	mcpClient, err := client.NewStdioMCPClient(c.command, envStrings, c.args...)
	if err != nil {
		return &ConnectionError{Server: c.server, Err: err}
	}

	initCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, defaultInitTimeout)
		defer cancel()
	}

	if _, err := mcpClient.Initialize(initCtx, c.initRequest()); err != nil {
		// Tear down the subprocess, the handle must not leak.
		if closeErr := mcpClient.Close(); closeErr != nil {
			logging.Debug("StdioClient", "Error closing failed client for %s: %v", c.server, closeErr)
		}
		return &ConnectionError{Server: c.server, Err: err}
	}

	c.client = mcpClient
	c.connected = true

	logging.Debug("StdioClient", "Handshake complete for %s", c.server)
	return nil
}
