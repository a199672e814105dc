package source

import (
	"context"

	"toolmux/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// SSEClient talks to a source server over Server-Sent Events.
type SSEClient struct {
	baseClient
	url     string
	headers map[string]string
}

// NewSSEClient creates an SSE-based client for the given endpoint.
func NewSSEClient(server, url string, headers map[string]string) *SSEClient {
	return &SSEClient{
		baseClient: baseClient{server: server},
		url:        url,
		headers:    headers,
	}
}

// Initialize opens the SSE stream and performs the protocol handshake.
func (c *SSEClient) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	logging.Debug("SSEClient", "Connecting %s to %s", c.server, c.url)

	var opts []transport.ClientOption
	if len(c.headers) > 0 {
		opts = append(opts, transport.WithHeaders(c.headers))
	}

	mcpClient, err := client.NewSSEMCPClient(c.url, opts...)
	if err != nil {
		return &ConnectionError{Server: c.server, Err: err}
	}

	if err := mcpClient.Start(ctx); err != nil {
		mcpClient.Close()
		return &ConnectionError{Server: c.server, Err: err}
	}

	if _, err := mcpClient.Initialize(ctx, c.initRequest()); err != nil {
		mcpClient.Close()
		return &ConnectionError{Server: c.server, Err: err}
	}

	c.client = mcpClient
	c.connected = true

	logging.Debug("SSEClient", "Handshake complete for %s", c.server)
	return nil
}
