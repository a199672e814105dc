package source

import (
	"context"

	"toolmux/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// StreamableHTTPClient talks to a source server over streamable HTTP.
type StreamableHTTPClient struct {
	baseClient
	url     string
	headers map[string]string
}

// NewStreamableHTTPClient creates a streamable-http client for the given
// endpoint.
func NewStreamableHTTPClient(server, url string, headers map[string]string) *StreamableHTTPClient {
	return &StreamableHTTPClient{
		baseClient: baseClient{server: server},
		url:        url,
		headers:    headers,
	}
}

// Initialize opens the connection and performs the protocol handshake.
func (c *StreamableHTTPClient) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	logging.Debug("StreamableHTTPClient", "Connecting %s to %s", c.server, c.url)

	var opts []transport.StreamableHTTPCOption
	if len(c.headers) > 0 {
		opts = append(opts, transport.WithHTTPHeaders(c.headers))
	}

	mcpClient, err := client.NewStreamableHttpClient(c.url, opts...)
	if err != nil {
		return &ConnectionError{Server: c.server, Err: err}
	}

	if _, err := mcpClient.Initialize(ctx, c.initRequest()); err != nil {
		mcpClient.Close()
		return &ConnectionError{Server: c.server, Err: err}
	}

	c.client = mcpClient
	c.connected = true

	logging.Debug("StreamableHTTPClient", "Handshake complete for %s", c.server)
	return nil
}
