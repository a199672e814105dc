package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

const protocolVersion = "2024-11-05"

// Client is the connection to one source server. Implementations own the
// underlying process or HTTP connection exclusively and release it on Close
// or on any failed Initialize, whichever comes first.
type Client interface {
	// Initialize establishes the connection and performs the protocol
	// handshake. Failures are reported as *ConnectionError.
	Initialize(ctx context.Context) error

	// Close releases the underlying connection. Safe to call more than
	// once and on a never-initialized client.
	Close() error

	// ListTools returns the server's native tool descriptors. Failures
	// are reported as *DiscoveryError.
	ListTools(ctx context.Context) ([]mcp.Tool, error)

	// CallTool forwards one tool execution. Transport failures are
	// reported as *ExecutionError with Kind ExecutionTransport; a result
	// the provider itself marked as an error is returned as-is, the
	// caller decides how to surface it.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)

	// Ping checks whether the server is responsive.
	Ping(ctx context.Context) error
}

// baseClient carries the connection state shared by every transport.
type baseClient struct {
	server    string
	mu        sync.RWMutex
	client    client.MCPClient
	connected bool
}

func (c *baseClient) initRequest() mcp.InitializeRequest {
	return mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: protocolVersion,
			ClientInfo: mcp.Implementation{
				Name:    "toolmux",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	}
}

// Close cleanly shuts down the client connection.
func (c *baseClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.client == nil {
		return nil
	}

	err := c.client.Close()
	c.connected = false
	c.client = nil

	return err
}

// ListTools returns all available tools from the server.
func (c *baseClient) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.client == nil {
		return nil, &DiscoveryError{Server: c.server, Err: fmt.Errorf("client not connected")}
	}

	result, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, &DiscoveryError{Server: c.server, Err: err}
	}

	return result.Tools, nil
}

// CallTool executes a specific tool and returns the result.
func (c *baseClient) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.client == nil {
		return nil, &ExecutionError{
			Server: c.server,
			Tool:   name,
			Kind:   ExecutionTransport,
			Err:    fmt.Errorf("client not connected"),
		}
	}

	result, err := c.client.CallTool(ctx, mcp.CallToolRequest{
		Params: struct {
			Name      string    `json:"name"`
			Arguments any       `json:"arguments,omitempty"`
			Meta      *mcp.Meta `json:"_meta,omitempty"`
		}{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, &ExecutionError{Server: c.server, Tool: name, Kind: ExecutionTransport, Err: err}
	}

	return result, nil
}

// Ping checks if the server is responsive.
func (c *baseClient) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.client == nil {
		return fmt.Errorf("client not connected")
	}

	return c.client.Ping(ctx)
}
