package aggregator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"toolmux/internal/config"
	"toolmux/internal/source"
	"toolmux/internal/translate"
	"toolmux/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerConfig configures the consumer-facing MCP endpoint.
type ServerConfig struct {
	Host      string
	Port      int
	Transport config.Transport
	Version   string
}

// Server exposes the engine's aggregated tool set as an MCP server. The
// exposed list follows the registry: every snapshot swap re-syncs the
// registered tools, so consumers always see the latest completed cycle.
type Server struct {
	config ServerConfig
	engine *Engine
	server *server.MCPServer

	// Transport-specific servers
	sseServer            *server.SSEServer
	streamableHTTPServer *server.StreamableHTTPServer
	stdioServer          *server.StdioServer

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex

	// Canonical names currently registered on the MCP server, so a sync
	// can delete what the newest snapshot no longer carries.
	registered map[string]struct{}
}

// NewServer creates the MCP front end for an engine.
func NewServer(cfg ServerConfig, engine *Engine) *Server {
	return &Server{
		config:     cfg,
		engine:     engine,
		registered: make(map[string]struct{}),
	}
}

// Start registers the meta tools and the current snapshot's tools, starts
// the snapshot monitor and brings up the configured transport.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.server != nil {
		s.mu.Unlock()
		return fmt.Errorf("aggregator server already started")
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	s.server = server.NewMCPServer(
		"toolmux",
		s.config.Version,
		server.WithToolCapabilities(true),
	)
	s.server.AddTools(s.metaTools()...)

	s.wg.Add(1)
	go s.monitorSnapshotUpdates()
	s.mu.Unlock()

	s.syncTools()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	switch s.config.Transport {
	case config.TransportSSE:
		logging.Info("Aggregator", "Starting MCP server with SSE transport on %s", addr)
		baseURL := fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
		s.sseServer = server.NewSSEServer(
			s.server,
			server.WithBaseURL(baseURL),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		)
		sseServer := s.sseServer
		go func() {
			if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Aggregator", err, "SSE server error")
			}
		}()

	case config.TransportStdio:
		logging.Info("Aggregator", "Starting MCP server with stdio transport")
		s.stdioServer = server.NewStdioServer(s.server)
		stdioServer := s.stdioServer
		go func() {
			if err := stdioServer.Listen(s.ctx, os.Stdin, os.Stdout); err != nil {
				logging.Error("Aggregator", err, "Stdio server error")
			}
		}()

	case config.TransportStreamableHTTP:
		fallthrough
	default:
		logging.Info("Aggregator", "Starting MCP server with streamable-http transport on %s", addr)
		s.streamableHTTPServer = server.NewStreamableHTTPServer(s.server)
		streamableServer := s.streamableHTTPServer
		go func() {
			if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("Aggregator", err, "Streamable HTTP server error")
			}
		}()
	}

	return nil
}

// Stop shuts down the transport and the snapshot monitor.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.server == nil {
		s.mu.Unlock()
		return fmt.Errorf("aggregator server not started")
	}

	logging.Info("Aggregator", "Stopping MCP server")

	cancelFunc := s.cancelFunc
	sseServer := s.sseServer
	streamableServer := s.streamableHTTPServer
	s.mu.Unlock()

	if cancelFunc != nil {
		cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if sseServer != nil {
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Aggregator", err, "Error shutting down SSE server")
		}
	}
	if streamableServer != nil {
		if err := streamableServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Aggregator", err, "Error shutting down streamable HTTP server")
		}
	}
	// The stdio server stops on context cancellation.

	s.wg.Wait()

	s.mu.Lock()
	s.server = nil
	s.sseServer = nil
	s.streamableHTTPServer = nil
	s.stdioServer = nil
	s.registered = make(map[string]struct{})
	s.mu.Unlock()

	return nil
}

// monitorSnapshotUpdates re-syncs the exposed tools after each snapshot
// swap.
func (s *Server) monitorSnapshotUpdates() {
	defer s.wg.Done()

	updateChan := s.engine.Registry().UpdateChannel()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-updateChan:
			s.syncTools()
		}
	}
}

// syncTools reconciles the MCP server's registered tools with the current
// snapshot: stale names are deleted, current descriptors (re-)added.
func (s *Server) syncTools() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return
	}

	descriptors := s.engine.Tools()
	desired := make(map[string]struct{}, len(descriptors))
	for _, desc := range descriptors {
		desired[desc.Name] = struct{}{}
	}

	var stale []string
	for name := range s.registered {
		if _, ok := desired[name]; !ok {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		s.server.DeleteTools(stale...)
		for _, name := range stale {
			delete(s.registered, name)
		}
	}

	tools := make([]server.ServerTool, 0, len(descriptors))
	for _, desc := range descriptors {
		tools = append(tools, server.ServerTool{
			Tool:    exposedTool(desc),
			Handler: s.toolHandler(desc.Name),
		})
		s.registered[desc.Name] = struct{}{}
	}
	if len(tools) > 0 {
		s.server.AddTools(tools...)
	}

	logging.Debug("Aggregator", "Synced %d tools (%d removed)", len(tools), len(stale))
}

// toolHandler routes a call for one canonical name through the engine.
func (s *Server) toolHandler(name string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]interface{})

		result, err := s.engine.Dispatch(ctx, name, args)
		if err != nil {
			// A tool-reported failure keeps the provider's error payload;
			// pass it through untouched.
			var execErr *source.ExecutionError
			if errors.As(err, &execErr) && execErr.Kind == source.ExecutionTool && result != nil {
				return result, nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result, nil
	}
}

// exposedTool renders a canonical descriptor as the MCP tool consumers see.
func exposedTool(desc translate.ToolDescriptor) mcp.Tool {
	properties := make(map[string]interface{}, len(desc.Params))
	var required []string
	for _, param := range desc.Params {
		property := map[string]interface{}{"type": param.Type}
		if param.Description != "" {
			property["description"] = param.Description
		}
		properties[param.Name] = property
		if param.Required {
			required = append(required, param.Name)
		}
	}

	return mcp.Tool{
		Name:        desc.Name,
		Description: desc.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
	}
}
