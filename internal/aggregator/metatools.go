package aggregator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Meta tool names. The toolmux_ prefix keeps them out of the way of
// aggregated provider tools.
const (
	metaToolStatus  = "toolmux_status"
	metaToolRefresh = "toolmux_refresh"
)

// metaTools returns the built-in tools registered alongside the aggregated
// set: a status report and a manual re-discovery trigger.
func (s *Server) metaTools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.Tool{
				Name:        metaToolStatus,
				Description: "Report per-server health, tool counts and the conflicts resolved by the current snapshot",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]interface{}{},
				},
			},
			Handler: s.handleStatus,
		},
		{
			Tool: mcp.Tool{
				Name:        metaToolRefresh,
				Description: "Trigger a discovery cycle across all enabled servers and report the result",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]interface{}{},
				},
			},
			Handler: s.handleRefresh,
		},
	}
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	set := s.engine.Registry().Current()

	report := struct {
		CycleID   string          `json:"cycleId"`
		ToolCount int             `json:"toolCount"`
		Servers   []ServerStatus  `json:"servers"`
		Conflicts []ConflictEntry `json:"conflicts,omitempty"`
	}{
		CycleID:   set.CycleID,
		ToolCount: set.Len(),
		Servers:   s.engine.Status(),
		Conflicts: set.Conflicts,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleRefresh(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.engine.DiscoverAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("discovery failed: %v", err)), nil
	}

	summary := fmt.Sprintf("cycle %s: %d tools from %d servers (%d failures, %d conflicts) in %s",
		result.ID, result.ToolCount, len(result.Outcomes), result.Failures(),
		len(result.Conflicts), result.Elapsed)
	return mcp.NewToolResultText(summary), nil
}
