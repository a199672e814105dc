package aggregator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"toolmux/internal/config"
	"toolmux/internal/source"
	"toolmux/internal/translate"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExposedToolRendersCanonicalSchema(t *testing.T) {
	desc := translate.ToolDescriptor{
		Name:        "write_range",
		Description: "Write cells",
		Params: []translate.Param{
			{Name: "range", Type: "string", Required: true, Description: "A1 notation"},
			{Name: "values", Type: "array", Required: true},
			{Name: "sheet", Type: "string"},
		},
	}

	tool := exposedTool(desc)

	assert.Equal(t, "write_range", tool.Name)
	assert.Equal(t, "Write cells", tool.Description)
	assert.Equal(t, "object", tool.InputSchema.Type)
	assert.Equal(t, []string{"range", "values"}, tool.InputSchema.Required)

	rangeProp, ok := tool.InputSchema.Properties["range"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "string", rangeProp["type"])
	assert.Equal(t, "A1 notation", rangeProp["description"])

	sheetProp, ok := tool.InputSchema.Properties["sheet"].(map[string]interface{})
	require.True(t, ok)
	_, hasDesc := sheetProp["description"]
	assert.False(t, hasDesc)
}

func TestSyncToolsFollowsSnapshot(t *testing.T) {
	e := newTestEngine(
		[]config.SourceServer{cycleServer("s", 1, time.Second)},
		map[string]source.Client{"s": &fakeClient{tools: []mcp.Tool{testTool("first"), testTool("second")}}},
		3,
	)
	_, err := e.DiscoverAll(context.Background())
	require.NoError(t, err)

	s := NewServer(ServerConfig{Version: "test"}, e)
	s.server = mcpserver.NewMCPServer("toolmux", "test", mcpserver.WithToolCapabilities(true))

	s.syncTools()
	assert.Contains(t, s.registered, "first")
	assert.Contains(t, s.registered, "second")

	// The next snapshot drops one tool; the sync deletes it.
	e.registry.Swap(newToolSet("next", []translate.ToolDescriptor{descriptor("first", "s")}, nil))
	s.syncTools()
	assert.Contains(t, s.registered, "first")
	assert.NotContains(t, s.registered, "second")
}

func TestToolHandlerPassesThroughToolError(t *testing.T) {
	client := &fakeClient{
		tools: []mcp.Tool{testTool("work")},
		callFn: func(string, map[string]interface{}) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("provider says no"), nil
		},
	}
	e := newTestEngine([]config.SourceServer{cycleServer("s", 1, time.Second)},
		map[string]source.Client{"s": client}, 3)
	_, err := e.DiscoverAll(context.Background())
	require.NoError(t, err)

	s := NewServer(ServerConfig{Version: "test"}, e)
	handler := s.toolHandler("work")

	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]interface{}{"k": "v"}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Equal(t, "provider says no", text.Text)
}

func TestToolHandlerWrapsTransportError(t *testing.T) {
	e := newTestEngine(
		[]config.SourceServer{cycleServer("s", 1, time.Second)},
		map[string]source.Client{"s": &fakeClient{tools: []mcp.Tool{testTool("work")}}},
		3,
	)
	_, err := e.DiscoverAll(context.Background())
	require.NoError(t, err)

	s := NewServer(ServerConfig{Version: "test"}, e)
	handler := s.toolHandler("gone")

	result, err := handler(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestHandleStatusReportsSnapshot(t *testing.T) {
	e := newTestEngine(
		[]config.SourceServer{cycleServer("excel", 1, time.Second)},
		map[string]source.Client{"excel": &fakeClient{tools: []mcp.Tool{testTool("read_range")}}},
		3,
	)
	_, err := e.DiscoverAll(context.Background())
	require.NoError(t, err)

	s := NewServer(ServerConfig{Version: "test"}, e)
	result, err := s.handleStatus(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var report struct {
		CycleID   string         `json:"cycleId"`
		ToolCount int            `json:"toolCount"`
		Servers   []ServerStatus `json:"servers"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &report))
	assert.NotEmpty(t, report.CycleID)
	assert.Equal(t, 1, report.ToolCount)
	require.Len(t, report.Servers, 1)
	assert.Equal(t, "excel", report.Servers[0].Server)
}

func TestHandleRefreshRunsCycle(t *testing.T) {
	e := newTestEngine(
		[]config.SourceServer{cycleServer("s", 1, time.Second)},
		map[string]source.Client{"s": &fakeClient{tools: []mcp.Tool{testTool("a")}}},
		3,
	)

	s := NewServer(ServerConfig{Version: "test"}, e)
	result, err := s.handleRefresh(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Len(t, e.Tools(), 1)
}
