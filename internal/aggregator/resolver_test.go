package aggregator

import (
	"encoding/json"
	"errors"
	"testing"

	"toolmux/internal/config"
	"toolmux/internal/source"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(name string, priority int) config.SourceServer {
	return config.SourceServer{Name: name, Priority: priority}
}

func testTool(name string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		InputSchema: mcp.ToolInputSchema{Type: "object"},
	}
}

func allAvailable(string) bool { return true }

func TestResolveLowerPriorityWins(t *testing.T) {
	servers := []config.SourceServer{
		testServer("backup", 10),
		testServer("primary", 1),
	}
	outcomes := map[string]Outcome{
		"backup":  {Server: "backup", Tools: []mcp.Tool{testTool("search")}},
		"primary": {Server: "primary", Tools: []mcp.Tool{testTool("search")}},
	}

	winners, conflicts, dropped := resolve(servers, outcomes, allAvailable)

	require.Len(t, winners, 1)
	assert.Equal(t, "primary", winners[0].Server)
	assert.Empty(t, dropped)

	require.Len(t, conflicts, 1)
	assert.Equal(t, "search", conflicts[0].Name)
	assert.Equal(t, "primary", conflicts[0].Winner)
	assert.Equal(t, []string{"backup"}, conflicts[0].Losers)
	assert.Equal(t, ReasonPriority, conflicts[0].Reason)
}

func TestResolveConfigOrderBreaksTies(t *testing.T) {
	servers := []config.SourceServer{
		testServer("alpha", 5),
		testServer("beta", 5),
	}
	outcomes := map[string]Outcome{
		"alpha": {Server: "alpha", Tools: []mcp.Tool{testTool("lookup")}},
		"beta":  {Server: "beta", Tools: []mcp.Tool{testTool("lookup")}},
	}

	winners, conflicts, _ := resolve(servers, outcomes, allAvailable)

	require.Len(t, winners, 1)
	assert.Equal(t, "alpha", winners[0].Server)

	require.Len(t, conflicts, 1)
	assert.Equal(t, ReasonConfigOrder, conflicts[0].Reason)
	assert.Equal(t, []string{"beta"}, conflicts[0].Losers)
}

func TestResolveOverlappingServers(t *testing.T) {
	servers := []config.SourceServer{
		testServer("excel", 1),
		testServer("analytics", 2),
	}
	outcomes := map[string]Outcome{
		"excel": {Server: "excel", Tools: []mcp.Tool{
			testTool("read_range"),
			testTool("write_range"),
		}},
		"analytics": {Server: "analytics", Tools: []mcp.Tool{
			testTool("write_range"),
			testTool("summarize"),
		}},
	}

	winners, conflicts, _ := resolve(servers, outcomes, allAvailable)

	byName := make(map[string]string, len(winners))
	for _, w := range winners {
		byName[w.Name] = w.Server
	}
	assert.Equal(t, map[string]string{
		"read_range":  "excel",
		"write_range": "excel",
		"summarize":   "analytics",
	}, byName)

	require.Len(t, conflicts, 1)
	assert.Equal(t, "write_range", conflicts[0].Name)
	assert.Equal(t, "excel", conflicts[0].Winner)
	assert.Equal(t, []string{"analytics"}, conflicts[0].Losers)
}

func TestResolveSkipsFailedServers(t *testing.T) {
	servers := []config.SourceServer{
		testServer("good", 1),
		testServer("bad", 1),
	}
	outcomes := map[string]Outcome{
		"good": {Server: "good", Tools: []mcp.Tool{testTool("only")}},
		"bad": {
			Server: "bad",
			Err:    &source.DiscoveryError{Server: "bad", Err: errors.New("boom")},
			Tools:  []mcp.Tool{testTool("ghost")},
		},
	}

	winners, conflicts, _ := resolve(servers, outcomes, allAvailable)

	require.Len(t, winners, 1)
	assert.Equal(t, "only", winners[0].Name)
	assert.Empty(t, conflicts)
}

func TestResolveSkipsUnavailableServers(t *testing.T) {
	servers := []config.SourceServer{
		testServer("flaky", 1),
		testServer("steady", 2),
	}
	// flaky listed fine this cycle but is past the failure threshold.
	outcomes := map[string]Outcome{
		"flaky":  {Server: "flaky", Tools: []mcp.Tool{testTool("shared")}},
		"steady": {Server: "steady", Tools: []mcp.Tool{testTool("shared")}},
	}
	available := func(server string) bool { return server != "flaky" }

	winners, conflicts, _ := resolve(servers, outcomes, available)

	require.Len(t, winners, 1)
	assert.Equal(t, "steady", winners[0].Server)
	assert.Empty(t, conflicts)
}

func TestResolveAppliesToolFilter(t *testing.T) {
	server := testServer("filtered", 1)
	server.ToolFilter = []string{"keep"}
	servers := []config.SourceServer{server}
	outcomes := map[string]Outcome{
		"filtered": {Server: "filtered", Tools: []mcp.Tool{testTool("keep"), testTool("discard")}},
	}

	winners, _, dropped := resolve(servers, outcomes, allAvailable)

	require.Len(t, winners, 1)
	assert.Equal(t, "keep", winners[0].Name)
	// Filtered tools are excluded, not counted as translation drops.
	assert.Empty(t, dropped)
}

func TestResolveDropsUnsupportedSchemas(t *testing.T) {
	servers := []config.SourceServer{testServer("mixed", 1)}
	broken := mcp.Tool{
		Name:           "broken",
		RawInputSchema: json.RawMessage(`{"type":"array"}`),
	}
	outcomes := map[string]Outcome{
		"mixed": {Server: "mixed", Tools: []mcp.Tool{testTool("fine"), broken}},
	}

	winners, _, dropped := resolve(servers, outcomes, allAvailable)

	require.Len(t, winners, 1)
	assert.Equal(t, "fine", winners[0].Name)
	assert.Equal(t, map[string]int{"mixed": 1}, dropped)
}

func TestResolveNeverDuplicatesNames(t *testing.T) {
	servers := []config.SourceServer{
		testServer("a", 3),
		testServer("b", 2),
		testServer("c", 1),
	}
	outcomes := map[string]Outcome{
		"a": {Server: "a", Tools: []mcp.Tool{testTool("x"), testTool("y")}},
		"b": {Server: "b", Tools: []mcp.Tool{testTool("y"), testTool("z")}},
		"c": {Server: "c", Tools: []mcp.Tool{testTool("x"), testTool("z")}},
	}

	winners, conflicts, _ := resolve(servers, outcomes, allAvailable)

	seen := make(map[string]bool)
	for _, w := range winners {
		assert.False(t, seen[w.Name], "duplicate winner for %q", w.Name)
		seen[w.Name] = true
	}
	assert.Len(t, winners, 3)

	// Conflict log comes out sorted by name.
	require.Len(t, conflicts, 3)
	assert.Equal(t, "x", conflicts[0].Name)
	assert.Equal(t, "y", conflicts[1].Name)
	assert.Equal(t, "z", conflicts[2].Name)
}
