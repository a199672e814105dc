package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
sourceServers:
  - name: excel
    command: excel-mcp
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Aggregator.Host)
	assert.Equal(t, DefaultPort, cfg.Aggregator.Port)
	assert.Equal(t, DefaultGlobalTimeout, cfg.Discovery.GlobalTimeout)
	assert.Equal(t, DefaultThreshold, cfg.Health.FailureThreshold)

	require.Len(t, cfg.SourceServers, 1)
	s := cfg.SourceServers[0]
	assert.Equal(t, TransportStdio, s.Transport)
	assert.Equal(t, DefaultServerTimeout, s.Timeout)
	assert.Equal(t, DefaultMaxInFlight, s.MaxInFlight)
	assert.Equal(t, OverflowQueue, s.Overflow)
	assert.True(t, s.IsEnabled())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.SourceServers)
}

func TestLoadConfigEnvExpansion(t *testing.T) {
	t.Setenv("EXCEL_TOKEN", "s3cret")
	path := writeConfig(t, `
sourceServers:
  - name: excel
    url: https://excel.example.com/mcp
    headers:
      Authorization: "Bearer ${EXCEL_TOKEN}"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.SourceServers, 1)
	assert.Equal(t, "Bearer s3cret", cfg.SourceServers[0].Headers["Authorization"])
	assert.Equal(t, TransportStreamableHTTP, cfg.SourceServers[0].Transport)
}

func TestLoadConfigFullDocument(t *testing.T) {
	path := writeConfig(t, `
aggregator:
  host: 0.0.0.0
  port: 9000
  transport: sse
discovery:
  globalTimeout: 45s
  schedule: "*/5 * * * *"
health:
  failureThreshold: 5
sourceServers:
  - name: excel
    command: excel-mcp
    args: ["--workbook", "report.xlsx"]
    priority: 1
    toolFilter: ["read_range"]
    timeout: 3s
    maxInFlight: 2
    overflow: reject
  - name: analytics
    url: https://analytics.example.com/mcp
    transport: sse
    priority: 2
    enabled: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Aggregator.Host)
	assert.Equal(t, 9000, cfg.Aggregator.Port)
	assert.Equal(t, TransportSSE, cfg.Aggregator.Transport)
	assert.Equal(t, 45*time.Second, cfg.Discovery.GlobalTimeout)
	assert.Equal(t, "*/5 * * * *", cfg.Discovery.Schedule)
	assert.Equal(t, 5, cfg.Health.FailureThreshold)

	require.Len(t, cfg.SourceServers, 2)
	excel := cfg.SourceServers[0]
	assert.Equal(t, 3*time.Second, excel.Timeout)
	assert.Equal(t, 2, excel.MaxInFlight)
	assert.Equal(t, OverflowReject, excel.Overflow)
	assert.Equal(t, []string{"read_range"}, excel.ToolFilter)

	analytics := cfg.SourceServers[1]
	assert.False(t, analytics.IsEnabled())

	enabled := cfg.EnabledServers()
	require.Len(t, enabled, 1)
	assert.Equal(t, "excel", enabled[0].Name)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "sourceServers: [not: valid: yaml")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestFilterAllows(t *testing.T) {
	s := SourceServer{ToolFilter: []string{"read_range"}}
	assert.True(t, s.FilterAllows("read_range"))
	assert.False(t, s.FilterAllows("write_range"))

	unfiltered := SourceServer{}
	assert.True(t, unfiltered.FilterAllows("anything"))
}
