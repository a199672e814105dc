package config

import "time"

// Transport identifies how a source server is reached.
type Transport string

const (
	TransportStdio          Transport = "stdio"
	TransportSSE            Transport = "sse"
	TransportStreamableHTTP Transport = "streamable-http"
)

// OverflowPolicy controls what happens to tool calls beyond a server's
// in-flight limit.
type OverflowPolicy string

const (
	// OverflowQueue blocks the caller until a slot frees up or its
	// context is cancelled.
	OverflowQueue OverflowPolicy = "queue"
	// OverflowReject fails the call immediately with a backpressure error.
	OverflowReject OverflowPolicy = "reject"
)

// SourceServer describes one configured tool provider. The struct is
// immutable after loading; the engine never writes to it.
type SourceServer struct {
	// Name uniquely identifies the server and is used as the owning-server
	// key on every aggregated tool.
	Name string `yaml:"name"`

	// Transport selects the connection mechanism. Defaults to stdio when
	// a command is set, streamable-http when a URL is set.
	Transport Transport `yaml:"transport,omitempty"`

	// Command, Args and Env configure stdio servers.
	Command string            `yaml:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`

	// URL and Headers configure sse and streamable-http servers.
	URL     string            `yaml:"url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`

	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Priority resolves tool name conflicts: the lower number wins.
	// Servers with equal priority fall back to configuration order.
	Priority int `yaml:"priority,omitempty"`

	// ToolFilter, when set, is an allowlist of native tool names. Tools
	// not on the list never reach conflict resolution.
	ToolFilter []string `yaml:"toolFilter,omitempty"`

	// Timeout bounds every call to this server (discovery and execution).
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxInFlight bounds concurrent tool executions against this server.
	MaxInFlight int `yaml:"maxInFlight,omitempty"`

	// Overflow selects the policy for calls beyond MaxInFlight.
	Overflow OverflowPolicy `yaml:"overflow,omitempty"`
}

// IsEnabled reports whether the server participates in discovery.
func (s *SourceServer) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// FilterAllows reports whether the native tool name passes the server's
// tool filter. An absent filter allows everything.
func (s *SourceServer) FilterAllows(toolName string) bool {
	if len(s.ToolFilter) == 0 {
		return true
	}
	for _, allowed := range s.ToolFilter {
		if allowed == toolName {
			return true
		}
	}
	return false
}

// AggregatorConfig configures the consumer-facing MCP endpoint.
type AggregatorConfig struct {
	Host      string    `yaml:"host,omitempty"`
	Port      int       `yaml:"port,omitempty"`
	Transport Transport `yaml:"transport,omitempty"`
}

// DiscoveryConfig configures discovery cycles.
type DiscoveryConfig struct {
	// GlobalTimeout bounds a whole discovery cycle. Servers still pending
	// when it elapses are recorded as failed for that cycle.
	GlobalTimeout time.Duration `yaml:"globalTimeout,omitempty"`

	// Schedule is an optional cron expression for periodic re-discovery.
	Schedule string `yaml:"schedule,omitempty"`
}

// HealthConfig configures the per-server health tracker.
type HealthConfig struct {
	// FailureThreshold is the number of consecutive discovery failures
	// after which a server is marked unavailable.
	FailureThreshold int `yaml:"failureThreshold,omitempty"`
}

// Config is the root configuration document.
type Config struct {
	Aggregator    AggregatorConfig `yaml:"aggregator,omitempty"`
	Discovery     DiscoveryConfig  `yaml:"discovery,omitempty"`
	Health        HealthConfig     `yaml:"health,omitempty"`
	SourceServers []SourceServer   `yaml:"sourceServers"`
}

// EnabledServers returns the enabled servers in configuration order.
func (c *Config) EnabledServers() []SourceServer {
	var enabled []SourceServer
	for _, s := range c.SourceServers {
		if s.IsEnabled() {
			enabled = append(enabled, s)
		}
	}
	return enabled
}
