package config

import (
	"fmt"
	"strings"
)

// ValidationError collects every problem found in a configuration so the
// user can fix them all in one pass.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Issues, "; "))
}

// Validate checks the configuration and returns a *ValidationError listing
// every issue, or nil if the configuration is usable.
//
// Zero enabled source servers is a startup-time failure here, deliberately
// distinct from per-cycle discovery failures which are tolerated.
func Validate(c *Config) error {
	var issues []string

	seen := make(map[string]bool)
	for i, s := range c.SourceServers {
		if s.Name == "" {
			issues = append(issues, fmt.Sprintf("sourceServers[%d]: name is required", i))
			continue
		}
		if seen[s.Name] {
			issues = append(issues, fmt.Sprintf("sourceServers[%d]: duplicate server name %q", i, s.Name))
		}
		seen[s.Name] = true

		switch s.Transport {
		case TransportStdio:
			if s.Command == "" {
				issues = append(issues, fmt.Sprintf("server %q: command is required for stdio transport", s.Name))
			}
		case TransportSSE, TransportStreamableHTTP:
			if s.URL == "" {
				issues = append(issues, fmt.Sprintf("server %q: url is required for %s transport", s.Name, s.Transport))
			}
		default:
			issues = append(issues, fmt.Sprintf("server %q: unsupported transport %q", s.Name, s.Transport))
		}

		if s.Overflow != OverflowQueue && s.Overflow != OverflowReject {
			issues = append(issues, fmt.Sprintf("server %q: overflow must be %q or %q", s.Name, OverflowQueue, OverflowReject))
		}
		if s.Priority < 0 {
			issues = append(issues, fmt.Sprintf("server %q: priority must not be negative", s.Name))
		}
	}

	if len(c.EnabledServers()) == 0 {
		issues = append(issues, "no enabled source servers configured")
	}

	if c.Health.FailureThreshold < 1 {
		issues = append(issues, "health.failureThreshold must be at least 1")
	}
	if c.Discovery.GlobalTimeout <= 0 {
		issues = append(issues, "discovery.globalTimeout must be positive")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
