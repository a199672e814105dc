package config

import "time"

const (
	DefaultHost          = "localhost"
	DefaultPort          = 8090
	DefaultTransport     = TransportStreamableHTTP
	DefaultServerTimeout = 10 * time.Second
	DefaultGlobalTimeout = 30 * time.Second
	DefaultThreshold     = 3
	DefaultMaxInFlight   = 4
	DefaultOverflow      = OverflowQueue
)

// GetDefaultConfig returns a Config with every tunable set to its default.
// The loader unmarshals on top of it so omitted fields keep these values.
func GetDefaultConfig() Config {
	return Config{
		Aggregator: AggregatorConfig{
			Host:      DefaultHost,
			Port:      DefaultPort,
			Transport: DefaultTransport,
		},
		Discovery: DiscoveryConfig{
			GlobalTimeout: DefaultGlobalTimeout,
		},
		Health: HealthConfig{
			FailureThreshold: DefaultThreshold,
		},
	}
}

// applyServerDefaults fills per-server fields the file omitted.
func applyServerDefaults(s *SourceServer) {
	if s.Transport == "" {
		if s.URL != "" {
			s.Transport = TransportStreamableHTTP
		} else {
			s.Transport = TransportStdio
		}
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultServerTimeout
	}
	if s.MaxInFlight <= 0 {
		s.MaxInFlight = DefaultMaxInFlight
	}
	if s.Overflow == "" {
		s.Overflow = DefaultOverflow
	}
}
