package source

import (
	"fmt"

	"toolmux/internal/config"
)

// NewClient builds the client matching the server's configured transport.
//
// Returns an error if the transport is not recognized; validation normally
// catches this earlier, the check here guards programmatic callers.
func NewClient(cfg config.SourceServer) (Client, error) {
	switch cfg.Transport {
	case config.TransportStdio:
		if cfg.Command == "" {
			return nil, fmt.Errorf("command is required for stdio transport")
		}
		return NewStdioClient(cfg.Name, cfg.Command, cfg.Args, cfg.Env), nil

	case config.TransportSSE:
		if cfg.URL == "" {
			return nil, fmt.Errorf("url is required for sse transport")
		}
		return NewSSEClient(cfg.Name, cfg.URL, cfg.Headers), nil

	case config.TransportStreamableHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("url is required for streamable-http transport")
		}
		return NewStreamableHTTPClient(cfg.Name, cfg.URL, cfg.Headers), nil

	default:
		return nil, fmt.Errorf("unsupported transport %q (supported: %s, %s, %s)",
			cfg.Transport, config.TransportStdio, config.TransportSSE, config.TransportStreamableHTTP)
	}
}
