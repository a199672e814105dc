package app

import "toolmux/internal/config"

// Config carries the serve command's options into the bootstrap phase.
type Config struct {
	// Debug enables verbose logging across the application.
	Debug bool

	// Silent suppresses all log output. Required for stdio transport, where
	// stdout belongs to the MCP protocol.
	Silent bool

	// ConfigPath overrides the default configuration file location.
	ConfigPath string

	// OTLPEndpoint, when set, enables trace export to an OTLP/HTTP
	// collector.
	OTLPEndpoint string

	// Version is the build version injected by main.
	Version string

	// ToolmuxConfig holds the loaded configuration, populated during
	// bootstrap.
	ToolmuxConfig *config.Config
}

// NewConfig creates the application configuration from command-line options.
func NewConfig(debug, silent bool, configPath, otlpEndpoint, version string) *Config {
	return &Config{
		Debug:        debug,
		Silent:       silent,
		ConfigPath:   configPath,
		OTLPEndpoint: otlpEndpoint,
		Version:      version,
	}
}
