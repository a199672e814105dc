package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"toolmux/internal/aggregator"
	"toolmux/internal/config"
	"toolmux/internal/telemetry"
	"toolmux/pkg/logging"
)

// Application bootstraps and runs the toolmux server. It follows a
// two-phase pattern: NewApplication loads configuration and constructs the
// engine and MCP front end, Run executes them until shutdown.
type Application struct {
	config *Config

	configPath string
	engine     *aggregator.Engine
	server     *aggregator.Server

	// shutdownTracing flushes pending spans; nil when tracing is disabled.
	shutdownTracing func(context.Context) error
}

// NewApplication creates and initializes an application instance.
//
// The bootstrap sequence:
//  1. Initialize logging (stderr, so stdio transport keeps stdout clean)
//  2. Load and validate the configuration
//  3. Initialize tracing when an OTLP endpoint is configured
//  4. Construct the aggregation engine and the MCP front end
func NewApplication(cfg *Config) (*Application, error) {
	logLevel := logging.LevelInfo
	if cfg.Debug {
		logLevel = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stderr
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.InitForCLI(logLevel, logOutput)

	configPath := cfg.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	toolmuxCfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	if err := config.Validate(&toolmuxCfg); err != nil {
		logging.Error("Bootstrap", err, "Configuration is invalid")
		return nil, err
	}
	cfg.ToolmuxConfig = &toolmuxCfg

	app := &Application{
		config:     cfg,
		configPath: configPath,
	}

	var obs *telemetry.Observer
	if cfg.OTLPEndpoint != "" {
		shutdown, err := telemetry.InitTracing(context.Background(), cfg.OTLPEndpoint, cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		app.shutdownTracing = shutdown

		obs, err = telemetry.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry observer: %w", err)
		}
		logging.Info("Bootstrap", "Tracing enabled, exporting to %s", cfg.OTLPEndpoint)
	}

	engine, err := aggregator.NewEngine(toolmuxCfg, obs)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to create aggregation engine")
		return nil, fmt.Errorf("failed to create aggregation engine: %w", err)
	}
	app.engine = engine

	app.server = aggregator.NewServer(aggregator.ServerConfig{
		Host:      toolmuxCfg.Aggregator.Host,
		Port:      toolmuxCfg.Aggregator.Port,
		Transport: toolmuxCfg.Aggregator.Transport,
		Version:   cfg.Version,
	}, engine)

	return app, nil
}

// Engine returns the aggregation engine, for one-shot CLI commands that
// bypass the MCP front end.
func (a *Application) Engine() *aggregator.Engine {
	return a.engine
}
