package cmd

import (
	"context"
	"fmt"
	"os"

	"toolmux/internal/aggregator"
	"toolmux/internal/config"
	"toolmux/pkg/logging"
)

// newOneShotEngine bootstraps an engine for commands that run a single
// discovery cycle and exit. The returned cleanup closes every source
// client.
func newOneShotEngine(ctx context.Context) (*aggregator.Engine, func(), error) {
	logging.InitForCLI(logging.ParseLevel(rootLogLevel), os.Stderr)

	path := rootConfigPath
	if path == "" {
		var err error
		path, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, nil, err
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(&cfg); err != nil {
		return nil, nil, err
	}

	engine, err := aggregator.NewEngine(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := engine.Start(ctx); err != nil {
		engine.Stop()
		return nil, nil, fmt.Errorf("failed to start engine: %w", err)
	}
	return engine, engine.Stop, nil
}

// truncate shortens long cell values for table output.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
