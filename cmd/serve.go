package cmd

import (
	"context"
	"fmt"

	"toolmux/internal/app"

	"github.com/spf13/cobra"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveSilent suppresses all log output. Use together with the stdio
// serving transport, where the process's stdout carries the protocol.
var serveSilent bool

// serveOTLPEndpoint enables trace export when set.
var serveOTLPEndpoint string

// serveCmd starts the long-running aggregation server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the toolmux aggregation server",
	Long: `Starts the aggregation server: connects to every enabled source server,
runs an initial discovery cycle and exposes the merged tool set over the
configured transport (streamable-http by default, sse or stdio selectable).

The configuration file is watched while the server runs; edits are
validated and applied without a restart. Discovery can additionally be
re-run on a cron schedule (discovery.schedule) or on demand through the
built-in toolmux_refresh tool.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveSilent, rootConfigPath, serveOTLPEndpoint, GetVersion())

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveSilent, "silent", false, "Suppress all log output (required for stdio transport)")
	serveCmd.Flags().StringVar(&serveOTLPEndpoint, "otlp-endpoint", "", "OTLP/HTTP endpoint for trace export (disabled when empty)")
}
