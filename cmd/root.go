package cmd

import (
	"os"

	// Load a local .env before any command reads configuration, so
	// ${VAR} references in config files can come from it.
	_ "github.com/joho/godotenv/autoload"

	"github.com/spf13/cobra"
)

// rootConfigPath overrides the default configuration file location for all
// commands.
var rootConfigPath string

// rootLogLevel sets the log verbosity for one-shot commands; the serve
// command has its own --debug flag.
var rootLogLevel string

// rootCmd represents the base command for the toolmux application.
var rootCmd = &cobra.Command{
	Use:   "toolmux",
	Short: "Aggregate tools from multiple MCP servers behind one endpoint",
	Long: `toolmux connects to multiple MCP tool servers, normalizes their tool
schemas into one canonical form, resolves name collisions by priority and
exposes the merged tool set through a single MCP endpoint.

Source servers, priorities and the serving transport are configured in
~/.config/toolmux/config.yaml (override with --config).`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application, called by
// main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "toolmux version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "",
		"Configuration file path (default ~/.config/toolmux/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info",
		"Log level for one-shot commands (debug, info, warn, error)")
}
