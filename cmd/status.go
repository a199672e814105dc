package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// statusCmd reports per-server health and the conflicts the current
// snapshot resolved.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-server health and resolved conflicts",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine, cleanup, err := newOneShotEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"SERVER", "STATE", "FAILURES", "LAST SUCCESS", "TOOLS"})
	for _, status := range engine.Status() {
		lastSuccess := "-"
		if !status.LastSuccess.IsZero() {
			lastSuccess = status.LastSuccess.Format("15:04:05")
		}
		t.AppendRow(table.Row{
			status.Server,
			status.State,
			status.ConsecutiveFailures,
			lastSuccess,
			status.ToolCount,
		})
	}
	t.Render()

	conflicts := engine.Registry().Current().Conflicts
	if len(conflicts) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Resolved conflicts:")
		for _, c := range conflicts {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s wins over %s (%s)\n",
				c.Name, c.Winner, strings.Join(c.Losers, ", "), c.Reason)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
