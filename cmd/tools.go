package cmd

import (
	"context"
	"fmt"
	"strings"

	"toolmux/internal/translate"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// toolsCmd lists the aggregated tool set after one discovery cycle.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the aggregated tools",
	Long: `Connects to every enabled source server, runs one discovery cycle and
prints the resulting tool set: the winning server per tool name after
collision resolution, with the canonical parameter list.`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

func runTools(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine, cleanup, err := newOneShotEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	tools := engine.Tools()
	if len(tools) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tools aggregated")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"TOOL", "SERVER", "PARAMS", "DESCRIPTION"})
	for _, desc := range tools {
		t.AppendRow(table.Row{
			desc.Name,
			desc.Server,
			paramSummary(desc.Params),
			truncate(desc.Description, 60),
		})
	}
	t.Render()
	return nil
}

// paramSummary renders the canonical parameter list in one cell; required
// parameters are marked with an asterisk.
func paramSummary(params []translate.Param) string {
	if len(params) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		name := p.Name
		if p.Required {
			name += "*"
		}
		parts = append(parts, fmt.Sprintf("%s:%s", name, p.Type))
	}
	return strings.Join(parts, ", ")
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
