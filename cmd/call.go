package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"toolmux/internal/source"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// callArgs carries the tool arguments as a JSON object.
var callArgs string

// callCmd dispatches one tool call through the aggregation engine.
var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Call an aggregated tool",
	Long: `Runs one discovery cycle, resolves the winning server for the given tool
name and dispatches the call. Arguments are passed as a JSON object:

  toolmux call write_range --args '{"range":"A1:B2","values":[[1,2]]}'`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var toolArgs map[string]interface{}
	if callArgs != "" {
		if err := json.Unmarshal([]byte(callArgs), &toolArgs); err != nil {
			return fmt.Errorf("--args must be a JSON object: %w", err)
		}
	}

	engine, cleanup, err := newOneShotEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	toolName := args[0]
	result, err := engine.Dispatch(ctx, toolName, toolArgs)
	if err != nil {
		// A tool-reported failure still carries the provider's payload;
		// show it before failing.
		var execErr *source.ExecutionError
		if errors.As(err, &execErr) && execErr.Kind == source.ExecutionTool && result != nil {
			printContent(cmd, result)
		}
		return err
	}

	printContent(cmd, result)
	return nil
}

func printContent(cmd *cobra.Command, result *mcp.CallToolResult) {
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			fmt.Fprintln(cmd.OutOrStdout(), text.Text)
			continue
		}
		if data, err := json.Marshal(content); err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}
	}
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVar(&callArgs, "args", "", "Tool arguments as a JSON object")
}
