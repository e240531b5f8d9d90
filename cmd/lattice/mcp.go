package main

import (
	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve recognition as an MCP tool",
	Long: `Starts a Model Context Protocol server with a "recognize" tool and the
vocabulary resource. Uses stdio unless --sse-port is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		store, err := recognitionStore(cmd, cfg)
		if err != nil {
			return err
		}
		rec, err := cli.OpenRecognizer(ctx, cfg, store, logger)
		if err != nil {
			return err
		}

		server := mcp.NewServer(rec, logger)
		if port, _ := cmd.Flags().GetInt("sse-port"); port > 0 {
			return server.ServeSSE(ctx, port)
		}
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Int("sse-port", 0, "Serve over SSE on this port instead of stdio")
	mcpCmd.Flags().Bool("redis", false, "Load the automaton from the configured Redis store")
}
