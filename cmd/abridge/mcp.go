package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flemzord/abridge/pkg/app"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the summarize tool over MCP on stdio",
		Long: `Serve Model Context Protocol on stdin/stdout. Logs go to stderr so the
protocol stream stays clean.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			params := runParams(cmd)
			params.LogOutput = os.Stderr
			c, err := app.Setup(params)
			if err != nil {
				return err
			}
			return c.MCP(version).Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
