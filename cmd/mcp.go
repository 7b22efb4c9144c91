package cmd

import (
	"context"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/junkyard/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients read the portfolio catalog, project READMEs and
last commit dates. Configure a client with:

  {
    "mcpServers": {
      "junkyard": { "command": "junkyard", "args": ["mcp"] }
    }
  }

Available tools: junkyard_list_projects, junkyard_project_readme,
junkyard_last_commit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
		defer stop()

		gh, err := newGitHubClient()
		if err != nil {
			return err
		}
		srv := mcp.NewServer(newStore(), gh, buildVersion)
		return srv.ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
