package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/cra/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets coding agents query cra natively for stored reviews.
Configure with:

  {
    "mcpServers": {
      "cra": { "command": "cra", "args": ["mcp"] }
    }
  }

Available tools: cra_list_reviews, cra_get_review, cra_delete_review,
cra_llm_status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}
		srv := mcp.NewServer(s, llmConfig())
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
