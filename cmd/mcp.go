package cmd

import (
	"github.com/cloudstack-dashboard/prdash/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the prdash MCP server",
	Long: `Launch an MCP server on stdio so AI agents can query the fact store.

Tools:
  get_pr_failures - classified failing tests of a PR
  classify_test   - common or unique verdict for one test
  get_summary     - dashboard rollups
  parse_comment   - run the extractors on a raw comment`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
